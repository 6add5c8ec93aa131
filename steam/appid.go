package steam

import "hash/crc32"

// ShortcutAppID returns the id Steam assigns to a non-Steam shortcut: the
// IEEE CRC32 of the exe field followed by the app name, with the high bit
// set. Both strings are used exactly as stored in shortcuts.vdf (quotes and
// case included); any normalization produces ids Steam never looks up.
func ShortcutAppID(exe, appName string) uint32 {
	return crc32.ChecksumIEEE([]byte(exe+appName)) | 0x80000000
}
