// Package steamtest builds binary shortcuts.vdf fixtures for tests.
package steamtest

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

// Builder writes binary VDF nodes in order
type Builder struct {
	buffer bytes.Buffer
}

// NewBuilder returns an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Map opens a nested map
func (b *Builder) Map(key string) *Builder {
	b.buffer.WriteByte(0x00)
	b.writeKey(key)
	return b
}

// String writes a string field
func (b *Builder) String(key, value string) *Builder {
	b.buffer.WriteByte(0x01)
	b.writeKey(key)
	b.buffer.WriteString(value)
	b.buffer.WriteByte(0x00)
	return b
}

// Int writes an int32 field
func (b *Builder) Int(key string, value uint32) *Builder {
	b.buffer.WriteByte(0x02)
	b.writeKey(key)
	binary.Write(&b.buffer, binary.LittleEndian, value)
	return b
}

// End closes the innermost open map
func (b *Builder) End() *Builder {
	b.buffer.WriteByte(0x08)
	return b
}

// Raw appends bytes verbatim
func (b *Builder) Raw(p ...byte) *Builder {
	b.buffer.Write(p)
	return b
}

// Bytes returns the encoded data
func (b *Builder) Bytes() []byte {
	return bytes.Clone(b.buffer.Bytes())
}

func (b *Builder) writeKey(key string) {
	b.buffer.WriteString(key)
	b.buffer.WriteByte(0x00)
}

// Entry is a shortcut as written by the Steam client
type Entry struct {
	AppID         uint32
	AppName       string
	Exe           string
	StartDir      string
	LaunchOptions string
	Tags          []string
}

// Shortcuts encodes entries keyed "0", "1", ... in Steam's field layout
func Shortcuts(entries ...Entry) []byte {
	b := NewBuilder().Map("shortcuts")
	for i, e := range entries {
		b.Map(strconv.Itoa(i))
		WriteEntry(b, e)
		b.End()
	}
	return b.End().End().Bytes()
}

// WriteEntry writes the fields of one shortcut into an already open map
func WriteEntry(b *Builder, e Entry) {
	b.Int("appid", e.AppID).
		String("AppName", e.AppName).
		String("Exe", e.Exe).
		String("StartDir", e.StartDir).
		String("icon", "").
		String("ShortcutPath", "").
		String("LaunchOptions", e.LaunchOptions).
		Int("IsHidden", 0).
		Int("AllowDesktopConfig", 1).
		Int("AllowOverlay", 1).
		Int("OpenVR", 0).
		Int("Devkit", 0).
		String("DevkitGameID", "").
		Int("DevkitOverrideAppID", 0).
		Int("LastPlayTime", 0).
		String("FlatpakAppID", "")

	b.Map("tags")
	for i, tag := range e.Tags {
		b.String(strconv.Itoa(i), tag)
	}
	b.End()
}
