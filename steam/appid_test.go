package steam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortcutAppIDGolden(t *testing.T) {
	tests := []struct {
		exe     string
		appName string
		want    uint32
	}{
		{`"C:\Games\Hades\Hades.exe"`, "Hades", 2555169630},
		{`"/usr/bin/retroarch"`, "RetroArch", 3985023816},
		{`"/home/deck/Games/celeste/Celeste"`, "Celeste", 3510223103},
		{`"/opt/heroic/heroic"`, "Heroic Games Launcher", 2850363544},
		{"", "", 0x80000000},
	}

	for _, tt := range tests {
		t.Run(tt.appName, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortcutAppID(tt.exe, tt.appName))
		})
	}
}

func TestShortcutAppIDUsesRawFields(t *testing.T) {
	quoted := ShortcutAppID(`"/usr/bin/retroarch"`, "RetroArch")

	assert.NotEqual(t, quoted, ShortcutAppID("/usr/bin/retroarch", "RetroArch"))
	assert.NotEqual(t, quoted, ShortcutAppID(`"/usr/bin/retroarch"`, "retroarch"))
	assert.NotEqual(t, quoted, ShortcutAppID("RetroArch", `"/usr/bin/retroarch"`))
}

func TestShortcutAppIDHighBitSet(t *testing.T) {
	for _, name := range []string{"a", "b", "Portal", "Half-Life"} {
		assert.NotZero(t, ShortcutAppID("/x", name)&0x80000000, name)
	}
}

func TestShortcutAppIDMatchesCRC32CheckValue(t *testing.T) {
	// CRC-32/ISO-HDLC of "123456789" is 0xCBF43926, which already has the high bit set
	assert.Equal(t, uint32(0xCBF43926), ShortcutAppID("12345678", "9"))
	assert.Equal(t, uint32(0xCBF43926), ShortcutAppID("", "123456789"))
	assert.Equal(t, uint32(0xCBF43926), ShortcutAppID("123456789", ""))
}
