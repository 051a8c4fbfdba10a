package detector

import (
	"errors"
	"testing"

	"github.com/retroenv/retrodex/internal/config"
	"github.com/retroenv/retrodex/internal/rom"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// buildHeader returns an image with a valid cartridge header.
func buildHeader(title, gameCode string, version byte) []byte {
	data := make([]byte, 0x200)
	copy(data[0xA0:], title)
	copy(data[0xAC:], gameCode)
	copy(data[0xB0:], "01")
	data[0xB2] = fixedValue
	data[0xBC] = version

	var sum byte
	for _, v := range data[checksumStart : checksumEnd+1] {
		sum -= v
	}
	data[0xBD] = sum - 0x19
	return data
}

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name        string
		title       string
		gameCode    string
		wantProfile string
	}{
		{
			name:        "known game code",
			title:       "POKEMON FIRE",
			gameCode:    "BPRE",
			wantProfile: "BPRE",
		},
		{
			name:        "unknown game code uses default layout",
			title:       "POKEMON EMER",
			gameCode:    "BPEE",
			wantProfile: DefaultProfile,
		},
		{
			name:        "short title",
			title:       "HACK",
			gameCode:    "XXXX",
			wantProfile: DefaultProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space := rom.New(buildHeader(tt.title, tt.gameCode, 1))

			info, layout, err := d.Detect(space)
			assert.NoError(t, err)
			assert.Equal(t, tt.title, info.Title)
			assert.Equal(t, tt.gameCode, info.GameCode)
			assert.Equal(t, "01", info.MakerCode)
			assert.Equal(t, 1, info.Version)
			assert.True(t, info.ChecksumOK)
			assert.Equal(t, 0x200, info.Size)
			assert.Len(t, info.Fingerprint, 16)
			assert.Equal(t, tt.wantProfile, info.Profile)
			assert.Equal(t, config.DefaultLayout(), layout)
		})
	}
}

func TestDetectChecksumMismatch(t *testing.T) {
	data := buildHeader("POKEMON FIRE", "BPRE", 0)
	data[0xBD]++

	info, _, err := New(log.NewTestLogger(t)).Detect(rom.New(data))
	assert.NoError(t, err)
	assert.False(t, info.ChecksumOK)
}

func TestDetectNoHeader(t *testing.T) {
	_, _, err := New(log.NewTestLogger(t)).Detect(rom.New(make([]byte, 0x40)))
	assert.True(t, errors.Is(err, ErrNoHeader))
	assert.True(t, errors.Is(err, rom.ErrOutOfRange))
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(rom.New([]byte("image a")))
	assert.NoError(t, err)
	b, err := Fingerprint(rom.New([]byte("image b")))
	assert.NoError(t, err)
	again, err := Fingerprint(rom.New([]byte("image a")))
	assert.NoError(t, err)

	assert.Equal(t, a, again)
	assert.False(t, a == b)
}
