package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDefaultLayoutIsValid(t *testing.T) {
	layout := DefaultLayout()
	assert.NoError(t, layout.Validate())
	assert.Equal(t, 12, layout.GrassSlots)
	assert.Equal(t, 5, layout.SurfSlots)
	assert.Equal(t, 5, layout.TreeSlots)
	assert.Equal(t, 10, layout.FishSlots)
	assert.False(t, layout.LegacyRateCheck)
}

func TestProfile(t *testing.T) {
	layout, ok := Profile("BPRE")
	assert.True(t, ok)
	assert.Equal(t, DefaultLayout(), layout)

	_, ok = Profile("AXVE")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	layout := DefaultLayout()
	layout.CreatureCount = 0
	layout.FishSlots = -1
	layout.MapsecsKanto = 300

	err := layout.Validate()
	assert.ErrorContains(t, err, "creature_count")
	assert.ErrorContains(t, err, "fish_slots")
	assert.ErrorContains(t, err, "mapsecs_kanto")
}

func TestLoadLayout(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path returns base", func(t *testing.T) {
		layout, err := LoadLayout("", DefaultLayout())
		assert.NoError(t, err)
		assert.Equal(t, DefaultLayout(), layout)
	})

	t.Run("overlay keeps missing fields", func(t *testing.T) {
		path := filepath.Join(dir, "partial.json")
		content := `{"creature_count": 20, "offsets": {"names": 134217728}, "legacy_rate_check": true}`
		assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		layout, err := LoadLayout(path, DefaultLayout())
		assert.NoError(t, err)
		assert.Equal(t, 20, layout.CreatureCount)
		assert.Equal(t, uint32(0x08000000), layout.Offsets.Names)
		assert.Equal(t, DefaultLayout().Offsets.Stats, layout.Offsets.Stats)
		assert.Equal(t, DefaultLayout().MoveCount, layout.MoveCount)
		assert.True(t, layout.LegacyRateCheck)
	})

	t.Run("round trip through WriteLayout", func(t *testing.T) {
		path := filepath.Join(dir, "full.json")
		expected := DefaultLayout()
		expected.WildCount = 3
		assert.NoError(t, WriteLayout(path, expected))

		layout, err := LoadLayout(path, Layout{})
		assert.NoError(t, err)
		assert.Equal(t, expected, layout)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLayout(filepath.Join(dir, "missing.json"), DefaultLayout())
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		assert.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

		_, err := LoadLayout(path, DefaultLayout())
		assert.ErrorContains(t, err, "parsing layout file")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.json")
		assert.NoError(t, os.WriteFile(path, []byte(`{"type_count": 0}`), 0o600))

		_, err := LoadLayout(path, DefaultLayout())
		assert.ErrorContains(t, err, "type_count")
	})
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
	assert.NotNil(t, CreateLogger(false, false))
}
