package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrodex/internal/config"
	"github.com/retroenv/retrodex/internal/detector"
	"github.com/retroenv/retrodex/internal/options"
	"github.com/retroenv/retrodex/internal/rom"
	"github.com/retroenv/retrodex/internal/romtest"
	"github.com/retroenv/retrodex/internal/ups"
	"github.com/retroenv/retrodex/internal/wild"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func writeTestFiles(t *testing.T, image []byte) (string, string) {
	t.Helper()
	dir := t.TempDir()

	romPath := filepath.Join(dir, "game.gba")
	assert.NoError(t, os.WriteFile(romPath, image, 0o644))

	layoutPath := filepath.Join(dir, "layout.json")
	assert.NoError(t, config.WriteLayout(layoutPath, romtest.CartridgeLayout()))
	return romPath, layoutPath
}

func TestNew(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.detector)
	assert.NotNil(t, p.loader)
}

func TestExecute(t *testing.T) {
	romPath, layoutPath := writeTestFiles(t, romtest.Cartridge(t, "Seedling"))

	p := New(log.NewTestLogger(t))
	opts := options.Program{
		Parameters: options.Parameters{ROM: romPath, Layout: layoutPath},
	}
	result, err := p.Execute(context.Background(), opts, options.NewExtraction(opts))
	assert.NoError(t, err)

	assert.Equal(t, "RETRODEX", result.Info.Title)
	assert.Equal(t, "TEST", result.Info.GameCode)
	assert.Equal(t, detector.DefaultProfile, result.Info.Profile)
	assert.Equal(t, romtest.CartridgeSize, result.Info.Size)
	assert.Nil(t, result.Patch)

	assert.Len(t, result.Creatures, 2)
	assert.Equal(t, "Seedling", result.Creatures[1].Name)
	assert.Equal(t, "Normal", result.Creatures[1].Stats.Type1)
	assert.Nil(t, result.Creatures[1].Sprite)

	assert.Len(t, result.Locations, 1)
	assert.Equal(t, "Route 1", result.Locations[0].Name)
	assert.Equal(t, []wild.Slot{{Creature: "Seedling", MinLevel: 3, MaxLevel: 4}}, result.Locations[0].Grass)
	assert.Nil(t, result.Locations[0].Surf)
}

func TestExecuteWithPatch(t *testing.T) {
	source := romtest.Cartridge(t, "Seedling")
	target := romtest.Cartridge(t, "Sprout")
	romPath, layoutPath := writeTestFiles(t, source)

	patch := ups.Create(source, target)
	patchPath := filepath.Join(filepath.Dir(romPath), "hack.ups")
	assert.NoError(t, os.WriteFile(patchPath, patch, 0o644))

	p := New(log.NewTestLogger(t))
	opts := options.Program{
		Parameters: options.Parameters{ROM: romPath, Patch: patchPath, Layout: layoutPath},
	}
	result, err := p.Execute(context.Background(), opts, options.NewExtraction(opts))
	assert.NoError(t, err)
	assert.Equal(t, patch, result.Patch)
	assert.Equal(t, "Sprout", result.Creatures[1].Name)
	assert.Equal(t, "Sprout", result.Locations[0].Grass[0].Creature)
}

func TestExecuteErrors(t *testing.T) {
	romPath, layoutPath := writeTestFiles(t, romtest.Cartridge(t, "Seedling"))
	dir := filepath.Dir(romPath)
	badPatch := filepath.Join(dir, "bad.ups")
	assert.NoError(t, os.WriteFile(badPatch, []byte("not a patch"), 0o644))

	tests := []struct {
		name       string
		params     options.Parameters
		errContain string
	}{
		{
			name:       "missing image",
			params:     options.Parameters{ROM: filepath.Join(dir, "missing.gba")},
			errContain: "loading image",
		},
		{
			name:       "missing layout",
			params:     options.Parameters{ROM: romPath, Layout: filepath.Join(dir, "missing.json")},
			errContain: "loading layout",
		},
		{
			name:       "corrupt patch",
			params:     options.Parameters{ROM: romPath, Patch: badPatch, Layout: layoutPath},
			errContain: "applying patch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(log.NewTestLogger(t))
			opts := options.Program{Parameters: tt.params}
			_, err := p.Execute(context.Background(), opts, options.NewExtraction(opts))
			assert.ErrorContains(t, err, tt.errContain)
		})
	}
}

func TestExecuteWithROM(t *testing.T) {
	p := New(log.NewTestLogger(t))
	space := rom.New(romtest.Cartridge(t, "Seedling"))

	t.Run("verify", func(t *testing.T) {
		result, err := p.ExecuteWithROM(context.Background(), space, romtest.CartridgeLayout(), options.Extraction{Verify: true})
		assert.NoError(t, err)
		assert.Len(t, result.Creatures, 2)
		assert.Len(t, result.Locations, 1)
	})

	t.Run("legacy rate check", func(t *testing.T) {
		layout := romtest.CartridgeLayout()
		layout.LegacyRateCheck = true
		result, err := p.ExecuteWithROM(context.Background(), space, layout, options.Extraction{})
		assert.NoError(t, err)
		assert.True(t, result.Layout.LegacyRateCheck)
	})

	t.Run("invalid layout", func(t *testing.T) {
		layout := romtest.CartridgeLayout()
		layout.CreatureCount = 0
		_, err := p.ExecuteWithROM(context.Background(), space, layout, options.Extraction{})
		assert.ErrorContains(t, err, "invalid layout")
	})

	t.Run("table outside image", func(t *testing.T) {
		layout := romtest.CartridgeLayout()
		layout.Offsets.Names = romtest.Addr(romtest.CartridgeSize - 4)
		_, err := p.ExecuteWithROM(context.Background(), space, layout, options.Extraction{})
		assert.ErrorContains(t, err, "extracting creatures")
	})
}
