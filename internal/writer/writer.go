// Package writer persists extracted data as JSON and PNG files.
package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash"
	"github.com/retroenv/retrodex/internal/creature"
	"github.com/retroenv/retrodex/internal/detector"
	"github.com/retroenv/retrodex/internal/wild"
	"github.com/retroenv/retrogolib/log"
)

// Output file names inside the output directory.
const (
	CreaturesFile = "creatures.json"
	LocationsFile = "wild.json"
	ManifestFile  = "manifest.json"
	PatchFile     = "patch.ups"
	SpritesDir    = "sprites"
)

const indent = "    "

// File describes a written file.
type File struct {
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Digest string `json:"xxhash"`
}

// Manifest summarizes the output of one extraction.
type Manifest struct {
	Cartridge detector.Info `json:"cartridge"`
	Creatures int           `json:"creatures"`
	Locations int           `json:"locations"`
	Sprites   int           `json:"sprites"`
	Files     []File        `json:"files"`
}

// Writer writes extraction results into a directory.
type Writer struct {
	logger *log.Logger
	dir    string
}

// New creates a new writer for the given output directory.
func New(logger *log.Logger, dir string) *Writer {
	return &Writer{
		logger: logger,
		dir:    dir,
	}
}

// EncodeCreatures returns the indented JSON encoding of the creature table.
func EncodeCreatures(creatures []creature.Creature) ([]byte, error) {
	b, err := json.MarshalIndent(creatures, "", indent)
	if err != nil {
		return nil, fmt.Errorf("encoding creatures: %w", err)
	}
	return b, nil
}

// EncodeLocations returns the indented JSON encoding of the wild locations.
func EncodeLocations(locations []wild.Location) ([]byte, error) {
	b, err := json.MarshalIndent(locations, "", indent)
	if err != nil {
		return nil, fmt.Errorf("encoding wild locations: %w", err)
	}
	return b, nil
}

// SpriteName returns the file name of the sprite of a creature relative to
// the output directory.
func SpriteName(index int) string {
	return filepath.Join(SpritesDir, fmt.Sprintf("%03d.png", index))
}

// Write writes the creature table, the wild locations, all decoded sprites
// and a manifest that lists the written files with their digests.
func (w *Writer) Write(info detector.Info, creatures []creature.Creature, locations []wild.Location) (*Manifest, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", w.dir, err)
	}

	manifest := &Manifest{
		Cartridge: info,
		Creatures: len(creatures),
		Locations: len(locations),
	}

	data, err := EncodeCreatures(creatures)
	if err != nil {
		return nil, err
	}
	if err := w.writeFile(manifest, CreaturesFile, data); err != nil {
		return nil, err
	}

	data, err = EncodeLocations(locations)
	if err != nil {
		return nil, err
	}
	if err := w.writeFile(manifest, LocationsFile, data); err != nil {
		return nil, err
	}

	if err := w.writeSprites(manifest, creatures); err != nil {
		return nil, err
	}

	data, err = json.MarshalIndent(manifest, "", indent)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := w.writeRaw(ManifestFile, data); err != nil {
		return nil, err
	}
	return manifest, nil
}

// WritePatch stores the applied patch in the output directory.
func (w *Writer) WritePatch(patch []byte) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", w.dir, err)
	}
	return w.writeRaw(PatchFile, patch)
}

func (w *Writer) writeSprites(manifest *Manifest, creatures []creature.Creature) error {
	created := false
	for _, c := range creatures {
		if c.Sprite == nil {
			continue
		}
		if !created {
			if err := os.MkdirAll(filepath.Join(w.dir, SpritesDir), 0o755); err != nil {
				return fmt.Errorf("creating sprite directory: %w", err)
			}
			created = true
		}

		if err := w.writeFile(manifest, SpriteName(c.Index), c.Sprite); err != nil {
			return err
		}
		manifest.Sprites++
	}
	return nil
}

func (w *Writer) writeFile(manifest *Manifest, name string, data []byte) error {
	if err := w.writeRaw(name, data); err != nil {
		return err
	}
	manifest.Files = append(manifest.Files, File{
		Name:   filepath.ToSlash(name),
		Size:   len(data),
		Digest: fmt.Sprintf("%016x", xxhash.Sum64(data)),
	})
	return nil
}

func (w *Writer) writeRaw(name string, data []byte) error {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	w.logger.Debug("Wrote file", log.String("file", path), log.Int("size", len(data)))
	return nil
}
