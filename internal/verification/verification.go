// Package verification verifies that the extraction is deterministic by
// comparing the digests of two independent extraction passes.
package verification

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/retroenv/retrodex/internal/creature"
	"github.com/retroenv/retrodex/internal/wild"
	"github.com/retroenv/retrodex/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Digests contains per entry digests of the encoded output of one extraction.
type Digests struct {
	Creatures []uint64
	Sprites   []uint64
	Locations []uint64
}

// Extract runs one extraction pass.
type Extract func(ctx context.Context) ([]creature.Creature, []wild.Location, error)

// Compute returns the digests of the encoded creatures, sprites and locations.
func Compute(creatures []creature.Creature, locations []wild.Location) (Digests, error) {
	d := Digests{
		Creatures: make([]uint64, len(creatures)),
		Sprites:   make([]uint64, len(creatures)),
		Locations: make([]uint64, len(locations)),
	}

	for i := range creatures {
		b, err := writer.EncodeCreatures(creatures[i : i+1])
		if err != nil {
			return Digests{}, err
		}
		d.Creatures[i] = xxhash.Sum64(b)
		d.Sprites[i] = xxhash.Sum64(creatures[i].Sprite)
	}
	for i := range locations {
		b, err := writer.EncodeLocations(locations[i : i+1])
		if err != nil {
			return Digests{}, err
		}
		d.Locations[i] = xxhash.Sum64(b)
	}
	return d, nil
}

// VerifyOutput runs the extraction again and compares the digests of its
// output with the expected digests of a previous pass.
func VerifyOutput(ctx context.Context, logger *log.Logger, expected Digests, extract Extract) error {
	creatures, locations, err := extract(ctx)
	if err != nil {
		return fmt.Errorf("running verification pass: %w", err)
	}

	got, err := Compute(creatures, locations)
	if err != nil {
		return err
	}

	if err := checkDigestsEqual(logger, "creature", expected.Creatures, got.Creatures); err != nil {
		return fmt.Errorf("creature table mismatch: %w", err)
	}
	if err := checkDigestsEqual(logger, "sprite", expected.Sprites, got.Sprites); err != nil {
		return fmt.Errorf("sprite mismatch: %w", err)
	}
	if err := checkDigestsEqual(logger, "location", expected.Locations, got.Locations); err != nil {
		return fmt.Errorf("wild location mismatch: %w", err)
	}
	return nil
}

func checkDigestsEqual(logger *log.Logger, kind string, expected, got []uint64) error {
	if len(expected) != len(got) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(expected), len(got))
	}

	var diffs uint64
	for i := range expected {
		if expected[i] == got[i] {
			continue
		}

		diffs++
		if diffs < 10 {
			logger.Error("Digest mismatch",
				log.String("table", kind),
				log.Int("index", i),
				log.Hex("expected", expected[i]),
				log.Hex("got", got[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d entry mismatches", diffs)
}
