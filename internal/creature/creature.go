// Package creature extracts the creature table of a cartridge image. Every
// per creature table is decoded independently and the results are joined by
// their table index, there is no explicit foreign key in the image.
package creature

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/retroenv/retrodex/internal/config"
	"github.com/retroenv/retrodex/internal/rom"
	"github.com/retroenv/retrodex/internal/stage"
	"github.com/retroenv/retrogolib/log"
)

// ReservedIndex is the first table entry. It carries incomplete data in the
// image: it has no dex number and decoding its sprite corrupts the palette,
// so both are skipped for this index only.
const ReservedIndex = 0

// Stats contains the battle stats of a creature with resolved type and ability names.
type Stats struct {
	HP        int `json:"hp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_atk"`
	SpDefense int `json:"sp_def"`
	Speed     int `json:"speed"`

	Type1 string `json:"type_1"`
	Type2 string `json:"type_2"`

	Ability1 string `json:"ability_1"`
	Ability2 string `json:"ability_2"`
}

// LevelUpMove is a move learned when reaching a level.
type LevelUpMove struct {
	Move  string `json:"move"`
	Level int    `json:"level"`
}

// DexEntry contains the dex text of a creature.
type DexEntry struct {
	Species string `json:"species"`
	Text    string `json:"dex_entry"`
}

// Creature is the normalized aggregate of all tables for one table index.
type Creature struct {
	Index        int           `json:"index"`
	Name         string        `json:"name"`
	Stats        Stats         `json:"stats"`
	LevelUpMoves []LevelUpMove `json:"level_up_moves"`
	Sprite       []byte        `json:"-"` // PNG image, written as separate file
	DexNumber    int           `json:"dex_number"`
	Dex          *DexEntry     `json:"dex_data"`
}

// SpriteDecoder converts the compressed sprite and palette data referenced by
// two bus addresses into an image.
type SpriteDecoder interface {
	Decode(src io.ReaderAt, spritePointer, palettePointer uint32) ([]byte, error)
}

// Extractor decodes the creature tables of an image.
type Extractor struct {
	logger  *log.Logger
	layout  config.Layout
	sprites SpriteDecoder
}

// New returns an extractor for the given layout. If sprites is nil no sprites
// are decoded.
func New(logger *log.Logger, layout config.Layout, sprites SpriteDecoder) *Extractor {
	return &Extractor{
		logger:  logger,
		layout:  layout,
		sprites: sprites,
	}
}

// lookup tables that the creature tables reference by index.
type references struct {
	moveNames    []string
	abilityNames []string
	typeNames    []string
	dexEntries   []DexEntry
}

// per creature tables, all indexed by table index.
type tables struct {
	names      []string
	stats      []Stats
	moves      [][]LevelUpMove
	sprites    [][]byte
	dexNumbers []int
}

// Extract decodes all creatures of the image in table index order.
func (e *Extractor) Extract(ctx context.Context, space *rom.ROM) ([]Creature, error) {
	refs, err := e.decodeReferences(ctx, space)
	if err != nil {
		return nil, fmt.Errorf("decoding reference tables: %w", err)
	}

	tabs, err := e.decodeTables(ctx, space, refs)
	if err != nil {
		return nil, fmt.Errorf("decoding creature tables: %w", err)
	}

	creatures := make([]Creature, e.layout.CreatureCount)
	for i := range creatures {
		c := Creature{
			Index:        i,
			Name:         tabs.names[i],
			Stats:        tabs.stats[i],
			LevelUpMoves: tabs.moves[i],
			Sprite:       tabs.sprites[i],
			DexNumber:    tabs.dexNumbers[i],
		}

		if c.DexNumber < len(refs.dexEntries) {
			entry := refs.dexEntries[c.DexNumber]
			c.Dex = &entry
		} else {
			e.logger.Debug("Dex number has no dex entry",
				log.Int("index", i),
				log.String("name", c.Name),
				log.Int("dex_number", c.DexNumber))
		}
		creatures[i] = c
	}
	return creatures, nil
}

// decodeReferences decodes the tables that other tables refer to. They have no
// dependencies on each other and are decoded concurrently.
func (e *Extractor) decodeReferences(ctx context.Context, space *rom.ROM) (*references, error) {
	refs := &references{}
	offsets := e.layout.Offsets

	err := stage.Run(ctx,
		stage.Task{Name: "move names", Run: func(context.Context) error {
			var err error
			refs.moveNames, err = decodeNames(space, "move names", offsets.MoveNames, moveNameSchema, e.layout.MoveCount)
			return err
		}},
		stage.Task{Name: "ability names", Run: func(context.Context) error {
			var err error
			refs.abilityNames, err = decodeNames(space, "ability names", offsets.AbilityNames, moveNameSchema, e.layout.AbilityCount)
			return err
		}},
		stage.Task{Name: "type names", Run: func(context.Context) error {
			var err error
			refs.typeNames, err = decodeNames(space, "type names", offsets.TypeNames, typeNameSchema, e.layout.TypeCount)
			return err
		}},
		stage.Task{Name: "dex entries", Run: func(context.Context) error {
			var err error
			refs.dexEntries, err = decodeDexEntries(space, offsets.DexEntries, e.layout.DexLength)
			return err
		}},
	)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// decodeTables decodes all per creature tables concurrently.
func (e *Extractor) decodeTables(ctx context.Context, space *rom.ROM, refs *references) (*tables, error) {
	tabs := &tables{}
	offsets := e.layout.Offsets
	count := e.layout.CreatureCount

	err := stage.Run(ctx,
		stage.Task{Name: "creature names", Run: func(context.Context) error {
			var err error
			tabs.names, err = decodeNames(space, "creature names", offsets.Names, nameSchema, count)
			return err
		}},
		stage.Task{Name: "stats", Run: func(context.Context) error {
			var err error
			tabs.stats, err = e.decodeStats(space, refs)
			return err
		}},
		stage.Task{Name: "level up moves", Run: func(context.Context) error {
			var err error
			tabs.moves, err = e.decodeLevelUpMoves(space, refs.moveNames)
			return err
		}},
		stage.Task{Name: "sprites", Run: func(ctx context.Context) error {
			var err error
			tabs.sprites, err = e.decodeSprites(ctx, space)
			return err
		}},
		stage.Task{Name: "dex numbers", Run: func(context.Context) error {
			var err error
			tabs.dexNumbers, err = decodeDexNumbers(space, offsets.DexNumbers, count)
			return err
		}},
	)
	if err != nil {
		return nil, err
	}
	return tabs, nil
}

// decodeSprites decodes the sprite of every creature except the reserved one.
// Decompression dominates the extraction time so it is spread over all CPUs.
func (e *Extractor) decodeSprites(ctx context.Context, space *rom.ROM) ([][]byte, error) {
	count := e.layout.CreatureCount
	if e.sprites == nil {
		return make([][]byte, count), nil
	}

	spriteBase := rom.NewPointer(e.layout.Offsets.Sprites, spriteSchema)
	paletteBase := rom.NewPointer(e.layout.Offsets.Palettes, spriteSchema)

	return stage.Collect(ctx, "sprites", count, runtime.GOMAXPROCS(0),
		func(_ context.Context, i int) ([]byte, error) {
			if i == ReservedIndex {
				return nil, nil
			}

			sprite, err := space.Deref(spriteBase.Add(i))
			if err != nil {
				return nil, fmt.Errorf("reading sprite descriptor: %w", err)
			}
			palette, err := space.Deref(paletteBase.Add(i))
			if err != nil {
				return nil, fmt.Errorf("reading palette descriptor: %w", err)
			}

			img, err := e.sprites.Decode(space, sprite.Uint("data"), palette.Uint("data"))
			if err != nil {
				return nil, fmt.Errorf("decoding sprite: %w", err)
			}
			return img, nil
		})
}
