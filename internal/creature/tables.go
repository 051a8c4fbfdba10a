package creature

import (
	"fmt"

	"github.com/retroenv/retrodex/internal/record"
	"github.com/retroenv/retrodex/internal/rom"
	"github.com/retroenv/retrodex/internal/stage"
	"github.com/retroenv/retrodex/internal/text"
	"github.com/retroenv/retrogolib/log"
)

// level up move records pack the move index into the low 9 bits and the level
// into the remaining high bits.
const (
	moveIndexBits = 9
	moveIndexMask = 1<<moveIndexBits - 1
	movesEnd      = 0xFFFF
)

// UnpackLevelUpMove splits a level up move record into move index and level.
func UnpackLevelUpMove(data uint16) (move, level int) {
	return int(data & moveIndexMask), int(data >> moveIndexBits)
}

func decodeNames(space *rom.ROM, table string, address uint32, schema *record.Schema, count int) ([]string, error) {
	base := rom.NewPointer(address, schema)
	return stage.Table(table, count, func(i int) (string, error) {
		rec, err := space.Deref(base.Add(i))
		if err != nil {
			return "", err
		}
		return text.Decode(rec.Bytes("name")), nil
	})
}

func decodeDexEntries(space *rom.ROM, address uint32, count int) ([]DexEntry, error) {
	base := rom.NewPointer(address, dexEntrySchema)
	return stage.Table("dex entries", count, func(i int) (DexEntry, error) {
		rec, err := space.Deref(base.Add(i))
		if err != nil {
			return DexEntry{}, err
		}

		entry := DexEntry{
			Species: text.Decode(rec.Bytes("species")),
		}

		description := rom.NewPointer(rec.Pointer("description"), dexTextSchema)
		if description.IsNull() {
			return entry, nil
		}
		b, err := space.Tail(description.Offset(), dexTextWidth)
		if err != nil {
			return DexEntry{}, fmt.Errorf("reading dex text: %w", err)
		}
		entry.Text = text.Decode(b)
		return entry, nil
	})
}

// decodeDexNumbers reads the national dex number table. The table in the
// image starts at the second creature, a 0 is prepended for the reserved
// index so that the result is aligned with all other tables.
func decodeDexNumbers(space *rom.ROM, address uint32, count int) ([]int, error) {
	base := rom.NewPointer(address, dexNumberSchema)
	numbers, err := stage.Table("dex numbers", count-1, func(i int) (int, error) {
		rec, err := space.Deref(base.Add(i))
		if err != nil {
			return 0, err
		}
		return int(rec.Uint("number")), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]int{ReservedIndex}, numbers...), nil
}

func (e *Extractor) decodeStats(space *rom.ROM, refs *references) ([]Stats, error) {
	base := rom.NewPointer(e.layout.Offsets.Stats, statsSchema)
	return stage.Table("stats", e.layout.CreatureCount, func(i int) (Stats, error) {
		rec, err := space.Deref(base.Add(i))
		if err != nil {
			return Stats{}, err
		}

		return Stats{
			HP:        int(rec.Uint("hp")),
			Attack:    int(rec.Uint("attack")),
			Defense:   int(rec.Uint("defense")),
			SpAttack:  int(rec.Uint("sp_atk")),
			SpDefense: int(rec.Uint("sp_def")),
			Speed:     int(rec.Uint("speed")),

			Type1: e.resolveName(refs.typeNames, "type", i, rec.Uint("type_1")),
			Type2: e.resolveName(refs.typeNames, "type", i, rec.Uint("type_2")),

			Ability1: e.resolveName(refs.abilityNames, "ability", i, rec.Uint("ability_1")),
			Ability2: e.resolveName(refs.abilityNames, "ability", i, rec.Uint("ability_2")),
		}, nil
	})
}

// resolveName returns the name at index of a name table. A missing entry only
// affects the single field, it is logged and left empty.
func (e *Extractor) resolveName(names []string, kind string, creature int, index uint32) string {
	if int(index) < len(names) {
		return names[index]
	}
	e.logger.Warn("Missing cross reference",
		log.String("table", kind),
		log.Int("creature", creature),
		log.Int("reference", int(index)))
	return ""
}

func (e *Extractor) decodeLevelUpMoves(space *rom.ROM, moveNames []string) ([][]LevelUpMove, error) {
	base := rom.NewPointer(e.layout.Offsets.LevelUpMoves, levelUpPointerSchema)
	isEnd := func(rec record.Record) bool {
		return rec.Uint("data") == movesEnd
	}

	return stage.Table("level up moves", e.layout.CreatureCount, func(i int) ([]LevelUpMove, error) {
		rec, err := space.Deref(base.Add(i))
		if err != nil {
			return nil, err
		}
		list := rom.NewPointer(rec.Pointer("moves"), levelUpMoveSchema)
		if list.IsNull() {
			return []LevelUpMove{}, nil
		}

		moves := []LevelUpMove{}
		var moveErr error
		err = space.Walk(list, e.layout.MaxListLength, isEnd, func(rec record.Record) bool {
			move, level := UnpackLevelUpMove(uint16(rec.Uint("data")))
			if move >= len(moveNames) {
				moveErr = fmt.Errorf("%w: move index %d exceeds move table of %d entries",
					rom.ErrOutOfRange, move, len(moveNames))
				return false
			}
			moves = append(moves, LevelUpMove{Move: moveNames[move], Level: level})
			return true
		})
		if err != nil {
			return nil, err
		}
		if moveErr != nil {
			return nil, moveErr
		}
		return moves, nil
	})
}
