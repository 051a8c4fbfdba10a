package wild

import (
	"fmt"

	"github.com/retroenv/retrodex/internal/record"
	"github.com/retroenv/retrodex/internal/rom"
	"github.com/retroenv/retrodex/internal/stage"
	"github.com/retroenv/retrodex/internal/text"
)

// directory contains the map header pointers of every map bank, indexed by
// bank and map number.
type directory [][]rom.Pointer

// header returns the map header pointer of a map, false if the map is not
// part of the directory.
func (d directory) header(bank, mapID int) (rom.Pointer, bool) {
	if bank >= len(d) || mapID >= len(d[bank]) {
		return rom.Pointer{}, false
	}
	return d[bank][mapID], true
}

// regionEntry is an entry of the region name table. An empty name is still a
// name, only a null pointer marks an absent entry.
type regionEntry struct {
	name    string
	present bool
}

func (r *Resolver) decodeRegionNames(space *rom.ROM) ([]regionEntry, error) {
	base := rom.NewPointer(r.layout.Offsets.MapNames, mapNamePointerSchema)
	return stage.Table("region names", r.layout.MapNameCount, func(i int) (regionEntry, error) {
		rec, err := space.Deref(base.Add(i))
		if err != nil {
			return regionEntry{}, err
		}
		name := rom.NewPointer(rec.Pointer("name"), mapNameSchema)
		if name.IsNull() {
			return regionEntry{}, nil
		}
		b, err := space.Tail(name.Offset(), mapNameWidth)
		if err != nil {
			return regionEntry{}, fmt.Errorf("reading region name: %w", err)
		}
		return regionEntry{name: text.Decode(b), present: true}, nil
	})
}

// decodeDirectory walks the header pointer list of every bank up to its
// terminator. A null bank has no maps.
func (r *Resolver) decodeDirectory(space *rom.ROM) (directory, error) {
	base := rom.NewPointer(r.layout.Offsets.MapBanks, bankSchema)
	isEnd := func(rec record.Record) bool {
		return rec.Pointer("header") == mapHeaderListEnd
	}

	return stage.Table("map banks", r.layout.MapBankCount, func(i int) ([]rom.Pointer, error) {
		rec, err := space.Deref(base.Add(i))
		if err != nil {
			return nil, err
		}
		list := rom.NewPointer(rec.Pointer("headers"), headerPointerSchema)
		if list.IsNull() {
			return nil, nil
		}

		var headers []rom.Pointer
		err = space.Walk(list, r.layout.MaxListLength, isEnd, func(rec record.Record) bool {
			headers = append(headers, rom.NewPointer(rec.Pointer("header"), mapHeaderSchema))
			return true
		})
		if err != nil {
			return nil, err
		}
		return headers, nil
	})
}
