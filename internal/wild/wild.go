// Package wild resolves the wild encounter tables of a cartridge image into
// named locations.
package wild

import (
	"context"
	"fmt"
	"runtime"

	"github.com/retroenv/retrodex/internal/config"
	"github.com/retroenv/retrodex/internal/creature"
	"github.com/retroenv/retrodex/internal/record"
	"github.com/retroenv/retrodex/internal/rom"
	"github.com/retroenv/retrodex/internal/stage"
	"github.com/retroenv/retrogolib/log"
)

// SpecialArea is the placeholder region name of maps that are not shown on
// the region map. Locations with this name are not part of the result.
const SpecialArea = "Special Area"

// Method is a way of encountering wild creatures.
type Method int

// Encounter methods in the order of the wild header pointers.
const (
	Grass Method = iota
	Surf
	Tree
	Fish
)

// Methods lists all encounter methods.
var Methods = []Method{Grass, Surf, Tree, Fish}

var methodNames = [...]string{
	Grass: "grass",
	Surf:  "surf",
	Tree:  "tree",
	Fish:  "fish",
}

func (m Method) String() string {
	if m >= 0 && int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// Slot is one entry of an encounter table.
type Slot struct {
	Creature string `json:"creature"`
	MinLevel int    `json:"min_level"`
	MaxLevel int    `json:"max_level"`
}

// Location contains the encounter tables of a map. A nil table means that
// the method is not available on the map.
type Location struct {
	Name string `json:"name"`
	Bank int    `json:"bank"`
	Map  int    `json:"map"`

	Grass []Slot `json:"grass"`
	Surf  []Slot `json:"surf"`
	Tree  []Slot `json:"tree"`
	Fish  []Slot `json:"fish"`
}

// Slots returns the encounter table of a method.
func (l *Location) Slots(m Method) []Slot {
	switch m {
	case Grass:
		return l.Grass
	case Surf:
		return l.Surf
	case Tree:
		return l.Tree
	case Fish:
		return l.Fish
	default:
		return nil
	}
}

func (l *Location) setSlots(m Method, slots []Slot) {
	switch m {
	case Grass:
		l.Grass = slots
	case Surf:
		l.Surf = slots
	case Tree:
		l.Tree = slots
	case Fish:
		l.Fish = slots
	}
}

// Resolver resolves the wild encounter tables of an image.
type Resolver struct {
	logger *log.Logger
	layout config.Layout
}

// New returns a resolver for the given layout.
func New(logger *log.Logger, layout config.Layout) *Resolver {
	return &Resolver{
		logger: logger,
		layout: layout,
	}
}

// resolved is a location before filtering, named is false if the region
// name could not be resolved.
type resolved struct {
	location Location
	named    bool
}

// Resolve returns all named locations in wild table order. Creature indexes
// of the encounter slots refer to the given creature table.
func (r *Resolver) Resolve(ctx context.Context, space *rom.ROM, creatures []creature.Creature) ([]Location, error) {
	var (
		names []regionEntry
		dir   directory
	)
	err := stage.Run(ctx,
		stage.Task{Name: "region names", Run: func(context.Context) error {
			var err error
			names, err = r.decodeRegionNames(space)
			return err
		}},
		stage.Task{Name: "map banks", Run: func(context.Context) error {
			var err error
			dir, err = r.decodeDirectory(space)
			return err
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("decoding map tables: %w", err)
	}

	base := rom.NewPointer(r.layout.Offsets.WildData, locationSchema)
	all, err := stage.Collect(ctx, "wild locations", r.layout.WildCount, runtime.GOMAXPROCS(0),
		func(_ context.Context, i int) (resolved, error) {
			rec, err := space.Deref(base.Add(i))
			if err != nil {
				return resolved{}, err
			}
			return r.resolveLocation(space, dir, names, creatures, rec)
		})
	if err != nil {
		return nil, fmt.Errorf("resolving wild locations: %w", err)
	}

	locations := make([]Location, 0, len(all))
	for i, res := range all {
		if !res.named || res.location.Name == SpecialArea {
			r.logger.Debug("Skipping wild location",
				log.Int("index", i),
				log.Int("bank", res.location.Bank),
				log.Int("map", res.location.Map),
				log.String("name", res.location.Name))
			continue
		}
		locations = append(locations, res.location)
	}
	return locations, nil
}

func (r *Resolver) resolveLocation(space *rom.ROM, dir directory, names []regionEntry,
	creatures []creature.Creature, rec record.Record) (resolved, error) {

	res := resolved{
		location: Location{
			Bank: int(rec.Uint("bank")),
			Map:  int(rec.Uint("map")),
		},
	}

	name, named, err := r.regionName(space, dir, names, res.location.Bank, res.location.Map)
	if err != nil {
		return resolved{}, err
	}
	res.location.Name = name
	res.named = named

	for _, method := range Methods {
		slots, err := r.resolveMethod(space, creatures, method, rec.Pointer(method.String()))
		if err != nil {
			return resolved{}, fmt.Errorf("%s encounters: %w", method, err)
		}
		res.location.setSlots(method, slots)
	}
	return res, nil
}

// regionName resolves the region map section of a map to its name.
// A map outside of the directory or a section with a null or missing name table entry
// results in an unnamed location.
func (r *Resolver) regionName(space *rom.ROM, dir directory, names []regionEntry, bank, mapID int) (string, bool, error) {
	header, ok := dir.header(bank, mapID)
	if !ok || header.IsNull() {
		return "", false, nil
	}
	rec, err := space.Deref(header)
	if err != nil {
		return "", false, fmt.Errorf("reading map header: %w", err)
	}

	index := int(rec.Uint("region_map_section_id")) - r.layout.MapsecsKanto
	if index < 0 || index >= len(names) || !names[index].present {
		return "", false, nil
	}
	return names[index].name, true, nil
}

// resolveMethod returns the encounter table of a method, nil if the method is
// not available. A method is not available if its pointer is null or the
// encounter rate is 0.
func (r *Resolver) resolveMethod(space *rom.ROM, creatures []creature.Creature, method Method, raw uint32) ([]Slot, error) {
	infoPointer := rom.NewPointer(raw, encounterInfoSchema)
	if infoPointer.IsNull() {
		return nil, nil
	}
	info, err := space.Deref(infoPointer)
	if err != nil {
		return nil, err
	}

	if info.Uint("rate") == 0 && (method == Grass || !r.layout.LegacyRateCheck) {
		return nil, nil
	}
	base := rom.NewPointer(info.Pointer("slots"), slotSchema)
	if base.IsNull() {
		return nil, nil
	}

	count := r.slotCount(method)
	slots := make([]Slot, count)
	for i := range slots {
		rec, err := space.Deref(base.Add(i))
		if err != nil {
			return nil, err
		}

		slot := Slot{
			MinLevel: int(rec.Uint("min_level")),
			MaxLevel: int(rec.Uint("max_level")),
		}
		index := int(rec.Uint("creature"))
		if index < len(creatures) {
			slot.Creature = creatures[index].Name
		} else {
			r.logger.Warn("Missing cross reference",
				log.String("table", "creature"),
				log.String("method", method.String()),
				log.Int("slot", i),
				log.Int("reference", index))
		}
		slots[i] = slot
	}
	return slots, nil
}

func (r *Resolver) slotCount(method Method) int {
	switch method {
	case Grass:
		return r.layout.GrassSlots
	case Surf:
		return r.layout.SurfSlots
	case Tree:
		return r.layout.TreeSlots
	default:
		return r.layout.FishSlots
	}
}
