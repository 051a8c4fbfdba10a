// Package lookup answers name based queries on extracted data.
package lookup

import (
	"strings"

	"github.com/retroenv/retrodex/internal/creature"
	"github.com/retroenv/retrodex/internal/wild"
	"github.com/retroenv/retrogolib/set"
)

// Index provides case insensitive lookups of creatures and their wild locations.
type Index struct {
	creatures []creature.Creature
	locations []wild.Location
	byName    map[string][]int // lower case name to creature indexes
}

// New builds an index over the given data. The data must not be modified
// while the index is in use.
func New(creatures []creature.Creature, locations []wild.Location) *Index {
	idx := &Index{
		creatures: creatures,
		locations: locations,
		byName:    make(map[string][]int, len(creatures)),
	}
	for i, c := range creatures {
		if c.Name == "" {
			continue
		}
		name := strings.ToLower(c.Name)
		idx.byName[name] = append(idx.byName[name], i)
	}
	return idx
}

// Creatures returns all creatures with the given name in table order.
// Hacks can contain multiple entries with the same name, for example forms.
func (idx *Index) Creatures(name string) []creature.Creature {
	indexes := idx.byName[strings.ToLower(strings.TrimSpace(name))]
	result := make([]creature.Creature, 0, len(indexes))
	for _, i := range indexes {
		result = append(result, idx.creatures[i])
	}
	return result
}

// Locations returns the names of the locations where the creature can be
// encountered, per encounter method. Each location is listed once per method.
func (idx *Index) Locations(name string) map[wild.Method][]string {
	name = strings.ToLower(strings.TrimSpace(name))
	result := make(map[wild.Method][]string)

	for _, method := range wild.Methods {
		seen := set.New[string]()
		for i := range idx.locations {
			loc := &idx.locations[i]
			if seen.Contains(loc.Name) || !containsCreature(loc.Slots(method), name) {
				continue
			}
			seen.Add(loc.Name)
			result[method] = append(result[method], loc.Name)
		}
	}
	return result
}

// Mentioned returns the creatures whose names appear as words in the given
// text, each name once in order of appearance.
func (idx *Index) Mentioned(text string) []creature.Creature {
	seen := set.New[string]()
	var result []creature.Creature

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()")
		if seen.Contains(word) {
			continue
		}
		indexes, ok := idx.byName[word]
		if !ok {
			continue
		}
		seen.Add(word)
		result = append(result, idx.creatures[indexes[0]])
	}
	return result
}

func containsCreature(slots []wild.Slot, lowerName string) bool {
	for _, slot := range slots {
		if strings.ToLower(slot.Creature) == lowerName {
			return true
		}
	}
	return false
}
