package config

import (
	"errors"
	"fmt"
)

// Offsets contains the bus addresses of all tables read from the image.
type Offsets struct {
	Sprites      uint32 `json:"sprites"`
	Palettes     uint32 `json:"palettes"`
	Stats        uint32 `json:"stats"`
	Names        uint32 `json:"names"`
	MoveNames    uint32 `json:"move_names"`
	LevelUpMoves uint32 `json:"level_up_moves"` // HMA: data.pokemon.moves.levelup
	DexEntries   uint32 `json:"dex_entries"`    // HMA: data.pokedex.stats
	AbilityNames uint32 `json:"ability_names"`
	TypeNames    uint32 `json:"type_names"`
	DexNumbers   uint32 `json:"dex_numbers"` // HMA: data.pokedex.national
	MapBanks     uint32 `json:"map_banks"`
	MapNames     uint32 `json:"map_names"`
	WildData     uint32 `json:"wild_data"`
}

// Layout describes where and how the tables of one specific image are stored.
type Layout struct {
	Offsets Offsets `json:"offsets"`

	CreatureCount int `json:"creature_count"`
	MoveCount     int `json:"move_count"`
	DexLength     int `json:"dex_length"`
	AbilityCount  int `json:"ability_count"`
	TypeCount     int `json:"type_count"`

	MapBankCount int `json:"map_bank_count"`
	// MapsecsKanto is the first region map section id, section id minus this
	// value is the index into the map name table.
	MapsecsKanto int `json:"mapsecs_kanto"`
	MapNameCount int `json:"map_name_count"`
	WildCount    int `json:"wild_count"`

	GrassSlots int `json:"grass_slots"`
	SurfSlots  int `json:"surf_slots"`
	TreeSlots  int `json:"tree_slots"`
	FishSlots  int `json:"fish_slots"`

	// MaxListLength bounds the walk over sentinel terminated arrays.
	MaxListLength int `json:"max_list_length"`
	// LegacyRateCheck only treats a zero encounter rate as absent for grass
	// encounters, matching data sets extracted by earlier releases.
	LegacyRateCheck bool `json:"legacy_rate_check"`
}

// DefaultLayout returns the layout of the reference hack built on FireRed.
func DefaultLayout() Layout {
	return Layout{
		Offsets: Offsets{
			Sprites:      0x082350AC,
			Palettes:     0x0823730C,
			Stats:        0x08254784,
			Names:        0x08245EE0,
			MoveNames:    0x08247094,
			LevelUpMoves: 0x0825D7B4,
			DexEntries:   0x0844E850,
			AbilityNames: 0x08879280,
			TypeNames:    0x0824F1A0,
			DexNumbers:   0x08251FEE,
			MapBanks:     0x087F1E8C,
			MapNames:     0x083F1CAC,
			WildData:     0x087D9000,
		},

		CreatureCount: 412,
		MoveCount:     355,
		DexLength:     386,
		AbilityCount:  90,
		TypeCount:     18,

		MapBankCount: 46, // vanilla FireRed has 43
		MapsecsKanto: 0x58,
		MapNameCount: 109, // MAPSEC_SPECIAL_AREA - MAPSECS_KANTO + 1
		WildCount:    172,

		GrassSlots: 12,
		SurfSlots:  5,
		TreeSlots:  5,
		FishSlots:  10,

		MaxListLength: 1024,
	}
}

// Profiles maps GBA game codes to their layout.
var Profiles = map[string]func() Layout{
	"BPRE": DefaultLayout,
}

// Profile returns the layout for a game code.
func Profile(gameCode string) (Layout, bool) {
	fn, ok := Profiles[gameCode]
	if !ok {
		return Layout{}, false
	}
	return fn(), true
}

// Validate checks that all table sizes are usable.
func (l Layout) Validate() error {
	counts := []struct {
		name  string
		value int
	}{
		{"creature_count", l.CreatureCount},
		{"move_count", l.MoveCount},
		{"dex_length", l.DexLength},
		{"ability_count", l.AbilityCount},
		{"type_count", l.TypeCount},
		{"map_bank_count", l.MapBankCount},
		{"map_name_count", l.MapNameCount},
		{"grass_slots", l.GrassSlots},
		{"surf_slots", l.SurfSlots},
		{"tree_slots", l.TreeSlots},
		{"fish_slots", l.FishSlots},
		{"max_list_length", l.MaxListLength},
	}

	var errs []error
	for _, count := range counts {
		if count.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", count.name, count.value))
		}
	}
	if l.WildCount < 0 {
		errs = append(errs, fmt.Errorf("wild_count must not be negative, got %d", l.WildCount))
	}
	if l.MapsecsKanto < 0 || l.MapsecsKanto > 0xFF {
		errs = append(errs, fmt.Errorf("mapsecs_kanto must be a byte value, got %d", l.MapsecsKanto))
	}
	return errors.Join(errs...)
}
