package wild

import "github.com/retroenv/retrodex/internal/record"

const (
	// mapHeaderListEnd terminates the map header pointer list of a bank.
	mapHeaderListEnd = 0xF7F7F7F7
	mapNameWidth     = 128 // over-read, decoding stops at the terminator
)

var (
	locationSchema = record.MustSchema("WildHeader",
		record.Uint8("bank"),
		record.Uint8("map"),
		record.Uint16("unused"),
		record.Ptr("grass"),
		record.Ptr("surf"),
		record.Ptr("tree"),
		record.Ptr("fish"),
	)

	encounterInfoSchema = record.MustSchema("WildEncounterInfo",
		record.Uint32("rate"),
		record.Ptr("slots"),
	)

	slotSchema = record.MustSchema("WildEncounterSlot",
		record.Uint8("min_level"),
		record.Uint8("max_level"),
		record.Uint16("creature"),
	)

	bankSchema          = record.MustSchema("MapBank", record.Ptr("headers"))
	headerPointerSchema = record.MustSchema("MapHeaderPointer", record.Ptr("header"))

	// only the region map section is used, the other fields are decoded to
	// keep the record size intact.
	mapHeaderSchema = record.MustSchema("MapHeader",
		record.Uint32("map_layout"),
		record.Uint32("events"),
		record.Uint32("map_scripts"),
		record.Uint32("connections"),
		record.Uint16("music"),
		record.Uint16("map_layout_id"),
		record.Uint8("region_map_section_id"),
		record.Uint8("cave"),
		record.Uint8("weather"),
		record.Uint8("map_type"),
		record.Uint8("unused"),
		record.Uint8("use_label"),
	)

	mapNamePointerSchema = record.MustSchema("MapNamePointer", record.Ptr("name"))
	mapNameSchema        = record.MustSchema("MapName", record.Array("name", mapNameWidth))
)
