package creature

import "github.com/retroenv/retrodex/internal/record"

// string table widths
const (
	nameWidth     = 11
	moveNameWidth = 13 // also used by the ability name table
	typeNameWidth = 7
	speciesWidth  = 12
	dexTextWidth  = 128 // over-read, decoding stops at the terminator
)

var (
	nameSchema     = record.MustSchema("CreatureName", record.Array("name", nameWidth))
	moveNameSchema = record.MustSchema("MoveName", record.Array("name", moveNameWidth))
	typeNameSchema = record.MustSchema("TypeName", record.Array("name", typeNameWidth))

	statsSchema = record.MustSchema("BaseStats",
		record.Uint8("hp"),
		record.Uint8("attack"),
		record.Uint8("defense"),
		record.Uint8("speed"),
		record.Uint8("sp_atk"),
		record.Uint8("sp_def"),
		record.Uint8("type_1"),
		record.Uint8("type_2"),
		record.Uint8("catch_rate"),
		record.Uint8("base_exp"),
		record.Uint16("ev_yield"),
		record.Uint16("item_1"),
		record.Uint16("item_2"),
		record.Uint8("gender_ratio"),
		record.Uint8("steps_to_hatch"),
		record.Uint8("base_happiness"),
		record.Uint8("growth_rate"),
		record.Uint8("egg_1"),
		record.Uint8("egg_2"),
		record.Uint8("ability_1"),
		record.Uint8("ability_2"),
		record.Uint8("run_rate"),
		record.Uint8("dex_color"),
		record.Uint16("padding"),
	)

	levelUpPointerSchema = record.MustSchema("LevelUpMovesPointer", record.Ptr("moves"))
	levelUpMoveSchema    = record.MustSchema("LevelUpMove", record.Uint16("data"))

	dexEntrySchema = record.MustSchema("DexEntry",
		record.Array("species", speciesWidth),
		record.Uint16("height"),
		record.Uint16("weight"),
		record.Ptr("description"),
		record.Ptr("description_2"), // unused in FireRed
		record.Uint16("unused"),
		record.Uint16("scale"),
		record.Uint16("offset"),
		record.Uint16("trainer_scale"),
		record.Uint16("trainer_offset"),
		record.Uint16("unused_2"),
	)
	dexTextSchema = record.MustSchema("DexText", record.Array("text", dexTextWidth))

	dexNumberSchema = record.MustSchema("DexNumber", record.Uint16("number"))

	// the sprite data pointer is not typed, the compressed size varies
	spriteSchema = record.MustSchema("SpriteDescriptor",
		record.Uint32("data"),
		record.Uint16("size"),
		record.Uint16("tag"),
	)
)
