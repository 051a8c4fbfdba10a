package romtest

import (
	"testing"

	"github.com/retroenv/retrodex/internal/config"
)

// image offsets of the tables of the minimal cartridge
const (
	namesOffset        = 0x100
	moveNamesOffset    = 0x120
	abilityNamesOffset = 0x140
	typeNamesOffset    = 0x160
	statsOffset        = 0x180
	levelUpOffset      = 0x1C0
	dexEntriesOffset   = 0x200
	dexNumbersOffset   = 0x240
	mapNamesOffset     = 0x280
	banksOffset        = 0x300
	bankListOffset     = 0x310
	mapHeaderOffset    = 0x340
	wildOffset         = 0x380
	infoOffset         = 0x3A0
	slotsOffset        = 0x3B0
	mapNameText        = 0x400

	regionSectionField = 20 // byte offset of the region map section in a map header
)

// CartridgeSize is the size of the minimal cartridge image.
const CartridgeSize = 0x600

// CartridgeLayout returns the layout of the minimal cartridge.
func CartridgeLayout() config.Layout {
	layout := config.DefaultLayout()
	layout.Offsets = config.Offsets{
		Stats:        Addr(statsOffset),
		Names:        Addr(namesOffset),
		MoveNames:    Addr(moveNamesOffset),
		LevelUpMoves: Addr(levelUpOffset),
		DexEntries:   Addr(dexEntriesOffset),
		AbilityNames: Addr(abilityNamesOffset),
		TypeNames:    Addr(typeNamesOffset),
		DexNumbers:   Addr(dexNumbersOffset),
		MapBanks:     Addr(banksOffset),
		MapNames:     Addr(mapNamesOffset),
		WildData:     Addr(wildOffset),
	}
	layout.CreatureCount = 2
	layout.MoveCount = 1
	layout.DexLength = 1
	layout.AbilityCount = 1
	layout.TypeCount = 1
	layout.MapBankCount = 1
	layout.MapNameCount = 1
	layout.WildCount = 1
	layout.GrassSlots = 1
	layout.MaxListLength = 8
	return layout
}

// Cartridge returns a minimal complete image with the game code TEST, the
// reserved creature, one named creature and the wild location "Route 1"
// with a single grass slot for that creature at level 3 to 4.
func Cartridge(tb testing.TB, creatureName string) []byte {
	tb.Helper()
	im := New(tb, CartridgeSize)

	im.Put(0xA0, []byte("RETRODEX"))
	im.Put(0xAC, []byte("TEST"))
	im.Put(0xB0, []byte("01"))
	im.Put(0xB2, []byte{0x96})

	im.Put(Addr(namesOffset), Text(tb, "None", 11))
	im.Put(Addr(namesOffset+11), Text(tb, creatureName, 11))
	im.Put(Addr(moveNamesOffset), Text(tb, "Pound", 13))
	im.Put(Addr(abilityNamesOffset), Text(tb, "Stench", 13))
	im.Put(Addr(typeNamesOffset), Text(tb, "Normal", 7))
	im.Put(Addr(dexEntriesOffset), Text(tb, "Seed", 12))

	im.PutPointers(Addr(mapNamesOffset), Addr(mapNameText))
	im.Put(Addr(mapNameText), Text(tb, "Route 1", 0x20))
	im.PutPointers(Addr(banksOffset), Addr(bankListOffset))
	im.PutPointers(Addr(bankListOffset), Addr(mapHeaderOffset), 0xF7F7F7F7)
	im.Put(Addr(mapHeaderOffset+regionSectionField), []byte{0x58})

	im.PutPointers(Addr(wildOffset+4), Addr(infoOffset))
	im.PutPointers(Addr(infoOffset), 10, Addr(slotsOffset))
	im.Put(Addr(slotsOffset), []byte{3, 4, 1, 0})
	return im.Bytes()
}
