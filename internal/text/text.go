// Package text decodes the proprietary 8 bit character encoding used for
// strings stored in the cartridge image.
package text

import "strings"

// Terminator ends every string in the image.
const Terminator = 0xFF

// table maps every byte value to its UTF-8 fragment. Control codes that have
// no printable form map to the empty fragment, escape style placeholders are
// kept for codes that render as symbols in game.
var table = [256]string{
	" ", "À", "Á", "Â", "Ç", "È", "É", "Ê",                    // 0x00
	"Ë", "Ì", "", "Î", "Ï", "Ò", "Ó", "Ô",                     // 0x08
	"Œ", "Ù", "Ú", "Û", "Ñ", "ß", "à", "á",                    // 0x10
	"", "ç", "è", "é", "ê", "ë", "ì", "",                      // 0x18
	"î", "ï", "ò", "ó", "ô", "œ", "ù", "ú",                    // 0x20
	"û", "ñ", "º", "ª", "\\e", "&", "\\+", "",                 // 0x28
	"", "", "", "", "\\Lv", "=", ";", "",                      // 0x30
	"", "", "", "", "", "", "", "",                            // 0x38
	"", "", "", "", "", "", "", "",                            // 0x40
	"\\r", "", "", "", "", "", "", "",                         // 0x48
	"", "¿", "¡", "\\pk", "\\mn", "\\Po", "\\Ke", "\\Bl",      // 0x50
	"\\Lo", "\\Ck", "Í", "%", "(", ")", "", "",                // 0x58
	"", "", "", "", "", "", "", "",                            // 0x60
	"â", "", "", "", "", "", "", "í",                          // 0x68
	"", "", "", "", "", "", "", "",                            // 0x70
	"", "\\au", "\\ad", "\\al", "\\ar", "", "", "",            // 0x78
	"", "", "", "", "\\d", "\\<", "\\>", "",                   // 0x80
	"", "", "", "", "", "", "", "",                            // 0x88
	"", "", "", "", "", "", "", "",                            // 0x90
	"", "", "", "", "", "", "", "",                            // 0x98
	"", "0", "1", "2", "3", "4", "5", "6",                     // 0xA0
	"7", "8", "9", "!", "?", ".", "-", "‧",                    // 0xA8
	".", "\\qo", "\\qc", "‘", "'", "\\sm", "\\sf", "$",        // 0xB0
	",", "*", "/", "A", "B", "C", "D", "E",                    // 0xB8
	"F", "G", "H", "I", "J", "K", "L", "M",                    // 0xC0
	"N", "O", "P", "Q", "R", "S", "T", "U",                    // 0xC8
	"V", "W", "X", "Y", "Z", "a", "b", "c",                    // 0xD0
	"d", "e", "f", "g", "h", "i", "j", "k",                    // 0xD8
	"l", "m", "n", "o", "p", "q", "r", "s",                    // 0xE0
	"t", "u", "v", "w", "x", "y", "z", "",                     // 0xE8
	":", "Ä", "Ö", "Ü", "ä", "ö", "ü", "\\?",                  // 0xF0
	"\\btn", "\\9", "\\l", "\\pn", "\\CC", "\\\\", "\n", "\"", // 0xF8
}

// Decode converts an encoded string to UTF-8. Input is truncated at the
// first terminator byte. Every byte value has a table entry so decoding
// can not fail.
func Decode(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == Terminator {
			break
		}
		sb.WriteString(table[c])
	}
	return sb.String()
}
