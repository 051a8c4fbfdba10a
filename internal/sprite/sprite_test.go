package sprite

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// compress encodes data with literal blocks only.
func compress(data []byte) []byte {
	out := []byte{lz77Type, byte(len(data)), byte(len(data) >> 8), byte(len(data) >> 16)}
	for i := 0; i < len(data); i += 8 {
		out = append(out, 0)
		out = append(out, data[i:min(i+8, len(data))]...)
	}
	return out
}

func TestDecompress(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{"literals", compress([]byte("literal data block")), []byte("literal data block")},
		{"back reference", []byte{0x10, 6, 0, 0, 0x20, 'a', 'b', 0x10, 0x01}, []byte("ababab")},
		{"overlapping run", []byte{0x10, 5, 0, 0, 0x40, 'z', 0x10, 0x00}, []byte("zzzzz")},
		{"empty", []byte{0x10, 0, 0, 0}, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Decompress(bytes.NewReader(tt.input), 0)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestDecompressOffset(t *testing.T) {
	data := append([]byte{0xEE, 0xEE}, compress([]byte{1, 2, 3})...)

	out, err := Decompress(bytes.NewReader(data), 2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, out)
}

func TestDecompressErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"wrong type", []byte{0x30, 1, 0, 0, 0, 1}},
		{"short header", []byte{0x10, 1}},
		{"truncated", []byte{0x10, 4, 0, 0, 0, 1, 2}},
		{"reference before start", []byte{0x10, 4, 0, 0, 0x80, 0x10, 0x05}},
		{"too large", []byte{0x10, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(bytes.NewReader(tt.input), 0)
			assert.True(t, errors.Is(err, ErrInvalidData))
		})
	}
}

func TestDecode(t *testing.T) {
	// one 8x8 tile, pixel (0,0) uses the transparent color, all others color 1
	tile := bytes.Repeat([]byte{0x11}, tileBytes)
	tile[0] = 0x10
	palette := make([]byte, 2*paletteColors)
	palette[0], palette[1] = 0xFF, 0x7F // white, ignored
	palette[2], palette[3] = 0x1F, 0x00 // red

	data := append(compress(tile), compress(palette)...)
	paletteOffset := uint32(len(compress(tile)))

	d := &Decoder{Width: 8, Height: 8, Scale: 2}
	b, err := d.Decode(bytes.NewReader(data), 0x08000000, 0x08000000|paletteOffset)
	assert.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	assert.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())

	at := func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
	assert.Equal(t, uint8(0), at(0, 0).A)
	assert.Equal(t, uint8(0), at(1, 1).A)
	assert.Equal(t, color.NRGBA{R: 0xF8, A: 0xFF}, at(2, 0))
	assert.Equal(t, color.NRGBA{R: 0xF8, A: 0xFF}, at(15, 15))
}

func TestDecodeShortSprite(t *testing.T) {
	data := compress([]byte{1, 2, 3})
	d := NewDecoder()

	_, err := d.Decode(bytes.NewReader(data), 0x08000000, 0x08000000)
	assert.True(t, errors.Is(err, ErrInvalidData))
	assert.ErrorContains(t, err, "sprite has 3 bytes")
}

func TestDecodePalette(t *testing.T) {
	data := make([]byte, 2*paletteColors)
	// blue 31, green 16, red 1
	data[2], data[3] = 0x01, 0x7E

	palette, err := decodePalette(data)
	assert.NoError(t, err)
	assert.Len(t, palette, paletteColors)
	assert.Equal(t, color.NRGBA{}, palette[0])
	assert.Equal(t, color.NRGBA{R: 0x08, G: 0x80, B: 0xF8, A: 0xFF}, palette[1])

	_, err = decodePalette(data[:4])
	assert.True(t, errors.Is(err, ErrInvalidData))
}
