// Package sprite converts the compressed 4bpp front sprites and palettes of a
// cartridge image into PNG images.
package sprite

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/retroenv/retrodex/internal/rom"
	"golang.org/x/image/draw"
)

const (
	tileSize      = 8
	tileBytes     = tileSize * tileSize / 2
	paletteColors = 16
	// colors are stored as 5 bit components, shifting them brightens the
	// image to the 8 bit range.
	brightness = 3
)

// Decoder decodes sprites of a fixed size.
type Decoder struct {
	Width  int // in pixels, a multiple of the tile size
	Height int
	Scale  int
}

// NewDecoder returns a decoder for 64x64 front sprites that are scaled to 256x256.
func NewDecoder() *Decoder {
	return &Decoder{
		Width:  64,
		Height: 64,
		Scale:  4,
	}
}

// Decode decompresses the sprite and palette at the given bus addresses and
// returns the PNG encoded image. Palette color 0 is transparent.
func (d *Decoder) Decode(src io.ReaderAt, spritePointer, palettePointer uint32) ([]byte, error) {
	if d.Width%tileSize != 0 || d.Height%tileSize != 0 || d.Scale < 1 {
		return nil, fmt.Errorf("invalid sprite dimensions %dx%d scale %d", d.Width, d.Height, d.Scale)
	}

	pixels, err := Decompress(src, int64(spritePointer&rom.AddressMask))
	if err != nil {
		return nil, fmt.Errorf("decompressing sprite: %w", err)
	}
	if expected := d.Width * d.Height / 2; len(pixels) < expected {
		return nil, fmt.Errorf("%w: sprite has %d bytes, expected %d", ErrInvalidData, len(pixels), expected)
	}

	paletteData, err := Decompress(src, int64(palettePointer&rom.AddressMask))
	if err != nil {
		return nil, fmt.Errorf("decompressing palette: %w", err)
	}
	palette, err := decodePalette(paletteData)
	if err != nil {
		return nil, err
	}

	img := d.untile(pixels, palette)
	scaled := image.NewNRGBA(image.Rect(0, 0, d.Width*d.Scale, d.Height*d.Scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// decodePalette converts 16 BGR555 colors.
func decodePalette(data []byte) (color.Palette, error) {
	if len(data) < 2*paletteColors {
		return nil, fmt.Errorf("%w: palette has %d bytes, expected %d", ErrInvalidData, len(data), 2*paletteColors)
	}

	palette := make(color.Palette, paletteColors)
	for i := range palette {
		c := binary.LittleEndian.Uint16(data[2*i:])
		palette[i] = color.NRGBA{
			R: uint8(c&0x1F) << brightness,
			G: uint8(c>>5&0x1F) << brightness,
			B: uint8(c>>10&0x1F) << brightness,
			A: 0xFF,
		}
	}
	palette[0] = color.NRGBA{}
	return palette, nil
}

// untile arranges 8x8 tiles row by row. Every byte holds two pixels, the low
// nibble is the left one.
func (d *Decoder) untile(pixels []byte, palette color.Palette) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, d.Width, d.Height), palette)
	tilesPerRow := d.Width / tileSize

	for tile := 0; tile < d.Width*d.Height/(tileSize*tileSize); tile++ {
		tileX := tile % tilesPerRow * tileSize
		tileY := tile / tilesPerRow * tileSize

		for i, b := range pixels[tile*tileBytes : (tile+1)*tileBytes] {
			x := tileX + i%(tileSize/2)*2
			y := tileY + i/(tileSize/2)
			img.SetColorIndex(x, y, b&0x0F)
			img.SetColorIndex(x+1, y, b>>4)
		}
	}
	return img
}
