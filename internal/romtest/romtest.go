// Package romtest builds synthetic cartridge images for tests.
package romtest

import (
	"testing"

	"github.com/retroenv/retrodex/internal/record"
	"github.com/retroenv/retrodex/internal/rom"
)

// Bus is the address of the first cartridge byte on the GBA bus.
const Bus = 0x08000000

// Addr converts an image offset to a cartridge bus address.
func Addr(offset uint32) uint32 {
	return Bus | offset
}

// Image is a mutable image under construction.
type Image struct {
	tb   testing.TB
	data []byte
}

// New returns an image of the given size filled with zero bytes.
func New(tb testing.TB, size int) *Image {
	tb.Helper()
	return &Image{tb: tb, data: make([]byte, size)}
}

// Put copies b to the masked address.
func (im *Image) Put(address uint32, b []byte) {
	im.tb.Helper()
	offset := int(address & rom.AddressMask)
	if offset+len(b) > len(im.data) {
		im.tb.Fatalf("writing %d bytes at 0x%06X exceeds image size 0x%X", len(b), offset, len(im.data))
	}
	copy(im.data[offset:], b)
}

// PutRecord encodes a record and writes it to the masked address.
func (im *Image) PutRecord(address uint32, schema *record.Schema, values record.Values) {
	im.tb.Helper()
	r, err := record.New(schema, values)
	if err != nil {
		im.tb.Fatalf("building %s record: %v", schema.Name(), err)
	}
	b, err := schema.Encode(r)
	if err != nil {
		im.tb.Fatalf("encoding %s record: %v", schema.Name(), err)
	}
	im.Put(address, b)
}

// Values returns a complete value set for schema with every field set to its
// zero value, overridden by the given values.
func Values(schema *record.Schema, overrides record.Values) record.Values {
	values := make(record.Values, len(schema.Fields()))
	for _, field := range schema.Fields() {
		if field.Kind == record.Bytes {
			values[field.Name] = []byte{}
		} else {
			values[field.Name] = 0
		}
	}
	for name, value := range overrides {
		values[name] = value
	}
	return values
}

// PutRecords writes consecutive records starting at the masked address.
func (im *Image) PutRecords(address uint32, schema *record.Schema, values ...record.Values) {
	im.tb.Helper()
	for i, v := range values {
		im.PutRecord(address+uint32(i*schema.Size()), schema, v)
	}
}

// PutPointers writes consecutive little-endian 32 bit values.
func (im *Image) PutPointers(address uint32, pointers ...uint32) {
	im.tb.Helper()
	for i, p := range pointers {
		im.Put(address+uint32(4*i), []byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})
	}
}

// Bytes returns the image data.
func (im *Image) Bytes() []byte {
	return im.data
}

// ROM returns an address space over a snapshot of the image.
func (im *Image) ROM() *rom.ROM {
	return rom.New(im.data)
}

// Text encodes ASCII letters, digits and spaces into the in-game encoding,
// terminated and padded with 0xFF up to width bytes.
func Text(tb testing.TB, s string, width int) []byte {
	tb.Helper()
	if len(s) >= width {
		tb.Fatalf("text '%s' does not fit %d bytes", s, width)
	}

	b := make([]byte, width)
	for i := range b {
		b[i] = 0xFF
	}
	for i, c := range []byte(s) {
		switch {
		case c == ' ':
			b[i] = 0x00
		case c >= '0' && c <= '9':
			b[i] = 0xA1 + c - '0'
		case c >= 'A' && c <= 'Z':
			b[i] = 0xBB + c - 'A'
		case c >= 'a' && c <= 'z':
			b[i] = 0xD5 + c - 'a'
		default:
			tb.Fatalf("character '%c' is not supported", c)
		}
	}
	return b
}
