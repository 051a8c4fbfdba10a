package sprite

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidData is returned for compressed data that can not be decoded.
var ErrInvalidData = errors.New("invalid compressed data")

const (
	lz77Type = 0x10
	// maxDecompressedSize bounds the output for a corrupt size header,
	// uncompressed graphics in a cartridge are far smaller.
	maxDecompressedSize = 1 << 20
)

// Decompress decodes the LZ77 compressed data that starts at offset.
// The format is the one of the BIOS LZ77UnComp call: a header byte 0x10,
// the 24 bit decompressed size and blocks of 8 items, each block preceded by
// a flag byte that marks back references with a set bit, most significant
// bit first.
func Decompress(src io.ReaderAt, offset int64) ([]byte, error) {
	r := bufio.NewReader(io.NewSectionReader(src, offset, 1<<24))

	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header at 0x%06X: %w", ErrInvalidData, offset, err)
	}
	if hdr[0] != lz77Type {
		return nil, fmt.Errorf("%w: unsupported compression type 0x%02X at 0x%06X", ErrInvalidData, hdr[0], offset)
	}
	size := int(hdr[1]) | int(hdr[2])<<8 | int(hdr[3])<<16
	if size > maxDecompressedSize {
		return nil, fmt.Errorf("%w: decompressed size %d exceeds limit", ErrInvalidData, size)
	}

	out := make([]byte, 0, size)
	for len(out) < size {
		flags, err := r.ReadByte()
		if err != nil {
			return nil, unexpectedEnd(offset, err)
		}

		for bit := 7; bit >= 0 && len(out) < size; bit-- {
			if flags&(1<<bit) == 0 {
				b, err := r.ReadByte()
				if err != nil {
					return nil, unexpectedEnd(offset, err)
				}
				out = append(out, b)
				continue
			}

			b1, err := r.ReadByte()
			if err != nil {
				return nil, unexpectedEnd(offset, err)
			}
			b2, err := r.ReadByte()
			if err != nil {
				return nil, unexpectedEnd(offset, err)
			}
			length := int(b1>>4) + 3
			distance := (int(b1&0x0F)<<8 | int(b2)) + 1
			if distance > len(out) {
				return nil, fmt.Errorf("%w: back reference distance %d exceeds %d decoded bytes",
					ErrInvalidData, distance, len(out))
			}
			// the referenced window may overlap the bytes being written
			for i := 0; i < length && len(out) < size; i++ {
				out = append(out, out[len(out)-distance])
			}
		}
	}
	return out, nil
}

func unexpectedEnd(offset int64, err error) error {
	return fmt.Errorf("%w: data at 0x%06X ends unexpectedly: %w", ErrInvalidData, offset, err)
}
