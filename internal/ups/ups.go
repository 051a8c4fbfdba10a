// Package ups implements the UPS binary patch format.
//
// A patch consists of the magic "UPS1", the variable length encoded source
// and target sizes, a list of XOR hunks and a footer with the CRC32 checksums
// of source, target and the patch itself. Since hunks are XOR encoded a patch
// can also be applied to the target to restore the source.
package ups

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// ErrCorruptPatch is returned for patches with an invalid format or
// mismatching checksums.
var ErrCorruptPatch = errors.New("corrupt patch")

const (
	magic      = "UPS1"
	footerSize = 12
)

type footer struct {
	source uint32
	target uint32
	patch  uint32
}

type header struct {
	sourceSize uint64
	targetSize uint64
	hunks      int // offset of the first hunk
}

// Apply applies a patch to the given data and returns the patched copy.
// If data matches the target checksum of the patch the patch is applied in
// reverse and the source is returned.
func Apply(data, patch []byte) ([]byte, error) {
	h, f, err := parse(patch)
	if err != nil {
		return nil, err
	}

	inputSize, outputSize := h.sourceSize, h.targetSize
	expected := f.target
	checksum := crc32.ChecksumIEEE(data)
	switch {
	case uint64(len(data)) == h.sourceSize && checksum == f.source:
	case uint64(len(data)) == h.targetSize && checksum == f.target:
		inputSize, outputSize = h.targetSize, h.sourceSize
		expected = f.source
	default:
		return nil, fmt.Errorf("%w: input checksum 0x%08X matches neither source 0x%08X nor target 0x%08X",
			ErrCorruptPatch, checksum, f.source, f.target)
	}

	output := make([]byte, outputSize)
	copy(output, data[:min(inputSize, outputSize)])

	pos := h.hunks
	end := len(patch) - footerSize
	var out uint64
	for pos < end {
		skip, n, err := readVarint(patch[pos:end])
		if err != nil {
			return nil, err
		}
		pos += n
		out += skip

		for {
			if pos >= end {
				return nil, fmt.Errorf("%w: unterminated hunk at offset %d", ErrCorruptPatch, pos)
			}
			b := patch[pos]
			pos++
			if out < outputSize {
				var in byte
				if out < inputSize {
					in = data[out]
				}
				output[out] = in ^ b
			}
			out++
			if b == 0 {
				break
			}
		}
	}

	if sum := crc32.ChecksumIEEE(output); sum != expected {
		return nil, fmt.Errorf("%w: output checksum 0x%08X does not match expected 0x%08X",
			ErrCorruptPatch, sum, expected)
	}
	return output, nil
}

// Create returns a patch that converts source into target.
func Create(source, target []byte) []byte {
	patch := []byte(magic)
	patch = appendVarint(patch, uint64(len(source)))
	patch = appendVarint(patch, uint64(len(target)))

	at := func(i int) byte {
		if i < len(source) {
			return source[i]
		}
		return 0
	}

	// bytes of a longer source that are not part of the target are encoded
	// as well, the reverse patch needs to restore them.
	size := max(len(source), len(target))
	targetAt := func(i int) byte {
		if i < len(target) {
			return target[i]
		}
		return 0
	}

	var last int
	for i := 0; i < size; i++ {
		if at(i) == targetAt(i) {
			continue
		}

		patch = appendVarint(patch, uint64(i-last))
		for ; i < size && at(i) != targetAt(i); i++ {
			patch = append(patch, at(i)^targetAt(i))
		}
		// the terminator covers the byte at i which is equal or past the end
		patch = append(patch, 0)
		last = i + 1
	}

	patch = binary.LittleEndian.AppendUint32(patch, crc32.ChecksumIEEE(source))
	patch = binary.LittleEndian.AppendUint32(patch, crc32.ChecksumIEEE(target))
	return binary.LittleEndian.AppendUint32(patch, crc32.ChecksumIEEE(patch))
}

func parse(patch []byte) (header, footer, error) {
	if len(patch) < len(magic)+footerSize || string(patch[:len(magic)]) != magic {
		return header{}, footer{}, fmt.Errorf("%w: missing %s header", ErrCorruptPatch, magic)
	}

	end := len(patch) - footerSize
	f := footer{
		source: binary.LittleEndian.Uint32(patch[end:]),
		target: binary.LittleEndian.Uint32(patch[end+4:]),
		patch:  binary.LittleEndian.Uint32(patch[end+8:]),
	}
	if sum := crc32.ChecksumIEEE(patch[:end+8]); sum != f.patch {
		return header{}, footer{}, fmt.Errorf("%w: patch checksum 0x%08X does not match 0x%08X",
			ErrCorruptPatch, sum, f.patch)
	}

	h := header{}
	pos := len(magic)
	var n int
	var err error
	if h.sourceSize, n, err = readVarint(patch[pos:end]); err != nil {
		return header{}, footer{}, err
	}
	pos += n
	if h.targetSize, n, err = readVarint(patch[pos:end]); err != nil {
		return header{}, footer{}, err
	}
	h.hunks = pos + n
	return h, f, nil
}

// readVarint decodes a variable length number, every byte carries 7 bits and
// the last byte has the high bit set. Each continuation adds an implicit
// offset so that every number has exactly one encoding.
func readVarint(b []byte) (uint64, int, error) {
	var value uint64
	shift := uint64(1)
	for i, x := range b {
		value += uint64(x&0x7f) * shift
		if x&0x80 != 0 {
			return value, i + 1, nil
		}
		if i >= 9 {
			break
		}
		shift <<= 7
		value += shift
	}
	return 0, 0, fmt.Errorf("%w: invalid variable length number", ErrCorruptPatch)
}

func appendVarint(b []byte, value uint64) []byte {
	for {
		x := byte(value & 0x7f)
		value >>= 7
		if value == 0 {
			return append(b, 0x80|x)
		}
		b = append(b, x)
		value--
	}
}
