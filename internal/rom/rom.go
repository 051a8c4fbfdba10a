// Package rom provides the immutable address space of a cartridge image and
// typed pointers into it.
package rom

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/retrodex/internal/record"
)

var (
	// ErrOutOfRange is returned when an address range is outside of the image.
	ErrOutOfRange = errors.New("address out of range")
	// ErrUnterminated is returned when a sentinel terminated array exceeds its iteration limit.
	ErrUnterminated = errors.New("array is not terminated")
)

// ROM is an immutable cartridge image. All reads are pure functions of
// offset and length and are safe for concurrent use.
type ROM struct {
	data []byte
}

// New creates an address space from a copy of the given data.
func New(data []byte) *ROM {
	return &ROM{data: bytes.Clone(data)}
}

// Size returns the size of the image in bytes.
func (r *ROM) Size() int {
	return len(r.data)
}

// Slice returns a copy of length bytes starting at offset.
func (r *ROM) Slice(offset uint32, length int) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if length < 0 || end > uint64(len(r.data)) {
		return nil, fmt.Errorf("%w: offset 0x%06X length %d exceeds image size 0x%X",
			ErrOutOfRange, offset, length, len(r.data))
	}
	return bytes.Clone(r.data[offset:end]), nil
}

// Tail returns up to limit bytes starting at offset, clamped to the end of the image.
// It is used for string tables that are read with a generous fixed width.
func (r *ROM) Tail(offset uint32, limit int) ([]byte, error) {
	if uint64(offset) >= uint64(len(r.data)) {
		return nil, fmt.Errorf("%w: offset 0x%06X exceeds image size 0x%X", ErrOutOfRange, offset, len(r.data))
	}
	end := min(uint64(offset)+uint64(limit), uint64(len(r.data)))
	return bytes.Clone(r.data[offset:end]), nil
}

// ReadAt implements io.ReaderAt on image offsets. The read data is a copy.
func (r *ROM) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrOutOfRange, off)
	}
	if off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Resolve returns the bytes of the record a pointer references.
func (r *ROM) Resolve(p Pointer) ([]byte, error) {
	if p.schema == nil {
		return nil, fmt.Errorf("%w: untyped pointer 0x%08X", ErrOutOfRange, p.raw)
	}
	b, err := r.Slice(p.Offset(), p.schema.Size())
	if err != nil {
		return nil, fmt.Errorf("resolving %s pointer 0x%08X: %w", p.schema.Name(), p.raw, err)
	}
	return b, nil
}

// Deref resolves a pointer and decodes the referenced record.
func (r *ROM) Deref(p Pointer) (record.Record, error) {
	b, err := r.Resolve(p)
	if err != nil {
		return record.Record{}, err
	}
	return p.schema.Decode(b)
}

// Walk iterates the records of a sentinel terminated array starting at p.
// The iteration ends before the first record for which stop returns true.
// fn is called for every record before the sentinel, returning false from it
// ends the walk early. Walk fails with ErrUnterminated if no sentinel is found
// within limit records, this bounds the work done for a corrupt pointer.
func (r *ROM) Walk(p Pointer, limit int, stop func(record.Record) bool, fn func(record.Record) bool) error {
	for i := 0; i < limit; i++ {
		rec, err := r.Deref(p.Add(i))
		if err != nil {
			return err
		}
		if stop(rec) {
			return nil
		}
		if !fn(rec) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s array at 0x%08X has more than %d entries",
		ErrUnterminated, p.schema.Name(), p.raw, limit)
}
