package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Values maps field names to values when building a record.
// Integer fields accept any Go integer type, Bytes fields accept []byte
// which is zero padded to the field length.
type Values map[string]any

// Record is an immutable snapshot of one schema instance.
type Record struct {
	schema *Schema
	ints   []uint32 // decoded integer value per field, unused for byte arrays
	data   []byte
}

// Decode deserializes a record from exactly Size() bytes.
func (s *Schema) Decode(b []byte) (Record, error) {
	if len(b) != s.size {
		return Record{}, fmt.Errorf("%w: %s expects %d bytes, got %d", ErrSchemaMismatch, s.name, s.size, len(b))
	}

	r := Record{
		schema: s,
		ints:   make([]uint32, len(s.fields)),
		data:   bytes.Clone(b),
	}

	for i, field := range s.fields {
		offset := s.offsets[i]
		switch field.Kind {
		case U8, I8:
			r.ints[i] = uint32(b[offset])
		case U16, I16:
			r.ints[i] = uint32(binary.LittleEndian.Uint16(b[offset:]))
		case U32, I32, Pointer:
			r.ints[i] = binary.LittleEndian.Uint32(b[offset:])
		case Bytes:
		}
	}
	return r, nil
}

// Encode serializes a record of this schema into its binary form.
func (s *Schema) Encode(r Record) ([]byte, error) {
	if r.schema != s {
		return nil, fmt.Errorf("%w: record is not of schema %s", ErrSchemaMismatch, s.name)
	}

	buf := make([]byte, s.size)
	for i, field := range s.fields {
		offset := s.offsets[i]
		switch field.Kind {
		case U8, I8:
			buf[offset] = byte(r.ints[i])
		case U16, I16:
			binary.LittleEndian.PutUint16(buf[offset:], uint16(r.ints[i]))
		case U32, I32, Pointer:
			binary.LittleEndian.PutUint32(buf[offset:], r.ints[i])
		case Bytes:
			copy(buf[offset:offset+field.Len], r.data[offset:offset+field.Len])
		}
	}
	return buf, nil
}

// New builds a record of the schema from named values.
// Every field has to be assigned and every value has to fit its field.
func New(s *Schema, values Values) (Record, error) {
	if len(values) != len(s.fields) {
		return Record{}, fmt.Errorf("%w: %s has %d fields, got %d values",
			ErrSchemaMismatch, s.name, len(s.fields), len(values))
	}

	r := Record{
		schema: s,
		ints:   make([]uint32, len(s.fields)),
		data:   make([]byte, s.size),
	}

	for i, field := range s.fields {
		value, ok := values[field.Name]
		if !ok {
			return Record{}, fmt.Errorf("%w: %s: missing value for field '%s'", ErrSchemaMismatch, s.name, field.Name)
		}

		if field.Kind == Bytes {
			b, ok := value.([]byte)
			if !ok || len(b) > field.Len {
				return Record{}, fmt.Errorf("%w: %s: field '%s' expects at most %d bytes",
					ErrSchemaMismatch, s.name, field.Name, field.Len)
			}
			copy(r.data[s.offsets[i]:], b)
			continue
		}

		n, err := integer(field, value)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %s: %w", ErrSchemaMismatch, s.name, err)
		}
		r.ints[i] = n
	}

	// keep the raw view consistent with the integer values
	encoded, err := s.Encode(r)
	if err != nil {
		return Record{}, err
	}
	r.data = encoded
	return r, nil
}

// Schema returns the schema the record was decoded with.
func (r Record) Schema() *Schema {
	return r.schema
}

// Uint returns the value of an integer or pointer field.
// Signed fields are returned as their two's complement bit pattern.
func (r Record) Uint(name string) uint32 {
	i, field := r.schema.field(name)
	if field.Kind == Bytes {
		panic(fmt.Sprintf("field '%s' of %s is a byte array", name, r.schema.name))
	}
	return r.ints[i]
}

// Int returns the sign extended value of an integer field.
func (r Record) Int(name string) int64 {
	i, field := r.schema.field(name)
	v := r.ints[i]
	switch field.Kind {
	case I8:
		return int64(int8(v))
	case I16:
		return int64(int16(v))
	case I32:
		return int64(int32(v))
	case Bytes:
		panic(fmt.Sprintf("field '%s' of %s is a byte array", name, r.schema.name))
	default:
		return int64(v)
	}
}

// Pointer returns the raw bus address stored in a field.
func (r Record) Pointer(name string) uint32 {
	return r.Uint(name)
}

// Bytes returns a copy of a byte array field.
func (r Record) Bytes(name string) []byte {
	i, field := r.schema.field(name)
	if field.Kind != Bytes {
		panic(fmt.Sprintf("field '%s' of %s is not a byte array", name, r.schema.name))
	}
	offset := r.schema.offsets[i]
	return bytes.Clone(r.data[offset : offset+field.Len])
}

// Set always fails, records are read only snapshots of the image.
func (r Record) Set(name string, _ any) error {
	return fmt.Errorf("%w: field '%s'", ErrImmutableRecord, name)
}

// Equal returns whether both records share the schema and all field values.
func (r Record) Equal(other Record) bool {
	return r.schema == other.schema && bytes.Equal(r.data, other.data)
}

func (r Record) String() string {
	if r.schema == nil {
		return "Record()"
	}

	var sb strings.Builder
	sb.WriteString(r.schema.name)
	sb.WriteByte('(')
	for i, field := range r.schema.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		if field.Kind == Bytes {
			fmt.Fprintf(&sb, "%s=% X", field.Name, r.Bytes(field.Name))
			continue
		}
		fmt.Fprintf(&sb, "%s=0x%X", field.Name, r.ints[i])
	}
	sb.WriteByte(')')
	return sb.String()
}

func integer(field Field, value any) (uint32, error) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		if v > 1<<32-1 {
			return 0, fmt.Errorf("value %d of field '%s' overflows %s", v, field.Name, field.Kind)
		}
		n = int64(v)
	default:
		return 0, fmt.Errorf("field '%s' expects an integer, got %T", field.Name, value)
	}

	var lo, hi int64
	switch field.Kind {
	case U8:
		lo, hi = 0, 1<<8-1
	case I8:
		lo, hi = -1<<7, 1<<7-1
	case U16:
		lo, hi = 0, 1<<16-1
	case I16:
		lo, hi = -1<<15, 1<<15-1
	case U32, Pointer:
		lo, hi = 0, 1<<32-1
	case I32:
		lo, hi = -1<<31, 1<<31-1
	case Bytes:
		return 0, fmt.Errorf("field '%s' expects bytes", field.Name)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d of field '%s' overflows %s", n, field.Name, field.Kind)
	}

	mask := uint64(1)<<(8*uint(field.Width())) - 1
	return uint32(uint64(n) & mask), nil
}
