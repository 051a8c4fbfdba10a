// Package record implements fixed layout binary records as they are stored in a
// cartridge image. A schema is an ordered list of fields, the field order defines
// both the byte offset and the decode order. Integers are little-endian and there
// is no implicit padding between fields.
package record

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch is returned when a byte slice or a value set does not match a schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrImmutableRecord is returned on any attempt to modify a decoded record.
	ErrImmutableRecord = errors.New("record is immutable")
)

// Kind defines the primitive type of a field.
type Kind uint8

// field kinds.
const (
	U8 Kind = iota + 1
	I8
	U16
	I16
	U32
	I32
	Bytes   // fixed length byte array
	Pointer // 32 bit bus address
)

var kindNames = map[Kind]string{
	U8:      "u8",
	I8:      "i8",
	U16:     "u16",
	I16:     "i16",
	U32:     "u32",
	I32:     "i32",
	Bytes:   "bytes",
	Pointer: "ptr",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Field describes a single named field of a schema.
type Field struct {
	Name string
	Kind Kind
	Len  int // length of a Bytes field, ignored for all other kinds
}

// Width returns the number of bytes the field occupies.
func (f Field) Width() int {
	switch f.Kind {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, Pointer:
		return 4
	case Bytes:
		return f.Len
	default:
		return 0
	}
}

// Uint8 returns an unsigned 8 bit field.
func Uint8(name string) Field { return Field{Name: name, Kind: U8} }

// Int8 returns a signed 8 bit field.
func Int8(name string) Field { return Field{Name: name, Kind: I8} }

// Uint16 returns an unsigned 16 bit field.
func Uint16(name string) Field { return Field{Name: name, Kind: U16} }

// Int16 returns a signed 16 bit field.
func Int16(name string) Field { return Field{Name: name, Kind: I16} }

// Uint32 returns an unsigned 32 bit field.
func Uint32(name string) Field { return Field{Name: name, Kind: U32} }

// Int32 returns a signed 32 bit field.
func Int32(name string) Field { return Field{Name: name, Kind: I32} }

// Array returns a fixed length byte array field.
func Array(name string, length int) Field { return Field{Name: name, Kind: Bytes, Len: length} }

// Ptr returns a 32 bit pointer field.
func Ptr(name string) Field { return Field{Name: name, Kind: Pointer} }

// Schema is an immutable, ordered record layout.
type Schema struct {
	name    string
	fields  []Field
	offsets []int
	index   map[string]int
	size    int
}

// NewSchema creates a schema from the given fields in declaration order.
func NewSchema(name string, fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema %s: no fields", name)
	}

	s := &Schema{
		name:    name,
		fields:  make([]Field, len(fields)),
		offsets: make([]int, len(fields)),
		index:   make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	for i, field := range fields {
		if field.Name == "" {
			return nil, fmt.Errorf("schema %s: field %d has no name", name, i)
		}
		if _, ok := s.index[field.Name]; ok {
			return nil, fmt.Errorf("schema %s: duplicate field '%s'", name, field.Name)
		}
		width := field.Width()
		if width <= 0 {
			return nil, fmt.Errorf("schema %s: field '%s' of kind %s has no width", name, field.Name, field.Kind)
		}

		s.index[field.Name] = i
		s.offsets[i] = s.size
		s.size += width
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on an invalid layout.
// It is intended for package level layout declarations.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the name of the schema.
func (s *Schema) Name() string {
	return s.name
}

// Size returns the byte size of a record, the sum of all field widths.
func (s *Schema) Size() int {
	return s.size
}

// Fields returns a copy of the field list.
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// Offset returns the byte offset of the named field inside the record.
func (s *Schema) Offset(name string) (int, bool) {
	i, ok := s.index[name]
	if !ok {
		return 0, false
	}
	return s.offsets[i], true
}

func (s *Schema) field(name string) (int, Field) {
	i, ok := s.index[name]
	if !ok {
		panic(fmt.Sprintf("schema %s has no field '%s'", s.name, name))
	}
	return i, s.fields[i]
}
