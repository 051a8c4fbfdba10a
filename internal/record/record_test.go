package record

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

var testSchema = MustSchema("test",
	Uint8("u8"),
	Int8("i8"),
	Uint16("u16"),
	Int16("i16"),
	Uint32("u32"),
	Int32("i32"),
	Array("name", 5),
	Ptr("ptr"),
)

func TestSchemaSize(t *testing.T) {
	assert.Equal(t, 1+1+2+2+4+4+5+4, testSchema.Size())

	offset, ok := testSchema.Offset("u32")
	assert.True(t, ok)
	assert.Equal(t, 6, offset)

	_, ok = testSchema.Offset("missing")
	assert.False(t, ok)
}

func TestNewSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{name: "no fields"},
		{name: "empty name", fields: []Field{Uint8("")}},
		{name: "duplicate", fields: []Field{Uint8("a"), Uint16("a")}},
		{name: "empty array", fields: []Field{Array("a", 0)}},
		{name: "unknown kind", fields: []Field{{Name: "a", Kind: Kind(99)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.name, tt.fields...)
			assert.Error(t, err)
		})
	}
}

func TestDecodeLittleEndian(t *testing.T) {
	s := MustSchema("u32", Uint32("value"))

	r, err := s.Decode([]byte{0x34, 0x12, 0x00, 0x00})
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x1234), r.Uint("value"))
}

func TestDecodeSigned(t *testing.T) {
	s := MustSchema("signed", Int8("a"), Int16("b"), Int32("c"))

	r, err := s.Decode([]byte{0xFF, 0xFE, 0xFF, 0x00, 0x00, 0x00, 0x80})
	assert.NoError(t, err)
	assert.Equal(t, int64(-1), r.Int("a"))
	assert.Equal(t, int64(-2), r.Int("b"))
	assert.Equal(t, int64(-1<<31), r.Int("c"))
	assert.Equal(t, uint32(0xFF), r.Uint("a"))
}

func TestDecodeSizeMismatch(t *testing.T) {
	_, err := testSchema.Decode(make([]byte, testSchema.Size()-1))
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	_, err = testSchema.Decode(make([]byte, testSchema.Size()+1))
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		values Values
	}{
		{
			name: "zero",
			values: Values{
				"u8": 0, "i8": 0, "u16": 0, "i16": 0, "u32": 0, "i32": 0,
				"name": []byte{}, "ptr": 0,
			},
		},
		{
			name: "limits",
			values: Values{
				"u8": 0xFF, "i8": -128, "u16": 0xFFFF, "i16": -32768, "u32": uint32(0xFFFFFFFF),
				"i32": int32(-1 << 31), "name": []byte{1, 2, 3, 4, 5}, "ptr": uint32(0x08123456),
			},
		},
		{
			name: "mixed",
			values: Values{
				"u8": uint8(7), "i8": int8(-3), "u16": 0x1234, "i16": 1000, "u32": 0xCAFE,
				"i32": -5, "name": []byte{0xBB, 0xFF}, "ptr": 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(testSchema, tt.values)
			assert.NoError(t, err)

			encoded, err := testSchema.Encode(r)
			assert.NoError(t, err)
			assert.Equal(t, testSchema.Size(), len(encoded))

			decoded, err := testSchema.Decode(encoded)
			assert.NoError(t, err)
			assert.True(t, decoded.Equal(r))
		})
	}
}

func TestNewErrors(t *testing.T) {
	s := MustSchema("small", Uint8("a"), Array("b", 2))

	tests := []struct {
		name   string
		values Values
	}{
		{name: "missing field", values: Values{"a": 1}},
		{name: "unknown field", values: Values{"a": 1, "c": []byte{}}},
		{name: "overflow", values: Values{"a": 256, "b": []byte{}}},
		{name: "negative unsigned", values: Values{"a": -1, "b": []byte{}}},
		{name: "array too long", values: Values{"a": 1, "b": []byte{1, 2, 3}}},
		{name: "wrong type", values: Values{"a": "x", "b": []byte{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(s, tt.values)
			assert.True(t, errors.Is(err, ErrSchemaMismatch))
		})
	}
}

func TestRecordImmutable(t *testing.T) {
	s := MustSchema("name", Array("name", 3))
	source := []byte{1, 2, 3}

	r, err := s.Decode(source)
	assert.NoError(t, err)

	// neither the source nor a returned copy can change the record
	source[0] = 9
	b := r.Bytes("name")
	b[1] = 9
	assert.Equal(t, []byte{1, 2, 3}, r.Bytes("name"))

	err = r.Set("name", []byte{0})
	assert.True(t, errors.Is(err, ErrImmutableRecord))
}

func TestEncodeForeignRecord(t *testing.T) {
	other := MustSchema("other", Uint8("u8"))
	r, err := New(other, Values{"u8": 1})
	assert.NoError(t, err)

	_, err = testSchema.Encode(r)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestRecordString(t *testing.T) {
	s := MustSchema("pair", Uint8("a"), Array("b", 2))
	r, err := New(s, Values{"a": 10, "b": []byte{0xAB, 0xCD}})
	assert.NoError(t, err)
	assert.Equal(t, "pair(a=0xA, b=AB CD)", r.String())
}
