package rom

import (
	"fmt"

	"github.com/retroenv/retrodex/internal/record"
)

// AddressMask maps a GBA bus address to an offset into the cartridge image.
// The high byte selects the memory region (0x08 for the cartridge) and is dropped.
const AddressMask = 0x00FFFFFF

// NullPointer is the raw value that marks an absent pointer.
const NullPointer = 0

// Pointer is a bus address scoped to a record schema. Arithmetic is always
// done in units of the pointee, never in raw bytes.
type Pointer struct {
	raw    uint32
	schema *record.Schema
}

// NewPointer returns a pointer to records of the given schema.
func NewPointer(raw uint32, schema *record.Schema) Pointer {
	return Pointer{raw: raw, schema: schema}
}

// Raw returns the bus address.
func (p Pointer) Raw() uint32 {
	return p.raw
}

// Offset returns the effective offset into the image.
func (p Pointer) Offset() uint32 {
	return p.raw & AddressMask
}

// Schema returns the pointee schema.
func (p Pointer) Schema() *record.Schema {
	return p.schema
}

// IsNull returns whether the pointer is absent and must not be dereferenced.
func (p Pointer) IsNull() bool {
	return p.raw == NullPointer
}

// Add returns the pointer advanced by n records.
func (p Pointer) Add(n int) Pointer {
	return Pointer{raw: p.raw + uint32(n*p.schema.Size()), schema: p.schema}
}

// Sub returns the pointer moved back by n records.
func (p Pointer) Sub(n int) Pointer {
	return Pointer{raw: p.raw - uint32(n*p.schema.Size()), schema: p.schema}
}

// Equal returns whether both pointers reference the same address as the same type.
func (p Pointer) Equal(other Pointer) bool {
	return p.raw == other.raw && p.schema == other.schema
}

func (p Pointer) String() string {
	if p.schema == nil {
		return fmt.Sprintf("0x%08X", p.raw)
	}
	return fmt.Sprintf("%s@0x%08X", p.schema.Name(), p.raw)
}
