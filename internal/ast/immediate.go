package ast

import "github.com/vybium/vybium-mast-vm/internal/field"

// ImmediateKind identifies the primitive integer class an Immediate
// wraps.
type ImmediateKind uint8

const (
	ImmU8 ImmediateKind = iota
	ImmU16
	ImmU32
	ImmFelt
)

// Immediate wraps a primitive integer-class value that may, before
// module-graph resolution, be a symbolic constant name rather than a
// concrete value.
type Immediate struct {
	Kind ImmediateKind
	Span Span

	// Constant, when non-empty, names an unresolved symbolic constant.
	// The module-graph rewrite pass replaces it with a concrete Value
	// by consulting the enclosing module's constant table.
	Constant string

	value uint64
}

// NewImmediateValue constructs an already-resolved immediate.
func NewImmediateValue(kind ImmediateKind, value uint64, span Span) Immediate {
	return Immediate{Kind: kind, Span: span, value: value}
}

// NewImmediateConstant constructs an unresolved, constant-named immediate.
func NewImmediateConstant(kind ImmediateKind, name string, span Span) Immediate {
	return Immediate{Kind: kind, Span: span, Constant: name}
}

// IsResolved reports whether the immediate already carries a concrete value.
func (im Immediate) IsResolved() bool { return im.Constant == "" }

// Resolve replaces a symbolic constant with its concrete value.
func (im *Immediate) Resolve(value uint64) {
	im.value = value
	im.Constant = ""
}

// Value returns the raw resolved value. Callers must check IsResolved
// first; an unresolved immediate returns 0.
func (im Immediate) Value() uint64 { return im.value }

// AsFelt interprets the immediate as a field element.
func (im Immediate) AsFelt() field.Felt { return field.New(im.value) }

// AsU32 interprets the immediate as a u32, truncating if necessary.
func (im Immediate) AsU32() uint32 { return uint32(im.value) }

// AsU16 interprets the immediate as a u16, truncating if necessary.
func (im Immediate) AsU16() uint16 { return uint16(im.value) }

// AsU8 interprets the immediate as a u8, truncating if necessary.
func (im Immediate) AsU8() uint8 { return uint8(im.value) }
