package schema

import (
	"github.com/backkem/matterschema/pkg/types"
)

// BitField is a named run of bits. Width is 1 for flags; multi-bit fields
// carry a small integer.
type BitField struct {
	Name  string `yaml:"name"`
	Bit   uint8  `yaml:"bit"`
	Width uint8  `yaml:"width,omitempty"`
}

func (f BitField) width() uint8 {
	if f.Width == 0 {
		return 1
	}
	return f.Width
}

// valueMask masks a field value before shifting.
func (f BitField) valueMask() uint64 {
	w := f.width()
	if w >= 64 {
		return ^uint64(0)
	}
	return 1<<w - 1
}

// Mask returns the field's bits in place.
func (f BitField) Mask() uint64 { return f.valueMask() << f.Bit }

// BitmapDescriptor is a cluster-scoped bitmap. A cluster's feature map is a
// bitmap named "Feature".
type BitmapDescriptor struct {
	Name    string
	Cluster string
	Base    types.Kind
	Fields  []BitField
}

// QualifiedName returns "Cluster.Name".
func (b *BitmapDescriptor) QualifiedName() string { return types.Qualify(b.Cluster, b.Name) }

// Mask is the union of all declared bits.
func (b *BitmapDescriptor) Mask() uint64 {
	var m uint64
	for _, f := range b.Fields {
		m |= f.Mask()
	}
	return m
}

// Field finds a field by name.
func (b *BitmapDescriptor) Field(name string) (BitField, bool) {
	for _, f := range b.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return BitField{}, false
}

// Decode splits raw into declared fields. Undeclared bits are dropped.
func (b *BitmapDescriptor) Decode(raw uint64) types.BitmapValue {
	v := types.BitmapValue{Raw: raw & b.Mask(), Fields: map[string]uint64{}}
	for _, f := range b.Fields {
		if x := raw >> f.Bit & f.valueMask(); x != 0 {
			v.Fields[f.Name] = x
		}
	}
	return v
}

// Encode ORs the declared fields of v, each masked to its width. A value
// without Fields encodes from Raw restricted to the declared bits.
func (b *BitmapDescriptor) Encode(v types.BitmapValue) uint64 {
	if v.Fields == nil {
		return v.Raw & b.Mask()
	}
	var raw uint64
	for _, f := range b.Fields {
		raw |= (v.Fields[f.Name] & f.valueMask()) << f.Bit
	}
	return raw
}

// Of builds a value with the named single-bit flags set. Unknown names are
// ignored.
func (b *BitmapDescriptor) Of(names ...string) types.BitmapValue {
	var raw uint64
	for _, n := range names {
		if f, ok := b.Field(n); ok {
			raw |= 1 << f.Bit
		}
	}
	return b.Decode(raw)
}
