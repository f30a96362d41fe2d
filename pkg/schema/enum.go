// Package schema holds the immutable descriptors of Matter clusters
// (attributes, commands, events and the cluster-scoped enums, bitmaps and
// structs they use) and the registry that resolves type references between
// clusters.
package schema

import (
	"github.com/backkem/matterschema/pkg/types"
)

// EnumEntry is one declared enum value.
type EnumEntry struct {
	Value uint64 `yaml:"value"`
	Name  string `yaml:"name"`
	Label string `yaml:"label,omitempty"`
}

// EnumDescriptor is a cluster-scoped enum.
type EnumDescriptor struct {
	Name    string
	Cluster string
	Base    types.Kind
	Values  []EnumEntry
}

// QualifiedName returns "Cluster.Name".
func (e *EnumDescriptor) QualifiedName() string { return types.Qualify(e.Cluster, e.Name) }

// Decode maps a raw value to its entry. It never fails: values the table
// does not declare come back with Known=false and the raw number intact.
func (e *EnumDescriptor) Decode(raw uint64) types.EnumValue {
	for _, v := range e.Values {
		if v.Value == raw {
			return types.EnumValue{Raw: raw, Name: v.Name, Label: v.Label, Known: true}
		}
	}
	return types.EnumValue{Raw: raw, Name: "unknown"}
}

// Encode returns the raw value, so unknown values round-trip.
func (e *EnumDescriptor) Encode(v types.EnumValue) uint64 { return v.Raw }

// Lookup finds an entry by name.
func (e *EnumDescriptor) Lookup(name string) (EnumEntry, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v, true
		}
	}
	return EnumEntry{}, false
}

// Label returns the display label of raw, falling back to the entry name.
func (e *EnumDescriptor) Label(raw uint64) string {
	v := e.Decode(raw)
	if v.Label != "" {
		return v.Label
	}
	return v.String()
}
