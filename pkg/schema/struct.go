package schema

import (
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/types"
)

// StructField is a member of a struct, an event payload or a command
// request. ID is the context tag used on the wire.
type StructField struct {
	ID              datamodel.FieldID
	Name            string
	Type            types.TypeRef
	Nullable        bool
	Optional        bool
	FabricSensitive bool
}

// StructDescriptor is a cluster-scoped struct.
type StructDescriptor struct {
	Name         string
	Cluster      string
	FabricScoped bool
	Fields       []StructField
}

// QualifiedName returns "Cluster.Name".
func (s *StructDescriptor) QualifiedName() string { return types.Qualify(s.Cluster, s.Name) }

// Field finds a member by name.
func (s *StructDescriptor) Field(name string) (*StructField, bool) {
	return fieldByName(s.Fields, name)
}

// FieldByID finds a member by field ID.
func (s *StructDescriptor) FieldByID(id datamodel.FieldID) (*StructField, bool) {
	return fieldByID(s.Fields, id)
}

func fieldByName(fields []StructField, name string) (*StructField, bool) {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i], true
		}
	}
	return nil, false
}

func fieldByID(fields []StructField, id datamodel.FieldID) (*StructField, bool) {
	for i := range fields {
		if fields[i].ID == id {
			return &fields[i], true
		}
	}
	return nil, false
}
