package schema

import (
	"fmt"
	"strings"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/types"
)

// Registry is the set of known cluster schemas plus the flat type table
// keyed by qualified name. It is immutable once built and safe for
// concurrent readers.
type Registry struct {
	clusters []*ClusterSchema
	byID     map[datamodel.ClusterID]*ClusterSchema
	byName   map[string]*ClusterSchema

	enums   map[string]*EnumDescriptor
	bitmaps map[string]*BitmapDescriptor
	structs map[string]*StructDescriptor
}

// Cluster returns the schema for a cluster ID.
func (r *Registry) Cluster(id datamodel.ClusterID) (*ClusterSchema, error) {
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: cluster 0x%04X", datamodel.ErrSchemaNotFound, uint32(id))
}

// ClusterByName returns the schema for a cluster name. Matching ignores case.
func (r *Registry) ClusterByName(name string) (*ClusterSchema, error) {
	if c, ok := r.byName[strings.ToLower(name)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: cluster %q", datamodel.ErrSchemaNotFound, name)
}

// Clusters returns all schemas sorted by cluster ID.
func (r *Registry) Clusters() []*ClusterSchema {
	return append([]*ClusterSchema(nil), r.clusters...)
}

// Enum returns an enum by qualified name.
func (r *Registry) Enum(qualified string) (*EnumDescriptor, error) {
	if e, ok := r.enums[qualified]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: enum %s", datamodel.ErrTypeNotFound, qualified)
}

// Bitmap returns a bitmap by qualified name.
func (r *Registry) Bitmap(qualified string) (*BitmapDescriptor, error) {
	if b, ok := r.bitmaps[qualified]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: bitmap %s", datamodel.ErrTypeNotFound, qualified)
}

// Struct returns a struct by qualified name.
func (r *Registry) Struct(qualified string) (*StructDescriptor, error) {
	if s, ok := r.structs[qualified]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: struct %s", datamodel.ErrTypeNotFound, qualified)
}

// ResolvedType is a TypeRef with its named descriptor looked up. Exactly one
// of Enum, Bitmap or Struct is set for named types; lists and optionals keep
// their element in Ref.Elem and resolve it on demand.
type ResolvedType struct {
	Ref    types.TypeRef
	Enum   *EnumDescriptor
	Bitmap *BitmapDescriptor
	Struct *StructDescriptor
}

// Kind returns the wire kind of primitives, enums and bitmaps.
func (t ResolvedType) Kind() types.Kind {
	switch {
	case t.Enum != nil:
		return t.Enum.Base
	case t.Bitmap != nil:
		return t.Bitmap.Base
	case t.Ref.Ref == types.RefPrimitive:
		return t.Ref.Kind
	default:
		return types.KindInvalid
	}
}

// Resolve looks up the descriptor a reference names. Unresolved RefNamed
// references are classified here as well.
func (r *Registry) Resolve(ref types.TypeRef) (ResolvedType, error) {
	out := ResolvedType{Ref: ref}
	switch ref.Ref {
	case types.RefPrimitive, types.RefList, types.RefOptional:
		return out, nil
	case types.RefEnum:
		e, err := r.Enum(ref.Name)
		out.Enum = e
		return out, err
	case types.RefBitmap:
		b, err := r.Bitmap(ref.Name)
		out.Bitmap = b
		return out, err
	case types.RefStruct:
		s, err := r.Struct(ref.Name)
		out.Struct = s
		return out, err
	case types.RefNamed:
		classified, err := r.classify(ref)
		if err != nil {
			return out, err
		}
		return r.Resolve(classified)
	default:
		return out, fmt.Errorf("%w: %s", datamodel.ErrTypeNotFound, ref)
	}
}

func (r *Registry) classify(ref types.TypeRef) (types.TypeRef, error) {
	return classify(ref, r.enums, r.bitmaps, r.structs)
}

func classify(ref types.TypeRef, enums map[string]*EnumDescriptor, bitmaps map[string]*BitmapDescriptor,
	structs map[string]*StructDescriptor) (types.TypeRef, error) {
	if ref.Ref != types.RefNamed {
		return ref, nil
	}
	switch {
	case enums[ref.Name] != nil:
		return types.Enum(ref.Name), nil
	case bitmaps[ref.Name] != nil:
		return types.Bitmap(ref.Name), nil
	case structs[ref.Name] != nil:
		return types.StructRef(ref.Name), nil
	default:
		return ref, fmt.Errorf("%w: %s", datamodel.ErrTypeNotFound, ref.Name)
	}
}
