package types

import (
	"fmt"
	"strings"
)

// RefKind tags the variant held by a TypeRef.
type RefKind uint8

const (
	RefInvalid RefKind = iota
	RefPrimitive
	RefEnum
	RefBitmap
	RefStruct
	RefList
	RefOptional

	// RefNamed is a reference parsed from text whose category (enum, bitmap
	// or struct) is not known until the registry resolves it.
	RefNamed
)

func (r RefKind) String() string {
	switch r {
	case RefPrimitive:
		return "primitive"
	case RefEnum:
		return "enum"
	case RefBitmap:
		return "bitmap"
	case RefStruct:
		return "struct"
	case RefList:
		return "list"
	case RefOptional:
		return "optional"
	case RefNamed:
		return "named"
	default:
		return "invalid"
	}
}

// TypeRef is the recursive type of an attribute, parameter or field.
// Enum, bitmap and struct references hold a qualified name
// ("Cluster.TypeName") into the registry's flat type table, never a pointer,
// so clusters may reference each other's types in any load order.
type TypeRef struct {
	Ref   RefKind
	Kind  Kind     // RefPrimitive
	Alias string   // RefPrimitive: semantic name as declared (e.g. "percent100ths")
	Name  string   // RefEnum, RefBitmap, RefStruct, RefNamed: qualified name
	Elem  *TypeRef // RefList, RefOptional
}

// Primitive returns a primitive type reference.
func Primitive(k Kind) TypeRef { return TypeRef{Ref: RefPrimitive, Kind: k} }

// Enum returns a reference to a qualified enum name.
func Enum(qualified string) TypeRef { return TypeRef{Ref: RefEnum, Name: qualified} }

// Bitmap returns a reference to a qualified bitmap name.
func Bitmap(qualified string) TypeRef { return TypeRef{Ref: RefBitmap, Name: qualified} }

// StructRef returns a reference to a qualified struct name.
func StructRef(qualified string) TypeRef { return TypeRef{Ref: RefStruct, Name: qualified} }

// Named returns an unresolved reference to a qualified name.
func Named(qualified string) TypeRef { return TypeRef{Ref: RefNamed, Name: qualified} }

// List returns a list-of-elem reference.
func List(elem TypeRef) TypeRef { return TypeRef{Ref: RefList, Elem: &elem} }

// Optional returns an optional-inner reference.
func Optional(inner TypeRef) TypeRef { return TypeRef{Ref: RefOptional, Elem: &inner} }

// IsZero reports an uninitialized reference.
func (t TypeRef) IsZero() bool { return t.Ref == RefInvalid }

// Unwrap strips Optional layers.
func (t TypeRef) Unwrap() TypeRef {
	for t.Ref == RefOptional && t.Elem != nil {
		t = *t.Elem
	}
	return t
}

// Map returns a copy of t with fn applied to every named leaf (enum, bitmap,
// struct, named).
func (t TypeRef) Map(fn func(TypeRef) (TypeRef, error)) (TypeRef, error) {
	switch t.Ref {
	case RefList, RefOptional:
		if t.Elem == nil {
			return t, fmt.Errorf("%s without element type", t.Ref)
		}
		elem, err := t.Elem.Map(fn)
		if err != nil {
			return t, err
		}
		t.Elem = &elem
		return t, nil
	case RefEnum, RefBitmap, RefStruct, RefNamed:
		return fn(t)
	default:
		return t, nil
	}
}

// Equal reports structural equality.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Ref != o.Ref || t.Kind != o.Kind || t.Name != o.Name {
		return false
	}
	if (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	return t.Elem == nil || t.Elem.Equal(*o.Elem)
}

// String renders the textual form accepted by ParseTypeRef.
func (t TypeRef) String() string {
	switch t.Ref {
	case RefPrimitive:
		if t.Alias != "" {
			return t.Alias
		}
		return t.Kind.String()
	case RefEnum, RefBitmap, RefStruct, RefNamed:
		return t.Name
	case RefList:
		return "list[" + t.Elem.String() + "]"
	case RefOptional:
		return "optional[" + t.Elem.String() + "]"
	default:
		return "invalid"
	}
}

// ParseTypeRef parses "uint16", "percent100ths", "ActionStruct",
// "ContentLauncher.AdditionalInfoStruct", "list[...]" and "optional[...]".
// Unqualified type names are qualified with scope, the declaring cluster.
func ParseTypeRef(s, scope string) (TypeRef, error) {
	s = strings.TrimSpace(s)
	if inner, ok := wrapped(s, "list"); ok {
		elem, err := ParseTypeRef(inner, scope)
		if err != nil {
			return TypeRef{}, err
		}
		return List(elem), nil
	}
	if inner, ok := wrapped(s, "optional"); ok {
		elem, err := ParseTypeRef(inner, scope)
		if err != nil {
			return TypeRef{}, err
		}
		return Optional(elem), nil
	}
	if k, ok := ParseKind(s); ok {
		ref := Primitive(k)
		if s != k.String() {
			ref.Alias = s
		}
		return ref, nil
	}
	if !validName(s) {
		return TypeRef{}, fmt.Errorf("invalid type %q", s)
	}
	if !strings.Contains(s, ".") {
		if scope == "" {
			return TypeRef{}, fmt.Errorf("unqualified type %q without scope", s)
		}
		s = Qualify(scope, s)
	}
	return Named(s), nil
}

// Qualify joins a cluster name and a type name into a flat-table key.
func Qualify(cluster, name string) string {
	return cluster + "." + name
}

// SplitQualified splits "Cluster.TypeName".
func SplitQualified(q string) (cluster, name string) {
	if i := strings.IndexByte(q, '.'); i >= 0 {
		return q[:i], q[i+1:]
	}
	return "", q
}

func wrapped(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix+"[") || !strings.HasSuffix(s, "]") {
		return "", false
	}
	return s[len(prefix)+1 : len(s)-1], true
}

func validName(s string) bool {
	if s == "" || strings.Count(s, ".") > 1 || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (t TypeRef) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
