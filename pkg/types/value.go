package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NullType is the explicit null marker of the untyped value model. Go nil
// means "absent"; NullValue means "present as null".
type NullType struct{}

// NullValue is the single null marker.
var NullValue = NullType{}

func (NullType) String() string { return "null" }

// MarshalJSON implements json.Marshaler.
func (NullType) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// IsNull reports whether v is the null marker.
func IsNull(v any) bool {
	switch v.(type) {
	case NullType, *NullType:
		return true
	}
	return false
}

// EnumValue is a decoded enum. Values unknown to the schema table keep their
// raw number with Known=false so newer revisions never fail to decode.
type EnumValue struct {
	Raw   uint64
	Name  string
	Label string
	Known bool
}

func (e EnumValue) String() string {
	if !e.Known {
		return fmt.Sprintf("Unknown(%d)", e.Raw)
	}
	return e.Name
}

// MarshalJSON encodes the raw number.
func (e EnumValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Raw)
}

// BitmapValue is a decoded bitmap. Fields maps declared field names to their
// value (0/1 for single bits, wider for multi-bit fields); only set fields
// are present. Raw holds the declared bits only.
type BitmapValue struct {
	Raw    uint64
	Fields map[string]uint64
}

// Has reports whether the named field is non-zero.
func (b BitmapValue) Has(name string) bool { return b.Fields[name] != 0 }

// Get returns the value of a named field.
func (b BitmapValue) Get(name string) uint64 { return b.Fields[name] }

func (b BitmapValue) String() string {
	names := make([]string, 0, len(b.Fields))
	for n, v := range b.Fields {
		if v == 1 {
			names = append(names, n)
		} else {
			names = append(names, fmt.Sprintf("%s=%d", n, v))
		}
	}
	sort.Strings(names)
	return fmt.Sprintf("0x%X{%s}", b.Raw, strings.Join(names, ","))
}

// MarshalJSON encodes the raw number.
func (b BitmapValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Raw)
}

// Member is one field of a Struct value.
type Member struct {
	Name  string
	ID    uint32
	Value any
}

// Struct is an untyped struct value with members in declaration order.
// Absent optional fields are not members; null fields hold NullValue.
type Struct struct {
	Members []Member
}

// Get returns the value of the named member.
func (s Struct) Get(name string) (any, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// ByID returns the value of the member with the given field ID.
func (s Struct) ByID(id uint32) (any, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m.Value, true
		}
	}
	return nil, false
}

// Len returns the member count.
func (s Struct) Len() int { return len(s.Members) }

// MarshalJSON encodes an object with keys in member order.
func (s Struct) MarshalJSON() ([]byte, error) {
	return MarshalOrdered(len(s.Members), func(i int) (string, any) {
		return s.Members[i].Name, s.Members[i].Value
	})
}

// MarshalOrdered writes a JSON object whose keys keep the given order.
// Octet strings are hex encoded.
func MarshalOrdered(n int, at func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		name, v := at(i)
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := MarshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalValue encodes one untyped value as JSON.
func MarshalValue(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return json.Marshal(fmt.Sprintf("%X", x))
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := MarshalValue(e)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v)
	}
}
