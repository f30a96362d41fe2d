package codec

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/types"
)

// Presence unwraps the presence layer of an input value: Go nil, nil
// pointers and absent types.Field values report ok=false. Pointers are
// dereferenced and types.Field values replaced by their content, so an
// explicit null comes back as types.NullValue.
func Presence(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		return Presence(rv.Elem().Interface())
	}
	if t, ok := v.(types.Tristate); ok {
		return Presence(t.Interface())
	}
	if types.IsNull(v) {
		return types.NullValue, true
	}
	return v, true
}

// Check validates v against ref and returns its normalized form:
//
//	unsigned integers  uint64
//	signed integers    int64
//	single / double    float32 / float64
//	string / octstr    string / []byte (copied)
//	enum               types.EnumValue
//	bitmap             types.BitmapValue (undeclared bits cleared)
//	struct             types.Struct, members in declaration order
//	list               []any
//
// types.NullValue passes only when nullable is set. path names the value in
// errors, e.g. "setCredential.credential".
func Check(reg *schema.Registry, ref types.TypeRef, nullable bool, path string, v any) (any, error) {
	v, ok := Presence(v)
	if !ok {
		return nil, mismatch(path, ref, v, "value required")
	}
	if types.IsNull(v) {
		if !nullable {
			return nil, mismatch(path, ref, v, "not nullable")
		}
		return types.NullValue, nil
	}

	ref = ref.Unwrap()
	switch ref.Ref {
	case types.RefPrimitive:
		return checkPrimitive(ref, nullable, path, v)
	case types.RefList:
		return checkList(reg, ref, path, v)
	}

	if reg == nil {
		return nil, fmt.Errorf("%w: %s: no registry to resolve %s", datamodel.ErrTypeNotFound, path, ref)
	}
	resolved, err := reg.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	switch {
	case resolved.Enum != nil:
		return checkEnum(resolved.Enum, nullable, path, v)
	case resolved.Bitmap != nil:
		return checkBitmap(resolved.Bitmap, path, v)
	case resolved.Struct != nil:
		return checkStruct(reg, resolved.Struct, path, v)
	}
	return nil, mismatch(path, ref, v, "unsupported type")
}

func mismatch(path string, ref types.TypeRef, v any, why string) error {
	return fmt.Errorf("%w: %s: want %s, got %T (%s)", datamodel.ErrTypeMismatch, path, ref, v, why)
}

func checkPrimitive(ref types.TypeRef, nullable bool, path string, v any) (any, error) {
	k := ref.Kind
	switch {
	case k == types.KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case k.Unsigned():
		u, ok := toUint(v)
		if !ok || !k.FitsUint(u) {
			return nil, mismatch(path, ref, v, "out of range")
		}
		if sentinel, _ := k.NullSentinel(); nullable && u == sentinel {
			return nil, mismatch(path, ref, v, "value reserved for null")
		}
		return u, nil
	case k.Signed():
		i, ok := toInt(v)
		if !ok || !k.FitsInt(i) {
			return nil, mismatch(path, ref, v, "out of range")
		}
		if sentinel, _ := k.NullSentinel(); nullable && uint64(i) == sentinel {
			return nil, mismatch(path, ref, v, "value reserved for null")
		}
		return i, nil
	case k.Float():
		f, ok := toFloat(v)
		if !ok {
			break
		}
		if k == types.KindSingle {
			return float32(f), nil
		}
		return f, nil
	case k == types.KindString:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.String {
			s := rv.String()
			if !utf8.ValidString(s) {
				return nil, mismatch(path, ref, v, "invalid UTF-8")
			}
			return s, nil
		}
	case k == types.KindOctets:
		if b, ok := v.([]byte); ok {
			return append([]byte{}, b...), nil
		}
	}
	return nil, mismatch(path, ref, v, "wrong kind")
}

func checkEnum(e *schema.EnumDescriptor, nullable bool, path string, v any) (any, error) {
	ref := types.Enum(e.QualifiedName())
	var raw uint64
	switch x := v.(type) {
	case types.EnumValue:
		raw = x.Raw
	case string:
		entry, ok := e.Lookup(x)
		if !ok {
			return nil, mismatch(path, ref, v, fmt.Sprintf("no value named %q", x))
		}
		raw = entry.Value
	default:
		u, ok := toUint(v)
		if !ok {
			return nil, mismatch(path, ref, v, "wrong kind")
		}
		raw = u
	}
	if !e.Base.FitsUint(raw) {
		return nil, mismatch(path, ref, v, "out of range")
	}
	if sentinel, _ := e.Base.NullSentinel(); nullable && raw == sentinel {
		return nil, mismatch(path, ref, v, "value reserved for null")
	}
	return e.Decode(raw), nil
}

func checkBitmap(b *schema.BitmapDescriptor, path string, v any) (any, error) {
	switch x := v.(type) {
	case types.BitmapValue:
		return b.Decode(b.Encode(x)), nil
	case []string:
		for _, name := range x {
			if _, ok := b.Field(name); !ok {
				return nil, mismatch(path, types.Bitmap(b.QualifiedName()), v, fmt.Sprintf("no field named %q", name))
			}
		}
		return b.Of(x...), nil
	}
	u, ok := toUint(v)
	if !ok || !b.Base.FitsUint(u) {
		return nil, mismatch(path, types.Bitmap(b.QualifiedName()), v, "wrong kind")
	}
	return b.Decode(u), nil
}

// checkStruct accepts types.Struct or map[string]any. Members not supplied
// are left out; members the struct does not declare are rejected.
func checkStruct(reg *schema.Registry, s *schema.StructDescriptor, path string, v any) (any, error) {
	byName := map[string]any{}
	switch x := v.(type) {
	case types.Struct:
		for _, m := range x.Members {
			byName[m.Name] = m.Value
		}
	case map[string]any:
		byName = x
	default:
		return nil, mismatch(path, types.StructRef(s.QualifiedName()), v, "wrong kind")
	}
	for name := range byName {
		if _, ok := s.Field(name); !ok {
			return nil, fmt.Errorf("%w: %s: %s has no field %q", datamodel.ErrTypeMismatch, path, s.QualifiedName(), name)
		}
	}

	out := types.Struct{Members: make([]types.Member, 0, len(byName))}
	for _, f := range s.Fields {
		fv, ok := Presence(byName[f.Name])
		if !ok {
			continue
		}
		checked, err := Check(reg, f.Type, f.Nullable, path+"."+f.Name, fv)
		if err != nil {
			return nil, err
		}
		out.Members = append(out.Members, types.Member{Name: f.Name, ID: uint32(f.ID), Value: checked})
	}
	return out, nil
}

func checkList(reg *schema.Registry, ref types.TypeRef, path string, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, mismatch(path, ref, v, "wrong kind")
	}
	out := make([]any, rv.Len())
	for i := range out {
		checked, err := Check(reg, *ref.Elem, false, fmt.Sprintf("%s[%d]", path, i), rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = checked
	}
	return out, nil
}

func toUint(v any) (uint64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i := rv.Int(); i >= 0 {
			return uint64(i), true
		}
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= 1<<63-1 {
			return int64(u), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	if u, ok := toUint(v); ok {
		return float64(u), true
	}
	return 0, false
}
