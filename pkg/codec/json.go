package codec

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/types"
)

// ArgsFromJSON converts a JSON object into an argument map for Build, typed
// by the command's parameters. Integers may be given as numbers or as
// strings in any Go literal base, octet strings as hex, enums by name or
// value and bitmaps as a number, a list of set field names or an object of
// field values. JSON null becomes an explicit null.
func ArgsFromJSON(cluster *schema.ClusterSchema, cmd *schema.CommandDescriptor, data []byte) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s: invalid JSON", datamodel.ErrTypeMismatch, cmd.Name)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: %s: arguments must be a JSON object", datamodel.ErrTypeMismatch, cmd.Name)
	}

	reg := cluster.Registry()
	args := map[string]any{}
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		p, ok := cmd.Param(key.Str)
		if !ok {
			err = fmt.Errorf("%w: %s has no parameter %q", datamodel.ErrTypeMismatch, cmd.Name, key.Str)
			return false
		}
		var v any
		v, err = fromJSON(reg, p.Type.Unwrap(), cmd.Name+"."+p.Name, value)
		if err != nil {
			return false
		}
		args[p.Name] = v
		return true
	})
	if err != nil {
		return nil, err
	}
	return args, nil
}

func fromJSON(reg *schema.Registry, ref types.TypeRef, path string, res gjson.Result) (any, error) {
	if res.Type == gjson.Null {
		return types.NullValue, nil
	}
	switch ref.Ref {
	case types.RefPrimitive:
		return primitiveFromJSON(ref, path, res)
	case types.RefList:
		if !res.IsArray() {
			return nil, jsonMismatch(path, ref, res)
		}
		items := res.Array()
		out := make([]any, len(items))
		for i, item := range items {
			v, err := fromJSON(reg, ref.Elem.Unwrap(), fmt.Sprintf("%s[%d]", path, i), item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
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
		if u, ok := jsonUint(res); ok {
			return u, nil
		}
		if res.Type == gjson.String {
			return res.Str, nil
		}
	case resolved.Bitmap != nil:
		return bitmapFromJSON(resolved.Bitmap, ref, path, res)
	case resolved.Struct != nil:
		if !res.IsObject() {
			break
		}
		out := map[string]any{}
		var ferr error
		res.ForEach(func(key, value gjson.Result) bool {
			f, ok := resolved.Struct.Field(key.Str)
			if !ok {
				ferr = fmt.Errorf("%w: %s: %s has no field %q", datamodel.ErrTypeMismatch, path, resolved.Struct.QualifiedName(), key.Str)
				return false
			}
			var v any
			v, ferr = fromJSON(reg, f.Type.Unwrap(), path+"."+f.Name, value)
			out[f.Name] = v
			return ferr == nil
		})
		if ferr != nil {
			return nil, ferr
		}
		return out, nil
	}
	return nil, jsonMismatch(path, ref, res)
}

func primitiveFromJSON(ref types.TypeRef, path string, res gjson.Result) (any, error) {
	k := ref.Kind
	switch {
	case k == types.KindBool:
		switch res.Type {
		case gjson.True, gjson.False:
			return res.Bool(), nil
		case gjson.String:
			if b, err := strconv.ParseBool(res.Str); err == nil {
				return b, nil
			}
		}
	case k.Unsigned():
		if u, ok := jsonUint(res); ok {
			return u, nil
		}
	case k.Signed():
		if i, ok := jsonInt(res); ok {
			return i, nil
		}
	case k.Float():
		switch res.Type {
		case gjson.Number:
			return res.Num, nil
		case gjson.String:
			if f, err := strconv.ParseFloat(res.Str, 64); err == nil {
				return f, nil
			}
		}
	case k == types.KindString:
		if res.Type == gjson.String {
			return res.Str, nil
		}
	case k == types.KindOctets:
		if res.Type == gjson.String {
			s := strings.TrimPrefix(strings.TrimPrefix(res.Str, "0x"), "hex:")
			b, err := hex.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", datamodel.ErrTypeMismatch, path, err)
			}
			return b, nil
		}
	}
	return nil, jsonMismatch(path, ref, res)
}

// bitmapFromJSON accepts 5, "0x05", ["on", "off"] or {"lift": 2}.
func bitmapFromJSON(b *schema.BitmapDescriptor, ref types.TypeRef, path string, res gjson.Result) (any, error) {
	if u, ok := jsonUint(res); ok {
		return u, nil
	}
	switch {
	case res.IsArray():
		var names []string
		for _, item := range res.Array() {
			if item.Type != gjson.String {
				return nil, jsonMismatch(path, ref, item)
			}
			names = append(names, item.Str)
		}
		return names, nil
	case res.IsObject():
		v := types.BitmapValue{Fields: map[string]uint64{}}
		var err error
		res.ForEach(func(key, value gjson.Result) bool {
			if _, ok := b.Field(key.Str); !ok {
				err = fmt.Errorf("%w: %s: %s has no field %q", datamodel.ErrTypeMismatch, path, b.QualifiedName(), key.Str)
				return false
			}
			switch value.Type {
			case gjson.True:
				v.Fields[key.Str] = 1
			case gjson.False:
			default:
				u, ok := jsonUint(value)
				if !ok {
					err = jsonMismatch(path+"."+key.Str, ref, value)
					return false
				}
				if u != 0 {
					v.Fields[key.Str] = u
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, jsonMismatch(path, ref, res)
}

func jsonUint(res gjson.Result) (uint64, bool) {
	var s string
	switch res.Type {
	case gjson.Number:
		s = res.Raw
	case gjson.String:
		s = res.Str
	default:
		return 0, false
	}
	u, err := strconv.ParseUint(s, 0, 64)
	return u, err == nil
}

func jsonInt(res gjson.Result) (int64, bool) {
	var s string
	switch res.Type {
	case gjson.Number:
		s = res.Raw
	case gjson.String:
		s = res.Str
	default:
		return 0, false
	}
	i, err := strconv.ParseInt(s, 0, 64)
	return i, err == nil
}

func jsonMismatch(path string, ref types.TypeRef, res gjson.Result) error {
	return fmt.Errorf("%w: %s: want %s, got JSON %s", datamodel.ErrTypeMismatch, path, ref, res.Type)
}
