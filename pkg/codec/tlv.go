package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/tlv"
	"github.com/backkem/matterschema/pkg/types"
)

// ErrFieldIDRange is returned when a field ID does not fit a context tag.
var ErrFieldIDRange = errors.New("codec: field id does not fit a context tag")

// EncodeTLV writes cmd as the command fields structure of an invoke request:
// an anonymous structure with one context-tagged member per supplied
// argument.
func EncodeTLV(cmd *EncodedCommand) ([]byte, error) {
	w := tlv.NewWriter()
	if err := w.StartStructure(tlv.Anonymous()); err != nil {
		return nil, err
	}
	for _, a := range cmd.Args {
		tag, err := contextTag(a.FieldID)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", cmd.Name, a.Name, err)
		}
		if err := EncodeValue(w, tag, a.Value); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", cmd.Name, a.Name, err)
		}
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return w.Bytes()
}

func contextTag(id datamodel.FieldID) (tlv.Tag, error) {
	if id > 0xFF {
		return tlv.Tag{}, fmt.Errorf("%w: %d", ErrFieldIDRange, id)
	}
	return tlv.ContextTag(uint8(id)), nil
}

// EncodeValue writes one value of the normalized value model (see Check).
// Lists are written as TLV arrays.
func EncodeValue(w *tlv.Writer, tag tlv.Tag, v any) error {
	switch x := v.(type) {
	case types.NullType:
		return w.PutNull(tag)
	case bool:
		return w.PutBool(tag, x)
	case uint64:
		return w.PutUint(tag, x)
	case int64:
		return w.PutInt(tag, x)
	case float32:
		return w.PutFloat32(tag, x)
	case float64:
		return w.PutFloat64(tag, x)
	case string:
		return w.PutString(tag, x)
	case []byte:
		return w.PutBytes(tag, x)
	case types.EnumValue:
		return w.PutUint(tag, x.Raw)
	case types.BitmapValue:
		return w.PutUint(tag, x.Raw)
	case types.Struct:
		if err := w.StartStructure(tag); err != nil {
			return err
		}
		for _, m := range x.Members {
			mt, err := contextTag(datamodel.FieldID(m.ID))
			if err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}
			if err := EncodeValue(w, mt, m.Value); err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}
		}
		return w.EndContainer()
	case []any:
		if err := w.StartArray(tag); err != nil {
			return err
		}
		for i, e := range x {
			if err := EncodeValue(w, tlv.Anonymous(), e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return w.EndContainer()
	}

	if u, ok := toUint(v); ok {
		return w.PutUint(tag, u)
	}
	if i, ok := toInt(v); ok {
		return w.PutInt(tag, i)
	}
	return fmt.Errorf("%w: cannot encode %T", datamodel.ErrTypeMismatch, v)
}

// DecodeTLV decodes a single top-level element typed by ref.
func DecodeTLV(reg *schema.Registry, ref types.TypeRef, data []byte) (any, error) {
	r := tlv.NewReader(data)
	if err := r.Next(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, tlv.ErrUnexpectedEOF
		}
		return nil, err
	}
	return DecodeValue(reg, ref, r)
}

// DecodeValue decodes the element r is positioned on. Unknown enum values
// and undeclared bitmap bits are tolerated, unknown struct members skipped.
// Both TLV arrays and lists are accepted for list types.
func DecodeValue(reg *schema.Registry, ref types.TypeRef, r *tlv.Reader) (any, error) {
	return decodeValue(reg, ref.Unwrap(), r, ref.String())
}

func decodeValue(reg *schema.Registry, ref types.TypeRef, r *tlv.Reader, path string) (any, error) {
	if r.IsNull() {
		return types.NullValue, nil
	}
	switch ref.Ref {
	case types.RefPrimitive:
		v, err := decodePrimitive(ref.Kind, r)
		if err != nil {
			return nil, decodeErr(path, ref, r, err)
		}
		return v, nil
	case types.RefList:
		return decodeList(reg, *ref.Elem, r, path)
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
		raw, err := r.Uint()
		if err != nil {
			return nil, decodeErr(path, ref, r, err)
		}
		return resolved.Enum.Decode(raw), nil
	case resolved.Bitmap != nil:
		raw, err := r.Uint()
		if err != nil {
			return nil, decodeErr(path, ref, r, err)
		}
		return resolved.Bitmap.Decode(raw), nil
	case resolved.Struct != nil:
		s := resolved.Struct
		fields, err := decodeFields(reg, s.Fields, r, path)
		if err != nil {
			return nil, err
		}
		return types.Struct{Members: fields}, nil
	}
	return nil, fmt.Errorf("%w: %s: cannot decode %s", datamodel.ErrTypeMismatch, path, ref)
}

func decodeErr(path string, ref types.TypeRef, r *tlv.Reader, err error) error {
	return fmt.Errorf("%w: %s: want %s, got TLV %s: %v", datamodel.ErrTypeMismatch, path, ref, r.Type(), err)
}

func decodePrimitive(k types.Kind, r *tlv.Reader) (any, error) {
	switch {
	case k == types.KindBool:
		return r.Bool()
	case k.Unsigned():
		return r.Uint()
	case k.Signed():
		return r.Int()
	case k == types.KindSingle:
		f, err := r.Float()
		return float32(f), err
	case k == types.KindDouble:
		return r.Float()
	case k == types.KindString:
		return r.String()
	case k == types.KindOctets:
		return r.Bytes()
	}
	return nil, fmt.Errorf("unsupported kind %s", k)
}

func decodeList(reg *schema.Registry, elem types.TypeRef, r *tlv.Reader, path string) (any, error) {
	if t := r.Type(); t != tlv.ElementTypeArray && t != tlv.ElementTypeList {
		return nil, fmt.Errorf("%w: %s: want list, got TLV %s", datamodel.ErrTypeMismatch, path, t)
	}
	if err := r.EnterContainer(); err != nil {
		return nil, err
	}
	out := []any{}
	for i := 0; ; i++ {
		if err := r.Next(); err != nil {
			return nil, err
		}
		if r.IsEndOfContainer() {
			break
		}
		v, err := decodeValue(reg, elem.Unwrap(), r, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, r.ExitContainer()
}

// decodeFields reads a structure whose members carry context tags and
// returns them in declaration order.
func decodeFields(reg *schema.Registry, fields []schema.StructField, r *tlv.Reader, path string) ([]types.Member, error) {
	if r.Type() != tlv.ElementTypeStruct {
		return nil, fmt.Errorf("%w: %s: want structure, got TLV %s", datamodel.ErrTypeMismatch, path, r.Type())
	}
	if err := r.EnterContainer(); err != nil {
		return nil, err
	}
	seen := make(map[datamodel.FieldID]any, len(fields))
	for {
		if err := r.Next(); err != nil {
			return nil, err
		}
		if r.IsEndOfContainer() {
			break
		}
		if !r.Tag().IsContext() {
			if err := r.Skip(); err != nil {
				return nil, err
			}
			continue
		}
		id := datamodel.FieldID(r.Tag().Number())
		f, ok := findField(fields, id)
		if !ok {
			if err := r.Skip(); err != nil {
				return nil, err
			}
			continue
		}
		v, err := decodeValue(reg, f.Type.Unwrap(), r, path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		seen[id] = v
	}
	if err := r.ExitContainer(); err != nil {
		return nil, err
	}

	members := make([]types.Member, 0, len(seen))
	for _, f := range fields {
		if v, ok := seen[f.ID]; ok {
			members = append(members, types.Member{Name: f.Name, ID: uint32(f.ID), Value: v})
		}
	}
	return members, nil
}

func findField(fields []schema.StructField, id datamodel.FieldID) (*schema.StructField, bool) {
	for i := range fields {
		if fields[i].ID == id {
			return &fields[i], true
		}
	}
	return nil, false
}

// DecodeCommand decodes a command fields structure back into an
// EncodedCommand.
func DecodeCommand(cluster *schema.ClusterSchema, cmd *schema.CommandDescriptor, data []byte) (*EncodedCommand, error) {
	r := tlv.NewReader(data)
	if err := r.Next(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, tlv.ErrUnexpectedEOF
		}
		return nil, err
	}
	members, err := decodeFields(cluster.Registry(), cmd.Params, r, cmd.Name)
	if err != nil {
		return nil, err
	}
	out := &EncodedCommand{
		Cluster:     cluster.ID,
		ClusterName: cluster.Name,
		ID:          cmd.ID,
		Name:        cmd.Name,
		Args:        make([]Arg, len(members)),
	}
	for i, m := range members {
		out.Args[i] = Arg{Name: m.Name, FieldID: datamodel.FieldID(m.ID), Value: m.Value}
	}
	return out, nil
}
