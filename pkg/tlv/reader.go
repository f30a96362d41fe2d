package tlv

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Reader walks TLV elements in a byte slice. Call Next to advance; containers
// are either entered with EnterContainer or skipped as a whole by the next
// call to Next.
type Reader struct {
	data  []byte
	pos   int
	stack []ElementType

	has     bool
	entered bool
	elem    ElementType
	tag     Tag
	val     []byte
}

// NewReader returns a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Next advances to the next element. It returns io.EOF at the end of the
// top-level input.
func (r *Reader) Next() error {
	if r.has && r.elem.IsContainer() && !r.entered {
		if err := r.skipContents(); err != nil {
			return err
		}
	}
	r.has = false
	if r.pos >= len(r.data) {
		if len(r.stack) > 0 {
			return ErrUnexpectedEOF
		}
		return io.EOF
	}
	e, tag, val, err := r.scan()
	if err != nil {
		return err
	}
	if e == ElementTypeEnd && len(r.stack) == 0 {
		return ErrNotInContainer
	}
	r.elem, r.tag, r.val = e, tag, val
	r.has, r.entered = true, false
	return nil
}

// scan decodes one element header at pos and advances past its value.
func (r *Reader) scan() (ElementType, Tag, []byte, error) {
	e, tc := parseControl(r.data[r.pos])
	if e > ElementTypeEnd {
		return 0, Tag{}, nil, ErrInvalidElementType
	}
	p := r.pos + 1
	ts := tc.Size()
	if p+ts > len(r.data) {
		return 0, Tag{}, nil, ErrUnexpectedEOF
	}
	tag := parseTag(tc, r.data[p:p+ts])
	p += ts

	var val []byte
	switch {
	case e.valueSize() > 0:
		n := e.valueSize()
		if p+n > len(r.data) {
			return 0, Tag{}, nil, ErrUnexpectedEOF
		}
		val = r.data[p : p+n]
		p += n
	case e.IsString():
		ls := e.lengthSize()
		if p+ls > len(r.data) {
			return 0, Tag{}, nil, ErrUnexpectedEOF
		}
		n := readLE(r.data[p:p+ls], ls)
		p += ls
		if n > uint64(len(r.data)-p) {
			return 0, Tag{}, nil, ErrUnexpectedEOF
		}
		val = r.data[p : p+int(n)]
		p += int(n)
	}
	r.pos = p
	return e, tag, val, nil
}

func (r *Reader) skipContents() error {
	depth := 1
	for depth > 0 {
		if r.pos >= len(r.data) {
			return ErrUnexpectedEOF
		}
		e, _, _, err := r.scan()
		if err != nil {
			return err
		}
		switch {
		case e.IsContainer():
			depth++
		case e == ElementTypeEnd:
			depth--
		}
	}
	return nil
}

// Type returns the current element type.
func (r *Reader) Type() ElementType { return r.elem }

// Tag returns the current element tag.
func (r *Reader) Tag() Tag { return r.tag }

// IsEndOfContainer reports whether the current element closes a container.
func (r *Reader) IsEndOfContainer() bool { return r.has && r.elem == ElementTypeEnd }

// IsNull reports whether the current element is null.
func (r *Reader) IsNull() bool { return r.has && r.elem == ElementTypeNull }

// ContainerDepth returns the number of entered containers.
func (r *Reader) ContainerDepth() int { return len(r.stack) }

func (r *Reader) check(ok bool) error {
	if !r.has {
		return ErrNoElement
	}
	if !ok {
		return ErrTypeMismatch
	}
	return nil
}

// Int returns a signed integer value.
func (r *Reader) Int() (int64, error) {
	if err := r.check(r.elem.IsSignedInt()); err != nil {
		return 0, err
	}
	v := readLE(r.val, len(r.val))
	shift := 64 - 8*len(r.val)
	return int64(v<<shift) >> shift, nil
}

// Uint returns an unsigned integer value.
func (r *Reader) Uint() (uint64, error) {
	if err := r.check(r.elem.IsUnsignedInt()); err != nil {
		return 0, err
	}
	return readLE(r.val, len(r.val)), nil
}

// Bool returns a boolean value.
func (r *Reader) Bool() (bool, error) {
	if err := r.check(r.elem.IsBool()); err != nil {
		return false, err
	}
	return r.elem == ElementTypeTrue, nil
}

// Float returns a float value of either width.
func (r *Reader) Float() (float64, error) {
	if err := r.check(r.elem.IsFloat()); err != nil {
		return 0, err
	}
	if r.elem == ElementTypeFloat32 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(r.val))), nil
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.val)), nil
}

// String returns a UTF-8 string value.
func (r *Reader) String() (string, error) {
	if err := r.check(r.elem.IsUTF8String()); err != nil {
		return "", err
	}
	if !utf8.Valid(r.val) {
		return "", ErrInvalidUTF8
	}
	return string(r.val), nil
}

// Bytes returns a copy of an octet string value.
func (r *Reader) Bytes() ([]byte, error) {
	if err := r.check(r.elem.IsBytes()); err != nil {
		return nil, err
	}
	return append([]byte{}, r.val...), nil
}

// EnterContainer descends into the current struct, array or list.
func (r *Reader) EnterContainer() error {
	if err := r.check(r.elem.IsContainer()); err != nil {
		return err
	}
	r.stack = append(r.stack, r.elem)
	r.entered = true
	r.has = false
	return nil
}

// ExitContainer skips the remaining members of the innermost entered
// container, including its end marker.
func (r *Reader) ExitContainer() error {
	if len(r.stack) == 0 {
		return ErrNotInContainer
	}
	for !r.IsEndOfContainer() {
		if err := r.Next(); err != nil {
			return err
		}
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.has = false
	return nil
}

// Skip discards the current element; containers are skipped whole.
func (r *Reader) Skip() error {
	if !r.has {
		return ErrNoElement
	}
	if r.elem.IsContainer() && !r.entered {
		if err := r.skipContents(); err != nil {
			return err
		}
		r.entered = true
	}
	return nil
}

func readLE(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	default:
		return 0
	}
}
