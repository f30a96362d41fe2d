package tlv

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Writer appends TLV elements to an in-memory buffer. Integers use the
// narrowest element type that holds the value.
type Writer struct {
	buf   []byte
	stack []ElementType
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoding. It fails while containers are still open.
func (w *Writer) Bytes() ([]byte, error) {
	if len(w.stack) != 0 {
		return nil, ErrContainerNotClosed
	}
	return w.buf, nil
}

// ContainerDepth returns the number of open containers.
func (w *Writer) ContainerDepth() int { return len(w.stack) }

func (w *Writer) head(e ElementType, tag Tag) error {
	if n := len(w.stack); n > 0 {
		switch w.stack[n-1] {
		case ElementTypeStruct:
			if tag.IsAnonymous() {
				return ErrAnonymousTagInStruct
			}
		case ElementTypeArray:
			if !tag.IsAnonymous() {
				return ErrTaggedElementInArray
			}
		}
	}
	w.buf = append(w.buf, buildControl(e, tag.Control()))
	w.buf = tag.appendTo(w.buf)
	return nil
}

// PutInt writes a signed integer.
func (w *Writer) PutInt(tag Tag, v int64) error {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return w.fixed(ElementTypeInt8, tag, uint64(v))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return w.fixed(ElementTypeInt16, tag, uint64(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return w.fixed(ElementTypeInt32, tag, uint64(v))
	default:
		return w.fixed(ElementTypeInt64, tag, uint64(v))
	}
}

// PutUint writes an unsigned integer.
func (w *Writer) PutUint(tag Tag, v uint64) error {
	switch {
	case v <= math.MaxUint8:
		return w.fixed(ElementTypeUInt8, tag, v)
	case v <= math.MaxUint16:
		return w.fixed(ElementTypeUInt16, tag, v)
	case v <= math.MaxUint32:
		return w.fixed(ElementTypeUInt32, tag, v)
	default:
		return w.fixed(ElementTypeUInt64, tag, v)
	}
}

// PutBool writes a boolean.
func (w *Writer) PutBool(tag Tag, v bool) error {
	if v {
		return w.head(ElementTypeTrue, tag)
	}
	return w.head(ElementTypeFalse, tag)
}

// PutFloat32 writes a single precision float.
func (w *Writer) PutFloat32(tag Tag, v float32) error {
	return w.fixed(ElementTypeFloat32, tag, uint64(math.Float32bits(v)))
}

// PutFloat64 writes a double precision float.
func (w *Writer) PutFloat64(tag Tag, v float64) error {
	return w.fixed(ElementTypeFloat64, tag, math.Float64bits(v))
}

// PutString writes a UTF-8 string.
func (w *Writer) PutString(tag Tag, v string) error {
	if !utf8.ValidString(v) {
		return ErrInvalidUTF8
	}
	return w.str(ElementTypeUTF8_1, tag, []byte(v))
}

// PutBytes writes an octet string.
func (w *Writer) PutBytes(tag Tag, v []byte) error {
	return w.str(ElementTypeBytes1, tag, v)
}

// PutNull writes a null.
func (w *Writer) PutNull(tag Tag) error {
	return w.head(ElementTypeNull, tag)
}

// StartStructure opens a structure; members must be tagged.
func (w *Writer) StartStructure(tag Tag) error { return w.open(ElementTypeStruct, tag) }

// StartArray opens an array; elements must be anonymous.
func (w *Writer) StartArray(tag Tag) error { return w.open(ElementTypeArray, tag) }

// StartList opens a list.
func (w *Writer) StartList(tag Tag) error { return w.open(ElementTypeList, tag) }

// EndContainer closes the innermost container.
func (w *Writer) EndContainer() error {
	if len(w.stack) == 0 {
		return ErrNotInContainer
	}
	w.stack = w.stack[:len(w.stack)-1]
	w.buf = append(w.buf, byte(ElementTypeEnd))
	return nil
}

func (w *Writer) open(e ElementType, tag Tag) error {
	if err := w.head(e, tag); err != nil {
		return err
	}
	w.stack = append(w.stack, e)
	return nil
}

func (w *Writer) fixed(e ElementType, tag Tag, bits uint64) error {
	if err := w.head(e, tag); err != nil {
		return err
	}
	w.buf = appendLE(w.buf, bits, e.valueSize())
	return nil
}

// str picks the narrowest length prefix; base is the 1-octet variant.
func (w *Writer) str(base ElementType, tag Tag, data []byte) error {
	n := uint64(len(data))
	e := base
	switch {
	case n > math.MaxUint32:
		e += 3
	case n > math.MaxUint16:
		e += 2
	case n > math.MaxUint8:
		e++
	}
	if err := w.head(e, tag); err != nil {
		return err
	}
	w.buf = appendLE(w.buf, n, e.lengthSize())
	w.buf = append(w.buf, data...)
	return nil
}

func appendLE(b []byte, v uint64, size int) []byte {
	switch size {
	case 1:
		return append(b, byte(v))
	case 2:
		return binary.LittleEndian.AppendUint16(b, uint16(v))
	case 4:
		return binary.LittleEndian.AppendUint32(b, uint32(v))
	case 8:
		return binary.LittleEndian.AppendUint64(b, v)
	default:
		return b
	}
}
