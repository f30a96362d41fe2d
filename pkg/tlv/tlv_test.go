package tlv

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestWriter_Vectors(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer) error
		want  []byte
	}{
		{
			name:  "uint8 anonymous",
			write: func(w *Writer) error { return w.PutUint(Anonymous(), 42) },
			want:  []byte{0x04, 0x2A},
		},
		{
			name:  "uint16 minimum width",
			write: func(w *Writer) error { return w.PutUint(Anonymous(), 300) },
			want:  []byte{0x05, 0x2C, 0x01},
		},
		{
			name:  "negative int8",
			write: func(w *Writer) error { return w.PutInt(Anonymous(), -1) },
			want:  []byte{0x00, 0xFF},
		},
		{
			name:  "null",
			write: func(w *Writer) error { return w.PutNull(Anonymous()) },
			want:  []byte{0x14},
		},
		{
			name: "struct with context members",
			write: func(w *Writer) error {
				if err := w.StartStructure(Anonymous()); err != nil {
					return err
				}
				if err := w.PutUint(ContextTag(0), 1); err != nil {
					return err
				}
				if err := w.PutBool(ContextTag(1), true); err != nil {
					return err
				}
				if err := w.PutString(ContextTag(2), "hi"); err != nil {
					return err
				}
				return w.EndContainer()
			},
			want: []byte{0x15, 0x24, 0x00, 0x01, 0x29, 0x01, 0x2C, 0x02, 0x02, 'h', 'i', 0x18},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter()
			if err := tt.write(w); err != nil {
				t.Fatal(err)
			}
			got, err := w.Bytes()
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got % X, want % X", got, tt.want)
			}
		})
	}
}

func TestWriter_ContainerRules(t *testing.T) {
	w := NewWriter()
	if err := w.EndContainer(); !errors.Is(err, ErrNotInContainer) {
		t.Errorf("EndContainer on empty writer: got %v", err)
	}

	if err := w.StartStructure(Anonymous()); err != nil {
		t.Fatal(err)
	}
	if err := w.PutUint(Anonymous(), 1); !errors.Is(err, ErrAnonymousTagInStruct) {
		t.Errorf("anonymous member: got %v", err)
	}
	if err := w.StartArray(ContextTag(0)); err != nil {
		t.Fatal(err)
	}
	if err := w.PutUint(ContextTag(1), 1); !errors.Is(err, ErrTaggedElementInArray) {
		t.Errorf("tagged array element: got %v", err)
	}
	if w.ContainerDepth() != 2 {
		t.Errorf("depth = %d, want 2", w.ContainerDepth())
	}
	if _, err := w.Bytes(); !errors.Is(err, ErrContainerNotClosed) {
		t.Errorf("Bytes with open containers: got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	w := NewWriter()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(w.StartStructure(Anonymous()))
	must(w.PutInt(ContextTag(0), math.MinInt64))
	must(w.PutUint(ContextTag(1), math.MaxUint64))
	must(w.PutFloat32(ContextTag(2), 1.5))
	must(w.PutFloat64(ContextTag(3), -2.25))
	must(w.PutBytes(ContextTag(4), bytes.Repeat([]byte{0xAB}, 300)))
	must(w.StartList(ContextTag(5)))
	must(w.PutUint(Anonymous(), 7))
	must(w.StartStructure(Anonymous()))
	must(w.PutNull(ContextTag(0)))
	must(w.EndContainer())
	must(w.EndContainer())
	must(w.PutBool(ContextTag(6), false))
	must(w.EndContainer())
	data, err := w.Bytes()
	must(err)

	r := NewReader(data)
	must(r.Next())
	if r.Type() != ElementTypeStruct {
		t.Fatalf("type = %v, want Struct", r.Type())
	}
	must(r.EnterContainer())

	must(r.Next())
	if i, err := r.Int(); err != nil || i != math.MinInt64 {
		t.Errorf("Int = %d, %v", i, err)
	}
	must(r.Next())
	if u, err := r.Uint(); err != nil || u != math.MaxUint64 {
		t.Errorf("Uint = %d, %v", u, err)
	}
	must(r.Next())
	if f, err := r.Float(); err != nil || f != 1.5 {
		t.Errorf("Float32 = %v, %v", f, err)
	}
	must(r.Next())
	if f, err := r.Float(); err != nil || f != -2.25 {
		t.Errorf("Float64 = %v, %v", f, err)
	}
	must(r.Next())
	if r.Type() != ElementTypeBytes2 {
		t.Errorf("long octet string type = %v, want Bytes2", r.Type())
	}
	if b, err := r.Bytes(); err != nil || len(b) != 300 {
		t.Errorf("Bytes len = %d, %v", len(b), err)
	}

	// The list is skipped without entering it.
	must(r.Next())
	if r.Tag().Number() != 5 || r.Type() != ElementTypeList {
		t.Fatalf("got %v %v, want list ctx:5", r.Type(), r.Tag())
	}
	must(r.Next())
	if r.Tag().Number() != 6 {
		t.Fatalf("tag = %v, want ctx:6", r.Tag())
	}
	if v, err := r.Bool(); err != nil || v {
		t.Errorf("Bool = %v, %v", v, err)
	}
	must(r.Next())
	if !r.IsEndOfContainer() {
		t.Fatal("expected end of container")
	}
	must(r.ExitContainer())
	if err := r.Next(); err != io.EOF {
		t.Errorf("Next at end = %v, want io.EOF", err)
	}
}

func TestReader_NestedExit(t *testing.T) {
	data := []byte{
		0x15,
		0x37, 0x00, // list ctx:0
		0x04, 0x01,
		0x04, 0x02,
		0x18,
		0x24, 0x01, 0x09,
		0x18,
	}
	r := NewReader(data)
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if err := r.EnterContainer(); err != nil {
		t.Fatal(err)
	}
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if err := r.EnterContainer(); err != nil {
		t.Fatal(err)
	}
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if err := r.ExitContainer(); err != nil {
		t.Fatal(err)
	}
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if u, err := r.Uint(); err != nil || u != 9 {
		t.Errorf("Uint = %d, %v; want 9", u, err)
	}
	if r.ContainerDepth() != 1 {
		t.Errorf("depth = %d, want 1", r.ContainerDepth())
	}
}

func TestReader_Skip(t *testing.T) {
	data := []byte{
		0x15,
		0x37, 0x00, // list ctx:0
		0x15, 0x24, 0x00, 0x01, 0x18, // nested struct
		0x04, 0x02,
		0x18,
		0x24, 0x01, 0x09,
		0x18,
	}
	r := NewReader(data)
	if err := r.Skip(); !errors.Is(err, ErrNoElement) {
		t.Errorf("Skip before Next: got %v", err)
	}
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if err := r.EnterContainer(); err != nil {
		t.Fatal(err)
	}
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	// A second Skip on the same element is a no-op.
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip() again error = %v", err)
	}
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if u, err := r.Uint(); err != nil || u != 9 {
		t.Errorf("Uint = %d, %v; want 9", u, err)
	}
	if err := r.Next(); err != nil || !r.IsEndOfContainer() {
		t.Errorf("Next = %v, end = %v; want end of container", err, r.IsEndOfContainer())
	}
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"truncated value", []byte{0x05, 0x01}, ErrUnexpectedEOF},
		{"truncated tag", []byte{0x24}, ErrUnexpectedEOF},
		{"string longer than input", []byte{0x0C, 0x05, 'a'}, ErrUnexpectedEOF},
		{"reserved element type", []byte{0x1F}, ErrInvalidElementType},
		{"stray end of container", []byte{0x18}, ErrNotInContainer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewReader(tt.data).Next(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	r := NewReader([]byte{0x04, 0x01})
	if _, err := r.Uint(); !errors.Is(err, ErrNoElement) {
		t.Errorf("read before Next: got %v", err)
	}
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Int(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Int on uint: got %v", err)
	}

	r = NewReader([]byte{0x15, 0x24, 0x00, 0x01})
	if err := r.Next(); err != nil {
		t.Fatal(err)
	}
	if err := r.EnterContainer(); err != nil {
		t.Fatal(err)
	}
	if err := r.ExitContainer(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("unterminated struct: got %v", err)
	}
}
