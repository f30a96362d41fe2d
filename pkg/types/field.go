package types

import "fmt"

type fieldState uint8

const (
	stateAbsent fieldState = iota
	stateNull
	statePresent
)

// Field is a tri-state value: absent (not sent), null (sent as null) or
// present with a value. The zero Field is absent.
type Field[T any] struct {
	state fieldState
	value T
}

// Absent returns a field that was not sent.
func Absent[T any]() Field[T] { return Field[T]{} }

// Null returns a field sent as null.
func Null[T any]() Field[T] { return Field[T]{state: stateNull} }

// Some returns a field holding v.
func Some[T any](v T) Field[T] { return Field[T]{state: statePresent, value: v} }

// IsAbsent reports a field that was not sent.
func (f Field[T]) IsAbsent() bool { return f.state == stateAbsent }

// IsNull reports a field sent as null.
func (f Field[T]) IsNull() bool { return f.state == stateNull }

// IsPresent reports a field holding a value.
func (f Field[T]) IsPresent() bool { return f.state == statePresent }

// Get returns the value and whether it is present.
func (f Field[T]) Get() (T, bool) { return f.value, f.state == statePresent }

// OrElse returns the value, or def when absent or null.
func (f Field[T]) OrElse(def T) T {
	if f.state == statePresent {
		return f.value
	}
	return def
}

// Interface maps the field onto the untyped value model: nil when absent,
// NullValue when null, the value otherwise.
func (f Field[T]) Interface() any {
	switch f.state {
	case stateNull:
		return NullValue
	case statePresent:
		return f.value
	default:
		return nil
	}
}

func (f Field[T]) String() string {
	switch f.state {
	case stateNull:
		return "null"
	case statePresent:
		return fmt.Sprint(f.value)
	default:
		return "absent"
	}
}

// Tristate is implemented by Field; the codec uses it to accept typed fields
// as arguments.
type Tristate interface {
	Interface() any
}

// FieldOf converts an untyped value (nil, NullValue or a value) into a Field.
func FieldOf(v any) Field[any] {
	switch {
	case v == nil:
		return Absent[any]()
	case IsNull(v):
		return Null[any]()
	default:
		return Some(v)
	}
}
