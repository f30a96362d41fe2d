package tlv

import "errors"

var (
	// ErrUnexpectedEOF is returned when the input ends inside an element or container.
	ErrUnexpectedEOF = errors.New("tlv: unexpected end of input")

	// ErrInvalidElementType is returned for reserved element type values.
	ErrInvalidElementType = errors.New("tlv: invalid element type")

	// ErrTypeMismatch is returned when reading a value as the wrong type.
	ErrTypeMismatch = errors.New("tlv: type mismatch")

	// ErrNotInContainer is returned when closing a container that is not open.
	ErrNotInContainer = errors.New("tlv: not in container")

	// ErrContainerNotClosed is returned when taking the bytes of an unfinished encoding.
	ErrContainerNotClosed = errors.New("tlv: container not closed")

	// ErrInvalidUTF8 is returned for UTF-8 strings with invalid sequences.
	ErrInvalidUTF8 = errors.New("tlv: invalid UTF-8 string")

	// ErrAnonymousTagInStruct is returned when a structure member has no tag.
	ErrAnonymousTagInStruct = errors.New("tlv: anonymous tag not allowed in structure")

	// ErrTaggedElementInArray is returned when an array element carries a tag.
	ErrTaggedElementInArray = errors.New("tlv: tagged element not allowed in array")

	// ErrNoElement is returned when reading before Next or after EnterContainer.
	ErrNoElement = errors.New("tlv: no current element")
)
