package tlv

import (
	"encoding/binary"
	"fmt"
)

// TagControl is the upper 3 bits of the control octet.
type TagControl uint8

const (
	TagControlAnonymous        TagControl = 0
	TagControlContext          TagControl = 1
	TagControlCommonProfile2   TagControl = 2
	TagControlCommonProfile4   TagControl = 3
	TagControlImplicitProfile2 TagControl = 4
	TagControlImplicitProfile4 TagControl = 5
	TagControlFullyQualified6  TagControl = 6
	TagControlFullyQualified8  TagControl = 7
)

var tagSizes = [...]int{0, 1, 2, 4, 2, 4, 6, 8}

// Size returns the encoded tag width in bytes.
func (tc TagControl) Size() int {
	if int(tc) < len(tagSizes) {
		return tagSizes[tc]
	}
	return 0
}

// Tag identifies an element within its container. Command fields and struct
// members use context tags equal to their field ID.
type Tag struct {
	control TagControl
	vendor  uint16
	profile uint16
	number  uint32
}

// Anonymous returns the empty tag used for top-level and list/array elements.
func Anonymous() Tag { return Tag{} }

// ContextTag returns a context-specific tag.
func ContextTag(n uint8) Tag { return Tag{control: TagControlContext, number: uint32(n)} }

// CommonProfileTag returns a Matter common profile tag.
func CommonProfileTag(n uint32) Tag {
	tc := TagControlCommonProfile2
	if n > 0xFFFF {
		tc = TagControlCommonProfile4
	}
	return Tag{control: tc, number: n}
}

// FullyQualifiedTag returns a vendor/profile qualified tag.
func FullyQualifiedTag(vendor, profile uint16, n uint32) Tag {
	tc := TagControlFullyQualified6
	if n > 0xFFFF {
		tc = TagControlFullyQualified8
	}
	return Tag{control: tc, vendor: vendor, profile: profile, number: n}
}

// Control returns the tag form.
func (t Tag) Control() TagControl { return t.control }

// IsAnonymous reports the anonymous tag.
func (t Tag) IsAnonymous() bool { return t.control == TagControlAnonymous }

// IsContext reports a context-specific tag.
func (t Tag) IsContext() bool { return t.control == TagControlContext }

// Number returns the tag number.
func (t Tag) Number() uint32 { return t.number }

func (t Tag) String() string {
	switch t.control {
	case TagControlAnonymous:
		return "anon"
	case TagControlContext:
		return fmt.Sprintf("ctx:%d", t.number)
	case TagControlFullyQualified6, TagControlFullyQualified8:
		return fmt.Sprintf("fq:%04X:%04X:%d", t.vendor, t.profile, t.number)
	default:
		return fmt.Sprintf("profile:%d", t.number)
	}
}

func (t Tag) appendTo(b []byte) []byte {
	switch t.control {
	case TagControlContext:
		return append(b, byte(t.number))
	case TagControlCommonProfile2, TagControlImplicitProfile2:
		return binary.LittleEndian.AppendUint16(b, uint16(t.number))
	case TagControlCommonProfile4, TagControlImplicitProfile4:
		return binary.LittleEndian.AppendUint32(b, t.number)
	case TagControlFullyQualified6:
		b = binary.LittleEndian.AppendUint16(b, t.vendor)
		b = binary.LittleEndian.AppendUint16(b, t.profile)
		return binary.LittleEndian.AppendUint16(b, uint16(t.number))
	case TagControlFullyQualified8:
		b = binary.LittleEndian.AppendUint16(b, t.vendor)
		b = binary.LittleEndian.AppendUint16(b, t.profile)
		return binary.LittleEndian.AppendUint32(b, t.number)
	default:
		return b
	}
}

func parseTag(tc TagControl, b []byte) Tag {
	t := Tag{control: tc}
	switch tc {
	case TagControlContext:
		t.number = uint32(b[0])
	case TagControlCommonProfile2, TagControlImplicitProfile2:
		t.number = uint32(binary.LittleEndian.Uint16(b))
	case TagControlCommonProfile4, TagControlImplicitProfile4:
		t.number = binary.LittleEndian.Uint32(b)
	case TagControlFullyQualified6:
		t.vendor = binary.LittleEndian.Uint16(b)
		t.profile = binary.LittleEndian.Uint16(b[2:])
		t.number = uint32(binary.LittleEndian.Uint16(b[4:]))
	case TagControlFullyQualified8:
		t.vendor = binary.LittleEndian.Uint16(b)
		t.profile = binary.LittleEndian.Uint16(b[2:])
		t.number = binary.LittleEndian.Uint32(b[4:])
	}
	return t
}
