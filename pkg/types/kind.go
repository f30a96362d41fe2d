// Package types maps Matter wire primitives onto Go representations and
// defines the TypeRef union used by every schema element.
package types

import (
	"math"
	"strings"
)

// Kind is a wire primitive. Semantic data types (percent100ths, node-id,
// epoch-s, ...) map onto one of these; see ParseKind.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindUint8
	KindUint16
	KindUint24
	KindUint32
	KindUint40
	KindUint48
	KindUint56
	KindUint64
	KindInt8
	KindInt16
	KindInt24
	KindInt32
	KindInt40
	KindInt48
	KindInt56
	KindInt64
	KindSingle
	KindDouble
	KindString
	KindOctets
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint24:  "uint24",
	KindUint32:  "uint32",
	KindUint40:  "uint40",
	KindUint48:  "uint48",
	KindUint56:  "uint56",
	KindUint64:  "uint64",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt24:   "int24",
	KindInt32:   "int32",
	KindInt40:   "int40",
	KindInt48:   "int48",
	KindInt56:   "int56",
	KindInt64:   "int64",
	KindSingle:  "single",
	KindDouble:  "double",
	KindString:  "string",
	KindOctets:  "octstr",
}

// String returns the canonical name of the primitive.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// aliases covers the semantic data types of the data model tables.
var aliases = map[string]Kind{
	"boolean": KindBool,
	"float":   KindSingle,

	"char_string":       KindString,
	"long_char_string":  KindString,
	"octet_string":      KindOctets,
	"long_octet_string": KindOctets,
	"hwadr":             KindOctets,
	"ipadr":             KindOctets,
	"ipv4adr":           KindOctets,
	"ipv6adr":           KindOctets,
	"ipv6pre":           KindOctets,

	"enum8":      KindUint8,
	"map8":       KindUint8,
	"bitmap8":    KindUint8,
	"percent":    KindUint8,
	"fabric-idx": KindUint8,
	"action-id":  KindUint8,
	"status":     KindUint8,
	"priority":   KindUint8,
	"tag":        KindUint8,
	"namespace":  KindUint8,

	"enum16":        KindUint16,
	"map16":         KindUint16,
	"bitmap16":      KindUint16,
	"percent100ths": KindUint16,
	"endpoint-no":   KindUint16,
	"group-id":      KindUint16,
	"vendor-id":     KindUint16,
	"entry-idx":     KindUint16,

	"map32":        KindUint32,
	"bitmap32":     KindUint32,
	"cluster-id":   KindUint32,
	"attribute-id": KindUint32,
	"command-id":   KindUint32,
	"event-id":     KindUint32,
	"field-id":     KindUint32,
	"devtype-id":   KindUint32,
	"trans-id":     KindUint32,
	"data-ver":     KindUint32,
	"epoch-s":      KindUint32,
	"elapsed-s":    KindUint32,
	"utc":          KindUint32,
	"date":         KindUint32,
	"tod":          KindUint32,

	"map64":      KindUint64,
	"bitmap64":   KindUint64,
	"node-id":    KindUint64,
	"fabric-id":  KindUint64,
	"subject-id": KindUint64,
	"epoch-us":   KindUint64,
	"posix-ms":   KindUint64,
	"systime-ms": KindUint64,
	"systime-us": KindUint64,
	"event-no":   KindUint64,

	"temperature": KindInt16,
	"amperage-ma": KindInt64,
	"voltage-mv":  KindInt64,
	"power-mw":    KindInt64,
	"energy-mwh":  KindInt64,
	"money":       KindInt64,
}

// ParseKind resolves a primitive or semantic type name. The second result is
// false when name is not a primitive (it may still name an enum, bitmap or
// struct).
func ParseKind(name string) (Kind, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, s := range kindNames {
		if s == n && Kind(k) != KindInvalid {
			return Kind(k), true
		}
	}
	k, ok := aliases[n]
	return k, ok
}

// Width returns the encoded width in bytes of fixed-size kinds, 0 otherwise.
func (k Kind) Width() int {
	switch {
	case k == KindBool:
		return 1
	case k >= KindUint8 && k <= KindUint64:
		return int(k-KindUint8) + 1
	case k >= KindInt8 && k <= KindInt64:
		return int(k-KindInt8) + 1
	case k == KindSingle:
		return 4
	case k == KindDouble:
		return 8
	default:
		return 0
	}
}

// Bits returns the integer width in bits, 0 for non-integers.
func (k Kind) Bits() int {
	if !k.Integer() {
		return 0
	}
	return k.Width() * 8
}

// Unsigned reports an unsigned integer kind.
func (k Kind) Unsigned() bool { return k >= KindUint8 && k <= KindUint64 }

// Signed reports a signed integer kind.
func (k Kind) Signed() bool { return k >= KindInt8 && k <= KindInt64 }

// Integer reports any integer kind.
func (k Kind) Integer() bool { return k.Unsigned() || k.Signed() }

// Float reports single or double.
func (k Kind) Float() bool { return k == KindSingle || k == KindDouble }

// MinInt is the smallest value of an integer kind.
func (k Kind) MinInt() int64 {
	if !k.Signed() {
		return 0
	}
	if k.Bits() == 64 {
		return math.MinInt64
	}
	return -(int64(1) << (k.Bits() - 1))
}

// MaxUint is the largest value of an integer kind.
func (k Kind) MaxUint() uint64 {
	switch {
	case k.Unsigned() && k.Bits() == 64:
		return math.MaxUint64
	case k.Unsigned():
		return uint64(1)<<k.Bits() - 1
	case k.Signed():
		return uint64(1)<<(k.Bits()-1) - 1
	default:
		return 0
	}
}

// FitsInt reports whether v is in range for the kind.
func (k Kind) FitsInt(v int64) bool {
	if !k.Integer() {
		return false
	}
	if v < 0 {
		return k.Signed() && v >= k.MinInt()
	}
	return uint64(v) <= k.MaxUint()
}

// FitsUint reports whether v is in range for the kind.
func (k Kind) FitsUint(v uint64) bool {
	return k.Integer() && v <= k.MaxUint()
}

// NullSentinel returns the value reserved to encode null in fixed-width
// nullable integers: the maximum for unsigned kinds, the minimum for signed
// kinds (as a two's complement bit pattern). Non-integers return 0, false.
func (k Kind) NullSentinel() (uint64, bool) {
	switch {
	case k.Unsigned():
		return k.MaxUint(), true
	case k.Signed():
		return uint64(k.MinInt()), true
	default:
		return 0, false
	}
}
