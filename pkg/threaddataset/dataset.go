// Package threaddataset reads and writes Thread operational datasets, the
// MeshCoP TLV blob carried by NetworkCommissioning.AddOrUpdateThreadNetwork.
//
// A Dataset keeps every TLV it was given, including types it has no accessor
// for, and serializes them in the order an OpenThread border router emits.
package threaddataset

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Type is a MeshCoP TLV type.
type Type uint8

const (
	TypeChannel          Type = 0
	TypePanID            Type = 1
	TypeExtPanID         Type = 2
	TypeNetworkName      Type = 3
	TypePSKc             Type = 4
	TypeNetworkKey       Type = 5
	TypeMeshLocalPrefix  Type = 7
	TypeSecurityPolicy   Type = 12
	TypeActiveTimestamp  Type = 14
	TypePendingTimestamp Type = 51
	TypeDelayTimer       Type = 52
	TypeChannelMask      Type = 53
)

var typeNames = map[Type]string{
	TypeChannel:          "Channel",
	TypePanID:            "PanId",
	TypeExtPanID:         "ExtPanId",
	TypeNetworkName:      "NetworkName",
	TypePSKc:             "PSKc",
	TypeNetworkKey:       "NetworkKey",
	TypeMeshLocalPrefix:  "MeshLocalPrefix",
	TypeSecurityPolicy:   "SecurityPolicy",
	TypeActiveTimestamp:  "ActiveTimestamp",
	TypePendingTimestamp: "PendingTimestamp",
	TypeDelayTimer:       "DelayTimer",
	TypeChannelMask:      "ChannelMask",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("UnknownType(0x%02X)", uint8(t))
}

// canonical is the emission order of the TLVs every active dataset carries.
var canonical = []Type{
	TypeActiveTimestamp,
	TypeChannel,
	TypeChannelMask,
	TypeExtPanID,
	TypeMeshLocalPrefix,
	TypeNetworkKey,
	TypeNetworkName,
	TypePanID,
	TypePSKc,
	TypeSecurityPolicy,
}

// Dataset errors.
var (
	// ErrMalformed indicates a TLV blob that cannot be parsed.
	ErrMalformed = errors.New("threaddataset: malformed dataset")

	// ErrValueTooLong indicates a TLV value longer than 255 octets.
	ErrValueTooLong = errors.New("threaddataset: TLV value longer than 255 bytes")

	// ErrInvalidLength indicates a fixed size field of the wrong length.
	ErrInvalidLength = errors.New("threaddataset: invalid field length")

	// ErrOutOfRange indicates a field value outside its permitted range.
	ErrOutOfRange = errors.New("threaddataset: value out of range")
)

// DefaultChannelMask selects 2.4 GHz channels 11 to 26, one bit per channel.
const DefaultChannelMask uint64 = 0x07FFF800

// DefaultSecurityPolicy is a 672 hour rotation with flags 0xF3B8.
var DefaultSecurityPolicy = SecurityPolicy{RotationHours: 672, Flags: 0xF3B8}

// Dataset is a set of MeshCoP TLVs keyed by type. The zero value is an empty
// dataset; New returns one with the default security policy and channel mask.
type Dataset struct {
	tlvs map[Type][]byte
}

// New returns a dataset carrying DefaultSecurityPolicy and
// DefaultChannelMask.
func New() *Dataset {
	d := &Dataset{}
	d.Set(TypeSecurityPolicy, DefaultSecurityPolicy.bytes())
	d.SetChannelMask(DefaultChannelMask)
	return d
}

// Get returns a copy of the raw value of a TLV.
func (d *Dataset) Get(t Type) ([]byte, bool) {
	v, ok := d.tlvs[t]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Set stores a copy of a raw TLV value.
func (d *Dataset) Set(t Type, v []byte) {
	if d.tlvs == nil {
		d.tlvs = make(map[Type][]byte)
	}
	d.tlvs[t] = append([]byte(nil), v...)
}

// Delete removes a TLV.
func (d *Dataset) Delete(t Type) { delete(d.tlvs, t) }

// Has reports whether a TLV is present.
func (d *Dataset) Has(t Type) bool {
	_, ok := d.tlvs[t]
	return ok
}

// Types returns the present TLV types in ascending order.
func (d *Dataset) Types() []Type {
	out := make([]Type, 0, len(d.tlvs))
	for t := range d.tlvs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Bytes serializes the dataset: the canonical TLVs first, then the rest in
// ascending type order.
func (d *Dataset) Bytes() ([]byte, error) {
	var out []byte
	seen := make(map[Type]bool, len(canonical))
	put := func(t Type) error {
		v, ok := d.tlvs[t]
		if !ok {
			return nil
		}
		if len(v) > 255 {
			return fmt.Errorf("%w: %s", ErrValueTooLong, t)
		}
		out = append(out, byte(t), byte(len(v)))
		out = append(out, v...)
		return nil
	}
	for _, t := range canonical {
		seen[t] = true
		if err := put(t); err != nil {
			return nil, err
		}
	}
	for _, t := range d.Types() {
		if seen[t] {
			continue
		}
		if err := put(t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Hex returns Bytes as upper case hex.
func (d *Dataset) Hex() (string, error) {
	b, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// Parse decodes a TLV blob. A repeated type keeps the last value.
func Parse(data []byte) (*Dataset, error) {
	d := &Dataset{tlvs: make(map[Type][]byte)}
	for i := 0; i < len(data); {
		if i+2 > len(data) {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrMalformed, i)
		}
		t, n := Type(data[i]), int(data[i+1])
		i += 2
		if i+n > len(data) {
			return nil, fmt.Errorf("%w: %s length %d exceeds buffer", ErrMalformed, t, n)
		}
		d.Set(t, data[i:i+n])
		i += n
	}
	return d, nil
}

// ParseHex decodes a hex encoded TLV blob. Whitespace is ignored.
func ParseHex(s string) (*Dataset, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length hex", ErrMalformed)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Parse(b)
}

// String lists each TLV with its hex value.
func (d *Dataset) String() string {
	var sb strings.Builder
	for _, t := range d.Types() {
		fmt.Fprintf(&sb, "  %-18s = %X\n", t, d.tlvs[t])
		if t == TypeSecurityPolicy {
			if p, ok := d.SecurityPolicy(); ok {
				fmt.Fprintf(&sb, "    %s\n", p)
			}
		}
	}
	return sb.String()
}
