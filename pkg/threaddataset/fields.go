package threaddataset

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/netip"
	"sort"
	"strings"
	"time"
)

// Delay timer bounds.
const (
	MinDelayTimer = 30 * time.Second
	MaxDelayTimer = 72 * time.Hour
)

// Channel page base channels. Page 0 is 2.4 GHz O-QPSK.
var pageBase = []struct {
	page uint8
	base int
}{
	{0, 11},
	{2, 33},
	{4, 45},
	{5, 51},
	{6, 63},
}

func baseChannel(page uint8) (int, bool) {
	for _, p := range pageBase {
		if p.page == page {
			return p.base, true
		}
	}
	return 0, false
}

// ActiveTimestamp returns the active timestamp.
func (d *Dataset) ActiveTimestamp() (Timestamp, bool) {
	return d.timestamp(TypeActiveTimestamp)
}

// SetActiveTimestamp sets the active timestamp.
func (d *Dataset) SetActiveTimestamp(ts Timestamp) {
	d.putUint64(TypeActiveTimestamp, ts.Uint64())
}

// PendingTimestamp returns the pending timestamp.
func (d *Dataset) PendingTimestamp() (Timestamp, bool) {
	return d.timestamp(TypePendingTimestamp)
}

// SetPendingTimestamp sets the pending timestamp.
func (d *Dataset) SetPendingTimestamp(ts Timestamp) {
	d.putUint64(TypePendingTimestamp, ts.Uint64())
}

func (d *Dataset) timestamp(t Type) (Timestamp, bool) {
	v, ok := d.tlvs[t]
	if !ok || len(v) != 8 {
		return Timestamp{}, false
	}
	return TimestampFromUint64(binary.BigEndian.Uint64(v)), true
}

// DelayTimer returns the pending dataset delay.
func (d *Dataset) DelayTimer() (time.Duration, bool) {
	v, ok := d.tlvs[TypeDelayTimer]
	if !ok || len(v) != 4 {
		return 0, false
	}
	return time.Duration(binary.BigEndian.Uint32(v)) * time.Millisecond, true
}

// SetDelayTimer sets the pending dataset delay, between 30 seconds and 72
// hours.
func (d *Dataset) SetDelayTimer(delay time.Duration) error {
	if delay < MinDelayTimer || delay > MaxDelayTimer {
		return fmt.Errorf("%w: delay timer %s not in [%s, %s]", ErrOutOfRange, delay, MinDelayTimer, MaxDelayTimer)
	}
	b := binary.BigEndian.AppendUint32(nil, uint32(delay/time.Millisecond))
	d.Set(TypeDelayTimer, b)
	return nil
}

// Channel returns the channel number. Only the three octet page 0 form is
// recognized.
func (d *Dataset) Channel() (uint16, bool) {
	v, ok := d.tlvs[TypeChannel]
	if !ok || len(v) != 3 {
		return 0, false
	}
	return binary.BigEndian.Uint16(v[1:]), true
}

// SetChannel sets the channel on page 0.
func (d *Dataset) SetChannel(ch uint16) {
	d.Set(TypeChannel, []byte{0, byte(ch >> 8), byte(ch)})
}

// Channels returns the channels selected by the channel mask, ascending.
func (d *Dataset) Channels() ([]int, bool) {
	v, ok := d.tlvs[TypeChannelMask]
	if !ok {
		return nil, false
	}
	if len(v) < 3 {
		return []int{}, true
	}
	page, n := v[0], int(v[1])
	if n < 1 || n > 4 || len(v) != 2+n {
		return []int{}, true
	}
	base, _ := baseChannel(page)
	var mask uint32
	for i := 0; i < n; i++ {
		mask |= uint32(v[2+i]) << (8 * (n - 1 - i))
	}
	out := []int{}
	for i := 0; i < 32; i++ {
		if mask&(1<<i) != 0 {
			out = append(out, base+i)
		}
	}
	return out, true
}

// SetChannels stores a channel mask covering chans. The page is chosen from
// the lowest channel; channels outside that page's 32 channel window are
// dropped. An empty set leaves the dataset unchanged.
func (d *Dataset) SetChannels(chans []int) {
	if len(chans) == 0 {
		return
	}
	sorted := append([]int(nil), chans...)
	sort.Ints(sorted)
	page, base := pageBase[0].page, pageBase[0].base
	for _, p := range pageBase[1:] {
		if sorted[0] >= p.base {
			page, base = p.page, p.base
		}
	}
	var mask uint32
	for _, ch := range sorted {
		if bit := ch - base; bit >= 0 && bit < 32 {
			mask |= 1 << bit
		}
	}
	b := []byte{page, 4}
	d.Set(TypeChannelMask, binary.BigEndian.AppendUint32(b, mask))
}

// ChannelMask returns the channel mask with bit n set for channel n.
func (d *Dataset) ChannelMask() (uint64, bool) {
	chans, ok := d.Channels()
	if !ok {
		return 0, false
	}
	var mask uint64
	for _, ch := range chans {
		if ch >= 0 && ch < 64 {
			mask |= 1 << ch
		}
	}
	return mask, true
}

// SetChannelMask sets the channels from a mask with bit n set for channel n.
func (d *Dataset) SetChannelMask(mask uint64) {
	var chans []int
	for i := 0; i < 64; i++ {
		if mask&(1<<i) != 0 {
			chans = append(chans, i)
		}
	}
	d.SetChannels(chans)
}

// PanID returns the PAN identifier.
func (d *Dataset) PanID() (uint16, bool) {
	v, ok := d.tlvs[TypePanID]
	if !ok || len(v) != 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(v), true
}

// SetPanID sets the PAN identifier.
func (d *Dataset) SetPanID(pan uint16) {
	d.Set(TypePanID, binary.BigEndian.AppendUint16(nil, pan))
}

// ExtPanID returns the 8 octet extended PAN identifier.
func (d *Dataset) ExtPanID() ([]byte, bool) { return d.Get(TypeExtPanID) }

// SetExtPanID sets the extended PAN identifier.
func (d *Dataset) SetExtPanID(id []byte) error { return d.setFixed(TypeExtPanID, id, 8) }

// SetExtPanIDHex sets the extended PAN identifier from 16 hex digits.
func (d *Dataset) SetExtPanIDHex(s string) error { return d.setHex(TypeExtPanID, s, 8) }

// NetworkName returns the network name.
func (d *Dataset) NetworkName() (string, bool) {
	v, ok := d.tlvs[TypeNetworkName]
	return string(v), ok
}

// SetNetworkName sets the network name, at most 16 octets.
func (d *Dataset) SetNetworkName(name string) error {
	if len(name) > 16 {
		return fmt.Errorf("%w: network name is %d bytes", ErrInvalidLength, len(name))
	}
	d.Set(TypeNetworkName, []byte(name))
	return nil
}

// NetworkKey returns the 16 octet network key.
func (d *Dataset) NetworkKey() ([]byte, bool) { return d.Get(TypeNetworkKey) }

// SetNetworkKey sets the network key.
func (d *Dataset) SetNetworkKey(key []byte) error { return d.setFixed(TypeNetworkKey, key, 16) }

// SetNetworkKeyHex sets the network key from 32 hex digits.
func (d *Dataset) SetNetworkKeyHex(s string) error { return d.setHex(TypeNetworkKey, s, 16) }

// PSKc returns the 16 octet pre-shared commissioner key.
func (d *Dataset) PSKc() ([]byte, bool) { return d.Get(TypePSKc) }

// SetPSKc sets the pre-shared commissioner key.
func (d *Dataset) SetPSKc(key []byte) error { return d.setFixed(TypePSKc, key, 16) }

// SetPSKcHex sets the pre-shared commissioner key from 32 hex digits.
func (d *Dataset) SetPSKcHex(s string) error { return d.setHex(TypePSKc, s, 16) }

// MeshLocalPrefix returns the /64 mesh local prefix.
func (d *Dataset) MeshLocalPrefix() (netip.Prefix, bool) {
	v, ok := d.tlvs[TypeMeshLocalPrefix]
	if !ok || len(v) != 8 {
		return netip.Prefix{}, false
	}
	var a [16]byte
	copy(a[:], v)
	return netip.PrefixFrom(netip.AddrFrom16(a), 64), true
}

// SetMeshLocalPrefix sets the mesh local prefix from the upper 64 bits of
// an IPv6 prefix.
func (d *Dataset) SetMeshLocalPrefix(p netip.Prefix) error {
	if !p.Addr().Is6() || p.Addr().Is4In6() {
		return fmt.Errorf("%w: mesh local prefix %s is not IPv6", ErrOutOfRange, p)
	}
	a := p.Addr().As16()
	d.Set(TypeMeshLocalPrefix, a[:8])
	return nil
}

// MeshLocalPrefixString formats the prefix as "fdxx:xxxx:xxxx:xxxx::/64"
// with every group zero padded.
func (d *Dataset) MeshLocalPrefixString() (string, bool) {
	v, ok := d.tlvs[TypeMeshLocalPrefix]
	if !ok || len(v) != 8 {
		return "", false
	}
	h := hex.EncodeToString(v)
	return h[0:4] + ":" + h[4:8] + ":" + h[8:12] + ":" + h[12:16] + "::/64", true
}

// SetMeshLocalPrefixString parses an IPv6 address or prefix and keeps its
// upper 64 bits.
func (d *Dataset) SetMeshLocalPrefixString(s string) error {
	addr, err := netip.ParseAddr(strings.SplitN(s, "/", 2)[0])
	if err != nil {
		return fmt.Errorf("%w: mesh local prefix %q: %v", ErrOutOfRange, s, err)
	}
	return d.SetMeshLocalPrefix(netip.PrefixFrom(addr, 64))
}

func (d *Dataset) putUint64(t Type, v uint64) {
	d.Set(t, binary.BigEndian.AppendUint64(nil, v))
}

func (d *Dataset) setFixed(t Type, v []byte, n int) error {
	if len(v) != n {
		return fmt.Errorf("%w: %s is %d bytes, want %d", ErrInvalidLength, t, len(v), n)
	}
	d.Set(t, v)
	return nil
}

func (d *Dataset) setHex(t Type, s string, n int) error {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*n {
		return fmt.Errorf("%w: %s needs %d hex digits, got %d", ErrInvalidLength, t, 2*n, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, t, err)
	}
	d.Set(t, b)
	return nil
}
