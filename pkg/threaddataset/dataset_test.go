package threaddataset

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	d := New()
	got, err := d.Hex()
	if err != nil {
		t.Fatal(err)
	}
	if want := "350600040000FFFF0C0402A0F3B8"; got != want {
		t.Errorf("Hex() = %s, want %s", got, want)
	}
	mask, ok := d.ChannelMask()
	if !ok || mask != DefaultChannelMask {
		t.Errorf("ChannelMask() = %#x, %v", mask, ok)
	}
	p, ok := d.SecurityPolicy()
	if !ok || p != DefaultSecurityPolicy {
		t.Errorf("SecurityPolicy() = %v, %v", p, ok)
	}
}

func TestCanonicalOrder(t *testing.T) {
	var d Dataset
	d.Set(Type(9), []byte{0xAB})
	d.SetPanID(0x1234)
	d.SetChannel(15)
	d.SetActiveTimestamp(Timestamp{Seconds: 1})

	got, err := d.Hex()
	if err != nil {
		t.Fatal(err)
	}
	want := "0E080000000000010000" + "000300000F" + "01021234" + "0901AB"
	if got != want {
		t.Errorf("Hex() = %s, want %s", got, want)
	}

	parsed, err := ParseHex(strings.ToLower(got[:10]) + " \n" + got[10:])
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(parsed.Types(), []Type{TypeChannel, TypePanID, Type(9), TypeActiveTimestamp}) {
		t.Errorf("Types() = %v", parsed.Types())
	}
	ch, ok := parsed.Channel()
	if !ok || ch != 15 {
		t.Errorf("Channel() = %d, %v", ch, ok)
	}
	if Type(9).String() != "UnknownType(0x09)" {
		t.Errorf("Type(9).String() = %s", Type(9))
	}
}

func TestValueTooLong(t *testing.T) {
	var d Dataset
	d.Set(Type(200), make([]byte, 256))
	if _, err := d.Bytes(); !errors.Is(err, ErrValueTooLong) {
		t.Errorf("Bytes() error = %v, want ErrValueTooLong", err)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"0", "00", "000501", "zz"} {
		if _, err := ParseHex(in); !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseHex(%q) error = %v, want ErrMalformed", in, err)
		}
	}
	d, err := Parse(nil)
	if err != nil || len(d.Types()) != 0 {
		t.Errorf("Parse(nil) = %v, %v", d.Types(), err)
	}
}

func TestTimestamp(t *testing.T) {
	ts := Timestamp{Seconds: 0x123456789A, Ticks: 0x7FFF, Authoritative: true}
	if got := TimestampFromUint64(ts.Uint64()); got != ts {
		t.Errorf("round trip = %v, want %v", got, ts)
	}
	if got := (Timestamp{Seconds: 1, Authoritative: true}).Uint64(); got != 0x10001 {
		t.Errorf("Uint64() = %#x", got)
	}

	at := TimestampAt(time.Unix(100, 500_000_000), false)
	if at.Seconds != 100 || at.Ticks != 16384 {
		t.Errorf("TimestampAt() = %v", at)
	}

	var d Dataset
	d.SetPendingTimestamp(ts)
	if got, ok := d.PendingTimestamp(); !ok || got != ts {
		t.Errorf("PendingTimestamp() = %v, %v", got, ok)
	}
}

func TestDelayTimer(t *testing.T) {
	var d Dataset
	for _, bad := range []time.Duration{10 * time.Second, 73 * time.Hour} {
		if err := d.SetDelayTimer(bad); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetDelayTimer(%s) error = %v", bad, err)
		}
	}
	if err := d.SetDelayTimer(time.Minute); err != nil {
		t.Fatal(err)
	}
	if got, ok := d.DelayTimer(); !ok || got != time.Minute {
		t.Errorf("DelayTimer() = %s, %v", got, ok)
	}
	raw, _ := d.Get(TypeDelayTimer)
	if !bytes.Equal(raw, []byte{0x00, 0x00, 0xEA, 0x60}) {
		t.Errorf("raw delay = %X", raw)
	}
}

func TestChannelPages(t *testing.T) {
	var d Dataset
	d.SetChannels([]int{35, 33})
	raw, _ := d.Get(TypeChannelMask)
	if !bytes.Equal(raw, []byte{0x02, 0x04, 0x00, 0x00, 0x00, 0x05}) {
		t.Errorf("raw mask = %X", raw)
	}
	chans, _ := d.Channels()
	if !reflect.DeepEqual(chans, []int{33, 35}) {
		t.Errorf("Channels() = %v", chans)
	}

	d.SetChannels(nil)
	if chans, _ := d.Channels(); len(chans) != 2 {
		t.Errorf("empty set changed the mask: %v", chans)
	}

	d.Set(TypeChannelMask, []byte{0x00, 0x09, 0x01})
	if chans, ok := d.Channels(); !ok || len(chans) != 0 {
		t.Errorf("malformed mask = %v, %v", chans, ok)
	}
}

func TestSecurityPolicy(t *testing.T) {
	d := New()
	p, _ := d.SecurityPolicy()
	checks := map[string]bool{
		"ObtainNetworkKey":        p.ObtainNetworkKey(),
		"NativeCommissioning":     p.NativeCommissioning(),
		"Routers":                 p.Routers(),
		"ExternalCommissioning":   p.ExternalCommissioning(),
		"CommercialCommissioning": !p.CommercialCommissioning(),
		"AutonomousEnrollment":    p.AutonomousEnrollment(),
		"NetworkKeyProvisioning":  p.NetworkKeyProvisioning(),
		"ToBleLink":               p.ToBleLink(),
		"NonCcmRouters":           !p.NonCcmRouters(),
	}
	for name, ok := range checks {
		if !ok {
			t.Errorf("default policy flag %s wrong", name)
		}
	}

	if err := d.SetSecurityFlag(FlagCommercialCommissioning, true); err != nil {
		t.Fatal(err)
	}
	p, _ = d.SecurityPolicy()
	if p.Flags != 0xF7B8 || p.RotationHours != 672 {
		t.Errorf("after SetSecurityFlag: %v", p)
	}

	if err := d.SetSecurityPolicy(SecurityPolicy{RotationHours: 1}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("short rotation error = %v", err)
	}
	if err := d.SetSecurityPolicy(SecurityPolicy{RotationHours: 4}); err != nil {
		t.Fatal(err)
	}
	raw, _ := d.Get(TypeSecurityPolicy)
	if !bytes.Equal(raw, []byte{0x00, 0x04, 0x00, 0x38}) {
		t.Errorf("reserved bits not forced: %X", raw)
	}

	d.Set(TypeSecurityPolicy, []byte{0x00, 0x10, 0x80})
	p, ok := d.SecurityPolicy()
	if !ok || p.Flags != 0x8000 || p.RotationHours != 16 {
		t.Errorf("three octet policy = %v, %v", p, ok)
	}
}

func TestKeyFields(t *testing.T) {
	var d Dataset
	if err := d.SetNetworkKey(make([]byte, 15)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("short key error = %v", err)
	}
	if err := d.SetNetworkKeyHex("0x00112233445566778899AABBCCDDEEFF"); err != nil {
		t.Fatal(err)
	}
	if err := d.SetExtPanIDHex("dead00beef00cafe"); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPSKcHex("zz"); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("bad PSKc error = %v", err)
	}
	if err := d.SetNetworkName("a name that is far too long"); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("long name error = %v", err)
	}
	if err := d.SetNetworkName("OpenThread-1"); err != nil {
		t.Fatal(err)
	}
	ext, _ := d.ExtPanID()
	if hex.EncodeToString(ext) != "dead00beef00cafe" {
		t.Errorf("ExtPanID() = %x", ext)
	}
	name, _ := d.NetworkName()
	if name != "OpenThread-1" {
		t.Errorf("NetworkName() = %q", name)
	}
}

func TestMeshLocalPrefix(t *testing.T) {
	var d Dataset
	if err := d.SetMeshLocalPrefixString("fd00:db8:1:2::/64"); err != nil {
		t.Fatal(err)
	}
	s, _ := d.MeshLocalPrefixString()
	if s != "fd00:0db8:0001:0002::/64" {
		t.Errorf("MeshLocalPrefixString() = %s", s)
	}
	p, _ := d.MeshLocalPrefix()
	if p.String() != "fd00:db8:1:2::/64" {
		t.Errorf("MeshLocalPrefix() = %s", p)
	}
	if err := d.SetMeshLocalPrefixString("10.0.0.1"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("IPv4 prefix error = %v", err)
	}
}

func TestJSON(t *testing.T) {
	d := New()
	d.SetActiveTimestamp(Timestamp{Seconds: 1, Authoritative: true})
	d.SetChannel(15)
	d.SetPanID(0x1234)
	if err := d.SetNetworkName("OpenThread"); err != nil {
		t.Fatal(err)
	}
	if err := d.SetNetworkKeyHex("00112233445566778899aabbccddeeff"); err != nil {
		t.Fatal(err)
	}
	if err := d.SetMeshLocalPrefixString("fd11:2222:3333:4444::"); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"ActiveTimestamp":{"Seconds":1,"Ticks":0,"Authoritative":true}`,
		`"NetworkKey":"00112233445566778899AABBCCDDEEFF"`,
		`"PanId":4660`,
		`"ChannelMask":134215680`,
		`"MeshLocalPrefix":"fd11:2222:3333:4444::/64"`,
		`"RotationTime":672`,
		`"TobleLink":true`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s missing %s", data, want)
		}
	}

	var back Dataset
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	h1, _ := d.Hex()
	h2, _ := back.Hex()
	if h1 != h2 {
		t.Errorf("JSON round trip\ngot:  %s\nwant: %s", h2, h1)
	}
}

func TestUnmarshalJSON_Policy(t *testing.T) {
	var d Dataset
	if err := json.Unmarshal([]byte(`{"SecurityPolicy":{"RotationTime":24,"Routers":true},"Unknown":1}`), &d); err != nil {
		t.Fatal(err)
	}
	p, _ := d.SecurityPolicy()
	if p.RotationHours != 24 || p.Flags != FlagRouters|flagsReserved {
		t.Errorf("policy = %v", p)
	}

	if err := json.Unmarshal([]byte(`{"SecurityPolicy":{"RawFlags":"FFB8"}}`), &d); err != nil {
		t.Fatal(err)
	}
	p, _ = d.SecurityPolicy()
	if p.Flags != 0xFFB8 || p.RotationHours != 672 {
		t.Errorf("raw flags policy = %v", p)
	}

	if err := json.Unmarshal([]byte(`{"DelayTimer":5}`), &d); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("short delay error = %v", err)
	}
	if err := d.UnmarshalJSON([]byte(`[1]`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("array error = %v", err)
	}
}

func TestGeneratePSKc(t *testing.T) {
	got, err := GeneratePSKc("12SECRETPASSWORD34", "Test Network", "0001020304050607")
	if err != nil {
		t.Fatal(err)
	}
	if want := "7dcb19341ea47317d37cc38bf597e749"; hex.EncodeToString(got) != want {
		t.Errorf("PSKc = %x, want %s", got, want)
	}
	upper, _ := GeneratePSKc("12SECRETPASSWORD34", "TEST NETWORK", "0001020304050607")
	if !bytes.Equal(got, upper) {
		t.Error("network name case changed the PSKc")
	}

	bad := []struct{ pass, name, ext string }{
		{"short", "net", "0001020304050607"},
		{"longenough", "", "0001020304050607"},
		{"longenough", "a network name too long", "0001020304050607"},
		{"longenough", "net", "0001"},
		{"longenough", "net", "zz01020304050607"},
	}
	for _, b := range bad {
		if _, err := GeneratePSKc(b.pass, b.name, b.ext); err == nil {
			t.Errorf("GeneratePSKc(%q, %q, %q) succeeded", b.pass, b.name, b.ext)
		}
	}
}

func TestGenerateNetworkKey(t *testing.T) {
	key, err := GenerateNetworkKey(bytes.NewReader(bytes.Repeat([]byte{7}, 32)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(key, bytes.Repeat([]byte{7}, NetworkKeyLength)) {
		t.Errorf("key = %x", key)
	}
	if _, err := GenerateNetworkKey(bytes.NewReader([]byte{1})); err == nil {
		t.Error("short reader succeeded")
	}
	key, err = GenerateNetworkKey(nil)
	if err != nil || len(key) != NetworkKeyLength {
		t.Errorf("GenerateNetworkKey(nil) = %x, %v", key, err)
	}
}
