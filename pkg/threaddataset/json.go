package threaddataset

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type jsonTimestamp struct {
	Seconds       uint64 `json:"Seconds"`
	Ticks         uint16 `json:"Ticks"`
	Authoritative bool   `json:"Authoritative"`
}

type jsonPolicy struct {
	RotationTime            uint16 `json:"RotationTime"`
	ObtainNetworkKey        bool   `json:"ObtainNetworkKey"`
	NativeCommissioning     bool   `json:"NativeCommissioning"`
	Routers                 bool   `json:"Routers"`
	ExternalCommissioning   bool   `json:"ExternalCommissioning"`
	CommercialCommissioning bool   `json:"CommercialCommissioning"`
	AutonomousEnrollment    bool   `json:"AutonomousEnrollment"`
	NetworkKeyProvisioning  bool   `json:"NetworkKeyProvisioning"`
	TobleLink               bool   `json:"TobleLink"`
	NonCcmRouters           bool   `json:"NonCcmRouters"`
}

type jsonDataset struct {
	ActiveTimestamp  *jsonTimestamp `json:"ActiveTimestamp,omitempty"`
	PendingTimestamp *jsonTimestamp `json:"PendingTimestamp,omitempty"`
	DelayTimer       *uint32        `json:"DelayTimer,omitempty"`
	NetworkKey       string         `json:"NetworkKey,omitempty"`
	NetworkName      *string        `json:"NetworkName,omitempty"`
	ExtPanID         string         `json:"ExtPanId,omitempty"`
	PanID            *uint16        `json:"PanId,omitempty"`
	Channel          *uint16        `json:"Channel,omitempty"`
	PSKc             string         `json:"PSKc,omitempty"`
	ChannelMask      *uint64        `json:"ChannelMask,omitempty"`
	MeshLocalPrefix  string         `json:"MeshLocalPrefix,omitempty"`
	SecurityPolicy   *jsonPolicy    `json:"SecurityPolicy,omitempty"`
}

func upperHex(b []byte) string { return strings.ToUpper(hex.EncodeToString(b)) }

// MarshalJSON renders the known fields; key material is upper case hex and
// DelayTimer is in milliseconds.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	var j jsonDataset
	if ts, ok := d.ActiveTimestamp(); ok {
		j.ActiveTimestamp = &jsonTimestamp{ts.Seconds, ts.Ticks, ts.Authoritative}
	}
	if ts, ok := d.PendingTimestamp(); ok {
		j.PendingTimestamp = &jsonTimestamp{ts.Seconds, ts.Ticks, ts.Authoritative}
	}
	if delay, ok := d.DelayTimer(); ok {
		ms := uint32(delay / time.Millisecond)
		j.DelayTimer = &ms
	}
	if v, ok := d.NetworkKey(); ok {
		j.NetworkKey = upperHex(v)
	}
	if v, ok := d.NetworkName(); ok {
		j.NetworkName = &v
	}
	if v, ok := d.ExtPanID(); ok {
		j.ExtPanID = upperHex(v)
	}
	if v, ok := d.PanID(); ok {
		j.PanID = &v
	}
	if v, ok := d.Channel(); ok {
		j.Channel = &v
	}
	if v, ok := d.PSKc(); ok {
		j.PSKc = upperHex(v)
	}
	if v, ok := d.ChannelMask(); ok {
		j.ChannelMask = &v
	}
	if v, ok := d.MeshLocalPrefixString(); ok {
		j.MeshLocalPrefix = v
	}
	if p, ok := d.SecurityPolicy(); ok {
		j.SecurityPolicy = &jsonPolicy{
			RotationTime:            p.RotationHours,
			ObtainNetworkKey:        p.ObtainNetworkKey(),
			NativeCommissioning:     p.NativeCommissioning(),
			Routers:                 p.Routers(),
			ExternalCommissioning:   p.ExternalCommissioning(),
			CommercialCommissioning: p.CommercialCommissioning(),
			AutonomousEnrollment:    p.AutonomousEnrollment(),
			NetworkKeyProvisioning:  p.NetworkKeyProvisioning(),
			TobleLink:               p.ToBleLink(),
			NonCcmRouters:           p.NonCcmRouters(),
		}
	}
	return json.Marshal(j)
}

// UnmarshalJSON replaces d with New() plus the fields present in data.
// Unknown keys are ignored.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("%w: dataset JSON must be an object", ErrMalformed)
	}
	nd := New()
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		err = nd.setJSON(key.String(), value)
		return err == nil
	})
	if err != nil {
		return err
	}
	*d = *nd
	return nil
}

func (d *Dataset) setJSON(key string, v gjson.Result) error {
	switch key {
	case "ActiveTimestamp":
		d.SetActiveTimestamp(timestampJSON(v))
	case "PendingTimestamp":
		d.SetPendingTimestamp(timestampJSON(v))
	case "DelayTimer":
		return d.SetDelayTimer(time.Duration(v.Uint()) * time.Millisecond)
	case "NetworkKey":
		return d.SetNetworkKeyHex(v.String())
	case "NetworkName":
		return d.SetNetworkName(v.String())
	case "ExtPanId":
		return d.SetExtPanIDHex(v.String())
	case "MeshLocalPrefix":
		return d.SetMeshLocalPrefixString(v.String())
	case "PanId":
		d.SetPanID(uint16(v.Uint()))
	case "Channel":
		d.SetChannel(uint16(v.Uint()))
	case "PSKc":
		return d.SetPSKcHex(v.String())
	case "ChannelMask":
		d.SetChannelMask(v.Uint())
	case "SecurityPolicy":
		return d.setPolicyJSON(v)
	}
	return nil
}

func timestampJSON(v gjson.Result) Timestamp {
	return Timestamp{
		Seconds:       v.Get("Seconds").Uint() & maxSeconds,
		Ticks:         uint16(v.Get("Ticks").Uint()) & maxTicks,
		Authoritative: v.Get("Authoritative").Bool(),
	}
}

func (d *Dataset) setPolicyJSON(v gjson.Result) error {
	p := SecurityPolicy{RotationHours: DefaultSecurityPolicy.RotationHours}
	if r := v.Get("RotationTime"); r.Exists() {
		p.RotationHours = uint16(r.Uint())
	}
	for _, f := range flagNames {
		if v.Get(f.name).Bool() {
			p.Flags |= f.flag
		}
	}
	if raw := v.Get("RawFlags"); raw.Exists() {
		n, err := strconv.ParseUint(raw.String(), 16, 16)
		if err != nil {
			return fmt.Errorf("%w: RawFlags %q: %v", ErrMalformed, raw.String(), err)
		}
		p.Flags = SecurityFlags(n)
	}
	return d.SetSecurityPolicy(p)
}
