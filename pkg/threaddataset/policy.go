package threaddataset

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// SecurityFlags are the security policy flag bits, high octet first.
type SecurityFlags uint16

const (
	FlagObtainNetworkKey        SecurityFlags = 1 << 15
	FlagNativeCommissioning     SecurityFlags = 1 << 14
	FlagRouters                 SecurityFlags = 1 << 13
	FlagExternalCommissioning   SecurityFlags = 1 << 12
	FlagCommercialCommissioning SecurityFlags = 1 << 10
	FlagAutonomousEnrollment    SecurityFlags = 1 << 9
	FlagNetworkKeyProvisioning  SecurityFlags = 1 << 8
	FlagToBleLink               SecurityFlags = 1 << 7
	FlagNonCcmRouters           SecurityFlags = 1 << 6

	// flagsReserved must always be set.
	flagsReserved SecurityFlags = 0x0038
)

var flagNames = []struct {
	flag SecurityFlags
	name string
}{
	{FlagObtainNetworkKey, "ObtainNetworkKey"},
	{FlagNativeCommissioning, "NativeCommissioning"},
	{FlagRouters, "Routers"},
	{FlagExternalCommissioning, "ExternalCommissioning"},
	{FlagCommercialCommissioning, "CommercialCommissioning"},
	{FlagAutonomousEnrollment, "AutonomousEnrollment"},
	{FlagNetworkKeyProvisioning, "NetworkKeyProvisioning"},
	{FlagToBleLink, "TobleLink"},
	{FlagNonCcmRouters, "NonCcmRouters"},
}

// Has reports whether every bit of f is set.
func (s SecurityFlags) Has(f SecurityFlags) bool { return s&f == f }

// MinRotationHours is the shortest key rotation time.
const MinRotationHours = 2

// SecurityPolicy is the SecurityPolicy TLV.
type SecurityPolicy struct {
	RotationHours uint16
	Flags         SecurityFlags
}

func (p SecurityPolicy) ObtainNetworkKey() bool        { return p.Flags.Has(FlagObtainNetworkKey) }
func (p SecurityPolicy) NativeCommissioning() bool     { return p.Flags.Has(FlagNativeCommissioning) }
func (p SecurityPolicy) Routers() bool                 { return p.Flags.Has(FlagRouters) }
func (p SecurityPolicy) ExternalCommissioning() bool   { return p.Flags.Has(FlagExternalCommissioning) }
func (p SecurityPolicy) CommercialCommissioning() bool { return p.Flags.Has(FlagCommercialCommissioning) }
func (p SecurityPolicy) AutonomousEnrollment() bool    { return p.Flags.Has(FlagAutonomousEnrollment) }
func (p SecurityPolicy) NetworkKeyProvisioning() bool  { return p.Flags.Has(FlagNetworkKeyProvisioning) }
func (p SecurityPolicy) ToBleLink() bool               { return p.Flags.Has(FlagToBleLink) }
func (p SecurityPolicy) NonCcmRouters() bool           { return p.Flags.Has(FlagNonCcmRouters) }

func (p SecurityPolicy) String() string {
	var set []string
	for _, f := range flagNames {
		if p.Flags.Has(f.flag) {
			set = append(set, f.name)
		}
	}
	return fmt.Sprintf("RotationTime=%dh Flags=0x%04X [%s]", p.RotationHours, uint16(p.Flags), strings.Join(set, " "))
}

func (p SecurityPolicy) bytes() []byte {
	b := binary.BigEndian.AppendUint16(nil, p.RotationHours)
	return binary.BigEndian.AppendUint16(b, uint16(p.Flags))
}

// SecurityPolicy returns the security policy. A three octet TLV carries only
// the high flag octet.
func (d *Dataset) SecurityPolicy() (SecurityPolicy, bool) {
	v, ok := d.tlvs[TypeSecurityPolicy]
	if !ok || len(v) < 3 {
		return SecurityPolicy{}, false
	}
	p := SecurityPolicy{
		RotationHours: binary.BigEndian.Uint16(v),
		Flags:         SecurityFlags(v[2]) << 8,
	}
	if len(v) >= 4 {
		p.Flags |= SecurityFlags(v[3])
	}
	return p, true
}

// SetSecurityPolicy stores p with the reserved flag bits forced on. The
// rotation time must be at least two hours.
func (d *Dataset) SetSecurityPolicy(p SecurityPolicy) error {
	if p.RotationHours < MinRotationHours {
		return fmt.Errorf("%w: rotation time %dh below %dh", ErrOutOfRange, p.RotationHours, MinRotationHours)
	}
	p.Flags |= flagsReserved
	d.Set(TypeSecurityPolicy, p.bytes())
	return nil
}

// SetSecurityFlag turns one flag on or off, keeping the rotation time. A
// dataset without a policy starts from a 672 hour rotation and no flags.
func (d *Dataset) SetSecurityFlag(f SecurityFlags, on bool) error {
	p, ok := d.SecurityPolicy()
	if !ok {
		p = SecurityPolicy{RotationHours: DefaultSecurityPolicy.RotationHours}
	}
	if on {
		p.Flags |= f
	} else {
		p.Flags &^= f
	}
	return d.SetSecurityPolicy(p)
}
