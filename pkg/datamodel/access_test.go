package datamodel

import (
	"errors"
	"testing"
)

func TestParseAccess(t *testing.T) {
	tests := []struct {
		in        string
		flags     AccessFlag
		readPriv  Privilege
		writePriv Privilege
		str       string
	}{
		{"R V", AccessRead, PrivilegeView, PrivilegeUnknown, "R V"},
		{"R", AccessRead, PrivilegeView, PrivilegeUnknown, "R V"},
		{"RW VM", AccessRead | AccessWrite, PrivilegeView, PrivilegeManage, "RW VM"},
		{"R[W] VA", AccessRead | AccessWrite | AccessOptionalWrite, PrivilegeView, PrivilegeAdminister, "R[W] VA"},
		{"R A", AccessRead, PrivilegeAdminister, PrivilegeUnknown, "R A"},
		{"RW VA F T", AccessRead | AccessWrite | AccessFabricScoped | AccessTimed, PrivilegeView, PrivilegeAdminister, "RW VA FT"},
		{"R V FS", AccessRead | AccessFabricScoped | AccessFabricSensitive, PrivilegeView, PrivilegeUnknown, "R V FS"},
		{"W O", AccessWrite, PrivilegeUnknown, PrivilegeOperate, "W O"},
		{"RW", AccessRead | AccessWrite, PrivilegeView, PrivilegeOperate, "RW VO"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := ParseAccess(tt.in)
			if err != nil {
				t.Fatalf("ParseAccess(%q) error = %v", tt.in, err)
			}
			if a.Flags != tt.flags {
				t.Errorf("Flags = %b, want %b", a.Flags, tt.flags)
			}
			if a.ReadPrivilege != tt.readPriv {
				t.Errorf("ReadPrivilege = %v, want %v", a.ReadPrivilege, tt.readPriv)
			}
			if a.WritePrivilege != tt.writePriv {
				t.Errorf("WritePrivilege = %v, want %v", a.WritePrivilege, tt.writePriv)
			}
			if a.IsEmpty() {
				t.Errorf("IsEmpty() = true, want false")
			}
			if got := a.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestParseAccessInvalid(t *testing.T) {
	for _, in := range []string{"", "  ", "X V", "R Q", "R VMA", "RW VZ"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAccess(in)
			if !errors.Is(err, ErrInvalidAccess) {
				t.Errorf("ParseAccess(%q) error = %v, want ErrInvalidAccess", in, err)
			}
		})
	}
}

func TestAccessTextRoundTrip(t *testing.T) {
	a := MustParseAccess("R[W] VM")
	text, err := a.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	var b Access
	if err := b.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if a != b {
		t.Errorf("round trip = %+v, want %+v", b, a)
	}
}

func TestAccessZeroIsEmpty(t *testing.T) {
	var a Access
	if !a.IsEmpty() {
		t.Errorf("zero Access IsEmpty() = false, want true")
	}
	if a.String() != "" {
		t.Errorf("zero Access String() = %q, want empty", a.String())
	}
}
