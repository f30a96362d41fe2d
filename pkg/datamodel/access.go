package datamodel

import (
	"fmt"
	"strings"
)

// AccessFlag is one right or modifier in an attribute's access set.
type AccessFlag uint8

const (
	// AccessRead allows reading the attribute.
	AccessRead AccessFlag = 1 << iota

	// AccessWrite allows writing the attribute.
	AccessWrite

	// AccessOptionalWrite marks a write right that devices may omit ("R[W]").
	AccessOptionalWrite

	// AccessFabricScoped marks data scoped to the accessing fabric (F).
	AccessFabricScoped

	// AccessFabricSensitive marks data only visible to the owning fabric (S).
	AccessFabricSensitive

	// AccessTimed requires a timed interaction for writes (T).
	AccessTimed
)

// Access is the access-right set of an attribute, as written in the data
// model tables: "R V", "RW VM", "R[W] VA", "RW VA F T".
type Access struct {
	Flags          AccessFlag
	ReadPrivilege  Privilege
	WritePrivilege Privilege
}

// ParseAccess parses the compact access notation. The first token holds the
// rights, later tokens hold either privileges (read then write) or the F, S
// and T modifiers.
func ParseAccess(s string) (Access, error) {
	var a Access
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return a, fmt.Errorf("%w: empty access", ErrInvalidAccess)
	}

	rights := tokens[0]
	switch rights {
	case "R":
		a.Flags = AccessRead
	case "W":
		a.Flags = AccessWrite
	case "RW":
		a.Flags = AccessRead | AccessWrite
	case "R[W]":
		a.Flags = AccessRead | AccessWrite | AccessOptionalWrite
	default:
		return a, fmt.Errorf("%w: rights %q in %q", ErrInvalidAccess, rights, s)
	}

	for _, tok := range tokens[1:] {
		switch {
		case strings.Trim(tok, "FST") == "":
			for _, c := range tok {
				switch c {
				case 'F':
					a.Flags |= AccessFabricScoped
				case 'S':
					a.Flags |= AccessFabricSensitive
				case 'T':
					a.Flags |= AccessTimed
				}
			}
		case strings.Trim(tok, "VPOMA") == "" && len(tok) <= 2:
			if err := a.setPrivileges(tok); err != nil {
				return Access{}, fmt.Errorf("%w in %q", err, s)
			}
		default:
			return Access{}, fmt.Errorf("%w: token %q in %q", ErrInvalidAccess, tok, s)
		}
	}

	if a.CanRead() && a.ReadPrivilege == PrivilegeUnknown {
		a.ReadPrivilege = PrivilegeView
	}
	if a.CanWrite() && a.WritePrivilege == PrivilegeUnknown {
		a.WritePrivilege = PrivilegeOperate
	}
	return a, nil
}

// MustParseAccess is ParseAccess for static tables; it panics on error.
func MustParseAccess(s string) Access {
	a, err := ParseAccess(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Access) setPrivileges(tok string) error {
	privs := make([]Privilege, 0, 2)
	for _, c := range tok {
		p, err := ParsePrivilege(string(c))
		if err != nil {
			return err
		}
		privs = append(privs, p)
	}
	switch {
	case len(privs) == 2:
		a.ReadPrivilege, a.WritePrivilege = privs[0], privs[1]
	case a.CanRead() && a.CanWrite():
		a.ReadPrivilege, a.WritePrivilege = privs[0], privs[0]
	case a.CanWrite():
		a.WritePrivilege = privs[0]
	default:
		a.ReadPrivilege = privs[0]
	}
	return nil
}

// Has reports whether all bits of f are set.
func (a Access) Has(f AccessFlag) bool { return a.Flags&f == f }

// CanRead reports whether the attribute is readable.
func (a Access) CanRead() bool { return a.Has(AccessRead) }

// CanWrite reports whether the attribute is (possibly optionally) writable.
func (a Access) CanWrite() bool { return a.Has(AccessWrite) }

// IsEmpty reports an access set with neither read nor write rights.
func (a Access) IsEmpty() bool { return a.Flags&(AccessRead|AccessWrite) == 0 }

// String renders the set back into the compact notation.
func (a Access) String() string {
	if a.IsEmpty() {
		return ""
	}
	var b strings.Builder
	switch {
	case a.Has(AccessRead | AccessOptionalWrite):
		b.WriteString("R[W]")
	case a.Has(AccessRead | AccessWrite):
		b.WriteString("RW")
	case a.CanRead():
		b.WriteString("R")
	default:
		b.WriteString("W")
	}
	b.WriteByte(' ')
	if a.CanRead() {
		b.WriteString(a.ReadPrivilege.Code())
	}
	if a.CanWrite() {
		b.WriteString(a.WritePrivilege.Code())
	}
	if mods := a.modifiers(); mods != "" {
		b.WriteByte(' ')
		b.WriteString(mods)
	}
	return b.String()
}

func (a Access) modifiers() string {
	var s string
	if a.Has(AccessFabricScoped) {
		s += "F"
	}
	if a.Has(AccessFabricSensitive) {
		s += "S"
	}
	if a.Has(AccessTimed) {
		s += "T"
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (a Access) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Access) UnmarshalText(text []byte) error {
	parsed, err := ParseAccess(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
