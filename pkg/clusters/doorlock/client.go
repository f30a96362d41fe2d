package doorlock

import (
	"fmt"

	"github.com/backkem/matterschema/pkg/clusters"
	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/types"
)

// LockDoor locks the door. A nil pinCode omits the PIN.
func LockDoor(pinCode []byte) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdLockDoor, pinArg(pinCode))
}

// UnlockDoor unlocks the door.
func UnlockDoor(pinCode []byte) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdUnlockDoor, pinArg(pinCode))
}

// UnlockWithTimeout unlocks the door and relocks it after timeout seconds.
func UnlockWithTimeout(timeout uint16, pinCode []byte) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdUnlockWithTimeout,
		codec.NewArg("timeout", timeout), pinArg(pinCode))
}

// UnboltDoor pulls the bolt without unlatching.
func UnboltDoor(pinCode []byte) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdUnboltDoor, pinArg(pinCode))
}

func pinArg(pin []byte) codec.Arg {
	if pin == nil {
		return codec.NewArg("pinCode", nil)
	}
	return codec.NewArg("pinCode", pin)
}

// User holds the SetUser fields after the operation and index. Null fields
// keep the lock's current or default value.
type User struct {
	Name           types.Field[string]
	UniqueID       types.Field[uint32]
	Status         types.Field[UserStatus]
	Type           types.Field[UserType]
	CredentialRule types.Field[CredentialRule]
}

// SetUser adds, modifies or clears a user. Absent fields of u are sent as
// omitted.
func SetUser(op DataOperation, index uint16, u User) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdSetUser,
		codec.NewArg("operationType", op),
		codec.NewArg("userIndex", index),
		codec.NewArg("userName", u.Name),
		codec.NewArg("userUniqueId", u.UniqueID),
		codec.NewArg("userStatus", u.Status),
		codec.NewArg("userType", u.Type),
		codec.NewArg("credentialRule", u.CredentialRule),
	)
}

// GetUser requests a user record.
func GetUser(index uint16) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdGetUser, codec.NewArg("userIndex", index))
}

// ClearUser removes a user. Index 0xFFFE clears all users.
func ClearUser(index uint16) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdClearUser, codec.NewArg("userIndex", index))
}

// SetCredential adds or modifies a credential. userIndex, status and typ
// may be null.
func SetCredential(op DataOperation, cred Credential, data []byte, userIndex types.Field[uint16], status types.Field[UserStatus], typ types.Field[UserType]) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdSetCredential,
		codec.NewArg("operationType", op),
		codec.NewArg("credential", cred.arg()),
		codec.NewArg("credentialData", data),
		codec.NewArg("userIndex", userIndex),
		codec.NewArg("userStatus", status),
		codec.NewArg("userType", typ),
	)
}

// GetCredentialStatus requests the status of a credential slot.
func GetCredentialStatus(cred Credential) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdGetCredentialStatus, codec.NewArg("credential", cred.arg()))
}

// ClearCredential removes a credential. A null credential clears all of
// them.
func ClearCredential(cred types.Field[Credential]) (*codec.EncodedCommand, error) {
	var v any
	switch {
	case cred.IsNull():
		v = types.NullValue
	case cred.IsPresent():
		c, _ := cred.Get()
		v = c.arg()
	}
	return clusters.Command(ClusterID, CmdClearCredential, codec.NewArg("credential", v))
}

// UserRecord is a decoded getUserResponse.
type UserRecord struct {
	Index          uint16
	Name           types.Field[string]
	UniqueID       types.Field[uint32]
	Status         types.Field[UserStatus]
	Type           types.Field[UserType]
	CredentialRule types.Field[CredentialRule]
	Credentials    []Credential
	NextUserIndex  types.Field[uint16]
}

// Occupied reports whether the slot holds a user.
func (u UserRecord) Occupied() bool {
	s, ok := u.Status.Get()
	return ok && s != UserStatusAvailable
}

// DecodeGetUserResponse decodes a getUserResponse payload.
func DecodeGetUserResponse(data []byte) (*UserRecord, error) {
	cmd, err := clusters.DecodeResponse(ClusterID, CmdGetUserResponse, data)
	if err != nil {
		return nil, err
	}
	index, ok, err := clusters.Arg[uint64](cmd, "userIndex")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s without userIndex", clusters.ErrInvalidResponse, cmd.Name)
	}
	rec := &UserRecord{Index: uint16(index)}
	if rec.Name, err = field[string, string](cmd, "userName", func(s string) string { return s }); err != nil {
		return nil, err
	}
	if rec.UniqueID, err = field[uint64, uint32](cmd, "userUniqueId", func(u uint64) uint32 { return uint32(u) }); err != nil {
		return nil, err
	}
	if rec.Status, err = field[types.EnumValue, UserStatus](cmd, "userStatus", func(e types.EnumValue) UserStatus { return UserStatus(e.Raw) }); err != nil {
		return nil, err
	}
	if rec.Type, err = field[types.EnumValue, UserType](cmd, "userType", func(e types.EnumValue) UserType { return UserType(e.Raw) }); err != nil {
		return nil, err
	}
	if rec.CredentialRule, err = field[types.EnumValue, CredentialRule](cmd, "credentialRule", func(e types.EnumValue) CredentialRule { return CredentialRule(e.Raw) }); err != nil {
		return nil, err
	}
	if rec.NextUserIndex, err = field[uint64, uint16](cmd, "nextUserIndex", func(u uint64) uint16 { return uint16(u) }); err != nil {
		return nil, err
	}
	if v, ok := cmd.Get("credentials"); ok && !types.IsNull(v) {
		list, _ := v.([]any)
		for _, e := range list {
			s, ok := e.(types.Struct)
			if !ok {
				return nil, fmt.Errorf("%w: credential is %T", clusters.ErrInvalidResponse, e)
			}
			c, err := credentialFrom(s)
			if err != nil {
				return nil, err
			}
			rec.Credentials = append(rec.Credentials, c)
		}
	}
	return rec, nil
}

// CredentialStatus is a decoded getCredentialStatusResponse.
type CredentialStatus struct {
	Exists              bool
	UserIndex           types.Field[uint16]
	NextCredentialIndex types.Field[uint16]
}

// DecodeGetCredentialStatusResponse decodes a getCredentialStatusResponse
// payload.
func DecodeGetCredentialStatusResponse(data []byte) (*CredentialStatus, error) {
	cmd, err := clusters.DecodeResponse(ClusterID, CmdGetCredentialStatusResponse, data)
	if err != nil {
		return nil, err
	}
	exists, ok, err := clusters.Arg[bool](cmd, "credentialExists")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s without credentialExists", clusters.ErrInvalidResponse, cmd.Name)
	}
	st := &CredentialStatus{Exists: exists}
	toU16 := func(u uint64) uint16 { return uint16(u) }
	if st.UserIndex, err = field[uint64, uint16](cmd, "userIndex", toU16); err != nil {
		return nil, err
	}
	if st.NextCredentialIndex, err = field[uint64, uint16](cmd, "nextCredentialIndex", toU16); err != nil {
		return nil, err
	}
	return st, nil
}

// SetCredentialResult is a decoded setCredentialResponse.
type SetCredentialResult struct {
	Status              uint8
	UserIndex           types.Field[uint16]
	NextCredentialIndex types.Field[uint16]
}

// DecodeSetCredentialResponse decodes a setCredentialResponse payload.
func DecodeSetCredentialResponse(data []byte) (*SetCredentialResult, error) {
	cmd, err := clusters.DecodeResponse(ClusterID, CmdSetCredentialResponse, data)
	if err != nil {
		return nil, err
	}
	status, ok, err := clusters.Arg[uint64](cmd, "status")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s without status", clusters.ErrInvalidResponse, cmd.Name)
	}
	res := &SetCredentialResult{Status: uint8(status)}
	toU16 := func(u uint64) uint16 { return uint16(u) }
	if res.UserIndex, err = field[uint64, uint16](cmd, "userIndex", toU16); err != nil {
		return nil, err
	}
	if res.NextCredentialIndex, err = field[uint64, uint16](cmd, "nextCredentialIndex", toU16); err != nil {
		return nil, err
	}
	return res, nil
}

// field converts a nullable decoded argument into a typed Field.
func field[W, T any](cmd *codec.EncodedCommand, name string, conv func(W) T) (types.Field[T], error) {
	v, ok := cmd.Get(name)
	if !ok {
		return types.Absent[T](), nil
	}
	if types.IsNull(v) {
		return types.Null[T](), nil
	}
	w, ok := v.(W)
	if !ok {
		return types.Absent[T](), fmt.Errorf("%w: %s.%s is %T", clusters.ErrInvalidResponse, cmd.Name, name, v)
	}
	return types.Some(conv(w)), nil
}

func credentialFrom(s types.Struct) (Credential, error) {
	typ, _, err := clusters.Member[types.EnumValue](s, "credentialType")
	if err != nil {
		return Credential{}, err
	}
	idx, _, err := clusters.Member[uint64](s, "credentialIndex")
	if err != nil {
		return Credential{}, err
	}
	return Credential{Type: CredentialType(typ.Raw), Index: uint16(idx)}, nil
}
