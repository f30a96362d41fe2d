// Package doorlock builds commands of the Door Lock Cluster (0x0101) and
// decodes its responses.
//
// Every command that changes lock state or user data must be sent as a timed
// invoke; see clusters.RequireTimed.
package doorlock

import (
	"github.com/backkem/matterschema/pkg/datamodel"
)

// Cluster constants.
const (
	ClusterID       datamodel.ClusterID = 0x0101
	ClusterRevision uint16              = 7
)

// Attribute IDs.
const (
	AttrLockState                           datamodel.AttributeID = 0x0000
	AttrLockType                            datamodel.AttributeID = 0x0001
	AttrActuatorEnabled                     datamodel.AttributeID = 0x0002
	AttrDoorState                           datamodel.AttributeID = 0x0003
	AttrNumberOfTotalUsersSupported         datamodel.AttributeID = 0x0011
	AttrNumberOfPINUsersSupported           datamodel.AttributeID = 0x0012
	AttrMaxPINCodeLength                    datamodel.AttributeID = 0x0017
	AttrMinPINCodeLength                    datamodel.AttributeID = 0x0018
	AttrNumberOfCredentialsSupportedPerUser datamodel.AttributeID = 0x001C
	AttrAutoRelockTime                      datamodel.AttributeID = 0x0023
	AttrOperatingMode                       datamodel.AttributeID = 0x0025
	AttrSupportedOperatingModes             datamodel.AttributeID = 0x0026
)

// Command IDs.
const (
	CmdLockDoor                    datamodel.CommandID = 0x00
	CmdUnlockDoor                  datamodel.CommandID = 0x01
	CmdUnlockWithTimeout           datamodel.CommandID = 0x03
	CmdSetUser                     datamodel.CommandID = 0x1A
	CmdGetUser                     datamodel.CommandID = 0x1B
	CmdGetUserResponse             datamodel.CommandID = 0x1C
	CmdClearUser                   datamodel.CommandID = 0x1D
	CmdSetCredential               datamodel.CommandID = 0x22
	CmdSetCredentialResponse       datamodel.CommandID = 0x23
	CmdGetCredentialStatus         datamodel.CommandID = 0x24
	CmdGetCredentialStatusResponse datamodel.CommandID = 0x25
	CmdClearCredential             datamodel.CommandID = 0x26
	CmdUnboltDoor                  datamodel.CommandID = 0x27
)

// Feature bits.
type Feature uint32

const (
	FeaturePINCredential  Feature = 1 << 0  // PIN
	FeatureRFIDCredential Feature = 1 << 1  // RID
	FeatureDoorPosition   Feature = 1 << 5  // DPS
	FeatureUser           Feature = 1 << 8  // USR
	FeatureUnbolting      Feature = 1 << 12 // UBOLT
)

// LockState is the LockStateEnum.
type LockState uint8

const (
	LockStateNotFullyLocked LockState = 0
	LockStateLocked         LockState = 1
	LockStateUnlocked       LockState = 2
	LockStateUnlatched      LockState = 3
)

func (s LockState) String() string {
	switch s {
	case LockStateNotFullyLocked:
		return "NotFullyLocked"
	case LockStateLocked:
		return "Locked"
	case LockStateUnlocked:
		return "Unlocked"
	case LockStateUnlatched:
		return "Unlatched"
	default:
		return "Unknown"
	}
}

// DataOperation selects add, clear or modify for SetUser and SetCredential.
type DataOperation uint8

const (
	DataOperationAdd    DataOperation = 0
	DataOperationClear  DataOperation = 1
	DataOperationModify DataOperation = 2
)

// UserStatus is the UserStatusEnum.
type UserStatus uint8

const (
	UserStatusAvailable        UserStatus = 0
	UserStatusOccupiedEnabled  UserStatus = 1
	UserStatusOccupiedDisabled UserStatus = 3
)

// UserType is the UserTypeEnum.
type UserType uint8

const (
	UserTypeUnrestricted     UserType = 0
	UserTypeYearDaySchedule  UserType = 1
	UserTypeWeekDaySchedule  UserType = 2
	UserTypeProgramming      UserType = 3
	UserTypeNonAccess        UserType = 4
	UserTypeForced           UserType = 5
	UserTypeDisposable       UserType = 6
	UserTypeExpiring         UserType = 7
	UserTypeScheduleRestrict UserType = 8
	UserTypeRemoteOnly       UserType = 9
)

// CredentialRule is the CredentialRuleEnum.
type CredentialRule uint8

const (
	CredentialRuleSingle CredentialRule = 0
	CredentialRuleDual   CredentialRule = 1
	CredentialRuleTri    CredentialRule = 2
)

// CredentialType is the CredentialTypeEnum.
type CredentialType uint8

const (
	CredentialTypeProgrammingPIN CredentialType = 0
	CredentialTypePIN            CredentialType = 1
	CredentialTypeRFID           CredentialType = 2
	CredentialTypeFingerprint    CredentialType = 3
	CredentialTypeFingerVein     CredentialType = 4
	CredentialTypeFace           CredentialType = 5
)

func (t CredentialType) String() string {
	switch t {
	case CredentialTypeProgrammingPIN:
		return "ProgrammingPIN"
	case CredentialTypePIN:
		return "PIN"
	case CredentialTypeRFID:
		return "RFID"
	case CredentialTypeFingerprint:
		return "Fingerprint"
	case CredentialTypeFingerVein:
		return "FingerVein"
	case CredentialTypeFace:
		return "Face"
	default:
		return "Unknown"
	}
}

// Credential is the CredentialStruct.
type Credential struct {
	Type  CredentialType
	Index uint16
}

func (c Credential) arg() map[string]any {
	return map[string]any{
		"credentialType":  c.Type,
		"credentialIndex": c.Index,
	}
}
