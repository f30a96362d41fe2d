// Package actions builds commands of the Actions Cluster (0x0025) and reads
// its action list.
package actions

import (
	"fmt"

	"github.com/backkem/matterschema/pkg/clusters"
	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/instance"
	"github.com/backkem/matterschema/pkg/types"
)

// Cluster constants.
const (
	ClusterID       datamodel.ClusterID = 0x0025
	ClusterRevision uint16              = 1
)

// Attribute IDs.
const (
	AttrActionList    datamodel.AttributeID = 0x0000
	AttrEndpointLists datamodel.AttributeID = 0x0001
	AttrSetupURL      datamodel.AttributeID = 0x0002
)

// Command IDs.
const (
	CmdInstantAction               datamodel.CommandID = 0x00
	CmdInstantActionWithTransition datamodel.CommandID = 0x01
	CmdStartAction                 datamodel.CommandID = 0x02
	CmdStartActionWithDuration     datamodel.CommandID = 0x03
	CmdStopAction                  datamodel.CommandID = 0x04
	CmdPauseAction                 datamodel.CommandID = 0x05
	CmdPauseActionWithDuration     datamodel.CommandID = 0x06
	CmdResumeAction                datamodel.CommandID = 0x07
	CmdEnableAction                datamodel.CommandID = 0x08
	CmdEnableActionWithDuration    datamodel.CommandID = 0x09
	CmdDisableAction               datamodel.CommandID = 0x0A
	CmdDisableActionWithDuration   datamodel.CommandID = 0x0B
)

// ActionType is the kind of an action.
type ActionType uint8

const (
	ActionTypeOther        ActionType = 0
	ActionTypeScene        ActionType = 1
	ActionTypeSequence     ActionType = 2
	ActionTypeAutomation   ActionType = 3
	ActionTypeException    ActionType = 4
	ActionTypeNotification ActionType = 5
	ActionTypeAlarm        ActionType = 6
)

// String returns the name of the action type.
func (t ActionType) String() string {
	switch t {
	case ActionTypeOther:
		return "Other"
	case ActionTypeScene:
		return "Scene"
	case ActionTypeSequence:
		return "Sequence"
	case ActionTypeAutomation:
		return "Automation"
	case ActionTypeException:
		return "Exception"
	case ActionTypeNotification:
		return "Notification"
	case ActionTypeAlarm:
		return "Alarm"
	default:
		return "Unknown"
	}
}

// ActionState is the state of an action.
type ActionState uint8

const (
	ActionStateInactive ActionState = 0
	ActionStateActive   ActionState = 1
	ActionStatePaused   ActionState = 2
	ActionStateDisabled ActionState = 3
)

// String returns the name of the action state.
func (s ActionState) String() string {
	switch s {
	case ActionStateInactive:
		return "Inactive"
	case ActionStateActive:
		return "Active"
	case ActionStatePaused:
		return "Paused"
	case ActionStateDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// CommandBits lists the commands an action supports, one bit per command ID.
type CommandBits uint16

// Supports reports whether the command with the given ID is supported.
func (b CommandBits) Supports(cmd datamodel.CommandID) bool {
	return cmd <= CmdDisableActionWithDuration && b&(1<<cmd) != 0
}

// Action is one entry of the ActionList attribute.
type Action struct {
	ID                uint16
	Name              string
	Type              ActionType
	EndpointListID    uint16
	SupportedCommands CommandBits
	State             ActionState
}

// ActionList reads the ActionList attribute of an instance. An absent
// attribute yields datamodel.ErrNotPresent.
func ActionList(c *instance.Cluster) ([]Action, error) {
	f, err := c.Get(AttrActionList)
	if err != nil {
		return nil, err
	}
	v, ok := f.Get()
	if !ok {
		return nil, fmt.Errorf("%w: %s", datamodel.ErrNotPresent, c.AttributePath(AttrActionList))
	}
	list, _ := v.([]any)
	out := make([]Action, 0, len(list))
	for _, e := range list {
		s, ok := e.(types.Struct)
		if !ok {
			return nil, fmt.Errorf("%w: action list entry is %T", clusters.ErrInvalidResponse, e)
		}
		a, err := actionFrom(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func actionFrom(s types.Struct) (Action, error) {
	var a Action
	id, _, err := clusters.Member[uint64](s, "actionId")
	if err != nil {
		return a, err
	}
	name, _, err := clusters.Member[string](s, "name")
	if err != nil {
		return a, err
	}
	typ, _, err := clusters.Member[types.EnumValue](s, "type")
	if err != nil {
		return a, err
	}
	list, _, err := clusters.Member[uint64](s, "endpointListId")
	if err != nil {
		return a, err
	}
	cmds, _, err := clusters.Member[types.BitmapValue](s, "supportedCommands")
	if err != nil {
		return a, err
	}
	state, _, err := clusters.Member[types.EnumValue](s, "state")
	if err != nil {
		return a, err
	}
	return Action{
		ID:                uint16(id),
		Name:              name,
		Type:              ActionType(typ.Raw),
		EndpointListID:    uint16(list),
		SupportedCommands: CommandBits(cmds.Raw),
		State:             ActionState(state.Raw),
	}, nil
}

func command(id datamodel.CommandID, actionID uint16, invokeID *uint32, extra ...codec.Arg) (*codec.EncodedCommand, error) {
	args := append([]codec.Arg{
		codec.NewArg("actionId", actionID),
		codec.NewArg("invokeId", invokeID),
	}, extra...)
	return clusters.Command(ClusterID, id, args...)
}

// InstantAction triggers an action. invokeID is optional.
func InstantAction(actionID uint16, invokeID *uint32) (*codec.EncodedCommand, error) {
	return command(CmdInstantAction, actionID, invokeID)
}

// InstantActionWithTransition triggers an action over transitionTime
// tenths of a second.
func InstantActionWithTransition(actionID uint16, invokeID *uint32, transitionTime uint16) (*codec.EncodedCommand, error) {
	return command(CmdInstantActionWithTransition, actionID, invokeID, codec.NewArg("transitionTime", transitionTime))
}

// StartAction starts an action.
func StartAction(actionID uint16, invokeID *uint32) (*codec.EncodedCommand, error) {
	return command(CmdStartAction, actionID, invokeID)
}

// StartActionWithDuration starts an action for duration seconds.
func StartActionWithDuration(actionID uint16, invokeID *uint32, duration uint32) (*codec.EncodedCommand, error) {
	return command(CmdStartActionWithDuration, actionID, invokeID, codec.NewArg("duration", duration))
}

// StopAction stops an action.
func StopAction(actionID uint16, invokeID *uint32) (*codec.EncodedCommand, error) {
	return command(CmdStopAction, actionID, invokeID)
}

// PauseAction pauses an action.
func PauseAction(actionID uint16, invokeID *uint32) (*codec.EncodedCommand, error) {
	return command(CmdPauseAction, actionID, invokeID)
}

// PauseActionWithDuration pauses an action for duration seconds.
func PauseActionWithDuration(actionID uint16, invokeID *uint32, duration uint32) (*codec.EncodedCommand, error) {
	return command(CmdPauseActionWithDuration, actionID, invokeID, codec.NewArg("duration", duration))
}

// ResumeAction resumes a paused action.
func ResumeAction(actionID uint16, invokeID *uint32) (*codec.EncodedCommand, error) {
	return command(CmdResumeAction, actionID, invokeID)
}

// EnableAction enables an action.
func EnableAction(actionID uint16, invokeID *uint32) (*codec.EncodedCommand, error) {
	return command(CmdEnableAction, actionID, invokeID)
}

// EnableActionWithDuration enables an action for duration seconds.
func EnableActionWithDuration(actionID uint16, invokeID *uint32, duration uint32) (*codec.EncodedCommand, error) {
	return command(CmdEnableActionWithDuration, actionID, invokeID, codec.NewArg("duration", duration))
}

// DisableAction disables an action.
func DisableAction(actionID uint16, invokeID *uint32) (*codec.EncodedCommand, error) {
	return command(CmdDisableAction, actionID, invokeID)
}

// DisableActionWithDuration disables an action for duration seconds.
func DisableActionWithDuration(actionID uint16, invokeID *uint32, duration uint32) (*codec.EncodedCommand, error) {
	return command(CmdDisableActionWithDuration, actionID, invokeID, codec.NewArg("duration", duration))
}
