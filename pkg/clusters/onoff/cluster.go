// Package onoff builds commands of the On/Off Cluster (0x0006).
//
// The On/Off cluster provides commands and attributes to control
// an on/off state, such as a light switch or power outlet.
package onoff

import (
	"github.com/backkem/matterschema/pkg/clusters"
	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/datamodel"
)

// Cluster constants.
const (
	ClusterID       datamodel.ClusterID = 0x0006
	ClusterRevision uint16              = 6
)

// Attribute IDs.
const (
	AttrOnOff              datamodel.AttributeID = 0x0000
	AttrGlobalSceneControl datamodel.AttributeID = 0x4000
	AttrOnTime             datamodel.AttributeID = 0x4001
	AttrOffWaitTime        datamodel.AttributeID = 0x4002
	AttrStartUpOnOff       datamodel.AttributeID = 0x4003
)

// Command IDs.
const (
	CmdOff                     datamodel.CommandID = 0x00
	CmdOn                      datamodel.CommandID = 0x01
	CmdToggle                  datamodel.CommandID = 0x02
	CmdOffWithEffect           datamodel.CommandID = 0x40
	CmdOnWithRecallGlobalScene datamodel.CommandID = 0x41
	CmdOnWithTimedOff          datamodel.CommandID = 0x42
)

// Feature bits.
type Feature uint32

const (
	// FeatureLighting indicates support for lighting applications.
	// Enables GlobalSceneControl, OnTime, OffWaitTime, StartUpOnOff attributes.
	FeatureLighting Feature = 1 << 0 // LT

	// FeatureDeadFrontBehavior indicates dead front behavior support.
	FeatureDeadFrontBehavior Feature = 1 << 1 // DF

	// FeatureOffOnly indicates the device can only be turned off, not on.
	FeatureOffOnly Feature = 1 << 2 // OFFONLY
)

// StartUpOnOff indicates the startup behavior.
type StartUpOnOff uint8

const (
	StartUpOnOffOff    StartUpOnOff = 0
	StartUpOnOffOn     StartUpOnOff = 1
	StartUpOnOffToggle StartUpOnOff = 2
)

// String returns the name of the startup behavior.
func (s StartUpOnOff) String() string {
	switch s {
	case StartUpOnOffOff:
		return "Off"
	case StartUpOnOffOn:
		return "On"
	case StartUpOnOffToggle:
		return "Toggle"
	default:
		return "Unknown"
	}
}

// EffectIdentifier identifies the effect to apply when turning off.
type EffectIdentifier uint8

const (
	EffectDelayedAllOff EffectIdentifier = 0
	EffectDyingLight    EffectIdentifier = 1
)

// String returns the name of the effect identifier.
func (e EffectIdentifier) String() string {
	switch e {
	case EffectDelayedAllOff:
		return "DelayedAllOff"
	case EffectDyingLight:
		return "DyingLight"
	default:
		return "Unknown"
	}
}

// Control is the OnOffControlBitmap of OnWithTimedOff.
type Control uint8

// ControlAcceptOnlyWhenOn ignores the command unless the device is on.
const ControlAcceptOnlyWhenOn Control = 1 << 0

// Off turns the device off.
func Off() (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdOff)
}

// On turns the device on.
func On() (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdOn)
}

// Toggle flips the on/off state.
func Toggle() (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdToggle)
}

// OffWithEffect turns the device off with a lighting effect.
func OffWithEffect(effect EffectIdentifier, variant uint8) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdOffWithEffect,
		codec.NewArg("effectIdentifier", uint8(effect)),
		codec.NewArg("effectVariant", variant),
	)
}

// OnWithRecallGlobalScene turns the device on and recalls the global scene.
func OnWithRecallGlobalScene() (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdOnWithRecallGlobalScene)
}

// OnWithTimedOff turns the device on for onTime tenths of a second, then
// keeps it off for offWaitTime.
func OnWithTimedOff(control Control, onTime, offWaitTime uint16) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdOnWithTimedOff,
		codec.NewArg("onOffControl", uint8(control)),
		codec.NewArg("onTime", onTime),
		codec.NewArg("offWaitTime", offWaitTime),
	)
}
