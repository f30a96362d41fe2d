// Package windowcovering builds commands of the Window Covering Cluster
// (0x0102).
package windowcovering

import (
	"errors"
	"fmt"

	"github.com/backkem/matterschema/pkg/clusters"
	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/datamodel"
)

// Cluster constants.
const (
	ClusterID       datamodel.ClusterID = 0x0102
	ClusterRevision uint16              = 5
)

// Attribute IDs.
const (
	AttrType                             datamodel.AttributeID = 0x0000
	AttrConfigStatus                     datamodel.AttributeID = 0x0007
	AttrCurrentPositionLiftPercentage    datamodel.AttributeID = 0x0008
	AttrCurrentPositionTiltPercentage    datamodel.AttributeID = 0x0009
	AttrOperationalStatus                datamodel.AttributeID = 0x000A
	AttrTargetPositionLiftPercent100ths  datamodel.AttributeID = 0x000B
	AttrTargetPositionTiltPercent100ths  datamodel.AttributeID = 0x000C
	AttrEndProductType                   datamodel.AttributeID = 0x000D
	AttrCurrentPositionLiftPercent100ths datamodel.AttributeID = 0x000E
	AttrCurrentPositionTiltPercent100ths datamodel.AttributeID = 0x000F
	AttrMode                             datamodel.AttributeID = 0x0017
	AttrSafetyStatus                     datamodel.AttributeID = 0x001A
)

// Command IDs.
const (
	CmdUpOrOpen           datamodel.CommandID = 0x00
	CmdDownOrClose        datamodel.CommandID = 0x01
	CmdStopMotion         datamodel.CommandID = 0x02
	CmdGoToLiftValue      datamodel.CommandID = 0x04
	CmdGoToLiftPercentage datamodel.CommandID = 0x05
	CmdGoToTiltValue      datamodel.CommandID = 0x07
	CmdGoToTiltPercentage datamodel.CommandID = 0x08
)

// Feature bits.
type Feature uint32

const (
	FeatureLift              Feature = 1 << 0 // LF
	FeatureTilt              Feature = 1 << 1 // TL
	FeaturePositionAwareLift Feature = 1 << 2 // PA_LF
	FeatureAbsolutePosition  Feature = 1 << 3 // ABS
	FeaturePositionAwareTilt Feature = 1 << 4 // PA_TL
)

// MaxPercent100ths is fully closed, 100.00%.
const MaxPercent100ths uint16 = 10000

// ErrPercentRange is returned for a percent100ths value above 10000.
var ErrPercentRange = errors.New("percent100ths out of range")

// UpOrOpen moves the covering to the fully open position.
func UpOrOpen() (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdUpOrOpen)
}

// DownOrClose moves the covering to the fully closed position.
func DownOrClose() (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdDownOrClose)
}

// StopMotion stops any movement.
func StopMotion() (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdStopMotion)
}

// GoToLiftValue moves the lift to an absolute position.
func GoToLiftValue(v uint16) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdGoToLiftValue, codec.NewArg("liftValue", v))
}

// GoToLiftPercentage moves the lift to p hundredths of a percent closed.
func GoToLiftPercentage(p uint16) (*codec.EncodedCommand, error) {
	if err := checkPercent(p); err != nil {
		return nil, err
	}
	return clusters.Command(ClusterID, CmdGoToLiftPercentage, codec.NewArg("liftPercent100thsValue", p))
}

// GoToTiltValue moves the tilt to an absolute position.
func GoToTiltValue(v uint16) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdGoToTiltValue, codec.NewArg("tiltValue", v))
}

// GoToTiltPercentage moves the tilt to p hundredths of a percent closed.
func GoToTiltPercentage(p uint16) (*codec.EncodedCommand, error) {
	if err := checkPercent(p); err != nil {
		return nil, err
	}
	return clusters.Command(ClusterID, CmdGoToTiltPercentage, codec.NewArg("tiltPercent100thsValue", p))
}

func checkPercent(p uint16) error {
	if p > MaxPercent100ths {
		return fmt.Errorf("%w: %d", ErrPercentRange, p)
	}
	return nil
}
