// Package channel builds commands of the Channel Cluster (0x0504).
package channel

import (
	"fmt"

	"github.com/backkem/matterschema/pkg/clusters"
	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/types"
)

// Cluster constants.
const (
	ClusterID       datamodel.ClusterID = 0x0504
	ClusterRevision uint16              = 2
)

// Attribute IDs.
const (
	AttrChannelList    datamodel.AttributeID = 0x0000
	AttrLineup         datamodel.AttributeID = 0x0001
	AttrCurrentChannel datamodel.AttributeID = 0x0002
)

// Command IDs.
const (
	CmdChangeChannel         datamodel.CommandID = 0x00
	CmdChangeChannelResponse datamodel.CommandID = 0x01
	CmdChangeChannelByNumber datamodel.CommandID = 0x02
	CmdSkipChannel           datamodel.CommandID = 0x03
	CmdGetProgramGuide       datamodel.CommandID = 0x04
	CmdProgramGuideResponse  datamodel.CommandID = 0x05
	CmdRecordProgram         datamodel.CommandID = 0x06
	CmdCancelRecordProgram   datamodel.CommandID = 0x07
)

// Feature bits.
type Feature uint32

const (
	FeatureChannelList     Feature = 1 << 0 // CL
	FeatureLineupInfo      Feature = 1 << 1 // LI
	FeatureElectronicGuide Feature = 1 << 2 // EG
	FeatureRecordProgram   Feature = 1 << 3 // RP
)

// Status is the StatusEnum of changeChannelResponse.
type Status uint8

const (
	StatusSuccess         Status = 0
	StatusMultipleMatches Status = 1
	StatusNoMatches       Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusMultipleMatches:
		return "MultipleMatches"
	case StatusNoMatches:
		return "NoMatches"
	default:
		return "Unknown"
	}
}

// ChangeChannel tunes to the channel best matching match, which may be a
// name, call sign or number.
func ChangeChannel(match string) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdChangeChannel, codec.NewArg("match", match))
}

// ChangeChannelByNumber tunes to major.minor.
func ChangeChannelByNumber(major, minor uint16) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdChangeChannelByNumber,
		codec.NewArg("majorNumber", major),
		codec.NewArg("minorNumber", minor))
}

// SkipChannel moves count channels up, or down when negative.
func SkipChannel(count int16) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdSkipChannel, codec.NewArg("count", count))
}

// RecordProgram schedules a recording of a program.
func RecordProgram(programID string, series bool) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdRecordProgram,
		codec.NewArg("programIdentifier", programID),
		codec.NewArg("shouldRecordSeries", series))
}

// CancelRecordProgram cancels a scheduled recording.
func CancelRecordProgram(programID string, series bool) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdCancelRecordProgram,
		codec.NewArg("programIdentifier", programID),
		codec.NewArg("shouldRecordSeries", series))
}

// ChangeChannelResult is a decoded changeChannelResponse.
type ChangeChannelResult struct {
	Status Status
	Data   types.Field[string]
}

// DecodeChangeChannelResponse decodes a changeChannelResponse payload.
func DecodeChangeChannelResponse(data []byte) (*ChangeChannelResult, error) {
	cmd, err := clusters.DecodeResponse(ClusterID, CmdChangeChannelResponse, data)
	if err != nil {
		return nil, err
	}
	status, ok, err := clusters.Arg[types.EnumValue](cmd, "status")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s without status", clusters.ErrInvalidResponse, cmd.Name)
	}
	res := &ChangeChannelResult{Status: Status(status.Raw)}
	text, ok, err := clusters.Arg[string](cmd, "data")
	if err != nil {
		return nil, err
	}
	if ok {
		res.Data = types.Some(text)
	}
	return res, nil
}
