// Package networkcommissioning builds commands of the Network Commissioning
// Cluster (0x0031) and decodes its responses.
package networkcommissioning

import (
	"github.com/backkem/matterschema/pkg/datamodel"
)

// Cluster constants.
const (
	ClusterID       datamodel.ClusterID = 0x0031
	ClusterRevision uint16              = 2
)

// Attribute IDs.
const (
	AttrMaxNetworks             datamodel.AttributeID = 0x0000
	AttrNetworks                datamodel.AttributeID = 0x0001
	AttrScanMaxTimeSeconds      datamodel.AttributeID = 0x0002
	AttrConnectMaxTimeSeconds   datamodel.AttributeID = 0x0003
	AttrInterfaceEnabled        datamodel.AttributeID = 0x0004
	AttrLastNetworkingStatus    datamodel.AttributeID = 0x0005
	AttrLastNetworkID           datamodel.AttributeID = 0x0006
	AttrLastConnectErrorValue   datamodel.AttributeID = 0x0007
	AttrSupportedWiFiBands      datamodel.AttributeID = 0x0008
	AttrSupportedThreadFeatures datamodel.AttributeID = 0x0009
	AttrThreadVersion           datamodel.AttributeID = 0x000A
)

// Command IDs.
const (
	CmdScanNetworks             datamodel.CommandID = 0x00
	CmdScanNetworksResponse     datamodel.CommandID = 0x01
	CmdAddOrUpdateWiFiNetwork   datamodel.CommandID = 0x02
	CmdAddOrUpdateThreadNetwork datamodel.CommandID = 0x03
	CmdRemoveNetwork            datamodel.CommandID = 0x04
	CmdNetworkConfigResponse    datamodel.CommandID = 0x05
	CmdConnectNetwork           datamodel.CommandID = 0x06
	CmdConnectNetworkResponse   datamodel.CommandID = 0x07
	CmdReorderNetwork           datamodel.CommandID = 0x08
)

// Feature bits.
type Feature uint32

const (
	FeatureWiFiNetworkInterface     Feature = 1 << 0 // WI
	FeatureThreadNetworkInterface   Feature = 1 << 1 // TH
	FeatureEthernetNetworkInterface Feature = 1 << 2 // ET
)

// Status is the NetworkCommissioningStatusEnum.
type Status uint8

const (
	StatusSuccess                Status = 0
	StatusOutOfRange             Status = 1
	StatusBoundsExceeded         Status = 2
	StatusNetworkIDNotFound      Status = 3
	StatusDuplicateNetworkID     Status = 4
	StatusNetworkNotFound        Status = 5
	StatusRegulatoryError        Status = 6
	StatusAuthFailure            Status = 7
	StatusUnsupportedSecurity    Status = 8
	StatusOtherConnectionFailure Status = 9
	StatusIPv6Failed             Status = 10
	StatusIPBindFailed           Status = 11
	StatusUnknownError           Status = 12
)

var statusNames = [...]string{
	"Success", "OutOfRange", "BoundsExceeded", "NetworkIDNotFound",
	"DuplicateNetworkID", "NetworkNotFound", "RegulatoryError", "AuthFailure",
	"UnsupportedSecurity", "OtherConnectionFailure", "IPv6Failed", "IPBindFailed",
	"UnknownError",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "Unknown"
}

// WiFiBand is the WiFiBandEnum.
type WiFiBand uint8

const (
	WiFiBand2G4  WiFiBand = 0
	WiFiBand3G65 WiFiBand = 1
	WiFiBand5G   WiFiBand = 2
	WiFiBand6G   WiFiBand = 3
	WiFiBand60G  WiFiBand = 4
	WiFiBand1G   WiFiBand = 5
)
