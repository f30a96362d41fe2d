package networkcommissioning

import (
	"fmt"

	"github.com/backkem/matterschema/pkg/clusters"
	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/threaddataset"
	"github.com/backkem/matterschema/pkg/types"
)

// ScanNetworks requests a scan. A present ssid restricts a Wi-Fi scan; null
// or absent scans everything. breadcrumb is optional.
func ScanNetworks(ssid types.Field[[]byte], breadcrumb *uint64) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdScanNetworks,
		codec.NewArg("ssid", ssid),
		codec.NewArg("breadcrumb", breadcrumb))
}

// AddOrUpdateWiFiNetwork provisions Wi-Fi credentials.
func AddOrUpdateWiFiNetwork(ssid, credentials []byte, breadcrumb *uint64) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdAddOrUpdateWiFiNetwork,
		codec.NewArg("ssid", ssid),
		codec.NewArg("credentials", credentials),
		codec.NewArg("breadcrumb", breadcrumb))
}

// AddOrUpdateThreadNetwork provisions a raw Thread operational dataset.
func AddOrUpdateThreadNetwork(operationalDataset []byte, breadcrumb *uint64) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdAddOrUpdateThreadNetwork,
		codec.NewArg("operationalDataset", operationalDataset),
		codec.NewArg("breadcrumb", breadcrumb))
}

// AddOrUpdateThreadDataset serializes ds and provisions it.
func AddOrUpdateThreadDataset(ds *threaddataset.Dataset, breadcrumb *uint64) (*codec.EncodedCommand, error) {
	data, err := ds.Bytes()
	if err != nil {
		return nil, err
	}
	return AddOrUpdateThreadNetwork(data, breadcrumb)
}

// RemoveNetwork removes a provisioned network.
func RemoveNetwork(networkID []byte, breadcrumb *uint64) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdRemoveNetwork,
		codec.NewArg("networkId", networkID),
		codec.NewArg("breadcrumb", breadcrumb))
}

// ConnectNetwork connects to a provisioned network.
func ConnectNetwork(networkID []byte, breadcrumb *uint64) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdConnectNetwork,
		codec.NewArg("networkId", networkID),
		codec.NewArg("breadcrumb", breadcrumb))
}

// ReorderNetwork moves a network to index in the priority list.
func ReorderNetwork(networkID []byte, index uint8, breadcrumb *uint64) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdReorderNetwork,
		codec.NewArg("networkId", networkID),
		codec.NewArg("networkIndex", index),
		codec.NewArg("breadcrumb", breadcrumb))
}

// NetworkConfigResult is a decoded networkConfigResponse.
type NetworkConfigResult struct {
	Status       Status
	DebugText    string
	NetworkIndex types.Field[uint8]
}

// Err returns nil on success and a descriptive error otherwise.
func (r NetworkConfigResult) Err() error { return statusErr(r.Status, r.DebugText) }

// ConnectResult is a decoded connectNetworkResponse.
type ConnectResult struct {
	Status     Status
	DebugText  string
	ErrorValue types.Field[int32]
}

// Err returns nil on success and a descriptive error otherwise.
func (r ConnectResult) Err() error { return statusErr(r.Status, r.DebugText) }

// WiFiScanResult is one WiFiInterfaceScanResultStruct.
type WiFiScanResult struct {
	Security types.BitmapValue
	SSID     []byte
	BSSID    []byte
	Channel  uint16
	Band     WiFiBand
	RSSI     int8
}

// ThreadScanResult is one ThreadInterfaceScanResultStruct.
type ThreadScanResult struct {
	PanID           uint16
	ExtendedPanID   uint64
	NetworkName     string
	Channel         uint16
	Version         uint8
	ExtendedAddress []byte
	RSSI            int8
	LQI             uint8
}

// ScanResult is a decoded scanNetworksResponse.
type ScanResult struct {
	Status    Status
	DebugText string
	WiFi      []WiFiScanResult
	Thread    []ThreadScanResult
}

// Err returns nil on success and a descriptive error otherwise.
func (r ScanResult) Err() error { return statusErr(r.Status, r.DebugText) }

func statusErr(s Status, text string) error {
	if s == StatusSuccess {
		return nil
	}
	if text == "" {
		return fmt.Errorf("network commissioning status %s", s)
	}
	return fmt.Errorf("network commissioning status %s: %s", s, text)
}

// DecodeNetworkConfigResponse decodes a networkConfigResponse payload.
func DecodeNetworkConfigResponse(data []byte) (*NetworkConfigResult, error) {
	cmd, status, text, err := decodeStatus(CmdNetworkConfigResponse, data)
	if err != nil {
		return nil, err
	}
	res := &NetworkConfigResult{Status: status, DebugText: text}
	idx, ok, err := clusters.Arg[uint64](cmd, "networkIndex")
	if err != nil {
		return nil, err
	}
	if ok {
		res.NetworkIndex = types.Some(uint8(idx))
	}
	return res, nil
}

// DecodeConnectNetworkResponse decodes a connectNetworkResponse payload.
func DecodeConnectNetworkResponse(data []byte) (*ConnectResult, error) {
	cmd, status, text, err := decodeStatus(CmdConnectNetworkResponse, data)
	if err != nil {
		return nil, err
	}
	res := &ConnectResult{Status: status, DebugText: text}
	if v, ok := cmd.Get("errorValue"); ok {
		if types.IsNull(v) {
			res.ErrorValue = types.Null[int32]()
		} else if n, ok := v.(int64); ok {
			res.ErrorValue = types.Some(int32(n))
		} else {
			return nil, fmt.Errorf("%w: errorValue is %T", clusters.ErrInvalidResponse, v)
		}
	}
	return res, nil
}

// DecodeScanNetworksResponse decodes a scanNetworksResponse payload.
func DecodeScanNetworksResponse(data []byte) (*ScanResult, error) {
	cmd, status, text, err := decodeStatus(CmdScanNetworksResponse, data)
	if err != nil {
		return nil, err
	}
	res := &ScanResult{Status: status, DebugText: text}
	wifi, _, err := clusters.Arg[[]any](cmd, "wiFiScanResults")
	if err != nil {
		return nil, err
	}
	for _, e := range wifi {
		r, err := wifiResult(e)
		if err != nil {
			return nil, err
		}
		res.WiFi = append(res.WiFi, r)
	}
	thread, _, err := clusters.Arg[[]any](cmd, "threadScanResults")
	if err != nil {
		return nil, err
	}
	for _, e := range thread {
		r, err := threadResult(e)
		if err != nil {
			return nil, err
		}
		res.Thread = append(res.Thread, r)
	}
	return res, nil
}

func decodeStatus(id datamodel.CommandID, data []byte) (*codec.EncodedCommand, Status, string, error) {
	cmd, err := clusters.DecodeResponse(ClusterID, id, data)
	if err != nil {
		return nil, 0, "", err
	}
	status, ok, err := clusters.Arg[types.EnumValue](cmd, "networkingStatus")
	if err != nil {
		return nil, 0, "", err
	}
	if !ok {
		return nil, 0, "", fmt.Errorf("%w: %s without networkingStatus", clusters.ErrInvalidResponse, cmd.Name)
	}
	text, _, err := clusters.Arg[string](cmd, "debugText")
	if err != nil {
		return nil, 0, "", err
	}
	return cmd, Status(status.Raw), text, nil
}

func asStruct(e any) (types.Struct, error) {
	s, ok := e.(types.Struct)
	if !ok {
		return types.Struct{}, fmt.Errorf("%w: scan result is %T", clusters.ErrInvalidResponse, e)
	}
	return s, nil
}

func wifiResult(e any) (WiFiScanResult, error) {
	var r WiFiScanResult
	s, err := asStruct(e)
	if err != nil {
		return r, err
	}
	if r.Security, _, err = clusters.Member[types.BitmapValue](s, "security"); err != nil {
		return r, err
	}
	if r.SSID, _, err = clusters.Member[[]byte](s, "ssid"); err != nil {
		return r, err
	}
	if r.BSSID, _, err = clusters.Member[[]byte](s, "bssid"); err != nil {
		return r, err
	}
	ch, _, err := clusters.Member[uint64](s, "channel")
	if err != nil {
		return r, err
	}
	band, _, err := clusters.Member[types.EnumValue](s, "wiFiBand")
	if err != nil {
		return r, err
	}
	rssi, _, err := clusters.Member[int64](s, "rssi")
	if err != nil {
		return r, err
	}
	r.Channel, r.Band, r.RSSI = uint16(ch), WiFiBand(band.Raw), int8(rssi)
	return r, nil
}

func threadResult(e any) (ThreadScanResult, error) {
	var r ThreadScanResult
	s, err := asStruct(e)
	if err != nil {
		return r, err
	}
	pan, _, err := clusters.Member[uint64](s, "panId")
	if err != nil {
		return r, err
	}
	if r.ExtendedPanID, _, err = clusters.Member[uint64](s, "extendedPanId"); err != nil {
		return r, err
	}
	if r.NetworkName, _, err = clusters.Member[string](s, "networkName"); err != nil {
		return r, err
	}
	ch, _, err := clusters.Member[uint64](s, "channel")
	if err != nil {
		return r, err
	}
	ver, _, err := clusters.Member[uint64](s, "version")
	if err != nil {
		return r, err
	}
	if r.ExtendedAddress, _, err = clusters.Member[[]byte](s, "extendedAddress"); err != nil {
		return r, err
	}
	rssi, _, err := clusters.Member[int64](s, "rssi")
	if err != nil {
		return r, err
	}
	lqi, _, err := clusters.Member[uint64](s, "lqi")
	if err != nil {
		return r, err
	}
	r.PanID, r.Channel, r.Version = uint16(pan), uint16(ch), uint8(ver)
	r.RSSI, r.LQI = int8(rssi), uint8(lqi)
	return r, nil
}
