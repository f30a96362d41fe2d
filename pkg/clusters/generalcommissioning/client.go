package generalcommissioning

import (
	"fmt"

	"github.com/backkem/matterschema/pkg/clusters"
	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/types"
)

// Client-side builders and response decoders. These are used by the
// commissioner (controller) to send commands and parse responses.

// Response is the common shape of the three commissioning responses.
type Response struct {
	ErrorCode CommissioningErrorCode
	DebugText string
}

// OK reports a successful response.
func (r *Response) OK() bool { return r.ErrorCode == CommissioningOK }

// Err returns nil for a successful response and an error naming the code
// otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	if r.DebugText != "" {
		return fmt.Errorf("commissioning error %s: %s", r.ErrorCode, r.DebugText)
	}
	return fmt.Errorf("commissioning error %s", r.ErrorCode)
}

// ArmFailSafe arms the fail-safe timer for expiryLengthSeconds, or disarms
// it when 0.
func ArmFailSafe(expiryLengthSeconds uint16, breadcrumb uint64) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdArmFailSafe,
		codec.NewArg("expiryLengthSeconds", expiryLengthSeconds),
		codec.NewArg("breadcrumb", breadcrumb),
	)
}

// SetRegulatoryConfig sets the regulatory location and country code.
func SetRegulatoryConfig(location RegulatoryLocationType, countryCode string, breadcrumb uint64) (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdSetRegulatoryConfig,
		codec.NewArg("newRegulatoryConfig", uint8(location)),
		codec.NewArg("countryCode", countryCode),
		codec.NewArg("breadcrumb", breadcrumb),
	)
}

// CommissioningComplete ends commissioning. The command has no fields.
func CommissioningComplete() (*codec.EncodedCommand, error) {
	return clusters.Command(ClusterID, CmdCommissioningComplete)
}

// DecodeArmFailSafeResponse decodes an ArmFailSafe response from TLV.
func DecodeArmFailSafeResponse(data []byte) (*Response, error) {
	return decodeResponse(CmdArmFailSafeResponse, data)
}

// DecodeSetRegulatoryConfigResponse decodes a SetRegulatoryConfig response from TLV.
func DecodeSetRegulatoryConfigResponse(data []byte) (*Response, error) {
	return decodeResponse(CmdSetRegulatoryConfigResponse, data)
}

// DecodeCommissioningCompleteResponse decodes a CommissioningComplete response from TLV.
func DecodeCommissioningCompleteResponse(data []byte) (*Response, error) {
	return decodeResponse(CmdCommissioningCompleteResp, data)
}

func decodeResponse(id datamodel.CommandID, data []byte) (*Response, error) {
	cmd, err := clusters.DecodeResponse(ClusterID, id, data)
	if err != nil {
		return nil, err
	}
	code, ok, err := clusters.Arg[types.EnumValue](cmd, "errorCode")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s without errorCode", clusters.ErrInvalidResponse, cmd.Name)
	}
	text, _, err := clusters.Arg[string](cmd, "debugText")
	if err != nil {
		return nil, err
	}
	return &Response{ErrorCode: CommissioningErrorCode(code.Raw), DebugText: text}, nil
}
