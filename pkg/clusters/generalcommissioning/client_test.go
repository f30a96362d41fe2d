package generalcommissioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backkem/matterschema/pkg/clusters"
	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/tlv"
)

func TestArmFailSafe(t *testing.T) {
	cmd, err := ArmFailSafe(60, 1)
	require.NoError(t, err)
	assert.Equal(t, CmdArmFailSafe, cmd.ID)

	data, err := codec.EncodeTLV(cmd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x15, 0x24, 0x00, 0x3C, 0x24, 0x01, 0x01, 0x18}, data)
}

func TestSetRegulatoryConfig(t *testing.T) {
	cmd, err := SetRegulatoryConfig(RegulatoryIndoorOutdoor, "XX", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"newRegulatoryConfig", "countryCode", "breadcrumb"}, cmd.Keys())

	data, err := codec.EncodeTLV(cmd)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x15,
		0x24, 0x00, 0x02,
		0x2C, 0x01, 0x02, 'X', 'X',
		0x24, 0x02, 0x02,
		0x18,
	}, data)
}

func TestCommissioningComplete(t *testing.T) {
	cmd, err := CommissioningComplete()
	require.NoError(t, err)
	assert.Zero(t, cmd.Len())
	assert.NoError(t, clusters.RequireTimed(cmd, false))
}

func encodeResponse(t *testing.T, code uint64, text string) []byte {
	t.Helper()
	w := tlv.NewWriter()
	require.NoError(t, w.StartStructure(tlv.Anonymous()))
	require.NoError(t, w.PutUint(tlv.ContextTag(0), code))
	if text != "" {
		require.NoError(t, w.PutString(tlv.ContextTag(1), text))
	}
	require.NoError(t, w.EndContainer())
	data, err := w.Bytes()
	require.NoError(t, err)
	return data
}

func TestDecodeResponses(t *testing.T) {
	resp, err := DecodeArmFailSafeResponse(encodeResponse(t, 0, ""))
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.NoError(t, resp.Err())

	resp, err = DecodeSetRegulatoryConfigResponse(encodeResponse(t, 1, "bad country"))
	require.NoError(t, err)
	assert.Equal(t, CommissioningValueOutsideRange, resp.ErrorCode)
	assert.EqualError(t, resp.Err(), "commissioning error ValueOutsideRange: bad country")

	resp, err = DecodeCommissioningCompleteResponse(encodeResponse(t, 4, ""))
	require.NoError(t, err)
	assert.Equal(t, "BusyWithOtherAdmin", resp.ErrorCode.String())

	// Codes newer than the table still decode.
	resp, err = DecodeArmFailSafeResponse(encodeResponse(t, 42, ""))
	require.NoError(t, err)
	assert.Equal(t, CommissioningErrorCode(42), resp.ErrorCode)
	assert.Equal(t, "Unknown", resp.ErrorCode.String())
}

func TestDecodeResponse_MissingErrorCode(t *testing.T) {
	_, err := DecodeArmFailSafeResponse([]byte{0x15, 0x18})
	assert.ErrorIs(t, err, clusters.ErrInvalidResponse)
}
