package windowcovering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/schema"
)

func TestConstantsMatchSchema(t *testing.T) {
	reg, err := schema.Default()
	require.NoError(t, err)
	c, err := reg.Cluster(ClusterID)
	require.NoError(t, err)

	assert.Equal(t, "WindowCovering", c.Name)
	assert.Equal(t, ClusterRevision, c.Revision)
	for name, f := range map[string]Feature{
		"lift":              FeatureLift,
		"tilt":              FeatureTilt,
		"positionAwareLift": FeaturePositionAwareLift,
		"absolutePosition":  FeatureAbsolutePosition,
		"positionAwareTilt": FeaturePositionAwareTilt,
	} {
		bit, ok := c.FeatureBit(name)
		require.True(t, ok, name)
		assert.EqualValues(t, f, bit, name)
	}
	a, err := c.AttributeByName("currentPositionLiftPercent100ths")
	require.NoError(t, err)
	assert.Equal(t, AttrCurrentPositionLiftPercent100ths, a.ID)
}

func TestGoToLiftPercentage(t *testing.T) {
	cmd, err := GoToLiftPercentage(5000)
	require.NoError(t, err)
	assert.Equal(t, CmdGoToLiftPercentage, cmd.ID)
	assert.Equal(t, []string{"liftPercent100thsValue"}, cmd.Keys())

	data, err := codec.EncodeTLV(cmd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x15, 0x25, 0x00, 0x88, 0x13, 0x18}, data)

	_, err = GoToLiftPercentage(10001)
	assert.ErrorIs(t, err, ErrPercentRange)
	_, err = GoToTiltPercentage(MaxPercent100ths + 1)
	assert.ErrorIs(t, err, ErrPercentRange)
}

func TestMotionCommands(t *testing.T) {
	for _, build := range []func() (*codec.EncodedCommand, error){UpOrOpen, DownOrClose, StopMotion} {
		cmd, err := build()
		require.NoError(t, err)
		assert.Zero(t, cmd.Len(), cmd.Name)
	}

	cmd, err := GoToTiltValue(300)
	require.NoError(t, err)
	assert.Equal(t, "goToTiltValue", cmd.Name)
	v, ok := cmd.Get("tiltValue")
	require.True(t, ok)
	assert.Equal(t, uint64(300), v)

	cmd, err = GoToLiftValue(0)
	require.NoError(t, err)
	assert.Equal(t, CmdGoToLiftValue, cmd.ID)
}
