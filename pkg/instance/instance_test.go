package instance

import (
	"sync"
	"testing"

	"github.com/pion/transport/v3/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/types"
)

const (
	attrOnOff        datamodel.AttributeID = 0x0000
	attrGlobalScene  datamodel.AttributeID = 0x4000
	attrStartUpOnOff datamodel.AttributeID = 0x4003
)

func registryT(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.Default()
	require.NoError(t, err)
	return reg
}

func onOffT(t *testing.T, l AttributeChangeListener) *Cluster {
	t.Helper()
	cs, err := registryT(t).Cluster(datamodel.ClusterOnOff)
	require.NoError(t, err)
	c, err := NewCluster(Config{Node: 1, Endpoint: 1, Schema: cs, Listener: l})
	require.NoError(t, err)
	return c
}

func TestNewCluster_NoSchema(t *testing.T) {
	_, err := NewCluster(Config{Endpoint: 1})
	assert.ErrorIs(t, err, datamodel.ErrSchemaNotFound)
}

func TestCluster_GetApply(t *testing.T) {
	c := onOffT(t, nil)

	f, err := c.Get(attrOnOff)
	require.NoError(t, err)
	assert.True(t, f.IsAbsent())

	_, err = c.Get(0x1234)
	assert.ErrorIs(t, err, datamodel.ErrAttributeNotFound)
	assert.ErrorIs(t, c.Apply(0x1234, true), datamodel.ErrAttributeNotFound)

	v0 := c.DataVersion()
	require.NoError(t, c.Apply(attrOnOff, true))
	assert.Equal(t, v0+1, c.DataVersion())

	f, err = c.Get(attrOnOff)
	require.NoError(t, err)
	got, ok := f.Get()
	require.True(t, ok)
	assert.Equal(t, true, got)

	assert.ErrorIs(t, c.Apply(attrOnOff, types.NullValue), datamodel.ErrTypeMismatch)
	assert.ErrorIs(t, c.Apply(attrOnOff, 1), datamodel.ErrTypeMismatch)
	assert.Equal(t, v0+1, c.DataVersion(), "rejected values leave the version alone")

	require.NoError(t, c.Apply(attrStartUpOnOff, types.NullValue))
	f, err = c.Get(attrStartUpOnOff)
	require.NoError(t, err)
	assert.True(t, f.IsNull())

	require.NoError(t, c.Apply(attrStartUpOnOff, "toggle"))
	f, _ = c.Get(attrStartUpOnOff)
	got, _ = f.Get()
	assert.Equal(t, uint64(2), got.(types.EnumValue).Raw)
}

func TestCluster_ApplyTLV(t *testing.T) {
	c := onOffT(t, nil)

	require.NoError(t, c.ApplyTLV(attrOnOff, []byte{0x09}))
	f, _ := c.Get(attrOnOff)
	got, _ := f.Get()
	assert.Equal(t, true, got)

	// Enum value 7 is not declared but still stored.
	require.NoError(t, c.ApplyTLV(attrStartUpOnOff, []byte{0x04, 0x07}))
	f, _ = c.Get(attrStartUpOnOff)
	got, _ = f.Get()
	assert.Equal(t, types.EnumValue{Raw: 7, Name: "unknown"}, got)

	assert.ErrorIs(t, c.ApplyTLV(attrOnOff, []byte{0x0C, 0x01, 'x'}), datamodel.ErrTypeMismatch)
}

func TestCluster_ClearSnapshot(t *testing.T) {
	c := onOffT(t, nil)
	require.NoError(t, c.Apply(attrOnOff, false))
	require.NoError(t, c.Apply(attrStartUpOnOff, 1))

	snap := c.Snapshot()
	assert.Len(t, snap, 2)

	require.NoError(t, c.Clear(attrOnOff))
	f, _ := c.Get(attrOnOff)
	assert.True(t, f.IsAbsent())
	assert.Len(t, snap, 2, "snapshot is a copy")
	assert.Len(t, c.Snapshot(), 1)
}

func TestCluster_FeatureConformance(t *testing.T) {
	c := onOffT(t, nil)

	assert.Equal(t, uint64(0), c.FeatureMap())
	assert.True(t, c.SupportsAttribute(attrOnOff))
	assert.False(t, c.SupportsAttribute(attrGlobalScene))
	assert.False(t, c.SupportsAttribute(0x1234))
	assert.False(t, c.SupportsCommand(0x40))
	assert.Equal(t, []datamodel.CommandID{0, 1, 2}, c.AcceptedCommandList())
	assert.NotContains(t, c.AttributeList(), attrGlobalScene)
	assert.Contains(t, c.AttributeList(), datamodel.GlobalAttrFeatureMap)

	require.NoError(t, c.Apply(datamodel.GlobalAttrFeatureMap, 0x01))
	assert.True(t, c.HasFeature("lighting"))
	assert.False(t, c.HasFeature("offOnly"))
	assert.False(t, c.HasFeature("nope"))
	assert.True(t, c.SupportsAttribute(attrGlobalScene))
	assert.True(t, c.SupportsCommand(0x40))
	assert.Equal(t, []datamodel.CommandID{0, 1, 2, 0x40, 0x41, 0x42}, c.AcceptedCommandList())
	assert.Contains(t, c.AttributeList(), attrGlobalScene)

	// A reported list wins over the derived one.
	require.NoError(t, c.Apply(datamodel.GlobalAttrAttributeList, []int{0, 0xFFFD}))
	assert.Equal(t, []datamodel.AttributeID{0, 0xFFFD}, c.AttributeList())
}

func TestCluster_EventAndAttributeGating(t *testing.T) {
	cs, err := registryT(t).Cluster(datamodel.ClusterDoorLock)
	require.NoError(t, err)
	c, err := NewCluster(Config{Endpoint: 1, Schema: cs})
	require.NoError(t, err)

	const (
		attrLockState     datamodel.AttributeID = 0x0000
		attrDoorState     datamodel.AttributeID = 0x0003
		evDoorLockAlarm   datamodel.EventID     = 0x00
		evDoorStateChange datamodel.EventID     = 0x01
	)
	assert.True(t, c.SupportsEvent(evDoorLockAlarm))
	assert.False(t, c.SupportsEvent(evDoorStateChange))
	assert.False(t, c.SupportsEvent(0x77))
	assert.NoError(t, c.CheckAttribute(attrLockState))
	assert.ErrorIs(t, c.CheckAttribute(attrDoorState), datamodel.ErrUnsupported)
	assert.ErrorIs(t, c.CheckAttribute(0x7777), datamodel.ErrAttributeNotFound)

	require.NoError(t, c.Apply(datamodel.GlobalAttrFeatureMap, []string{"doorPositionSensor"}))
	assert.True(t, c.SupportsEvent(evDoorStateChange))
	assert.NoError(t, c.CheckAttribute(attrDoorState))
}

func TestCluster_ReadTLV(t *testing.T) {
	c := onOffT(t, nil)

	data, err := c.ReadTLV(datamodel.GlobalAttrClusterRevision)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x06}, data)

	_, err = c.ReadTLV(attrOnOff)
	assert.ErrorIs(t, err, datamodel.ErrNotPresent)

	require.NoError(t, c.Apply(attrOnOff, true))
	data, err = c.ReadTLV(attrOnOff)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x09}, data)

	data, err = c.ReadTLV(datamodel.GlobalAttrAcceptedCommandList)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x16, 0x04, 0x00, 0x04, 0x01, 0x04, 0x02, 0x18}, data)
}

func TestCluster_Listener(t *testing.T) {
	var paths []datamodel.AttributePath
	var values []types.Field[any]
	c := onOffT(t, AttributeChangeFunc(func(p datamodel.AttributePath, v types.Field[any]) {
		paths = append(paths, p)
		values = append(values, v)
	}))

	require.NoError(t, c.Apply(attrOnOff, true))
	require.Error(t, c.Apply(attrOnOff, "on"))
	require.NoError(t, c.Clear(attrOnOff))
	require.NoError(t, c.Clear(attrOnOff))

	require.Len(t, paths, 2)
	assert.Equal(t, datamodel.AttributePath{Endpoint: 1, Cluster: datamodel.ClusterOnOff, Attribute: attrOnOff}, paths[0])
	assert.True(t, values[0].IsPresent())
	assert.True(t, values[1].IsAbsent())

	c.SetListener(AttributeChangeFunc(func(datamodel.AttributePath, types.Field[any]) {
		panic("boom")
	}))
	assert.NoError(t, c.Apply(attrOnOff, false))
}

func TestEndpoint(t *testing.T) {
	reg := registryT(t)
	ep := NewEndpoint(1)

	for _, id := range []datamodel.ClusterID{datamodel.ClusterOnOff, datamodel.ClusterDescriptor} {
		cs, err := reg.Cluster(id)
		require.NoError(t, err)
		c, err := NewCluster(Config{Endpoint: 1, Schema: cs})
		require.NoError(t, err)
		require.NoError(t, ep.AddCluster(c))
	}
	assert.Equal(t, []datamodel.ClusterID{datamodel.ClusterOnOff, datamodel.ClusterDescriptor}, ep.ClusterIDs())

	dup := onOffT(t, nil)
	assert.ErrorIs(t, ep.AddCluster(dup), datamodel.ErrClusterExists)

	cs, err := reg.Cluster(datamodel.ClusterActions)
	require.NoError(t, err)
	other, err := NewCluster(Config{Endpoint: 2, Schema: cs})
	require.NoError(t, err)
	assert.Error(t, ep.AddCluster(other))

	c, err := ep.Cluster(datamodel.ClusterOnOff)
	require.NoError(t, err)
	require.NoError(t, c.Apply(attrOnOff, true))

	require.NoError(t, ep.RemoveCluster(datamodel.ClusterOnOff))
	assert.ErrorIs(t, ep.RemoveCluster(datamodel.ClusterOnOff), datamodel.ErrClusterNotFound)
	_, err = ep.Cluster(datamodel.ClusterOnOff)
	assert.ErrorIs(t, err, datamodel.ErrClusterNotFound)
	assert.Empty(t, c.Snapshot(), "removed instances are closed")

	ep.Close()
	assert.Empty(t, ep.Clusters())
}

func TestNode(t *testing.T) {
	n := NewNode(NodeConfig{ID: 0x1122, Registry: registryT(t)})

	var got []datamodel.AttributePath
	n.SetAttributeChangeListener(AttributeChangeFunc(func(p datamodel.AttributePath, _ types.Field[any]) {
		got = append(got, p)
	}))

	c, err := n.NewCluster(1, datamodel.ClusterOnOff)
	require.NoError(t, err)
	assert.Equal(t, datamodel.NodeID(0x1122), c.Node())
	_, err = n.NewCluster(1, datamodel.ClusterOnOff)
	assert.ErrorIs(t, err, datamodel.ErrClusterExists)
	_, err = n.NewCluster(0, datamodel.ClusterID(0xFFF1))
	assert.ErrorIs(t, err, datamodel.ErrSchemaNotFound)

	_, err = n.NewCluster(0, datamodel.ClusterDescriptor)
	require.NoError(t, err)
	ids := []datamodel.EndpointID{}
	for _, ep := range n.Endpoints() {
		ids = append(ids, ep.ID())
	}
	assert.Equal(t, []datamodel.EndpointID{1, 0}, ids)

	path := datamodel.AttributePath{Endpoint: 1, Cluster: datamodel.ClusterOnOff, Attribute: attrOnOff}
	require.NoError(t, n.Apply(path, true))
	require.NoError(t, n.ApplyTLV(path, []byte{0x08}))
	assert.Equal(t, []datamodel.AttributePath{path, path}, got)

	_, err = n.Cluster(7, datamodel.ClusterOnOff)
	assert.ErrorIs(t, err, datamodel.ErrEndpointNotFound)
	assert.ErrorIs(t, n.AddEndpoint(NewEndpoint(1)), datamodel.ErrEndpointExists)

	require.NoError(t, n.RemoveEndpoint(1))
	assert.ErrorIs(t, n.RemoveEndpoint(1), datamodel.ErrEndpointNotFound)
	assert.ErrorIs(t, n.Apply(path, true), datamodel.ErrEndpointNotFound)

	n.Close()
	assert.Empty(t, n.Endpoints())
}

func TestCluster_Concurrent(t *testing.T) {
	defer test.CheckRoutines(t)()

	c := onOffT(t, AttributeChangeFunc(func(datamodel.AttributePath, types.Field[any]) {}))
	v0 := c.DataVersion()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, c.Apply(attrOnOff, (i+j)%2 == 0))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := c.Get(attrOnOff)
				assert.NoError(t, err)
				_ = c.AttributeList()
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, v0+8*50, c.DataVersion())
}
