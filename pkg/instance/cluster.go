// Package instance holds the attribute state of cluster instances as seen
// by a controller: values reported by a node, checked against the cluster
// schema and kept per (node, endpoint, cluster).
package instance

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pion/logging"

	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/tlv"
	"github.com/backkem/matterschema/pkg/types"
)

// AttributeChangeListener is notified after an attribute value changed.
// Value is absent after Clear.
type AttributeChangeListener interface {
	OnAttributeChanged(path datamodel.AttributePath, value types.Field[any])
}

// AttributeChangeFunc adapts a function to AttributeChangeListener.
type AttributeChangeFunc func(path datamodel.AttributePath, value types.Field[any])

// OnAttributeChanged calls f.
func (f AttributeChangeFunc) OnAttributeChanged(path datamodel.AttributePath, value types.Field[any]) {
	f(path, value)
}

// Config configures a Cluster.
type Config struct {
	Node     datamodel.NodeID
	Endpoint datamodel.EndpointID
	Schema   *schema.ClusterSchema

	// Listener, if set, is called after every accepted change. It runs
	// outside the instance lock.
	Listener AttributeChangeListener

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging.NewDefaultLoggerFactory() is used.
	LoggerFactory logging.LoggerFactory
}

// Cluster is one cluster instance. All methods are safe for concurrent use;
// writers are serialized per instance.
type Cluster struct {
	mu          sync.RWMutex
	node        datamodel.NodeID
	endpoint    datamodel.EndpointID
	schema      *schema.ClusterSchema
	values      map[datamodel.AttributeID]any
	dataVersion datamodel.DataVersion
	listener    AttributeChangeListener
	log         logging.LeveledLogger
}

// NewCluster creates an instance with every attribute absent.
func NewCluster(config Config) (*Cluster, error) {
	if config.Schema == nil {
		return nil, fmt.Errorf("%w: endpoint %d has no cluster schema", datamodel.ErrSchemaNotFound, config.Endpoint)
	}
	factory := config.LoggerFactory
	if factory == nil {
		factory = logging.NewDefaultLoggerFactory()
	}
	return &Cluster{
		node:        config.Node,
		endpoint:    config.Endpoint,
		schema:      config.Schema,
		values:      make(map[datamodel.AttributeID]any),
		dataVersion: randomDataVersion(),
		listener:    config.Listener,
		log:         factory.NewLogger("instance"),
	}, nil
}

// ID returns the cluster ID.
func (c *Cluster) ID() datamodel.ClusterID { return c.schema.ID }

// Node returns the node the instance belongs to.
func (c *Cluster) Node() datamodel.NodeID { return c.node }

// EndpointID returns the endpoint the instance belongs to.
func (c *Cluster) EndpointID() datamodel.EndpointID { return c.endpoint }

// Schema returns the cluster schema.
func (c *Cluster) Schema() *schema.ClusterSchema { return c.schema }

// Path returns the cluster path of this instance.
func (c *Cluster) Path() datamodel.ClusterPath {
	return datamodel.ClusterPath{Endpoint: c.endpoint, Cluster: c.schema.ID}
}

// AttributePath returns the path of one attribute of this instance.
func (c *Cluster) AttributePath(id datamodel.AttributeID) datamodel.AttributePath {
	return datamodel.AttributePath{Endpoint: c.endpoint, Cluster: c.schema.ID, Attribute: id}
}

// DataVersion returns the current data version. It changes on every
// accepted Apply or Clear.
func (c *Cluster) DataVersion() datamodel.DataVersion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataVersion
}

// Get returns the stored value of an attribute: absent if never reported,
// null if reported as null.
func (c *Cluster) Get(id datamodel.AttributeID) (types.Field[any], error) {
	if _, err := c.schema.Attribute(id); err != nil {
		return types.Absent[any](), err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return types.FieldOf(c.values[id]), nil
}

// Apply checks v against the attribute's type and stores its normalized
// form. Null is accepted for nullable attributes only.
func (c *Cluster) Apply(id datamodel.AttributeID, v any) error {
	attr, err := c.schema.Attribute(id)
	if err != nil {
		return err
	}
	checked, err := codec.Check(c.schema.Registry(), attr.Type, attr.Nullable, c.schema.Name+"."+attr.Name, v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.values[id] = checked
	c.dataVersion++
	version := c.dataVersion
	c.mu.Unlock()

	c.log.Tracef("%s = %v (version %d)", c.AttributePath(id), checked, version)
	c.notify(id, types.FieldOf(checked))
	return nil
}

// ApplyTLV decodes an attribute report payload and applies it.
func (c *Cluster) ApplyTLV(id datamodel.AttributeID, data []byte) error {
	attr, err := c.schema.Attribute(id)
	if err != nil {
		return err
	}
	v, err := codec.DecodeTLV(c.schema.Registry(), attr.Type, data)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", c.schema.Name, attr.Name, err)
	}
	return c.Apply(id, v)
}

// Clear returns an attribute to absent.
func (c *Cluster) Clear(id datamodel.AttributeID) error {
	if _, err := c.schema.Attribute(id); err != nil {
		return err
	}
	c.mu.Lock()
	_, had := c.values[id]
	if had {
		delete(c.values, id)
		c.dataVersion++
	}
	c.mu.Unlock()

	if had {
		c.notify(id, types.Absent[any]())
	}
	return nil
}

// Snapshot returns a copy of all present attribute values.
func (c *Cluster) Snapshot() map[datamodel.AttributeID]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[datamodel.AttributeID]any, len(c.values))
	for id, v := range c.values {
		out[id] = v
	}
	return out
}

// ReadTLV encodes the value of an attribute as an anonymous TLV element.
// ClusterRevision, FeatureMap and the global lists fall back to the values
// derived from the schema when the node never reported them.
func (c *Cluster) ReadTLV(id datamodel.AttributeID) ([]byte, error) {
	f, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	v := f.Interface()
	if v == nil {
		v = c.derived(id)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s", datamodel.ErrNotPresent, c.AttributePath(id))
	}
	w := tlv.NewWriter()
	if err := codec.EncodeValue(w, tlv.Anonymous(), v); err != nil {
		return nil, err
	}
	return w.Bytes()
}

func (c *Cluster) derived(id datamodel.AttributeID) any {
	switch id {
	case datamodel.GlobalAttrClusterRevision:
		return uint64(c.schema.Revision)
	case datamodel.GlobalAttrFeatureMap:
		return uint64(0)
	case datamodel.GlobalAttrAttributeList:
		return idList(c.AttributeList())
	case datamodel.GlobalAttrAcceptedCommandList:
		return idList(c.AcceptedCommandList())
	case datamodel.GlobalAttrGeneratedCommandList:
		return idList(c.GeneratedCommandList())
	case datamodel.GlobalAttrEventList:
		return idList(c.EventList())
	}
	return nil
}

func idList[T ~uint32](ids []T) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}

func (c *Cluster) notify(id datamodel.AttributeID, v types.Field[any]) {
	c.mu.RLock()
	l := c.listener
	c.mu.RUnlock()
	if l == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Warnf("attribute listener panicked on %s: %v", c.AttributePath(id), r)
		}
	}()
	l.OnAttributeChanged(c.AttributePath(id), v)
}

// SetListener replaces the change listener.
func (c *Cluster) SetListener(l AttributeChangeListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// Close drops all values and detaches the listener.
func (c *Cluster) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[datamodel.AttributeID]any)
	c.listener = nil
}

func (c *Cluster) String() string {
	return fmt.Sprintf("%s@%s", c.schema.Name, c.Path())
}

// randomDataVersion picks the initial data version.
func randomDataVersion() datamodel.DataVersion {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	return datamodel.DataVersion(binary.LittleEndian.Uint32(buf[:]))
}
