package instance

import (
	"fmt"
	"sync"

	"github.com/pion/logging"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/types"
)

// NodeConfig configures a Node.
type NodeConfig struct {
	ID datamodel.NodeID

	// Registry resolves cluster schemas for NewCluster.
	Registry *schema.Registry

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging.NewDefaultLoggerFactory() is used.
	LoggerFactory logging.LoggerFactory
}

// Node owns the endpoints of one node. Instances created through the node
// report changes to the node's listener.
type Node struct {
	mu        sync.RWMutex
	id        datamodel.NodeID
	registry  *schema.Registry
	endpoints map[datamodel.EndpointID]*Endpoint
	order     []datamodel.EndpointID // registration order
	listener  AttributeChangeListener

	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger
}

// NewNode creates an empty node.
func NewNode(config NodeConfig) *Node {
	factory := config.LoggerFactory
	if factory == nil {
		factory = logging.NewDefaultLoggerFactory()
	}
	return &Node{
		id:            config.ID,
		registry:      config.Registry,
		endpoints:     make(map[datamodel.EndpointID]*Endpoint),
		loggerFactory: factory,
		log:           factory.NewLogger("instance"),
	}
}

// ID returns the node ID.
func (n *Node) ID() datamodel.NodeID { return n.id }

// AddEndpoint registers an endpoint.
// Returns ErrEndpointExists if an endpoint with the same ID already exists.
func (n *Node) AddEndpoint(ep *Endpoint) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := ep.ID()
	if _, exists := n.endpoints[id]; exists {
		return fmt.Errorf("%w: %d", datamodel.ErrEndpointExists, id)
	}
	n.endpoints[id] = ep
	n.order = append(n.order, id)
	return nil
}

// RemoveEndpoint removes an endpoint and closes its clusters.
// Returns ErrEndpointNotFound if the endpoint doesn't exist.
func (n *Node) RemoveEndpoint(id datamodel.EndpointID) error {
	n.mu.Lock()
	ep, exists := n.endpoints[id]
	if !exists {
		n.mu.Unlock()
		return fmt.Errorf("%w: %d", datamodel.ErrEndpointNotFound, id)
	}
	delete(n.endpoints, id)
	for i, epID := range n.order {
		if epID == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	n.mu.Unlock()

	ep.Close()
	return nil
}

// Endpoint returns an endpoint by ID.
func (n *Node) Endpoint(id datamodel.EndpointID) (*Endpoint, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if ep, ok := n.endpoints[id]; ok {
		return ep, nil
	}
	return nil, fmt.Errorf("%w: %d", datamodel.ErrEndpointNotFound, id)
}

// Endpoints returns all endpoints in registration order.
func (n *Node) Endpoints() []*Endpoint {
	n.mu.RLock()
	defer n.mu.RUnlock()

	result := make([]*Endpoint, 0, len(n.order))
	for _, id := range n.order {
		result = append(result, n.endpoints[id])
	}
	return result
}

// NewCluster creates an instance of a registry cluster on an endpoint,
// adding the endpoint if needed.
func (n *Node) NewCluster(endpoint datamodel.EndpointID, cluster datamodel.ClusterID) (*Cluster, error) {
	if n.registry == nil {
		return nil, fmt.Errorf("%w: node has no registry", datamodel.ErrSchemaNotFound)
	}
	cs, err := n.registry.Cluster(cluster)
	if err != nil {
		return nil, err
	}
	c, err := NewCluster(Config{
		Node:          n.id,
		Endpoint:      endpoint,
		Schema:        cs,
		Listener:      AttributeChangeFunc(n.notifyAttributeChanged),
		LoggerFactory: n.loggerFactory,
	})
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	ep, ok := n.endpoints[endpoint]
	if !ok {
		ep = NewEndpoint(endpoint)
		n.endpoints[endpoint] = ep
		n.order = append(n.order, endpoint)
	}
	n.mu.Unlock()

	if err := ep.AddCluster(c); err != nil {
		return nil, err
	}
	n.log.Debugf("node %016X: added %s", uint64(n.id), c)
	return c, nil
}

// Cluster is a convenience lookup by endpoint and cluster ID.
func (n *Node) Cluster(endpoint datamodel.EndpointID, cluster datamodel.ClusterID) (*Cluster, error) {
	ep, err := n.Endpoint(endpoint)
	if err != nil {
		return nil, err
	}
	return ep.Cluster(cluster)
}

// Apply routes a reported value to its cluster instance.
func (n *Node) Apply(path datamodel.AttributePath, v any) error {
	c, err := n.Cluster(path.Endpoint, path.Cluster)
	if err != nil {
		return err
	}
	return c.Apply(path.Attribute, v)
}

// ApplyTLV routes a TLV encoded report to its cluster instance.
func (n *Node) ApplyTLV(path datamodel.AttributePath, data []byte) error {
	c, err := n.Cluster(path.Endpoint, path.Cluster)
	if err != nil {
		return err
	}
	return c.ApplyTLV(path.Attribute, data)
}

// SetAttributeChangeListener sets the listener for instances created by
// NewCluster.
func (n *Node) SetAttributeChangeListener(listener AttributeChangeListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listener = listener
}

func (n *Node) notifyAttributeChanged(path datamodel.AttributePath, value types.Field[any]) {
	n.mu.RLock()
	listener := n.listener
	n.mu.RUnlock()

	if listener != nil {
		listener.OnAttributeChanged(path, value)
	}
}

// Close removes every endpoint.
func (n *Node) Close() {
	for _, ep := range n.Endpoints() {
		_ = n.RemoveEndpoint(ep.ID())
	}
}
