package instance

import (
	"fmt"
	"sync"

	"github.com/backkem/matterschema/pkg/datamodel"
)

// Endpoint owns the cluster instances of one endpoint.
type Endpoint struct {
	mu       sync.RWMutex
	id       datamodel.EndpointID
	clusters map[datamodel.ClusterID]*Cluster
	order    []datamodel.ClusterID // registration order
}

// NewEndpoint creates an empty endpoint.
func NewEndpoint(id datamodel.EndpointID) *Endpoint {
	return &Endpoint{
		id:       id,
		clusters: make(map[datamodel.ClusterID]*Cluster),
	}
}

// ID returns the endpoint ID.
func (e *Endpoint) ID() datamodel.EndpointID {
	return e.id
}

// AddCluster registers a cluster instance.
// Returns ErrClusterExists if an instance with the same cluster ID exists.
func (e *Endpoint) AddCluster(c *Cluster) error {
	if c.EndpointID() != e.id {
		return fmt.Errorf("%w: %s belongs to endpoint %d", datamodel.ErrEndpointNotFound, c, e.id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	id := c.ID()
	if _, exists := e.clusters[id]; exists {
		return fmt.Errorf("%w: %s", datamodel.ErrClusterExists, c)
	}
	e.clusters[id] = c
	e.order = append(e.order, id)
	return nil
}

// RemoveCluster removes and closes a cluster instance.
// Returns ErrClusterNotFound if the cluster doesn't exist.
func (e *Endpoint) RemoveCluster(id datamodel.ClusterID) error {
	e.mu.Lock()
	c, exists := e.clusters[id]
	if !exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d/0x%04X", datamodel.ErrClusterNotFound, e.id, uint32(id))
	}
	delete(e.clusters, id)
	for i, cID := range e.order {
		if cID == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.mu.Unlock()

	c.Close()
	return nil
}

// Cluster returns the instance of a cluster.
func (e *Endpoint) Cluster(id datamodel.ClusterID) (*Cluster, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if c, ok := e.clusters[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %d/0x%04X", datamodel.ErrClusterNotFound, e.id, uint32(id))
}

// Clusters returns all instances in registration order.
func (e *Endpoint) Clusters() []*Cluster {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]*Cluster, 0, len(e.order))
	for _, id := range e.order {
		result = append(result, e.clusters[id])
	}
	return result
}

// ClusterIDs returns the IDs of all clusters on this endpoint.
func (e *Endpoint) ClusterIDs() []datamodel.ClusterID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]datamodel.ClusterID{}, e.order...)
}

// Close closes and removes every cluster instance.
func (e *Endpoint) Close() {
	e.mu.Lock()
	clusters := e.clusters
	e.clusters = make(map[datamodel.ClusterID]*Cluster)
	e.order = nil
	e.mu.Unlock()

	for _, c := range clusters {
		c.Close()
	}
}
