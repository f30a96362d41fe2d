package datamodel

import "fmt"

// Identifier types shared by the schema, codec and instance layers.
// Widths follow the wire encoding; 64-bit values are native Go integers.
type (
	// NodeID is a 64-bit operational node identifier.
	NodeID uint64

	// EndpointID is a 16-bit endpoint number.
	EndpointID uint16

	// ClusterID is a 32-bit cluster identifier. Assigned once, never reused.
	ClusterID uint32

	// AttributeID is a 32-bit attribute identifier, unique within a cluster.
	AttributeID uint32

	// CommandID is a 32-bit command identifier, unique within a cluster and direction.
	CommandID uint32

	// EventID is a 32-bit event identifier, unique within a cluster.
	EventID uint32

	// FieldID is the context tag of a struct field or command parameter.
	FieldID uint32

	// DataVersion is bumped on every accepted attribute change of a cluster instance.
	DataVersion uint32
)

// ClusterPath identifies a cluster instance on an endpoint.
type ClusterPath struct {
	Endpoint EndpointID
	Cluster  ClusterID
}

func (p ClusterPath) String() string {
	return fmt.Sprintf("%d/0x%04X", p.Endpoint, uint32(p.Cluster))
}

// AttributePath is the wire identity of one attribute value:
// (endpoint, cluster, attribute).
type AttributePath struct {
	Endpoint  EndpointID
	Cluster   ClusterID
	Attribute AttributeID
}

// ClusterPath returns the cluster path portion.
func (p AttributePath) ClusterPath() ClusterPath {
	return ClusterPath{Endpoint: p.Endpoint, Cluster: p.Cluster}
}

func (p AttributePath) String() string {
	return fmt.Sprintf("%s/0x%04X", p.ClusterPath(), uint32(p.Attribute))
}

// CommandPath is the wire identity of a command invocation.
type CommandPath struct {
	Endpoint EndpointID
	Cluster  ClusterID
	Command  CommandID
}

// ClusterPath returns the cluster path portion.
func (p CommandPath) ClusterPath() ClusterPath {
	return ClusterPath{Endpoint: p.Endpoint, Cluster: p.Cluster}
}

func (p CommandPath) String() string {
	return fmt.Sprintf("%s/cmd 0x%02X", p.ClusterPath(), uint32(p.Command))
}

// EventPath identifies an event on a cluster instance.
type EventPath struct {
	Endpoint EndpointID
	Cluster  ClusterID
	Event    EventID
}

// ClusterPath returns the cluster path portion.
func (p EventPath) ClusterPath() ClusterPath {
	return ClusterPath{Endpoint: p.Endpoint, Cluster: p.Cluster}
}
