package schema

import (
	"fmt"

	"github.com/backkem/matterschema/pkg/datamodel"
)

// ClusterSchema is the immutable description of one cluster. Elements are
// kept in declaration order; lookups go through indexes built once by the
// Builder.
type ClusterSchema struct {
	ID       datamodel.ClusterID
	Name     string
	Revision uint16

	// Features is the cluster's feature map bitmap, nil when the cluster
	// declares no features.
	Features *BitmapDescriptor

	Attributes []*AttributeDescriptor
	Commands   []*CommandDescriptor
	Events     []*EventDescriptor
	Enums      []*EnumDescriptor
	Bitmaps    []*BitmapDescriptor
	Structs    []*StructDescriptor

	registry   *Registry
	attrByID   map[datamodel.AttributeID]*AttributeDescriptor
	attrByName map[string]*AttributeDescriptor
	cmdByID    map[datamodel.CommandID]*CommandDescriptor
	cmdByName  map[string]*CommandDescriptor
	evByID     map[datamodel.EventID]*EventDescriptor
	evByName   map[string]*EventDescriptor
}

func (c *ClusterSchema) index() {
	c.attrByID = make(map[datamodel.AttributeID]*AttributeDescriptor, len(c.Attributes))
	c.attrByName = make(map[string]*AttributeDescriptor, len(c.Attributes))
	for _, a := range c.Attributes {
		c.attrByID[a.ID] = a
		c.attrByName[a.Name] = a
	}
	c.cmdByID = make(map[datamodel.CommandID]*CommandDescriptor, len(c.Commands))
	c.cmdByName = make(map[string]*CommandDescriptor, len(c.Commands))
	for _, cmd := range c.Commands {
		c.cmdByName[cmd.Name] = cmd
		// Request and response IDs share a number space per direction; the
		// ID index serves requests.
		if _, ok := c.cmdByID[cmd.ID]; !ok || cmd.Direction == ClientToServer {
			c.cmdByID[cmd.ID] = cmd
		}
	}
	c.evByID = make(map[datamodel.EventID]*EventDescriptor, len(c.Events))
	c.evByName = make(map[string]*EventDescriptor, len(c.Events))
	for _, e := range c.Events {
		c.evByID[e.ID] = e
		c.evByName[e.Name] = e
	}
}

// Registry returns the registry the cluster was built into. Type references
// of its elements resolve there.
func (c *ClusterSchema) Registry() *Registry { return c.registry }

func (c *ClusterSchema) String() string {
	return fmt.Sprintf("%s(0x%04X)", c.Name, uint32(c.ID))
}

// Attribute looks up an attribute by ID.
func (c *ClusterSchema) Attribute(id datamodel.AttributeID) (*AttributeDescriptor, error) {
	if a, ok := c.attrByID[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s attribute 0x%04X", datamodel.ErrAttributeNotFound, c.Name, uint32(id))
}

// AttributeByName looks up an attribute by name.
func (c *ClusterSchema) AttributeByName(name string) (*AttributeDescriptor, error) {
	if a, ok := c.attrByName[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s.%s", datamodel.ErrAttributeNotFound, c.Name, name)
}

// Command looks up a client to server command by ID.
func (c *ClusterSchema) Command(id datamodel.CommandID) (*CommandDescriptor, error) {
	if cmd, ok := c.cmdByID[id]; ok {
		return cmd, nil
	}
	return nil, fmt.Errorf("%w: %s command 0x%02X", datamodel.ErrCommandNotFound, c.Name, uint32(id))
}

// GeneratedCommand looks up a server to client command by ID.
func (c *ClusterSchema) GeneratedCommand(id datamodel.CommandID) (*CommandDescriptor, error) {
	for _, cmd := range c.Commands {
		if cmd.ID == id && cmd.Direction == ServerToClient {
			return cmd, nil
		}
	}
	return nil, fmt.Errorf("%w: %s response 0x%02X", datamodel.ErrCommandNotFound, c.Name, uint32(id))
}

// CommandByName looks up a command of either direction by name.
func (c *ClusterSchema) CommandByName(name string) (*CommandDescriptor, error) {
	if cmd, ok := c.cmdByName[name]; ok {
		return cmd, nil
	}
	return nil, fmt.Errorf("%w: %s.%s", datamodel.ErrCommandNotFound, c.Name, name)
}

// Event looks up an event by ID.
func (c *ClusterSchema) Event(id datamodel.EventID) (*EventDescriptor, error) {
	if e, ok := c.evByID[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s event 0x%02X", datamodel.ErrEventNotFound, c.Name, uint32(id))
}

// EventByName looks up an event by name.
func (c *ClusterSchema) EventByName(name string) (*EventDescriptor, error) {
	if e, ok := c.evByName[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s.%s", datamodel.ErrEventNotFound, c.Name, name)
}

// Enum returns a cluster-local enum by unqualified name.
func (c *ClusterSchema) Enum(name string) (*EnumDescriptor, bool) {
	for _, e := range c.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Bitmap returns a cluster-local bitmap by unqualified name.
func (c *ClusterSchema) Bitmap(name string) (*BitmapDescriptor, bool) {
	for _, b := range c.Bitmaps {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Struct returns a cluster-local struct by unqualified name.
func (c *ClusterSchema) Struct(name string) (*StructDescriptor, bool) {
	for _, s := range c.Structs {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// FeatureBit returns the feature map mask of a named feature.
func (c *ClusterSchema) FeatureBit(name string) (uint64, bool) {
	if c.Features == nil {
		return 0, false
	}
	f, ok := c.Features.Field(name)
	if !ok {
		return 0, false
	}
	return f.Mask(), true
}

// Conforms reports whether an element gated by features is supported under
// featureMap. Ungated elements always conform.
func (c *ClusterSchema) Conforms(features []string, featureMap uint64) bool {
	if len(features) == 0 {
		return true
	}
	for _, name := range features {
		if bit, ok := c.FeatureBit(name); ok && featureMap&bit != 0 {
			return true
		}
	}
	return false
}

// AcceptedCommands returns the client to server commands in declaration order.
func (c *ClusterSchema) AcceptedCommands() []*CommandDescriptor {
	return c.commandsFor(ClientToServer)
}

// GeneratedCommands returns the server to client commands in declaration order.
func (c *ClusterSchema) GeneratedCommands() []*CommandDescriptor {
	return c.commandsFor(ServerToClient)
}

func (c *ClusterSchema) commandsFor(d Direction) []*CommandDescriptor {
	var out []*CommandDescriptor
	for _, cmd := range c.Commands {
		if cmd.Direction == d {
			out = append(out, cmd)
		}
	}
	return out
}
