package instance

import (
	"fmt"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/types"
)

// FeatureMap returns the reported feature map, 0 if none was reported.
func (c *Cluster) FeatureMap() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch v := c.values[datamodel.GlobalAttrFeatureMap].(type) {
	case types.BitmapValue:
		return v.Raw
	case uint64:
		return v
	}
	return 0
}

// HasFeature reports whether a named feature is set in the feature map.
func (c *Cluster) HasFeature(name string) bool {
	bit, ok := c.schema.FeatureBit(name)
	return ok && c.FeatureMap()&bit != 0
}

// SupportsAttribute reports whether an attribute exists under the current
// feature map. Attributes gated by features none of which is set are
// unsupported; that is not an error.
func (c *Cluster) SupportsAttribute(id datamodel.AttributeID) bool {
	a, err := c.schema.Attribute(id)
	if err != nil {
		return false
	}
	return c.schema.Conforms(a.Features, c.FeatureMap())
}

// SupportsCommand reports whether a client to server command is accepted
// under the current feature map.
func (c *Cluster) SupportsCommand(id datamodel.CommandID) bool {
	cmd, err := c.schema.Command(id)
	if err != nil {
		return false
	}
	return c.schema.Conforms(cmd.Features, c.FeatureMap())
}

// CheckAttribute returns nil when the attribute is declared and conforms to
// the current feature map, ErrAttributeNotFound when it is not declared and
// ErrUnsupported when it is gated off.
func (c *Cluster) CheckAttribute(id datamodel.AttributeID) error {
	a, err := c.schema.Attribute(id)
	if err != nil {
		return err
	}
	if !c.schema.Conforms(a.Features, c.FeatureMap()) {
		return fmt.Errorf("%w: %s needs %v", datamodel.ErrUnsupported, c.AttributePath(id), a.Features)
	}
	return nil
}

// SupportsEvent reports whether an event exists under the current feature
// map.
func (c *Cluster) SupportsEvent(id datamodel.EventID) bool {
	e, err := c.schema.Event(id)
	if err != nil {
		return false
	}
	return c.schema.Conforms(e.Features, c.FeatureMap())
}

// AttributeList returns the reported AttributeList. Without a report it is
// derived from the schema: conforming mandatory attributes plus optional
// ones that have a value.
func (c *Cluster) AttributeList() []datamodel.AttributeID {
	if ids, ok := reportedIDs[datamodel.AttributeID](c, datamodel.GlobalAttrAttributeList); ok {
		return ids
	}
	fm := c.FeatureMap()
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []datamodel.AttributeID
	for _, a := range c.schema.Attributes {
		if !c.schema.Conforms(a.Features, fm) {
			continue
		}
		if _, present := c.values[a.ID]; a.Optional && !present {
			continue
		}
		out = append(out, a.ID)
	}
	return out
}

// AcceptedCommandList returns the reported AcceptedCommandList, or the
// conforming client to server commands of the schema.
func (c *Cluster) AcceptedCommandList() []datamodel.CommandID {
	if ids, ok := reportedIDs[datamodel.CommandID](c, datamodel.GlobalAttrAcceptedCommandList); ok {
		return ids
	}
	fm := c.FeatureMap()
	var out []datamodel.CommandID
	for _, cmd := range c.schema.AcceptedCommands() {
		if c.schema.Conforms(cmd.Features, fm) {
			out = append(out, cmd.ID)
		}
	}
	return out
}

// GeneratedCommandList returns the reported GeneratedCommandList, or the
// conforming server to client commands of the schema.
func (c *Cluster) GeneratedCommandList() []datamodel.CommandID {
	if ids, ok := reportedIDs[datamodel.CommandID](c, datamodel.GlobalAttrGeneratedCommandList); ok {
		return ids
	}
	fm := c.FeatureMap()
	var out []datamodel.CommandID
	for _, cmd := range c.schema.GeneratedCommands() {
		if c.schema.Conforms(cmd.Features, fm) {
			out = append(out, cmd.ID)
		}
	}
	return out
}

// EventList returns the reported EventList, or the conforming events of the
// schema.
func (c *Cluster) EventList() []datamodel.EventID {
	if ids, ok := reportedIDs[datamodel.EventID](c, datamodel.GlobalAttrEventList); ok {
		return ids
	}
	fm := c.FeatureMap()
	var out []datamodel.EventID
	for _, e := range c.schema.Events {
		if c.schema.Conforms(e.Features, fm) {
			out = append(out, e.ID)
		}
	}
	return out
}

func reportedIDs[T ~uint32](c *Cluster, attr datamodel.AttributeID) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list, ok := c.values[attr].([]any)
	if !ok {
		return nil, false
	}
	out := make([]T, 0, len(list))
	for _, v := range list {
		if id, ok := v.(uint64); ok {
			out = append(out, T(id))
		}
	}
	return out, true
}
