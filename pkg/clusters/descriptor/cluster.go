// Package descriptor fills and reads the Descriptor Cluster (0x001D) of an
// endpoint instance.
//
// The Descriptor cluster describes an endpoint's device types, server/client
// clusters, and composition (PartsList). It's mandatory on all endpoints.
package descriptor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/backkem/matterschema/pkg/clusters"
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/instance"
	"github.com/backkem/matterschema/pkg/types"
)

// Cluster constants.
const (
	ClusterID       datamodel.ClusterID = 0x001D
	ClusterRevision uint16              = 3
)

// Attribute IDs.
const (
	AttrDeviceTypeList   datamodel.AttributeID = 0x0000
	AttrServerList       datamodel.AttributeID = 0x0001
	AttrClientList       datamodel.AttributeID = 0x0002
	AttrPartsList        datamodel.AttributeID = 0x0003
	AttrTagList          datamodel.AttributeID = 0x0004
	AttrEndpointUniqueID datamodel.AttributeID = 0x0005
)

// Feature bits.
type Feature uint32

const (
	// FeatureTagList indicates the TagList attribute is present.
	FeatureTagList Feature = 1 << 0 // TAGLIST
)

// DeviceType is one DeviceTypeStruct entry.
type DeviceType struct {
	ID       uint32
	Revision uint16
}

// SemanticTag represents a semantic tag for endpoint disambiguation.
type SemanticTag struct {
	// MfgCode is the manufacturer code (null for standard tags).
	MfgCode types.Field[uint16]

	NamespaceID uint8
	Tag         uint8

	// Label is an optional human-readable label.
	Label types.Field[string]
}

// Config describes one endpoint for Populate.
type Config struct {
	// DeviceTypes is reported as DeviceTypeList.
	DeviceTypes []DeviceType

	// Parts lists the child endpoints of a non-root endpoint. The root
	// endpoint always reports every other endpoint.
	Parts []datamodel.EndpointID

	// SemanticTags provides optional semantic tags for this endpoint.
	// If non-empty, the TAGLIST feature is enabled.
	SemanticTags []SemanticTag

	// EndpointUniqueID is an optional unique identifier for the endpoint.
	EndpointUniqueID *string
}

// Populate creates the Descriptor instance of endpoint ep if needed and
// reports its attributes from the node's current composition. Call it again
// after adding clusters or endpoints; tags and the unique ID not given in cfg
// are cleared.
func Populate(n *instance.Node, ep datamodel.EndpointID, cfg Config) (*instance.Cluster, error) {
	c, err := n.Cluster(ep, ClusterID)
	if errors.Is(err, datamodel.ErrEndpointNotFound) || errors.Is(err, datamodel.ErrClusterNotFound) {
		c, err = n.NewCluster(ep, ClusterID)
	}
	if err != nil {
		return nil, err
	}
	endpoint, err := n.Endpoint(ep)
	if err != nil {
		return nil, err
	}

	deviceTypes := make([]any, 0, len(cfg.DeviceTypes))
	for _, dt := range cfg.DeviceTypes {
		deviceTypes = append(deviceTypes, map[string]any{
			"deviceType": dt.ID,
			"revision":   dt.Revision,
		})
	}

	servers := []any{}
	for _, id := range endpoint.ClusterIDs() {
		servers = append(servers, uint32(id))
	}

	var parts []datamodel.EndpointID
	if ep == 0 {
		for _, e := range n.Endpoints() {
			if e.ID() != 0 {
				parts = append(parts, e.ID())
			}
		}
	} else {
		parts = append(parts, cfg.Parts...)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i] < parts[j] })
	partList := make([]any, 0, len(parts))
	for _, p := range parts {
		partList = append(partList, uint16(p))
	}

	var features []string
	if len(cfg.SemanticTags) > 0 {
		features = append(features, "tagList")
	}

	values := []struct {
		id datamodel.AttributeID
		v  any
	}{
		{datamodel.GlobalAttrFeatureMap, features},
		{AttrDeviceTypeList, deviceTypes},
		{AttrServerList, servers},
		{AttrClientList, []any{}},
		{AttrPartsList, partList},
	}
	if len(cfg.SemanticTags) > 0 {
		tags := make([]any, 0, len(cfg.SemanticTags))
		for _, t := range cfg.SemanticTags {
			tags = append(tags, map[string]any{
				"mfgCode":     t.MfgCode,
				"namespaceId": t.NamespaceID,
				"tag":         t.Tag,
				"label":       t.Label,
			})
		}
		values = append(values, struct {
			id datamodel.AttributeID
			v  any
		}{AttrTagList, tags})
	}
	if cfg.EndpointUniqueID != nil {
		values = append(values, struct {
			id datamodel.AttributeID
			v  any
		}{AttrEndpointUniqueID, *cfg.EndpointUniqueID})
	}
	for _, a := range values {
		if err := c.Apply(a.id, a.v); err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", ep, err)
		}
	}
	if len(cfg.SemanticTags) == 0 {
		if err := c.Clear(AttrTagList); err != nil {
			return nil, err
		}
	}
	if cfg.EndpointUniqueID == nil {
		if err := c.Clear(AttrEndpointUniqueID); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DeviceTypes reads DeviceTypeList.
func DeviceTypes(c *instance.Cluster) ([]DeviceType, error) {
	list, err := list(c, AttrDeviceTypeList)
	if err != nil {
		return nil, err
	}
	out := make([]DeviceType, 0, len(list))
	for _, e := range list {
		s, ok := e.(types.Struct)
		if !ok {
			return nil, fmt.Errorf("%w: device type is %T", clusters.ErrInvalidResponse, e)
		}
		id, _, err := clusters.Member[uint64](s, "deviceType")
		if err != nil {
			return nil, err
		}
		rev, _, err := clusters.Member[uint64](s, "revision")
		if err != nil {
			return nil, err
		}
		out = append(out, DeviceType{ID: uint32(id), Revision: uint16(rev)})
	}
	return out, nil
}

// SemanticTags reads TagList. It fails with datamodel.ErrUnsupported when
// the TAGLIST feature is off.
func SemanticTags(c *instance.Cluster) ([]SemanticTag, error) {
	if err := c.CheckAttribute(AttrTagList); err != nil {
		return nil, err
	}
	list, err := list(c, AttrTagList)
	if err != nil {
		return nil, err
	}
	out := make([]SemanticTag, 0, len(list))
	for _, e := range list {
		s, ok := e.(types.Struct)
		if !ok {
			return nil, fmt.Errorf("%w: semantic tag is %T", clusters.ErrInvalidResponse, e)
		}
		var tag SemanticTag
		ns, _, err := clusters.Member[uint64](s, "namespaceId")
		if err != nil {
			return nil, err
		}
		t, _, err := clusters.Member[uint64](s, "tag")
		if err != nil {
			return nil, err
		}
		tag.NamespaceID, tag.Tag = uint8(ns), uint8(t)
		if v, ok := s.Get("mfgCode"); ok {
			if types.IsNull(v) {
				tag.MfgCode = types.Null[uint16]()
			} else if code, ok := v.(uint64); ok {
				tag.MfgCode = types.Some(uint16(code))
			}
		}
		if v, ok := s.Get("label"); ok {
			if types.IsNull(v) {
				tag.Label = types.Null[string]()
			} else if label, ok := v.(string); ok {
				tag.Label = types.Some(label)
			}
		}
		out = append(out, tag)
	}
	return out, nil
}

// ServerList reads ServerList.
func ServerList(c *instance.Cluster) ([]datamodel.ClusterID, error) {
	return ids[datamodel.ClusterID](c, AttrServerList)
}

// PartsList reads PartsList.
func PartsList(c *instance.Cluster) ([]datamodel.EndpointID, error) {
	return ids[datamodel.EndpointID](c, AttrPartsList)
}

func list(c *instance.Cluster, id datamodel.AttributeID) ([]any, error) {
	f, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	v, ok := f.Get()
	if !ok {
		return nil, fmt.Errorf("%w: %s", datamodel.ErrNotPresent, c.AttributePath(id))
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", clusters.ErrInvalidResponse, c.AttributePath(id), v)
	}
	return l, nil
}

func ids[T ~uint16 | ~uint32](c *instance.Cluster, id datamodel.AttributeID) ([]T, error) {
	l, err := list(c, id)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(l))
	for _, e := range l {
		n, ok := e.(uint64)
		if !ok {
			return nil, fmt.Errorf("%w: list entry is %T", clusters.ErrInvalidResponse, e)
		}
		out = append(out, T(n))
	}
	return out, nil
}
