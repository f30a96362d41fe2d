package clusters

import (
	"errors"
	"fmt"

	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/types"
)

// ErrInvalidResponse is returned when a response payload does not match the
// typed response it is decoded into.
var ErrInvalidResponse = errors.New("invalid command response")

// Command builds a client to server command of the default registry.
func Command(cluster datamodel.ClusterID, cmd datamodel.CommandID, args ...codec.Arg) (*codec.EncodedCommand, error) {
	reg, err := schema.Default()
	if err != nil {
		return nil, err
	}
	return CommandIn(reg, cluster, cmd, args...)
}

// CommandIn builds a client to server command of reg, which may carry
// definition overlays.
func CommandIn(reg *schema.Registry, cluster datamodel.ClusterID, cmd datamodel.CommandID, args ...codec.Arg) (*codec.EncodedCommand, error) {
	c, err := reg.Cluster(cluster)
	if err != nil {
		return nil, err
	}
	desc, err := c.Command(cmd)
	if err != nil {
		return nil, err
	}
	return codec.BuildCommand(c, desc, args...)
}

// DecodeResponse decodes the payload of a server to client command of the
// default registry.
func DecodeResponse(cluster datamodel.ClusterID, cmd datamodel.CommandID, data []byte) (*codec.EncodedCommand, error) {
	reg, err := schema.Default()
	if err != nil {
		return nil, err
	}
	c, err := reg.Cluster(cluster)
	if err != nil {
		return nil, err
	}
	desc, err := c.GeneratedCommand(cmd)
	if err != nil {
		return nil, err
	}
	return codec.DecodeCommand(c, desc, data)
}

// Arg returns the value of a decoded argument as T. A missing argument
// yields the zero value and ok=false; an argument of another type is an
// ErrInvalidResponse.
func Arg[T any](cmd *codec.EncodedCommand, name string) (T, bool, error) {
	var zero T
	v, ok := cmd.Get(name)
	if !ok {
		return zero, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: %s.%s is %T", ErrInvalidResponse, cmd.Name, name, v)
	}
	return t, true, nil
}

// Member returns a struct member as T, with the same rules as Arg.
func Member[T any](s types.Struct, name string) (T, bool, error) {
	var zero T
	v, ok := s.Get(name)
	if !ok {
		return zero, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: member %s is %T", ErrInvalidResponse, name, v)
	}
	return t, true, nil
}
