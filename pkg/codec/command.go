// Package codec turns typed or untyped command arguments into ordered,
// schema-checked EncodedCommands and moves them across the TLV and JSON
// boundaries.
//
// The codec is stateless. Every function takes the schema it needs and is
// safe for concurrent use.
package codec

import (
	"fmt"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/schema"
	"github.com/backkem/matterschema/pkg/types"
)

// Arg is one supplied command argument.
type Arg struct {
	Name    string
	FieldID datamodel.FieldID
	Value   any
}

// NewArg names an argument for BuildCommand. The field ID is filled in from
// the schema.
func NewArg(name string, v any) Arg {
	return Arg{Name: name, Value: v}
}

// EncodedCommand is a command ready for the interaction layer. Args holds
// only the arguments that were supplied, in parameter declaration order.
type EncodedCommand struct {
	Cluster     datamodel.ClusterID
	ClusterName string
	ID          datamodel.CommandID
	Name        string
	Args        []Arg
}

// Get returns the value of a supplied argument.
func (c *EncodedCommand) Get(name string) (any, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Has reports whether an argument was supplied.
func (c *EncodedCommand) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Keys returns the supplied argument names in order.
func (c *EncodedCommand) Keys() []string {
	keys := make([]string, len(c.Args))
	for i, a := range c.Args {
		keys[i] = a.Name
	}
	return keys
}

// Len returns the number of supplied arguments.
func (c *EncodedCommand) Len() int { return len(c.Args) }

func (c *EncodedCommand) String() string {
	return fmt.Sprintf("%s.%s%v", c.ClusterName, c.Name, c.Keys())
}

// MarshalJSON encodes the arguments as a JSON object, keys in order.
func (c *EncodedCommand) MarshalJSON() ([]byte, error) {
	return types.MarshalOrdered(len(c.Args), func(i int) (string, any) {
		return c.Args[i].Name, c.Args[i].Value
	})
}

// Build looks up a command by name and builds it from an argument map. Nil
// map entries are treated as not supplied.
func Build(cluster *schema.ClusterSchema, cmd string, args map[string]any) (*EncodedCommand, error) {
	desc, err := cluster.CommandByName(cmd)
	if err != nil {
		return nil, err
	}
	list := make([]Arg, 0, len(args))
	for name, v := range args {
		list = append(list, NewArg(name, v))
	}
	return BuildCommand(cluster, desc, list...)
}

// BuildCommand checks args against the command's parameters and returns them
// in declaration order. Arguments may be given in any order. Absent values
// are dropped, explicit nulls are kept for nullable parameters only.
func BuildCommand(cluster *schema.ClusterSchema, cmd *schema.CommandDescriptor, args ...Arg) (*EncodedCommand, error) {
	byName := make(map[string]any, len(args))
	for _, a := range args {
		if _, ok := cmd.Param(a.Name); !ok {
			return nil, fmt.Errorf("%w: %s has no parameter %q", datamodel.ErrTypeMismatch, cmd.Name, a.Name)
		}
		if _, dup := byName[a.Name]; dup {
			return nil, fmt.Errorf("%w: %s.%s supplied twice", datamodel.ErrTypeMismatch, cmd.Name, a.Name)
		}
		byName[a.Name] = a.Value
	}

	out := &EncodedCommand{
		Cluster:     cluster.ID,
		ClusterName: cluster.Name,
		ID:          cmd.ID,
		Name:        cmd.Name,
		Args:        make([]Arg, 0, len(byName)),
	}
	for _, p := range cmd.Params {
		v, ok := Presence(byName[p.Name])
		if !ok {
			continue
		}
		checked, err := Check(cluster.Registry(), p.Type, p.Nullable, cmd.Name+"."+p.Name, v)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, Arg{Name: p.Name, FieldID: p.ID, Value: checked})
	}
	return out, nil
}
