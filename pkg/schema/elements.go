package schema

import (
	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/types"
)

// AttributeDescriptor describes one attribute of a cluster.
type AttributeDescriptor struct {
	ID       datamodel.AttributeID
	Name     string
	Type     types.TypeRef
	Access   datamodel.Access
	Nullable bool
	Optional bool

	// Features gates the attribute: it is supported when any of the named
	// features is set. Empty means always supported.
	Features []string

	Default any
}

// IsGlobal reports one of the attributes every cluster carries.
func (a *AttributeDescriptor) IsGlobal() bool { return datamodel.IsGlobalAttribute(a.ID) }

// Direction tells who sends a command.
type Direction uint8

const (
	// ClientToServer is a request invoked on the cluster server.
	ClientToServer Direction = iota
	// ServerToClient is a response or other generated command.
	ServerToClient
)

func (d Direction) String() string {
	if d == ServerToClient {
		return "response"
	}
	return "request"
}

// Param is a command field. Params are encoded in declaration order.
type Param = StructField

// CommandDescriptor describes one command of a cluster.
type CommandDescriptor struct {
	ID        datamodel.CommandID
	Name      string
	Direction Direction
	Params    []Param

	// Response names the command sent back, "" for a plain status.
	Response string

	Access       datamodel.Privilege
	Timed        bool
	FabricScoped bool
	Features     []string
}

// Param finds a parameter by name.
func (c *CommandDescriptor) Param(name string) (*Param, bool) {
	return fieldByName(c.Params, name)
}

// ParamByID finds a parameter by field ID.
func (c *CommandDescriptor) ParamByID(id datamodel.FieldID) (*Param, bool) {
	return fieldByID(c.Params, id)
}

// EventDescriptor describes one event of a cluster.
type EventDescriptor struct {
	ID              datamodel.EventID
	Name            string
	Priority        datamodel.EventPriority
	Fields          []StructField
	Access          datamodel.Privilege
	FabricSensitive bool
	Features        []string
}

// Field finds a payload field by name.
func (e *EventDescriptor) Field(name string) (*StructField, bool) {
	return fieldByName(e.Fields, name)
}
