package schema

import (
	"github.com/backkem/matterschema/pkg/types"
)

// ClusterDef is the data-driven form of a cluster, as written in the YAML
// definition files. Element order in the lists is declaration order.
type ClusterDef struct {
	Name       string         `yaml:"name"`
	ID         uint32         `yaml:"id"`
	Revision   uint16         `yaml:"revision"`
	Features   []FeatureDef   `yaml:"features,omitempty"`
	Enums      []EnumDef      `yaml:"enums,omitempty"`
	Bitmaps    []BitmapDef    `yaml:"bitmaps,omitempty"`
	Structs    []StructDef    `yaml:"structs,omitempty"`
	Attributes []AttributeDef `yaml:"attributes,omitempty"`
	Commands   []CommandDef   `yaml:"commands,omitempty"`
	Events     []EventDef     `yaml:"events,omitempty"`
}

// FeatureDef is one feature map bit. Code is the short conformance code
// (e.g. "LF").
type FeatureDef struct {
	Name string `yaml:"name"`
	Code string `yaml:"code,omitempty"`
	Bit  uint8  `yaml:"bit"`
}

type EnumDef struct {
	Name   string      `yaml:"name"`
	Base   string      `yaml:"base,omitempty"`
	Values []EnumEntry `yaml:"values"`
}

type BitmapDef struct {
	Name   string     `yaml:"name"`
	Base   string     `yaml:"base,omitempty"`
	Fields []BitField `yaml:"fields"`
}

// FieldDef describes a struct member, command parameter or event field.
type FieldDef struct {
	ID              uint32 `yaml:"id"`
	Name            string `yaml:"name"`
	Type            string `yaml:"type"`
	Nullable        bool   `yaml:"nullable,omitempty"`
	Optional        bool   `yaml:"optional,omitempty"`
	FabricSensitive bool   `yaml:"fabricSensitive,omitempty"`
}

type StructDef struct {
	Name         string     `yaml:"name"`
	FabricScoped bool       `yaml:"fabricScoped,omitempty"`
	Fields       []FieldDef `yaml:"fields"`
}

type AttributeDef struct {
	ID       uint32   `yaml:"id"`
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Access   string   `yaml:"access"`
	Nullable bool     `yaml:"nullable,omitempty"`
	Optional bool     `yaml:"optional,omitempty"`
	Features []string `yaml:"features,omitempty"`
	Default  any      `yaml:"default,omitempty"`
}

// CommandDef describes a command. Direction is "request" (default) or
// "response"; Access is a privilege letter or name, Operate by default.
type CommandDef struct {
	ID           uint32     `yaml:"id"`
	Name         string     `yaml:"name"`
	Direction    string     `yaml:"direction,omitempty"`
	Response     string     `yaml:"response,omitempty"`
	Access       string     `yaml:"access,omitempty"`
	Timed        bool       `yaml:"timed,omitempty"`
	FabricScoped bool       `yaml:"fabricScoped,omitempty"`
	Features     []string   `yaml:"features,omitempty"`
	Params       []FieldDef `yaml:"params,omitempty"`
}

type EventDef struct {
	ID              uint32     `yaml:"id"`
	Name            string     `yaml:"name"`
	Priority        string     `yaml:"priority,omitempty"`
	Access          string     `yaml:"access,omitempty"`
	FabricSensitive bool       `yaml:"fabricSensitive,omitempty"`
	Features        []string   `yaml:"features,omitempty"`
	Fields          []FieldDef `yaml:"fields,omitempty"`
}

// ToDef renders a built schema back into its definition form. Injected
// global attributes are left out, so the result rebuilds to an equal schema.
func ToDef(c *ClusterSchema) *ClusterDef {
	def := &ClusterDef{Name: c.Name, ID: uint32(c.ID), Revision: c.Revision}
	if c.Features != nil {
		for _, f := range c.Features.Fields {
			def.Features = append(def.Features, FeatureDef{Name: f.Name, Bit: f.Bit})
		}
	}
	for _, e := range c.Enums {
		def.Enums = append(def.Enums, EnumDef{Name: e.Name, Base: e.Base.String(), Values: e.Values})
	}
	for _, b := range c.Bitmaps {
		if b == c.Features {
			continue
		}
		def.Bitmaps = append(def.Bitmaps, BitmapDef{Name: b.Name, Base: b.Base.String(), Fields: b.Fields})
	}
	for _, s := range c.Structs {
		def.Structs = append(def.Structs, StructDef{Name: s.Name, FabricScoped: s.FabricScoped, Fields: fieldDefs(c.Name, s.Fields)})
	}
	for _, a := range c.Attributes {
		if a.IsGlobal() {
			continue
		}
		def.Attributes = append(def.Attributes, AttributeDef{
			ID: uint32(a.ID), Name: a.Name, Type: typeText(c.Name, a.Type), Access: a.Access.String(),
			Nullable: a.Nullable, Optional: a.Optional, Features: a.Features, Default: a.Default,
		})
	}
	for _, cmd := range c.Commands {
		def.Commands = append(def.Commands, CommandDef{
			ID: uint32(cmd.ID), Name: cmd.Name, Direction: cmd.Direction.String(), Response: cmd.Response,
			Access: cmd.Access.Code(), Timed: cmd.Timed, FabricScoped: cmd.FabricScoped,
			Features: cmd.Features, Params: fieldDefs(c.Name, cmd.Params),
		})
	}
	for _, e := range c.Events {
		def.Events = append(def.Events, EventDef{
			ID: uint32(e.ID), Name: e.Name, Priority: e.Priority.String(), Access: e.Access.Code(),
			FabricSensitive: e.FabricSensitive, Features: e.Features, Fields: fieldDefs(c.Name, e.Fields),
		})
	}
	return def
}

func fieldDefs(scope string, fields []StructField) []FieldDef {
	out := make([]FieldDef, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldDef{
			ID: uint32(f.ID), Name: f.Name, Type: typeText(scope, f.Type),
			Nullable: f.Nullable, Optional: f.Optional, FabricSensitive: f.FabricSensitive,
		})
	}
	return out
}

// typeText renders a reference, dropping the qualifier of cluster-local types.
func typeText(scope string, t types.TypeRef) string {
	local, _ := t.Map(func(leaf types.TypeRef) (types.TypeRef, error) {
		if cluster, name := types.SplitQualified(leaf.Name); cluster == scope {
			leaf.Name = name
		}
		return leaf, nil
	})
	return local.String()
}
