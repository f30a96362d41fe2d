package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"github.com/pion/logging"
	"gopkg.in/yaml.v3"

	"github.com/backkem/matterschema/pkg/datamodel"
	"github.com/backkem/matterschema/pkg/types"
)

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	// LoggerFactory is the factory for creating loggers.
	// If nil, logging.NewDefaultLoggerFactory() is used.
	LoggerFactory logging.LoggerFactory
}

// Builder collects cluster definitions and turns them into a Registry.
// Definitions may reference each other's types in any order; references are
// resolved only in Build, against the complete flat type table.
//
// Adding a definition whose name and ID match an earlier one replaces it,
// which is how definition overlays work. A Builder is not safe for
// concurrent use; the Registry it builds is.
type Builder struct {
	defs []*ClusterDef
	errs []error
	log  logging.LeveledLogger
}

// NewBuilder creates an empty builder.
func NewBuilder(config BuilderConfig) *Builder {
	factory := config.LoggerFactory
	if factory == nil {
		factory = logging.NewDefaultLoggerFactory()
	}
	return &Builder{log: factory.NewLogger("schema")}
}

// Add queues one cluster definition.
func (b *Builder) Add(def *ClusterDef) {
	for i, d := range b.defs {
		if d.ID == def.ID && d.Name == def.Name {
			b.log.Warnf("replacing definition of %s(0x%04X)", def.Name, def.ID)
			b.defs[i] = def
			return
		}
	}
	b.defs = append(b.defs, def)
}

// AddYAML decodes one or more YAML documents, each a ClusterDef. Unknown keys
// are rejected.
func (b *Builder) AddYAML(name string, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	n := 0
	for {
		var def ClusterDef
		err := dec.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", datamodel.ErrInvalidSchema, name, err)
		}
		b.Add(&def)
		n++
	}
	b.log.Debugf("loaded %d cluster definition(s) from %s", n, name)
	return nil
}

// AddFS loads every file of fsys matching pattern, in lexical order.
func (b *Builder) AddFS(fsys fs.FS, pattern string) error {
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		if err := b.AddYAML(name, data); err != nil {
			return err
		}
	}
	return nil
}

// Build validates all queued definitions and returns the registry. Every
// problem found is reported; the returned error joins them and each wraps
// datamodel.ErrInvalidSchema.
func (b *Builder) Build() (*Registry, error) {
	b.errs = nil
	reg := &Registry{
		byID:    make(map[datamodel.ClusterID]*ClusterSchema),
		byName:  make(map[string]*ClusterSchema),
		enums:   make(map[string]*EnumDescriptor),
		bitmaps: make(map[string]*BitmapDescriptor),
		structs: make(map[string]*StructDescriptor),
	}

	// Phase one: declare every cluster and named type.
	pending := make([]*clusterBuild, 0, len(b.defs))
	for _, def := range b.defs {
		cb := b.declare(reg, def)
		if cb != nil {
			pending = append(pending, cb)
		}
	}

	// Phase two: parse and resolve every type reference.
	for _, cb := range pending {
		b.resolve(reg, cb)
	}

	sort.Slice(reg.clusters, func(i, j int) bool { return reg.clusters[i].ID < reg.clusters[j].ID })
	for _, c := range reg.clusters {
		c.registry = reg
		c.index()
	}

	if len(b.errs) > 0 {
		b.log.Warnf("schema build failed with %d error(s)", len(b.errs))
		return nil, errors.Join(b.errs...)
	}
	b.log.Infof("built registry: %d clusters, %d enums, %d bitmaps, %d structs",
		len(reg.clusters), len(reg.enums), len(reg.bitmaps), len(reg.structs))
	return reg, nil
}

func (b *Builder) fail(cause error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	var err error
	switch {
	case cause == nil:
		err = fmt.Errorf("%w: %s", datamodel.ErrInvalidSchema, msg)
	case errors.Is(cause, datamodel.ErrInvalidSchema):
		err = fmt.Errorf("%s: %w", msg, cause)
	default:
		err = fmt.Errorf("%w: %s: %w", datamodel.ErrInvalidSchema, msg, cause)
	}
	b.errs = append(b.errs, err)
}

// clusterBuild carries a declared cluster between the two phases.
type clusterBuild struct {
	def     *ClusterDef
	cluster *ClusterSchema
}

func (b *Builder) declare(reg *Registry, def *ClusterDef) *clusterBuild {
	if !validIdent(def.Name) {
		b.fail(nil, "cluster 0x%04X: invalid name %q", def.ID, def.Name)
		return nil
	}
	id := datamodel.ClusterID(def.ID)
	if prev, ok := reg.byID[id]; ok {
		b.fail(datamodel.ErrDuplicateID, "cluster 0x%04X declared by %s and %s", def.ID, prev.Name, def.Name)
		return nil
	}
	if prev, ok := reg.byName[strings.ToLower(def.Name)]; ok {
		b.fail(datamodel.ErrDuplicateID, "cluster name %s used by 0x%04X and 0x%04X", def.Name, uint32(prev.ID), def.ID)
		return nil
	}

	c := &ClusterSchema{ID: id, Name: def.Name, Revision: def.Revision}
	if c.Revision == 0 {
		c.Revision = 1
	}
	reg.clusters = append(reg.clusters, c)
	reg.byID[id] = c
	reg.byName[strings.ToLower(def.Name)] = c

	if len(def.Features) > 0 {
		fm := &BitmapDescriptor{Name: "Feature", Cluster: def.Name, Base: types.KindUint32}
		for _, f := range def.Features {
			fm.Fields = append(fm.Fields, BitField{Name: f.Name, Bit: f.Bit})
		}
		c.Features = fm
		b.declareBitmap(reg, c, fm)
	}
	for _, e := range def.Enums {
		base, ok := baseKind(e.Base, "enum8")
		if !ok {
			b.fail(nil, "%s.%s: invalid enum base %q", def.Name, e.Name, e.Base)
			continue
		}
		desc := &EnumDescriptor{Name: e.Name, Cluster: def.Name, Base: base, Values: e.Values}
		b.checkEnum(desc)
		if b.declareName(reg, def.Name, e.Name) {
			c.Enums = append(c.Enums, desc)
			reg.enums[desc.QualifiedName()] = desc
		}
	}
	for _, bm := range def.Bitmaps {
		base, ok := baseKind(bm.Base, "bitmap8")
		if !ok {
			b.fail(nil, "%s.%s: invalid bitmap base %q", def.Name, bm.Name, bm.Base)
			continue
		}
		b.declareBitmap(reg, c, &BitmapDescriptor{Name: bm.Name, Cluster: def.Name, Base: base, Fields: bm.Fields})
	}
	for _, s := range def.Structs {
		if b.declareName(reg, def.Name, s.Name) {
			desc := &StructDescriptor{Name: s.Name, Cluster: def.Name, FabricScoped: s.FabricScoped}
			c.Structs = append(c.Structs, desc)
			reg.structs[desc.QualifiedName()] = desc
		}
	}
	return &clusterBuild{def: def, cluster: c}
}

func (b *Builder) declareBitmap(reg *Registry, c *ClusterSchema, desc *BitmapDescriptor) {
	b.checkBitmap(desc)
	if b.declareName(reg, c.Name, desc.Name) {
		c.Bitmaps = append(c.Bitmaps, desc)
		reg.bitmaps[desc.QualifiedName()] = desc
	}
}

// declareName reserves a qualified type name across all three tables.
func (b *Builder) declareName(reg *Registry, cluster, name string) bool {
	if !validIdent(name) {
		b.fail(nil, "%s: invalid type name %q", cluster, name)
		return false
	}
	q := types.Qualify(cluster, name)
	if reg.enums[q] != nil || reg.bitmaps[q] != nil || reg.structs[q] != nil {
		b.fail(datamodel.ErrDuplicateID, "type %s declared twice", q)
		return false
	}
	return true
}

func (b *Builder) checkEnum(e *EnumDescriptor) {
	seen := make(map[uint64]bool, len(e.Values))
	for _, v := range e.Values {
		if !e.Base.FitsUint(v.Value) {
			b.fail(nil, "%s: value %d exceeds %s", e.QualifiedName(), v.Value, e.Base)
		}
		if seen[v.Value] {
			b.fail(datamodel.ErrDuplicateID, "%s: value %d declared twice", e.QualifiedName(), v.Value)
		}
		seen[v.Value] = true
	}
}

func (b *Builder) checkBitmap(bm *BitmapDescriptor) {
	var used uint64
	for _, f := range bm.Fields {
		if int(f.Bit)+int(f.width()) > bm.Base.Bits() {
			b.fail(nil, "%s: field %s does not fit %s", bm.QualifiedName(), f.Name, bm.Base)
			continue
		}
		if used&f.Mask() != 0 {
			b.fail(nil, "%s: field %s overlaps another field", bm.QualifiedName(), f.Name)
		}
		used |= f.Mask()
	}
}

func (b *Builder) resolve(reg *Registry, cb *clusterBuild) {
	def, c := cb.def, cb.cluster

	for _, s := range def.Structs {
		if desc, ok := c.Struct(s.Name); ok && desc.Fields == nil {
			desc.Fields = b.fields(reg, c, s.Name, s.Fields)
		}
	}

	attrIDs := make(map[uint32]bool)
	for _, a := range def.Attributes {
		where := fmt.Sprintf("%s.%s", c.Name, a.Name)
		if attrIDs[a.ID] {
			b.fail(datamodel.ErrDuplicateID, "%s: attribute 0x%04X declared twice", where, a.ID)
			continue
		}
		attrIDs[a.ID] = true
		access, err := datamodel.ParseAccess(a.Access)
		if err != nil {
			b.fail(err, "%s", where)
			continue
		}
		if access.IsEmpty() {
			b.fail(datamodel.ErrInvalidAccess, "%s: empty access", where)
			continue
		}
		b.checkFeatures(c, where, a.Features)
		c.Attributes = append(c.Attributes, &AttributeDescriptor{
			ID:       datamodel.AttributeID(a.ID),
			Name:     a.Name,
			Type:     b.typeRef(reg, c, where, a.Type),
			Access:   access,
			Nullable: a.Nullable,
			Optional: a.Optional,
			Features: a.Features,
			Default:  a.Default,
		})
	}
	b.injectGlobals(c, attrIDs)

	type cmdKey struct {
		id  uint32
		dir Direction
	}
	cmdIDs := make(map[cmdKey]bool)
	for _, cd := range def.Commands {
		where := fmt.Sprintf("%s.%s", c.Name, cd.Name)
		dir, err := parseDirection(cd.Direction)
		if err != nil {
			b.fail(err, "%s", where)
			continue
		}
		key := cmdKey{cd.ID, dir}
		if cmdIDs[key] {
			b.fail(datamodel.ErrDuplicateID, "%s: %s 0x%02X declared twice", where, dir, cd.ID)
			continue
		}
		cmdIDs[key] = true
		priv := datamodel.PrivilegeOperate
		if cd.Access != "" {
			if priv, err = datamodel.ParsePrivilege(cd.Access); err != nil {
				b.fail(err, "%s", where)
				continue
			}
		}
		b.checkFeatures(c, where, cd.Features)
		c.Commands = append(c.Commands, &CommandDescriptor{
			ID:           datamodel.CommandID(cd.ID),
			Name:         cd.Name,
			Direction:    dir,
			Params:       b.fields(reg, c, cd.Name, cd.Params),
			Response:     cd.Response,
			Access:       priv,
			Timed:        cd.Timed,
			FabricScoped: cd.FabricScoped,
			Features:     cd.Features,
		})
	}
	for _, cmd := range c.Commands {
		if cmd.Response == "" {
			continue
		}
		if !hasCommand(c, cmd.Response, ServerToClient) {
			b.fail(datamodel.ErrCommandNotFound, "%s.%s: response %s", c.Name, cmd.Name, cmd.Response)
		}
	}

	evIDs := make(map[uint32]bool)
	for _, ed := range def.Events {
		where := fmt.Sprintf("%s.%s", c.Name, ed.Name)
		if evIDs[ed.ID] {
			b.fail(datamodel.ErrDuplicateID, "%s: event 0x%02X declared twice", where, ed.ID)
			continue
		}
		evIDs[ed.ID] = true
		prio, err := datamodel.ParseEventPriority(ed.Priority)
		if err != nil {
			b.fail(err, "%s", where)
			continue
		}
		priv := datamodel.PrivilegeView
		if ed.Access != "" {
			if priv, err = datamodel.ParsePrivilege(ed.Access); err != nil {
				b.fail(err, "%s", where)
				continue
			}
		}
		b.checkFeatures(c, where, ed.Features)
		c.Events = append(c.Events, &EventDescriptor{
			ID:              datamodel.EventID(ed.ID),
			Name:            ed.Name,
			Priority:        prio,
			Fields:          b.fields(reg, c, ed.Name, ed.Fields),
			Access:          priv,
			FabricSensitive: ed.FabricSensitive,
			Features:        ed.Features,
		})
	}
	b.log.Debugf("resolved %s: %d attributes, %d commands, %d events",
		c, len(c.Attributes), len(c.Commands), len(c.Events))
}

func (b *Builder) fields(reg *Registry, c *ClusterSchema, owner string, defs []FieldDef) []StructField {
	out := make([]StructField, 0, len(defs))
	seen := make(map[uint32]bool, len(defs))
	for _, fd := range defs {
		where := fmt.Sprintf("%s.%s.%s", c.Name, owner, fd.Name)
		if seen[fd.ID] {
			b.fail(datamodel.ErrDuplicateID, "%s: field %d declared twice", where, fd.ID)
			continue
		}
		seen[fd.ID] = true
		out = append(out, StructField{
			ID:              datamodel.FieldID(fd.ID),
			Name:            fd.Name,
			Type:            b.typeRef(reg, c, where, fd.Type),
			Nullable:        fd.Nullable,
			Optional:        fd.Optional,
			FabricSensitive: fd.FabricSensitive,
		})
	}
	return out
}

// typeRef parses a type string and classifies every named leaf against the
// flat table.
func (b *Builder) typeRef(reg *Registry, c *ClusterSchema, where, text string) types.TypeRef {
	ref, err := types.ParseTypeRef(text, c.Name)
	if err != nil {
		b.fail(nil, "%s: %v", where, err)
		return ref
	}
	ref, err = ref.Map(func(leaf types.TypeRef) (types.TypeRef, error) {
		return reg.classify(leaf)
	})
	if err != nil {
		b.fail(err, "%s", where)
	}
	return ref
}

func (b *Builder) checkFeatures(c *ClusterSchema, where string, features []string) {
	for _, f := range features {
		if _, ok := c.FeatureBit(f); !ok {
			b.fail(nil, "%s: unknown feature %q", where, f)
		}
	}
}

// injectGlobals appends the global attributes a definition does not declare.
func (b *Builder) injectGlobals(c *ClusterSchema, declared map[uint32]bool) {
	featureType := types.Primitive(types.KindUint32)
	if c.Features != nil {
		featureType = types.Bitmap(c.Features.QualifiedName())
	}
	globals := []struct {
		id  datamodel.AttributeID
		typ types.TypeRef
		def any
	}{
		{datamodel.GlobalAttrGeneratedCommandList, types.List(types.Primitive(types.KindUint32)), nil},
		{datamodel.GlobalAttrAcceptedCommandList, types.List(types.Primitive(types.KindUint32)), nil},
		{datamodel.GlobalAttrEventList, types.List(types.Primitive(types.KindUint32)), nil},
		{datamodel.GlobalAttrAttributeList, types.List(types.Primitive(types.KindUint32)), nil},
		{datamodel.GlobalAttrFeatureMap, featureType, uint64(0)},
		{datamodel.GlobalAttrClusterRevision, types.Primitive(types.KindUint16), uint64(c.Revision)},
	}
	for _, g := range globals {
		if declared[uint32(g.id)] {
			continue
		}
		c.Attributes = append(c.Attributes, &AttributeDescriptor{
			ID:      g.id,
			Name:    datamodel.GlobalAttributeName(g.id),
			Type:    g.typ,
			Access:  datamodel.Access{Flags: datamodel.AccessRead, ReadPrivilege: datamodel.PrivilegeView},
			Default: g.def,
		})
	}
}

func hasCommand(c *ClusterSchema, name string, dir Direction) bool {
	for _, cmd := range c.Commands {
		if cmd.Name == name && cmd.Direction == dir {
			return true
		}
	}
	return false
}

func parseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "request", "client":
		return ClientToServer, nil
	case "response", "server":
		return ServerToClient, nil
	}
	return 0, fmt.Errorf("%w: direction %q", datamodel.ErrInvalidSchema, s)
}

func baseKind(name, def string) (types.Kind, bool) {
	if name == "" {
		name = def
	}
	k, ok := types.ParseKind(name)
	return k, ok && k.Unsigned()
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
