package datamodel

import "errors"

// Structural errors are surfaced to callers. Unknown enum values and
// undeclared bitmap bits are never errors; they decode to tolerant values.
var (
	// ErrSchemaNotFound indicates no schema is registered for a cluster ID or name.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrTypeMismatch indicates a value does not match the declared type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrTypeNotFound indicates a type reference that does not resolve.
	ErrTypeNotFound = errors.New("type not found")

	// ErrInvalidSchema indicates a cluster definition failed validation.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrDuplicateID indicates two elements share an ID within one scope.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidAccess indicates malformed or empty access rights.
	ErrInvalidAccess = errors.New("invalid access")

	// ErrAttributeNotFound indicates the attribute is not declared by the cluster.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrCommandNotFound indicates the command is not declared by the cluster.
	ErrCommandNotFound = errors.New("command not found")

	// ErrEventNotFound indicates the event is not declared by the cluster.
	ErrEventNotFound = errors.New("event not found")

	// ErrNotPresent indicates a declared attribute has no value yet.
	ErrNotPresent = errors.New("attribute not present")

	// ErrUnsupported indicates an element gated off by the instance's FeatureMap.
	ErrUnsupported = errors.New("not supported by feature map")

	// ErrEndpointNotFound indicates the requested endpoint does not exist.
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrEndpointExists indicates an endpoint with the same ID already exists.
	ErrEndpointExists = errors.New("endpoint already exists")

	// ErrClusterNotFound indicates the endpoint hosts no instance of the cluster.
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrClusterExists indicates a cluster with the same ID already exists.
	ErrClusterExists = errors.New("cluster already exists")
)
