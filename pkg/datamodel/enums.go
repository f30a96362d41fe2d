// Package datamodel holds the identifiers, access rules, global elements and
// error taxonomy shared by every cluster definition.
//
// The Node → Endpoint → Cluster hierarchy itself lives in pkg/instance; the
// per-cluster descriptors live in pkg/schema.
package datamodel

import (
	"fmt"
	"strings"
)

// Privilege defines access privilege levels.
type Privilege int

const (
	// PrivilegeUnknown indicates an uninitialized or invalid privilege.
	PrivilegeUnknown Privilege = iota

	// PrivilegeView allows read access to attributes and events.
	PrivilegeView

	// PrivilegeProxyView allows proxy read access (for proxy devices).
	PrivilegeProxyView

	// PrivilegeOperate allows read/write/invoke access for normal operations.
	PrivilegeOperate

	// PrivilegeManage allows configuration and management operations.
	PrivilegeManage

	// PrivilegeAdminister allows full administrative control.
	PrivilegeAdminister
)

// String returns a human-readable name for the privilege level.
func (p Privilege) String() string {
	switch p {
	case PrivilegeView:
		return "View"
	case PrivilegeProxyView:
		return "ProxyView"
	case PrivilegeOperate:
		return "Operate"
	case PrivilegeManage:
		return "Manage"
	case PrivilegeAdminister:
		return "Administer"
	default:
		return "Unknown"
	}
}

// Code returns the one-letter code used in data model tables (V, P, O, M, A).
func (p Privilege) Code() string {
	switch p {
	case PrivilegeView:
		return "V"
	case PrivilegeProxyView:
		return "P"
	case PrivilegeOperate:
		return "O"
	case PrivilegeManage:
		return "M"
	case PrivilegeAdminister:
		return "A"
	default:
		return "?"
	}
}

// IsValid returns true if the privilege is a defined value.
func (p Privilege) IsValid() bool {
	return p >= PrivilegeView && p <= PrivilegeAdminister
}

// ParsePrivilege accepts either the one-letter code or the full name.
func ParsePrivilege(s string) (Privilege, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v", "view":
		return PrivilegeView, nil
	case "p", "proxyview":
		return PrivilegeProxyView, nil
	case "o", "operate":
		return PrivilegeOperate, nil
	case "m", "manage":
		return PrivilegeManage, nil
	case "a", "administer":
		return PrivilegeAdminister, nil
	}
	return PrivilegeUnknown, fmt.Errorf("%w: privilege %q", ErrInvalidAccess, s)
}

// EventPriority defines the priority level for events.
type EventPriority int

const (
	// EventPriorityDebug is for debugging information.
	EventPriorityDebug EventPriority = iota

	// EventPriorityInfo is for informational events.
	EventPriorityInfo

	// EventPriorityCritical is for critical events that must not be lost.
	EventPriorityCritical
)

// String returns a human-readable name for the event priority.
func (p EventPriority) String() string {
	switch p {
	case EventPriorityDebug:
		return "Debug"
	case EventPriorityInfo:
		return "Info"
	case EventPriorityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the priority is a defined value.
func (p EventPriority) IsValid() bool {
	return p >= EventPriorityDebug && p <= EventPriorityCritical
}

// ParseEventPriority parses "debug", "info" or "critical" (case-insensitive).
// An empty string yields Info.
func ParseEventPriority(s string) (EventPriority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return EventPriorityDebug, nil
	case "", "info":
		return EventPriorityInfo, nil
	case "critical":
		return EventPriorityCritical, nil
	}
	return EventPriorityInfo, fmt.Errorf("%w: event priority %q", ErrInvalidSchema, s)
}
