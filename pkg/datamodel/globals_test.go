package datamodel

import (
	"errors"
	"testing"
)

func TestIsGlobalAttribute(t *testing.T) {
	tests := []struct {
		id   AttributeID
		want bool
	}{
		{GlobalAttrClusterRevision, true},
		{GlobalAttrFeatureMap, true},
		{GlobalAttrAttributeList, true},
		{GlobalAttrEventList, true},
		{GlobalAttrAcceptedCommandList, true},
		{GlobalAttrGeneratedCommandList, true},
		{0, false},
		{100, false},
		{0xFFF7, false},
		{0xFFFE, false},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got := IsGlobalAttribute(tt.id); got != tt.want {
				t.Errorf("IsGlobalAttribute(0x%04X) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestGlobalAttributeIDs(t *testing.T) {
	if GlobalAttrClusterRevision != 65533 {
		t.Errorf("GlobalAttrClusterRevision = %d, want 65533", GlobalAttrClusterRevision)
	}
	if GlobalAttrFeatureMap != 65532 {
		t.Errorf("GlobalAttrFeatureMap = %d, want 65532", GlobalAttrFeatureMap)
	}
}

func TestGlobalAttributeName(t *testing.T) {
	tests := []struct {
		id   AttributeID
		want string
	}{
		{GlobalAttrClusterRevision, "clusterRevision"},
		{GlobalAttrFeatureMap, "featureMap"},
		{GlobalAttrAttributeList, "attributeList"},
		{GlobalAttrAcceptedCommandList, "acceptedCommandList"},
		{GlobalAttrGeneratedCommandList, "generatedCommandList"},
		{0, ""},
	}
	for _, tt := range tests {
		if got := GlobalAttributeName(tt.id); got != tt.want {
			t.Errorf("GlobalAttributeName(0x%04X) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestParsePrivilege(t *testing.T) {
	for _, p := range []Privilege{PrivilegeView, PrivilegeProxyView, PrivilegeOperate, PrivilegeManage, PrivilegeAdminister} {
		got, err := ParsePrivilege(p.Code())
		if err != nil || got != p {
			t.Errorf("ParsePrivilege(%q) = %v, %v, want %v", p.Code(), got, err, p)
		}
		got, err = ParsePrivilege(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePrivilege(%q) = %v, %v, want %v", p.String(), got, err, p)
		}
	}
	if _, err := ParsePrivilege("root"); !errors.Is(err, ErrInvalidAccess) {
		t.Errorf("ParsePrivilege(root) error = %v, want ErrInvalidAccess", err)
	}
}

func TestParseEventPriority(t *testing.T) {
	tests := []struct {
		in   string
		want EventPriority
	}{
		{"debug", EventPriorityDebug},
		{"Info", EventPriorityInfo},
		{"", EventPriorityInfo},
		{"CRITICAL", EventPriorityCritical},
	}
	for _, tt := range tests {
		got, err := ParseEventPriority(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseEventPriority(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseEventPriority("urgent"); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("ParseEventPriority(urgent) error = %v, want ErrInvalidSchema", err)
	}
}

func TestPaths(t *testing.T) {
	p := AttributePath{Endpoint: 1, Cluster: ClusterWindowCovering, Attribute: 0x0E}
	if got := p.String(); got != "1/0x0102/0x000E" {
		t.Errorf("AttributePath.String() = %q", got)
	}
	c := CommandPath{Endpoint: 2, Cluster: ClusterActions, Command: 0}
	if c.ClusterPath() != (ClusterPath{Endpoint: 2, Cluster: ClusterActions}) {
		t.Errorf("CommandPath.ClusterPath() = %v", c.ClusterPath())
	}
}
