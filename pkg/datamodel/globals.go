package datamodel

// Global attribute IDs are reserved across all clusters.
const (
	// GlobalAttrClusterRevision (0xFFFD) indicates the cluster revision.
	GlobalAttrClusterRevision AttributeID = 0xFFFD

	// GlobalAttrFeatureMap (0xFFFC) indicates supported optional features.
	GlobalAttrFeatureMap AttributeID = 0xFFFC

	// GlobalAttrAttributeList (0xFFFB) lists all supported attribute IDs.
	GlobalAttrAttributeList AttributeID = 0xFFFB

	// GlobalAttrEventList (0xFFFA) lists all supported event IDs.
	// Deprecated in Matter 1.5
	GlobalAttrEventList AttributeID = 0xFFFA

	// GlobalAttrAcceptedCommandList (0xFFF9) lists accepted command IDs.
	GlobalAttrAcceptedCommandList AttributeID = 0xFFF9

	// GlobalAttrGeneratedCommandList (0xFFF8) lists generated command IDs.
	GlobalAttrGeneratedCommandList AttributeID = 0xFFF8
)

// GlobalFieldFabricIndex (0xFE) is the field ID of the fabric index in
// fabric-scoped structs.
const GlobalFieldFabricIndex FieldID = 0xFE

// IsGlobalAttribute returns true if the attribute ID is a global attribute.
func IsGlobalAttribute(id AttributeID) bool {
	return id >= GlobalAttrGeneratedCommandList && id <= GlobalAttrClusterRevision
}

// GlobalAttributeName returns the conventional camelCase name of a global
// attribute, or "" for non-global IDs.
func GlobalAttributeName(id AttributeID) string {
	switch id {
	case GlobalAttrClusterRevision:
		return "clusterRevision"
	case GlobalAttrFeatureMap:
		return "featureMap"
	case GlobalAttrAttributeList:
		return "attributeList"
	case GlobalAttrEventList:
		return "eventList"
	case GlobalAttrAcceptedCommandList:
		return "acceptedCommandList"
	case GlobalAttrGeneratedCommandList:
		return "generatedCommandList"
	default:
		return ""
	}
}

// Well-known cluster IDs.
const (
	ClusterOnOff                        ClusterID = 0x0006
	ClusterDescriptor                   ClusterID = 0x001D
	ClusterActions                      ClusterID = 0x0025
	ClusterPowerSource                  ClusterID = 0x002F
	ClusterGeneralCommissioning         ClusterID = 0x0030
	ClusterNetworkCommissioning         ClusterID = 0x0031
	ClusterDoorLock                     ClusterID = 0x0101
	ClusterWindowCovering               ClusterID = 0x0102
	ClusterThermostat                   ClusterID = 0x0201
	ClusterColorControl                 ClusterID = 0x0300
	ClusterThreadBorderRouterManagement ClusterID = 0x0452
	ClusterChannel                      ClusterID = 0x0504
	ClusterContentLauncher              ClusterID = 0x050A
)
