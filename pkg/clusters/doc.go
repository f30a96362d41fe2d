// Package clusters provides typed command builders for Matter clusters on
// top of the schema registry and the generic codec.
//
// # Architecture
//
// Cluster subpackages export the numbers of their cluster (IDs, feature
// bits, enum values) and one function per command. Each function takes Go
// typed arguments and returns a checked codec.EncodedCommand:
//
//	cmd, err := windowcovering.GoToLiftPercentage(5000)
//	payload, err := codec.EncodeTLV(cmd)
//
// Mandatory parameters are plain values, optional parameters are pointers
// (nil leaves them out) and nullable parameters are types.Field values.
//
// # Subpackages
//
//   - clusters/actions: Actions Cluster (0x0025)
//   - clusters/channel: Channel Cluster (0x0504)
//   - clusters/descriptor: Descriptor Cluster (0x001D), filled from an instance.Node
//   - clusters/doorlock: Door Lock Cluster (0x0101)
//   - clusters/generalcommissioning: General Commissioning Cluster (0x0030)
//   - clusters/networkcommissioning: Network Commissioning Cluster (0x0031)
//   - clusters/onoff: On/Off Cluster (0x0006)
//   - clusters/windowcovering: Window Covering Cluster (0x0102)
//
// # Helpers
//
// This package provides the helpers the subpackages share:
//   - Command lookup and building against the default registry (encoding.go)
//   - Response decoding (encoding.go)
//   - Timed invocation checks (timed.go)
package clusters
