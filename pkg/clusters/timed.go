package clusters

import (
	"errors"
	"fmt"

	"github.com/backkem/matterschema/pkg/codec"
	"github.com/backkem/matterschema/pkg/schema"
)

// ErrTimedRequired is returned when a command requires timed invocation
// but is about to be sent without one.
var ErrTimedRequired = errors.New("command requires timed invocation")

// IsTimed reports whether the schema marks cmd as timed-invoke only.
func IsTimed(cmd *codec.EncodedCommand) bool {
	reg, err := schema.Default()
	if err != nil {
		return false
	}
	return IsTimedIn(reg, cmd)
}

// IsTimedIn is IsTimed against a specific registry.
func IsTimedIn(reg *schema.Registry, cmd *codec.EncodedCommand) bool {
	c, err := reg.Cluster(cmd.Cluster)
	if err != nil {
		return false
	}
	desc, err := c.Command(cmd.ID)
	if err != nil {
		return false
	}
	return desc.Timed
}

// RequireTimed checks an invocation before it is sent.
// Returns ErrTimedRequired if the command requires timed invocation but
// timed is false.
//
// Usage:
//
//	cmd, _ := doorlock.UnlockDoor(pin)
//	if err := clusters.RequireTimed(cmd, false); err != nil {
//	    // send a TimedRequest first
//	}
func RequireTimed(cmd *codec.EncodedCommand, timed bool) error {
	if IsTimed(cmd) && !timed {
		return fmt.Errorf("%w: %s.%s", ErrTimedRequired, cmd.ClusterName, cmd.Name)
	}
	return nil
}
