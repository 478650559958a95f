package runtime

import (
	"errors"
	"fmt"

	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

// UnknownBackendError reports that Dispatch was asked to run a backend ID
// no Backend was ever registered under.
type UnknownBackendError struct {
	ID string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("runtime: unknown backend %q", e.ID)
}

// AsUnknownBackendError returns the first UnknownBackendError in err's
// chain, if any.
func AsUnknownBackendError(err error) (*UnknownBackendError, bool) {
	var e *UnknownBackendError
	return e, errors.As(err, &e)
}

// CapabilityCheckFailedError reports that a backend's manifest cannot
// meet one or more of a work order's required capabilities at their
// declared minimum support level, even via emulation.
type CapabilityCheckFailedError struct {
	BackendID string
	Missing   []workorder.Capability
}

func (e *CapabilityCheckFailedError) Error() string {
	return fmt.Sprintf("runtime: backend %q cannot meet required capabilities: %v", e.BackendID, e.Missing)
}

// AsCapabilityCheckFailedError returns the first CapabilityCheckFailedError
// in err's chain, if any.
func AsCapabilityCheckFailedError(err error) (*CapabilityCheckFailedError, bool) {
	var e *CapabilityCheckFailedError
	return e, errors.As(err, &e)
}
