// Package runtime implements the dispatcher that orchestrates a single
// run: look up a backend, check its capabilities against a work order's
// requirements, spawn the backend's streaming task, and seal the receipt
// it produces with a canonical hash before handing it back to the caller.
package runtime

import (
	"context"
	"fmt"

	"github.com/EffortlessMetrics/agent-backplane-sub000/projection"
	"github.com/EffortlessMetrics/agent-backplane-sub000/registry"
	"github.com/EffortlessMetrics/agent-backplane-sub000/telemetry"
	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

// eventBufferSize bounds the relay channel the dispatcher hands to the
// caller. A backend that outruns the caller's drain rate suspends its
// producer goroutine rather than growing memory without limit.
const eventBufferSize = 64

// Backend is anything the dispatcher can route a WorkOrder to: a real
// vendor-backed execution engine, or (as cmd/abpctl uses) an in-process
// mock standing in for one.
type Backend interface {
	// ID is the identifier callers pass to Dispatch.
	ID() string
	// Dialect names the native wire format this backend's engine speaks,
	// consulted by the projection matrix for mapping-fidelity scoring.
	Dialect() registry.Dialect
	// Manifest reports this backend's capability support levels.
	Manifest() workorder.CapabilityManifest
	// Start spawns the run and returns immediately with a RunHandle
	// whose channels are fed by a goroutine. The goroutine MUST close
	// Events and send exactly one value on Receipt before returning,
	// even when ctx is canceled.
	Start(ctx context.Context, wo workorder.WorkOrder) *RunHandle
}

// RunHandle is the live handle for one dispatched run: an event stream
// and a one-shot channel that yields the run's receipt.
//
// Receipt is buffered with capacity 1 so the producing goroutine never
// blocks on a caller that only drains Events and reads Receipt once
// Events closes.
type RunHandle struct {
	Events  <-chan workorder.AgentEvent
	Receipt <-chan workorder.Receipt
}

// Dispatcher routes (backend_id, WorkOrder) pairs to registered backends
// and seals the receipts they produce.
type Dispatcher struct {
	backends map[string]Backend
	logger   telemetry.Logger
}

// NewDispatcher returns a Dispatcher with no backends registered. A nil
// logger is replaced with telemetry.Noop.
func NewDispatcher(logger telemetry.Logger) *Dispatcher {
	if logger == nil {
		logger = telemetry.Noop{}
	}
	return &Dispatcher{backends: make(map[string]Backend), logger: logger}
}

// RegisterBackend adds or replaces a backend under its own ID.
func (d *Dispatcher) RegisterBackend(b Backend) {
	d.backends[b.ID()] = b
}

// Backend returns the registered backend with the given ID, if any.
func (d *Dispatcher) Backend(id string) (Backend, bool) {
	b, ok := d.backends[id]
	return b, ok
}

// BackendManifests returns every registered backend's capability
// manifest keyed by ID, for callers (e.g. the CLI's "capabilities"
// command, or a projection.Matrix built from a live dispatcher) that
// need to inspect fitness without dispatching a run.
func (d *Dispatcher) BackendManifests() map[string]workorder.CapabilityManifest {
	out := make(map[string]workorder.CapabilityManifest, len(d.backends))
	for id, b := range d.backends {
		out[id] = b.Manifest()
	}
	return out
}

// ProjectionEntries returns every registered backend as a
// projection.BackendEntry, letting a caller build a projection.Matrix
// from whatever backends a Dispatcher already knows about instead of
// duplicating the registration. Priority is left at its zero value;
// callers that care about priority-based tie-breaking should build the
// matrix themselves from their own BackendEntry values instead.
func (d *Dispatcher) ProjectionEntries() []projection.BackendEntry {
	entries := make([]projection.BackendEntry, 0, len(d.backends))
	for id, b := range d.backends {
		entries = append(entries, projection.BackendEntry{
			ID:            id,
			Manifest:      b.Manifest(),
			EngineDialect: b.Dialect(),
		})
	}
	return entries
}

// Dispatch runs the five-step orchestration: validate the backend is
// registered, check its capability coverage of wo's requirements, spawn
// its streaming task, relay events to the caller, and seal the receipt
// with a canonical hash once the backend produces one.
//
// The returned RunHandle is live immediately; Dispatch does not block
// until the run completes. Cancel ctx to request early termination —
// Backend implementations are expected to observe ctx.Done() and wind
// down within a bounded time, still producing a receipt (Outcome Partial
// or Failed).
func (d *Dispatcher) Dispatch(ctx context.Context, backendID string, wo workorder.WorkOrder) (*RunHandle, error) {
	d.logger.Info(ctx, "dispatch: validate", "backend_id", backendID, "work_order_id", wo.ID.String())
	backend, ok := d.backends[backendID]
	if !ok {
		err := &UnknownBackendError{ID: backendID}
		d.logger.Error(ctx, "dispatch: unknown backend", "backend_id", backendID)
		return nil, err
	}

	d.logger.Info(ctx, "dispatch: project", "backend_id", backendID)
	if missing := uncoveredRequirements(backend.Manifest(), wo.Requirements.Required); len(missing) > 0 {
		err := &CapabilityCheckFailedError{BackendID: backendID, Missing: missing}
		d.logger.Error(ctx, "dispatch: capability check failed", "backend_id", backendID, "missing", fmt.Sprint(missing))
		return nil, err
	}

	d.logger.Info(ctx, "dispatch: dispatch", "backend_id", backendID, "work_order_id", wo.ID.String())
	inner := backend.Start(ctx, wo)

	events := make(chan workorder.AgentEvent, eventBufferSize)
	receipt := make(chan workorder.Receipt, 1)
	go d.relay(ctx, backendID, inner, events, receipt)

	return &RunHandle{Events: events, Receipt: receipt}, nil
}

// relay forwards inner's events verbatim, then seals whatever receipt
// inner produces with a canonical hash before handing it to the caller.
// It always closes both outer channels, even if inner's Receipt channel
// closes without a value (a backend bug), so a caller's range/receive
// never blocks forever.
func (d *Dispatcher) relay(ctx context.Context, backendID string, inner *RunHandle, events chan<- workorder.AgentEvent, receipt chan<- workorder.Receipt) {
	defer close(events)
	defer close(receipt)

	for ev := range inner.Events {
		events <- ev
	}

	raw, ok := <-inner.Receipt
	if !ok {
		d.logger.Error(ctx, "dispatch: backend closed without a receipt", "backend_id", backendID)
		return
	}
	sealed, err := raw.WithHash()
	if err != nil {
		d.logger.Error(ctx, "dispatch: failed to seal receipt", "backend_id", backendID, "error", err.Error())
		sealed = raw
	}
	d.logger.Info(ctx, "dispatch: receipt sealed", "backend_id", backendID, "run_id", sealed.Meta.RunID.String(), "outcome", string(sealed.Outcome))
	receipt <- sealed
}

// uncoveredRequirements returns every requirement manifest cannot satisfy
// at its declared minimum support level, in the order the requirements
// were declared. An empty result means every requirement is covered,
// possibly via emulation.
func uncoveredRequirements(manifest workorder.CapabilityManifest, reqs []workorder.CapabilityRequirement) []workorder.Capability {
	var missing []workorder.Capability
	for _, req := range reqs {
		level, ok := manifest[req.Capability]
		if !ok {
			level = workorder.SupportUnsupported
		}
		if !level.Satisfies(req.MinSupport) {
			missing = append(missing, req.Capability)
		}
	}
	return missing
}
