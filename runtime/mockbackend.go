package runtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/EffortlessMetrics/agent-backplane-sub000/registry"
	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

// MockBackend is a deterministic, in-process stand-in for a vendor
// backend: it performs no vendor I/O, just echoes the work order's task
// back as a single assistant message before sealing a Complete receipt.
// cmd/abpctl registers one so `abpctl run` has something to dispatch
// against without vendor credentials.
type MockBackend struct {
	BackendID      string
	BackendDialect registry.Dialect
	Capabilities   workorder.CapabilityManifest

	// now is overridable by tests; defaults to time.Now.
	now func() time.Time
}

// NewMockBackend returns a MockBackend registered under id, reporting
// manifest as its capability support and dialect as its native wire
// format for mapping-fidelity scoring.
func NewMockBackend(id string, dialect registry.Dialect, manifest workorder.CapabilityManifest) *MockBackend {
	return &MockBackend{BackendID: id, BackendDialect: dialect, Capabilities: manifest, now: time.Now}
}

// ID implements Backend.
func (b *MockBackend) ID() string { return b.BackendID }

// Dialect implements Backend.
func (b *MockBackend) Dialect() registry.Dialect { return b.BackendDialect }

// Manifest implements Backend.
func (b *MockBackend) Manifest() workorder.CapabilityManifest { return b.Capabilities }

func (b *MockBackend) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

// Start implements Backend. It emits run_started, an assistant_message
// echoing the work order's task, and run_completed, then seals a
// Complete receipt — unless ctx is canceled first, in which case it
// emits an error event and seals a Partial receipt instead.
func (b *MockBackend) Start(ctx context.Context, wo workorder.WorkOrder) *RunHandle {
	events := make(chan workorder.AgentEvent, 8)
	receipt := make(chan workorder.Receipt, 1)

	go func() {
		defer close(events)
		defer close(receipt)

		started := b.clock()
		var trace []workorder.AgentEvent

		emit := func(kind workorder.AgentEventKind) workorder.AgentEvent {
			ev := workorder.AgentEvent{Ts: b.clock(), Kind: kind}
			select {
			case events <- ev:
			case <-ctx.Done():
			}
			return ev
		}

		trace = append(trace, emit(workorder.RunStarted{Message: "run started"}))

		select {
		case <-ctx.Done():
			trace = append(trace, emit(workorder.Error{Message: ctx.Err().Error()}))
			receipt <- b.seal(wo, trace, started, workorder.OutcomePartial)
			return
		default:
		}

		trace = append(trace, emit(workorder.AssistantMessage{Text: "acknowledged: " + wo.Task}))
		trace = append(trace, emit(workorder.RunCompleted{Message: "run completed"}))
		receipt <- b.seal(wo, trace, started, workorder.OutcomeComplete)
	}()

	return &RunHandle{Events: events, Receipt: receipt}
}

// seal builds the (unhashed) Receipt the dispatcher will hash before
// returning it to the caller.
func (b *MockBackend) seal(wo workorder.WorkOrder, trace []workorder.AgentEvent, started time.Time, outcome workorder.Outcome) workorder.Receipt {
	finished := b.clock()
	return workorder.Receipt{
		Meta: workorder.RunMetadata{
			RunID:           uuid.New(),
			WorkOrderID:     wo.ID,
			ContractVersion: workorder.ContractVersion,
			StartedAt:       started,
			FinishedAt:      finished,
			DurationMs:      uint64(finished.Sub(started).Milliseconds()),
		},
		Backend:      workorder.BackendIdentity{ID: b.BackendID},
		Capabilities: b.Capabilities,
		Mode:         workorder.ExecutionModeMapped,
		Usage:        workorder.UsageNormalized{},
		Trace:        trace,
		Verification: workorder.VerificationReport{HarnessOK: true},
		Outcome:      outcome,
	}
}
