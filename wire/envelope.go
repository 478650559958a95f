// Package wire implements the line-delimited JSON envelope protocol that
// carries a sidecar session between caller and backend: a handshake, a
// dispatched work order, a stream of agent events, and a terminal
// receipt or fatal error.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

// Envelope is the tagged union of every message that can appear on the
// wire. Exactly one of the Hello/Run/Event/Final/Fatal fields is set,
// matching the value of Kind. The discriminator field on the wire is
// "t", never "type" — "type" is reserved for the nested AgentEvent.
type Envelope struct {
	Kind  EnvelopeKind
	Hello *HelloEnvelope
	Run   *RunEnvelope
	Event *EventEnvelope
	Final *FinalEnvelope
	Fatal *FatalEnvelope
}

// EnvelopeKind is the "t" discriminator value.
type EnvelopeKind string

const (
	KindHello EnvelopeKind = "hello"
	KindRun   EnvelopeKind = "run"
	KindEvent EnvelopeKind = "event"
	KindFinal EnvelopeKind = "final"
	KindFatal EnvelopeKind = "fatal"
)

// HelloEnvelope is the session handshake, sent once before any Run.
type HelloEnvelope struct {
	ContractVersion string                       `json:"contract_version"`
	Backend         workorder.BackendIdentity    `json:"backend"`
	Capabilities    workorder.CapabilityManifest `json:"capabilities"`
	Mode            workorder.ExecutionMode      `json:"mode"`
}

// RunEnvelope dispatches a work order under a caller-assigned RefId.
type RunEnvelope struct {
	ID        string            `json:"id"`
	WorkOrder workorder.WorkOrder `json:"work_order"`
}

// EventEnvelope streams one AgentEvent belonging to the Run named by RefID.
type EventEnvelope struct {
	RefID string             `json:"ref_id"`
	Event workorder.AgentEvent `json:"event"`
}

// FinalEnvelope terminates a Run with its receipt.
type FinalEnvelope struct {
	RefID   string            `json:"ref_id"`
	Receipt workorder.Receipt `json:"receipt"`
}

// FatalEnvelope terminates a Run (or the whole session, if RefID is nil)
// with an unrecoverable error. RefID serializes as an explicit JSON null
// when absent, never an omitted key.
type FatalEnvelope struct {
	RefID *string `json:"ref_id"`
	Error string  `json:"error"`
}

func NewHello(h HelloEnvelope) Envelope { return Envelope{Kind: KindHello, Hello: &h} }
func NewRun(r RunEnvelope) Envelope     { return Envelope{Kind: KindRun, Run: &r} }
func NewEvent(e EventEnvelope) Envelope { return Envelope{Kind: KindEvent, Event: &e} }
func NewFinal(f FinalEnvelope) Envelope { return Envelope{Kind: KindFinal, Final: &f} }
func NewFatal(f FatalEnvelope) Envelope { return Envelope{Kind: KindFatal, Fatal: &f} }

func (e Envelope) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindHello:
		if e.Hello == nil {
			return nil, fmt.Errorf("wire: hello envelope missing payload")
		}
		return json.Marshal(struct {
			T EnvelopeKind `json:"t"`
			HelloEnvelope
		}{e.Kind, *e.Hello})
	case KindRun:
		if e.Run == nil {
			return nil, fmt.Errorf("wire: run envelope missing payload")
		}
		return json.Marshal(struct {
			T EnvelopeKind `json:"t"`
			RunEnvelope
		}{e.Kind, *e.Run})
	case KindEvent:
		if e.Event == nil {
			return nil, fmt.Errorf("wire: event envelope missing payload")
		}
		return json.Marshal(struct {
			T EnvelopeKind `json:"t"`
			EventEnvelope
		}{e.Kind, *e.Event})
	case KindFinal:
		if e.Final == nil {
			return nil, fmt.Errorf("wire: final envelope missing payload")
		}
		return json.Marshal(struct {
			T EnvelopeKind `json:"t"`
			FinalEnvelope
		}{e.Kind, *e.Final})
	case KindFatal:
		if e.Fatal == nil {
			return nil, fmt.Errorf("wire: fatal envelope missing payload")
		}
		return json.Marshal(struct {
			T EnvelopeKind `json:"t"`
			FatalEnvelope
		}{e.Kind, *e.Fatal})
	default:
		return nil, fmt.Errorf("wire: unknown envelope kind %q", e.Kind)
	}
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var head struct {
		T EnvelopeKind `json:"t"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.T {
	case KindHello:
		var h HelloEnvelope
		if err := json.Unmarshal(data, &h); err != nil {
			return err
		}
		*e = Envelope{Kind: KindHello, Hello: &h}
	case KindRun:
		var r RunEnvelope
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*e = Envelope{Kind: KindRun, Run: &r}
	case KindEvent:
		var ev EventEnvelope
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		*e = Envelope{Kind: KindEvent, Event: &ev}
	case KindFinal:
		var f FinalEnvelope
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*e = Envelope{Kind: KindFinal, Final: &f}
	case KindFatal:
		var f FatalEnvelope
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*e = Envelope{Kind: KindFatal, Fatal: &f}
	default:
		return fmt.Errorf("wire: unknown envelope discriminator %q", head.T)
	}
	return nil
}
