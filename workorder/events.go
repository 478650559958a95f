package workorder

import (
	"encoding/json"
	"fmt"
	"time"
)

// AgentEventKind is the closed set of trace event shapes a backend may
// emit during a run, plus AgentEventUnknown for forward compatibility
// with event kinds introduced by a newer contract version.
type AgentEventKind interface {
	Kind() string
	isAgentEventKind()
}

type (
	// RunStarted marks the first event of a run.
	RunStarted struct {
		Message string `json:"message"`
	}

	// RunCompleted marks the last event of a successful run.
	RunCompleted struct {
		Message string `json:"message"`
	}

	// AssistantDelta streams an incremental fragment of assistant text.
	AssistantDelta struct {
		Text string `json:"text"`
	}

	// AssistantMessage carries a complete assistant message.
	AssistantMessage struct {
		Text string `json:"text"`
	}

	// ToolCall records a tool invocation requested by the agent.
	ToolCall struct {
		ToolName        string  `json:"tool_name"`
		ToolUseID       *string `json:"tool_use_id,omitempty"`
		ParentToolUseID *string `json:"parent_tool_use_id,omitempty"`
		Input           any     `json:"input"`
	}

	// ToolResult records the outcome of a tool invocation.
	ToolResult struct {
		ToolName  string  `json:"tool_name"`
		ToolUseID *string `json:"tool_use_id,omitempty"`
		Output    any     `json:"output"`
		IsError   bool    `json:"is_error"`
	}

	// FileChanged records a filesystem mutation made by the agent.
	FileChanged struct {
		Path    string `json:"path"`
		Summary string `json:"summary"`
	}

	// CommandExecuted records a shell command run by the agent.
	CommandExecuted struct {
		Command       string  `json:"command"`
		ExitCode      *int    `json:"exit_code,omitempty"`
		OutputPreview *string `json:"output_preview,omitempty"`
	}

	// Warning is a non-fatal, informational trace event.
	Warning struct {
		Message string `json:"message"`
	}

	// Error records a run-level error that does not terminate the wire
	// session (the session-terminating case is the Fatal envelope).
	Error struct {
		Message   string  `json:"message"`
		ErrorCode *string `json:"error_code,omitempty"`
	}

	// AgentEventUnknown preserves an event kind this build does not
	// recognize, keyed by its original "type" tag and raw JSON body, so
	// the wire layer can pass it through without rejecting the session.
	AgentEventUnknown struct {
		Tag string
		Raw json.RawMessage
	}
)

func (RunStarted) Kind() string        { return "run_started" }
func (RunCompleted) Kind() string       { return "run_completed" }
func (AssistantDelta) Kind() string     { return "assistant_delta" }
func (AssistantMessage) Kind() string   { return "assistant_message" }
func (ToolCall) Kind() string           { return "tool_call" }
func (ToolResult) Kind() string         { return "tool_result" }
func (FileChanged) Kind() string        { return "file_changed" }
func (CommandExecuted) Kind() string    { return "command_executed" }
func (Warning) Kind() string            { return "warning" }
func (Error) Kind() string              { return "error" }
func (u AgentEventUnknown) Kind() string { return u.Tag }

func (RunStarted) isAgentEventKind()        {}
func (RunCompleted) isAgentEventKind()      {}
func (AssistantDelta) isAgentEventKind()    {}
func (AssistantMessage) isAgentEventKind()  {}
func (ToolCall) isAgentEventKind()          {}
func (ToolResult) isAgentEventKind()        {}
func (FileChanged) isAgentEventKind()       {}
func (CommandExecuted) isAgentEventKind()   {}
func (Warning) isAgentEventKind()           {}
func (Error) isAgentEventKind()             {}
func (AgentEventUnknown) isAgentEventKind() {}

// AgentEvent is a single timestamped trace item in a run's event stream
// or a sealed Receipt's trace log.
type AgentEvent struct {
	Ts   time.Time
	Kind AgentEventKind
	Ext  map[string]any
}

// MarshalJSON encodes the event with its "type" discriminator and,
// for AgentEventUnknown, re-emits the original raw body verbatim.
func (e AgentEvent) MarshalJSON() ([]byte, error) {
	if u, ok := e.Kind.(AgentEventUnknown); ok {
		var body map[string]json.RawMessage
		if err := json.Unmarshal(u.Raw, &body); err != nil {
			return nil, fmt.Errorf("workorder: re-encode unknown event %q: %w", u.Tag, err)
		}
		body["ts"] = mustMarshal(e.Ts)
		body["type"] = mustMarshal(u.Tag)
		if e.Ext != nil {
			body["ext"] = mustMarshal(orderedAny(e.Ext))
		}
		return json.Marshal(body)
	}

	payload, err := json.Marshal(e.Kind)
	if err != nil {
		return nil, fmt.Errorf("workorder: encode event kind %q: %w", e.Kind.Kind(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("workorder: flatten event kind %q: %w", e.Kind.Kind(), err)
	}
	fields["ts"] = mustMarshal(e.Ts)
	fields["type"] = mustMarshal(e.Kind.Kind())
	if e.Ext != nil {
		fields["ext"] = mustMarshal(orderedAny(e.Ext))
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes the event, discriminating on "type". A type tag
// this build does not recognize decodes into AgentEventUnknown instead
// of failing, per the wire protocol's forward-compatibility contract.
func (e *AgentEvent) UnmarshalJSON(data []byte) error {
	var head struct {
		Ts   time.Time      `json:"ts"`
		Type string         `json:"type"`
		Ext  map[string]any `json:"ext"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("workorder: decode event envelope: %w", err)
	}
	e.Ts = head.Ts
	e.Ext = head.Ext

	switch head.Type {
	case "run_started":
		var v RunStarted
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	case "run_completed":
		var v RunCompleted
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	case "assistant_delta":
		var v AssistantDelta
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	case "assistant_message":
		var v AssistantMessage
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	case "tool_call":
		var v ToolCall
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	case "tool_result":
		var v ToolResult
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	case "file_changed":
		var v FileChanged
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	case "command_executed":
		var v CommandExecuted
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	case "warning":
		var v Warning
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	case "error":
		var v Error
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		e.Kind = v
	default:
		e.Kind = AgentEventUnknown{Tag: head.Type, Raw: append(json.RawMessage(nil), data...)}
	}
	return nil
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
