// Package emulation supplies a capability's missing native support with a
// best-effort substitute: inject instructions into the conversation,
// rewrite the backend's raw output, or give up and warn. It mutates an
// ir.Conversation in place and reports what it did.
package emulation

import (
	"fmt"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

// Strategy is the tagged union of ways a missing capability can be
// compensated for. Exactly one field is meaningful per Kind.
type Strategy struct {
	Kind StrategyKind
	Text string // SystemPromptInjection
	PostProcessingKind string // PostProcessing
	Reason string // Unsupported
}

type StrategyKind string

const (
	StrategySystemPromptInjection StrategyKind = "system_prompt_injection"
	StrategyPostProcessing        StrategyKind = "post_processing"
	StrategyUnsupported           StrategyKind = "unsupported"
)

func SystemPromptInjection(text string) Strategy {
	return Strategy{Kind: StrategySystemPromptInjection, Text: text}
}

func PostProcessing(kind string) Strategy {
	return Strategy{Kind: StrategyPostProcessing, PostProcessingKind: kind}
}

func Unsupported(reason string) Strategy {
	return Strategy{Kind: StrategyUnsupported, Reason: reason}
}

// Catalog maps a missing capability to the strategy that compensates for
// it. A capability absent from the catalog is treated as Unsupported.
type Catalog map[workorder.Capability]Strategy

// DefaultCatalog is the built-in strategy catalog: capabilities every
// backend can plausibly fake via prompt injection or output rewriting,
// and the ones that genuinely cannot be emulated.
func DefaultCatalog() Catalog {
	return Catalog{
		workorder.CapabilityToolAskUser: SystemPromptInjection(
			"When you need information only the user can provide, ask for it " +
				"directly in your reply instead of invoking a tool."),
		workorder.CapabilityStructuredOutputJSONSchema: PostProcessing("extract_json_from_fence"),
		workorder.CapabilityHooksPreToolUse: SystemPromptInjection(
			"Before using any tool, briefly state your intent in your reply."),
		workorder.CapabilityHooksPostToolUse: SystemPromptInjection(
			"After using a tool, briefly summarize its result in your reply."),
		workorder.CapabilityStreaming:      Unsupported("backend has no incremental output channel"),
		workorder.CapabilitySessionResume:  Unsupported("backend holds no durable session state"),
		workorder.CapabilitySessionFork:    Unsupported("backend cannot branch a running session"),
		workorder.CapabilityCheckpointing:  Unsupported("backend cannot snapshot mid-run state"),
		workorder.CapabilityMcpClient:      Unsupported("backend has no MCP client runtime"),
		workorder.CapabilityMcpServer:      Unsupported("backend cannot host an MCP server"),
	}
}

// AppliedEmulation records one strategy the engine actually applied.
type AppliedEmulation struct {
	Capability workorder.Capability
	Strategy   Strategy
}

// Warning records a capability the catalog could not compensate for.
type Warning struct {
	Capability workorder.Capability
	Reason     string
}

// Report is the outcome of one Apply call.
type Report struct {
	Applied  []AppliedEmulation
	Warnings []Warning
}

// Engine applies a Catalog's strategies to a conversation.
type Engine struct {
	catalog Catalog
}

// NewEngine wraps a Catalog for reuse across runs.
func NewEngine(catalog Catalog) *Engine { return &Engine{catalog: catalog} }

// Apply compensates for every capability in missingCaps, mutating conv in
// place for strategies that touch the conversation (system prompt
// injection) and leaving output-rewriting strategies for the caller to
// invoke post-hoc via the returned Report.
func (e *Engine) Apply(missingCaps []workorder.Capability, conv *ir.Conversation) Report {
	var report Report
	for _, cap := range missingCaps {
		strategy, ok := e.catalog[cap]
		if !ok {
			report.Warnings = append(report.Warnings, Warning{
				Capability: cap,
				Reason:     fmt.Sprintf("no emulation strategy registered for %q", cap),
			})
			continue
		}
		switch strategy.Kind {
		case StrategySystemPromptInjection:
			injectSystemPrompt(conv, strategy.Text)
			report.Applied = append(report.Applied, AppliedEmulation{Capability: cap, Strategy: strategy})
		case StrategyPostProcessing:
			report.Applied = append(report.Applied, AppliedEmulation{Capability: cap, Strategy: strategy})
		case StrategyUnsupported:
			report.Warnings = append(report.Warnings, Warning{Capability: cap, Reason: strategy.Reason})
		}
	}
	return report
}

func injectSystemPrompt(conv *ir.Conversation, text string) {
	if conv == nil {
		return
	}
	for i := range conv.Messages {
		if conv.Messages[i].Role == ir.RoleSystem {
			for j := range conv.Messages[i].Content {
				if tb, ok := conv.Messages[i].Content[j].(ir.Text); ok {
					conv.Messages[i].Content[j] = ir.Text{Text: tb.Text + "\n\n" + text}
					return
				}
			}
			conv.Messages[i].Content = append(conv.Messages[i].Content, ir.Text{Text: text})
			return
		}
	}
	conv.Messages = append([]ir.Message{{
		Role:    ir.RoleSystem,
		Content: []ir.ContentBlock{ir.Text{Text: text}},
	}}, conv.Messages...)
}

// FidelityLabel classifies how a capability ended up being served.
type FidelityLabel struct {
	Kind     FidelityLabelKind
	Strategy *Strategy // set only when Kind == FidelityLabelEmulated
}

type FidelityLabelKind string

const (
	FidelityLabelNative   FidelityLabelKind = "native"
	FidelityLabelEmulated FidelityLabelKind = "emulated"
)

// LabelFor computes the FidelityLabel for a capability given whether the
// backend supports it natively and, if not, the report of what the
// engine applied. Warnings never produce a label (they are purely
// informational, per the emulation report contract).
func LabelFor(cap workorder.Capability, native bool, report Report) (FidelityLabel, bool) {
	if native {
		return FidelityLabel{Kind: FidelityLabelNative}, true
	}
	for _, a := range report.Applied {
		if a.Capability == cap {
			s := a.Strategy
			return FidelityLabel{Kind: FidelityLabelEmulated, Strategy: &s}, true
		}
	}
	return FidelityLabel{}, false
}
