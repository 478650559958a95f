package dialect

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
)

// GitHub Copilot speaks an OpenAI-compatible chat-completions dialect
// (system-as-message, tool_calls array) plus one extension with no IR
// counterpart: a "references" array citing the files/symbols that
// informed a reply. The IR has no Tool role equivalent for Copilot
// either direction: Copilot never emits a native tool-reply turn, and
// on lower an IR Tool-role message coalesces into a plain user message,
// per the documented, stable role drop.

const copilotReferencesKey = "references"

// CopilotReference is a Copilot-specific citation attached to a reply —
// opaque beyond its JSON shape, since the protocol does not standardize
// its fields.
type CopilotReference map[string]any

// CopilotMessage is one Copilot chat-completions turn.
type CopilotMessage struct {
	Role       string             `json:"role"`
	Content    string             `json:"content"`
	Name       *string            `json:"name,omitempty"`
	References []CopilotReference `json:"references,omitempty"`
	ToolCalls  []ToolCall         `json:"tool_calls,omitempty"`
}

// CopilotToIR lifts a Copilot message list into the IR, carrying
// References in Metadata["references"] since the IR has no native slot
// for them.
func CopilotToIR(msgs []CopilotMessage) ir.Conversation {
	out := make([]ir.Message, 0, len(msgs))
	for _, m := range msgs {
		role := openAIRoleToIR(m.Role)
		var blocks []ir.ContentBlock
		if m.Content != "" {
			blocks = append(blocks, ir.Text{Text: m.Content})
		}
		for _, tc := range m.ToolCalls {
			blocks = append(blocks, ir.ToolUse{
				ID:    tc.ID,
				Name:  tc.Function.Name,
				Input: ir.ParseToolArguments(tc.Function.Arguments),
			})
		}
		var metadata map[string]any
		if len(m.References) > 0 {
			refs := make([]any, len(m.References))
			for i, r := range m.References {
				refs[i] = map[string]any(r)
			}
			metadata = map[string]any{copilotReferencesKey: refs}
		}
		out = append(out, ir.Message{Role: role, Content: blocks, Metadata: metadata})
	}
	return ir.FromMessages(out)
}

// CopilotFromIR lowers an IR conversation to Copilot messages. An IR Tool
// role has no Copilot counterpart and is coalesced into a user message —
// the drop is stable: the same ToolResult input always lowers to the
// same user-message text.
func CopilotFromIR(conv ir.Conversation) ([]CopilotMessage, error) {
	out := make([]CopilotMessage, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		if m.Role == ir.RoleTool {
			for _, b := range m.Content {
				tr, ok := b.(ir.ToolResult)
				if !ok {
					continue
				}
				out = append(out, CopilotMessage{Role: "user", Content: flattenText(tr.Content)})
			}
			continue
		}

		msg := CopilotMessage{Role: string(m.Role)}
		var textParts []string
		var calls []ToolCall
		for _, b := range m.Content {
			switch block := b.(type) {
			case ir.Text:
				textParts = append(textParts, block.Text)
			case ir.Thinking:
				// Flattened to plain text; Copilot has no thinking block.
				textParts = append(textParts, block.Text)
			case ir.Image:
				textParts = append(textParts, imagePlaceholder("embedded:"+block.MediaType))
			case ir.ToolUse:
				args, err := json.Marshal(block.Input)
				if err != nil {
					return nil, fmt.Errorf("dialect/copilot: encode arguments for tool call %q: %w", block.Name, err)
				}
				calls = append(calls, ToolCall{
					ID:   block.ID,
					Type: "function",
					Function: FunctionCall{
						Name:      block.Name,
						Arguments: string(args),
					},
				})
			}
		}
		msg.Content = strings.Join(textParts, "")
		msg.ToolCalls = calls

		if raw, ok := m.Metadata[copilotReferencesKey]; ok {
			if refList, ok := raw.([]any); ok {
				refs := make([]CopilotReference, 0, len(refList))
				for _, r := range refList {
					if rm, ok := r.(map[string]any); ok {
						refs = append(refs, CopilotReference(rm))
					}
				}
				msg.References = refs
			}
		}
		out = append(out, msg)
	}
	return out, nil
}
