package dialect

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
)

// Kimi (Moonshot) speaks an OpenAI-compatible chat-completions dialect:
// system-as-message, tool_calls array, tool_call_id correlation. The only
// native-shape difference from OpenAI is that a Kimi tool call carries no
// "type" discriminator field. Thinking has no Kimi counterpart; lift/lower
// round-trips it through plain text, same as OpenAI.

type (
	// KimiMessage is one Kimi chat-completions turn.
	KimiMessage struct {
		Role       string       `json:"role"`
		Content    *string      `json:"content,omitempty"`
		ToolCalls  []KimiToolCall `json:"tool_calls,omitempty"`
		ToolCallID *string      `json:"tool_call_id,omitempty"`
	}

	// KimiToolCall is one entry of an assistant message's tool_calls array.
	KimiToolCall struct {
		ID       string               `json:"id"`
		Function KimiFunctionCall `json:"function"`
	}

	// KimiFunctionCall names the tool and carries its arguments as a
	// JSON-encoded string.
	KimiFunctionCall struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}
)

// KimiToIR lifts a Kimi message list into the IR.
func KimiToIR(msgs []KimiMessage) ir.Conversation {
	out := make([]ir.Message, 0, len(msgs))
	for _, m := range msgs {
		role := openAIRoleToIR(m.Role)
		if role == ir.RoleTool {
			text := ""
			if m.Content != nil {
				text = *m.Content
			}
			toolUseID := ""
			if m.ToolCallID != nil {
				toolUseID = *m.ToolCallID
			}
			out = append(out, ir.Message{
				Role: ir.RoleTool,
				Content: []ir.ContentBlock{
					ir.ToolResult{ToolUseID: toolUseID, Content: []ir.ContentBlock{ir.Text{Text: text}}},
				},
			})
			continue
		}

		var blocks []ir.ContentBlock
		if m.Content != nil && *m.Content != "" {
			blocks = append(blocks, ir.Text{Text: *m.Content})
		}
		for _, tc := range m.ToolCalls {
			blocks = append(blocks, ir.ToolUse{
				ID:    tc.ID,
				Name:  tc.Function.Name,
				Input: ir.ParseToolArguments(tc.Function.Arguments),
			})
		}
		out = append(out, ir.Message{Role: role, Content: blocks})
	}
	return ir.FromMessages(out)
}

// KimiFromIR lowers an IR conversation to Kimi chat-completions messages.
func KimiFromIR(conv ir.Conversation) ([]KimiMessage, error) {
	out := make([]KimiMessage, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		if m.Role == ir.RoleTool {
			for _, b := range m.Content {
				tr, ok := b.(ir.ToolResult)
				if !ok {
					continue
				}
				text := flattenText(tr.Content)
				toolUseID := tr.ToolUseID
				out = append(out, KimiMessage{Role: "tool", Content: &text, ToolCallID: &toolUseID})
			}
			continue
		}

		msg := KimiMessage{Role: string(m.Role)}
		var textParts []string
		var calls []KimiToolCall
		for _, b := range m.Content {
			switch block := b.(type) {
			case ir.Text:
				textParts = append(textParts, block.Text)
			case ir.Thinking:
				textParts = append(textParts, block.Text)
			case ir.Image:
				textParts = append(textParts, imagePlaceholder("embedded:"+block.MediaType))
			case ir.ToolUse:
				args, err := json.Marshal(block.Input)
				if err != nil {
					return nil, fmt.Errorf("dialect/kimi: encode arguments for tool call %q: %w", block.Name, err)
				}
				calls = append(calls, KimiToolCall{
					ID:       block.ID,
					Function: KimiFunctionCall{Name: block.Name, Arguments: string(args)},
				})
			}
		}
		if len(textParts) > 0 {
			text := strings.Join(textParts, "")
			msg.Content = &text
		}
		if len(calls) > 0 {
			msg.ToolCalls = calls
		}
		out = append(out, msg)
	}
	return out, nil
}
