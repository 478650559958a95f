package dialect

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
)

// OpenAI native types mirror the real chat-completions wire format: a
// flat message list with the system prompt as an ordinary message,
// arguments carried as a JSON-encoded string, and tool replies
// correlated by tool_call_id rather than a structured block.

type (
	// Message is one chat-completions turn.
	Message struct {
		Role       string     `json:"role"`
		Content    *string    `json:"content,omitempty"`
		ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
		ToolCallID *string    `json:"tool_call_id,omitempty"`
	}

	// ToolCall is one entry of an assistant message's tool_calls array.
	ToolCall struct {
		ID       string       `json:"id"`
		Type     string       `json:"type"`
		Function FunctionCall `json:"function"`
	}

	// FunctionCall names the tool and carries its arguments as a
	// JSON-encoded string, matching the real wire format.
	FunctionCall struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}
)

// OpenAIToIR lifts an OpenAI message list into the IR. System is an ordinary
// message role here, so no separate system parameter is needed — unlike
// Claude or Gemini, which carry it out of band.
func OpenAIToIR(msgs []Message) ir.Conversation {
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

// OpenAIFromIR lowers an IR conversation to OpenAI chat-completions messages.
// A Tool-role IR message may carry more than one ToolResult block (a
// resumed session replaying several results at once); each becomes its
// own OpenAI tool message, preserving order.
func OpenAIFromIR(conv ir.Conversation) ([]Message, error) {
	out := make([]Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		if m.Role == ir.RoleTool {
			for _, b := range m.Content {
				tr, ok := b.(ir.ToolResult)
				if !ok {
					continue
				}
				text := flattenText(tr.Content)
				toolUseID := tr.ToolUseID
				out = append(out, Message{Role: "tool", Content: &text, ToolCallID: &toolUseID})
			}
			continue
		}

		msg := Message{Role: string(m.Role)}
		var textParts []string
		var calls []ToolCall
		for _, b := range m.Content {
			switch block := b.(type) {
			case ir.Text:
				textParts = append(textParts, block.Text)
			case ir.Thinking:
				// OpenAI has no native thinking block; lift/lower loses
				// the distinction and folds it into plain text.
				textParts = append(textParts, block.Text)
			case ir.Image:
				textParts = append(textParts, imagePlaceholder("embedded:"+block.MediaType))
			case ir.ToolUse:
				args, err := json.Marshal(block.Input)
				if err != nil {
					return nil, fmt.Errorf("dialect/openai: encode arguments for tool call %q: %w", block.Name, err)
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

func openAIRoleToIR(role string) ir.Role {
	switch role {
	case "system":
		return ir.RoleSystem
	case "assistant":
		return ir.RoleAssistant
	case "tool":
		return ir.RoleTool
	default:
		return ir.RoleUser
	}
}
