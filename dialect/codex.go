package dialect

import (
	"encoding/json"
	"fmt"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
)

// Codex (the Responses-API agent harness) uses two distinct item
// vocabularies: InputItem for what's fed into a turn (system/user/
// assistant history) and ResponseItem for what a run produces (messages,
// tool calls, tool outputs, reasoning summaries). CodexFromIR only ever
// produces ResponseItems — System and User are inputs, not outputs, so
// lowering an IR conversation drops them; the drop is stable.

// CodexInputItem is one turn fed into a Codex run.
type CodexInputItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CodexResponseItem is the closed set of item shapes a Codex run emits.
type CodexResponseItem interface {
	Kind() string
	isCodexResponseItem()
}

type (
	// CodexMessageItem is a plain assistant message.
	CodexMessageItem struct {
		Role    string
		Content string
	}

	// CodexFunctionCallItem is a tool call.
	CodexFunctionCallItem struct {
		ID        string
		Name      string
		Arguments string
	}

	// CodexFunctionCallOutputItem replies to a CodexFunctionCallItem.
	CodexFunctionCallOutputItem struct {
		CallID string
		Output string
	}

	// CodexReasoningItem carries chain-of-thought as a list of summary
	// fragments rather than a single text field.
	CodexReasoningItem struct {
		Summary []CodexReasoningSummary
	}

	// CodexReasoningSummary is one fragment of a CodexReasoningItem.
	CodexReasoningSummary struct {
		Text string
	}
)

func (CodexMessageItem) Kind() string             { return "message" }
func (CodexFunctionCallItem) Kind() string         { return "function_call" }
func (CodexFunctionCallOutputItem) Kind() string   { return "function_call_output" }
func (CodexReasoningItem) Kind() string            { return "reasoning" }

func (CodexMessageItem) isCodexResponseItem()           {}
func (CodexFunctionCallItem) isCodexResponseItem()       {}
func (CodexFunctionCallOutputItem) isCodexResponseItem() {}
func (CodexReasoningItem) isCodexResponseItem()          {}

func (i CodexMessageItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Role    string `json:"role"`
		Content string `json:"content"`
	}{i.Kind(), i.Role, i.Content})
}

func (i CodexFunctionCallItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		ID        string `json:"id"`
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}{i.Kind(), i.ID, i.Name, i.Arguments})
}

func (i CodexFunctionCallOutputItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		CallID string `json:"call_id"`
		Output string `json:"output"`
	}{i.Kind(), i.CallID, i.Output})
}

func (i CodexReasoningItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string                  `json:"type"`
		Summary []CodexReasoningSummary `json:"summary"`
	}{i.Kind(), i.Summary})
}

// CodexToIR lifts a Codex input-item list into the IR. Each item's role
// maps to the IR role directly; Codex's input side carries no tool-call
// or reasoning shape, only plain turns.
func CodexToIR(items []CodexInputItem) ir.Conversation {
	out := make([]ir.Message, 0, len(items))
	for _, it := range items {
		role := ir.RoleUser
		switch it.Role {
		case "system":
			role = ir.RoleSystem
		case "assistant":
			role = ir.RoleAssistant
		}
		out = append(out, ir.NewTextMessage(role, it.Content))
	}
	return ir.FromMessages(out)
}

// CodexFromIR lowers an IR conversation to Codex response items. System
// and User messages are dropped: they are this run's inputs, not its
// output. Only Assistant and Tool messages contribute items.
func CodexFromIR(conv ir.Conversation) ([]CodexResponseItem, error) {
	var out []CodexResponseItem
	for _, m := range conv.Messages {
		switch m.Role {
		case ir.RoleAssistant:
			for _, b := range m.Content {
				switch block := b.(type) {
				case ir.Text:
					out = append(out, CodexMessageItem{Role: "assistant", Content: block.Text})
				case ir.Thinking:
					out = append(out, CodexReasoningItem{Summary: []CodexReasoningSummary{{Text: block.Text}}})
				case ir.ToolUse:
					args, err := json.Marshal(block.Input)
					if err != nil {
						return nil, fmt.Errorf("dialect/codex: encode arguments for tool call %q: %w", block.Name, err)
					}
					out = append(out, CodexFunctionCallItem{ID: block.ID, Name: block.Name, Arguments: string(args)})
				case ir.Image:
					out = append(out, CodexMessageItem{Role: "assistant", Content: imagePlaceholder("embedded:" + block.MediaType)})
				}
			}
		case ir.RoleTool:
			for _, b := range m.Content {
				tr, ok := b.(ir.ToolResult)
				if !ok {
					continue
				}
				out = append(out, CodexFunctionCallOutputItem{CallID: tr.ToolUseID, Output: flattenText(tr.Content)})
			}
		}
	}
	return out, nil
}

// CodexResponseItemsToIR lifts a Codex response-item list back into the
// IR, the companion direction used when a run's own output is replayed
// as history (e.g. validating a round trip).
func CodexResponseItemsToIR(items []CodexResponseItem) ir.Conversation {
	var out []ir.Message
	for _, item := range items {
		switch it := item.(type) {
		case CodexMessageItem:
			role := ir.RoleAssistant
			if it.Role != "assistant" {
				role = ir.RoleUser
			}
			out = append(out, ir.NewTextMessage(role, it.Content))
		case CodexReasoningItem:
			var text string
			for _, s := range it.Summary {
				text += s.Text
			}
			out = append(out, ir.Message{Role: ir.RoleAssistant, Content: []ir.ContentBlock{ir.Thinking{Text: text}}})
		case CodexFunctionCallItem:
			out = append(out, ir.Message{
				Role:    ir.RoleAssistant,
				Content: []ir.ContentBlock{ir.ToolUse{ID: it.ID, Name: it.Name, Input: ir.ParseToolArguments(it.Arguments)}},
			})
		case CodexFunctionCallOutputItem:
			out = append(out, ir.Message{
				Role:    ir.RoleTool,
				Content: []ir.ContentBlock{ir.ToolResult{ToolUseID: it.CallID, Content: []ir.ContentBlock{ir.Text{Text: it.Output}}}},
			})
		}
	}
	return ir.FromMessages(out)
}
