package dialect

import (
	"encoding/json"
	"fmt"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
)

// Claude carries its system prompt as a top-level request parameter, not
// a message, and represents tool calls/results and chain-of-thought as
// structured content blocks rather than flat fields. A Message's Content
// is plain text when the turn is a single Text block, or a JSON-encoded
// array of ContentBlock otherwise (including several Text blocks) — matching the real
// Anthropic Messages API wire shape.

// ClaudeMessage is one Claude conversation turn. Role is "user" or
// "assistant"; system goes through ExtractSystemPrompt/ClaudeToIR's system
// parameter instead.
type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClaudeBlockKind is the "type" discriminator of a Claude content block.
type ClaudeBlockKind string

const (
	ClaudeBlockText       ClaudeBlockKind = "text"
	ClaudeBlockThinking   ClaudeBlockKind = "thinking"
	ClaudeBlockToolUse    ClaudeBlockKind = "tool_use"
	ClaudeBlockToolResult ClaudeBlockKind = "tool_result"
	ClaudeBlockImage      ClaudeBlockKind = "image"
)

// ClaudeContentBlock is the closed set of structured parts a Claude
// message's content array may hold.
type ClaudeContentBlock interface {
	Kind() ClaudeBlockKind
	isClaudeBlock()
}

type (
	// ClaudeTextBlock is plain text.
	ClaudeTextBlock struct{ Text string }

	// ClaudeThinkingBlock is chain-of-thought reasoning. Signature is a
	// cryptographic provenance field that does NOT survive an IR
	// roundtrip — the IR has no slot for it.
	ClaudeThinkingBlock struct {
		Thinking  string
		Signature *string
	}

	// ClaudeToolUseBlock is an assistant tool call.
	ClaudeToolUseBlock struct {
		ID    string
		Name  string
		Input any
	}

	// ClaudeToolResultBlock replies to a ClaudeToolUseBlock.
	ClaudeToolResultBlock struct {
		ToolUseID string
		Content   *string
		IsError   *bool
	}

	// ClaudeImageBlock carries an embedded (base64) or URL-referenced
	// image. Only the base64 form survives a lift into the IR; a URL
	// source degrades into a Text block with a placeholder, per the
	// spec's lift-time degradation rule.
	ClaudeImageBlock struct {
		Source ClaudeImageSource
	}

	// ClaudeImageSource is either {"type":"base64", media_type, data} or
	// {"type":"url", url}.
	ClaudeImageSource struct {
		Type      string
		MediaType string
		Data      string
		URL       string
	}
)

func (ClaudeTextBlock) Kind() ClaudeBlockKind       { return ClaudeBlockText }
func (ClaudeThinkingBlock) Kind() ClaudeBlockKind   { return ClaudeBlockThinking }
func (ClaudeToolUseBlock) Kind() ClaudeBlockKind    { return ClaudeBlockToolUse }
func (ClaudeToolResultBlock) Kind() ClaudeBlockKind { return ClaudeBlockToolResult }
func (ClaudeImageBlock) Kind() ClaudeBlockKind      { return ClaudeBlockImage }

func (ClaudeTextBlock) isClaudeBlock()       {}
func (ClaudeThinkingBlock) isClaudeBlock()   {}
func (ClaudeToolUseBlock) isClaudeBlock()    {}
func (ClaudeToolResultBlock) isClaudeBlock() {}
func (ClaudeImageBlock) isClaudeBlock()      {}

func (b ClaudeTextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{string(ClaudeBlockText), b.Text})
}

func (b ClaudeThinkingBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string  `json:"type"`
		Thinking  string  `json:"thinking"`
		Signature *string `json:"signature,omitempty"`
	}{string(ClaudeBlockThinking), b.Thinking, b.Signature})
}

func (b ClaudeToolUseBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		ID    string `json:"id"`
		Name  string `json:"name"`
		Input any    `json:"input"`
	}{string(ClaudeBlockToolUse), b.ID, b.Name, b.Input})
}

func (b ClaudeToolResultBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string  `json:"type"`
		ToolUseID string  `json:"tool_use_id"`
		Content   *string `json:"content,omitempty"`
		IsError   *bool   `json:"is_error,omitempty"`
	}{string(ClaudeBlockToolResult), b.ToolUseID, b.Content, b.IsError})
}

func (b ClaudeImageBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string            `json:"type"`
		Source ClaudeImageSource `json:"source"`
	}{string(ClaudeBlockImage), b.Source})
}

func (s ClaudeImageSource) MarshalJSON() ([]byte, error) {
	switch s.Type {
	case "url":
		return json.Marshal(struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		}{"url", s.URL})
	default:
		return json.Marshal(struct {
			Type      string `json:"type"`
			MediaType string `json:"media_type"`
			Data      string `json:"data"`
		}{"base64", s.MediaType, s.Data})
	}
}

// decodeClaudeBlock discriminates one raw content block by its "type" tag.
func decodeClaudeBlock(raw json.RawMessage) (ClaudeContentBlock, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("dialect/claude: decode content block discriminator: %w", err)
	}
	switch ClaudeBlockKind(head.Type) {
	case ClaudeBlockText:
		var v struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ClaudeTextBlock{Text: v.Text}, nil
	case ClaudeBlockThinking:
		var v struct {
			Thinking  string  `json:"thinking"`
			Signature *string `json:"signature,omitempty"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ClaudeThinkingBlock{Thinking: v.Thinking, Signature: v.Signature}, nil
	case ClaudeBlockToolUse:
		var v struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Input any    `json:"input"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ClaudeToolUseBlock{ID: v.ID, Name: v.Name, Input: v.Input}, nil
	case ClaudeBlockToolResult:
		var v struct {
			ToolUseID string  `json:"tool_use_id"`
			Content   *string `json:"content,omitempty"`
			IsError   *bool   `json:"is_error,omitempty"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ClaudeToolResultBlock{ToolUseID: v.ToolUseID, Content: v.Content, IsError: v.IsError}, nil
	case ClaudeBlockImage:
		var v struct {
			Source struct {
				Type      string `json:"type"`
				MediaType string `json:"media_type"`
				Data      string `json:"data"`
				URL       string `json:"url"`
			} `json:"source"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ClaudeImageBlock{Source: ClaudeImageSource{
			Type: v.Source.Type, MediaType: v.Source.MediaType, Data: v.Source.Data, URL: v.Source.URL,
		}}, nil
	default:
		return nil, fmt.Errorf("dialect/claude: unknown content block type %q", head.Type)
	}
}

// claudeDecodeContent parses a Message.Content string as either a JSON
// array of blocks or, failing that, plain text.
func claudeDecodeContent(raw string) ([]ClaudeContentBlock, error) {
	var rawBlocks []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &rawBlocks); err != nil {
		return []ClaudeContentBlock{ClaudeTextBlock{Text: raw}}, nil
	}
	blocks := make([]ClaudeContentBlock, 0, len(rawBlocks))
	for i, r := range rawBlocks {
		b, err := decodeClaudeBlock(r)
		if err != nil {
			return nil, fmt.Errorf("dialect/claude: content[%d]: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// claudeEncodeContent renders blocks back into a Message.Content string:
// a bare string when the message is exactly one Text block (matching how
// a real Claude client sends plain turns), otherwise a JSON-encoded array.
func claudeEncodeContent(blocks []ClaudeContentBlock) (string, error) {
	if len(blocks) == 1 {
		if t, ok := blocks[0].(ClaudeTextBlock); ok {
			return t.Text, nil
		}
	}
	raw, err := json.Marshal(blocks)
	if err != nil {
		return "", fmt.Errorf("dialect/claude: encode content blocks: %w", err)
	}
	return string(raw), nil
}

// ClaudeToIR lifts a Claude message list plus its out-of-band system prompt
// into the IR. A user-role message whose content contains any
// ToolResult block lifts to an IR Tool-role message, since Claude models
// a tool reply as a block inside a user turn rather than a distinct role.
func ClaudeToIR(msgs []ClaudeMessage, system *string) (ir.Conversation, error) {
	out := make([]ir.Message, 0, len(msgs)+1)
	if system != nil && *system != "" {
		out = append(out, ir.NewTextMessage(ir.RoleSystem, *system))
	}

	for _, m := range msgs {
		blocks, err := claudeDecodeContent(m.Content)
		if err != nil {
			return ir.Conversation{}, err
		}

		hasToolResult := false
		for _, b := range blocks {
			if b.Kind() == ClaudeBlockToolResult {
				hasToolResult = true
				break
			}
		}

		irBlocks := make([]ir.ContentBlock, 0, len(blocks))
		for _, b := range blocks {
			switch block := b.(type) {
			case ClaudeTextBlock:
				irBlocks = append(irBlocks, ir.Text{Text: block.Text})
			case ClaudeThinkingBlock:
				irBlocks = append(irBlocks, ir.Thinking{Text: block.Thinking})
			case ClaudeToolUseBlock:
				irBlocks = append(irBlocks, ir.ToolUse{ID: block.ID, Name: block.Name, Input: block.Input})
			case ClaudeToolResultBlock:
				text := ""
				if block.Content != nil {
					text = *block.Content
				}
				isError := block.IsError != nil && *block.IsError
				irBlocks = append(irBlocks, ir.ToolResult{
					ToolUseID: block.ToolUseID,
					Content:   []ir.ContentBlock{ir.Text{Text: text}},
					IsError:   isError,
				})
			case ClaudeImageBlock:
				if block.Source.Type == "url" {
					irBlocks = append(irBlocks, ir.Text{Text: imagePlaceholder(block.Source.URL)})
				} else {
					irBlocks = append(irBlocks, ir.Image{MediaType: block.Source.MediaType, Data: block.Source.Data})
				}
			}
		}

		role := ir.RoleUser
		switch {
		case hasToolResult:
			role = ir.RoleTool
		case m.Role == "assistant":
			role = ir.RoleAssistant
		}
		out = append(out, ir.Message{Role: role, Content: irBlocks})
	}
	return ir.FromMessages(out), nil
}

// ExtractSystemPrompt returns the IR conversation's System-role message
// text, for a caller lowering to Claude's out-of-band system parameter.
func ExtractSystemPrompt(conv ir.Conversation) (string, bool) {
	m, ok := conv.SystemMessage()
	if !ok {
		return "", false
	}
	return m.TextContent(), true
}

// ClaudeFromIR lowers an IR conversation to Claude messages, stripping the
// System role (callers must pair this with ExtractSystemPrompt to carry
// it as the top-level system parameter).
func ClaudeFromIR(conv ir.Conversation) ([]ClaudeMessage, error) {
	out := make([]ClaudeMessage, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		if m.Role == ir.RoleSystem {
			continue
		}

		role := "user"
		if m.Role == ir.RoleAssistant {
			role = "assistant"
		}

		var blocks []ClaudeContentBlock
		if m.Role == ir.RoleTool {
			for _, b := range m.Content {
				tr, ok := b.(ir.ToolResult)
				if !ok {
					continue
				}
				text := flattenText(tr.Content)
				var isError *bool
				if tr.IsError {
					v := true
					isError = &v
				}
				blocks = append(blocks, ClaudeToolResultBlock{ToolUseID: tr.ToolUseID, Content: &text, IsError: isError})
			}
		} else {
			for _, b := range m.Content {
				switch block := b.(type) {
				case ir.Text:
					blocks = append(blocks, ClaudeTextBlock{Text: block.Text})
				case ir.Thinking:
					blocks = append(blocks, ClaudeThinkingBlock{Thinking: block.Text})
				case ir.ToolUse:
					blocks = append(blocks, ClaudeToolUseBlock{ID: block.ID, Name: block.Name, Input: block.Input})
				case ir.Image:
					blocks = append(blocks, ClaudeImageBlock{Source: ClaudeImageSource{
						Type: "base64", MediaType: block.MediaType, Data: block.Data,
					}})
				}
			}
		}

		content, err := claudeEncodeContent(blocks)
		if err != nil {
			return nil, err
		}
		out = append(out, ClaudeMessage{Role: role, Content: content})
	}
	return out, nil
}
