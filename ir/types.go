// Package ir defines the Agent Backplane Intermediate Representation: a
// dialect-neutral conversation algebra that every vendor dialect lifts into
// and lowers from. It is deliberately not a universal LLM semantic model —
// safety ratings, citation metadata, and vendor-specific sampling knobs
// have no cross-dialect counterpart and are not represented here.
package ir

import "sort"

// Role identifies who authored a message in a conversation.
type Role string

// Role variants. Serialized as lowercase snake_case strings.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentBlock is a marker interface implemented by every IR content block
// variant. The set is closed and fixed by the protocol: Text, Image,
// ToolUse, ToolResult, Thinking. Adding a variant is a breaking protocol
// change (see spec design notes on tagged content blocks).
type ContentBlock interface {
	// Kind returns the wire discriminator for this block ("text", "image",
	// "tool_use", "tool_result", "thinking").
	Kind() string
	isContentBlock()
}

// Text is a plain UTF-8 text content block.
type Text struct {
	Text string `json:"text"`
}

// Kind implements ContentBlock.
func (Text) Kind() string { return "text" }
func (Text) isContentBlock() {}

// Image is a base64-encoded image content block. URL-referenced images
// must be degraded into Text at lift time with a placeholder string —
// dialect lifters, not this package, perform that degradation.
type Image struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Kind implements ContentBlock.
func (Image) Kind() string { return "image" }
func (Image) isContentBlock() {}

// ToolUse is a tool call emitted by the assistant. Input is an arbitrary
// JSON value; the IR treats it as opaque.
type ToolUse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Input any    `json:"input"`
}

// Kind implements ContentBlock.
func (ToolUse) Kind() string { return "tool_use" }
func (ToolUse) isContentBlock() {}

// ToolResult is a reply to a ToolUse. Content is itself a sequence of
// blocks to allow structured results (e.g. a tool that returns text plus
// an image).
type ToolResult struct {
	ToolUseID string         `json:"tool_use_id"`
	Content   []ContentBlock `json:"content"`
	IsError   bool           `json:"is_error"`
}

// Kind implements ContentBlock.
func (ToolResult) Kind() string { return "tool_result" }
func (ToolResult) isContentBlock() {}

// Thinking is chain-of-thought reasoning content. Vendor-specific
// signatures/provenance are deliberately not preserved across the IR
// boundary: they are cryptographic attestations of the vendor's extended
// reasoning and serve no purpose in cross-dialect translation.
type Thinking struct {
	Text string `json:"text"`
}

// Kind implements ContentBlock.
func (Thinking) Kind() string { return "thinking" }
func (Thinking) isContentBlock() {}

// Message is a single turn in a conversation.
type Message struct {
	Role Role
	// Content is the ordered list of content blocks for this message.
	Content []ContentBlock
	// Metadata carries dialect-specific extensions that have no IR
	// counterpart (for example Copilot's "references"). Keys iterate in
	// lexicographic order for deterministic re-encoding.
	Metadata map[string]any
}

// NewTextMessage constructs a single-block text message for the given
// role. It is the common-case constructor used by lifters building a
// system or user turn from a plain string.
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{Text{Text: text}}}
}

// IsTextOnly reports whether every content block in the message is Text.
func (m Message) IsTextOnly() bool {
	for _, b := range m.Content {
		if _, ok := b.(Text); !ok {
			return false
		}
	}
	return true
}

// TextContent concatenates the payload of every Text block in order, with
// no separator. Used for quick inspection and for tasks derived from the
// last user message.
func (m Message) TextContent() string {
	var sb []byte
	for _, b := range m.Content {
		if t, ok := b.(Text); ok {
			sb = append(sb, t.Text...)
		}
	}
	return string(sb)
}

// ToolUseBlocks filters the message's content to ToolUse blocks, in order.
func (m Message) ToolUseBlocks() []ToolUse {
	var out []ToolUse
	for _, b := range m.Content {
		if tu, ok := b.(ToolUse); ok {
			out = append(out, tu)
		}
	}
	return out
}

// SortedMetadataKeys returns the message's Metadata keys in lexicographic
// order, for deterministic iteration/re-encoding.
func (m Message) SortedMetadataKeys() []string {
	keys := make([]string, 0, len(m.Metadata))
	for k := range m.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Conversation is an ordered sequence of Messages. Order is semantic:
// later messages respond to earlier ones.
type Conversation struct {
	Messages []Message
}

// FromMessages constructs a Conversation from an ordered message slice.
func FromMessages(msgs []Message) Conversation {
	return Conversation{Messages: msgs}
}

// SystemMessage returns the first System-role message, if any.
func (c Conversation) SystemMessage() (Message, bool) {
	for _, m := range c.Messages {
		if m.Role == RoleSystem {
			return m, true
		}
	}
	return Message{}, false
}

// LastAssistant returns the last Assistant-role message, if any.
func (c Conversation) LastAssistant() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

// ToolCalls returns every ToolUse block across the whole conversation, in
// traversal order.
func (c Conversation) ToolCalls() []ToolUse {
	var out []ToolUse
	for _, m := range c.Messages {
		out = append(out, m.ToolUseBlocks()...)
	}
	return out
}

// Len returns the number of messages in the conversation.
func (c Conversation) Len() int { return len(c.Messages) }

// Usage tracks token accounting for a model call. Total is an invariant,
// not a stored quantity computed ad hoc: it always equals
// InputTokens + OutputTokens for any Usage value constructed through this
// package's constructors or Merge.
type Usage struct {
	InputTokens      int
	OutputTokens     int
	TotalTokens      int
	CacheReadTokens  int
	CacheWriteTokens int
}

// FromIO constructs a Usage from input/output token counts, with cache
// fields zero and Total = input + output.
func FromIO(input, output int) Usage {
	return Usage{InputTokens: input, OutputTokens: output, TotalTokens: input + output}
}

// WithCache constructs a Usage from input/output token counts plus cache
// read/write counts, with Total = input + output.
func WithCache(input, output, cacheRead, cacheWrite int) Usage {
	return Usage{
		InputTokens:      input,
		OutputTokens:     output,
		TotalTokens:      input + output,
		CacheReadTokens:  cacheRead,
		CacheWriteTokens: cacheWrite,
	}
}

// Merge sums every field of u and other pointwise. Merge is commutative
// and associative: u.Merge(other) == other.Merge(u) field-wise, and the
// result for three values does not depend on association order.
func (u Usage) Merge(other Usage) Usage {
	return Usage{
		InputTokens:      u.InputTokens + other.InputTokens,
		OutputTokens:     u.OutputTokens + other.OutputTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
		CacheReadTokens:  u.CacheReadTokens + other.CacheReadTokens,
		CacheWriteTokens: u.CacheWriteTokens + other.CacheWriteTokens,
	}
}

// ToolDefinition describes a tool exposed to the model: a name, a
// description the model uses to decide when to call it, and a JSON
// Schema object describing its input payload.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}
