package ir

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MarshalJSON encodes Text with its wire discriminator.
func (t Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: t.Kind(), alias: alias(t)})
}

// MarshalJSON encodes Image with its wire discriminator.
func (im Image) MarshalJSON() ([]byte, error) {
	type alias Image
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: im.Kind(), alias: alias(im)})
}

// MarshalJSON encodes ToolUse with its wire discriminator.
func (tu ToolUse) MarshalJSON() ([]byte, error) {
	type alias ToolUse
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: tu.Kind(), alias: alias(tu)})
}

// MarshalJSON encodes ToolResult with its wire discriminator.
func (tr ToolResult) MarshalJSON() ([]byte, error) {
	type alias ToolResult
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: tr.Kind(), alias: alias(tr)})
}

// MarshalJSON encodes Thinking with its wire discriminator.
func (th Thinking) MarshalJSON() ([]byte, error) {
	type alias Thinking
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: th.Kind(), alias: alias(th)})
}

// decodeContentBlock discriminates a raw JSON content block by its "type"
// field and materializes the concrete ContentBlock implementation.
func decodeContentBlock(raw json.RawMessage) (ContentBlock, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("ir: decode content block discriminator: %w", err)
	}
	switch head.Type {
	case "text":
		var v Text
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("ir: decode text block: %w", err)
		}
		return v, nil
	case "image":
		var v Image
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("ir: decode image block: %w", err)
		}
		return v, nil
	case "tool_use":
		var v ToolUse
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("ir: decode tool_use block: %w", err)
		}
		return v, nil
	case "tool_result":
		var shadow struct {
			ToolUseID string            `json:"tool_use_id"`
			Content   []json.RawMessage `json:"content"`
			IsError   bool              `json:"is_error"`
		}
		if err := json.Unmarshal(raw, &shadow); err != nil {
			return nil, fmt.Errorf("ir: decode tool_result block: %w", err)
		}
		blocks := make([]ContentBlock, 0, len(shadow.Content))
		for i, rawBlock := range shadow.Content {
			b, err := decodeContentBlock(rawBlock)
			if err != nil {
				return nil, fmt.Errorf("ir: decode tool_result content[%d]: %w", i, err)
			}
			blocks = append(blocks, b)
		}
		return ToolResult{ToolUseID: shadow.ToolUseID, Content: blocks, IsError: shadow.IsError}, nil
	case "thinking":
		var v Thinking
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("ir: decode thinking block: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("ir: unknown content block type %q", head.Type)
	}
}

// MarshalJSON encodes Message, preserving concrete ContentBlock types and
// emitting Metadata keys in lexicographic order for deterministic
// re-encoding.
func (m Message) MarshalJSON() ([]byte, error) {
	type wire struct {
		Role     Role             `json:"role"`
		Content  []ContentBlock   `json:"content"`
		Metadata *orderedMetadata `json:"metadata,omitempty"`
	}
	var meta *orderedMetadata
	if len(m.Metadata) > 0 {
		meta = &orderedMetadata{m: m.Metadata}
	}
	return json.Marshal(wire{Role: m.Role, Content: m.Content, Metadata: meta})
}

// UnmarshalJSON decodes Message, materializing concrete ContentBlock
// implementations for each entry.
func (m *Message) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Role     Role              `json:"role"`
		Content  []json.RawMessage `json:"content"`
		Metadata map[string]any    `json:"metadata"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	blocks := make([]ContentBlock, 0, len(shadow.Content))
	for i, raw := range shadow.Content {
		b, err := decodeContentBlock(raw)
		if err != nil {
			return fmt.Errorf("ir: decode message content[%d]: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	m.Role = shadow.Role
	m.Content = blocks
	m.Metadata = shadow.Metadata
	return nil
}

// orderedMetadata marshals a map[string]any with keys sorted
// lexicographically, so byte-identical re-encoding is possible across
// implementations and processes (required for receipt hash stability).
type orderedMetadata struct {
	m map[string]any
}

// MarshalJSON implements deterministic key ordering for metadata maps.
func (o *orderedMetadata) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(o.m[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}
