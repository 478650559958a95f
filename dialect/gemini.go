package dialect

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
)

// Gemini places the system prompt in a separate system_instruction field
// (not a message), uses "model" rather than "assistant" as its role
// name, and represents tool calls/results as FunctionCall/FunctionResponse
// parts rather than a flat field pair. Gemini parts are a protobuf oneof:
// on the wire, each part object carries exactly one of text, functionCall,
// functionResponse, or inlineData — there is no "type" discriminator.

// GeminiContent is one Gemini conversation turn.
type GeminiContent struct {
	Role  string       `json:"role"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart is the closed set of part shapes Gemini's oneof carries.
type GeminiPart interface {
	isGeminiPart()
}

type (
	// GeminiTextPart is a plain text part.
	GeminiTextPart struct{ Text string }

	// GeminiFunctionCallPart is a model-issued tool call. Gemini assigns
	// it no native id; lift synthesizes "gemini_<name>" as the
	// correlation id, accepting that repeated calls to the same tool
	// share one id — a documented fidelity loss.
	GeminiFunctionCallPart struct {
		Name string
		Args map[string]any
	}

	// GeminiFunctionResponsePart replies to a GeminiFunctionCallPart.
	GeminiFunctionResponsePart struct {
		Name     string
		Response map[string]any
	}

	// GeminiInlineDataPart carries an embedded base64 image or other
	// binary payload.
	GeminiInlineDataPart struct {
		MimeType string
		Data     string
	}
)

func (GeminiTextPart) isGeminiPart()             {}
func (GeminiFunctionCallPart) isGeminiPart()     {}
func (GeminiFunctionResponsePart) isGeminiPart() {}
func (GeminiInlineDataPart) isGeminiPart()       {}

func (p GeminiTextPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text string `json:"text"`
	}{p.Text})
}

func (p GeminiFunctionCallPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FunctionCall struct {
			Name string         `json:"name"`
			Args map[string]any `json:"args"`
		} `json:"functionCall"`
	}{struct {
		Name string         `json:"name"`
		Args map[string]any `json:"args"`
	}{p.Name, p.Args}})
}

func (p GeminiFunctionResponsePart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FunctionResponse struct {
			Name     string         `json:"name"`
			Response map[string]any `json:"response"`
		} `json:"functionResponse"`
	}{struct {
		Name     string         `json:"name"`
		Response map[string]any `json:"response"`
	}{p.Name, p.Response}})
}

func (p GeminiInlineDataPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		InlineData struct {
			MimeType string `json:"mimeType"`
			Data     string `json:"data"`
		} `json:"inlineData"`
	}{struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	}{p.MimeType, p.Data}})
}

func decodeGeminiPart(raw json.RawMessage) (GeminiPart, error) {
	var head map[string]json.RawMessage
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("dialect/gemini: decode part: %w", err)
	}
	if v, ok := head["text"]; ok {
		var text string
		if err := json.Unmarshal(v, &text); err != nil {
			return nil, err
		}
		return GeminiTextPart{Text: text}, nil
	}
	if v, ok := head["functionCall"]; ok {
		var fc struct {
			Name string         `json:"name"`
			Args map[string]any `json:"args"`
		}
		if err := json.Unmarshal(v, &fc); err != nil {
			return nil, err
		}
		return GeminiFunctionCallPart{Name: fc.Name, Args: fc.Args}, nil
	}
	if v, ok := head["functionResponse"]; ok {
		var fr struct {
			Name     string         `json:"name"`
			Response map[string]any `json:"response"`
		}
		if err := json.Unmarshal(v, &fr); err != nil {
			return nil, err
		}
		return GeminiFunctionResponsePart{Name: fr.Name, Response: fr.Response}, nil
	}
	if v, ok := head["inlineData"]; ok {
		var id struct {
			MimeType string `json:"mimeType"`
			Data     string `json:"data"`
		}
		if err := json.Unmarshal(v, &id); err != nil {
			return nil, err
		}
		return GeminiInlineDataPart{MimeType: id.MimeType, Data: id.Data}, nil
	}
	return nil, fmt.Errorf("dialect/gemini: part has none of the known oneof fields")
}

// UnmarshalJSON discriminates each part by which oneof key is present.
func (c *GeminiContent) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Role  string            `json:"role"`
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	parts := make([]GeminiPart, 0, len(shadow.Parts))
	for i, raw := range shadow.Parts {
		p, err := decodeGeminiPart(raw)
		if err != nil {
			return fmt.Errorf("dialect/gemini: parts[%d]: %w", i, err)
		}
		parts = append(parts, p)
	}
	c.Role = shadow.Role
	c.Parts = parts
	return nil
}

const geminiToolIDPrefix = "gemini_"

func geminiSyntheticID(name string) string { return geminiToolIDPrefix + name }

func geminiNameFromID(id string) string {
	return strings.TrimPrefix(id, geminiToolIDPrefix)
}

// GeminiToIR lifts a Gemini content list plus its out-of-band system
// instruction into the IR. A turn whose parts include any
// FunctionResponse lifts to an IR Tool-role message, since Gemini has no
// native tool role — a function response is just a part inside a
// user-role turn.
func GeminiToIR(contents []GeminiContent, systemInstruction *string) ir.Conversation {
	out := make([]ir.Message, 0, len(contents)+1)
	if systemInstruction != nil && *systemInstruction != "" {
		out = append(out, ir.NewTextMessage(ir.RoleSystem, *systemInstruction))
	}

	for _, c := range contents {
		hasResponse := false
		for _, p := range c.Parts {
			if _, ok := p.(GeminiFunctionResponsePart); ok {
				hasResponse = true
				break
			}
		}

		blocks := make([]ir.ContentBlock, 0, len(c.Parts))
		for _, p := range c.Parts {
			switch part := p.(type) {
			case GeminiTextPart:
				blocks = append(blocks, ir.Text{Text: part.Text})
			case GeminiFunctionCallPart:
				blocks = append(blocks, ir.ToolUse{
					ID:    geminiSyntheticID(part.Name),
					Name:  part.Name,
					Input: part.Args,
				})
			case GeminiFunctionResponsePart:
				raw, _ := json.Marshal(part.Response)
				blocks = append(blocks, ir.ToolResult{
					ToolUseID: geminiSyntheticID(part.Name),
					Content:   []ir.ContentBlock{ir.Text{Text: string(raw)}},
				})
			case GeminiInlineDataPart:
				blocks = append(blocks, ir.Image{MediaType: part.MimeType, Data: part.Data})
			}
		}

		role := ir.RoleUser
		switch {
		case hasResponse:
			role = ir.RoleTool
		case c.Role == "model":
			role = ir.RoleAssistant
		}
		out = append(out, ir.Message{Role: role, Content: blocks})
	}
	return ir.FromMessages(out)
}

// ExtractSystemInstruction returns the IR conversation's System-role
// message wrapped in a GeminiContent, for a caller lowering to Gemini's
// out-of-band system_instruction field.
func ExtractSystemInstruction(conv ir.Conversation) (GeminiContent, bool) {
	m, ok := conv.SystemMessage()
	if !ok {
		return GeminiContent{}, false
	}
	return GeminiContent{Role: "system", Parts: []GeminiPart{GeminiTextPart{Text: m.TextContent()}}}, true
}

// GeminiFromIR lowers an IR conversation to Gemini contents, stripping
// the System role (pair with ExtractSystemInstruction to carry it
// out of band).
func GeminiFromIR(conv ir.Conversation) ([]GeminiContent, error) {
	out := make([]GeminiContent, 0, len(conv.Messages))
	// toolNames maps each ToolUse id seen so far to its tool name, so a
	// later FunctionResponse carries the function's name, not the id.
	toolNames := make(map[string]string)
	for _, m := range conv.Messages {
		if m.Role == ir.RoleSystem {
			continue
		}

		if m.Role == ir.RoleTool {
			var parts []GeminiPart
			for _, b := range m.Content {
				tr, ok := b.(ir.ToolResult)
				if !ok {
					continue
				}
				response := map[string]any{"result": flattenText(tr.Content)}
				name, ok := toolNames[tr.ToolUseID]
				if !ok {
					name = geminiNameFromID(tr.ToolUseID)
				}
				parts = append(parts, GeminiFunctionResponsePart{
					Name:     name,
					Response: response,
				})
			}
			out = append(out, GeminiContent{Role: "user", Parts: parts})
			continue
		}

		role := "user"
		if m.Role == ir.RoleAssistant {
			role = "model"
		}

		var parts []GeminiPart
		for _, b := range m.Content {
			switch block := b.(type) {
			case ir.Text:
				parts = append(parts, GeminiTextPart{Text: block.Text})
			case ir.Thinking:
				// Flattened to text; Gemini carries no thinking part.
				parts = append(parts, GeminiTextPart{Text: block.Text})
			case ir.ToolUse:
				toolNames[block.ID] = block.Name
				args, ok := block.Input.(map[string]any)
				if !ok {
					args = map[string]any{"value": block.Input}
				}
				parts = append(parts, GeminiFunctionCallPart{Name: block.Name, Args: args})
			case ir.Image:
				parts = append(parts, GeminiInlineDataPart{MimeType: block.MediaType, Data: block.Data})
			}
		}
		out = append(out, GeminiContent{Role: role, Parts: parts})
	}
	return out, nil
}
