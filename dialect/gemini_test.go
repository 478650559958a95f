package dialect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
)

func TestGeminiSystemInstructionIsOutOfBand(t *testing.T) {
	conv := GeminiToIR([]GeminiContent{{Role: "user", Parts: []GeminiPart{GeminiTextPart{Text: "hi"}}}}, strp("be nice"))
	sys, ok := conv.SystemMessage()
	require.True(t, ok)
	require.Equal(t, "be nice", sys.TextContent())

	extracted, ok := ExtractSystemInstruction(conv)
	require.True(t, ok)
	require.Equal(t, "be nice", extracted.Parts[0].(GeminiTextPart).Text)

	back, err := GeminiFromIR(conv)
	require.NoError(t, err)
	require.Len(t, back, 1)
	require.Equal(t, "user", back[0].Role)
}

func TestGeminiFunctionCallSynthesizesID(t *testing.T) {
	conv := GeminiToIR([]GeminiContent{
		{Role: "model", Parts: []GeminiPart{GeminiFunctionCallPart{Name: "read_file", Args: map[string]any{"path": "x"}}}},
	}, nil)
	calls := conv.ToolCalls()
	require.Len(t, calls, 1)
	require.Equal(t, "gemini_read_file", calls[0].ID)
}

func TestGeminiFunctionResponseLiftsToToolRole(t *testing.T) {
	conv := GeminiToIR([]GeminiContent{
		{Role: "user", Parts: []GeminiPart{GeminiFunctionResponsePart{Name: "read_file", Response: map[string]any{"result": "data"}}}},
	}, nil)
	require.Equal(t, ir.RoleTool, conv.Messages[0].Role)
	tr, ok := conv.Messages[0].Content[0].(ir.ToolResult)
	require.True(t, ok)
	require.Equal(t, "gemini_read_file", tr.ToolUseID)
}

func TestScenarioF_OpenAIToolCallThroughGeminiRoundTrip(t *testing.T) {
	openaiMsgs := []Message{
		{Role: "assistant", ToolCalls: []ToolCall{
			{ID: "call_1", Type: "function", Function: FunctionCall{Name: "read_file", Arguments: `{"path":"x"}`}},
		}},
		{Role: "tool", Content: strp("contents"), ToolCallID: strp("call_1")},
	}
	conv := OpenAIToIR(openaiMsgs)

	geminiContents, err := GeminiFromIR(conv)
	require.NoError(t, err)
	require.Len(t, geminiContents, 2)
	fc, ok := geminiContents[0].Parts[0].(GeminiFunctionCallPart)
	require.True(t, ok)
	require.Equal(t, "read_file", fc.Name)
	require.Equal(t, map[string]any{"path": "x"}, fc.Args)
	fr, ok := geminiContents[1].Parts[0].(GeminiFunctionResponsePart)
	require.True(t, ok)
	require.Equal(t, "read_file", fr.Name)

	back := GeminiToIR(geminiContents, nil)
	require.Len(t, back.Messages, 2)
	require.NotEmpty(t, back.ToolCalls())
	require.Equal(t, ir.RoleTool, back.Messages[1].Role)
}

func TestGeminiInlineDataLiftsToIRImage(t *testing.T) {
	conv := GeminiToIR([]GeminiContent{
		{Role: "user", Parts: []GeminiPart{GeminiInlineDataPart{MimeType: "image/png", Data: "Zm9v"}}},
	}, nil)
	img, ok := conv.Messages[0].Content[0].(ir.Image)
	require.True(t, ok)
	require.Equal(t, "image/png", img.MediaType)
}
