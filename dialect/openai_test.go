package dialect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EffortlessMetrics/agent-backplane-sub000/ir"
)

func strp(s string) *string { return &s }

func TestOpenAIToIRSystemIsOrdinaryMessage(t *testing.T) {
	conv := OpenAIToIR([]Message{
		{Role: "system", Content: strp("be nice")},
		{Role: "user", Content: strp("hi")},
	})
	require.Len(t, conv.Messages, 2)
	require.Equal(t, ir.RoleSystem, conv.Messages[0].Role)
	sys, ok := conv.SystemMessage()
	require.True(t, ok)
	require.Equal(t, "be nice", sys.TextContent())
}

func TestOpenAIToolCallRoundTrip(t *testing.T) {
	native := []Message{
		{Role: "user", Content: strp("read x")},
		{
			Role: "assistant",
			ToolCalls: []ToolCall{
				{ID: "call_1", Type: "function", Function: FunctionCall{Name: "read_file", Arguments: `{"path":"x"}`}},
			},
		},
		{Role: "tool", Content: strp("file contents"), ToolCallID: strp("call_1")},
	}
	conv := OpenAIToIR(native)
	calls := conv.ToolCalls()
	require.Len(t, calls, 1)
	require.Equal(t, "read_file", calls[0].Name)
	require.Equal(t, map[string]any{"path": "x"}, calls[0].Input)

	back, err := OpenAIFromIR(conv)
	require.NoError(t, err)
	require.Len(t, back, 3)
	require.Equal(t, "call_1", back[1].ToolCalls[0].ID)
	require.JSONEq(t, `{"path":"x"}`, back[1].ToolCalls[0].Function.Arguments)
	require.Equal(t, "call_1", *back[2].ToolCallID)
}

func TestOpenAIMalformedToolArgumentsPreservedAsString(t *testing.T) {
	native := []Message{
		{Role: "assistant", ToolCalls: []ToolCall{
			{ID: "call_2", Function: FunctionCall{Name: "search", Arguments: "not json"}},
		}},
	}
	conv := OpenAIToIR(native)
	calls := conv.ToolCalls()
	require.Len(t, calls, 1)
	require.Equal(t, "not json", calls[0].Input)
}

func TestOpenAIEmptyConversationRoundTrips(t *testing.T) {
	conv := OpenAIToIR(nil)
	require.Equal(t, 0, conv.Len())
	back, err := OpenAIFromIR(conv)
	require.NoError(t, err)
	require.Empty(t, back)
}
