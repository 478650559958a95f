package workorder

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedTS(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2025-06-15T12:00:30Z")
	require.NoError(t, err)
	return ts
}

func TestAgentEventToolCallRoundTrip(t *testing.T) {
	const payload = `{
		"ts": "2025-06-15T12:00:30Z",
		"type": "tool_call",
		"tool_name": "write_file",
		"tool_use_id": "tu_abc",
		"parent_tool_use_id": "tu_parent",
		"input": {"path": "src/lib.rs", "content": "fn main() {}"}
	}`
	var e AgentEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &e))

	tc, ok := e.Kind.(ToolCall)
	require.True(t, ok)
	require.Equal(t, "write_file", tc.ToolName)
	require.Equal(t, "tu_abc", *tc.ToolUseID)
	require.Equal(t, "tu_parent", *tc.ParentToolUseID)

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	var decoded AgentEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, e.Ts, decoded.Ts)
	require.Equal(t, e.Kind, decoded.Kind)
}

func TestAgentEventUnknownKindTolerated(t *testing.T) {
	const payload = `{"ts":"2025-01-01T00:00:00Z","type":"future_event","message":"test","severity":"high","code":42}`
	var e AgentEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &e))

	unk, ok := e.Kind.(AgentEventUnknown)
	require.True(t, ok)
	require.Equal(t, "future_event", unk.Tag)
	require.Equal(t, "future_event", e.Kind.Kind())

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	var v1, v2 map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &v1))
	require.NoError(t, json.Unmarshal(raw, &v2))
	require.Equal(t, v1, v2)
}

func TestAgentEventExtNullVsAbsent(t *testing.T) {
	withNull := `{"ts":"2025-01-01T00:00:00Z","type":"run_started","message":"go","ext":null}`
	without := `{"ts":"2025-01-01T00:00:00Z","type":"run_started","message":"go"}`

	var a, b AgentEvent
	require.NoError(t, json.Unmarshal([]byte(withNull), &a))
	require.NoError(t, json.Unmarshal([]byte(without), &b))
	require.Nil(t, a.Ext)
	require.Nil(t, b.Ext)
}

func TestAgentEventWarningRoundTrip(t *testing.T) {
	e := AgentEvent{Ts: fixedTS(t), Kind: Warning{Message: "disk almost full"}}
	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded AgentEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, Warning{Message: "disk almost full"}, decoded.Kind)
	require.Equal(t, "warning", decoded.Kind.Kind())
}
