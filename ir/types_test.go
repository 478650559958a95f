package ir

import "testing"

import "github.com/stretchr/testify/require"

func TestUsageFromIOTotalInvariant(t *testing.T) {
	u := FromIO(100, 40)
	require.Equal(t, 140, u.TotalTokens)
	require.Equal(t, u.InputTokens+u.OutputTokens, u.TotalTokens)
}

func TestUsageWithCache(t *testing.T) {
	u := WithCache(10, 5, 3, 2)
	require.Equal(t, 15, u.TotalTokens)
	require.Equal(t, 3, u.CacheReadTokens)
	require.Equal(t, 2, u.CacheWriteTokens)
}

func TestUsageMergeCommutativeAndAssociative(t *testing.T) {
	a := FromIO(10, 5)
	b := WithCache(3, 1, 2, 1)
	c := FromIO(7, 2)

	require.Equal(t, a.Merge(b), b.Merge(a))

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))
	require.Equal(t, left, right)
}

func TestMessageIsTextOnly(t *testing.T) {
	textOnly := NewTextMessage(RoleUser, "hi")
	require.True(t, textOnly.IsTextOnly())

	mixed := Message{Role: RoleAssistant, Content: []ContentBlock{
		Text{Text: "a"},
		ToolUse{ID: "1", Name: "search", Input: map[string]any{}},
	}}
	require.False(t, mixed.IsTextOnly())
}

func TestMessageTextContentConcatenatesNoSeparator(t *testing.T) {
	m := Message{Role: RoleAssistant, Content: []ContentBlock{
		Text{Text: "Hello, "},
		ToolUse{ID: "1", Name: "noop"},
		Text{Text: "world."},
	}}
	require.Equal(t, "Hello, world.", m.TextContent())
}

func TestMessageToolUseBlocksPreservesOrder(t *testing.T) {
	m := Message{Role: RoleAssistant, Content: []ContentBlock{
		ToolUse{ID: "1", Name: "a"},
		Text{Text: "between"},
		ToolUse{ID: "2", Name: "b"},
	}}
	uses := m.ToolUseBlocks()
	require.Len(t, uses, 2)
	require.Equal(t, "a", uses[0].Name)
	require.Equal(t, "b", uses[1].Name)
}

func TestConversationAccessors(t *testing.T) {
	c := FromMessages([]Message{
		NewTextMessage(RoleSystem, "be nice"),
		NewTextMessage(RoleUser, "hello"),
		{Role: RoleAssistant, Content: []ContentBlock{ToolUse{ID: "1", Name: "read"}}},
		NewTextMessage(RoleAssistant, "done"),
	})

	sys, ok := c.SystemMessage()
	require.True(t, ok)
	require.Equal(t, "be nice", sys.TextContent())

	last, ok := c.LastAssistant()
	require.True(t, ok)
	require.Equal(t, "done", last.TextContent())

	calls := c.ToolCalls()
	require.Len(t, calls, 1)
	require.Equal(t, "read", calls[0].Name)
}

func TestConversationEmptyAccessorsMiss(t *testing.T) {
	c := FromMessages(nil)
	_, ok := c.SystemMessage()
	require.False(t, ok)
	_, ok = c.LastAssistant()
	require.False(t, ok)
	require.Empty(t, c.ToolCalls())
}
