// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejzpr/thread-mcp/internal/auth"
	"github.com/tejzpr/thread-mcp/internal/insights"
	"github.com/tejzpr/thread-mcp/internal/service"
	"github.com/tejzpr/thread-mcp/internal/store"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupToolContext(t *testing.T) *ToolContext {
	t.Helper()
	clock := func() time.Time { return now }
	svc := service.New(service.Config{
		Store:   store.NewFallback(store.Unavailable{}, nil, nil).WithClock(clock),
		Options: insights.DefaultOptions(),
		Now:     clock,
	})
	t.Cleanup(svc.Close)
	return NewToolContext(svc)
}

func call(t *testing.T, h Handler, args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	result, err := h(context.Background(), request)
	require.NoError(t, err)
	return getResultText(result), result.IsError
}

func getResultText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

var idLine = regexp.MustCompile(`id: (\S+)`)

func TestAll_Names(t *testing.T) {
	var names []string
	for _, tool := range All(setupToolContext(t), "alice") {
		names = append(names, tool.Definition.Name)
		assert.NotNil(t, tool.Handler)
	}
	assert.Equal(t, []string{
		"thread_insights",
		"thread_dismiss",
		"thread_open",
		"thread_connections",
		"thread_notifications",
		"thread_mark_read",
		"thread_inbox",
		"thread_suggest_reply",
	}, names)
}

func TestInsightsDismissOpen(t *testing.T) {
	ctx := setupToolContext(t)

	text, isErr := call(t, InsightsHandler(ctx, "alice"), map[string]interface{}{"type": "action_needed"})
	require.False(t, isErr)
	assert.Contains(t, text, "source: heuristic")
	assert.Contains(t, text, "fallback: unavailable")
	assert.Contains(t, text, "Response needed in Product Launch")

	m := idLine.FindStringSubmatch(text)
	require.Len(t, m, 2)
	id := m[1]

	text, isErr = call(t, OpenHandler(ctx, "alice"), map[string]interface{}{"id": id})
	require.False(t, isErr)
	assert.Equal(t, "Opened thread demo-thread-launch", text)

	text, isErr = call(t, DismissHandler(ctx, "alice"), map[string]interface{}{"id": id})
	require.False(t, isErr)
	assert.Contains(t, text, "dismissed")

	text, isErr = call(t, DismissHandler(ctx, "alice"), map[string]interface{}{"id": id})
	assert.True(t, isErr)
	assert.Contains(t, text, "not found")

	text, isErr = call(t, InsightsHandler(ctx, "alice"), map[string]interface{}{"type": "action_needed"})
	require.False(t, isErr)
	assert.Contains(t, text, "No insights match.")

	_, isErr = call(t, DismissHandler(ctx, "alice"), map[string]interface{}{})
	assert.True(t, isErr)
}

func TestInsights_RefreshAndLimit(t *testing.T) {
	ctx := setupToolContext(t)

	text, isErr := call(t, InsightsHandler(ctx, "alice"), map[string]interface{}{"refresh": true, "limit": float64(1)})
	require.False(t, isErr)
	assert.Len(t, idLine.FindAllString(text, -1), 1)
}

func TestOpen_Inbox(t *testing.T) {
	ctx := setupToolContext(t)

	text, isErr := call(t, OpenHandler(ctx, "alice"), map[string]interface{}{"id": "demo-email-budget", "source": "inbox"})
	require.False(t, isErr)
	assert.Equal(t, "Opened email demo-email-budget", text)

	_, isErr = call(t, OpenHandler(ctx, "alice"), map[string]interface{}{"id": "x", "source": "elsewhere"})
	assert.True(t, isErr)
}

func TestConnections(t *testing.T) {
	ctx := setupToolContext(t)

	text, isErr := call(t, ConnectionsHandler(ctx, "alice"), map[string]interface{}{"thread_id": "missing"})
	require.False(t, isErr)
	assert.Contains(t, text, "No related content")

	_, isErr = call(t, ConnectionsHandler(ctx, "alice"), map[string]interface{}{})
	assert.True(t, isErr)
}

func TestNotificationsAndMarkRead(t *testing.T) {
	ctx := setupToolContext(t)

	text, isErr := call(t, NotificationsHandler(ctx, "alice"), nil)
	require.False(t, isErr)
	assert.Contains(t, text, "Notifications (2 unread)")
	assert.Contains(t, text, "why: unanswered question")

	text, isErr = call(t, MarkReadHandler(ctx, "alice"), map[string]interface{}{"id": "demo-notification-1"})
	require.False(t, isErr)
	assert.Contains(t, text, "(1 unread)")

	text, isErr = call(t, MarkReadHandler(ctx, "alice"), map[string]interface{}{"id": "nope"})
	assert.True(t, isErr)
	assert.Contains(t, text, "not found")

	text, isErr = call(t, MarkReadHandler(ctx, "alice"), map[string]interface{}{"all": true})
	require.False(t, isErr)
	assert.Equal(t, "Marked 1 notifications read", text)

	_, isErr = call(t, MarkReadHandler(ctx, "alice"), map[string]interface{}{})
	assert.True(t, isErr)
}

func TestInbox(t *testing.T) {
	ctx := setupToolContext(t)

	text, isErr := call(t, InboxHandler(ctx, "alice"), map[string]interface{}{"type": "email"})
	require.False(t, isErr)
	assert.Contains(t, text, "Inbox (2):")
	assert.Contains(t, text, "Q3 budget approval from finance@example.com")

	text, isErr = call(t, InboxHandler(ctx, "alice"), map[string]interface{}{"query": "no such words"})
	require.False(t, isErr)
	assert.Equal(t, "Inbox is empty.", text)
}

func TestSuggestReply(t *testing.T) {
	ctx := setupToolContext(t)

	text, isErr := call(t, SuggestReplyHandler(ctx, "alice"), map[string]interface{}{"thread_id": "demo-thread-launch"})
	require.False(t, isErr)
	assert.Contains(t, text, "- Let me check and get back to you.")

	text, isErr = call(t, SuggestReplyHandler(ctx, "alice"), map[string]interface{}{"thread_id": "missing"})
	require.False(t, isErr)
	assert.Contains(t, text, "No messages to reply to")
}

func TestUserFromContext(t *testing.T) {
	h := NotificationsHandler(setupToolContext(t), "")

	request := mcp.CallToolRequest{}
	result, err := h(context.Background(), request)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, getResultText(result), "no user")

	result, err = h(auth.WithUserID(context.Background(), "bob"), request)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, getResultText(result), "Notifications (2 unread)")
}
