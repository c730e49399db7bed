// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejzpr/thread-mcp/internal/ai"
	"github.com/tejzpr/thread-mcp/internal/config"
	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/insights"
	"github.com/tejzpr/thread-mcp/internal/metrics"
	"github.com/tejzpr/thread-mcp/internal/presenter"
	"github.com/tejzpr/thread-mcp/internal/store"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingNav struct {
	mu      sync.Mutex
	threads []string
	emails  []string
}

func (n *recordingNav) NavigateToThread(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.threads = append(n.threads, id)
	return nil
}

func (n *recordingNav) NavigateToEmail(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, id)
	return nil
}

func clock() time.Time { return now }

func newDemoService(t *testing.T, completer ai.Completer) (*Service, *recordingNav) {
	t.Helper()
	nav := &recordingNav{}
	fb := store.NewFallback(store.Unavailable{}, nil, nil).WithClock(clock)
	svc := New(Config{
		Store:     fb,
		Completer: completer,
		Options:   insights.DefaultOptions(),
		Navigator: nav,
		Metrics:   metrics.New(),
		Now:       clock,
	})
	t.Cleanup(svc.Close)
	return svc, nav
}

func TestInsights_HeuristicOnDemoData(t *testing.T) {
	svc, nav := newDemoService(t, nil)
	ctx := context.Background()

	view, err := svc.Insights(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, view.Insights)
	assert.Equal(t, insights.SourceHeuristic, view.Source)
	assert.Equal(t, insights.FallbackUnavailable, view.Fallback)
	assert.Equal(t, uint64(1), view.Generation)
	assert.Equal(t, now, view.GeneratedAt)

	first := view.Insights[0]
	assert.Equal(t, insights.KindActionNeeded, first.Kind)
	assert.Equal(t, content.PriorityUrgent, first.Priority)

	target, err := svc.OpenInsight(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.Equal(t, presenter.Target{Kind: content.KindThread, ID: "demo-thread-launch"}, target)
	assert.Equal(t, []string{"demo-thread-launch"}, nav.threads)

	require.NoError(t, svc.DismissInsight("alice", first.ID))
	assert.ErrorIs(t, svc.DismissInsight("alice", first.ID), presenter.ErrNotFound)

	again, err := svc.Insights(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	assert.Len(t, again.Insights, len(view.Insights)-1)
	assert.Equal(t, uint64(1), again.Generation, "cached generation reused")

	urgent, err := svc.Insights(ctx, "alice", presenter.Filter{Priority: string(content.PriorityUrgent)})
	require.NoError(t, err)
	assert.Empty(t, urgent.Insights)
}

func TestRefresh_ResetsDismissals(t *testing.T) {
	svc, _ := newDemoService(t, nil)
	ctx := context.Background()

	view, err := svc.Insights(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	require.NoError(t, svc.DismissInsight("alice", view.Insights[0].ID))

	res, err := svc.Refresh(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, res.Insights, len(view.Insights))

	after, err := svc.Insights(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	assert.Len(t, after.Insights, len(view.Insights))
	assert.Equal(t, uint64(2), after.Generation)
}

func TestInsights_AIPath(t *testing.T) {
	mock := ai.NewMockClient(`{"insights":[{"type":"trending_topic","title":"Launch is busy","description":"Many messages","confidence":0.9,"priority":"high","thread_ids":["demo-thread-launch"]}]}`)
	svc, _ := newDemoService(t, mock)

	view, err := svc.Insights(context.Background(), "alice", presenter.Filter{})
	require.NoError(t, err)
	assert.Equal(t, insights.SourceAI, view.Source)
	require.Len(t, view.Insights, 1)
	assert.Equal(t, "Launch is busy", view.Insights[0].Title)
}

type memStore struct {
	store.Unavailable
	mu       sync.Mutex
	threads  []content.Thread
	messages []content.Message
}

func (m *memStore) ListThreads(context.Context, string, store.ListOptions) ([]content.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]content.Thread(nil), m.threads...), nil
}

func (m *memStore) ListMessages(context.Context, string, store.ListOptions) ([]content.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]content.Message(nil), m.messages...), nil
}

func (m *memStore) ListEmails(context.Context, string, store.ListOptions) ([]content.Email, error) {
	return nil, nil
}

func (m *memStore) deleteThread(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var threads []content.Thread
	for _, t := range m.threads {
		if t.ID != id {
			threads = append(threads, t)
		}
	}
	var msgs []content.Message
	for _, msg := range m.messages {
		if msg.ThreadID != id {
			msgs = append(msgs, msg)
		}
	}
	m.threads, m.messages = threads, msgs
}

func quietThreadStore() *memStore {
	old := now.Add(-5 * 24 * time.Hour)
	return &memStore{
		threads: []content.Thread{
			{ID: "t1", Name: "Vendor contract", Kind: content.ThreadKindChannel, CreatedAt: old, UpdatedAt: old},
		},
		messages: []content.Message{
			{ID: "m1", ThreadID: "t1", SenderID: "bob", Content: "Draft attached", CreatedAt: old},
		},
	}
}

func forgotten(list []insights.Insight) []insights.Insight {
	var out []insights.Insight
	for _, ins := range list {
		if ins.Kind == insights.KindForgottenThread {
			out = append(out, ins)
		}
	}
	return out
}

func TestInsights_DeletedContentRegenerates(t *testing.T) {
	ms := quietThreadStore()
	svc := New(Config{Store: ms, Options: insights.DefaultOptions(), Now: clock})
	t.Cleanup(svc.Close)
	ctx := context.Background()

	view, err := svc.Insights(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	quiet := forgotten(view.Insights)
	require.Len(t, quiet, 1)
	assert.Equal(t, []string{"t1"}, quiet[0].ThreadIDs)

	ms.deleteThread("t1")

	after, err := svc.Insights(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	assert.Empty(t, after.Insights)
	assert.Equal(t, 0, after.Total)
	assert.Equal(t, uint64(2), after.Generation)

	_, err = svc.OpenInsight(ctx, "alice", quiet[0].ID)
	assert.ErrorIs(t, err, presenter.ErrNotFound)
}

func TestOpenInsight_DeletedContent(t *testing.T) {
	ms := quietThreadStore()
	nav := &recordingNav{}
	svc := New(Config{Store: ms, Options: insights.DefaultOptions(), Navigator: nav, Now: clock})
	t.Cleanup(svc.Close)
	ctx := context.Background()

	view, err := svc.Insights(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	quiet := forgotten(view.Insights)
	require.Len(t, quiet, 1)

	ms.deleteThread("t1")

	_, err = svc.OpenInsight(ctx, "alice", quiet[0].ID)
	assert.ErrorIs(t, err, presenter.ErrNotFound)
	assert.Empty(t, nav.threads)
}

func TestInsights_UnchangedContentReusesGeneration(t *testing.T) {
	svc := New(Config{Store: quietThreadStore(), Options: insights.DefaultOptions(), Now: clock})
	t.Cleanup(svc.Close)
	ctx := context.Background()

	_, err := svc.Insights(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	again, err := svc.Insights(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), again.Generation)
}

func TestInsights_StoreDown(t *testing.T) {
	svc := New(Config{Store: store.Unavailable{}, Options: insights.DefaultOptions(), Now: clock})
	t.Cleanup(svc.Close)

	_, err := svc.Insights(context.Background(), "alice", presenter.Filter{})
	assert.ErrorIs(t, err, ErrNoInsights)

	_, err = svc.Connections(context.Background(), "alice", "t1")
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestTrigger(t *testing.T) {
	svc, _ := newDemoService(t, nil)
	gen := svc.Trigger(context.Background(), "bob")
	assert.Equal(t, uint64(1), gen)

	svc.user("bob").refresher.Wait()
	view, err := svc.Insights(context.Background(), "bob", presenter.Filter{})
	require.NoError(t, err)
	assert.NotEmpty(t, view.Insights)
	assert.Equal(t, []string{"bob"}, svc.Users())
}

func TestConnections(t *testing.T) {
	svc, _ := newDemoService(t, nil)

	list, err := svc.Connections(context.Background(), "alice", "demo-thread-launch")
	require.NoError(t, err)
	assert.NotNil(t, list)
	for _, c := range list {
		assert.Equal(t, "demo-thread-launch", c.SourceID)
		assert.NotEqual(t, "demo-thread-launch", c.TargetID)
		assert.GreaterOrEqual(t, c.Relevance, 0.3)
	}

	none, err := svc.Connections(context.Background(), "alice", "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNotifications(t *testing.T) {
	svc, _ := newDemoService(t, nil)
	ctx := context.Background()

	view, err := svc.Notifications(ctx, "alice", false)
	require.NoError(t, err)
	assert.Len(t, view.Notifications, 3)
	assert.Equal(t, 2, view.Unread)

	unread, err := svc.Notifications(ctx, "alice", true)
	require.NoError(t, err)
	assert.Len(t, unread.Notifications, 2)

	// the demo store rejects writes, the local state still changes
	left, err := svc.MarkNotificationRead(ctx, "alice", "demo-notification-1")
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	reloaded, err := svc.Notifications(ctx, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Unread, "local read survives a reload")

	_, err = svc.MarkNotificationRead(ctx, "alice", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	changed, err := svc.MarkAllNotificationsRead(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
}

func TestMarkNotificationRead_LoadsFirst(t *testing.T) {
	svc, _ := newDemoService(t, nil)

	left, err := svc.MarkNotificationRead(context.Background(), "carol", "demo-notification-3")
	require.NoError(t, err)
	assert.Equal(t, 1, left)
}

func TestInbox(t *testing.T) {
	svc, nav := newDemoService(t, nil)
	ctx := context.Background()

	entries, err := svc.Inbox(ctx, "alice", presenter.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 6)
	assert.Equal(t, "demo-msg-6", entries[0].ID)

	emails, err := svc.Inbox(ctx, "alice", presenter.Filter{Query: "budget"})
	require.NoError(t, err)
	require.Len(t, emails, 1)

	target, err := svc.OpenInboxEntry(ctx, "alice", "demo-email-budget")
	require.NoError(t, err)
	assert.Equal(t, content.KindEmail, target.Kind)
	assert.Equal(t, []string{"demo-email-budget"}, nav.emails)
}

func TestSuggestReply(t *testing.T) {
	svc, _ := newDemoService(t, nil)
	ctx := context.Background()

	got, err := svc.SuggestReply(ctx, "alice", "demo-thread-launch")
	require.NoError(t, err)
	assert.Len(t, got.Replies, 3)
	assert.Equal(t, insights.SourceHeuristic, got.Source)

	empty, err := svc.SuggestReply(ctx, "alice", "missing")
	require.NoError(t, err)
	assert.Empty(t, empty.Replies)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Insights
	opts := OptionsFromConfig(cfg)
	assert.Equal(t, insights.DefaultOptions(), opts)

	cfg.Vocabulary = []string{"launch"}
	cfg.TrendingWindowHours = 48
	cfg.Confidence.ActionNeeded = 0.5
	opts = OptionsFromConfig(cfg)
	assert.Equal(t, []string{"launch"}, opts.Vocabulary)
	assert.Equal(t, 48*time.Hour, opts.TrendingWindow)
	assert.InDelta(t, 0.5, opts.Confidence.ActionNeeded, 1e-9)
}
