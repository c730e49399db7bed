// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/metrics"
	"github.com/tejzpr/thread-mcp/internal/store"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	store.Unavailable
	mu        sync.Mutex
	list      []content.Notification
	listErr   error
	updateErr error
	updated   []string
}

func (f *fakeStore) ListNotifications(context.Context, string, store.ListOptions) ([]content.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]content.Notification(nil), f.list...), nil
}

func (f *fakeStore) UpdateNotification(_ context.Context, _ string, id string, _ store.NotificationPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, id)
	return f.updateErr
}

func sample() []content.Notification {
	return []content.Notification{
		{ID: "old-low", Priority: "low", CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "read-urgent", Priority: "urgent", Read: true, CreatedAt: now},
		{ID: "new-low", Priority: "low", CreatedAt: now.Add(-time.Hour)},
		{ID: "high", Priority: "high", CreatedAt: now.Add(-5 * time.Hour)},
	}
}

func ids(list []content.Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func TestLoad_Sorts(t *testing.T) {
	c := NewCenter("alice", &fakeStore{list: sample()}, nil, nil)

	list, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "new-low", "old-low", "read-urgent"}, ids(list))
	assert.Equal(t, 3, c.UnreadCount())
}

func TestLoad_Error(t *testing.T) {
	c := NewCenter("alice", &fakeStore{listErr: errors.New("down")}, nil, nil)
	_, err := c.Load(context.Background())
	assert.Error(t, err)
	assert.Empty(t, c.List())
}

func TestLoad_DemoFallback(t *testing.T) {
	fb := store.NewFallback(store.Unavailable{}, nil, nil).WithClock(func() time.Time { return now })
	c := NewCenter("alice", fb, nil, nil)

	list, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "demo-notification-1", list[0].ID)
	assert.Equal(t, 2, c.UnreadCount())
}

func TestMarkRead(t *testing.T) {
	fs := &fakeStore{list: sample()}
	c := NewCenter("alice", fs, nil, nil)
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, c.MarkRead(context.Background(), "high"))
	assert.Equal(t, 2, c.UnreadCount())
	assert.Equal(t, []string{"high"}, fs.updated)
	assert.Equal(t, "new-low", c.List()[0].ID)

	assert.False(t, c.MarkRead(context.Background(), "missing"))
	assert.Equal(t, []string{"high"}, fs.updated)
}

func TestMarkRead_OptimisticOnStoreFailure(t *testing.T) {
	fs := &fakeStore{list: sample(), updateErr: errors.New("write failed")}
	m := metrics.New()
	c := NewCenter("alice", fs, nil, m)
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, c.MarkRead(context.Background(), "high"))
	assert.Equal(t, 2, c.UnreadCount())
}

func TestLoad_KeepsUnpersistedReads(t *testing.T) {
	fs := &fakeStore{list: sample(), updateErr: errors.New("write failed")}
	c := NewCenter("alice", fs, nil, nil)
	ctx := context.Background()
	_, err := c.Load(ctx)
	require.NoError(t, err)

	require.True(t, c.MarkRead(ctx, "high"))
	list, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, c.UnreadCount())
	assert.Equal(t, []string{"new-low", "old-low", "read-urgent", "high"}, ids(list))

	c.MarkAllRead(ctx)
	_, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, c.UnreadCount())
}

func TestLoad_DemoFallbackKeepsReads(t *testing.T) {
	fb := store.NewFallback(store.Unavailable{}, nil, nil).WithClock(func() time.Time { return now })
	c := NewCenter("alice", fb, nil, nil)
	ctx := context.Background()
	_, err := c.Load(ctx)
	require.NoError(t, err)

	require.True(t, c.MarkRead(ctx, "demo-notification-1"))
	assert.Equal(t, 1, c.UnreadCount())

	_, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.UnreadCount())
}

func TestLoad_PersistedReadsFollowStore(t *testing.T) {
	fs := &fakeStore{list: sample()}
	c := NewCenter("alice", fs, nil, nil)
	ctx := context.Background()
	_, err := c.Load(ctx)
	require.NoError(t, err)

	require.True(t, c.MarkRead(ctx, "high"))
	fs.list[3].Read = true
	_, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, c.UnreadCount())
}

func TestMarkAllRead(t *testing.T) {
	fs := &fakeStore{list: sample(), updateErr: errors.New("write failed")}
	c := NewCenter("alice", fs, nil, nil)
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, c.MarkAllRead(context.Background()))
	assert.Equal(t, 0, c.UnreadCount())
	assert.ElementsMatch(t, []string{"high", "new-low", "old-low"}, fs.updated)

	assert.Equal(t, 0, c.MarkAllRead(context.Background()))
}

func TestSort_UnknownPriorityLast(t *testing.T) {
	list := []content.Notification{
		{ID: "weird", Priority: "whatever", CreatedAt: now},
		{ID: "low", Priority: "low", CreatedAt: now.Add(-time.Hour)},
	}
	Sort(list)
	assert.Equal(t, []string{"low", "weird"}, ids(list))
}
