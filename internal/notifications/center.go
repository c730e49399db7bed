// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package notifications

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/logging"
	"github.com/tejzpr/thread-mcp/internal/metrics"
	"github.com/tejzpr/thread-mcp/internal/store"
)

// Center holds one user's notifications. Read-state changes are applied
// locally first and persisted best effort. Ids marked read locally stay read
// across reloads until the store reports them read too.
type Center struct {
	userID  string
	store   store.Store
	logger  logging.Logger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	items     []content.Notification
	readLocal map[string]bool
}

// NewCenter creates an empty center for userID
func NewCenter(userID string, s store.Store, logger logging.Logger, m *metrics.Metrics) *Center {
	if s == nil {
		s = store.Unavailable{}
	}
	return &Center{
		userID:    userID,
		store:     s,
		logger:    logging.OrDiscard(logger),
		metrics:   m,
		readLocal: make(map[string]bool),
	}
}

// Sort orders unread first, then by priority, then newest first
func Sort(list []content.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Read != b.Read {
			return !a.Read
		}
		ra, rb := content.Priority(a.Priority).Rank(), content.Priority(b.Priority).Rank()
		if ra != rb {
			return ra > rb
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// Load replaces the local list with the store's, keeping local read marks
func (c *Center) Load(ctx context.Context) ([]content.Notification, error) {
	list, err := c.store.ListNotifications(ctx, c.userID, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}

	c.mu.Lock()
	for i := range list {
		if !c.readLocal[list[i].ID] {
			continue
		}
		if list[i].Read {
			delete(c.readLocal, list[i].ID)
		}
		list[i].Read = true
	}
	Sort(list)
	c.items = list
	c.mu.Unlock()
	return c.List(), nil
}

// List returns a copy of the current notifications
func (c *Center) List() []content.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]content.Notification(nil), c.items...)
}

// UnreadCount returns the number of unread notifications
func (c *Center) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, item := range c.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkRead marks one notification read. It reports whether the id was known locally.
// Store failures are logged and do not roll back the local change.
func (c *Center) MarkRead(ctx context.Context, id string) bool {
	c.mu.Lock()
	found := false
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Read = true
			c.readLocal[id] = true
			found = true
			break
		}
	}
	if found {
		Sort(c.items)
	}
	c.mu.Unlock()

	if !found {
		return false
	}
	c.persist(ctx, id)
	return true
}

// MarkAllRead marks every unread notification read and returns how many changed
func (c *Center) MarkAllRead(ctx context.Context) int {
	c.mu.Lock()
	var changed []string
	for i := range c.items {
		if !c.items[i].Read {
			c.items[i].Read = true
			c.readLocal[c.items[i].ID] = true
			changed = append(changed, c.items[i].ID)
		}
	}
	Sort(c.items)
	c.mu.Unlock()

	for _, id := range changed {
		c.persist(ctx, id)
	}
	return len(changed)
}

func (c *Center) persist(ctx context.Context, id string) {
	err := c.store.UpdateNotification(ctx, c.userID, id, store.NotificationPatch{Read: store.Bool(true)})
	c.metrics.RecordNotificationWrite(err == nil)
	if err == nil {
		c.mu.Lock()
		delete(c.readLocal, id)
		c.mu.Unlock()
		return
	}
	c.logger.WithFields(logging.Fields{
		"user":         c.userID,
		"notification": id,
		"error":        err.Error(),
	}).Warn("failed to persist notification read state")
}
