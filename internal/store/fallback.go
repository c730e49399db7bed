// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"time"

	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/demo"
	"github.com/tejzpr/thread-mcp/internal/logging"
	"github.com/tejzpr/thread-mcp/internal/metrics"
)

// Fallback serves the demo dataset whenever a read from next fails.
// Reads never return an error. Writes pass through unchanged.
type Fallback struct {
	next    Store
	now     func() time.Time
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewFallback wraps next. A nil next behaves like Unavailable.
func NewFallback(next Store, logger logging.Logger, m *metrics.Metrics) *Fallback {
	if next == nil {
		next = Unavailable{}
	}
	return &Fallback{
		next:    next,
		now:     time.Now,
		logger:  logging.OrDiscard(logger),
		metrics: m,
	}
}

// WithClock overrides the clock used to anchor demo timestamps
func (f *Fallback) WithClock(now func() time.Time) *Fallback {
	f.now = now
	return f
}

func (f *Fallback) demo(userID, collection string, err error) demo.Dataset {
	f.metrics.RecordStoreFallback(collection)
	f.logger.WithFields(logging.Fields{
		"user":       userID,
		"collection": collection,
		"error":      err.Error(),
	}).Warn("store read failed, serving demo data")
	return demo.MustLoad(f.now()).ForUser(userID)
}

func (f *Fallback) ListThreads(ctx context.Context, userID string, opts ListOptions) ([]content.Thread, error) {
	list, err := f.next.ListThreads(ctx, userID, opts)
	if err == nil {
		return list, nil
	}
	out := f.demo(userID, "threads", err).Threads
	if id, ok := opts.Filter["id"].(string); ok {
		out = filterSlice(out, func(t content.Thread) bool { return t.ID == id })
	}
	return limit(out, opts.Limit), nil
}

func (f *Fallback) ListMessages(ctx context.Context, userID string, opts ListOptions) ([]content.Message, error) {
	list, err := f.next.ListMessages(ctx, userID, opts)
	if err == nil {
		return list, nil
	}
	out := f.demo(userID, "messages", err).Messages
	if threadID, ok := opts.Filter["thread_id"].(string); ok {
		out = filterSlice(out, func(m content.Message) bool { return m.ThreadID == threadID })
	}
	return limit(out, opts.Limit), nil
}

func (f *Fallback) ListEmails(ctx context.Context, userID string, opts ListOptions) ([]content.Email, error) {
	list, err := f.next.ListEmails(ctx, userID, opts)
	if err == nil {
		return list, nil
	}
	out := f.demo(userID, "emails", err).Emails
	if read, ok := opts.Filter["is_read"].(bool); ok {
		out = filterSlice(out, func(e content.Email) bool { return e.IsRead == read })
	}
	return limit(out, opts.Limit), nil
}

func (f *Fallback) ListNotifications(ctx context.Context, userID string, opts ListOptions) ([]content.Notification, error) {
	list, err := f.next.ListNotifications(ctx, userID, opts)
	if err == nil {
		return list, nil
	}
	out := f.demo(userID, "notifications", err).Notifications
	if read, ok := opts.Filter["read"].(bool); ok {
		out = filterSlice(out, func(n content.Notification) bool { return n.Read == read })
	}
	return limit(out, opts.Limit), nil
}

func (f *Fallback) UpdateNotification(ctx context.Context, userID, id string, patch NotificationPatch) error {
	return f.next.UpdateNotification(ctx, userID, id, patch)
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func limit[T any](in []T, n int) []T {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}
