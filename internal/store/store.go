// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"errors"

	"github.com/tejzpr/thread-mcp/internal/content"
)

var (
	// ErrUnavailable is returned when no backing store is configured or reachable
	ErrUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned when an update targets a missing record
	ErrNotFound = errors.New("record not found")

	// ErrInvalidQuery is returned for filters or orderings on unknown columns
	ErrInvalidQuery = errors.New("invalid query")
)

// ListOptions narrows a collection read
type ListOptions struct {
	// Filter matches columns by equality
	Filter     map[string]any
	OrderBy    string
	Descending bool
	Limit      int
}

// NotificationPatch is a partial notification update
type NotificationPatch struct {
	Read *bool
}

// Store is the persistent content collaborator
type Store interface {
	ListThreads(ctx context.Context, userID string, opts ListOptions) ([]content.Thread, error)
	ListMessages(ctx context.Context, userID string, opts ListOptions) ([]content.Message, error)
	ListEmails(ctx context.Context, userID string, opts ListOptions) ([]content.Email, error)
	ListNotifications(ctx context.Context, userID string, opts ListOptions) ([]content.Notification, error)
	UpdateNotification(ctx context.Context, userID, id string, patch NotificationPatch) error
}

// Unavailable is the Store used when nothing is configured
type Unavailable struct{}

func (Unavailable) ListThreads(context.Context, string, ListOptions) ([]content.Thread, error) {
	return nil, ErrUnavailable
}

func (Unavailable) ListMessages(context.Context, string, ListOptions) ([]content.Message, error) {
	return nil, ErrUnavailable
}

func (Unavailable) ListEmails(context.Context, string, ListOptions) ([]content.Email, error) {
	return nil, ErrUnavailable
}

func (Unavailable) ListNotifications(context.Context, string, ListOptions) ([]content.Notification, error) {
	return nil, ErrUnavailable
}

func (Unavailable) UpdateNotification(context.Context, string, string, NotificationPatch) error {
	return ErrUnavailable
}

// Bool returns a pointer to v, for patches
func Bool(v bool) *bool { return &v }
