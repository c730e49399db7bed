// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package presenter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tejzpr/thread-mcp/internal/content"
)

var (
	// ErrNotFound is returned for ids that are not on the board
	ErrNotFound = errors.New("entry not found")

	// ErrNoTarget is returned when a clicked entry has nowhere to go
	ErrNoTarget = errors.New("entry has no navigation target")
)

// All is the filter wildcard
const All = "all"

// Target is where clicking an entry navigates to
type Target struct {
	Kind content.Kind `json:"kind"`
	ID   string       `json:"id"`
}

// Entry is anything the board can rank, filter and navigate
type Entry interface {
	EntryID() string
	EntryType() string
	EntryPriority() content.Priority
	SearchFields() []string
	EntryTarget() (Target, bool)
}

// Navigator opens a thread or an email for the user
type Navigator interface {
	NavigateToThread(ctx context.Context, threadID string) error
	NavigateToEmail(ctx context.Context, emailID string) error
}

// NopNavigator accepts every navigation and does nothing
type NopNavigator struct{}

func (NopNavigator) NavigateToThread(context.Context, string) error { return nil }
func (NopNavigator) NavigateToEmail(context.Context, string) error  { return nil }

// Filter narrows the visible list. Empty fields and "all" match everything.
type Filter struct {
	Query    string `json:"query,omitempty"`
	Type     string `json:"type,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// Board holds the last generated list and the ids the user dismissed
type Board[T Entry] struct {
	mu        sync.RWMutex
	items     []T
	dismissed map[string]struct{}
	nav       Navigator
	onDismiss func(id string)
}

// NewBoard creates an empty board
func NewBoard[T Entry](nav Navigator, onDismiss func(id string)) *Board[T] {
	if nav == nil {
		nav = NopNavigator{}
	}
	return &Board[T]{
		dismissed: make(map[string]struct{}),
		nav:       nav,
		onDismiss: onDismiss,
	}
}

// Replace installs a freshly generated list. Dismissals do not carry over.
func (b *Board[T]) Replace(items []T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append([]T(nil), items...)
	b.dismissed = make(map[string]struct{})
}

// Items returns the visible entries in board order
func (b *Board[T]) Items() []T {
	return b.View(Filter{})
}

// View applies search, then type, then priority to the visible entries.
// The board itself is never modified.
func (b *Board[T]) View(f Filter) []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]T, 0, len(b.items))
	for _, item := range b.items {
		if _, gone := b.dismissed[item.EntryID()]; gone {
			continue
		}
		if query != "" && !matchesQuery(item, query) {
			continue
		}
		if !wildcard(f.Type) && item.EntryType() != f.Type {
			continue
		}
		if !wildcard(f.Priority) && string(item.EntryPriority()) != f.Priority {
			continue
		}
		out = append(out, item)
	}
	return out
}

func wildcard(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}

func matchesQuery(item Entry, query string) bool {
	for _, field := range item.SearchFields() {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Get looks up a visible entry
func (b *Board[T]) Get(id string) (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, gone := b.dismissed[id]; !gone {
		for _, item := range b.items {
			if item.EntryID() == id {
				return item, true
			}
		}
	}
	var zero T
	return zero, false
}

// Dismiss hides exactly one entry until the next Replace
func (b *Board[T]) Dismiss(id string) error {
	b.mu.Lock()
	found := false
	if _, gone := b.dismissed[id]; !gone {
		for _, item := range b.items {
			if item.EntryID() == id {
				found = true
				break
			}
		}
	}
	if found {
		b.dismissed[id] = struct{}{}
	}
	cb := b.onDismiss
	b.mu.Unlock()

	if !found {
		return fmt.Errorf("dismiss %s: %w", id, ErrNotFound)
	}
	if cb != nil {
		cb(id)
	}
	return nil
}

// Click navigates to the entry's target
func (b *Board[T]) Click(ctx context.Context, id string) (Target, error) {
	item, ok := b.Get(id)
	if !ok {
		return Target{}, fmt.Errorf("open %s: %w", id, ErrNotFound)
	}
	target, ok := item.EntryTarget()
	if !ok {
		return Target{}, fmt.Errorf("open %s: %w", id, ErrNoTarget)
	}

	var err error
	switch target.Kind {
	case content.KindEmail:
		err = b.nav.NavigateToEmail(ctx, target.ID)
	default:
		err = b.nav.NavigateToThread(ctx, target.ID)
	}
	if err != nil {
		return Target{}, fmt.Errorf("navigate to %s %s: %w", target.Kind, target.ID, err)
	}
	return target, nil
}

// Len returns the number of visible entries
func (b *Board[T]) Len() int {
	return len(b.Items())
}
