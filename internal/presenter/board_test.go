// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package presenter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejzpr/thread-mcp/internal/content"
)

type card struct {
	id       string
	kind     string
	priority content.Priority
	title    string
	keywords []string
	target   Target
}

func (c card) EntryID() string                  { return c.id }
func (c card) EntryType() string                { return c.kind }
func (c card) EntryPriority() content.Priority { return c.priority }
func (c card) SearchFields() []string           { return append([]string{c.title}, c.keywords...) }
func (c card) EntryTarget() (Target, bool)      { return c.target, c.target.ID != "" }

type recordingNav struct {
	threads []string
	emails  []string
	err     error
}

func (n *recordingNav) NavigateToThread(_ context.Context, id string) error {
	n.threads = append(n.threads, id)
	return n.err
}

func (n *recordingNav) NavigateToEmail(_ context.Context, id string) error {
	n.emails = append(n.emails, id)
	return n.err
}

func sampleCards() []card {
	return []card{
		{id: "1", kind: "action_needed", priority: content.PriorityUrgent, title: "Reply to Budget question", target: Target{Kind: content.KindThread, ID: "t1"}},
		{id: "2", kind: "trending_topic", priority: content.PriorityHigh, title: "Launch is trending", keywords: []string{"rollout"}, target: Target{Kind: content.KindThread, ID: "t2"}},
		{id: "3", kind: "forgotten_thread", priority: content.PriorityHigh, title: "Design went quiet", target: Target{Kind: content.KindEmail, ID: "e1"}},
		{id: "4", kind: "knowledge_gap", priority: content.PriorityMedium, title: "Limited context on budget"},
	}
}

func ids(list []card) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.id)
	}
	return out
}

func TestBoard_View(t *testing.T) {
	b := NewBoard[card](nil, nil)
	b.Replace(sampleCards())

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"1", "2", "3", "4"}},
		{"all wildcards", Filter{Type: All, Priority: "ALL"}, []string{"1", "2", "3", "4"}},
		{"query case-insensitive", Filter{Query: "BUDGET"}, []string{"1", "4"}},
		{"query keywords", Filter{Query: "roll"}, []string{"2"}},
		{"type", Filter{Type: "forgotten_thread"}, []string{"3"}},
		{"priority", Filter{Priority: "high"}, []string{"2", "3"}},
		{"combined", Filter{Query: "budget", Priority: "medium"}, []string{"4"}},
		{"no match", Filter{Query: "zzz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(b.View(tt.filter)))
		})
	}
}

func TestBoard_FilterOrderCommutes(t *testing.T) {
	items := sampleCards()
	filters := []Filter{
		{Query: "budget"},
		{Type: "knowledge_gap"},
		{Priority: "medium"},
	}
	combined := Filter{Query: "budget", Type: "knowledge_gap", Priority: "medium"}

	b := NewBoard[card](nil, nil)
	b.Replace(items)
	want := ids(b.View(combined))

	// apply single filters in reverse order through fresh boards
	current := items
	for i := len(filters) - 1; i >= 0; i-- {
		nb := NewBoard[card](nil, nil)
		nb.Replace(current)
		current = nb.View(filters[i])
	}
	assert.Equal(t, want, ids(current))
}

func TestBoard_ViewDoesNotMutate(t *testing.T) {
	b := NewBoard[card](nil, nil)
	b.Replace(sampleCards())

	_ = b.View(Filter{Query: "budget"})
	assert.Equal(t, 4, b.Len())
}

func TestBoard_Dismiss(t *testing.T) {
	var dismissed []string
	b := NewBoard[card](nil, func(id string) { dismissed = append(dismissed, id) })
	b.Replace(sampleCards())

	require.NoError(t, b.Dismiss("2"))
	assert.Equal(t, []string{"1", "3", "4"}, ids(b.Items()))
	assert.Equal(t, []string{"2"}, dismissed)

	err := b.Dismiss("2")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"2"}, dismissed)

	assert.ErrorIs(t, b.Dismiss("nope"), ErrNotFound)

	_, ok := b.Get("2")
	assert.False(t, ok)

	b.Replace(sampleCards())
	assert.Equal(t, 4, b.Len())
}

func TestBoard_Click(t *testing.T) {
	nav := &recordingNav{}
	b := NewBoard[card](nav, nil)
	b.Replace(sampleCards())

	target, err := b.Click(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, Target{Kind: content.KindThread, ID: "t1"}, target)

	_, err = b.Click(context.Background(), "3")
	require.NoError(t, err)

	assert.Equal(t, []string{"t1"}, nav.threads)
	assert.Equal(t, []string{"e1"}, nav.emails)

	_, err = b.Click(context.Background(), "4")
	assert.ErrorIs(t, err, ErrNoTarget)

	_, err = b.Click(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoard_ClickNavigatorError(t *testing.T) {
	nav := &recordingNav{err: errors.New("closed")}
	b := NewBoard[card](nav, nil)
	b.Replace(sampleCards())

	_, err := b.Click(context.Background(), "1")
	assert.Error(t, err)
}
