// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot_IndexesMessagesByThread(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	threads := []Thread{{ID: "t1", Name: "general"}, {ID: "t2", Name: "design"}}
	messages := []Message{
		{ID: "m2", ThreadID: "t1", Content: "second", CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "m1", ThreadID: "t1", Content: "first", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "m3", ThreadID: "t2", Content: "other", CreatedAt: now},
	}

	s := NewSnapshot(threads, messages, nil, now)

	msgs := s.MessagesFor("t1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Empty(t, s.MessagesFor("missing"))
}

func TestSnapshot_Has(t *testing.T) {
	s := NewSnapshot(
		[]Thread{{ID: "t1"}},
		[]Message{{ID: "m1", ThreadID: "t1"}},
		[]Email{{ID: "e1"}},
		time.Now(),
	)

	assert.True(t, s.Has("t1"))
	assert.True(t, s.Has("m1"))
	assert.True(t, s.Has("e1"))
	assert.False(t, s.Has("nope"))
	assert.Len(t, s.Items(), 3)
	assert.False(t, s.Empty())
	assert.True(t, NewSnapshot(nil, nil, nil, time.Now()).Empty())
}

func TestSnapshot_Fingerprint(t *testing.T) {
	threads := []Thread{{ID: "t1"}, {ID: "t2"}}
	msgs := []Message{{ID: "m1", ThreadID: "t1"}}
	base := NewSnapshot(threads, msgs, nil, time.Now()).Fingerprint()

	reordered := NewSnapshot([]Thread{{ID: "t2"}, {ID: "t1"}}, msgs, nil, time.Now())
	assert.Equal(t, base, reordered.Fingerprint())

	deleted := NewSnapshot(threads[:1], msgs, nil, time.Now())
	assert.NotEqual(t, base, deleted.Fingerprint())

	noMessages := NewSnapshot(threads, nil, nil, time.Now())
	assert.NotEqual(t, base, noMessages.Fingerprint())
}

func TestEmail_Item(t *testing.T) {
	e := Email{ID: "e1", From: "ana@example.com", Subject: "Budget", Body: "Numbers attached", Participants: []string{"bo@example.com"}}

	assert.Equal(t, KindEmail, e.ItemKind())
	assert.Equal(t, "Budget\nNumbers attached", e.Text())
	assert.Equal(t, []string{"ana@example.com", "bo@example.com"}, e.People())
}
