// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejzpr/thread-mcp/internal/content"
)

func TestConnector_Connect(t *testing.T) {
	threads := []content.Thread{
		thread("t1", "ops", testNow),
		thread("t2", "infra", testNow),
		thread("t3", "social", testNow),
	}
	msgs := []content.Message{
		msg("m1", "t1", "launch checklist rollout review", testNow),
		msg("m2", "t2", "rollout checklist pending", testNow),
		msg("m3", "t3", "lunch plans", testNow),
	}
	old := content.Email{ID: "e1", From: "x@example.com", Subject: "checklist", ReceivedAt: ago(days(10))}
	for i := range msgs {
		msgs[i].SenderID = "sender-" + msgs[i].ThreadID
	}

	got := NewConnector(DefaultOptions(), nil).Connect(snap(threads, msgs, old), "t1")
	require.Len(t, got, 1)

	c := got[0]
	assert.Equal(t, "t1", c.SourceID)
	assert.Equal(t, "t2", c.TargetID)
	assert.Equal(t, content.KindThread, c.TargetKind)
	assert.Equal(t, "infra", c.Title)
	assert.Equal(t, []string{"checklist", "rollout"}, c.Keywords)
	assert.InDelta(t, 0.55, c.Relevance, 1e-9)
	assert.Equal(t, content.PriorityMedium, c.Priority)
	assert.Contains(t, c.Reason, "checklist, rollout")
}

func TestConnector_IncludesEmails(t *testing.T) {
	threads := []content.Thread{thread("t1", "ops", testNow)}
	msgs := []content.Message{msg("m1", "t1", "budget forecast", testNow)}
	email := content.Email{ID: "e1", From: "cfo@example.com", Subject: "Budget forecast", ReceivedAt: testNow}

	got := NewConnector(DefaultOptions(), nil).Connect(snap(threads, msgs, email), "t1")
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].TargetID)
	assert.Equal(t, content.KindEmail, got[0].TargetKind)
	assert.Equal(t, "Budget forecast", got[0].Title)
	assert.Equal(t, content.PriorityHigh, got[0].Priority)
}

func TestConnector_CapsAndSorts(t *testing.T) {
	threads := []content.Thread{thread("t0", "ops", testNow)}
	msgs := []content.Message{msg("m0", "t0", "alpha bravo charlie delta", testNow)}
	texts := []string{"alpha", "alpha bravo", "alpha bravo charlie", "alpha bravo charlie delta", "alpha bravo", "alpha bravo charlie", "alpha"}
	for i, text := range texts {
		id := fmt.Sprintf("t%d", i+1)
		threads = append(threads, thread(id, id, testNow))
		msgs = append(msgs, msg("m"+id, id, text, testNow))
	}

	opts := DefaultOptions()
	got := NewConnector(opts, nil).Connect(snap(threads, msgs), "t0")
	require.Len(t, got, opts.MaxConnections)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Relevance, got[i].Relevance)
	}
	assert.Equal(t, "t4", got[0].TargetID)
}

func TestConnector_UnknownOrEmpty(t *testing.T) {
	c := NewConnector(DefaultOptions(), nil)
	s := snap([]content.Thread{thread("t1", "ops", testNow)}, nil)

	assert.Empty(t, c.Connect(s, "missing"))
	assert.Empty(t, c.Connect(s, "t1"))
}
