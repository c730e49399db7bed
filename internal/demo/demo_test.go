// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejzpr/thread-mcp/internal/content"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestLoad(t *testing.T) {
	d, err := Load(now)
	require.NoError(t, err)

	assert.Len(t, d.Threads, 4)
	assert.Len(t, d.Messages, 12)
	assert.Len(t, d.Emails, 2)
	assert.Len(t, d.Notifications, 3)

	launch := d.Threads[0]
	assert.Equal(t, "demo-thread-launch", launch.ID)
	assert.Equal(t, content.ThreadKindChannel, launch.Kind)
	assert.Equal(t, now.Add(-time.Hour), launch.UpdatedAt)
	assert.Equal(t, UserID, launch.UserID)

	assert.True(t, d.Threads[2].IsPrivate)
	assert.Equal(t, "unanswered question", d.Notifications[0].AIContext["reason"])
	assert.True(t, d.Notifications[1].Read)
}

func TestLoad_ReferencesResolve(t *testing.T) {
	d := MustLoad(now)
	s := d.Snapshot(now)

	for _, m := range d.Messages {
		assert.True(t, s.Has(m.ThreadID), "message %s thread %s", m.ID, m.ThreadID)
	}
	for _, n := range d.Notifications {
		if n.ThreadID != "" {
			assert.True(t, s.Has(n.ThreadID))
		}
		if n.EmailID != "" {
			assert.True(t, s.Has(n.EmailID))
		}
	}
}

func TestForUser(t *testing.T) {
	d := MustLoad(now)
	mine := d.ForUser("alice")

	for _, th := range mine.Threads {
		assert.Equal(t, "alice", th.UserID)
	}
	for _, n := range mine.Notifications {
		assert.Equal(t, "alice", n.UserID)
	}
	assert.Equal(t, UserID, d.Threads[0].UserID)
}
