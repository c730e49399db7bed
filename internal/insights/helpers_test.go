// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"fmt"
	"time"

	"github.com/tejzpr/thread-mcp/internal/content"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) time.Time { return testNow.Add(-d) }

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func thread(id, name string, updated time.Time) content.Thread {
	return content.Thread{
		ID:        id,
		UserID:    "alice",
		Name:      name,
		Kind:      content.ThreadKindChannel,
		CreatedAt: updated.Add(-days(30)),
		UpdatedAt: updated,
	}
}

func msg(id, threadID, text string, at time.Time) content.Message {
	return content.Message{
		ID:         id,
		ThreadID:   threadID,
		SenderID:   "bob",
		SenderName: "Bob",
		Content:    text,
		CreatedAt:  at,
	}
}

// burst returns n messages in threadID spaced one minute apart ending at `end`
func burst(threadID, text string, n int, end time.Time) []content.Message {
	out := make([]content.Message, n)
	for i := 0; i < n; i++ {
		out[i] = msg(fmt.Sprintf("%s-m%d", threadID, i), threadID, text, end.Add(-time.Duration(i)*time.Minute))
	}
	return out
}

func snap(threads []content.Thread, messages []content.Message, emails ...content.Email) *content.Snapshot {
	return content.NewSnapshot(threads, messages, emails, testNow)
}

func ofKind(list []Insight, k Kind) []Insight {
	var out []Insight
	for _, ins := range list {
		if ins.Kind == k {
			out = append(out, ins)
		}
	}
	return out
}
