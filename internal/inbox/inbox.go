// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package inbox merges thread activity and email into a single prioritized list.
package inbox

import (
	"sort"
	"strings"
	"time"

	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/insights"
	"github.com/tejzpr/thread-mcp/internal/presenter"
)

const previewLength = 140

// Entry is one row of the unified inbox
type Entry struct {
	ID          string                  `json:"id"`
	Kind        content.Kind            `json:"kind"`
	ThreadID    string                  `json:"thread_id,omitempty"`
	EmailID     string                  `json:"email_id,omitempty"`
	Title       string                  `json:"title"`
	Sender      string                  `json:"sender"`
	Preview     string                  `json:"preview"`
	Sentiment   insights.SentimentLabel `json:"sentiment"`
	Priority    content.Priority        `json:"priority"`
	NeedsAction bool                    `json:"needs_action"`
	Unread      bool                    `json:"unread"`
	Timestamp   time.Time               `json:"timestamp"`
}

// EntryID, EntryType and EntryPriority let entries sit on a presenter.Board
func (e Entry) EntryID() string                  { return e.ID }
func (e Entry) EntryType() string                { return string(e.Kind) }
func (e Entry) EntryPriority() content.Priority { return e.Priority }

// SearchFields returns the title, sender and preview for search
func (e Entry) SearchFields() []string {
	return []string{e.Title, e.Sender, e.Preview}
}

// EntryTarget opens the email, or the thread for a message row
func (e Entry) EntryTarget() (presenter.Target, bool) {
	if e.Kind == content.KindEmail {
		return presenter.Target{Kind: content.KindEmail, ID: e.EmailID}, e.EmailID != ""
	}
	return presenter.Target{Kind: content.KindThread, ID: e.ThreadID}, e.ThreadID != ""
}

// Build returns the latest message of every thread plus every email,
// highest priority first and newest first within a priority
func Build(s *content.Snapshot) []Entry {
	out := make([]Entry, 0, len(s.Threads)+len(s.Emails))

	for _, t := range s.Threads {
		msgs := s.MessagesFor(t.ID)
		if len(msgs) == 0 {
			continue
		}
		last := msgs[len(msgs)-1]
		action := insights.NeedsAction(last.Content)
		out = append(out, Entry{
			ID:          last.ID,
			Kind:        content.KindMessage,
			ThreadID:    t.ID,
			Title:       t.Name,
			Sender:      sender(last),
			Preview:     preview(last.Content),
			Sentiment:   insights.Sentiment([]string{last.Content}),
			Priority:    priorityFor(action, false),
			NeedsAction: action,
			Timestamp:   last.CreatedAt,
		})
	}

	for _, e := range s.Emails {
		action := insights.NeedsAction(e.Text())
		out = append(out, Entry{
			ID:          e.ID,
			Kind:        content.KindEmail,
			ThreadID:    e.ThreadID,
			EmailID:     e.ID,
			Title:       e.Subject,
			Sender:      e.From,
			Preview:     preview(e.Body),
			Sentiment:   insights.Sentiment([]string{e.Subject, e.Body}),
			Priority:    priorityFor(action, !e.IsRead),
			NeedsAction: action,
			Unread:      !e.IsRead,
			Timestamp:   e.ReceivedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func priorityFor(action, unread bool) content.Priority {
	switch {
	case action:
		return content.PriorityHigh
	case unread:
		return content.PriorityMedium
	}
	return content.PriorityLow
}

func sender(m content.Message) string {
	if m.SenderName != "" {
		return m.SenderName
	}
	return m.SenderID
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= previewLength {
		return text
	}
	return string(r[:previewLength]) + "..."
}
