// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package content

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Kind identifies which collection a content item came from
type Kind string

const (
	KindThread  Kind = "thread"
	KindMessage Kind = "message"
	KindEmail   Kind = "email"
)

// ThreadKind describes what sort of conversation a thread is
type ThreadKind string

const (
	ThreadKindChannel ThreadKind = "channel"
	ThreadKindDirect  ThreadKind = "direct"
	ThreadKindAI      ThreadKind = "ai"
)

// Item is any piece of content the insight engine can read
type Item interface {
	ItemID() string
	ItemKind() Kind
	Text() string
	Timestamp() time.Time
	People() []string
	ThreadRef() string
}

// Thread is a named conversation channel, direct message or AI chat session
type Thread struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Kind         ThreadKind `json:"kind"`
	Participants []string   `json:"participants"`
	IsPrivate    bool       `json:"is_private"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (t Thread) ItemID() string       { return t.ID }
func (t Thread) ItemKind() Kind       { return KindThread }
func (t Thread) Text() string         { return t.Name }
func (t Thread) Timestamp() time.Time { return t.UpdatedAt }
func (t Thread) People() []string     { return t.Participants }
func (t Thread) ThreadRef() string    { return t.ID }

// Message is a single entry in a thread
type Message struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"thread_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m Message) ItemID() string       { return m.ID }
func (m Message) ItemKind() Kind       { return KindMessage }
func (m Message) Text() string         { return m.Content }
func (m Message) Timestamp() time.Time { return m.CreatedAt }
func (m Message) People() []string     { return []string{m.SenderID} }
func (m Message) ThreadRef() string    { return m.ThreadID }

// Email is a message from the connected mailbox
type Email struct {
	ID           string    `json:"id"`
	ThreadID     string    `json:"thread_id,omitempty"`
	From         string    `json:"from"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Participants []string  `json:"participants,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
	IsRead       bool      `json:"is_read"`
}

func (e Email) ItemID() string       { return e.ID }
func (e Email) ItemKind() Kind       { return KindEmail }
func (e Email) Text() string         { return strings.TrimSpace(e.Subject + "\n" + e.Body) }
func (e Email) Timestamp() time.Time { return e.ReceivedAt }
func (e Email) People() []string     { return append([]string{e.From}, e.Participants...) }
func (e Email) ThreadRef() string    { return e.ThreadID }

// Notification is a record from the notification store
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Type      string            `json:"type"`
	Priority  string            `json:"priority"`
	Read      bool              `json:"read"`
	AIContext map[string]string `json:"ai_context,omitempty"`
	ThreadID  string            `json:"thread_id,omitempty"`
	EmailID   string            `json:"email_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Snapshot is a read-only view of a user's content at a point in time.
// The engine never mutates it.
type Snapshot struct {
	Threads  []Thread
	Messages []Message
	Emails   []Email
	Now      time.Time

	byThread map[string][]Message
	ids      map[string]struct{}
}

// NewSnapshot builds a snapshot and its lookup indexes
func NewSnapshot(threads []Thread, messages []Message, emails []Email, now time.Time) *Snapshot {
	s := &Snapshot{
		Threads:  threads,
		Messages: messages,
		Emails:   emails,
		Now:      now,
		byThread: make(map[string][]Message),
		ids:      make(map[string]struct{}, len(threads)+len(messages)+len(emails)),
	}

	for _, t := range threads {
		s.ids[t.ID] = struct{}{}
	}
	for _, e := range emails {
		s.ids[e.ID] = struct{}{}
	}
	for _, m := range messages {
		s.ids[m.ID] = struct{}{}
		s.byThread[m.ThreadID] = append(s.byThread[m.ThreadID], m)
	}
	for id := range s.byThread {
		msgs := s.byThread[id]
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		})
	}

	return s
}

// MessagesFor returns the messages of a thread, oldest first
func (s *Snapshot) MessagesFor(threadID string) []Message {
	return s.byThread[threadID]
}

// Has reports whether an item with the id exists in the snapshot
func (s *Snapshot) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Thread looks up a thread by id
func (s *Snapshot) Thread(id string) (Thread, bool) {
	for _, t := range s.Threads {
		if t.ID == id {
			return t, true
		}
	}
	return Thread{}, false
}

// Empty reports whether the snapshot has no content at all
func (s *Snapshot) Empty() bool {
	return len(s.Threads) == 0 && len(s.Messages) == 0 && len(s.Emails) == 0
}

// Fingerprint identifies the set of content ids in the snapshot. Adding or
// deleting any thread, message or email changes it.
func (s *Snapshot) Fingerprint() string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	d := xxhash.New()
	for _, id := range ids {
		_, _ = d.WriteString(id)
		_, _ = d.WriteString("\x00")
	}
	return strconv.FormatUint(d.Sum64(), 16) + "-" + strconv.Itoa(len(s.Messages))
}

// Items returns every thread, message and email as an Item
func (s *Snapshot) Items() []Item {
	items := make([]Item, 0, len(s.Threads)+len(s.Messages)+len(s.Emails))
	for _, t := range s.Threads {
		items = append(items, t)
	}
	for _, m := range s.Messages {
		items = append(items, m)
	}
	for _, e := range s.Emails {
		items = append(items, e)
	}
	return items
}
