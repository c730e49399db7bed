// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/tejzpr/thread-mcp/internal/content"
)

// activeKeywords caps the keyword set extracted from the open thread
const activeKeywords = 10

// Connector finds content related to the thread the user has open
type Connector struct {
	opts   Options
	scorer Scorer
}

// NewConnector creates a connector. A nil scorer uses DefaultScorer.
func NewConnector(opts Options, scorer Scorer) *Connector {
	if scorer == nil {
		scorer = DefaultScorer(opts.TrendingWindow)
	}
	return &Connector{opts: opts, scorer: scorer}
}

// threadDoc scores a thread by its name and all of its messages
type threadDoc struct {
	content.Thread
	text   string
	people []string
}

func (d threadDoc) Text() string     { return d.text }
func (d threadDoc) People() []string { return d.people }

func newThreadDoc(s *content.Snapshot, t content.Thread) threadDoc {
	people := append([]string(nil), t.Participants...)
	for _, m := range s.MessagesFor(t.ID) {
		if m.SenderID != "" {
			people = append(people, m.SenderID)
		}
	}
	return threadDoc{
		Thread: t,
		text:   strings.Join(threadTexts(s, t), "\n"),
		people: people,
	}
}

// Connect returns the connections for activeThreadID, best first.
// The result is rebuilt from scratch on every call.
func (c *Connector) Connect(s *content.Snapshot, activeThreadID string) []Connection {
	out := []Connection{}
	active, ok := s.Thread(activeThreadID)
	if !ok {
		return out
	}

	var texts []string
	for _, m := range s.MessagesFor(active.ID) {
		texts = append(texts, m.Content)
	}
	keywords := Tokens(ExtractKeywords(texts, c.opts.KeywordMinLength, activeKeywords))
	if len(keywords) == 0 {
		return out
	}
	ctx := ScoreContext{
		Keywords: keywords,
		People:   newThreadDoc(s, active).people,
		Now:      s.Now,
	}

	candidates := make([]content.Item, 0, len(s.Threads)+len(s.Emails))
	for _, t := range s.Threads {
		if t.ID != active.ID {
			candidates = append(candidates, newThreadDoc(s, t))
		}
	}
	for _, e := range s.Emails {
		candidates = append(candidates, e)
	}

	for _, item := range candidates {
		shared := SharedKeywords(item.Text(), keywords)
		if len(shared) == 0 {
			continue
		}
		relevance := content.ClampScore(c.scorer.Score(item, ctx))
		if relevance < c.opts.MinRelevance {
			continue
		}
		out = append(out, Connection{
			ID:         uuid.New().String(),
			SourceID:   active.ID,
			TargetID:   item.ItemID(),
			TargetKind: item.ItemKind(),
			Title:      connectionTitle(item),
			Reason:     fmt.Sprintf("Shares %s with %s", strings.Join(shared, ", "), active.Name),
			Relevance:  relevance,
			Priority:   priorityForRelevance(relevance),
			Keywords:   shared,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	if c.opts.MaxConnections > 0 && len(out) > c.opts.MaxConnections {
		out = out[:c.opts.MaxConnections]
	}
	return out
}

func connectionTitle(item content.Item) string {
	switch v := item.(type) {
	case threadDoc:
		return v.Name
	case content.Email:
		return v.Subject
	}
	return item.ItemID()
}

func priorityForRelevance(r float64) content.Priority {
	switch {
	case r >= 0.7:
		return content.PriorityHigh
	case r >= 0.5:
		return content.PriorityMedium
	}
	return content.PriorityLow
}
