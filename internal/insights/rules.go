// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tejzpr/thread-mcp/internal/content"
)

// Rule is one heuristic that turns a snapshot into insights.
// Rules share no state and may run in any order.
type Rule interface {
	Name() string
	Apply(s *content.Snapshot) []Insight
}

// DefaultRules returns the five built-in rules
func DefaultRules(opts Options) []Rule {
	return []Rule{
		ForgottenThreadRule{opts: opts},
		TrendingTopicRule{opts: opts},
		ActionNeededRule{opts: opts},
		KnowledgeGapRule{opts: opts},
		ConnectionOpportunityRule{opts: opts},
	}
}

func newInsight(s *content.Snapshot, kind Kind, priority content.Priority, confidence float64) Insight {
	return Insight{
		ID:         uuid.New().String(),
		Kind:       kind,
		Priority:   priority,
		Confidence: content.ClampScore(confidence),
		CreatedAt:  s.Now,
	}
}

func threadTexts(s *content.Snapshot, t content.Thread) []string {
	msgs := s.MessagesFor(t.ID)
	texts := make([]string, 0, len(msgs)+1)
	texts = append(texts, t.Name)
	for _, m := range msgs {
		texts = append(texts, m.Content)
	}
	return texts
}

// ForgottenThreadRule surfaces threads with messages that went quiet
type ForgottenThreadRule struct {
	opts Options
}

func (ForgottenThreadRule) Name() string { return string(KindForgottenThread) }

func (r ForgottenThreadRule) Apply(s *content.Snapshot) []Insight {
	var out []Insight
	for _, t := range s.Threads {
		msgs := s.MessagesFor(t.ID)
		if len(msgs) == 0 {
			continue
		}
		in := ClassifyInactivity(t.UpdatedAt, s.Now, r.opts.ForgottenDays, r.opts.StaleDays)
		if !in.Forgotten {
			continue
		}

		ins := newInsight(s, KindForgottenThread, in.Priority, r.opts.Confidence.ForgottenThread)
		ins.Title = fmt.Sprintf("%s has gone quiet", t.Name)
		ins.Description = fmt.Sprintf("No activity in %s for %d days across %d messages.", t.Name, in.Days, len(msgs))
		ins.ThreadIDs = []string{t.ID}
		ins.Keywords = Tokens(ExtractKeywords(threadTexts(s, t), r.opts.KeywordMinLength, r.opts.TopKeywords))
		ins.Actions = []string{"Send a follow-up", "Archive the thread"}
		ins.Reasoning = fmt.Sprintf("last update %d days ago (threshold %d, escalates after %d)", in.Days, r.opts.ForgottenDays, r.opts.StaleDays)
		out = append(out, ins)
	}
	return out
}

// TrendingTopicRule surfaces threads with a burst of recent messages
type TrendingTopicRule struct {
	opts Options
}

func (TrendingTopicRule) Name() string { return string(KindTrendingTopic) }

func (r TrendingTopicRule) Apply(s *content.Snapshot) []Insight {
	var out []Insight
	cutoff := s.Now.Add(-r.opts.TrendingWindow)
	for _, t := range s.Threads {
		var recent []string
		for _, m := range s.MessagesFor(t.ID) {
			if !m.CreatedAt.Before(cutoff) && !m.CreatedAt.After(s.Now) {
				recent = append(recent, m.Content)
			}
		}
		if len(recent) < r.opts.TrendingMinMessages {
			continue
		}

		ins := newInsight(s, KindTrendingTopic, content.PriorityHigh, r.opts.Confidence.TrendingTopic)
		ins.Title = fmt.Sprintf("%s is trending", t.Name)
		ins.Description = fmt.Sprintf("%d messages in %s during the last %s.", len(recent), t.Name, r.opts.TrendingWindow)
		ins.ThreadIDs = []string{t.ID}
		ins.Keywords = Tokens(ExtractKeywords(recent, r.opts.KeywordMinLength, r.opts.TopKeywords))
		ins.Actions = []string{"Catch up on the discussion", "Summarize the thread"}
		ins.Reasoning = fmt.Sprintf("%d recent messages >= %d", len(recent), r.opts.TrendingMinMessages)
		out = append(out, ins)
	}
	return out
}

// ActionNeededRule surfaces recent threads with unanswered questions or requests
type ActionNeededRule struct {
	opts Options
}

func (ActionNeededRule) Name() string { return string(KindActionNeeded) }

func (r ActionNeededRule) Apply(s *content.Snapshot) []Insight {
	var out []Insight
	for _, t := range s.Threads {
		if DaysBetween(t.UpdatedAt, s.Now) > r.opts.ActionWindowDays {
			continue
		}
		msgs := s.MessagesFor(t.ID)
		var latest *content.Message
		for i := len(msgs) - 1; i >= 0; i-- {
			if NeedsAction(msgs[i].Content) {
				latest = &msgs[i]
				break
			}
		}
		if latest == nil {
			continue
		}

		ins := newInsight(s, KindActionNeeded, content.PriorityUrgent, r.opts.Confidence.ActionNeeded)
		ins.Title = fmt.Sprintf("Response needed in %s", t.Name)
		ins.Description = fmt.Sprintf("%s: %q", senderLabel(*latest), preview(latest.Content, 120))
		ins.ThreadIDs = []string{t.ID}
		ins.MessageID = latest.ID
		ins.Keywords = Tokens(ExtractKeywords([]string{latest.Content}, r.opts.KeywordMinLength, r.opts.TopKeywords))
		ins.Actions = []string{"Reply", "Delegate", "Set a reminder"}
		ins.Reasoning = "message contains a question or request phrase"
		out = append(out, ins)
	}
	return out
}

// KnowledgeGapRule surfaces vocabulary topics mentioned a few times but never settled
type KnowledgeGapRule struct {
	opts Options
}

func (KnowledgeGapRule) Name() string { return string(KindKnowledgeGap) }

func (r KnowledgeGapRule) Apply(s *content.Snapshot) []Insight {
	var out []Insight
	for _, term := range r.opts.Vocabulary {
		needle := strings.ToLower(term)
		mentions := 0
		threadSet := make(map[string]struct{})
		var threadIDs []string
		for _, m := range s.Messages {
			if !strings.Contains(strings.ToLower(m.Content), needle) {
				continue
			}
			mentions++
			if _, ok := threadSet[m.ThreadID]; !ok && s.Has(m.ThreadID) {
				threadSet[m.ThreadID] = struct{}{}
				threadIDs = append(threadIDs, m.ThreadID)
			}
		}
		if mentions < r.opts.GapMin || mentions > r.opts.GapMax {
			continue
		}

		ins := newInsight(s, KindKnowledgeGap, content.PriorityMedium, r.opts.Confidence.KnowledgeGap)
		ins.Title = fmt.Sprintf("Limited context on %s", term)
		ins.Description = fmt.Sprintf("%q came up in %d messages without much detail.", term, mentions)
		ins.ThreadIDs = threadIDs
		ins.Keywords = []string{term}
		ins.Actions = []string{"Start a discussion", "Share documentation"}
		ins.Reasoning = fmt.Sprintf("%d mentions within [%d, %d]", mentions, r.opts.GapMin, r.opts.GapMax)
		out = append(out, ins)
	}
	return out
}

// ConnectionOpportunityRule surfaces thread pairs discussing the same topics
type ConnectionOpportunityRule struct {
	opts Options
}

func (ConnectionOpportunityRule) Name() string { return string(KindConnectionOpportunity) }

func (r ConnectionOpportunityRule) Apply(s *content.Snapshot) []Insight {
	topics := make([][]string, len(s.Threads))
	for i, t := range s.Threads {
		topics[i] = TopicsIn(threadTexts(s, t), r.opts.Vocabulary)
	}

	var out []Insight
	for i := 0; i < len(s.Threads); i++ {
		if len(topics[i]) == 0 {
			continue
		}
		for j := i + 1; j < len(s.Threads); j++ {
			if len(topics[j]) == 0 {
				continue
			}
			shared := intersect(topics[i], topics[j])
			if len(shared) < r.opts.ConnectionMinShared {
				continue
			}

			a, b := s.Threads[i], s.Threads[j]
			ins := newInsight(s, KindConnectionOpportunity, content.PriorityLow, r.opts.Confidence.ConnectionOpportunity)
			ins.Title = fmt.Sprintf("Connect %s and %s", a.Name, b.Name)
			ins.Description = fmt.Sprintf("Both threads discuss %s.", strings.Join(shared, ", "))
			ins.ThreadIDs = []string{a.ID, b.ID}
			ins.Keywords = shared
			ins.Actions = []string{"Cross-post a summary", "Introduce participants"}
			ins.Reasoning = fmt.Sprintf("%d shared topics >= %d", len(shared), r.opts.ConnectionMinShared)
			out = append(out, ins)
		}
	}
	return out
}

func senderLabel(m content.Message) string {
	if m.SenderName != "" {
		return m.SenderName
	}
	if m.SenderID != "" {
		return m.SenderID
	}
	return "Someone"
}

func preview(text string, max int) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max]) + "..."
}
