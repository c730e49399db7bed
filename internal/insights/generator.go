// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tejzpr/thread-mcp/internal/ai"
	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/logging"
	"github.com/tejzpr/thread-mcp/internal/metrics"
)

const systemPrompt = `You analyze a user's conversation threads and emails and surface actionable insights.
Only reference thread, message and email ids that appear in the input.
Confidence is a number between 0 and 1.`

// GeneratorConfig wires a Generator
type GeneratorConfig struct {
	Options   Options
	Rules     []Rule
	Completer ai.Completer
	// AITimeout bounds the single AI attempt. Default: 20 seconds.
	AITimeout time.Duration
	// PromptMessages caps the messages per thread included in the AI prompt
	PromptMessages int
	Logger         logging.Logger
	Metrics        *metrics.Metrics
}

// Generator produces insights for a snapshot, preferring the AI path
// and falling back to the heuristic rules
type Generator struct {
	opts           Options
	rules          []Rule
	completer      ai.Completer
	timeout        time.Duration
	promptMessages int
	logger         logging.Logger
	metrics        *metrics.Metrics
}

// NewGenerator creates a generator. A nil Completer means heuristics only.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules(cfg.Options)
	}
	if cfg.Completer == nil {
		cfg.Completer = ai.Unavailable{}
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 20 * time.Second
	}
	if cfg.PromptMessages <= 0 {
		cfg.PromptMessages = 10
	}
	return &Generator{
		opts:           cfg.Options,
		rules:          cfg.Rules,
		completer:      cfg.Completer,
		timeout:        cfg.AITimeout,
		promptMessages: cfg.PromptMessages,
		logger:         logging.OrDiscard(cfg.Logger),
		metrics:        cfg.Metrics,
	}
}

// Generate never fails: AI problems degrade to the heuristic result
func (g *Generator) Generate(ctx context.Context, s *content.Snapshot) Result {
	res := Result{GeneratedAt: s.Now, Fingerprint: s.Fingerprint()}
	if s.Empty() {
		res.Source = SourceHeuristic
		res.Insights = []Insight{}
		g.record(res)
		return res
	}

	list, reason := g.generateAI(ctx, s)
	if reason == FallbackNone {
		res.Source = SourceAI
		res.Insights = list
	} else {
		res.Source = SourceHeuristic
		res.Fallback = reason
		res.Insights = g.Heuristic(s)
	}
	g.record(res)
	return res
}

// Heuristic runs every rule and returns the ranked, reference-checked union
func (g *Generator) Heuristic(s *content.Snapshot) []Insight {
	out := []Insight{}
	if s.Empty() {
		return out
	}
	for _, rule := range g.rules {
		out = append(out, rule.Apply(s)...)
	}
	out = DropStale(out, s)
	SortInsights(out)
	return out
}

func (g *Generator) record(res Result) {
	g.metrics.RecordGeneration(string(res.Source))
	if res.Fallback != FallbackNone {
		g.metrics.RecordFallback(string(res.Fallback))
	}
	for _, ins := range res.Insights {
		g.metrics.RecordInsight(string(ins.Kind))
	}
}

func (g *Generator) generateAI(ctx context.Context, s *content.Snapshot) ([]Insight, FallbackReason) {
	if !g.completer.Available() {
		return nil, FallbackUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.completer.GenerateObject(callCtx, ai.ObjectRequest{
		System: systemPrompt,
		Prompt: g.buildPrompt(s),
		Schema: InsightSchema(),
	})
	if err != nil {
		reason := ReasonFor(err)
		g.logger.WithFields(logging.Fields{
			"reason": string(reason),
			"error":  err.Error(),
		}).Warn("ai insight generation failed, using heuristics")
		return nil, reason
	}

	var resp aiInsightResponse
	if err := ai.DecodeObject(raw, InsightSchema(), &resp); err != nil {
		g.logger.WithField("error", err.Error()).Warn("ai insight response malformed, using heuristics")
		return nil, FallbackMalformed
	}

	list := make([]Insight, 0, len(resp.Insights))
	for _, a := range resp.Insights {
		list = append(list, a.toInsight(s.Now))
	}
	kept := DropStale(list, s)
	if dropped := len(list) - len(kept); dropped > 0 {
		g.logger.WithField("dropped", dropped).Debug("dropped ai insights with unknown references")
	}
	SortInsights(kept)
	return kept, FallbackNone
}

// ReasonFor maps an AI call error to the fallback reason it causes
func ReasonFor(err error) FallbackReason {
	switch {
	case errors.Is(err, ai.ErrUnavailable):
		return FallbackUnavailable
	case errors.Is(err, ai.ErrBreakerOpen):
		return FallbackBreakerOpen
	case errors.Is(err, ai.ErrMalformed):
		return FallbackMalformed
	default:
		return FallbackError
	}
}

func (g *Generator) buildPrompt(s *content.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current time: %s\n\n", s.Now.UTC().Format(time.RFC3339))

	b.WriteString("Threads:\n")
	for _, t := range s.Threads {
		fmt.Fprintf(&b, "- id=%s name=%q kind=%s updated=%s\n", t.ID, t.Name, t.Kind, t.UpdatedAt.UTC().Format(time.RFC3339))
		msgs := s.MessagesFor(t.ID)
		if len(msgs) > g.promptMessages {
			msgs = msgs[len(msgs)-g.promptMessages:]
		}
		for _, m := range msgs {
			fmt.Fprintf(&b, "  - message id=%s from=%s at=%s: %s\n", m.ID, senderLabel(m), m.CreatedAt.UTC().Format(time.RFC3339), preview(m.Content, 280))
		}
	}

	if len(s.Emails) > 0 {
		b.WriteString("\nEmails:\n")
		for _, e := range s.Emails {
			fmt.Fprintf(&b, "- id=%s from=%s subject=%q read=%t: %s\n", e.ID, e.From, e.Subject, e.IsRead, preview(e.Body, 280))
		}
	}
	return b.String()
}

// InsightSchema is the structured response shape requested from the model
func InsightSchema() ai.Schema {
	kinds := make([]string, 0, len(ValidKinds()))
	for _, k := range ValidKinds() {
		kinds = append(kinds, string(k))
	}
	priorities := make([]string, 0, 4)
	for _, p := range content.ValidPriorities() {
		priorities = append(priorities, string(p))
	}
	str := &ai.Field{Type: ai.TypeString}

	return ai.Schema{
		Name: "insights",
		Fields: []ai.Field{{
			Name:     "insights",
			Type:     ai.TypeArray,
			Required: true,
			Items: &ai.Field{Type: ai.TypeObject, Fields: []ai.Field{
				{Name: "type", Type: ai.TypeString, Required: true, Enum: kinds},
				{Name: "title", Type: ai.TypeString, Required: true},
				{Name: "description", Type: ai.TypeString, Required: true},
				{Name: "confidence", Type: ai.TypeNumber, Required: true, Bounded: true, Min: 0, Max: 1},
				{Name: "priority", Type: ai.TypeString, Required: true, Enum: priorities},
				{Name: "thread_ids", Type: ai.TypeArray, Items: str},
				{Name: "message_id", Type: ai.TypeString},
				{Name: "email_id", Type: ai.TypeString},
				{Name: "keywords", Type: ai.TypeArray, Items: str},
				{Name: "actions", Type: ai.TypeArray, Items: str},
				{Name: "reasoning", Type: ai.TypeString},
			}},
		}},
	}
}

type aiInsight struct {
	Type        Kind             `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Confidence  float64          `json:"confidence"`
	Priority    content.Priority `json:"priority"`
	ThreadIDs   []string         `json:"thread_ids"`
	MessageID   string           `json:"message_id"`
	EmailID     string           `json:"email_id"`
	Keywords    []string         `json:"keywords"`
	Actions     []string         `json:"actions"`
	Reasoning   string           `json:"reasoning"`
}

type aiInsightResponse struct {
	Insights []aiInsight `json:"insights"`
}

func (a aiInsight) toInsight(now time.Time) Insight {
	return Insight{
		ID:          uuid.New().String(),
		Kind:        a.Type,
		Title:       a.Title,
		Description: a.Description,
		Confidence:  content.ClampScore(a.Confidence),
		Priority:    a.Priority,
		Actions:     a.Actions,
		Keywords:    a.Keywords,
		ThreadIDs:   a.ThreadIDs,
		MessageID:   a.MessageID,
		EmailID:     a.EmailID,
		Reasoning:   a.Reasoning,
		CreatedAt:   now,
	}
}
