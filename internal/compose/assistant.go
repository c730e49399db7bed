// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package compose suggests replies for a conversation.
package compose

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tejzpr/thread-mcp/internal/ai"
	"github.com/tejzpr/thread-mcp/internal/content"
	"github.com/tejzpr/thread-mcp/internal/insights"
	"github.com/tejzpr/thread-mcp/internal/logging"
)

const (
	systemPrompt = `You help a user reply to a conversation.
Suggest up to three short replies in the user's voice and name the tone of the latest message.`
	maxSuggestions = 3
)

// Suggestions is the outcome of one Suggest call
type Suggestions struct {
	Replies  []string                `json:"replies"`
	Tone     insights.ToneLabel      `json:"tone,omitempty"`
	Source   insights.Source         `json:"source,omitempty"`
	Fallback insights.FallbackReason `json:"fallback,omitempty"`
}

// Config wires an Assistant
type Config struct {
	Completer ai.Completer
	// Timeout bounds the AI attempt. Default: 20 seconds.
	Timeout time.Duration
	// Context is the number of trailing messages sent to the model. Default: 10.
	Context int
	Logger  logging.Logger
}

// Assistant produces reply suggestions, falling back to canned replies
type Assistant struct {
	completer ai.Completer
	timeout   time.Duration
	context   int
	logger    logging.Logger
}

// NewAssistant creates an assistant. A nil Completer means heuristics only.
func NewAssistant(cfg Config) *Assistant {
	if cfg.Completer == nil {
		cfg.Completer = ai.Unavailable{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Context <= 0 {
		cfg.Context = 10
	}
	return &Assistant{
		completer: cfg.Completer,
		timeout:   cfg.Timeout,
		context:   cfg.Context,
		logger:    logging.OrDiscard(cfg.Logger),
	}
}

// Suggest returns replies for the conversation. With no messages the
// result is empty and no model call is made.
func (a *Assistant) Suggest(ctx context.Context, messages []content.Message) Suggestions {
	msgs := make([]content.Message, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return Suggestions{Replies: []string{}}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	if len(msgs) > a.context {
		msgs = msgs[len(msgs)-a.context:]
	}

	if !a.completer.Available() {
		return a.heuristic(msgs, insights.FallbackUnavailable)
	}
	out, err := a.generateAI(ctx, msgs)
	if err != nil {
		reason := insights.ReasonFor(err)
		a.logger.WithFields(logging.Fields{
			"reason": string(reason),
			"error":  err.Error(),
		}).Warn("ai reply suggestion failed, using heuristics")
		return a.heuristic(msgs, reason)
	}
	return out
}

func (a *Assistant) generateAI(ctx context.Context, msgs []content.Message) (Suggestions, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.completer.GenerateObject(callCtx, ai.ObjectRequest{
		System: systemPrompt,
		Prompt: buildPrompt(msgs),
		Schema: ReplySchema(),
	})
	if err != nil {
		return Suggestions{}, err
	}

	var resp struct {
		Replies []string `json:"replies"`
		Tone    string   `json:"tone"`
	}
	if err := ai.DecodeObject(raw, ReplySchema(), &resp); err != nil {
		return Suggestions{}, err
	}

	replies := make([]string, 0, len(resp.Replies))
	for _, r := range resp.Replies {
		if r = strings.TrimSpace(r); r != "" {
			replies = append(replies, r)
		}
	}
	if len(replies) > maxSuggestions {
		replies = replies[:maxSuggestions]
	}
	return Suggestions{
		Replies: replies,
		Tone:    insights.ToneLabel(resp.Tone),
		Source:  insights.SourceAI,
	}, nil
}

func (a *Assistant) heuristic(msgs []content.Message, reason insights.FallbackReason) Suggestions {
	last := msgs[len(msgs)-1]
	tone := insights.Tone(last.Content)

	var replies []string
	switch {
	case strings.Contains(last.Content, "?"):
		replies = []string{
			"Let me check and get back to you.",
			"Yes, that works for me.",
			"Could you share a bit more detail?",
		}
	case insights.NeedsAction(last.Content):
		replies = []string{
			"On it, I will take care of this.",
			"Thanks, I will follow up shortly.",
		}
	default:
		replies = []string{
			"Thanks for the update!",
			"Sounds good.",
		}
	}
	if tone == insights.ToneUrgent {
		replies = append([]string{"Looking at this right now."}, replies...)
		replies = replies[:min(len(replies), maxSuggestions)]
	}

	return Suggestions{
		Replies:  replies,
		Tone:     tone,
		Source:   insights.SourceHeuristic,
		Fallback: reason,
	}
}

// ReplySchema is the structured response shape requested from the model
func ReplySchema() ai.Schema {
	tones := []string{
		string(insights.ToneUrgent),
		string(insights.ToneFormal),
		string(insights.ToneCasual),
		string(insights.ToneNeutral),
	}
	return ai.Schema{
		Name: "reply_suggestions",
		Fields: []ai.Field{
			{Name: "replies", Type: ai.TypeArray, Required: true, Items: &ai.Field{Type: ai.TypeString}},
			{Name: "tone", Type: ai.TypeString, Required: true, Enum: tones},
		},
	}
}

func buildPrompt(msgs []content.Message) string {
	var b strings.Builder
	b.WriteString("Conversation, oldest first:\n")
	for _, m := range msgs {
		name := m.SenderName
		if name == "" {
			name = m.SenderID
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, strings.TrimSpace(m.Content))
	}
	return b.String()
}
