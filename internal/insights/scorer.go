// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"strings"
	"time"

	"github.com/tejzpr/thread-mcp/internal/content"
)

// ScoreContext is what a candidate item is scored against
type ScoreContext struct {
	Keywords []string
	People   []string
	Now      time.Time
}

// Scorer assigns a relevance in [0, 1] to a candidate item
type Scorer interface {
	Name() string
	Score(item content.Item, ctx ScoreContext) float64
}

// RecencyScorer favours items inside a recent window
type RecencyScorer struct {
	Window time.Duration
}

func (RecencyScorer) Name() string { return "recency" }

// Score is 1.0 inside the window, 0.5 within a week, 0.1 otherwise
func (s RecencyScorer) Score(item content.Item, ctx ScoreContext) float64 {
	window := s.Window
	if window <= 0 {
		window = 24 * time.Hour
	}
	age := ctx.Now.Sub(item.Timestamp())
	switch {
	case age <= window:
		return 1.0
	case age <= 7*24*time.Hour:
		return 0.5
	}
	return 0.1
}

// KeywordOverlapScorer measures how many context keywords the item mentions
type KeywordOverlapScorer struct{}

func (KeywordOverlapScorer) Name() string { return "keywords" }

func (KeywordOverlapScorer) Score(item content.Item, ctx ScoreContext) float64 {
	if len(ctx.Keywords) == 0 {
		return 0
	}
	shared := SharedKeywords(item.Text(), ctx.Keywords)
	return content.ClampScore(float64(len(shared)) / float64(len(ctx.Keywords)))
}

// ParticipantOverlapScorer measures shared people between item and context
type ParticipantOverlapScorer struct{}

func (ParticipantOverlapScorer) Name() string { return "participants" }

func (ParticipantOverlapScorer) Score(item content.Item, ctx ScoreContext) float64 {
	if len(ctx.People) == 0 {
		return 0
	}
	people := make(map[string]struct{})
	for _, p := range item.People() {
		people[strings.ToLower(p)] = struct{}{}
	}
	n := 0
	for _, p := range ctx.People {
		if _, ok := people[strings.ToLower(p)]; ok {
			n++
		}
	}
	return content.ClampScore(float64(n) / float64(len(ctx.People)))
}

// Weighted pairs a scorer with its weight
type Weighted struct {
	Scorer Scorer
	Weight float64
}

// WeightedScorer is the weighted mean of several strategies
type WeightedScorer struct {
	Parts []Weighted
}

// DefaultScorer combines keyword overlap, recency and participants
func DefaultScorer(window time.Duration) WeightedScorer {
	return WeightedScorer{Parts: []Weighted{
		{Scorer: KeywordOverlapScorer{}, Weight: 0.6},
		{Scorer: RecencyScorer{Window: window}, Weight: 0.25},
		{Scorer: ParticipantOverlapScorer{}, Weight: 0.15},
	}}
}

func (WeightedScorer) Name() string { return "weighted" }

func (w WeightedScorer) Score(item content.Item, ctx ScoreContext) float64 {
	var total, weights float64
	for _, p := range w.Parts {
		if p.Weight <= 0 {
			continue
		}
		total += p.Weight * p.Scorer.Score(item, ctx)
		weights += p.Weight
	}
	if weights == 0 {
		return 0
	}
	return content.ClampScore(total / weights)
}

// SharedKeywords returns the keywords that occur as tokens in text
func SharedKeywords(text string, keywords []string) []string {
	tokens := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		tokens[tok] = struct{}{}
	}
	var shared []string
	for _, kw := range keywords {
		if _, ok := tokens[strings.ToLower(kw)]; ok {
			shared = append(shared, kw)
		}
	}
	return shared
}
