// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"time"

	"github.com/tejzpr/thread-mcp/internal/content"
)

// Kind is the type of an insight
type Kind string

const (
	KindForgottenThread       Kind = "forgotten_thread"
	KindTrendingTopic         Kind = "trending_topic"
	KindActionNeeded          Kind = "action_needed"
	KindKnowledgeGap          Kind = "knowledge_gap"
	KindConnectionOpportunity Kind = "connection_opportunity"
	KindPattern               Kind = "pattern"
	KindSuggestion            Kind = "suggestion"
	KindSummary               Kind = "summary"
	KindPrediction            Kind = "prediction"
)

// ValidKinds returns all insight kinds
func ValidKinds() []Kind {
	return []Kind{
		KindForgottenThread,
		KindTrendingTopic,
		KindActionNeeded,
		KindKnowledgeGap,
		KindConnectionOpportunity,
		KindPattern,
		KindSuggestion,
		KindSummary,
		KindPrediction,
	}
}

// IsValidKind checks if a kind is one of the known values
func IsValidKind(k Kind) bool {
	for _, valid := range ValidKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// Insight is a derived observation about a content collection.
// Confidence is always on the 0.0-1.0 scale.
type Insight struct {
	ID          string           `json:"id"`
	Kind        Kind             `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Confidence  float64          `json:"confidence"`
	Priority    content.Priority `json:"priority"`
	Actions     []string         `json:"actions,omitempty"`
	Keywords    []string         `json:"keywords,omitempty"`
	ThreadIDs   []string         `json:"thread_ids,omitempty"`
	MessageID   string           `json:"message_id,omitempty"`
	EmailID     string           `json:"email_id,omitempty"`
	Reasoning   string           `json:"reasoning,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// References returns every content id the insight points at
func (i Insight) References() []string {
	refs := make([]string, 0, len(i.ThreadIDs)+2)
	refs = append(refs, i.ThreadIDs...)
	if i.MessageID != "" {
		refs = append(refs, i.MessageID)
	}
	if i.EmailID != "" {
		refs = append(refs, i.EmailID)
	}
	return refs
}

// Connection links the open thread to another content item
type Connection struct {
	ID         string           `json:"id"`
	SourceID   string           `json:"source_thread_id"`
	TargetID   string           `json:"target_id"`
	TargetKind content.Kind     `json:"target_kind"`
	Title      string           `json:"title"`
	Reason     string           `json:"reason"`
	Relevance  float64          `json:"relevance"`
	Priority   content.Priority `json:"priority"`
	Keywords   []string         `json:"keywords,omitempty"`
}

// Source reports where a generation result came from
type Source string

const (
	SourceAI        Source = "ai"
	SourceHeuristic Source = "heuristic"
)

// FallbackReason says why the AI path was not used
type FallbackReason string

const (
	FallbackNone        FallbackReason = ""
	FallbackUnavailable FallbackReason = "unavailable"
	FallbackError       FallbackReason = "error"
	FallbackMalformed   FallbackReason = "malformed"
	FallbackBreakerOpen FallbackReason = "breaker_open"
)

// Result is the output of one generation cycle
type Result struct {
	Insights    []Insight      `json:"insights"`
	Source      Source         `json:"source"`
	Fallback    FallbackReason `json:"fallback,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	// Fingerprint is the content fingerprint the result was generated from
	Fingerprint string         `json:"-"`
}
