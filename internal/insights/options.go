// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import "time"

// Confidence holds the fixed per-rule confidence constants.
// They are configuration, not computed probabilities.
type Confidence struct {
	ForgottenThread       float64
	TrendingTopic         float64
	ActionNeeded          float64
	KnowledgeGap          float64
	ConnectionOpportunity float64
}

// Options tunes the rule set, extractor and connector
type Options struct {
	ForgottenDays       int
	StaleDays           int
	TrendingWindow      time.Duration
	TrendingMinMessages int
	ActionWindowDays    int
	GapMin              int
	GapMax              int
	ConnectionMinShared int
	KeywordMinLength    int
	TopKeywords         int
	MinRelevance        float64
	MaxConnections      int
	Vocabulary          []string
	Confidence          Confidence
}

// DefaultVocabulary is the fixed topic vocabulary used by the gap and connection rules
var DefaultVocabulary = []string{
	"project", "meeting", "deadline", "budget", "design",
	"development", "marketing", "sales", "strategy", "planning",
}

// DefaultOptions returns the stock thresholds
func DefaultOptions() Options {
	return Options{
		ForgottenDays:       3,
		StaleDays:           7,
		TrendingWindow:      24 * time.Hour,
		TrendingMinMessages: 5,
		ActionWindowDays:    2,
		GapMin:              2,
		GapMax:              4,
		ConnectionMinShared: 2,
		KeywordMinLength:    4,
		TopKeywords:         5,
		MinRelevance:        0.3,
		MaxConnections:      5,
		Vocabulary:          append([]string(nil), DefaultVocabulary...),
		Confidence: Confidence{
			ForgottenThread:       0.85,
			TrendingTopic:         0.92,
			ActionNeeded:          0.88,
			KnowledgeGap:          0.70,
			ConnectionOpportunity: 0.75,
		},
	}
}
