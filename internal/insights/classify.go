// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"strings"
	"time"

	"github.com/tejzpr/thread-mcp/internal/content"
)

// SentimentLabel is the outcome of keyword sentiment scoring
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

var (
	positiveWords = []string{"great", "good", "excellent", "thanks", "awesome", "love", "happy", "perfect"}
	negativeWords = []string{"bad", "issue", "problem", "wrong", "error", "fail", "concern", "delay"}
	actionPhrases = []string{"need", "can you", "please"}
)

// Sentiment compares substring hits of the positive and negative word lists. Ties are neutral.
func Sentiment(texts []string) SentimentLabel {
	var pos, neg int
	for _, text := range texts {
		lower := strings.ToLower(text)
		pos += countHits(lower, positiveWords)
		neg += countHits(lower, negativeWords)
	}

	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func countHits(lower string, words []string) int {
	n := 0
	for _, w := range words {
		n += strings.Count(lower, w)
	}
	return n
}

// NeedsAction flags text containing a question mark or a request phrase
func NeedsAction(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, phrase := range actionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// DaysBetween returns the whole number of days from last to now
func DaysBetween(last, now time.Time) int {
	if now.Before(last) {
		return 0
	}
	return int(now.Sub(last) / (24 * time.Hour))
}

// Inactivity is the forgotten-thread classification of a last-activity time
type Inactivity struct {
	Days      int
	Forgotten bool
	Priority  content.Priority
}

// ClassifyInactivity marks activity older than forgottenDays as forgotten (medium),
// escalating to high once it is older than staleDays
func ClassifyInactivity(last, now time.Time, forgottenDays, staleDays int) Inactivity {
	days := DaysBetween(last, now)
	in := Inactivity{Days: days}
	if days < forgottenDays {
		return in
	}
	in.Forgotten = true
	in.Priority = content.PriorityMedium
	if days > staleDays {
		in.Priority = content.PriorityHigh
	}
	return in
}

// ToneLabel is the register a piece of text is written in
type ToneLabel string

const (
	ToneUrgent  ToneLabel = "urgent"
	ToneFormal  ToneLabel = "formal"
	ToneCasual  ToneLabel = "casual"
	ToneNeutral ToneLabel = "neutral"
)

var (
	urgentMarkers = []string{"asap", "urgent", "immediately", "right away", "blocker", "!!"}
	formalMarkers = []string{"dear", "regards", "sincerely", "kindly", "please find"}
	casualMarkers = []string{"hey", "lol", "cool", "btw", "thx", ":)"}
)

// Tone infers the register of text from marker phrases. Urgency wins over register.
func Tone(text string) ToneLabel {
	lower := strings.ToLower(text)
	if countHits(lower, urgentMarkers) > 0 {
		return ToneUrgent
	}
	formal := countHits(lower, formalMarkers)
	casual := countHits(lower, casualMarkers)
	switch {
	case formal > casual:
		return ToneFormal
	case casual > formal:
		return ToneCasual
	}
	return ToneNeutral
}
