// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeywordCount is a token and how often it occurred
type KeywordCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Tokenize lower-cases text and splits it on anything that is not a letter or digit
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ExtractKeywords returns the k most frequent tokens of at least minLen runes.
// Ties keep first-encountered order. k <= 0 returns every token.
func ExtractKeywords(texts []string, minLen, k int) []KeywordCount {
	counts := make(map[string]int)
	var order []string

	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			if utf8.RuneCountInString(tok) < minLen {
				continue
			}
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	result := make([]KeywordCount, 0, len(order))
	for _, tok := range order {
		result = append(result, KeywordCount{Token: tok, Count: counts[tok]})
	}

	// stable sort keeps first-seen order for equal counts
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if k > 0 && len(result) > k {
		result = result[:k]
	}
	return result
}

// Tokens returns just the token strings of a keyword list
func Tokens(kws []KeywordCount) []string {
	out := make([]string, len(kws))
	for i, kw := range kws {
		out[i] = kw.Token
	}
	return out
}

// TopicsIn returns the vocabulary terms mentioned in any of the texts, in vocabulary order
func TopicsIn(texts []string, vocabulary []string) []string {
	var topics []string
	for _, term := range vocabulary {
		needle := strings.ToLower(term)
		for _, text := range texts {
			if strings.Contains(strings.ToLower(text), needle) {
				topics = append(topics, term)
				break
			}
		}
	}
	return topics
}

// intersect returns the elements of a that are also in b, in a's order
func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
