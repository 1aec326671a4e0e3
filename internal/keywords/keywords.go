// Package keywords extracts frequency-ranked terms from résumé text.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// Limit is the number of keywords returned by Extract.
	Limit = 15
	// MinLimit is the smallest limit ExtractN accepts.
	MinLimit = 10
	// minTokenLength excludes tokens of this many runes or fewer.
	minTokenLength = 2
)

var reWord = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Extract returns up to Limit keywords ordered by descending frequency.
// Ties keep the order in which the words first appear in text.
func Extract(text string) []string {
	return ExtractN(text, Limit)
}

// ExtractN is Extract with a custom limit clamped to [MinLimit, Limit].
func ExtractN(text string, limit int) []string {
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > Limit {
		limit = Limit
	}

	counts := make(map[string]int)
	order := make([]string, 0)

	for _, token := range Tokens(text) {
		if _, ok := counts[token]; !ok {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}

	return order
}

// Tokens lowercases text and returns its word tokens with stopwords and
// short tokens removed, in document order.
func Tokens(text string) []string {
	out := make([]string, 0)

	text = strings.TrimSpace(text)
	if text == "" {
		return out
	}

	for _, token := range reWord.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(token)) <= minTokenLength {
			continue
		}
		if IsStopword(token) {
			continue
		}
		out = append(out, token)
	}

	return out
}

// IsStopword reports whether the lowercased word is in the stopword set.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
