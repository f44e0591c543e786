package keywords

import (
	"sort"
	"strings"
)

// stopwords filtered out of keyword extraction. Covers the common English
// function words that dominate user questions.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "can": {}, "do": {}, "does": {}, "for": {}, "from": {},
	"get": {}, "has": {}, "have": {}, "how": {}, "i": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {},
	"tell": {}, "that": {}, "the": {}, "their": {}, "there": {}, "this": {},
	"to": {}, "was": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"who": {}, "why": {}, "will": {}, "with": {}, "would": {}, "you": {}, "your": {},
}

// Extract returns up to n keywords from text, ranked by frequency and then
// by first appearance. Stopwords and single characters are dropped.
func Extract(text string, n int) []string {
	if n <= 0 {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	position := 0

	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,;:!?()[]{}\"'`")
		if len(word) < 2 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		if _, seen := counts[word]; !seen {
			firstSeen[word] = position
		}
		counts[word]++
		position++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}

	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

// Compress reduces text to its top n keywords joined with spaces, used to
// shorten a query before web search. Returns the trimmed original text if
// no keywords survive filtering.
func Compress(text string, n int) string {
	extracted := Extract(text, n)
	if len(extracted) == 0 {
		return strings.TrimSpace(text)
	}
	return strings.Join(extracted, " ")
}
