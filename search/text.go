package search

import "strings"

// Common words excluded when testing whether a chunk contains the query
// verbatim. Matching on these would boost nearly every document.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

const wordPunctuation = ".,!?;:'\"-()[]{}"

// significantWords lowercases, strips surrounding punctuation, and drops
// stop words.
func significantWords(text string) []string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, wordPunctuation))
		if cleaned == "" || stopWords[cleaned] {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

// containsAllQueryWords reports whether every significant query word appears
// somewhere in the document. A query with no significant words never matches.
func containsAllQueryWords(document, query string) bool {
	queryWords := significantWords(query)
	if len(queryWords) == 0 {
		return false
	}

	present := make(map[string]bool)
	for _, word := range significantWords(document) {
		present[word] = true
	}

	for _, word := range queryWords {
		if !present[word] {
			return false
		}
	}
	return true
}
