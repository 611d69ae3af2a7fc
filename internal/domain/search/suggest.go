package search

import (
	"github.com/sahilm/fuzzy"
)

// Suggestion is a typeahead candidate with the positions of the matched
// characters in Text, for highlighting.
type Suggestion struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Matched []int  `json:"matched"`
}

type labelSource []string

func (s labelSource) String(i int) string { return s[i] }
func (s labelSource) Len() int            { return len(s) }

// Suggest ranks record labels against a partially typed query. Unlike
// Search it matches subsequences, which suits keystroke-by-keystroke input.
func (idx *Index[T]) Suggest(query string, limit int) []Suggestion {
	if query == "" || len(idx.labels) == 0 {
		return []Suggestion{}
	}

	matches := fuzzy.FindFrom(query, labelSource(idx.labels))
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, Suggestion{Index: m.Index, Text: m.Str, Matched: m.MatchedIndexes})
	}
	return out
}
