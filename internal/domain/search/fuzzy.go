// Package search implements approximate matching over in-memory record
// collections.
//
// A record matches a query when some field contains a substring within a
// bounded number of edits of the query. The score of a record is the
// smallest edits/len(query) ratio across its fields, so 0 is an exact
// substring hit and 1 means nothing of the query survived. Records whose
// score is at most the configured threshold are returned best first.
package search

import (
	"sort"
	"strings"
)

// DefaultThreshold matches the tolerance used by the recipe listing pages.
const DefaultThreshold = 0.3

// Field names one searchable property of T.
type Field[T any] struct {
	Name   string
	Values func(T) []string
}

// Schema describes how records of T are searched.
type Schema[T any] struct {
	// Label is the display text used for suggestions.
	Label  func(T) string
	Fields []Field[T]
}

// Options tune an Index.
type Options struct {
	// Threshold in [0,1]; lower is stricter.
	Threshold float64
	// Keys restricts matching to the named fields. Empty means all fields.
	Keys []string
}

// Result is one matched record.
type Result[T any] struct {
	Item  T
	Index int
	Score float64
}

// Index is an immutable search index over a record slice. It is safe for
// concurrent use.
type Index[T any] struct {
	items     []T
	labels    []string
	fields    [][][]rune
	threshold float64
}

// NewIndex builds an index over items. The items slice is not copied and
// must not be modified afterwards.
func NewIndex[T any](items []T, schema Schema[T], opts Options) *Index[T] {
	threshold := opts.Threshold
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}

	selected := selectFields(schema.Fields, opts.Keys)

	idx := &Index[T]{
		items:     items,
		labels:    make([]string, len(items)),
		fields:    make([][][]rune, len(items)),
		threshold: threshold,
	}

	for i, item := range items {
		if schema.Label != nil {
			idx.labels[i] = schema.Label(item)
		}
		for _, f := range selected {
			for _, v := range f.Values(item) {
				if n := normalize(v); n != "" {
					idx.fields[i] = append(idx.fields[i], []rune(n))
				}
			}
		}
	}

	return idx
}

func selectFields[T any](fields []Field[T], keys []string) []Field[T] {
	if len(keys) == 0 {
		return fields
	}
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[strings.ToLower(k)] = true
	}
	var out []Field[T]
	for _, f := range fields {
		if wanted[strings.ToLower(f.Name)] {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of indexed records.
func (idx *Index[T]) Len() int { return len(idx.items) }

// Threshold returns the tolerance the index was built with.
func (idx *Index[T]) Threshold() float64 { return idx.threshold }

// Search returns the records matching query. A blank query returns every
// record in original order with a zero score.
func (idx *Index[T]) Search(query string) []Result[T] {
	q := []rune(normalize(query))
	if len(q) == 0 {
		results := make([]Result[T], len(idx.items))
		for i, item := range idx.items {
			results[i] = Result[T]{Item: item, Index: i}
		}
		return results
	}

	var results []Result[T]
	for i, item := range idx.items {
		score, ok := idx.score(q, i)
		if ok && score <= idx.threshold {
			results = append(results, Result[T]{Item: item, Index: i, Score: score})
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score < results[b].Score
	})
	return results
}

// Items is Search without scores.
func (idx *Index[T]) Items(query string) []T {
	results := idx.Search(query)
	items := make([]T, len(results))
	for i, r := range results {
		items[i] = r.Item
	}
	return items
}

func (idx *Index[T]) score(q []rune, i int) (float64, bool) {
	if len(idx.fields[i]) == 0 {
		return 0, false
	}
	best := len(q)
	for _, text := range idx.fields[i] {
		if d := substringDistance(q, text); d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	return float64(best) / float64(len(q)), true
}

// substringDistance is the edit distance between pattern and the substring
// of text closest to it (Sellers' algorithm: free leading and trailing text).
func substringDistance(pattern, text []rune) int {
	m := len(pattern)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}
	best := prev[m]

	for j := 1; j <= len(text); j++ {
		cur[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == text[j-1] {
				cost = 0
			}
			cur[i] = min(prev[i-1]+cost, prev[i]+1, cur[i-1]+1)
		}
		if cur[m] < best {
			best = cur[m]
			if best == 0 {
				return 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}
