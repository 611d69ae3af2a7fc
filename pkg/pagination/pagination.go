// Package pagination computes page slices and page-selector controls for
// result lists whose page number travels in the request URL.
package pagination

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of cards shown per page in remote catalog views.
const DefaultPageSize = 9

// Page describes one clamped page of a result list.
type Page struct {
	Number     int `json:"number"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Start      int `json:"-"`
	End        int `json:"-"`
}

// New clamps requested into [1, TotalPages] and computes the slice bounds.
// An empty list still has one (empty) page.
func New(total, size, requested int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return Page{
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
	}
}

// Slice returns the items that belong on page p.
func Slice[T any](items []T, p Page) []T {
	if p.Start >= len(items) {
		return []T{}
	}
	end := p.End
	if end > len(items) {
		end = len(items)
	}
	return items[p.Start:end]
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Prev returns the previous page number, staying on the first page.
func (p Page) Prev() int {
	if p.Number <= 1 {
		return 1
	}
	return p.Number - 1
}

// Next returns the next page number, staying on the last page.
func (p Page) Next() int {
	if p.Number >= p.TotalPages {
		return p.TotalPages
	}
	return p.Number + 1
}

// Control is one entry of a page selector: a page link or an ellipsis.
type Control struct {
	Page     int  `json:"page,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Controls lists the page selector entries for p. The first and last pages
// are always present, pages within window of the current one are shown
// contiguously, and a hole of more than one page becomes a single ellipsis.
// A hole of exactly one page shows that page instead.
func (p Page) Controls(window int) []Control {
	if window < 0 {
		window = 0
	}

	seen := map[int]bool{1: true, p.TotalPages: true}
	for n := p.Number - window; n <= p.Number+window; n++ {
		if n >= 1 && n <= p.TotalPages {
			seen[n] = true
		}
	}

	pages := make([]int, 0, len(seen))
	for n := range seen {
		pages = append(pages, n)
	}
	sort.Ints(pages)

	controls := make([]Control, 0, len(pages)+2)
	for i, n := range pages {
		if i > 0 {
			switch gap := n - pages[i-1]; {
			case gap == 2:
				controls = append(controls, p.link(n-1))
			case gap > 2:
				controls = append(controls, Control{Ellipsis: true})
			}
		}
		controls = append(controls, p.link(n))
	}
	return controls
}

func (p Page) link(n int) Control {
	return Control{Page: n, Current: n == p.Number}
}

// ParseNumber reads a page number from a URL parameter. Anything missing,
// malformed or below one is page 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
