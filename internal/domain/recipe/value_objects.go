package recipe

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alchemorsel/cookbook/pkg/pagination"
)

// DifficultyLevel is the free-form difficulty label of a catalog recipe.
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

// Label returns the difficulty for display, capitalised.
func (d DifficultyLevel) Label() string {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(first)) + strings.ToLower(s[size:])
}

// AllCategories is the category sentinel meaning "no category filter".
const AllCategories = "All"

// DefaultCategories is used for the category selector when the remote
// category list cannot be fetched.
var DefaultCategories = []string{
	"Beef", "Breakfast", "Chicken", "Dessert", "Goat", "Lamb", "Miscellaneous",
	"Pasta", "Pork", "Seafood", "Side", "Starter", "Vegan", "Vegetarian",
}

// URL parameter names carrying browse state.
const (
	ParamTerm     = "s"
	ParamCategory = "c"
	ParamPage     = "page"
)

// BrowseMode is how the remote catalog is queried for a BrowseQuery.
type BrowseMode int

const (
	// ModeAlphabet sweeps every first letter and merges the results.
	ModeAlphabet BrowseMode = iota
	// ModeName searches by name, optionally narrowed to a category.
	ModeName
	// ModeCategory lists a whole category.
	ModeCategory
)

func (m BrowseMode) String() string {
	switch m {
	case ModeName:
		return "name"
	case ModeCategory:
		return "category"
	default:
		return "alphabet"
	}
}

// BrowseQuery is the search and filter state of a remote catalog view.
// It is rebuilt from the request URL on every navigation.
type BrowseQuery struct {
	Term     string `json:"term,omitempty" form:"s"`
	Category string `json:"category,omitempty" form:"c"`
	Page     int    `json:"page" form:"page"`
}

// ParseBrowseQuery reads s, c and page from URL values.
func ParseBrowseQuery(values url.Values) BrowseQuery {
	return NewBrowseQuery(values.Get(ParamTerm), values.Get(ParamCategory), pagination.ParseNumber(values.Get(ParamPage)))
}

// NewBrowseQuery normalises raw browse state.
func NewBrowseQuery(term, category string, page int) BrowseQuery {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, AllCategories) {
		category = AllCategories
	}
	if page < 1 {
		page = 1
	}
	return BrowseQuery{
		Term:     strings.TrimSpace(term),
		Category: category,
		Page:     page,
	}
}

// HasCategory reports whether a category filter is selected.
func (q BrowseQuery) HasCategory() bool {
	return q.Category != "" && q.Category != AllCategories
}

// Mode selects the retrieval mode for the query.
func (q BrowseQuery) Mode() BrowseMode {
	switch {
	case q.Term != "":
		return ModeName
	case q.HasCategory():
		return ModeCategory
	default:
		return ModeAlphabet
	}
}

// WithPage returns a copy of q pointing at page n.
func (q BrowseQuery) WithPage(n int) BrowseQuery {
	q.Page = n
	return q
}

// Values encodes q as URL values. The term and the sentinel category are
// omitted when empty; the page is always written.
func (q BrowseQuery) Values() url.Values {
	values := url.Values{}
	if q.Term != "" {
		values.Set(ParamTerm, q.Term)
	}
	if q.HasCategory() {
		values.Set(ParamCategory, q.Category)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	values.Set(ParamPage, strconv.Itoa(page))
	return values
}

// Encode renders q as a query string.
func (q BrowseQuery) Encode() string {
	return q.Values().Encode()
}
