package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// FakeMealDB serves a fixed set of meals over TheMealDB's JSON API.
type FakeMealDB struct {
	Server *httptest.Server

	meals []recipe.Meal
	hits  atomic.Int64

	mu      sync.Mutex
	failing map[string]bool
}

// NewFakeMealDB starts a fake upstream serving meals. It is closed when the
// test finishes.
func NewFakeMealDB(t testing.TB, meals []recipe.Meal) *FakeMealDB {
	t.Helper()
	f := &FakeMealDB{meals: meals, failing: map[string]bool{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to configure the client with.
func (f *FakeMealDB) URL() string { return f.Server.URL }

// Hits counts the requests served so far.
func (f *FakeMealDB) Hits() int64 { return f.hits.Load() }

// FailLetter makes first-letter searches for letter answer 500.
func (f *FakeMealDB) FailLetter(letter string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[strings.ToLower(letter)] = true
}

func (f *FakeMealDB) serve(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	q := r.URL.Query()

	switch {
	case strings.HasSuffix(r.URL.Path, "/search.php") && q.Has("s"):
		term := strings.ToLower(q.Get("s"))
		f.writeMeals(w, f.match(func(m recipe.Meal) bool {
			return strings.Contains(strings.ToLower(m.Name), term)
		}))
	case strings.HasSuffix(r.URL.Path, "/search.php") && q.Has("f"):
		letter := strings.ToLower(q.Get("f"))
		f.mu.Lock()
		failing := f.failing[letter]
		f.mu.Unlock()
		if failing {
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
			return
		}
		f.writeMeals(w, f.match(func(m recipe.Meal) bool {
			return strings.HasPrefix(strings.ToLower(m.Name), letter)
		}))
	case strings.HasSuffix(r.URL.Path, "/filter.php"):
		category := q.Get("c")
		f.writeMeals(w, f.match(func(m recipe.Meal) bool { return m.InCategory(category) }))
	case strings.HasSuffix(r.URL.Path, "/lookup.php"):
		id := q.Get("i")
		f.writeMeals(w, f.match(func(m recipe.Meal) bool { return m.ID == id }))
	case strings.HasSuffix(r.URL.Path, "/random.php"):
		if len(f.meals) == 0 {
			f.writeMeals(w, nil)
			return
		}
		f.writeMeals(w, f.meals[:1])
	case strings.HasSuffix(r.URL.Path, "/list.php"):
		f.writeCategories(w)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeMealDB) match(keep func(recipe.Meal) bool) []recipe.Meal {
	var out []recipe.Meal
	for _, m := range f.meals {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (f *FakeMealDB) writeMeals(w http.ResponseWriter, meals []recipe.Meal) {
	type wire struct {
		ID           string `json:"idMeal"`
		Name         string `json:"strMeal"`
		Category     string `json:"strCategory"`
		Area         string `json:"strArea"`
		Instructions string `json:"strInstructions"`
		Thumbnail    string `json:"strMealThumb"`
	}
	body := struct {
		Meals []wire `json:"meals"`
	}{}
	for _, m := range meals {
		body.Meals = append(body.Meals, wire{
			ID:           m.ID,
			Name:         m.Name,
			Category:     m.Category,
			Area:         m.Area,
			Instructions: m.Instructions,
			Thumbnail:    m.Thumbnail,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (f *FakeMealDB) writeCategories(w http.ResponseWriter) {
	type entry struct {
		Category string `json:"strCategory"`
	}
	seen := map[string]bool{}
	body := struct {
		Meals []entry `json:"meals"`
	}{}
	for _, m := range f.meals {
		if m.Category == "" || seen[m.Category] {
			continue
		}
		seen[m.Category] = true
		body.Meals = append(body.Meals, entry{Category: m.Category})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
