package webserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutTemplate = "layout"

// templateSet holds one clone of the shared layout and partials per page
type templateSet struct {
	pages    map[string]*template.Template
	partials *template.Template
}

var funcMap = template.FuncMap{
	"menuURL": func(q recipe.BrowseQuery, page int) string {
		return "/menu?" + q.WithPage(page).Encode()
	},
	"htmxMenuURL": func(q recipe.BrowseQuery, page int) string {
		return "/htmx/menu?" + q.WithPage(page).Encode()
	},
	"join": func(sep string, elems []string) string {
		return strings.Join(elems, sep)
	},
	"year": func() int {
		return time.Now().Year()
	},
}

// parseTemplates parses the layout and partials once, then clones them for
// every page so each page may define its own content block.
func parseTemplates() (*templateSet, error) {
	base, err := template.New(layoutTemplate).Funcs(funcMap).ParseFS(templatesFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	set := &templateSet{pages: make(map[string]*template.Template, len(pages)), partials: base}
	for _, p := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(templatesFS, p); err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", p, err)
		}
		set.pages[strings.TrimSuffix(path.Base(p), ".html")] = clone
	}
	return set, nil
}

// renderPage renders a full page with the layout. Output is buffered so a
// template error still yields a clean 500.
func (s *WebServer) renderPage(w http.ResponseWriter, status int, name string, data interface{}) {
	t, ok := s.templates.pages[name]
	if !ok {
		s.logger.Error("Unknown page template", zap.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.execute(w, status, t, "layout.html", data)
}

// renderPartial renders an HTMX fragment
func (s *WebServer) renderPartial(w http.ResponseWriter, status int, name string, data interface{}) {
	s.execute(w, status, s.templates.partials, name, data)
}

func (s *WebServer) execute(w http.ResponseWriter, status int, t *template.Template, name string, data interface{}) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Failed to execute template", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
