package webserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

const siteName = "Green Spoon"

// layout is embedded by every page view
type layout struct {
	SiteName   string
	Title      string
	Nav        string
	LiveReload bool
}

type homePage struct {
	layout
	Featured []recipe.Recipe
}

type recipesPage struct {
	layout
	Query   string
	Recipes []recipe.Recipe
	Total   int
}

type recipePage struct {
	layout
	Recipe *recipe.Recipe
	Share  recipe.SharePayload
}

type menuPage struct {
	layout
	Result     *inbound.MenuResult
	Categories []string
}

type mealPage struct {
	layout
	Meal  *recipe.Meal
	Share recipe.SharePayload
}

type errorPage struct {
	layout
	Status  int
	Message string
}

// shareFailure is reported by the browser when neither the share sheet nor
// the clipboard worked.
type shareFailure struct {
	Method string `json:"method" validate:"required,oneof=share clipboard"`
	Error  string `json:"error" validate:"max=512"`
	URL    string `json:"url" validate:"omitempty,url,max=2048"`
}

var validate = validator.New()

func (s *WebServer) layout(title, nav string) layout {
	return layout{
		SiteName:   siteName,
		Title:      title,
		Nav:        nav,
		LiveReload: s.liveReload != nil && s.config.Server.EnableLiveReload,
	}
}

func (s *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	featured, err := s.catalog.FeaturedRecipes(r.Context(), s.config.Catalog.FeaturedCount)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderPage(w, http.StatusOK, "home", homePage{
		layout:   s.layout("Home", "home"),
		Featured: featured,
	})
}

func (s *WebServer) handleRecipes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get(recipe.ParamTerm))
	list, err := s.catalog.SearchRecipes(r.Context(), query)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderPage(w, http.StatusOK, "recipes", recipesPage{
		layout:  s.layout("Recipes", "recipes"),
		Query:   list.Query,
		Recipes: list.Recipes,
		Total:   list.Total,
	})
}

func (s *WebServer) handleRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.catalog.GetRecipe(r.Context(), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	share, err := recipe.NewSharePayload(rec.Name, s.pageURL(r, "/recipes/"+id))
	if err != nil {
		s.logger.Warn("Failed to build share payload", zap.String("recipe_id", id), zap.Error(err))
	}
	s.renderPage(w, http.StatusOK, "recipe", recipePage{
		layout: s.layout(rec.Name, "recipes"),
		Recipe: rec,
		Share:  share,
	})
}

func (s *WebServer) handleRecipeShare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.catalog.GetRecipe(r.Context(), id)
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	share, err := recipe.NewSharePayload(rec.Name, s.pageURL(r, "/recipes/"+id))
	if err != nil {
		s.writeJSONError(w, r, errors.Wrap(err, "failed to build share payload"))
		return
	}
	writeJSON(w, http.StatusOK, share)
}

func (s *WebServer) handleMenu(w http.ResponseWriter, r *http.Request) {
	q := recipe.ParseBrowseQuery(r.URL.Query())
	result, err := s.menu.Browse(r.Context(), q)
	if err != nil {
		// client went away
		return
	}
	categories := append([]string{recipe.AllCategories}, s.menu.Categories(r.Context())...)
	s.renderPage(w, http.StatusOK, "menu", menuPage{
		layout:     s.layout("Menu", "menu"),
		Result:     result,
		Categories: categories,
	})
}

// handleHTMXMenu renders the result fragment. A request superseded by a
// newer one for the same view gets 204 so the page keeps the newer result.
func (s *WebServer) handleHTMXMenu(w http.ResponseWriter, r *http.Request) {
	key := viewKey(w, r)
	ctx, gen, release := s.tracker.Begin(r.Context(), key)
	defer release()

	q := recipe.ParseBrowseQuery(r.URL.Query())
	result, err := s.menu.Browse(ctx, q)
	if err != nil || !s.tracker.Commit(key, gen) {
		if r.Context().Err() != nil {
			return
		}
		if s.metrics != nil {
			s.metrics.Superseded()
		}
		s.logger.Debug("Menu request superseded", zap.String("view", key), zap.Uint64("generation", gen))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("HX-Push-Url", "/menu?"+result.Query.Encode())
	s.renderPartial(w, http.StatusOK, "menu_results", result)
}

func (s *WebServer) handleRandomMeal(w http.ResponseWriter, r *http.Request) {
	meal, err := s.menu.RandomMeal(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/menu/"+meal.ID, http.StatusSeeOther)
}

func (s *WebServer) handleMeal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	meal, err := s.menu.GetMeal(r.Context(), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	share, err := recipe.NewSharePayload(meal.Name, s.pageURL(r, "/menu/"+id))
	if err != nil {
		s.logger.Warn("Failed to build share payload", zap.String("meal_id", id), zap.Error(err))
	}
	s.renderPage(w, http.StatusOK, "meal", mealPage{
		layout: s.layout(meal.Name, "menu"),
		Meal:   meal,
		Share:  share,
	})
}

func (s *WebServer) handleShareFailure(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)

	var report shareFailure
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		http.Error(w, "invalid report", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(report); err != nil {
		http.Error(w, "invalid report", http.StatusBadRequest)
		return
	}

	s.logger.Warn("Share failed in browser",
		zap.String("method", report.Method),
		zap.String("error", report.Error),
		zap.String("url", report.URL),
		zap.String("user_agent", r.UserAgent()),
	)
	if s.metrics != nil {
		s.metrics.ShareFailed(report.Method)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *WebServer) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusNotFound, "error", errorPage{
		layout:  s.layout("Not found", ""),
		Status:  http.StatusNotFound,
		Message: "Page not found",
	})
}

// renderError maps an application error onto an error page
func (s *WebServer) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	s.renderPage(w, status, "error", errorPage{
		layout:  s.layout(http.StatusText(status), ""),
		Status:  status,
		Message: message,
	})
}

func (s *WebServer) writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.Wrap(err, "Request failed")
	if appErr.StatusCode() >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, appErr.StatusCode(), errors.ToErrorResponse(appErr, chimw.GetReqID(r.Context())))
}

func errorStatus(err error) (int, string) {
	switch errors.GetCode(err) {
	case errors.CodeRecipeNotFound:
		return http.StatusNotFound, "Recipe not found"
	case errors.CodeMealNotFound:
		return http.StatusNotFound, "Meal not found"
	case errors.CodeUpstreamUnavailable:
		return http.StatusBadGateway, "Failed to load recipe. Please try again later."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again later."
	}
}

// pageURL is the absolute address of path as the visitor reached it. A
// configured server.base_url pins the origin; otherwise it follows the
// request, honouring the first X-Forwarded-Proto and X-Forwarded-Host.
func (s *WebServer) pageURL(r *http.Request, path string) string {
	if base := strings.TrimRight(s.config.Server.BaseURL, "/"); base != "" {
		return base + path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	host := r.Host
	if fwd := firstHeaderValue(r, "X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return (&url.URL{Scheme: scheme, Host: host, Path: path}).String()
}

func firstHeaderValue(r *http.Request, name string) string {
	v, _, _ := strings.Cut(r.Header.Get(name), ",")
	return strings.ToLower(strings.TrimSpace(v))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
