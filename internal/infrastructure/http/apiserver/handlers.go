package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/pkg/pagination"
)

// Handlers serves the catalog and menu resources
type Handlers struct {
	catalog inbound.CatalogService
	menu    inbound.MenuService
	logger  *zap.Logger
}

// NewHandlers creates the API handlers
func NewHandlers(catalog inbound.CatalogService, menu inbound.MenuService, logger *zap.Logger) *Handlers {
	return &Handlers{
		catalog: catalog,
		menu:    menu,
		logger:  logger,
	}
}

// RegisterRoutes registers the v1 resource routes
func (h *Handlers) RegisterRoutes(r *gin.RouterGroup) {
	recipes := r.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/suggest", h.SuggestRecipes)
		recipes.GET("/:id", h.GetRecipe)
	}

	meals := r.Group("/meals")
	{
		meals.GET("", h.BrowseMeals)
		meals.GET("/random", h.RandomMeal)
		meals.GET("/:id", h.GetMeal)
	}

	r.GET("/categories", h.ListCategories)
}

type searchRequest struct {
	Query string `form:"s" binding:"max=100"`
}

type suggestRequest struct {
	Query string `form:"q" binding:"required,max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=20"`
}

type browseRequest struct {
	Term     string `form:"s" binding:"max=100"`
	Category string `form:"c" binding:"max=50"`
	Page     string `form:"page"` // clamped like the web pages, never rejected
}

const defaultSuggestLimit = 5

// ListRecipes searches the static catalog
func (h *Handlers) ListRecipes(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(errors.NewValidationError(err.Error()))
		return
	}

	list, err := h.catalog.SearchRecipes(c.Request.Context(), req.Query)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   list,
	})
}

// SuggestRecipes returns typeahead suggestions
func (h *Handlers) SuggestRecipes(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(errors.NewValidationError(err.Error()))
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultSuggestLimit
	}

	suggestions, err := h.catalog.SuggestRecipes(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   suggestions,
	})
}

// GetRecipe returns one catalog recipe
func (h *Handlers) GetRecipe(c *gin.Context) {
	r, err := h.catalog.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   r,
	})
}

// BrowseMeals browses the remote catalog by name, category or letter sweep
func (h *Handlers) BrowseMeals(c *gin.Context) {
	var req browseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(errors.NewValidationError(err.Error()))
		return
	}

	q := recipe.NewBrowseQuery(req.Term, req.Category, pagination.ParseNumber(req.Page))
	result, err := h.menu.Browse(c.Request.Context(), q)
	if err != nil {
		// the client is gone
		h.logger.Debug("Browse abandoned", zap.Error(err))
		c.Abort()
		return
	}

	if result.Status == inbound.StatusFailed {
		c.JSON(http.StatusBadGateway, gin.H{
			"status": "error",
			"data":   result,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   result,
	})
}

// GetMeal returns one remote meal
func (h *Handlers) GetMeal(c *gin.Context) {
	meal, err := h.menu.GetMeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   meal,
	})
}

// RandomMeal returns a random remote meal
func (h *Handlers) RandomMeal(c *gin.Context) {
	meal, err := h.menu.RandomMeal(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   meal,
	})
}

// ListCategories lists the remote categories
func (h *Handlers) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   h.menu.Categories(c.Request.Context()),
	})
}
