package apiserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/application/menu"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/search"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
	"github.com/alchemorsel/cookbook/pkg/pagination"
	"github.com/alchemorsel/cookbook/test/testutils"
)

type APIServerTestSuite struct {
	suite.Suite
	catalog *testutils.MockCatalogService
	menu    *testutils.MockMenuService
	server  *APIServer
	assert  *testutils.HTTPAssertions
}

func (suite *APIServerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *APIServerTestSuite) SetupTest() {
	logger := zap.NewNop()
	suite.catalog = new(testutils.MockCatalogService)
	suite.menu = new(testutils.MockMenuService)
	suite.assert = testutils.NewHTTPAssertions(suite.T())

	cfg := &config.Config{
		App:    config.AppConfig{Name: "Cookbook", Environment: "test"},
		Server: config.ServerConfig{Host: "127.0.0.1", APIPort: 8081},
		Monitoring: config.MonitoringConfig{
			EnableMetrics:   true,
			MetricsPath:     "/metrics",
			HealthCheckPath: "/health",
			ReadinessPath:   "/ready",
		},
		RateLimit: config.RateLimitConfig{Enable: true, RequestsPerMin: 600, BurstSize: 100},
	}

	suite.server = NewAPIServer(Dependencies{
		Config:  cfg,
		Logger:  logger,
		Catalog: suite.catalog,
		Menu:    suite.menu,
		Health:  healthcheck.New("test", logger),
		Metrics: monitoring.NewMetricsCollector(logger),
	})
}

func (suite *APIServerTestSuite) TearDownTest() {
	suite.catalog.AssertExpectations(suite.T())
	suite.menu.AssertExpectations(suite.T())
}

func (suite *APIServerTestSuite) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

func (suite *APIServerTestSuite) TestListRecipes() {
	list := &inbound.RecipeList{Query: "soup", Recipes: []recipe.Recipe{{ID: "1", Name: "Soup", Image: "/soup.jpg"}}, Total: 1}
	suite.catalog.On("SearchRecipes", mock.Anything, "soup").Return(list, nil)

	rec := suite.get("/api/v1/recipes?s=soup")

	suite.assert.StatusCode(rec, http.StatusOK)
	var body envelope[inbound.RecipeList]
	suite.assert.JSONResponse(rec, &body)
	suite.Equal("success", body.Status)
	suite.Equal(*list, body.Data)
	suite.assert.HasHeader(rec, "X-Request-ID")
}

func (suite *APIServerTestSuite) TestGetRecipe_NotFound() {
	suite.catalog.On("GetRecipe", mock.Anything, "missing").Return(nil, errors.NewRecipeNotFoundError("missing"))

	rec := suite.get("/api/v1/recipes/missing")

	suite.assert.StatusCode(rec, http.StatusNotFound)
	suite.assert.ErrorResponse(rec, string(errors.CodeRecipeNotFound))
}

func (suite *APIServerTestSuite) TestSuggestRecipes() {
	suite.catalog.On("SuggestRecipes", mock.Anything, "sou", 5).
		Return([]search.Suggestion{{Index: 0, Text: "Soup", Matched: []int{0, 1, 2}}}, nil)

	rec := suite.get("/api/v1/recipes/suggest?q=sou")
	suite.assert.StatusCode(rec, http.StatusOK)

	var body envelope[[]search.Suggestion]
	suite.assert.JSONResponse(rec, &body)
	suite.Require().Len(body.Data, 1)
	suite.Equal("Soup", body.Data[0].Text)
}

func (suite *APIServerTestSuite) TestSuggestRecipes_Validation() {
	rec := suite.get("/api/v1/recipes/suggest")
	suite.assert.StatusCode(rec, http.StatusBadRequest)
	suite.assert.ErrorResponse(rec, string(errors.CodeValidationFailed))

	rec = suite.get("/api/v1/recipes/suggest?q=a&limit=100")
	suite.assert.StatusCode(rec, http.StatusBadRequest)
}

func (suite *APIServerTestSuite) TestBrowseMeals() {
	q := recipe.NewBrowseQuery("chicken", "Seafood", 1)
	page := pagination.New(0, 9, 1)
	suite.menu.On("Browse", mock.Anything, q).Return(&inbound.MenuResult{
		Query:   q,
		Mode:    "name",
		Status:  inbound.StatusNotInCategory,
		Message: menu.NotInCategoryMessage("chicken", "Seafood"),
		Meals:   []recipe.Meal{},
		Page:    page,
	}, nil)

	rec := suite.get("/api/v1/meals?s=chicken&c=Seafood")

	suite.assert.StatusCode(rec, http.StatusOK)
	var body envelope[inbound.MenuResult]
	suite.assert.JSONResponse(rec, &body)
	suite.Equal(inbound.StatusNotInCategory, body.Data.Status)
	suite.Equal(`"chicken" is not available in the "Seafood" category.`, body.Data.Message)
}

func (suite *APIServerTestSuite) TestBrowseMeals_UpstreamFailure() {
	q := recipe.NewBrowseQuery("", "", 1)
	suite.menu.On("Browse", mock.Anything, q).Return(&inbound.MenuResult{
		Query:   q,
		Mode:    "alphabet",
		Status:  inbound.StatusFailed,
		Message: menu.MessageFailed,
		Meals:   []recipe.Meal{},
	}, nil)

	rec := suite.get("/api/v1/meals")

	suite.assert.StatusCode(rec, http.StatusBadGateway)
	var body envelope[inbound.MenuResult]
	suite.assert.JSONResponse(rec, &body)
	suite.Equal(menu.MessageFailed, body.Data.Message)
}

func (suite *APIServerTestSuite) TestBrowseMeals_InvalidPageClampsToFirst() {
	q := recipe.NewBrowseQuery("", "Beef", 1)
	suite.menu.On("Browse", mock.Anything, q).Return(&inbound.MenuResult{
		Query:  q,
		Mode:   "category",
		Status: inbound.StatusOK,
		Meals:  []recipe.Meal{{ID: "52874", Name: "Beef and Mustard Pie"}},
		Page:   pagination.New(1, 9, 1),
	}, nil)

	for _, raw := range []string{"-3", "0", "abc", ""} {
		rec := suite.get("/api/v1/meals?c=Beef&page=" + raw)
		suite.assert.StatusCode(rec, http.StatusOK)
		var body envelope[inbound.MenuResult]
		suite.assert.JSONResponse(rec, &body)
		suite.Equal(1, body.Data.Query.Page, "page=%q", raw)
	}
	suite.menu.AssertNumberOfCalls(suite.T(), "Browse", 4)
}

func (suite *APIServerTestSuite) TestMeals_RandomAndLookup() {
	suite.menu.On("RandomMeal", mock.Anything).Return(&recipe.Meal{ID: "52772", Name: "Teriyaki Chicken"}, nil)
	suite.menu.On("GetMeal", mock.Anything, "52772").Return(&recipe.Meal{ID: "52772", Name: "Teriyaki Chicken"}, nil)
	suite.menu.On("GetMeal", mock.Anything, "1").Return(nil, errors.NewUpstreamError(menu.UpstreamName, errors.NewInternalError("timeout")))

	rec := suite.get("/api/v1/meals/random")
	suite.assert.StatusCode(rec, http.StatusOK)

	rec = suite.get("/api/v1/meals/52772")
	suite.assert.StatusCode(rec, http.StatusOK)

	rec = suite.get("/api/v1/meals/1")
	suite.assert.StatusCode(rec, http.StatusBadGateway)
	suite.assert.ErrorResponse(rec, string(errors.CodeUpstreamUnavailable))
}

func (suite *APIServerTestSuite) TestCategories() {
	suite.menu.On("Categories", mock.Anything).Return([]string{"Beef", "Seafood"})

	rec := suite.get("/api/v1/categories")

	suite.assert.StatusCode(rec, http.StatusOK)
	var body envelope[[]string]
	suite.assert.JSONResponse(rec, &body)
	suite.Equal([]string{"Beef", "Seafood"}, body.Data)
}

func (suite *APIServerTestSuite) TestOpenAPI() {
	rec := suite.get("/api/v1/openapi.json")
	suite.assert.StatusCode(rec, http.StatusOK)

	var doc map[string]interface{}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
	suite.Equal("3.0.3", doc["openapi"])
	suite.Contains(doc["paths"], "/meals")

	rec = suite.get("/api/v1/openapi.yaml")
	suite.assert.StatusCode(rec, http.StatusOK)
	suite.Contains(rec.Body.String(), "openapi: 3.0.3")
}

func (suite *APIServerTestSuite) TestHealthAndUnknownRoute() {
	rec := suite.get("/live")
	suite.assert.StatusCode(rec, http.StatusOK)

	rec = suite.get("/health")
	suite.assert.StatusCode(rec, http.StatusOK)

	rec = suite.get("/nope")
	suite.assert.StatusCode(rec, http.StatusNotFound)
	suite.assert.ErrorResponse(rec, "NOT_FOUND")
}

func TestAPIServerTestSuite(t *testing.T) {
	suite.Run(t, new(APIServerTestSuite))
}
