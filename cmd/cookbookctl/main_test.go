package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/pagination"
)

func newTestCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	log = zap.NewNop()
	jsonOutput = false
	catalogFile = ""

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSearch_FileCatalog(t *testing.T) {
	cmd, out := newTestCmd(t)
	catalogFile = writeCatalog(t, `[
		{"id": "1", "name": "Green Pea Soup", "image": "/soup.jpg"},
		{"id": "2", "name": "Lemon Tart", "image": "/tart.jpg"}
	]`)
	threshold = 0.3

	require.NoError(t, runSearch(cmd, []string{"soup"}))
	assert.Contains(t, out.String(), "Green Pea Soup")
	assert.NotContains(t, out.String(), "Lemon Tart")
}

func TestSearch_RejectsThreshold(t *testing.T) {
	cmd, _ := newTestCmd(t)
	threshold = 2

	assert.Error(t, runSearch(cmd, []string{"soup"}))
}

func TestValidate_Embedded(t *testing.T) {
	cmd, out := newTestCmd(t)

	require.NoError(t, runValidate(cmd, nil))
	assert.Contains(t, out.String(), "embedded")
}

func TestValidate_ReportsProblems(t *testing.T) {
	cmd, out := newTestCmd(t)
	catalogFile = writeCatalog(t, `[
		{"id": "1", "name": "Soup", "image": "/soup.jpg"},
		{"id": "1", "name": "Stew", "image": "/stew.jpg"},
		{"id": "3", "name": "", "image": "/x.jpg"}
	]`)

	err := runValidate(cmd, nil)
	require.Error(t, err)

	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, exitCodeFailure, ee.code)
	assert.Contains(t, out.String(), "unique")
	assert.Contains(t, out.String(), "required")
}

func TestPrintMenuResult_FailedExitsNonZero(t *testing.T) {
	cmd, out := newTestCmd(t)
	result := &inbound.MenuResult{
		Query:   recipe.NewBrowseQuery("", "", 1),
		Mode:    "alphabet",
		Status:  inbound.StatusFailed,
		Message: "Failed to load recipes. Please try again later.",
		Page:    pagination.New(0, 9, 1),
	}

	err := printMenuResult(cmd, result)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, out.String(), "Failed to load recipes")
}

func TestPrintMenuResult_JSON(t *testing.T) {
	cmd, out := newTestCmd(t)
	jsonOutput = true
	result := &inbound.MenuResult{
		Query:  recipe.NewBrowseQuery("fish", "", 1),
		Mode:   "name",
		Status: inbound.StatusOK,
		Meals:  []recipe.Meal{{ID: "1", Name: "Fish pie"}},
		Page:   pagination.New(1, 9, 1),
	}

	require.NoError(t, printMenuResult(cmd, result))
	assert.Contains(t, out.String(), `"name": "Fish pie"`)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"degraded","version":"1.0.0","checks":[{"name":"mealdb","status":"degraded","message":"timeout"}]}`))
	}))
	defer srv.Close()

	cmd, out := newTestCmd(t)
	healthURL = srv.URL
	healthTimeout = 5 * time.Second

	healthExpect = "healthy"
	err := runHealth(cmd, nil)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, exitCodeFailure, ee.code)
	assert.Contains(t, out.String(), "mealdb")

	healthExpect = "degraded"
	assert.NoError(t, runHealth(cmd, nil))

	healthExpect = "sideways"
	assert.Error(t, runHealth(cmd, nil))
}
