package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/application/menu"
	"github.com/alchemorsel/cookbook/internal/application/recipe"
	domain "github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/search"
	"github.com/alchemorsel/cookbook/internal/infrastructure/catalog"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/mealdb"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
)

var (
	catalogFile string
	threshold   float64

	browseTerm     string
	browseCategory string
	browsePage     int

	healthURL     string
	healthTimeout time.Duration
	healthExpect  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search the recipe catalog",
	Long: `Searches recipe names and ingredients in the bundled catalog, or in the
catalog file given with --file. A lower threshold is stricter.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a recipe catalog file",
	Long: `Checks that every recipe has an id, a name and an image and that ids are
unique. Without --file the bundled catalog is checked.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the remote recipe catalog",
	Long: `Queries the remote recipe service the same way the menu page does: by
name when --term is set, by category when only --category is set, and
by sweeping every first letter otherwise.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check a running server's health endpoint",
	Long: `Fetches a health endpoint and exits 0 when the reported status is at
least as good as --expect, 1 when it is worse and 2 on errors.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	searchCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "catalog file (default: bundled catalog)")
	searchCmd.Flags().Float64Var(&threshold, "threshold", search.DefaultThreshold, "match tolerance between 0 and 1")

	validateCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "catalog file (default: bundled catalog)")

	browseCmd.Flags().StringVarP(&browseTerm, "term", "s", "", "search meals by name")
	browseCmd.Flags().StringVarP(&browseCategory, "category", "c", domain.AllCategories, "restrict to a category")
	browseCmd.Flags().IntVarP(&browsePage, "page", "p", 1, "page number")

	healthCmd.Flags().StringVar(&healthURL, "url", "http://localhost:8080/health", "health endpoint URL")
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 10*time.Second, "request timeout")
	healthCmd.Flags().StringVar(&healthExpect, "expect", string(healthcheck.StatusHealthy), "expected status: healthy, degraded, unhealthy")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("--threshold must be between 0 and 1")
	}

	repo, err := catalog.Open(catalogFile, log)
	if err != nil {
		return err
	}
	service := recipe.NewCatalogService(repo, threshold, log)

	list, err := service.SearchRecipes(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, list)
	}

	if list.Total == 0 {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("No recipes match %q.", list.Query)))
		return nil
	}

	rows := make([][]string, 0, len(list.Recipes))
	for _, r := range list.Recipes {
		rows = append(rows, []string{r.ID, r.Name, r.PrepTimeOrDefault(), r.Difficulty.Label()})
	}
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d recipes match %q", list.Total, list.Query)))
	printTable(out, []string{"ID", "Name", "Prep", "Difficulty"}, rows)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	source := catalog.EmbeddedSource
	var (
		recipes []domain.Recipe
		err     error
	)
	if catalogFile != "" {
		source = catalogFile
		recipes, err = catalog.ReadFile(catalogFile)
	} else {
		recipes, err = catalog.Parse(catalog.Embedded(), source)
	}

	out := cmd.OutOrStdout()
	if err != nil {
		var problems errors.ValidationErrors
		if !stderrors.As(err, &problems) {
			return &exitError{code: exitCodeFailure, err: err}
		}
		if jsonOutput {
			_ = printJSON(out, problems)
		} else {
			fmt.Fprintln(out, failStyle.Render(fmt.Sprintf("%s is invalid", source)))
			rows := make([][]string, 0, len(problems))
			for _, p := range problems {
				rows = append(rows, []string{p.Field, p.Tag, p.Message})
			}
			printTable(out, []string{"Field", "Rule", "Problem"}, rows)
		}
		return &exitError{code: exitCodeFailure, err: fmt.Errorf("%d problems in %s", len(problems), source)}
	}

	if jsonOutput {
		return printJSON(out, map[string]interface{}{"source": source, "recipes": len(recipes), "valid": true})
	}
	fmt.Fprintf(out, "%s %s (%d recipes)\n", okStyle.Render("valid"), source, len(recipes))
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	client, err := mealdb.NewClient(mealdb.Config{
		BaseURL:           cfg.MealDB.BaseURL,
		Timeout:           cfg.MealDB.Timeout,
		RequestsPerSecond: cfg.MealDB.RequestsPerSecond,
		Burst:             cfg.MealDB.Burst,
	}, log)
	if err != nil {
		return err
	}
	service := menu.NewService(client, menu.Config{
		PageSize:         cfg.Menu.PageSize,
		SweepConcurrency: cfg.Menu.SweepConcurrency,
		PaginationWindow: cfg.Menu.PaginationWindow,
	}, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := service.Browse(ctx, domain.NewBrowseQuery(browseTerm, browseCategory, browsePage))
	if err != nil {
		return err
	}
	return printMenuResult(cmd, result)
}

func printMenuResult(cmd *cobra.Command, result *inbound.MenuResult) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := printJSON(out, result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "%s %s  %s\n",
			titleStyle.Render("Menu"),
			statusStyle(string(result.Status)).Render(string(result.Status)),
			mutedStyle.Render(fmt.Sprintf("mode=%s page %d/%d, %d meals", result.Mode, result.Page.Number, result.Page.TotalPages, result.Page.Total)),
		)
		if result.Message != "" {
			fmt.Fprintln(out, result.Message)
		}
		if len(result.Meals) > 0 {
			rows := make([][]string, 0, len(result.Meals))
			for _, m := range result.Meals {
				rows = append(rows, []string{m.ID, m.Name, m.Category, m.Area})
			}
			printTable(out, []string{"ID", "Name", "Category", "Area"}, rows)
		}
		if len(result.FailedLetters) > 0 {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%d letters failed to load", len(result.FailedLetters))))
		}
	}

	if result.Status == inbound.StatusFailed {
		return &exitError{code: exitCodeFailure, err: fmt.Errorf("%s", result.Message)}
	}
	return nil
}

// healthRank orders statuses from best to worst
var healthRank = map[healthcheck.Status]int{
	healthcheck.StatusHealthy:   0,
	healthcheck.StatusDegraded:  1,
	healthcheck.StatusUnhealthy: 2,
}

type healthReport struct {
	Status  healthcheck.Status `json:"status"`
	Version string             `json:"version"`
	Checks  []struct {
		Name    string             `json:"name"`
		Status  healthcheck.Status `json:"status"`
		Message string             `json:"message"`
	} `json:"checks"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	expected, ok := healthRank[healthcheck.Status(healthExpect)]
	if !ok {
		return fmt.Errorf("--expect must be one of healthy, degraded, unhealthy")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	var report healthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return fmt.Errorf("invalid health response (HTTP %d): %w", resp.StatusCode, err)
	}
	log.Debug("Health response", zap.String("url", healthURL), zap.Int("status_code", resp.StatusCode))

	out := cmd.OutOrStdout()
	if jsonOutput {
		_ = printJSON(out, report)
	} else {
		fmt.Fprintf(out, "%s %s\n", statusStyle(string(report.Status)).Render(string(report.Status)), mutedStyle.Render(report.Version))
		for _, c := range report.Checks {
			fmt.Fprintf(out, "  %-10s %s %s\n", c.Name, statusStyle(string(c.Status)).Render(string(c.Status)), mutedStyle.Render(c.Message))
		}
	}

	rank, known := healthRank[report.Status]
	if !known || rank > expected {
		return &exitError{code: exitCodeFailure, err: fmt.Errorf("status %s is worse than %s", report.Status, healthExpect)}
	}
	return nil
}
