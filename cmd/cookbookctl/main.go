// Package main provides cookbookctl, a command line tool for searching the
// bundled catalog, validating catalog files and browsing the remote catalog
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/pkg/logger"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

var (
	// Global flags
	verbose    bool
	jsonOutput bool
	configPath string

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "cookbookctl",
	Short:         "Search, validate and browse cookbook recipes",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		log, err = logger.New(logger.Config{
			Level:       level,
			Format:      "console",
			Development: verbose,
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file")

	rootCmd.AddCommand(searchCmd, validateCmd, browseCmd, healthCmd)
}

// exitError carries a specific exit code out of a command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if ee, ok := err.(*exitError); ok {
			os.Exit(ee.code)
		}
		os.Exit(exitCodeError)
	}
	os.Exit(exitCodeSuccess)
}
