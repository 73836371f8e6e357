package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vbonduro/portfolio/internal/app"
	"github.com/vbonduro/portfolio/internal/config"
	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
)

// build-time override (e.g. -ldflags "-X main.version=1.2.3")
var version = "dev"

var (
	flagAPIURL   string
	flagCategory string
	flagNoColor  bool
)

func main() {
	root := newRootCmd()
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio gallery front-end",
		Long: strings.TrimSpace(`
Portfolio serves the public gallery of an interior architect and its admin
dialog, backed by the remote portfolio API. Settings come from environment
variables (LISTEN_ADDR, API_URL, CACHE_BACKEND, ...).`),
		Version: version,
	}
	cmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Portfolio API base URL (overrides API_URL)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWorksCmd())
	cmd.AddCommand(newCategoriesCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
}

func newWorksCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "works",
		Short: "List the works, optionally of one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			a.Engine.Refresh(cmd.Context())
			renderWorks(cmd.OutOrStdout(), a.Works(cmd.Context(), flagCategory), !flagNoColor)
			return nil
		},
	}
	c.Flags().StringVar(&flagCategory, "category", strconv.Itoa(domain.AllCategoryID), `Only list works of this category ("2" or "filter-2")`)
	c.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable table styling")
	return c
}

func newCategoriesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "categories",
		Short: "List the categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			_, cats := a.Engine.Refresh(cmd.Context())
			renderCategories(cmd.OutOrStdout(), cats, !flagNoColor)
			return nil
		},
	}
	c.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable table styling")
	return c
}

// setup loads the configuration and builds the application.
func setup() (*app.App, func(), error) {
	cfg := config.Load()
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close application", "error", err)
		}
		closeLog()
	}
	slog.Debug("application ready", "api_url", cfg.APIURL, "cache_backend", cfg.CacheBackend)
	return a, cleanup, nil
}
