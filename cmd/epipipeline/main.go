package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsih-artpark/epipipeline-v2/internal/config"
	"github.com/dsih-artpark/epipipeline-v2/internal/db"
	"github.com/dsih-artpark/epipipeline-v2/internal/logging"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
	"github.com/dsih-artpark/epipipeline-v2/internal/standardise"
)

// app is the state shared by every subcommand, built before any of them
// runs.
type app struct {
	configPath string
	logLevel   string
	jsonLogs   bool

	settings *config.Settings
	logger   *slog.Logger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "epipipeline",
		Short: "Line-list standardisation for disease surveillance",
		Long: `epipipeline cleans raw case line-lists: event dates are parsed and
repaired, patient fields mapped to fixed vocabularies and places of residence
resolved against the region hierarchy.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "settings YAML file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides settings)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonLogs, "json-logs", false, "log as JSON")

	rootCmd.AddCommand(createStandardiseCmd(a))
	rootCmd.AddCommand(createResolveCmd(a))
	rootCmd.AddCommand(createReconcileCmd(a))
	rootCmd.AddCommand(createRegionsCmd(a))
	rootCmd.AddCommand(createServeCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	s, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		s.LogLevel = a.logLevel
	}
	a.settings = s
	a.logger = logging.New(os.Stderr, s.LogLevel, a.jsonLogs)
	return nil
}

// loadIndex reads the region table from the configured CSV file, or from
// Postgres when no file is configured.
func (a *app) loadIndex(ctx context.Context) (*regions.Index, error) {
	defer logging.Timed(ctx, a.logger, "region load")()

	if path := a.settings.Regions.Path; path != "" {
		return regions.LoadCSV(path)
	}
	conn, err := db.Open(ctx, a.settings.Database.URL, a.settings.Database.MaxConnections)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return regions.LoadSQL(ctx, conn.DB)
}

func (a *app) newStandardiser(ctx context.Context, obs standardise.Observer) (*standardise.Standardiser, error) {
	idx, err := a.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := standardise.OptionsFromSettings(a.settings, time.Now())
	if err != nil {
		return nil, err
	}
	return standardise.New(idx, opts, obs, nil)
}
