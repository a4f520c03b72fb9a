// Command plangen generates and exports training plans against a local
// SQLite file, without the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"spartan/trainer/internal/config"
	"spartan/trainer/internal/repository/sqlite"
	"spartan/trainer/internal/service"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configDir string
	dbPath    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "plangen",
		Short:         "Generate and export periodized running plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configDir, "config", ".", "directory holding config.yaml")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite file (default sqlite.path from config)")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newZonesCmd(opts))
	root.AddCommand(newSessionsCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newImportCmd(opts))
	return root
}

// app is the service graph over one SQLite store.
type app struct {
	store    *sqlite.Store
	defaults service.Thresholds
	athletes service.AthleteService
	plans    service.PlanService
	exports  service.ExportService
}

func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	path := opts.dbPath
	if path == "" {
		path = cfg.SQLite.Path
	}
	if path == "" {
		return nil, errors.New("no database path: set --db or sqlite.path")
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	defaults := service.Thresholds{
		PaceSecPerKm: cfg.Planner.DefaultThresholdPaceSecPerKm,
		HrBpm:        cfg.Planner.DefaultThresholdHrBpm,
	}
	return &app{
		store:    store,
		defaults: defaults,
		athletes: service.NewAthleteService(store.Athletes(), defaults),
		plans:    service.NewPlanService(store.Athletes(), store.Plans(), store.Sessions(), defaults),
		exports:  service.NewExportService(store.Plans(), store.Sessions(), store.ExportJobs(), nil, cfg.Export.URLExpiry),
	}, nil
}

func (a *app) Close() error { return a.store.Close() }
