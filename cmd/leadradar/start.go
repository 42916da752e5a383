package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/config"
	"github.com/amishk599/leadradar/internal/filter"
	"github.com/amishk599/leadradar/internal/poller"
	"github.com/amishk599/leadradar/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the polling daemon",
	Long:  "Start the scheduler daemon; blocks until SIGINT/SIGTERM. Only one daemon may run per store.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

// lockPath places the instance lock next to the sqlite file, or in the temp dir for postgres.
func lockPath(cfg *config.Config) string {
	if cfg.Store.Driver == "sqlite" {
		return cfg.Store.Path + ".lock"
	}
	return filepath.Join(os.TempDir(), "leadradar.lock")
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	companies := cfg.EnabledCompanies()
	logger.Info("config loaded",
		"interval", cfg.PollingInterval.String(),
		"companies", len(companies),
		"min_strength", cfg.Filters.MinStrength,
		"store", cfg.Store.Driver,
	)
	if len(companies) == 0 {
		logger.Error("no companies to poll")
		os.Exit(1)
	}
	if cfg.TheirStack.APIKey == "" {
		logger.Warn("TheirStack API key not configured; every cycle will fail until it is set (leadradar key set)")
	}

	lock := flock.New(lockPath(cfg))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring instance lock: %w", err)
	}
	if !locked {
		logger.Error("another leadradar daemon is already running", "lock", lock.Path())
		os.Exit(1)
	}
	defer lock.Unlock()

	signalStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer signalStore.Close()

	httpClient := newHTTPClient()
	p := poller.NewSignalPoller(
		companies,
		buildService(cfg, httpClient, logger),
		signalStore,
		filter.NewStrengthFilter(cfg.Filters.MinStrength, cfg.Filters.ExcludeCompanies),
		setupNotifier(cfg, httpClient, logger),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(p, cfg.PollingInterval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
