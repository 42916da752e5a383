package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/adapter"
	"github.com/amishk599/leadradar/internal/config"
	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/notifier"
	"github.com/amishk599/leadradar/internal/secrets"
	"github.com/amishk599/leadradar/internal/signal"
	"github.com/amishk599/leadradar/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "leadradar",
	Short: "Lead-intent radar for target accounts",
	Long:  "leadradar watches target companies' job postings and turns hiring activity into scored buying-intent signals.",
	// Default to `start` so that `leadradar` with no args runs the daemon.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: LEADRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > LEADRADAR_CONFIG env var > "./config.yaml".
// An API key missing from both the file and the environment is looked up in the OS keychain.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("LEADRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.TheirStack.APIKey = secrets.ResolveAPIKey(cfg.TheirStack.APIKey)
	return cfg, nil
}

func setupLogger(dbg bool) *slog.Logger {
	return newLogger(os.Stdout, dbg)
}

func newLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildService wires the TheirStack adapter and the signal service from one config,
// so the key the service checks is the key the adapter sends.
func buildService(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *signal.Service {
	searcher := adapter.NewTheirStackAdapter(cfg.TheirStack.BaseURL, cfg.TheirStack.APIKey, httpClient)
	return signal.NewService(searcher, signal.Options{
		APIKey:         cfg.TheirStack.APIKey,
		Concurrency:    cfg.Ingest.Concurrency,
		RequestTimeout: cfg.TheirStack.Timeout,
	}, logger)
}

func openStore(cfg *config.Config) (*store.SQLStore, error) {
	s, err := store.Open(cfg.Store.Driver, cfg.Store.Path, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	return s, nil
}
