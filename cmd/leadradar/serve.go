package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/httpapi"
	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the signals HTTP API",
	Long:  "Serves POST /api/signals/theirstack, GET /api/signals and GET /healthz until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.listen_addr from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	addr := cfg.Server.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	var signalStore model.SignalStore = store.NewNopStore()
	sqlStore, err := openStore(cfg)
	if err != nil {
		if cfg.Server.Persist {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		logger.Warn("store unavailable, GET /api/signals will be empty", "error", err)
	} else {
		signalStore = sqlStore
	}
	defer signalStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpapi.NewServer(buildService(cfg, newHTTPClient(), logger), signalStore, cfg.Server.Persist, logger)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
