package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/dashboard"
	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/store"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Browse recent signals in a terminal UI",
	Long:  "Opens a full-screen table of the most recent stored signals. Enter shows details, r refreshes, q quits.",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// A store that fails to open is reported inside the dashboard, not here.
	s, openErr := openStore(cfg)
	if s != nil {
		defer s.Close()
	}

	return dashboard.Run(func(ctx context.Context) ([]model.Signal, error) {
		if openErr != nil {
			return nil, openErr
		}
		return s.Recent(ctx, store.DefaultRecentLimit)
	})
}
