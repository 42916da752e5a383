package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/dashboard"
	"github.com/amishk599/leadradar/internal/model"
)

var (
	scanPick bool
	scanSave bool
	scanJSON bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [company...]",
	Short: "Compute signals once, print them, exit",
	Long: "One-shot scan: computes job_posting signals for the given companies (or every enabled company " +
		"in the config), prints them, and exits. Nothing is stored unless --save is set.",
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanPick, "pick", false, "choose companies interactively")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "store computed signals")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print signals as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	if scanJSON {
		// stdout carries the JSON document.
		logger = newLogger(os.Stderr, debug)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	companies := args
	switch {
	case len(companies) > 0:
	case scanPick:
		companies, err = dashboard.RunCompanyPicker(cfg.Companies)
		if err != nil {
			return fmt.Errorf("company picker: %w", err)
		}
		if companies == nil {
			return nil
		}
	default:
		companies = cfg.EnabledCompanies()
	}
	if len(companies) == 0 {
		logger.Error("no companies to scan")
		os.Exit(1)
	}

	svc := buildService(cfg, newHTTPClient(), logger)
	// Budget every company its full timeout even when sequential.
	timeout := time.Duration(len(companies)+1) * cfg.TheirStack.Timeout

	var signals []model.Signal
	if scanJSON || debug {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		signals, err = svc.ComputeSignals(ctx, companies)
	} else {
		label := fmt.Sprintf("Computing signals for %d companies", len(companies))
		signals, err = dashboard.RunLoader(label, timeout, func(ctx context.Context) ([]model.Signal, error) {
			return svc.ComputeSignals(ctx, companies)
		})
	}
	if errors.Is(err, dashboard.ErrCancelled) {
		return nil
	}
	if err != nil {
		if model.IsConfigError(err) {
			fmt.Fprintln(os.Stderr, "TheirStack API key not configured: set theirstack.api_key, THEIRSTACK_API_KEY, or run `leadradar key set`")
		}
		return err
	}

	if scanSave && len(signals) > 0 {
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Save(cmd.Context(), signals); err != nil {
			return fmt.Errorf("saving signals: %w", err)
		}
		logger.Info("signals saved", "count", len(signals))
	}

	if scanJSON {
		if signals == nil {
			signals = []model.Signal{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"signals": signals})
	}
	printSignals(signals)
	fmt.Printf("\n%d of %d companies produced a signal\n", len(signals), len(companies))
	return nil
}

func printSignals(signals []model.Signal) {
	fmt.Printf("%-25s %-12s %-8s %-6s %s\n", "Company", "Type", "Strength", "Jobs", "Recent roles")
	fmt.Println(strings.Repeat("─", 80))
	for _, s := range signals {
		fmt.Printf("%-25s %-12s %-8d %-6d %s\n",
			s.CompanyName,
			s.SignalType,
			s.Strength,
			s.Metadata.JobCount,
			strings.Join(s.Metadata.RecentTitles, ", "),
		)
	}
}
