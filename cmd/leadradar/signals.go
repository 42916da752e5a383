package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/store"
)

var signalsLimit int

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "List recently stored signals",
	Long:  "Prints the most recent stored signals, newest first.",
	RunE:  runSignals,
}

func init() {
	signalsCmd.Flags().IntVarP(&signalsLimit, "limit", "n", store.DefaultRecentLimit, "max signals to show (at most 50)")
	rootCmd.AddCommand(signalsCmd)
}

func runSignals(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	signals, err := s.Recent(cmd.Context(), signalsLimit)
	if err != nil {
		return fmt.Errorf("loading signals: %w", err)
	}
	if len(signals) == 0 {
		fmt.Println("no signals available")
		return nil
	}
	printSignals(signals)
	fmt.Printf("\n%d signals\n", len(signals))
	return nil
}
