package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List all configured companies",
	Long:  "Reads the config and prints a table of all configured companies.",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	excluded := make(map[string]bool, len(cfg.Filters.ExcludeCompanies))
	for _, c := range cfg.Filters.ExcludeCompanies {
		excluded[strings.ToLower(strings.TrimSpace(c))] = true
	}

	fmt.Printf("%-30s %-10s %s\n", "Company", "Status", "Alerts")
	fmt.Println(strings.Repeat("─", 50))

	enabled, disabled := 0, 0
	for _, c := range cfg.Companies {
		status := "enabled"
		if !c.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		alerts := "on"
		if excluded[strings.ToLower(strings.TrimSpace(c.Name))] {
			alerts = "muted"
		}
		fmt.Printf("%-30s %-10s %s\n", c.Name, status, alerts)
	}

	fmt.Printf("\nTotal: %d companies (%d enabled, %d disabled)\n", len(cfg.Companies), enabled, disabled)
	return nil
}
