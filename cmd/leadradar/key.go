package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/config"
	"github.com/amishk599/leadradar/internal/secrets"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the TheirStack API key in the OS keychain",
}

var keySetCmd = &cobra.Command{
	Use:   "set [api-key]",
	Short: "Store the API key (reads stdin when no argument is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKeySet,
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.DeleteAPIKey(); err != nil {
			return err
		}
		fmt.Println("API key removed from keychain")
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API key would be read from",
	RunE:  runKeyStatus,
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd, keyStatusCmd)
}

func runKeySet(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		fmt.Fprint(os.Stderr, "TheirStack API key: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading API key: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	if err := secrets.SetAPIKey(key); err != nil {
		return err
	}
	fmt.Println("API key stored in keychain")
	return nil
}

func runKeyStatus(cmd *cobra.Command, args []string) error {
	source := "not configured"

	if cfg, err := config.Load(configPathOrDefault()); err == nil && cfg.TheirStack.APIKey != "" {
		// Load already folds in THEIRSTACK_API_KEY; tell the two apart.
		if strings.TrimSpace(os.Getenv(config.APIKeyEnv)) == cfg.TheirStack.APIKey {
			source = "environment (" + config.APIKeyEnv + ")"
		} else {
			source = "config file"
		}
	} else if strings.TrimSpace(os.Getenv(config.APIKeyEnv)) != "" {
		source = "environment (" + config.APIKeyEnv + ")"
	} else if _, err := secrets.GetAPIKey(); err == nil {
		source = "OS keychain"
	} else if !errors.Is(err, secrets.ErrNotFound) {
		source = "not configured (keychain error: " + err.Error() + ")"
	}

	fmt.Printf("TheirStack API key: %s\n", source)
	return nil
}

func configPathOrDefault() string {
	if cfgPath != "" {
		return cfgPath
	}
	if env := os.Getenv("LEADRADAR_CONFIG"); env != "" {
		return env
	}
	return "config.yaml"
}
