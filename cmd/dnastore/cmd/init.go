/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/dnastore/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file with a freshly generated API key.

This command will:
- Create the configuration directory
- Place the run ledger under the data directory
- Generate a 256-bit API key for the REST server

Examples:
  dnastore init
  dnastore init --config ./dnastore.yaml --data-dir ./data --force`,
	Args: cobra.NoArgs,
	// init writes the file the root command would otherwise load
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")
		return runInit(cmd, path, dataDir, force)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("data-dir", "./data", "Data directory for the run ledger")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}

func runInit(cmd *cobra.Command, path, dataDir string, force bool) error {
	if config.ConfigExists(path) && !force {
		return fmt.Errorf("configuration already exists at %s, use --force to overwrite", path)
	}

	cfg, err := config.BootstrapConfig(path, dataDir)
	if err != nil {
		return err
	}

	cmd.Printf("Wrote configuration to %s\n", path)
	cmd.Printf("Run ledger: %s\n", cfg.Ledger.Path)
	cmd.Printf("API key: %s\n", cfg.Server.APIKey)
	cmd.Printf("\nYou can now start the server with:\n")
	cmd.Printf("  dnastore serve --config %s\n", path)
	return nil
}
