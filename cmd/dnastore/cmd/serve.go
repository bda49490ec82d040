/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/dnastore/pkg/api"
	"github.com/ssargent/dnastore/pkg/di"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the dnastore REST API server.

Encoding settings come from the configuration file and the codec flags.
Requests must carry the configured API key in the X-API-Key header;
Prometheus metrics are served unauthenticated at /metrics.

Examples:
  dnastore serve --port 8080
  dnastore serve --api-key mysecretkey --ecc hamming --max-homopolymer 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd, container)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addCodecFlags(serveCmd.Flags())
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Address to bind to (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for authentication (overrides config)")
}

func runServe(ctx context.Context, cmd *cobra.Command, c *di.Container) error {
	cfg := c.Config()
	serverConfig := api.ServerConfig{
		Port:         cfg.Server.Port,
		Bind:         cfg.Server.Bind,
		APIKey:       cfg.Server.APIKey,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}
	if cmd.Flags().Changed("port") {
		serverConfig.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		serverConfig.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("api-key") {
		serverConfig.APIKey, _ = cmd.Flags().GetString("api-key")
	}

	logger := c.Logger()
	if serverConfig.APIKey == "" {
		logger.Warn("no API key configured, the API is open to anyone who can reach it")
	}

	codec, err := c.Storage()
	if err != nil {
		return err
	}

	deps := api.Dependencies{
		Codec:    codec,
		Metrics:  c.Metrics(),
		Gatherer: c.Gatherer(),
		Logger:   logger,
	}
	ledger, err := c.Ledger()
	if err != nil {
		return err
	}
	if ledger != nil {
		deps.Ledger = ledger
	}

	server := c.GetServerFactory().CreateServer(serverConfig, deps)
	return server.ListenAndServe(ctx)
}
