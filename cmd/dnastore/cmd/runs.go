/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/dnastore/pkg/di"
	"github.com/ssargent/dnastore/pkg/storage"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded encode and decode runs",
	Long: `List the run ledger, newest first. Every encode and decode records a
manifest with its settings, sizes, BLAKE3 digests and outcome.

Examples:
  dnastore runs --limit 10
  dnastore runs show 2mQ8Ykl0aVwT3q3J4Ew6nOu1kZx
  dnastore runs delete 2mQ8Ykl0aVwT3q3J4Ew6nOu1kZx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")
		return runListRuns(cmd, container, limit, asJSON)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return runShowRun(cmd, container, args[0], asJSON)
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one run manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeleteRun(cmd, container, args[0])
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd, runsDeleteCmd)
	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 for all)")
	runsCmd.PersistentFlags().Bool("json", false, "Print JSON instead of a table")
}

func openLedger(c *di.Container) (*storage.Ledger, error) {
	l, err := c.Ledger()
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("run ledger is disabled in the configuration")
	}
	return l, nil
}

func runListRuns(cmd *cobra.Command, c *di.Container, limit int, asJSON bool) error {
	l, err := openLedger(c)
	if err != nil {
		return err
	}

	runs, err := l.List(limit)
	c.Metrics().RecordLedgerOperation("list", err == nil)
	if err != nil {
		return err
	}

	if asJSON {
		return outputJSON(cmd.OutOrStdout(), runs)
	}
	return outputRunsTable(cmd.OutOrStdout(), runs)
}

func runShowRun(cmd *cobra.Command, c *di.Container, id string, asJSON bool) error {
	l, err := openLedger(c)
	if err != nil {
		return err
	}

	m, err := l.Get(id)
	c.Metrics().RecordLedgerOperation("get", err == nil)
	if err != nil {
		return err
	}

	if asJSON {
		return outputJSON(cmd.OutOrStdout(), m)
	}
	return outputRunTable(cmd.OutOrStdout(), m)
}

func runDeleteRun(cmd *cobra.Command, c *di.Container, id string) error {
	l, err := openLedger(c)
	if err != nil {
		return err
	}

	err = l.Delete(id)
	c.Metrics().RecordLedgerOperation("delete", err == nil)
	if err != nil {
		return err
	}
	cmd.PrintErrf("deleted run %s\n", id)
	return nil
}

// recordRun stores m in the ledger when one is configured and returns its
// id. Ledger failures are logged, never returned.
func recordRun(c *di.Container, m *storage.Manifest, start time.Time, runErr error) string {
	l, err := c.Ledger()
	if err != nil {
		c.Logger().Warn("run ledger unavailable", "error", err)
		return ""
	}
	if l == nil {
		return ""
	}

	m.Duration = time.Since(start)
	m.Fail(runErr)

	id, err := l.Record(m)
	c.Metrics().RecordLedgerOperation("record", err == nil)
	if err != nil {
		c.Logger().Warn("failed to record run", "operation", m.Operation, "error", err)
		return ""
	}
	return id.String()
}
