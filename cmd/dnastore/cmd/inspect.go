/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/di"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <input>",
	Short: "Print the header of a container",
	Long: `Parse the length prefix and header of a container and print the
settings it was encoded with, along with where its chunks live.

Example:
  dnastore inspect photo.dna
  dnastore inspect --json photo.dna`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return runInspect(cmd, container, args[0], asJSON)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

func runInspect(cmd *cobra.Command, c *di.Container, in string, asJSON bool) error {
	s, err := c.Storage()
	if err != nil {
		return err
	}

	seq, err := readSequence(cmd, in)
	if err != nil {
		return err
	}

	layout, err := s.ReadHeader(seq)
	if err != nil {
		return err
	}

	report := newContainerReport(layout)
	report.Stats = constraint.Analyze(seq)

	if asJSON {
		return outputJSON(cmd.OutOrStdout(), report)
	}
	return outputReportTable(cmd.OutOrStdout(), report)
}
