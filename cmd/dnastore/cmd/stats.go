/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/di"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <input>",
	Short: "Score a sequence against the synthesis constraints",
	Long: `Report the GC ratio and longest homopolymer of a sequence and check it
against the configured thresholds. When the input is a container it is
decoded as well, and the symbol overhead per data bit is reported.

Examples:
  dnastore stats photo.dna
  dnastore stats --min-gc 0.4 --max-gc 0.6 --max-homopolymer 3 strand.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return runStats(cmd, container, args[0], asJSON)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	addConstraintFlags(statsCmd.Flags())
	statsCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

func runStats(cmd *cobra.Command, c *di.Container, in string, asJSON bool) error {
	s, err := c.Storage()
	if err != nil {
		return err
	}

	seq, err := readSequence(cmd, in)
	if err != nil {
		return err
	}

	var report containerReport
	// a bare strand is scored as is
	if layout, err := s.ReadHeader(seq); err == nil {
		report = newContainerReport(layout)
		data, _, err := s.DecodeWithMetadata(seq)
		if err != nil {
			return err
		}
		report.Overhead = constraint.Overhead(len(data), len(seq))
	}

	report.Stats = constraint.Analyze(seq)
	report.Thresholds = c.Config().Codec.Constraints
	if v := report.Thresholds.Check(seq); v != nil {
		report.Violation = v.Error()
	}

	if asJSON {
		return outputJSON(cmd.OutOrStdout(), report)
	}
	return outputReportTable(cmd.OutOrStdout(), report)
}
