package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/header"
	"github.com/ssargent/dnastore/pkg/storage"
	"github.com/ssargent/dnastore/pkg/store"
)

// containerReport is what inspect and stats print
type containerReport struct {
	Metadata      *header.Metadata       `json:"metadata,omitempty"`
	HeaderSymbols int                    `json:"header_symbols,omitempty"`
	BodyStart     int                    `json:"body_start,omitempty"`
	ChunkSymbols  int                    `json:"chunk_symbols,omitempty"`
	BodySymbols   int                    `json:"body_symbols,omitempty"`
	Stats         constraint.Stats       `json:"stats"`
	Overhead      float64                `json:"overhead,omitempty"`
	Violation     string                 `json:"violation,omitempty"`
	Thresholds    *constraint.Thresholds `json:"thresholds,omitempty"`
}

func newContainerReport(layout *store.Layout) containerReport {
	return containerReport{
		Metadata:      layout.Metadata,
		HeaderSymbols: layout.HeaderSymbols,
		BodyStart:     layout.BodyStart,
		ChunkSymbols:  layout.ChunkSymbols,
		BodySymbols:   layout.BodySymbols(),
	}
}

// outputJSON writes v as indented JSON
func outputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// outputReportTable displays a container report in table format
func outputReportTable(w io.Writer, r containerReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if m := r.Metadata; m != nil {
		fmt.Fprintf(tw, "Version:\t%s\n", m.Version)
		fmt.Fprintf(tw, "Encoding:\t%s\n", m.Encoding)
		if m.ECCParams.NSym > 0 {
			fmt.Fprintf(tw, "ECC:\t%s (nsym %d)\n", m.ECC, m.ECCParams.NSym)
		} else {
			fmt.Fprintf(tw, "ECC:\t%s\n", m.ECC)
		}
		fmt.Fprintf(tw, "Chunk size:\t%d bytes\n", m.ChunkSize)
		fmt.Fprintf(tw, "Chunks:\t%d\n", m.TotalChunks)
		if m.Constraints.Enabled() {
			fmt.Fprintf(tw, "Constraints:\t%s\n", formatThresholds(m.Constraints))
		}
		fmt.Fprintf(tw, "Header symbols:\t%d\n", r.HeaderSymbols)
		fmt.Fprintf(tw, "Body start:\t%d\n", r.BodyStart)
		fmt.Fprintf(tw, "Chunk symbols:\t%d\n", r.ChunkSymbols)
		fmt.Fprintf(tw, "Body symbols:\t%d\n", r.BodySymbols)
	}

	fmt.Fprintf(tw, "Length:\t%d\n", r.Stats.Length)
	fmt.Fprintf(tw, "GC ratio:\t%.4f\n", r.Stats.GCRatio)
	fmt.Fprintf(tw, "Max homopolymer:\t%d\n", r.Stats.MaxHomopolymer)
	if r.Overhead != 0 {
		fmt.Fprintf(tw, "Overhead:\t%.4f\n", r.Overhead)
	}
	if r.Thresholds.Enabled() {
		verdict := "ok"
		if r.Violation != "" {
			verdict = r.Violation
		}
		fmt.Fprintf(tw, "Check (%s):\t%s\n", formatThresholds(r.Thresholds), verdict)
	}

	return tw.Flush()
}

// outputRunsTable displays run manifests in table format
func outputRunsTable(w io.Writer, runs []*storage.Manifest) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tOPERATION\tCREATED\tECC\tBYTES\tSYMBOLS\tSTATUS")
	for _, m := range runs {
		status := "ok"
		if m.FailureClass != "" {
			status = m.FailureClass
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			m.ID, m.Operation, m.CreatedAt.Format(time.RFC3339), m.ECC, m.DataBytes, m.Symbols, status)
	}

	return tw.Flush()
}

// outputRunTable displays one manifest in table format
func outputRunTable(w io.Writer, m *storage.Manifest) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "ID:\t%s\n", m.ID)
	fmt.Fprintf(tw, "Operation:\t%s\n", m.Operation)
	fmt.Fprintf(tw, "Created:\t%s\n", m.CreatedAt.Format(time.RFC3339))
	if m.Source != "" {
		fmt.Fprintf(tw, "Source:\t%s\n", m.Source)
	}
	fmt.Fprintf(tw, "Codec:\t%s/%s chunk %d\n", m.ECC, m.Strategy, m.ChunkSize)
	fmt.Fprintf(tw, "Chunks:\t%d\n", m.TotalChunks)
	fmt.Fprintf(tw, "Data:\t%d bytes %s\n", m.DataBytes, m.DataDigest)
	fmt.Fprintf(tw, "Sequence:\t%d symbols %s\n", m.Symbols, m.SequenceDigest)
	fmt.Fprintf(tw, "Duration:\t%s\n", m.Duration)
	if m.Error != "" {
		fmt.Fprintf(tw, "Failure:\t%s: %s\n", m.FailureClass, m.Error)
	}

	return tw.Flush()
}

func formatThresholds(t *constraint.Thresholds) string {
	out := ""
	add := func(s string) {
		if out != "" {
			out += ", "
		}
		out += s
	}
	if t.MinGC != nil {
		add(fmt.Sprintf("gc >= %.2f", *t.MinGC))
	}
	if t.MaxGC != nil {
		add(fmt.Sprintf("gc <= %.2f", *t.MaxGC))
	}
	if t.MaxHomopolymer != nil {
		add(fmt.Sprintf("homopolymer <= %d", *t.MaxHomopolymer))
	}
	return out
}
