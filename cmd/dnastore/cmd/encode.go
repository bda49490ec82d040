/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/di"
	"github.com/ssargent/dnastore/pkg/storage"
	"github.com/ssargent/dnastore/pkg/store"
)

// encodeOptions selects how encode reads and writes
type encodeOptions struct {
	Stream     bool
	Checkpoint string
}

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <input> <output>",
	Short: "Encode a file into a DNA sequence container",
	Long: `Encode a file into a container of A/C/G/T symbols.

Use "-" for stdin or stdout. With --stream the input is encoded one chunk
at a time; adding --checkpoint records progress so an interrupted encode
picks up where it stopped.

Examples:
  dnastore encode photo.jpg photo.dna
  dnastore encode --ecc hamming --max-homopolymer 3 notes.txt notes.dna
  dnastore encode --stream --checkpoint big.ckpt big.tar big.dna`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stream, _ := cmd.Flags().GetBool("stream")
		checkpoint, _ := cmd.Flags().GetString("checkpoint")
		return runEncode(cmd, container, args[0], args[1], encodeOptions{Stream: stream, Checkpoint: checkpoint})
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	addCodecFlags(encodeCmd.Flags())
	encodeCmd.Flags().Bool("stream", false, "Encode one chunk at a time instead of buffering the input")
	encodeCmd.Flags().String("checkpoint", "", "Checkpoint file for resumable streaming encodes (implies --stream)")
}

func runEncode(cmd *cobra.Command, c *di.Container, in, out string, opts encodeOptions) error {
	s, err := c.Storage()
	if err != nil {
		return err
	}

	start := time.Now()
	m := &storage.Manifest{Operation: storage.OperationEncode, CreatedAt: start.UTC(), Source: in}

	if opts.Stream || opts.Checkpoint != "" {
		err = encodeStreaming(cmd, s, in, out, opts, m)
	} else {
		err = encodeBuffered(cmd, s, in, out, m)
	}

	if id := recordRun(c, m, start, err); id != "" {
		cmd.PrintErrf("run %s\n", id)
	}
	return err
}

func encodeBuffered(cmd *cobra.Command, s *store.Storage, in, out string, m *storage.Manifest) error {
	r, _, err := openInput(cmd, in)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	seq, err := s.Encode(data)
	if err != nil {
		return err
	}
	layout, err := s.ReadHeader(seq)
	if err != nil {
		return err
	}
	m.Describe(layout.Metadata)
	m.Score(data, seq)

	if err := writeOutput(cmd, out, []byte(seq)); err != nil {
		return err
	}

	cmd.PrintErrf("encoded %d bytes into %d chunks, %d symbols (overhead %.2f)\n",
		len(data), layout.Metadata.TotalChunks, len(seq), m.Overhead)
	return nil
}

func encodeStreaming(cmd *cobra.Command, s *store.Storage, in, out string, opts encodeOptions, m *storage.Manifest) error {
	if opts.Checkpoint != "" && out == stdio {
		return fmt.Errorf("--checkpoint needs a file output")
	}

	r, size, err := openInput(cmd, in)
	if err != nil {
		return err
	}
	defer r.Close()

	processed := 0
	if opts.Checkpoint != "" {
		cp, err := store.LoadCheckpoint(opts.Checkpoint)
		if err != nil {
			return err
		}
		processed = cp.ProcessedChunks
	}
	if processed > 0 {
		if err := truncateToCheckpoint(s, out, processed); err != nil {
			return err
		}
	}

	var w io.Writer
	if out == stdio {
		bw := bufio.NewWriter(cmd.OutOrStdout())
		defer bw.Flush()
		w = bw
	} else {
		sw, err := store.NewSequenceWriter(store.SequenceWriterConfig{FilePath: out, Append: processed > 0})
		if err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}
		defer sw.Close()
		w = sw
	}

	dr := storage.NewDigestReader(r)
	dw := storage.NewDigestWriter(w)
	stats, err := s.EncodeStream(cmd.Context(), dr, dw, store.StreamOptions{Size: size, CheckpointPath: opts.Checkpoint})
	if stats != nil {
		meta := s.Metadata(stats.Chunks)
		m.Describe(&meta)
	}
	if err != nil {
		return err
	}

	m.DataBytes = dr.Count()
	m.DataDigest = dr.Sum()
	if stats.Skipped == 0 {
		// a resumed run only saw the tail of the sequence
		m.Symbols = dw.Count()
		m.SequenceDigest = dw.Sum()
		m.Overhead = constraint.Overhead(int(m.DataBytes), int(m.Symbols))
	}

	cmd.PrintErrf("encoded %d chunks (%d resumed from checkpoint), wrote %d symbols\n",
		stats.Chunks, stats.Skipped, stats.Symbols)
	return nil
}

// truncateToCheckpoint cuts a partially written container back to the
// chunks a checkpoint vouches for, after checking that its header matches
// the current encoder
func truncateToCheckpoint(s *store.Storage, path string, processed int) error {
	r, err := s.OpenSequence(path)
	if err != nil {
		return fmt.Errorf("cannot resume into %s: %w", path, err)
	}
	layout := r.Layout()
	_ = r.Close()

	got := layout.Metadata
	want := s.Metadata(got.TotalChunks)
	if got.ECC != want.ECC || got.ECCParams != want.ECCParams || got.Encoding != want.Encoding || got.ChunkSize != want.ChunkSize {
		return fmt.Errorf("cannot resume into %s: it was written with %s/%s chunk size %d",
			path, got.ECC, got.Encoding, got.ChunkSize)
	}

	keep := int64(layout.BodyStart + processed*layout.ChunkSymbols)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() < keep {
		return fmt.Errorf("cannot resume into %s: %d symbols present, checkpoint needs %d", path, info.Size(), keep)
	}
	return os.Truncate(path, keep)
}
