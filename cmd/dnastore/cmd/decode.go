/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/dnastore/pkg/di"
	"github.com/ssargent/dnastore/pkg/storage"
	"github.com/ssargent/dnastore/pkg/store"
)

// decodeOptions selects how decode reads its container
type decodeOptions struct {
	Chunk  int // -1 decodes the whole container
	Stream bool
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <input> <output>",
	Short: "Decode a DNA sequence container back into bytes",
	Long: `Decode a container produced by encode. The container header carries
every setting needed, so no codec flags are required.

Use "-" for stdin or stdout. --chunk reads a single chunk straight from
the container file without decoding the rest.

Examples:
  dnastore decode photo.dna photo.jpg
  dnastore decode --chunk 12 big.dna -`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunk, _ := cmd.Flags().GetInt("chunk")
		stream, _ := cmd.Flags().GetBool("stream")
		return runDecode(cmd, container, args[0], args[1], decodeOptions{Chunk: chunk, Stream: stream})
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().Int("chunk", -1, "Decode only this chunk index")
	decodeCmd.Flags().Bool("stream", false, "Decode one chunk at a time instead of buffering the container")
}

func runDecode(cmd *cobra.Command, c *di.Container, in, out string, opts decodeOptions) error {
	s, err := c.Storage()
	if err != nil {
		return err
	}

	if opts.Chunk >= 0 {
		return decodeChunk(cmd, s, in, out, opts.Chunk)
	}

	start := time.Now()
	m := &storage.Manifest{Operation: storage.OperationDecode, CreatedAt: start.UTC(), Source: in}
	if opts.Stream {
		err = decodeStreaming(cmd, s, in, out, m)
	} else {
		err = decodeBuffered(cmd, s, in, out, m)
	}

	if id := recordRun(c, m, start, err); id != "" {
		cmd.PrintErrf("run %s\n", id)
	}
	return err
}

func decodeBuffered(cmd *cobra.Command, s *store.Storage, in, out string, m *storage.Manifest) error {
	seq, err := readSequence(cmd, in)
	if err != nil {
		return err
	}

	data, meta, err := s.DecodeWithMetadata(seq)
	m.Describe(meta)
	if err != nil {
		return err
	}
	m.Score(data, seq)

	if err := writeOutput(cmd, out, data); err != nil {
		return err
	}
	cmd.PrintErrf("decoded %d chunks into %d bytes\n", meta.TotalChunks, len(data))
	return nil
}

func decodeStreaming(cmd *cobra.Command, s *store.Storage, in, out string, m *storage.Manifest) error {
	r, _, err := openInput(cmd, in)
	if err != nil {
		return err
	}
	defer r.Close()

	var bw *bufio.Writer
	if out == stdio {
		bw = bufio.NewWriter(cmd.OutOrStdout())
	} else {
		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}
		defer f.Close()
		bw = bufio.NewWriter(f)
	}

	dw := storage.NewDigestWriter(bw)
	meta, err := s.DecodeStream(cmd.Context(), bufio.NewReader(r), dw)
	m.Describe(meta)
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	m.DataBytes = dw.Count()
	m.DataDigest = dw.Sum()
	cmd.PrintErrf("decoded %d chunks into %d bytes\n", meta.TotalChunks, m.DataBytes)
	return nil
}

func decodeChunk(cmd *cobra.Command, s *store.Storage, in, out string, i int) error {
	if in == stdio {
		return fmt.Errorf("--chunk needs a container file, not stdin")
	}

	r, err := s.OpenSequence(in)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := r.ReadChunk(i)
	if err != nil {
		return err
	}
	return writeOutput(cmd, out, data)
}
