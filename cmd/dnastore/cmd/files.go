package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// stdio is the path that selects stdin or stdout
const stdio = "-"

// openInput opens path for reading and reports its size, or -1 when the
// size is unknown
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, int64, error) {
	if path == stdio {
		return io.NopCloser(cmd.InOrStdin()), -1, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("failed to stat input: %w", err)
	}
	return f, info.Size(), nil
}

// readSequence reads a container and drops surrounding whitespace
func readSequence(cmd *cobra.Command, path string) (string, error) {
	r, _, err := openInput(cmd, path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read container: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// writeOutput writes data to path, or to stdout for "-"
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == stdio {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
