package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Checkpoint records how far a streaming encode got
type Checkpoint struct {
	ProcessedChunks int `msgpack:"processed_chunks"`
}

// LoadCheckpoint reads the checkpoint at path. A missing file is a zero
// checkpoint.
func LoadCheckpoint(path string) (Checkpoint, error) {
	var cp Checkpoint
	data, err := os.ReadFile(path) // #nosec G304 - caller-supplied checkpoint path
	if errors.Is(err, fs.ErrNotExist) {
		return cp, nil
	}
	if err != nil {
		return cp, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if err := msgpack.Unmarshal(data, &cp); err != nil {
		return cp, fmt.Errorf("failed to decode checkpoint %s: %w", path, err)
	}
	if cp.ProcessedChunks < 0 {
		return Checkpoint{}, fmt.Errorf("checkpoint %s has negative progress %d", path, cp.ProcessedChunks)
	}
	return cp, nil
}

// SaveCheckpoint writes cp next to path and renames it into place, so a
// reader sees either the old or the new record
func SaveCheckpoint(path string, cp Checkpoint) error {
	data, err := msgpack.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move checkpoint: %w", err)
	}
	return nil
}

// RemoveCheckpoint deletes the checkpoint at path if present
func RemoveCheckpoint(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	return nil
}
