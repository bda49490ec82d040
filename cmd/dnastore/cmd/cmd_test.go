package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dnastore/pkg/config"
	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/di"
	"github.com/ssargent/dnastore/pkg/logging"
	"github.com/ssargent/dnastore/pkg/storage"
	"github.com/ssargent/dnastore/pkg/store"
)

func newTestContainer(t *testing.T, edit func(cfg *config.Config)) *di.Container {
	t.Helper()
	c := di.NewContainer()
	cfg := config.DefaultConfig()
	cfg.Codec.ChunkSize = 32
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "ledger")
	if edit != nil {
		edit(cfg)
	}
	c.SetConfig(cfg)
	c.SetLogger(logging.Discard())
	t.Cleanup(func() { c.Close() })
	return c
}

// newTestCommand returns a command with captured stdio
func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetContext(context.Background())
	return cmd, &stdout, &stderr
}

func TestEncodeDecodeFiles(t *testing.T) {
	c := newTestContainer(t, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "input.bin")
	seqPath := filepath.Join(dir, "input.dna")
	out := filepath.Join(dir, "output.bin")

	data := bytes.Repeat([]byte("DNA storage round trip. "), 20)
	require.NoError(t, os.WriteFile(in, data, 0600))

	cmd, _, stderr := newTestCommand("")
	require.NoError(t, runEncode(cmd, c, in, seqPath, encodeOptions{}))
	assert.Contains(t, stderr.String(), "encoded 480 bytes into 15 chunks")

	require.NoError(t, runDecode(cmd, c, seqPath, out, decodeOptions{Chunk: -1}))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	l, err := c.Ledger()
	require.NoError(t, err)
	runs, err := l.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, m := range runs {
		assert.Equal(t, storage.Digest(data), m.DataDigest)
		assert.Equal(t, 15, m.TotalChunks)
		assert.Empty(t, m.Error)
	}
}

func TestEncodeDecodeStdio(t *testing.T) {
	c := newTestContainer(t, func(cfg *config.Config) { cfg.Ledger.Enabled = false })

	cmd, stdout, _ := newTestCommand("piped through stdin")
	require.NoError(t, runEncode(cmd, c, stdio, stdio, encodeOptions{}))
	seq := stdout.String()
	assert.NotEmpty(t, seq)

	cmd, stdout, _ = newTestCommand(seq + "\n")
	require.NoError(t, runDecode(cmd, c, stdio, stdio, decodeOptions{Chunk: -1}))
	assert.Equal(t, "piped through stdin", stdout.String())
}

func TestStreamingEncodeDecode(t *testing.T) {
	c := newTestContainer(t, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "input.bin")
	buffered := filepath.Join(dir, "buffered.dna")
	streamed := filepath.Join(dir, "streamed.dna")
	out := filepath.Join(dir, "output.bin")

	data := bytes.Repeat([]byte{0x00, 0x01, 0xFE, 0xFF}, 100)
	require.NoError(t, os.WriteFile(in, data, 0600))

	cmd, _, _ := newTestCommand("")
	require.NoError(t, runEncode(cmd, c, in, buffered, encodeOptions{}))
	require.NoError(t, runEncode(cmd, c, in, streamed, encodeOptions{Stream: true}))

	want, err := os.ReadFile(buffered)
	require.NoError(t, err)
	got, err := os.ReadFile(streamed)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	require.NoError(t, runDecode(cmd, c, streamed, out, decodeOptions{Chunk: -1, Stream: true}))
	decoded, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestEncodeResumesFromCheckpoint(t *testing.T) {
	c := newTestContainer(t, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "input.bin")
	full := filepath.Join(dir, "full.dna")
	partial := filepath.Join(dir, "partial.dna")
	ckpt := filepath.Join(dir, "partial.ckpt")

	data := bytes.Repeat([]byte("checkpointed "), 30)
	require.NoError(t, os.WriteFile(in, data, 0600))

	cmd, _, stderr := newTestCommand("")
	require.NoError(t, runEncode(cmd, c, in, full, encodeOptions{}))
	want, err := os.ReadFile(full)
	require.NoError(t, err)

	// two chunks are vouched for; a third was half written when the run died
	s, err := c.Storage()
	require.NoError(t, err)
	layout, err := s.ReadHeader(string(want))
	require.NoError(t, err)
	cut := layout.BodyStart + 2*layout.ChunkSymbols + layout.ChunkSymbols/2
	require.NoError(t, os.WriteFile(partial, want[:cut], 0600))
	require.NoError(t, store.SaveCheckpoint(ckpt, store.Checkpoint{ProcessedChunks: 2}))

	require.NoError(t, runEncode(cmd, c, in, partial, encodeOptions{Checkpoint: ckpt}))
	assert.Contains(t, stderr.String(), "(2 resumed from checkpoint)")

	got, err := os.ReadFile(partial)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
	assert.NoFileExists(t, ckpt)
}

func TestEncodeResumeRejectsOtherSettings(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.bin")
	partial := filepath.Join(dir, "partial.dna")
	ckpt := filepath.Join(dir, "partial.ckpt")
	require.NoError(t, os.WriteFile(in, bytes.Repeat([]byte("x"), 200), 0600))

	cmd, _, _ := newTestCommand("")
	hamming := newTestContainer(t, func(cfg *config.Config) { cfg.Codec.ECC = "hamming" })
	require.NoError(t, runEncode(cmd, hamming, in, partial, encodeOptions{}))
	require.NoError(t, store.SaveCheckpoint(ckpt, store.Checkpoint{ProcessedChunks: 1}))

	rs := newTestContainer(t, nil)
	err := runEncode(cmd, rs, in, partial, encodeOptions{Checkpoint: ckpt})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot resume")
}

func TestCheckpointNeedsFileOutput(t *testing.T) {
	c := newTestContainer(t, nil)
	cmd, _, _ := newTestCommand("abc")
	err := runEncode(cmd, c, stdio, stdio, encodeOptions{Checkpoint: filepath.Join(t.TempDir(), "x.ckpt")})
	assert.Error(t, err)
}

func TestDecodeSingleChunk(t *testing.T) {
	c := newTestContainer(t, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "input.txt")
	seqPath := filepath.Join(dir, "input.dna")

	data := []byte(strings.Repeat("a", 32) + strings.Repeat("b", 32) + "tail")
	require.NoError(t, os.WriteFile(in, data, 0600))

	cmd, stdout, _ := newTestCommand("")
	require.NoError(t, runEncode(cmd, c, in, seqPath, encodeOptions{}))

	require.NoError(t, runDecode(cmd, c, seqPath, stdio, decodeOptions{Chunk: 1}))
	assert.Equal(t, strings.Repeat("b", 32), stdout.String())

	stdout.Reset()
	require.NoError(t, runDecode(cmd, c, seqPath, stdio, decodeOptions{Chunk: 2}))
	assert.Equal(t, "tail", stdout.String())

	assert.Error(t, runDecode(cmd, c, seqPath, stdio, decodeOptions{Chunk: 3}))
	assert.Error(t, runDecode(cmd, c, stdio, stdio, decodeOptions{Chunk: 0}))
}

func TestDecodeFailureIsRecorded(t *testing.T) {
	c := newTestContainer(t, nil)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.dna")
	require.NoError(t, os.WriteFile(bad, []byte("ACGTACGT"), 0600))

	cmd, _, _ := newTestCommand("")
	require.Error(t, runDecode(cmd, c, bad, filepath.Join(dir, "out"), decodeOptions{Chunk: -1}))

	l, err := c.Ledger()
	require.NoError(t, err)
	runs, err := l.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "corruption_detected", runs[0].FailureClass)
}

func TestInspect(t *testing.T) {
	c := newTestContainer(t, func(cfg *config.Config) {
		cfg.Codec.ECC = "hamming"
		cfg.Codec.Strategy = "rotating"
	})
	dir := t.TempDir()
	in := filepath.Join(dir, "input.txt")
	seqPath := filepath.Join(dir, "input.dna")
	require.NoError(t, os.WriteFile(in, []byte(strings.Repeat("z", 100)), 0600))

	cmd, stdout, _ := newTestCommand("")
	require.NoError(t, runEncode(cmd, c, in, seqPath, encodeOptions{}))

	require.NoError(t, runInspect(cmd, c, seqPath, true))
	var report containerReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, "rotating", report.Metadata.Encoding)
	assert.Equal(t, 4, report.Metadata.TotalChunks)
	assert.Equal(t, report.BodyStart+report.BodySymbols, report.Stats.Length)

	stdout.Reset()
	require.NoError(t, runInspect(cmd, c, seqPath, false))
	assert.Contains(t, stdout.String(), "Encoding:")
	assert.Contains(t, stdout.String(), "rotating")
}

func TestStats(t *testing.T) {
	c := newTestContainer(t, func(cfg *config.Config) {
		cfg.Codec.Constraints = nil
	})
	dir := t.TempDir()
	strand := filepath.Join(dir, "strand.txt")
	require.NoError(t, os.WriteFile(strand, []byte("GGGGCCAT\n"), 0600))

	cmd, stdout, _ := newTestCommand("")
	require.NoError(t, runStats(cmd, c, strand, true))
	var report containerReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Nil(t, report.Metadata)
	assert.Equal(t, 8, report.Stats.Length)
	assert.Equal(t, 4, report.Stats.MaxHomopolymer)
	assert.Equal(t, 0.75, report.Stats.GCRatio)
	assert.Empty(t, report.Violation)

	strict := newTestContainer(t, func(cfg *config.Config) {
		cfg.Codec.Constraints = &constraint.Thresholds{MaxHomopolymer: constraint.Int(3)}
	})
	stdout.Reset()
	require.NoError(t, runStats(cmd, strict, strand, false))
	assert.Contains(t, stdout.String(), "homopolymer: run of 4 exceeds 3")
}

func TestStatsOfContainer(t *testing.T) {
	c := newTestContainer(t, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "input.bin")
	seqPath := filepath.Join(dir, "input.dna")
	require.NoError(t, os.WriteFile(in, bytes.Repeat([]byte{7}, 64), 0600))

	cmd, stdout, _ := newTestCommand("")
	require.NoError(t, runEncode(cmd, c, in, seqPath, encodeOptions{}))
	require.NoError(t, runStats(cmd, c, seqPath, true))

	var report containerReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	require.NotNil(t, report.Metadata)
	assert.Equal(t, 2, report.Metadata.TotalChunks)
	assert.Greater(t, report.Overhead, 0.0)
}

func TestRunsCommands(t *testing.T) {
	c := newTestContainer(t, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "input.bin")
	require.NoError(t, os.WriteFile(in, []byte("ledger me"), 0600))

	cmd, stdout, stderr := newTestCommand("")
	require.NoError(t, runEncode(cmd, c, in, filepath.Join(dir, "out.dna"), encodeOptions{}))

	require.NoError(t, runListRuns(cmd, c, 10, true))
	var runs []*storage.Manifest
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &runs))
	require.Len(t, runs, 1)
	id := runs[0].ID
	assert.Contains(t, stderr.String(), "run "+id)

	stdout.Reset()
	require.NoError(t, runListRuns(cmd, c, 10, false))
	assert.Contains(t, stdout.String(), "OPERATION")
	assert.Contains(t, stdout.String(), id)

	stdout.Reset()
	require.NoError(t, runShowRun(cmd, c, id, false))
	assert.Contains(t, stdout.String(), "Operation:")
	assert.Contains(t, stdout.String(), storage.Digest([]byte("ledger me")))

	require.NoError(t, runDeleteRun(cmd, c, id))
	assert.ErrorIs(t, runShowRun(cmd, c, id, true), storage.ErrRunNotFound)
}

func TestRunsLedgerDisabled(t *testing.T) {
	c := newTestContainer(t, func(cfg *config.Config) { cfg.Ledger.Enabled = false })
	cmd, _, _ := newTestCommand("")
	err := runListRuns(cmd, c, 0, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "dnastore.yaml")
	cmd, stdout, _ := newTestCommand("")

	require.NoError(t, runInit(cmd, path, "/srv/dna", false))
	assert.Contains(t, stdout.String(), "API key:")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/dna/ledger", cfg.Ledger.Path)
	assert.Len(t, cfg.Server.APIKey, 64)

	err = runInit(cmd, path, "/srv/dna", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, runInit(cmd, path, "/srv/other", true))
	cfg, err = config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/other/ledger", cfg.Ledger.Path)
}

func TestApplyCodecFlags(t *testing.T) {
	cmd := &cobra.Command{}
	addCodecFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Set("ecc", "hamming"))
	require.NoError(t, cmd.Flags().Set("chunk-size", "64"))
	require.NoError(t, cmd.Flags().Set("max-homopolymer", "3"))

	cfg := config.DefaultConfig()
	cfg.Codec.Constraints = &constraint.Thresholds{MinGC: constraint.Float(0.4)}
	original := cfg.Codec.Constraints
	applyCodecFlags(cmd, cfg)

	assert.Equal(t, "hamming", cfg.Codec.ECC)
	assert.Equal(t, 64, cfg.Codec.ChunkSize)
	assert.Equal(t, "baseline", cfg.Codec.Strategy)
	assert.Equal(t, 3, *cfg.Codec.Constraints.MaxHomopolymer)
	assert.Equal(t, 0.4, *cfg.Codec.Constraints.MinGC)
	assert.Nil(t, original.MaxHomopolymer)

	// commands without codec flags keep the configuration
	plain := &cobra.Command{}
	cfg = config.DefaultConfig()
	applyCodecFlags(plain, cfg)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dnastore.yaml")
	cfg := config.DefaultConfig()
	cfg.Codec.ECC = "none"
	cfg.Logging.Level = "debug"
	require.NoError(t, config.SaveConfig(cfg, path))

	cmd := &cobra.Command{}
	cmd.Flags().String("config", path, "")
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("log-format", "", "")
	addCodecFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Set("workers", "4"))

	c := di.NewContainer()
	require.NoError(t, loadConfig(cmd, c))
	assert.Equal(t, "none", c.Config().Codec.ECC)
	assert.Equal(t, 4, c.Config().Codec.Workers)

	require.NoError(t, cmd.Flags().Set("strategy", "quaternary"))
	assert.Error(t, loadConfig(cmd, c))
}
