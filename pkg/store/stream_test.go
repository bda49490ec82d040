package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/ecc"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/header"
	"github.com/ssargent/dnastore/pkg/symbol"
)

func TestStreamMatchesBuffered(t *testing.T) {
	data := bytes.Repeat([]byte("Stream me!"), 100)

	for _, method := range ecc.Methods() {
		for _, strategy := range symbol.Names() {
			t.Run(string(method)+"/"+strategy, func(t *testing.T) {
				s := newStorage(t, Options{ECC: method, Strategy: strategy, ChunkSize: 32})

				buffered, err := s.Encode(data)
				require.NoError(t, err)

				var encoded bytes.Buffer
				stats, err := s.EncodeStream(context.Background(), bytes.NewReader(data), &encoded, StreamOptions{Size: int64(len(data))})
				require.NoError(t, err)
				assert.Equal(t, buffered, encoded.String())
				assert.Equal(t, 32, stats.Chunks)
				assert.Equal(t, int64(encoded.Len()), stats.Symbols)

				var decoded bytes.Buffer
				meta, err := s.DecodeStream(context.Background(), strings.NewReader(encoded.String()), &decoded)
				require.NoError(t, err)
				assert.Equal(t, data, decoded.Bytes())
				assert.Equal(t, method, meta.ECC)

				fromBuffered, err := s.Decode(buffered)
				require.NoError(t, err)
				assert.Equal(t, fromBuffered, decoded.Bytes())
			})
		}
	}
}

func TestEncodeStreamProbesSize(t *testing.T) {
	data := randomBytes(777, 12)
	s := newStorage(t, Options{ChunkSize: 64})

	var encoded bytes.Buffer
	stats, err := s.EncodeStream(context.Background(), bytes.NewReader(data), &encoded, StreamOptions{Size: -1})
	require.NoError(t, err)
	assert.Equal(t, 13, stats.Chunks)

	got, err := s.Decode(encoded.String())
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestEncodeStreamNeedsSizeWithoutSeeker(t *testing.T) {
	s := newStorage(t, Options{})
	r := io.MultiReader(strings.NewReader("not seekable"))

	_, err := s.EncodeStream(context.Background(), r, io.Discard, StreamOptions{Size: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrInvalidInput))
}

func TestEncodeStreamShortInput(t *testing.T) {
	s := newStorage(t, Options{ChunkSize: 8})
	_, err := s.EncodeStream(context.Background(), strings.NewReader("short"), io.Discard, StreamOptions{Size: 20})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrInvalidInput))
}

func TestEncodeStreamCancelled(t *testing.T) {
	s := newStorage(t, Options{ChunkSize: 8})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := randomBytes(64, 13)
	_, err := s.EncodeStream(ctx, bytes.NewReader(data), io.Discard, StreamOptions{Size: int64(len(data))})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeStreamTruncated(t *testing.T) {
	s := newStorage(t, Options{ChunkSize: 16})
	seq, err := s.Encode(randomBytes(64, 14))
	require.NoError(t, err)

	_, err = s.DecodeStream(context.Background(), strings.NewReader(seq[:len(seq)-10]), io.Discard)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrIndexMismatch))

	_, err = s.DecodeStream(context.Background(), strings.NewReader(seq[:10]), io.Discard)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrHeaderCorrupt))
}

func TestDecodeStreamCorruptPrefix(t *testing.T) {
	s := newStorage(t, Options{ChunkSize: 16})
	seq, err := s.Encode(randomBytes(64, 17))
	require.NoError(t, err)

	tests := []struct {
		name   string
		prefix string
	}{
		{"flipped leading symbol", "G" + seq[1:header.PrefixSymbols]},
		{"zero length", header.EncodeLengthPrefix(0)},
		{"beyond header bound", header.EncodeLengthPrefix(header.MaxSymbols + 1)},
		{"within bound, past end of stream", header.EncodeLengthPrefix(header.MaxSymbols)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			damaged := tt.prefix + seq[header.PrefixSymbols:]
			_, err := s.DecodeStream(context.Background(), strings.NewReader(damaged), io.Discard)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fault.ErrHeaderCorrupt))

			_, err = s.Decode(damaged)
			assert.True(t, errors.Is(err, fault.ErrHeaderCorrupt))
		})
	}
}

func TestCheckpointResume(t *testing.T) {
	data := bytes.Repeat([]byte("A"), 128*200)
	ckpt := filepath.Join(t.TempDir(), "encode.ckpt")
	s := newStorage(t, Options{ChunkSize: 128})

	require.NoError(t, SaveCheckpoint(ckpt, Checkpoint{ProcessedChunks: 100}))

	var out bytes.Buffer
	stats, err := s.EncodeStream(context.Background(), bytes.NewReader(data), &out, StreamOptions{
		Size:           int64(len(data)),
		CheckpointPath: ckpt,
	})
	require.NoError(t, err)

	// only the remaining 100 chunk runs of 616 symbols are written
	assert.Equal(t, 61600, out.Len())
	assert.Equal(t, 100, stats.Skipped)
	assert.NoFileExists(t, ckpt)

	full, err := s.Encode(data)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(full, out.String()))
}

// failingWriter accepts a fixed number of writes, then fails
type failingWriter struct {
	buf    bytes.Buffer
	writes int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes == 0 {
		return 0, errDiskFull
	}
	w.writes--
	return w.buf.Write(p)
}

func TestCheckpointInterruptedEncode(t *testing.T) {
	data := randomBytes(1000, 15)
	ckpt := filepath.Join(t.TempDir(), "nested", "encode.ckpt")
	s := newStorage(t, Options{
		ChunkSize:   100,
		Constraints: &constraint.Thresholds{MaxHomopolymer: constraint.Int(6)},
	})

	// prelude plus three chunks get through
	w := &failingWriter{writes: 4}
	_, err := s.EncodeStream(context.Background(), bytes.NewReader(data), w, StreamOptions{Size: int64(len(data)), CheckpointPath: ckpt})
	require.ErrorIs(t, err, errDiskFull)

	cp, err := LoadCheckpoint(ckpt)
	require.NoError(t, err)
	assert.Equal(t, 3, cp.ProcessedChunks)

	var rest bytes.Buffer
	stats, err := s.EncodeStream(context.Background(), bytes.NewReader(data), &rest, StreamOptions{Size: int64(len(data)), CheckpointPath: ckpt})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, 10, stats.Chunks)

	resumed := w.buf.String() + rest.String()
	full, err := s.Encode(data)
	require.NoError(t, err)
	assert.Equal(t, full, resumed)

	got, err := s.Decode(resumed)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCheckpointFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "progress.ckpt")

	cp, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cp.ProcessedChunks)

	require.NoError(t, SaveCheckpoint(path, Checkpoint{ProcessedChunks: 42}))
	assert.NoFileExists(t, path+".tmp")

	cp, err = LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cp.ProcessedChunks)

	require.NoError(t, os.WriteFile(path, []byte{0xC1, 0x00}, 0600))
	_, err = LoadCheckpoint(path)
	assert.Error(t, err)

	require.NoError(t, RemoveCheckpoint(path))
	require.NoError(t, RemoveCheckpoint(path))
	assert.NoFileExists(t, path)
}

func TestCheckpointBeyondInput(t *testing.T) {
	ckpt := filepath.Join(t.TempDir(), "encode.ckpt")
	require.NoError(t, SaveCheckpoint(ckpt, Checkpoint{ProcessedChunks: 9}))

	s := newStorage(t, Options{ChunkSize: 10})
	_, err := s.EncodeStream(context.Background(), strings.NewReader("tiny"), io.Discard, StreamOptions{Size: 4, CheckpointPath: ckpt})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrInvalidInput))
}
