package store

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/ssargent/dnastore/pkg/codec"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/header"
)

// StreamOptions configures EncodeStream
type StreamOptions struct {
	// Size is the number of input bytes. A negative size is probed by
	// seeking when the reader is an io.Seeker.
	Size int64
	// CheckpointPath, when set, records progress after every chunk and
	// lets an interrupted encode resume. The file is removed on success.
	CheckpointPath string
}

// StreamStats summarizes a streaming encode
type StreamStats struct {
	Chunks  int   // chunks in the container
	Skipped int   // chunks skipped because a checkpoint covered them
	Symbols int64 // symbols written by this call
}

// EncodeStream writes the container for r to w one chunk at a time. When a
// checkpoint records earlier progress, the prefix, header and completed
// chunks are assumed to be in w already; the matching input is skipped and
// only the remaining chunk runs are written.
func (s *Storage) EncodeStream(ctx context.Context, r io.Reader, w io.Writer, opts StreamOptions) (stats *StreamStats, err error) {
	defer s.observe("encode_stream", time.Now(), &err)

	size := opts.Size
	if size < 0 {
		if size, err = probeSize(r); err != nil {
			return nil, err
		}
	}

	chunkSize := int64(s.opts.ChunkSize)
	total := int((size + chunkSize - 1) / chunkSize)
	stats = &StreamStats{Chunks: total}

	var cp Checkpoint
	if opts.CheckpointPath != "" {
		if cp, err = LoadCheckpoint(opts.CheckpointPath); err != nil {
			return nil, err
		}
	}
	if cp.ProcessedChunks > total {
		return nil, fault.New(fault.InvalidInput, "store.encode_stream", "checkpoint covers %d chunks, input has %d", cp.ProcessedChunks, total)
	}

	if cp.ProcessedChunks == 0 {
		prelude, err := s.prelude(total)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, prelude); err != nil {
			return nil, err
		}
		stats.Symbols += int64(len(prelude))
	} else {
		skip := int64(cp.ProcessedChunks) * chunkSize
		if _, err := io.CopyN(io.Discard, r, skip); err != nil {
			return nil, fault.New(fault.InvalidInput, "store.encode_stream", "input ended while skipping %d checkpointed bytes", skip)
		}
		stats.Skipped = cp.ProcessedChunks
		s.logger.Info("resuming stream encode", "processed", cp.ProcessedChunks, "total", total)
	}

	buf := make([]byte, s.opts.ChunkSize)
	remaining := size - int64(cp.ProcessedChunks)*chunkSize
	for i := cp.ProcessedChunks; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		want := int(min(chunkSize, remaining))
		n, err := io.ReadFull(r, buf[:want])
		if err != nil {
			return stats, fault.New(fault.InvalidInput, "store.encode_stream", "input ended at chunk %d after %d of %d bytes", i, n, want)
		}
		remaining -= int64(n)

		seq, err := s.encodePacket(codec.NewPacket(uint32(i), buf[:n], s.opts.ChunkSize))
		if err != nil {
			return stats, err
		}
		if _, err := io.WriteString(w, seq); err != nil {
			return stats, err
		}
		stats.Symbols += int64(len(seq))

		if opts.CheckpointPath != "" {
			if err := SaveCheckpoint(opts.CheckpointPath, Checkpoint{ProcessedChunks: i + 1}); err != nil {
				return stats, err
			}
		}
	}

	if opts.CheckpointPath != "" {
		if err := RemoveCheckpoint(opts.CheckpointPath); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// DecodeStream reads a container from r and writes the recovered bytes to
// w one chunk at a time. Input after the last chunk is not read.
func (s *Storage) DecodeStream(ctx context.Context, r io.Reader, w io.Writer) (meta *header.Metadata, err error) {
	defer s.observe("decode_stream", time.Now(), &err)

	br := bufio.NewReader(r)

	prefix := make([]byte, header.PrefixSymbols)
	if _, err := io.ReadFull(br, prefix); err != nil {
		return nil, fault.New(fault.HeaderCorrupt, "store.decode_stream", "stream too short for length prefix")
	}
	n, err := headerLength(string(prefix), "store.decode_stream")
	if err != nil {
		return nil, err
	}

	hdr := make([]byte, n)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, fault.New(fault.HeaderCorrupt, "store.decode_stream", "stream too short for %d-symbol header", n)
	}
	meta, err = header.Parse(string(hdr))
	if err != nil {
		return nil, err
	}
	cfg, err := s.configure(meta, n)
	if err != nil {
		return nil, err
	}

	run := make([]byte, cfg.layout.ChunkSymbols)
	for i := 0; i < meta.TotalChunks; i++ {
		if err := ctx.Err(); err != nil {
			return meta, err
		}
		if _, err := io.ReadFull(br, run); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return meta, fault.New(fault.IndexMismatch, "store.decode_stream", "stream truncated at chunk %d", i)
			}
			return meta, err
		}

		payload, err := s.decodeRun(cfg, string(run), i)
		if err != nil {
			return meta, err
		}
		if _, err := w.Write(payload); err != nil {
			return meta, err
		}
	}
	return meta, nil
}

func probeSize(r io.Reader) (int64, error) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return 0, fault.New(fault.InvalidInput, "store.encode_stream", "size must be given for a reader that cannot seek")
	}
	pos, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
		return 0, err
	}
	return end - pos, nil
}
