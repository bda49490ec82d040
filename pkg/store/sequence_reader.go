package store

import (
	"errors"
	"io"
	"os"

	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/header"
)

// SequenceReader gives random access to the chunks of a container file
// without loading its body
type SequenceReader struct {
	file    *os.File
	storage *Storage
	cfg     *decoderConfig
}

// OpenSequence reads the prefix and header of the container at path
func (s *Storage) OpenSequence(path string) (*SequenceReader, error) {
	file, err := os.Open(path) // #nosec G304 - caller-supplied container path
	if err != nil {
		return nil, err
	}

	cfg, err := s.readLayout(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &SequenceReader{file: file, storage: s, cfg: cfg}, nil
}

func (s *Storage) readLayout(file *os.File) (*decoderConfig, error) {
	prefix := make([]byte, header.PrefixSymbols)
	if _, err := file.ReadAt(prefix, 0); err != nil {
		return nil, fault.New(fault.HeaderCorrupt, "store.open_sequence", "file too short for length prefix")
	}
	n, err := headerLength(string(prefix), "store.open_sequence")
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if int64(header.PrefixSymbols+n) > info.Size() {
		return nil, fault.New(fault.HeaderCorrupt, "store.open_sequence", "header of %d symbols overruns file of %d", n, info.Size())
	}

	hdr := make([]byte, n)
	if _, err := file.ReadAt(hdr, header.PrefixSymbols); err != nil {
		return nil, fault.New(fault.HeaderCorrupt, "store.open_sequence", "file too short for %d-symbol header", n)
	}
	meta, err := header.Parse(string(hdr))
	if err != nil {
		return nil, err
	}
	return s.configure(meta, n)
}

// Layout returns the parsed header and offsets
func (r *SequenceReader) Layout() *Layout {
	return r.cfg.layout
}

// ReadChunk decodes chunk i, reading only its symbol run
func (r *SequenceReader) ReadChunk(i int) ([]byte, error) {
	total := r.cfg.layout.Metadata.TotalChunks
	if i < 0 || i >= total {
		return nil, fault.New(fault.OutOfBounds, "store.read_chunk", "chunk %d not in [0, %d)", i, total)
	}

	start, end := r.cfg.indexer.ChunkRange(i, r.cfg.layout.BodyStart)
	run := make([]byte, end-start)
	if _, err := r.file.ReadAt(run, int64(start)); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fault.New(fault.IndexMismatch, "store.read_chunk", "file ends before chunk %d", i)
		}
		return nil, err
	}
	return r.storage.decodeRun(r.cfg, string(run), i)
}

// Close closes the underlying file
func (r *SequenceReader) Close() error {
	return r.file.Close()
}
