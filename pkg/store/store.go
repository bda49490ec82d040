package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ssargent/dnastore/pkg/codec"
	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/ecc"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/header"
	"github.com/ssargent/dnastore/pkg/index"
	"github.com/ssargent/dnastore/pkg/symbol"
)

// Storage encodes byte buffers into containers and decodes them back.
// Its configuration only drives encoding; decoding always follows the
// container header. A Storage is safe for concurrent use.
type Storage struct {
	opts     Options
	scheme   ecc.Scheme
	strategy symbol.Strategy
	codec    *packetCodec
	indexer  *index.Indexer
	logger   *slog.Logger
	metrics  Observer
}

// New creates a Storage. Zero option fields take their DefaultOptions
// values.
func New(opts Options) (*Storage, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	scheme, err := ecc.New(opts.ECC, ecc.Params{NSym: opts.NSym})
	if err != nil {
		return nil, err
	}
	strategy, err := symbol.ByName(opts.Strategy)
	if err != nil {
		return nil, err
	}

	return &Storage{
		opts:     opts,
		scheme:   scheme,
		strategy: strategy,
		codec:    newPacketCodec(scheme, strategy, opts.Backend),
		indexer:  index.New(opts.ChunkSize, scheme, strategy),
		logger:   opts.Logger.With("component", "store"),
		metrics:  opts.Metrics,
	}, nil
}

// Options returns the effective configuration
func (s *Storage) Options() Options {
	return s.opts
}

// ChunkSymbols returns the symbol length of one encoded chunk under the
// encoder configuration
func (s *Storage) ChunkSymbols() int {
	return s.indexer.ChunkSymbols()
}

// Encode renders data as a complete container:
// [LengthPrefix][Header][Body]
func (s *Storage) Encode(data []byte) (seq string, err error) {
	defer s.observe("encode", time.Now(), &err)

	packets, err := codec.Chunk(data, s.opts.ChunkSize)
	if err != nil {
		return "", err
	}

	prelude, err := s.prelude(len(packets))
	if err != nil {
		return "", err
	}

	runs, err := s.encodePackets(context.Background(), packets)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(prelude) + s.indexer.BodySymbols(len(packets)))
	b.WriteString(prelude)
	for _, run := range runs {
		b.WriteString(run)
	}

	s.logger.Debug("encoded container", "bytes", len(data), "chunks", len(packets), "symbols", b.Len())
	return b.String(), nil
}

// Metadata returns the header record for a container of chunks packets
func (s *Storage) Metadata(chunks int) header.Metadata {
	return header.Metadata{
		Version:     header.Version,
		Encoding:    s.strategy.Name(),
		ECC:         s.scheme.Method(),
		ECCParams:   s.scheme.Params(),
		ChunkSize:   s.opts.ChunkSize,
		TotalChunks: chunks,
		Constraints: s.opts.Constraints,
	}
}

// prelude renders the length prefix and header
func (s *Storage) prelude(chunks int) (string, error) {
	hdr, err := header.Create(s.Metadata(chunks))
	if err != nil {
		return "", err
	}
	return header.EncodeLengthPrefix(uint32(len(hdr))) + hdr, nil
}

// encodePacket renders one packet, advancing its nonce until every
// enabled constraint holds. Each attempt re-frames and re-encodes the
// packet from scratch.
func (s *Storage) encodePacket(p *codec.Packet) (string, error) {
	var last *constraint.Violation
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		wire, err := p.WithNonce(uint32(attempt)).Encode()
		if err != nil {
			return "", err
		}
		seq, err := s.codec.render(wire)
		if err != nil {
			return "", err
		}

		last = s.opts.Constraints.Check(seq)
		if last == nil {
			s.metrics.ObservePacket(attempt + 1)
			if attempt > 0 {
				s.logger.Debug("packet accepted after retries", "index", p.Index, "nonce", attempt)
			}
			return seq, nil
		}
	}

	s.metrics.ObservePacket(MaxAttempts)
	return "", &fault.Error{
		Kind: fault.ConstraintUnsatisfiable,
		Op:   "store.encode_packet",
		Msg:  fmt.Sprintf("chunk %d failed %d nonces", p.Index, MaxAttempts),
		Err:  last,
	}
}

type packetResult struct {
	seq string
	err error
}

// encodePackets renders packets in index order, on a worker pool when
// Workers > 1
func (s *Storage) encodePackets(ctx context.Context, packets []*codec.Packet) ([]string, error) {
	runs := make([]string, len(packets))
	if s.opts.Workers <= 1 || len(packets) < 2 {
		for i, p := range packets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			seq, err := s.encodePacket(p)
			if err != nil {
				return nil, err
			}
			runs[i] = seq
		}
		return runs, nil
	}

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make([]packetResult, len(packets))

	var wg sync.WaitGroup
	for w := 0; w < min(s.opts.Workers, len(packets)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				seq, err := s.encodePacket(packets[i])
				results[i] = packetResult{seq: seq, err: err}
				if err != nil {
					cancel()
				}
			}
		}()
	}

feed:
	for i := range packets {
		select {
		case jobs <- i:
		case <-poolCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		runs[i] = r.seq
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ReadHeader parses the length prefix and header of seq
func (s *Storage) ReadHeader(seq string) (*Layout, error) {
	cfg, err := s.decoderFor(seq)
	if err != nil {
		return nil, err
	}
	return cfg.layout, nil
}

// decoderFor builds the decoder configuration described by the header of
// seq. It never touches the Storage's own configuration.
func (s *Storage) decoderFor(seq string) (*decoderConfig, error) {
	if len(seq) < header.PrefixSymbols {
		return nil, fault.New(fault.HeaderCorrupt, "store.read_header", "container too short for length prefix: %d symbols", len(seq))
	}
	n, err := headerLength(seq[:header.PrefixSymbols], "store.read_header")
	if err != nil {
		return nil, err
	}
	headerEnd := header.PrefixSymbols + n
	if headerEnd > len(seq) {
		return nil, fault.New(fault.HeaderCorrupt, "store.read_header", "header of %d symbols overruns container of %d", n, len(seq))
	}

	meta, err := header.Parse(seq[header.PrefixSymbols:headerEnd])
	if err != nil {
		return nil, err
	}
	return s.configure(meta, n)
}

// headerLength decodes a length prefix, rejecting lengths no header can have
func headerLength(prefix, op string) (int, error) {
	n, err := header.DecodeLengthPrefix(prefix)
	if err != nil {
		return 0, fault.Wrap(fault.HeaderCorrupt, op, err)
	}
	if n == 0 || n > header.MaxSymbols {
		return 0, fault.New(fault.HeaderCorrupt, op, "header length %d not in [1, %d]", n, header.MaxSymbols)
	}
	return int(n), nil
}

func (s *Storage) configure(meta *header.Metadata, headerSymbols int) (*decoderConfig, error) {
	scheme, err := meta.Scheme()
	if err != nil {
		return nil, fault.Wrap(fault.HeaderCorrupt, "store.configure", err)
	}
	strategy, err := meta.Strategy()
	if err != nil {
		return nil, fault.Wrap(fault.HeaderCorrupt, "store.configure", err)
	}

	ix := index.New(meta.ChunkSize, scheme, strategy)
	return &decoderConfig{
		layout: &Layout{
			Metadata:      meta,
			HeaderSymbols: headerSymbols,
			BodyStart:     header.PrefixSymbols + headerSymbols,
			ChunkSymbols:  ix.ChunkSymbols(),
		},
		codec:   newPacketCodec(scheme, strategy, s.opts.Backend),
		indexer: ix,
	}, nil
}

// Decode recovers the bytes of a container
func (s *Storage) Decode(seq string) ([]byte, error) {
	data, _, err := s.DecodeWithMetadata(seq)
	return data, err
}

// DecodeWithMetadata recovers the bytes of a container along with the
// header it was written with. Symbols after the last chunk are ignored.
func (s *Storage) DecodeWithMetadata(seq string) (data []byte, meta *header.Metadata, err error) {
	defer s.observe("decode", time.Now(), &err)

	cfg, err := s.decoderFor(seq)
	if err != nil {
		return nil, nil, err
	}
	m := cfg.layout.Metadata

	out := make([]byte, 0, m.TotalChunks*m.ChunkSize)
	for i := 0; i < m.TotalChunks; i++ {
		payload, err := s.decodeAt(cfg, seq, i)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, payload...)
	}
	return out, m, nil
}

// DecodeChunk recovers chunk i of a container without decoding the rest
func (s *Storage) DecodeChunk(seq string, i int) (data []byte, err error) {
	defer s.observe("decode_chunk", time.Now(), &err)

	cfg, err := s.decoderFor(seq)
	if err != nil {
		return nil, err
	}
	if total := cfg.layout.Metadata.TotalChunks; i < 0 || i >= total {
		return nil, fault.New(fault.OutOfBounds, "store.decode_chunk", "chunk %d not in [0, %d)", i, total)
	}
	return s.decodeAt(cfg, seq, i)
}

func (s *Storage) decodeAt(cfg *decoderConfig, seq string, i int) ([]byte, error) {
	start, end := cfg.indexer.ChunkRange(i, cfg.layout.BodyStart)
	if end > len(seq) {
		return nil, fault.New(fault.IndexMismatch, "store.decode", "container ends at symbol %d, chunk %d needs [%d, %d)", len(seq), i, start, end)
	}
	return s.decodeRun(cfg, seq[start:end], i)
}

// decodeRun inverts mapping, FEC and framing for one chunk run and checks
// that the packet is the one expected at position i
func (s *Storage) decodeRun(cfg *decoderConfig, run string, i int) ([]byte, error) {
	wire, report, err := cfg.codec.recover(run)
	if err != nil {
		return nil, err
	}
	if report.Corrected {
		s.metrics.ObserveCorrection(string(cfg.codec.scheme.Method()))
		s.logger.Warn("corrected bit errors in chunk", "index", i, "ecc", cfg.codec.scheme.Method())
	}

	p, err := codec.NewPacketCodec().Unpack(wire)
	if err != nil {
		return nil, err
	}
	if int(p.Index) != i {
		return nil, fault.New(fault.IndexMismatch, "store.decode", "expected chunk %d, found chunk %d", i, p.Index)
	}
	if int(p.DeclaredLength) > cfg.layout.Metadata.ChunkSize {
		return nil, fault.New(fault.CorruptionDetected, "store.decode", "chunk %d declares %d bytes, chunk size is %d", i, p.DeclaredLength, cfg.layout.Metadata.ChunkSize)
	}
	return p.Payload, nil
}

func (s *Storage) observe(op string, start time.Time, errp *error) {
	s.metrics.ObserveOperation(op, time.Since(start), *errp)
}
