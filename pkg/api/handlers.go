package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/header"
	"github.com/ssargent/dnastore/pkg/storage"
)

const defaultRunsLimit = 50

// handleHealth reports that the server is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleEncode renders the raw request body as a container.
// The optional source query parameter is stored in the run manifest.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	data, err := s.readBody(w, r)
	if err != nil {
		sendFault(w, err)
		return
	}

	seq, err := s.codec.Encode(data)
	if err != nil {
		s.recordRun(storage.OperationEncode, r, nil, nil, "", start, err)
		sendFault(w, err)
		return
	}

	layout, err := s.codec.ReadHeader(seq)
	if err != nil {
		sendFault(w, err)
		return
	}

	sendSuccess(w, EncodeResponse{
		RunID:    s.recordRun(storage.OperationEncode, r, layout.Metadata, data, seq, start, nil),
		Sequence: seq,
		Bytes:    len(data),
		Symbols:  len(seq),
		Chunks:   layout.Metadata.TotalChunks,
		Stats:    constraint.Analyze(seq),
		Overhead: constraint.Overhead(len(data), len(seq)),
	})
}

// handleDecode recovers the bytes of a container
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	seq, err := s.readSequence(w, r)
	if err != nil {
		sendFault(w, err)
		return
	}

	data, meta, err := s.codec.DecodeWithMetadata(seq)
	runID := s.recordRun(storage.OperationDecode, r, meta, data, seq, start, err)
	if err != nil {
		sendFault(w, err)
		return
	}

	sendSuccess(w, DecodeResponse{
		RunID:    runID,
		Data:     data,
		Bytes:    len(data),
		Metadata: meta,
	})
}

// handleDecodeChunk recovers one chunk of a container
func (s *Server) handleDecodeChunk(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "chunk"))
	if err != nil {
		sendError(w, "chunk must be an integer", http.StatusBadRequest)
		return
	}

	seq, err := s.readSequence(w, r)
	if err != nil {
		sendFault(w, err)
		return
	}

	data, err := s.codec.DecodeChunk(seq, i)
	if err != nil {
		sendFault(w, err)
		return
	}

	sendSuccess(w, ChunkResponse{Index: i, Data: data})
}

// handleInspect parses the header of a container and scores the sequence
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	seq, err := s.readSequence(w, r)
	if err != nil {
		sendFault(w, err)
		return
	}

	layout, err := s.codec.ReadHeader(seq)
	if err != nil {
		sendFault(w, err)
		return
	}

	sendSuccess(w, InspectResponse{
		Metadata:      layout.Metadata,
		HeaderSymbols: layout.HeaderSymbols,
		BodyStart:     layout.BodyStart,
		ChunkSymbols:  layout.ChunkSymbols,
		BodySymbols:   layout.BodySymbols(),
		Symbols:       len(seq),
		Stats:         constraint.Analyze(seq),
	})
}

// handleListRuns lists recorded runs, newest first. ?limit= caps the count.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		sendError(w, "run ledger is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			sendError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.ledger.List(limit)
	s.metrics.RecordLedgerOperation("list", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list runs: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, RunsResponse{Runs: runs})
}

// handleGetRun returns one run manifest
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		sendError(w, "run ledger is disabled", http.StatusServiceUnavailable)
		return
	}

	m, err := s.ledger.Get(chi.URLParam(r, "id"))
	s.metrics.RecordLedgerOperation("get", err == nil)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrRunNotFound):
			sendError(w, "Run not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrInvalidRunID):
			sendError(w, err.Error(), http.StatusBadRequest)
		default:
			sendError(w, fmt.Sprintf("Failed to get run: %v", err), http.StatusInternalServerError)
		}
		return
	}

	sendSuccess(w, m)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fault.Wrap(fault.InvalidInput, "api.read_body", err)
	}
	return data, nil
}

// readSequence accepts either a JSON DecodeRequest or the bare sequence
// as text. Surrounding whitespace is dropped.
func (s *Server) readSequence(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := s.readBody(w, r)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req DecodeRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", fault.New(fault.InvalidInput, "api.read_sequence", "invalid JSON request: %v", err)
		}
		return strings.TrimSpace(req.Sequence), nil
	}
	return strings.TrimSpace(string(body)), nil
}

// recordRun stores a manifest for a codec run and returns its id. Ledger
// failures are logged and never fail the request.
func (s *Server) recordRun(op string, r *http.Request, meta *header.Metadata, data []byte, seq string, start time.Time, runErr error) string {
	if s.ledger == nil {
		return ""
	}

	m := &storage.Manifest{
		Operation: op,
		CreatedAt: start,
		Source:    r.URL.Query().Get("source"),
		Duration:  time.Since(start),
	}
	m.Describe(meta)
	if runErr == nil {
		m.Score(data, seq)
	}
	m.Fail(runErr)

	id, err := s.ledger.Record(m)
	s.metrics.RecordLedgerOperation("record", err == nil)
	if err != nil {
		s.logger.Warn("failed to record run", "operation", op, "error", err)
		return ""
	}
	return id.String()
}
