package api

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/header"
	"github.com/ssargent/dnastore/pkg/metrics"
	"github.com/ssargent/dnastore/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string // empty disables authentication
	MaxBodyBytes int64  // 0 means no limit
}

// Dependencies are the collaborators a Server serves
type Dependencies struct {
	Codec    Codec
	Ledger   RunLedger // optional; nil disables run recording
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // nil serves the default registry
	Logger   *slog.Logger
}

// DecodeRequest carries a container in a JSON body
type DecodeRequest struct {
	Sequence string `json:"sequence"`
}

// EncodeResponse is returned by POST /encode
type EncodeResponse struct {
	RunID    string           `json:"run_id,omitempty"`
	Sequence string           `json:"sequence"`
	Bytes    int              `json:"bytes"`
	Symbols  int              `json:"symbols"`
	Chunks   int              `json:"chunks"`
	Stats    constraint.Stats `json:"stats"`
	Overhead float64          `json:"overhead"`
}

// DecodeResponse is returned by POST /decode; Data is base64 in JSON
type DecodeResponse struct {
	RunID    string           `json:"run_id,omitempty"`
	Data     []byte           `json:"data"`
	Bytes    int              `json:"bytes"`
	Metadata *header.Metadata `json:"metadata"`
}

// ChunkResponse is returned by POST /decode/{chunk}
type ChunkResponse struct {
	Index int    `json:"index"`
	Data  []byte `json:"data"`
}

// InspectResponse describes a container without decoding its body
type InspectResponse struct {
	Metadata      *header.Metadata `json:"metadata"`
	HeaderSymbols int              `json:"header_symbols"`
	BodyStart     int              `json:"body_start"`
	ChunkSymbols  int              `json:"chunk_symbols"`
	BodySymbols   int              `json:"body_symbols"`
	Symbols       int              `json:"symbols"`
	Stats         constraint.Stats `json:"stats"`
}

// RunsResponse lists run manifests, newest first
type RunsResponse struct {
	Runs []*storage.Manifest `json:"runs"`
}
