// Package api provides interfaces for dependency injection
package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/dnastore/pkg/header"
	"github.com/ssargent/dnastore/pkg/storage"
	"github.com/ssargent/dnastore/pkg/store"
)

// Codec is the part of *store.Storage the handlers drive
type Codec interface {
	Encode(data []byte) (string, error)
	DecodeWithMetadata(seq string) ([]byte, *header.Metadata, error)
	DecodeChunk(seq string, i int) ([]byte, error)
	ReadHeader(seq string) (*store.Layout, error)
}

// RunLedger records and serves run manifests
type RunLedger interface {
	Record(m *storage.Manifest) (ksuid.KSUID, error)
	Get(id string) (*storage.Manifest, error)
	List(limit int) ([]*storage.Manifest, error)
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServer builds a server over the given collaborators
	CreateServer(config ServerConfig, deps Dependencies) *Server
}
