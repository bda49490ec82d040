package store

import (
	"github.com/ssargent/dnastore/pkg/header"
	"github.com/ssargent/dnastore/pkg/index"
)

// Layout describes where the parts of a container sit
type Layout struct {
	Metadata      *header.Metadata
	HeaderSymbols int // symbols between the length prefix and the body
	BodyStart     int // offset of the first chunk
	ChunkSymbols  int // symbols per chunk
}

// BodySymbols returns the expected body length
func (l *Layout) BodySymbols() int {
	return l.Metadata.TotalChunks * l.ChunkSymbols
}

// decoderConfig is rebuilt from the header for every decode call
type decoderConfig struct {
	layout  *Layout
	codec   *packetCodec
	indexer *index.Indexer
}
