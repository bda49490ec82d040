// Package index computes where each chunk lives in a container body.
//
// Every packet of a container has the same byte size (packet header plus
// chunk size), every FEC scheme expands a given size to a fixed number of
// bits, and every symbol strategy renders a given bit count to a fixed
// number of symbols. The symbol run of chunk i therefore starts at
// headerEnd + i*ChunkSymbols(), which is what random access and stream
// cursor placement are built on.
package index

import (
	"fmt"

	"github.com/ssargent/dnastore/pkg/codec"
	"github.com/ssargent/dnastore/pkg/ecc"
	"github.com/ssargent/dnastore/pkg/symbol"
)

// Indexer maps chunk indices to symbol offsets
type Indexer struct {
	chunkSize    int
	chunkSymbols int
}

// New creates an indexer for packets of chunkSize payload bytes protected
// by scheme and rendered with strategy
func New(chunkSize int, scheme ecc.Scheme, strategy symbol.Strategy) *Indexer {
	return &Indexer{
		chunkSize:    chunkSize,
		chunkSymbols: strategy.SymbolCount(scheme.ExpandedBits(codec.HeaderSize + chunkSize)),
	}
}

// PacketBytes returns the framed size of one packet
func (ix *Indexer) PacketBytes() int {
	return codec.HeaderSize + ix.chunkSize
}

// ChunkSymbols returns the symbol length of one encoded packet
func (ix *Indexer) ChunkSymbols() int {
	return ix.chunkSymbols
}

// ChunkRange returns the [start, end) symbol slice of chunk i in a
// container whose body begins at headerEnd
func (ix *Indexer) ChunkRange(i, headerEnd int) (int, int) {
	start := headerEnd + i*ix.chunkSymbols
	return start, start + ix.chunkSymbols
}

// BodySymbols returns the body length of a container with the given
// number of chunks
func (ix *Indexer) BodySymbols(chunks int) int {
	return chunks * ix.chunkSymbols
}

func (ix *Indexer) String() string {
	return fmt.Sprintf("indexer{chunk=%d packet=%d symbols=%d}", ix.chunkSize, ix.PacketBytes(), ix.chunkSymbols)
}
