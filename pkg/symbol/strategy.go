// Package symbol renders bit strings as nucleotide sequences and back.
//
// Two strategies are available and are selected by name:
//
//   - baseline: a fixed 2-bit map (00->A, 01->T, 10->C, 11->G)
//   - rotating: a base-3 rotation over the cycle A C G T that never repeats
//     the previous symbol, at about 1.585 bits per symbol
//
// The encoded length of both strategies depends only on the input bit
// length, which the address indexer relies on.
package symbol

import (
	"github.com/ssargent/dnastore/pkg/bits"
	"github.com/ssargent/dnastore/pkg/fault"
)

// Alphabet is the symbol set of every sequence
const Alphabet = "ACGT"

// Strategy names as persisted in the container header
const (
	NameBaseline = "baseline"
	NameRotating = "rotating"
)

// Strategy is a two-way mapping between bit strings and symbol sequences
type Strategy interface {
	Name() string
	Encode(b bits.Bits) (string, error)
	Decode(seq string) (bits.Bits, error)
	// BitsPerSymbol is the nominal information density.
	BitsPerSymbol() float64
	// SymbolCount is the exact encoded length for an input of nbits bits.
	SymbolCount(nbits int) int
}

// ByName returns the strategy registered under name
func ByName(name string) (Strategy, error) {
	switch name {
	case NameBaseline:
		return Baseline{}, nil
	case NameRotating:
		return Rotating{}, nil
	default:
		return nil, fault.New(fault.InvalidInput, "symbol.lookup", "unknown strategy %q", name)
	}
}

// Names lists the registered strategies
func Names() []string {
	return []string{NameBaseline, NameRotating}
}
