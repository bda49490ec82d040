package symbol

import (
	"github.com/ssargent/dnastore/pkg/bits"
	"github.com/ssargent/dnastore/pkg/fault"
)

// pairToSymbol is indexed by the two-bit value (first bit high)
var pairToSymbol = [4]byte{'A', 'T', 'C', 'G'}

// SymbolValue returns the 2-bit value of a baseline symbol, or -1
func SymbolValue(s byte) int {
	switch s {
	case 'A':
		return 0
	case 'T':
		return 1
	case 'C':
		return 2
	case 'G':
		return 3
	}
	return -1
}

// PairSymbol returns the baseline symbol for a 2-bit value
func PairSymbol(v byte) byte {
	return pairToSymbol[v&3]
}

// Baseline maps two bits to one symbol
type Baseline struct{}

func (Baseline) Name() string { return NameBaseline }

func (Baseline) BitsPerSymbol() float64 { return 2.0 }

func (Baseline) SymbolCount(nbits int) int { return (nbits + 1) / 2 }

// Encode maps b two bits at a time. b must have even length.
func (Baseline) Encode(b bits.Bits) (string, error) {
	if len(b)%2 != 0 {
		return "", fault.New(fault.InvalidInput, "baseline.encode", "bit length %d is odd", len(b))
	}
	out := make([]byte, len(b)/2)
	for i := range out {
		hi, lo := b[2*i], b[2*i+1]
		if hi > 1 || lo > 1 {
			return "", fault.New(fault.InvalidInput, "baseline.encode", "non-bit value at position %d", 2*i)
		}
		out[i] = pairToSymbol[hi<<1|lo]
	}
	return string(out), nil
}

// Decode is the exact inverse of Encode
func (Baseline) Decode(seq string) (bits.Bits, error) {
	out := make(bits.Bits, 0, len(seq)*2)
	for i := 0; i < len(seq); i++ {
		v := SymbolValue(seq[i])
		if v < 0 {
			return nil, fault.New(fault.InvalidInput, "baseline.decode", "invalid symbol %q at position %d", seq[i], i)
		}
		out = append(out, byte(v>>1), byte(v&1))
	}
	return out, nil
}
