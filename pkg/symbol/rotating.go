package symbol

import (
	"math"
	"math/big"
	"strings"

	"github.com/ssargent/dnastore/pkg/bits"
	"github.com/ssargent/dnastore/pkg/fault"
)

// rotatingBitsPerSymbol is log2(3) as advertised to the indexer
const rotatingBitsPerSymbol = 1.58496

// Rotating encodes a bit string as base-3 digits, each selecting a forward
// rotation of 1, 2 or 3 positions from the previous symbol in the cycle
// A C G T. No symbol ever equals its predecessor. The implied symbol
// before the first one is A.
type Rotating struct{}

func (Rotating) Name() string { return NameRotating }

func (Rotating) BitsPerSymbol() float64 { return rotatingBitsPerSymbol }

// SymbolCount returns ceil((nbits+1) * log(2)/log(3)), the trit count of
// the sentinel-prefixed input.
func (Rotating) SymbolCount(nbits int) int {
	return int(math.Ceil(float64(nbits+1) * math.Ln2 / math.Log(3)))
}

func cycleIndex(s byte) int {
	return strings.IndexByte(Alphabet, s)
}

func (r Rotating) Encode(b bits.Bits) (string, error) {
	// sentinel 1 keeps leading zeros, then left-pad to whole bytes
	total := len(b) + 1
	pad := (8 - total%8) % 8
	withSentinel := make(bits.Bits, 0, pad+total)
	withSentinel = append(withSentinel, make(bits.Bits, pad)...)
	withSentinel = append(withSentinel, 1)
	for i, bit := range b {
		if bit > 1 {
			return "", fault.New(fault.InvalidInput, "rotating.encode", "non-bit value at position %d", i)
		}
		withSentinel = append(withSentinel, bit)
	}

	value := new(big.Int).SetBytes(withSentinel.Pack())
	digits := value.Text(3)
	n := r.SymbolCount(len(b))
	if len(digits) > n {
		return "", fault.New(fault.InvalidInput, "rotating.encode", "value needs %d trits, budget is %d", len(digits), n)
	}
	digits = strings.Repeat("0", n-len(digits)) + digits

	out := make([]byte, n)
	prev := 0
	for i := 0; i < n; i++ {
		idx := (prev + 1 + int(digits[i]-'0')) % 4
		out[i] = Alphabet[idx]
		prev = idx
	}
	return string(out), nil
}

func (Rotating) Decode(seq string) (bits.Bits, error) {
	if seq == "" {
		return bits.Bits{}, nil
	}

	digits := make([]byte, len(seq))
	prev := 0
	for i := 0; i < len(seq); i++ {
		cur := cycleIndex(seq[i])
		if cur < 0 {
			return nil, fault.New(fault.InvalidInput, "rotating.decode", "invalid symbol %q at position %d", seq[i], i)
		}
		t := ((cur-prev-1)%4 + 4) % 4
		if t == 3 {
			return nil, fault.New(fault.InvalidInput, "rotating.decode", "symbol %q repeats its predecessor at position %d", seq[i], i)
		}
		digits[i] = byte('0' + t)
		prev = cur
	}

	value, ok := new(big.Int).SetString(string(digits), 3)
	if !ok || value.Sign() == 0 {
		return nil, fault.New(fault.InvalidInput, "rotating.decode", "sequence carries no sentinel bit")
	}

	// drop the sentinel, which is the most significant set bit
	out, err := bits.Parse(value.Text(2)[1:])
	if err != nil {
		return nil, err
	}
	return out, nil
}
