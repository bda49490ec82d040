// Package bits holds the unpacked bit representation shared by the symbol
// mappers and the Hamming code. A Bits value stores one bit per byte
// (0 or 1), most significant bit of each source byte first.
package bits

import (
	"github.com/ssargent/dnastore/pkg/fault"
)

// Bits is an unpacked bit string
type Bits []byte

// FromBytes expands data into its bit string, MSB first
func FromBytes(data []byte) Bits {
	out := make(Bits, 0, len(data)*8)
	for _, b := range data {
		for shift := 7; shift >= 0; shift-- {
			out = append(out, (b>>uint(shift))&1)
		}
	}
	return out
}

// ToBytes packs b into bytes. The length must be a multiple of 8.
func (b Bits) ToBytes() ([]byte, error) {
	if len(b)%8 != 0 {
		return nil, fault.New(fault.LengthError, "bits.pack", "bit length %d is not a multiple of 8", len(b))
	}
	out := make([]byte, len(b)/8)
	for i, bit := range b {
		if bit > 1 {
			return nil, fault.New(fault.InvalidInput, "bits.pack", "value %d at position %d is not a bit", bit, i)
		}
		out[i/8] |= bit << uint(7-i%8)
	}
	return out, nil
}

// Parse converts a string of '0' and '1' characters into Bits
func Parse(s string) (Bits, error) {
	out := make(Bits, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			out[i] = 1
		default:
			return nil, fault.New(fault.InvalidInput, "bits.parse", "invalid character %q at position %d", s[i], i)
		}
	}
	return out, nil
}

// String renders b as '0'/'1' characters
func (b Bits) String() string {
	out := make([]byte, len(b))
	for i, bit := range b {
		out[i] = '0' + bit
	}
	return string(out)
}

// Pack packs b MSB first, zero padding the final byte
func (b Bits) Pack() []byte {
	out := make([]byte, (len(b)+7)/8)
	for i, bit := range b {
		out[i/8] |= (bit & 1) << uint(7-i%8)
	}
	return out
}

// Unpack expands the first nbits bits of packed
func Unpack(packed []byte, nbits int) (Bits, error) {
	if nbits < 0 || nbits > len(packed)*8 {
		return nil, fault.New(fault.LengthError, "bits.unpack", "%d bits requested from %d bytes", nbits, len(packed))
	}
	out := make(Bits, nbits)
	for i := range out {
		out[i] = (packed[i/8] >> uint(7-i%8)) & 1
	}
	return out, nil
}
