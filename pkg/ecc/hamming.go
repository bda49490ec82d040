package ecc

import (
	"github.com/ssargent/dnastore/pkg/bits"
	"github.com/ssargent/dnastore/pkg/fault"
)

// Hamming(7,4) codeword layout: p1 p2 d1 p3 d2 d3 d4
//
//	p1 = d1^d2^d4
//	p2 = d1^d3^d4
//	p3 = d2^d3^d4
//
// The code corrects one flipped bit per 7-bit block. Two flips in one
// block produce a nonzero syndrome pointing at a third position, so the
// decoder silently settles on a different valid codeword and still reports
// a correction. That miscorrection is inherent to the code and is kept.
const (
	HammingDataBits = 4
	HammingCodeBits = 7
)

// HammingEncodeBlock encodes exactly four data bits
func HammingEncodeBlock(data bits.Bits) (bits.Bits, error) {
	if len(data) != HammingDataBits {
		return nil, fault.New(fault.InvalidInput, "hamming.encode", "block size must be 4 bits, got %d", len(data))
	}
	d1, d2, d3, d4 := data[0], data[1], data[2], data[3]
	return bits.Bits{d1 ^ d2 ^ d4, d1 ^ d3 ^ d4, d1, d2 ^ d3 ^ d4, d2, d3, d4}, nil
}

// HammingDecodeBlock decodes one 7-bit codeword and reports whether a bit
// was flipped. The input is not modified.
func HammingDecodeBlock(code bits.Bits) (bits.Bits, bool, error) {
	if len(code) != HammingCodeBits {
		return nil, false, fault.New(fault.InvalidInput, "hamming.decode", "block size must be 7 bits, got %d", len(code))
	}
	c := make(bits.Bits, HammingCodeBits)
	copy(c, code)

	s1 := c[0] ^ c[2] ^ c[4] ^ c[6]
	s2 := c[1] ^ c[2] ^ c[5] ^ c[6]
	s3 := c[3] ^ c[4] ^ c[5] ^ c[6]
	syndrome := s3<<2 | s2<<1 | s1

	corrected := false
	if syndrome != 0 {
		c[syndrome-1] ^= 1
		corrected = true
	}
	return bits.Bits{c[2], c[4], c[5], c[6]}, corrected, nil
}

// HammingEncode encodes a bit stream, zero padding it to a multiple of 4
func HammingEncode(data bits.Bits) bits.Bits {
	padded := data
	if rem := len(data) % HammingDataBits; rem != 0 {
		padded = make(bits.Bits, len(data)+HammingDataBits-rem)
		copy(padded, data)
	}

	out := make(bits.Bits, 0, len(padded)/HammingDataBits*HammingCodeBits)
	for i := 0; i < len(padded); i += HammingDataBits {
		d1, d2, d3, d4 := padded[i], padded[i+1], padded[i+2], padded[i+3]
		out = append(out, d1^d2^d4, d1^d3^d4, d1, d2^d3^d4, d2, d3, d4)
	}
	return out
}

// HammingDecode decodes a stream of 7-bit codewords. Encoder padding is
// returned as-is; stripping it is the caller's job. The flag reports
// whether any block needed a correction.
func HammingDecode(code bits.Bits) (bits.Bits, bool, error) {
	if len(code)%HammingCodeBits != 0 {
		return nil, false, fault.New(fault.LengthError, "hamming.decode", "input length %d is not a multiple of 7", len(code))
	}

	out := make(bits.Bits, 0, len(code)/HammingCodeBits*HammingDataBits)
	anyCorrected := false
	for i := 0; i < len(code); i += HammingCodeBits {
		data, corrected, err := HammingDecodeBlock(code[i : i+HammingCodeBits])
		if err != nil {
			return nil, false, err
		}
		out = append(out, data...)
		anyCorrected = anyCorrected || corrected
	}
	return out, anyCorrected, nil
}
