// Package native is the accelerated backend for the two hot loops of the
// pipeline: the fixed 2-bit symbol map and the Hamming(7,4) stream code.
//
// Both work directly on packed byte buffers through lookup tables instead
// of unpacked bit slices. Output is identical to the reference
// implementations in pkg/symbol and pkg/ecc; only speed differs.
package native

import (
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/symbol"
)

var (
	// byteSymbols[b] is the 4-symbol rendering of byte b
	byteSymbols [256][4]byte
	// symbolValues maps an ASCII symbol to its 2-bit value, 0xFF if invalid
	symbolValues [256]byte
	// nibbleCodes[d] is the 7-bit codeword of data nibble d, p1 in bit 6
	nibbleCodes [16]byte
	// codeNibbles[c] is the corrected data nibble of received word c
	codeNibbles [128]byte
	// codeFlips[c] reports whether word c needed a flip
	codeFlips [128]bool
)

func init() {
	for b := 0; b < 256; b++ {
		for i := 0; i < 4; i++ {
			byteSymbols[b][i] = symbol.PairSymbol(byte(b >> uint(6-2*i)))
		}
	}

	for i := range symbolValues {
		symbolValues[i] = 0xFF
	}
	for i := 0; i < len(symbol.Alphabet); i++ {
		s := symbol.Alphabet[i]
		symbolValues[s] = byte(symbol.SymbolValue(s))
	}

	for d := 0; d < 16; d++ {
		d1, d2, d3, d4 := byte(d>>3&1), byte(d>>2&1), byte(d>>1&1), byte(d&1)
		word := [7]byte{d1 ^ d2 ^ d4, d1 ^ d3 ^ d4, d1, d2 ^ d3 ^ d4, d2, d3, d4}
		nibbleCodes[d] = packWord(word)
	}

	for c := 0; c < 128; c++ {
		var w [7]byte
		for i := 0; i < 7; i++ {
			w[i] = byte(c>>uint(6-i)) & 1
		}
		s1 := w[0] ^ w[2] ^ w[4] ^ w[6]
		s2 := w[1] ^ w[2] ^ w[5] ^ w[6]
		s3 := w[3] ^ w[4] ^ w[5] ^ w[6]
		syndrome := s3<<2 | s2<<1 | s1
		if syndrome != 0 {
			w[syndrome-1] ^= 1
			codeFlips[c] = true
		}
		codeNibbles[c] = w[2]<<3 | w[4]<<2 | w[5]<<1 | w[6]
	}
}

func packWord(w [7]byte) byte {
	var out byte
	for _, bit := range w {
		out = out<<1 | bit
	}
	return out
}

// EncodeSymbols renders the first nbits bits of packed with the 2-bit map.
// nbits must be even.
func EncodeSymbols(packed []byte, nbits int) (string, error) {
	if nbits%2 != 0 {
		return "", fault.New(fault.InvalidInput, "native.encode_symbols", "bit length %d is odd", nbits)
	}
	if nbits < 0 || nbits > len(packed)*8 {
		return "", fault.New(fault.LengthError, "native.encode_symbols", "%d bits requested from %d bytes", nbits, len(packed))
	}

	out := make([]byte, nbits/2)
	full := nbits / 8
	for i := 0; i < full; i++ {
		copy(out[4*i:], byteSymbols[packed[i]][:])
	}
	for j := full * 4; j < len(out); j++ {
		shift := uint(6 - 2*(j%4))
		out[j] = symbol.PairSymbol(packed[j/4] >> shift)
	}
	return string(out), nil
}

// DecodeSymbols packs a 2-bit-mapped sequence. The result holds
// 2*len(seq) bits, zero padded to a whole byte.
func DecodeSymbols(seq string) ([]byte, error) {
	out := make([]byte, (len(seq)+3)/4)
	for i := 0; i < len(seq); i++ {
		v := symbolValues[seq[i]]
		if v == 0xFF {
			return nil, fault.New(fault.InvalidInput, "native.decode_symbols", "invalid symbol %q at position %d", seq[i], i)
		}
		out[i/4] |= v << uint(6-2*(i%4))
	}
	return out, nil
}

// HammingEncode expands every byte of data into two 7-bit codewords. The
// result holds 14*len(data) bits, zero padded to a whole byte.
func HammingEncode(data []byte) []byte {
	w := bitWriter{buf: make([]byte, 0, (len(data)*14+7)/8)}
	for _, b := range data {
		w.write(nibbleCodes[b>>4], 7)
		w.write(nibbleCodes[b&0x0F], 7)
	}
	return w.finish()
}

// HammingDecode decodes the first nbits bits of packed as 7-bit codewords.
// The result holds 4*(nbits/7) bits, zero padded to a whole byte.
func HammingDecode(packed []byte, nbits int) ([]byte, bool, error) {
	if nbits%7 != 0 {
		return nil, false, fault.New(fault.LengthError, "native.hamming_decode", "input length %d is not a multiple of 7", nbits)
	}
	if nbits < 0 || nbits > len(packed)*8 {
		return nil, false, fault.New(fault.LengthError, "native.hamming_decode", "%d bits requested from %d bytes", nbits, len(packed))
	}

	r := bitReader{buf: packed}
	w := bitWriter{buf: make([]byte, 0, (nbits/7*4+7)/8)}
	corrected := false
	for i := 0; i < nbits/7; i++ {
		c := r.read(7)
		w.write(codeNibbles[c], 4)
		corrected = corrected || codeFlips[c]
	}
	return w.finish(), corrected, nil
}

type bitWriter struct {
	buf   []byte
	acc   uint32
	nbits uint
}

func (w *bitWriter) write(v byte, n uint) {
	w.acc = w.acc<<n | uint32(v)&(1<<n-1)
	w.nbits += n
	for w.nbits >= 8 {
		w.nbits -= 8
		w.buf = append(w.buf, byte(w.acc>>w.nbits))
	}
}

func (w *bitWriter) finish() []byte {
	if w.nbits > 0 {
		w.buf = append(w.buf, byte(w.acc<<(8-w.nbits)))
		w.nbits = 0
	}
	return w.buf
}

type bitReader struct {
	buf []byte
	pos int // bit position
}

func (r *bitReader) read(n int) byte {
	var v byte
	for i := 0; i < n; i++ {
		bit := (r.buf[r.pos/8] >> uint(7-r.pos%8)) & 1
		v = v<<1 | bit
		r.pos++
	}
	return v
}
