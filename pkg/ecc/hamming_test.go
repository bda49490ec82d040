package ecc

import (
	"errors"
	"testing"

	"github.com/ssargent/dnastore/pkg/bits"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allNibbles enumerates every 4-bit data block
func allNibbles() []bits.Bits {
	out := make([]bits.Bits, 16)
	for v := 0; v < 16; v++ {
		out[v] = bits.Bits{byte(v >> 3 & 1), byte(v >> 2 & 1), byte(v >> 1 & 1), byte(v & 1)}
	}
	return out
}

func TestHammingEncodeBlockLayout(t *testing.T) {
	// d1=1 d2=0 d3=1 d4=1 -> p1=0 p2=1 p3=0
	code, err := HammingEncodeBlock(bits.Bits{1, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, "0110011", code.String())
}

func TestHammingNoError(t *testing.T) {
	for _, data := range allNibbles() {
		code, err := HammingEncodeBlock(data)
		require.NoError(t, err)

		decoded, corrected, err := HammingDecodeBlock(code)
		require.NoError(t, err)
		assert.False(t, corrected)
		assert.Equal(t, data, decoded)
	}
}

func TestHammingSingleBitCorrection(t *testing.T) {
	for _, data := range allNibbles() {
		code, err := HammingEncodeBlock(data)
		require.NoError(t, err)

		for pos := 0; pos < HammingCodeBits; pos++ {
			damaged := append(bits.Bits(nil), code...)
			damaged[pos] ^= 1

			decoded, corrected, err := HammingDecodeBlock(damaged)
			require.NoError(t, err)
			assert.True(t, corrected, "data=%s pos=%d", data, pos)
			assert.Equal(t, data, decoded, "data=%s pos=%d", data, pos)
		}
	}
}

func TestHammingDoubleBitAliasing(t *testing.T) {
	// Two flips always yield a nonzero syndrome that names a third bit,
	// so the decoder reports a correction and returns the wrong data.
	data := bits.Bits{1, 0, 1, 1}
	code, err := HammingEncodeBlock(data)
	require.NoError(t, err)

	damaged := append(bits.Bits(nil), code...)
	damaged[2] ^= 1 // d1
	damaged[4] ^= 1 // d2

	decoded, corrected, err := HammingDecodeBlock(damaged)
	require.NoError(t, err)
	assert.True(t, corrected)
	assert.NotEqual(t, data, decoded)

	for i := 0; i < HammingCodeBits; i++ {
		for j := i + 1; j < HammingCodeBits; j++ {
			d := append(bits.Bits(nil), code...)
			d[i] ^= 1
			d[j] ^= 1
			_, corrected, err := HammingDecodeBlock(d)
			require.NoError(t, err)
			assert.True(t, corrected, "flips at %d,%d", i, j)
		}
	}
}

func TestHammingDecodeBlockDoesNotMutateInput(t *testing.T) {
	code := bits.Bits{1, 0, 0, 0, 0, 0, 0}
	_, _, err := HammingDecodeBlock(code)
	require.NoError(t, err)
	assert.Equal(t, bits.Bits{1, 0, 0, 0, 0, 0, 0}, code)
}

func TestHammingStreamPadding(t *testing.T) {
	in := bits.Bits{1, 1, 0, 1, 0, 1}
	code := HammingEncode(in)
	assert.Len(t, code, 14)

	out, corrected, err := HammingDecode(code)
	require.NoError(t, err)
	assert.False(t, corrected)
	// padding comes back verbatim
	assert.Equal(t, bits.Bits{1, 1, 0, 1, 0, 1, 0, 0}, out)
}

func TestHammingDecodeLengthError(t *testing.T) {
	_, _, err := HammingDecode(make(bits.Bits, 13))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrLengthError))

	_, _, err = HammingDecodeBlock(make(bits.Bits, 6))
	assert.True(t, errors.Is(err, fault.ErrInvalidInput))
}

func TestHammingStreamSingleErrorPerBlock(t *testing.T) {
	data := bits.FromBytes([]byte("Hamming"))
	code := HammingEncode(data)
	for block := 0; block < len(code)/HammingCodeBits; block++ {
		code[block*HammingCodeBits+(block%HammingCodeBits)] ^= 1
	}

	out, corrected, err := HammingDecode(code)
	require.NoError(t, err)
	assert.True(t, corrected)
	assert.Equal(t, data, out)
}
