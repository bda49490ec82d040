package native

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/ssargent/dnastore/pkg/bits"
	"github.com/ssargent/dnastore/pkg/ecc"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBytes(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	rng.Read(b)
	return b
}

func TestEncodeSymbolsMatchesBaseline(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 3, 16, 144, 1000} {
		data := randomBytes(rng, n)
		want, err := symbol.Baseline{}.Encode(bits.FromBytes(data))
		require.NoError(t, err)

		got, err := EncodeSymbols(data, n*8)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		back, err := DecodeSymbols(got)
		require.NoError(t, err)
		assert.Equal(t, data, back)
	}
}

func TestEncodeSymbolsPartialByte(t *testing.T) {
	got, err := EncodeSymbols([]byte{0xB4}, 6)
	require.NoError(t, err)
	assert.Equal(t, "CGT", got)

	_, err = EncodeSymbols([]byte{0xB4}, 5)
	assert.True(t, errors.Is(err, fault.ErrInvalidInput))
}

func TestDecodeSymbolsRejectsUnknown(t *testing.T) {
	_, err := DecodeSymbols("ACGU")
	assert.True(t, errors.Is(err, fault.ErrInvalidInput))
}

func TestHammingMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, n := range []int{1, 2, 7, 144, 513} {
		data := randomBytes(rng, n)
		ref := ecc.HammingEncode(bits.FromBytes(data))

		packed := HammingEncode(data)
		got, err := bits.Unpack(packed, n*14)
		require.NoError(t, err)
		assert.Equal(t, ref, got)

		decoded, corrected, err := HammingDecode(packed, n*14)
		require.NoError(t, err)
		assert.False(t, corrected)
		assert.Equal(t, data, decoded[:n])
	}
}

func TestHammingDecodeCorrectsLikeReference(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	data := randomBytes(rng, 32)
	code := ecc.HammingEncode(bits.FromBytes(data))

	// one or two flips per block, so both correction and aliasing are exercised
	for block := 0; block < len(code)/7; block++ {
		code[block*7+rng.Intn(7)] ^= 1
		if block%3 == 0 {
			code[block*7+rng.Intn(7)] ^= 1
		}
	}

	refBits, refCorrected, err := ecc.HammingDecode(code)
	require.NoError(t, err)
	refBytes, err := refBits.ToBytes()
	require.NoError(t, err)

	got, corrected, err := HammingDecode(code.Pack(), len(code))
	require.NoError(t, err)
	assert.Equal(t, refCorrected, corrected)
	assert.Equal(t, refBytes, got)
}

func TestHammingDecodeLength(t *testing.T) {
	_, _, err := HammingDecode([]byte{0, 0}, 15)
	assert.True(t, errors.Is(err, fault.ErrLengthError))
}
