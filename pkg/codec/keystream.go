package codec

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"

	"github.com/ssargent/dnastore/pkg/fault"
)

const keystreamLabel = "dnastore packet keystream"

// Keystream returns n pseudorandom bytes determined only by nonce. The
// generator is ChaCha20 keyed by a fixed label and the big-endian nonce,
// so every encoder and decoder derives the same bytes.
func Keystream(nonce uint32, n int) ([]byte, error) {
	out := make([]byte, n)
	if err := xorKeystream(out, out, nonce); err != nil {
		return nil, err
	}
	return out, nil
}

// Scramble writes src XOR keystream(nonce) into dst. Nonce 0 copies src
// unchanged. Scrambling twice with the same nonce restores the input.
func Scramble(dst, src []byte, nonce uint32) error {
	if nonce == 0 {
		copy(dst, src)
		return nil
	}
	return xorKeystream(dst, src, nonce)
}

func xorKeystream(dst, src []byte, nonce uint32) error {
	var key [chacha20.KeySize]byte
	copy(key[:], keystreamLabel)
	binary.BigEndian.PutUint32(key[chacha20.KeySize-4:], nonce)

	var iv [chacha20.NonceSize]byte
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], iv[:])
	if err != nil {
		return fault.Wrap(fault.InvalidInput, "packet.keystream", err)
	}
	cipher.XORKeyStream(dst, src)
	return nil
}
