package ecc

import (
	"fmt"
	"sync"

	"github.com/vivint/infectious"

	"github.com/ssargent/dnastore/pkg/fault"
)

// RSBlockSize is the codeword length over GF(2^8). Longer messages are cut
// into blocks of RSBlockSize-nsym data bytes, each followed by nsym
// redundancy bytes.
const RSBlockSize = 255

// DefaultNSym is the redundancy used when none is configured
const DefaultNSym = 10

type fecKey struct{ k, n int }

var (
	fecMu    sync.Mutex
	fecCache = map[fecKey]*infectious.FEC{}
)

// fecFor returns a cached systematic (k, n) code. Building the generator
// matrix dominates small encodes, and the rejection loop re-encodes the
// same packet shape many times.
func fecFor(k, n int) (*infectious.FEC, error) {
	fecMu.Lock()
	defer fecMu.Unlock()

	key := fecKey{k, n}
	if f, ok := fecCache[key]; ok {
		return f, nil
	}
	f, err := infectious.NewFEC(k, n)
	if err != nil {
		return nil, err
	}
	fecCache[key] = f
	return f, nil
}

func validateNSym(op string, nsym int) error {
	if nsym < 1 || nsym >= RSBlockSize {
		return fault.New(fault.InvalidInput, op, "redundancy symbols must be in [1, %d], got %d", RSBlockSize-1, nsym)
	}
	return nil
}

// RSEncodedLen returns the encoded size of an n-byte message
func RSEncodedLen(n, nsym int) int {
	per := RSBlockSize - nsym
	blocks := (n + per - 1) / per
	return n + blocks*nsym
}

// RSEncode appends nsym bytes of systematic redundancy to every block of
// data.
func RSEncode(data []byte, nsym int) ([]byte, error) {
	if err := validateNSym("rs.encode", nsym); err != nil {
		return nil, err
	}

	per := RSBlockSize - nsym
	out := make([]byte, 0, RSEncodedLen(len(data), nsym))
	for off := 0; off < len(data); off += per {
		end := min(off+per, len(data))
		block := data[off:end]

		f, err := fecFor(len(block), len(block)+nsym)
		if err != nil {
			return nil, fault.Wrap(fault.InvalidInput, "rs.encode", err)
		}
		codeword := make([]byte, len(block)+nsym)
		// one byte per share, so share i is codeword byte i
		err = f.Encode(block, func(s infectious.Share) {
			codeword[s.Number] = s.Data[0]
		})
		if err != nil {
			return nil, fault.Wrap(fault.InvalidInput, "rs.encode", err)
		}
		out = append(out, codeword...)
	}
	return out, nil
}

// RSDecode corrects up to nsym/2 byte errors per block and strips the
// redundancy.
func RSDecode(code []byte, nsym int) ([]byte, error) {
	if err := validateNSym("rs.decode", nsym); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(code))
	for off := 0; off < len(code); off += RSBlockSize {
		end := min(off+RSBlockSize, len(code))
		block := code[off:end]
		k := len(block) - nsym
		if k < 1 {
			return nil, fault.New(fault.LengthError, "rs.decode", "block of %d bytes cannot carry %d redundancy bytes", len(block), nsym)
		}

		f, err := fecFor(k, len(block))
		if err != nil {
			return nil, fault.Wrap(fault.InvalidInput, "rs.decode", err)
		}
		shares := make([]infectious.Share, len(block))
		for i, b := range block {
			shares[i] = infectious.Share{Number: i, Data: []byte{b}}
		}
		data, err := f.Decode(nil, shares)
		if err != nil {
			return nil, &fault.Error{
				Kind: fault.UncorrectableError,
				Op:   "rs.decode",
				Msg:  fmt.Sprintf("block at offset %d exceeds %d correctable errors", off, nsym/2),
				Err:  err,
			}
		}
		out = append(out, data...)
	}
	return out, nil
}
