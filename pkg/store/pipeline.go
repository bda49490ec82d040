package store

import (
	"github.com/ssargent/dnastore/pkg/ecc"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/native"
	"github.com/ssargent/dnastore/pkg/symbol"
)

// packetCodec turns framed packet bytes into a symbol run and back. The
// native path is taken only for the baseline map, where the accelerated
// loops apply.
type packetCodec struct {
	scheme   ecc.Scheme
	strategy symbol.Strategy
	native   bool
}

func newPacketCodec(scheme ecc.Scheme, strategy symbol.Strategy, backend Backend) *packetCodec {
	return &packetCodec{
		scheme:   scheme,
		strategy: strategy,
		native:   backend == BackendNative && strategy.Name() == symbol.NameBaseline,
	}
}

func (pc *packetCodec) render(wire []byte) (string, error) {
	if pc.native {
		return pc.renderNative(wire)
	}
	protected, err := pc.scheme.Protect(wire)
	if err != nil {
		return "", err
	}
	return pc.strategy.Encode(protected)
}

func (pc *packetCodec) recover(seq string) ([]byte, ecc.Report, error) {
	if pc.native {
		return pc.recoverNative(seq)
	}
	code, err := pc.strategy.Decode(seq)
	if err != nil {
		return nil, ecc.Report{}, err
	}
	return pc.scheme.Recover(code)
}

func (pc *packetCodec) renderNative(wire []byte) (string, error) {
	switch s := pc.scheme.(type) {
	case ecc.Hamming:
		return native.EncodeSymbols(native.HammingEncode(wire), len(wire)*14)
	case ecc.ReedSolomon:
		code, err := ecc.RSEncode(wire, s.NSym)
		if err != nil {
			return "", err
		}
		return native.EncodeSymbols(code, len(code)*8)
	default:
		return native.EncodeSymbols(wire, len(wire)*8)
	}
}

func (pc *packetCodec) recoverNative(seq string) ([]byte, ecc.Report, error) {
	packed, err := native.DecodeSymbols(seq)
	if err != nil {
		return nil, ecc.Report{}, err
	}
	nbits := len(seq) * 2

	switch s := pc.scheme.(type) {
	case ecc.Hamming:
		if nbits%7 == 0 && (nbits/7*4)%8 != 0 {
			return nil, ecc.Report{}, fault.New(fault.LengthError, "native.recover", "%d data bits is not a whole number of bytes", nbits/7*4)
		}
		data, corrected, err := native.HammingDecode(packed, nbits)
		if err != nil {
			return nil, ecc.Report{}, err
		}
		return data, ecc.Report{Corrected: corrected}, nil
	case ecc.ReedSolomon:
		if nbits%8 != 0 {
			return nil, ecc.Report{}, fault.New(fault.LengthError, "native.recover", "bit length %d is not a multiple of 8", nbits)
		}
		data, err := ecc.RSDecode(packed, s.NSym)
		return data, ecc.Report{}, err
	default:
		if nbits%8 != 0 {
			return nil, ecc.Report{}, fault.New(fault.LengthError, "native.recover", "bit length %d is not a multiple of 8", nbits)
		}
		return packed, ecc.Report{}, nil
	}
}
