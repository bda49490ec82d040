// Package ecc provides the forward error correction applied to every packet.
//
// Two codes with different granularity are available: Hamming(7,4), which
// works on 4-bit blocks and corrects one flipped bit per 7-bit codeword,
// and a systematic Reed-Solomon code over bytes, which corrects up to
// nsym/2 byte errors per 255-byte block. A Scheme wraps either (or no
// protection at all) behind the same two-way transform so the pipeline
// never switches on method names.
package ecc

import (
	"github.com/ssargent/dnastore/pkg/bits"
	"github.com/ssargent/dnastore/pkg/fault"
)

// Method names as persisted in the container header
type Method string

const (
	MethodHamming     Method = "hamming"
	MethodReedSolomon Method = "rs"
	MethodNone        Method = "none"
)

// Params carries method-specific parameters. NSym only applies to rs.
type Params struct {
	NSym int `cbor:"nsym,omitempty" json:"nsym,omitempty" yaml:"nsym,omitempty"`
}

// Report describes what a Recover call had to fix
type Report struct {
	Corrected bool
}

// Scheme protects packet bytes and recovers them from a possibly damaged
// bit stream.
type Scheme interface {
	Method() Method
	Params() Params
	Protect(packet []byte) (bits.Bits, error)
	Recover(code bits.Bits) ([]byte, Report, error)
	// ExpandedBits is the protected length of an n-byte packet.
	ExpandedBits(n int) int
}

// New returns the scheme for method. For rs a zero NSym means DefaultNSym.
func New(method Method, params Params) (Scheme, error) {
	switch method {
	case MethodHamming:
		return Hamming{}, nil
	case MethodReedSolomon:
		nsym := params.NSym
		if nsym == 0 {
			nsym = DefaultNSym
		}
		if err := validateNSym("ecc.new", nsym); err != nil {
			return nil, err
		}
		return ReedSolomon{NSym: nsym}, nil
	case MethodNone:
		return None{}, nil
	default:
		return nil, fault.New(fault.InvalidInput, "ecc.new", "unknown method %q", method)
	}
}

// Methods lists the supported methods
func Methods() []Method {
	return []Method{MethodReedSolomon, MethodHamming, MethodNone}
}

// Hamming protects packets with Hamming(7,4)
type Hamming struct{}

func (Hamming) Method() Method { return MethodHamming }

func (Hamming) Params() Params { return Params{} }

func (Hamming) ExpandedBits(n int) int {
	return (n*8 + HammingDataBits - 1) / HammingDataBits * HammingCodeBits
}

func (Hamming) Protect(packet []byte) (bits.Bits, error) {
	return HammingEncode(bits.FromBytes(packet)), nil
}

func (Hamming) Recover(code bits.Bits) ([]byte, Report, error) {
	data, corrected, err := HammingDecode(code)
	if err != nil {
		return nil, Report{}, err
	}
	out, err := data.ToBytes()
	if err != nil {
		return nil, Report{}, err
	}
	return out, Report{Corrected: corrected}, nil
}

// ReedSolomon protects packets with NSym redundancy bytes per block
type ReedSolomon struct {
	NSym int
}

func (r ReedSolomon) Method() Method { return MethodReedSolomon }

func (r ReedSolomon) Params() Params { return Params{NSym: r.NSym} }

func (r ReedSolomon) ExpandedBits(n int) int {
	return RSEncodedLen(n, r.NSym) * 8
}

func (r ReedSolomon) Protect(packet []byte) (bits.Bits, error) {
	code, err := RSEncode(packet, r.NSym)
	if err != nil {
		return nil, err
	}
	return bits.FromBytes(code), nil
}

func (r ReedSolomon) Recover(code bits.Bits) ([]byte, Report, error) {
	raw, err := code.ToBytes()
	if err != nil {
		return nil, Report{}, err
	}
	data, err := RSDecode(raw, r.NSym)
	if err != nil {
		return nil, Report{}, err
	}
	return data, Report{}, nil
}

// None passes packets through unprotected
type None struct{}

func (None) Method() Method { return MethodNone }

func (None) Params() Params { return Params{} }

func (None) ExpandedBits(n int) int { return n * 8 }

func (None) Protect(packet []byte) (bits.Bits, error) {
	return bits.FromBytes(packet), nil
}

func (None) Recover(code bits.Bits) ([]byte, Report, error) {
	out, err := code.ToBytes()
	return out, Report{}, err
}
