// Package header implements the self-describing block at the front of
// every container.
//
// A container starts with a 16-symbol length prefix, followed by the
// header, followed by the body:
//
//	[LengthPrefix(16)][Header(n)][Body]
//
// The prefix and the header are always written with the same fixed
// configuration (no FEC and the baseline map for the prefix, Reed-Solomon
// with FixedNSym redundancy and the baseline map for the header). A decoder
// that knows nothing about the body can therefore read both, and learns
// from the header how the body was encoded.
package header

import (
	"encoding/binary"

	"github.com/ssargent/dnastore/pkg/bits"
	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/ecc"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/symbol"
)

const (
	// Version is the only container format version understood
	Version = "1.0"
	// PrefixSymbols is the rendered size of the length prefix
	PrefixSymbols = 16
	// FixedNSym is the Reed-Solomon redundancy protecting the header
	FixedNSym = 10
	// MaxSymbols bounds the rendered header. Readers reject larger length
	// prefixes before reading the header.
	MaxSymbols = 1 << 16
)

// Metadata is the record carried in the header
type Metadata struct {
	Version     string                 `cbor:"version" json:"version"`
	Encoding    string                 `cbor:"encoding" json:"encoding"`
	ECC         ecc.Method             `cbor:"ecc" json:"ecc"`
	ECCParams   ecc.Params             `cbor:"ecc_params" json:"ecc_params"`
	ChunkSize   int                    `cbor:"chunk_size" json:"chunk_size"`
	TotalChunks int                    `cbor:"total_chunks" json:"total_chunks"`
	Constraints *constraint.Thresholds `cbor:"constraints,omitempty" json:"constraints,omitempty"`
}

// Scheme returns the FEC scheme the body was protected with
func (m *Metadata) Scheme() (ecc.Scheme, error) {
	return ecc.New(m.ECC, m.ECCParams)
}

// Strategy returns the symbol mapping the body was rendered with
func (m *Metadata) Strategy() (symbol.Strategy, error) {
	return symbol.ByName(m.Encoding)
}

// Validate checks that a decoder could be configured from m
func (m *Metadata) Validate() error {
	if m.Version != Version {
		return fault.New(fault.HeaderCorrupt, "header.validate", "unsupported version %q", m.Version)
	}
	if _, err := m.Scheme(); err != nil {
		return fault.Wrap(fault.HeaderCorrupt, "header.validate", err)
	}
	if _, err := m.Strategy(); err != nil {
		return fault.Wrap(fault.HeaderCorrupt, "header.validate", err)
	}
	if m.ChunkSize <= 0 {
		return fault.New(fault.HeaderCorrupt, "header.validate", "chunk size must be positive, got %d", m.ChunkSize)
	}
	if m.TotalChunks < 0 {
		return fault.New(fault.HeaderCorrupt, "header.validate", "negative chunk count %d", m.TotalChunks)
	}
	if err := m.Constraints.Validate(); err != nil {
		return fault.Wrap(fault.HeaderCorrupt, "header.validate", err)
	}
	return nil
}

// Create serializes m and renders it as header symbols. The Version field
// is filled in when empty.
func Create(m Metadata) (string, error) {
	if m.Version == "" {
		m.Version = Version
	}
	if err := m.Validate(); err != nil {
		return "", &fault.Error{Kind: fault.InvalidInput, Op: "header.create", Msg: err.Error()}
	}

	record, err := encMode.Marshal(&m)
	if err != nil {
		return "", fault.Wrap(fault.InvalidInput, "header.create", err)
	}
	seq, err := render(record)
	if err != nil {
		return "", err
	}
	if len(seq) > MaxSymbols {
		return "", fault.New(fault.InvalidInput, "header.create", "header of %d symbols exceeds %d", len(seq), MaxSymbols)
	}
	return seq, nil
}

// Parse recovers the metadata from header symbols. Any failure, from an
// invalid symbol to an unknown method name, is reported as HeaderCorrupt.
func Parse(seq string) (*Metadata, error) {
	b, err := symbol.Baseline{}.Decode(seq)
	if err != nil {
		return nil, fault.Wrap(fault.HeaderCorrupt, "header.parse", err)
	}
	code, err := b.ToBytes()
	if err != nil {
		return nil, fault.Wrap(fault.HeaderCorrupt, "header.parse", err)
	}
	record, err := ecc.RSDecode(code, FixedNSym)
	if err != nil {
		return nil, fault.Wrap(fault.HeaderCorrupt, "header.parse", err)
	}

	var m Metadata
	if err := decMode.Unmarshal(record, &m); err != nil {
		return nil, fault.Wrap(fault.HeaderCorrupt, "header.parse", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// EncodeLengthPrefix renders n as 16 baseline symbols, most significant
// bits first
func EncodeLengthPrefix(n uint32) string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], n)
	seq, _ := symbol.Baseline{}.Encode(bits.FromBytes(buf[:]))
	return seq
}

// DecodeLengthPrefix reads the value written by EncodeLengthPrefix. seq
// must hold exactly PrefixSymbols symbols.
func DecodeLengthPrefix(seq string) (uint32, error) {
	if len(seq) != PrefixSymbols {
		return 0, fault.New(fault.LengthError, "header.prefix", "length prefix needs %d symbols, got %d", PrefixSymbols, len(seq))
	}
	b, err := symbol.Baseline{}.Decode(seq)
	if err != nil {
		return 0, err
	}
	raw, err := b.ToBytes()
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(raw), nil
}

func render(record []byte) (string, error) {
	code, err := ecc.RSEncode(record, FixedNSym)
	if err != nil {
		return "", err
	}
	return symbol.Baseline{}.Encode(bits.FromBytes(code))
}
