package store

import (
	"log/slog"

	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/ecc"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/symbol"
)

// MaxAttempts bounds the nonce search for one packet
const MaxAttempts = 1000

// DefaultChunkSize is the payload size of one packet in bytes
const DefaultChunkSize = 128

// Backend selects the implementation of the mapping and Hamming loops
type Backend string

const (
	BackendReference Backend = "reference"
	BackendNative    Backend = "native"
)

// Options configures a Storage
type Options struct {
	ECC         ecc.Method
	NSym        int // rs only; 0 means ecc.DefaultNSym
	ChunkSize   int
	Strategy    string
	Constraints *constraint.Thresholds
	Backend     Backend
	Workers     int // packets encoded in parallel; <= 1 is sequential
	Logger      *slog.Logger
	Metrics     Observer
}

// DefaultOptions returns the configuration used when nothing is set:
// Reed-Solomon with 10 redundancy bytes, 128-byte chunks, baseline map
func DefaultOptions() Options {
	return Options{
		ECC:       ecc.MethodReedSolomon,
		NSym:      ecc.DefaultNSym,
		ChunkSize: DefaultChunkSize,
		Strategy:  symbol.NameBaseline,
		Backend:   BackendReference,
		Workers:   1,
	}
}

// withDefaults fills zero fields from DefaultOptions
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ECC == "" {
		o.ECC = d.ECC
	}
	if o.ECC == ecc.MethodReedSolomon && o.NSym == 0 {
		o.NSym = d.NSym
	}
	if o.ECC != ecc.MethodReedSolomon {
		o.NSym = 0
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.Strategy == "" {
		o.Strategy = d.Strategy
	}
	if o.Backend == "" {
		o.Backend = d.Backend
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = nopObserver{}
	}
	return o
}

func (o Options) validate() error {
	if o.ChunkSize < 1 {
		return fault.New(fault.InvalidInput, "store.options", "chunk size must be positive, got %d", o.ChunkSize)
	}
	switch o.Backend {
	case BackendReference, BackendNative:
	default:
		return fault.New(fault.InvalidInput, "store.options", "unknown backend %q", o.Backend)
	}
	if err := o.Constraints.Validate(); err != nil {
		return fault.Wrap(fault.InvalidInput, "store.options", err)
	}
	return nil
}
