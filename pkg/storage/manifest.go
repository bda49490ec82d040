package storage

import (
	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/fault"
	"github.com/ssargent/dnastore/pkg/header"
)

// Describe copies the container configuration of meta into m
func (m *Manifest) Describe(meta *header.Metadata) {
	if meta == nil {
		return
	}
	m.ECC = string(meta.ECC)
	m.NSym = meta.ECCParams.NSym
	m.Strategy = meta.Encoding
	m.ChunkSize = meta.ChunkSize
	m.TotalChunks = meta.TotalChunks
	m.Constraints = meta.Constraints
}

// Score records the size, digests and sequence statistics of a run
func (m *Manifest) Score(data []byte, seq string) {
	m.DataBytes = int64(len(data))
	m.Symbols = int64(len(seq))
	m.DataDigest = Digest(data)
	m.SequenceDigest = Digest([]byte(seq))
	m.Stats = constraint.Analyze(seq)
	m.Overhead = constraint.Overhead(len(data), len(seq))
}

// Fail records err and its failure class
func (m *Manifest) Fail(err error) {
	if err == nil {
		return
	}
	m.Error = err.Error()
	m.FailureClass = string(fault.KindOf(err).Class())
}
