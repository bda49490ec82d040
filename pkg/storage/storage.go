// Package storage keeps a ledger of codec runs in a pebble database.
//
// Every encode or decode performed through the CLI or the HTTP API can be
// recorded as a Manifest: what was run, with which configuration, how the
// output scored against the constraints, and BLAKE3 digests of both sides
// so a later decode can be matched to the encode that produced it. Keys
// are KSUIDs, so iteration order is creation order.
package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"

	"github.com/ssargent/dnastore/pkg/constraint"
)

var (
	// ErrRunNotFound is returned when no manifest has the requested id
	ErrRunNotFound = errors.New("run not found")
	// ErrInvalidRunID is returned for ids that are not KSUIDs
	ErrInvalidRunID = errors.New("invalid run id")
)

// Operation names recorded in manifests
const (
	OperationEncode = "encode"
	OperationDecode = "decode"
)

// Manifest describes one codec run
type Manifest struct {
	ID        string    `msgpack:"id" json:"id"`
	Operation string    `msgpack:"operation" json:"operation"`
	CreatedAt time.Time `msgpack:"created_at" json:"created_at"`
	Source    string    `msgpack:"source,omitempty" json:"source,omitempty"`

	ECC         string                 `msgpack:"ecc" json:"ecc"`
	NSym        int                    `msgpack:"nsym,omitempty" json:"nsym,omitempty"`
	Strategy    string                 `msgpack:"strategy" json:"strategy"`
	ChunkSize   int                    `msgpack:"chunk_size" json:"chunk_size"`
	TotalChunks int                    `msgpack:"total_chunks" json:"total_chunks"`
	Constraints *constraint.Thresholds `msgpack:"constraints,omitempty" json:"constraints,omitempty"`

	DataBytes      int64            `msgpack:"data_bytes" json:"data_bytes"`
	Symbols        int64            `msgpack:"symbols" json:"symbols"`
	DataDigest     string           `msgpack:"data_digest" json:"data_digest"`
	SequenceDigest string           `msgpack:"sequence_digest" json:"sequence_digest"`
	Stats          constraint.Stats `msgpack:"stats" json:"stats"`
	Overhead       float64          `msgpack:"overhead" json:"overhead"`
	Duration       time.Duration    `msgpack:"duration" json:"duration"`

	Error        string `msgpack:"error,omitempty" json:"error,omitempty"`
	FailureClass string `msgpack:"failure_class,omitempty" json:"failure_class,omitempty"`
}

// Ledger stores manifests keyed by KSUID
type Ledger struct {
	db *pebble.DB
}

// Open opens or creates the ledger database at path
func Open(path string) (*Ledger, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open run ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Record assigns m a new id and creation time, when unset, and stores it
func (l *Ledger) Record(m *Manifest) (ksuid.KSUID, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	id, err := ksuid.NewRandomWithTime(m.CreatedAt)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to generate run id: %w", err)
	}
	m.ID = id.String()

	data, err := msgpack.Marshal(m)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := l.db.Set(id.Bytes(), data, pebble.Sync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Get returns the manifest stored under id
func (l *Ledger) Get(id string) (*Manifest, error) {
	kid, err := ksuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidRunID, id, err)
	}

	data, closer, err := l.db.Get(kid.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var m Manifest
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", id, err)
	}
	return &m, nil
}

// List returns up to limit manifests, newest first. limit <= 0 returns
// all of them.
func (l *Ledger) List(limit int) ([]*Manifest, error) {
	iter, err := l.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []*Manifest
	for valid := iter.Last(); valid; valid = iter.Prev() {
		var m Manifest
		if err := msgpack.Unmarshal(iter.Value(), &m); err != nil {
			return nil, fmt.Errorf("failed to decode manifest: %w", err)
		}
		out = append(out, &m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, iter.Error()
}

// Delete removes the manifest stored under id
func (l *Ledger) Delete(id string) error {
	kid, err := ksuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidRunID, id, err)
	}
	return l.db.Delete(kid.Bytes(), pebble.Sync)
}

// Close closes the database
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Digest returns the hex BLAKE3-256 digest of b
func Digest(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// DigestReader wraps r and hashes everything read through it
type DigestReader struct {
	r io.Reader
	h *blake3.Hasher
	n int64
}

// NewDigestReader returns a DigestReader over r
func NewDigestReader(r io.Reader) *DigestReader {
	return &DigestReader{r: r, h: blake3.New()}
}

func (d *DigestReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	d.h.Write(p[:n])
	d.n += int64(n)
	return n, err
}

// Sum returns the hex digest of the bytes read so far
func (d *DigestReader) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Count returns the number of bytes read so far
func (d *DigestReader) Count() int64 {
	return d.n
}

// DigestWriter hashes everything written to it before passing it on
type DigestWriter struct {
	w io.Writer
	h *blake3.Hasher
	n int64
}

// NewDigestWriter returns a DigestWriter over w
func NewDigestWriter(w io.Writer) *DigestWriter {
	return &DigestWriter{w: w, h: blake3.New()}
}

func (d *DigestWriter) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	d.h.Write(p[:n])
	d.n += int64(n)
	return n, err
}

// Sum returns the hex digest of the bytes written so far
func (d *DigestWriter) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Count returns the number of bytes written so far
func (d *DigestWriter) Count() int64 {
	return d.n
}
