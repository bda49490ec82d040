// Package constraint checks symbol sequences against the biochemical limits
// a synthesized strand has to respect: the share of G and C symbols, and
// the length of runs of one repeated symbol.
package constraint

import (
	"fmt"
)

// Thresholds are the limits in force during encoding. Nil fields are not
// checked.
type Thresholds struct {
	MinGC          *float64 `cbor:"min_gc,omitempty" json:"min_gc,omitempty" yaml:"min_gc,omitempty" msgpack:"min_gc,omitempty"`
	MaxGC          *float64 `cbor:"max_gc,omitempty" json:"max_gc,omitempty" yaml:"max_gc,omitempty" msgpack:"max_gc,omitempty"`
	MaxHomopolymer *int     `cbor:"max_homopolymer,omitempty" json:"max_homopolymer,omitempty" yaml:"max_homopolymer,omitempty" msgpack:"max_homopolymer,omitempty"`
}

// Enabled reports whether any limit is set
func (t *Thresholds) Enabled() bool {
	return t != nil && (t.MinGC != nil || t.MaxGC != nil || t.MaxHomopolymer != nil)
}

// Validate rejects thresholds that no sequence could meet
func (t *Thresholds) Validate() error {
	if t == nil {
		return nil
	}
	if t.MinGC != nil && (*t.MinGC < 0 || *t.MinGC > 1) {
		return fmt.Errorf("min_gc must be in [0, 1], got %v", *t.MinGC)
	}
	if t.MaxGC != nil && (*t.MaxGC < 0 || *t.MaxGC > 1) {
		return fmt.Errorf("max_gc must be in [0, 1], got %v", *t.MaxGC)
	}
	if t.MinGC != nil && t.MaxGC != nil && *t.MinGC > *t.MaxGC {
		return fmt.Errorf("min_gc %v exceeds max_gc %v", *t.MinGC, *t.MaxGC)
	}
	if t.MaxHomopolymer != nil && *t.MaxHomopolymer < 1 {
		return fmt.Errorf("max_homopolymer must be at least 1, got %d", *t.MaxHomopolymer)
	}
	return nil
}

// Violation names the first limit a sequence broke
type Violation struct {
	Constraint string
	Detail     string
}

func (v *Violation) Error() string {
	return v.Constraint + ": " + v.Detail
}

// Check evaluates every enabled limit against seq
func (t *Thresholds) Check(seq string) *Violation {
	if !t.Enabled() {
		return nil
	}
	if t.MinGC != nil || t.MaxGC != nil {
		lo, hi := 0.0, 1.0
		if t.MinGC != nil {
			lo = *t.MinGC
		}
		if t.MaxGC != nil {
			hi = *t.MaxGC
		}
		if !GCRatioOK(seq, lo, hi) {
			return &Violation{Constraint: "gc_ratio", Detail: fmt.Sprintf("%.3f outside [%.3f, %.3f]", GCRatio(seq), lo, hi)}
		}
	}
	if t.MaxHomopolymer != nil && !HomopolymerOK(seq, *t.MaxHomopolymer) {
		return &Violation{Constraint: "homopolymer", Detail: fmt.Sprintf("run of %d exceeds %d", LongestRun(seq), *t.MaxHomopolymer)}
	}
	return nil
}

// GCRatio returns the fraction of G and C symbols in seq
func GCRatio(seq string) float64 {
	if seq == "" {
		return 0
	}
	gc := 0
	for i := 0; i < len(seq); i++ {
		if seq[i] == 'G' || seq[i] == 'C' {
			gc++
		}
	}
	return float64(gc) / float64(len(seq))
}

// GCRatioOK reports whether the GC ratio of seq lies in [min, max]. An
// empty sequence passes.
func GCRatioOK(seq string, min, max float64) bool {
	if seq == "" {
		return true
	}
	r := GCRatio(seq)
	return min <= r && r <= max
}

// LongestRun returns the length of the longest homopolymer run in seq
func LongestRun(seq string) int {
	if seq == "" {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(seq); i++ {
		if seq[i] == seq[i-1] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// HomopolymerOK reports whether no run in seq exceeds maxRun
func HomopolymerOK(seq string, maxRun int) bool {
	run := 1
	for i := 1; i < len(seq); i++ {
		if seq[i] == seq[i-1] {
			run++
			if run > maxRun {
				return false
			}
		} else {
			run = 1
		}
	}
	return len(seq) == 0 || maxRun >= 1
}

// Float returns a pointer to v for Thresholds literals
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v for Thresholds literals
func Int(v int) *int { return &v }
