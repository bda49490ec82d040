package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ssargent/dnastore/pkg/config"
	"github.com/ssargent/dnastore/pkg/constraint"
)

// addCodecFlags registers the encoder overrides on fs
func addCodecFlags(fs *pflag.FlagSet) {
	fs.String("ecc", "", "Error correction: none, hamming or rs")
	fs.Int("nsym", 0, "Reed-Solomon redundancy bytes per block")
	fs.Int("chunk-size", 0, "Payload bytes per packet")
	fs.String("strategy", "", "Symbol mapping: baseline or rotating")
	fs.String("backend", "", "Mapping backend: reference or native")
	fs.Int("workers", 0, "Packets encoded in parallel")
	addConstraintFlags(fs)
}

// addConstraintFlags registers the threshold overrides on fs
func addConstraintFlags(fs *pflag.FlagSet) {
	fs.Float64("min-gc", 0, "Minimum GC ratio of each chunk")
	fs.Float64("max-gc", 0, "Maximum GC ratio of each chunk")
	fs.Int("max-homopolymer", 0, "Longest run of one symbol allowed in each chunk")
}

// applyCodecFlags copies every codec and threshold flag the user set into
// cfg. Commands without those flags leave cfg untouched.
func applyCodecFlags(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Lookup("max-homopolymer") == nil {
		return
	}

	if fs.Changed("ecc") {
		cfg.Codec.ECC, _ = fs.GetString("ecc")
	}
	if fs.Changed("nsym") {
		cfg.Codec.NSym, _ = fs.GetInt("nsym")
	}
	if fs.Changed("chunk-size") {
		cfg.Codec.ChunkSize, _ = fs.GetInt("chunk-size")
	}
	if fs.Changed("strategy") {
		cfg.Codec.Strategy, _ = fs.GetString("strategy")
	}
	if fs.Changed("backend") {
		cfg.Codec.Backend, _ = fs.GetString("backend")
	}
	if fs.Changed("workers") {
		cfg.Codec.Workers, _ = fs.GetInt("workers")
	}

	if fs.Changed("min-gc") || fs.Changed("max-gc") || fs.Changed("max-homopolymer") {
		t := cfg.Codec.Constraints
		if t == nil {
			t = &constraint.Thresholds{}
		} else {
			copied := *t
			t = &copied
		}
		if fs.Changed("min-gc") {
			v, _ := fs.GetFloat64("min-gc")
			t.MinGC = constraint.Float(v)
		}
		if fs.Changed("max-gc") {
			v, _ := fs.GetFloat64("max-gc")
			t.MaxGC = constraint.Float(v)
		}
		if fs.Changed("max-homopolymer") {
			v, _ := fs.GetInt("max-homopolymer")
			t.MaxHomopolymer = constraint.Int(v)
		}
		cfg.Codec.Constraints = t
	}
}
