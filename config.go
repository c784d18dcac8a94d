package tsinfer

import (
	"fmt"
	"runtime"
)

// Config controls ancestor synthesis, matching, and arena sizing behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// RecombinationRate is rho, the per-transition recombination
	// probability mass in the Li-Stephens copying model. Must be in
	// [0, 1]. Default: 1e-8.
	RecombinationRate float64

	// ErrorRate is the per-site mismatch probability mu used to derive
	// copying-model emission probabilities. Must be in [0, 1].
	// Default: 1e-4.
	ErrorRate float64

	// SegmentBlockSize is the arena block granularity option for
	// run-length segments. Must be >= 1. Default: 1024. It is validated
	// but not otherwise read: the store builder's and traceback's segment
	// lists and the matcher's likelihood segments are plain slices.
	SegmentBlockSize int

	// NodeMappingBlockSize is the arena block granularity option for the
	// tree sequence builder's live-segment node mappings. Must be >= 1.
	// Default: 1024. Validated only; live-segment lists are plain slices.
	NodeMappingBlockSize int

	// EdgesetBlockSize is the arena block granularity option for pending
	// edgesets. Must be >= 1. Default: 1024. Validated only; edgesets are
	// held in plain slices.
	EdgesetBlockSize int

	// MutationListNodeBlockSize is the arena block granularity option for
	// mutation list nodes. Must be >= 1. Default: 1024. Validated only;
	// mutations are held in a plain slice.
	MutationListNodeBlockSize int

	// Workers controls the number of goroutines used to match the
	// queries within a single epoch in parallel. 0 means use
	// runtime.NumCPU(). Default: 0 (auto).
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		RecombinationRate:         1e-8,
		ErrorRate:                 1e-4,
		SegmentBlockSize:          1024,
		NodeMappingBlockSize:      1024,
		EdgesetBlockSize:          1024,
		MutationListNodeBlockSize: 1024,
	}
}

// validateConfig checks that cfg's fields are valid and returns a
// descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.RecombinationRate < 0 || cfg.RecombinationRate > 1 {
		return fmt.Errorf("tsinfer: RecombinationRate must be in [0,1], got %f", cfg.RecombinationRate)
	}
	if cfg.ErrorRate < 0 || cfg.ErrorRate > 1 {
		return fmt.Errorf("tsinfer: ErrorRate must be in [0,1], got %f", cfg.ErrorRate)
	}
	if cfg.SegmentBlockSize < 1 {
		return fmt.Errorf("tsinfer: SegmentBlockSize must be >= 1, got %d", cfg.SegmentBlockSize)
	}
	if cfg.NodeMappingBlockSize < 1 {
		return fmt.Errorf("tsinfer: NodeMappingBlockSize must be >= 1, got %d", cfg.NodeMappingBlockSize)
	}
	if cfg.EdgesetBlockSize < 1 {
		return fmt.Errorf("tsinfer: EdgesetBlockSize must be >= 1, got %d", cfg.EdgesetBlockSize)
	}
	if cfg.MutationListNodeBlockSize < 1 {
		return fmt.Errorf("tsinfer: MutationListNodeBlockSize must be >= 1, got %d", cfg.MutationListNodeBlockSize)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.SegmentBlockSize == 0 {
		cfg.SegmentBlockSize = 1024
	}
	if cfg.NodeMappingBlockSize == 0 {
		cfg.NodeMappingBlockSize = 1024
	}
	if cfg.EdgesetBlockSize == 0 {
		cfg.EdgesetBlockSize = 1024
	}
	if cfg.MutationListNodeBlockSize == 0 {
		cfg.MutationListNodeBlockSize = 1024
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}
