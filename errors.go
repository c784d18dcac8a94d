package tsinfer

import "errors"

// Sentinel errors, one per fatal-error kind recognized by the system. All
// are unrecoverable: the caller aborts the current run on any of these.
var (
	// ErrInvalidAllele is returned when an input allele is not in {0, 1}.
	ErrInvalidAllele = errors.New("tsinfer: allele outside {0,1}")

	// ErrNonMonotonicPositions is returned when positions[] is not
	// monotonically nondecreasing.
	ErrNonMonotonicPositions = errors.New("tsinfer: site positions not monotonically nondecreasing")

	// ErrEmptyPanel is returned when N == 0 or L == 0.
	ErrEmptyPanel = errors.New("tsinfer: empty sample panel (N=0 or L=0)")

	// ErrSegmentOverlap indicates two segments at the same site overlap,
	// violating the store's partition invariant. It is also returned by
	// AncestorStoreBuilder.Add for a haplotype of the wrong length, and by
	// AncestorStore's lookups for an out-of-range site or ancestor id.
	ErrSegmentOverlap = errors.New("tsinfer: segment overlap at site")

	// ErrNonTopologicalAncestor indicates an edgeset's parent id is not
	// strictly smaller than one of its children's, violating the
	// topological-order invariant.
	ErrNonTopologicalAncestor = errors.New("tsinfer: ancestor id order is not topological")

	// ErrUnderflow indicates the matcher's per-site renormalization could
	// not recover a usable maximum likelihood (all segment values
	// collapsed to zero).
	ErrUnderflow = errors.New("tsinfer: numeric underflow in ancestor matcher")

	// ErrArenaExhausted indicates a requested arena block size is too
	// small to make progress.
	ErrArenaExhausted = errors.New("tsinfer: arena exhausted (grow the configured block size)")

	// ErrNoEligibleParents indicates K == 0: a query was submitted with
	// no older ancestors to copy from.
	ErrNoEligibleParents = errors.New("tsinfer: no eligible parent ancestors for query (K=0)")
)
