package tsinfer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// validatePositions checks that positions is monotonically nondecreasing.
func validatePositions(positions []float64) error {
	for i := 1; i < len(positions); i++ {
		if positions[i] < positions[i-1] {
			return fmt.Errorf("%w: position[%d]=%g < position[%d]=%g",
				ErrNonMonotonicPositions, i, positions[i], i-1, positions[i-1])
		}
	}
	return nil
}

// validateHaplotypes checks that every allele in the row-major
// numSamples*numSites haplotype matrix is in {0, 1}.
func validateHaplotypes(haplotypes []Allele, numSamples, numSites int) error {
	want := numSamples * numSites
	if len(haplotypes) != want {
		return fmt.Errorf("tsinfer: haplotypes has length %d, want %d (N=%d * L=%d)",
			len(haplotypes), want, numSamples, numSites)
	}
	for i, a := range haplotypes {
		if a != 0 && a != 1 {
			return fmt.Errorf("%w: haplotypes[%d]=%d", ErrInvalidAllele, i, a)
		}
	}
	return nil
}

// siteFrequencies returns, for each of numSites sites, the count of samples
// carrying the derived (1) allele. haplotypes is row-major
// (numSamples*numSites), sample-major per the external interface.
//
// The per-site sum is computed with gonum/floats.Sum over a gathered
// column rather than a hand-rolled accumulator loop, mirroring
// original_source/tsinfer/new_inference.py's
// `self.frequency = np.sum(self.sample_matrix, axis=0)`.
func siteFrequencies(haplotypes []Allele, numSamples, numSites int) []int {
	freq := make([]int, numSites)
	column := make([]float64, numSamples)
	for site := 0; site < numSites; site++ {
		for sample := 0; sample < numSamples; sample++ {
			column[sample] = float64(haplotypes[sample*numSites+site])
		}
		freq[site] = int(floats.Sum(column))
	}
	return freq
}

// carriers returns the set of sample indices carrying the derived allele at
// every site in focal (the "R" set in
// original_source/tsinfer/new_inference.py: `S[S[:,site] == 1]`, intersected
// across all focal sites rather than a single site).
func carriers(haplotypes []Allele, numSamples, numSites int, focal []SiteID) []int {
	var out []int
	for sample := 0; sample < numSamples; sample++ {
		ok := true
		for _, s := range focal {
			if haplotypes[sample*numSites+int(s)] != 1 {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, sample)
		}
	}
	return out
}
