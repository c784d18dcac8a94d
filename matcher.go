package tsinfer

// Query is a haplotype to be copied against the ancestors older than it.
type Query struct {
	Haplotype  []Allele
	StartSite  SiteID
	EndSite    SiteID
	FocalSites []SiteID

	// NumOlderAncestors is K: the number of eligible copying parents,
	// occupying ancestor ids [0, K).
	NumOlderAncestors int
}

// AncestorMatcher computes maximum-likelihood Li-Stephens copying paths
// over a finalized AncestorStore. Grounded on spec.md §4.4 and
// original_source/tsinfer/new_inference.py's AncestorMatcher.best_path.
type AncestorMatcher struct {
	store *AncestorStore
	rho   float64 // recombination rate
	mu    float64 // mismatch (error) rate
}

// NewAncestorMatcher builds a matcher over store with the given
// recombination and mismatch rates.
func NewAncestorMatcher(store *AncestorStore, rho, mu float64) *AncestorMatcher {
	return &AncestorMatcher{store: store, rho: rho, mu: mu}
}

// likelihoodSegment is a value-segment over ancestor ids sharing likelihood
// L, the matcher's per-site working set (spec.md §4.4's "segment-at-a-time"
// representation).
type likelihoodSegment struct {
	start, end AncestorID
	l          float64
}

// BestPath runs the segment-at-a-time Viterbi recursion over
// [q.StartSite, q.EndSite), writing recombination records into tb, and
// returns the best copying parent at the final matched site
// (end_site_value in spec.md §4.4's terms).
func (m *AncestorMatcher) BestPath(q Query, tb *Traceback) (AncestorID, error) {
	k := q.NumOlderAncestors
	if k <= 0 {
		return 0, ErrNoEligibleParents
	}

	isFocal := make(map[SiteID]bool, len(q.FocalSites))
	for _, s := range q.FocalSites {
		isFocal[s] = true
	}

	segs := []likelihoodSegment{{start: 0, end: AncestorID(k), l: 1.0}}

	for site := q.StartSite; site < q.EndSite; site++ {
		lmax, argmax := maxFind(segs)
		if lmax <= 0 {
			return 0, ErrUnderflow
		}

		transitioned := make([]likelihoodSegment, 0, len(segs))
		// Self-transition is reachable two ways: no recombination at all,
		// or a recombination that happens to land back on the same
		// ancestor (spec.md's Model section; matches new_inference.py's
		// qr = 1 - r + r/n).
		noRecombFloor := (1 - m.rho) + m.rho/float64(k)
		recombTerm := lmax * m.rho / float64(k)
		for _, seg := range segs {
			noRecomb := seg.l * noRecombFloor
			var newL float64
			if recombTerm > noRecomb {
				newL = recombTerm
				tb.AddRecombination(site, seg.start, seg.end, argmax)
			} else {
				newL = noRecomb
			}
			transitioned = append(transitioned, likelihoodSegment{start: seg.start, end: seg.end, l: newL})
		}

		queryAllele := q.Haplotype[site]
		emitted := m.emit(transitioned, site, queryAllele, isFocal[site])

		for i := range emitted {
			emitted[i].l /= lmax
		}

		segs = mergeLikelihoodSegments(emitted)
	}

	_, best := maxFind(segs)
	return best, nil
}

// emit refines segs against the store's allele runs at site (a piecewise
// intersection of the two partitions of [0, k)) and multiplies each
// resulting piece by the match/mismatch probability against qAllele. At a
// focal site, mismatch is forbidden: disagreeing pieces are zeroed instead
// of scaled by mu, provided some piece with nonzero likelihood carries
// qAllele. Where no such piece exists, the focal site is scored like any
// other site.
func (m *AncestorMatcher) emit(segs []likelihoodSegment, site SiteID, qAllele Allele, focal bool) []likelihoodSegment {
	if focal {
		carried := false
		for _, seg := range segs {
			if seg.l <= 0 {
				continue
			}
			for _, r := range m.store.runsInRange(site, seg.start, seg.end) {
				if Allele(r.state) == qAllele {
					carried = true
				}
			}
		}
		focal = carried
	}
	out := make([]likelihoodSegment, 0, len(segs))
	for _, seg := range segs {
		runs := m.store.runsInRange(site, seg.start, seg.end)
		for _, r := range runs {
			match := Allele(r.state) == qAllele
			var factor float64
			switch {
			case match:
				factor = 1 - m.mu
			case focal:
				factor = 0
			default:
				factor = m.mu
			}
			out = append(out, likelihoodSegment{
				start: AncestorID(r.start),
				end:   AncestorID(r.end),
				l:     seg.l * factor,
			})
		}
	}
	return out
}

// maxFind returns the maximum likelihood value across segs and one
// ancestor id drawn from its segment (any member, since all of a segment
// share the value).
func maxFind(segs []likelihoodSegment) (float64, AncestorID) {
	best := 0.0
	var bestAnc AncestorID
	for i, seg := range segs {
		if i == 0 || seg.l > best {
			best = seg.l
			bestAnc = seg.start
		}
	}
	return best, bestAnc
}

// mergeLikelihoodSegments coalesces adjacent segments with equal values,
// bounding segment count per spec.md §4.4 step 5. Equality is exact: values
// on either side of a merge point are always produced via the same
// arithmetic path (shared L times a shared factor), so they compare equal
// whenever the segments genuinely belong to one run.
func mergeLikelihoodSegments(segs []likelihoodSegment) []likelihoodSegment {
	out := make([]likelihoodSegment, 0, len(segs))
	for _, seg := range segs {
		if n := len(out); n > 0 && out[n-1].end == seg.start && out[n-1].l == seg.l {
			out[n-1].end = seg.end
			continue
		}
		out = append(out, seg)
	}
	return out
}
