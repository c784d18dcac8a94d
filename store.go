package tsinfer

import "sort"

// AncestorStore is the immutable, read-only view produced by
// [AncestorStoreBuilder.Dump]. Grounded on spec.md §4.3.
type AncestorStore struct {
	numSites     int
	numAncestors int

	// siteOffsets[s]:siteOffsets[s+1] indexes into runs for site s's
	// sorted-by-start run list.
	siteOffsets []int
	runs        []dumpedSite

	ages       []int
	focalSites [][]SiteID
	starts     []SiteID
	ends       []SiteID

	// epochAges, epochFirst and epochCount hold, for each distinct age
	// present (oldest first), that age and the half-open ancestor-id range
	// [epochFirst, epochFirst+epochCount) occupying that
	// epoch, per spec.md §3's "store indexes epochs contiguously".
	epochAges   []int
	epochFirst  []AncestorID
	epochCount  []int
	numOlderOf  []int // per ancestor id, count of strictly-older ancestors
}

// NumSites reports the number of sites in the panel.
func (s *AncestorStore) NumSites() int { return s.numSites }

// NumAncestors reports the number of ancestors in the store.
func (s *AncestorStore) NumAncestors() int { return s.numAncestors }

// GetState returns the allele of ancestor a at site, via binary search over
// that site's sorted run list. O(log R_s).
func (s *AncestorStore) GetState(site SiteID, a AncestorID) (Allele, error) {
	if int(site) < 0 || int(site) >= s.numSites {
		return 0, ErrSegmentOverlap
	}
	lo, hi := s.siteOffsets[site], s.siteOffsets[site+1]
	runs := s.runs[lo:hi]
	i := sort.Search(len(runs), func(i int) bool { return runs[i].end > a })
	if i < len(runs) && runs[i].start <= a && a < runs[i].end {
		return runs[i].state, nil
	}
	return 0, ErrSegmentOverlap
}

// GetAncestor materializes ancestor a's full allele vector by scanning
// every site's run list; sites outside [StartSite, EndSite) are emitted as
// 0.
func (s *AncestorStore) GetAncestor(a AncestorID) (*BuiltAncestor, int, error) {
	if int(a) < 0 || int(a) >= s.numAncestors {
		return nil, 0, ErrSegmentOverlap
	}
	hap := make([]Allele, s.numSites)
	for site := 0; site < s.numSites; site++ {
		v, err := s.GetState(SiteID(site), a)
		if err != nil {
			return nil, 0, err
		}
		hap[site] = v
	}
	anc := &BuiltAncestor{
		Age:        s.ages[a],
		FocalSites: s.focalSites[a],
		Haplotype:  hap,
		StartSite:  s.starts[a],
		EndSite:    s.ends[a],
	}
	return anc, s.numOlderOf[a], nil
}

// GetEpochAncestors returns the contiguous ancestor-id range for the epoch
// at the given index (0 = oldest epoch), in increasing-id order.
func (s *AncestorStore) GetEpochAncestors(epochIndex int) []AncestorID {
	if epochIndex < 0 || epochIndex >= len(s.epochAges) {
		return nil
	}
	first := s.epochFirst[epochIndex]
	out := make([]AncestorID, s.epochCount[epochIndex])
	for i := range out {
		out[i] = first + AncestorID(i)
	}
	return out
}

// NumEpochs reports the number of distinct age classes in the store.
func (s *AncestorStore) NumEpochs() int { return len(s.epochAges) }

// NumOlderAncestors returns num_older_ancestors[a]: the count of ancestors
// with strictly greater age than a.
func (s *AncestorStore) NumOlderAncestors(a AncestorID) int {
	return s.numOlderOf[a]
}

// Age returns the epoch of ancestor a.
func (s *AncestorStore) Age(a AncestorID) int { return s.ages[a] }

// runsInRange returns site's allele runs clipped to [lo, hi), in increasing
// start order. Used by the matcher's emission step to refine likelihood
// segments against the store's allele boundaries.
func (s *AncestorStore) runsInRange(site SiteID, lo, hi AncestorID) []dumpedSite {
	base, end := s.siteOffsets[site], s.siteOffsets[site+1]
	runs := s.runs[base:end]
	i := sort.Search(len(runs), func(i int) bool { return runs[i].end > lo })
	var out []dumpedSite
	for ; i < len(runs) && runs[i].start < hi; i++ {
		r := runs[i]
		if r.start < lo {
			r.start = lo
		}
		if r.end > hi {
			r.end = hi
		}
		out = append(out, r)
	}
	return out
}

// buildEpochIndex groups the (assumed oldest-id-first, non-increasing age)
// ancestor sequence into contiguous epochs and computes num_older_ancestors
// for every id.
func (s *AncestorStore) buildEpochIndex() {
	s.numOlderOf = make([]int, s.numAncestors)
	if s.numAncestors == 0 {
		return
	}
	i := 0
	for i < s.numAncestors {
		age := s.ages[i]
		j := i
		for j < s.numAncestors && s.ages[j] == age {
			j++
		}
		s.epochAges = append(s.epochAges, age)
		s.epochFirst = append(s.epochFirst, AncestorID(i))
		s.epochCount = append(s.epochCount, j-i)
		for k := i; k < j; k++ {
			s.numOlderOf[k] = i
		}
		i = j
	}
}
