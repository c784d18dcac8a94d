package tsinfer

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// BuiltAncestor is one ancestor haplotype: a synthetic ancestor emitted by
// [AncestorBuilder.Build], in emission (oldest-first) order, or any stored
// ancestor (the universal ancestor 0 included) materialized by
// [AncestorStore.GetAncestor]. Build never emits the universal ancestor.
type BuiltAncestor struct {
	// Age is the integer epoch; older ancestors have larger Age. See
	// DESIGN.md "Open Question decisions" #2 for how this is derived
	// from frequency-class order.
	Age int

	// FocalSites is the sorted set of sites this ancestor was built for,
	// at which it is asserted to carry the derived allele. During
	// matching, a mismatch at these sites is forbidden wherever some
	// eligible parent carries the derived allele there.
	FocalSites []SiteID

	// Haplotype is the full-length allele vector. Entries outside
	// [StartSite, EndSite) are 0 (the neutral state).
	Haplotype []Allele

	StartSite SiteID
	EndSite   SiteID
}

// AncestorBuilder synthesizes ancestral haplotypes from sample frequencies
// at focal sites. Grounded on spec.md §4.1 and
// original_source/tsinfer/new_inference.py's AncestorBuilder.
type AncestorBuilder struct {
	numSamples int
	numSites   int
	haplotypes []Allele // row-major, numSamples*numSites
	mask       []bool   // site already "arisen" in an older, already-built ancestor

	// ClassStats holds, per processed frequency class, descriptive
	// statistics (size, mean/variance of class member count isn't
	// meaningful for a scalar frequency value, so this records the
	// frequency value and the number of ancestors it produced) for
	// diagnostic logging. Populated by Build.
	ClassStats []FrequencyClassStat
}

// FrequencyClassStat summarizes one processed frequency class.
type FrequencyClassStat struct {
	Frequency int
	NumSites  int

	// NumAncestors is the number of distinct ancestors this class
	// produced; less than NumSites whenever perfect-linkage focal
	// grouping merged sites together.
	NumAncestors int

	// MeanFocalGroupSize is the mean number of focal sites merged per
	// ancestor in this class.
	MeanFocalGroupSize float64
}

// NewAncestorBuilder validates and wraps a sample panel for ancestor
// synthesis. haplotypes is row-major (numSamples*numSites), values in
// {0, 1}.
func NewAncestorBuilder(numSamples, numSites int, haplotypes []Allele) (*AncestorBuilder, error) {
	if numSamples == 0 || numSites == 0 {
		return nil, ErrEmptyPanel
	}
	if err := validateHaplotypes(haplotypes, numSamples, numSites); err != nil {
		return nil, err
	}
	return &AncestorBuilder{
		numSamples: numSamples,
		numSites:   numSites,
		haplotypes: haplotypes,
		mask:       make([]bool, numSites),
	}, nil
}

// Build synthesizes every ancestor in oldest-first emission order: sites
// are grouped by decreasing frequency class, ties within a class are
// collapsed by perfect carrier-set linkage (groupFocalSites), and groups
// are emitted in increasing leftmost-focal-site order.
func (b *AncestorBuilder) Build() ([]BuiltAncestor, error) {
	freq := siteFrequencies(b.haplotypes, b.numSamples, b.numSites)

	type siteFreq struct {
		site SiteID
		freq int
	}
	var sites []siteFreq
	for s := 0; s < b.numSites; s++ {
		if freq[s] > 1 {
			sites = append(sites, siteFreq{SiteID(s), freq[s]})
		}
	}
	// Decreasing frequency, ties broken by ascending site id — a stable
	// sort so that within-class site order (used for the group
	// leftmost-site tie-break) is deterministic.
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].freq != sites[j].freq {
			return sites[i].freq > sites[j].freq
		}
		return sites[i].site < sites[j].site
	})

	type pending struct {
		ancestor   BuiltAncestor
		classOrder int
	}
	var built []pending

	classOrder := 0
	for i := 0; i < len(sites); {
		j := i
		freqVal := sites[i].freq
		for j < len(sites) && sites[j].freq == freqVal {
			j++
		}
		classSites := make([]SiteID, 0, j-i)
		for _, sf := range sites[i:j] {
			classSites = append(classSites, sf.site)
		}

		groups := groupFocalSites(classSites, b.haplotypes, b.numSamples, b.numSites)
		for _, g := range groups {
			anc, err := b.makeAncestor(g)
			if err != nil {
				return nil, err
			}
			built = append(built, pending{ancestor: anc, classOrder: classOrder})
		}

		groupSizes := make([]float64, len(groups))
		for gi, g := range groups {
			groupSizes[gi] = float64(len(g))
		}
		b.ClassStats = append(b.ClassStats, FrequencyClassStat{
			Frequency:          freqVal,
			NumSites:           len(classSites),
			NumAncestors:       len(groups),
			MeanFocalGroupSize: stat.Mean(groupSizes, nil),
		})

		classOrder++
		i = j
	}

	numClasses := classOrder
	out := make([]BuiltAncestor, len(built))
	for i, p := range built {
		p.ancestor.Age = numClasses - p.classOrder
		out[i] = p.ancestor
	}
	return out, nil
}

// UniversalAncestorAge returns the age assigned to ancestor 0, the
// universal all-zeros ancestor: one epoch older than the oldest synthetic
// ancestor.
func (b *AncestorBuilder) UniversalAncestorAge() int {
	return len(b.ClassStats) + 1
}

// MakeAncestor builds a single ancestor for the given (already
// frequency-class-grouped) focal site set, per spec.md §4.1's
// make_ancestor contract. Exported for direct testing and for callers that
// want to build an ancestor for a custom focal set outside the automatic
// Build grouping.
func (b *AncestorBuilder) MakeAncestor(focalSites []SiteID) (BuiltAncestor, error) {
	return b.makeAncestor(focalSites)
}

func (b *AncestorBuilder) makeAncestor(focal []SiteID) (BuiltAncestor, error) {
	sorted := append([]SiteID(nil), focal...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	samples := carriers(b.haplotypes, b.numSamples, b.numSites, sorted)

	hap := make([]Allele, b.numSites)
	focalMin, focalMax := sorted[0], sorted[len(sorted)-1]
	isFocal := make(map[SiteID]bool, len(sorted))
	for _, s := range sorted {
		isFocal[s] = true
		hap[s] = 1
	}

	for x := focalMin; x <= focalMax; x++ {
		if isFocal[x] {
			continue
		}
		hap[x] = b.consensusVote(samples, int(x))
	}

	start := b.extend(hap, focalMin, -1, samples)
	end := b.extend(hap, focalMax, +1, samples)

	for _, s := range sorted {
		b.mask[s] = true
	}

	return BuiltAncestor{
		FocalSites: sorted,
		Haplotype:  hap,
		StartSite:  start,
		EndSite:    end + 1,
	}, nil
}

// consensusVote returns the masked majority allele among samples at site x,
// ties broken toward 0 per spec.md §4.1.
func (b *AncestorBuilder) consensusVote(samples []int, x int) Allele {
	if !b.mask[x] {
		return 0
	}
	sum := 0
	for _, k := range samples {
		sum += int(b.haplotypes[k*b.numSites+x])
	}
	if 2*sum > len(samples) {
		return 1
	}
	return 0
}

// extend walks outward from a focal-span boundary (dir = -1 left, +1
// right), filling hap with masked-majority consensus and pruning
// inconsistent samples via a four-gamete-style pattern test, stopping when
// the consensus subset empties or a sequence boundary is hit. Returns the
// furthest site reached (inclusive); if nothing could be extended, returns
// boundary unchanged.
func (b *AncestorBuilder) extend(hap []Allele, boundary SiteID, dir int, samples []int) SiteID {
	const seedPattern = 1 << 3 // (ancestor=1, sample=1), true of every sample at the focal span

	consistent := make(map[int]uint8, len(samples))
	for _, k := range samples {
		consistent[k] = seedPattern
	}

	last := boundary
	l := int(boundary) + dir
	for l >= 0 && l < b.numSites && len(consistent) > 0 {
		sum := 0
		if b.mask[l] {
			for k := range consistent {
				sum += int(b.haplotypes[k*b.numSites+l])
			}
		}
		var allele Allele
		if 2*sum > len(consistent) {
			allele = 1
		}
		hap[l] = allele
		last = SiteID(l)

		for k := range consistent {
			sampleAllele := b.haplotypes[k*b.numSites+l]
			pattern := uint8(1) << uint(2*allele+Allele(sampleAllele))
			consistent[k] |= pattern
			if consistent[k] == 0x0F {
				delete(consistent, k)
			}
		}
		l += dir
	}
	return last
}
