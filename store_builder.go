package tsinfer

// AncestorStoreBuilder accumulates ancestors, in emission order, as
// per-site run-length segments. Grounded on spec.md §4.2.
type AncestorStoreBuilder struct {
	numSites int
	sites    []Runs[Allele] // per-site run list over [0, nextAncestorID)

	nextAncestorID AncestorID
	ages           []int
	focalSites     [][]SiteID
	starts         []SiteID
	ends           []SiteID
}

// NewAncestorStoreBuilder returns a builder for a panel of numSites sites.
func NewAncestorStoreBuilder(numSites int) *AncestorStoreBuilder {
	return &AncestorStoreBuilder{
		numSites: numSites,
		sites:    make([]Runs[Allele], numSites),
	}
}

// Add appends one ancestor's haplotype. haplotype must have length
// numSites; ages/focalSites/interval bookkeeping follow the ancestor's
// assigned id, which is its position in add order (0, 1, 2, ...).
//
// Internally, for each site this extends or appends a run in that site's
// Runs[Allele] list per the append-coalesce rule described in segment.go.
func (sb *AncestorStoreBuilder) Add(haplotype []Allele, age int, focal []SiteID, start, end SiteID) error {
	if len(haplotype) != sb.numSites {
		return ErrSegmentOverlap
	}
	id := sb.nextAncestorID
	for s := 0; s < sb.numSites; s++ {
		sb.sites[s].Append(id, id+1, haplotype[s])
	}
	sb.ages = append(sb.ages, age)
	sb.focalSites = append(sb.focalSites, focal)
	sb.starts = append(sb.starts, start)
	sb.ends = append(sb.ends, end)
	sb.nextAncestorID++
	return nil
}

// NumAncestors reports how many ancestors have been added so far.
func (sb *AncestorStoreBuilder) NumAncestors() int {
	return int(sb.nextAncestorID)
}

// dumpedSite is one flattened (site, start, end, state) record, as described
// by spec.md §4.2's dump() contract.
type dumpedSite struct {
	site  SiteID
	start AncestorID
	end   AncestorID
	state Allele
}

// Dump flattens the per-site run lists into parallel arrays sorted by
// (site, start), and builds the finalized AncestorStore.
func (sb *AncestorStoreBuilder) Dump() *AncestorStore {
	var records []dumpedSite
	offsets := make([]int, sb.numSites+1)
	for s := 0; s < sb.numSites; s++ {
		offsets[s] = len(records)
		for _, run := range sb.sites[s].All() {
			records = append(records, dumpedSite{site: SiteID(s), start: run.Start, end: run.End, state: run.Value})
		}
	}
	offsets[sb.numSites] = len(records)

	store := &AncestorStore{
		numSites:     sb.numSites,
		numAncestors: int(sb.nextAncestorID),
		siteOffsets:  offsets,
		runs:         records,
		ages:         append([]int(nil), sb.ages...),
		focalSites:   append([][]SiteID(nil), sb.focalSites...),
		starts:       append([]SiteID(nil), sb.starts...),
		ends:         append([]SiteID(nil), sb.ends...),
	}
	store.buildEpochIndex()
	return store
}
