package tsinfer

import "sort"

// Edgeset is (left, right, parent, children), with time = age(parent).
type Edgeset struct {
	Left, Right SiteID
	Parent      AncestorID
	Children    []AncestorID
}

// Mutation records that the branch leading to Node changed to DerivedState
// at Site.
type Mutation struct {
	Site         SiteID
	Node         AncestorID
	DerivedState Allele
}

// pendingEdge is one interval attributed to (child, parent) before
// per-epoch resolve merges them by parent.
type pendingEdge struct {
	left, right SiteID
	parent      AncestorID
	child       AncestorID
}

// TreeSequenceBuilder resolves independent copying paths into a
// conflict-free forest of edgesets and mutations, tracking live-segment
// coverage per parent. Grounded on spec.md §4.6.
type TreeSequenceBuilder struct {
	numSites int

	pending   []pendingEdge
	mutations []Mutation

	edgesets []Edgeset

	// liveSegments[id] is the set of site intervals over which ancestor id
	// is currently the youngest live representative of its lineage. A
	// parent's entry shrinks as its children are resolved; each resolved
	// child's own entry grows by the interval it was just copied over.
	liveSegments map[AncestorID]*SegmentList
}

// NewTreeSequenceBuilder returns an empty builder for a panel of numSites
// sites.
func NewTreeSequenceBuilder(numSites int) *TreeSequenceBuilder {
	return &TreeSequenceBuilder{
		numSites:     numSites,
		liveSegments: make(map[AncestorID]*SegmentList),
	}
}

// Update consumes one query's match result: its traceback, haplotype, and
// matched interval. It derives the piecewise-constant parent sequence via
// tb.Walk, then for each interval emits a pending edge and any mutations
// against that interval's parent's stored haplotype.
//
// parentAllele is a function returning the store allele for (site,
// parent) — threaded through rather than holding a *AncestorStore
// reference, keeping this type usable against any allele source.
func (t *TreeSequenceBuilder) Update(
	childID AncestorID,
	haplotype []Allele,
	startSite, endSite SiteID,
	endSiteParent AncestorID,
	traceback *Traceback,
	parentAllele func(site SiteID, parent AncestorID) Allele,
) error {
	intervals := traceback.Walk(startSite, endSite, endSiteParent)
	for _, iv := range intervals {
		if iv.Parent >= childID {
			return ErrNonTopologicalAncestor
		}
		t.pending = append(t.pending, pendingEdge{
			left: iv.Start, right: iv.End, parent: iv.Parent, child: childID,
		})
		for s := iv.Start; s < iv.End; s++ {
			hs := haplotype[s]
			if parentAllele(s, iv.Parent) != hs {
				t.mutations = append(t.mutations, Mutation{Site: s, Node: childID, DerivedState: hs})
			}
		}
	}
	return nil
}

// Resolve runs the per-epoch resolve step: group pending edges by parent,
// merge identical [left, right) intervals' children into sorted unique
// lists, append the resulting edgesets, and recompute each touched
// parent's live-segment list (newer coverings shadow older ones). Clears
// the pending edge buffer.
func (tb *TreeSequenceBuilder) Resolve() {
	if len(tb.pending) == 0 {
		return
	}

	byParent := make(map[AncestorID][]pendingEdge)
	for _, e := range tb.pending {
		byParent[e.parent] = append(byParent[e.parent], e)
	}

	parents := make([]AncestorID, 0, len(byParent))
	for p := range byParent {
		parents = append(parents, p)
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })

	for _, p := range parents {
		edges := byParent[p]
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].left != edges[j].left {
				return edges[i].left < edges[j].left
			}
			return edges[i].right < edges[j].right
		})

		var merged []Edgeset
		for _, e := range edges {
			if n := len(merged); n > 0 && merged[n-1].Left == e.left && merged[n-1].Right == e.right {
				merged[n-1].Children = append(merged[n-1].Children, e.child)
				continue
			}
			merged = append(merged, Edgeset{Left: e.left, Right: e.right, Parent: p, Children: []AncestorID{e.child}})
		}
		for i := range merged {
			merged[i].Children = uniqueSorted(merged[i].Children)
		}
		tb.edgesets = append(tb.edgesets, merged...)

		tb.recomputeLiveSegments(p, merged)
	}

	tb.pending = tb.pending[:0]
}

// recomputeLiveSegments shadows parent p's live-segment list wherever a
// newly resolved edge now covers it, and grows each child's own
// live-segment list with the interval it just claimed. A parent is live
// only where no descendant between it and a future query covers it, so the
// intervals removed here are exactly the ones added to the covering child.
func (tb *TreeSequenceBuilder) recomputeLiveSegments(p AncestorID, newEdges []Edgeset) {
	parentLive := tb.liveSegmentsFor(p)
	for _, e := range newEdges {
		parentLive.Subtract(e.Left, e.Right)
	}
	for _, e := range newEdges {
		for _, c := range e.Children {
			tb.liveSegmentsFor(c).Append(e.Left, e.Right)
		}
	}
}

// liveSegmentsFor returns ancestor id's live-segment list, creating an
// empty one on first use.
func (tb *TreeSequenceBuilder) liveSegmentsFor(id AncestorID) *SegmentList {
	sl, ok := tb.liveSegments[id]
	if !ok {
		sl = NewSegmentList()
		tb.liveSegments[id] = sl
	}
	return sl
}

// GetLiveSegments returns the current live-segment list for parent,
// restricting the range over which a younger query may find this parent
// viable.
func (tb *TreeSequenceBuilder) GetLiveSegments(parent AncestorID) []Interval {
	sl, ok := tb.liveSegments[parent]
	if !ok {
		return nil
	}
	return sl.All()
}

// Edgesets returns all resolved edgesets so far, in resolve order.
func (tb *TreeSequenceBuilder) Edgesets() []Edgeset { return tb.edgesets }

// Mutations returns all recorded mutations so far.
func (tb *TreeSequenceBuilder) Mutations() []Mutation { return tb.mutations }

func uniqueSorted(ids []AncestorID) []AncestorID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
