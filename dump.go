package tsinfer

// Result is the final dump produced by Run, consumed by an external
// serializer. Grounded on spec.md §6 ("Outputs").
type Result struct {
	Nodes     NodeTable
	Edgesets  EdgesetTable
	Mutations MutationTable

	// RunID tags this run for cross-log correlation; see pipeline.go.
	RunID string
}

// NodeTable is flags[A+N] and time[A+N]: one row per ancestor, then one
// row per sample.
type NodeTable struct {
	Flags []uint32
	Time  []float64
}

// EdgesetTable is the flattened edgeset dump: left/right are genomic
// positions (converted from site ids via the positions passed to Run), parent is one
// ancestor id per edgeset, and Children is the flattened child-id array
// with ChildrenLength giving each edgeset's child count.
type EdgesetTable struct {
	Left, Right    []float64
	Parent         []AncestorID
	Children       []AncestorID
	ChildrenLength []int
}

// MutationTable is the flattened mutation dump.
type MutationTable struct {
	Site         []SiteID
	Node         []AncestorID
	DerivedState []Allele
}

// dumpNodes builds the Nodes table: ancestors first (flag 0, internal),
// then N samples (flag 1), per spec.md §6.
func dumpNodes(store *AncestorStore, numSamples int, sampleAges []int) NodeTable {
	a := store.NumAncestors()
	nt := NodeTable{
		Flags: make([]uint32, a+numSamples),
		Time:  make([]float64, a+numSamples),
	}
	for i := 0; i < a; i++ {
		nt.Flags[i] = 0
		nt.Time[i] = float64(store.Age(AncestorID(i)))
	}
	for i := 0; i < numSamples; i++ {
		nt.Flags[a+i] = 1
		nt.Time[a+i] = float64(sampleAges[i])
	}
	return nt
}

// dumpEdgesets flattens a TreeSequenceBuilder's resolved edgesets into the
// parallel-array EdgesetTable, translating site ids to positions. An
// edgeset's Right bound is exclusive and may equal len(positions) (one past
// the last site); positionAt supplies a sentinel for that case rather than
// indexing past the end of positions.
func dumpEdgesets(edgesets []Edgeset, positions []float64) EdgesetTable {
	positionAt := func(s SiteID) float64 {
		if int(s) < len(positions) {
			return positions[s]
		}
		return positions[len(positions)-1] + 1
	}
	et := EdgesetTable{}
	for _, e := range edgesets {
		et.Left = append(et.Left, positionAt(e.Left))
		et.Right = append(et.Right, positionAt(e.Right))
		et.Parent = append(et.Parent, e.Parent)
		et.Children = append(et.Children, e.Children...)
		et.ChildrenLength = append(et.ChildrenLength, len(e.Children))
	}
	return et
}

// dumpMutations flattens a TreeSequenceBuilder's recorded mutations.
func dumpMutations(mutations []Mutation) MutationTable {
	mt := MutationTable{
		Site:         make([]SiteID, len(mutations)),
		Node:         make([]AncestorID, len(mutations)),
		DerivedState: make([]Allele, len(mutations)),
	}
	for i, m := range mutations {
		mt.Site[i] = m.Site
		mt.Node[i] = m.Node
		mt.DerivedState[i] = m.DerivedState
	}
	return mt
}
