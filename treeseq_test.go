package tsinfer

import (
	"reflect"
	"testing"
)

func TestTreeSequenceBuilderMergesIdenticalIntervalsByParent(t *testing.T) {
	ts := NewTreeSequenceBuilder(3)

	parent0 := []Allele{1, 1, 0}
	parentAllele := func(site SiteID, parent AncestorID) Allele {
		if parent == 0 {
			return parent0[site]
		}
		t.Fatalf("unexpected parent %d", parent)
		return 0
	}

	tbA := NewTraceback(3)
	if err := ts.Update(1, []Allele{1, 1, 1}, 0, 3, 0, tbA, parentAllele); err != nil {
		t.Fatalf("Update(child 1): %v", err)
	}

	tbB := NewTraceback(3)
	if err := ts.Update(2, []Allele{1, 0, 1}, 0, 3, 0, tbB, parentAllele); err != nil {
		t.Fatalf("Update(child 2): %v", err)
	}

	ts.Resolve()

	edgesets := ts.Edgesets()
	if len(edgesets) != 1 {
		t.Fatalf("len(edgesets) = %d, want 1 (identical [l,r) for the same parent must merge)", len(edgesets))
	}
	e := edgesets[0]
	if e.Left != 0 || e.Right != 3 || e.Parent != 0 {
		t.Errorf("edgeset = %+v, want Left=0 Right=3 Parent=0", e)
	}
	if !reflect.DeepEqual(e.Children, []AncestorID{1, 2}) {
		t.Errorf("Children = %v, want [1 2]", e.Children)
	}

	mutations := ts.Mutations()
	if len(mutations) != 3 {
		t.Fatalf("len(mutations) = %d, want 3", len(mutations))
	}
	foundA, foundB, foundC := false, false, false
	for _, m := range mutations {
		switch {
		case m.Node == 1 && m.Site == 2 && m.DerivedState == 1:
			foundA = true
		case m.Node == 2 && m.Site == 1 && m.DerivedState == 0:
			foundB = true
		case m.Node == 2 && m.Site == 2 && m.DerivedState == 1:
			foundC = true
		default:
			t.Errorf("unexpected mutation %+v", m)
		}
	}
	if !foundA || !foundB || !foundC {
		t.Errorf("missing expected mutation: foundA=%v foundB=%v foundC=%v, got %+v", foundA, foundB, foundC, mutations)
	}

	// Parent 0 had no prior live coverage, so shadowing the new edges
	// against it leaves nothing; the children it was just copied by
	// become live over the interval they claimed instead.
	if live := ts.GetLiveSegments(0); live != nil {
		t.Errorf("GetLiveSegments(0) = %v, want nil (fully shadowed by children 1 and 2)", live)
	}
	want := []Interval{{Start: 0, End: 3}}
	if live := ts.GetLiveSegments(1); !reflect.DeepEqual(live, want) {
		t.Errorf("GetLiveSegments(1) = %v, want %v", live, want)
	}
	if live := ts.GetLiveSegments(2); !reflect.DeepEqual(live, want) {
		t.Errorf("GetLiveSegments(2) = %v, want %v", live, want)
	}
}

// TestTreeSequenceBuilderLiveSegmentsShadowAcrossEpochs exercises the
// cross-epoch case: a parent live over its full span gets partially
// shadowed once a younger descendant copies from it, and the shadowed
// range moves onto that descendant's own live-segment list rather than
// lingering as overlapping coverage on the parent.
func TestTreeSequenceBuilderLiveSegmentsShadowAcrossEpochs(t *testing.T) {
	ts := NewTreeSequenceBuilder(4)
	parentAllele := func(SiteID, AncestorID) Allele { return 0 }

	// Epoch 1: ancestor 1 copies from ancestor 0 over its whole span,
	// becoming the youngest live representative there; ancestor 0 itself
	// had no prior coverage to shadow, so it stays unclaimed.
	tbSeed := NewTraceback(4)
	if err := ts.Update(1, []Allele{0, 0, 0, 0}, 0, 4, 0, tbSeed, parentAllele); err != nil {
		t.Fatalf("Update(child 1): %v", err)
	}
	ts.Resolve()
	if live := ts.GetLiveSegments(0); live != nil {
		t.Fatalf("GetLiveSegments(0) after epoch 1 = %v, want nil", live)
	}
	if live := ts.GetLiveSegments(1); !reflect.DeepEqual(live, []Interval{{Start: 0, End: 4}}) {
		t.Fatalf("GetLiveSegments(1) after epoch 1 = %v, want [{0 4}]", live)
	}

	// Epoch 2: ancestor 2, younger still, copies from ancestor 1 but only
	// over [1, 3) — a strict sub-range of what ancestor 1 was live over.
	tbShadow := NewTraceback(4)
	if err := ts.Update(2, []Allele{0, 0, 0, 0}, 1, 3, 1, tbShadow, parentAllele); err != nil {
		t.Fatalf("Update(child 2): %v", err)
	}
	ts.Resolve()

	wantParent := []Interval{{Start: 0, End: 1}, {Start: 3, End: 4}}
	if live := ts.GetLiveSegments(1); !reflect.DeepEqual(live, wantParent) {
		t.Errorf("GetLiveSegments(1) after epoch 2 = %v, want %v (shadowed over [1,3) by ancestor 2)", live, wantParent)
	}
	wantChild := []Interval{{Start: 1, End: 3}}
	if live := ts.GetLiveSegments(2); !reflect.DeepEqual(live, wantChild) {
		t.Errorf("GetLiveSegments(2) = %v, want %v", live, wantChild)
	}
}

func TestTreeSequenceBuilderDistinctIntervalsStaySeparate(t *testing.T) {
	ts := NewTreeSequenceBuilder(4)
	parentAllele := func(SiteID, AncestorID) Allele { return 0 }

	tbA := NewTraceback(4)
	if err := ts.Update(1, []Allele{0, 0, 0, 0}, 0, 2, 0, tbA, parentAllele); err != nil {
		t.Fatalf("Update(child 1): %v", err)
	}
	tbB := NewTraceback(4)
	if err := ts.Update(2, []Allele{0, 0, 0, 0}, 2, 4, 0, tbB, parentAllele); err != nil {
		t.Fatalf("Update(child 2): %v", err)
	}

	ts.Resolve()

	edgesets := ts.Edgesets()
	if len(edgesets) != 2 {
		t.Fatalf("len(edgesets) = %d, want 2 (disjoint intervals must not merge)", len(edgesets))
	}
}

func TestTreeSequenceBuilderResolveIsIdempotentWhenEmpty(t *testing.T) {
	ts := NewTreeSequenceBuilder(2)
	ts.Resolve()
	if len(ts.Edgesets()) != 0 {
		t.Fatalf("Resolve() with no pending updates produced %d edgesets, want 0", len(ts.Edgesets()))
	}
}
