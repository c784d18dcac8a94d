package tsinfer

import (
	"reflect"
	"testing"
)

func twoAncestorStore(t *testing.T, a0, a1 []Allele) *AncestorStore {
	t.Helper()
	sb := NewAncestorStoreBuilder(len(a0))
	if err := sb.Add(a0, 2, nil, 0, SiteID(len(a0))); err != nil {
		t.Fatalf("Add a0: %v", err)
	}
	if err := sb.Add(a1, 1, nil, 0, SiteID(len(a1))); err != nil {
		t.Fatalf("Add a1: %v", err)
	}
	return sb.Dump()
}

func TestAncestorMatcherRejectsNoEligibleParents(t *testing.T) {
	store := twoAncestorStore(t, []Allele{0}, []Allele{1})
	matcher := NewAncestorMatcher(store, 1e-8, 1e-4)
	tb := NewTraceback(1)

	_, err := matcher.BestPath(Query{Haplotype: []Allele{0}, StartSite: 0, EndSite: 1, NumOlderAncestors: 0}, tb)
	if err == nil {
		t.Fatal("expected ErrNoEligibleParents for K=0")
	}
}

func TestAncestorMatcherPrefersExactMatch(t *testing.T) {
	store := twoAncestorStore(t, []Allele{0, 0, 0}, []Allele{1, 1, 1})
	matcher := NewAncestorMatcher(store, 1e-8, 1e-4)
	tb := NewTraceback(3)

	q := Query{Haplotype: []Allele{1, 1, 1}, StartSite: 0, EndSite: 3, NumOlderAncestors: 2}
	best, err := matcher.BestPath(q, tb)
	if err != nil {
		t.Fatalf("BestPath: %v", err)
	}
	if best != 1 {
		t.Errorf("best parent = %d, want 1 (the exact match)", best)
	}
}

func TestAncestorMatcherDetectsRecombination(t *testing.T) {
	// Scenario 3: N=2, L=3 ancestors [1,1,0] and [0,1,1]; query [1,1,1]
	// should require a parent switch to match both flanks.
	store := twoAncestorStore(t, []Allele{1, 1, 0}, []Allele{0, 1, 1})
	matcher := NewAncestorMatcher(store, 0.1, 1e-4)
	tb := NewTraceback(3)

	q := Query{Haplotype: []Allele{1, 1, 1}, StartSite: 0, EndSite: 3, NumOlderAncestors: 2}
	best, err := matcher.BestPath(q, tb)
	if err != nil {
		t.Fatalf("BestPath: %v", err)
	}

	intervals := tb.Walk(0, 3, best)
	want := []ParentInterval{{Start: 0, End: 2, Parent: 0}, {Start: 2, End: 3, Parent: 1}}
	if !reflect.DeepEqual(intervals, want) {
		t.Fatalf("Walk() = %+v, want %+v (switch exactly at site 2, from ancestor 0 to ancestor 1)", intervals, want)
	}
}

// TestAncestorMatcherSelfTransitionFloorIncludesRecombinationMass pins down
// the no-recombination transition probability at (1-rho)+rho/K, per
// spec.md's Model section: self-transition is reachable both by not
// recombining and by recombining back onto the same ancestor. A matcher
// that instead floors at the bare 1-rho (spec.md's Algorithm pseudocode,
// taken literally) undercounts that mass for the one segment that is also
// the current argmax, and spuriously records a recombination back onto
// itself even though nothing in the data calls for one.
func TestAncestorMatcherSelfTransitionFloorIncludesRecombinationMass(t *testing.T) {
	store := twoAncestorStore(t, []Allele{0}, []Allele{0})
	matcher := NewAncestorMatcher(store, 0.9, 1e-4)
	tb := NewTraceback(1)

	q := Query{Haplotype: []Allele{0}, StartSite: 0, EndSite: 1, NumOlderAncestors: 2}
	best, err := matcher.BestPath(q, tb)
	if err != nil {
		t.Fatalf("BestPath: %v", err)
	}
	if best != 0 {
		t.Fatalf("best parent = %d, want 0 (both ancestors match equally; ties favor the first)", best)
	}

	intervals := tb.Walk(0, 1, best)
	want := []ParentInterval{{Start: 0, End: 1, Parent: 0}}
	if !reflect.DeepEqual(intervals, want) {
		t.Fatalf("Walk() = %+v, want %+v (no spurious self-recombination recorded at the only site)", intervals, want)
	}
}

func TestAncestorMatcherFocalSiteBansMismatch(t *testing.T) {
	// Scenario 6: ancestor 0 carries 0 at the focal site, ancestor 1 carries 1.
	// A query declaring the site focal with allele 1 must never end up copying
	// from ancestor 0 there.
	store := twoAncestorStore(t, []Allele{0}, []Allele{1})
	matcher := NewAncestorMatcher(store, 1e-8, 1e-4)
	tb := NewTraceback(1)

	q := Query{
		Haplotype:         []Allele{1},
		StartSite:         0,
		EndSite:           1,
		FocalSites:        []SiteID{0},
		NumOlderAncestors: 2,
	}
	best, err := matcher.BestPath(q, tb)
	if err != nil {
		t.Fatalf("BestPath: %v", err)
	}
	if best != 1 {
		t.Errorf("best parent = %d, want 1 (ancestor 0 must be excluded by the focal-site mismatch ban)", best)
	}
}
