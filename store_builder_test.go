package tsinfer

import "testing"

func TestAncestorStoreBuilderAddAndDump(t *testing.T) {
	sb := NewAncestorStoreBuilder(3)

	if err := sb.Add([]Allele{0, 0, 0}, 2, nil, 0, 3); err != nil {
		t.Fatalf("Add universal: %v", err)
	}
	if err := sb.Add([]Allele{1, 1, 0}, 1, []SiteID{0}, 0, 2); err != nil {
		t.Fatalf("Add ancestor 1: %v", err)
	}

	if sb.NumAncestors() != 2 {
		t.Fatalf("NumAncestors() = %d, want 2", sb.NumAncestors())
	}

	store := sb.Dump()
	if store.NumAncestors() != 2 || store.NumSites() != 3 {
		t.Fatalf("store dims = (%d, %d), want (2, 3)", store.NumAncestors(), store.NumSites())
	}

	for site := 0; site < 3; site++ {
		for a := AncestorID(0); a < 2; a++ {
			if _, err := store.GetState(SiteID(site), a); err != nil {
				t.Errorf("GetState(%d, %d) error: %v", site, a, err)
			}
		}
	}

	v0, err := store.GetState(0, 0)
	if err != nil || v0 != 0 {
		t.Errorf("GetState(0, 0) = (%v, %v), want (0, nil)", v0, err)
	}
	v1, err := store.GetState(0, 1)
	if err != nil || v1 != 1 {
		t.Errorf("GetState(0, 1) = (%v, %v), want (1, nil)", v1, err)
	}
	v2, err := store.GetState(2, 1)
	if err != nil || v2 != 0 {
		t.Errorf("GetState(2, 1) = (%v, %v), want (0, nil)", v2, err)
	}
}

func TestAncestorStoreBuilderCoalescesRuns(t *testing.T) {
	sb := NewAncestorStoreBuilder(1)
	for i := 0; i < 5; i++ {
		if err := sb.Add([]Allele{1}, 1, nil, 0, 1); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}
	if got := sb.sites[0].Len(); got != 1 {
		t.Fatalf("site 0 run count = %d, want 1 (all 5 ancestors share allele 1)", got)
	}
}
