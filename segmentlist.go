package tsinfer

import "sort"

// SegmentList is a sorted, non-overlapping list of half-open site intervals.
// It backs live-segment accounting in the tree sequence builder: the set of
// site ranges over which a given ancestor is currently the youngest live
// representative of its lineage.
//
// This mirrors the C implementation's segment_list_t, reworked from an
// intrusive linked list over an object_heap into a plain growable slice,
// per the design notes' guidance that recursive/pointer-chased structures
// are flat by construction in this package.
type SegmentList struct {
	items []Interval
}

// NewSegmentList returns an empty SegmentList.
func NewSegmentList() *SegmentList {
	return &SegmentList{}
}

// Append adds the interval [start, end) to the list, merging it with any
// existing interval it overlaps or abuts so the list stays sorted and
// overlap-free.
func (s *SegmentList) Append(start, end SiteID) {
	if start >= end {
		return
	}
	items := append(s.items, Interval{Start: start, End: end})
	sort.Slice(items, func(i, j int) bool { return items[i].Start < items[j].Start })

	merged := items[:1]
	for _, iv := range items[1:] {
		last := &merged[len(merged)-1]
		if iv.Start > last.End {
			merged = append(merged, iv)
			continue
		}
		if iv.End > last.End {
			last.End = iv.End
		}
	}
	s.items = merged
}

// Subtract removes the portion of every interval in the list that overlaps
// [start, end), splitting an interval into two remainder pieces when the
// removed range falls strictly inside it. Used to shadow a parent's
// live-segment coverage once a younger descendant claims part of it.
func (s *SegmentList) Subtract(start, end SiteID) {
	if start >= end || len(s.items) == 0 {
		return
	}
	out := make([]Interval, 0, len(s.items)+1)
	for _, iv := range s.items {
		if iv.End <= start || iv.Start >= end {
			out = append(out, iv)
			continue
		}
		if iv.Start < start {
			out = append(out, Interval{Start: iv.Start, End: start})
		}
		if iv.End > end {
			out = append(out, Interval{Start: end, End: iv.End})
		}
	}
	s.items = out
}

// Clear empties the list, reusing its backing storage.
func (s *SegmentList) Clear() {
	s.items = s.items[:0]
}

// Len reports the number of intervals in the list.
func (s *SegmentList) Len() int {
	return len(s.items)
}

// All returns the underlying interval slice. Callers must not mutate it.
func (s *SegmentList) All() []Interval {
	return s.items
}
