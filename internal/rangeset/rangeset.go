// Package rangeset compresses bursts of consecutively allocated descriptor
// indices into maximal half-open ranges, so a batch of k consecutive indices
// becomes one [start,end) range instead of k singletons.
//
// Grounded on the range-compression shape of the original Rust source's
// backing/range_set.rs (DescriptorIndexRangeSet: insert, is_empty,
// iter_ranges over a RangeSet<DescriptorIndex>) — reimplemented natively
// rather than translated, since no retrieved Go repo ships an interval-set
// library for plain uint32 indices (see DESIGN.md).
//
// Used by two consumers that both need the same compression: the
// descriptor-set updater (spec §4.8), which turns a flush-queue drain into
// the fewest possible descriptor-write calls, and the slot table's GC pass
// (spec §4.1), which invokes the kind-specific drop hook once per maximal
// range instead of once per index.
//
// © 2025 arena-cache authors. MIT License.
package rangeset

import "sort"

// Range is a half-open interval [Start, End) of descriptor indices.
type Range struct {
	Start uint32
	End   uint32 // exclusive
}

// Len reports how many indices the range covers.
func (r Range) Len() int { return int(r.End - r.Start) }

// Set is an unordered collection of uint32 indices, materialized into
// maximal consecutive ranges on demand. It is not safe for concurrent use;
// callers serialize access the same way they serialize flush-queue draining
// (the registry's flush-and-gc mutex).
type Set struct {
	indices []uint32
}

// New returns an empty range set.
func New() *Set { return &Set{} }

// Insert adds a single index. Duplicate inserts are tolerated (collapsed at
// Ranges() time) since callers only ever insert indices drained once from a
// flush/reaper queue, but defensive duplicate handling costs nothing here.
func (s *Set) Insert(index uint32) {
	s.indices = append(s.indices, index)
}

// Len returns the number of raw indices inserted (pre-compression).
func (s *Set) Len() int { return len(s.indices) }

// IsEmpty reports whether the set has no indices.
func (s *Set) IsEmpty() bool { return len(s.indices) == 0 }

// Ranges sorts and compresses the inserted indices into the minimal set of
// maximal consecutive ranges, in ascending order. A burst of n consecutively
// allocated indices collapses to exactly one range of length n.
func (s *Set) Ranges() []Range {
	if len(s.indices) == 0 {
		return nil
	}
	sorted := append([]uint32(nil), s.indices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var ranges []Range
	start := sorted[0]
	prev := sorted[0]
	for _, idx := range sorted[1:] {
		if idx == prev {
			continue // duplicate
		}
		if idx == prev+1 {
			prev = idx
			continue
		}
		ranges = append(ranges, Range{Start: start, End: prev + 1})
		start = idx
		prev = idx
	}
	ranges = append(ranges, Range{Start: start, End: prev + 1})
	return ranges
}

// Reset clears the set for reuse, avoiding a reallocation on the next burst.
func (s *Set) Reset() {
	s.indices = s.indices[:0]
}
