package bindless

// recover.go implements versioned weak-ID recovery: given a raw
// DescriptorID, atomically upgrade it to a shared-owned (RC) handle iff the
// slot's reference count is currently > 0 and its version still matches
// (spec §4.1 "Versioned recovery").
//
// Every successful caller must walk away with its own independently owned
// increment — unlike a cache-fetch dedup, where concurrent callers can
// safely share one result, each RC[P] returned here represents a distinct
// Drop() obligation. Deduplicating the CAS loop itself (e.g. via
// singleflight) would hand the same single increment to every racing
// caller, so each of N reference drops happens against only 1 real
// increment: undercounted drops, leading to underflow panics or a slot
// reclaimed out from under a handle another caller still believes is live.
// tryRecover's own CAS loop already does the right thing concurrently — it
// is safe for any number of goroutines to call it in parallel, each getting
// its own increment on success — so there is nothing to additionally
// deduplicate here.
func recoverOwned[P any](t *slotTable[P], id DescriptorID) (RC[P], bool) {
	if !t.tryRecover(id) {
		return RC[P]{}, false
	}
	return RC[P]{id: id, table: t}, true
}
