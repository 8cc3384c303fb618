package bindless

// table.go implements the generic, concurrent slot table (spec §4.1): a
// fixed-capacity array of payload slots with lock-free-style allocation,
// atomically ref-counted ownership, versioned identifiers, and deferred
// reclamation routed through one of two per-epoch reaper queues.
//
// Queues (dead/reaper/flush) are implemented as short-critical-section
// mutex-guarded slices rather than hand-rolled lock-free MPMC structures.
// The teacher corpus never reaches for a bespoke lock-free queue either — it
// serializes its hot structures (arena-cache's shard index) behind a
// sync.RWMutex and keeps only counters atomic — so this follows the same
// discipline: true lock-freedom is reserved for the single-word operations
// (ref count, write-epoch pointer) the spec calls out explicitly, and every
// multi-word queue is a mutex-guarded slice held only for the duration of an
// append/pop. See DESIGN.md for the alternatives considered.

import (
	"sync"
	"sync/atomic"

	"github.com/voskan/bindless/internal/epoch"
	"github.com/voskan/bindless/internal/rangeset"
	"github.com/voskan/bindless/internal/slotarena"
)

// DropFunc releases the underlying GPU objects for a batch of payloads in
// one call, as the kind-specific drop hook (spec §4.1 "Reclamation"). It is
// invoked once per maximal consecutive range collected during a GC pass.
type DropFunc[P any] func(payloads []P)

type slotCell[P any] struct {
	payload  P
	refCount atomic.Int32
	version  uint16 // mutated only under the registry's flush-and-gc mutex
}

// slotTable is the concurrent, fixed-capacity store for one resource kind.
type slotTable[P any] struct {
	kindID   Kind
	capacity uint32
	cells    *slotarena.Arena[slotCell[P]]
	nextFree atomic.Uint32
	drop     DropFunc[P]

	deadMu    sync.Mutex
	deadQueue []uint32

	reaperMu    [2]sync.Mutex
	reaperQueue [2][]uint32

	flushMu    sync.Mutex
	flushQueue []DescriptorID

	writeEpoch func() epoch.Epoch // supplied by the owning registry

	metrics tableMetrics
}

func newSlotTable[P any](kind Kind, capacity uint32, drop DropFunc[P], writeEpoch func() epoch.Epoch, sink MetricsSink) *slotTable[P] {
	return &slotTable[P]{
		kindID:     kind,
		capacity:   capacity,
		cells:      slotarena.New[slotCell[P]](int(capacity)),
		drop:       drop,
		writeEpoch: writeEpoch,
		metrics:    tableMetrics{sink: sink},
	}
}

func (t *slotTable[P]) kind() Kind { return t.kindID }

// alloc pops an index from the dead queue (or bumps nextFree) and writes
// payload into the newly claimed cell. The ref count is stored as 2 with
// release ordering: one count for the flush-queue enqueue, one for the
// caller's owned handle — both manufactured without further increments.
func (t *slotTable[P]) alloc(payload P) (DescriptorID, error) {
	index, ok := t.popDead()
	if !ok {
		index, ok = t.bumpNextFree()
		if !ok {
			t.metrics.observeNoCapacity(t.kindID)
			return 0, ErrNoMoreCapacity
		}
	}

	cell := t.cells.At(index)
	cell.payload = payload
	cell.refCount.Store(2)
	version := cell.version

	id := NewDescriptorID(t.kindID, index, version)
	t.pushFlush(id)
	t.metrics.observeAlloc(t.kindID)
	return id, nil
}

func (t *slotTable[P]) bumpNextFree() (uint32, bool) {
	for {
		cur := t.nextFree.Load()
		if cur >= t.capacity {
			return 0, false
		}
		if t.nextFree.CompareAndSwap(cur, cur+1) {
			return cur, true
		}
	}
}

func (t *slotTable[P]) popDead() (uint32, bool) {
	t.deadMu.Lock()
	defer t.deadMu.Unlock()
	n := len(t.deadQueue)
	if n == 0 {
		return 0, false
	}
	idx := t.deadQueue[n-1]
	t.deadQueue = t.deadQueue[:n-1]
	return idx, true
}

func (t *slotTable[P]) pushDead(index uint32) {
	t.deadMu.Lock()
	t.deadQueue = append(t.deadQueue, index)
	t.deadMu.Unlock()
}

func (t *slotTable[P]) pushFlush(id DescriptorID) {
	t.flushMu.Lock()
	t.flushQueue = append(t.flushQueue, id)
	t.flushMu.Unlock()
}

// flushDrain removes and returns every queued descriptor ID, dropping the
// flush queue's own reference on each one (spec §4.1: the ref count stored
// at alloc time "one for the flush-queue enqueue, one for the caller's owned
// handle" — draining is what retires the former). Called only by the
// descriptor-set updater, itself always invoked under the registry's
// flush-and-gc mutex, so a drained index's payload remains valid for the
// caller to read even if this refDec is the one that brings it to zero:
// actual reclamation only happens in runGC, serialized behind the same
// mutex the caller already holds.
func (t *slotTable[P]) flushDrain() []DescriptorID {
	t.flushMu.Lock()
	if len(t.flushQueue) == 0 {
		t.flushMu.Unlock()
		return nil
	}
	drained := t.flushQueue
	t.flushQueue = nil
	t.flushMu.Unlock()

	for _, id := range drained {
		t.refDec(id.Index())
	}
	return drained
}

func (t *slotTable[P]) pushReaper(e epoch.Epoch, index uint32) {
	t.reaperMu[e].Lock()
	t.reaperQueue[e] = append(t.reaperQueue[e], index)
	t.reaperMu[e].Unlock()
}

// refInc increments the slot's reference count. Relaxed fetch_add per spec
// §4.1; Go's atomic package does not expose a relaxed memory order
// separately from sequentially-consistent, so this is stricter than the
// spec's minimum but never weaker.
func (t *slotTable[P]) refInc(index uint32) {
	t.cells.At(index).refCount.Add(1)
}

// refDec decrements the reference count. On the 1->0 transition it routes
// the index into the reaper queue selected by the *current write-epoch*,
// read at the moment of the transition — the value may be slightly stale,
// which the frame protocol (spec §4.3) accounts for. Underflow panics: it
// indicates a bug in the core (a double free).
func (t *slotTable[P]) refDec(index uint32) {
	newCount := t.cells.At(index).refCount.Add(-1)
	switch {
	case newCount > 0:
		return
	case newCount == 0:
		t.pushReaper(t.writeEpoch(), index)
	default:
		panic("bindless: slot reference count underflow")
	}
}

// tryRecover implements the versioned-recovery loop (spec §4.1): a
// compare-exchange loop trying old -> old+1 starting from an acquire load,
// succeeding only if the version still matches after the increment lands.
func (t *slotTable[P]) tryRecover(id DescriptorID) bool {
	index := id.Index()
	if index >= t.capacity {
		return false
	}
	cell := t.cells.At(index)
	for {
		old := cell.refCount.Load()
		if old <= 0 {
			return false
		}
		if !cell.refCount.CompareAndSwap(old, old+1) {
			continue
		}
		if cell.version == id.Version() {
			return true
		}
		t.refDec(index)
		return false
	}
}

// runGC drains the reaper queue for epoch e, invokes the drop hook once with
// the batch of payloads (in maximal consecutive ranges, so the hook sees as
// few calls as possible), then reclaims every index: bump the version and
// push to the dead queue, unless the bumped version would overflow the
// 12-bit field, in which case the index is permanently retired. Called by
// the registry's epoch.GCFunc, itself always serialized behind the registry's
// flush-and-gc mutex.
func (t *slotTable[P]) runGC(e epoch.Epoch) {
	t.reaperMu[e].Lock()
	drained := t.reaperQueue[e]
	t.reaperQueue[e] = nil
	t.reaperMu[e].Unlock()

	if len(drained) == 0 {
		return
	}

	rs := rangeset.New()
	for _, idx := range drained {
		rs.Insert(idx)
	}

	for _, r := range rs.Ranges() {
		payloads := make([]P, 0, r.Len())
		for idx := r.Start; idx < r.End; idx++ {
			payloads = append(payloads, t.cells.At(idx).payload)
		}
		if t.drop != nil {
			t.drop(payloads)
		}
		for idx := r.Start; idx < r.End; idx++ {
			t.reclaimOne(idx)
		}
	}
	t.metrics.observeGC(t.kindID, len(drained))
}

func (t *slotTable[P]) reclaimOne(index uint32) {
	cell := t.cells.At(index)
	version := cell.version // Reset zeroes the whole cell, version included
	t.cells.Reset(index)
	if version+1 >= MaxVersion {
		// Version would overflow: retire the slot permanently, never push
		// it back to the dead queue.
		return
	}
	cell.version = version + 1
	t.pushDead(index)
}

// payload returns a pointer to the live payload for index. Callers must hold
// a live reference (ref count > 0) obtained via alloc, refInc, or a
// successful tryRecover before calling this — the pointer is only valid
// while that reference is held.
func (t *slotTable[P]) payload(index uint32) *P {
	return &t.cells.At(index).payload
}

func (t *slotTable[P]) versionOf(index uint32) uint16 {
	return t.cells.At(index).version
}

// TableStats is a point-in-time occupancy snapshot for one resource-kind
// table, surfaced through Instance.Snapshot for diagnostics.
type TableStats struct {
	Capacity  uint32
	Allocated uint32
	Dead      uint32
}

func (t *slotTable[P]) stats() TableStats {
	t.deadMu.Lock()
	dead := len(t.deadQueue)
	t.deadMu.Unlock()
	return TableStats{Capacity: t.capacity, Allocated: t.nextFree.Load(), Dead: uint32(dead)}
}

// Table is the public generic handle onto a registered slot table. Kind
// tables (BufferTable, ImageTable, SamplerTable) each embed one, adding
// kind-specific validation and payload construction on top.
type Table[P any] struct {
	inner *slotTable[P]
}

func newTable[P any](kind Kind, capacity uint32, drop DropFunc[P], reg *Registry) *Table[P] {
	inner := newSlotTable[P](kind, capacity, drop, reg.writeEpoch, reg.metrics)
	reg.registerTable(kind, inner)
	return &Table[P]{inner: inner}
}

// Kind returns the resource kind this table serves.
func (tb *Table[P]) Kind() Kind { return tb.inner.kind() }

// Alloc allocates a new slot, writes payload into it, and returns a
// shared-owned handle; the matching flush-queue entry is pushed internally
// and not returned (spec §4.1 "both owned handles are manufactured without
// further increments").
func (tb *Table[P]) Alloc(payload P) (RC[P], error) {
	id, err := tb.inner.alloc(payload)
	if err != nil {
		return RC[P]{}, err
	}
	return RC[P]{id: id, table: tb.inner}, nil
}

// FlushDrain removes and returns every descriptor ID queued for inclusion in
// the next descriptor-set update. Only the descriptor-set updater calls
// this, always under the registry's flush-and-gc mutex.
func (tb *Table[P]) FlushDrain() []DescriptorID {
	return tb.inner.flushDrain()
}

// TryRecover upgrades a raw ID to a live shared-owned handle iff the slot is
// alive and its version still matches. Safe to call concurrently from any
// number of goroutines recovering the same ID: each success is backed by its
// own independent reference-count increment (see recover.go).
func (tb *Table[P]) TryRecover(id DescriptorID) (RC[P], bool) {
	return recoverOwned(tb.inner, id)
}

// PayloadAt returns a pointer to the payload at a raw slot index, without
// any ref-count check. Used by the descriptor-set updater while walking a
// flush drain: the drain has already dropped the flush queue's references,
// and the drained slots stay unreclaimed only because the updater still
// holds the registry's flush-and-gc mutex.
func (tb *Table[P]) PayloadAt(index uint32) *P {
	return tb.inner.payload(index)
}

// Stats returns a point-in-time occupancy snapshot of the table.
func (tb *Table[P]) Stats() TableStats {
	return tb.inner.stats()
}
