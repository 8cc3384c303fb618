// Package epoch implements the two-generation (A/B) alternating epoch
// primitive that the bindless resource core uses to defer reclamation of
// dropped descriptors until the GPU work that might still be reading them has
// drained.
//
// This is the alternating-generation idea from arena-cache's
// internal/genring, stripped down to exactly two generations and re-targeted
// at pinning instead of TTL/capacity rotation: genring rotated a ring of N
// arenas on a timer or byte budget and handed back whichever arena fell out
// of the TTL window so the cache's CLOCK-Pro metadata could track it as a
// ghost. Here there is no timer and no byte budget — rotation happens
// exactly when every frame guard pinning the current read epoch has been
// released, and what "falls out" is not an arena but a reaper queue's worth
// of descriptor indices, collected by the caller-supplied gc callback.
//
// Concurrency model mirrors genring: a short mutex serializes the frame
// counters and the write-epoch flip; the flip itself is published with a
// release store so that ref-count decrements (which read the write epoch
// with a relaxed load) and subsequent Frame() calls (which read it to decide
// which epoch to pin) observe a consistent ordering, per the correctness
// argument in the bindless spec this package backs.
//
// © 2025 arena-cache authors. MIT License.
package epoch

import (
	"sync"
	"sync/atomic"
)

// Epoch is one of the two alternating generations.
type Epoch uint8

const (
	A Epoch = 0
	B Epoch = 1
)

// Other returns the complementary epoch.
func (e Epoch) Other() Epoch { return e ^ 1 }

// GCFunc drains and reclaims every index queued against the given epoch. It
// is invoked outside of Manager's internal mutex so a slow GC pass never
// blocks Frame()/Guard.Release() bookkeeping on unrelated epochs; callers are
// expected to serialize concurrent GC passes themselves (the bindless
// registry does this with its flush-and-gc mutex).
type GCFunc func(e Epoch)

// Manager coordinates frame-guard pinning and write-epoch rotation for one
// table registry. It holds no resource data itself — only the bookkeeping
// needed to decide when it is safe to run gc on an epoch.
type Manager struct {
	mu         sync.Mutex
	frameCount [2]int64
	writeEpoch atomic.Uint32 // stores an Epoch

	warmupOnce sync.Once
	gc         GCFunc
}

// NewManager constructs a Manager whose initial write epoch is B (so the
// first resources dropped route to B's reaper queue and the first call to
// Frame returns A, per spec §8 scenario 3: "At startup frame epoch is A.
// frame() returns A.") and installs gc as the reclamation callback invoked
// on rotation.
func NewManager(gc GCFunc) *Manager {
	if gc == nil {
		panic("epoch: gc callback must not be nil")
	}
	m := &Manager{gc: gc}
	m.writeEpoch.Store(uint32(B))
	return m
}

// WriteEpoch returns the epoch currently receiving ref_dec pushes. Read with
// relaxed semantics by design: a ref_dec that observes a stale value before a
// concurrent flip still routes to a reaper queue that the frame protocol
// guarantees will not be collected before the pin that raced it releases.
func (m *Manager) WriteEpoch() Epoch {
	return Epoch(m.writeEpoch.Load())
}

// Guard is a pinning token on the current read epoch. Release must be called
// exactly once.
type Guard struct {
	mgr   *Manager
	epoch Epoch
}

// Epoch reports which epoch this guard pins.
func (g Guard) Epoch() Epoch { return g.epoch }

// Frame acquires a new frame guard pinning the current read epoch (the
// complement of the current write epoch). On the very first call it also
// performs the startup dry-run: since no frame guard has ever pinned the
// opposite epoch, it runs gc on it so the caller's first real frame proceeds
// against an empty backlog.
func (m *Manager) Frame() Guard {
	m.warmupOnce.Do(func() {
		m.gc(m.WriteEpoch().Other())
	})

	m.mu.Lock()
	r := m.WriteEpoch().Other()
	m.frameCount[r]++
	m.mu.Unlock()

	return Guard{mgr: m, epoch: r}
}

// Release drops the pin. If this was the last guard pinning its epoch and no
// other rotation raced it, it runs gc on the current write epoch (emptying
// its reaper queue, satisfying the invariant that a write epoch's reaper
// queue is empty immediately after its GC pass) and then flips the write
// epoch to what was, until now, the read epoch — published with a release
// store.
func (g Guard) Release() {
	m := g.mgr
	m.mu.Lock()
	m.frameCount[g.epoch]--
	if m.frameCount[g.epoch] < 0 {
		m.mu.Unlock()
		panic("epoch: frame count underflow (guard released more than once)")
	}
	last := m.frameCount[g.epoch] == 0
	w := m.WriteEpoch()
	shouldRotate := last && w != g.epoch
	m.mu.Unlock()

	if !shouldRotate {
		return
	}
	m.gc(w)
	m.writeEpoch.Store(uint32(g.epoch))
}

// FrameCount returns the number of live frame guards currently pinning e.
// Exposed for tests and diagnostics only.
func (m *Manager) FrameCount(e Epoch) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameCount[e]
}
