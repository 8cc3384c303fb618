package bindless

// registry.go implements the table registry and frame/epoch manager (spec
// §4.2): it holds up to MaxTables resource tables (one per kind), serializes
// every GC pass and descriptor-set flush behind one mutex, and coordinates
// epoch rotation through internal/epoch.

import (
	"sync"

	"github.com/voskan/bindless/internal/epoch"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// gcTable is the minimal capability every slotTable[P] instantiation
// exposes to the registry for a generic GC walk, corresponding to the
// "capability set interface" option discussed in spec §9 ("Dynamic
// dispatch"). We picked this over a tagged-variant enum because the registry
// only ever needs one operation (runGC) performed uniformly across kinds;
// a tagged enum would buy nothing extra at four fixed kinds but would cost
// a type switch at every call site.
type gcTable interface {
	runGC(e epoch.Epoch)
	kind() Kind
}

// Registry holds one table per registered resource kind and drives the
// epoch protocol shared by all of them. The registry slot for a kind is
// write-once: registering the same kind twice panics (an internal
// invariant violation — a bug in the core's own setup code, never a
// user-reachable error).
type Registry struct {
	flushGC sync.Mutex // held for every GC pass and every descriptor-set flush

	tablesMu sync.Mutex // guards registration only; tables array itself is read racily post-registration (write-once)
	tables   [MaxTables]gcTable

	epochMgr *epoch.Manager
	metrics  MetricsSink
	logger   *zap.Logger
}

// NewRegistry constructs an empty registry. sink and logger may be the
// no-op implementations (see metrics.go, config.go) when unconfigured.
func NewRegistry(sink MetricsSink, logger *zap.Logger) *Registry {
	r := &Registry{metrics: sink, logger: logger}
	r.epochMgr = epoch.NewManager(r.gcEpoch)
	return r
}

// registerTable installs t at kind's slot. Panics if the slot is already
// occupied — double registration is a programming error in the core's
// bindless-instance constructor, never a user-reachable path.
func (r *Registry) registerTable(kind Kind, t gcTable) {
	r.tablesMu.Lock()
	defer r.tablesMu.Unlock()
	if r.tables[kind] != nil {
		panic("bindless: table for kind " + kind.String() + " already registered")
	}
	r.tables[kind] = t
}

// gcEpoch is the epoch.GCFunc installed on the registry's epoch.Manager. It
// runs under the flush-and-gc mutex so that concurrent flushes never
// interleave with reclamation. Each table's drop hook fans out across an
// errgroup.Group: every kind table guards its own reaper queue with its own
// mutex, so running up to MaxTables drop-hook passes concurrently is safe
// and keeps a GC pass from serializing on the slowest kind's platform
// teardown calls.
func (r *Registry) gcEpoch(e epoch.Epoch) {
	r.flushGC.Lock()
	defer r.flushGC.Unlock()

	var g errgroup.Group
	for _, t := range r.tables {
		if t == nil {
			continue
		}
		t := t
		g.Go(func() error {
			t.runGC(e)
			return nil
		})
	}
	_ = g.Wait() // runGC never returns an error; the group only buys fan-out

	if r.logger != nil {
		r.logger.Debug("bindless: gc pass complete", zap.Uint8("epoch", uint8(e)))
	}
}

// Frame acquires a new frame guard pinning the current read epoch. See
// internal/epoch for the rotation protocol this drives.
func (r *Registry) Frame() FrameGuard {
	g := r.epochMgr.Frame()
	if r.metrics != nil {
		r.metrics.setFrameGuards(int(g.Epoch()), r.epochMgr.FrameCount(g.Epoch()))
	}
	return FrameGuard{g: g, reg: r}
}

// writeEpoch is handed to every slotTable as its writeEpoch() callback.
func (r *Registry) writeEpoch() epoch.Epoch {
	return r.epochMgr.WriteEpoch()
}

// flushAndGC runs fn while holding the registry-wide flush-and-gc mutex. The
// descriptor-set updater uses this to guarantee its drains never race a GC
// pass reclaiming the very slots it is about to read (spec §4.2).
func (r *Registry) flushAndGC(fn func()) {
	r.flushGC.Lock()
	defer r.flushGC.Unlock()
	fn()
}

// FrameGuard is a host-side pinning token on the current read epoch (spec
// §3 "Frame guard"). Holding one prevents the reaper queue of that epoch
// from being drained until it is released.
type FrameGuard struct {
	g   epoch.Guard
	reg *Registry
}

// Release drops the pin, potentially triggering a GC pass and an epoch
// flip — see internal/epoch.Guard.Release.
func (f FrameGuard) Release() {
	f.g.Release()
	if f.reg.metrics != nil {
		f.reg.metrics.setFrameGuards(int(f.g.Epoch()), f.reg.epochMgr.FrameCount(f.g.Epoch()))
	}
}
