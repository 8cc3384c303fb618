package bindless

// execution.go implements the execution manager (spec §4.7): a fresh
// timeline semaphore per submission (created on each submit, not pooled or
// reused), a single waiter goroutine tracking completion, and
// pending-execution futures handed back to callers.
//
// golang.org/x/sync/semaphore bounds the number of submissions in flight on
// the queue — the spec assumes "a single submission queue" (§1 Non-goals);
// a weighted semaphore gives that queue a hard capacity instead of letting
// an unbounded number of in-flight executions pile up in the waiter
// thread's list.

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// execution is the per-submission bookkeeping record. Its frame guard is
// held for the submission's entire lifetime and released only on
// completion, which is the mechanism by which the epoch protocol's
// correctness argument (spec §4.3) is actually enforced: a resource
// dropped while this submission could still be reading it cannot be
// reclaimed before the guard releases.
type execution struct {
	id        uint64
	sem       PlatformTimelineSemaphore
	value     uint64
	frame     FrameGuard
	completed atomic.Bool

	wakersMu sync.Mutex
	wakers   []func()
}

func (e *execution) markCompleted() {
	e.wakersMu.Lock()
	if e.completed.Load() {
		e.wakersMu.Unlock()
		return
	}
	e.completed.Store(true)
	wakers := e.wakers
	e.wakers = nil
	e.wakersMu.Unlock()

	for _, w := range wakers {
		w()
	}
	e.frame.Release()
}

// PendingExecution is a host-side async handle to a submission (spec §3
// "Pending execution"). A null pending execution — for resources never
// submitted for GPU work — resolves immediately.
type PendingExecution struct {
	exec *execution
}

// nullPendingExecution is shared by every never-in-flight resource.
var nullPendingExecution = &PendingExecution{}

// NullPendingExecution returns a pending execution that is always already
// resolved.
func NullPendingExecution() *PendingExecution { return nullPendingExecution }

// Poll reports whether the execution has completed without blocking.
func (p *PendingExecution) Poll() bool {
	if p == nil || p.exec == nil {
		return true
	}
	if p.exec.completed.Load() {
		return true
	}
	p.exec.wakersMu.Lock()
	defer p.exec.wakersMu.Unlock()
	return p.exec.completed.Load()
}

// Await blocks until the execution completes or ctx is done. Dropping the
// context (cancellation) only drops this caller's waker registration;
// completion of the underlying execution still occurs regardless (spec §5
// "Cancellation").
func (p *PendingExecution) Await(ctx context.Context) error {
	if p.Poll() {
		return nil
	}
	done := make(chan struct{})
	p.exec.wakersMu.Lock()
	if p.exec.completed.Load() {
		p.exec.wakersMu.Unlock()
		return nil
	}
	p.exec.wakers = append(p.exec.wakers, func() { close(done) })
	p.exec.wakersMu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExecutionManager maintains the submission pool and the waiter goroutine.
type ExecutionManager struct {
	reg      *Registry
	platform Platform
	logger   *zap.Logger
	metrics  MetricsSink

	queueMu sync.Mutex // held only across Submit itself
	inFlow  *semaphore.Weighted

	nextID atomic.Uint64

	inboxMu sync.Mutex
	inbox   []*execution

	notify        PlatformTimelineSemaphore
	notifyValue   atomic.Uint64
	shuttingDown  atomic.Bool
	waiterDone    chan struct{}
	inFlightCount atomic.Int64
}

// NewExecutionManager constructs the manager and starts its waiter
// goroutine. maxInFlight bounds concurrent submissions (spec §1 Non-goals:
// "multi-queue scheduling beyond a single submission queue" — this is the
// single queue's capacity).
func NewExecutionManager(reg *Registry, platform Platform, maxInFlight int64, logger *zap.Logger) (*ExecutionManager, error) {
	notify, err := platform.NewTimelineSemaphore()
	if err != nil {
		return nil, fmt.Errorf("bindless: creating waiter notify semaphore: %w", err)
	}
	em := &ExecutionManager{
		reg: reg, platform: platform, logger: logger,
		inFlow:     semaphore.NewWeighted(maxInFlight),
		notify:     notify,
		waiterDone: make(chan struct{}),
		metrics:    reg.metrics,
	}
	go em.waiterLoop()
	return em, nil
}

// SubmitForWaiting submits cmds with the given dependencies as wait
// conditions and returns a pending execution resolving on GPU completion.
// Panics if shutdown is already in progress (spec §4.7 "Graceful shutdown").
func (em *ExecutionManager) SubmitForWaiting(ctx context.Context, cmds RecordedCommands, deps []*PendingExecution) (*PendingExecution, error) {
	if em.shuttingDown.Load() {
		panic("bindless: submit_for_waiting called during shutdown")
	}
	if err := em.inFlow.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	sem, err := em.platform.NewTimelineSemaphore()
	if err != nil {
		em.inFlow.Release(1)
		return nil, fmt.Errorf("bindless: creating submission semaphore: %w", err)
	}

	waits := make([]WaitCondition, 0, len(deps))
	for _, d := range deps {
		if d == nil || d.exec == nil || d.exec.completed.Load() {
			continue // already-completed dependency, no wait needed
		}
		waits = append(waits, WaitCondition{Semaphore: d.exec.sem, Value: d.exec.value})
	}

	ex := &execution{
		id:    em.nextID.Add(1),
		sem:   sem,
		value: 1,
		frame: em.reg.Frame(),
	}

	em.queueMu.Lock()
	err = em.platform.Submit(cmds, waits, SignalCondition{Semaphore: sem, Value: 1})
	em.queueMu.Unlock()

	if err != nil {
		ex.frame.Release()
		em.inFlow.Release(1)
		return nil, err
	}

	em.inFlightCount.Add(1)
	if em.metrics != nil {
		em.metrics.incSubmission()
	}
	em.enqueueWaiter(ex)
	return &PendingExecution{exec: ex}, nil
}

func (em *ExecutionManager) enqueueWaiter(ex *execution) {
	em.inboxMu.Lock()
	em.inbox = append(em.inbox, ex)
	em.inboxMu.Unlock()
	em.notifyValue.Add(1)
}

// waiterLoop is the single waiter goroutine (spec §4.7); it carries no name
// or label. It drains the inbox, polls semaphore completion, and wakes
// registered wakers.
func (em *ExecutionManager) waiterLoop() {
	defer close(em.waiterDone)
	var inFlight []*execution

	for {
		em.inboxMu.Lock()
		if len(em.inbox) > 0 {
			inFlight = append(inFlight, em.inbox...)
			em.inbox = em.inbox[:0]
		}
		em.inboxMu.Unlock()

		if len(inFlight) == 0 {
			if em.shuttingDown.Load() {
				return
			}
			// Nothing pending: wait briefly on the notify semaphore via
			// WaitAny with no other conditions so a fresh submission or
			// shutdown wakes us promptly.
			_ = em.platform.WaitAny(context.Background(), nil, em.notify, em.notifyValue.Load())
			continue
		}

		conditions := make([]WaitCondition, len(inFlight))
		for i, ex := range inFlight {
			conditions[i] = WaitCondition{Semaphore: ex.sem, Value: ex.value}
		}
		_ = em.platform.WaitAny(context.Background(), conditions, em.notify, em.notifyValue.Load())

		remaining := inFlight[:0]
		for _, ex := range inFlight {
			val, err := em.platform.SemaphoreValue(ex.sem)
			if err == nil && val >= ex.value {
				ex.markCompleted()
				em.inFlow.Release(1)
				em.inFlightCount.Add(-1)
				continue
			}
			remaining = append(remaining, ex)
		}
		inFlight = remaining

		if len(inFlight) == 0 && em.shuttingDown.Load() {
			return
		}
	}
}

// Shutdown stops the waiter thread once its in-flight list empties. The
// notify semaphore wakes it immediately so shutdown is not delayed by the
// idle-wait path.
func (em *ExecutionManager) Shutdown() {
	em.shuttingDown.Store(true)
	em.notifyValue.Add(1)
	<-em.waiterDone
	if em.logger != nil {
		em.logger.Info("bindless: execution manager shut down")
	}
}

// InFlightCount reports the number of submissions awaiting GPU completion.
func (em *ExecutionManager) InFlightCount() int64 {
	return em.inFlightCount.Load()
}
