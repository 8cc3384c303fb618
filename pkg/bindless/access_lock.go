package bindless

// access_lock.go implements the per-resource exclusive/shared state machine
// from spec §4.5. One atomic holds either "locked" or "unlocked, last seen in
// access type X". The state machine is:
//
//	Unlocked(X) --TryLock--> Locked
//	Locked --Unlock(Y)--> Unlocked(Y)
//	Locked --UnlockToShared--> SharedForever (terminal)
//
// Once SharedForever, the resource may never be exclusively locked again —
// its ID may be handed out as a shared-owned (RC) handle instead of an
// exclusive-owned (Mut) one.

import "sync/atomic"

const lockedSentinel uint32 = 1 << 16 // out of range for a one-byte AccessType, used as the "locked" flag

// AccessLock guards exclusive-vs-shared use of one mutable resource (a
// buffer or image slot). It is embedded directly in the kind-specific
// payload so that it shares the slot's lifetime.
type AccessLock struct {
	state atomic.Uint32 // low byte: AccessType when unlocked; lockedSentinel bit when locked
}

// NewAccessLock constructs a lock starting unlocked in the given access
// type. Mappable buffers start in AccessGeneral; everything else starts in
// AccessUndefined (spec §4.4).
func NewAccessLock(initial AccessType) *AccessLock {
	l := &AccessLock{}
	l.state.Store(uint32(initial))
	return l
}

// TryLock attempts to acquire exclusive access. On success it returns the
// access type the resource was last seen in (so the caller can emit the
// correct source state for a transition barrier) and swaps in the locked
// sentinel. On failure it returns ErrAlreadyLocked.
//
// A resource that has been unlocked to shared can never be locked again;
// TryLock on such a resource also returns ErrAlreadyLocked (from the
// caller's perspective, exclusive access is permanently unavailable either
// way).
func (l *AccessLock) TryLock() (AccessType, error) {
	for {
		cur := l.state.Load()
		if cur == lockedSentinel {
			return 0, ErrAlreadyLocked
		}
		if AccessType(cur) == accessSharedForever {
			return 0, ErrAlreadyLocked
		}
		if l.state.CompareAndSwap(cur, lockedSentinel) {
			return AccessType(cur), nil
		}
	}
}

// Unlock releases exclusive access, recording newState as the access type
// the resource was last used in. Panics if the lock was not held — an
// internal invariant violation, never user-reachable in correct recording
// code (the recording context only calls Unlock on a resource it holds the
// lock for).
func (l *AccessLock) Unlock(newState AccessType) {
	if !l.state.CompareAndSwap(lockedSentinel, uint32(newState)) {
		panic("bindless: Unlock called on a resource that was not locked")
	}
}

// UnlockToShared releases exclusive access permanently, transitioning the
// resource into the terminal SharedForever state. After this call the
// resource's descriptor ID may be wrapped in a shared-owned (RC) handle;
// TryLock will always fail from now on.
func (l *AccessLock) UnlockToShared() {
	if !l.state.CompareAndSwap(lockedSentinel, uint32(accessSharedForever)) {
		panic("bindless: UnlockToShared called on a resource that was not locked")
	}
}

// LastAccess returns the recorded access type without attempting to lock.
// Used for diagnostics; racy with concurrent TryLock by design (the returned
// value may be stale the instant it is read), matching the "last seen" — not
// "currently" — semantics in spec §4.5.
func (l *AccessLock) LastAccess() (at AccessType, locked bool) {
	cur := l.state.Load()
	if cur == lockedSentinel {
		return 0, true
	}
	return AccessType(cur), false
}

// IsSharedForever reports whether the resource has been permanently shared.
func (l *AccessLock) IsSharedForever() bool {
	cur := l.state.Load()
	return cur != lockedSentinel && AccessType(cur) == accessSharedForever
}
