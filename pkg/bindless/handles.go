package bindless

// handles.go implements the handle families that wrap a DescriptorID (spec
// §3 "Handle families"): shared-owned RC, exclusive-owned Mut, and
// non-owning Transient references. A raw DescriptorID with no table behind
// it is the "weak/versioned" form — see recover.go for TryRecover.

// ownedRef is the minimal capability BackingRefSet needs from a handle it
// keeps alive: the ability to drop its reference count. RC[P] for any P
// satisfies it.
type ownedRef interface {
	dropRef()
}

// RC is a shared-owned handle (spec: "Shared owned (RC)"). It is cloneable:
// Clone increments the slot's reference count; Drop decrements it. The zero
// value is not valid — handles are only manufactured by Table.Alloc or a
// successful TryRecover.
type RC[P any] struct {
	id    DescriptorID
	table *slotTable[P]
}

// ID returns the wrapped descriptor ID.
func (h RC[P]) ID() DescriptorID { return h.id }

// Clone increments the reference count and returns a new independently
// owned handle to the same slot.
func (h RC[P]) Clone() RC[P] {
	h.table.refInc(h.id.Index())
	return RC[P]{id: h.id, table: h.table}
}

// Drop releases this handle's reference. The handle must not be used again
// afterwards.
func (h RC[P]) Drop() {
	h.table.refDec(h.id.Index())
}

func (h RC[P]) dropRef() { h.Drop() }

// Payload returns a pointer to the slot's payload, valid only while this
// handle (or another live reference to the same slot) is held.
func (h RC[P]) Payload() *P {
	return h.table.payload(h.id.Index())
}

// AsTransient produces a non-owning Transient reference to the same slot,
// for use inside a single recording or under a frame guard (spec: phantom
// lifetime). Go has no phantom-lifetime enforcement; the caller is
// responsible for not retaining the Transient past the owning scope, per the
// open question in spec §9 about the unsound-by-construction General-layout
// aliasing case.
func (h RC[P]) AsTransient() Transient[P] {
	return Transient[P]{id: h.id, table: h.table}
}

// Mut is an exclusive-owned handle (spec: "Exclusive owned (Mut)"). It is
// not cloneable and carries the pending-execution handle representing the
// last submission that touched the resource, so a subsequent access can
// discover what it must wait on.
type Mut[P any] struct {
	id             DescriptorID
	table          *slotTable[P]
	lastSubmission *PendingExecution
}

func (h *Mut[P]) ID() DescriptorID { return h.id }

func (h *Mut[P]) Payload() *P {
	return h.table.payload(h.id.Index())
}

// LastSubmission returns the pending execution of the last recording that
// accessed this resource, or nil if it has never been recorded against.
func (h *Mut[P]) LastSubmission() *PendingExecution {
	return h.lastSubmission
}

// setLastSubmission is called by the recording context when this handle is
// accessed for recording (spec §4.6 "Dependencies").
func (h *Mut[P]) setLastSubmission(p *PendingExecution) {
	h.lastSubmission = p
}

// Drop releases the handle's reference count.
func (h *Mut[P]) Drop() {
	h.table.refDec(h.id.Index())
}

func (h *Mut[P]) dropRef() { h.Drop() }

// AsTransient produces a non-owning reference for use within the current
// recording.
func (h *Mut[P]) AsTransient() Transient[P] {
	return Transient[P]{id: h.id, table: h.table}
}

// Transient is a non-owning reference to a slot (spec: "Transient"). It does
// not affect the reference count; its validity is tied to the recording or
// frame guard it was derived from. Dereferencing a Transient after that
// scope ends is undefined behavior by contract, exactly as in the source
// this core is modeled on — we do not attempt to make it safe (spec §9 open
// question on General-layout aliasing).
type Transient[P any] struct {
	id    DescriptorID
	table *slotTable[P]
}

func (h Transient[P]) ID() DescriptorID { return h.id }

func (h Transient[P]) Payload() *P {
	return h.table.payload(h.id.Index())
}
