package bindless

// buffer_table.go implements the buffer resource-kind table (spec §4.4
// "Buffer table"). Payload includes usage flags, logical length (in
// elements of the typed view), total byte size, an access lock, a
// backing-ref set, and a debug name.

// BufferPayload is the kind-specific metadata stored in every buffer slot.
type BufferPayload struct {
	Handle    PlatformBuffer
	Usage     BufferUsage
	Length    uint64 // elements of the typed view the caller requested
	ByteSize  uint64
	Access    *AccessLock
	Backing   BackingRefSet
	DebugName string
}

// BufferTable owns every live buffer slot.
type BufferTable struct {
	*Table[BufferPayload]
	platform Platform
}

// NewBufferTable constructs a buffer table with the given fixed capacity,
// registers it with reg under KindBuffer, and wires its GC drop hook to
// batch-destroy the platform buffer handles of a reclaimed range in one
// call (spec §4.1 "invokes the kind-specific drop hook with that range").
func NewBufferTable(reg *Registry, capacity uint32, platform Platform) *BufferTable {
	bt := &BufferTable{platform: platform}
	bt.Table = newTable[BufferPayload](KindBuffer, capacity, bt.dropRange, reg)
	return bt
}

func (bt *BufferTable) dropRange(payloads []BufferPayload) {
	handles := make([]PlatformBuffer, 0, len(payloads))
	for i := range payloads {
		payloads[i].Backing.Clear()
		handles = append(handles, payloads[i].Handle)
	}
	bt.platform.DestroyBuffers(handles)
}

// BufferAllocInfo describes a buffer allocation request at the public API
// surface.
type BufferAllocInfo struct {
	Usage     BufferUsage
	Length    uint64
	ByteSize  uint64
	DebugName string
}

// Alloc validates usage flags (at least one must be set, spec §4.4), asks
// the platform to create the backing buffer, and allocates a slot. Mappable
// buffers (TransferSrc|TransferDst granting host access in this core's
// model) start their access lock in AccessGeneral; all others start in
// AccessUndefined.
func (bt *BufferTable) Alloc(info BufferAllocInfo) (RC[BufferPayload], error) {
	if info.Usage == 0 {
		return RC[BufferPayload]{}, ErrMissingUsage
	}

	mappable := info.Usage.Has(BufferUsageTransferSrc) || info.Usage.Has(BufferUsageTransferDst)
	handle, err := bt.platform.CreateBuffer(BufferCreateInfo{
		Usage:     info.Usage,
		ByteSize:  info.ByteSize,
		Mappable:  mappable,
		DebugName: info.DebugName,
	})
	if err != nil {
		return RC[BufferPayload]{}, err
	}

	initial := AccessUndefined
	if mappable {
		initial = AccessGeneral
	}

	return bt.Table.Alloc(BufferPayload{
		Handle:    handle,
		Usage:     info.Usage,
		Length:    info.Length,
		ByteSize:  info.ByteSize,
		Access:    NewAccessLock(initial),
		DebugName: info.DebugName,
	})
}
