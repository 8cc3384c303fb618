package bindless

// mapped_buffer.go implements host access to a mappable buffer (spec §4.5
// "mapping a buffer"; §5 "the only host-side suspensions are
// PendingExecution::await and MappedBuffer::mapped().await"). Mapping
// requires the buffer's access lock to currently read General or
// HostAccess, and fails immediately with ErrPendingExecution if the access
// lock is currently held; Map never blocks. Map does not look at the
// buffer's last submission, so a submitted but unfinished execution that
// has already unlocked the buffer does not make Map fail.

import "fmt"

// MappedBuffer is a host-visible view onto a buffer's contents, held for as
// long as the caller needs direct byte access.
type MappedBuffer struct {
	table    *BufferTable
	index    uint32
	bytes    []byte
	unlocked bool
}

// Map acquires host access to h's contents. It holds the access lock
// (locked state) for the duration and unlocks it to General on Unmap.
func Map(table *BufferTable, h RC[BufferPayload]) (*MappedBuffer, error) {
	payload := h.Payload()
	if !payload.Usage.Has(BufferUsageTransferSrc) && !payload.Usage.Has(BufferUsageTransferDst) {
		return nil, ErrWrongAccessType
	}

	last, locked := payload.Access.LastAccess()
	if locked {
		return nil, ErrPendingExecution
	}
	if last != AccessGeneral && last != AccessHostAccess {
		return nil, ErrWrongAccessType
	}
	if _, err := payload.Access.TryLock(); err != nil {
		return nil, ErrPendingExecution
	}

	bytes, err := table.platform.MapBuffer(payload.Handle)
	if err != nil {
		payload.Access.Unlock(last)
		return nil, fmt.Errorf("bindless: mapping buffer: %w", err)
	}

	return &MappedBuffer{table: table, index: h.ID().Index(), bytes: bytes}, nil
}

// Bytes returns the mapped region. Valid only until Unmap is called.
func (m *MappedBuffer) Bytes() []byte { return m.bytes }

// Unmap releases host access, transitioning the access lock back to
// General. Calling Unmap twice panics, matching the access lock's own
// double-unlock guard.
func (m *MappedBuffer) Unmap() {
	if m.unlocked {
		panic("bindless: MappedBuffer.Unmap called twice")
	}
	m.unlocked = true
	payload := m.table.PayloadAt(m.index)
	m.table.platform.UnmapBuffer(payload.Handle)
	payload.Access.Unlock(AccessGeneral)
}
