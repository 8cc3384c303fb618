package bindless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	return NewRegistry(noopMetrics{}, zap.NewNop())
}

func TestSlotTableAllocAndFlushDrain(t *testing.T) {
	reg := newTestRegistry()
	var dropped [][]string
	tb := newTable[string](KindBuffer, 4, func(payloads []string) { dropped = append(dropped, payloads) }, reg)

	h, err := tb.Alloc("hello")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), h.ID().Index())
	assert.Equal(t, uint16(0), h.ID().Version())
	assert.Equal(t, "hello", *h.Payload())

	drained := tb.FlushDrain()
	require.Len(t, drained, 1)
	assert.Equal(t, h.ID(), drained[0])
	assert.Empty(t, tb.FlushDrain()) // already drained
}

func TestSlotTableNoMoreCapacity(t *testing.T) {
	reg := newTestRegistry()
	tb := newTable[int](KindBuffer, 2, nil, reg)

	_, err := tb.Alloc(1)
	require.NoError(t, err)
	_, err = tb.Alloc(2)
	require.NoError(t, err)
	_, err = tb.Alloc(3)
	assert.ErrorIs(t, err, ErrNoMoreCapacity)
}

func TestSlotReuseBumpsVersionAfterGC(t *testing.T) {
	reg := newTestRegistry()
	var dropped []int
	tb := newTable[int](KindBuffer, 4, func(payloads []int) { dropped = append(dropped, payloads...) }, reg)

	h, err := tb.Alloc(42)
	require.NoError(t, err)
	firstID := h.ID()
	tb.FlushDrain() // drains the flush queue's implicit reference

	// Dropping the caller's own reference brings the slot's ref count to
	// zero, queuing it for reclamation.
	h.Drop()

	guard := reg.Frame()
	guard.Release() // last guard pinning its epoch: rotates and GCs the epoch our drop landed in

	require.Contains(t, dropped, 42)

	h2, err := tb.Alloc(43)
	require.NoError(t, err)
	assert.Equal(t, firstID.Index(), h2.ID().Index())
	assert.Equal(t, firstID.Version()+1, h2.ID().Version())
}

func TestTryRecoverVersionMismatchFails(t *testing.T) {
	reg := newTestRegistry()
	tb := newTable[int](KindBuffer, 4, func([]int) {}, reg)

	h, err := tb.Alloc(1)
	require.NoError(t, err)

	staleID := NewDescriptorID(h.ID().Kind(), h.ID().Index(), h.ID().Version()+1)
	_, ok := tb.TryRecover(staleID)
	assert.False(t, ok)

	recovered, ok := tb.TryRecover(h.ID())
	assert.True(t, ok)
	assert.Equal(t, h.ID(), recovered.ID())
	recovered.Drop()
}

func TestRefCountUnderflowPanics(t *testing.T) {
	reg := newTestRegistry()
	tb := newTable[int](KindBuffer, 4, func([]int) {}, reg)
	h, err := tb.Alloc(1)
	require.NoError(t, err)

	tb.FlushDrain() // drains the flush queue's implicit reference
	h.Drop()
	assert.Panics(t, func() { h.Drop() })
}
