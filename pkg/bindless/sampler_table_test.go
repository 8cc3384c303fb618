package bindless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerTableAllocAndDrop(t *testing.T) {
	platform := newFakePlatform()
	reg := newTestRegistry()
	st := NewSamplerTable(reg, 8, platform)

	h, err := st.Alloc(SamplerAllocInfo{DebugName: "linear"})
	require.NoError(t, err)
	sampler := h.Payload().Handle.(*fakeSampler)

	st.FlushDrain() // drains the flush queue's implicit reference
	h.Drop()
	g := reg.Frame()
	g.Release()

	assert.True(t, sampler.destroyed)
}
