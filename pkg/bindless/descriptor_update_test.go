package bindless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorSetUpdaterRangeCompresses100Consecutive(t *testing.T) {
	platform := newFakePlatform()
	reg := newTestRegistry()
	buffers := NewBufferTable(reg, 4096, platform)

	updater, err := NewDescriptorSetUpdater(reg, platform, buffers, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		_, err := buffers.Alloc(BufferAllocInfo{Usage: BufferUsageStorage, ByteSize: 16})
		require.NoError(t, err)
	}

	require.NoError(t, updater.Flush())

	set := updater.Set().(*fakeDescriptorSet)
	set.mu.Lock()
	defer set.mu.Unlock()
	require.Len(t, set.writes, 1, "100 consecutively allocated descriptors must collapse into one write")
	assert.Equal(t, uint32(0), set.writes[0].DstArrayElement)
	assert.Len(t, set.writes[0].Buffers, 100)
}

func TestDescriptorSetUpdaterFlushIsIdempotentWhenEmpty(t *testing.T) {
	platform := newFakePlatform()
	reg := newTestRegistry()
	buffers := NewBufferTable(reg, 16, platform)

	updater, err := NewDescriptorSetUpdater(reg, platform, buffers, nil, nil)
	require.NoError(t, err)
	require.NoError(t, updater.Flush())

	set := updater.Set().(*fakeDescriptorSet)
	set.mu.Lock()
	defer set.mu.Unlock()
	assert.Empty(t, set.writes)
}
