package bindless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageTableAllocRejectsSwapchainUsage(t *testing.T) {
	platform := newFakePlatform()
	reg := newTestRegistry()
	it := NewImageTable(reg, 16, platform)

	_, err := it.Alloc(ImageAllocInfo{Usage: ImageUsageSwapchain, Format: FormatR8G8B8A8UNorm})
	assert.ErrorIs(t, err, ErrInvalidUsage)
}

func TestImageTableAllocDefaultsMipsAndLayers(t *testing.T) {
	platform := newFakePlatform()
	reg := newTestRegistry()
	it := NewImageTable(reg, 16, platform)

	h, err := it.Alloc(ImageAllocInfo{Usage: ImageUsageSampled, Format: FormatR8G8B8A8UNorm})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), h.Payload().MipLevels)
	assert.Equal(t, uint32(1), h.Payload().ArrayLayers)
}

func TestRegisterSwapchainImageSkipsHandleDestruction(t *testing.T) {
	platform := newFakePlatform()
	reg := newTestRegistry()
	it := NewImageTable(reg, 16, platform)

	handle := &fakeImage{}
	h, err := it.RegisterSwapchainImage(handle, &fakeImageView{}, FormatR8G8B8A8UNorm, Extent3D{Width: 1920, Height: 1080, Depth: 1}, "swapchain")
	require.NoError(t, err)
	at, _ := h.Payload().Access.LastAccess()
	assert.Equal(t, AccessPresent, at)

	it.FlushDrain() // drains the flush queue's implicit reference
	h.Drop()
	g := reg.Frame()
	g.Release()

	assert.False(t, handle.destroyed, "swapchain-owned image handle must never be destroyed by the table")
}
