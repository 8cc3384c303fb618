package bindless

// image_table.go implements the image resource-kind table (spec §4.4
// "Image table"). Payload includes usage flags, format, extent, mip-level
// count, array-layer count, an access lock, a debug name, and an optional
// swapchain-image tag — swapchain images are not destroyed by the table,
// only their views.

// ImagePayload is the kind-specific metadata stored in every image slot.
type ImagePayload struct {
	Handle      PlatformImage
	View        PlatformImageView
	Usage       ImageUsage
	Format      Format
	Extent      Extent3D
	MipLevels   uint32
	ArrayLayers uint32
	Access      *AccessLock
	DebugName   string
	// IsSwapchainImage marks a slot created for a swapchain-presented image.
	// Such slots are tagged via RegisterSwapchainImage, never via Alloc, and their
	// drop hook only destroys the view, never the backing image.
	IsSwapchainImage bool
}

// ImageTable owns every live image slot.
type ImageTable struct {
	*Table[ImagePayload]
	platform Platform
}

// NewImageTable constructs an image table with the given fixed capacity.
func NewImageTable(reg *Registry, capacity uint32, platform Platform) *ImageTable {
	it := &ImageTable{platform: platform}
	it.Table = newTable[ImagePayload](KindImage, capacity, it.dropRange, reg)
	return it
}

func (it *ImageTable) dropRange(payloads []ImagePayload) {
	var images []PlatformImage
	var views []PlatformImageView
	for _, p := range payloads {
		views = append(views, p.View)
		if !p.IsSwapchainImage {
			images = append(images, p.Handle)
		}
	}
	it.platform.DestroyImages(images, views)
}

// ImageAllocInfo describes an image allocation request.
type ImageAllocInfo struct {
	Usage       ImageUsage
	Format      Format
	Extent      Extent3D
	MipLevels   uint32
	ArrayLayers uint32
	DebugName   string
}

// Alloc rejects an explicit Swapchain usage flag (spec §4.4): swapchain
// images must enter through RegisterSwapchainImage instead.
func (it *ImageTable) Alloc(info ImageAllocInfo) (RC[ImagePayload], error) {
	if info.Usage.Has(ImageUsageSwapchain) {
		return RC[ImagePayload]{}, ErrInvalidUsage
	}
	if info.Usage == 0 {
		return RC[ImagePayload]{}, ErrMissingUsage
	}
	if info.MipLevels == 0 {
		info.MipLevels = 1
	}
	if info.ArrayLayers == 0 {
		info.ArrayLayers = 1
	}

	handle, view, err := it.platform.CreateImage(ImageCreateInfo{
		Usage:       info.Usage,
		Format:      info.Format,
		Extent:      info.Extent,
		MipLevels:   info.MipLevels,
		ArrayLayers: info.ArrayLayers,
		DebugName:   info.DebugName,
	})
	if err != nil {
		return RC[ImagePayload]{}, err
	}

	return it.Table.Alloc(ImagePayload{
		Handle:      handle,
		View:        view,
		Usage:       info.Usage,
		Format:      info.Format,
		Extent:      info.Extent,
		MipLevels:   info.MipLevels,
		ArrayLayers: info.ArrayLayers,
		Access:      NewAccessLock(AccessUndefined),
		DebugName:   info.DebugName,
	})
}

// RegisterSwapchainImage enters a presentation-owned image into the table
// via the presentation path rather than general allocation: its handle is
// supplied already created by the swapchain, and the table's drop hook will
// destroy only the supplied view, never the image itself.
func (it *ImageTable) RegisterSwapchainImage(handle PlatformImage, view PlatformImageView, format Format, extent Extent3D, debugName string) (RC[ImagePayload], error) {
	return it.Table.Alloc(ImagePayload{
		Handle:           handle,
		View:             view,
		Usage:            ImageUsageColorAttachment,
		Format:           format,
		Extent:           extent,
		MipLevels:        1,
		ArrayLayers:      1,
		Access:           NewAccessLock(AccessPresent),
		DebugName:        debugName,
		IsSwapchainImage: true,
	})
}
