package bindless

// types.go holds the small value types shared by the buffer/image/sampler
// tables: usage bit-flags, pixel format, and 3D extent. Converting these to
// concrete Vulkan enums/flags is explicitly out of scope (spec §1); they
// exist here only so the core can validate usage (spec §4.4) and describe
// allocation requests to Platform.

// BufferUsage is a bit-flag set describing how a buffer may be used.
type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 1 << iota
	BufferUsageTransferDst
	BufferUsageStorage
	BufferUsageUniform
	BufferUsageIndex
	BufferUsageIndirect
)

func (u BufferUsage) Has(flag BufferUsage) bool { return u&flag != 0 }

// ImageUsage is a bit-flag set describing how an image may be used.
type ImageUsage uint32

const (
	ImageUsageTransferSrc ImageUsage = 1 << iota
	ImageUsageTransferDst
	ImageUsageStorage
	ImageUsageSampled
	ImageUsageColorAttachment
	ImageUsageDepthStencilAttachment
	// ImageUsageSwapchain marks a swapchain-owned image. Allocation
	// rejects this flag explicitly (spec §4.4): swapchain images must
	// enter through the presentation path, not general allocation.
	ImageUsageSwapchain
)

func (u ImageUsage) Has(flag ImageUsage) bool { return u&flag != 0 }

// Format is a minimal pixel-format enum, enough to derive an image's aspect
// mask for copy operations (spec §4.6 "Copy operations") without attempting
// to be Vulkan-enum-complete.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatR8G8B8A8UNorm
	FormatR32G32B32A32Float
	FormatD32Float
	FormatD24UnormS8Uint
)

// Aspect describes which image planes a format exposes.
type Aspect uint8

const (
	AspectColor Aspect = 1 << iota
	AspectDepth
	AspectStencil
)

// AspectMask returns the aspect(s) implied by the format.
func (f Format) AspectMask() Aspect {
	switch f {
	case FormatD32Float:
		return AspectDepth
	case FormatD24UnormS8Uint:
		return AspectDepth | AspectStencil
	default:
		return AspectColor
	}
}

// IsDepthStencil reports whether the format carries a depth or stencil
// plane.
func (f Format) IsDepthStencil() bool {
	return f.AspectMask()&(AspectDepth|AspectStencil) != 0
}

// Extent3D is a 3D image extent in texels.
type Extent3D struct {
	Width, Height, Depth uint32
}
