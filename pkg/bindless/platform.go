package bindless

// platform.go is the external collaborator contract (spec §6): the seam
// where a Vulkan (or any other descriptor-indexing capable) backend plugs
// in. The Vulkan backend implementation itself is explicitly out of scope
// (spec §1); this file only declares what the core requires from it.
//
// Handle types are deliberately opaque (`any` underneath): the core never
// interprets them, only stores and passes them back to Platform calls in
// batches. A real backend would define concrete handle types satisfying
// these declared shapes; tests use a fake in-memory Platform (see
// platform_fake_test.go).

import "context"

// PlatformBuffer, PlatformImage, PlatformImageView, and PlatformSampler are
// opaque backend-owned handles.
type (
	PlatformBuffer    any
	PlatformImage     any
	PlatformImageView any
	PlatformSampler   any
	PlatformPipeline  any
)

// DeviceLimits reports the device's update-after-bind descriptor limits, used
// to clamp the caller-requested table capacities (spec §6 "Capacity
// configuration").
type DeviceLimits struct {
	MaxUpdateAfterBindBuffers  uint32
	MaxUpdateAfterBindImages   uint32
	MaxUpdateAfterBindSamplers uint32
}

// BufferCreateInfo describes a buffer allocation request.
type BufferCreateInfo struct {
	Usage     BufferUsage
	ByteSize  uint64
	Mappable  bool
	DebugName string
}

// ImageCreateInfo describes an image allocation request.
type ImageCreateInfo struct {
	Usage       ImageUsage
	Format      Format
	Extent      Extent3D
	MipLevels   uint32
	ArrayLayers uint32
	DebugName   string
}

// SamplerCreateInfo describes a sampler allocation request.
type SamplerCreateInfo struct {
	DebugName string
}

// DescriptorWrite is one batched, range-compressed descriptor-set update
// (spec §4.8): a maximal run of consecutive indices at a given binding.
type DescriptorWrite struct {
	Binding         int
	DstArrayElement uint32
	Buffers         []PlatformBuffer    // binding 0
	StorageImages   []PlatformImageView // binding 1
	SampledImages   []PlatformImageView // binding 2
	Samplers        []PlatformSampler   // binding 3
}

// WaitCondition / SignalCondition reference a timeline-semaphore-like
// completion primitive at a specific value (spec §6 "timeline-semaphore-like
// completion primitive").
type WaitCondition struct {
	Semaphore PlatformTimelineSemaphore
	Value     uint64
}

type SignalCondition struct {
	Semaphore PlatformTimelineSemaphore
	Value     uint64
}

// PlatformTimelineSemaphore is an opaque handle to a platform timeline
// semaphore.
type PlatformTimelineSemaphore any

// Platform is the full backend contract the bindless core depends on.
type Platform interface {
	Limits() DeviceLimits

	CreateBuffer(info BufferCreateInfo) (PlatformBuffer, error)
	DestroyBuffers(handles []PlatformBuffer)

	// MapBuffer returns a byte slice backed by the buffer's mapped host
	// pointer. Only ever called on buffers created with Mappable: true.
	MapBuffer(handle PlatformBuffer) ([]byte, error)
	UnmapBuffer(handle PlatformBuffer)

	CreateImage(info ImageCreateInfo) (PlatformImage, PlatformImageView, error)
	DestroyImages(handles []PlatformImage, views []PlatformImageView)

	CreateSampler(info SamplerCreateInfo) (PlatformSampler, error)
	DestroySamplers(handles []PlatformSampler)

	CreateDescriptorSet(limits DeviceLimits) (PlatformDescriptorSet, error)
	UpdateDescriptorSet(set PlatformDescriptorSet, writes []DescriptorWrite) error

	// NewTimelineSemaphore creates a fresh timeline semaphore starting at
	// value 0. The execution manager creates one per submission and one for
	// its waiter's notify semaphore.
	NewTimelineSemaphore() (PlatformTimelineSemaphore, error)
	SemaphoreValue(s PlatformTimelineSemaphore) (uint64, error)
	WaitAny(ctx context.Context, conditions []WaitCondition, notify PlatformTimelineSemaphore, notifyValue uint64) error

	// Submit submits a recorded command stream with the given wait/signal
	// conditions under the caller's queue mutex.
	Submit(commands RecordedCommands, waits []WaitCondition, signal SignalCondition) error

	// CreatePipeline compiles a pipeline description (spec "Pipeline
	// creation" errors wrap whatever this returns).
	CreatePipeline(desc PipelineDescription) (PlatformPipeline, error)

	// BeginRecording opens a new command-buffer recording primitive. The
	// Recording context (recording.go) drives it through barriers, copies,
	// dispatch/draw, and render pass begin/end, then calls Finish to obtain
	// the RecordedCommands value passed to Submit.
	BeginRecording() (Recorder, error)
}

// PlatformDescriptorSet is an opaque handle to the single bindless
// descriptor set (spec §6 descriptor-set layout).
type PlatformDescriptorSet any

// RecordedCommands is the platform-native recorded command buffer produced
// by a Recorder's Finish, later handed to Platform.Submit.
type RecordedCommands any

// BarrierDescription is one resource transition the Recording context has
// batched (spec §4.6 "lazily batch resource barriers"). Exactly one of
// Buffer or Image is set; Global barriers set neither.
type BarrierDescription struct {
	Buffer    PlatformBuffer
	Image     PlatformImage
	FromState AccessType
	ToState   AccessType
}

// RenderingAttachment describes one color or depth/stencil attachment bound
// at BeginRendering.
type RenderingAttachment struct {
	View   PlatformImageView
	Format Format
	Extent Extent3D
}

// RenderingDescription is the validated render pass begin request (spec
// §4.6 "render pass validation").
type RenderingDescription struct {
	ColorAttachments []RenderingAttachment
	DepthAttachment  *RenderingAttachment
	RenderAreaExtent Extent3D
}

// Recorder is the command-buffer recording primitive a Platform hands out
// (spec §6 "command-buffer recording primitives (barriers, copies, dispatch,
// draw, render pass begin/end)"). The Recording context in this package is
// the only caller; it owns all validation (usage flags, access-lock state,
// attachment matching) before ever calling through to Recorder.
type Recorder interface {
	Barrier(b BarrierDescription)
	CopyBufferToBuffer(src, dst PlatformBuffer, size uint64) error
	CopyBufferToImage(src PlatformBuffer, dst PlatformImage, extent Extent3D) error
	CopyImageToBuffer(src PlatformImage, dst PlatformBuffer, extent Extent3D) error

	BindPipeline(pipeline PlatformPipeline)
	BindDescriptorSet(set PlatformDescriptorSet)
	PushConstants(data []byte)

	Dispatch(groupsX, groupsY, groupsZ uint32)

	BeginRendering(desc RenderingDescription) error
	EndRendering()
	Draw(vertexCount, instanceCount uint32)

	// Finish ends recording and returns the platform-native command stream
	// ready for Platform.Submit.
	Finish() (RecordedCommands, error)
}
