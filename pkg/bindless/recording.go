package bindless

// recording.go implements the recording context (spec §4.6): builds a GPU
// command stream, collects cross-submission dependencies, lazily batches
// resource barriers into three vectors (global/buffer/image), uploads
// per-dispatch/per-draw parameter blocks, and validates render pass
// attachments before handing the finished stream to the execution manager.
//
// Barrier unlock timing follows a known, intentionally preserved limitation
// from the original source (pipeline/access_buffer.rs: "these technically
// unlock the slot too early, one would have to wait until the execution
// finished to unlock them, as otherwise two executions may race on this
// resource"): this core unlocks a resource's access lock as soon as its
// *recording-time* transition is applied, not when the GPU submission that
// recorded against it actually completes. See DESIGN.md for why this is
// kept rather than "fixed" here.

import "fmt"

// Recording accumulates one submission's worth of commands. Obtain one with
// Begin, record against it, and call Finish to produce the platform-native
// command stream for ExecutionManager.SubmitForWaiting.
type Recording struct {
	reg      *Registry
	platform Platform
	updater  *DescriptorSetUpdater
	params   *BufferTable
	rec      Recorder

	globalBarriers []BarrierDescription
	bufferBarriers []BarrierDescription
	imageBarriers  []BarrierDescription

	inRenderPass bool
	deps         []*PendingExecution
	afterSubmit  []func(p *PendingExecution)
}

// Begin flushes the descriptor-set updater (spec §5 "every submission calls
// flush first") and opens a new platform recording, binding the single
// bindless descriptor set.
func Begin(reg *Registry, platform Platform, updater *DescriptorSetUpdater, params *BufferTable) (*Recording, error) {
	if err := updater.Flush(); err != nil {
		return nil, fmt.Errorf("bindless: flushing descriptor set before recording: %w", err)
	}
	rec, err := platform.BeginRecording()
	if err != nil {
		return nil, err
	}
	rec.BindDescriptorSet(updater.Set())
	return &Recording{reg: reg, platform: platform, updater: updater, params: params, rec: rec}, nil
}

// AddDependency registers p as a cross-submission dependency: the eventual
// GPU submission waits on p's timeline semaphore value before starting.
func (r *Recording) AddDependency(p *PendingExecution) {
	if p != nil && p != nullPendingExecution {
		r.deps = append(r.deps, p)
	}
}

// Barrier queues a global (non-resource-specific) memory barrier.
func (r *Recording) Barrier() error {
	if r.inRenderPass {
		return ErrBarrierInRenderPass
	}
	r.globalBarriers = append(r.globalBarriers, BarrierDescription{})
	return nil
}

// AccessBuffer transitions h to newState, queuing a buffer barrier if the
// state actually changes, and registers h's last submission as a
// dependency. The access lock is unlocked to newState immediately (see the
// file-level comment on unlock timing).
func (r *Recording) AccessBuffer(h *Mut[BufferPayload], newState AccessType) error {
	if r.inRenderPass {
		return ErrBarrierInRenderPass
	}
	payload := h.Payload()
	old, err := payload.Access.TryLock()
	if err != nil {
		return err
	}
	r.AddDependency(h.LastSubmission())
	if old != newState {
		r.bufferBarriers = append(r.bufferBarriers, BarrierDescription{Buffer: payload.Handle, FromState: old, ToState: newState})
	}
	payload.Access.Unlock(newState)
	r.afterSubmit = append(r.afterSubmit, func(p *PendingExecution) { h.setLastSubmission(p) })
	return nil
}

// AccessImage transitions an image handle's access lock the same way
// AccessBuffer does for buffers.
func (r *Recording) AccessImage(h *Mut[ImagePayload], newState AccessType) error {
	if r.inRenderPass {
		return ErrBarrierInRenderPass
	}
	payload := h.Payload()
	old, err := payload.Access.TryLock()
	if err != nil {
		return err
	}
	r.AddDependency(h.LastSubmission())
	if old != newState {
		r.imageBarriers = append(r.imageBarriers, BarrierDescription{Image: payload.Handle, FromState: old, ToState: newState})
	}
	payload.Access.Unlock(newState)
	r.afterSubmit = append(r.afterSubmit, func(p *PendingExecution) { h.setLastSubmission(p) })
	return nil
}

// flushBarriers issues every queued barrier and clears the three vectors.
// Called automatically before copy, dispatch and begin-rendering commands
// and by Finish — spec §4.6 "flushed on action commands". Draw does not
// call it: no barrier can be queued while a render pass is active.
func (r *Recording) flushBarriers() {
	for _, b := range r.globalBarriers {
		r.rec.Barrier(b)
	}
	for _, b := range r.bufferBarriers {
		r.rec.Barrier(b)
	}
	for _, b := range r.imageBarriers {
		r.rec.Barrier(b)
	}
	r.globalBarriers = r.globalBarriers[:0]
	r.bufferBarriers = r.bufferBarriers[:0]
	r.imageBarriers = r.imageBarriers[:0]
}

// CopyBufferToBuffer validates transfer usage on both sides, flushes any
// pending barriers, and records a buffer-to-buffer copy.
func (r *Recording) CopyBufferToBuffer(src, dst *Mut[BufferPayload], size uint64) error {
	if !src.Payload().Usage.Has(BufferUsageTransferSrc) {
		return ErrCopyUsageMissing
	}
	if !dst.Payload().Usage.Has(BufferUsageTransferDst) {
		return ErrCopyUsageMissing
	}
	r.flushBarriers()
	return r.rec.CopyBufferToBuffer(src.Payload().Handle, dst.Payload().Handle, size)
}

// CopyBufferToImage validates transfer usage and records a buffer-to-image
// copy. Partial copies and non-zero mip targets are out of scope, matching
// the original source's own stated limitation.
func (r *Recording) CopyBufferToImage(src *Mut[BufferPayload], dst *Mut[ImagePayload]) error {
	if !src.Payload().Usage.Has(BufferUsageTransferSrc) {
		return ErrCopyUsageMissing
	}
	if !dst.Payload().Usage.Has(ImageUsageTransferDst) {
		return ErrCopyUsageMissing
	}
	r.flushBarriers()
	return r.rec.CopyBufferToImage(src.Payload().Handle, dst.Payload().Handle, dst.Payload().Extent)
}

// CopyImageToBuffer validates transfer usage and records an image-to-buffer
// copy.
func (r *Recording) CopyImageToBuffer(src *Mut[ImagePayload], dst *Mut[BufferPayload]) error {
	if !src.Payload().Usage.Has(ImageUsageTransferSrc) {
		return ErrCopyUsageMissing
	}
	if !dst.Payload().Usage.Has(BufferUsageTransferDst) {
		return ErrCopyUsageMissing
	}
	r.flushBarriers()
	return r.rec.CopyImageToBuffer(src.Payload().Handle, dst.Payload().Handle, src.Payload().Extent)
}

// uploadParams allocates a small, unpooled buffer (spec §9: "push-constant
// parameter buffers are allocated per dispatch/draw with no pooling ...
// preserve the per-call allocation for correctness; flag pooling as a
// future optimization"), writes params into it, embeds refs as its backing
// references, and returns the (buffer, offset) pair for the push constant.
func (r *Recording) uploadParams(params []byte, refs ...ownedRef) (ParamRef, error) {
	alloc, err := r.params.Alloc(BufferAllocInfo{
		Usage:     BufferUsageUniform | BufferUsageTransferSrc | BufferUsageTransferDst,
		ByteSize:  uint64(len(params)),
		DebugName: "recording-param-block",
	})
	if err != nil {
		return ParamRef{}, err
	}
	payload := alloc.Payload()
	mapped, err := r.platform.MapBuffer(payload.Handle)
	if err != nil {
		alloc.Drop()
		return ParamRef{}, err
	}
	copy(mapped, params)
	r.platform.UnmapBuffer(payload.Handle)
	payload.Backing.Replace(refs...)

	ref := ParamRef{Buffer: alloc.ID(), Offset: 0}
	alloc.Drop() // the flush-queue's implicit reference keeps the slot alive until GC
	return ref, nil
}

// Dispatch records a compute dispatch: flush barriers, bind the pipeline,
// upload params, push the (buffer, offset) constant, dispatch.
func (r *Recording) Dispatch(pipeline *ComputePipeline, groups [3]uint32, params []byte, refs ...ownedRef) error {
	if err := pipeline.validateParamSize(uint32(len(params))); err != nil {
		return err
	}
	r.flushBarriers()
	ref, err := r.uploadParams(params, refs...)
	if err != nil {
		return err
	}
	r.rec.BindPipeline(pipeline.Handle())
	r.rec.PushConstants(paramRefBytes(ref))
	r.rec.Dispatch(groups[0], groups[1], groups[2])
	return nil
}

// BeginRendering validates the supplied attachments against pipeline's
// declared formats (spec §4.6 "render pass validation"), auto-flushes any
// pending barriers, and begins the render pass.
func (r *Recording) BeginRendering(pipeline *GraphicsPipeline, color []RenderingAttachment, depth *RenderingAttachment, renderArea Extent3D) error {
	if len(color) == 0 && depth == nil {
		return ErrNoAttachments
	}
	if len(color) != len(pipeline.ColorFormats()) {
		return ErrAttachmentCountMismatch
	}
	for i, att := range color {
		if att.Format != pipeline.ColorFormats()[i] {
			return ErrAttachmentFormatMismatch
		}
		if att.Extent != renderArea {
			return ErrAttachmentExtentMismatch
		}
	}
	if (depth != nil) != pipeline.HasDepthAttachment() {
		return ErrDepthAttachmentMismatch
	}
	if depth != nil {
		if depth.Format != pipeline.DepthFormat() {
			return ErrAttachmentFormatMismatch
		}
		if depth.Extent != renderArea {
			return ErrAttachmentExtentMismatch
		}
	}

	r.flushBarriers()
	r.inRenderPass = true
	return r.rec.BeginRendering(RenderingDescription{
		ColorAttachments: color,
		DepthAttachment:  depth,
		RenderAreaExtent: renderArea,
	})
}

// EndRendering closes the active render pass.
func (r *Recording) EndRendering() {
	r.inRenderPass = false
	r.rec.EndRendering()
}

// Draw records a graphics draw call. Must be called inside an active
// render pass opened by BeginRendering.
func (r *Recording) Draw(pipeline *GraphicsPipeline, vertexCount, instanceCount uint32, params []byte, refs ...ownedRef) error {
	if !r.inRenderPass {
		return ErrNoActiveRenderPass
	}
	if err := pipeline.validateParamSize(uint32(len(params))); err != nil {
		return err
	}
	ref, err := r.uploadParams(params, refs...)
	if err != nil {
		return err
	}
	r.rec.BindPipeline(pipeline.Handle())
	r.rec.PushConstants(paramRefBytes(ref))
	r.rec.Draw(vertexCount, instanceCount)
	return nil
}

// Finish flushes any remaining barriers and ends the recording, returning
// the platform-native command stream and the dependency set collected
// during recording.
func (r *Recording) Finish() (RecordedCommands, []*PendingExecution, error) {
	r.flushBarriers()
	cmds, err := r.rec.Finish()
	if err != nil {
		return nil, nil, err
	}
	return cmds, r.deps, nil
}

// NotifySubmitted propagates the resulting pending execution to every
// handle touched during recording, so the next recording against the same
// resource discovers what it must wait on (spec §4.6 "Dependencies").
func (r *Recording) NotifySubmitted(p *PendingExecution) {
	for _, fn := range r.afterSubmit {
		fn(p)
	}
}

func paramRefBytes(ref ParamRef) []byte {
	return []byte{
		byte(ref.Buffer), byte(ref.Buffer >> 8), byte(ref.Buffer >> 16), byte(ref.Buffer >> 24),
		byte(ref.Offset), byte(ref.Offset >> 8), byte(ref.Offset >> 16), byte(ref.Offset >> 24),
	}
}
