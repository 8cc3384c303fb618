package bindless

// errors.go groups the public error surface (spec §7). Every error a user
// closure can observe is a plain value returned from the nearest operation;
// the core never panics on a user-reachable path. Internal invariant
// violations (ref-count underflow, frame-count underflow, double-registered
// table) panic instead — see the panic(...) call sites in table.go,
// registry.go and internal/epoch, which indicate a bug in the core itself
// rather than a recoverable user error. Allocation after Instance.Close is
// not detected: the tables keep accepting allocations.

import "errors"

// Allocation errors.
var (
	// ErrNoMoreCapacity is returned by a slot table when its fixed capacity
	// has been exhausted and the dead queue is empty.
	ErrNoMoreCapacity = errors.New("bindless: no more capacity in slot table")

	// ErrMissingUsage is returned when a buffer is allocated with no usage
	// flags set.
	ErrMissingUsage = errors.New("bindless: at least one usage flag must be set")

	// ErrInvalidUsage is returned when an image allocation requests the
	// Swapchain usage flag explicitly; swapchain images must only enter
	// through the presentation path.
	ErrInvalidUsage = errors.New("bindless: swapchain usage may not be requested explicitly")
)

// Access errors.
var (
	// ErrAlreadyLocked is returned by AccessLock.TryLock when the resource is
	// already locked by another recording.
	ErrAlreadyLocked = errors.New("bindless: resource already locked by another recording")

	// ErrWrongAccessType is returned when an operation requires the resource
	// to be in a specific access type (e.g. mapping a buffer not in
	// General/HostAccess) and it is not.
	ErrWrongAccessType = errors.New("bindless: resource is in the wrong access type for this operation")

	// ErrPendingExecution is returned when mapping a buffer finds its access
	// lock currently held (by a recording or by another mapping). Completion
	// of earlier GPU submissions is not checked.
	ErrPendingExecution = errors.New("bindless: resource has a pending execution in flight")
)

// Validation errors (render pass).
var (
	ErrNoAttachments            = errors.New("bindless: render pass has no attachments")
	ErrAttachmentCountMismatch  = errors.New("bindless: attachment count does not match declared render pass format")
	ErrAttachmentFormatMismatch = errors.New("bindless: attachment format does not match declared render pass format")
	ErrAttachmentExtentMismatch = errors.New("bindless: attachment extent does not match the render area")
	ErrDepthAttachmentMismatch  = errors.New("bindless: depth attachment presence does not match declared render pass format")
)

// Recording/platform errors.
var (
	// ErrBarrierInRenderPass is returned when a barrier is attempted while a
	// render pass is active; barriers must be flushed before begin_rendering.
	ErrBarrierInRenderPass = errors.New("bindless: cannot emit a barrier inside an active render pass")

	// ErrParamBlockTooLarge is returned when a per-dispatch/per-draw
	// parameter upload exceeds the pipeline's declared push-constant size.
	ErrParamBlockTooLarge = errors.New("bindless: parameter block exceeds pipeline's push-constant size")

	// ErrNoActiveRenderPass is returned when a draw command is recorded
	// outside an active render pass.
	ErrNoActiveRenderPass = errors.New("bindless: draw commands require an active render pass")

	// ErrCopyUsageMissing is returned when a copy source or destination
	// lacks the transfer usage flag the operation requires.
	ErrCopyUsageMissing = errors.New("bindless: resource missing required transfer usage flag for copy")
)
