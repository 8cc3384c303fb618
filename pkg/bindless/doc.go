// Package bindless implements the bindless resource core of a Vulkan-style
// GPU abstraction: allocation, tracking, and deferred reclamation of GPU
// resources (buffers, images, samplers) exposed to shaders through a single
// large descriptor array indexed by integer identifiers.
//
// The package is split, leaf-first, the same way arena-cache split its
// shard/clock/genring concerns into small files with one responsibility
// each:
//   - id.go            — the packed (kind, index, version) DescriptorID.
//   - access_type.go    — the closed AccessType enum and barrier source info.
//   - access_lock.go    — the per-resource exclusive/shared state machine.
//   - table.go          — the generic, concurrent slot table.
//   - registry.go        — the fixed table registry + epoch/GC coordination.
//   - handles.go         — RC / Mut / Transient handle families.
//   - recover.go         — versioned weak-ID recovery (TryRecover).
//   - backingrefs.go     — the backing-ref tracker embedded in buffer slots.
//   - buffer_table.go, image_table.go, sampler_table.go — kind payloads.
//   - descriptor_update.go — the flush-queue-draining descriptor-set updater.
//   - recording.go        — the command-recording context.
//   - execution.go        — the execution manager, waiter thread, pending
//     executions.
//   - pipeline.go         — compute/graphics/mesh pipeline wrappers.
//   - platform.go         — the external backend contract (§6 of the spec).
//   - config.go           — functional options, capacity clamping.
//   - metrics.go          — Prometheus instrumentation.
//   - pipelinecache.go    — optional Badger-backed pipeline-cache persistence.
//
// None of this package talks to a real GPU: the Platform interface in
// platform.go is the seam where a Vulkan (or any other descriptor-indexing
// capable) backend plugs in. Tests use a fake in-memory platform.
//
// © 2025 arena-cache authors. MIT License.
package bindless
