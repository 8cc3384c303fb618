// Package bench provides reproducible micro-benchmarks for pkg/bindless.
// Run via:  go test ./bench -bench=. -benchmem -cpu 1,4,16
//
// We measure:
//  1. Alloc       — allocation-only workload against the buffer table
//  2. AllocDrop   — alloc immediately followed by drop, the steady-state
//     churn pattern a frame-based renderer produces
//  3. TryRecover  — versioned weak-ID recovery, concurrent (b.RunParallel)
//  4. FrameCycle  — full Frame/Release epoch cycle with a backlog of drops
//
// NOTE: Unit tests live in pkg/bindless; this file is only for performance.
//
// © 2025 arena-cache authors. MIT License.
package bench

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/voskan/bindless/pkg/bindless"
)

const benchCapacity = 1 << 18

// benchPlatform is a CPU-only bindless.Platform stand-in: every call is a
// no-op or trivial allocation, so benchmark timing reflects pkg/bindless's
// own bookkeeping rather than a simulated backend.
type benchPlatform struct{}

func (benchPlatform) Limits() bindless.DeviceLimits {
	return bindless.DeviceLimits{MaxUpdateAfterBindBuffers: benchCapacity, MaxUpdateAfterBindImages: benchCapacity, MaxUpdateAfterBindSamplers: benchCapacity}
}
func (benchPlatform) CreateBuffer(info bindless.BufferCreateInfo) (bindless.PlatformBuffer, error) {
	return struct{}{}, nil
}
func (benchPlatform) DestroyBuffers(handles []bindless.PlatformBuffer) {}
func (benchPlatform) MapBuffer(handle bindless.PlatformBuffer) ([]byte, error) {
	return nil, nil
}
func (benchPlatform) UnmapBuffer(handle bindless.PlatformBuffer) {}
func (benchPlatform) CreateImage(info bindless.ImageCreateInfo) (bindless.PlatformImage, bindless.PlatformImageView, error) {
	return struct{}{}, struct{}{}, nil
}
func (benchPlatform) DestroyImages(handles []bindless.PlatformImage, views []bindless.PlatformImageView) {
}
func (benchPlatform) CreateSampler(info bindless.SamplerCreateInfo) (bindless.PlatformSampler, error) {
	return struct{}{}, nil
}
func (benchPlatform) DestroySamplers(handles []bindless.PlatformSampler) {}
func (benchPlatform) CreateDescriptorSet(limits bindless.DeviceLimits) (bindless.PlatformDescriptorSet, error) {
	return struct{}{}, nil
}
func (benchPlatform) UpdateDescriptorSet(set bindless.PlatformDescriptorSet, writes []bindless.DescriptorWrite) error {
	return nil
}
func (benchPlatform) NewTimelineSemaphore() (bindless.PlatformTimelineSemaphore, error) {
	return new(atomic.Uint64), nil
}
func (benchPlatform) SemaphoreValue(s bindless.PlatformTimelineSemaphore) (uint64, error) {
	return s.(*atomic.Uint64).Load(), nil
}
func (benchPlatform) WaitAny(ctx context.Context, conditions []bindless.WaitCondition, notify bindless.PlatformTimelineSemaphore, notifyValue uint64) error {
	return nil
}
func (benchPlatform) Submit(commands bindless.RecordedCommands, waits []bindless.WaitCondition, signal bindless.SignalCondition) error {
	signal.Semaphore.(*atomic.Uint64).Store(signal.Value)
	return nil
}
func (benchPlatform) CreatePipeline(desc bindless.PipelineDescription) (bindless.PlatformPipeline, error) {
	return struct{}{}, nil
}
func (benchPlatform) BeginRecording() (bindless.Recorder, error) { return benchRecorder{}, nil }

type benchRecorder struct{}

func (benchRecorder) Barrier(b bindless.BarrierDescription)                     {}
func (benchRecorder) CopyBufferToBuffer(src, dst bindless.PlatformBuffer, size uint64) error {
	return nil
}
func (benchRecorder) CopyBufferToImage(src bindless.PlatformBuffer, dst bindless.PlatformImage, extent bindless.Extent3D) error {
	return nil
}
func (benchRecorder) CopyImageToBuffer(src bindless.PlatformImage, dst bindless.PlatformBuffer, extent bindless.Extent3D) error {
	return nil
}
func (benchRecorder) BindPipeline(pipeline bindless.PlatformPipeline)       {}
func (benchRecorder) BindDescriptorSet(set bindless.PlatformDescriptorSet) {}
func (benchRecorder) PushConstants(data []byte)                           {}
func (benchRecorder) Dispatch(groupsX, groupsY, groupsZ uint32)            {}
func (benchRecorder) BeginRendering(desc bindless.RenderingDescription) error {
	return nil
}
func (benchRecorder) EndRendering()                              {}
func (benchRecorder) Draw(vertexCount, instanceCount uint32)     {}
func (benchRecorder) Finish() (bindless.RecordedCommands, error) { return struct{}{}, nil }

func newBenchInstance(b *testing.B) *bindless.Instance {
	b.Helper()
	inst, err := bindless.New(benchPlatform{}, bindless.WithTableCapacities(benchCapacity, benchCapacity, 4096))
	if err != nil {
		b.Fatal(err)
	}
	return inst
}

func BenchmarkAlloc(b *testing.B) {
	inst := newBenchInstance(b)
	defer inst.Close()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := inst.Buffers.Alloc(bindless.BufferAllocInfo{Usage: bindless.BufferUsageStorage, ByteSize: 64}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAllocDrop(b *testing.B) {
	inst := newBenchInstance(b)
	defer inst.Close()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, err := inst.Buffers.Alloc(bindless.BufferAllocInfo{Usage: bindless.BufferUsageStorage, ByteSize: 64})
		if err != nil {
			b.Fatal(err)
		}
		h.Drop()
	}
}

func BenchmarkTryRecoverParallel(b *testing.B) {
	inst := newBenchInstance(b)
	defer inst.Close()

	const seed = 4096
	ids := make([]bindless.DescriptorID, seed)
	for i := range ids {
		h, err := inst.Buffers.Alloc(bindless.BufferAllocInfo{Usage: bindless.BufferUsageStorage, ByteSize: 64})
		if err != nil {
			b.Fatal(err)
		}
		ids[i] = h.ID()
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			id := ids[i&(seed-1)]
			if h, ok := inst.Buffers.TryRecover(id); ok {
				h.Drop()
			}
			i++
		}
	})
}

func BenchmarkFrameCycleWithBacklog(b *testing.B) {
	inst := newBenchInstance(b)
	defer inst.Close()

	const backlog = 1024
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < backlog; j++ {
			h, err := inst.Buffers.Alloc(bindless.BufferAllocInfo{Usage: bindless.BufferUsageStorage, ByteSize: 64})
			if err != nil {
				b.Fatal(err)
			}
			h.Drop()
		}
		g := inst.Registry.Frame()
		g.Release()
	}
}
