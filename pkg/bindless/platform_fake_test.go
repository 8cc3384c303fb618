package bindless

// platform_fake_test.go implements a fake in-memory Platform for exercising
// the core without a real GPU backend, the same role arena-cache's tests
// play against an in-memory shard index instead of a real disk tier.

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeBuffer struct {
	data      []byte
	destroyed bool
}

type fakeImage struct {
	destroyed bool
}

type fakeImageView struct{}

type fakeSampler struct {
	destroyed bool
}

type fakeSemaphore struct {
	value atomic.Uint64
}

type fakeDescriptorSet struct {
	mu     sync.Mutex
	writes []DescriptorWrite
}

type fakePlatform struct {
	limits DeviceLimits

	mu              sync.Mutex
	destroyedBufs   int
	destroyedImages int
	destroyedSamps  int
	submitCount     int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{limits: DeviceLimits{
		MaxUpdateAfterBindBuffers:  MaxSlotsPerTable,
		MaxUpdateAfterBindImages:   MaxSlotsPerTable,
		MaxUpdateAfterBindSamplers: 4096,
	}}
}

func (p *fakePlatform) Limits() DeviceLimits { return p.limits }

func (p *fakePlatform) CreateBuffer(info BufferCreateInfo) (PlatformBuffer, error) {
	return &fakeBuffer{data: make([]byte, info.ByteSize)}, nil
}

func (p *fakePlatform) DestroyBuffers(handles []PlatformBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range handles {
		h.(*fakeBuffer).destroyed = true
		p.destroyedBufs++
	}
}

func (p *fakePlatform) MapBuffer(handle PlatformBuffer) ([]byte, error) {
	return handle.(*fakeBuffer).data, nil
}

func (p *fakePlatform) UnmapBuffer(PlatformBuffer) {}

func (p *fakePlatform) CreateImage(info ImageCreateInfo) (PlatformImage, PlatformImageView, error) {
	return &fakeImage{}, &fakeImageView{}, nil
}

func (p *fakePlatform) DestroyImages(handles []PlatformImage, views []PlatformImageView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range handles {
		h.(*fakeImage).destroyed = true
		p.destroyedImages++
	}
}

func (p *fakePlatform) CreateSampler(SamplerCreateInfo) (PlatformSampler, error) {
	return &fakeSampler{}, nil
}

func (p *fakePlatform) DestroySamplers(handles []PlatformSampler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range handles {
		h.(*fakeSampler).destroyed = true
		p.destroyedSamps++
	}
}

func (p *fakePlatform) CreateDescriptorSet(DeviceLimits) (PlatformDescriptorSet, error) {
	return &fakeDescriptorSet{}, nil
}

func (p *fakePlatform) UpdateDescriptorSet(set PlatformDescriptorSet, writes []DescriptorWrite) error {
	ds := set.(*fakeDescriptorSet)
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.writes = append(ds.writes, writes...)
	return nil
}

func (p *fakePlatform) NewTimelineSemaphore() (PlatformTimelineSemaphore, error) {
	return &fakeSemaphore{}, nil
}

func (p *fakePlatform) SemaphoreValue(s PlatformTimelineSemaphore) (uint64, error) {
	return s.(*fakeSemaphore).value.Load(), nil
}

func (p *fakePlatform) WaitAny(ctx context.Context, conditions []WaitCondition, notify PlatformTimelineSemaphore, notifyValue uint64) error {
	return nil
}

func (p *fakePlatform) Submit(commands RecordedCommands, waits []WaitCondition, signal SignalCondition) error {
	p.mu.Lock()
	p.submitCount++
	p.mu.Unlock()
	// The fake GPU completes every submission instantly.
	signal.Semaphore.(*fakeSemaphore).value.Store(signal.Value)
	return nil
}

func (p *fakePlatform) CreatePipeline(PipelineDescription) (PlatformPipeline, error) {
	return &struct{}{}, nil
}

func (p *fakePlatform) BeginRecording() (Recorder, error) {
	return &fakeRecorder{}, nil
}

type fakeRecorder struct {
	barriers int
	draws    int
}

func (r *fakeRecorder) Barrier(BarrierDescription) { r.barriers++ }
func (r *fakeRecorder) CopyBufferToBuffer(src, dst PlatformBuffer, size uint64) error {
	copy(dst.(*fakeBuffer).data, src.(*fakeBuffer).data)
	return nil
}
func (r *fakeRecorder) CopyBufferToImage(PlatformBuffer, PlatformImage, Extent3D) error { return nil }
func (r *fakeRecorder) CopyImageToBuffer(PlatformImage, PlatformBuffer, Extent3D) error { return nil }
func (r *fakeRecorder) BindPipeline(PlatformPipeline)                                  {}
func (r *fakeRecorder) BindDescriptorSet(PlatformDescriptorSet)                        {}
func (r *fakeRecorder) PushConstants([]byte)                                           {}
func (r *fakeRecorder) Dispatch(x, y, z uint32)                                        {}
func (r *fakeRecorder) BeginRendering(RenderingDescription) error                       { return nil }
func (r *fakeRecorder) EndRendering()                                                  {}
func (r *fakeRecorder) Draw(vertexCount, instanceCount uint32)                          { r.draws++ }
func (r *fakeRecorder) Finish() (RecordedCommands, error)                               { return "recorded", nil }
