package bindless

// descriptor_update.go implements the descriptor-set updater (spec §4.8):
// drains the three flush queues, range-compresses newly allocated indices
// into maximal consecutive runs, and issues one batched descriptor-set
// update call per flush.
//
// Range compression matters: a burst of n consecutively allocated
// descriptors collapses into one write of length n instead of n writes of
// length 1 (spec §8 property 4).

import "github.com/voskan/bindless/internal/rangeset"

// DescriptorSetUpdater owns the one bindless descriptor set and the
// sequence that keeps it in sync with newly allocated slots.
type DescriptorSetUpdater struct {
	reg      *Registry
	platform Platform
	set      PlatformDescriptorSet

	buffers  *BufferTable
	images   *ImageTable
	samplers *SamplerTable

	metrics MetricsSink
}

// NewDescriptorSetUpdater constructs the updater and asks the platform to
// create the single four-binding descriptor set sized to the device's
// update-after-bind limits (spec §6).
func NewDescriptorSetUpdater(reg *Registry, platform Platform, buffers *BufferTable, images *ImageTable, samplers *SamplerTable) (*DescriptorSetUpdater, error) {
	set, err := platform.CreateDescriptorSet(platform.Limits())
	if err != nil {
		return nil, err
	}
	return &DescriptorSetUpdater{
		reg: reg, platform: platform, set: set,
		buffers: buffers, images: images, samplers: samplers,
		metrics: reg.metrics,
	}, nil
}

// Flush drains every table's flush queue and issues the batched descriptor
// writes. Every caller's convention (spec §4.2 "flush-and-GC mutex",
// §5 "every submission calls flush first") is to call this before any
// submission that could observe the new descriptors. Flush and GC never
// interleave: both hold the registry's flush-and-gc mutex for their
// duration.
func (u *DescriptorSetUpdater) Flush() error {
	var writes []DescriptorWrite
	u.reg.flushAndGC(func() {
		writes = u.collectWrites()
	})
	if len(writes) == 0 {
		return nil
	}
	return u.platform.UpdateDescriptorSet(u.set, writes)
}

func (u *DescriptorSetUpdater) collectWrites() []DescriptorWrite {
	var writes []DescriptorWrite

	// Binding 0: storage buffers.
	if u.buffers != nil {
		drained := u.buffers.FlushDrain()
		storage := rangeset.New()
		for _, id := range drained {
			if u.buffers.PayloadAt(id.Index()).Usage.Has(BufferUsageStorage) {
				storage.Insert(id.Index())
			}
		}
		for _, r := range storage.Ranges() {
			bufs := make([]PlatformBuffer, 0, r.Len())
			for idx := r.Start; idx < r.End; idx++ {
				bufs = append(bufs, u.buffers.PayloadAt(idx).Handle)
			}
			writes = append(writes, DescriptorWrite{Binding: 0, DstArrayElement: r.Start, Buffers: bufs})
			u.observeWrite(0, r.Len())
		}
	}

	// Bindings 1/2: storage images and sampled images. An image may appear
	// in both subsets.
	if u.images != nil {
		drained := u.images.FlushDrain()
		storageImg := rangeset.New()
		sampledImg := rangeset.New()
		for _, id := range drained {
			usage := u.images.PayloadAt(id.Index()).Usage
			if usage.Has(ImageUsageStorage) {
				storageImg.Insert(id.Index())
			}
			if usage.Has(ImageUsageSampled) {
				sampledImg.Insert(id.Index())
			}
		}
		for _, r := range storageImg.Ranges() {
			views := make([]PlatformImageView, 0, r.Len())
			for idx := r.Start; idx < r.End; idx++ {
				views = append(views, u.images.PayloadAt(idx).View)
			}
			writes = append(writes, DescriptorWrite{Binding: 1, DstArrayElement: r.Start, StorageImages: views})
			u.observeWrite(1, r.Len())
		}
		for _, r := range sampledImg.Ranges() {
			views := make([]PlatformImageView, 0, r.Len())
			for idx := r.Start; idx < r.End; idx++ {
				views = append(views, u.images.PayloadAt(idx).View)
			}
			writes = append(writes, DescriptorWrite{Binding: 2, DstArrayElement: r.Start, SampledImages: views})
			u.observeWrite(2, r.Len())
		}
	}

	// Binding 3: samplers.
	if u.samplers != nil {
		drained := u.samplers.FlushDrain()
		samplerSet := rangeset.New()
		for _, id := range drained {
			samplerSet.Insert(id.Index())
		}
		for _, r := range samplerSet.Ranges() {
			samplers := make([]PlatformSampler, 0, r.Len())
			for idx := r.Start; idx < r.End; idx++ {
				samplers = append(samplers, u.samplers.PayloadAt(idx).Handle)
			}
			writes = append(writes, DescriptorWrite{Binding: 3, DstArrayElement: r.Start, Samplers: samplers})
			u.observeWrite(3, r.Len())
		}
	}

	return writes
}

func (u *DescriptorSetUpdater) observeWrite(binding, span int) {
	if u.metrics != nil {
		u.metrics.incDescriptorWrite(binding, span)
	}
}

// Set returns the platform handle for the single bindless descriptor set, to
// be bound by a recording.
func (u *DescriptorSetUpdater) Set() PlatformDescriptorSet { return u.set }
