package bindless

// bindless.go is the package's single entry point: New wires together the
// registry, the three kind tables, the descriptor-set updater, and the
// execution manager behind one Instance, the same way arena-cache's New
// wired together its shard index, clock hand, and generation ring behind
// one Cache.
//
// © 2025 arena-cache authors. MIT License.

import (
	"fmt"

	"go.uber.org/multierr"
)

// Instance is the fully wired bindless resource core for one device.
type Instance struct {
	cfg *config

	Registry *Registry
	Buffers  *BufferTable
	Images   *ImageTable
	Samplers *SamplerTable
	Updater  *DescriptorSetUpdater
	Exec     *ExecutionManager

	pipelineCache *PipelineCache
}

// New constructs an Instance against platform, applying opts. Table
// capacities are clamped to platform's reported device limits.
func New(platform Platform, opts ...Option) (*Instance, error) {
	cfg, err := applyOptions(platform, opts)
	if err != nil {
		return nil, err
	}

	sink := newMetricsSink(cfg.registry)
	reg := NewRegistry(sink, cfg.logger)

	buffers := NewBufferTable(reg, cfg.bufferCapacity, platform)
	images := NewImageTable(reg, cfg.imageCapacity, platform)
	samplers := NewSamplerTable(reg, cfg.samplerCapacity, platform)

	updater, err := NewDescriptorSetUpdater(reg, platform, buffers, images, samplers)
	if err != nil {
		return nil, fmt.Errorf("bindless: creating descriptor set: %w", err)
	}

	exec, err := NewExecutionManager(reg, platform, cfg.maxInFlight, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("bindless: creating execution manager: %w", err)
	}

	inst := &Instance{cfg: cfg, Registry: reg, Buffers: buffers, Images: images, Samplers: samplers, Updater: updater, Exec: exec}
	if cfg.pipelineDB != nil {
		inst.pipelineCache = NewPipelineCache(cfg.pipelineDB, cfg.logger)
	}
	return inst, nil
}

// PipelineCache returns the optional badger-backed pipeline cache, or nil
// if WithPipelineCache was not supplied.
func (i *Instance) PipelineCache() *PipelineCache { return i.pipelineCache }

// Snapshot is a point-in-time diagnostic view of the instance, intended to
// be served over a debug HTTP endpoint the way arena-cache's inspector
// expects a JSON snapshot (cmd/bindless-inspect consumes exactly this
// shape).
type Snapshot struct {
	Buffers        TableStats `json:"buffers"`
	Images         TableStats `json:"images"`
	Samplers       TableStats `json:"samplers"`
	InFlightExecs  int64      `json:"in_flight_executions"`
}

// Snapshot gathers occupancy and in-flight submission counts across every
// table and the execution manager.
func (i *Instance) Snapshot() Snapshot {
	return Snapshot{
		Buffers:       i.Buffers.Stats(),
		Images:        i.Images.Stats(),
		Samplers:      i.Samplers.Stats(),
		InFlightExecs: i.Exec.InFlightCount(),
	}
}

// Begin opens a new recording against this instance's descriptor set and
// resource tables.
func (i *Instance) Begin() (*Recording, error) {
	return Begin(i.Registry, i.platform(), i.Updater, i.Buffers)
}

func (i *Instance) platform() Platform { return i.Buffers.platform }

// Platform returns the backend this instance was constructed against, so
// callers can compile pipelines with NewComputePipeline/NewGraphicsPipeline/
// NewMeshPipeline.
func (i *Instance) Platform() Platform { return i.platform() }

// Close shuts down the execution manager and releases the pipeline cache,
// combining every teardown error encountered (go.uber.org/multierr, the
// same combinator arena-cache would reach for when tearing down multiple
// shards that can each fail independently).
func (i *Instance) Close() error {
	var err error
	i.Exec.Shutdown()
	if i.pipelineCache != nil {
		err = multierr.Append(err, i.pipelineCache.Close())
	}
	return err
}
