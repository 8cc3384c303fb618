package bindless

// config.go defines the functional-options configuration object used by
// New (bindless.go), directly descended from arena-cache's pkg/config.go:
// a config struct with sensible defaults, options that only capture
// pointers to external collaborators (registry, logger, pipeline cache),
// and one applyOptions/validate pass run once at construction.
//
// Design notes
// ------------
// - All fields get defaults in defaultConfig().
// - Options never allocate beyond capturing a pointer.
// - Table capacities are clamped against the platform's reported device
//   limits (spec §6 "Capacity configuration") rather than trusted verbatim.

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures an Instance constructed via New.
type Option func(*config)

type config struct {
	bufferCapacity  uint32
	imageCapacity   uint32
	samplerCapacity uint32
	maxInFlight     int64

	registry     *prometheus.Registry
	logger       *zap.Logger
	pipelineDB   *badger.DB
}

func defaultConfig() *config {
	return &config{
		bufferCapacity:  MaxSlotsPerTable,
		imageCapacity:   MaxSlotsPerTable,
		samplerCapacity: 4096,
		maxInFlight:     8,
		logger:          zap.NewNop(),
	}
}

// WithMetrics enables Prometheus metrics collection. Passing nil disables
// metrics (the default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithLogger plugs an external zap.Logger. The core never logs on a hot
// path (alloc, refInc/refDec); only GC passes and shutdown/close emit
// debug/info lines.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTableCapacities overrides the default per-kind table capacities.
// Final capacities are clamped to the platform's reported device limits in
// New.
func WithTableCapacities(buffers, images, samplers uint32) Option {
	return func(c *config) {
		if buffers > 0 {
			c.bufferCapacity = buffers
		}
		if images > 0 {
			c.imageCapacity = images
		}
		if samplers > 0 {
			c.samplerCapacity = samplers
		}
	}
}

// WithMaxInFlightSubmissions bounds the execution manager's submission
// queue depth (golang.org/x/sync/semaphore).
func WithMaxInFlightSubmissions(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxInFlight = n
		}
	}
}

// WithPipelineCache enables badger-backed persistence of compiled
// pipeline-cache blobs (pipelinecache.go): an opt-in feature, unrelated to
// and never substituting for the resource tables' in-memory-only lifetime.
func WithPipelineCache(db *badger.DB) Option {
	return func(c *config) { c.pipelineDB = db }
}

func applyOptions(platform Platform, opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	limits := platform.Limits()
	if limits.MaxUpdateAfterBindBuffers > 0 && cfg.bufferCapacity > limits.MaxUpdateAfterBindBuffers {
		cfg.bufferCapacity = limits.MaxUpdateAfterBindBuffers
	}
	if limits.MaxUpdateAfterBindImages > 0 && cfg.imageCapacity > limits.MaxUpdateAfterBindImages {
		cfg.imageCapacity = limits.MaxUpdateAfterBindImages
	}
	if limits.MaxUpdateAfterBindSamplers > 0 && cfg.samplerCapacity > limits.MaxUpdateAfterBindSamplers {
		cfg.samplerCapacity = limits.MaxUpdateAfterBindSamplers
	}

	if cfg.bufferCapacity == 0 || cfg.imageCapacity == 0 || cfg.samplerCapacity == 0 {
		return nil, errZeroCapacity
	}
	if cfg.bufferCapacity > MaxSlotsPerTable || cfg.imageCapacity > MaxSlotsPerTable || cfg.samplerCapacity > MaxSlotsPerTable {
		return nil, errCapacityTooLarge
	}
	return cfg, nil
}

var (
	errZeroCapacity     = errors.New("bindless: table capacity clamped to zero by device limits")
	errCapacityTooLarge = errors.New("bindless: requested table capacity exceeds the 18-bit slot index space")
)
