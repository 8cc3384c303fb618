package bindless

// pipelinecache.go adds an opt-in, badger-backed store for compiled
// pipeline-cache blobs — the host-side analogue of VkPipelineCache's
// serialize/load round-trip. This is deliberately distinct from the
// resource tables' lifetime, which the spec's Non-goals keep purely
// in-memory: a pipeline-cache blob is content-addressed by the pipeline
// description's hash and survives process restarts so a backend doesn't
// recompile identical shader permutations on every run.
//
// Grounded on arena-cache's disk-tier usage of github.com/dgraph-io/badger/v4
// (the teacher used it for an L2 disk cache keyed by cache key; this reuses
// the same embedded KV store for a different key space).

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// PipelineCache persists compiled pipeline blobs keyed by a hash of their
// description.
type PipelineCache struct {
	db     *badger.DB
	logger *zap.Logger
}

// NewPipelineCache wraps an already-open badger.DB. The database's lifetime
// is owned by the caller up until Close is called on the returned cache, or
// by the Instance that was given this DB via WithPipelineCache.
func NewPipelineCache(db *badger.DB, logger *zap.Logger) *PipelineCache {
	return &PipelineCache{db: db, logger: logger}
}

// DescriptionKey hashes a PipelineDescription's shape into a stable cache
// key. Shader bytecode, entry points, push-constant size, and attachment
// formats all participate so a recompiled shader or a changed render target
// format never hits a stale blob.
func DescriptionKey(desc PipelineDescription) [32]byte {
	h := sha256.New()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(desc.Kind))
	h.Write(buf[:])
	binary.LittleEndian.PutUint32(buf[:], desc.PushConstantSize)
	h.Write(buf[:])
	for _, stage := range desc.ShaderStages {
		binary.LittleEndian.PutUint32(buf[:], uint32(stage.Stage))
		h.Write(buf[:])
		h.Write([]byte(stage.EntryPoint))
		h.Write(stage.Code)
	}
	for _, f := range desc.ColorAttachmentFormats {
		h.Write([]byte{byte(f)})
	}
	h.Write([]byte{byte(desc.DepthAttachmentFormat)})
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Load returns a previously stored pipeline blob for key, or ok=false if
// absent.
func (c *PipelineCache) Load(key [32]byte) (blob []byte, ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(key[:])
		if errors.Is(getErr, badger.ErrKeyNotFound) {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		ok = true
		return item.Value(func(val []byte) error {
			blob = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("bindless: loading pipeline cache blob: %w", err)
	}
	return blob, ok, nil
}

// Store persists blob under key, overwriting any previous entry.
func (c *PipelineCache) Store(key [32]byte, blob []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key[:], blob)
	})
	if err != nil {
		return fmt.Errorf("bindless: storing pipeline cache blob: %w", err)
	}
	return nil
}

// Close closes the underlying badger database.
func (c *PipelineCache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("bindless: closing pipeline cache: %w", err)
	}
	if c.logger != nil {
		c.logger.Info("bindless: pipeline cache closed")
	}
	return nil
}
