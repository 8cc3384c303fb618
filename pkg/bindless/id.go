package bindless

// id.go defines DescriptorID, the 32-bit packed (kind, index, version)
// triple that identifies a slot (spec §3 "Descriptor ID"). IDs are opaque to
// shaders, which only ever receive the index. The host checks the version in
// TryRecover (recover.go); AsTransient copies the ID without checking it.

import "fmt"

const (
	kindBits    = 2
	indexBits   = 18
	versionBits = 12

	kindMask    = (uint32(1) << kindBits) - 1
	indexMask   = (uint32(1) << indexBits) - 1
	versionMask = (uint32(1) << versionBits) - 1

	// MaxTables is 2^kindBits: the fixed number of resource kinds the
	// registry can hold.
	MaxTables = 1 << kindBits

	// MaxSlotsPerTable is 2^indexBits: ~262k slots per table.
	MaxSlotsPerTable = 1 << indexBits

	// MaxVersion is 2^versionBits: a slot may be reused this many times
	// before its version field would overflow and the slot is retired.
	MaxVersion = 1 << versionBits
)

// Kind identifies one of the fixed resource categories.
type Kind uint8

const (
	KindBuffer Kind = iota
	KindImage
	KindSampler
	kindReserved
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindImage:
		return "image"
	case KindSampler:
		return "sampler"
	default:
		return "reserved"
	}
}

// DescriptorID is the 32-bit packed (kind:2, index:18, version:12) triple
// identifying a slot. It is a plain value type: comparable, copyable, and
// carries no ownership semantics of its own — ownership lives in the handle
// families built on top of it (handles.go).
type DescriptorID uint32

// NewDescriptorID packs a (kind, index, version) triple. index must fit in
// indexBits and version in versionBits; callers within this package always
// satisfy this by construction, so out-of-range inputs panic rather than
// silently truncate.
func NewDescriptorID(kind Kind, index uint32, version uint16) DescriptorID {
	if index > indexMask {
		panic("bindless: descriptor index out of range")
	}
	if uint32(version) > versionMask {
		panic("bindless: descriptor version out of range")
	}
	return DescriptorID(uint32(kind)&kindMask | (index&indexMask)<<kindBits | (uint32(version)&versionMask)<<(kindBits+indexBits))
}

// Kind returns the resource kind encoded in the ID.
func (id DescriptorID) Kind() Kind {
	return Kind(uint32(id) & kindMask)
}

// Index returns the slot index encoded in the ID.
func (id DescriptorID) Index() uint32 {
	return (uint32(id) >> kindBits) & indexMask
}

// Version returns the version encoded in the ID.
func (id DescriptorID) Version() uint16 {
	return uint16((uint32(id) >> (kindBits + indexBits)) & versionMask)
}

func (id DescriptorID) String() string {
	return fmt.Sprintf("%s#%d@v%d", id.Kind(), id.Index(), id.Version())
}
