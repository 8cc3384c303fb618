package bindless

// access_type.go enumerates the closed set of access types a mutable
// resource can be found in. Grounded on the original source's
// pipeline/access_type.rs (see original_source/_INDEX.md); this is a
// behavioral port of the enum's role in the access-lock state machine, not a
// translation of the Rust code, and it deliberately stops short of being
// Vulkan-enum-accurate — that conversion is explicitly out of scope (spec
// §1, "bit-flag to Vulkan-enum conversions").

// AccessType records how a resource was last used, or is about to be used.
// The access lock (access_lock.go) stores one of these (or the SharedForever
// sentinel) in a single atomic alongside the "locked" bit.
type AccessType uint8

const (
	// AccessUndefined is the initial state of a non-mappable resource: no
	// defined contents, no pending barrier source.
	AccessUndefined AccessType = iota
	// AccessGeneral is the state mappable buffers and freely-aliased images
	// start in.
	AccessGeneral
	// AccessHostAccess marks a buffer currently being read or written by the
	// host via MappedBuffer.
	AccessHostAccess
	AccessShaderRead
	AccessShaderReadWrite
	AccessTransferRead
	AccessTransferWrite
	AccessColorAttachment
	AccessDepthStencilAttachment
	AccessPresent

	// accessSharedForever is a sentinel value outside the normal range that
	// permanently rejects future TryLock calls once a resource has been
	// unlocked to shared (spec §3 "Access lock").
	accessSharedForever AccessType = 0xFF
)

func (a AccessType) String() string {
	switch a {
	case AccessUndefined:
		return "Undefined"
	case AccessGeneral:
		return "General"
	case AccessHostAccess:
		return "HostAccess"
	case AccessShaderRead:
		return "ShaderRead"
	case AccessShaderReadWrite:
		return "ShaderReadWrite"
	case AccessTransferRead:
		return "TransferRead"
	case AccessTransferWrite:
		return "TransferWrite"
	case AccessColorAttachment:
		return "ColorAttachment"
	case AccessDepthStencilAttachment:
		return "DepthStencilAttachment"
	case AccessPresent:
		return "Present"
	case accessSharedForever:
		return "SharedForever"
	default:
		return "Unknown"
	}
}

// IsWrite reports whether the access type implies the resource's contents
// may be mutated. Used by the recording context to decide barrier direction.
func (a AccessType) IsWrite() bool {
	switch a {
	case AccessShaderReadWrite, AccessTransferWrite, AccessColorAttachment, AccessDepthStencilAttachment, AccessHostAccess:
		return true
	default:
		return false
	}
}
