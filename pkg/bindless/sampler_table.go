package bindless

// sampler_table.go implements the sampler resource-kind table (spec §4.4
// "Sampler table"): payload is just the sampler handle, the simplest of the
// three kind tables.

// SamplerPayload is the kind-specific metadata stored in every sampler slot.
type SamplerPayload struct {
	Handle    PlatformSampler
	DebugName string
}

// SamplerTable owns every live sampler slot.
type SamplerTable struct {
	*Table[SamplerPayload]
	platform Platform
}

// NewSamplerTable constructs a sampler table with the given fixed capacity.
func NewSamplerTable(reg *Registry, capacity uint32, platform Platform) *SamplerTable {
	st := &SamplerTable{platform: platform}
	st.Table = newTable[SamplerPayload](KindSampler, capacity, st.dropRange, reg)
	return st
}

func (st *SamplerTable) dropRange(payloads []SamplerPayload) {
	handles := make([]PlatformSampler, 0, len(payloads))
	for _, p := range payloads {
		handles = append(handles, p.Handle)
	}
	st.platform.DestroySamplers(handles)
}

// SamplerAllocInfo describes a sampler allocation request.
type SamplerAllocInfo struct {
	DebugName string
}

// Alloc creates the backing sampler and allocates a slot for it.
func (st *SamplerTable) Alloc(info SamplerAllocInfo) (RC[SamplerPayload], error) {
	handle, err := st.platform.CreateSampler(SamplerCreateInfo{DebugName: info.DebugName})
	if err != nil {
		return RC[SamplerPayload]{}, err
	}
	return st.Table.Alloc(SamplerPayload{Handle: handle, DebugName: info.DebugName})
}
