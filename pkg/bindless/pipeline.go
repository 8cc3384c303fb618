package bindless

// pipeline.go implements the three pipeline handle families (spec §6
// "Pipelines"): compute, graphics, and mesh. A pipeline wraps a platform
// handle plus the push-constant layout the core uses to deliver per-dispatch
// and per-draw parameters: a (buffer descriptor ID, byte offset) pair rather
// than inline constant data (spec §4.6 "per-dispatch/per-draw parameter
// upload"). A parameter block larger than the pipeline's declared
// PushConstantSize is rejected with ErrParamBlockTooLarge.

// PipelineDescription is the backend-agnostic compile request handed to
// Platform.CreatePipeline. Shader module bytes and binding layout details
// are intentionally opaque (ShaderStages carries whatever the platform
// needs); the core never inspects them.
type PipelineDescription struct {
	Kind          PipelineKind
	ShaderStages  []ShaderStage
	PushConstantSize uint32
	DebugName     string

	// ColorAttachmentFormats / DepthAttachmentFormat apply to graphics and
	// mesh pipelines only (spec §4.6 "render pass validation" cross-checks
	// these against the attachments bound at BeginRendering).
	ColorAttachmentFormats []Format
	DepthAttachmentFormat  Format
}

// PipelineKind distinguishes the three pipeline families.
type PipelineKind uint8

const (
	PipelineCompute PipelineKind = iota
	PipelineGraphics
	PipelineMesh
)

// ShaderStage is one compiled shader module bound to a pipeline stage.
type ShaderStage struct {
	Stage      ShaderStageBit
	EntryPoint string
	Code       []byte
}

// ShaderStageBit enumerates the shader stages a pipeline description may
// reference.
type ShaderStageBit uint32

const (
	StageVertex ShaderStageBit = 1 << iota
	StageFragment
	StageCompute
	StageMesh
	StageTask
)

// ParamRef is the (buffer descriptor, byte offset) pair every dispatch/draw
// parameter upload resolves to. It is what actually rides in the eight-byte
// push-constant range, per spec §4.6 — the parameter data itself lives in a
// small per-call buffer allocation, never inline in the command stream.
type ParamRef struct {
	Buffer DescriptorID
	Offset uint32
}

// pipelineBase holds the fields shared by every pipeline kind.
type pipelineBase struct {
	handle           PlatformPipeline
	pushConstantSize uint32
	debugName        string
}

func (p *pipelineBase) validateParamSize(size uint32) error {
	if size > p.pushConstantSize {
		return ErrParamBlockTooLarge
	}
	return nil
}

// ComputePipeline wraps a compiled compute pipeline.
type ComputePipeline struct{ pipelineBase }

// NewComputePipeline compiles and wraps a compute pipeline.
func NewComputePipeline(platform Platform, stage ShaderStage, pushConstantSize uint32, debugName string) (*ComputePipeline, error) {
	handle, err := platform.CreatePipeline(PipelineDescription{
		Kind:             PipelineCompute,
		ShaderStages:     []ShaderStage{stage},
		PushConstantSize: pushConstantSize,
		DebugName:        debugName,
	})
	if err != nil {
		return nil, err
	}
	return &ComputePipeline{pipelineBase{handle: handle, pushConstantSize: pushConstantSize, debugName: debugName}}, nil
}

// Handle returns the platform pipeline handle for binding in a recording.
func (p *ComputePipeline) Handle() PlatformPipeline { return p.handle }

// GraphicsPipeline wraps a compiled graphics (vertex+fragment) pipeline,
// plus the attachment formats a render pass binding it must match (spec
// §4.6 "render pass validation").
type GraphicsPipeline struct {
	pipelineBase
	colorFormats []Format
	depthFormat  Format
}

// NewGraphicsPipeline compiles and wraps a graphics pipeline.
func NewGraphicsPipeline(platform Platform, vertex, fragment ShaderStage, colorFormats []Format, depthFormat Format, pushConstantSize uint32, debugName string) (*GraphicsPipeline, error) {
	handle, err := platform.CreatePipeline(PipelineDescription{
		Kind:                   PipelineGraphics,
		ShaderStages:           []ShaderStage{vertex, fragment},
		PushConstantSize:       pushConstantSize,
		ColorAttachmentFormats: colorFormats,
		DepthAttachmentFormat:  depthFormat,
		DebugName:              debugName,
	})
	if err != nil {
		return nil, err
	}
	return &GraphicsPipeline{
		pipelineBase: pipelineBase{handle: handle, pushConstantSize: pushConstantSize, debugName: debugName},
		colorFormats: colorFormats,
		depthFormat:  depthFormat,
	}, nil
}

func (p *GraphicsPipeline) Handle() PlatformPipeline  { return p.handle }
func (p *GraphicsPipeline) ColorFormats() []Format     { return p.colorFormats }
func (p *GraphicsPipeline) DepthFormat() Format        { return p.depthFormat }
func (p *GraphicsPipeline) HasDepthAttachment() bool   { return p.depthFormat != FormatUnknown }

// MeshPipeline wraps a compiled mesh-shading pipeline (task+mesh+fragment).
type MeshPipeline struct {
	pipelineBase
	colorFormats []Format
	depthFormat  Format
}

// NewMeshPipeline compiles and wraps a mesh pipeline. task is optional (a
// nil task skips the task stage).
func NewMeshPipeline(platform Platform, task *ShaderStage, mesh, fragment ShaderStage, colorFormats []Format, depthFormat Format, pushConstantSize uint32, debugName string) (*MeshPipeline, error) {
	stages := make([]ShaderStage, 0, 3)
	if task != nil {
		stages = append(stages, *task)
	}
	stages = append(stages, mesh, fragment)

	handle, err := platform.CreatePipeline(PipelineDescription{
		Kind:                   PipelineMesh,
		ShaderStages:           stages,
		PushConstantSize:       pushConstantSize,
		ColorAttachmentFormats: colorFormats,
		DepthAttachmentFormat:  depthFormat,
		DebugName:              debugName,
	})
	if err != nil {
		return nil, err
	}
	return &MeshPipeline{
		pipelineBase: pipelineBase{handle: handle, pushConstantSize: pushConstantSize, debugName: debugName},
		colorFormats: colorFormats,
		depthFormat:  depthFormat,
	}, nil
}

func (p *MeshPipeline) Handle() PlatformPipeline { return p.handle }
func (p *MeshPipeline) ColorFormats() []Format   { return p.colorFormats }
func (p *MeshPipeline) DepthFormat() Format      { return p.depthFormat }
