package render

import (
	"fmt"
	"log"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/kestrelgpu/atlascore/atlas"
)

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLabel sets the prefix used on the driver's GPU resource labels.
func WithLabel(label string) Option {
	return func(d *Driver) {
		d.label = label
	}
}

// WithDepthConvention picks standard (default) or reversed-Z depth. Must
// match the projection matrix the host camera produces.
func WithDepthConvention(conv DepthConvention) Option {
	return func(d *Driver) {
		d.depthConvention = conv
	}
}

// WithColorFormat overrides the single fragment target's format; defaults
// to the swapchain's preferred format, passed in at construction.
func WithColorFormat(format wgpu.TextureFormat) Option {
	return func(d *Driver) {
		d.colorFormat = format
	}
}

// WithDepthFormat overrides the depth attachment's format.
func WithDepthFormat(format wgpu.TextureFormat) Option {
	return func(d *Driver) {
		d.depthFormat = format
	}
}

// Stats tracks cheap host-observable counters: the last frame's draw count
// and running totals of frames rendered and skipped Render calls.
type Stats struct {
	DrawsIssued     uint32
	FramesRendered  uint64
	PhaseViolations uint64
}

// Driver is the C6 Render Driver. It owns the fixed render pipeline, its
// bind group wired to the atlas and instance buffers, and the per-frame
// uniform buffer.
type Driver struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	label  string

	depthConvention DepthConvention
	depthClearValue float32
	colorFormat     wgpu.TextureFormat
	depthFormat     wgpu.TextureFormat

	uniformBuffer   *wgpu.Buffer
	bindGroupLayout *wgpu.BindGroupLayout
	bindGroup       *wgpu.BindGroup
	pipeline        *wgpu.RenderPipeline

	Stats Stats
}

// NewDriver creates the render uniform buffer, the bind group wired to
// pool's instance/remap buffers (binding table in §6), and the fixed
// render pipeline (vertex stride 24, two float32x3 attributes, one color
// target, a depth attachment using the chosen convention).
func NewDriver(device *wgpu.Device, queue *wgpu.Queue, pool *atlas.Pool, surfaceFormat wgpu.TextureFormat, opts ...Option) (*Driver, error) {
	d := &Driver{
		device:      device,
		queue:       queue,
		label:       "Render",
		colorFormat: surfaceFormat,
		depthFormat: wgpu.TextureFormatDepth24Plus,
	}
	for _, opt := range opts {
		opt(d)
	}

	uniformBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: d.label + " Uniform",
		Size:  96,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create uniform buffer: %w", err)
	}
	d.uniformBuffer = uniformBuffer

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: d.label + " Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 96}},
			{Binding: 1, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage, MinBindingSize: 64}},
			{Binding: 2, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage, MinBindingSize: 16}},
			{Binding: 3, Visibility: wgpu.ShaderStageVertex, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage, MinBindingSize: 4}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render: create bind group layout: %w", err)
	}
	d.bindGroupLayout = layout

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  d.label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniformBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: pool.InstanceTransforms(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: pool.InstanceIdentifiers(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: pool.Remap(), Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render: create bind group: %w", err)
	}
	d.bindGroup = bindGroup

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            d.label + " Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, fmt.Errorf("render: create pipeline layout: %w", err)
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: d.label + " Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: ShaderSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render: create shader module: %w", err)
	}

	depthClear := float32(1.0)
	depthCompare := wgpu.CompareFunctionLess
	if d.depthConvention == DepthReversed {
		depthClear = 0.0
		depthCompare = wgpu.CompareFunctionGreater
	}
	d.depthClearValue = depthClear

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  d.label + " Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 24,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: d.colorFormat, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            d.depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      depthCompare,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render: create render pipeline: %w", err)
	}
	d.pipeline = pipeline

	return d, nil
}

// DepthClearValue is the clear value matching this driver's depth
// convention (1.0 standard, 0.0 reversed-Z).
func (d *Driver) DepthClearValue() float32 {
	return d.depthClearValue
}

// Render is the per-frame API from §6: render(view_projection, camera_position,
// time_seconds). It is a no-op unless pool is Finalized and both
// total_instances and draw_command_count are greater than zero (§7
// PhaseViolation: treated as a bug in the collaborator, not an error).
func (d *Driver) Render(pass *wgpu.RenderPassEncoder, pool *atlas.Pool, viewProjection [16]float32, cameraPosition [3]float32, timeSeconds float32) {
	if !readyToRender(pool) {
		d.Stats.PhaseViolations++
		return
	}

	uniform := Uniform{
		ViewProjection: viewProjection,
		CameraPosition: cameraPosition,
		TimeSeconds:    timeSeconds,
	}
	d.queue.WriteBuffer(d.uniformBuffer, 0, uniform.Marshal())

	pass.SetPipeline(d.pipeline)
	pass.SetBindGroup(0, d.bindGroup, nil)
	pass.SetVertexBuffer(0, pool.VertexAtlas(), 0, wgpu.WholeSize)
	pass.SetIndexBuffer(pool.IndexAtlas(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)

	count := pool.DrawCommandCount()
	for i := uint32(0); i < count; i++ {
		pass.DrawIndexedIndirect(pool.IndirectCommands(), uint64(i)*20)
	}

	d.Stats.DrawsIssued = count
	d.Stats.FramesRendered++
}

// readyToRender implements the per-frame API precondition from §6: pool
// must be Finalized and both total_instances and draw_command_count must
// be greater than zero.
func readyToRender(pool *atlas.Pool) bool {
	return pool.Phase() == atlas.Finalized && pool.InstanceCount() > 0 && pool.DrawCommandCount() > 0
}

// Dispose releases the driver's own GPU resources. It does not own (and
// does not release) the pool's buffers.
func (d *Driver) Dispose() {
	if d.uniformBuffer != nil {
		d.uniformBuffer.Release()
	}
	log.Printf("[Render] disposed")
}
