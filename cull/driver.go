package cull

import (
	"fmt"
	"log"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/kestrelgpu/atlascore/atlas"
	"github.com/kestrelgpu/atlascore/common"
)

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLabel sets the prefix used on the driver's GPU resource labels.
func WithLabel(label string) Option {
	return func(d *Driver) {
		d.label = label
	}
}

// Driver is the C5 Culling Driver. It owns the two compute pipelines
// (resetCounts, cullInstances), their shared bind group, and the small
// per-frame uniform buffer; it has no other GPU state.
type Driver struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	label  string

	uniformBuffer   *wgpu.Buffer
	bindGroupLayout *wgpu.BindGroupLayout
	bindGroup       *wgpu.BindGroup
	pipelineLayout  *wgpu.PipelineLayout
	resetPipeline   *wgpu.ComputePipeline
	cullPipeline    *wgpu.ComputePipeline

	// Stats mirrors a profiler-style frame counter: host-side dispatch
	// counts only, there is no GPU readback path in this pipeline.
	Stats Stats
}

// Stats tracks cheap host-observable counters: the last frame's workgroup
// counts and the total number of frames dispatched.
type Stats struct {
	ResetWorkgroups uint32
	CullWorkgroups  uint32
	FramesDispatched uint64
}

func bufferEntry(binding uint32, bufferType wgpu.BufferBindingType, minSize uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{
			Type:           bufferType,
			MinBindingSize: minSize,
		},
	}
}

// NewDriver creates the culling uniform buffer, the shared bind group
// wired to pool's buffers (binding table in §6), and the resetCounts /
// cullInstances compute pipelines.
func NewDriver(device *wgpu.Device, queue *wgpu.Queue, pool *atlas.Pool, opts ...Option) (*Driver, error) {
	d := &Driver{device: device, queue: queue, label: "Cull"}
	for _, opt := range opts {
		opt(d)
	}

	uniformBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: d.label + " Uniform",
		Size:  112,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("cull: create uniform buffer: %w", err)
	}
	d.uniformBuffer = uniformBuffer

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: d.label + " Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 112}},
			bufferEntry(1, wgpu.BufferBindingTypeReadOnlyStorage, 64),
			bufferEntry(2, wgpu.BufferBindingTypeStorage, 20),
			bufferEntry(3, wgpu.BufferBindingTypeStorage, 4),
			bufferEntry(4, wgpu.BufferBindingTypeReadOnlyStorage, 4),
			bufferEntry(5, wgpu.BufferBindingTypeReadOnlyStorage, 4),
			bufferEntry(6, wgpu.BufferBindingTypeReadOnlyStorage, 16),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cull: create bind group layout: %w", err)
	}
	d.bindGroupLayout = layout

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  d.label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniformBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: pool.InstanceTransforms(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: pool.IndirectCommands(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: pool.Remap(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 4, Buffer: pool.InstanceCommandMap(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 5, Buffer: pool.CommandBaseOffsets(), Offset: 0, Size: wgpu.WholeSize},
			{Binding: 6, Buffer: pool.BoundingSpheres(), Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cull: create bind group: %w", err)
	}
	d.bindGroup = bindGroup

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            d.label + " Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, fmt.Errorf("cull: create pipeline layout: %w", err)
	}
	d.pipelineLayout = pipelineLayout

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: d.label + " Kernels",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: KernelSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cull: create shader module: %w", err)
	}

	resetPipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  d.label + " resetCounts",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "resetCounts",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cull: create resetCounts pipeline: %w", err)
	}
	d.resetPipeline = resetPipeline

	cullPipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  d.label + " cullInstances",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "cullInstances",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cull: create cullInstances pipeline: %w", err)
	}
	d.cullPipeline = cullPipeline

	return d, nil
}

// Frame is the C5 per-frame sequence of §4.5: extract planes from the
// view-projection matrix, upload the culling uniform, and encode both
// compute passes onto the caller's shared encoder. The caller owns
// submission.
//
// A PhaseViolation guard is the caller's responsibility (render and cull
// share the same Finalized precondition); Frame itself skips the resetCounts
// pass when there are no draw commands and the cullInstances pass when there
// are no instances, matching §4.5's "no error surface" model.
func (d *Driver) Frame(encoder *wgpu.CommandEncoder, viewProjection []float32, pool *atlas.Pool) {
	frustum := common.ExtractFrustumFromMatrix(viewProjection)
	uniform := NewUniform(frustum, pool.InstanceCount(), pool.DrawCommandCount())
	d.queue.WriteBuffer(d.uniformBuffer, 0, uniform.Marshal())

	resetGroups := DispatchCount(pool.DrawCommandCount())
	cullGroups := DispatchCount(pool.InstanceCount())

	d.Stats.ResetWorkgroups = resetGroups
	d.Stats.CullWorkgroups = cullGroups
	d.Stats.FramesDispatched++

	if resetGroups > 0 {
		pass := encoder.BeginComputePass(nil)
		pass.SetPipeline(d.resetPipeline)
		pass.SetBindGroup(0, d.bindGroup, nil)
		pass.DispatchWorkgroups(resetGroups, 1, 1)
		pass.End()
	}

	if cullGroups > 0 {
		pass := encoder.BeginComputePass(nil)
		pass.SetPipeline(d.cullPipeline)
		pass.SetBindGroup(0, d.bindGroup, nil)
		pass.DispatchWorkgroups(cullGroups, 1, 1)
		pass.End()
	}
}

// Dispose releases the driver's own GPU resources. It does not own (and
// does not release) the pool's buffers.
func (d *Driver) Dispose() {
	if d.uniformBuffer != nil {
		d.uniformBuffer.Release()
	}
	log.Printf("[Cull] disposed")
}
