// Package atlas owns the fixed-capacity GPU geometry atlas and per-instance
// buffers that back a GPU-driven indirect-rendering pipeline: a shared
// vertex/index atlas, instance transform/identifier buffers, an indirect
// draw-command table, and the remap buffer that lets one draw command
// consume a non-contiguous set of instances via firstInstance.
package atlas

import (
	"fmt"
	"log"

	"github.com/cogentcore/webgpu/wgpu"
)

// Phase is the pool's one-way lifecycle state. Append operations are only
// valid in Loading; rendering and culling require Finalized.
type Phase int

const (
	Loading Phase = iota
	Finalized
)

func (p Phase) String() string {
	if p == Finalized {
		return "Finalized"
	}
	return "Loading"
}

// Capacities fixes every buffer's size up front. There is no runtime
// reallocation; exceeding any of these is a CapacityExceeded error.
type Capacities struct {
	Vertices  uint32 // capacity_vertices
	Indices   uint32 // capacity_indices
	Instances uint32 // capacity_instances
	Commands  uint32 // max_commands
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithLabel sets the prefix used on every GPU buffer label, for debugging
// and GPU profiler captures.
func WithLabel(label string) Option {
	return func(p *Pool) {
		p.label = label
	}
}

// segment is a pending (command, first_instance, count) triple recorded
// during ingest and consumed once by Finalize.
type segment struct {
	command      uint32
	firstInstance uint32
	count         uint32
}

// Pool is the C1 Buffer Pool: it owns every persistent GPU buffer with its
// exact byte layout, and exposes append operations for meshes and instances
// plus a one-way finalize transition.
type Pool struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	label  string

	capacities Capacities
	phase      Phase

	vertexAtlas         *wgpu.Buffer
	indexAtlas          *wgpu.Buffer
	instanceTransforms  *wgpu.Buffer
	instanceIdentifiers *wgpu.Buffer
	indirectCommands    *wgpu.Buffer
	remap               *wgpu.Buffer
	instanceCommandMap  *wgpu.Buffer
	commandBaseOffsets  *wgpu.Buffer
	boundingSpheres     *wgpu.Buffer
	instanceState       *wgpu.Buffer

	vertexCursor uint32
	indexCursor  uint32

	commands         []IndirectDrawCommand
	boundingSpheresH []BoundingSphere

	instanceCount   uint32
	pendingSegments []segment

	// Host-side mirrors of what Finalize uploads, kept for collaborators
	// and tests that have no GPU readback path.
	remapHost              []uint32
	instanceCommandMapHost []uint32
	baseOffsetsHost        []uint32
}

// NewPool allocates every buffer in §4.1 at the given fixed capacities. This
// is the only point at which GPU memory for the atlas is allocated; it is
// never resized afterward.
func NewPool(device *wgpu.Device, queue *wgpu.Queue, capacities Capacities, opts ...Option) (*Pool, error) {
	p := &Pool{
		device:     device,
		queue:      queue,
		label:      "Atlas",
		capacities: capacities,
		phase:      Loading,
	}
	for _, opt := range opts {
		opt(p)
	}

	// A nil device means the pool is being driven by unit tests against its
	// host-side bookkeeping only (cursors, command table, segment
	// compaction); no buffer is created and every queue write downstream is
	// skipped. Production callers always pass a real device.
	if device == nil {
		p.commands = make([]IndirectDrawCommand, 0, capacities.Commands)
		p.boundingSpheresH = make([]BoundingSphere, 0, capacities.Commands)
		return p, nil
	}

	type alloc struct {
		target *(*wgpu.Buffer)
		name   string
		size   uint64
		usage  wgpu.BufferUsage
	}

	allocs := []alloc{
		{&p.vertexAtlas, "Vertex Atlas", uint64(capacities.Vertices) * 24, wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst},
		{&p.indexAtlas, "Index Atlas", uint64(capacities.Indices) * 4, wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst},
		{&p.instanceTransforms, "Instance Transforms", uint64(capacities.Instances) * 64, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&p.instanceIdentifiers, "Instance Identifiers", uint64(capacities.Instances) * 16, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&p.indirectCommands, "Indirect Draw Commands", uint64(capacities.Commands) * 20, wgpu.BufferUsageIndirect | wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&p.remap, "Remap", uint64(capacities.Instances) * 4, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&p.instanceCommandMap, "Instance Command Map", uint64(capacities.Instances) * 4, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&p.commandBaseOffsets, "Command Base Offsets", uint64(capacities.Commands) * 4, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&p.boundingSpheres, "Bounding Spheres", uint64(capacities.Commands) * 16, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
		{&p.instanceState, "Instance State", uint64(capacities.Instances) * 4, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst},
	}

	for _, a := range allocs {
		if a.size == 0 {
			continue
		}
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: p.label + " " + a.name,
			Size:  a.size,
			Usage: a.usage,
		})
		if err != nil {
			return nil, fmt.Errorf("atlas: create %s buffer: %w", a.name, err)
		}
		*a.target = buf
	}

	p.commands = make([]IndirectDrawCommand, 0, capacities.Commands)
	p.boundingSpheresH = make([]BoundingSphere, 0, capacities.Commands)

	return p, nil
}

// Phase reports the pool's current lifecycle phase.
func (p *Pool) Phase() Phase {
	return p.phase
}

// Capacities returns the fixed capacities this pool was constructed with.
func (p *Pool) Capacities() Capacities {
	return p.capacities
}

// DrawCommandCount is the number of commands recorded so far (via AppendMesh).
func (p *Pool) DrawCommandCount() uint32 {
	return uint32(len(p.commands))
}

// InstanceCount is the number of instance records appended so far.
func (p *Pool) InstanceCount() uint32 {
	return p.instanceCount
}

// VertexAtlas is the shared vertex buffer, usable as a render vertex source.
func (p *Pool) VertexAtlas() *wgpu.Buffer { return p.vertexAtlas }

// IndexAtlas is the shared index buffer, usable as a render index source.
func (p *Pool) IndexAtlas() *wgpu.Buffer { return p.indexAtlas }

// InstanceTransforms is the storage buffer of per-instance model matrices.
func (p *Pool) InstanceTransforms() *wgpu.Buffer { return p.instanceTransforms }

// InstanceIdentifiers is the storage buffer of per-instance identifiers.
func (p *Pool) InstanceIdentifiers() *wgpu.Buffer { return p.instanceIdentifiers }

// IndirectCommands is the indirect draw-command table; binding 2 in the cull
// shader's layout and the source of drawIndexedIndirect arguments at render.
func (p *Pool) IndirectCommands() *wgpu.Buffer { return p.indirectCommands }

// Remap is the u32 buffer that resolves a draw command's local instance slot
// to an absolute instance index.
func (p *Pool) Remap() *wgpu.Buffer { return p.remap }

// InstanceCommandMap is the per-instance "which command do I belong to" table.
func (p *Pool) InstanceCommandMap() *wgpu.Buffer { return p.instanceCommandMap }

// CommandBaseOffsets is the per-command remap-region start table.
func (p *Pool) CommandBaseOffsets() *wgpu.Buffer { return p.commandBaseOffsets }

// BoundingSpheres is the per-command local bounding-sphere table.
func (p *Pool) BoundingSpheres() *wgpu.Buffer { return p.boundingSpheres }

// InstanceState is the per-instance scalar buffer the core allocates but
// never reads or writes; collaborators may use it for their own shaders.
func (p *Pool) InstanceState() *wgpu.Buffer { return p.instanceState }

// writeBuffer uploads data through the queue, skipped entirely when the pool
// was constructed with a nil device (see NewPool) for host-only testing.
func (p *Pool) writeBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	if p.queue == nil {
		return
	}
	p.queue.WriteBuffer(buf, offset, data)
}

// RemapHost returns the host-side mirror of the remap buffer as of the last
// Finalize call. Empty before finalization.
func (p *Pool) RemapHost() []uint32 { return p.remapHost }

// InstanceCommandMapHost returns the host-side mirror of the instance→command
// map as of the last Finalize call. Empty before finalization.
func (p *Pool) InstanceCommandMapHost() []uint32 { return p.instanceCommandMapHost }

// CommandBaseOffsetsHost returns the host-side mirror of the command
// base-offset table as of the last Finalize call. Empty before finalization.
func (p *Pool) CommandBaseOffsetsHost() []uint32 { return p.baseOffsetsHost }

// Commands returns a copy of the host-side draw-command table.
func (p *Pool) Commands() []IndirectDrawCommand {
	out := make([]IndirectDrawCommand, len(p.commands))
	copy(out, p.commands)
	return out
}

// BoundingSpheresHost returns a copy of the host-side local bounding-sphere
// table, indexed by command.
func (p *Pool) BoundingSpheresHost() []BoundingSphere {
	out := make([]BoundingSphere, len(p.boundingSpheresH))
	copy(out, p.boundingSpheresH)
	return out
}

// Dispose releases every GPU buffer owned by the pool.
func (p *Pool) Dispose() {
	for _, buf := range []*wgpu.Buffer{
		p.vertexAtlas, p.indexAtlas, p.instanceTransforms, p.instanceIdentifiers,
		p.indirectCommands, p.remap, p.instanceCommandMap, p.commandBaseOffsets,
		p.boundingSpheres, p.instanceState,
	} {
		if buf != nil {
			buf.Release()
		}
	}
	log.Printf("[Atlas] disposed")
}
