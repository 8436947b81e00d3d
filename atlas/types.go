package atlas

import (
	_ "embed"
	"encoding/binary"
	"math"
)

//go:embed assets/vertex.wgsl
var VertexSource string

//go:embed assets/instance_transform.wgsl
var InstanceTransformSource string

//go:embed assets/instance_identifier.wgsl
var InstanceIdentifierSource string

//go:embed assets/indirect_draw_command.wgsl
var IndirectDrawCommandSource string

//go:embed assets/bounding_sphere.wgsl
var BoundingSphereSource string

// Vertex is the host-side mirror of VertexInput (vertex.wgsl): position and
// normal, no texcoord or tangent. 24 bytes, no padding.
type Vertex struct {
	Position [3]float32 // offset 0
	Normal   [3]float32 // offset 12
}

func (v Vertex) Size() int {
	return 24
}

func (v Vertex) Marshal() []byte {
	buf := make([]byte, v.Size())
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(v.Normal[2]))
	return buf
}

// InstanceTransform is the host-side mirror of InstanceTransform
// (instance_transform.wgsl): a single column-major model matrix. 64 bytes.
type InstanceTransform struct {
	Model [16]float32 // offset 0, column-major
}

func (t InstanceTransform) Size() int {
	return 64
}

func (t InstanceTransform) Marshal() []byte {
	buf := make([]byte, t.Size())
	for i, f := range t.Model {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
	return buf
}

// InstanceIdentifier is the host-side mirror of InstanceIdentifier
// (instance_identifier.wgsl). The pad fields only preserve a 16-byte stride
// and must not be repurposed.
type InstanceIdentifier struct {
	ID   uint32 // offset 0
	pad0 uint32 // offset 4
	pad1 uint32 // offset 8
	pad2 uint32 // offset 12
}

func NewInstanceIdentifier(id uint32) InstanceIdentifier {
	return InstanceIdentifier{ID: id}
}

func (i InstanceIdentifier) Size() int {
	return 16
}

func (i InstanceIdentifier) Marshal() []byte {
	buf := make([]byte, i.Size())
	binary.LittleEndian.PutUint32(buf[0:4], i.ID)
	binary.LittleEndian.PutUint32(buf[4:8], i.pad0)
	binary.LittleEndian.PutUint32(buf[8:12], i.pad1)
	binary.LittleEndian.PutUint32(buf[12:16], i.pad2)
	return buf
}

// IndirectDrawCommand is the host-side mirror of DrawIndexedIndirectArgs
// (indirect_draw_command.wgsl), matching wgpu's DrawIndexedIndirect argument
// layout exactly. The cull compute shader mutates InstanceCount in place via
// atomicAdd, so the buffer this struct is written into must carry the
// Storage usage flag, not just Indirect.
type IndirectDrawCommand struct {
	IndexCount    uint32 // offset 0
	InstanceCount uint32 // offset 4, atomic from the cull shader's view
	FirstIndex    uint32 // offset 8
	BaseVertex    uint32 // offset 12
	FirstInstance uint32 // offset 16
}

func (c IndirectDrawCommand) Size() int {
	return 20
}

func (c IndirectDrawCommand) Marshal() []byte {
	buf := make([]byte, c.Size())
	binary.LittleEndian.PutUint32(buf[0:4], c.IndexCount)
	binary.LittleEndian.PutUint32(buf[4:8], c.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:12], c.FirstIndex)
	binary.LittleEndian.PutUint32(buf[12:16], c.BaseVertex)
	binary.LittleEndian.PutUint32(buf[16:20], c.FirstInstance)
	return buf
}

// BoundingSphere is the host-side mirror of BoundingSphere
// (bounding_sphere.wgsl): one entry per draw command, in the mesh's local
// space, indexed by command index.
type BoundingSphere struct {
	Center [3]float32 // offset 0
	Radius float32    // offset 12
}

func (b BoundingSphere) Size() int {
	return 16
}

func (b BoundingSphere) Marshal() []byte {
	buf := make([]byte, b.Size())
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(b.Center[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(b.Center[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(b.Center[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(b.Radius))
	return buf
}

// RemapEntry is a single slot of the remap buffer: the instance index that
// an indirect draw's (first_instance + local_index) should resolve to.
// Raw u32, no wrapper struct needed on the GPU side.
type RemapEntry = uint32

// MeshAtlasEntry is the host-side handle returned by AppendMesh, naming
// where a mesh's geometry and draw-command slot live inside the atlas.
// CommandIndex is -1 when the mesh could not be allocated.
type MeshAtlasEntry struct {
	CommandIndex int32
	BaseVertex   uint32
	FirstIndex   uint32
	IndexCount   uint32
}

// Failed reports whether AppendMesh could not allocate this entry.
func (e MeshAtlasEntry) Failed() bool {
	return e.CommandIndex < 0
}
