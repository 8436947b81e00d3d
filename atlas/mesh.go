package atlas

import (
	"fmt"
	"math"
)

// AppendMesh is the C2 Atlas Writer: it appends one unique mesh's interleaved
// vertex data and local index list into the shared atlases, allocates a new
// indirect draw-command slot for it, computes its local bounding sphere, and
// returns the offsets as a MeshAtlasEntry. Deduplication across chunks is a
// collaborator's responsibility (see §4.2); AppendMesh never checks for an
// existing equivalent mesh.
//
// Indices are local to the mesh (0-based within its own vertex range);
// absolute addressing at draw time comes from the returned BaseVertex.
func (p *Pool) AppendMesh(vertices []Vertex, indices []uint32) (MeshAtlasEntry, error) {
	if p.phase != Loading {
		return MeshAtlasEntry{CommandIndex: -1}, fmt.Errorf("atlas: append_mesh: %w", ErrPhaseViolation)
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return MeshAtlasEntry{CommandIndex: -1}, fmt.Errorf("atlas: append_mesh: vertices and indices must be non-empty")
	}

	if uint32(len(p.commands)) >= p.capacities.Commands {
		return MeshAtlasEntry{CommandIndex: -1}, fmt.Errorf("atlas: append_mesh: command table full: %w", ErrCapacityExceeded)
	}
	if p.vertexCursor+uint32(len(vertices)) > p.capacities.Vertices {
		return MeshAtlasEntry{CommandIndex: -1}, fmt.Errorf("atlas: append_mesh: vertex atlas full: %w", ErrCapacityExceeded)
	}
	if p.indexCursor+uint32(len(indices)) > p.capacities.Indices {
		return MeshAtlasEntry{CommandIndex: -1}, fmt.Errorf("atlas: append_mesh: index atlas full: %w", ErrCapacityExceeded)
	}

	baseVertex := p.vertexCursor
	firstIndex := p.indexCursor

	vertexBytes := make([]byte, len(vertices)*24)
	for i, v := range vertices {
		copy(vertexBytes[i*24:(i+1)*24], v.Marshal())
	}
	p.writeBuffer(p.vertexAtlas, uint64(baseVertex)*24, vertexBytes)

	indexBytes := make([]byte, len(indices)*4)
	for i, idx := range indices {
		b := indexBytes[i*4 : i*4+4]
		b[0] = byte(idx)
		b[1] = byte(idx >> 8)
		b[2] = byte(idx >> 16)
		b[3] = byte(idx >> 24)
	}
	p.writeBuffer(p.indexAtlas, uint64(firstIndex)*4, indexBytes)

	p.vertexCursor += uint32(len(vertices))
	p.indexCursor += uint32(len(indices))

	commandIndex := int32(len(p.commands))
	p.commands = append(p.commands, IndirectDrawCommand{
		IndexCount:    uint32(len(indices)),
		InstanceCount: 0,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: 0,
	})

	sphere := computeBoundingSphere(vertices)
	p.boundingSpheresH = append(p.boundingSpheresH, sphere)
	p.writeBuffer(p.boundingSpheres, uint64(commandIndex)*16, sphere.Marshal())

	return MeshAtlasEntry{
		CommandIndex: commandIndex,
		BaseVertex:   baseVertex,
		FirstIndex:   firstIndex,
		IndexCount:   uint32(len(indices)),
	}, nil
}

// computeBoundingSphere implements §4.2: centroid as the arithmetic mean of
// vertex positions, radius as the maximum Euclidean distance from the
// centroid to any vertex. This deliberately overestimates for unevenly
// distributed vertices; tighter algorithms are explicitly optional.
func computeBoundingSphere(vertices []Vertex) BoundingSphere {
	var sum [3]float64
	for _, v := range vertices {
		sum[0] += float64(v.Position[0])
		sum[1] += float64(v.Position[1])
		sum[2] += float64(v.Position[2])
	}
	n := float64(len(vertices))
	center := [3]float32{
		float32(sum[0] / n),
		float32(sum[1] / n),
		float32(sum[2] / n),
	}

	var maxDistSq float32
	for _, v := range vertices {
		dx := v.Position[0] - center[0]
		dy := v.Position[1] - center[1]
		dz := v.Position[2] - center[2]
		distSq := dx*dx + dy*dy + dz*dz
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}

	return BoundingSphere{
		Center: center,
		Radius: float32(math.Sqrt(float64(maxDistSq))),
	}
}
