package main

import "github.com/kestrelgpu/atlascore/atlas"

type shape struct {
	vertices []atlas.Vertex
	indices  []uint32
}

// placeholderShapes stands in for a real asset pipeline's mesh set. Most
// shapes are a distinct box half-extent, producing distinct vertex/index
// content and therefore a distinct fingerprint per loadScene's dedup cache;
// the last entry repeats the first half-extent so that the two kinds share a
// fingerprint and loadScene's cache hit branch actually runs, the way two
// placements of the same asset would in a real pipeline.
func placeholderShapes() []shape {
	extents := [meshKinds][3]float32{
		{0.5, 0.5, 0.5},
		{0.5, 1.0, 0.5},
		{1.0, 0.25, 1.0},
		{0.3, 0.3, 0.3},
		{0.8, 0.4, 0.6},
		{0.5, 0.5, 0.5},
	}

	shapes := make([]shape, 0, meshKinds)
	for _, e := range extents {
		shapes = append(shapes, buildBox(e[0], e[1], e[2]))
	}
	return shapes
}

// buildBox generates a unit box scaled by the given half-extents: 6 faces
// of 4 vertices each with flat per-face normals, wound the same way as the
// teacher's rainbow cube (two CCW triangles per face).
func buildBox(hx, hy, hz float32) shape {
	type face struct {
		positions [4][3]float32
		normal    [3]float32
	}

	faces := []face{
		{positions: [4][3]float32{{hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}, {hx, -hy, hz}}, normal: [3]float32{1, 0, 0}},
		{positions: [4][3]float32{{-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}, {-hx, -hy, -hz}}, normal: [3]float32{-1, 0, 0}},
		{positions: [4][3]float32{{-hx, hy, -hz}, {-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}}, normal: [3]float32{0, 1, 0}},
		{positions: [4][3]float32{{-hx, -hy, hz}, {-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}}, normal: [3]float32{0, -1, 0}},
		{positions: [4][3]float32{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}, normal: [3]float32{0, 0, 1}},
		{positions: [4][3]float32{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}, normal: [3]float32{0, 0, -1}},
	}

	vertices := make([]atlas.Vertex, 0, 24)
	for _, f := range faces {
		for _, pos := range f.positions {
			vertices = append(vertices, atlas.Vertex{Position: pos, Normal: f.normal})
		}
	}

	indices := make([]uint32, 0, 36)
	for fi := range faces {
		base := uint32(fi * 4)
		indices = append(indices,
			base+0, base+1, base+2,
			base+0, base+2, base+3,
		)
	}

	return shape{vertices: vertices, indices: indices}
}
