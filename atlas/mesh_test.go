package atlas

import "testing"

func quad() []Vertex {
	return []Vertex{
		{Position: [3]float32{-1, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
		{Position: [3]float32{0, -1, 0}},
	}
}

// S6: a unit cross of four vertices centers at the origin with radius 1.
func TestComputeBoundingSphereS6(t *testing.T) {
	sphere := computeBoundingSphere(quad())

	const tol = 1e-6
	for i, want := range [3]float32{0, 0, 0} {
		if diff := sphere.Center[i] - want; diff > tol || diff < -tol {
			t.Errorf("center[%d] = %f, want %f", i, sphere.Center[i], want)
		}
	}
	if diff := sphere.Radius - 1.0; diff > tol || diff < -tol {
		t.Errorf("radius = %f, want 1.0", sphere.Radius)
	}
}

func meshA() ([]Vertex, []uint32) {
	return make([]Vertex, 4), []uint32{0, 1, 2, 1, 2, 3}
}

func meshB() ([]Vertex, []uint32) {
	return make([]Vertex, 8), []uint32{0, 1, 2, 1, 2, 3, 4, 5, 6, 5, 6, 7}
}

// S1: two meshes appended in order land at the expected command offsets.
func TestAppendMeshS1(t *testing.T) {
	p, err := NewPool(nil, nil, Capacities{Vertices: 64, Indices: 64, Instances: 64, Commands: 8})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	av, ai := meshA()
	entryA, err := p.AppendMesh(av, ai)
	if err != nil {
		t.Fatalf("append mesh A: %v", err)
	}
	if entryA.CommandIndex != 0 || entryA.FirstIndex != 0 || entryA.BaseVertex != 0 || entryA.IndexCount != 6 {
		t.Errorf("mesh A entry = %+v, want {0 0 0 6}", entryA)
	}

	bv, bi := meshB()
	entryB, err := p.AppendMesh(bv, bi)
	if err != nil {
		t.Fatalf("append mesh B: %v", err)
	}
	if entryB.CommandIndex != 1 || entryB.FirstIndex != 6 || entryB.BaseVertex != 4 || entryB.IndexCount != 12 {
		t.Errorf("mesh B entry = %+v, want {1 4 6 12}", entryB)
	}

	if p.vertexCursor != 12 {
		t.Errorf("vertex cursor = %d, want 12", p.vertexCursor)
	}
	if p.indexCursor != 18 {
		t.Errorf("index cursor = %d, want 18", p.indexCursor)
	}
	if p.DrawCommandCount() != 2 {
		t.Errorf("draw command count = %d, want 2", p.DrawCommandCount())
	}
}

func TestAppendMeshCapacityExceeded(t *testing.T) {
	p, err := NewPool(nil, nil, Capacities{Vertices: 4, Indices: 64, Instances: 64, Commands: 8})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	av, ai := meshA()
	if _, err := p.AppendMesh(av, ai); err != nil {
		t.Fatalf("first append: %v", err)
	}

	bv, bi := meshB()
	if _, err := p.AppendMesh(bv, bi); err == nil {
		t.Fatal("expected capacity exceeded error, got nil")
	}
}

func TestAppendMeshRejectsEmptyInput(t *testing.T) {
	p, err := NewPool(nil, nil, Capacities{Vertices: 64, Indices: 64, Instances: 64, Commands: 8})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if _, err := p.AppendMesh(nil, []uint32{0}); err == nil {
		t.Error("expected error for empty vertices")
	}
	if _, err := p.AppendMesh(make([]Vertex, 1), nil); err == nil {
		t.Error("expected error for empty indices")
	}
}
