package atlas

import "testing"

// buildTwoCommandPool sets up two mesh commands ready for instance ingest,
// mirroring S1/S2's fixture meshes.
func buildTwoCommandPool(t *testing.T) *Pool {
	t.Helper()
	p, err := NewPool(nil, nil, Capacities{Vertices: 64, Indices: 64, Instances: 64, Commands: 8})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	av, ai := meshA()
	if _, err := p.AppendMesh(av, ai); err != nil {
		t.Fatalf("append mesh A: %v", err)
	}
	bv, bi := meshB()
	if _, err := p.AppendMesh(bv, bi); err != nil {
		t.Fatalf("append mesh B: %v", err)
	}
	return p
}

// S2: ingest 3 instances for cmd0, 2 for cmd1, then 4 more for cmd0; verify
// the exact finalized layout the spec names.
func TestFinalizeS2(t *testing.T) {
	p := buildTwoCommandPool(t)

	transforms, ids := transformBatch(3)
	start, err := p.AppendInstances(transforms, ids)
	if err != nil || start != 0 {
		t.Fatalf("batch 1: start=%d err=%v", start, err)
	}
	if err := p.RecordCommandInstances(0, start, 3); err != nil {
		t.Fatalf("record batch 1: %v", err)
	}

	transforms, ids = transformBatch(2)
	start, err = p.AppendInstances(transforms, ids)
	if err != nil || start != 3 {
		t.Fatalf("batch 2: start=%d err=%v", start, err)
	}
	if err := p.RecordCommandInstances(1, start, 2); err != nil {
		t.Fatalf("record batch 2: %v", err)
	}

	transforms, ids = transformBatch(4)
	start, err = p.AppendInstances(transforms, ids)
	if err != nil || start != 5 {
		t.Fatalf("batch 3: start=%d err=%v", start, err)
	}
	if err := p.RecordCommandInstances(0, start, 4); err != nil {
		t.Fatalf("record batch 3: %v", err)
	}

	if err := p.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if p.Phase() != Finalized {
		t.Fatalf("phase = %v, want Finalized", p.Phase())
	}

	cmd0, cmd1 := p.commands[0], p.commands[1]
	if cmd0.FirstInstance != 0 || cmd0.InstanceCount != 7 {
		t.Errorf("cmd0 = {first:%d count:%d}, want {0 7}", cmd0.FirstInstance, cmd0.InstanceCount)
	}
	if cmd1.FirstInstance != 7 || cmd1.InstanceCount != 2 {
		t.Errorf("cmd1 = {first:%d count:%d}, want {7 2}", cmd1.FirstInstance, cmd1.InstanceCount)
	}

	remap := p.RemapHost()
	instanceCmdMap := p.InstanceCommandMapHost()
	baseOffsets := p.CommandBaseOffsetsHost()

	wantRemap0 := []uint32{0, 1, 2, 5, 6, 7, 8}
	for i, want := range wantRemap0 {
		if got := remap[cmd0.FirstInstance+uint32(i)]; got != want {
			t.Errorf("remap[%d] = %d, want %d", cmd0.FirstInstance+uint32(i), got, want)
		}
	}
	wantRemap1 := []uint32{3, 4}
	for i, want := range wantRemap1 {
		if got := remap[cmd1.FirstInstance+uint32(i)]; got != want {
			t.Errorf("remap[%d] = %d, want %d", cmd1.FirstInstance+uint32(i), got, want)
		}
	}

	if baseOffsets[0] != 0 || baseOffsets[1] != 7 {
		t.Errorf("base offsets = %v, want [0 7]", baseOffsets)
	}

	// Property 5: map/remap consistency.
	for c, cmd := range p.commands {
		for i := uint32(0); i < cmd.InstanceCount; i++ {
			inst := remap[cmd.FirstInstance+i]
			if instanceCmdMap[inst] != uint32(c) {
				t.Errorf("instance_draw_cmd_map[%d] = %d, want %d", inst, instanceCmdMap[inst], c)
			}
		}
	}
}

// S5: finalize on an empty pool (no segments recorded) stays in Loading and
// returns FinalizeEmpty.
func TestFinalizeEmptyS5(t *testing.T) {
	p, err := NewPool(nil, nil, Capacities{Vertices: 64, Indices: 64, Instances: 64, Commands: 8})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if err := p.Finalize(); err == nil {
		t.Fatal("expected FinalizeEmpty error, got nil")
	}
	if p.Phase() != Loading {
		t.Errorf("phase = %v, want Loading", p.Phase())
	}
}

// Property 4: finalized subranges are pairwise disjoint and their union is
// a prefix of the remap buffer.
func TestFinalizeDisjointRegions(t *testing.T) {
	p := buildTwoCommandPool(t)

	t1, i1 := transformBatch(6)
	start1, _ := p.AppendInstances(t1, i1)
	_ = p.RecordCommandInstances(0, start1, 3)
	_ = p.RecordCommandInstances(1, start1+3, 3)

	if err := p.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var cursor uint32
	for c, cmd := range p.commands {
		if cmd.FirstInstance != cursor {
			t.Errorf("command %d first_instance = %d, want %d (contiguous prefix)", c, cmd.FirstInstance, cursor)
		}
		cursor += cmd.InstanceCount
	}
}

// Property 9: finalizing identical input traces yields identical layouts.
func TestFinalizeDeterministic(t *testing.T) {
	build := func() *Pool {
		p := buildTwoCommandPool(t)
		transforms, ids := transformBatch(6)
		start, _ := p.AppendInstances(transforms, ids)
		_ = p.RecordCommandInstances(0, start, 4)
		_ = p.RecordCommandInstances(1, start+4, 2)
		_ = p.Finalize()
		return p
	}

	a := build()
	b := build()

	if len(a.commands) != len(b.commands) {
		t.Fatalf("command count differs: %d vs %d", len(a.commands), len(b.commands))
	}
	for i := range a.commands {
		if a.commands[i] != b.commands[i] {
			t.Errorf("command %d differs: %+v vs %+v", i, a.commands[i], b.commands[i])
		}
	}
}

func TestFinalizeIsIdempotentAfterSuccess(t *testing.T) {
	p := buildTwoCommandPool(t)
	transforms, ids := transformBatch(2)
	start, _ := p.AppendInstances(transforms, ids)
	_ = p.RecordCommandInstances(0, start, 2)

	if err := p.Finalize(); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if err := p.Finalize(); err != nil {
		t.Fatalf("second finalize should be a no-op, got: %v", err)
	}
}
