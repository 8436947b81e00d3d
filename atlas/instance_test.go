package atlas

import "testing"

func transformBatch(n int) ([]InstanceTransform, []uint32) {
	transforms := make([]InstanceTransform, n)
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = uint32(i)
	}
	return transforms, ids
}

// Property 2: instance append is dense — start index equals the sum of
// prior batch sizes, and the total count equals the sum of all batches.
func TestAppendInstancesIsDense(t *testing.T) {
	p, err := NewPool(nil, nil, Capacities{Vertices: 64, Indices: 64, Instances: 64, Commands: 8})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	t1, i1 := transformBatch(3)
	start1, err := p.AppendInstances(t1, i1)
	if err != nil {
		t.Fatalf("batch 1: %v", err)
	}
	if start1 != 0 {
		t.Errorf("batch 1 start = %d, want 0", start1)
	}

	t2, i2 := transformBatch(5)
	start2, err := p.AppendInstances(t2, i2)
	if err != nil {
		t.Fatalf("batch 2: %v", err)
	}
	if start2 != 3 {
		t.Errorf("batch 2 start = %d, want 3", start2)
	}

	if p.InstanceCount() != 8 {
		t.Errorf("instance count = %d, want 8", p.InstanceCount())
	}
}

func TestAppendInstancesCapacityExceeded(t *testing.T) {
	p, err := NewPool(nil, nil, Capacities{Vertices: 64, Indices: 64, Instances: 4, Commands: 8})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	transforms, ids := transformBatch(5)
	if _, err := p.AppendInstances(transforms, ids); err == nil {
		t.Fatal("expected capacity exceeded error, got nil")
	}
}

func TestAppendInstancesLengthMismatch(t *testing.T) {
	p, err := NewPool(nil, nil, Capacities{Vertices: 64, Indices: 64, Instances: 64, Commands: 8})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	transforms, _ := transformBatch(3)
	if _, err := p.AppendInstances(transforms, []uint32{0, 1}); err == nil {
		t.Fatal("expected length-mismatch error, got nil")
	}
}

func TestRecordCommandInstancesRejectsOutOfRangeCommand(t *testing.T) {
	p, err := NewPool(nil, nil, Capacities{Vertices: 64, Indices: 64, Instances: 64, Commands: 8})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	transforms, ids := transformBatch(2)
	if _, err := p.AppendInstances(transforms, ids); err != nil {
		t.Fatalf("append instances: %v", err)
	}
	if err := p.RecordCommandInstances(0, 0, 2); err == nil {
		t.Fatal("expected out-of-range command error, got nil")
	}
}
