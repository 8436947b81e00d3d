package render

import "testing"

func TestUniformMarshalSize(t *testing.T) {
	u := Uniform{
		ViewProjection: [16]float32{1: 1, 2: 2},
		CameraPosition: [3]float32{1, 2, 3},
		Selection:      7,
		TimeSeconds:    1.5,
	}
	if u.Size() != 96 {
		t.Fatalf("Size() = %d, want 96", u.Size())
	}
	got := u.Marshal()
	if len(got) != 96 {
		t.Fatalf("len(Marshal()) = %d, want 96", len(got))
	}
}

func TestDepthConventionDefaultIsStandard(t *testing.T) {
	var conv DepthConvention
	if conv != DepthStandard {
		t.Errorf("zero value DepthConvention = %v, want DepthStandard", conv)
	}
}
