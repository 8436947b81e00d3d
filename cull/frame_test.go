package cull

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kestrelgpu/atlascore/common"
)

func TestDispatchCount(t *testing.T) {
	cases := []struct {
		n    uint32
		want uint32
	}{
		{0, 0},
		{1, 1},
		{64, 1},
		{65, 2},
		{128, 2},
		{129, 3},
	}
	for _, c := range cases {
		if got := DispatchCount(c.n); got != c.want {
			t.Errorf("DispatchCount(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

// sphereCulled mirrors cullInstances' per-plane test (§4.5 step 4c) in plain
// Go, so the frustum-plane math that the compute kernel executes on-device
// can be exercised host-side without a GPU.
func sphereCulled(frustum common.Frustum, center mgl32.Vec3, radius float32) bool {
	for _, p := range frustum.Planes {
		n := mgl32.Vec3{p.Normal[0], p.Normal[1], p.Normal[2]}
		signedDistance := n.Dot(center) + p.Distance
		if signedDistance < -radius {
			return true
		}
	}
	return false
}

// perspectiveFrustum builds its view-projection with common.Perspective and
// common.LookAt, not mgl32.Perspective — the former matches this pipeline's
// WebGPU ([0,1] clip-z) convention, which is what ExtractFrustumFromMatrix's
// near-plane formula (row2, no row3 term) assumes. Using mgl32's OpenGL
// ([-1,1] clip-z) projection here would silently mask a near-plane bug since
// the two conventions only disagree on that one plane.
func perspectiveFrustum(t *testing.T) common.Frustum {
	t.Helper()
	var proj, view, viewProj [16]float32
	common.Perspective(proj[:], mgl32.DegToRad(90), 1.0, 0.1, 100.0)
	common.LookAt(view[:], 0, 0, 0, 0, 0, 1, 0, 1, 0)
	common.Mul4(viewProj[:], proj[:], view[:])
	return common.ExtractFrustumFromMatrix(viewProj[:])
}

// S3: camera at the origin looking along +Z; an instance behind the camera
// is culled, one in front survives.
func TestCullSoundnessS3(t *testing.T) {
	frustum := perspectiveFrustum(t)

	if sphereCulled(frustum, mgl32.Vec3{0, 0, 10}, 0.5) {
		t.Error("instance in front of camera should not be culled")
	}
	if !sphereCulled(frustum, mgl32.Vec3{0, 0, -10}, 0.5) {
		t.Error("instance behind camera should be culled")
	}
}

// S4: a large sphere (radius 50) at S3's visible center (0,0,10) reaches past
// the near and side planes but is on the inside of every plane test, so it
// must survive.
func TestCullSoundnessS4(t *testing.T) {
	frustum := perspectiveFrustum(t)

	if sphereCulled(frustum, mgl32.Vec3{0, 0, 10}, 50) {
		t.Error("large sphere overlapping the frustum should not be culled")
	}
}

// Property 6, near-plane boundary: a sphere entirely beyond the near plane
// (z=0.1) survives, one entirely between the camera and the near plane is
// culled. This is the one plane whose extraction formula differs from the
// other five (row2 only, no row3 term, per the WebGPU/D3D clip-z convention)
// and so needs its own direct case rather than relying on S3/S4's probes at
// z=±10.
func TestCullSoundnessNearPlaneBoundary(t *testing.T) {
	frustum := perspectiveFrustum(t)

	if sphereCulled(frustum, mgl32.Vec3{0, 0, 1.0}, 0.05) {
		t.Error("sphere well past the near plane should not be culled")
	}
	if !sphereCulled(frustum, mgl32.Vec3{0, 0, 0.05}, 0.02) {
		t.Error("sphere entirely between the camera and the near plane should be culled")
	}
}

func TestUniformMarshalSize(t *testing.T) {
	u := NewUniform(common.Frustum{}, 10, 3)
	if u.Size() != 112 {
		t.Fatalf("Size() = %d, want 112", u.Size())
	}
	if len(u.Marshal()) != 112 {
		t.Fatalf("len(Marshal()) = %d, want 112", len(u.Marshal()))
	}
}
