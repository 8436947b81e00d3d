// Package cull is the C5 Culling Driver: it extracts world-space frustum
// planes from a view-projection matrix, uploads them in a small uniform,
// and dispatches the resetCounts/cullInstances compute kernels on a shared
// command encoder each frame.
package cull

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/kestrelgpu/atlascore/common"
)

//go:embed assets/culling_uniform.wgsl
var UniformSource string

//go:embed assets/cull.wgsl
var KernelSource string

// WorkgroupSize is the fixed workgroup size both compute kernels declare.
const WorkgroupSize = 64

// Uniform is the host-side mirror of CullingUniform (culling_uniform.wgsl):
// six plane equations plus dispatch counts. 112 bytes.
type Uniform struct {
	Planes            [6][4]float32 // offset  0, {n.x, n.y, n.z, d} per plane
	TotalInstances    uint32        // offset 96
	DrawCommandCount  uint32        // offset 100
	pad0              uint32        // offset 104
	pad1              uint32        // offset 108
}

// NewUniform packs a frustum and the current dispatch counts into a Uniform.
func NewUniform(frustum common.Frustum, totalInstances, drawCommandCount uint32) Uniform {
	var u Uniform
	for i, p := range frustum.Planes {
		u.Planes[i] = [4]float32{p.Normal[0], p.Normal[1], p.Normal[2], p.Distance}
	}
	u.TotalInstances = totalInstances
	u.DrawCommandCount = drawCommandCount
	return u
}

func (u Uniform) Size() int {
	return 112
}

func (u Uniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	for i, plane := range u.Planes {
		off := i * 16
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(plane[0]))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], math.Float32bits(plane[1]))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], math.Float32bits(plane[2]))
		binary.LittleEndian.PutUint32(buf[off+12:off+16], math.Float32bits(plane[3]))
	}
	binary.LittleEndian.PutUint32(buf[96:100], u.TotalInstances)
	binary.LittleEndian.PutUint32(buf[100:104], u.DrawCommandCount)
	binary.LittleEndian.PutUint32(buf[104:108], u.pad0)
	binary.LittleEndian.PutUint32(buf[108:112], u.pad1)
	return buf
}

// DispatchCount returns ceil(n / WorkgroupSize), clamped to zero when n is
// zero so callers can skip dispatch entirely (§4.5's failure model: no
// error surface, the host guards zero totals by not dispatching).
func DispatchCount(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return (n + WorkgroupSize - 1) / WorkgroupSize
}
