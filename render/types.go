// Package render is the C6 Render Driver: a fixed pipeline that, once the
// atlas is Finalized, issues one indirect draw per command into a render
// pass supplied by the caller, reading the remap buffer to resolve which
// transform and identifier apply to each instance slot. The driver does not
// choose the command encoder; cmd/atlasdemo records the culling passes and
// the render pass on two separate encoders, submitted in that order to one
// queue.
package render

import (
	_ "embed"
	"encoding/binary"
	"math"
)

//go:embed assets/render_uniform.wgsl
var UniformSource string

//go:embed assets/render.wgsl
var ShaderSource string

// Uniform is the host-side mirror of RenderUniform (render_uniform.wgsl).
// 96 bytes.
type Uniform struct {
	ViewProjection [16]float32 // offset  0, column-major
	CameraPosition [3]float32  // offset 64
	Selection      uint32      // offset 76, reserved for highlight/picking
	TimeSeconds    float32     // offset 80
	pad0           uint32
	pad1           uint32
	pad2           uint32
}

func (u Uniform) Size() int {
	return 96
}

func (u Uniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	for i, f := range u.ViewProjection {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(u.CameraPosition[0]))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(u.CameraPosition[1]))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(u.CameraPosition[2]))
	binary.LittleEndian.PutUint32(buf[76:80], u.Selection)
	binary.LittleEndian.PutUint32(buf[80:84], math.Float32bits(u.TimeSeconds))
	binary.LittleEndian.PutUint32(buf[84:88], u.pad0)
	binary.LittleEndian.PutUint32(buf[88:92], u.pad1)
	binary.LittleEndian.PutUint32(buf[92:96], u.pad2)
	return buf
}

// DepthConvention picks one of the two legal depth conventions named in
// §4.6. The choice must match the projection matrix the host camera
// produces; flipping one without the other silently produces blank frames.
type DepthConvention int

const (
	// DepthStandard clears to 1.0 and compares Less.
	DepthStandard DepthConvention = iota
	// DepthReversed clears to 0.0 and compares Greater; improves depth
	// precision for scenes with a large far plane, at the cost of requiring
	// a matching reversed-Z projection matrix from the host camera.
	DepthReversed
)
