package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kestrelgpu/atlascore/common"
	"github.com/kestrelgpu/atlascore/engine/window"
)

// freeFlyCamera is the demo's inlined stand-in for the windowing/camera
// controls the core itself never provides (§1 Non-goals): WASD pans along
// the view axes, Q/E move vertically, and the mouse looks around while the
// middle button is held.
type freeFlyCamera struct {
	position    [3]float32
	yaw, pitch  float32
	aspect      float32
	moveSpeed   float32
	lookSpeed   float32
	forward     bool
	backward    bool
	strafeLeft  bool
	strafeRight bool
	ascend      bool
	descend     bool
	looking     bool
	lastX       int32
	lastY       int32
}

func newFreeFlyCamera(aspect float32) *freeFlyCamera {
	return &freeFlyCamera{
		position:  [3]float32{0, 15, -40},
		pitch:     -0.3,
		aspect:    aspect,
		moveSpeed: 20.0,
		lookSpeed: 0.003,
	}
}

func (c *freeFlyCamera) advance(dt float32) {
	dir := c.direction()
	right := mgl32.Vec3{-dir[2], 0, dir[0]}

	var move mgl32.Vec3
	if c.forward {
		move = move.Add(dir)
	}
	if c.backward {
		move = move.Sub(dir)
	}
	if c.strafeRight {
		move = move.Add(right)
	}
	if c.strafeLeft {
		move = move.Sub(right)
	}
	if c.ascend {
		move = move.Add(mgl32.Vec3{0, 1, 0})
	}
	if c.descend {
		move = move.Sub(mgl32.Vec3{0, 1, 0})
	}
	if move.Len() > 0 {
		move = move.Normalize().Mul(c.moveSpeed * dt)
		c.position[0] += move.X()
		c.position[1] += move.Y()
		c.position[2] += move.Z()
	}
}

func (c *freeFlyCamera) direction() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.pitch)) * math.Sin(float64(c.yaw))),
		float32(math.Sin(float64(c.pitch))),
		float32(math.Cos(float64(c.pitch)) * math.Cos(float64(c.yaw))),
	}
}

// viewProjection builds the combined matrix with common.Perspective and
// common.LookAt rather than mgl32's equivalents: mgl32.Perspective produces
// an OpenGL-convention ([-1,1] clip-z) matrix, while this pipeline is wgpu
// ([0,1] clip-z) throughout, matching common.Perspective's documented
// "WebGPU clip space [0, 1]" output and the near-plane formula in
// common.ExtractFrustumFromMatrix. Feeding the wrong convention into a
// WebGPU render pipeline clips away near-field geometry.
func (c *freeFlyCamera) viewProjection() [16]float32 {
	eye := mgl32.Vec3{c.position[0], c.position[1], c.position[2]}
	dir := c.direction()
	center := eye.Add(dir)

	var view, proj, vp [16]float32
	common.LookAt(view[:], eye.X(), eye.Y(), eye.Z(), center.X(), center.Y(), center.Z(), 0, 1, 0)
	common.Perspective(proj[:], 60*math.Pi/180, c.aspect, 0.1, 2000)
	common.Mul4(vp[:], proj[:], view[:])
	return vp
}

// wireInput registers the window callbacks driving the free-fly camera,
// grounded on the teacher's orbit-camera input wiring in examples/many_cubes.go
// but adapted to WASD/Q/E fly controls and mouse-look instead of orbit-drag.
func wireInput(win window.Window, cam *freeFlyCamera) {
	win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyW:
			cam.forward = true
		case common.KeyS:
			cam.backward = true
		case common.KeyA:
			cam.strafeLeft = true
		case common.KeyD:
			cam.strafeRight = true
		case common.KeyQ:
			cam.descend = true
		case common.KeyE:
			cam.ascend = true
		}
	})
	win.SetKeyUpCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyW:
			cam.forward = false
		case common.KeyS:
			cam.backward = false
		case common.KeyA:
			cam.strafeLeft = false
		case common.KeyD:
			cam.strafeRight = false
		case common.KeyQ:
			cam.descend = false
		case common.KeyE:
			cam.ascend = false
		}
	})
	win.SetMiddleMouseDownCallback(func(x, y int32) {
		cam.looking = true
		cam.lastX, cam.lastY = x, y
	})
	win.SetMiddleMouseUpCallback(func(_, _ int32) {
		cam.looking = false
	})
	win.SetMouseMoveCallback(func(x, y int32) {
		if !cam.looking {
			return
		}
		dx := float32(x - cam.lastX)
		dy := float32(y - cam.lastY)
		cam.yaw += dx * cam.lookSpeed
		cam.pitch -= dy * cam.lookSpeed
		const limit = 1.5
		if cam.pitch > limit {
			cam.pitch = limit
		}
		if cam.pitch < -limit {
			cam.pitch = -limit
		}
		cam.lastX, cam.lastY = x, y
	})
}
