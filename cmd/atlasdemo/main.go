// Command atlasdemo drives the atlas/cull/render core through a full
// lifecycle: it loads a handful of placeholder meshes (deduplicating
// repeated fingerprints the way a real asset pipeline would), stamps out
// many instances across those meshes, finalizes the pool once, and then
// runs a cull+render frame loop behind a free-fly camera.
//
// Everything in this file is demo scaffolding outside the core's public
// contract: window creation, device/surface setup, mesh generation, and
// camera controls. None of it is exercised by atlas/cull/render's own
// tests.
package main

import (
	"math"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/kestrelgpu/atlascore/atlas"
	"github.com/kestrelgpu/atlascore/cull"
	"github.com/kestrelgpu/atlascore/engine/profiler"
	"github.com/kestrelgpu/atlascore/engine/window"
	"github.com/kestrelgpu/atlascore/render"
)

const (
	meshKinds         = 6
	instancesPerKind  = 4000
	gridSpacing       = 2.5
	capacityVertices  = 1 << 16
	capacityIndices   = 1 << 18
	capacityInstances = uint32(meshKinds*instancesPerKind) + 1
	capacityCommands  = 64
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "atlasdemo",
	})

	runtime.LockOSThread()

	win := window.NewWindow(
		window.WithTitle("atlascore demo — indirect culling and draw"),
		window.WithWidth(1600),
		window.WithHeight(900),
	)

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(win.SurfaceDescriptor())

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
	})
	if err != nil {
		logger.Fatal("request adapter", "err", err)
	}

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 4

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "atlasdemo device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: limits},
	})
	if err != nil {
		logger.Fatal("request device", "err", err)
	}
	queue := device.GetQueue()

	capabilities := surface.GetCapabilities(adapter)
	surfaceFormat := capabilities.Formats[0]
	surface.Configure(adapter, device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      surfaceFormat,
		Width:       uint32(win.Width()),
		Height:      uint32(win.Height()),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	depthTexture, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "atlasdemo depth",
		Size: wgpu.Extent3D{
			Width:              uint32(win.Width()),
			Height:             uint32(win.Height()),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		logger.Fatal("create depth texture", "err", err)
	}
	depthView, err := depthTexture.CreateView(nil)
	if err != nil {
		logger.Fatal("create depth view", "err", err)
	}

	pool, err := atlas.NewPool(device, queue, atlas.Capacities{
		Vertices:  capacityVertices,
		Indices:   capacityIndices,
		Instances: capacityInstances,
		Commands:  capacityCommands,
	}, atlas.WithLabel("Demo"))
	if err != nil {
		logger.Fatal("new atlas pool", "err", err)
	}

	logger.Info("loading placeholder meshes and instances")
	loadScene(logger, pool)

	if err := pool.Finalize(); err != nil {
		logger.Fatal("finalize", "err", err)
	}
	logger.Info("atlas finalized",
		"commands", pool.DrawCommandCount(),
		"instances", pool.InstanceCount())

	cullDriver, err := cull.NewDriver(device, queue, pool, cull.WithLabel("Demo"))
	if err != nil {
		logger.Fatal("new cull driver", "err", err)
	}
	renderDriver, err := render.NewDriver(device, queue, pool, surfaceFormat, render.WithLabel("Demo"))
	if err != nil {
		logger.Fatal("new render driver", "err", err)
	}

	cam := newFreeFlyCamera(float32(win.Width()) / float32(win.Height()))
	wireInput(win, cam)

	prof := profiler.NewProfiler()
	start := time.Now()
	lastFrame := start

	win.SetUpdateCallback(func() {
		now := time.Now()
		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now
		cam.advance(dt)

		viewProj := cam.viewProjection()

		encoder, err := device.CreateCommandEncoder(nil)
		if err != nil {
			logger.Error("create command encoder", "err", err)
			return
		}
		cullDriver.Frame(encoder, viewProj[:], pool)
		computeBuffer, err := encoder.Finish(nil)
		if err != nil {
			logger.Error("finish compute encoder", "err", err)
			return
		}
		queue.Submit(computeBuffer)
		computeBuffer.Release()
		encoder.Release()

		surfaceTexture, err := surface.GetCurrentTexture()
		if err != nil {
			logger.Error("acquire surface texture", "err", err)
			return
		}
		view, err := surfaceTexture.CreateView(nil)
		if err != nil {
			surfaceTexture.Release()
			logger.Error("create surface view", "err", err)
			return
		}

		frameEncoder, err := device.CreateCommandEncoder(nil)
		if err != nil {
			view.Release()
			surfaceTexture.Release()
			logger.Error("create frame encoder", "err", err)
			return
		}

		pass := frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:       view,
					LoadOp:     wgpu.LoadOpClear,
					StoreOp:    wgpu.StoreOpStore,
					ClearValue: wgpu.Color{R: 0.05, G: 0.06, B: 0.08, A: 1.0},
				},
			},
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            depthView,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: renderDriver.DepthClearValue(),
			},
		})

		renderDriver.Render(pass, pool, viewProj, cam.position, float32(now.Sub(start).Seconds()))

		pass.End()
		frameBuffer, err := frameEncoder.Finish(nil)
		if err != nil {
			logger.Error("finish frame encoder", "err", err)
			frameEncoder.Release()
			view.Release()
			surfaceTexture.Release()
			return
		}
		queue.Submit(frameBuffer)
		frameBuffer.Release()
		frameEncoder.Release()
		surface.Present()
		view.Release()
		surfaceTexture.Release()

		if prof.Tick() {
			logger.Debug("stats",
				"draws", renderDriver.Stats.DrawsIssued,
				"resetGroups", cullDriver.Stats.ResetWorkgroups,
				"cullGroups", cullDriver.Stats.CullWorkgroups)
		}
	})

	win.ProcessMessages()

	renderDriver.Dispose()
	cullDriver.Dispose()
	pool.Dispose()
}

// loadScene appends a handful of distinct mesh shapes and then a dense grid
// of instances that reuse them by fingerprint. A local fingerprint cache
// stands in for an asset pipeline's content hash, demonstrating the "same
// fingerprint maps to the same MeshAtlasEntry" contract without the atlas
// itself doing any deduplication.
func loadScene(logger *log.Logger, pool *atlas.Pool) {
	shapes := placeholderShapes()
	cache := make(map[uuid.UUID]atlas.MeshAtlasEntry, len(shapes))
	entries := make([]atlas.MeshAtlasEntry, len(shapes))

	for i, sh := range shapes {
		fingerprint := fingerprintMesh(sh.vertices, sh.indices)
		if cached, ok := cache[fingerprint]; ok {
			entries[i] = cached
			continue
		}
		entry, err := pool.AppendMesh(sh.vertices, sh.indices)
		if err != nil {
			logger.Fatal("append mesh", "shape", i, "err", err)
		}
		cache[fingerprint] = entry
		entries[i] = entry
	}

	rng := rand.New(rand.NewSource(1))
	side := int(math.Ceil(math.Sqrt(float64(len(entries) * instancesPerKind))))

	for kind, entry := range entries {
		transforms := make([]atlas.InstanceTransform, instancesPerKind)
		ids := make([]uint32, instancesPerKind)
		for i := range transforms {
			slot := kind*instancesPerKind + i
			col := slot % side
			row := slot / side
			x := (float32(col) - float32(side)/2) * gridSpacing
			z := (float32(row) - float32(side)/2) * gridSpacing
			y := rng.Float32() * 2.0
			model := mgl32.Translate3D(x, y, z).Mul4(mgl32.HomogRotate3DY(rng.Float32() * 2 * math.Pi))
			transforms[i] = atlas.InstanceTransform{Model: [16]float32(model)}
			ids[i] = uint32(slot)
		}

		start, err := pool.AppendInstances(transforms, ids)
		if err != nil {
			logger.Fatal("append instances", "kind", kind, "err", err)
		}
		if err := pool.RecordCommandInstances(entry.CommandIndex, start, uint32(len(transforms))); err != nil {
			logger.Fatal("record command instances", "kind", kind, "err", err)
		}
	}
}

// fingerprintMesh derives a stable identity for a mesh's raw geometry,
// mirroring how a content-addressed asset pipeline would key its cache.
func fingerprintMesh(vertices []atlas.Vertex, indices []uint32) uuid.UUID {
	raw := make([]byte, 0, len(vertices)*24+len(indices)*4)
	for _, v := range vertices {
		raw = append(raw, v.Marshal()...)
	}
	for _, idx := range indices {
		raw = append(raw, byte(idx), byte(idx>>8), byte(idx>>16), byte(idx>>24))
	}
	return uuid.NewSHA1(uuid.Nil, raw)
}
