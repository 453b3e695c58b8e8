package renderer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/binder"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoAsset is returned by Render before any asset has been loaded.
var ErrNoAsset = errors.New("no asset loaded")

// DepthMode selects which assets are drawn with a depth attachment.
type DepthMode int

const (
	DepthAuto   DepthMode = iota // PBR assets only
	DepthAlways                  // every asset
	DepthNever                   // no asset
)

// ParseDepthMode maps "auto", "always" and "never" to a DepthMode. Anything else is DepthAuto.
func ParseDepthMode(mode string) DepthMode {
	switch strings.ToLower(mode) {
	case "always":
		return DepthAlways
	case "never":
		return DepthNever
	default:
		return DepthAuto
	}
}

// AssetRenderer runs the whole chain for an asset once and caches the result by content hash.
// After a load the per-frame path only uploads the camera and light uniforms and draws.
type AssetRenderer struct {
	mu sync.Mutex

	device  gpu.GraphicsDevice
	queue   gpu.CommandQueue
	surface gpu.PresentationSurface
	program *shader.Program

	loader     loader.Loader
	ownsLoader bool
	cache      *AssetCache
	frames     FrameRenderer
	depth      *DepthTarget
	depthMode  DepthMode
	clear      *wgpu.Color

	camera      camera.Camera
	light       light.Light
	modelMatrix mgl32.Mat4

	width, height uint32
	current       *CachedAsset

	log *zap.Logger
}

// NewAssetRenderer creates an AssetRenderer over the shared device, queue and surface. The
// program is borrowed and must outlive the renderer.
//
// Parameters:
//   - device: the shared graphics device
//   - queue: the shared command queue
//   - surface: the configured presentation surface
//   - program: the compiled shader program
//   - opts: functional options
//
// Returns:
//   - *AssetRenderer: the renderer
func NewAssetRenderer(device gpu.GraphicsDevice, queue gpu.CommandQueue, surface gpu.PresentationSurface, program *shader.Program, opts ...AssetRendererOption) *AssetRenderer {
	r := &AssetRenderer{
		device:      device,
		queue:       queue,
		surface:     surface,
		program:     program,
		modelMatrix: mgl32.Ident4(),
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		r.loader = loader.NewLoader(loader.WithLogger(r.log))
		r.ownsLoader = true
	}
	if r.cache == nil {
		r.cache = NewAssetCache()
	}
	if r.camera == nil {
		r.camera = camera.NewCamera(camera.WithController(camera.NewCameraController()))
	}
	if r.light == nil {
		r.light = light.NewLight()
	}
	if r.width > 0 && r.height > 0 {
		r.camera.SetAspect(float32(r.width) / float32(r.height))
	}
	frameOpts := []RendererBuilderOption{WithLogger(r.log)}
	if r.clear != nil {
		frameOpts = append(frameOpts, WithClearColor(*r.clear))
	}
	r.frames = NewFrameRenderer(device, queue, surface, frameOpts...)
	return r
}

// Load makes the asset in data current. A cached asset with the same content hash is reused
// without parsing; otherwise the asset is parsed, built and cached.
//
// Parameters:
//   - data: the raw GLB or embedded glTF bytes
//
// Returns:
//   - *CachedAsset: the current asset
//   - error: a fatal asset or resource error; the previous asset stays current
func (r *AssetRenderer) Load(data []byte) (*CachedAsset, error) {
	return r.load("asset", data)
}

// LoadFile reads path and loads its contents.
//
// Parameters:
//   - path: the .glb or .gltf file
//
// Returns:
//   - *CachedAsset: the current asset
//   - error: error if the file cannot be read or loading fails
func (r *AssetRenderer) LoadFile(path string) (*CachedAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.load(filepath.Base(path), data)
}

// Reload loads data under the current asset's name. It is the hot-reload path: an unchanged
// file hits the cache and keeps the current asset.
//
// Parameters:
//   - data: the new container bytes
//
// Returns:
//   - *CachedAsset: the current asset
//   - error: error if loading fails; the previous asset stays current
func (r *AssetRenderer) Reload(data []byte) (*CachedAsset, error) {
	r.mu.Lock()
	previous := r.current
	r.mu.Unlock()

	name := "asset"
	if previous != nil {
		name = previous.Asset.Name
	}
	entry, err := r.load(name, data)
	if err != nil {
		return nil, err
	}
	if previous != nil && previous != entry {
		r.log.Info("asset reloaded", zap.String("previous", previous.Hash()), zap.String("current", entry.Hash()))
	}
	return entry, nil
}

func (r *AssetRenderer) load(name string, data []byte) (*CachedAsset, error) {
	hash := loader.ContentHash(data)
	if entry, ok := r.cache.Get(hash); ok {
		r.log.Debug("asset cache hit", zap.String("asset", name), zap.String("hash", hash))
		return entry, r.activate(entry)
	}

	asset, err := r.loader.Load(data)
	if err != nil {
		return nil, err
	}
	asset.Name = name

	entry, err := r.build(asset)
	if err != nil {
		return nil, err
	}
	r.cache.Put(entry)
	return entry, r.activate(entry)
}

// build runs the GPU side of the chain for asset. Partially built objects are released on failure.
func (r *AssetRenderer) build(asset *loader.Asset) (*CachedAsset, error) {
	entry := &CachedAsset{ID: uuid.New(), Asset: asset}
	label := fmt.Sprintf("%s %s", asset.Name, entry.ID.String()[:8])

	m, err := model.Upload(r.device, r.queue, asset.Mesh, model.WithName(label))
	if err != nil {
		return nil, err
	}
	entry.Model = m

	entry.Materials = material.Build(asset.Document, asset.IsPBR)

	entry.Textures, err = texture.Pack(r.device, r.queue, asset.Images,
		texture.WithLabel(label),
		texture.WithLogger(r.log),
	)
	if err != nil {
		entry.Release()
		return nil, err
	}

	bindOpts := []binder.BinderBuilderOption{
		binder.WithColorFormat(r.surface.Format()),
		binder.WithLogger(r.log),
	}
	switch r.depthMode {
	case DepthAlways:
		bindOpts = append(bindOpts, binder.WithDepthTest(true))
	case DepthNever:
		bindOpts = append(bindOpts, binder.WithDepthTest(false))
	}
	entry.Bindings, err = binder.Bind(r.device, r.queue, r.program, entry.Materials, entry.Textures, bindOpts...)
	if err != nil {
		entry.Release()
		return nil, err
	}

	r.log.Info("asset built",
		zap.String("asset", asset.Name),
		zap.String("id", entry.ID.String()),
		zap.Stringer("variant", entry.Bindings.Variant),
		zap.Uint32("indices", m.IndexCount()),
		zap.Float32("bounding_radius", m.BoundingRadius()),
	)
	return entry, nil
}

// activate makes entry current, attaches depth when its pipeline tests depth and frames the
// camera on it. The previously current asset is evicted from the cache, so at most one built
// asset stays resident.
func (r *AssetRenderer) activate(entry *CachedAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.Bindings.DepthTest {
		if r.depth == nil {
			d, err := NewDepthTarget(r.device, r.width, r.height)
			if err != nil {
				return err
			}
			r.depth = d
		}
		r.frames.SetDepth(r.depth)
	} else {
		r.frames.SetDepth(nil)
	}

	r.frameCamera(entry)
	previous := r.current
	r.current = entry
	if previous != nil && previous != entry {
		r.cache.Invalidate(previous.Hash())
	}
	return nil
}

// Reframe moves the camera back to the default view of the current asset.
func (r *AssetRenderer) Reframe() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.frameCamera(r.current)
	}
}

// frameCamera fits the bounding sphere of entry into view. Caller holds mu.
func (r *AssetRenderer) frameCamera(entry *CachedAsset) {
	radius := max(entry.Model.BoundingRadius(), 0.01)
	if ctrl := r.camera.Controller(); ctrl != nil {
		ctrl.Frame(mgl32.Vec3{}, radius)
	}
	r.camera.SetClip(radius*0.01, radius*100)
}

// Render draws one frame of the current asset. The live camera and light uniforms are uploaded
// only once a surface image is available, so a skipped frame leaves them untouched.
//
// Returns:
//   - FrameResult: whether the frame was drawn
//   - error: ErrNoAsset before the first load, or a fatal resource error
func (r *AssetRenderer) Render() (FrameResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return FrameResult{}, ErrNoAsset
	}
	bindings := r.current.Bindings
	frame := r.current.Frame()
	frame.Upload = func() error {
		r.camera.Update()
		if err := bindings.UpdateCamera(r.queue, r.camera.Uniform(r.modelMatrix)); err != nil {
			return err
		}
		return bindings.UpdateLight(r.queue, r.light.Uniform())
	}
	return r.frames.RenderFrame(frame)
}

// Resize updates the camera aspect ratio and the depth target for a new surface size. The
// surface itself is reconfigured by its owner. Zero sizes are ignored.
//
// Parameters:
//   - width: the new surface width in pixels
//   - height: the new surface height in pixels
//
// Returns:
//   - error: a fatal resource error if the depth target could not be recreated
func (r *AssetRenderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width, r.height = width, height
	r.camera.SetAspect(float32(width) / float32(height))
	if r.depth != nil {
		return r.depth.Resize(r.device, width, height)
	}
	return nil
}

// Invalidate drops the cache entry for hash. If it is the current asset nothing is drawn until
// the next load.
func (r *AssetRenderer) Invalidate(hash string) bool {
	r.mu.Lock()
	if r.current != nil && r.current.Hash() == hash {
		r.current = nil
	}
	r.mu.Unlock()
	return r.cache.Invalidate(hash)
}

// Current returns the current asset, or nil.
func (r *AssetRenderer) Current() *CachedAsset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Camera returns the camera driving the camera uniform.
func (r *AssetRenderer) Camera() camera.Camera {
	return r.camera
}

// Light returns the light driving the light uniform.
func (r *AssetRenderer) Light() light.Light {
	return r.light
}

// SetModelMatrix sets the model matrix applied to the asset.
func (r *AssetRenderer) SetModelMatrix(m mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modelMatrix = m
}

// Release frees every cached asset and the depth target, and closes the loader when the
// renderer created it. The program, device, queue and surface are borrowed and left alone.
func (r *AssetRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ownsLoader {
		r.loader.Close()
	}
	r.current = nil
	r.cache.Release()
	r.frames.SetDepth(nil)
	if r.depth != nil {
		r.depth.Release()
		r.depth = nil
	}
}
