package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/config"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/binder"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-glb/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow records handlers and runs a polling message loop until closed.
type fakeWindow struct {
	mu     sync.Mutex
	closed bool
	title  string

	h window.Handlers
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetHandlers(h window.Handlers)              { w.h = h }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) Size() (int, int)                           { return 320, 240 }

func (w *fakeWindow) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title = title
}

func (w *fakeWindow) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

func (w *fakeWindow) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.closed
}

func (w *fakeWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	deadline := time.Now().Add(5 * time.Second)
	for w.IsRunning() && time.Now().Before(deadline) {
		if w.h.Update != nil {
			w.h.Update()
		}
		time.Sleep(time.Millisecond)
	}
}

func writeAsset(t *testing.T, path string, doc *gltf.Document) {
	t.Helper()
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func triangle(withMaterial bool) *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	prim := &gltf.Primitive{Attributes: map[string]int{gltf.POSITION: pos}}
	if withMaterial {
		metallic := 0.5
		doc.Materials = []*gltf.Material{{Name: "metal", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			MetallicFactor: &metallic,
		}}}
		prim.Material = gltf.Index(0)
	}
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{prim}}}
	return doc
}

type engineFixture struct {
	dev        *gputest.Device
	surf       *gputest.Surface
	win        *fakeWindow
	r          *renderer.AssetRenderer
	e          *engine
	path       string
	configured [][2]int
}

func newEngineFixture(t *testing.T, mutate func(cfg *config.Config)) *engineFixture {
	t.Helper()
	f := &engineFixture{
		dev: gputest.NewDevice(),
		win: &fakeWindow{},
	}
	f.surf = gputest.NewSurface(f.dev, 320, 240)
	program, err := shader.NewDefaultProgram(f.dev)
	require.NoError(t, err)
	f.r = renderer.NewAssetRenderer(f.dev, gputest.NewQueue(), f.surf, program, renderer.WithSurfaceSize(320, 240))
	t.Cleanup(f.r.Release)

	f.path = filepath.Join(t.TempDir(), "tri.glb")
	writeAsset(t, f.path, triangle(false))

	cfg := config.Default()
	cfg.Loader.AssetPath = f.path
	if mutate != nil {
		mutate(cfg)
	}
	eng, err := NewEngine(cfg,
		WithWindow(f.win),
		WithRenderer(f.r, func(w, h int) { f.configured = append(f.configured, [2]int{w, h}) }),
	)
	require.NoError(t, err)
	f.e = eng.(*engine)
	return f
}

func TestStepOpensConfiguredAsset(t *testing.T) {
	f := newEngineFixture(t, nil)
	assert.Nil(t, f.r.Current(), "loading waits for the render goroutine")

	require.NoError(t, f.e.step())
	require.NotNil(t, f.r.Current())
	assert.Equal(t, "tri.glb", f.r.Current().Asset.Name)
	assert.Equal(t, 1, f.surf.Presents)

	f.e.update()
	assert.Equal(t, "glbview - tri.glb", f.win.Title())
	assert.True(t, f.win.IsRunning())
}

func TestStepWithoutAssetIdles(t *testing.T) {
	f := newEngineFixture(t, func(cfg *config.Config) { cfg.Loader.AssetPath = "" })
	require.NoError(t, f.e.step())
	assert.Nil(t, f.r.Current())
	assert.Equal(t, 0, f.surf.Presents)
}

func TestResizeIsAppliedOnRenderGoroutine(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.win.h.Resize(100, 100)
	f.win.h.Resize(200, 100)
	assert.Empty(t, f.configured)

	require.NoError(t, f.e.step())
	assert.Equal(t, [][2]int{{200, 100}}, f.configured, "only the newest size is applied")
	assert.InDelta(t, 2.0, f.r.Camera().Lens().Aspect, 1e-6)

	f.win.h.Resize(0, 0)
	require.NoError(t, f.e.step())
	assert.Len(t, f.configured, 1, "minimized windows are ignored")
}

func TestKeyCommands(t *testing.T) {
	f := newEngineFixture(t, nil)
	require.NoError(t, f.e.step())
	first := f.r.Current()

	writeAsset(t, f.path, triangle(true))
	f.win.h.KeyDown(common.KeyR)
	require.NoError(t, f.e.step())
	assert.NotSame(t, first, f.r.Current())
	assert.Equal(t, binder.VariantPBR, f.r.Current().Bindings.Variant)

	ctrl := f.r.Camera().Controller()
	radius := ctrl.Radius()
	f.win.h.Scroll(1)
	assert.Less(t, ctrl.Radius(), radius)
	f.win.h.KeyDown(common.KeySpace)
	require.NoError(t, f.e.step())
	assert.InDelta(t, radius, ctrl.Radius(), 1e-5)

	assert.False(t, f.e.profiler.Enabled())
	f.win.h.KeyDown(common.KeyP)
	assert.True(t, f.e.profiler.Enabled())
}

func TestOpenFailureKeepsCurrent(t *testing.T) {
	f := newEngineFixture(t, nil)
	require.NoError(t, f.e.step())
	current := f.r.Current()

	f.win.h.Drop([]string{filepath.Join(t.TempDir(), "missing.glb")})
	require.NoError(t, f.e.step())
	assert.Same(t, current, f.r.Current())
	assert.Equal(t, f.path, f.e.assetPath)
}

func TestDropOpensNewAsset(t *testing.T) {
	f := newEngineFixture(t, nil)
	require.NoError(t, f.e.step())

	other := filepath.Join(t.TempDir(), "red.glb")
	writeAsset(t, other, triangle(true))
	f.win.h.Drop([]string{other})
	require.NoError(t, f.e.step())
	assert.Equal(t, "red.glb", f.r.Current().Asset.Name)
	assert.Equal(t, other, f.e.assetPath)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	f := newEngineFixture(t, func(cfg *config.Config) {
		cfg.Watch.Enabled = true
		cfg.Watch.DebounceMS = 10
	})
	t.Cleanup(f.e.release)
	require.NoError(t, f.e.step())
	require.NotNil(t, f.e.watcher)

	writeAsset(t, f.path, triangle(true))
	require.Eventually(t, func() bool {
		if err := f.e.step(); err != nil {
			return false
		}
		return f.r.Current().Bindings.Variant == binder.VariantPBR
	}, 3*time.Second, 20*time.Millisecond)
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.e.profiler = profiler.NewProfiler(profiler.WithEnabled(true))

	go func() {
		for f.r.Current() == nil {
			time.Sleep(time.Millisecond)
		}
		_ = f.win.Close()
	}()

	require.NoError(t, f.e.Run())
	assert.GreaterOrEqual(t, f.surf.Presents, 1)
}

func TestRunReturnsFatalResourceError(t *testing.T) {
	f := newEngineFixture(t, nil)
	require.NoError(t, f.e.step())
	f.dev.FailOn("CreateCommandEncoder", assert.AnError)

	err := f.e.Run()
	assert.ErrorIs(t, err, common.ErrFatalResource)
	assert.False(t, f.win.IsRunning(), "quitting closes the window")
}

func TestQuitIsIdempotent(t *testing.T) {
	f := newEngineFixture(t, func(cfg *config.Config) { cfg.Loader.AssetPath = "" })
	f.e.Quit()
	f.e.Quit()
	require.NoError(t, f.e.Run())
}
