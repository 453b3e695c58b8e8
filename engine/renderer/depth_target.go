package renderer

import (
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthTarget is a depth texture sized to the surface. It is recreated when the surface size changes.
type DepthTarget struct {
	texture       gpu.Texture
	view          gpu.TextureView
	width, height uint32
}

// NewDepthTarget creates a depth texture of the given size in pipeline.DepthFormat.
//
// Parameters:
//   - device: the shared graphics device
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - *DepthTarget: the created target
//   - error: an error matching common.ErrFatalResource if the texture or view could not be created
func NewDepthTarget(device gpu.GraphicsDevice, width, height uint32) (*DepthTarget, error) {
	d := &DepthTarget{}
	if err := d.create(device, width, height); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DepthTarget) create(device gpu.GraphicsDevice, width, height uint32) error {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              max(width, 1),
			Height:             max(height, 1),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pipeline.DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return common.NewResourceError("Depth Texture", err)
	}
	view, err := tex.CreateView()
	if err != nil {
		tex.Release()
		return common.NewResourceError("Depth Texture", err)
	}
	d.Release()
	d.texture, d.view = tex, view
	d.width, d.height = max(width, 1), max(height, 1)
	return nil
}

// Resize recreates the texture when the size differs from the current one. Zero sizes, as
// reported for minimized windows, are ignored.
//
// Parameters:
//   - device: the shared graphics device
//   - width: the new surface width in pixels
//   - height: the new surface height in pixels
//
// Returns:
//   - error: an error matching common.ErrFatalResource if recreation fails; the old texture is kept
func (d *DepthTarget) Resize(device gpu.GraphicsDevice, width, height uint32) error {
	if width == 0 || height == 0 || (width == d.width && height == d.height) {
		return nil
	}
	return d.create(device, width, height)
}

// View returns the depth attachment view.
func (d *DepthTarget) View() gpu.TextureView {
	return d.view
}

// Size returns the current texture size.
func (d *DepthTarget) Size() (width, height uint32) {
	return d.width, d.height
}

// Release frees the texture and its view.
func (d *DepthTarget) Release() {
	gpu.ReleaseAll(d.view, d.texture)
	d.view, d.texture = nil, nil
}
