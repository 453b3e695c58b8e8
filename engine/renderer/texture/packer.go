package texture

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// TextureFormat is the GPU format of every packed texture.
const TextureFormat = wgpu.TextureFormatRGBA8UnormSrgb

// TextureSet holds exactly MaxTextures texture, view and sampler triples. The first Loaded slots
// hold document images; the rest hold a 1x1 white placeholder.
type TextureSet struct {
	Textures [MaxTextures]gpu.Texture
	Views    [MaxTextures]gpu.TextureView
	Samplers [MaxTextures]gpu.Sampler
	Loaded   int
}

// Release frees every texture, view and sampler in the set.
func (s *TextureSet) Release() {
	for i := range MaxTextures {
		gpu.ReleaseAll(s.Views[i], s.Samplers[i], s.Textures[i])
		s.Views[i], s.Samplers[i], s.Textures[i] = nil, nil, nil
	}
}

// packer carries the Pack configuration.
type packer struct {
	device gpu.GraphicsDevice
	queue  gpu.CommandQueue
	log    *zap.Logger
	label  string
}

// DefaultSampler is the sampler configuration used for placeholders and for images without a
// document sampler: clamp-to-edge addressing with linear filtering.
var DefaultSampler = common.SamplerStagingData{
	AddressModeU:  wgpu.AddressModeClampToEdge,
	AddressModeV:  wgpu.AddressModeClampToEdge,
	AddressModeW:  wgpu.AddressModeClampToEdge,
	MagFilter:     wgpu.FilterModeLinear,
	MinFilter:     wgpu.FilterModeLinear,
	MipmapFilter:  wgpu.MipmapFilterModeNearest,
	LodMinClamp:   0,
	LodMaxClamp:   32,
	MaxAnisotropy: 1,
}

// Pack uploads the first MaxTextures images and fills the remaining slots with placeholders.
// Images past MaxTextures are dropped with a warning. Rows are uploaded with a PaddedRowBytes
// pitch. On failure every object created so far is released.
//
// Parameters:
//   - device: the shared graphics device
//   - queue: the shared command queue
//   - images: the decoded images in document order
//   - options: a variadic list of PackerBuilderOption functions
//
// Returns:
//   - *TextureSet: the full texture set
//   - error: a fatal asset error for unsupported pixels, or a fatal resource error for GPU failures
func Pack(device gpu.GraphicsDevice, queue gpu.CommandQueue, images []common.ImageData, options ...PackerBuilderOption) (*TextureSet, error) {
	p := &packer{
		device: device,
		queue:  queue,
		log:    zap.NewNop(),
		label:  "Material",
	}
	for _, opt := range options {
		opt(p)
	}

	if len(images) > MaxTextures {
		p.log.Warn("dropping images beyond the texture set capacity",
			zap.Int("images", len(images)),
			zap.Int("capacity", MaxTextures),
		)
		images = images[:MaxTextures]
	}

	set := &TextureSet{}
	for i, img := range images {
		if err := p.packImage(set, i, img); err != nil {
			set.Release()
			return nil, err
		}
		set.Loaded++
	}
	for i := len(images); i < MaxTextures; i++ {
		if err := p.packPlaceholder(set, i); err != nil {
			set.Release()
			return nil, err
		}
	}
	return set, nil
}

func (p *packer) packImage(set *TextureSet, slot int, img common.ImageData) error {
	pixels, err := Normalize(img)
	if err != nil {
		return err
	}
	padded := PadRows(pixels, img.Width, img.Height)
	label := fmt.Sprintf("%s Texture %d", p.label, slot)
	if err := p.upload(set, slot, label, padded, img.Width, img.Height, PaddedRowBytes(img.Width)); err != nil {
		return err
	}

	samplerData := DefaultSampler
	if img.Sampler != nil {
		samplerData = *img.Sampler
	}
	return p.createSampler(set, slot, label, samplerData)
}

func (p *packer) packPlaceholder(set *TextureSet, slot int) error {
	label := fmt.Sprintf("%s Placeholder %d", p.label, slot)
	if err := p.upload(set, slot, label, []byte{255, 255, 255, 255}, 1, 1, 4); err != nil {
		return err
	}
	return p.createSampler(set, slot, label, DefaultSampler)
}

func (p *packer) upload(set *TextureSet, slot int, label string, data []byte, width, height, bytesPerRow uint32) error {
	size := wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	tex, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        TextureFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return common.NewResourceError(label, err)
	}
	set.Textures[slot] = tex

	err = p.queue.WriteTexture(
		&gpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: height,
		},
		&size,
	)
	if err != nil {
		return common.NewResourceError(label, err)
	}

	view, err := tex.CreateView()
	if err != nil {
		return common.NewResourceError(label, err)
	}
	set.Views[slot] = view
	return nil
}

func (p *packer) createSampler(set *TextureSet, slot int, label string, data common.SamplerStagingData) error {
	samp, err := p.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  data.AddressModeU,
		AddressModeV:  data.AddressModeV,
		AddressModeW:  data.AddressModeW,
		MagFilter:     data.MagFilter,
		MinFilter:     data.MinFilter,
		MipmapFilter:  data.MipmapFilter,
		LodMinClamp:   data.LodMinClamp,
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, DefaultSampler.LodMaxClamp),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, DefaultSampler.MaxAnisotropy),
	})
	if err != nil {
		return common.NewResourceError(label+" Sampler", err)
	}
	set.Samplers[slot] = samp
	return nil
}
