package loader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/h2non/filetype"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImages decodes every document image on the loader's worker pool and blocks until all of
// them are done. The result keeps document order. Any decode failure is a fatal asset error.
//
// Parameters:
//   - doc: the parsed document
//
// Returns:
//   - []common.ImageData: one entry per document image
//   - error: a fatal asset error naming every image that failed
func (l *loader) DecodeImages(doc *gltf.Document) ([]common.ImageData, error) {
	if doc == nil || len(doc.Images) == 0 {
		return nil, nil
	}

	pool, err := l.workers()
	if err != nil {
		return nil, common.NewAssetError("image", err)
	}

	results := make([]common.ImageData, len(doc.Images))
	errs := make([]error, len(doc.Images))

	// The pool has no per-batch wait, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	for i := range doc.Images {
		wg.Add(1)
		idx := i
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := decodeImage(doc, idx)
				if err != nil {
					errs[idx] = fmt.Errorf("image %d: %w", idx, err)
					return nil, nil
				}
				if l.documentSamplers {
					img.Sampler = documentSampler(doc, idx)
				}
				results[idx] = img
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, common.NewAssetError("image", err)
	}
	for _, img := range results {
		l.log.Debug("image decoded",
			zap.String("name", img.Name),
			zap.String("source", img.SourceFormat),
			zap.Stringer("format", img.Format),
			zap.Uint32("width", img.Width),
			zap.Uint32("height", img.Height),
		)
	}
	return results, nil
}

// decodeImage resolves the encoded bytes of one document image and decodes them.
func decodeImage(doc *gltf.Document, index int) (common.ImageData, error) {
	src := doc.Images[index]
	if src == nil {
		return common.ImageData{}, errors.New("nil image")
	}
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("image_%d", index)
	}

	encoded, err := imageBytes(doc, src)
	if err != nil {
		return common.ImageData{}, err
	}
	if !filetype.IsImage(encoded) {
		kind, _ := filetype.Match(encoded)
		return common.ImageData{}, fmt.Errorf("%q is not an image (detected %s)", name, kind.Extension)
	}
	decoded, format, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return common.ImageData{}, fmt.Errorf("decode %q: %w", name, err)
	}

	out := toImageData(decoded)
	out.Name = name
	out.SourceFormat = format
	return out, nil
}

// imageBytes returns the encoded bytes of an image stored in a buffer view or a data URI.
func imageBytes(doc *gltf.Document, img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		bvIdx := *img.BufferView
		if bvIdx < 0 || bvIdx >= len(doc.BufferViews) || doc.BufferViews[bvIdx] == nil {
			return nil, fmt.Errorf("buffer view %d out of range", bvIdx)
		}
		bv := doc.BufferViews[bvIdx]
		if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) || doc.Buffers[bv.Buffer] == nil {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		data := doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if bv.ByteLength <= 0 || end > len(data) {
			return nil, fmt.Errorf("buffer view %d [%d:%d] exceeds buffer of %d bytes", bvIdx, bv.ByteOffset, end, len(data))
		}
		return data[bv.ByteOffset:end], nil
	}
	if img.IsEmbeddedResource() {
		return img.MarshalData()
	}
	return nil, fmt.Errorf("external image %q not supported", img.URI)
}

// toImageData classifies a decoded image into a pixel format and packs its pixels tightly.
// Opaque YCbCr (JPEG) becomes RGB8; 8-bit images with alpha or a palette become straight RGBA8.
// Grey, 16-bit and CMYK images are reported as PixelFormatUnknown with no pixels.
func toImageData(img image.Image) common.ImageData {
	b := img.Bounds()
	out := common.ImageData{Width: uint32(b.Dx()), Height: uint32(b.Dy())}

	switch src := img.(type) {
	case *image.YCbCr:
		out.Format = common.PixelFormatRGB8
		out.Pixels = make([]byte, 0, b.Dx()*b.Dy()*3)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := src.YCbCrAt(x, y)
				r, g, bl := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				out.Pixels = append(out.Pixels, r, g, bl)
			}
		}
	case *image.NRGBA:
		out.Format = common.PixelFormatRGBA8
		out.Pixels = tightRows(src.Pix, src.Stride, b.Dx()*4, b.Dy(), src.PixOffset(b.Min.X, b.Min.Y))
	case *image.RGBA, *image.Paletted, *image.NYCbCrA:
		// Converting through NRGBA un-premultiplies alpha and expands palettes.
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		out.Format = common.PixelFormatRGBA8
		out.Pixels = dst.Pix
	default:
		out.Format = common.PixelFormatUnknown
	}
	return out
}

// tightRows copies rowBytes out of every stride-spaced row starting at offset.
func tightRows(pix []byte, stride, rowBytes, rows, offset int) []byte {
	out := make([]byte, 0, rowBytes*rows)
	for y := 0; y < rows; y++ {
		start := offset + y*stride
		out = append(out, pix[start:start+rowBytes]...)
	}
	return out
}

// documentSampler maps the sampler of the first texture using image index to staging data.
// It returns nil when no texture with a sampler references the image.
func documentSampler(doc *gltf.Document, imageIndex int) *common.SamplerStagingData {
	for _, tex := range doc.Textures {
		if tex == nil || tex.Source == nil || *tex.Source != imageIndex || tex.Sampler == nil {
			continue
		}
		if *tex.Sampler < 0 || *tex.Sampler >= len(doc.Samplers) || doc.Samplers[*tex.Sampler] == nil {
			return nil
		}
		return samplerToStagingData(doc.Samplers[*tex.Sampler])
	}
	return nil
}

// samplerToStagingData converts a glTF sampler into sampler staging data. Unset filters stay
// linear and unset wrap modes stay repeat, as glTF specifies.
func samplerToStagingData(s *gltf.Sampler) *common.SamplerStagingData {
	result := &common.SamplerStagingData{
		AddressModeU:  wrapToAddressMode(s.WrapS),
		AddressModeV:  wrapToAddressMode(s.WrapT),
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
	if s.MagFilter == gltf.MagNearest {
		result.MagFilter = wgpu.FilterModeNearest
	}
	if s.MinFilter == gltf.MinNearest {
		result.MinFilter = wgpu.FilterModeNearest
	}
	return result
}

// wrapToAddressMode converts a glTF wrap mode to a wgpu AddressMode.
func wrapToAddressMode(wrap gltf.WrappingMode) wgpu.AddressMode {
	switch wrap {
	case gltf.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltf.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
