// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// MaxTextures is the fixed number of texture slots bound for every asset. Material texture
// references resolve into this range and the texture set always holds exactly this many entries.
const MaxTextures = 16

// PixelFormat describes the channel layout of decoded image pixels before GPU normalization.
type PixelFormat int

const (
	// PixelFormatUnknown is a decoded layout the texture path cannot upload (grey, 16-bit, CMYK, ...).
	PixelFormatUnknown PixelFormat = iota
	// PixelFormatRGB8 is 3 bytes per pixel, 8-bit red, green, blue.
	PixelFormatRGB8
	// PixelFormatRGBA8 is 4 bytes per pixel, 8-bit straight (non-premultiplied) RGBA.
	PixelFormatRGBA8
)

// String returns a readable name for the pixel format, used in logs and errors.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGB8:
		return "R8G8B8"
	case PixelFormatRGBA8:
		return "R8G8B8A8"
	default:
		return "unknown"
	}
}

// BytesPerPixel returns the tightly packed size of one pixel, or 0 for unknown formats.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGB8:
		return 3
	case PixelFormatRGBA8:
		return 4
	default:
		return 0
	}
}

// ImageData holds decoded pixel data for a single document image pending GPU upload.
// Pixels are tightly packed rows (no padding) in the layout described by Format.
type ImageData struct {
	// Name is the document image name, or a generated one when the document leaves it empty.
	Name string
	// Pixels is the tightly packed pixel data.
	Pixels []byte
	// Width is the width of the image in pixels.
	Width uint32
	// Height is the height of the image in pixels.
	Height uint32
	// Format is the channel layout of Pixels.
	Format PixelFormat
	// SourceFormat is the decoder's name for the encoded format (png, jpeg, webp, ...).
	SourceFormat string
	// Sampler is the sampler configuration resolved from the document, or nil to use the packer default.
	Sampler *SamplerStagingData
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// A zero LodMaxClamp or MaxAnisotropy falls back to the packer default.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}
