// Package texture normalizes decoded images and uploads them into a fixed-size texture set.
package texture

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
)

// MaxTextures is the number of slots in every TextureSet.
const MaxTextures = common.MaxTextures

// RowAlignment is the byte alignment of every uploaded texture row.
const RowAlignment = 256

// PaddedRowBytes returns the smallest multiple of RowAlignment that holds one RGBA8 row.
//
// Parameters:
//   - width: the row width in pixels
//
// Returns:
//   - uint32: the padded row pitch in bytes
func PaddedRowBytes(width uint32) uint32 {
	return common.AlignUp(4*width, RowAlignment)
}

// Normalize converts decoded pixels to tightly packed RGBA8. RGB8 gains an opaque alpha channel
// and RGBA8 is copied. Every other format, and an empty image, is a fatal asset error.
//
// Parameters:
//   - img: the decoded image
//
// Returns:
//   - []byte: width*height*4 RGBA8 bytes
//   - error: a fatal asset error for unsupported formats or short pixel data
func Normalize(img common.ImageData) ([]byte, error) {
	n := int(img.Width) * int(img.Height)
	bpp := img.Format.BytesPerPixel()
	if bpp == 0 {
		return nil, common.NewAssetError("texture", fmt.Errorf("image %q: unsupported pixel format %s", img.Name, img.Format))
	}
	if n == 0 {
		return nil, common.NewAssetError("texture", fmt.Errorf("image %q: empty %dx%d image", img.Name, img.Width, img.Height))
	}
	if len(img.Pixels) < n*bpp {
		return nil, common.NewAssetError("texture", fmt.Errorf("image %q: %d bytes for %dx%d %s", img.Name, len(img.Pixels), img.Width, img.Height, img.Format))
	}

	switch img.Format {
	case common.PixelFormatRGB8:
		out := make([]byte, n*4)
		for i := 0; i < n; i++ {
			out[i*4] = img.Pixels[i*3]
			out[i*4+1] = img.Pixels[i*3+1]
			out[i*4+2] = img.Pixels[i*3+2]
			out[i*4+3] = 255
		}
		return out, nil
	default:
		out := make([]byte, n*4)
		copy(out, img.Pixels)
		return out, nil
	}
}

// PadRows copies tightly packed RGBA8 rows into a buffer whose row pitch is PaddedRowBytes.
// Padding bytes are zero.
//
// Parameters:
//   - pixels: width*height*4 RGBA8 bytes
//   - width: the image width in pixels
//   - height: the image height in pixels
//
// Returns:
//   - []byte: PaddedRowBytes(width)*height bytes
func PadRows(pixels []byte, width, height uint32) []byte {
	row := int(width) * 4
	pitch := int(PaddedRowBytes(width))
	out := make([]byte, pitch*int(height))
	for y := 0; y < int(height); y++ {
		copy(out[y*pitch:y*pitch+row], pixels[y*row:(y+1)*row])
	}
	return out
}

// UnpadRows reverses PadRows.
//
// Parameters:
//   - padded: PaddedRowBytes(width)*height bytes
//   - width: the image width in pixels
//   - height: the image height in pixels
//
// Returns:
//   - []byte: width*height*4 RGBA8 bytes
func UnpadRows(padded []byte, width, height uint32) []byte {
	row := int(width) * 4
	pitch := int(PaddedRowBytes(width))
	out := make([]byte, row*int(height))
	for y := 0; y < int(height); y++ {
		copy(out[y*row:(y+1)*row], padded[y*pitch:y*pitch+row])
	}
	return out
}
