package camera

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-glb/common"
)

// GPUCameraUniformSource is the WGSL CameraUniform struct injected into the shaders.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniformSize is the byte size of the group 0 uniform.
const GPUCameraUniformSize = 144

// GPUCameraUniform is the group 0 uniform: two column-major mat4x4<f32> at offsets 0 and 64,
// then the eye as vec3<f32> at 128 padded to 144 bytes.
type GPUCameraUniform struct {
	ViewProj       [16]float32
	Model          [16]float32
	CameraPosition [3]float32
}

// Size returns GPUCameraUniformSize.
func (g *GPUCameraUniform) Size() int {
	return GPUCameraUniformSize
}

// Marshal encodes the uniform little-endian; the trailing pad stays zero.
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	off := common.PutFloat32s(buf, 0, g.ViewProj[:]...)
	off = common.PutFloat32s(buf, off, g.Model[:]...)
	common.PutFloat32s(buf, off, g.CameraPosition[:]...)
	return buf
}
