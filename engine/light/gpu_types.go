package light

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-glb/common"
)

// GPULightUniformSource is the WGSL LightUniform struct injected into the PBR shader.
//
//go:embed assets/light.wgsl
var GPULightUniformSource string

// GPULightUniformSize is the byte size of the light uniform.
const GPULightUniformSize = 32

// GPULightUniform is the light uniform bound at group 2 of the PBR pipeline. Both fields are
// vec3<f32> on a 16-byte stride: direction at 0 and color at 16.
type GPULightUniform struct {
	// Direction is the normalized direction the light travels.
	Direction [3]float32
	// Color is the RGB color premultiplied by intensity.
	Color [3]float32
}

// Size returns GPULightUniformSize.
func (g *GPULightUniform) Size() int {
	return GPULightUniformSize
}

// Marshal encodes the uniform little-endian with zeroed padding lanes.
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, GPULightUniformSize)
	common.PutFloat32s(buf, 0, g.Direction[:]...)
	common.PutFloat32s(buf, 16, g.Color[:]...)
	return buf
}
