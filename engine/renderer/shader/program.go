package shader

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
)

//go:embed assets/vertex.wgsl
var vertexSource string

//go:embed assets/unlit.wgsl
var unlitSource string

//go:embed assets/pbr.wgsl
var pbrSource string

// Shader keys of the built-in program. They double as module labels.
const (
	KeyVertex = "Vertex Shader"
	KeyUnlit  = "Unlit Fragment Shader"
	KeyPBR    = "PBR Fragment Shader"
)

// Program holds the compiled built-in shaders: one vertex stage shared by both material
// variants and one fragment stage per variant.
type Program struct {
	Vertex gpu.ShaderModule
	Unlit  gpu.ShaderModule
	PBR    gpu.ShaderModule
}

// DefaultShaders processes the built-in shader sources.
//
// Returns:
//   - vertex: the shared vertex shader
//   - unlit: the unlit fragment shader
//   - pbr: the metallic-roughness fragment shader
//   - err: error if a built-in source fails to process
func DefaultShaders() (vertex, unlit, pbr Shader, err error) {
	if vertex, err = NewShader(KeyVertex, ShaderTypeVertex, vertexSource); err != nil {
		return nil, nil, nil, err
	}
	if unlit, err = NewShader(KeyUnlit, ShaderTypeFragment, unlitSource); err != nil {
		return nil, nil, nil, err
	}
	if pbr, err = NewShader(KeyPBR, ShaderTypeFragment, pbrSource); err != nil {
		return nil, nil, nil, err
	}
	return vertex, unlit, pbr, nil
}

// NewDefaultProgram compiles the built-in shaders on device. Modules compiled before a
// failure are released.
//
// Parameters:
//   - device: the graphics device
//
// Returns:
//   - *Program: the compiled program
//   - error: error if processing or compilation fails
func NewDefaultProgram(device gpu.GraphicsDevice) (*Program, error) {
	vertex, unlit, pbr, err := DefaultShaders()
	if err != nil {
		return nil, err
	}

	p := &Program{}
	if p.Vertex, err = vertex.Compile(device); err != nil {
		return nil, err
	}
	if p.Unlit, err = unlit.Compile(device); err != nil {
		p.Release()
		return nil, err
	}
	if p.PBR, err = pbr.Compile(device); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// Fragment returns the fragment module for the material variant.
func (p *Program) Fragment(pbr bool) gpu.ShaderModule {
	if pbr {
		return p.PBR
	}
	return p.Unlit
}

// Release frees every compiled module.
func (p *Program) Release() {
	gpu.ReleaseAll(p.Vertex, p.Unlit, p.PBR)
	p.Vertex, p.Unlit, p.PBR = nil, nil, nil
}
