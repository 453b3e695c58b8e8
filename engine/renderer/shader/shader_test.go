package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("let x = 1;", 1)
	assert.NoError(t, err)
	assert.Nil(t, a)

	a, err = parseAnnotation("let s = \"@oxy:group\";", 1)
	assert.NoError(t, err)
	assert.Nil(t, a, "prefix outside a comment is ignored")

	a, err = parseAnnotation("  // @oxy:group 1 3 uniform mat material_pbr", 7)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, AnnotationTypeBindingGroup, a.Type)
	assert.Equal(t, 1, a.Group)
	assert.Equal(t, 3, a.Binding)
	assert.Equal(t, 7, a.Line)
	assert.Equal(t, "mat", a.VarName())

	a, err = parseAnnotation("// @oxy:sampler 2 1 s", 1)
	require.NoError(t, err)
	assert.Equal(t, AnnotationTypeSampler, a.Type)
	assert.Equal(t, "s", a.VarName())

	bad := []string{
		"// @oxy:",
		"// @oxy:include",
		"// @oxy:include skeleton",
		"// @oxy:group x 0 uniform camera camera",
		"// @oxy:group 0 -1 uniform camera camera",
		"// @oxy:group 0 0 push camera camera",
		"// @oxy:group 0 0 uniform camera nope",
		"// @oxy:texture 0 0",
		"// @oxy:provider 0 0 material",
	}
	for _, line := range bad {
		_, err := parseAnnotation(line, 3)
		assert.Error(t, err, line)
		if err != nil {
			assert.Contains(t, err.Error(), "line 3", line)
		}
	}
}

func TestProcess(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(strings.Join([]string{
		"// @oxy:include light",
		"// @oxy:group 2 0 uniform light light",
		"// @oxy:texture 1 1 tex",
		"// @oxy:sampler 1 2 samp",
		"fn f() {}",
	}, "\n"))
	require.NoError(t, err)

	assert.Contains(t, out, "struct LightUniform")
	assert.Contains(t, out, "@group(2) @binding(0) var<uniform> light: LightUniform;")
	assert.Contains(t, out, "@group(1) @binding(1) var tex: texture_2d<f32>;")
	assert.Contains(t, out, "@group(1) @binding(2) var samp: sampler;")
	assert.Contains(t, out, "fn f() {}")
	assert.NotContains(t, out, annotationPrefix)

	decls := pp.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, AnnotationTypeTexture, decls[1].Type)
	assert.Equal(t, AnnotationTypeSampler, decls[2].Type)

	_, err = pp.Process("fn g() {}")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations(), "declarations reset between calls")
}

func TestProcessRejectsDuplicates(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("// @oxy:include camera\n// @oxy:include camera")
	assert.ErrorContains(t, err, "already included")

	_, err = pp.Process("// @oxy:texture 1 1 a\n// @oxy:sampler 1 1 b")
	assert.ErrorContains(t, err, "already declared on line 1")
}

func TestNewShader(t *testing.T) {
	s, err := NewShader("test", ShaderTypeFragment, "// @oxy:include vertex_output\n@fragment\nfn main_fs(in: VertexOutput) -> @location(0) vec4<f32> { return in.color; }")
	require.NoError(t, err)
	assert.Equal(t, "main_fs", s.EntryPoint())
	assert.Equal(t, wgpu.ShaderStageFragment, s.Visibility())
	assert.Contains(t, s.Source(), "struct VertexOutput")

	_, err = NewShader("empty", ShaderTypeVertex, "")
	assert.Error(t, err)

	_, err = NewShader("no entry", ShaderTypeVertex, "@fragment\nfn fs_main() {}")
	assert.ErrorContains(t, err, "no @vertex entry point")
}

func TestDefaultShaders(t *testing.T) {
	vertex, unlit, pbr, err := DefaultShaders()
	require.NoError(t, err)

	assert.Equal(t, "vs_main", vertex.EntryPoint())
	assert.Equal(t, "fs_main", unlit.EntryPoint())
	assert.Equal(t, "fs_main", pbr.EntryPoint())

	assert.Equal(t, "camera", vertex.BindGroupVarName(0, 0))
	assert.Contains(t, vertex.Source(), "struct VertexInput")

	assert.Equal(t, "material", unlit.BindGroupVarName(1, 0))
	assert.Equal(t, "base_texture", unlit.BindGroupVarName(2, 0))
	assert.Equal(t, "base_sampler", unlit.BindGroupVarName(2, 1))

	assert.Equal(t, "camera", pbr.BindGroupVarName(0, 0))
	assert.Equal(t, "material", pbr.BindGroupVarName(1, 0))
	assert.Equal(t, "light", pbr.BindGroupVarName(2, 0))
	textures, samplers := 0, 0
	for _, d := range pbr.Declarations() {
		switch d.Type {
		case AnnotationTypeTexture:
			textures++
			assert.Equal(t, 1, d.Group)
			assert.Equal(t, 1, d.Binding%2, "textures sit on odd bindings")
		case AnnotationTypeSampler:
			samplers++
			assert.Equal(t, 0, d.Binding%2, "samplers follow their texture")
		}
	}
	assert.Equal(t, 5, textures)
	assert.Equal(t, 5, samplers)
	assert.Contains(t, pbr.Source(), "struct MaterialPBR")
}

func TestNewDefaultProgram(t *testing.T) {
	dev := gputest.NewDevice()
	p, err := NewDefaultProgram(dev)
	require.NoError(t, err)
	require.Len(t, dev.ShaderModules, 3)
	assert.Equal(t, KeyVertex, dev.ShaderModules[0].Label)
	assert.Same(t, p.PBR, p.Fragment(true))
	assert.Same(t, p.Unlit, p.Fragment(false))

	p.Release()
	for _, m := range dev.ShaderModules {
		assert.True(t, m.Released)
	}
	assert.Nil(t, p.Vertex)
}

func TestNewDefaultProgramFailure(t *testing.T) {
	dev := gputest.NewDevice()
	cause := errors.New("compile error")
	dev.FailOn("CreateShaderModule", cause)

	_, err := NewDefaultProgram(dev)
	assert.ErrorIs(t, err, common.ErrFatalResource)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), KeyVertex)
}
