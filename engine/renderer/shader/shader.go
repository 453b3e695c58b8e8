package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader source provides.
type ShaderType int

const (
	// ShaderTypeVertex is a shader with a @vertex entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a shader with a @fragment entry point.
	ShaderTypeFragment
)

func (t ShaderType) attribute() string {
	if t == ShaderTypeVertex {
		return "@vertex"
	}
	return "@fragment"
}

type shader struct {
	key          string
	source       string
	shaderType   ShaderType
	entryPoint   string
	declarations []Annotation
	varNames     map[int]map[int]string
}

// Shader is a pre-processed WGSL source for one pipeline stage.
type Shader interface {
	// Key returns the unique identifier of the shader, also used as the module label.
	//
	// Returns:
	//   - string: the shader key
	Key() string

	// Source returns the expanded WGSL source.
	//
	// Returns:
	//   - string: the WGSL source with annotations expanded
	Source() string

	// ShaderType returns the stage the shader provides.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage entry point function.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// Visibility returns the shader stage flag matching ShaderType.
	//
	// Returns:
	//   - wgpu.ShaderStage: the stage visibility
	Visibility() wgpu.ShaderStage

	// Declarations returns the binding declarations of the shader in source order.
	//
	// Returns:
	//   - []Annotation: the declarations generated by the pre-processor
	Declarations() []Annotation

	// BindGroupVarName returns the variable declared at group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if nothing is declared there
	BindGroupVarName(group, binding int) string

	// Compile hands the expanded source to the device.
	//
	// Parameters:
	//   - device: the graphics device that compiles the module
	//
	// Returns:
	//   - gpu.ShaderModule: the compiled module
	//   - error: ErrFatalResource if the device rejects the source
	Compile(device gpu.GraphicsDevice) (gpu.ShaderModule, error)
}

var _ Shader = &shader{}

// NewShader pre-processes source and locates the entry point for shaderType.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the source provides
//   - source: the annotated WGSL source
//
// Returns:
//   - Shader: the processed shader
//   - error: error if pre-processing fails or the entry point is missing
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %s: empty source", key)
	}
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	entryPoint, err := parseEntryPoint(processed, shaderType)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:          key,
		source:       processed,
		shaderType:   shaderType,
		entryPoint:   entryPoint,
		declarations: pp.Declarations(),
		varNames:     make(map[int]map[int]string),
	}
	for _, d := range s.declarations {
		if s.varNames[d.Group] == nil {
			s.varNames[d.Group] = make(map[int]string)
		}
		s.varNames[d.Group][d.Binding] = d.VarName()
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Visibility() wgpu.ShaderStage {
	if s.shaderType == ShaderTypeVertex {
		return wgpu.ShaderStageVertex
	}
	return wgpu.ShaderStageFragment
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.varNames[group][binding]
}

func (s *shader) Compile(device gpu.GraphicsDevice) (gpu.ShaderModule, error) {
	m, err := device.CreateShaderModule(s.key, s.source)
	if err != nil {
		return nil, common.NewResourceError(s.key, err)
	}
	return m, nil
}

// parseEntryPoint returns the name of the first function following the stage attribute.
func parseEntryPoint(source string, shaderType ShaderType) (string, error) {
	attr := shaderType.attribute()
	_, after, ok := strings.Cut(source, attr)
	if !ok {
		return "", fmt.Errorf("no %s entry point", attr)
	}
	_, after, ok = strings.Cut(after, "fn ")
	if !ok {
		return "", fmt.Errorf("no function after %s", attr)
	}
	name, _, ok := strings.Cut(after, "(")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", errors.New("malformed entry point declaration")
	}
	return name, nil
}
