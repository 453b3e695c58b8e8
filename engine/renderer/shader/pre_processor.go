// pre_processor.go implements the WGSL pre-processor. It replaces @oxy: annotations with
// injected struct sources or generated binding declarations and records every binding it
// generates.
package shader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer/material"
)

// GPUVertexOutputSource is the WGSL definition of the interstage struct. It has no Go
// counterpart because it never crosses the CPU boundary.
//
//go:embed assets/vertex_output.wgsl
var GPUVertexOutputSource string

// registryEntry pairs an embedded WGSL struct source with its WGSL type name.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	declarations         []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source.
type PreProcessor interface {
	// Process expands the annotations of source. Include annotations are replaced with the
	// registered struct source; group, texture and sampler annotations are replaced with
	// @group/@binding declarations. Declarations are reset at the start of each call.
	//
	// Parameters:
	//   - source: the annotated WGSL source
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: error if an annotation is malformed, a struct is included twice or a slot is declared twice
	Process(source string) (string, error)

	// Declarations returns the binding annotations collected by the last Process call, in
	// source order.
	//
	// Returns:
	//   - []Annotation: the collected declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with every GPU struct of the renderer registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:       {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgLight:        {Source: light.GPULightUniformSource, Type: "LightUniform"},
			AnnotationArgMaterial:     {Source: material.GPUMaterialSource, Type: "Material"},
			AnnotationArgMaterialPBR:  {Source: material.GPUMaterialPBRSource, Type: "MaterialPBR"},
			annotationArgVertexInput:  {Source: model.GPUVertexInputSource, Type: "VertexInput"},
			annotationArgVertexOutput: {Source: GPUVertexOutputSource, Type: "VertexOutput"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgAddressUniform: "var<uniform>",
			annotationArgAddressStorage: "var<storage, read>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)
	slots := make(map[[2]int]int)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		if a.Type == annotationTypeInclude {
			if included[a.Args[0]] {
				return "", fmt.Errorf("line %d: struct %q already included", a.Line, a.Args[0])
			}
			included[a.Args[0]] = true
			out = append(out, p.structRegistry[a.Args[0]].Source)
			continue
		}

		slot := [2]int{a.Group, a.Binding}
		if prev, ok := slots[slot]; ok {
			return "", fmt.Errorf("line %d: group %d binding %d already declared on line %d", a.Line, a.Group, a.Binding, prev)
		}
		slots[slot] = a.Line

		var decl string
		switch a.Type {
		case AnnotationTypeBindingGroup:
			decl = fmt.Sprintf("%s %s: %s;", p.addressSpaceRegistry[a.Args[0]], a.Args[1], p.structRegistry[a.Args[2]].Type)
		case AnnotationTypeTexture:
			decl = fmt.Sprintf("var %s: texture_2d<f32>;", a.Args[0])
		case AnnotationTypeSampler:
			decl = fmt.Sprintf("var %s: sampler;", a.Args[0])
		}
		out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s", a.Group, a.Binding, decl))
		p.declarations = append(p.declarations, *a)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
