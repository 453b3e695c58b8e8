// annotations.go defines the annotation syntax understood by the WGSL pre-processor.
// Annotations are single-line WGSL comments prefixed with @oxy: that inject the struct
// definitions shared with the Go GPU types and declare resource bindings. Every binding
// declaration is recorded so the resource binder can be checked against what the shaders
// actually consume.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct. It produces no
	// declaration.
	//
	// Syntax: // @oxy:include <struct_type>
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a buffer variable declaration of a registered
	// struct type.
	//
	// Syntax: // @oxy:group <group> <binding> <address_space> <var_name> <struct_type>
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeTexture generates a 2D float texture declaration.
	//
	// Syntax: // @oxy:texture <group> <binding> <var_name>
	AnnotationTypeTexture AnnotationType = "texture"

	// AnnotationTypeSampler generates a filtering sampler declaration.
	//
	// Syntax: // @oxy:sampler <group> <binding> <var_name>
	AnnotationTypeSampler AnnotationType = "sampler"
)

// Annotation is a single parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = struct type key
	//   - group:   [0] = address space, [1] = var name, [2] = struct type key
	//   - texture, sampler: [0] = var name
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group is the @group index. Zero for include annotations.
	Group int

	// Binding is the @binding index. Zero for include annotations.
	Binding int
}

// VarName returns the declared variable name, or an empty string for include annotations.
func (a Annotation) VarName() string {
	switch a.Type {
	case AnnotationTypeBindingGroup:
		return string(a.Args[1])
	case AnnotationTypeTexture, AnnotationTypeSampler:
		return string(a.Args[0])
	}
	return ""
}

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

// Struct type arguments. Each maps to a Go GPU type with an embedded .wgsl asset.
const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgLight identifies the LightUniform struct.
	AnnotationArgLight AnnotationArg = "light"

	// AnnotationArgMaterial identifies the unlit Material struct.
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgMaterialPBR identifies the MaterialPBR struct.
	AnnotationArgMaterialPBR AnnotationArg = "material_pbr"

	// annotationArgVertexInput identifies the VertexInput struct matching the shared vertex layout.
	annotationArgVertexInput AnnotationArg = "vertex_input"

	// annotationArgVertexOutput identifies the VertexOutput struct passed from vertex to fragment stage.
	annotationArgVertexOutput AnnotationArg = "vertex_output"
)

// Address space arguments.
const (
	annotationArgAddressUniform AnnotationArg = "uniform"
	annotationArgAddressStorage AnnotationArg = "storage"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLight,
	AnnotationArgMaterial,
	AnnotationArgMaterialPBR,
	annotationArgVertexInput,
	annotationArgVertexOutput,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgAddressUniform,
	annotationArgAddressStorage,
}

// parseAnnotation parses one line of WGSL source. It returns nil with no error for lines
// without the annotation prefix.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires group, binding, address space, name and struct type", lineNum)
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   group,
			Binding: binding,
		}, nil
	case AnnotationTypeTexture, AnnotationTypeSampler:
		if len(args) != 4 {
			return nil, fmt.Errorf("line %d: @oxy %s annotation requires group, binding and name", lineNum, args[0])
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		return &Annotation{
			Type:    AnnotationType(args[0]),
			Args:    []AnnotationArg{AnnotationArg(args[3])},
			Line:    lineNum,
			Group:   group,
			Binding: binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func parseSlot(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil || group < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q", lineNum, groupArg)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil || binding < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q", lineNum, bindingArg)
	}
	return group, binding, nil
}
