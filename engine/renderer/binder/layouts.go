package binder

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Variant selects the unlit or the metallic-roughness pipeline.
type Variant int

const (
	// VariantUnlit renders legacy materials without lighting or depth.
	VariantUnlit Variant = iota

	// VariantPBR renders metallic-roughness materials with a directional light and depth.
	VariantPBR
)

// VariantFor maps the asset-level material classification to a pipeline variant.
func VariantFor(isPBR bool) Variant {
	if isPBR {
		return VariantPBR
	}
	return VariantUnlit
}

func (v Variant) String() string {
	if v == VariantPBR {
		return "PBR"
	}
	return "Unlit"
}

// Group indices shared by both variants.
const (
	GroupCamera   = 0
	GroupMaterial = 1
	// GroupAuxiliary holds the light uniform for PBR and the base texture for unlit.
	GroupAuxiliary = 2
)

// PBRTextureRoles lists the texture/sampler pairs of the PBR material group in binding order.
// Role i occupies bindings 2i+1 (texture) and 2i+2 (sampler).
var PBRTextureRoles = [5]string{"base_color", "metallic_roughness", "normal", "occlusion", "emissive"}

// Layouts returns the three group layout descriptors of the variant, indexed by group.
//
// Parameters:
//   - v: the pipeline variant
//
// Returns:
//   - [3]wgpu.BindGroupLayoutDescriptor: the layouts for groups 0, 1 and 2
func Layouts(v Variant) [3]wgpu.BindGroupLayoutDescriptor {
	if v == VariantPBR {
		material := []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageFragment)}
		for i := range PBRTextureRoles {
			material = append(material, textureEntries(uint32(2*i+1))...)
		}
		return [3]wgpu.BindGroupLayoutDescriptor{
			{Label: "PBR Camera Layout", Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)}},
			{Label: "PBR Material Layout", Entries: material},
			{Label: "PBR Light Layout", Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageFragment)}},
		}
	}
	return [3]wgpu.BindGroupLayoutDescriptor{
		{Label: "Unlit Camera Layout", Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex)}},
		{Label: "Unlit Material Layout", Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageFragment)}},
		{Label: "Unlit Texture Layout", Entries: textureEntries(0)},
	}
}

func uniformEntry(binding uint32, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	e := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}
	e.Buffer.Type = wgpu.BufferBindingTypeUniform
	return e
}

// textureEntries returns a filterable 2D texture at binding and its sampler at binding+1.
func textureEntries(binding uint32) []wgpu.BindGroupLayoutEntry {
	tex := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: wgpu.ShaderStageFragment}
	tex.Texture.SampleType = wgpu.TextureSampleTypeFloat
	tex.Texture.ViewDimension = wgpu.TextureViewDimension2D

	samp := wgpu.BindGroupLayoutEntry{Binding: binding + 1, Visibility: wgpu.ShaderStageFragment}
	samp.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	return []wgpu.BindGroupLayoutEntry{tex, samp}
}

func groupLabel(v Variant, group int) string {
	switch group {
	case GroupCamera:
		return fmt.Sprintf("%s Camera", v)
	case GroupMaterial:
		return fmt.Sprintf("%s Material", v)
	}
	if v == VariantPBR {
		return "PBR Light"
	}
	return "Unlit Texture"
}
