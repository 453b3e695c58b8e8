package material

import (
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/qmuntal/gltf"
)

// DefaultAlphaCutoff is the mask cutoff used when a PBR material does not specify one.
const DefaultAlphaCutoff = 0.5

// Set holds the uniform records of every document material, in document order. Exactly one of
// PBR and Legacy is populated, chosen once for the whole asset.
type Set struct {
	IsPBR  bool
	Names  []string
	PBR    []GPUMaterialPBR
	Legacy []GPUMaterial
}

// Len returns the number of materials in the set.
func (s Set) Len() int {
	if s.IsPBR {
		return len(s.PBR)
	}
	return len(s.Legacy)
}

// Stride returns the byte size of one record in Bytes.
func (s Set) Stride() int {
	if s.IsPBR {
		return 80
	}
	return 32
}

// Bytes concatenates the marshalled records for upload into one uniform buffer.
//
// Returns:
//   - []byte: Len()*Stride() bytes
func (s Set) Bytes() []byte {
	buf := make([]byte, 0, s.Len()*s.Stride())
	if s.IsPBR {
		for i := range s.PBR {
			buf = append(buf, s.PBR[i].Marshal()...)
		}
		return buf
	}
	for i := range s.Legacy {
		buf = append(buf, s.Legacy[i].Marshal()...)
	}
	return buf
}

// Build converts every document material into its uniform record. With isPBR the factors are
// copied and the five texture references are resolved to texture-set slots; otherwise the legacy
// record is produced with a white base color, no cutoff and single-sided culling. A document
// without materials yields one default material so the uniform buffer is never empty.
//
// Parameters:
//   - doc: the parsed document
//   - isPBR: the asset-level classification
//
// Returns:
//   - Set: one record per material
func Build(doc *gltf.Document, isPBR bool) Set {
	set := Set{IsPBR: isPBR}

	var materials []*gltf.Material
	if doc != nil {
		materials = doc.Materials
	}
	if len(materials) == 0 {
		materials = []*gltf.Material{{Name: "default"}}
	}

	for _, mat := range materials {
		if mat == nil {
			mat = &gltf.Material{}
		}
		set.Names = append(set.Names, mat.Name)
		if isPBR {
			set.PBR = append(set.PBR, buildPBR(doc, mat))
		} else {
			set.Legacy = append(set.Legacy, buildLegacy(mat))
		}
	}
	return set
}

func buildPBR(doc *gltf.Document, mat *gltf.Material) GPUMaterialPBR {
	out := GPUMaterialPBR{
		BaseColor:   [4]float32{1, 1, 1, 1},
		Metallic:    1,
		Roughness:   1,
		AlphaCutoff: DefaultAlphaCutoff,
		AlphaMode:   alphaMode(mat.AlphaMode),
		DoubleSided: boolToU32(mat.DoubleSided),
		Emissive: [3]float32{
			float32(mat.EmissiveFactor[0]),
			float32(mat.EmissiveFactor[1]),
			float32(mat.EmissiveFactor[2]),
		},
	}
	if mat.AlphaCutoff != nil {
		out.AlphaCutoff = float32(*mat.AlphaCutoff)
	}

	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			f := pbr.BaseColorFactor
			out.BaseColor = [4]float32{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
		}
		if pbr.MetallicFactor != nil {
			out.Metallic = float32(*pbr.MetallicFactor)
		}
		if pbr.RoughnessFactor != nil {
			out.Roughness = float32(*pbr.RoughnessFactor)
		}
		if pbr.BaseColorTexture != nil {
			out.BaseColorTexture = out.resolve(doc, pbr.BaseColorTexture.Index, TextureMaskBaseColor)
		}
		if pbr.MetallicRoughnessTexture != nil {
			out.MetallicRoughnessTexture = out.resolve(doc, pbr.MetallicRoughnessTexture.Index, TextureMaskMetallicRoughness)
		}
	}
	if mat.NormalTexture != nil && mat.NormalTexture.Index != nil {
		out.NormalTexture = out.resolve(doc, *mat.NormalTexture.Index, TextureMaskNormal)
	}
	if mat.OcclusionTexture != nil && mat.OcclusionTexture.Index != nil {
		out.OcclusionTexture = out.resolve(doc, *mat.OcclusionTexture.Index, TextureMaskOcclusion)
	}
	if mat.EmissiveTexture != nil {
		out.EmissiveTexture = out.resolve(doc, mat.EmissiveTexture.Index, TextureMaskEmissive)
	}
	return out
}

// resolve returns the slot of a texture reference and records in TextureMask whether it resolved.
func (g *GPUMaterialPBR) resolve(doc *gltf.Document, textureIndex int, bit uint32) uint32 {
	slot, ok := resolveSlot(doc, textureIndex)
	if ok {
		g.TextureMask |= bit
	}
	return slot
}

func buildLegacy(mat *gltf.Material) GPUMaterial {
	return GPUMaterial{
		BaseColor:   [4]float32{1, 1, 1, 1},
		AlphaCutoff: 0,
		AlphaMode:   alphaMode(mat.AlphaMode),
		DoubleSided: 0,
	}
}

// TextureSlot resolves a document texture index to the texture-set slot holding its source image.
// Slot 0 is returned for anything that cannot be resolved: a texture index out of range, a
// texture without a source, or a source image beyond common.MaxTextures. Slot 0 always holds a
// valid texture, so 0 means "fell back", not "no texture".
//
// Parameters:
//   - doc: the parsed document
//   - textureIndex: the index into doc.Textures
//
// Returns:
//   - uint32: the texture-set slot
func TextureSlot(doc *gltf.Document, textureIndex int) uint32 {
	slot, _ := resolveSlot(doc, textureIndex)
	return slot
}

func resolveSlot(doc *gltf.Document, textureIndex int) (uint32, bool) {
	if doc == nil || textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return 0, false
	}
	tex := doc.Textures[textureIndex]
	if tex == nil || tex.Source == nil {
		return 0, false
	}
	src := *tex.Source
	if src < 0 || src >= common.MaxTextures || src >= len(doc.Images) {
		return 0, false
	}
	return uint32(src), true
}

func alphaMode(m gltf.AlphaMode) uint32 {
	switch m {
	case gltf.AlphaMask:
		return AlphaModeMask
	case gltf.AlphaBlend:
		return AlphaModeBlend
	default:
		return AlphaModeOpaque
	}
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
