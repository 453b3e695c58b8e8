package loader

import (
	"bytes"
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// Parse decodes a GLB (or embedded-resource glTF JSON) container into a document with its buffer
// bytes resolved. Nothing is returned on failure: the error matches common.ErrFatalAsset.
//
// Parameters:
//   - data: the raw container bytes
//
// Returns:
//   - *gltf.Document: the decoded document
//   - error: a fatal asset error if the container is malformed
func Parse(data []byte) (*gltf.Document, error) {
	if len(data) == 0 {
		return nil, common.NewAssetError("decode", fmt.Errorf("empty input"))
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, common.NewAssetError("decode", err)
	}
	return doc, nil
}

// ClassifyPBR reports whether the asset should be rendered with the PBR pipeline. An asset is
// PBR when any of its materials carries a base-color texture, a metallic-roughness texture, or
// a metallic or roughness factor other than 1. Absent factors count as 1.
//
// Parameters:
//   - doc: the parsed document
//
// Returns:
//   - bool: true for the PBR variant, false for the unlit variant
func ClassifyPBR(doc *gltf.Document) bool {
	if doc == nil {
		return false
	}
	for _, mat := range doc.Materials {
		if mat == nil || mat.PBRMetallicRoughness == nil {
			continue
		}
		pbr := mat.PBRMetallicRoughness
		if pbr.BaseColorTexture != nil || pbr.MetallicRoughnessTexture != nil {
			return true
		}
		if factorOr(pbr.MetallicFactor, 1) != 1 || factorOr(pbr.RoughnessFactor, 1) != 1 {
			return true
		}
	}
	return false
}

func factorOr(f *float64, def float64) float64 {
	if f == nil {
		return def
	}
	return *f
}

// Summary counts the top-level objects of a document.
type Summary struct {
	Generator  string
	Version    string
	Meshes     int
	Primitives int
	Materials  int
	Textures   int
	Images     int
	Samplers   int
	Buffers    int
}

// Summarize counts the meshes, primitives, materials, textures, images, samplers and buffers of doc.
//
// Parameters:
//   - doc: the parsed document
//
// Returns:
//   - Summary: the document counts
func Summarize(doc *gltf.Document) Summary {
	if doc == nil {
		return Summary{}
	}
	s := Summary{
		Generator: doc.Asset.Generator,
		Version:   doc.Asset.Version,
		Meshes:    len(doc.Meshes),
		Materials: len(doc.Materials),
		Textures:  len(doc.Textures),
		Images:    len(doc.Images),
		Samplers:  len(doc.Samplers),
		Buffers:   len(doc.Buffers),
	}
	for _, m := range doc.Meshes {
		if m != nil {
			s.Primitives += len(m.Primitives)
		}
	}
	return s
}

// Fields returns the summary as structured log fields.
func (s Summary) Fields() []zap.Field {
	return []zap.Field{
		zap.String("generator", s.Generator),
		zap.String("version", s.Version),
		zap.Int("meshes", s.Meshes),
		zap.Int("primitives", s.Primitives),
		zap.Int("materials", s.Materials),
		zap.Int("textures", s.Textures),
		zap.Int("images", s.Images),
		zap.Int("samplers", s.Samplers),
		zap.Int("buffers", s.Buffers),
	}
}
