package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// Alpha modes as written into the material uniforms.
const (
	AlphaModeOpaque uint32 = 0
	AlphaModeMask   uint32 = 1
	AlphaModeBlend  uint32 = 2
)

// GPUMaterialSource is the canonical WGSL definition of the Material struct (see GPUMaterial).
//
//go:embed assets/material.wgsl
var GPUMaterialSource string

// GPUMaterialPBRSource is the canonical WGSL definition of the MaterialPBR struct (see GPUMaterialPBR).
//
//go:embed assets/material_pbr.wgsl
var GPUMaterialPBRSource string

// Bits of GPUMaterialPBR.TextureMask. A set bit means the texture reference resolved to a real
// image; a clear bit means the slot field fell back to 0.
const (
	TextureMaskBaseColor uint32 = 1 << iota
	TextureMaskMetallicRoughness
	TextureMaskNormal
	TextureMaskOcclusion
	TextureMaskEmissive
)

// GPUMaterial is the uniform record of one material for the unlit pipeline.
// Size: 32 bytes (16-byte aligned).
type GPUMaterial struct {
	BaseColor   [4]float32 // offset  0
	AlphaCutoff float32    // offset 16
	AlphaMode   uint32     // offset 20
	DoubleSided uint32     // offset 24
	_           uint32     // offset 28
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.BaseColor[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.BaseColor[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.BaseColor[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.BaseColor[3]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.AlphaCutoff))
	binary.LittleEndian.PutUint32(buf[20:24], g.AlphaMode)
	binary.LittleEndian.PutUint32(buf[24:28], g.DoubleSided)
	return buf
}

// GPUMaterialPBR is the uniform record of one metallic-roughness material for the PBR pipeline.
// Texture fields are slots in the bound texture set. The trailing padding rounds the record to
// 80 bytes so an array of them has a 16-byte stride.
type GPUMaterialPBR struct {
	BaseColor                [4]float32 // offset  0
	Emissive                 [3]float32 // offset 16
	Metallic                 float32    // offset 28
	Roughness                float32    // offset 32
	BaseColorTexture         uint32     // offset 36
	MetallicRoughnessTexture uint32     // offset 40
	NormalTexture            uint32     // offset 44
	OcclusionTexture         uint32     // offset 48
	EmissiveTexture          uint32     // offset 52
	AlphaCutoff              float32    // offset 56
	AlphaMode                uint32     // offset 60
	DoubleSided              uint32     // offset 64
	TextureMask              uint32     // offset 68
	_                        [2]uint32  // offset 72
}

// Size returns the size of the GPUMaterialPBR struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialPBR) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialPBR struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload.
func (g *GPUMaterialPBR) Marshal() []byte {
	buf := make([]byte, 80)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.BaseColor[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.BaseColor[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.BaseColor[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.BaseColor[3]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Emissive[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Emissive[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Emissive[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Metallic))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Roughness))
	binary.LittleEndian.PutUint32(buf[36:40], g.BaseColorTexture)
	binary.LittleEndian.PutUint32(buf[40:44], g.MetallicRoughnessTexture)
	binary.LittleEndian.PutUint32(buf[44:48], g.NormalTexture)
	binary.LittleEndian.PutUint32(buf[48:52], g.OcclusionTexture)
	binary.LittleEndian.PutUint32(buf[52:56], g.EmissiveTexture)
	binary.LittleEndian.PutUint32(buf[56:60], math.Float32bits(g.AlphaCutoff))
	binary.LittleEndian.PutUint32(buf[60:64], g.AlphaMode)
	binary.LittleEndian.PutUint32(buf[64:68], g.DoubleSided)
	binary.LittleEndian.PutUint32(buf[68:72], g.TextureMask)
	return buf
}
