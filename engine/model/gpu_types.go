package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// Attribute indices into VertexAttributes.
const (
	AttrPosition = iota
	AttrNormal
	AttrTangent
	AttrUV
	AttrColor
	AttrJoints
	AttrWeights
)

// GPUVertexInputSource is the WGSL vertex stage input struct matching VertexAttributes.
//
//go:embed assets/vertex_input.wgsl
var GPUVertexInputSource string

// VertexStride is the byte size of one Vertex in the vertex buffer.
const VertexStride = 96

// VertexAttributes is the single description of the vertex buffer layout. Marshal writes every
// field at the offset declared here and the render pipeline consumes the same slice, so the CPU
// and GPU sides cannot drift apart.
var VertexAttributes = []wgpu.VertexAttribute{
	AttrPosition: {Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
	AttrNormal:   {Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	AttrTangent:  {Format: wgpu.VertexFormatFloat32x4, Offset: 24, ShaderLocation: 2},
	AttrUV:       {Format: wgpu.VertexFormatFloat32x2, Offset: 40, ShaderLocation: 3},
	AttrColor:    {Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 4},
	AttrJoints:   {Format: wgpu.VertexFormatUint32x4, Offset: 64, ShaderLocation: 5},
	AttrWeights:  {Format: wgpu.VertexFormatFloat32x4, Offset: 80, ShaderLocation: 6},
}

// VertexBufferLayout returns the per-vertex buffer layout used by every render pipeline.
//
// Returns:
//   - wgpu.VertexBufferLayout: stride VertexStride, step mode vertex, attributes VertexAttributes
func VertexBufferLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(VertexAttributes))
	copy(attrs, VertexAttributes)
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// Vertex is the unified per-vertex record produced by the asset parser for both the unlit and
// the PBR pipelines. Joints and Weights are carried for layout compatibility; nothing skins them.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [4]float32 // xyz + handedness in w
	UV       [2]float32
	Color    [4]float32
	Joints   [4]uint32
	Weights  [4]float32
}

// DefaultVertex returns a vertex at the given position with every optional attribute at its
// default: zero normal, tangent (0,0,0,1), zero UV, opaque white color, zero joints and
// weights (1,0,0,0).
//
// Parameters:
//   - position: the model-space position
//
// Returns:
//   - Vertex: the defaulted vertex
func DefaultVertex(position [3]float32) Vertex {
	return Vertex{
		Position: position,
		Tangent:  [4]float32{0, 0, 0, 1},
		Color:    [4]float32{1, 1, 1, 1},
		Weights:  [4]float32{1, 0, 0, 0},
	}
}

// Size returns the in-memory size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the vertex into a VertexStride byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: VertexStride bytes, little-endian
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexStride)
	v.marshalInto(buf)
	return buf
}

func (v *Vertex) marshalInto(buf []byte) {
	putFloats(buf, VertexAttributes[AttrPosition].Offset, v.Position[:])
	putFloats(buf, VertexAttributes[AttrNormal].Offset, v.Normal[:])
	putFloats(buf, VertexAttributes[AttrTangent].Offset, v.Tangent[:])
	putFloats(buf, VertexAttributes[AttrUV].Offset, v.UV[:])
	putFloats(buf, VertexAttributes[AttrColor].Offset, v.Color[:])
	off := VertexAttributes[AttrJoints].Offset
	for i, j := range v.Joints {
		binary.LittleEndian.PutUint32(buf[off+uint64(i)*4:], j)
	}
	putFloats(buf, VertexAttributes[AttrWeights].Offset, v.Weights[:])
}

func putFloats(buf []byte, offset uint64, values []float32) {
	for i, f := range values {
		binary.LittleEndian.PutUint32(buf[offset+uint64(i)*4:], math.Float32bits(f))
	}
}

// MarshalVertices serializes vertices back to back with VertexStride spacing.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices)*VertexStride bytes
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	for i := range vertices {
		vertices[i].marshalInto(buf[i*VertexStride : (i+1)*VertexStride])
	}
	return buf
}

// MarshalIndices serializes 32-bit indices little-endian.
//
// Parameters:
//   - indices: the indices to serialize
//
// Returns:
//   - []byte: len(indices)*4 bytes
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// ComputeBoundingRadius returns the largest distance from the origin across all vertex positions.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []Vertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
