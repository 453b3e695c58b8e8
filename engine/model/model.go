package model

import (
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Mesh is the CPU-side concatenation of every primitive of an asset: one vertex array and one
// 32-bit index array addressing it.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// VertexCount returns the number of vertices in the mesh.
func (m Mesh) VertexCount() int { return len(m.Vertices) }

// IndexCount returns the number of indices in the mesh.
func (m Mesh) IndexCount() int { return len(m.Indices) }

// model is the implementation of the Model interface.
type model struct {
	name           string
	vertexBuffer   gpu.Buffer
	indexBuffer    gpu.Buffer
	vertexCount    uint32
	indexCount     uint32
	boundingRadius float32
}

// Model is a mesh uploaded to the GPU: a vertex buffer in the VertexBufferLayout format, a
// 32-bit index buffer and the number of indices to draw. A Model exclusively owns its buffers.
type Model interface {
	// Name retrieves the label prefix used for the model's GPU buffers.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// VertexBuffer retrieves the GPU vertex buffer.
	//
	// Returns:
	//   - gpu.Buffer: the vertex buffer
	VertexBuffer() gpu.Buffer

	// IndexBuffer retrieves the GPU index buffer holding uint32 indices.
	//
	// Returns:
	//   - gpu.Buffer: the index buffer
	IndexBuffer() gpu.Buffer

	// VertexCount returns the number of uploaded vertices.
	VertexCount() uint32

	// IndexCount returns the number of indices to draw.
	IndexCount() uint32

	// BoundingRadius returns the bounding sphere radius around the model origin.
	// The camera uses it to frame the asset.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// Release frees both GPU buffers.
	Release()
}

var _ Model = &model{}

// Upload creates the vertex and index buffers for mesh and writes the marshalled data through
// queue. Buffers are never zero-sized so an empty mesh still yields a valid (empty) draw.
//
// Parameters:
//   - device: the shared graphics device
//   - queue: the shared command queue
//   - mesh: the concatenated mesh to upload
//   - options: a variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the uploaded model
//   - error: an error matching common.ErrFatalResource if a buffer could not be created or written
func Upload(device gpu.GraphicsDevice, queue gpu.CommandQueue, mesh Mesh, options ...ModelBuilderOption) (Model, error) {
	m := &model{name: "Model", boundingRadius: ComputeBoundingRadius(mesh.Vertices)}
	for _, opt := range options {
		opt(m)
	}
	m.vertexCount = uint32(len(mesh.Vertices))
	m.indexCount = uint32(len(mesh.Indices))

	vb, err := createBuffer(device, queue, m.name+" Vertex Buffer", wgpu.BufferUsageVertex, MarshalVertices(mesh.Vertices))
	if err != nil {
		return nil, err
	}
	m.vertexBuffer = vb

	ib, err := createBuffer(device, queue, m.name+" Index Buffer", wgpu.BufferUsageIndex, MarshalIndices(mesh.Indices))
	if err != nil {
		m.Release()
		return nil, err
	}
	m.indexBuffer = ib
	return m, nil
}

func createBuffer(device gpu.GraphicsDevice, queue gpu.CommandQueue, label string, usage wgpu.BufferUsage, data []byte) (gpu.Buffer, error) {
	size := uint64(common.AlignUp(uint32(max(len(data), 4)), 4))
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, common.NewResourceError(label, err)
	}
	if len(data) == 0 {
		return buf, nil
	}
	if err := queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, common.NewResourceError(label, err)
	}
	return buf, nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) VertexBuffer() gpu.Buffer {
	return m.vertexBuffer
}

func (m *model) IndexBuffer() gpu.Buffer {
	return m.indexBuffer
}

func (m *model) VertexCount() uint32 {
	return m.vertexCount
}

func (m *model) IndexCount() uint32 {
	return m.indexCount
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) Release() {
	gpu.ReleaseAll(m.vertexBuffer, m.indexBuffer)
	m.vertexBuffer, m.indexBuffer = nil, nil
}
