package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ExtractMesh concatenates every primitive of every mesh, in document order, into one vertex
// array and one 32-bit index array. Each primitive's indices are offset by the number of
// vertices emitted before it so the result addresses the concatenated array. A primitive without
// POSITION contributes nothing; a primitive without indices gets 0..n-1.
//
// Parameters:
//   - doc: the parsed document
//
// Returns:
//   - model.Mesh: the concatenated mesh
//   - error: a fatal asset error if an accessor cannot be read or an index addresses a vertex
//     outside its own primitive
func ExtractMesh(doc *gltf.Document) (model.Mesh, error) {
	var mesh model.Mesh
	if doc == nil {
		return mesh, nil
	}
	for mi, m := range doc.Meshes {
		if m == nil {
			continue
		}
		for pi, prim := range m.Primitives {
			if prim == nil {
				continue
			}
			vertices, indices, err := extractPrimitive(doc, prim)
			if err != nil {
				return model.Mesh{}, common.NewAssetError("mesh", fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err))
			}
			offset := uint32(len(mesh.Vertices))
			for _, idx := range indices {
				mesh.Indices = append(mesh.Indices, idx+offset)
			}
			mesh.Vertices = append(mesh.Vertices, vertices...)
		}
	}
	return mesh, nil
}

// extractPrimitive reads one primitive into vertices with local (unoffset) indices.
func extractPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]model.Vertex, []uint32, error) {
	posAcc, ok, err := attributeAccessor(doc, prim, gltf.POSITION)
	if err != nil || !ok {
		return nil, nil, err
	}
	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read positions: %w", err)
	}

	vertices := make([]model.Vertex, len(positions))
	for i, p := range positions {
		vertices[i] = model.DefaultVertex(p)
	}

	if acc, ok, err := attributeAccessor(doc, prim, gltf.NORMAL); err != nil {
		return nil, nil, err
	} else if ok {
		normals, err := modeler.ReadNormal(doc, acc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read normals: %w", err)
		}
		for i := range min(len(normals), len(vertices)) {
			vertices[i].Normal = normals[i]
		}
	}

	if acc, ok, err := attributeAccessor(doc, prim, gltf.TANGENT); err != nil {
		return nil, nil, err
	} else if ok {
		tangents, err := modeler.ReadTangent(doc, acc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read tangents: %w", err)
		}
		for i := range min(len(tangents), len(vertices)) {
			vertices[i].Tangent = tangents[i]
		}
	}

	if acc, ok, err := attributeAccessor(doc, prim, gltf.TEXCOORD_0); err != nil {
		return nil, nil, err
	} else if ok {
		uvs, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read texcoords: %w", err)
		}
		for i := range min(len(uvs), len(vertices)) {
			vertices[i].UV = uvs[i]
		}
	}

	if acc, ok, err := attributeAccessor(doc, prim, gltf.COLOR_0); err != nil {
		return nil, nil, err
	} else if ok {
		colors, err := readColors(doc, acc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read colors: %w", err)
		}
		for i := range min(len(colors), len(vertices)) {
			vertices[i].Color = colors[i]
		}
	}

	if acc, ok, err := attributeAccessor(doc, prim, gltf.JOINTS_0); err != nil {
		return nil, nil, err
	} else if ok {
		joints, err := modeler.ReadJoints(doc, acc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read joints: %w", err)
		}
		for i := range min(len(joints), len(vertices)) {
			j := joints[i]
			vertices[i].Joints = [4]uint32{uint32(j[0]), uint32(j[1]), uint32(j[2]), uint32(j[3])}
		}
	}

	if acc, ok, err := attributeAccessor(doc, prim, gltf.WEIGHTS_0); err != nil {
		return nil, nil, err
	} else if ok {
		weights, err := modeler.ReadWeights(doc, acc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read weights: %w", err)
		}
		for i := range min(len(weights), len(vertices)) {
			vertices[i].Weights = weights[i]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
			return nil, nil, fmt.Errorf("index accessor %d out of range", *prim.Indices)
		}
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for i, idx := range indices {
			if int(idx) >= len(vertices) {
				return nil, nil, fmt.Errorf("index %d at position %d exceeds %d vertices", idx, i, len(vertices))
			}
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return vertices, indices, nil
}

// attributeAccessor looks up a primitive attribute. A missing attribute is not an error; an
// attribute pointing past the accessor list is.
func attributeAccessor(doc *gltf.Document, prim *gltf.Primitive, name string) (*gltf.Accessor, bool, error) {
	idx, ok := prim.Attributes[name]
	if !ok {
		return nil, false, nil
	}
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, false, fmt.Errorf("%s accessor %d out of range", name, idx)
	}
	return doc.Accessors[idx], true, nil
}

// readColors reads COLOR_0 as RGBA floats. RGB colors get alpha 1 and normalized integer
// components are scaled to [0, 1].
func readColors(doc *gltf.Document, acc *gltf.Accessor) ([][4]float32, error) {
	data, err := modeler.ReadAccessor(doc, acc, nil)
	if err != nil {
		return nil, err
	}
	switch c := data.(type) {
	case [][4]float32:
		return c, nil
	case [][3]float32:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{v[0], v[1], v[2], 1}
		}
		return out, nil
	case [][4]uint8:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{unorm8(v[0]), unorm8(v[1]), unorm8(v[2]), unorm8(v[3])}
		}
		return out, nil
	case [][3]uint8:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{unorm8(v[0]), unorm8(v[1]), unorm8(v[2]), 1}
		}
		return out, nil
	case [][4]uint16:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{unorm16(v[0]), unorm16(v[1]), unorm16(v[2]), unorm16(v[3])}
		}
		return out, nil
	case [][3]uint16:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{unorm16(v[0]), unorm16(v[1]), unorm16(v[2]), 1}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported color accessor type %T", data)
	}
}

func unorm8(v uint8) float32   { return float32(v) / 255 }
func unorm16(v uint16) float32 { return float32(v) / 65535 }
