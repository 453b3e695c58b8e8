package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func encodeGLB(t *testing.T, doc *gltf.Document) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	return buf.Bytes()
}

func triangleDoc() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Name:       "Triangle",
		Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: pos}}},
	}}
	return doc
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPositionsOnlyTriangle(t *testing.T) {
	doc, err := Parse(encodeGLB(t, triangleDoc()))
	require.NoError(t, err)

	mesh, err := ExtractMesh(doc)
	require.NoError(t, err)
	require.Len(t, mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)

	for i, v := range mesh.Vertices {
		want := model.DefaultVertex(v.Position)
		assert.Equal(t, want, v, "vertex %d should carry only defaults besides position", i)
	}
	assert.Equal(t, [3]float32{1, 0, 0}, mesh.Vertices[1].Position)
}

func TestIndexContinuity(t *testing.T) {
	doc := gltf.NewDocument()
	posA := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idxA := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	posB := modeler.WritePosition(doc, [][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}})
	idxB := modeler.WriteAccessor(doc, gltf.TargetElementArrayBuffer, []uint8{0, 1, 2, 2, 3, 0})
	posC := modeler.WritePosition(doc, [][3]float32{{2, 0, 0}, {3, 0, 0}, {2, 1, 0}})
	doc.Meshes = []*gltf.Mesh{
		{Primitives: []*gltf.Primitive{
			{Attributes: map[string]int{gltf.POSITION: posA}, Indices: gltf.Index(idxA)},
			{Attributes: map[string]int{gltf.POSITION: posB}, Indices: gltf.Index(idxB)},
		}},
		{Primitives: []*gltf.Primitive{
			{Attributes: map[string]int{gltf.POSITION: posC}},
		}},
	}

	parsed, err := Parse(encodeGLB(t, doc))
	require.NoError(t, err)
	mesh, err := ExtractMesh(parsed)
	require.NoError(t, err)

	require.Equal(t, gltf.ComponentUbyte, parsed.Accessors[idxB].ComponentType)
	require.Len(t, mesh.Vertices, 10)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 5, 6, 3, 7, 8, 9}, mesh.Indices)

	ranges := [][2]uint32{{0, 3}, {3, 7}, {7, 10}}
	counts := []int{3, 6, 3}
	cursor := 0
	for k, r := range ranges {
		for _, idx := range mesh.Indices[cursor : cursor+counts[k]] {
			assert.GreaterOrEqual(t, idx, r[0])
			assert.Less(t, idx, r[1])
		}
		cursor += counts[k]
	}
}

func TestIndexOutsidePrimitiveRejected(t *testing.T) {
	doc := gltf.NewDocument()
	posA := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idxA := modeler.WriteIndices(doc, []uint16{0, 1, 3})
	posB := modeler.WritePosition(doc, [][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}})
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{
		{Attributes: map[string]int{gltf.POSITION: posA}, Indices: gltf.Index(idxA)},
		{Attributes: map[string]int{gltf.POSITION: posB}},
	}}}

	_, err := ExtractMesh(doc)
	assert.ErrorIs(t, err, common.ErrFatalAsset)
	assert.Contains(t, err.Error(), "index 3 at position 2 exceeds 3 vertices")
}

func TestPrimitiveWithoutPositionsContributesNothing(t *testing.T) {
	doc := gltf.NewDocument()
	normals := modeler.WriteNormal(doc, [][3]float32{{0, 1, 0}})
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{
		{Attributes: map[string]int{gltf.NORMAL: normals}},
		{Attributes: map[string]int{gltf.POSITION: pos}},
	}}}

	mesh, err := ExtractMesh(doc)
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

func TestOptionalAttributes(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0.5, 0.25}, {1, 1}})
	col := modeler.WriteColor(doc, [][4]uint8{{255, 0, 0, 255}, {0, 255, 0, 51}})
	jnt := modeler.WriteJoints(doc, [][4]uint8{{1, 2, 3, 4}, {5, 6, 7, 8}})
	wgt := modeler.WriteWeights(doc, [][4]float32{{0.25, 0.25, 0.25, 0.25}, {1, 0, 0, 0}})
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{Attributes: map[string]int{
		gltf.POSITION:   pos,
		gltf.NORMAL:     nrm,
		gltf.TEXCOORD_0: uv,
		gltf.COLOR_0:    col,
		gltf.JOINTS_0:   jnt,
		gltf.WEIGHTS_0:  wgt,
	}}}}}

	parsed, err := Parse(encodeGLB(t, doc))
	require.NoError(t, err)
	mesh, err := ExtractMesh(parsed)
	require.NoError(t, err)
	require.Len(t, mesh.Vertices, 2)

	v := mesh.Vertices[1]
	assert.Equal(t, [3]float32{0, 0, 1}, v.Normal)
	assert.Equal(t, [2]float32{1, 1}, v.UV)
	assert.InDelta(t, 1.0, v.Color[1], 1e-6)
	assert.InDelta(t, 0.2, v.Color[3], 1e-6)
	assert.Equal(t, [4]uint32{5, 6, 7, 8}, v.Joints)
	assert.Equal(t, [4]float32{1, 0, 0, 0}, v.Weights)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, v.Tangent, "tangent keeps its default")
}

func TestReadColorsRGB(t *testing.T) {
	colors, err := readColorsFrom([][3]float32{{0.5, 0.5, 0.5}})
	require.NoError(t, err)
	assert.Equal(t, [][4]float32{{0.5, 0.5, 0.5, 1}}, colors)
}

// readColorsFrom runs the color conversion on an in-memory accessor.
func readColorsFrom(data any) ([][4]float32, error) {
	doc := gltf.NewDocument()
	idx := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, data)
	return readColors(doc, doc.Accessors[idx])
}

func TestClassifyPBR(t *testing.T) {
	unlit := &gltf.Document{Materials: []*gltf.Material{
		{Name: "plain"},
		{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{MetallicFactor: f64(1), RoughnessFactor: f64(1)}},
	}}
	assert.False(t, ClassifyPBR(unlit))
	assert.False(t, ClassifyPBR(&gltf.Document{}))
	assert.False(t, ClassifyPBR(nil))

	metallic := &gltf.Document{Materials: []*gltf.Material{
		{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{MetallicFactor: f64(0.2)}},
	}}
	assert.True(t, ClassifyPBR(metallic))

	textured := &gltf.Document{Materials: []*gltf.Material{
		{Name: "plain"},
		{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}}},
	}}
	assert.True(t, ClassifyPBR(textured))

	mr := &gltf.Document{Materials: []*gltf.Material{
		{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{MetallicRoughnessTexture: &gltf.TextureInfo{Index: 1}}},
	}}
	assert.True(t, ClassifyPBR(mr))

	for range 3 {
		assert.True(t, ClassifyPBR(textured), "classification is deterministic")
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("definitely not a container"))
	assert.ErrorIs(t, err, common.ErrFatalAsset)

	_, err = Parse(nil)
	assert.ErrorIs(t, err, common.ErrFatalAsset)

	glb := encodeGLB(t, triangleDoc())
	_, err = Parse(glb[:len(glb)/2])
	assert.ErrorIs(t, err, common.ErrFatalAsset)
}

func TestLoadDecodesImages(t *testing.T) {
	doc := triangleDoc()

	rgba := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	rgba.Set(0, 0, color.NRGBA{R: 255, A: 128})
	rgba.Set(1, 1, color.NRGBA{B: 255, A: 255})
	_, err := modeler.WriteImage(doc, "alpha", "image/png", bytes.NewReader(pngBytes(t, rgba)))
	require.NoError(t, err)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 3, 2)), nil))
	_, err = modeler.WriteImage(doc, "", "image/jpeg", &jpg)
	require.NoError(t, err)

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	_, err = modeler.WriteImage(doc, "gray", "image/png", bytes.NewReader(pngBytes(t, gray)))
	require.NoError(t, err)

	l := NewLoader(WithDecodeWorkers(2))
	defer l.Close()
	asset, err := l.Load(encodeGLB(t, doc))
	require.NoError(t, err)
	require.Len(t, asset.Images, 3)

	alpha := asset.Images[0]
	assert.Equal(t, "alpha", alpha.Name)
	assert.Equal(t, "png", alpha.SourceFormat)
	assert.Equal(t, common.PixelFormatRGBA8, alpha.Format)
	require.Len(t, alpha.Pixels, 16)
	assert.Equal(t, []byte{255, 0, 0, 128}, alpha.Pixels[0:4])
	assert.Equal(t, []byte{0, 0, 255, 255}, alpha.Pixels[12:16])

	photo := asset.Images[1]
	assert.Equal(t, "image_1", photo.Name)
	assert.Equal(t, common.PixelFormatRGB8, photo.Format)
	assert.Equal(t, uint32(3), photo.Width)
	assert.Len(t, photo.Pixels, 3*2*3)

	assert.Equal(t, common.PixelFormatUnknown, asset.Images[2].Format)
}

func TestLoadCorruptImage(t *testing.T) {
	doc := triangleDoc()
	_, err := modeler.WriteImage(doc, "broken", "image/png", bytes.NewReader([]byte("not a png")))
	require.NoError(t, err)

	_, err = NewLoader().Load(encodeGLB(t, doc))
	assert.ErrorIs(t, err, common.ErrFatalAsset)
}

func TestLoadNonImageBytes(t *testing.T) {
	doc := triangleDoc()
	_, err := modeler.WriteImage(doc, "notes", "image/png", bytes.NewReader([]byte("%PDF-1.4 not pixels")))
	require.NoError(t, err)

	_, err = NewLoader().Load(encodeGLB(t, doc))
	assert.ErrorIs(t, err, common.ErrFatalAsset)
	assert.ErrorContains(t, err, "is not an image (detected pdf)")
}

func TestCloseStopsDecoding(t *testing.T) {
	plain := encodeGLB(t, triangleDoc())
	textured := triangleDoc()
	_, err := modeler.WriteImage(textured, "white", "image/png", bytes.NewReader(pngBytes(t, image.NewRGBA(image.Rect(0, 0, 1, 1)))))
	require.NoError(t, err)
	withImage := encodeGLB(t, textured)

	l := NewLoader(WithDecodeWorkers(1))
	impl := l.(*loader)
	_, err = l.Load(plain)
	require.NoError(t, err)
	assert.Nil(t, impl.pool, "no workers start without images")

	_, err = l.Load(withImage)
	require.NoError(t, err)
	assert.NotNil(t, impl.pool)

	l.Close()
	assert.Nil(t, impl.pool)
	_, err = l.Load(withImage)
	assert.ErrorIs(t, err, common.ErrFatalAsset)
	assert.ErrorIs(t, err, ErrLoaderClosed)

	_, err = l.Load(plain)
	assert.NoError(t, err, "documents without images never touch the pool")
	l.Close()
}

func TestLoadAsset(t *testing.T) {
	data := encodeGLB(t, triangleDoc())
	l := NewLoader()

	a, err := l.Load(data)
	require.NoError(t, err)
	b, err := l.Load(data)
	require.NoError(t, err)

	assert.Len(t, a.Hash, 64)
	assert.Equal(t, a.Hash, b.Hash)
	assert.False(t, a.IsPBR)
	assert.Equal(t, 1, a.Summary.Meshes)
	assert.Equal(t, 1, a.Summary.Primitives)
	assert.Equal(t, 3, a.Mesh.VertexCount())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, os.WriteFile(path, encodeGLB(t, triangleDoc()), 0o644))

	asset, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tri.glb", asset.Name)

	_, err = NewLoader().LoadFile(filepath.Join(t.TempDir(), "missing.glb"))
	assert.Error(t, err)
}

func TestDocumentSamplers(t *testing.T) {
	doc := &gltf.Document{
		Samplers: []*gltf.Sampler{{WrapS: gltf.WrapClampToEdge, WrapT: gltf.WrapMirroredRepeat, MagFilter: gltf.MagNearest}},
		Textures: []*gltf.Texture{
			{Source: gltf.Index(0)},
			{Source: gltf.Index(1), Sampler: gltf.Index(0)},
		},
	}
	assert.Nil(t, documentSampler(doc, 0))
	assert.Nil(t, documentSampler(doc, 5))

	s := documentSampler(doc, 1)
	require.NotNil(t, s)
	assert.Equal(t, wgpu.AddressModeClampToEdge, s.AddressModeU)
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, s.AddressModeV)
	assert.Equal(t, wgpu.FilterModeNearest, s.MagFilter)
	assert.Equal(t, wgpu.FilterModeLinear, s.MinFilter)
}

func TestSummarize(t *testing.T) {
	doc := triangleDoc()
	doc.Asset.Generator = "unit"
	s := Summarize(doc)
	assert.Equal(t, "unit", s.Generator)
	assert.Equal(t, 1, s.Primitives)
	assert.Len(t, s.Fields(), 9)
	assert.Equal(t, Summary{}, Summarize(nil))
}
