package bind_group_provider

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dev    *gputest.Device
	layout gpu.BindGroupLayout
	buf    gpu.Buffer
	view   gpu.TextureView
	samp   gpu.Sampler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dev := gputest.NewDevice()
	layout, err := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{Label: "Material Layout"})
	require.NoError(t, err)
	buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{Label: "Material Uniform", Size: 80})
	require.NoError(t, err)
	tex, err := dev.CreateTexture(&wgpu.TextureDescriptor{Label: "tex"})
	require.NoError(t, err)
	view, err := tex.CreateView()
	require.NoError(t, err)
	samp, err := dev.CreateSampler(&wgpu.SamplerDescriptor{Label: "samp"})
	require.NoError(t, err)
	return fixture{dev: dev, layout: layout, buf: buf, view: view, samp: samp}
}

func TestEntriesOrdered(t *testing.T) {
	f := newFixture(t)
	p := NewBindGroupProvider("Material Group",
		WithLayout(f.layout),
		WithTexturePair(3, f.view, f.samp),
		WithUniform(0, f.buf),
		WithTexturePair(1, f.view, f.samp),
	)
	assert.Equal(t, "Material Group", p.Label())

	entries := p.Entries()
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, uint32(i), e.Binding)
	}
	assert.Equal(t, f.buf, entries[0].Buffer)
	assert.Equal(t, uint64(80), entries[0].Size)
	assert.Equal(t, f.view, entries[1].TextureView)
	assert.Equal(t, f.samp, entries[2].Sampler)
	assert.Nil(t, entries[2].TextureView)
	assert.Equal(t, f.view, entries[3].TextureView)
	assert.Equal(t, f.samp, entries[4].Sampler)
}

func TestInitAndRelease(t *testing.T) {
	f := newFixture(t)
	p := NewBindGroupProvider("Camera Group", WithLayout(f.layout), WithUniform(0, f.buf))
	require.NoError(t, p.Init(f.dev))
	require.Len(t, f.dev.BindGroups, 1)
	assert.Equal(t, f.dev.BindGroups[0], p.BindGroup())
	assert.Equal(t, f.layout, f.dev.BindGroups[0].Desc.Layout)
	assert.Equal(t, "Camera Group", f.dev.BindGroups[0].Label)

	require.NoError(t, p.Init(f.dev))
	assert.True(t, f.dev.BindGroups[0].Released, "re-init replaces the old group")

	p.Release()
	assert.True(t, f.dev.BindGroups[1].Released)
	assert.True(t, f.dev.Buffers[0].Released)
	assert.False(t, f.dev.Samplers[0].Released)
	assert.False(t, f.dev.BindGroupLayouts[0].Released, "layouts are borrowed")
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
}

func TestInitFailures(t *testing.T) {
	f := newFixture(t)
	err := NewBindGroupProvider("no layout").Init(f.dev)
	assert.ErrorIs(t, err, common.ErrFatalResource)

	f.dev.FailOn("CreateBindGroup", errors.New("binding mismatch"))
	err = NewBindGroupProvider("bad", WithLayout(f.layout)).Init(f.dev)
	assert.ErrorIs(t, err, common.ErrFatalResource)
}

func TestWriteBuffers(t *testing.T) {
	f := newFixture(t)
	q := gputest.NewQueue()
	p := NewBindGroupProvider("Light Group", WithUniform(0, f.buf))

	require.NoError(t, WriteBuffers(q, BufferWrite{Provider: p, Binding: 0, Offset: 16, Data: []byte{1, 2, 3, 4}}))
	writes := q.WritesTo(f.buf)
	require.Len(t, writes, 1)
	assert.Equal(t, uint64(16), writes[0].Offset)
	assert.Equal(t, []byte{1, 2, 3, 4}, writes[0].Data)

	err := WriteBuffers(q, BufferWrite{Provider: p, Binding: 5, Data: []byte{0}})
	assert.ErrorIs(t, err, common.ErrFatalResource)

	q.WriteErr = errors.New("lost device")
	err = WriteBuffers(q, BufferWrite{Provider: p, Binding: 0, Data: []byte{0}})
	assert.ErrorIs(t, err, common.ErrFatalResource)
}
