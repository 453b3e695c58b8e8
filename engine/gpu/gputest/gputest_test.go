package gputest

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceRecordsAndFails(t *testing.T) {
	dev := NewDevice()
	buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{Label: "Vertex Buffer", Size: 96})
	require.NoError(t, err)
	assert.Equal(t, uint64(96), buf.Size())
	assert.Same(t, buf, gpu.Buffer(dev.BufferByLabel("Vertex Buffer")))

	boom := errors.New("out of memory")
	dev.FailOn("CreateBuffer", boom)
	_, err = dev.CreateBuffer(&wgpu.BufferDescriptor{Label: "Index Buffer"})
	assert.ErrorIs(t, err, boom)

	dev.FailOn("CreateBuffer", nil)
	_, err = dev.CreateBuffer(&wgpu.BufferDescriptor{Label: "Index Buffer"})
	assert.NoError(t, err)
	assert.Len(t, dev.Buffers, 2)
}

func TestQueueCopiesData(t *testing.T) {
	dev := NewDevice()
	q := NewQueue()
	buf, _ := dev.CreateBuffer(&wgpu.BufferDescriptor{Label: "b", Size: 4})
	data := []byte{1, 2, 3, 4}
	require.NoError(t, q.WriteBuffer(buf, 0, data))
	data[0] = 9
	writes := q.WritesTo(buf)
	require.Len(t, writes, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, writes[0].Data)
}

func TestSurfaceAcquire(t *testing.T) {
	dev := NewDevice()
	s := NewSurface(dev, 640, 480)
	tex, err := s.AcquireTexture()
	require.NoError(t, err)
	assert.Equal(t, uint32(640), tex.Width())

	s.AcquireErr = errors.New("outdated")
	_, err = s.AcquireTexture()
	assert.Error(t, err)
	s.Present()
	assert.Equal(t, 1, s.Presents)
}
