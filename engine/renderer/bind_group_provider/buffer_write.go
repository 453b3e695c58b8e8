package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/gpu"
)

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// WriteBuffers performs the writes in order through the queue.
//
// Parameters:
//   - queue: the shared command queue
//   - writes: the buffer writes to perform
//
// Returns:
//   - error: a fatal resource error for a missing binding or a rejected write
func WriteBuffers(queue gpu.CommandQueue, writes ...BufferWrite) error {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			return common.NewResourceError(w.Provider.Label(), fmt.Errorf("no buffer at binding %d", w.Binding))
		}
		if err := queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return common.NewResourceError(w.Provider.Label(), err)
		}
	}
	return nil
}
