package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) record(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func newWatched(t *testing.T, debounce time.Duration) (*Watcher, *recorder, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.glb")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	rec := &recorder{}
	w, err := New(rec.record, WithDebounce(debounce))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	require.NoError(t, w.Watch(path))

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return w, rec, abs
}

func TestWatchReportsWrites(t *testing.T) {
	_, rec, path := newWatched(t, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))

	require.Eventually(t, func() bool { return len(rec.get()) > 0 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, path, rec.get()[0])
}

func TestWatchDebouncesBursts(t *testing.T) {
	_, rec, path := newWatched(t, 300*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(rec.get()) > 0 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Len(t, rec.get(), 1)
}

func TestWatchIgnoresSiblings(t *testing.T) {
	_, rec, path := newWatched(t, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.glb"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, rec.get())
}

func TestUnwatchAndClose(t *testing.T) {
	w, rec, path := newWatched(t, 10*time.Millisecond)

	require.NoError(t, w.Unwatch(path))
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, rec.get())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Watch(path), ErrClosed)
}
