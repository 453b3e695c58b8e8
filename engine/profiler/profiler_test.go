package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickDisabled(t *testing.T) {
	p := NewProfiler()
	_, ok := p.Tick(false)
	assert.False(t, ok)
	assert.False(t, p.Enabled())
}

func TestTickReportsInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler(
		WithEnabled(true),
		WithInterval(time.Second),
		WithClock(clock.now),
		WithLogger(zap.New(core)),
	)

	for i := 0; i < 59; i++ {
		clock.advance(10 * time.Millisecond)
		_, ok := p.Tick(i%10 == 0)
		require.False(t, ok)
	}
	clock.advance(500 * time.Millisecond)
	s, ok := p.Tick(false)
	require.True(t, ok)

	assert.Equal(t, 60, s.Frames)
	assert.Equal(t, 6, s.Skipped)
	assert.InDelta(t, 60/1.09, s.FPS, 0.001)
	assert.Equal(t, 1090*time.Millisecond, s.IntervalLength)
	assert.Greater(t, s.SysMB, 0.0)

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(60), entries[0].ContextMap()["frames"])

	clock.advance(10 * time.Millisecond)
	_, ok = p.Tick(false)
	assert.False(t, ok, "counters restart after a sample")
}

func TestToggleRestartsCounters(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now))

	clock.advance(5 * time.Second)
	assert.True(t, p.Toggle())
	clock.advance(100 * time.Millisecond)
	_, ok := p.Tick(false)
	assert.False(t, ok, "interval starts when enabled")

	assert.False(t, p.Toggle())
	assert.False(t, p.Enabled())
}
