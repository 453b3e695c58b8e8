// Package profiler samples frame rate and Go heap statistics for the viewer's render loop.
package profiler

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sample is one reporting interval.
type Sample struct {
	FPS            float64
	Frames         int
	Skipped        int
	HeapMB         float64
	SysMB          float64
	AllocRateMBps  float64
	GCCount        uint32
	LastGCPause    time.Duration
	MaxGCPause     time.Duration
	IntervalLength time.Duration
}

// Profiler counts frames and logs a Sample every interval while enabled.
type Profiler struct {
	mu sync.Mutex

	enabled  bool
	interval time.Duration
	now      func() time.Time

	frames   int
	skipped  int
	lastTime time.Time

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	log *zap.Logger
}

// NewProfiler creates a disabled Profiler reporting once per second.
//
// Parameters:
//   - opts: functional options
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		interval: time.Second,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// SetEnabled turns reporting on or off. Counters restart when reporting is turned on.
func (p *Profiler) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if enabled && !p.enabled {
		p.frames, p.skipped = 0, 0
		p.lastTime = p.now()
	}
	p.enabled = enabled
	p.log.Info("profiler toggled", zap.Bool("enabled", enabled))
}

// Toggle flips reporting and returns the new state.
func (p *Profiler) Toggle() bool {
	p.mu.Lock()
	enabled := !p.enabled
	p.mu.Unlock()
	p.SetEnabled(enabled)
	return enabled
}

// Enabled reports whether the profiler is logging.
func (p *Profiler) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Tick records one render loop iteration. It returns the Sample and true when an interval
// closed on this tick.
//
// Parameters:
//   - skipped: whether the frame was skipped instead of drawn
//
// Returns:
//   - Sample: the closed interval
//   - bool: true if a sample was produced and logged
func (p *Profiler) Tick(skipped bool) (Sample, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return Sample{}, false
	}

	p.frames++
	if skipped {
		p.skipped++
	}
	now := p.now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.interval {
		return Sample{}, false
	}

	s := p.sample(elapsed)
	p.log.Info("frame stats",
		zap.Float64("fps", s.FPS),
		zap.Int("frames", s.Frames),
		zap.Int("skipped", s.Skipped),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_rate_mb_s", s.AllocRateMBps),
		zap.Uint32("gc", s.GCCount),
		zap.Duration("gc_last_pause", s.LastGCPause),
		zap.Duration("gc_max_pause", s.MaxGCPause),
		zap.Float64("sys_mb", s.SysMB),
	)

	p.frames, p.skipped = 0, 0
	p.lastTime = now
	return s, true
}

// sample reads the runtime statistics for an interval of the given length. Caller holds mu.
func (p *Profiler) sample(elapsed time.Duration) Sample {
	runtime.ReadMemStats(&p.memStats)

	s := Sample{
		FPS:            float64(p.frames) / elapsed.Seconds(),
		Frames:         p.frames,
		Skipped:        p.skipped,
		HeapMB:         float64(p.memStats.Alloc) / (1 << 20),
		SysMB:          float64(p.memStats.Sys) / (1 << 20),
		AllocRateMBps:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / (1 << 20) / elapsed.Seconds(),
		GCCount:        p.memStats.NumGC,
		IntervalLength: elapsed,
	}

	// PauseNs is a ring of the last 256 pauses.
	if n := s.GCCount; n > 0 {
		s.LastGCPause = time.Duration(p.memStats.PauseNs[(n-1)%256])
		start := p.lastGCCount
		if n-start > 256 {
			start = n - 256
		}
		for i := start; i < n; i++ {
			s.MaxGCPause = max(s.MaxGCPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s
}
