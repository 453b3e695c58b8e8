package profiler

import (
	"time"

	"go.uber.org/zap"
)

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a sample is logged. Non-positive values keep one second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithEnabled starts the profiler enabled.
func WithEnabled(enabled bool) ProfilerOption {
	return func(p *Profiler) {
		p.enabled = enabled
	}
}

// WithLogger sets the logger samples are written to.
func WithLogger(log *zap.Logger) ProfilerOption {
	return func(p *Profiler) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
