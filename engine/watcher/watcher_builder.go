package watcher

import (
	"time"

	"go.uber.org/zap"
)

// WatcherOption is a functional option for configuring a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long a file must stay quiet before the handler runs. Zero reports
// after the next scheduler tick.
//
// Parameters:
//   - d: the quiet period
//
// Returns:
//   - WatcherOption: a function that applies the debounce option
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for change and error reports.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - WatcherOption: a function that applies the logger option
func WithLogger(log *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}
