package loader

import (
	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger is an option builder that sets the logger used for parse and decode events.
//
// Parameters:
//   - log: the logger; nil keeps the no-op logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(log *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithDecodeWorkers is an option builder that sets the maximum number of image decode workers.
//
// Parameters:
//   - n: the worker count; values below 1 are ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithDecodeWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.decodeWorkers = n
		}
	}
}

// WithDecodeQueue is an option builder that sets the decode task queue size.
func WithDecodeQueue(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.decodeQueue = n
		}
	}
}

// WithDocumentSamplers is an option builder that makes decoded images carry the sampler of the
// first texture referencing them instead of the packer default.
func WithDocumentSamplers(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.documentSamplers = enabled
	}
}
