package texture

import (
	"go.uber.org/zap"
)

// PackerBuilderOption is a functional option for configuring Pack.
type PackerBuilderOption func(*packer)

// WithLogger is an option builder that sets the logger used to report dropped images.
//
// Parameters:
//   - log: the logger; nil keeps the no-op logger
//
// Returns:
//   - PackerBuilderOption: a function that applies the logger option to the packer
func WithLogger(log *zap.Logger) PackerBuilderOption {
	return func(p *packer) {
		if log != nil {
			p.log = log
		}
	}
}

// WithLabel is an option builder that sets the label prefix of every created texture and sampler.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - PackerBuilderOption: a function that applies the label option to the packer
func WithLabel(label string) PackerBuilderOption {
	return func(p *packer) {
		if label != "" {
			p.label = label
		}
	}
}
