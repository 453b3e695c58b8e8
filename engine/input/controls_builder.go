package input

import "go.uber.org/zap"

// ControlsOption is a functional option for configuring Controls.
type ControlsOption func(*Controls)

// WithCommandHandler sets the function receiving viewer commands. It runs on the thread that
// delivered the input event.
//
// Parameters:
//   - handler: the command handler
//
// Returns:
//   - ControlsOption: a function that applies the handler option
func WithCommandHandler(handler func(cmd Command, args []string)) ControlsOption {
	return func(c *Controls) {
		c.onCommand = handler
	}
}

// WithLogger sets the logger used for command tracing.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - ControlsOption: a function that applies the logger option
func WithLogger(log *zap.Logger) ControlsOption {
	return func(c *Controls) {
		if log != nil {
			c.log = log
		}
	}
}
