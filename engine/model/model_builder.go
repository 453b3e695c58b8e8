package model

// ModelBuilderOption configures the Model returned by Upload.
type ModelBuilderOption func(*model)

// WithName sets the prefix of the vertex and index buffer labels. Empty names keep "Model".
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		if name != "" {
			m.name = name
		}
	}
}
