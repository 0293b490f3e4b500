package bind_group_provider

// BindGroupProviderOption is a functional option applied to a bindGroupProvider during construction via
// NewBindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLabel sets the debug label used in log fields. It defaults to the registry's label.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - BindGroupProviderOption: a function that applies the label option to a bindGroupProvider
func WithLabel(label string) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.label = label
	}
}
