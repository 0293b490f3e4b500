package registry

// RegistryBuilderOption is a functional option applied to a registry during construction via NewRegistry.
type RegistryBuilderOption func(*registry)

// WithLabel sets the debug label used in the registry's log fields and error messages.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - RegistryBuilderOption: a function that applies the label option to a registry
func WithLabel(label string) RegistryBuilderOption {
	return func(r *registry) {
		r.label = label
	}
}
