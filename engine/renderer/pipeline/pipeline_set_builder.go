package pipeline

// PipelineSetBuilderOption is a functional option applied to a pipelineSet during construction via NewPipelineSet.
type PipelineSetBuilderOption func(*pipelineSet)

// WithWorkers sets the maximum number of pipelines compiled concurrently by Build. Values below 1 are ignored.
//
// Parameters:
//   - n: the number of compile workers
//
// Returns:
//   - PipelineSetBuilderOption: a function that applies the workers option to a pipelineSet
func WithWorkers(n int) PipelineSetBuilderOption {
	return func(s *pipelineSet) {
		if n > 0 {
			s.workers = n
		}
	}
}
