package shader

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
)

// MergeBindGroupLayouts combines the bind group layouts declared by the stages of one pipeline.
// Bindings declared by more than one stage are merged with their visibility ORed together. The result
// is indexed by group number; groups no stage declares are empty.
//
// Parameters:
//   - shaders: the pipeline's stages
//
// Returns:
//   - []renderer.BindGroupLayout: merged layouts indexed by group
//   - error: an error if two stages declare the same binding with different kinds
func MergeBindGroupLayouts(shaders ...Shader) ([]renderer.BindGroupLayout, error) {
	maxGroup := -1
	for _, s := range shaders {
		for g := range s.BindGroupLayouts() {
			maxGroup = max(maxGroup, g)
		}
	}

	merged := make([]renderer.BindGroupLayout, maxGroup+1)
	for g := range merged {
		byBinding := make(map[uint32]renderer.BindingLayoutEntry)
		for _, s := range shaders {
			l, ok := s.BindGroupLayout(g)
			if !ok {
				continue
			}
			for _, e := range l.Entries {
				prev, seen := byBinding[e.Binding]
				if !seen {
					byBinding[e.Binding] = e
					continue
				}
				if prev.Kind != e.Kind {
					return nil, fmt.Errorf("@group(%d) @binding(%d): %s in one stage, %s in %s",
						g, e.Binding, prev.Kind, e.Kind, s.Key())
				}
				prev.Visibility |= e.Visibility
				prev.MinBindingSize = max(prev.MinBindingSize, e.MinBindingSize)
				byBinding[e.Binding] = prev
			}
		}
		entries := make([]renderer.BindingLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			entries = append(entries, e)
		}
		slices.SortFunc(entries, func(a, b renderer.BindingLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		merged[g] = renderer.BindGroupLayout{Entries: entries}
	}
	return merged, nil
}
