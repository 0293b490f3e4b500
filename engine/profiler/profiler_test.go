package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickLogsAfterInterval(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Zero(t, p.FPS())

	p.Skip()
	assert.True(t, p.Tick())
	assert.Greater(t, p.FPS(), 0.0)
	assert.Zero(t, p.skipped)
	assert.Zero(t, p.frameCount)
}

func TestTickWaitsForInterval(t *testing.T) {
	p := NewProfiler(WithInterval(time.Hour))
	for range 5 {
		assert.False(t, p.Tick())
	}
	assert.Equal(t, 5, p.frameCount)
	assert.Zero(t, p.FPS())
}
