package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	m := NewMaterial("default")
	assert.Equal(t, "default", m.Name())
	assert.Equal(t, GPUMaterial{Ambient: 0.4, Diffuse: 0.04, Specular: 0.4, Shininess: 30}, m.GPU())
}

func TestMarshalMatchesLayout(t *testing.T) {
	m := NewMaterial("m", WithAmbient(0.1), WithDiffuse(0.2), WithSpecular(0.3), WithShininess(8))
	g := m.GPU()

	assert.Equal(t, int(Layout.Size()), g.Size())
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 8}, common.BytesToFloat32s(g.Marshal()))

	off, ok := Layout.Offset("shininess")
	assert.True(t, ok)
	assert.Equal(t, uint64(12), off)
}
