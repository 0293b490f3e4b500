package registry

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadWithinBounds(t *testing.T) {
	ctx := renderer.NewRecordingContext()
	reg := NewRegistry(ctx)

	h, err := reg.Allocate("light", renderer.BufferUsageUniform, 48)
	require.NoError(t, err)

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	require.NoError(t, reg.Upload(h, 32, data))

	want := make([]byte, 48)
	copy(want[32:], data)
	assert.Equal(t, want, reg.Contents(h))
	assert.Equal(t, want, ctx.BufferContents(h))
	assert.Equal(t, uint64(48), reg.Size(h))
	assert.Equal(t, renderer.BufferUsageUniform, reg.Usage(h))
}

func TestUploadOutOfBounds(t *testing.T) {
	tests := []struct {
		name   string
		size   uint64
		offset uint64
		n      int
	}{
		{"one byte past end", 64, 0, 65},
		{"offset at end", 64, 64, 1},
		{"offset past end", 16, 32, 4},
		{"tail overflow", 16, 12, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := renderer.NewRecordingContext()
			reg := NewRegistry(ctx)
			h, err := reg.Allocate("buf", renderer.BufferUsageStorage, tt.size)
			require.NoError(t, err)

			err = reg.Upload(h, tt.offset, make([]byte, tt.n))
			assert.ErrorIs(t, err, renderer.ErrOutOfBoundsWrite)
			assert.Empty(t, ctx.Writes())
			assert.Equal(t, make([]byte, tt.size), reg.Contents(h))
		})
	}
}

func TestUploadExactFit(t *testing.T) {
	reg := NewRegistry(renderer.NewRecordingContext())
	h, err := reg.Allocate("vp", renderer.BufferUsageUniform, 64)
	require.NoError(t, err)

	assert.NoError(t, reg.Upload(h, 0, make([]byte, 64)))
	assert.NoError(t, reg.Upload(h, 60, make([]byte, 4)))
	assert.NoError(t, reg.Upload(h, 64, nil))
}

func TestUploadRejectsImmutableAndUnknown(t *testing.T) {
	reg := NewRegistry(renderer.NewRecordingContext())
	vb, err := reg.AllocateWithData("positions", renderer.BufferUsageVertex, make([]byte, 36))
	require.NoError(t, err)

	assert.ErrorIs(t, reg.Upload(vb, 0, []byte{1}), renderer.ErrOutOfBoundsWrite)
	assert.ErrorIs(t, reg.Upload(renderer.BufferHandle(999), 0, []byte{1}), renderer.ErrOutOfBoundsWrite)
	assert.Nil(t, reg.Contents(vb))
}

func TestUploadAllIsAllOrNothing(t *testing.T) {
	ctx := renderer.NewRecordingContext()
	reg := NewRegistry(ctx)
	a, err := reg.Allocate("a", renderer.BufferUsageUniform, 16)
	require.NoError(t, err)
	b, err := reg.Allocate("b", renderer.BufferUsageUniform, 16)
	require.NoError(t, err)

	err = reg.UploadAll([]BufferWrite{
		{Buffer: a, Offset: 0, Data: []byte{1, 1, 1, 1}},
		{Buffer: b, Offset: 8, Data: make([]byte, 16)},
	})
	assert.ErrorIs(t, err, renderer.ErrOutOfBoundsWrite)
	assert.Empty(t, ctx.Writes())

	require.NoError(t, reg.UploadAll([]BufferWrite{
		{Buffer: a, Offset: 0, Data: []byte{1, 1, 1, 1}},
		{Buffer: b, Offset: 12, Data: []byte{2, 2, 2, 2}},
	}))
	assert.Len(t, ctx.Writes(), 2)
	assert.Equal(t, []byte{2, 2, 2, 2}, reg.Contents(b)[12:])
}

func TestAllocateValidation(t *testing.T) {
	reg := NewRegistry(renderer.NewRecordingContext())

	_, err := reg.Allocate("vertex", renderer.BufferUsageVertex, 12)
	assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)

	_, err = reg.Allocate("empty", renderer.BufferUsageUniform, 0)
	assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)

	_, err = reg.AllocateWithData("uniform", renderer.BufferUsageUniform, []byte{1})
	assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)

	_, err = reg.AllocateDepthTexture("shadow", 0)
	assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)
}

func TestAllocateContextFailure(t *testing.T) {
	deviceLost := errors.New("device lost")
	reg := NewRegistry(renderer.NewRecordingContext(
		renderer.WithFailure("texture", deviceLost),
		renderer.WithFailure("sampler:shadow", deviceLost),
	))

	_, err := reg.AllocateDepthTexture("shadow map", 2048)
	assert.ErrorIs(t, err, renderer.ErrResourceCreationFailure)
	assert.ErrorIs(t, err, deviceLost)

	_, err = reg.AllocateComparisonSampler("shadow")
	assert.ErrorIs(t, err, deviceLost)

	s, err := reg.AllocateComparisonSampler("other")
	require.NoError(t, err)
	assert.True(t, reg.HasSampler(s))
}

func TestDepthTextureResolution(t *testing.T) {
	reg := NewRegistry(renderer.NewRecordingContext(), WithLabel("test"))
	h, err := reg.AllocateDepthTexture("shadow map", 2048)
	require.NoError(t, err)
	assert.Equal(t, uint32(2048), reg.TextureResolution(h))
	assert.Equal(t, "test", reg.Label())
}
