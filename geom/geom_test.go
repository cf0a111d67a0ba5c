package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormDeviceCenterAndCorners(t *testing.T) {
	box := Box{Width: 200, Height: 100}

	nx, ny := NormDevice(box, 100, 50)
	assert.InDelta(t, 0, nx, 1e-9)
	assert.InDelta(t, 0, ny, 1e-9)

	nx, ny = NormDevice(box, 0, 0)
	assert.InDelta(t, -1, nx, 1e-9)
	assert.InDelta(t, -1, ny, 1e-9)

	nx, ny = NormDevice(box, 200, 100)
	assert.InDelta(t, 1, nx, 1e-9)
	assert.InDelta(t, 1, ny, 1e-9)
}

func TestInferEdgesSingle(t *testing.T) {
	box := Box{Width: 1000, Height: 1000}

	// dead center of the top band
	assert.Equal(t, EdgeTop, InferEdges(box, 500, 50))
	assert.Equal(t, EdgeBottom, InferEdges(box, 500, 950))
	assert.Equal(t, EdgeLeft, InferEdges(box, 50, 500))
	assert.Equal(t, EdgeRight, InferEdges(box, 950, 500))
}

func TestInferEdgesCorners(t *testing.T) {
	box := Box{Width: 1000, Height: 1000}

	assert.Equal(t, EdgeTop|EdgeLeft, InferEdges(box, 100, 100))
	assert.Equal(t, EdgeTop|EdgeRight, InferEdges(box, 900, 100))
	assert.Equal(t, EdgeBottom|EdgeLeft, InferEdges(box, 100, 900))
	assert.Equal(t, EdgeBottom|EdgeRight, InferEdges(box, 900, 900))
}

func TestInferEdgesCenterFallsToCorner(t *testing.T) {
	box := Box{Width: 1000, Height: 1000}

	// the exact center is not a single-edge region
	edges := InferEdges(box, 500, 500)
	assert.Equal(t, EdgeBottom|EdgeRight, edges)
}

func TestEdgeCursorNames(t *testing.T) {
	assert.Equal(t, "se-resize", (EdgeBottom | EdgeRight).CursorName())
	assert.Equal(t, "n-resize", EdgeTop.CursorName())
	assert.Equal(t, "default", EdgeNone.CursorName())
}

func TestBoxContains(t *testing.T) {
	b := Box{X: 10, Y: 10, Width: 100, Height: 50}
	assert.True(t, b.Contains(10, 10))
	assert.True(t, b.Contains(109, 59))
	assert.False(t, b.Contains(110, 30))
	assert.False(t, b.Contains(9, 30))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(99, 0, 5))
	assert.Equal(t, 0, Clamp(-1, 0, 5))
	assert.Equal(t, 0.9, Clamp(2.0, 0.1, 0.9))
}
