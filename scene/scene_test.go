package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayersFixedOrder(t *testing.T) {
	l := NewLayers()

	children := l.Root.Children()
	require.Len(t, children, 8)
	assert.Same(t, l.Background, children[0])
	assert.Same(t, l.Bottom, children[1])
	assert.Same(t, l.Below, children[2])
	assert.Same(t, l.Toplevel, children[3])
	assert.Same(t, l.Above, children[4])
	assert.Same(t, l.Top, children[5])
	assert.Same(t, l.Overlay, children[6])
	assert.Same(t, l.SessionLock, children[7])
}

func TestAtReturnsTopmostBuffer(t *testing.T) {
	l := NewLayers()

	back := l.Background.NewBuffer(Owner{}, 100, 100)
	front := l.Toplevel.NewBuffer(Owner{}, 100, 100)

	hit, sx, sy := l.Root.At(10, 20)
	assert.Same(t, front, hit)
	assert.Equal(t, 10.0, sx)
	assert.Equal(t, 20.0, sy)

	front.SetEnabled(false)
	hit, _, _ = l.Root.At(10, 20)
	assert.Same(t, back, hit)

	hit, _, _ = l.Root.At(500, 500)
	assert.Nil(t, hit)
}

func TestRaiseLowerReorder(t *testing.T) {
	root := NewTree()
	a := root.NewChildTree(Owner{})
	b := root.NewChildTree(Owner{})
	c := root.NewChildTree(Owner{})

	a.RaiseToTop()
	assert.Equal(t, []*Node{b, c, a}, root.Children())

	c.LowerToBottom()
	assert.Equal(t, []*Node{c, b, a}, root.Children())

	a.PlaceBelow(b)
	assert.Equal(t, []*Node{c, a, b}, root.Children())
}

func TestReparentMovesSubtree(t *testing.T) {
	root := NewTree()
	a := root.NewChildTree(Owner{})
	b := root.NewChildTree(Owner{})
	child := a.NewChildTree(Owner{})

	child.Reparent(b)
	assert.Empty(t, a.Children())
	assert.Equal(t, []*Node{child}, b.Children())
	assert.Same(t, b, child.Parent())
}

func TestCoordsAccumulate(t *testing.T) {
	root := NewTree()
	a := root.NewChildTree(Owner{})
	a.SetPosition(10, 20)
	b := a.NewChildTree(Owner{})
	b.SetPosition(5, 5)

	x, y := b.Coords()
	assert.Equal(t, 15, x)
	assert.Equal(t, 25, y)
}

func TestWalkMultipliesOpacity(t *testing.T) {
	root := NewTree()
	tree := root.NewChildTree(Owner{})
	tree.Opacity = 0.5
	buf := tree.NewBuffer(Owner{}, 10, 10)
	buf.Opacity = 0.5

	var got float64
	root.Walk(1, func(n *Node, opacity float64) {
		if n == buf {
			got = opacity
		}
	})
	assert.InDelta(t, 0.25, got, 1e-9)
}

func TestDestroyDetaches(t *testing.T) {
	root := NewTree()
	a := root.NewChildTree(Owner{})
	a.Destroy()
	assert.Empty(t, root.Children())
	assert.Nil(t, a.Parent())
}

func TestBorderFrame(t *testing.T) {
	root := NewTree()
	b := NewBorder(SolidPattern(1, 0, 0, 1), 100, 80, 2, nil)
	b.AttachToScene(root)

	require.True(t, b.Valid())
	assert.Equal(t, 2, b.EffectiveThickness())

	b.SetEnabled(false)
	assert.Equal(t, 0, b.EffectiveThickness())
	b.SetEnabled(true)

	b.Resize(200, 160)
	assert.True(t, b.Valid())
	assert.Equal(t, 200, b.Width)

	b.Destroy()
	assert.False(t, b.Valid())
}

func TestBorderZeroThicknessInvalid(t *testing.T) {
	root := NewTree()
	b := NewBorder(SolidPattern(1, 1, 1, 1), 100, 80, 0, nil)
	b.AttachToScene(root)

	assert.False(t, b.Valid())
	assert.Equal(t, 0, b.EffectiveThickness())
}

func TestBorderAllocationFailureSkipsDecoration(t *testing.T) {
	root := NewTree()
	fails := func(parent *Node, w, h int) *Node { return nil }
	b := NewBorder(SolidPattern(1, 1, 1, 1), 100, 80, 2, fails)
	b.AttachToScene(root)

	// the container stays usable without decoration
	assert.False(t, b.Valid())
	assert.Equal(t, 0, b.EffectiveThickness())
	assert.Empty(t, root.Children())
}

func TestThemeCacheFallback(t *testing.T) {
	themed := &stubLoader{err: assert.AnError}
	legacy := &stubLoader{img: &CursorImage{Name: "default"}}
	cache, err := NewThemeCache(themed, legacy, 4)
	require.NoError(t, err)

	img, err := cache.Get("default", 24)
	require.NoError(t, err)
	assert.Equal(t, "default", img.Name)
	assert.Equal(t, 1, legacy.calls)

	// second hit comes from the cache
	_, err = cache.Get("default", 24)
	require.NoError(t, err)
	assert.Equal(t, 1, legacy.calls)
}

type stubLoader struct {
	img   *CursorImage
	err   error
	calls int
}

func (s *stubLoader) Lookup(name string, size int) (*CursorImage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.img, nil
}
