package tiler

import (
	"testing"

	"github.com/mstarongithub/waytile/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeBox(n *Node) geom.Box {
	return geom.Box{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

// treeShape serializes the tree structure for round-trip comparison.
func treeShape(n *Node) []any {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []any{n.Client}
	}
	return []any{n.Split, treeShape(n.Left), treeShape(n.Right)}
}

func TestBspInsertFour(t *testing.T) {
	usable := geom.Box{Width: 1600, Height: 900}
	e := &RootEntry{}

	a, b, c, d := &fakeClient{}, &fakeClient{}, &fakeClient{}, &fakeClient{}

	la := e.Insert(a, usable)
	assert.Equal(t, geom.Box{X: 0, Y: 0, Width: 1600, Height: 900}, a.box())
	require.Same(t, la, e.Root)

	e.Insert(b, usable)
	assert.Equal(t, geom.Box{X: 0, Y: 0, Width: 800, Height: 900}, a.box())
	assert.Equal(t, geom.Box{X: 800, Y: 0, Width: 800, Height: 900}, b.box())
	assert.Equal(t, Client(b), e.LastFocused())

	e.Insert(c, usable)
	assert.Equal(t, geom.Box{X: 800, Y: 0, Width: 800, Height: 450}, b.box())
	assert.Equal(t, geom.Box{X: 800, Y: 450, Width: 800, Height: 450}, c.box())

	e.Insert(d, usable)
	assert.Equal(t, geom.Box{X: 800, Y: 450, Width: 400, Height: 450}, c.box())
	assert.Equal(t, geom.Box{X: 1200, Y: 450, Width: 400, Height: 450}, d.box())
}

func TestBspInvariants(t *testing.T) {
	usable := geom.Box{Width: 1600, Height: 900}
	e := &RootEntry{}

	clients := []*fakeClient{{}, {}, {}, {}, {}}
	leaves := make([]*Node, len(clients))
	for i, c := range clients {
		leaves[i] = e.Insert(c, usable)
	}

	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			assert.NotNil(t, n.Client)
			return
		}
		require.NotNil(t, n.Left)
		require.NotNil(t, n.Right)
		assert.Same(t, n, n.Left.parent)
		assert.Same(t, n, n.Right.parent)
		walk(n.Left)
		walk(n.Right)
	}
	require.NotNil(t, e.Root)
	assert.Nil(t, e.Root.parent)
	walk(e.Root)
}

func TestBspInsertRemoveRoundTrip(t *testing.T) {
	usable := geom.Box{Width: 1600, Height: 900}
	e := &RootEntry{}

	a, b, c := &fakeClient{}, &fakeClient{}, &fakeClient{}
	e.Insert(a, usable)
	e.Insert(b, usable)
	e.Insert(c, usable)

	before := treeShape(e.Root)
	boxB := b.box()

	d := &fakeClient{}
	leaf := e.Insert(d, usable)
	e.Remove(leaf)

	assert.Equal(t, before, treeShape(e.Root))
	assert.Equal(t, boxB, b.box())
}

func TestBspRemoveRootEmptiesEntry(t *testing.T) {
	usable := geom.Box{Width: 800, Height: 600}
	e := &RootEntry{}

	a := &fakeClient{}
	leaf := e.Insert(a, usable)
	require.False(t, e.Empty())

	e.Remove(leaf)
	assert.True(t, e.Empty())
	assert.Nil(t, e.LastFocused())
}

func TestBspRemoveUpdatesLastFocused(t *testing.T) {
	usable := geom.Box{Width: 1600, Height: 900}
	e := &RootEntry{}

	a, b := &fakeClient{}, &fakeClient{}
	e.Insert(a, usable)
	leafB := e.Insert(b, usable)

	require.Equal(t, Client(b), e.LastFocused())
	e.Remove(leafB)
	assert.Equal(t, Client(a), e.LastFocused())
	// the survivor takes the whole area again
	assert.Equal(t, geom.Box{X: 0, Y: 0, Width: 1600, Height: 900}, a.box())
}

func TestBspEnableDisable(t *testing.T) {
	usable := geom.Box{Width: 1600, Height: 900}
	e := &RootEntry{}

	a, b := &fakeClient{}, &fakeClient{}
	leafA := e.Insert(a, usable)
	e.Insert(b, usable)

	e.NodeDisable(leafA)
	// sibling inherits the full parent rect
	assert.Equal(t, geom.Box{X: 0, Y: 0, Width: 1600, Height: 900}, b.box())

	e.NodeEnable(leafA)
	assert.Equal(t, geom.Box{X: 0, Y: 0, Width: 800, Height: 900}, a.box())
	assert.Equal(t, geom.Box{X: 800, Y: 0, Width: 800, Height: 900}, b.box())
}

func TestBspToggleSplit(t *testing.T) {
	usable := geom.Box{Width: 1600, Height: 900}
	e := &RootEntry{}

	a, b := &fakeClient{}, &fakeClient{}
	leafA := e.Insert(a, usable)
	e.Insert(b, usable)

	require.Equal(t, SplitVertical, e.Root.Split)
	e.ToggleSplit(leafA)
	assert.Equal(t, SplitHorizontal, e.Root.Split)
	assert.Equal(t, geom.Box{X: 0, Y: 0, Width: 1600, Height: 450}, a.box())
	assert.Equal(t, geom.Box{X: 0, Y: 450, Width: 1600, Height: 450}, b.box())
}

func TestBspSkipsUnconfigurableLeaf(t *testing.T) {
	usable := geom.Box{Width: 1600, Height: 900}
	e := &RootEntry{}

	a := &fakeClient{noConfig: true}
	e.Insert(a, usable)
	// rect untouched while fullscreen/maximized
	assert.Equal(t, geom.Box{}, a.box())

	a.noConfig = false
	e.UpdateRoot(usable)
	assert.Equal(t, geom.Box{X: 0, Y: 0, Width: 1600, Height: 900}, a.box())
}

func TestBspSetLeftWFact(t *testing.T) {
	usable := geom.Box{Width: 1000, Height: 900}
	e := &RootEntry{}

	a, b := &fakeClient{}, &fakeClient{}
	leafA := e.Insert(a, usable)
	e.Insert(b, usable)

	e.SetLeftWFact(leafA, 0.7)
	assert.Equal(t, 700, a.w)
	assert.Equal(t, 300, b.w)

	// clamps away from degenerate splits
	e.SetLeftWFact(leafA, 2)
	assert.Equal(t, 950, a.w)
}

func TestBspUpdateRootTracksUsableArea(t *testing.T) {
	e := &RootEntry{}
	a, b := &fakeClient{}, &fakeClient{}
	e.Insert(a, geom.Box{Width: 1600, Height: 900})
	e.Insert(b, geom.Box{Width: 1600, Height: 900})

	e.UpdateRoot(geom.Box{X: 0, Y: 30, Width: 1600, Height: 870})
	assert.Equal(t, geom.Box{X: 0, Y: 30, Width: 800, Height: 870}, a.box())
	assert.Equal(t, geom.Box{X: 800, Y: 30, Width: 800, Height: 870}, b.box())
}
