package tiler

import (
	"testing"

	"github.com/mstarongithub/waytile/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records the geometry the engines hand out.
type fakeClient struct {
	x, y, w, h int
	floating   bool
	noConfig   bool
}

func (f *fakeClient) SetSize(w, h int)        { f.w, f.h = w, h }
func (f *fakeClient) SetPositionGap(x, y int) { f.x, f.y = x, y }
func (f *fakeClient) ConfigureAllowed() bool  { return !f.noConfig }
func (f *fakeClient) Floating() bool          { return f.floating }

func (f *fakeClient) box() geom.Box {
	return geom.Box{X: f.x, Y: f.y, Width: f.w, Height: f.h}
}

func clientsOf(fs ...*fakeClient) []Client {
	out := make([]Client, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func TestTileThreeClients(t *testing.T) {
	usable := geom.Box{Width: 1920, Height: 1080}
	st := MasterState{MasterCount: 1, ColumnCount: 1, MWFact: 0.5}

	a, b, c := &fakeClient{}, &fakeClient{}, &fakeClient{}
	r := NewRegistry()
	r.Arrange(clientsOf(a, b, c), usable, usable, &st)

	assert.Equal(t, geom.Box{X: 0, Y: 0, Width: 960, Height: 1080}, a.box())
	assert.Equal(t, geom.Box{X: 960, Y: 0, Width: 960, Height: 540}, b.box())
	assert.Equal(t, geom.Box{X: 960, Y: 540, Width: 960, Height: 540}, c.box())

	st.MWFact = 0.6
	r.Arrange(clientsOf(a, b, c), usable, usable, &st)

	assert.Equal(t, geom.Box{X: 0, Y: 0, Width: 1152, Height: 1080}, a.box())
	assert.Equal(t, 768, b.w)
	assert.Equal(t, 768, c.w)
	assert.Equal(t, 1152, b.x)
}

func TestTileSingleClientFillsUsable(t *testing.T) {
	usable := geom.Box{X: 10, Y: 20, Width: 800, Height: 600}
	st := MasterState{MWFact: 0.5}

	a := &fakeClient{}
	NewRegistry().Arrange(clientsOf(a), usable, usable, &st)

	assert.Equal(t, geom.Box{X: 10, Y: 20, Width: 800, Height: 600}, a.box())
}

func TestTileStackAbsorbsRounding(t *testing.T) {
	// 1080 does not divide evenly by 7
	usable := geom.Box{Width: 1920, Height: 1080}
	st := MasterState{MWFact: 0.5}

	clients := make([]*fakeClient, 8)
	for i := range clients {
		clients[i] = &fakeClient{}
	}
	NewRegistry().Arrange(clientsOf(clients...), usable, usable, &st)

	total := 0
	for _, c := range clients[1:] {
		total += c.h
	}
	assert.Equal(t, 1080, total)
	last := clients[len(clients)-1]
	assert.Equal(t, 1080, last.y+last.h)
}

func TestMonocleEveryClientFillsUsable(t *testing.T) {
	usable := geom.Box{X: 5, Y: 5, Width: 1000, Height: 500}
	st := MasterState{MWFact: 0.5, Strategy: 1}

	a, b := &fakeClient{}, &fakeClient{}
	r := NewRegistry()
	require.Equal(t, "monocle", r.At(1).Name)
	r.Arrange(clientsOf(a, b), usable, usable, &st)

	assert.Equal(t, geom.Box{X: 5, Y: 5, Width: 1000, Height: 500}, a.box())
	assert.Equal(t, a.box(), b.box())
}

func TestRegistryCycle(t *testing.T) {
	r := NewRegistry()
	n := r.Len()
	require.GreaterOrEqual(t, n, 2)

	idx := 0
	idx = r.Cycle(idx, 1)
	assert.Equal(t, 1, idx)
	idx = r.Cycle(idx, -1)
	assert.Equal(t, 0, idx)
	// wraps both directions
	assert.Equal(t, n-1, r.Cycle(0, -1))
	assert.Equal(t, 0, r.Cycle(n-1, 1))
	assert.Equal(t, 0, r.Cycle(0, n*3))
}

func TestRegistryPluginAndUnregister(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register(Strategy{Name: "fullscreen", Arrange: func(clients []Client, usable, full geom.Box, st *MasterState) {
		called = true
		for _, c := range clients {
			c.SetPositionGap(full.X, full.Y)
			c.SetSize(full.Width, full.Height)
		}
	}})

	idx := r.Len() - 1
	st := MasterState{Strategy: idx}
	a := &fakeClient{}
	full := geom.Box{Width: 1920, Height: 1080}
	r.Arrange(clientsOf(a), geom.Box{X: 0, Y: 30, Width: 1920, Height: 1050}, full, &st)
	assert.True(t, called)
	assert.Equal(t, full, a.box())

	// removing the current strategy leaves a working cursor
	r.Unregister("fullscreen")
	r.Arrange(clientsOf(a), full, full, &st)
	assert.Equal(t, full, a.box())

	// the default strategy is not removable
	r.Unregister("tile")
	assert.Equal(t, "tile", r.At(0).Name)
}

func TestViewInfoClamps(t *testing.T) {
	vi := NewViewInfo(-5)
	assert.Equal(t, 0, vi.Gap)

	vi.SetMWFact(0.01)
	assert.Equal(t, 0.1, vi.Master.MWFact)
	vi.SetMWFact(2)
	assert.Equal(t, 0.9, vi.Master.MWFact)

	vi.SetGap(-1)
	assert.Equal(t, 0, vi.Gap)
	vi.SetGap(12)
	assert.Equal(t, 12, vi.Gap)
}
