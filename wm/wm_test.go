package wm

import (
	"github.com/mstarongithub/waytile/geom"
	"github.com/mstarongithub/waytile/signal"
)

// fakeSeat records focus routing.
type fakeSeat struct {
	focused      Surface
	kbdCleared   int
	ptrCleared   int
	enterHistory []Surface
}

func (s *fakeSeat) FocusedSurface() Surface { return s.focused }

func (s *fakeSeat) KeyboardEnter(surf Surface) {
	s.focused = surf
	s.enterHistory = append(s.enterHistory, surf)
}

func (s *fakeSeat) ClearKeyboard() {
	s.focused = nil
	s.kbdCleared++
}

func (s *fakeSeat) ClearPointer() { s.ptrCleared++ }

// fakeBackend is a display sink with a fixed mode.
type fakeBackend struct {
	name          string
	width, height int
	refresh       int
	frames        int
}

func (b *fakeBackend) Name() string           { return b.name }
func (b *fakeBackend) Size() (int, int)       { return b.width, b.height }
func (b *fakeBackend) RefreshMillihertz() int { return b.refresh }
func (b *fakeBackend) ScheduleFrame()         { b.frames++ }

// fakeSurface implements both NativeSurface and LegacySurface.
type fakeSurface struct {
	geo        geom.Box
	activated  bool
	fullscreen bool
	maximized  bool
	resizing   bool
	tiled      geom.Edges
	closed     bool

	minW, minH int
	maxW, maxH int
	hasParent  bool

	modal            bool
	overrideRedirect bool
	configured       geom.Box
}

func (f *fakeSurface) Surface() Surface { return f }
func (f *fakeSurface) Geometry() geom.Box {
	return f.geo
}
func (f *fakeSurface) SetSize(w, h int) {
	f.geo.Width = w
	f.geo.Height = h
}
func (f *fakeSurface) SetActivated(a bool)        { f.activated = a }
func (f *fakeSurface) SetFullscreen(set bool)     { f.fullscreen = set }
func (f *fakeSurface) SetMaximized(set bool)      { f.maximized = set }
func (f *fakeSurface) SetResizing(set bool)       { f.resizing = set }
func (f *fakeSurface) SetTiled(edges geom.Edges)  { f.tiled = edges }
func (f *fakeSurface) MinSize() (int, int)        { return f.minW, f.minH }
func (f *fakeSurface) MaxSize() (int, int)        { return f.maxW, f.maxH }
func (f *fakeSurface) HasParent() bool            { return f.hasParent }
func (f *fakeSurface) Close()                     { f.closed = true }
func (f *fakeSurface) Modal() bool                { return f.modal }
func (f *fakeSurface) OverrideRedirect() bool     { return f.overrideRedirect }
func (f *fakeSurface) ConfigureRect(x, y, w, h int) {
	f.configured = geom.Box{X: x, Y: y, Width: w, Height: h}
}

func newTestContext() (*Context, *fakeSeat, *Output) {
	seat := &fakeSeat{}
	ctx := NewContext(signal.NewBus(), seat)
	ctx.BorderWidth = 0
	out := ctx.AttachOutput(&fakeBackend{
		name:    "HDMI-A-1",
		width:   1920,
		height:  1080,
		refresh: 60000,
	}, 0)
	return ctx, seat, out
}

func mapToplevel(ctx *Context, geo geom.Box) (*Toplevel, *fakeSurface) {
	surf := &fakeSurface{geo: geo}
	t := NewToplevel(ctx, surf)
	t.HandleMap()
	return t, surf
}
