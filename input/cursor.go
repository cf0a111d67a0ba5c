// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package input

import (
	"time"

	"github.com/mstarongithub/waytile/geom"
	"github.com/mstarongithub/waytile/scene"
	"github.com/mstarongithub/waytile/wm"
	"github.com/sirupsen/logrus"
)

// CursorState is the interactive grab state machine.
type CursorState int

const (
	StateNormal CursorState = iota
	StateMove
	StateResize
)

// PointerSeat is the pointer half of the seat the router notifies.
type PointerSeat interface {
	NotifyEnter(surface any, sx, sy float64)
	NotifyMotion(timeMsec uint32, sx, sy float64)
	ClearPointerFocus()
	NotifyButton(timeMsec uint32, button uint32, pressed bool)
	NotifyAxis(timeMsec uint32, orientation int, delta float64, deltaDiscrete int32, source int)
}

// Cursor runs the pointer state machine over the scene graph.
type Cursor struct {
	ctx  *wm.Context
	seat PointerSeat

	// Pos reads the current cursor layout position.
	Pos func() (float64, float64)
	// SetShape changes the cursor image by name.
	SetShape func(name string)
	// Now is the monotonic clock; swapped in tests.
	Now func() time.Time

	state   CursorState
	grabbed *wm.Toplevel

	grabX, grabY float64
	grabGeo      geom.Box
	resizeEdges  geom.Edges

	lastResize time.Time
	pending    geom.Box
	hasPending bool
	// Configures counts applied resize commits, for coalescing checks.
	Configures int

	shapeBeforeGrab string
	currentShape    string

	// hover tracking for mouse_enter/mouse_leave signals
	hovered *wm.Toplevel
	// suppress hover focus-change signals during a no-motion refresh
	suppressSignals bool

	constraints []*Constraint
	active      *Constraint
	// surface the active constraint belongs to
	activeSurface any
}

// NewCursor wires the router into the context as its pointer refresher.
// The position/shape hooks default to no-ops so the core runs headless in
// tests.
func NewCursor(ctx *wm.Context, seat PointerSeat) *Cursor {
	c := &Cursor{
		ctx:      ctx,
		seat:     seat,
		Pos:      func() (float64, float64) { return 0, 0 },
		SetShape: func(string) {},
		Now:      time.Now,
	}
	ctx.Pointer = c
	return c
}

func (c *Cursor) State() CursorState    { return c.state }
func (c *Cursor) Grabbed() *wm.Toplevel { return c.grabbed }

func (c *Cursor) setShape(name string) {
	if name == c.currentShape {
		return
	}
	c.currentShape = name
	c.SetShape(name)
}

// canEnterInteractive: only floating, fully configurable, managed
// toplevels move or resize interactively.
func canEnterInteractive(t *wm.Toplevel) bool {
	if t == nil || t.Container == nil {
		return false
	}
	cont := t.Container
	return cont.Floating() && cont.ConfigureAllowed() && !cont.IsUnmanaged()
}

// ToplevelAt resolves what is under a layout point through the scene
// graph: the toplevel (if any), the wire surface for pointer focus, and
// surface-local coordinates.
func (c *Cursor) ToplevelAt(lx, ly float64) (*wm.Toplevel, any, float64, float64) {
	node, sx, sy := c.ctx.Layers.Root.At(lx, ly)
	if node == nil {
		return nil, nil, 0, 0
	}
	for n := node; n != nil; n = n.Parent() {
		switch n.Owner.Kind {
		case scene.OwnerXdgShell, scene.OwnerXwayland:
			if t, ok := n.Owner.Value.(*wm.Toplevel); ok {
				return t, t.Surface(), sx, sy
			}
		case scene.OwnerLayerShell:
			if s, ok := n.Owner.Value.(*scene.LayerSurface); ok {
				return nil, s.WireSurface, sx, sy
			}
		case scene.OwnerBorder:
			if p := n.Parent(); p != nil {
				if cont, ok := p.Owner.Value.(*wm.Container); ok {
					return cont.FrontToplevel(), nil, sx, sy
				}
			}
		}
	}
	return nil, nil, sx, sy
}

// StartInteractiveMove enters the Move state for the toplevel under the
// pointer (or the given one).
func (c *Cursor) StartInteractiveMove(t *wm.Toplevel) {
	cx, cy := c.Pos()
	if t == nil {
		t, _, _, _ = c.ToplevelAt(cx, cy)
	}
	if !canEnterInteractive(t) {
		return
	}

	x, y := t.Container.Tree.Coords()
	c.grabX = cx - float64(x)
	c.grabY = cy - float64(y)
	c.grabbed = t
	c.shapeBeforeGrab = c.currentShape

	// image first, then the state flips
	c.setShape("grabbing")
	c.state = StateMove
}

// StartInteractiveResize enters the Resize state. Zero edges are inferred
// from the pointer's position inside the toplevel geometry box.
func (c *Cursor) StartInteractiveResize(t *wm.Toplevel, edges geom.Edges) {
	cx, cy := c.Pos()
	var sx, sy float64
	fromPointer := t == nil
	if fromPointer {
		t, _, sx, sy = c.ToplevelAt(cx, cy)
	}
	if !canEnterInteractive(t) {
		return
	}
	if !fromPointer {
		x, y := t.Container.Tree.Coords()
		sx, sy = cx-float64(x), cy-float64(y)
	}

	if t.Kind == wm.KindNative {
		t.Native.SetResizing(true)
	}

	g := t.Geometry()
	if edges == geom.EdgeNone {
		edges = geom.InferEdges(g, sx, sy)
	}

	nodeX, nodeY := t.Container.Tree.Coords()
	borderX := float64(nodeX + g.X)
	borderY := float64(nodeY + g.Y)
	if edges&geom.EdgeRight != 0 {
		borderX += float64(g.Width)
	}
	if edges&geom.EdgeBottom != 0 {
		borderY += float64(g.Height)
	}
	c.grabX = cx - borderX
	c.grabY = cy - borderY

	c.grabGeo = g
	c.grabGeo.X += nodeX
	c.grabGeo.Y += nodeY

	c.grabbed = t
	c.resizeEdges = edges
	c.shapeBeforeGrab = c.currentShape

	c.setShape(edges.CursorName())
	c.state = StateResize
	c.lastResize = c.Now()
	c.hasPending = false
}

// StopInteractive leaves any grab; a pending scheduled resize is flushed.
func (c *Cursor) StopInteractive() {
	if c.state == StateNormal {
		return
	}

	if c.state == StateResize && c.hasPending {
		// the origin goes through the container so the floating position
		// is recorded; the size goes straight to the surface
		if t := c.grabbed; t != nil && t.Container != nil {
			t.Container.SetPosition(c.pending.X, c.pending.Y)
			t.SetSurfaceSize(c.pending.Width, c.pending.Height)
			c.Configures++
		}
		c.hasPending = false
	}

	c.state = StateNormal
	if c.shapeBeforeGrab != "" {
		c.setShape(c.shapeBeforeGrab)
	} else {
		c.setShape("default")
	}

	if c.grabbed != nil && c.grabbed.Kind == wm.KindNative {
		c.grabbed.Native.SetResizing(false)
	}
	c.grabbed = nil
}

// GrabEnded clears the grab when the grabbed toplevel unmaps under it.
func (c *Cursor) GrabEnded(t *wm.Toplevel) {
	if c.grabbed == t {
		c.state = StateNormal
		c.grabbed = nil
		c.hasPending = false
	}
}

func (c *Cursor) applyResize(box geom.Box) {
	t := c.grabbed
	if t == nil || t.Container == nil {
		return
	}
	// position the tree directly: a double configure through the container
	// causes flicker
	t.Container.Tree.SetPosition(box.X, box.Y)
	t.SetSurfaceSize(box.Width, box.Height)
	c.Configures++
}

// scheduleResize coalesces to one configure per monitor refresh interval.
func (c *Cursor) scheduleResize(box geom.Box) {
	interval := 8 * time.Millisecond // default when the rate is unknown
	if t := c.grabbed; t != nil && t.Container != nil {
		if mhz := t.Container.Output.Backend.RefreshMillihertz(); mhz > 0 {
			hz := geom.Max(mhz/1000, 1)
			interval = time.Second / time.Duration(hz)
		}
	}

	now := c.Now()
	if now.Sub(c.lastResize) > interval {
		c.applyResize(box)
		c.lastResize = c.Now()
	}
	c.pending = box
	c.hasPending = true
}

func (c *Cursor) processMove() {
	cx, cy := c.Pos()
	c.grabbed.Container.SetPosition(int(cx-c.grabX), int(cy-c.grabY))
}

func (c *Cursor) processResize() {
	cx, cy := c.Pos()
	borderX := cx - c.grabX
	borderY := cy - c.grabY

	newLeft := c.grabGeo.X
	newRight := c.grabGeo.X + c.grabGeo.Width
	newTop := c.grabGeo.Y
	newBottom := c.grabGeo.Y + c.grabGeo.Height

	if c.resizeEdges&geom.EdgeTop != 0 {
		newTop = int(borderY)
		if newTop >= newBottom {
			newTop = newBottom - 1
		}
	} else if c.resizeEdges&geom.EdgeBottom != 0 {
		newBottom = int(borderY)
		if newBottom <= newTop {
			newBottom = newTop + 1
		}
	}

	if c.resizeEdges&geom.EdgeLeft != 0 {
		newLeft = int(borderX)
		if newLeft >= newRight {
			newLeft = newRight - 1
		}
	} else if c.resizeEdges&geom.EdgeRight != 0 {
		newRight = int(borderX)
		if newRight <= newLeft {
			newRight = newLeft + 1
		}
	}

	g := c.grabbed.Geometry()
	c.scheduleResize(geom.Box{
		X:      newLeft - g.X,
		Y:      newTop - g.Y,
		Width:  newRight - newLeft,
		Height: newBottom - newTop,
	})
}

// ConstraintCreated registers a new pointer constraint.
func (c *Cursor) ConstraintCreated(con *Constraint) {
	c.constraints = append(c.constraints, con)
}

// ConstraintDestroyed drops a constraint, deactivating it if active.
func (c *Cursor) ConstraintDestroyed(con *Constraint) {
	for i, cur := range c.constraints {
		if cur == con {
			c.constraints = append(c.constraints[:i], c.constraints[i+1:]...)
			break
		}
	}
	if c.active == con {
		c.active = nil
		c.activeSurface = nil
	}
}

func (c *Cursor) constraintFor(surface any) *Constraint {
	if surface == nil {
		return nil
	}
	for _, con := range c.constraints {
		if con.Surface == surface {
			return con
		}
	}
	return nil
}

// FilterMotion applies the active pointer constraint to a motion delta
// before the cursor moves. Locked constraints drop motion entirely.
func (c *Cursor) FilterMotion(dx, dy float64) (float64, float64) {
	if c.state != StateNormal || c.active == nil {
		return dx, dy
	}
	if c.active.Kind == Locked {
		return 0, 0
	}
	cx, cy := c.Pos()
	_, surface, sx, sy := c.ToplevelAt(cx, cy)
	if surface != c.activeSurface {
		return dx, dy
	}
	return c.active.ConfineDelta(sx, sy, dx, dy)
}

// ProcessMotion runs after the cursor position moved. In a grab it drives
// the grab; otherwise it routes pointer focus to the surface under the
// cursor and maintains constraint activation and hover signals.
func (c *Cursor) ProcessMotion(timeMsec uint32) {
	switch c.state {
	case StateMove:
		c.processMove()
		return
	case StateResize:
		c.processResize()
		return
	}

	cx, cy := c.Pos()
	t, surface, sx, sy := c.ToplevelAt(cx, cy)

	// constraint lifecycle follows the surface under the pointer
	if surface != c.activeSurface {
		if c.active != nil {
			c.active.Active = false
			c.active = nil
			c.activeSurface = nil
		}
		if con := c.constraintFor(surface); con != nil {
			con.Active = true
			c.active = con
			c.activeSurface = surface
		}
	}

	if t != c.hovered {
		if !c.suppressSignals {
			if c.hovered != nil {
				c.ctx.Bus.Emit("client::mouse_leave", c.hovered)
			}
			if t != nil {
				c.ctx.Bus.Emit("client::mouse_enter", t)
			}
		}
		c.hovered = t
	}

	if surface != nil {
		c.seat.NotifyEnter(surface, sx, sy)
		c.seat.NotifyMotion(timeMsec, sx, sy)
	} else {
		c.setShape("default")
		c.seat.ClearPointerFocus()
	}
}

// RefreshNoMotion settles hover state without pointer motion and without
// emitting hover focus-change signals (wm.PointerRefresher).
func (c *Cursor) RefreshNoMotion() {
	c.suppressSignals = true
	c.ProcessMotion(0)
	c.suppressSignals = false
}

// HandleButton routes a pointer button: press focuses the toplevel under
// the cursor and tries mouse bindings; release always ends a grab and is
// always forwarded.
func (c *Cursor) HandleButton(timeMsec uint32, button uint32, pressed bool, mods Modifier, mouse *Bindings) {
	c.seat.NotifyButton(timeMsec, button, pressed)

	cx, cy := c.Pos()
	if pressed {
		c.ctx.FocusedOutput = c.ctx.OutputAt(cx, cy)
		if t, _, _, _ := c.ToplevelAt(cx, cy); t != nil {
			t.Focus(false)
		}
		if mouse != nil && !(c.ctx.Lock != nil && c.ctx.Lock.Locked) {
			mouse.Execute(mods, button, true)
		}
	} else {
		c.StopInteractive()
		if mouse != nil {
			mouse.Execute(mods, button, false)
		}
	}
}

// HandleKey dispatches one keyboard event against the keybinding table.
// Returns whether the press was consumed. Dispatch is suppressed while the
// session is locked; releases always reach the client.
func (c *Cursor) HandleKey(mods Modifier, sym uint32, pressed bool, kbd *Bindings) bool {
	if pressed {
		if c.ctx.Lock != nil && c.ctx.Lock.Locked {
			logrus.Debugln("keybinding dispatch suppressed while locked")
			return false
		}
		return kbd.Execute(mods, sym, true)
	}
	// releases dispatch for press/release pairing but are never consumed
	kbd.Execute(mods, sym, false)
	return false
}
