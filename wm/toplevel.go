// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wm

import (
	"github.com/mstarongithub/waytile/geom"
	"github.com/mstarongithub/waytile/scene"
	"github.com/sirupsen/logrus"
)

// Kind discriminates the two toplevel flavors.
type Kind int

const (
	KindNative Kind = iota
	KindLegacyX11
)

// SurfaceOps is what the core asks of any client window surface.
type SurfaceOps interface {
	// Surface is the wire surface identity for seat focus routing.
	Surface() Surface
	// Geometry is the surface's window geometry box (surface-local).
	Geometry() geom.Box
	SetSize(w, h int)
	SetActivated(activated bool)
	SetFullscreen(set bool)
	SetMaximized(set bool)
	SetResizing(set bool)
	SetTiled(edges geom.Edges)
	MinSize() (int, int)
	MaxSize() (int, int)
	HasParent() bool
	Close()
}

// NativeSurface is an xdg-shell toplevel.
type NativeSurface interface {
	SurfaceOps
}

// LegacySurface is an Xwayland toplevel; the bridge supplies the hints.
type LegacySurface interface {
	SurfaceOps
	Modal() bool
	OverrideRedirect() bool
	// ConfigureRect forwards the layout rectangle to the X11 side.
	ConfigureRect(x, y, w, h int)
}

// Toplevel is one client window, native or legacy. Exactly one of Native
// and Legacy is set, matching Kind.
type Toplevel struct {
	ctx *Context

	Kind   Kind
	Native NativeSurface
	Legacy LegacySurface

	SurfTree *scene.Node
	// surfBuf is the content buffer inside SurfTree; hit-testing lands on
	// it.
	surfBuf   *scene.Node
	Container *Container
	Mapped    bool

	// client intents, applied at map time
	WantsFullscreen bool
	WantsMaximized  bool
	WantsMinimized  bool
}

// NewToplevel wraps a native surface.
func NewToplevel(ctx *Context, s NativeSurface) *Toplevel {
	t := &Toplevel{ctx: ctx, Kind: KindNative, Native: s}
	ctx.Bus.Emit("client::new", t)
	return t
}

// NewLegacyToplevel wraps an Xwayland surface.
func NewLegacyToplevel(ctx *Context, s LegacySurface) *Toplevel {
	t := &Toplevel{ctx: ctx, Kind: KindLegacyX11, Legacy: s}
	ctx.Bus.Emit("client::new", t)
	return t
}

func (t *Toplevel) ops() SurfaceOps {
	switch t.Kind {
	case KindLegacyX11:
		return t.Legacy
	default:
		return t.Native
	}
}

func (t *Toplevel) Surface() Surface   { return t.ops().Surface() }
func (t *Toplevel) Geometry() geom.Box { return t.ops().Geometry() }
func (t *Toplevel) Close()             { t.ops().Close() }

// IsUnmanaged reports override-redirect legacy clients, which bypass
// tiling, focus stacks and decoration.
func (t *Toplevel) IsUnmanaged() bool {
	return t.Kind == KindLegacyX11 && t.Legacy.OverrideRedirect()
}

// ShouldFloat is the map-time heuristic: dialogs (parented), fixed-size
// windows, and legacy modals float.
func (t *Toplevel) ShouldFloat() bool {
	if t.Kind == KindLegacyX11 && t.Legacy.Modal() {
		return true
	}
	if t.ops().HasParent() {
		return true
	}
	minW, minH := t.ops().MinSize()
	maxW, maxH := t.ops().MaxSize()
	return minW != 0 && minH != 0 && (minW == maxW || minH == maxH)
}

// SetSurfaceSize resizes the client surface directly, bypassing the
// container padding (used by fullscreen and interactive resize).
func (t *Toplevel) SetSurfaceSize(w, h int) {
	t.ops().SetSize(w, h)
	if t.surfBuf != nil {
		t.surfBuf.Width = w
		t.surfBuf.Height = h
	}
}

// IsVisible reports whether the containing container is visible.
func (t *Toplevel) IsVisible() bool {
	return t.Container != nil && t.Container.IsVisible()
}

// Focus implements the focus policy: reorder the focus stack, settle hover
// state, then hand the keyboard to the surface. Signals fire for both the
// newly focused and the previously focused client.
func (t *Toplevel) Focus(raise bool) {
	if t == nil || t.ctx == nil {
		return
	}
	ctx := t.ctx

	seat := ctx.Seat
	if t.Surface() == seat.FocusedSurface() {
		return
	}
	prev := ctx.toplevelBySurface(seat.FocusedSurface())

	if !t.IsUnmanaged() && t.Container != nil {
		t.Container.Output.moveToFocusFront(t.Container)
	}

	t.ops().SetActivated(true)
	if ctx.Pointer != nil {
		ctx.Pointer.RefreshNoMotion()
	}
	ctx.keyboardFocus(t.Surface())

	if raise && t.Container != nil {
		t.Container.Raise()
	}

	if t.Mapped && !t.IsUnmanaged() {
		ctx.Bus.Emit("client::focus", t)
	}
	if prev != nil && prev != t && prev.Mapped && !prev.IsUnmanaged() {
		prev.ops().SetActivated(false)
		ctx.Bus.Emit("client::unfocus", prev)
	}
}

// ClearFocus drops keyboard focus entirely.
func (ctx *Context) ClearFocus() {
	ctx.Seat.ClearKeyboard()
}

// keyboardFocus enters the surface unless an exclusive override (session
// lock, exclusive layer surface) pins focus elsewhere.
func (ctx *Context) keyboardFocus(s Surface) {
	if ctx.Lock != nil && ctx.Lock.Locked {
		if ls := ctx.Lock.Surface(); ls != nil {
			ctx.Seat.KeyboardEnter(ls)
		}
		return
	}
	if ctx.ExclusiveLayer != nil && ctx.ExclusiveLayer.WireSurface != nil {
		ctx.Seat.KeyboardEnter(ctx.ExclusiveLayer.WireSurface)
		return
	}
	ctx.Seat.KeyboardEnter(s)
}

func (ctx *Context) toplevelBySurface(s Surface) *Toplevel {
	if s == nil {
		return nil
	}
	for _, o := range ctx.Outputs {
		for _, t := range o.State.Toplevels {
			if t.Surface() == s {
				return t
			}
		}
	}
	return nil
}

// HandleMap runs the map-time policy: list membership, container
// placement, float heuristic, client intents, signal.
func (t *Toplevel) HandleMap() {
	ctx := t.ctx
	out := ctx.FocusedOutput
	if out == nil {
		logrus.Warnln("toplevel mapped with no output attached")
		return
	}

	t.Mapped = true
	out.State.Toplevels = append([]*Toplevel{t}, out.State.Toplevels...)
	t.ops().SetTiled(geom.AllEdges)

	if marked := ctx.InsertMarked; marked != nil && !t.IsUnmanaged() {
		marked.Insert(t)
		marked.SetFront(t)
	} else {
		NewContainer(ctx, t, ctx.BorderWidth)
	}

	c := t.Container
	if c == nil {
		return
	}

	if !t.IsUnmanaged() {
		if t.ShouldFloat() {
			c.SetFloating(true)
			c.ToCenter()
		}

		switch {
		case t.WantsFullscreen:
			c.SetFullscreen(true)
		case t.WantsMaximized:
			c.SetMaximized(true)
		case t.WantsMinimized:
			c.SetMinimized(true)
		}
	}

	ctx.Bus.Emit("client::map", t)
	t.Focus(false)
}

// HandleUnmap detaches the toplevel; the container may die with it.
func (t *Toplevel) HandleUnmap() {
	ctx := t.ctx
	t.Mapped = false

	for _, o := range ctx.Outputs {
		o.removeToplevel(t)
	}

	ctx.Bus.Emit("client::unmap", t)

	if t.Container != nil {
		t.Container.Remove(t)
	}
}

// Destroy finalizes the wrapper after the wire resource is gone.
func (t *Toplevel) Destroy() {
	if t.Mapped {
		t.HandleUnmap()
	}
	ctx := t.ctx
	ctx.Bus.Emit("client::destroy", t)
	if t.SurfTree != nil {
		t.SurfTree.Destroy()
		t.SurfTree = nil
	}
}

// container-forwarded semantic ops

func (t *Toplevel) SetFloating(set bool) {
	if c := t.Container; c != nil {
		c.SetFloating(set)
	}
}

func (t *Toplevel) SetFullscreen(set bool) {
	if c := t.Container; c != nil {
		c.SetFullscreen(set)
	}
}

func (t *Toplevel) SetMaximized(set bool) {
	if c := t.Container; c != nil {
		c.SetMaximized(set)
	}
}

func (t *Toplevel) SetMinimized(set bool) {
	if c := t.Container; c != nil {
		c.SetMinimized(set)
	}
}
