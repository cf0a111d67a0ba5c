// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wm

import (
	"github.com/mstarongithub/waytile/geom"
	"github.com/mstarongithub/waytile/scene"
	"github.com/mstarongithub/waytile/tiler"
	"github.com/sirupsen/logrus"
)

// State is the container state bitfield.
type State uint8

const (
	StateUnmanaged State = 1 << iota
	// StateFloating false means tiled
	StateFloating
	StateMinimized
	StateMaximized
	StateFullscreen
	StateSticky
)

// Container is the unit of tiling: one rectangle holding a front-to-back
// stack of toplevels, framed by a border, bound to one workspace of one
// output.
type Container struct {
	ctx *Context

	Tree      *scene.Node
	PopupTree *scene.Node
	Border    *scene.Border

	Width, Height int
	FloatingBox   geom.Box
	Opacity       float64

	state State

	Output    *Output
	Tag       TagBitfield
	Workspace int
	BspLeaf   *tiler.Node

	// scene order: front toplevel at the tail
	toplevels []*Toplevel
}

// NewContainer wraps a toplevel in a fresh container on the focused
// output's active workspace.
func NewContainer(ctx *Context, t *Toplevel, borderWidth int) *Container {
	c := &Container{
		ctx:     ctx,
		Opacity: 1,
		Output:  ctx.FocusedOutput,
	}
	c.Tree = ctx.Layers.Toplevel.NewChildTree(scene.Owner{Kind: scene.OwnerContainer, Value: c})
	c.PopupTree = c.Tree.NewChildTree(scene.Owner{Kind: scene.OwnerPopup, Value: c})

	g := t.Geometry()
	c.Width = g.Width + borderWidth*2
	c.Height = g.Height + borderWidth*2
	c.FloatingBox = geom.Box{Width: c.Width, Height: c.Height}

	c.Tag = c.Output.State.ActiveTag
	c.Workspace = c.Output.State.ActiveWorkspace
	// a zero tag/workspace would make the toplevel invisible forever
	if c.Tag == 0 {
		c.Tag = 1
	}
	if c.Workspace == 0 {
		c.Workspace = 1
	}

	ctx.Containers = append(ctx.Containers, c)

	c.PopupTree.SetPosition(borderWidth, borderWidth)
	c.PopupTree.RaiseToTop()

	c.Border = scene.NewBorder(ctx.BorderPattern, c.Width, c.Height, borderWidth, ctx.BorderFactory)
	c.Border.AttachToScene(c.Tree)

	t.Container = c
	c.toplevels = append(c.toplevels, t)
	c.attachSurfTree(t)

	if t.IsUnmanaged() {
		c.state |= StateUnmanaged
	} else {
		c.Output.addContainer(c)
		c.decideShouldTile(t)
	}

	ctx.Bus.Emit("container::new", c)
	return c
}

func (c *Container) attachSurfTree(t *Toplevel) {
	owner := scene.Owner{Kind: scene.OwnerXdgShell, Value: t}
	if t.Kind == KindLegacyX11 {
		owner.Kind = scene.OwnerXwayland
	}
	if t.SurfTree == nil {
		t.SurfTree = c.Tree.NewChildTree(owner)
		g := t.Geometry()
		t.surfBuf = t.SurfTree.NewBuffer(owner, g.Width, g.Height)
	} else {
		t.SurfTree.Reparent(c.Tree)
	}
	t.SurfTree.PlaceBelow(c.PopupTree)
	bw := c.Border.EffectiveThickness()
	t.SurfTree.SetPosition(bw, bw)
}

// decideShouldTile applies map-time layout placement for a managed
// toplevel per the workspace's current layout.
func (c *Container) decideShouldTile(t *Toplevel) {
	vi := c.Output.viewInfo(c.Workspace)
	switch vi.Mode {
	case tiler.ModeFloating:
		return
	case tiler.ModeMaster:
		c.Output.UpdateTiling(c.Workspace)
	case tiler.ModeBsp:
		c.BspLeaf = vi.Bsp.Insert(c, c.Output.UsableArea)
	}
	c.state &^= StateFloating
}

// tiler.Client

func (c *Container) ConfigureAllowed() bool {
	return c.state&(StateFullscreen|StateMaximized) == 0
}

// Floating reports free layout: the container's own bit, or a floating
// workspace mode.
func (c *Container) Floating() bool {
	return c.state&StateFloating != 0 ||
		c.Output.viewInfo(c.Workspace).Mode == tiler.ModeFloating
}

func (c *Container) IsUnmanaged() bool  { return c.state&StateUnmanaged != 0 }
func (c *Container) IsMinimized() bool  { return c.state&StateMinimized != 0 }
func (c *Container) IsMaximized() bool  { return c.state&StateMaximized != 0 }
func (c *Container) IsFullscreen() bool { return c.state&StateFullscreen != 0 }
func (c *Container) IsSticky() bool     { return c.state&StateSticky != 0 }

// IsVisible: sticky always shows; otherwise the container must not be
// minimized and must match the active workspace or intersect the active
// tag set.
func (c *Container) IsVisible() bool {
	if c.IsSticky() {
		return true
	}
	st := c.Output.State
	if st.ActiveWorkspace == 0 || st.ActiveTag == 0 || c.IsMinimized() {
		return false
	}
	return st.ActiveWorkspace == c.Workspace || st.ActiveTag.Intersects(c.Tag)
}

// IsVisibleInWorkspace ignores tags: strict workspace membership.
func (c *Container) IsVisibleInWorkspace(workspace int) bool {
	st := c.Output.State
	if st.ActiveWorkspace == 0 || st.ActiveTag == 0 || c.IsMinimized() {
		return false
	}
	return workspace == c.Workspace
}

// Box returns the container rectangle in layout coordinates.
func (c *Container) Box() geom.Box {
	x, y := c.Tree.Position()
	return geom.Box{X: x, Y: y, Width: c.Width, Height: c.Height}
}

// Toplevels returns the stack, front toplevel last.
func (c *Container) Toplevels() []*Toplevel {
	return append([]*Toplevel(nil), c.toplevels...)
}

// FrontToplevel is the visible member of the stack.
func (c *Container) FrontToplevel() *Toplevel {
	if len(c.toplevels) == 0 {
		return nil
	}
	return c.toplevels[len(c.toplevels)-1]
}

// Insert appends a toplevel to the stack. No-op when either side is
// unmanaged.
func (c *Container) Insert(t *Toplevel) {
	if c.IsUnmanaged() || t.IsUnmanaged() {
		return
	}

	if old := t.Container; old != nil && old != c {
		old.RemoveKeep(t)
		if len(old.toplevels) == 0 {
			old.destroy()
		}
	}
	t.Container = c
	c.toplevels = append(c.toplevels, t)
	c.attachSurfTree(t)
	c.SetSize(c.Width, c.Height)

	c.ctx.Bus.Emit("container::insert", c)
}

func (c *Container) detach(t *Toplevel) bool {
	for i, cur := range c.toplevels {
		if cur == t {
			c.toplevels = append(c.toplevels[:i], c.toplevels[i+1:]...)
			c.ctx.Bus.Emit("container::remove", c)
			// the surface rejoins a container on re-insert
			t.SurfTree.Reparent(c.ctx.Layers.Bottom)
			t.Container = nil
			return true
		}
	}
	return false
}

// Remove detaches the toplevel and destroys the container if it became
// empty.
func (c *Container) Remove(t *Toplevel) {
	if !c.detach(t) {
		return
	}
	if len(c.toplevels) > 0 {
		return
	}
	c.destroy()
}

// RemoveKeep detaches without destroying an emptied container (used
// during swaps).
func (c *Container) RemoveKeep(t *Toplevel) {
	c.detach(t)
}

func (c *Container) destroy() {
	ctx := c.ctx

	if ctx.InsertMarked == c {
		ctx.InsertMarked = nil
	}

	if !c.IsUnmanaged() {
		c.Output.removeContainer(c)
	}

	if c.BspLeaf != nil {
		c.Output.viewInfo(c.Workspace).Bsp.Remove(c.BspLeaf)
		c.BspLeaf = nil
	}
	if c.Output.viewInfo(c.Workspace).Mode == tiler.ModeMaster {
		c.Output.UpdateTiling(c.Workspace)
	}

	c.Output.removeMinimized(c)

	ctx.Bus.Emit("container::destroy", c)

	c.Border.Destroy()
	c.PopupTree.Destroy()
	c.Tree.Destroy()

	ctx.removeContainer(c)
}

// SetFront promotes the toplevel above its siblings; the rest have their
// surface trees disabled, and their clients are not told they are
// minimized. Idempotent.
func (c *Container) SetFront(t *Toplevel) {
	if t == nil || t.Container != c {
		return
	}

	t.SurfTree.SetEnabled(true)
	for i, cur := range c.toplevels {
		if cur == t {
			c.toplevels = append(c.toplevels[:i], c.toplevels[i+1:]...)
			c.toplevels = append(c.toplevels, t)
			break
		}
	}
	c.SetSize(c.Width, c.Height)
	t.SurfTree.PlaceBelow(c.PopupTree)

	for _, sib := range c.toplevels {
		if sib == t {
			continue
		}
		sib.SurfTree.SetEnabled(false)
	}
}

// FocusIdx cyclically advances the front toplevel by n (negative moves
// backward) and focuses it. n == 0 is a no-op.
func (c *Container) FocusIdx(n int) {
	if n == 0 || len(c.toplevels) == 0 {
		return
	}
	count := len(c.toplevels)
	// front is at the tail
	idx := (count - 1 + n%count + count) % count
	next := c.toplevels[idx]
	c.SetFront(next)
	next.Focus(false)
}

func (c *Container) shouldSaveFloatingBox() bool {
	return c.Floating() && !c.IsFullscreen() && !c.IsMaximized()
}

// SetSize resizes the container rectangle and every contained toplevel's
// surface. Requests below the minimum clamp up. Floating geometry is
// recorded when configuration is allowed.
func (c *Container) SetSize(w, h int) {
	gap := c.Output.viewInfo(c.Workspace).Gap
	bw := c.Border.EffectiveThickness()
	outside := (bw + gap) * 2

	surfW := geom.Max(w-outside, MinSize)
	surfH := geom.Max(h-outside, MinSize)

	for _, t := range c.toplevels {
		t.SetSurfaceSize(surfW, surfH)
	}
	c.Border.Resize(surfW+bw*2, surfH+bw*2)

	// requests below the minimum clamp the container up too
	w = surfW + outside
	h = surfH + outside

	if c.shouldSaveFloatingBox() {
		c.FloatingBox.Width = w
		c.FloatingBox.Height = h
	}

	c.Width = w
	c.Height = h
}

// SetPosition moves the container tree; floating geometry is recorded when
// configuration is allowed.
func (c *Container) SetPosition(x, y int) {
	c.Tree.SetPosition(x, y)

	for _, t := range c.toplevels {
		if t.Kind == KindLegacyX11 {
			ax, ay := c.Tree.Coords()
			g := t.Geometry()
			t.Legacy.ConfigureRect(ax, ay, g.Width, g.Height)
		}
	}

	if c.shouldSaveFloatingBox() {
		c.FloatingBox.X = x
		c.FloatingBox.Y = y
	}
}

// SetPositionGap positions offset by the workspace gap width.
func (c *Container) SetPositionGap(x, y int) {
	gap := c.Output.viewInfo(c.Workspace).Gap
	c.SetPosition(x+gap, y+gap)
}

// SetGeometry applies a full rectangle.
func (c *Container) SetGeometry(box geom.Box) {
	c.SetPosition(box.X, box.Y)
	c.SetSize(box.Width, box.Height)
}

// RestoreFloatingBox re-applies the saved floating geometry.
func (c *Container) RestoreFloatingBox() {
	c.SetPosition(c.FloatingBox.X, c.FloatingBox.Y)
	c.SetSize(c.FloatingBox.Width, c.FloatingBox.Height)
}

// ToCenter centers the container in the output's usable area, clamped to
// its top-left.
func (c *Container) ToCenter() {
	if !c.ConfigureAllowed() {
		return
	}
	usable := c.Output.UsableArea
	x := geom.Max(usable.X+usable.Width/2-c.Width/2, usable.X)
	y := geom.Max(usable.Y+usable.Height/2-c.Height/2, usable.Y)
	c.SetPosition(x, y)
}

func (c *Container) emitFrontProperty(prop string) {
	c.ctx.Bus.Emit("client::property::"+prop, c.FrontToplevel())
}

// SetFloating switches between free and layout-governed placement. No-op
// while fullscreen or maximized.
func (c *Container) SetFloating(set bool) {
	if !c.ConfigureAllowed() {
		return
	}

	vi := c.Output.viewInfo(c.Workspace)
	if set {
		c.RestoreFloatingBox()
		if c.BspLeaf != nil {
			vi.Bsp.NodeDisable(c.BspLeaf)
		}
		c.state |= StateFloating
		c.Output.UpdateTiling(c.Workspace)
	} else if c.Floating() {
		c.state &^= StateFloating
		if c.BspLeaf != nil {
			vi.Bsp.NodeEnable(c.BspLeaf)
		} else if vi.Mode == tiler.ModeBsp {
			c.BspLeaf = vi.Bsp.Insert(c, c.Output.UsableArea)
		}
		c.Output.UpdateTiling(c.Workspace)
	}

	c.emitFrontProperty("floating")
}

// SetFullscreen covers the whole output. Mutually exclusive with
// maximized; the border hides while set.
func (c *Container) SetFullscreen(set bool) {
	vi := c.Output.viewInfo(c.Workspace)
	if set {
		// flip state first so the resize does not overwrite the saved
		// floating geometry
		c.state |= StateFullscreen
		c.state &^= StateMaximized
		if c.BspLeaf != nil {
			vi.Bsp.NodeDisable(c.BspLeaf)
		}
	} else {
		c.state &^= StateFullscreen
		if c.Floating() {
			c.RestoreFloatingBox()
		} else if c.BspLeaf != nil {
			vi.Bsp.NodeEnable(c.BspLeaf)
		}
	}

	for _, t := range c.toplevels {
		t.ops().SetFullscreen(set)
		if set {
			full := c.Output.FullArea()
			t.SetSurfaceSize(full.Width, full.Height)
		}
	}
	if set {
		c.SetPosition(c.Output.LayoutX, c.Output.LayoutY)
	}

	c.Border.SetEnabled(!set)
	c.Border.Resize(c.Width, c.Height)
	c.Output.UpdateTiling(c.Workspace)

	c.emitFrontProperty("fullscreen")
}

// SetMaximized fills the usable area. Mutually exclusive with fullscreen.
func (c *Container) SetMaximized(set bool) {
	vi := c.Output.viewInfo(c.Workspace)
	if set {
		c.state |= StateMaximized
		c.state &^= StateFullscreen
		if c.BspLeaf != nil {
			vi.Bsp.NodeDisable(c.BspLeaf)
		}
	} else {
		c.state &^= StateMaximized
		if c.Floating() {
			c.RestoreFloatingBox()
		} else if c.BspLeaf != nil {
			vi.Bsp.NodeEnable(c.BspLeaf)
		}
	}

	for _, t := range c.toplevels {
		t.ops().SetMaximized(set)
		if set {
			usable := c.Output.UsableArea
			t.SetSurfaceSize(usable.Width, usable.Height)
		}
	}
	if set {
		usable := c.Output.UsableArea
		c.SetPosition(usable.X, usable.Y)
	}

	c.Border.SetEnabled(!set)
	c.Border.Resize(c.Width, c.Height)
	c.Output.UpdateTiling(c.Workspace)

	c.emitFrontProperty("maximized")
}

// SetMinimized hides the container. Unminimizing snaps the container to
// the output's current tag and workspace: a minimized window returns
// "here, now", not to where it was.
func (c *Container) SetMinimized(set bool) {
	c.Tree.SetEnabled(!set)

	vi := c.Output.viewInfo(c.Workspace)
	if set {
		c.Output.addMinimized(c)
		if c.BspLeaf != nil {
			vi.Bsp.NodeDisable(c.BspLeaf)
		}
		c.state |= StateMinimized
		c.Output.FocusNewestVisible()
	} else {
		c.state &^= StateMinimized
		c.Output.removeMinimized(c)
		if c.BspLeaf != nil {
			vi.Bsp.NodeEnable(c.BspLeaf)
		}
		c.Tag = c.Output.State.ActiveTag
		c.Workspace = c.Output.State.ActiveWorkspace
	}

	c.Output.UpdateTiling(c.Workspace)

	c.emitFrontProperty("minimized")
}

// SetSticky keeps the container visible across every tag.
func (c *Container) SetSticky(set bool) {
	if set {
		c.state |= StateSticky
	} else {
		c.state &^= StateSticky
	}
	c.Output.UpdateVisible()
}

// SetEnabled toggles the container's scene subtree.
func (c *Container) SetEnabled(set bool) {
	c.Tree.SetEnabled(set)
}

// SetOpacity clamps to [0,1] and schedules a repaint.
func (c *Container) SetOpacity(opacity float64) {
	c.Opacity = geom.Clamp(opacity, 0, 1)
	c.Tree.Opacity = c.Opacity
	c.Output.ScheduleFrame()
}

// Raise moves the container subtree above its layer siblings.
func (c *Container) Raise() {
	c.Tree.RaiseToTop()
	c.ctx.Bus.Emit("client::raised", c.FrontToplevel())
}

// Lower moves the container subtree below its layer siblings.
func (c *Container) Lower() {
	c.Tree.LowerToBottom()
	c.ctx.Bus.Emit("client::lowered", c.FrontToplevel())
}

// MoveToTag rebinds the container to workspace i (and its tag bit),
// moving any BSP membership along.
func (c *Container) MoveToTag(i int) {
	if i < 1 || i > MaxWorkspace || c.Workspace == i {
		return
	}

	if c.BspLeaf != nil {
		c.Output.viewInfo(c.Workspace).Bsp.Remove(c.BspLeaf)
		c.BspLeaf = nil
		c.Output.UpdateTiling(c.Workspace)
	}

	c.Tag = TagOf(i)
	c.Workspace = i

	vi := c.Output.viewInfo(i)
	if vi.Mode == tiler.ModeBsp && !c.Floating() {
		c.BspLeaf = vi.Bsp.Insert(c, c.Output.UsableArea)
	}

	c.Output.UpdateTiling(i)
	c.Output.UpdateVisible()
}

// Swap exchanges the toplevel populations of two containers, keeping each
// container's identity, geometry and workspace.
func Swap(a, b *Container) {
	if a == nil || b == nil || a == b {
		return
	}

	aFront := a.FrontToplevel()
	bFront := b.FrontToplevel()

	aTops := a.Toplevels()
	bTops := b.Toplevels()

	for _, t := range aTops {
		a.RemoveKeep(t)
	}
	for _, t := range bTops {
		b.RemoveKeep(t)
	}
	for _, t := range aTops {
		b.Insert(t)
	}
	for _, t := range bTops {
		a.Insert(t)
	}

	b.SetFront(aFront)
	a.SetFront(bFront)

	a.ctx.Bus.EmitArgs("container::swap", a, b)
	a.ctx.Bus.Emit("client::swap", aFront)
}

// ToggleSplit flips the split axis above the container's BSP leaf.
func (c *Container) ToggleSplit() {
	if c.BspLeaf == nil {
		return
	}
	c.Output.viewInfo(c.Workspace).Bsp.ToggleSplit(c.BspLeaf)
}

// PopupUnconstrainBox is the rectangle, relative to the toplevel surface
// origin (inside the border),
// that popups of the contained toplevels must stay inside: the whole
// output, so a popup near an edge slides instead of clipping.
func (c *Container) PopupUnconstrainBox() geom.Box {
	x, y := c.Tree.Coords()
	bw := c.Border.EffectiveThickness()
	full := c.Output.FullArea()
	return geom.Box{
		X:      -(x + bw),
		Y:      -(y + bw),
		Width:  full.Width,
		Height: full.Height,
	}
}

// MarkInsert points the global insert mark at this container; the next
// mapped toplevel joins it.
func (c *Container) MarkInsert() {
	c.ctx.InsertMarked = c
	logrus.WithField("container", c.Box()).Debugln("insert mark set")
}
