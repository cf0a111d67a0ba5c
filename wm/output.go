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
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// Backend is the physical sink behind an Output.
type Backend interface {
	Name() string
	// Size is the effective resolution in layout pixels.
	Size() (w, h int)
	// RefreshMillihertz is the mode refresh rate, 0 when unknown.
	RefreshMillihertz() int
	// ScheduleFrame requests a repaint.
	ScheduleFrame()
}

// OutputState is everything that survives a hot-unplug: parked in a
// name-keyed cache on destroy and rebound when a display with the same
// name reattaches. The cache never evicts.
type OutputState struct {
	ActiveTag           TagBitfield
	ActiveWorkspace     int
	MaxGeneralWorkspace int

	// index 1..MaxWorkspace; 0 unused
	ViewInfo [MaxWorkspace + 1]tiler.ViewInfo

	// newest first
	Toplevels []*Toplevel
	// most recently focused at the head
	FocusStack []*Container
	Containers []*Container
	Minimized  []*Container

	oldOutput *Output
}

func newOutputState(gap int) *OutputState {
	st := &OutputState{
		ActiveTag:           1,
		ActiveWorkspace:     1,
		MaxGeneralWorkspace: 9,
	}
	for i := 1; i <= MaxWorkspace; i++ {
		st.ViewInfo[i] = tiler.NewViewInfo(gap)
	}
	return st
}

// Output is one display sink with its workspaces.
type Output struct {
	ctx     *Context
	Backend Backend

	State      *OutputState
	UsableArea geom.Box

	// layout origin of this output
	LayoutX, LayoutY int

	// Restored is set when the state came out of the hot-unplug cache, so
	// scripts can skip their default setup.
	Restored bool
}

func (o *Output) Name() string { return o.Backend.Name() }

// FullArea is the whole output rectangle in output-local coordinates.
func (o *Output) FullArea() geom.Box {
	w, h := o.Backend.Size()
	return geom.Box{Width: w, Height: h}
}

func (o *Output) ScheduleFrame() { o.Backend.ScheduleFrame() }

func (o *Output) viewInfo(workspace int) *tiler.ViewInfo {
	workspace = geom.Clamp(workspace, 1, MaxWorkspace)
	return &o.State.ViewInfo[workspace]
}

// CurrentViewInfo is the active workspace's layout configuration.
func (o *Output) CurrentViewInfo() *tiler.ViewInfo {
	return o.viewInfo(o.State.ActiveWorkspace)
}

// AttachOutput creates (or restores) the Output for a new display.
func (ctx *Context) AttachOutput(b Backend, defaultGap int) *Output {
	o := &Output{ctx: ctx, Backend: b}

	if cached, ok := ctx.stateCache[b.Name()]; ok {
		o.State = cached
		o.Restored = true
		delete(ctx.stateCache, b.Name())
		old := cached.oldOutput
		for _, c := range ctx.Containers {
			if c.Output == old {
				c.Output = o
			}
		}
		logrus.WithField("output", b.Name()).Infoln("restored cached output state")
	} else {
		o.State = newOutputState(defaultGap)
	}

	o.UsableArea = o.FullArea()
	ctx.Outputs = append(ctx.Outputs, o)
	ctx.FocusedOutput = o

	o.ArrangeLayers()
	o.UpdateTiling(0)
	o.UpdateVisible()

	ctx.Bus.Emit("screen::new", o)
	return o
}

// DetachOutput parks the output's state for opportunistic restore.
func (ctx *Context) DetachOutput(o *Output) {
	o.State.oldOutput = o
	ctx.stateCache[o.Name()] = o.State
	ctx.Bus.Emit("screen::destroy", o)

	logrus.WithField("output", o.Name()).Infoln("output destroyed, state parked")

	for i, cur := range ctx.Outputs {
		if cur == o {
			ctx.Outputs = append(ctx.Outputs[:i], ctx.Outputs[i+1:]...)
			break
		}
	}
	if ctx.FocusedOutput == o {
		if len(ctx.Outputs) > 0 {
			ctx.FocusedOutput = ctx.Outputs[0]
		} else {
			ctx.FocusedOutput = nil
		}
	}
}

// list bookkeeping

func (o *Output) addContainer(c *Container) {
	o.State.Containers = append(o.State.Containers, c)
	o.State.FocusStack = append([]*Container{c}, o.State.FocusStack...)
}

func (o *Output) removeContainer(c *Container) {
	o.State.Containers = sliceutils.Filter(o.State.Containers,
		func(cur *Container) bool { return cur != c })
	o.State.FocusStack = sliceutils.Filter(o.State.FocusStack,
		func(cur *Container) bool { return cur != c })
}

func (o *Output) moveToFocusFront(c *Container) {
	if c.IsUnmanaged() {
		return
	}
	o.State.FocusStack = sliceutils.Filter(o.State.FocusStack,
		func(cur *Container) bool { return cur != c })
	o.State.FocusStack = append([]*Container{c}, o.State.FocusStack...)
}

func (o *Output) addMinimized(c *Container) {
	for _, cur := range o.State.Minimized {
		if cur == c {
			return
		}
	}
	o.State.Minimized = append(o.State.Minimized, c)
}

func (o *Output) removeMinimized(c *Container) {
	o.State.Minimized = sliceutils.Filter(o.State.Minimized,
		func(cur *Container) bool { return cur != c })
}

func (o *Output) removeToplevel(t *Toplevel) {
	o.State.Toplevels = sliceutils.Filter(o.State.Toplevels,
		func(cur *Toplevel) bool { return cur != t })
}

// VisibleContainers returns the output's visible containers in map order.
func (o *Output) VisibleContainers() []*Container {
	return sliceutils.Filter(o.State.Containers,
		func(c *Container) bool { return c.IsVisible() })
}

// tileable: governed by the active layout engine.
func (o *Output) tileableClients(workspace int) []tiler.Client {
	var out []tiler.Client
	for _, c := range o.State.Containers {
		if !c.IsVisible() || c.Workspace != workspace {
			continue
		}
		if c.IsUnmanaged() || c.IsMinimized() || c.IsMaximized() ||
			c.IsFullscreen() || c.Floating() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// UpdateTiling re-runs the active layout engine over the workspace (0
// means the active one).
func (o *Output) UpdateTiling(workspace int) {
	if workspace == 0 {
		workspace = o.State.ActiveWorkspace
	}
	if workspace < 1 || workspace > MaxWorkspace {
		return
	}
	vi := o.viewInfo(workspace)

	switch vi.Mode {
	case tiler.ModeBsp:
		vi.Bsp.UpdateRoot(o.UsableArea)
	case tiler.ModeMaster:
		o.ctx.Strategies.Arrange(o.tileableClients(workspace),
			o.UsableArea, o.FullArea(), &vi.Master)
	}
}

// UpdateVisible applies the visibility predicate to every container and
// refocuses.
func (o *Output) UpdateVisible() {
	for _, c := range o.State.Containers {
		c.SetEnabled(c.IsVisible())
	}
	o.FocusNewestVisible()
}

// NewestFocusVisibleToplevel walks the focus stack for the first visible
// managed container's front toplevel.
func (o *Output) NewestFocusVisibleToplevel() *Toplevel {
	for _, c := range o.State.FocusStack {
		t := c.FrontToplevel()
		if t == nil || t.IsUnmanaged() {
			continue
		}
		if !t.IsVisible() {
			continue
		}
		return t
	}
	return nil
}

// FocusNewestVisible refocuses after visibility changes; with nothing
// visible both seat foci clear.
func (o *Output) FocusNewestVisible() {
	if t := o.NewestFocusVisibleToplevel(); t != nil {
		t.Focus(false)
		return
	}
	o.ctx.Seat.ClearKeyboard()
	o.ctx.Seat.ClearPointer()
}

// tags & views

// ViewOnly switches to workspace i exclusively: the active tag becomes
// exactly i's bit.
func (o *Output) ViewOnly(i int) {
	if i < 1 || i > MaxWorkspace {
		return
	}
	o.State.ActiveTag = TagOf(i)
	o.State.ActiveWorkspace = i

	o.UpdateTiling(0)
	o.UpdateVisible()
}

// ToggleTag XORs workspace i's bit into the active tag set without moving
// the active workspace.
func (o *Output) ToggleTag(i int) {
	if i < 1 || i > MaxWorkspace {
		return
	}
	o.State.ActiveTag ^= TagOf(i)

	o.UpdateTiling(0)
	o.UpdateVisible()
}

// SetMaxGeneralWorkspace clamps to [1, MaxWorkspace].
func (o *Output) SetMaxGeneralWorkspace(n int) {
	o.State.MaxGeneralWorkspace = geom.Clamp(n, 1, MaxWorkspace)
}

// SetLayoutMode assigns the active workspace's layout kind. Transitioning
// to BSP adopts every tileable container into the tree; transitioning to
// floating restores saved floating rects.
func (o *Output) SetLayoutMode(mode tiler.Mode) {
	if !mode.Valid() {
		return
	}
	ws := o.State.ActiveWorkspace
	vi := o.viewInfo(ws)
	vi.Mode = mode

	switch mode {
	case tiler.ModeBsp:
		for _, c := range o.State.Containers {
			if !c.IsVisibleInWorkspace(ws) || c.Floating() || c.BspLeaf != nil {
				continue
			}
			c.BspLeaf = vi.Bsp.Insert(c, o.UsableArea)
			if c.IsMaximized() || c.IsFullscreen() {
				vi.Bsp.NodeDisable(c.BspLeaf)
			}
		}
	case tiler.ModeFloating:
		for _, c := range o.State.Containers {
			if c.Floating() && c.IsVisible() && c.ConfigureAllowed() {
				c.RestoreFloatingBox()
			}
		}
	}

	o.UpdateTiling(0)
}

// SetStrategyIdx advances the master strategy cursor by ±k. Only
// meaningful in master mode.
func (o *Output) SetStrategyIdx(step int) {
	vi := o.CurrentViewInfo()
	if vi.Mode != tiler.ModeMaster {
		return
	}
	vi.Master.Strategy = o.ctx.Strategies.Cycle(vi.Master.Strategy, step)
	o.UpdateTiling(0)
}

// SetUselessGaps writes the gap width for a workspace (0 = active),
// clamped to ≥ 0.
func (o *Output) SetUselessGaps(workspace, width int) {
	if workspace == 0 {
		workspace = o.State.ActiveWorkspace
	}
	workspace = geom.Clamp(workspace, 1, MaxWorkspace)
	o.State.ViewInfo[workspace].SetGap(width)
	o.UpdateTiling(workspace)
}

// SetMWFact writes the master width factor for a workspace (0 = active),
// clamped to [0.1, 0.9].
func (o *Output) SetMWFact(workspace int, factor float64) {
	if workspace == 0 {
		workspace = o.State.ActiveWorkspace
	}
	workspace = geom.Clamp(workspace, 1, MaxWorkspace)
	o.State.ViewInfo[workspace].SetMWFact(factor)
	o.UpdateTiling(workspace)
}

// ArrangeLayers re-positions this output's layer surfaces and recomputes
// the usable area; a change re-runs tiling and re-applies maximized
// geometry.
func (o *Output) ArrangeLayers() {
	ctx := o.ctx
	if !ctx.OutputExists(o) {
		// a surface commit can race output destruction
		return
	}

	usable := scene.ArrangeLayers(o.FullArea(), ctx.SurfacesOn(o))

	if usable != o.UsableArea {
		o.UsableArea = usable
		o.UpdateTiling(0)
		for _, c := range o.State.Containers {
			if c.IsMaximized() {
				c.SetMaximized(true)
			}
		}
	}

	// pin keyboard focus to the newest exclusive-interactivity surface on
	// the top or overlay layer
	ctx.ExclusiveLayer = nil
	surfaces := ctx.SurfacesOn(o)
	for i := len(surfaces) - 1; i >= 0; i-- {
		s := surfaces[i]
		if s.Mapped && s.Keyboard == scene.KeyboardExclusive &&
			(s.Layer == scene.LayerTop || s.Layer == scene.LayerOverlay) {
			ctx.ExclusiveLayer = s
			if s.WireSurface != nil {
				ctx.Seat.KeyboardEnter(s.WireSurface)
			}
			break
		}
	}
}

// LayerSurfaceUnmapped releases an exclusive focus pin held by s and
// refocuses.
func (ctx *Context) LayerSurfaceUnmapped(s *scene.LayerSurface) {
	if ctx.ExclusiveLayer == s {
		ctx.ExclusiveLayer = nil
		if o := ctx.FocusedOutput; o != nil {
			o.FocusNewestVisible()
		}
	}
}

// NearestByDirection finds the closest visible toplevel in a direction
// from the given one, by scene distance.
func (o *Output) NearestByDirection(from *Toplevel, edge geom.Edges) *Toplevel {
	if from == nil || from.Container == nil {
		return nil
	}
	fx, fy := from.Container.Tree.Coords()

	var best *Toplevel
	bestDist := int(^uint(0) >> 1)
	for _, c := range o.VisibleContainers() {
		t := c.FrontToplevel()
		if t == nil || t == from {
			continue
		}
		x, y := c.Tree.Coords()
		dx, dy := x-fx, y-fy
		ok := false
		switch edge {
		case geom.EdgeLeft:
			ok = dx < 0
		case geom.EdgeRight:
			ok = dx > 0
		case geom.EdgeTop:
			ok = dy < 0
		case geom.EdgeBottom:
			ok = dy > 0
		}
		if !ok {
			continue
		}
		dist := dx*dx + dy*dy
		if dist < bestDist {
			bestDist = dist
			best = t
		}
	}
	return best
}
