// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wm

import (
	"github.com/mstarongithub/waytile/scene"
	"github.com/mstarongithub/waytile/signal"
	"github.com/mstarongithub/waytile/tiler"
)

// Surface is the comparable identity of a wire-protocol surface. The core
// never looks inside it; it only routes keyboard focus by identity.
type Surface any

// Seat is the keyboard/pointer focus sink the core drives.
type Seat interface {
	FocusedSurface() Surface
	KeyboardEnter(s Surface)
	ClearKeyboard()
	ClearPointer()
}

// PointerRefresher re-runs cursor processing without pointer motion, with
// hover focus-change signals suppressed, so hover state settles against a
// new keyboard focus.
type PointerRefresher interface {
	RefreshNoMotion()
}

// Context is the compositor state threaded explicitly through every
// handler. All access happens on the event-loop goroutine; no locking.
type Context struct {
	Bus        *signal.Bus
	Strategies *tiler.Registry
	Layers     *scene.Layers
	Seat       Seat
	Pointer    PointerRefresher

	BorderWidth   int
	BorderPattern scene.Pattern
	BorderFactory scene.BufferFactory

	Outputs       []*Output
	FocusedOutput *Output
	Containers    []*Container
	LayerSurfaces []*scene.LayerSurface

	// InsertMarked is the weak mark: the container that receives the next
	// mapped toplevel. Cleared when its target is destroyed.
	InsertMarked *Container

	Lock *SessionLock

	// ExclusiveLayer pins keyboard focus while a top/overlay layer surface
	// requests exclusive interactivity.
	ExclusiveLayer *scene.LayerSurface

	stateCache map[string]*OutputState
}

// NewContext wires an empty compositor core.
func NewContext(bus *signal.Bus, seat Seat) *Context {
	ctx := &Context{
		Bus:        bus,
		Strategies: tiler.NewRegistry(),
		Layers:     scene.NewLayers(),
		Seat:       seat,
		BorderWidth: 1,
		BorderPattern: scene.SolidPattern(0.5, 0.5, 0.5, 1),
		stateCache: map[string]*OutputState{},
	}
	ctx.Lock = &SessionLock{ctx: ctx}
	return ctx
}

// OutputAt returns the output a layout point falls on, or the focused one.
func (ctx *Context) OutputAt(lx, ly float64) *Output {
	for _, o := range ctx.Outputs {
		full := o.FullArea()
		if full.Contains(lx-float64(o.LayoutX), ly-float64(o.LayoutY)) {
			return o
		}
	}
	return ctx.FocusedOutput
}

// OutputExists guards against dangling output references after hot-unplug.
func (ctx *Context) OutputExists(o *Output) bool {
	for _, cur := range ctx.Outputs {
		if cur == o {
			return true
		}
	}
	return false
}

// SurfacesOn filters the layer surfaces belonging to an output.
func (ctx *Context) SurfacesOn(o *Output) []*scene.LayerSurface {
	var out []*scene.LayerSurface
	for _, s := range ctx.LayerSurfaces {
		if s.OutputName == o.Name() {
			out = append(out, s)
		}
	}
	return out
}

func (ctx *Context) removeContainer(c *Container) {
	for i, cur := range ctx.Containers {
		if cur == c {
			ctx.Containers = append(ctx.Containers[:i], ctx.Containers[i+1:]...)
			return
		}
	}
}
