// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package geom holds the integer pixel geometry shared by the layout
// engines, the scene graph and the input router. Layout coordinates are
// layer-relative pixels.
package geom

// Box is a rectangle in layout coordinates.
type Box struct {
	X, Y          int
	Width, Height int
}

func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

func (b Box) Contains(x, y float64) bool {
	return x >= float64(b.X) && x < float64(b.X+b.Width) &&
		y >= float64(b.Y) && y < float64(b.Y+b.Height)
}

// Edges is a bitmask of rectangle edges, matching the wire protocol's
// resize edge encoding.
type Edges uint32

const (
	EdgeNone   Edges = 0
	EdgeTop    Edges = 1 << 0
	EdgeBottom Edges = 1 << 1
	EdgeLeft   Edges = 1 << 2
	EdgeRight  Edges = 1 << 3
)

// AllEdges is what tiled toplevels advertise.
const AllEdges = EdgeTop | EdgeBottom | EdgeLeft | EdgeRight

// CursorName returns the cursor shape name for a resize grab on the given
// edge combination.
func (e Edges) CursorName() string {
	switch e {
	case EdgeTop:
		return "n-resize"
	case EdgeBottom:
		return "s-resize"
	case EdgeLeft:
		return "w-resize"
	case EdgeRight:
		return "e-resize"
	case EdgeTop | EdgeLeft:
		return "nw-resize"
	case EdgeTop | EdgeRight:
		return "ne-resize"
	case EdgeBottom | EdgeLeft:
		return "sw-resize"
	case EdgeBottom | EdgeRight:
		return "se-resize"
	default:
		return "default"
	}
}

// NormDevice maps surface-local coordinates inside box to [-1,1]² with
// (0,0) at the center.
func NormDevice(box Box, sx, sy float64) (nx, ny float64) {
	if box.Width > 0 {
		nx = (sx-float64(box.X))/float64(box.Width)*2 - 1
	}
	if box.Height > 0 {
		ny = (sy-float64(box.Y))/float64(box.Height)*2 - 1
	}
	return nx, ny
}

// InferEdges decides which edges an unspecified interactive resize should
// grab, from the pointer position inside the toplevel geometry box.
// Single-edge regions win; otherwise the nearest corner pair is used.
func InferEdges(box Box, sx, sy float64) Edges {
	nx, ny := NormDevice(box, sx, sy)

	if nx >= -0.3 && nx <= 0.3 {
		if ny <= -0.4 {
			return EdgeTop
		} else if ny >= 0.6 {
			return EdgeBottom
		}
	} else if ny >= -0.3 && ny <= 0.3 {
		if nx <= -0.4 {
			return EdgeLeft
		} else if nx >= 0.6 {
			return EdgeRight
		}
	}

	var edges Edges
	if nx >= -0.05 {
		edges |= EdgeRight
	} else {
		edges |= EdgeLeft
	}
	if ny >= -0.05 {
		edges |= EdgeBottom
	} else {
		edges |= EdgeTop
	}
	return edges
}

func Clamp[T int | float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Max[T int | float64](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Min[T int | float64](a, b T) T {
	if a < b {
		return a
	}
	return b
}
