// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package scene

import "github.com/sirupsen/logrus"

// PatternKind selects how border color stops are spread.
type PatternKind int

const (
	PatternSolid PatternKind = iota
	PatternLinear
	PatternRadial
)

// ColorStop is one gradient stop; Offset in [0,1].
type ColorStop struct {
	Offset     float64
	R, G, B, A float64
}

// Pattern describes the border paint. For linear gradients the rotation
// degree orients the axis; the renderer clips the result to the frame.
type Pattern struct {
	Kind           PatternKind
	Stops          []ColorStop
	RotationDegree int
}

// SolidPattern is a convenience for single-color borders.
func SolidPattern(r, g, b, a float64) Pattern {
	return Pattern{Kind: PatternSolid, Stops: []ColorStop{{R: r, G: g, B: b, A: a}}}
}

// BufferFactory creates the renderer-side buffer for one border side.
// Returning nil models an allocation failure; the border is then skipped
// and the container stays usable without decoration.
type BufferFactory func(parent *Node, w, h int) *Node

// ModelBuffers is the factory used when no renderer is attached.
func ModelBuffers(parent *Node, w, h int) *Node {
	return parent.NewBuffer(Owner{Kind: OwnerBorder}, w, h)
}

// Border is the four scene buffers framing a container: clockwise top,
// right, bottom, left. The frame spans the full container rectangle with
// the surface area as its inner hole.
type Border struct {
	Thickness int
	Width     int
	Height    int
	Pattern   Pattern
	enabled   bool

	attached *Node
	factory  BufferFactory
	buffers  [4]*Node
}

// NewBorder sets up a border for a rect_w×rect_h container; its buffers are
// created when it is attached with AttachToScene. A zero thickness yields a
// permanently invalid (undecorated) border.
func NewBorder(pattern Pattern, rectW, rectH, thickness int, factory BufferFactory) *Border {
	b := &Border{
		Thickness: thickness,
		Width:     rectW,
		Height:    rectH,
		Pattern:   pattern,
		enabled:   true,
		factory:   factory,
	}
	if factory == nil {
		b.factory = ModelBuffers
	}
	return b
}

// Valid reports whether all four side buffers exist.
func (b *Border) Valid() bool {
	for _, buf := range b.buffers {
		if buf == nil {
			return false
		}
	}
	return true
}

func (b *Border) destroyBuffers() {
	for i, buf := range b.buffers {
		if buf != nil {
			buf.Destroy()
		}
		b.buffers[i] = nil
	}
}

func (b *Border) createBuffers() {
	if b.attached == nil || b.Thickness == 0 {
		return
	}
	bw := b.Thickness
	// clockwise top to left
	b.buffers[0] = b.factory(b.attached, b.Width, bw)
	b.buffers[1] = b.factory(b.attached, bw, b.Height-bw*2)
	b.buffers[2] = b.factory(b.attached, b.Width, bw)
	b.buffers[3] = b.factory(b.attached, bw, b.Height-bw*2)

	if !b.Valid() {
		logrus.WithFields(logrus.Fields{
			"width":  b.Width,
			"height": b.Height,
		}).Debugln("border buffer allocation failed, skipping decoration")
		b.destroyBuffers()
		return
	}

	for _, buf := range b.buffers {
		buf.LowerToBottom()
	}
	b.buffers[1].SetPosition(b.Width-bw, bw)
	b.buffers[2].SetPosition(0, b.Height-bw)
	b.buffers[3].SetPosition(0, bw)
	b.applyEnabled()
}

// AttachToScene parents the buffers under the container tree.
func (b *Border) AttachToScene(tree *Node) {
	b.attached = tree
	b.destroyBuffers()
	b.createBuffers()
}

func (b *Border) applyEnabled() {
	if !b.Valid() {
		return
	}
	for _, buf := range b.buffers {
		buf.SetEnabled(b.enabled)
	}
}

// SetEnabled toggles border visibility (hidden while fullscreen or
// maximized).
func (b *Border) SetEnabled(enabled bool) {
	b.enabled = enabled
	b.applyEnabled()
}

func (b *Border) Enabled() bool { return b.enabled }

// EffectiveThickness is the thickness layout reserves: zero while the
// border is disabled or invalid.
func (b *Border) EffectiveThickness() int {
	if !b.enabled || !b.Valid() {
		return 0
	}
	return b.Thickness
}

// SetPattern swaps the paint and redraws.
func (b *Border) SetPattern(pattern Pattern) {
	b.Pattern = pattern
	b.destroyBuffers()
	b.createBuffers()
}

// Resize redraws the frame for a new container rectangle.
func (b *Border) Resize(rectW, rectH int) {
	if b.Width == rectW && b.Height == rectH {
		return
	}
	b.Width = rectW
	b.Height = rectH
	b.destroyBuffers()
	b.createBuffers()
}

// Destroy drops all buffers.
func (b *Border) Destroy() {
	b.destroyBuffers()
	b.attached = nil
}
