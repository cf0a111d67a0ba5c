// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package scene

import (
	"github.com/mstarongithub/waytile/geom"
	"github.com/sirupsen/logrus"
)

// Anchor is the layer-shell edge anchoring bitmask.
type Anchor uint32

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// KeyboardInteractivity mirrors the layer-shell request.
type KeyboardInteractivity int

const (
	KeyboardNone KeyboardInteractivity = iota
	KeyboardExclusive
	KeyboardOnDemand
)

// LayerSurface is a mapped layer-shell client surface: a bar, a dock, a
// wallpaper. The arranger assigns Geo and maintains the output's usable
// area from the exclusive zones.
type LayerSurface struct {
	Namespace string
	Layer     Layer

	Anchor        Anchor
	ExclusiveZone int
	MarginTop     int
	MarginBottom  int
	MarginLeft    int
	MarginRight   int

	DesiredWidth  int
	DesiredHeight int

	Keyboard KeyboardInteractivity

	Tree   *Node
	Geo    geom.Box
	Mapped bool

	// WireSurface is the protocol surface identity, used when pinning
	// keyboard focus to an exclusive-interactivity surface.
	WireSurface any

	// OutputName keys the surface to its sink for re-homing after
	// hot-unplug.
	OutputName string
}

func (s *LayerSurface) anchoredBoth(a, b Anchor) bool {
	return s.Anchor&a != 0 && s.Anchor&b != 0
}

// arrange positions one surface within bounds and returns its box.
func (s *LayerSurface) arrange(full geom.Box, usable geom.Box) geom.Box {
	bounds := usable
	if s.ExclusiveZone == -1 {
		bounds = full
	}

	box := geom.Box{Width: s.DesiredWidth, Height: s.DesiredHeight}

	// horizontal
	switch {
	case box.Width == 0:
		box.X = bounds.X + s.MarginLeft
		box.Width = bounds.Width - s.MarginLeft - s.MarginRight
	case s.anchoredBoth(AnchorLeft, AnchorRight):
		box.X = bounds.X + (bounds.Width-box.Width)/2
	case s.Anchor&AnchorLeft != 0:
		box.X = bounds.X + s.MarginLeft
	case s.Anchor&AnchorRight != 0:
		box.X = bounds.X + bounds.Width - box.Width - s.MarginRight
	default:
		box.X = bounds.X + (bounds.Width-box.Width)/2
	}

	// vertical
	switch {
	case box.Height == 0:
		box.Y = bounds.Y + s.MarginTop
		box.Height = bounds.Height - s.MarginTop - s.MarginBottom
	case s.anchoredBoth(AnchorTop, AnchorBottom):
		box.Y = bounds.Y + (bounds.Height-box.Height)/2
	case s.Anchor&AnchorTop != 0:
		box.Y = bounds.Y + s.MarginTop
	case s.Anchor&AnchorBottom != 0:
		box.Y = bounds.Y + bounds.Height - box.Height - s.MarginBottom
	default:
		box.Y = bounds.Y + (bounds.Height-box.Height)/2
	}

	return box
}

// applyExclusive carves the surface's exclusive zone out of the usable
// area, on the edge the surface is anchored to.
func (s *LayerSurface) applyExclusive(usable *geom.Box) {
	if s.ExclusiveZone <= 0 {
		return
	}
	zone := s.ExclusiveZone
	switch {
	case s.Anchor&AnchorTop != 0 && !s.anchoredBoth(AnchorTop, AnchorBottom):
		usable.Y += zone + s.MarginTop
		usable.Height -= zone + s.MarginTop
	case s.Anchor&AnchorBottom != 0 && !s.anchoredBoth(AnchorTop, AnchorBottom):
		usable.Height -= zone + s.MarginBottom
	case s.Anchor&AnchorLeft != 0 && !s.anchoredBoth(AnchorLeft, AnchorRight):
		usable.X += zone + s.MarginLeft
		usable.Width -= zone + s.MarginLeft
	case s.Anchor&AnchorRight != 0 && !s.anchoredBoth(AnchorLeft, AnchorRight):
		usable.Width -= zone + s.MarginRight
	}
}

// shellLayers is the arrangement order: overlay, top, bottom, background.
var shellLayers = []Layer{LayerOverlay, LayerTop, LayerBottom, LayerBackground}

// ArrangeLayers positions every mapped surface of an output and returns
// the remaining usable area. Exclusive-zone surfaces are placed first,
// non-exclusive second, per shell layer order.
func ArrangeLayers(full geom.Box, surfaces []*LayerSurface) geom.Box {
	usable := full

	pass := func(layer Layer, exclusive bool) {
		for _, s := range surfaces {
			if !s.Mapped || s.Layer != layer {
				continue
			}
			if (s.ExclusiveZone > 0) != exclusive {
				continue
			}
			s.Geo = s.arrange(full, usable)
			if s.Tree != nil {
				s.Tree.SetPosition(s.Geo.X, s.Geo.Y)
			}
			s.applyExclusive(&usable)
		}
	}

	for _, layer := range shellLayers {
		pass(layer, true)
	}
	for _, layer := range shellLayers {
		pass(layer, false)
	}

	if usable.Empty() {
		logrus.WithField("usable", usable).
			Debugln("layer-shell exclusive zones exhausted the output")
	}
	return usable
}
