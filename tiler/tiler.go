// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package tiler implements the per-workspace layout machinery: the layout
// mode selector, the master/stack strategy registry and the binary space
// partition tree. The engines arrange Clients (containers), never surfaces.
package tiler

import "github.com/mstarongithub/waytile/geom"

// Mode selects how a workspace arranges its tileable containers.
type Mode int

const (
	ModeFloating Mode = iota
	ModeMaster
	ModeBsp
	modeLen
)

func (m Mode) Valid() bool { return m >= ModeFloating && m < modeLen }

func (m Mode) String() string {
	switch m {
	case ModeFloating:
		return "floating"
	case ModeMaster:
		return "master"
	case ModeBsp:
		return "bsp"
	default:
		return "unknown"
	}
}

// Client is the container surface the engines talk to. Strategies and the
// BSP tree must only go through these operations, never directly to the
// toplevel surfaces.
type Client interface {
	// SetSize resizes the container rectangle.
	SetSize(w, h int)
	// SetPositionGap positions the container offset by the workspace gap.
	SetPositionGap(x, y int)
	// ConfigureAllowed reports whether the container currently accepts
	// geometry changes (not fullscreen, not maximized).
	ConfigureAllowed() bool
	// Floating reports whether the container is laid out freely.
	Floating() bool
}

// MasterState is the master-layout half of a workspace's view settings.
type MasterState struct {
	MasterCount int
	ColumnCount int
	MWFact      float64
	// Strategy indexes the registry ring.
	Strategy int
}

// ViewInfo is the per-workspace layout configuration.
type ViewInfo struct {
	Mode   Mode
	Gap    int
	Master MasterState
	Bsp    RootEntry
}

// NewViewInfo returns the defaults for a fresh workspace.
func NewViewInfo(gap int) ViewInfo {
	return ViewInfo{
		Mode: ModeFloating,
		Gap:  geom.Max(gap, 0),
		Master: MasterState{
			MasterCount: 1,
			ColumnCount: 1,
			MWFact:      0.5,
		},
	}
}

// SetMWFact writes the master width factor, clamped to [0.1, 0.9].
func (v *ViewInfo) SetMWFact(f float64) {
	v.Master.MWFact = geom.Clamp(f, 0.1, 0.9)
}

// SetGap writes the useless gap width, clamped to ≥ 0.
func (v *ViewInfo) SetGap(w int) {
	v.Gap = geom.Max(w, 0)
}
