// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package xbridge

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/mstarongithub/waytile/geom"
	"github.com/mstarongithub/waytile/wm"
)

// Surface adapts one X window to the core's LegacySurface interface. The
// classification hints are read once at wrap time; override-redirect
// windows become unmanaged toplevels.
type Surface struct {
	bridge *Bridge
	win    xproto.Window
	traits Traits
	geo    geom.Box
}

var _ wm.LegacySurface = (*Surface)(nil)

// WrapWindow reads the window's traits and returns the adapter.
func (b *Bridge) WrapWindow(win xproto.Window, geo geom.Box) (*Surface, error) {
	traits, err := b.Traits(win)
	if err != nil {
		return nil, fmt.Errorf("wrapping window %d: %w", win, err)
	}
	return &Surface{bridge: b, win: win, traits: traits, geo: geo}, nil
}

func (s *Surface) Surface() wm.Surface { return s }

func (s *Surface) Geometry() geom.Box { return s.geo }

func (s *Surface) SetSize(w, h int) {
	s.geo.Width, s.geo.Height = w, h
	s.bridge.ConfigureRect(s.win, s.geo.X, s.geo.Y, w, h)
}

func (s *Surface) SetActivated(activated bool) {
	if activated {
		_ = ewmh.ActiveWindowSet(s.bridge.x, s.win)
	}
}

func (s *Surface) SetFullscreen(set bool) {
	action := ewmh.StateRemove
	if set {
		action = ewmh.StateAdd
	}
	_ = ewmh.WmStateReq(s.bridge.x, s.win, action, "_NET_WM_STATE_FULLSCREEN")
}

func (s *Surface) SetMaximized(set bool) {
	action := ewmh.StateRemove
	if set {
		action = ewmh.StateAdd
	}
	_ = ewmh.WmStateReqExtra(s.bridge.x, s.win, action,
		"_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ", 1)
}

func (s *Surface) SetResizing(bool) {}

func (s *Surface) SetTiled(geom.Edges) {}

func (s *Surface) MinSize() (int, int) { return s.traits.MinWidth, s.traits.MinHeight }

func (s *Surface) MaxSize() (int, int) { return s.traits.MaxWidth, s.traits.MaxHeight }

func (s *Surface) HasParent() bool { return false }

func (s *Surface) Close() { s.bridge.CloseWindow(s.win) }

func (s *Surface) Modal() bool { return s.traits.Modal }

func (s *Surface) OverrideRedirect() bool { return s.traits.OverrideRedirect }

func (s *Surface) ConfigureRect(x, y, w, h int) {
	s.geo.X, s.geo.Y = x, y
	s.bridge.ConfigureRect(s.win, x, y, w, h)
}
