// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package xbridge reads window-manager hints for legacy X11 clients over
// the X connection the Xwayland server exposes. The core only ever sees
// the resulting traits through the LegacySurface interface; everything
// X-protocol-specific stays here.
package xbridge

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/sirupsen/logrus"
)

// Bridge is one connection to the legacy X server.
type Bridge struct {
	x *xgbutil.XUtil
}

// Connect dials the X display (":0"-style name, usually the one exported
// in DISPLAY for Xwayland).
func Connect(display string) (*Bridge, error) {
	x, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connecting to X display %q: %w", display, err)
	}
	logrus.WithField("display", display).Debugln("x bridge connected")
	return &Bridge{x: x}, nil
}

// Close drops the connection.
func (b *Bridge) Close() {
	if b.x != nil {
		b.x.Conn().Close()
	}
}

// Traits is what the window-management core wants to know about a legacy
// window.
type Traits struct {
	OverrideRedirect bool
	Modal            bool

	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
}

// Traits reads the classification hints for a window. Missing properties
// degrade to zero values rather than failing the lookup.
func (b *Bridge) Traits(win xproto.Window) (Traits, error) {
	var t Traits

	attrs, err := xproto.GetWindowAttributes(b.x.Conn(), win).Reply()
	if err != nil {
		return t, fmt.Errorf("window attributes for %d: %w", win, err)
	}
	t.OverrideRedirect = attrs.OverrideRedirect

	if hints, err := icccm.WmNormalHintsGet(b.x, win); err == nil && hints != nil {
		if hints.Flags&icccm.SizeHintPMinSize != 0 {
			t.MinWidth = int(hints.MinWidth)
			t.MinHeight = int(hints.MinHeight)
		}
		if hints.Flags&icccm.SizeHintPMaxSize != 0 {
			t.MaxWidth = int(hints.MaxWidth)
			t.MaxHeight = int(hints.MaxHeight)
		}
	}

	if states, err := ewmh.WmStateGet(b.x, win); err == nil {
		for _, s := range states {
			if s == "_NET_WM_STATE_MODAL" {
				t.Modal = true
				break
			}
		}
	}

	return t, nil
}

// ConfigureRect forwards the compositor's layout rectangle to the X side
// so the client's idea of its position stays coherent.
func (b *Bridge) ConfigureRect(win xproto.Window, x, y, w, h int) {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	vals := []uint32{uint32(x), uint32(y), uint32(w), uint32(h)}
	xproto.ConfigureWindow(b.x.Conn(), win, mask, vals)
}

// CloseWindow asks for a graceful close with a _NET_CLOSE_WINDOW request,
// falling back to a kill when that request cannot be sent.
func (b *Bridge) CloseWindow(win xproto.Window) {
	if err := ewmh.CloseWindow(b.x, win); err != nil {
		logrus.WithError(err).WithField("window", win).
			Debugln("graceful close failed, killing client")
		xproto.KillClient(b.x.Conn(), uint32(win))
	}
}
