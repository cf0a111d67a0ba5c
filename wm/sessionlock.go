// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wm

import (
	"errors"

	"github.com/mstarongithub/waytile/scene"
	"github.com/sirupsen/logrus"
)

// ErrAlreadyLocked rejects a second lock grant while one is active; the
// offending client resource should be destroyed.
var ErrAlreadyLocked = errors.New("session lock already held")

// Locker is one granted session lock: its surface receives all keyboard
// input until unlock.
type Locker struct {
	WireSurface Surface
	Tree        *scene.Node
	// OutputName is where the lock surface sits; focus returns there on
	// unlock.
	OutputName string
}

// SessionLock owns the single active locker and the exclusivity
// invariant: while locked, keybinding dispatch is suspended and keyboard
// focus is pinned to the lock surface.
type SessionLock struct {
	ctx    *Context
	Locked bool
	locker *Locker
}

// Surface returns the active lock surface, or nil.
func (l *SessionLock) Surface() Surface {
	if l.locker == nil {
		return nil
	}
	return l.locker.WireSurface
}

// Grant engages the lock. A double grant is client protocol misuse.
func (l *SessionLock) Grant(locker *Locker) error {
	if l.Locked {
		logrus.Debugln("rejecting second session lock grant")
		return ErrAlreadyLocked
	}
	l.Locked = true
	l.locker = locker

	if locker.Tree != nil {
		locker.Tree.Reparent(l.ctx.Layers.SessionLock)
	}
	if locker.WireSurface != nil {
		l.ctx.Seat.KeyboardEnter(locker.WireSurface)
	}
	logrus.Infoln("session locked")
	return nil
}

// Unlock releases the lock and refocuses the newest visible toplevel on
// the output that had the lock surface.
func (l *SessionLock) Unlock() {
	if !l.Locked {
		return
	}
	locker := l.locker
	l.Locked = false
	l.locker = nil

	if locker != nil && locker.Tree != nil {
		locker.Tree.Destroy()
	}

	var target *Output
	if locker != nil {
		for _, o := range l.ctx.Outputs {
			if o.Name() == locker.OutputName {
				target = o
				break
			}
		}
	}
	if target == nil {
		target = l.ctx.FocusedOutput
	}
	if target != nil {
		target.FocusNewestVisible()
	}
	logrus.Infoln("session unlocked")
}
