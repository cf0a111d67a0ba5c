// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package input

import "github.com/mstarongithub/waytile/geom"

// ConstraintKind is what a pointer constraint does with motion.
type ConstraintKind int

const (
	// Confined clips motion into the region.
	Confined ConstraintKind = iota
	// Locked drops motion entirely.
	Locked
)

// Constraint is one active pointer constraint on a surface.
type Constraint struct {
	Surface any
	Kind    ConstraintKind
	// Region in surface-local coordinates; empty means whole surface.
	Region []geom.Box

	Active bool
}

// contains reports whether a surface-local point is inside the region. An
// empty region admits everything.
func (c *Constraint) contains(sx, sy float64) bool {
	if len(c.Region) == 0 {
		return true
	}
	for _, b := range c.Region {
		if b.Contains(sx, sy) {
			return true
		}
	}
	return false
}

// ConfineDelta clips a motion delta so the resulting point stays in the
// region. The clip happens per axis against the box the pointer occupies;
// motion crossing into an adjacent region box passes through.
func (c *Constraint) ConfineDelta(sx, sy, dx, dy float64) (float64, float64) {
	if c.Kind == Locked {
		return 0, 0
	}
	if c.contains(sx+dx, sy+dy) {
		return dx, dy
	}

	var home *geom.Box
	for i := range c.Region {
		if c.Region[i].Contains(sx, sy) {
			home = &c.Region[i]
			break
		}
	}
	if home == nil {
		return 0, 0
	}

	nx := geom.Clamp(sx+dx, float64(home.X), float64(home.X+home.Width)-1)
	ny := geom.Clamp(sy+dy, float64(home.Y), float64(home.Y+home.Height)-1)
	return nx - sx, ny - sy
}
