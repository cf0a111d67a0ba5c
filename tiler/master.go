// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tiler

import (
	"github.com/mstarongithub/waytile/geom"
	"github.com/sirupsen/logrus"
)

// ArrangeFunc lays out the currently visible tileable clients. usable is
// the output area minus layer-shell reservations, full the whole output.
type ArrangeFunc func(clients []Client, usable, full geom.Box, st *MasterState)

// Strategy is a named master-layout arrangement.
type Strategy struct {
	Name    string
	Arrange ArrangeFunc
}

// Registry holds the registered strategies as an indexed vector. The
// per-workspace MasterState keeps a cursor into it; cycling wraps around.
type Registry struct {
	strategies []Strategy
}

// NewRegistry returns a registry with the built-in strategies installed.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(Strategy{Name: "tile", Arrange: arrangeTile})
	r.Register(Strategy{Name: "monocle", Arrange: arrangeMonocle})
	return r
}

// Register appends a strategy. Plugins add theirs after the built-ins.
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
	logrus.WithField("strategy", s.Name).Debugln("registered master layout")
}

// Unregister removes the named strategy. Built-in "tile" cannot be removed
// so the registry is never empty.
func (r *Registry) Unregister(name string) {
	if name == "tile" {
		return
	}
	for i, s := range r.strategies {
		if s.Name == name {
			r.strategies = append(r.strategies[:i], r.strategies[i+1:]...)
			return
		}
	}
}

func (r *Registry) Len() int { return len(r.strategies) }

// At returns the strategy at cursor idx, clamping stale cursors left behind
// by an unregister.
func (r *Registry) At(idx int) Strategy {
	if len(r.strategies) == 0 {
		return Strategy{Name: "tile", Arrange: arrangeTile}
	}
	if idx < 0 || idx >= len(r.strategies) {
		idx = 0
	}
	return r.strategies[idx]
}

// Cycle advances idx by step through the ring and returns the new cursor.
func (r *Registry) Cycle(idx, step int) int {
	n := len(r.strategies)
	if n == 0 {
		return 0
	}
	if idx < 0 || idx >= n {
		idx = 0
	}
	idx = (idx + step) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

// Arrange runs the workspace's current strategy over clients.
func (r *Registry) Arrange(clients []Client, usable, full geom.Box, st *MasterState) {
	if len(clients) == 0 {
		return
	}
	r.At(st.Strategy).Arrange(clients, usable, full, st)
}

// tile: one master column of width usable.w*mwfact, the rest stacked as
// equal-height rows on the right. The last row absorbs the rounding
// remainder so the stack sums to usable.h exactly.
func arrangeTile(clients []Client, usable, _ geom.Box, st *MasterState) {
	if len(clients) == 1 {
		clients[0].SetSize(usable.Width, usable.Height)
		clients[0].SetPositionGap(usable.X, usable.Y)
		return
	}

	masterWidth := int(float64(usable.Width) * st.MWFact)
	secWidth := usable.Width - masterWidth

	clients[0].SetSize(masterWidth, usable.Height)
	clients[0].SetPositionGap(usable.X, usable.Y)

	secCount := len(clients) - 1
	secHeight := usable.Height / secCount

	heightUsed := 0
	for i := 1; i < len(clients)-1; i++ {
		clients[i].SetSize(secWidth, secHeight)
		clients[i].SetPositionGap(usable.X+masterWidth, usable.Y+heightUsed)
		heightUsed += secHeight
	}

	last := clients[len(clients)-1]
	last.SetSize(secWidth, usable.Height-heightUsed)
	last.SetPositionGap(usable.X+masterWidth, usable.Y+heightUsed)
}

// monocle: every client fills the usable area.
func arrangeMonocle(clients []Client, usable, _ geom.Box, _ *MasterState) {
	for _, c := range clients {
		c.SetPositionGap(usable.X, usable.Y)
		c.SetSize(usable.Width, usable.Height)
	}
}
