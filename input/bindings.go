// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package input routes seat events: keybinding dispatch, the cursor state
// machine with interactive grabs, and pointer-constraint arithmetic.
package input

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Modifier is the chorded modifier bitmask, wire-compatible with the
// keyboard modifier encoding.
type Modifier uint32

const (
	ModShift Modifier = 1 << iota
	ModCaps
	ModCtrl
	ModAlt
	ModMod2
	ModMod3
	ModLogo
	ModMod5
)

func (m Modifier) String() string {
	var parts []string
	if m&ModLogo != 0 {
		parts = append(parts, "Super")
	}
	if m&ModCtrl != 0 {
		parts = append(parts, "Control")
	}
	if m&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if m&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	return strings.Join(parts, " + ")
}

// Bind pairs the optional press and release callbacks of one chord.
type Bind struct {
	OnPress     func()
	OnRelease   func()
	Group       string
	Description string
}

// bindKey packs a chord: modifier mask in the high half, the raw
// (untransformed) keysym or button code in the low half. Shift+1
// dispatches under the sym for "1", matching the user's mental model.
func bindKey(mods Modifier, sym uint32) uint64 {
	return uint64(mods)<<32 | uint64(sym)
}

// VTSwitcher changes virtual terminals for the built-in Ctrl+Alt+Fn
// bindings.
type VTSwitcher interface {
	SwitchVT(n int)
}

// KeysymFn returns the raw keysym for function key n (1-based); supplied
// by the keyboard glue so the core carries no keymap tables.
type KeysymFn func(n int) uint32

// Bindings is one chord table (keyboard or mouse).
type Bindings struct {
	table map[uint64]*Bind

	vt    VTSwitcher
	fnSym KeysymFn
}

// NewBindings returns an empty table. vt and fnSym may be nil for tables
// without built-ins (mouse).
func NewBindings(vt VTSwitcher, fnSym KeysymFn) *Bindings {
	b := &Bindings{table: map[uint64]*Bind{}, vt: vt, fnSym: fnSym}
	b.installCommon()
	return b
}

// installCommon registers the Ctrl+Alt+F1..F12 VT switch chords. They are
// re-installed whenever the table is cleared.
func (b *Bindings) installCommon() {
	if b.vt == nil || b.fnSym == nil {
		return
	}
	for n := 1; n <= 12; n++ {
		n := n
		b.Register(ModCtrl|ModAlt, b.fnSym(n), Bind{
			OnPress:     func() { b.vt.SwitchVT(n) },
			Group:       "vt",
			Description: "switch virtual terminal",
		})
	}
}

// Register installs a chord, replacing any existing one.
func (b *Bindings) Register(mods Modifier, sym uint32, bind Bind) {
	b.table[bindKey(mods, sym)] = &bind
	logrus.WithFields(logrus.Fields{
		"chord": mods.String(),
		"sym":   sym,
	}).Debugln("registered binding")
}

// Remove drops a chord if present.
func (b *Bindings) Remove(mods Modifier, sym uint32) {
	delete(b.table, bindKey(mods, sym))
}

// Clear empties the table and re-installs the VT built-ins.
func (b *Bindings) Clear() {
	b.table = map[uint64]*Bind{}
	b.installCommon()
}

// Len reports the number of registered chords.
func (b *Bindings) Len() int { return len(b.table) }

// Execute dispatches a chord. Returns whether a binding matched; on press
// a match consumes the key, on release the caller forwards the event to
// the client regardless.
func (b *Bindings) Execute(mods Modifier, sym uint32, press bool) bool {
	bind, ok := b.table[bindKey(mods, sym)]
	if !ok {
		return false
	}
	if press {
		if bind.OnPress != nil {
			bind.OnPress()
		}
	} else if bind.OnRelease != nil {
		bind.OnRelease()
	}
	return true
}
