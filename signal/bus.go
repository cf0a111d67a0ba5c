// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package signal implements the named event bus the compositor core emits
// on. Every mutation of interest (client map, container swap, screen
// destroy, ...) goes through one bus instance owned by the compositor
// context. Native subscribers run before scripted ones, both in
// registration order.
package signal

import (
	"github.com/sirupsen/logrus"
)

// Callback is a native subscriber. The payload is the component-specific
// value named in the signal's documentation (a *wm.Toplevel for client::*
// signals and so on).
type Callback func(data any)

// ScriptSink receives signal emissions destined for the scripting host.
// Invocation is synchronous on the event loop.
type ScriptSink interface {
	Invoke(name string, args []any)
}

type subscriber struct {
	id uint64
	fn Callback
}

type entry struct {
	native  []subscriber
	scripts []ScriptSink
}

// Bus maps signal names to subscriber lists. Entries are never vacated once
// created; a name survives its last unsubscribe.
type Bus struct {
	entries map[string]*entry
	nextID  uint64
}

func NewBus() *Bus {
	return &Bus{entries: map[string]*entry{}}
}

func (b *Bus) entryFor(name string) *entry {
	e, ok := b.entries[name]
	if !ok {
		e = &entry{}
		b.entries[name] = e
	}
	return e
}

// Subscription identifies a native connection for later disconnect.
type Subscription struct {
	name string
	id   uint64
}

// Connect registers a native callback on name.
func (b *Bus) Connect(name string, fn Callback) Subscription {
	e := b.entryFor(name)
	b.nextID++
	e.native = append(e.native, subscriber{id: b.nextID, fn: fn})
	return Subscription{name: name, id: b.nextID}
}

// Disconnect removes a previously connected native callback. Unknown
// subscriptions are ignored.
func (b *Bus) Disconnect(sub Subscription) {
	e, ok := b.entries[sub.name]
	if !ok {
		return
	}
	for i, s := range e.native {
		if s.id == sub.id {
			e.native = append(e.native[:i], e.native[i+1:]...)
			return
		}
	}
}

// ConnectScript registers a scripting-host sink on name.
func (b *Bus) ConnectScript(name string, sink ScriptSink) {
	e := b.entryFor(name)
	e.scripts = append(e.scripts, sink)
}

// DisconnectScript removes a scripting-host sink from name.
func (b *Bus) DisconnectScript(name string, sink ScriptSink) {
	e, ok := b.entries[name]
	if !ok {
		return
	}
	for i, s := range e.scripts {
		if s == sink {
			e.scripts = append(e.scripts[:i], e.scripts[i+1:]...)
			return
		}
	}
}

// Emit invokes native callbacks with data, then scripted sinks with data as
// a single-element argument tuple. A panicking subscriber is logged and the
// remaining subscribers still run; the offender is not removed.
func (b *Bus) Emit(name string, data any) {
	b.emit(name, data, []any{data})
}

// EmitArgs is the multi-argument variant: native callbacks receive the
// slice itself, scripted sinks the equivalent tuple.
func (b *Bus) EmitArgs(name string, args ...any) {
	b.emit(name, args, args)
}

func (b *Bus) emit(name string, native any, scriptArgs []any) {
	e, ok := b.entries[name]
	if !ok {
		return
	}
	// snapshot: subscribers may connect/disconnect while we iterate
	subs := append([]subscriber(nil), e.native...)
	sinks := append([]ScriptSink(nil), e.scripts...)

	for _, s := range subs {
		invoke(name, func() { s.fn(native) })
	}
	for _, sink := range sinks {
		sink := sink
		invoke(name, func() { sink.Invoke(name, scriptArgs) })
	}
}

func invoke(name string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"signal": name,
				"panic":  r,
			}).Errorln("signal subscriber failed")
		}
	}()
	f()
}
