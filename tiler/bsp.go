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

// SplitKind is the axis an internal BSP node divides its rectangle on.
type SplitKind int

const (
	// SplitVertical puts the children side by side.
	SplitVertical SplitKind = iota
	// SplitHorizontal stacks them.
	SplitHorizontal
)

// Node is one vertex of a workspace's BSP tree: an internal split when
// Left/Right are set, a leaf bound to a Client otherwise. Internal nodes
// always have both children.
type Node struct {
	entry  *RootEntry
	parent *Node

	X, Y          int
	Width, Height int
	Enabled       bool

	Split     SplitKind
	LeftWFact float64
	Left      *Node
	Right     *Node

	Client Client
}

func (n *Node) IsLeaf() bool { return n.Client != nil }

func (n *Node) sibling() *Node {
	if n.parent == nil {
		return nil
	}
	if n.parent.Left == n {
		return n.parent.Right
	}
	return n.parent.Left
}

func (n *Node) setRect(x, y, w, h int) {
	n.X, n.Y, n.Width, n.Height = x, y, w, h
}

// RootEntry is the per-workspace BSP state: at most one root (nil means the
// workspace tree is empty) plus the leaf that receives the next split.
type RootEntry struct {
	Root        *Node
	lastFocused *Node
	area        geom.Box
}

// Empty reports whether the workspace has no BSP tree.
func (e *RootEntry) Empty() bool { return e.Root == nil }

// LastFocused returns the client whose leaf the next insert splits.
func (e *RootEntry) LastFocused() Client {
	if e.lastFocused == nil {
		return nil
	}
	return e.lastFocused.Client
}

// FocusUpdate records c's leaf as the split target for the next insert.
func (e *RootEntry) FocusUpdate(leaf *Node) {
	if leaf != nil && leaf.entry == e {
		e.lastFocused = leaf
	}
}

func (e *RootEntry) leafConfigure(n *Node, x, y, w, h int) {
	c := n.Client
	if c.ConfigureAllowed() && !c.Floating() {
		// only tiled clients get here, so no floating box is recorded
		c.SetSize(w, h)
		c.SetPositionGap(x, y)
	}
	n.setRect(x, y, w, h)
}

// updateNode recursively assigns rectangles below parent. A disabled child
// cedes the full parent rectangle to its sibling.
func (e *RootEntry) updateNode(parent *Node) {
	left, right := parent.Left, parent.Right

	left.X, left.Y = parent.X, parent.Y
	switch parent.Split {
	case SplitVertical:
		left.Width = int(float64(parent.Width) * parent.LeftWFact)
		left.Height = parent.Height
		right.Width = parent.Width - left.Width
		right.Height = parent.Height
		right.X = left.X + left.Width
		right.Y = left.Y
	case SplitHorizontal:
		left.Width = parent.Width
		left.Height = int(float64(parent.Height) * parent.LeftWFact)
		right.Width = parent.Width
		right.Height = parent.Height - left.Height
		right.X = left.X
		right.Y = left.Y + left.Height
	}

	if !right.Enabled {
		left.Width = parent.Width
		left.Height = parent.Height
	}

	if left.Enabled {
		if left.IsLeaf() {
			e.leafConfigure(left, parent.X, parent.Y, left.Width, left.Height)
		} else {
			left.X, left.Y = parent.X, parent.Y
			e.updateNode(left)
		}
	} else {
		right.setRect(parent.X, parent.Y, parent.Width, parent.Height)
	}

	if right.Enabled {
		if right.IsLeaf() {
			e.leafConfigure(right, right.X, right.Y, right.Width, right.Height)
		} else {
			e.updateNode(right)
		}
	}
}

// UpdateRoot re-runs rectangle assignment over the whole tree for the given
// usable area.
func (e *RootEntry) UpdateRoot(usable geom.Box) {
	e.area = usable
	if e.Root == nil {
		return
	}
	if e.Root.IsLeaf() {
		e.leafConfigure(e.Root, usable.X, usable.Y, usable.Width, usable.Height)
		return
	}
	e.Root.setRect(usable.X, usable.Y, usable.Width, usable.Height)
	e.updateNode(e.Root)
}

func (e *RootEntry) newLeaf(parent *Node, c Client) *Node {
	return &Node{entry: e, parent: parent, Client: c, Enabled: true}
}

// Insert adds c to the tree by splitting the last-focused leaf: the sibling
// keeps the left slot, c takes the right, split axis follows the longer
// side of the sibling's rectangle. Returns the new leaf.
func (e *RootEntry) Insert(c Client, usable geom.Box) *Node {
	e.area = usable

	if e.Root == nil {
		leaf := e.newLeaf(nil, c)
		e.Root = leaf
		e.lastFocused = leaf
		e.UpdateRoot(usable)
		return leaf
	}

	sibling := e.lastFocused
	if sibling == nil {
		// stale focus record, fall back to the leftmost leaf
		sibling = leftmostLeaf(e.Root)
	}

	split := SplitHorizontal
	if sibling.Width >= sibling.Height {
		split = SplitVertical
	}

	internal := &Node{
		entry:     e,
		parent:    sibling.parent,
		Enabled:   true,
		Split:     split,
		LeftWFact: 0.5,
	}
	internal.setRect(sibling.X, sibling.Y, sibling.Width, sibling.Height)

	if sibling == e.Root {
		internal.setRect(usable.X, usable.Y, usable.Width, usable.Height)
		e.Root = internal
	}

	leaf := e.newLeaf(internal, c)
	sibling.parent = internal
	internal.Left = sibling
	internal.Right = leaf

	if gp := internal.parent; gp != nil {
		switch sibling {
		case gp.Left:
			gp.Left = internal
		case gp.Right:
			gp.Right = internal
		default:
			logrus.Errorln("bsp: sibling not referenced by grandparent")
		}
	}

	e.lastFocused = leaf
	e.NodeEnable(leaf)
	return leaf
}

func leftmostLeaf(n *Node) *Node {
	for !n.IsLeaf() {
		n = n.Left
	}
	return n
}

func rightmostLeaf(n *Node) *Node {
	for !n.IsLeaf() {
		n = n.Right
	}
	return n
}

// nearestLeafSibling picks the replacement focus leaf after removing me:
// the closest leaf of the surviving sibling, descending from the side the
// sibling took.
func nearestLeafSibling(me *Node) *Node {
	parent := me.parent
	if parent.Right == me {
		return rightmostLeaf(parent.Left)
	}
	return leftmostLeaf(parent.Right)
}

// Remove detaches leaf from the tree, promoting its sibling into the
// parent's slot. Removing the root leaf empties the entry.
func (e *RootEntry) Remove(leaf *Node) {
	if leaf == nil || leaf.entry != e {
		return
	}

	if leaf == e.Root {
		e.Root = nil
		e.lastFocused = nil
		return
	}

	parent := leaf.parent
	sib := leaf.sibling()

	if e.lastFocused == leaf {
		e.lastFocused = nearestLeafSibling(leaf)
	}

	if parent == e.Root {
		e.Root = sib
		sib.parent = nil
		e.UpdateRoot(e.area)
		return
	}

	gp := parent.parent
	switch parent {
	case gp.Left:
		gp.Left = sib
	case gp.Right:
		gp.Right = sib
	default:
		logrus.Errorln("bsp: parent not referenced by grandparent")
	}
	sib.parent = gp

	e.updateNode(gp)
}

// NodeEnable re-admits a leaf to layout, bubbling the enable up so every
// ancestor with an enabled descendant is enabled, then re-arranges.
func (e *RootEntry) NodeEnable(n *Node) {
	for {
		n.Enabled = true
		if n.parent == nil {
			break
		}
		n = n.parent
	}
	if n.IsLeaf() {
		e.leafConfigure(n, e.area.X, e.area.Y, e.area.Width, e.area.Height)
	} else {
		e.updateNode(n)
	}
}

// NodeDisable takes a leaf out of layout. Parents whose children are all
// disabled cascade; the nearest still-enabled ancestor is re-arranged.
func (e *RootEntry) NodeDisable(n *Node) {
	for {
		n.Enabled = false
		parent := n.parent
		if parent == nil {
			break
		}
		if parent.Left.Enabled || parent.Right.Enabled {
			break
		}
		n = parent
	}

	// re-arrange the nearest ancestor that still has an enabled child;
	// a fully disabled root has nothing left to arrange
	if n.parent != nil {
		e.updateNode(n.parent)
	}
}

// ToggleSplit flips the split axis of the leaf's parent (or of the internal
// node itself) and re-arranges.
func (e *RootEntry) ToggleSplit(n *Node) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		n = n.parent
	}
	if n == nil {
		return
	}
	if n.Split == SplitVertical {
		n.Split = SplitHorizontal
	} else {
		n.Split = SplitVertical
	}
	e.updateNode(n)
}

// SetLeftWFact adjusts the split ratio of the leaf's parent, clamped to
// keep both children visible.
func (e *RootEntry) SetLeftWFact(n *Node, f float64) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		n = n.parent
	}
	if n == nil {
		return
	}
	n.LeftWFact = geom.Clamp(f, 0.05, 0.95)
	e.updateNode(n)
}
