// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package scene

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// CursorFrame is one image of an animated cursor.
type CursorFrame struct {
	Width, Height      int
	HotspotX, HotspotY int
	DelayMs            int
	Pixels             []byte
}

// CursorImage is the animated image sequence for a named shape.
type CursorImage struct {
	Name   string
	Frames []CursorFrame
}

// ThemeLoader looks a named shape up in a cursor theme.
type ThemeLoader interface {
	Lookup(name string, size int) (*CursorImage, error)
}

// ThemeCache memoizes shape lookups. Lookups that miss the themed loader
// fall back to the legacy xcursor loader.
type ThemeCache struct {
	themed   ThemeLoader
	fallback ThemeLoader
	cache    *lru.Cache[string, *CursorImage]
}

// NewThemeCache builds a cache over the two loaders. fallback may be nil.
func NewThemeCache(themed, fallback ThemeLoader, capacity int) (*ThemeCache, error) {
	if capacity <= 0 {
		capacity = 64
	}
	c, err := lru.New[string, *CursorImage](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating cursor cache: %w", err)
	}
	return &ThemeCache{themed: themed, fallback: fallback, cache: c}, nil
}

// Get resolves a shape name at a size, from cache if possible.
func (t *ThemeCache) Get(name string, size int) (*CursorImage, error) {
	key := fmt.Sprintf("%s@%d", name, size)
	if img, ok := t.cache.Get(key); ok {
		return img, nil
	}

	img, err := t.themed.Lookup(name, size)
	if err != nil && t.fallback != nil {
		logrus.WithError(err).WithField("shape", name).
			Debugln("themed cursor lookup failed, trying xcursor fallback")
		img, err = t.fallback.Lookup(name, size)
	}
	if err != nil {
		return nil, fmt.Errorf("cursor shape %q: %w", name, err)
	}

	t.cache.Add(key, img)
	return img, nil
}

// Purge drops all cached shapes, e.g. on theme or size change.
func (t *ThemeCache) Purge() {
	t.cache.Purge()
}
