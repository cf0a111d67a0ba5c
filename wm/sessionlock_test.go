package wm

import (
	"testing"

	"github.com/mstarongithub/waytile/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLockExclusivity(t *testing.T) {
	ctx, seat, _ := newTestContext()
	top, surf := mapToplevel(ctx, geom.Box{Width: 640, Height: 480})
	require.Equal(t, Surface(surf), seat.focused)

	locker := &Locker{WireSurface: "lock-surface", OutputName: "HDMI-A-1"}
	require.NoError(t, ctx.Lock.Grant(locker))
	assert.True(t, ctx.Lock.Locked)
	assert.Equal(t, Surface("lock-surface"), seat.focused)

	// focus attempts are pinned to the lock surface
	top.Focus(false)
	assert.Equal(t, Surface("lock-surface"), seat.focused)

	ctx.Lock.Unlock()
	assert.False(t, ctx.Lock.Locked)
	// focus returns to the newest visible toplevel on the locked output
	assert.Equal(t, Surface(surf), seat.focused)
}

func TestSessionLockDoubleGrantRejected(t *testing.T) {
	ctx, _, _ := newTestContext()

	require.NoError(t, ctx.Lock.Grant(&Locker{WireSurface: "first"}))
	err := ctx.Lock.Grant(&Locker{WireSurface: "second"})
	assert.ErrorIs(t, err, ErrAlreadyLocked)
	assert.Equal(t, Surface("first"), ctx.Lock.Surface())
}

func TestUnlockWithoutLockIsNoop(t *testing.T) {
	ctx, seat, _ := newTestContext()
	before := seat.kbdCleared
	ctx.Lock.Unlock()
	assert.False(t, ctx.Lock.Locked)
	assert.Equal(t, before, seat.kbdCleared)
}
