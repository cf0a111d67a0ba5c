package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const symF1 = 0xffbe

type fakeVT struct {
	switched []int
}

func (f *fakeVT) SwitchVT(n int) { f.switched = append(f.switched, n) }

func fnSym(n int) uint32 { return symF1 + uint32(n-1) }

func TestBindPressReleasePairing(t *testing.T) {
	b := NewBindings(nil, nil)

	var events []string
	b.Register(ModAlt, 'j', Bind{
		OnPress:   func() { events = append(events, "press") },
		OnRelease: func() { events = append(events, "release") },
	})

	assert.True(t, b.Execute(ModAlt, 'j', true))
	assert.True(t, b.Execute(ModAlt, 'j', false))
	assert.Equal(t, []string{"press", "release"}, events)
}

func TestBindChordedModifiers(t *testing.T) {
	b := NewBindings(nil, nil)

	n := 0
	b.Register(ModAlt|ModShift, '1', Bind{OnPress: func() { n++ }})

	// the exact chord matches, near misses do not
	assert.False(t, b.Execute(ModAlt, '1', true))
	assert.False(t, b.Execute(ModShift, '1', true))
	assert.False(t, b.Execute(ModAlt|ModShift|ModCtrl, '1', true))
	assert.True(t, b.Execute(ModAlt|ModShift, '1', true))
	assert.Equal(t, 1, n)
}

func TestBindRawKeysym(t *testing.T) {
	b := NewBindings(nil, nil)

	hit := false
	// Shift+1 dispatches under the sym for "1", not "exclam"
	b.Register(ModShift, '1', Bind{OnPress: func() { hit = true }})
	assert.True(t, b.Execute(ModShift, '1', true))
	assert.True(t, hit)
}

func TestBindReplaceExisting(t *testing.T) {
	b := NewBindings(nil, nil)

	first, second := 0, 0
	b.Register(ModAlt, 'k', Bind{OnPress: func() { first++ }})
	b.Register(ModAlt, 'k', Bind{OnPress: func() { second++ }})

	b.Execute(ModAlt, 'k', true)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestVTBindsInstalledAndReinstalled(t *testing.T) {
	vt := &fakeVT{}
	b := NewBindings(vt, fnSym)

	require.True(t, b.Execute(ModCtrl|ModAlt, fnSym(3), true))
	assert.Equal(t, []int{3}, vt.switched)

	b.Register(ModAlt, 'x', Bind{OnPress: func() {}})
	b.Clear()
	assert.False(t, b.Execute(ModAlt, 'x', true))
	// VT chords survive the clear
	assert.True(t, b.Execute(ModCtrl|ModAlt, fnSym(12), true))
	assert.Equal(t, []int{3, 12}, vt.switched)
}

func TestReleaseWithoutCallbackStillMatches(t *testing.T) {
	b := NewBindings(nil, nil)
	b.Register(ModAlt, 'j', Bind{OnPress: func() {}})

	// matching a press-only bind on release must not panic and still
	// reports the match so key state stays consistent
	assert.True(t, b.Execute(ModAlt, 'j', false))
}

func TestRemove(t *testing.T) {
	b := NewBindings(nil, nil)
	b.Register(ModAlt, 'q', Bind{OnPress: func() {}})
	b.Remove(ModAlt, 'q')
	assert.False(t, b.Execute(ModAlt, 'q', true))
}
