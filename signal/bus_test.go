package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	calls []string
	args  [][]any
}

func (r *recordSink) Invoke(name string, args []any) {
	r.calls = append(r.calls, name)
	r.args = append(r.args, args)
}

func TestEmitOrderNativeBeforeScript(t *testing.T) {
	bus := NewBus()
	var order []string

	bus.ConnectScript("client::map", &funcSink{fn: func(name string, args []any) {
		order = append(order, "script")
	}})
	bus.Connect("client::map", func(any) { order = append(order, "native1") })
	bus.Connect("client::map", func(any) { order = append(order, "native2") })

	bus.Emit("client::map", "payload")
	assert.Equal(t, []string{"native1", "native2", "script"}, order)
}

type funcSink struct {
	fn func(name string, args []any)
}

func (f *funcSink) Invoke(name string, args []any) { f.fn(name, args) }

func TestEmitDeliversPayload(t *testing.T) {
	bus := NewBus()
	var got any
	bus.Connect("container::new", func(data any) { got = data })

	payload := struct{ n int }{42}
	bus.Emit("container::new", payload)
	assert.Equal(t, payload, got)
}

func TestEmitArgsTuple(t *testing.T) {
	bus := NewBus()
	sink := &recordSink{}
	bus.ConnectScript("container::swap", sink)

	bus.EmitArgs("container::swap", "a", "b")
	assert.Equal(t, []any{"a", "b"}, sink.args[0])
}

func TestDisconnectStopsDelivery(t *testing.T) {
	bus := NewBus()
	n := 0
	sub := bus.Connect("sig", func(any) { n++ })

	bus.Emit("sig", nil)
	bus.Disconnect(sub)
	bus.Emit("sig", nil)
	assert.Equal(t, 1, n)
}

func TestPanickingSubscriberDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	var reached bool

	bus.Connect("sig", func(any) { panic("scripted callback exploded") })
	bus.Connect("sig", func(any) { reached = true })

	bus.Emit("sig", nil)
	assert.True(t, reached)

	// the offender is not auto-removed: the next emit still reaches both
	reached = false
	bus.Emit("sig", nil)
	assert.True(t, reached)
}

func TestEmitUnknownSignalIsNoop(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() { bus.Emit("never::connected", nil) })
}

func TestDisconnectScript(t *testing.T) {
	bus := NewBus()
	sink := &recordSink{}
	bus.ConnectScript("sig", sink)
	bus.DisconnectScript("sig", sink)

	bus.Emit("sig", nil)
	assert.Empty(t, sink.calls)
}
