package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/mstarongithub/waytile/config"
	"github.com/mstarongithub/waytile/geom"
	"github.com/mstarongithub/waytile/input"
	"github.com/mstarongithub/waytile/scene"
	"github.com/mstarongithub/waytile/signal"
	"github.com/mstarongithub/waytile/wm"
	"github.com/mstarongithub/waytile/xbridge"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
	"github.com/swaywm/go-wlroots/xkb"
)

// Server glues the wlroots backend to the window-management core. All
// wire-protocol events land here and turn into core mutations; the core
// mirrors scene changes back through node backings.
type Server struct {
	conf *config.Config

	display     wlroots.Display
	backend     wlroots.Backend
	renderer    wlroots.Renderer
	allocator   wlroots.Allocator
	scene       wlroots.Scene
	sceneLayout wlroots.SceneOutputLayout

	xdgShell wlroots.XDGShell

	cursor    wlroots.Cursor
	cursorMgr wlroots.XCursorManager

	seat      wlroots.Seat
	keyboards []*Keyboard

	outputLayout wlroots.OutputLayout
	outputs      []*wlroots.Output

	ctx        *wm.Context
	bus        *signal.Bus
	router     *input.Cursor
	kbdBinds   *input.Bindings
	mouseBinds *input.Bindings

	// xb is the legacy-X11 hint bridge; nil when no X display is around
	xb *xbridge.Bridge
}

type Keyboard struct {
	dev wlroots.InputDevice
}

// seatAdapter satisfies wm.Seat and input.PointerSeat over the wlr seat.
type seatAdapter struct {
	s *Server
}

func (a seatAdapter) FocusedSurface() wm.Surface {
	surf := a.s.seat.KeyboardState().FocusedSurface()
	if surf.Nil() {
		return nil
	}
	return surf
}

func (a seatAdapter) KeyboardEnter(s wm.Surface) {
	surf, ok := s.(wlroots.Surface)
	if !ok {
		return
	}
	a.s.seat.NotifyKeyboardEnter(surf, a.s.seat.Keyboard())
}

func (a seatAdapter) ClearKeyboard() {
	a.s.seat.NotifyKeyboardEnter(wlroots.Surface{}, a.s.seat.Keyboard())
}

func (a seatAdapter) ClearPointer() {
	a.s.seat.ClearPointerFocus()
}

func (a seatAdapter) NotifyEnter(surface any, sx, sy float64) {
	if surf, ok := surface.(wlroots.Surface); ok {
		a.s.seat.NotifyPointerEnter(surf, sx, sy)
	}
}

func (a seatAdapter) NotifyMotion(timeMsec uint32, sx, sy float64) {
	a.s.seat.NotifyPointerMotion(timeMsec, sx, sy)
}

func (a seatAdapter) ClearPointerFocus() {
	a.s.seat.ClearPointerFocus()
}

func (a seatAdapter) NotifyButton(timeMsec uint32, button uint32, pressed bool) {
	state := wlroots.ButtonStateReleased
	if pressed {
		state = wlroots.ButtonStatePressed
	}
	a.s.seat.NotifyPointerButton(timeMsec, button, state)
}

func (a seatAdapter) NotifyAxis(timeMsec uint32, orientation int, delta float64, deltaDiscrete int32, source int) {
	a.s.seat.NotifyPointerAxis(timeMsec, wlroots.AxisOrientation(orientation),
		delta, deltaDiscrete, wlroots.AxisSource(source))
}

// outputBackend satisfies wm.Backend for one wlr output.
type outputBackend struct {
	s      *Server
	output wlroots.Output
	name   string

	width, height int
	refresh       int
}

func (b *outputBackend) Name() string { return b.name }

func (b *outputBackend) Size() (int, int) { return b.width, b.height }

func (b *outputBackend) RefreshMillihertz() int { return b.refresh }

func (b *outputBackend) ScheduleFrame() {
	if sOut, err := b.s.scene.SceneOutput(b.output); err == nil {
		sOut.Commit()
	}
}

// vtSession satisfies input.VTSwitcher. The binding does not expose the
// DRM session, so this only records the request.
type vtSession struct{}

func (vtSession) SwitchVT(n int) {
	logrus.WithField("vt", n).Infoln("VT switch requested")
}

func fnKeysym(n int) uint32 {
	return uint32(xkb.KeySymF1) + uint32(n-1)
}

// nativeSurface satisfies wm.NativeSurface over an xdg toplevel. Requests
// the binding cannot express degrade to the configure the next size change
// schedules.
type nativeSurface struct {
	surface  wlroots.XDGSurface
	toplevel wlroots.XDGTopLevel
}

func (n *nativeSurface) Surface() wm.Surface { return n.surface.Surface() }

func (n *nativeSurface) Geometry() geom.Box {
	g := n.surface.Geometry()
	return geom.Box{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

func (n *nativeSurface) SetSize(w, h int) {
	n.surface.TopLevelSetSize(uint32(w), uint32(h))
}

func (n *nativeSurface) SetActivated(activated bool) {
	n.toplevel.SetActivated(activated)
}

func (n *nativeSurface) SetFullscreen(set bool) {}

func (n *nativeSurface) SetMaximized(set bool) {}

func (n *nativeSurface) SetResizing(set bool) {}

func (n *nativeSurface) SetTiled(edges geom.Edges) {}

func (n *nativeSurface) MinSize() (int, int) { return 0, 0 }

func (n *nativeSurface) MaxSize() (int, int) { return 0, 0 }

func (n *nativeSurface) HasParent() bool { return false }

func (n *nativeSurface) Close() {
	n.surface.SendClose()
}

// sceneBacking mirrors core node ops onto a wlr scene tree. Ops the
// binding does not expose degrade silently; the core's own graph stays
// the source of truth.
type sceneBacking struct {
	tree wlroots.SceneTree
}

func (b sceneBacking) SetPosition(x, y int) {
	b.tree.Node().SetPosition(float64(x), float64(y))
}

func (b sceneBacking) SetEnabled(enabled bool)          {}
func (b sceneBacking) RaiseToTop()                      { b.tree.Node().RaiseToTop() }
func (b sceneBacking) LowerToBottom()                   {}
func (b sceneBacking) PlaceBelow(sibling scene.Backing) {}
func (b sceneBacking) Reparent(parent scene.Backing)    {}
func (b sceneBacking) Destroy()                         { b.tree.Node().Destroy() }

func (server *Server) handleNewPointer(dev wlroots.InputDevice) {
	server.cursor.AttachInputDevice(dev)
}

func (server *Server) handleKey(keyboard wlroots.Keyboard, t uint32, keyCode uint32, updateState bool, state wlroots.KeyState) {
	syms := keyboard.XKBState().Syms(xkb.KeyCode(keyCode + 8))
	mods := input.Modifier(keyboard.Modifiers())
	pressed := state == wlroots.KeyStatePressed

	handled := false
	for _, sym := range syms {
		handled = server.router.HandleKey(mods, uint32(sym), pressed, server.kbdBinds) || handled
	}

	// releases always reach the focused client
	if !handled || !pressed {
		server.seat.SetKeyboard(keyboard.Base())
		server.seat.NotifyKeyboardKey(t, keyCode, state)
	}
}

func (server *Server) handleNewKeyboard(dev wlroots.InputDevice) {
	keyboard := dev.Keyboard()

	context := xkb.NewContext(xkb.KeySymFlagNoFlags)
	keymap := context.KeyMap()
	keyboard.SetKeymap(keymap)
	keymap.Destroy()
	context.Destroy()
	keyboard.SetRepeatInfo(int32(server.conf.RepeatRate), int32(server.conf.RepeatDelay))

	keyboard.OnModifiers(func(keyboard wlroots.Keyboard) {
		server.seat.SetKeyboard(dev)
		server.seat.NotifyKeyboardModifiers(keyboard)
	})
	keyboard.OnKey(server.handleKey)

	server.seat.SetKeyboard(dev)
	server.keyboards = append(server.keyboards, &Keyboard{dev: dev})
}

func (server *Server) handleNewInput(dev wlroots.InputDevice) {
	switch dev.Type() {
	case wlroots.InputDeviceTypePointer:
		server.handleNewPointer(dev)
	case wlroots.InputDeviceTypeKeyboard:
		server.handleNewKeyboard(dev)
	}

	caps := wlroots.SeatCapabilityPointer
	if len(server.keyboards) > 0 {
		caps |= wlroots.SeatCapabilityKeyboard
	}
	server.seat.SetCapabilities(caps)
}

func (server *Server) modifiers() input.Modifier {
	return input.Modifier(server.seat.Keyboard().Modifiers())
}

func (server *Server) handleNewFrame(output wlroots.Output) {
	sOut, err := server.scene.SceneOutput(output)
	if err != nil {
		return
	}

	sOut.Commit()
	sOut.SendFrameDone(time.Now())
}

func (server *Server) handleOutputRequestState(output wlroots.Output, state wlroots.OutputState) {
	logrus.WithField("output", output.Name()).Debugln("new state request for output")
	output.CommitState(state)
	for _, o := range server.ctx.Outputs {
		if o.Name() == output.Name() {
			o.ArrangeLayers()
		}
	}
}

func (server *Server) handleOutputDestroy(output wlroots.Output) {
	logrus.WithField("name", output.Name()).Debugln("output getting destroyed")
	for _, o := range server.ctx.Outputs {
		if o.Name() == output.Name() {
			server.ctx.DetachOutput(o)
			break
		}
	}
	for i, out := range server.outputs {
		if out.Name() == output.Name() {
			server.outputs = append(server.outputs[:i], server.outputs[i+1:]...)
			break
		}
	}
}

func (server *Server) handleNewOutput(output wlroots.Output) {
	logrus.WithField("name", output.Name()).Debugln("new output added")
	server.outputs = append(server.outputs, &output)

	output.InitRender(server.allocator, server.renderer)

	oState := wlroots.NewOutputState()
	oState.StateInit()
	oState.StateSetEnabled(true)

	backend := &outputBackend{s: server, output: output, name: output.Name()}
	mode, err := output.PrefferedMode()
	if err == nil {
		oState.SetMode(mode)
		backend.width = int(mode.Width())
		backend.height = int(mode.Height())
		backend.refresh = int(mode.Refresh())
	}

	output.CommitState(oState)
	oState.Finish()

	output.OnFrame(server.handleNewFrame)
	output.OnRequestState(server.handleOutputRequestState)
	output.OnDestroy(server.handleOutputDestroy)

	lOutput := server.outputLayout.AddOutputAuto(output)
	sceneOutput := server.scene.NewOutput(output)
	server.sceneLayout.AddOutput(lOutput, sceneOutput)

	server.ctx.AttachOutput(backend, server.conf.UselessGaps)

	if err := output.SetTitle(fmt.Sprintf("waytile - %s", output.Name())); err != nil {
		logrus.WithError(err).Debugln("setting output title")
	}
}

func (server *Server) handleCursorMotion(dev wlroots.InputDevice, t uint32, dx float64, dy float64) {
	dx, dy = server.router.FilterMotion(dx, dy)
	server.cursor.Move(dev, dx, dy)
	server.router.ProcessMotion(t)
}

func (server *Server) handleCursorMotionAbsolute(dev wlroots.InputDevice, t uint32, x float64, y float64) {
	server.cursor.WarpAbsolute(dev, x, y)
	server.router.ProcessMotion(t)
}

func (server *Server) handleCursorButton(_ wlroots.InputDevice, t uint32, button uint32, state wlroots.ButtonState) {
	server.router.HandleButton(t, button, state == wlroots.ButtonStatePressed,
		server.modifiers(), server.mouseBinds)
}

func (server *Server) handleCursorAxis(_ wlroots.InputDevice, t uint32, source wlroots.AxisSource, orientation wlroots.AxisOrientation, delta float64, deltaDiscrete int32) {
	server.seat.NotifyPointerAxis(t, orientation, delta, deltaDiscrete, source)
}

func (server *Server) handleCursorFrame() {
	server.seat.NotifyPointerFrame()
}

func (server *Server) handleSetCursorRequest(client wlroots.SeatClient, surface wlroots.Surface, _ uint32, hotspotX int32, hotspotY int32) {
	focusedClient := server.seat.PointerState().FocusedClient()
	if focusedClient == client {
		server.cursor.SetSurface(surface, hotspotX, hotspotY)
	}
}

func (server *Server) handleNewXDGSurface(xdgSurface wlroots.XDGSurface) {
	logrus.WithField("surface", xdgSurface).Debugln("new surface inbound")

	if xdgSurface.Role() == wlroots.XDGSurfaceRolePopup {
		parent := xdgSurface.Popup().Parent()
		if parent.Nil() {
			// popup without a parent is client protocol misuse
			logrus.Debugln("dropping popup without parent")
			return
		}
		xdgSurface.SetData(parent.XDGSurface().SceneTree().NewXDGSurface(xdgSurface))
		return
	}
	if xdgSurface.Role() != wlroots.XDGSurfaceRoleTopLevel {
		logrus.WithField("role", xdgSurface.Role()).Debugln("ignoring surface with unknown role")
		return
	}

	native := &nativeSurface{surface: xdgSurface, toplevel: xdgSurface.TopLevel()}
	top := wm.NewToplevel(server.ctx, native)

	xdgSurface.OnMap(func(s wlroots.XDGSurface) {
		top.HandleMap()
		if top.SurfTree != nil && top.SurfTree.Backing == nil {
			// mirror the core node onto the renderer graph
			tree := server.scene.Tree().NewXDGSurface(s.TopLevel().Base())
			top.SurfTree.Backing = sceneBacking{tree: tree}
		}
	})
	xdgSurface.OnUnmap(func(s wlroots.XDGSurface) {
		server.router.GrabEnded(top)
		top.HandleUnmap()
	})
	xdgSurface.OnDestroy(func(s wlroots.XDGSurface) {
		top.Destroy()
	})

	toplevel := xdgSurface.TopLevel()
	toplevel.OnRequestMove(func(client wlroots.SeatClient, serial uint32) {
		server.router.StartInteractiveMove(top)
	})
	toplevel.OnRequestResize(func(client wlroots.SeatClient, serial uint32, edges wlroots.Edges) {
		server.router.StartInteractiveResize(top, geom.Edges(edges))
	})
}

func (server *Server) GetOutputs() []*wlroots.Output {
	return server.outputs
}

// Core returns the window-management context for the repl and tools.
func (server *Server) Core() *wm.Context { return server.ctx }

func NewServer(conf *config.Config) (server *Server, err error) {
	server = new(Server)
	server.conf = conf

	server.display = wlroots.NewDisplay()

	server.backend, err = server.display.BackendAutocreate()
	if err != nil {
		return nil, err
	}

	server.renderer, err = server.backend.RendererAutoCreate()
	if err != nil {
		return nil, err
	}
	server.renderer.InitDisplay(server.display)

	server.allocator, err = server.backend.AllocatorAutocreate(server.renderer)
	if err != nil {
		return nil, err
	}

	server.display.CompositorCreate(5, server.renderer)
	server.display.SubCompositorCreate()
	server.display.DataDeviceManagerCreate()

	server.outputLayout = wlroots.NewOutputLayout()
	server.backend.OnNewOutput(server.handleNewOutput)

	server.scene = wlroots.NewScene()
	server.sceneLayout = server.scene.AttachOutputLayout(server.outputLayout)

	server.xdgShell = server.display.XDGShellCreate(3)
	server.xdgShell.OnNewSurface(server.handleNewXDGSurface)

	server.cursor = wlroots.NewCursor()
	server.cursor.AttachOutputLayout(server.outputLayout)
	server.cursorMgr = wlroots.NewXCursorManager(conf.CursorTheme, conf.CursorSize)

	server.backend.OnNewInput(server.handleNewInput)
	server.seat = server.display.SeatCreate("seat0")
	server.seat.OnSetCursorRequest(server.handleSetCursorRequest)

	// window-management core
	server.bus = signal.NewBus()
	seat := seatAdapter{s: server}
	server.ctx = wm.NewContext(server.bus, seat)
	server.ctx.BorderWidth = conf.BorderWidth
	pattern := scene.SolidPattern(0.35, 0.35, 0.35, 1)
	pattern.RotationDegree = conf.BorderColorRotation
	server.ctx.BorderPattern = pattern

	server.router = input.NewCursor(server.ctx, seat)
	server.router.Pos = func() (float64, float64) {
		return server.cursor.X(), server.cursor.Y()
	}
	server.router.SetShape = func(name string) {
		server.cursor.SetXCursor(server.cursorMgr, name)
	}

	server.kbdBinds = input.NewBindings(vtSession{}, fnKeysym)
	server.mouseBinds = input.NewBindings(nil, nil)
	server.installDefaultBinds()

	server.cursor.OnMotion(server.handleCursorMotion)
	server.cursor.OnMotionAbsolute(server.handleCursorMotionAbsolute)
	server.cursor.OnButton(server.handleCursorButton)
	server.cursor.OnAxis(server.handleCursorAxis)
	server.cursor.OnFrame(server.handleCursorFrame)
	server.cursorMgr.Load(1)

	return server, nil
}

// installDefaultBinds wires the stock Alt-driven chords.
func (server *Server) installDefaultBinds() {
	ctx := server.ctx

	server.kbdBinds.Register(input.ModAlt, uint32(xkb.KeySymEscape), input.Bind{
		OnPress:     func() { server.display.Terminate() },
		Group:       "core",
		Description: "quit the compositor",
	})
	server.kbdBinds.Register(input.ModAlt, uint32(xkb.KeySymF1), input.Bind{
		OnPress: func() {
			if o := ctx.FocusedOutput; o != nil {
				if t := o.NewestFocusVisibleToplevel(); t != nil && t.Container != nil {
					t.Container.FocusIdx(1)
				}
			}
		},
		Group:       "client",
		Description: "cycle container stack",
	})

	for i := 1; i <= 9; i++ {
		i := i
		server.kbdBinds.Register(input.ModAlt, uint32('0'+i), input.Bind{
			OnPress: func() {
				if o := ctx.FocusedOutput; o != nil {
					o.ViewOnly(i)
				}
			},
			Group:       "tag",
			Description: "view workspace only",
		})
		server.kbdBinds.Register(input.ModAlt|input.ModShift, uint32('0'+i), input.Bind{
			OnPress: func() {
				if o := ctx.FocusedOutput; o != nil {
					o.ToggleTag(i)
				}
			},
			Group:       "tag",
			Description: "toggle tag",
		})
	}
}

func (server *Server) Start() error {
	socket, err := server.display.AddSocketAuto()
	if err != nil {
		server.backend.Destroy()
		return err
	}
	logrus.WithField("socket", socket).Debugln("got wl socket")

	if err = server.backend.Start(); err != nil {
		server.backend.Destroy()
		server.display.Destroy()
		return err
	}

	if res := os.Getenv("WAYLAND_DISPLAY"); res != "" {
		logrus.WithField("WAYLAND_DISPLAY", res).Debugln("Wayland display already set, overwriting")
	}
	if err = os.Setenv("WAYLAND_DISPLAY", socket); err != nil {
		return err
	}
	if err = os.Setenv("XCURSOR_SIZE", fmt.Sprint(server.conf.CursorSize)); err != nil {
		return err
	}

	// when an Xwayland server is around, attach the hint bridge so legacy
	// clients get classified
	if disp := os.Getenv("DISPLAY"); disp != "" {
		if xb, err := xbridge.Connect(disp); err != nil {
			logrus.WithError(err).Debugln("legacy X bridge unavailable")
		} else {
			server.xb = xb
		}
	}

	logrus.WithField("WAYLAND_DISPLAY", socket).Infoln("running Wayland compositor")
	return nil
}

// AdoptXWindow wraps a legacy X window into a toplevel and maps it. Used
// when the X side announces a window the Wayland side has no surface for.
func (server *Server) AdoptXWindow(win uint32, geo geom.Box) error {
	if server.xb == nil {
		return fmt.Errorf("no X display attached")
	}
	surf, err := server.xb.WrapWindow(xproto.Window(win), geo)
	if err != nil {
		return err
	}
	top := wm.NewLegacyToplevel(server.ctx, surf)
	top.HandleMap()
	return nil
}

func (server *Server) Run() error {
	server.display.Run()

	// teardown mirrors setup in reverse order
	server.display.DestroyClients()
	server.scene.Tree().Node().Destroy()
	server.cursorMgr.Destroy()
	server.outputLayout.Destroy()
	server.display.Destroy()
	return nil
}

func (server *Server) Stop() {
	server.display.Terminate()
}
