package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mstarongithub/waytile/geom"
	"github.com/mstarongithub/waytile/repl"
	"github.com/mstarongithub/waytile/tiler"
	"github.com/mstarongithub/waytile/util"
	"github.com/mstarongithub/waytile/util/wrappers"
	"github.com/mstarongithub/waytile/wm"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// replSink prints bus signals to the repl output; it is the scripting-host
// stand-in for `watch`ed signals.
type replSink struct {
	out *repl.Repl
}

func (s *replSink) Invoke(name string, args []any) {
	fmt.Fprintf(s.out.Output, "signal %s: %v\n", name, args)
}

func replRunner(server *Server) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		logrus.Debugln("stdin is not a terminal, skipping repl")
		return
	}

	// wrappers shield stdin/stdout from the repl's Close
	commandRepl := repl.NewRepl(wrappers.NewReaderWrapper(os.Stdin), wrappers.NewWriterWrapper(os.Stdout))
	sink := &replSink{out: &commandRepl}
	logrus.Debugln("starting repl")
	_ = commandRepl.Run(func(input string, r *repl.Repl) (string, error) {
		return handleReplCommand(server, sink, input, r)
	})
}

func focusedOutput(server *Server) *wm.Output {
	return server.Core().FocusedOutput
}

func focusedContainer(server *Server) *wm.Container {
	o := focusedOutput(server)
	if o == nil {
		return nil
	}
	if t := o.NewestFocusVisibleToplevel(); t != nil {
		return t.Container
	}
	return nil
}

func handleReplCommand(server *Server, sink *replSink, input string, r *repl.Repl) (string, error) {
	ctx := server.Core()

	if cmdString, ok := strings.CutPrefix(input, "run "); ok {
		parts := strings.Split(cmdString, " ")
		args := parts[1:]
		cmd := exec.Command(parts[0], args...)
		cmd.Stdout = r.Output
		cmd.Stderr = r.Output
		go func(cmd *exec.Cmd, cmdString string) {
			err := cmd.Start()
			if err != nil {
				logrus.WithError(err).WithField("command", cmdString).Errorln("command failed to start")
				return
			}
			err = cmd.Wait()
			if exiterr, ok := err.(*exec.ExitError); ok {
				logrus.WithError(err).WithFields(logrus.Fields{
					"exit-code": exiterr.ExitCode(),
					"command":   cmdString,
				}).Warningln("bad command completion")
			}
		}(cmd, cmdString)
		return "Running " + parts[0], nil
	}

	if input == "quit" {
		server.Stop()
		time.Sleep(time.Second * 5)
		return "Quitting", errors.New("normal stop")
	}

	if rest, ok := strings.CutPrefix(input, "watch "); ok {
		ctx.Bus.ConnectScript(strings.TrimSpace(rest), sink)
		return "Watching " + rest, nil
	}

	if rest, ok := strings.CutPrefix(input, "view "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return "view wants a workspace number", nil
		}
		if o := focusedOutput(server); o != nil {
			o.ViewOnly(n)
		}
		return fmt.Sprintf("Viewing workspace %d", n), nil
	}

	if rest, ok := strings.CutPrefix(input, "tag "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return "tag wants a workspace number", nil
		}
		if o := focusedOutput(server); o != nil {
			o.ToggleTag(n)
		}
		return fmt.Sprintf("Toggled tag %d", n), nil
	}

	if rest, ok := strings.CutPrefix(input, "layout "); ok {
		var mode tiler.Mode
		switch strings.TrimSpace(rest) {
		case "floating":
			mode = tiler.ModeFloating
		case "master":
			mode = tiler.ModeMaster
		case "bsp":
			mode = tiler.ModeBsp
		default:
			return "layout wants floating | master | bsp", nil
		}
		if o := focusedOutput(server); o != nil {
			o.SetLayoutMode(mode)
		}
		return "Layout set to " + rest, nil
	}

	if rest, ok := strings.CutPrefix(input, "mwfact "); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return "mwfact wants a factor", nil
		}
		if o := focusedOutput(server); o != nil {
			o.SetMWFact(0, f)
		}
		return fmt.Sprintf("mwfact set to %v", f), nil
	}

	if rest, ok := strings.CutPrefix(input, "gap "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return "gap wants a width", nil
		}
		if o := focusedOutput(server); o != nil {
			o.SetUselessGaps(0, n)
		}
		return fmt.Sprintf("gap set to %d", n), nil
	}

	if rest, ok := strings.CutPrefix(input, "strategy "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return "strategy wants a step", nil
		}
		if o := focusedOutput(server); o != nil {
			o.SetStrategyIdx(n)
		}
		return "Strategy cycled", nil
	}

	switch input {
	case "float":
		if c := focusedContainer(server); c != nil {
			c.SetFloating(!c.Floating())
			return "Toggled floating", nil
		}
	case "fullscreen":
		if c := focusedContainer(server); c != nil {
			c.SetFullscreen(!c.IsFullscreen())
			return "Toggled fullscreen", nil
		}
	case "maximize":
		if c := focusedContainer(server); c != nil {
			c.SetMaximized(!c.IsMaximized())
			return "Toggled maximized", nil
		}
	case "minimize":
		if c := focusedContainer(server); c != nil {
			c.SetMinimized(true)
			return "Minimized", nil
		}
	case "split":
		if c := focusedContainer(server); c != nil {
			c.ToggleSplit()
			return "Toggled split", nil
		}
	case "mark":
		if c := focusedContainer(server); c != nil {
			c.MarkInsert()
			return "Insert mark set", nil
		}
	}

	if rest, ok := strings.CutPrefix(input, "adopt "); ok {
		win, err := strconv.ParseUint(strings.TrimSpace(rest), 0, 32)
		if err != nil {
			return "adopt wants an X window id", nil
		}
		if err := server.AdoptXWindow(uint32(win), geom.Box{Width: 640, Height: 480}); err != nil {
			return "adopt failed: " + err.Error(), nil
		}
		return fmt.Sprintf("Adopted X window %#x", win), nil
	}

	if rawCmdString, ok := strings.CutPrefix(input, "inspect "); ok {
		return handleInspect(server, rawCmdString)
	}

	return "Unknown command", nil
}

func handleInspect(server *Server, rawCmdString string) (string, error) {
	var target, mod, args string
	util.Unpack(strings.SplitN(rawCmdString, " ", 3), &target, &mod, &args)
	logrus.WithFields(logrus.Fields{
		"cmd":  target,
		"mod":  mod,
		"args": args,
		"raw":  rawCmdString,
	}).Debugln("parsed inspect command")

	ctx := server.Core()

	switch target {
	case "cursor":
		switch server.router.State() {
		case 1:
			return "Cursor mode: Move", nil
		case 2:
			return "Cursor mode: Resize", nil
		default:
			x, y := server.cursor.X(), server.cursor.Y()
			return fmt.Sprintf("Cursor: Location (%f:%f)", x, y), nil
		}
	case "outputs":
		var sb strings.Builder
		for _, o := range ctx.Outputs {
			full := o.FullArea()
			fmt.Fprintf(&sb, "%s %dx%d usable %+v ws %d tag %b\n",
				o.Name(), full.Width, full.Height, o.UsableArea,
				o.State.ActiveWorkspace, o.State.ActiveTag)
		}
		return sb.String(), nil
	case "containers":
		var sb strings.Builder
		for _, c := range ctx.Containers {
			fmt.Fprintf(&sb, "%+v ws %d visible %v floating %v\n",
				c.Box(), c.Workspace, c.IsVisible(), c.Floating())
		}
		return sb.String(), nil
	case "focus":
		if o := ctx.FocusedOutput; o != nil {
			if t := o.NewestFocusVisibleToplevel(); t != nil {
				return fmt.Sprintf("Focused: %+v", t.Container.Box()), nil
			}
		}
		return "Nothing focused", nil
	default:
		return "inspect wants cursor | outputs | containers | focus", nil
	}
}
