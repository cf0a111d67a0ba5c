package main

import (
	"fmt"

	"github.com/mstarongithub/waytile/config"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// utilMain starts the server far enough to enumerate hardware, then runs
// the requested inspection action.
func utilMain(conf *config.Config, args *cliArgs) {
	server, err := NewServer(conf)
	if err != nil {
		logrus.WithError(err).Fatal("initializing server")
	}
	if err = server.Start(); err != nil {
		logrus.WithError(err).Fatal("starting server")
	}

	switch args.toolAction {
	case "outputs":
		utilListOutputs(server)
	case "modes":
		if args.toolOutput == "" {
			fmt.Println("Output has to be specified")
			return
		}
		utilListOutputModes(server, args.toolOutput)
	default:
		fmt.Printf("Unknown action %q\n", args.toolAction)
	}
}

func utilListOutputs(server *Server) {
	outputs := server.GetOutputs()
	for i, output := range outputs {
		fmt.Printf("Output %v: %s\n", i, output.Name())
	}
}

func utilListOutputModes(server *Server, outputName string) {
	outputs := server.GetOutputs()
	filtered := sliceutils.Filter(outputs, func(output *wlroots.Output) bool {
		return output.Name() == outputName
	})
	if len(filtered) == 0 {
		fmt.Printf("Output %s not found\n", outputName)
		return
	}
	modes := filtered[0].Modes()
	fmt.Printf("Modes for output %s:\n", outputName)
	for _, mode := range modes {
		if mode.Preferred() {
			fmt.Printf("\t- %dx%d@%d (preferred)\n", mode.Width(), mode.Height(), mode.Refresh())
		} else {
			fmt.Printf("\t- %dx%d@%d\n", mode.Width(), mode.Height(), mode.Refresh())
		}
	}
}
