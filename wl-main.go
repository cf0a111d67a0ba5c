package main

import (
	"os"
	"os/exec"

	"github.com/mstarongithub/waytile/config"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
)

func wlMain(conf *config.Config) {
	wlroots.OnLog(wlroots.LogImportanceError, func(importance wlroots.LogImportance, msg string) {
		switch importance {
		case wlroots.LogImportanceDebug:
			logrus.Debugln(msg)
		case wlroots.LogImportanceInfo:
			logrus.Infoln(msg)
		case wlroots.LogImportanceError:
			logrus.Errorln(msg)
		case wlroots.LogImportanceSilent:
			return
		}
	})

	// start the server
	server, err := NewServer(conf)
	if err != nil {
		logrus.WithError(err).Errorln("initializing server")
		os.Exit(1)
	}
	if err = server.Start(); err != nil {
		logrus.WithError(err).Errorln("starting server")
		os.Exit(1)
	}

	switch conf.StartType {
	case config.START_REPL:
		go replRunner(server)
	case config.START_SINGLE_COMMAND:
		if conf.StartCommand != nil {
			go runStartupCommand(*conf.StartCommand)
		}
	}

	// run the wayland event loop; does not return until shutdown
	if err = server.Run(); err != nil {
		logrus.WithError(err).Errorln("running server")
		os.Exit(1)
	}
}

func runStartupCommand(cmdString string) {
	cmd := exec.Command("/bin/sh", "-c", cmdString)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		logrus.WithError(err).WithField("command", cmdString).Errorln("startup command failed to start")
		return
	}
	if err := cmd.Wait(); err != nil {
		logrus.WithError(err).WithField("command", cmdString).Warningln("bad startup command completion")
	}
}
