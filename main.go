// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mstarongithub/waytile/config"
	"github.com/sirupsen/logrus"
)

const version = "0.3.0"

// countFlag counts repeated occurrences (-d -d -d).
type countFlag int

func (c *countFlag) String() string { return fmt.Sprint(int(*c)) }

func (c *countFlag) Set(string) error {
	*c++
	return nil
}

func (c *countFlag) IsBoolFlag() bool { return true }

type cliArgs struct {
	help     bool
	version  bool
	confPath string
	startup  string
	library  string
	debug    countFlag

	tool       bool
	toolAction string
	toolOutput string
}

func parseArgs(argv []string) (*cliArgs, error) {
	args := &cliArgs{}
	fs := flag.NewFlagSet("waytile", flag.ContinueOnError)

	fs.BoolVar(&args.help, "h", false, "show this help message")
	fs.BoolVar(&args.help, "help", false, "show this help message")
	fs.BoolVar(&args.version, "v", false, "print version and exit")
	fs.BoolVar(&args.version, "version", false, "print version and exit")
	fs.StringVar(&args.confPath, "c", "", "path to the config file")
	fs.StringVar(&args.confPath, "config", "", "path to the config file")
	fs.StringVar(&args.startup, "s", "", "command to run once the compositor is up")
	fs.StringVar(&args.startup, "startup", "", "command to run once the compositor is up")
	fs.StringVar(&args.library, "l", "", "';'-separated dirs appended to the module search path")
	fs.StringVar(&args.library, "library", "", "';'-separated dirs appended to the module search path")
	fs.Var(&args.debug, "d", "increase log verbosity (repeatable)")
	fs.Var(&args.debug, "debug", "increase log verbosity (repeatable)")

	fs.BoolVar(&args.tool, "tool", false, "start in tool mode instead of compositing")
	fs.StringVar(&args.toolAction, "action", "outputs", "tool action: outputs | modes")
	fs.StringVar(&args.toolOutput, "output", "", "output to act on (for -action modes)")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	return args, nil
}

func setupLogging(debug int) {
	if debug > 3 {
		debug = 3
	}
	switch debug {
	case 0:
		logrus.SetLevel(logrus.WarnLevel)
	case 1:
		logrus.SetLevel(logrus.InfoLevel)
	case 2:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.TraceLevel)
	}
}

func main() {
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	if args.help {
		helpMessage()
		return
	}
	if args.version {
		fmt.Printf("waytile %s\n", version)
		return
	}

	setupLogging(int(args.debug))

	confPath := args.confPath
	if confPath == "" {
		confPath = config.DefaultPath()
	}
	conf, err := config.Load(confPath)
	if err != nil {
		logrus.WithError(err).Errorln("loading config")
		os.Exit(1)
	}

	if args.startup != "" {
		cmd := args.startup
		conf.StartType = config.START_SINGLE_COMMAND
		conf.StartCommand = &cmd
	}
	if args.library != "" {
		conf.LibraryDirs = append(conf.LibraryDirs, strings.Split(args.library, ";")...)
	}

	if args.tool {
		utilMain(&conf, args)
		return
	}

	wlMain(&conf)
}

func helpMessage() {
	fmt.Println("waytile - a dynamic tiling Wayland compositor")
	fmt.Println("\nFlags:")
	fmt.Println("\t-h, --help\tShow this help message")
	fmt.Println("\t-v, --version\tPrint the version and exit")
	fmt.Println("\t-c, --config\tPath to the config file")
	fmt.Println("\t-s, --startup\tCommand to run on startup")
	fmt.Println("\t-l, --library\t';'-separated dirs appended to the module search path")
	fmt.Println("\t-d, --debug\tIncrease log verbosity (repeatable, max 3)")
	fmt.Println("\nTool mode:")
	fmt.Println("\t-tool\t\tStart as a tool instead of a compositor")
	fmt.Println("\t-action\t\toutputs: list outputs | modes: list modes of -output")
	fmt.Println("\t-output\t\tOutput to act on")
}
