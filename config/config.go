// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type StartType int

const (
	// Tells waytile to start a repl in parallel for interacting with it
	START_REPL = StartType(iota)
	// Tells waytile to execute a specific command on startup
	START_SINGLE_COMMAND
	// Tells waytile to start without any specific targets
	START_NONE
)

type Config struct {
	StartType StartType `envconfig:"START_TYPE,omitempty" toml:"start_type,omitempty" yaml:"start_type,omitempty"`
	// What command to execute on start. Only matters if StartType is set to START_SINGLE_COMMAND
	StartCommand *string `envconfig:"START_COMMAND,omitempty" toml:"start_command,omitempty" yaml:"start_command,omitempty"`

	// Decoration
	BorderWidth         int     `envconfig:"BORDER_WIDTH,omitempty" toml:"border_width,omitempty" yaml:"border_width,omitempty"`
	BorderColorRotation int     `envconfig:"BORDER_COLOR_ROTATION,omitempty" toml:"border_color_rotation,omitempty" yaml:"border_color_rotation,omitempty"`
	Opacity             float64 `envconfig:"OPACITY,omitempty" toml:"opacity,omitempty" yaml:"opacity,omitempty"`

	// Layout
	UselessGaps int `envconfig:"USELESS_GAPS,omitempty" toml:"useless_gaps,omitempty" yaml:"useless_gaps,omitempty"`

	// Cursor
	CursorTheme string `envconfig:"CURSOR_THEME,omitempty" toml:"cursor_theme,omitempty" yaml:"cursor_theme,omitempty"`
	CursorSize  int    `envconfig:"CURSOR_SIZE,omitempty" toml:"cursor_size,omitempty" yaml:"cursor_size,omitempty"`

	// Keyboard
	RepeatRate  int `envconfig:"REPEAT_RATE,omitempty" toml:"repeat_rate,omitempty" yaml:"repeat_rate,omitempty"`
	RepeatDelay int `envconfig:"REPEAT_DELAY,omitempty" toml:"repeat_delay,omitempty" yaml:"repeat_delay,omitempty"`

	// Module search path for the scripting host, ';'-separated entries
	LibraryDirs []string `envconfig:"LIBRARY_DIRS,omitempty" toml:"library_dirs,omitempty" yaml:"library_dirs,omitempty"`
}

// Default returns the baseline configuration the compositor runs with when
// no file overrides it.
func Default() Config {
	return Config{
		StartType:   START_REPL,
		BorderWidth: 1,
		Opacity:     1,
		CursorSize:  24,
		RepeatRate:  25,
		RepeatDelay: 600,
	}
}

// DefaultPath resolves the config file through the xdg base directories.
func DefaultPath() string {
	path, err := xdg.SearchConfigFile(filepath.Join("waytile", "config.toml"))
	if err != nil {
		return filepath.Join(xdg.ConfigHome, "waytile", "config.toml")
	}
	return path
}

// Load reads a config file on top of the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	conf := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logrus.WithField("path", path).Debugln("no config file, using defaults")
		return conf, nil
	}
	if err != nil {
		return conf, fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(raw, &conf)
	default:
		err = toml.Unmarshal(raw, &conf)
	}
	if err != nil {
		return conf, fmt.Errorf("parsing config %s: %w", path, err)
	}

	conf.sanitize()
	return conf, nil
}

func (c *Config) sanitize() {
	if c.BorderWidth < 0 {
		c.BorderWidth = 0
	}
	if c.UselessGaps < 0 {
		c.UselessGaps = 0
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		c.Opacity = 1
	}
	if c.CursorSize <= 0 {
		c.CursorSize = 24
	}
}
