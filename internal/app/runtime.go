// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/relabs-tech/tilt/internal/config"
	"github.com/relabs-tech/tilt/internal/logging"
)

// Flag names shared by the binaries.
const (
	FlagConfig   = "config"
	FlagLogLevel = "log-level"
)

// CommonFlags returns the flags every binary accepts.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE` (defaults when empty)",
			EnvVars: []string{"TILT_CONFIG"},
		},
		&cli.StringFlag{
			Name:  FlagLogLevel,
			Usage: "override LOG_LEVEL (debug, info, warn, error)",
		},
	}
}

// Setup loads the global configuration and builds the named logger.
func Setup(c *cli.Context, name string) (*config.Config, *zap.SugaredLogger, error) {
	if err := config.InitGlobal(c.String(FlagConfig)); err != nil {
		return nil, nil, err
	}
	cfg := config.Get()

	level := cfg.LogLevel
	if c.IsSet(FlagLogLevel) {
		level = c.String(FlagLogLevel)
	}
	logger, err := logging.New(name, level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
