// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/relabs-tech/tilt/internal/app"
)

func main() {
	a := &cli.App{
		Name:  "web",
		Usage: "serve the latest pose over HTTP and websocket",
		Flags: append(app.CommonFlags(), &cli.StringFlag{
			Name:  "static",
			Value: "web",
			Usage: "serve static files from `DIR` (empty disables)",
		}),
		Action: func(c *cli.Context) error {
			cfg, logger, err := app.Setup(c, "web")
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			logger.Info("poses and recalibration require the producer to be running")

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.RunWeb(ctx, cfg, c.String("static"), logger)
		},
	}
	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
