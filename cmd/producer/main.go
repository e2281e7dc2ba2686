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
		Name:  "producer",
		Usage: "sample the IMU, run the tilt filter and publish poses over MQTT",
		Flags: app.CommonFlags(),
		Action: func(c *cli.Context) error {
			cfg, logger, err := app.Setup(c, "producer")
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.RunProducer(ctx, cfg, logger)
		},
	}
	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
