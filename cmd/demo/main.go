// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/relabs-tech/tilt/internal/app"
	"github.com/relabs-tech/tilt/internal/logging"
)

func main() {
	def := app.DefaultDemoOptions()
	a := &cli.App{
		Name:  "demo",
		Usage: "run the tilt filter on synthetic samples and print JSON records",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "alpha", Value: def.Alpha, Usage: "mixing coefficient"},
			&cli.IntFlag{Name: "calibration-samples", Value: def.CalibrationSamples},
			&cli.IntFlag{Name: "steps", Value: def.Steps},
			&cli.DurationFlag{Name: "dt", Value: def.Dt, Usage: "sample period"},
			&cli.Float64Flag{Name: "roll", Usage: "roll amplitude in radians"},
			&cli.Float64Flag{Name: "pitch", Usage: "pitch amplitude in radians"},
			&cli.DurationFlag{Name: "period", Value: 2 * time.Second, Usage: "motion period"},
			&cli.Float64Flag{Name: "noise", Usage: "accelerometer noise std-dev in g"},
			&cli.Int64Flag{Name: "seed", Value: 1},
			&cli.StringFlag{Name: app.FlagLogLevel, Value: "warn"},
		},
		Action: func(c *cli.Context) error {
			logger, err := logging.New("demo", c.String(app.FlagLogLevel))
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			opts := app.DemoOptions{
				Alpha:              c.Float64("alpha"),
				CalibrationSamples: c.Int("calibration-samples"),
				Steps:              c.Int("steps"),
				Dt:                 c.Duration("dt"),
				Logger:             logger,
			}
			opts.Motion.RollAmplitude = c.Float64("roll")
			opts.Motion.PitchAmplitude = c.Float64("pitch")
			opts.Motion.Period = c.Duration("period")
			opts.Motion.Noise = c.Float64("noise")
			opts.Motion.Seed = c.Int64("seed")
			return app.RunDemo(c.App.Writer, opts)
		},
	}
	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
