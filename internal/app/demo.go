// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/relabs-tech/tilt/internal/orientation"
	"github.com/relabs-tech/tilt/internal/tilt"
)

// DemoOptions configures RunDemo.
type DemoOptions struct {
	Alpha              float64
	CalibrationSamples int
	Steps              int
	Dt                 time.Duration
	// Motion of the synthetic device. A zero Still is replaced by the
	// calibration duration so calibration always sees a device at rest.
	Motion orientation.Motion
	Logger *zap.SugaredLogger
}

// DefaultDemoOptions calibrates on 100 samples of a device lying flat and
// runs 200 fusion steps at 200 Hz with alpha 0.5.
func DefaultDemoOptions() DemoOptions {
	return DemoOptions{
		Alpha:              0.5,
		CalibrationSamples: 100,
		Steps:              200,
		Dt:                 5 * time.Millisecond,
	}
}

// RunDemo runs the filter on synthetic samples and writes one JSON record
// per fusion step to w:
//
//	{"t":0,"tilt":[0,0],"quaternion":[1,0,0,0]}
//
// t counts from the first fusion step.
func RunDemo(w io.Writer, opts DemoOptions) error {
	if opts.Dt <= 0 {
		return errors.Errorf("demo: dt must be positive, got %v", opts.Dt)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	motion := opts.Motion
	if motion.Still == 0 {
		motion.Still = time.Duration(opts.CalibrationSamples) * opts.Dt
	}
	src := orientation.NewSyntheticSource(motion, opts.Dt, time.Time{})
	f := tilt.New(opts.Alpha, tilt.WithLogger(logger))

	for i := 0; i < opts.CalibrationSamples; i++ {
		s, err := src.Next()
		if err != nil {
			return err
		}
		f.Calibrate(s.Accel)
	}
	f.SetState(tilt.Calibrated)
	logger.Debugw("calibrated", "gravity", f.Gravity(), "samples", opts.CalibrationSamples)

	enc := json.NewEncoder(w)
	dt := opts.Dt.Seconds()
	for i := 0; i < opts.Steps; i++ {
		s, err := src.Next()
		if err != nil {
			return err
		}
		f.Update(s.Accel, s.Gyro, dt)

		rec, err := orientation.RecordFromFilter(f, float64(i)*dt)
		if err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return errors.Wrap(err, "demo: write record")
		}
	}
	return nil
}
