// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/relabs-tech/tilt/internal/config"
	"github.com/relabs-tech/tilt/internal/imu"
	"github.com/relabs-tech/tilt/internal/orientation"
	"github.com/relabs-tech/tilt/internal/sensors"
)

// OpenSource returns the sample source selected by cfg.SampleSource. The
// returned closer is nil for sources that hold no resources.
func OpenSource(cfg *config.Config, logger *zap.SugaredLogger) (imu.Source, io.Closer, error) {
	switch cfg.SampleSource {
	case config.SourceSynthetic:
		return orientation.NewSyntheticSource(synthMotion(cfg), cfg.SampleInterval, time.Now()), nil, nil
	case config.SourceMPU9250:
		src, err := sensors.NewMPU9250Source(cfg, logger.Named("mpu9250"))
		if err != nil {
			return nil, nil, errors.Wrap(err, "MPU9250")
		}
		return src, nil, nil
	case config.SourceSerial:
		src, err := sensors.OpenSerialSource(cfg, logger.Named("serial"))
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	default:
		return nil, nil, errors.Errorf("unknown sample source %q", cfg.SampleSource)
	}
}

// synthMotion holds the device still for the calibration phase.
func synthMotion(cfg *config.Config) orientation.Motion {
	return orientation.Motion{
		RollAmplitude:  cfg.SynthRollAmplitude,
		PitchAmplitude: cfg.SynthPitchAmplitude,
		Period:         cfg.SynthPeriod,
		Still:          time.Duration(cfg.CalibrationSamples) * cfg.SampleInterval,
		Noise:          cfg.SynthNoise,
		Seed:           cfg.SynthSeed,
	}
}
