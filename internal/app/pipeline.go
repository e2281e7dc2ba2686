// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/tilt/internal/imu"
	"github.com/relabs-tech/tilt/internal/orientation"
	"github.com/relabs-tech/tilt/internal/tilt"
)

// Pipeline feeds samples from a source into a filter. The first
// calibrationSamples samples only refine the gravity estimate; after that
// the filter is marked calibrated and every sample runs a fusion step.
//
// Step must be called from a single goroutine. RequestRecalibration may be
// called from any goroutine.
type Pipeline struct {
	src    imu.Source
	filter *tilt.Guarded
	logger *zap.SugaredLogger

	calibrationSamples int
	nominalDt          time.Duration

	seen     int
	last     time.Time
	recalReq atomic.Bool
}

// StepResult is the outcome of one Pipeline.Step.
type StepResult struct {
	Sample imu.Sample
	Pose   orientation.Pose
	// Calibrated is false while the pipeline is collecting calibration
	// samples; Pose is empty then.
	Calibrated bool
}

// NewPipeline returns a pipeline in its calibration phase. nominalDt is
// used as the step length when sample timestamps cannot provide one.
func NewPipeline(src imu.Source, filter *tilt.Guarded, calibrationSamples int, nominalDt time.Duration, logger *zap.SugaredLogger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	p := &Pipeline{
		src:                src,
		filter:             filter,
		logger:             logger,
		calibrationSamples: calibrationSamples,
		nominalDt:          nominalDt,
	}
	p.startCalibration()
	return p
}

// RequestRecalibration makes the next Step reset the filter and start a new
// calibration phase.
func (p *Pipeline) RequestRecalibration() {
	p.recalReq.Store(true)
}

// Filter returns the guarded filter driven by the pipeline.
func (p *Pipeline) Filter() *tilt.Guarded {
	return p.filter
}

func (p *Pipeline) startCalibration() {
	p.filter.Recalibrate()
	p.seen = 0
	p.last = time.Time{}
	if p.calibrationSamples <= 0 {
		p.filter.SetState(tilt.Calibrated)
	}
}

// Step reads one sample from the source and processes it.
func (p *Pipeline) Step() (StepResult, error) {
	if p.recalReq.CompareAndSwap(true, false) {
		p.logger.Infow("recalibration requested", "samples", p.calibrationSamples)
		p.startCalibration()
	}

	sample, err := p.src.Next()
	if err != nil {
		return StepResult{}, err
	}
	res := StepResult{Sample: sample}

	if p.seen < p.calibrationSamples {
		p.filter.Calibrate(sample.Accel)
		p.seen++
		p.last = sample.Time
		if p.seen == p.calibrationSamples {
			p.filter.SetState(tilt.Calibrated)
			p.logger.Infow("calibration complete", "gravity", p.filter.Gravity())
		}
		return res, nil
	}

	dt := p.nominalDt.Seconds()
	if !p.last.IsZero() {
		if d := sample.Time.Sub(p.last); d > 0 {
			dt = d.Seconds()
		}
	}
	p.last = sample.Time

	p.filter.Do(func(f *tilt.Filter) {
		f.Update(sample.Accel, sample.Gyro, dt)
		res.Pose, err = orientation.FromFilter(f, sample.Time)
	})
	if err != nil {
		return StepResult{}, err
	}
	res.Calibrated = true
	return res, nil
}
