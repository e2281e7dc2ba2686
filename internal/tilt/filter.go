// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package tilt implements a quaternion complementary filter that estimates
// pitch and roll from accelerometer and gyroscope samples.
//
// The gyro is integrated into the attitude every tick; the accelerometer,
// rotated into the world frame, is compared with the calibrated gravity
// direction and a fraction of the resulting tilt error is applied as a
// correction. Yaw is never corrected (there is no heading reference).
//
// See https://stanford.edu/class/ee267/notes/ee267_notes_imu.pdf, section 4.
package tilt

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/relabs-tech/tilt/internal/spatial"
)

// GravitySmoothing is the EMA constant used by Calibrate.
const GravitySmoothing = 0.1

// ErrNotCalibrated is returned by PitchRoll until the caller marks the
// filter as calibrated.
var ErrNotCalibrated = errors.New("tilt: filter not calibrated")

// State is the calibration state of a Filter.
type State int

const (
	// Uncalibrated is the initial state; PitchRoll fails.
	Uncalibrated State = iota
	// Calibrated is set by the caller once it trusts the gravity estimate.
	Calibrated
)

func (s State) String() string {
	switch s {
	case Uncalibrated:
		return "uncalibrated"
	case Calibrated:
		return "calibrated"
	default:
		return "unknown"
	}
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets the sink for debug traces. Traces never affect results.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filter is the complementary filter state. A Filter is not safe for
// concurrent use; see Guarded.
type Filter struct {
	attitude spatial.Quaternion
	gravity  spatial.Vec3
	alpha    float64
	state    State

	logger *zap.SugaredLogger
}

// New returns a filter at the identity attitude with gravity along +z.
//
// alpha weights the per-tick correction: 0 applies the full measured tilt
// error (accelerometer only), 1 applies none (gyro only). It is not range
// checked.
func New(alpha float64, opts ...Option) *Filter {
	f := &Filter{
		alpha:  alpha,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.Reset()
	return f
}

// Reset restores the attitude, gravity estimate and state set by New.
// Alpha and the logger are kept.
func (f *Filter) Reset() {
	f.attitude = spatial.Identity()
	f.gravity = spatial.NewVec3(0, 0, 1)
	f.state = Uncalibrated
}

// Calibrate blends one accelerometer sample into the gravity estimate:
//
//	g = normalize((1-β)·g + β·acc), β = GravitySmoothing
//
// It is meant to be called repeatedly while the device is still. It never
// changes the calibration state.
func (f *Filter) Calibrate(acc spatial.Vec3) {
	blended := f.gravity.Scale(1 - GravitySmoothing).Add(acc.Scale(GravitySmoothing))
	g, ok := blended.Normalize()
	if !ok {
		f.logger.Debugw("degenerate gravity blend", "acc", acc, "gravity", f.gravity)
	}
	f.gravity = g
}

// Update runs one fusion step with an accelerometer sample, a gyro sample in
// rad/s and the elapsed time dt in seconds. It currently always returns
// true.
func (f *Filter) Update(acc, gyro spatial.Vec3, dt float64) bool {
	// Integrate the gyro. Without a usable axis the previous attitude is kept.
	integrated := f.attitude
	if axis, ok := gyro.Normalize(); ok {
		angle := dt * gyro.Magnitude()
		integrated = f.attitude.Mul(spatial.FromAngleAxis(angle, axis))
	} else {
		f.logger.Debugw("gyro rate below epsilon, skipping integration", "gyro", gyro)
	}

	// Measured down direction in the world frame.
	world := integrated.Rotate(spatial.FromVector(acc)).Normalize().Vector()

	// Tilt error between measured and calibrated down.
	normal := world.Cross(f.gravity)
	phi := math.Acos(spatial.Clamp(f.gravity.Dot(world), -1, 1))
	axis, ok := normal.Normalize()
	if !ok {
		f.logger.Debugw("tilt error axis undefined", "world", world, "gravity", f.gravity, "phi", phi)
	}

	correction := spatial.FromAngleAxis((1-f.alpha)*phi, axis)
	f.attitude = correction.Mul(integrated).Normalize()
	return true
}

// PitchRoll returns pitch and roll in radians. It fails with
// ErrNotCalibrated until the state is Calibrated.
func (f *Filter) PitchRoll() (pitch, roll float64, err error) {
	if f.state != Calibrated {
		return 0, 0, ErrNotCalibrated
	}
	q0, q1, q2, q3 := f.attitude.Real, f.attitude.Imag, f.attitude.Jmag, f.attitude.Kmag
	roll = math.Atan2(2*(q0*q1+q2*q3), q0*q0-q1*q1-q2*q2+q3*q3)
	pitch = -math.Asin(spatial.Clamp(2*(q1*q3-q0*q2), -1, 1))
	return pitch, roll, nil
}

// SetState sets the calibration state. Promotion to Calibrated is the
// caller's decision; the filter never does it on its own.
func (f *Filter) SetState(s State) {
	f.state = s
}

// State returns the calibration state.
func (f *Filter) State() State {
	return f.state
}

// Attitude returns the current unit attitude quaternion (body to world).
func (f *Filter) Attitude() spatial.Quaternion {
	return f.attitude
}

// Gravity returns the calibrated down direction.
func (f *Filter) Gravity() spatial.Vec3 {
	return f.gravity
}

// Alpha returns the mixing coefficient.
func (f *Filter) Alpha() float64 {
	return f.alpha
}
