// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"math/rand"
	"time"

	"github.com/relabs-tech/tilt/internal/imu"
	"github.com/relabs-tech/tilt/internal/spatial"
)

// Motion describes the synthetic movement. The device lies level for Still,
// then roll follows A·sin(ωt) and pitch follows A·(1-cos(ωt))/2 so both
// start from zero. Zero amplitudes give a device lying still and level.
type Motion struct {
	RollAmplitude  float64 // radians
	PitchAmplitude float64 // radians
	Period         time.Duration
	Still          time.Duration
	Noise          float64 // accelerometer noise std-dev in g
	Seed           int64
}

// SyntheticSource generates accelerometer and gyro samples for a known
// motion at a fixed step. It never fails.
type SyntheticSource struct {
	motion Motion
	dt     time.Duration
	start  time.Time
	step   int
	rng    *rand.Rand
}

// NewSyntheticSource returns a source that starts at start and advances dt
// per sample. Timestamps are derived from the step count, not the wall
// clock, so output is reproducible.
func NewSyntheticSource(m Motion, dt time.Duration, start time.Time) *SyntheticSource {
	return &SyntheticSource{
		motion: m,
		dt:     dt,
		start:  start,
		rng:    rand.New(rand.NewSource(m.Seed)),
	}
}

// Attitude returns the true body-to-world attitude at t seconds.
func (s *SyntheticSource) Attitude(t float64) spatial.Quaternion {
	t -= s.motion.Still.Seconds()
	if t <= 0 || s.motion.Period <= 0 {
		return spatial.Identity()
	}
	phase := 2 * math.Pi * t / s.motion.Period.Seconds()
	roll := s.motion.RollAmplitude * math.Sin(phase)
	pitch := s.motion.PitchAmplitude * (1 - math.Cos(phase)) / 2
	return spatial.FromAngleAxis(pitch, spatial.NewVec3(0, 1, 0)).
		Mul(spatial.FromAngleAxis(roll, spatial.NewVec3(1, 0, 0)))
}

// Next returns the next sample. The gyro reading is the constant body rate
// that carries the previous true attitude onto the current one over dt,
// the accelerometer reads the gravity reaction in the body frame plus
// noise.
func (s *SyntheticSource) Next() (imu.Sample, error) {
	dt := s.dt.Seconds()
	t := float64(s.step) * dt
	prev := s.Attitude(t - dt)
	cur := s.Attitude(t)

	accel := cur.Inverse().RotateVector(spatial.NewVec3(0, 0, 1))
	if s.motion.Noise > 0 {
		accel = accel.Add(spatial.NewVec3(
			s.rng.NormFloat64()*s.motion.Noise,
			s.rng.NormFloat64()*s.motion.Noise,
			s.rng.NormFloat64()*s.motion.Noise,
		))
	}

	sample := imu.Sample{
		Time:  s.start.Add(time.Duration(s.step) * s.dt),
		Accel: accel,
		Gyro:  bodyRate(prev, cur, dt),
	}
	s.step++
	return sample, nil
}

// bodyRate returns ω such that prev ⊗ exp(ω·dt) = cur.
func bodyRate(prev, cur spatial.Quaternion, dt float64) spatial.Vec3 {
	if dt <= 0 {
		return spatial.Vec3{}
	}
	d := prev.Inverse().Mul(cur)
	if d.Real < 0 {
		d = spatial.NewQuaternion(-d.Real, -d.Imag, -d.Jmag, -d.Kmag)
	}
	v := d.Vector()
	n := v.Magnitude()
	if n == 0 {
		return spatial.Vec3{}
	}
	angle := 2 * math.Atan2(n, d.Real)
	return v.Scale(angle / n / dt)
}
