// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/relabs-tech/tilt/internal/spatial"
)

// Raw is a single raw accelerometer + gyro sample in device counts.
type Raw struct {
	Source string `json:"source"`

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// Sample is one accelerometer + gyro reading in physical units: the
// accelerometer in g, the gyro in rad/s. Any consistent accelerometer unit
// works for the filter as long as calibration and updates share it.
type Sample struct {
	Time  time.Time    `json:"time"`
	Accel spatial.Vec3 `json:"accel"`
	Gyro  spatial.Vec3 `json:"gyro"`
}

// Source is anything that can provide samples over time.
type Source interface {
	Next() (Sample, error)
}

// Scale converts raw counts into physical units.
type Scale struct {
	AccelLSBPerG  float64
	GyroLSBPerDPS float64
}

var (
	accelSensitivity = []float64{16384, 8192, 4096, 2048}
	gyroSensitivity  = []float64{131, 65.5, 32.8, 16.4}
)

// ScaleForRanges returns the MPU9250 sensitivities for the full scale
// selections 0-3 (±2/4/8/16 g, ±250/500/1000/2000 °/s).
func ScaleForRanges(accelRange, gyroRange byte) (Scale, error) {
	if int(accelRange) >= len(accelSensitivity) {
		return Scale{}, errors.Errorf("accel range must be 0-3, got %d", accelRange)
	}
	if int(gyroRange) >= len(gyroSensitivity) {
		return Scale{}, errors.Errorf("gyro range must be 0-3, got %d", gyroRange)
	}
	return Scale{
		AccelLSBPerG:  accelSensitivity[accelRange],
		GyroLSBPerDPS: gyroSensitivity[gyroRange],
	}, nil
}

// Convert turns a raw reading taken at t into a Sample.
func (s Scale) Convert(r Raw, t time.Time) Sample {
	toRad := math.Pi / 180 / s.GyroLSBPerDPS
	return Sample{
		Time: t,
		Accel: spatial.NewVec3(
			float64(r.Ax)/s.AccelLSBPerG,
			float64(r.Ay)/s.AccelLSBPerG,
			float64(r.Az)/s.AccelLSBPerG,
		),
		Gyro: spatial.NewVec3(
			float64(r.Gx)*toRad,
			float64(r.Gy)*toRad,
			float64(r.Gz)*toRad,
		),
	}
}
