// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/relabs-tech/tilt/internal/tilt"
)

// Pose is the published orientation. Angles are in degrees; Yaw is always
// 0 because heading is unobservable without a magnetometer.
type Pose struct {
	Roll       float64    `json:"roll"`
	Pitch      float64    `json:"pitch"`
	Yaw        float64    `json:"yaw"`
	Quaternion [4]float64 `json:"quaternion"` // w, x, y, z
	Time       time.Time  `json:"time"`
}

// FromFilter reads pitch, roll and the attitude quaternion from f. It
// returns tilt.ErrNotCalibrated while f is uncalibrated.
func FromFilter(f *tilt.Filter, t time.Time) (Pose, error) {
	pitch, roll, err := f.PitchRoll()
	if err != nil {
		return Pose{}, err
	}
	return Pose{
		Roll:       roll * 180.0 / math.Pi,
		Pitch:      pitch * 180.0 / math.Pi,
		Yaw:        0,
		Quaternion: f.Attitude().Array(),
		Time:       t,
	}, nil
}

// Record is one line of the demo output:
//
//	{"t": 0.005, "tilt": [pitch, roll], "quaternion": [w, x, y, z]}
//
// Angles are in radians, everything rounded to five decimals.
type Record struct {
	T          float64    `json:"t"`
	Tilt       [2]float64 `json:"tilt"`
	Quaternion [4]float64 `json:"quaternion"`
}

// RecordFromFilter builds a Record for elapsed time t in seconds.
func RecordFromFilter(f *tilt.Filter, t float64) (Record, error) {
	pitch, roll, err := f.PitchRoll()
	if err != nil {
		return Record{}, err
	}
	q := f.Attitude().Array()
	for i := range q {
		q[i] = scalar.Round(q[i], 5)
	}
	return Record{
		T:          scalar.Round(t, 6),
		Tilt:       [2]float64{scalar.Round(pitch, 5), scalar.Round(roll, 5)},
		Quaternion: q,
	}, nil
}
