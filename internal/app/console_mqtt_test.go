// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/relabs-tech/tilt/internal/imu"
	"github.com/relabs-tech/tilt/internal/orientation"
	"github.com/relabs-tech/tilt/internal/sensors"
	"github.com/relabs-tech/tilt/internal/spatial"
)

func TestFormatPose(t *testing.T) {
	got := formatPose(orientation.Pose{Roll: 1.234, Pitch: -45, Quaternion: [4]float64{1, 0, 0, 0}})
	test.That(t, got, test.ShouldEqual,
		"[POSE]  ROLL=   1.23  PITCH= -45.00  q=(1.0000, 0.0000, 0.0000, 0.0000)\n")
}

func TestConsolePrinter(t *testing.T) {
	var out bytes.Buffer
	c := &consolePrinter{
		out:    &out,
		parser: sensors.NewSentenceParser(),
		logger: zaptest.NewLogger(t).Sugar(),
	}

	payload, err := json.Marshal(orientation.Pose{Roll: 2, Pitch: 3})
	test.That(t, err, test.ShouldBeNil)
	c.handlePose(nil, &fakeMessage{payload: payload})
	c.handlePose(nil, &fakeMessage{payload: []byte("{")})

	sample := imu.Sample{Accel: spatial.NewVec3(0, 0, 1), Gyro: spatial.NewVec3(0.1, 0, 0)}
	c.handleSample(nil, &fakeMessage{payload: []byte(sensors.EncodeSentence(sample))})
	c.handleSample(nil, &fakeMessage{payload: []byte("$PTILT,1*00")})

	test.That(t, out.String(), test.ShouldEqual,
		"[POSE]  ROLL=   2.00  PITCH=   3.00  q=(0.0000, 0.0000, 0.0000, 0.0000)\n"+
			"[IMU ]  ax=  0.000 ay=  0.000 az=  1.000  gx=  0.100 gy=  0.000 gz=  0.000\n")
}
