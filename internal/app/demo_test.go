// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/relabs-tech/tilt/internal/orientation"
)

func TestRunDemoStatic(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultDemoOptions()
	opts.Logger = zaptest.NewLogger(t).Sugar()
	test.That(t, RunDemo(&buf, opts), test.ShouldBeNil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	test.That(t, lines, test.ShouldHaveLength, 200)
	test.That(t, string(lines[0]), test.ShouldEqual, `{"t":0,"tilt":[0,0],"quaternion":[1,0,0,0]}`)
	test.That(t, string(lines[1]), test.ShouldEqual, `{"t":0.005,"tilt":[0,0],"quaternion":[1,0,0,0]}`)
	test.That(t, string(lines[199]), test.ShouldEqual, `{"t":0.995,"tilt":[0,0],"quaternion":[1,0,0,0]}`)
}

func TestRunDemoMotion(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultDemoOptions()
	opts.Alpha = 0.98
	opts.Steps = 400
	opts.Motion = orientation.Motion{RollAmplitude: 0.3, Period: time.Second}
	test.That(t, RunDemo(&buf, opts), test.ShouldBeNil)

	// Calibration consumed the still phase, so the fusion steps start from
	// t=0 of the oscillation: roll(t) = 0.3·sin(2πt).
	src := orientation.NewSyntheticSource(orientation.Motion{RollAmplitude: 0.3, Period: time.Second}, opts.Dt, time.Time{})
	scanner := bufio.NewScanner(&buf)
	n := 0
	for scanner.Scan() {
		var rec orientation.Record
		test.That(t, json.Unmarshal(scanner.Bytes(), &rec), test.ShouldBeNil)
		wantRoll, _, _ := src.Attitude(rec.T).EulerAngles()
		test.That(t, rec.Tilt[1], test.ShouldAlmostEqual, wantRoll, 1e-4)
		test.That(t, rec.Tilt[0], test.ShouldAlmostEqual, 0.0, 1e-4)
		n++
	}
	test.That(t, n, test.ShouldEqual, 400)
}

func TestRunDemoRejectsDt(t *testing.T) {
	opts := DefaultDemoOptions()
	opts.Dt = 0
	test.That(t, RunDemo(&bytes.Buffer{}, opts), test.ShouldNotBeNil)
}
