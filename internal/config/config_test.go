// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.validate(), test.ShouldBeNil)
	test.That(t, cfg.SampleSource, test.ShouldEqual, SourceSynthetic)
	test.That(t, cfg.CalibrationSamples, test.ShouldEqual, 100)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
# filter
FILTER_ALPHA = 0.5
CALIBRATION_SAMPLES=250
SAMPLE_INTERVAL=10

SAMPLE_SOURCE=Serial
SERIAL_PORT=/dev/ttyUSB0
SERIAL_BAUD_RATE=230400
SYNTH_PERIOD=2.5s
SYNTH_ROLL_AMPLITUDE=0.3
SYNTH_SEED=99
IMU_ACCEL_RANGE=2
IMU_GYRO_RANGE=3
TOPIC_POSE=bench/pose
DISPLAY_UPDATE_INTERVAL=1s
LOG_LEVEL=debug
`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.FilterAlpha, test.ShouldEqual, 0.5)
	test.That(t, cfg.CalibrationSamples, test.ShouldEqual, 250)
	test.That(t, cfg.SampleInterval, test.ShouldEqual, 10*time.Millisecond)
	test.That(t, cfg.SampleSource, test.ShouldEqual, SourceSerial)
	test.That(t, cfg.SerialPort, test.ShouldEqual, "/dev/ttyUSB0")
	test.That(t, cfg.SerialBaudRate, test.ShouldEqual, 230400)
	test.That(t, cfg.SynthPeriod, test.ShouldEqual, 2500*time.Millisecond)
	test.That(t, cfg.SynthRollAmplitude, test.ShouldEqual, 0.3)
	test.That(t, cfg.SynthSeed, test.ShouldEqual, int64(99))
	test.That(t, cfg.IMUAccelRange, test.ShouldEqual, byte(2))
	test.That(t, cfg.IMUGyroRange, test.ShouldEqual, byte(3))
	test.That(t, cfg.TopicPose, test.ShouldEqual, "bench/pose")
	test.That(t, cfg.DisplayUpdateInterval, test.ShouldEqual, time.Second)
	test.That(t, cfg.LogLevel, test.ShouldEqual, "debug")

	// untouched keys keep their defaults
	test.That(t, cfg.MQTTBroker, test.ShouldEqual, Default().MQTTBroker)
}

func TestParseAlphaNotRangeChecked(t *testing.T) {
	cfg, err := Parse([]byte("FILTER_ALPHA=1.7\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.FilterAlpha, test.ShouldEqual, 1.7)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		input string
		msg   string
	}{
		{"NOT_A_KEY=1", "unknown config key"},
		{"FILTER_ALPHA", "invalid config line 1"},
		{"\nFILTER_ALPHA=abc", "config line 2"},
		{"CALIBRATION_SAMPLES=-3", "must be >= 0"},
		{"IMU_ACCEL_RANGE=4", "IMU_ACCEL_RANGE must be 0-3"},
		{"SAMPLE_INTERVAL=0", "SAMPLE_INTERVAL must be positive"},
		{"SAMPLE_SOURCE=carrier-pigeon", "unknown SAMPLE_SOURCE"},
		{"SAMPLE_SOURCE=serial", "SERIAL_PORT is required"},
		{"MQTT_BROKER=", "MQTT_BROKER is required"},
	} {
		_, err := Parse([]byte(tc.input))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
	}
}

func TestParseDuration(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  time.Duration
	}{
		{"10", 10 * time.Millisecond},
		{"1.5", 1500 * time.Microsecond},
		{"010", 10 * time.Millisecond},
		{"5ms", 5 * time.Millisecond},
		{"1.5s", 1500 * time.Millisecond},
	} {
		got, err := parseDuration(tc.input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, tc.want)
	}

	for _, bad := range []string{"NaN", "Inf", "fast"} {
		_, err := parseDuration(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}

	cfg, err := Parse([]byte("SAMPLE_INTERVAL=2.5\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.SampleInterval, test.ShouldEqual, 2500*time.Microsecond)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TILT_TEST_BROKER", "tcp://broker.lan:1883")
	path := filepath.Join(t.TempDir(), "tilt.conf")
	err := os.WriteFile(path, []byte("MQTT_BROKER=${TILT_TEST_BROKER}\nFILTER_ALPHA=0.9\n"), 0o600)
	test.That(t, err, test.ShouldBeNil)

	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.MQTTBroker, test.ShouldEqual, "tcp://broker.lan:1883")
	test.That(t, cfg.FilterAlpha, test.ShouldEqual, 0.9)

	_, err = Load(filepath.Join(t.TempDir(), "missing.conf"))
	test.That(t, err, test.ShouldNotBeNil)
}
