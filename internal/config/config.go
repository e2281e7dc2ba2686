// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"bytes"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Sample sources understood by SAMPLE_SOURCE.
const (
	SourceSynthetic = "synthetic"
	SourceMPU9250   = "mpu9250"
	SourceSerial    = "serial"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicPose    string
	TopicSample  string
	TopicCommand string

	// Filter
	// FilterAlpha is passed to the filter as is; values outside [0,1] are
	// accepted.
	FilterAlpha        float64
	CalibrationSamples int
	SampleInterval     time.Duration

	// Source selection: synthetic, mpu9250 or serial
	SampleSource string

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// Serial sentence stream
	SerialPort     string
	SerialBaudRate int

	// Synthetic motion
	SynthRollAmplitude  float64 // radians
	SynthPitchAmplitude float64 // radians
	SynthPeriod         time.Duration
	SynthNoise          float64 // accelerometer noise std-dev in g
	SynthSeed           int64

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval time.Duration

	LogLevel string
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a configuration that runs the producer against the
// synthetic source and a local broker.
func Default() *Config {
	return &Config{
		MQTTBroker:            "tcp://localhost:1883",
		MQTTClientIDProducer:  "tilt-producer",
		MQTTClientIDConsole:   "tilt-console",
		MQTTClientIDWeb:       "tilt-web",
		MQTTClientIDDisplay:   "tilt-display",
		TopicPose:             "tilt/pose",
		TopicSample:           "tilt/sample",
		TopicCommand:          "tilt/cmd",
		FilterAlpha:           0.98,
		CalibrationSamples:    100,
		SampleInterval:        5 * time.Millisecond,
		SampleSource:          SourceSynthetic,
		IMUSPIDevice:          "/dev/spidev0.0",
		IMUCSPin:              "8",
		SerialBaudRate:        115200,
		SynthPeriod:           4 * time.Second,
		SynthSeed:             1,
		WebServerPort:         8080,
		DisplayUpdateInterval: 200 * time.Millisecond,
		LogLevel:              "info",
	}
}

// Load reads the configuration file on top of Default. ${VAR} references
// are expanded from the environment before parsing.
func Load(configPath string) (*Config, error) {
	buf, err := envsubst.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(buf)
}

// Parse parses KEY=VALUE lines on top of Default and validates the result.
func Parse(buf []byte) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(bytes.NewReader(buf))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, errors.Wrapf(err, "config line %d", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_SAMPLE":
		c.TopicSample = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value

	// Filter
	case "FILTER_ALPHA":
		c.FilterAlpha, err = cast.ToFloat64E(value)
	case "CALIBRATION_SAMPLES":
		c.CalibrationSamples, err = cast.ToIntE(value)
		if err == nil && c.CalibrationSamples < 0 {
			return errors.Errorf("CALIBRATION_SAMPLES must be >= 0, got %d", c.CalibrationSamples)
		}
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = parseDuration(value)
	case "SAMPLE_SOURCE":
		c.SampleSource = strings.ToLower(value)

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		c.IMUAccelRange, err = parseRange(value, "IMU_ACCEL_RANGE")
	case "IMU_GYRO_RANGE":
		c.IMUGyroRange, err = parseRange(value, "IMU_GYRO_RANGE")

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = cast.ToIntE(value)

	// Synthetic motion
	case "SYNTH_ROLL_AMPLITUDE":
		c.SynthRollAmplitude, err = cast.ToFloat64E(value)
	case "SYNTH_PITCH_AMPLITUDE":
		c.SynthPitchAmplitude, err = cast.ToFloat64E(value)
	case "SYNTH_PERIOD":
		c.SynthPeriod, err = parseDuration(value)
	case "SYNTH_NOISE":
		c.SynthNoise, err = cast.ToFloat64E(value)
	case "SYNTH_SEED":
		c.SynthSeed, err = cast.ToInt64E(value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = cast.ToIntE(value)

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseDuration(value)

	case "LOG_LEVEL":
		c.LogLevel = value

	default:
		return errors.Errorf("unknown config key: %q", key)
	}

	if err != nil {
		return errors.Wrapf(err, "invalid %s %q", key, value)
	}
	return nil
}

// parseDuration accepts Go durations ("5ms", "1.5s") or a plain number of
// milliseconds ("10", "1.5").
func parseDuration(value string) (time.Duration, error) {
	if ms, err := cast.ToFloat64E(value); err == nil {
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			return 0, errors.Errorf("duration %q is not finite", value)
		}
		return time.Duration(math.Round(ms * float64(time.Millisecond))), nil
	}
	return cast.ToDurationE(value)
}

func parseRange(value, key string) (byte, error) {
	v, err := cast.ToIntE(value)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 3 {
		return 0, errors.Errorf("%s must be 0-3, got %d", key, v)
	}
	return byte(v), nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is required")
	}
	if c.TopicPose == "" {
		return errors.New("TOPIC_POSE is required")
	}
	if c.SampleInterval <= 0 {
		return errors.New("SAMPLE_INTERVAL must be positive")
	}
	switch c.SampleSource {
	case SourceSynthetic:
		if c.SynthPeriod <= 0 {
			return errors.New("SYNTH_PERIOD must be positive")
		}
	case SourceMPU9250:
		if c.IMUSPIDevice == "" {
			return errors.New("IMU_SPI_DEVICE is required for the mpu9250 source")
		}
		if c.IMUCSPin == "" {
			return errors.New("IMU_CS_PIN is required for the mpu9250 source")
		}
	case SourceSerial:
		if c.SerialPort == "" {
			return errors.New("SERIAL_PORT is required for the serial source")
		}
		if c.SerialBaudRate <= 0 {
			return errors.New("SERIAL_BAUD_RATE must be positive")
		}
	default:
		return errors.Errorf("unknown SAMPLE_SOURCE %q", c.SampleSource)
	}
	return nil
}

// InitGlobal loads the global configuration once; later calls are no-ops.
// An empty path selects Default.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		if configPath == "" {
			globalConfig = Default()
			return
		}
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
