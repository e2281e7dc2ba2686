// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/tilt/internal/config"
	"github.com/relabs-tech/tilt/internal/imu"
)

// accelGyro is the part of the MPU9250 driver the source reads from.
type accelGyro interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
	GetRotationX() (int16, error)
	GetRotationY() (int16, error)
	GetRotationZ() (int16, error)
}

// MPU9250Source reads accelerometer and gyro samples from an MPU9250 and
// converts them to g and rad/s.
type MPU9250Source struct {
	dev   accelGyro
	scale imu.Scale
	now   func() time.Time
}

// NewMPU9250Source initializes the MPU9250 on the configured SPI device and
// chip select pin and applies the configured full scale ranges.
func NewMPU9250Source(cfg *config.Config, logger *zap.SugaredLogger) (*MPU9250Source, error) {
	scale, err := imu.ScaleForRanges(cfg.IMUAccelRange, cfg.IMUGyroRange)
	if err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}

	cs := gpioreg.ByName(cfg.IMUCSPin)
	if cs == nil {
		return nil, errors.Errorf("CS pin %q not found", cfg.IMUCSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.IMUSPIDevice, cs)
	if err != nil {
		return nil, errors.Wrapf(err, "SPI transport (%s)", cfg.IMUSPIDevice)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, errors.Wrap(err, "device creation")
	}
	if err := dev.Init(); err != nil {
		return nil, errors.Wrap(err, "initialization")
	}

	if err := dev.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return nil, errors.Wrap(err, "set accel range")
	}
	logger.Infow("accelerometer range set", "range", cfg.IMUAccelRange, "lsb_per_g", scale.AccelLSBPerG)

	if err := dev.SetGyroRange(cfg.IMUGyroRange); err != nil {
		return nil, errors.Wrap(err, "set gyro range")
	}
	logger.Infow("gyroscope range set", "range", cfg.IMUGyroRange, "lsb_per_dps", scale.GyroLSBPerDPS)

	if res, err := dev.SelfTest(); err != nil {
		logger.Warnw("self-test failed", "error", err)
	} else {
		logger.Infow("self-test passed",
			"accel_dev", []float64{res.AccelDeviation.X, res.AccelDeviation.Y, res.AccelDeviation.Z},
			"gyro_dev", []float64{res.GyroDeviation.X, res.GyroDeviation.Y, res.GyroDeviation.Z})
	}

	// Bias calibration on the chip. The filter's gravity calibration runs
	// on top of it.
	if err := dev.Calibrate(); err != nil {
		logger.Warnw("bias calibration failed", "error", err)
	}

	return newMPU9250Source(dev, scale), nil
}

func newMPU9250Source(dev accelGyro, scale imu.Scale) *MPU9250Source {
	return &MPU9250Source{dev: dev, scale: scale, now: time.Now}
}

// ReadRaw reads one accelerometer and gyro sample in device counts.
func (s *MPU9250Source) ReadRaw() (imu.Raw, error) {
	raw := imu.Raw{Source: config.SourceMPU9250}
	reads := []struct {
		name string
		fn   func() (int16, error)
		dst  *int16
	}{
		{"accel X", s.dev.GetAccelerationX, &raw.Ax},
		{"accel Y", s.dev.GetAccelerationY, &raw.Ay},
		{"accel Z", s.dev.GetAccelerationZ, &raw.Az},
		{"gyro X", s.dev.GetRotationX, &raw.Gx},
		{"gyro Y", s.dev.GetRotationY, &raw.Gy},
		{"gyro Z", s.dev.GetRotationZ, &raw.Gz},
	}
	for _, r := range reads {
		v, err := r.fn()
		if err != nil {
			return imu.Raw{}, errors.Wrap(err, r.name)
		}
		*r.dst = v
	}
	return raw, nil
}

// Next implements imu.Source.
func (s *MPU9250Source) Next() (imu.Sample, error) {
	raw, err := s.ReadRaw()
	if err != nil {
		return imu.Sample{}, err
	}
	return s.scale.Convert(raw, s.now()), nil
}
