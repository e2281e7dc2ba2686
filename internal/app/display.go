// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/tilt/internal/config"
	"github.com/relabs-tech/tilt/internal/orientation"
)

const (
	displayWidth  = 128
	displayHeight = 64
)

// displayData holds the latest pose received for the screen.
type displayData struct {
	mu   sync.RWMutex
	pose orientation.Pose
	have bool
}

func (d *displayData) set(p orientation.Pose) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pose = p
	d.have = true
}

func (d *displayData) get() (orientation.Pose, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pose, d.have
}

func newScreen() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

// renderPose draws roll and pitch in degrees, or a waiting message before
// the first pose.
func renderPose(pose orientation.Pose, have bool) *image1bit.VerticalLSB {
	img, d := newScreen()
	if !have {
		drawLine(d, 0, 26, "Tilt")
		drawLine(d, 0, 39, "Calibrating...")
		return img
	}
	drawLine(d, 0, 13, fmt.Sprintf("R: %6.1f", pose.Roll))
	drawLine(d, 0, 26, fmt.Sprintf("P: %6.1f", pose.Pitch))
	drawLine(d, 0, 52, pose.Time.Format("15:04:05"))
	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, d := newScreen()
	drawLine(d, 10, 26, "Tilt filter")
	drawLine(d, 5, 43, "Waiting for")
	drawLine(d, 25, 56, "poses")
	return img
}

// RunDisplay shows the latest pose on an SSD1306 OLED on the default I2C
// bus until ctx is done.
func RunDisplay(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (err error) {
	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize periph")
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return errors.Wrap(err, "failed to open I2C bus")
	}
	defer func() { err = multierr.Append(err, bus.Close()) }()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return errors.Wrap(err, "failed to initialize display")
	}
	defer func() { err = multierr.Append(err, dev.Halt()) }()

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		logger.Warnw("error showing splash", "error", err)
	}

	data := &displayData{}

	client, err := connectMQTT(cfg, cfg.MQTTClientIDDisplay, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	token := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			logger.Warnw("pose unmarshal error", "error", err)
			return
		}
		data.set(p)
	})
	if token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "subscribe %s", cfg.TopicPose)
	}
	logger.Infow("subscribed", "topic", cfg.TopicPose)

	ticker := time.NewTicker(cfg.DisplayUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("display shutting down")
			return nil
		case <-ticker.C:
		}
		pose, have := data.get()
		if err := dev.Draw(dev.Bounds(), renderPose(pose, have), image.Point{}); err != nil {
			logger.Warnw("error updating display", "error", err)
		}
	}
}
