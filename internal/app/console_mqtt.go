// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	nmea "github.com/adrianmo/go-nmea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/relabs-tech/tilt/internal/config"
	"github.com/relabs-tech/tilt/internal/orientation"
	"github.com/relabs-tech/tilt/internal/sensors"
)

func formatPose(p orientation.Pose) string {
	return fmt.Sprintf("[POSE]  ROLL=%7.2f  PITCH=%7.2f  q=(%.4f, %.4f, %.4f, %.4f)\n",
		p.Roll, p.Pitch, p.Quaternion[0], p.Quaternion[1], p.Quaternion[2], p.Quaternion[3])
}

func formatSentence(s sensors.TILT) string {
	return fmt.Sprintf("[IMU ]  ax=%7.3f ay=%7.3f az=%7.3f  gx=%7.3f gy=%7.3f gz=%7.3f\n",
		s.Accel.X, s.Accel.Y, s.Accel.Z, s.Gyro.X, s.Gyro.Y, s.Gyro.Z)
}

// consolePrinter writes decoded messages to out. Handlers run on the MQTT
// client's goroutines, so writes are serialized.
type consolePrinter struct {
	mu     sync.Mutex
	out    io.Writer
	parser *nmea.SentenceParser
	logger *zap.SugaredLogger
}

func (c *consolePrinter) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, s)
}

func (c *consolePrinter) handlePose(_ mqtt.Client, msg mqtt.Message) {
	var p orientation.Pose
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		c.logger.Warnw("pose unmarshal error", "error", err)
		return
	}
	c.write(formatPose(p))
}

func (c *consolePrinter) handleSample(_ mqtt.Client, msg mqtt.Message) {
	s, err := c.parser.Parse(string(msg.Payload()))
	if err != nil {
		c.logger.Debugw("sample parse error", "error", err)
		return
	}
	if m, ok := s.(sensors.TILT); ok {
		c.write(formatSentence(m))
	}
}

// RunConsoleMQTT prints every pose, and every raw sample when samples is
// set, until ctx is done.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer, samples bool, logger *zap.SugaredLogger) error {
	client, err := connectMQTT(cfg, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	printer := &consolePrinter{
		out:    out,
		parser: sensors.NewSentenceParser(),
		logger: logger,
	}

	topics := map[string]mqtt.MessageHandler{cfg.TopicPose: printer.handlePose}
	if samples {
		topics[cfg.TopicSample] = printer.handleSample
	}
	for topic, handler := range topics {
		if token := client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
			return errors.Wrapf(token.Error(), "subscribe %s", topic)
		}
		logger.Infow("subscribed", "topic", topic)
	}

	<-ctx.Done()
	logger.Info("console shutting down")
	return nil
}
