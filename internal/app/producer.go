// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/relabs-tech/tilt/internal/config"
	"github.com/relabs-tech/tilt/internal/sensors"
	"github.com/relabs-tech/tilt/internal/tilt"
)

// Commands accepted on the command topic.
const (
	CommandRecalibrate = "recalibrate"
)

// connectMQTT connects a client with the given id to the configured broker.
func connectMQTT(cfg *config.Config, clientID string, logger *zap.SugaredLogger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "MQTT connect to %s", cfg.MQTTBroker)
	}
	logger.Infow("connected to MQTT broker", "broker", cfg.MQTTBroker, "client_id", clientID)
	return client, nil
}

// publisher sends pipeline output to the broker.
type publisher struct {
	client mqtt.Client
	cfg    *config.Config
}

// publish sends the sample sentence and, once calibrated, the pose. Poses
// are retained so late subscribers get the latest one.
func (p *publisher) publish(res StepResult) error {
	var err error
	sentence := sensors.EncodeSentence(res.Sample)
	if token := p.client.Publish(p.cfg.TopicSample, 0, false, sentence); token.Wait() && token.Error() != nil {
		err = multierr.Append(err, errors.Wrap(token.Error(), "publish sample"))
	}
	if !res.Calibrated {
		return err
	}

	payload, jerr := json.Marshal(res.Pose)
	if jerr != nil {
		return multierr.Append(err, errors.Wrap(jerr, "marshal pose"))
	}
	if token := p.client.Publish(p.cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
		err = multierr.Append(err, errors.Wrap(token.Error(), "publish pose"))
	}
	return err
}

// commandHandler returns the MQTT handler for the command topic.
func commandHandler(p *Pipeline, logger *zap.SugaredLogger) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		cmd := strings.TrimSpace(string(msg.Payload()))
		switch cmd {
		case CommandRecalibrate:
			p.RequestRecalibration()
		default:
			logger.Warnw("unknown command", "command", cmd, "topic", msg.Topic())
		}
	}
}

// RunProducer samples the configured source every SampleInterval, runs the
// filter and publishes samples and poses until ctx is done.
func RunProducer(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (err error) {
	logger.Infow("starting tilt producer", "source", cfg.SampleSource, "alpha", cfg.FilterAlpha)

	src, closer, err := OpenSource(cfg, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { err = multierr.Append(err, closer.Close()) }()
	}

	filter := tilt.NewGuarded(tilt.New(cfg.FilterAlpha, tilt.WithLogger(logger.Named("filter"))))
	pipeline := NewPipeline(src, filter, cfg.CalibrationSamples, cfg.SampleInterval, logger)

	client, err := connectMQTT(cfg, cfg.MQTTClientIDProducer, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if token := client.Subscribe(cfg.TopicCommand, 0, commandHandler(pipeline, logger)); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "subscribe %s", cfg.TopicCommand)
	}
	logger.Infow("subscribed", "topic", cfg.TopicCommand)

	pub := &publisher{client: client, cfg: cfg}

	ticker := time.NewTicker(cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("producer shutting down")
			return nil
		case <-ticker.C:
		}

		res, err := pipeline.Step()
		if errors.Is(err, io.EOF) {
			logger.Info("sample stream ended")
			return nil
		}
		if err != nil {
			logger.Warnw("sample error", "error", err)
			continue
		}
		if err := pub.publish(res); err != nil {
			logger.Warnw("publish error", "error", err)
		}
	}
}
