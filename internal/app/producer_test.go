// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/relabs-tech/tilt/internal/config"
	"github.com/relabs-tech/tilt/internal/imu"
	"github.com/relabs-tech/tilt/internal/orientation"
	"github.com/relabs-tech/tilt/internal/sensors"
	"github.com/relabs-tech/tilt/internal/spatial"
	"github.com/relabs-tech/tilt/internal/tilt"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                       { return true }
func (t *fakeToken) WaitTimeout(_ time.Duration) bool { return true }
func (t *fakeToken) Error() error                     { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  interface{}
}

// fakeClient records publishes. Calling any other method panics.
type fakeClient struct {
	mqtt.Client
	mu        sync.Mutex
	published []published
	fail      map[string]error
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic, retained, payload})
	return &fakeToken{err: c.fail[topic]}
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }

func testStepResult() StepResult {
	return StepResult{
		Sample: imu.Sample{
			Time:  time.UnixMilli(1700000000000),
			Accel: spatial.NewVec3(0, 0, 1),
		},
		Pose: orientation.Pose{
			Roll:       1.5,
			Pitch:      -2,
			Quaternion: [4]float64{1, 0, 0, 0},
			Time:       time.UnixMilli(1700000000000).UTC(),
		},
		Calibrated: true,
	}
}

func TestPublisher(t *testing.T) {
	cfg := config.Default()
	client := &fakeClient{}
	pub := &publisher{client: client, cfg: cfg}

	res := testStepResult()
	test.That(t, pub.publish(res), test.ShouldBeNil)
	test.That(t, client.published, test.ShouldHaveLength, 2)

	sample := client.published[0]
	test.That(t, sample.topic, test.ShouldEqual, cfg.TopicSample)
	test.That(t, sample.retained, test.ShouldBeFalse)
	test.That(t, sample.payload, test.ShouldEqual, sensors.EncodeSentence(res.Sample))

	pose := client.published[1]
	test.That(t, pose.topic, test.ShouldEqual, cfg.TopicPose)
	test.That(t, pose.retained, test.ShouldBeTrue)
	var got orientation.Pose
	test.That(t, json.Unmarshal(pose.payload.([]byte), &got), test.ShouldBeNil)
	test.That(t, got.Roll, test.ShouldEqual, 1.5)
	test.That(t, got.Pitch, test.ShouldEqual, -2.0)
	test.That(t, got.Time.Equal(res.Pose.Time), test.ShouldBeTrue)
}

func TestPublisherUncalibrated(t *testing.T) {
	cfg := config.Default()
	client := &fakeClient{}
	pub := &publisher{client: client, cfg: cfg}

	res := testStepResult()
	res.Calibrated = false
	res.Pose = orientation.Pose{}
	test.That(t, pub.publish(res), test.ShouldBeNil)
	test.That(t, client.published, test.ShouldHaveLength, 1)
	test.That(t, client.published[0].topic, test.ShouldEqual, cfg.TopicSample)
}

func TestPublisherErrors(t *testing.T) {
	cfg := config.Default()
	client := &fakeClient{fail: map[string]error{
		cfg.TopicSample: errors.New("sample down"),
		cfg.TopicPose:   errors.New("pose down"),
	}}
	pub := &publisher{client: client, cfg: cfg}

	err := pub.publish(testStepResult())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sample down")
	test.That(t, err.Error(), test.ShouldContainSubstring, "pose down")
	test.That(t, client.published, test.ShouldHaveLength, 2)
}

func TestCommandHandler(t *testing.T) {
	src := &scriptedSource{samples: samples(4, 5*time.Millisecond, spatial.Vec3{})}
	filter := tilt.NewGuarded(tilt.New(0.5))
	p := NewPipeline(src, filter, 1, 5*time.Millisecond, nil)
	handle := commandHandler(p, zaptest.NewLogger(t).Sugar())

	_, err := p.Step()
	test.That(t, err, test.ShouldBeNil)
	res, err := p.Step()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Calibrated, test.ShouldBeTrue)

	handle(nil, &fakeMessage{topic: "tilt/cmd", payload: []byte("bogus")})
	res, err = p.Step()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Calibrated, test.ShouldBeTrue)

	handle(nil, &fakeMessage{topic: "tilt/cmd", payload: []byte(" recalibrate\n")})
	res, err = p.Step()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Calibrated, test.ShouldBeFalse)
}
