// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/relabs-tech/tilt/internal/config"
	"github.com/relabs-tech/tilt/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// hubClientBuffer is the number of poses queued per websocket client
// before new poses are dropped for it.
const hubClientBuffer = 16

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// PoseHub keeps the latest pose and fans every new pose out to the
// connected websocket clients.
type PoseHub struct {
	mu      sync.RWMutex
	last    orientation.Pose
	have    bool
	clients map[*hubClient]struct{}
	logger  *zap.SugaredLogger
}

// NewPoseHub returns an empty hub.
func NewPoseHub(logger *zap.SugaredLogger) *PoseHub {
	return &PoseHub{
		clients: make(map[*hubClient]struct{}),
		logger:  logger,
	}
}

// Publish stores p as the latest pose and queues it for every client. A
// client whose queue is full misses p.
func (h *PoseHub) Publish(p orientation.Pose) {
	payload, err := json.Marshal(p)
	if err != nil {
		h.logger.Warnw("pose marshal error", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = p
	h.have = true
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Debugw("client queue full, dropping pose", "remote", c.conn.RemoteAddr())
		}
	}
}

// Latest returns the last published pose.
func (h *PoseHub) Latest() (orientation.Pose, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

// Clients returns the number of connected websocket clients.
func (h *PoseHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeOrientation answers with the latest pose as JSON, or 503 before the
// first pose arrived.
func (h *PoseHub) ServeOrientation(w http.ResponseWriter, _ *http.Request) {
	pose, ok := h.Latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(pose); err != nil {
		h.logger.Warnw("json encode error", "error", err)
	}
}

// ServeWS upgrades the request and streams poses to the client until it
// disconnects. The latest pose, if any, is sent right away.
func (h *PoseHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade error", "error", err)
		return
	}
	c := &hubClient{conn: conn, send: make(chan []byte, hubClientBuffer)}

	h.mu.Lock()
	if h.have {
		if payload, err := json.Marshal(h.last); err == nil {
			c.send <- payload
		}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debugw("websocket client connected", "remote", conn.RemoteAddr())

	go h.writeLoop(c)

	// Clients never send anything useful; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debugw("websocket error", "error", err)
			}
			break
		}
	}
	h.remove(c)
}

func (h *PoseHub) writeLoop(c *hubClient) {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *PoseHub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Close disconnects every client.
func (h *PoseHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// newWebMux wires the HTTP routes. staticDir may be empty.
func newWebMux(hub *PoseHub, control *ControlHandler, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orientation", hub.ServeOrientation)
	mux.HandleFunc("/ws/pose", hub.ServeWS)
	mux.Handle("/ws/control", control)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// RunWeb serves the latest pose over HTTP and websocket until ctx is done.
// Poses come from the producer through MQTT; recalibration requests from
// the browser are forwarded to the command topic.
func RunWeb(ctx context.Context, cfg *config.Config, staticDir string, logger *zap.SugaredLogger) (err error) {
	client, err := connectMQTT(cfg, cfg.MQTTClientIDWeb, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	hub := NewPoseHub(logger.Named("hub"))
	defer hub.Close()

	token := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			logger.Warnw("MQTT payload unmarshal error", "error", err)
			return
		}
		hub.Publish(p)
	})
	if token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "subscribe %s", cfg.TopicPose)
	}
	logger.Infow("subscribed", "topic", cfg.TopicPose)

	control := NewControlHandler(func(cmd string) error {
		token := client.Publish(cfg.TopicCommand, 1, false, cmd)
		if !token.WaitTimeout(2 * time.Second) {
			return errors.New("command publish timed out")
		}
		return token.Error()
	}, logger.Named("control"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           newWebMux(hub, control, staticDir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("web server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "web server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) {
		err = multierr.Append(err, serveErr)
	}
	return err
}
