// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSMessage is a request from the browser.
type WSMessage struct {
	Action string `json:"action"` // recalibrate, close
}

// WSResponse is sent back for every request.
type WSResponse struct {
	Type    string `json:"type"` // ack, error
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

// ControlHandler accepts control requests over a websocket and forwards
// them as producer commands.
type ControlHandler struct {
	send   func(cmd string) error
	logger *zap.SugaredLogger
}

// NewControlHandler returns a handler forwarding commands through send.
func NewControlHandler(send func(cmd string) error, logger *zap.SugaredLogger) *ControlHandler {
	return &ControlHandler{send: send, logger: logger}
}

func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debugw("websocket read error", "error", err)
			}
			return
		}

		switch msg.Action {
		case CommandRecalibrate:
			if err := h.send(CommandRecalibrate); err != nil {
				h.reply(conn, WSResponse{Type: "error", Action: msg.Action, Message: err.Error()})
				continue
			}
			h.logger.Infow("recalibration requested", "remote", conn.RemoteAddr())
			h.reply(conn, WSResponse{Type: "ack", Action: msg.Action})

		case "close":
			return

		default:
			h.reply(conn, WSResponse{Type: "error", Action: msg.Action, Message: "unknown action"})
		}
	}
}

func (h *ControlHandler) reply(conn *websocket.Conn, resp WSResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Debugw("websocket write error", "error", err)
	}
}
