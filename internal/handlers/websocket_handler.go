package handlers

import (
	"context"
	"time"

	"github.com/AnemiB/SipStop/internal/handlers/ws"
	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/session"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type WebSocketHandler struct {
	hub   *ws.Hub
	deps  *ws.Deps
	debug bool
}

func NewWebSocketHandler(hub *ws.Hub, deps *ws.Deps, debug bool) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, deps: deps, debug: debug}
}

// GetHub returns the hub the tick scheduler pushes through.
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	sess, _ := c.Locals(httpx.SessionKey).(session.Session)
	if !sess.Authenticated() {
		_ = c.Close()
		return
	}
	log := logrus.WithField("user_id", sess.UserID)

	supportsGzip := c.Query("gzip") == "1" || c.Headers("X-Supports-Gzip") == "1"
	client := h.hub.Register(sess.UserID, c, supportsGzip)

	pongTimeout := h.hub.PongTimeout()
	_ = c.SetReadDeadline(time.Now().Add(pongTimeout))
	c.SetPongHandler(func(string) error {
		h.hub.Touch(client)
		return c.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Unregister closes the client's slots, cancelling every live query.
	defer h.hub.Unregister(client)

	log.Info("websocket connected")

	msgCtx := &ws.MessageContext{
		Context: ctx,
		Session: sess,
		Client:  client,
		Hub:     h.hub,
		Deps:    h.deps,
	}

	for {
		messageType, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.WithError(err).Debug("websocket read ended")
			break
		}
		_ = c.SetReadDeadline(time.Now().Add(pongTimeout))

		if h.debug {
			log.WithFields(logrus.Fields{"frame_type": messageType, "size": len(messageBytes)}).Debug("ws_recv")
		}

		if messageType == websocket.BinaryMessage {
			decompressed, err := ws.DecompressMessage(messageBytes)
			if err != nil {
				_ = ws.SendError(h.hub, client, "decompression_failed", "Failed to decompress message", err.Error())
				continue
			}
			messageBytes = decompressed
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			_ = ws.SendError(h.hub, client, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := msg.Process(msgCtx); err != nil {
			log.WithError(err).WithField("type", msg.GetType()).Warn("failed to process websocket message")
			_ = ws.SendError(h.hub, client, "processing_failed", "Failed to process message", err.Error())
		}
	}

	log.Info("websocket disconnected")
}
