// Package notification streams change events to connected clients over WebSocket.
package notification

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/XevilA/spu-nexus-sub000/internal/notify"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	defaultPingPeriod  = (pongWait * 9) / 10
	maxClientFrameSize = 512
)

// NotificationController handles the notification stream
type NotificationController struct {
	Broker       notify.Broker
	Log          logrus.FieldLogger
	Upgrader     websocket.Upgrader
	PingInterval time.Duration
}

// NewNotificationController creates a new instance of NotificationController
func NewNotificationController(broker notify.Broker, log logrus.FieldLogger, allowOrigins []string) *NotificationController {
	return &NotificationController{
		Broker:       broker,
		Log:          log,
		Upgrader:     websocket.Upgrader{CheckOrigin: originChecker(allowOrigins)},
		PingInterval: defaultPingPeriod,
	}
}

func originChecker(allowOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowOrigins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Stream upgrades the connection and forwards events for the caller.
// @Summary Notification stream
// @Description Pushes {kind, ref_id, at} events for the caller's applications, messages and portfolios. Approvers also receive portfolio submissions. The token may be given as ?token= since browsers cannot set headers on the handshake.
// @Tags Notification
// @Param token query string false "Access token"
// @Success 101 "Switching protocols"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Router /ws/notifications [get]
func (nc *NotificationController) Stream(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	conn, err := nc.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	topics := []string{notify.UserTopic(session.UserID)}
	if session.CanReviewPortfolios() {
		topics = append(topics, notify.ApproversTopic)
	}
	events, unsubscribe := nc.Broker.Subscribe(ctx, topics...)
	defer unsubscribe()

	log := nc.Log.WithFields(logrus.Fields{"user_id": session.UserID, "topics": topics})
	log.Info("Notification stream opened")
	defer log.Info("Notification stream closed")

	// reader: only control frames are expected, a read error means the client left
	go func() {
		defer cancel()
		conn.SetReadLimit(maxClientFrameSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(nc.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.WithError(err).Warn("Failed to write notification")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
