package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler upgrades HTTP requests into seminar room clients
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// Connect upgrades the request and joins the seminar room. Access checks
// are the caller's job and must happen before Connect.
func (h *Handler) Connect(c *gin.Context, seminarID, userID int64) (*Client, error) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("seminarID", seminarID).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return nil, err
	}

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
		userID:    userID,
		seminarID: seminarID,
		logger:    h.logger,
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.stop:
		conn.Close()
		client.close()
		return client, nil
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("seminarID", seminarID).
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
	return client, nil
}
