package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Frame types pushed to live seminar clients
const (
	FrameQRToken          = "qr_token"
	FrameAttendance       = "attendance"
	FrameAttendanceMarked = "attendance_marked"
	FrameQRStatus         = "qr_status"
	FrameError            = "error"
)

// Frame is a message sent over WebSocket
type Frame struct {
	// Type of frame, one of the Frame* constants
	Type string `json:"type"`

	// Seminar room the frame belongs to
	SeminarID int64 `json:"seminarId"`

	// Frame payload
	Data interface{} `json:"data,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// NewFrame stamps a frame for a seminar room
func NewFrame(frameType string, seminarID int64, data interface{}) *Frame {
	return &Frame{Type: frameType, SeminarID: seminarID, Data: data, Timestamp: time.Now().UTC()}
}

// Hub maintains the set of active clients and broadcasts frames to seminar rooms
type Hub struct {
	// Registered clients organized by seminar ID
	clients map[int64]map[*Client]bool

	broadcast  chan *Frame
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Frame, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub, handling client registrations and broadcasts until Shutdown
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case frame := <-h.broadcast:
			h.broadcastFrame(frame)

		case <-h.stop:
			h.closeAll()
			return
		}
	}
}

// Shutdown disconnects every client and stops Run
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.seminarID
	if _, ok := h.clients[room]; !ok {
		h.clients[room] = make(map[*Client]bool)
	}
	h.clients[room][client] = true

	h.logger.Info().
		Int64("seminarID", room).
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	room := client.seminarID
	if _, ok := h.clients[room][client]; !ok {
		return
	}
	delete(h.clients[room], client)
	client.close()

	if len(h.clients[room]) == 0 {
		delete(h.clients, room)
	}

	h.logger.Info().
		Int64("seminarID", room).
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// broadcastFrame sends a frame to every client in its seminar room
func (h *Hub) broadcastFrame(frame *Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("seminarID", frame.SeminarID).
			Msg("Failed to marshal frame for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[frame.SeminarID]
	if !ok {
		h.logger.Debug().
			Int64("seminarID", frame.SeminarID).
			Msg("No clients in seminar room for broadcast")
		return
	}

	for client := range clients {
		if !client.enqueue(data) {
			// slow or gone; drop it
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Int64("seminarID", frame.SeminarID).
		Str("type", frame.Type).
		Int("clientCount", len(clients)).
		Msg("Frame broadcasted to seminar room")
}

// Broadcast queues a frame for its seminar room. It never blocks; frames are
// dropped when the hub is saturated or stopped.
func (h *Hub) Broadcast(frame *Frame) {
	select {
	case h.broadcast <- frame:
	case <-h.stop:
	default:
		h.logger.Warn().Int64("seminarID", frame.SeminarID).Str("type", frame.Type).Msg("Hub saturated, frame dropped")
	}
}

// ClientsCount returns the number of connected clients in a seminar room
func (h *Hub) ClientsCount(seminarID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[seminarID])
}
