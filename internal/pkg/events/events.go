// Package events publishes domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Event subjects, relative to the configured prefix
const (
	OpeningCreated       = "opening.created"
	MessageCreated       = "message.created"
	SeminarCreated       = "seminar.created"
	AttendanceMarked     = "attendance.marked"
	QRStatusChanged      = "qr.status_changed"
	ApplicationSubmitted = "application.submitted"
	StationeryReviewed   = "stationery.reviewed"
)

// Envelope wraps every published payload
type Envelope struct {
	Subject    string      `json:"subject"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

// Publisher sends domain events
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// NATSPublisher publishes JSON envelopes on a NATS connection
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

// NewNATSPublisher connects to url. Subjects are published as prefix.subject.
func NewNATSPublisher(url, prefix string, logger zerolog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("placement-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("url", url).Str("prefix", prefix).Msg("NATS publisher initialized")
	return &NATSPublisher{conn: nc, prefix: strings.TrimSuffix(prefix, "."), logger: logger}, nil
}

// Subject returns the full subject for a relative one
func (p *NATSPublisher) Subject(subject string) string {
	if p.prefix == "" {
		return subject
	}
	return p.prefix + "." + subject
}

// Publish marshals data into an envelope and publishes it
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	full := p.Subject(subject)
	payload, err := json.Marshal(Envelope{Subject: full, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		p.logger.Error().Err(err).Str("subject", full).Msg("Failed to marshal event")
		return err
	}

	if err := p.conn.Publish(full, payload); err != nil {
		p.logger.Error().Err(err).Str("subject", full).Msg("Failed to publish event to NATS")
		return err
	}

	p.logger.Debug().Str("subject", full).Msg("Event published")
	return nil
}

// Close drains the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NoopPublisher discards events. It is used when NATS is not configured.
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	Events []Envelope
}

// Publish records the event
func (r *Recorder) Publish(_ context.Context, subject string, data interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Envelope{Subject: subject, OccurredAt: time.Now().UTC(), Data: data})
	return nil
}

// Subjects lists the recorded subjects in order
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Subject
	}
	return out
}

// Close does nothing
func (r *Recorder) Close() error { return nil }
