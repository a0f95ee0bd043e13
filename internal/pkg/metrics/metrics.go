// Package metrics records domain counters through OpenTelemetry.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the placement domain counters
type Metrics struct {
	openingsCreated    metric.Int64Counter
	messagesCreated    metric.Int64Counter
	seminarsCreated    metric.Int64Counter
	attendanceMarked   metric.Int64Counter
	qrScansRejected    metric.Int64Counter
	applications       metric.Int64Counter
	stationeryReviewed metric.Int64Counter
	liveStreamsActive  metric.Int64UpDownCounter
}

// New creates the counters on meter
func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.openingsCreated, err = meter.Int64Counter(
		"placement.openings.created",
		metric.WithDescription("Total number of company opening rows created"),
		metric.WithUnit("{opening}"),
	)
	if err != nil {
		return nil, err
	}

	m.messagesCreated, err = meter.Int64Counter(
		"placement.messages.created",
		metric.WithDescription("Total number of message rows created"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	m.seminarsCreated, err = meter.Int64Counter(
		"placement.seminars.created",
		metric.WithDescription("Total number of seminar rows created"),
		metric.WithUnit("{seminar}"),
	)
	if err != nil {
		return nil, err
	}

	m.attendanceMarked, err = meter.Int64Counter(
		"placement.attendance.marked",
		metric.WithDescription("Total number of attendance marks"),
		metric.WithUnit("{mark}"),
	)
	if err != nil {
		return nil, err
	}

	m.qrScansRejected, err = meter.Int64Counter(
		"placement.qr.scans_rejected",
		metric.WithDescription("Total number of rejected QR attendance scans"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, err
	}

	m.applications, err = meter.Int64Counter(
		"placement.applications.submitted",
		metric.WithDescription("Total number of applications submitted"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, err
	}

	m.stationeryReviewed, err = meter.Int64Counter(
		"placement.stationery.reviewed",
		metric.WithDescription("Total number of stationery requests reviewed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.liveStreamsActive, err = meter.Int64UpDownCounter(
		"placement.live_streams.active",
		metric.WithDescription("Current number of live seminar streams"),
		metric.WithUnit("{stream}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordOpeningsCreated counts n opening rows
func (m *Metrics) RecordOpeningsCreated(ctx context.Context, n int, mode string) {
	if m != nil && m.openingsCreated != nil {
		m.openingsCreated.Add(ctx, int64(n), metric.WithAttributes(attribute.String("targeting_mode", mode)))
	}
}

// RecordMessagesCreated counts n message rows
func (m *Metrics) RecordMessagesCreated(ctx context.Context, n int, mode string) {
	if m != nil && m.messagesCreated != nil {
		m.messagesCreated.Add(ctx, int64(n), metric.WithAttributes(attribute.String("targeting_mode", mode)))
	}
}

// RecordSeminarsCreated counts n seminar rows
func (m *Metrics) RecordSeminarsCreated(ctx context.Context, n int, mode string) {
	if m != nil && m.seminarsCreated != nil {
		m.seminarsCreated.Add(ctx, int64(n), metric.WithAttributes(attribute.String("targeting_mode", mode)))
	}
}

func (m *Metrics) RecordAttendanceMarked(ctx context.Context, source, status string) {
	if m != nil && m.attendanceMarked != nil {
		m.attendanceMarked.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("status", status),
		))
	}
}

// RecordQRScanRejected counts a refused scan; reason is a short code such as "closed"
func (m *Metrics) RecordQRScanRejected(ctx context.Context, reason string) {
	if m != nil && m.qrScansRejected != nil {
		m.qrScansRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *Metrics) RecordApplicationSubmitted(ctx context.Context) {
	if m != nil && m.applications != nil {
		m.applications.Add(ctx, 1)
	}
}

func (m *Metrics) RecordStationeryReviewed(ctx context.Context, status string) {
	if m != nil && m.stationeryReviewed != nil {
		m.stationeryReviewed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

// RecordLiveStream tracks live stream connections; delta is +1 or -1
func (m *Metrics) RecordLiveStream(ctx context.Context, delta int64) {
	if m != nil && m.liveStreamsActive != nil {
		m.liveStreamsActive.Add(ctx, delta)
	}
}

// NewMock creates a no-op Metrics instance for testing.
// Every Record* call is safely ignored.
func NewMock() *Metrics {
	return &Metrics{}
}
