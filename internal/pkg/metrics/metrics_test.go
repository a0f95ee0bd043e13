package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewOnNoopMeter(t *testing.T) {
	m, err := New(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordOpeningsCreated(ctx, 2, "interest")
		m.RecordAttendanceMarked(ctx, "qr", "Present")
		m.RecordQRScanRejected(ctx, "closed")
		m.RecordLiveStream(ctx, 1)
	})
}

func TestMockAndNilAreSafe(t *testing.T) {
	ctx := context.Background()
	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		NewMock().RecordApplicationSubmitted(ctx)
		nilMetrics.RecordStationeryReviewed(ctx, "approved")
	})
}
