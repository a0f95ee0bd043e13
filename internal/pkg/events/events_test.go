package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startNATS(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping NATS container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForListeningPort("4222/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)
	return "nats://" + host + ":" + port.Port()
}

func TestNATSPublisherPublishesEnvelope(t *testing.T) {
	url := startNATS(t)

	pub, err := NewNATSPublisher(url, "placement.", zerolog.Nop())
	require.NoError(t, err)
	defer pub.Close()

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	received := make(chan *nats.Msg, 1)
	_, err = nc.Subscribe("placement.qr.status_changed", func(m *nats.Msg) { received <- m })
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	require.NoError(t, pub.Publish(context.Background(), QRStatusChanged, QRStatusChangedEvent{SeminarID: 5, Active: false}))

	select {
	case msg := <-received:
		var env struct {
			Subject string               `json:"subject"`
			Data    QRStatusChangedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Data, &env))
		assert.Equal(t, "placement.qr.status_changed", env.Subject)
		assert.Equal(t, int64(5), env.Data.SeminarID)
		assert.False(t, env.Data.Active)
	case <-time.After(5 * time.Second):
		t.Fatal("event not received")
	}
}

func TestSubjectPrefix(t *testing.T) {
	assert.Equal(t, "placement.opening.created", (&NATSPublisher{prefix: "placement"}).Subject(OpeningCreated))
	assert.Equal(t, "opening.created", (&NATSPublisher{}).Subject(OpeningCreated))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.Publish(context.Background(), SeminarCreated, nil))
	require.NoError(t, r.Publish(context.Background(), QRStatusChanged, nil))
	assert.Equal(t, []string{SeminarCreated, QRStatusChanged}, r.Subjects())

	var noop Publisher = NoopPublisher{}
	assert.NoError(t, noop.Publish(context.Background(), MessageCreated, nil))
}
