package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRoomServer(t *testing.T, hub *Hub, seminarID int64) (*httptest.Server, chan *Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewHandler(hub, zerolog.Nop())
	clients := make(chan *Client, 1)

	r := gin.New()
	r.GET("/live", func(c *gin.Context) {
		client, err := handler.Connect(c, seminarID, 1)
		if err == nil {
			clients <- client
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, clients
}

func dial(t *testing.T, srv *httptest.Server) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *gorillaws.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var f Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestHubBroadcastReachesRoom(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	defer hub.Shutdown()

	srv, clients := startRoomServer(t, hub, 5)
	conn := dial(t, srv)
	<-clients

	require.Eventually(t, func() bool { return hub.ClientsCount(5) == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(NewFrame(FrameQRStatus, 5, map[string]bool{"active": false}))
	f := readFrame(t, conn)
	assert.Equal(t, FrameQRStatus, f.Type)
	assert.Equal(t, int64(5), f.SeminarID)
}

func TestClientSendIsPrivate(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	defer hub.Shutdown()

	srv, clients := startRoomServer(t, hub, 9)
	conn := dial(t, srv)
	client := <-clients

	assert.True(t, client.Send(NewFrame(FrameAttendance, 9, []string{})))
	f := readFrame(t, conn)
	assert.Equal(t, FrameAttendance, f.Type)
}

func TestClientDoneAfterDisconnect(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	defer hub.Shutdown()

	srv, clients := startRoomServer(t, hub, 3)
	conn := dial(t, srv)
	client := <-clients

	require.NoError(t, conn.Close())

	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client not released after disconnect")
	}
	assert.False(t, client.Send(NewFrame(FrameAttendance, 3, nil)))
	assert.Eventually(t, func() bool { return hub.ClientsCount(3) == 0 }, time.Second, 10*time.Millisecond)
}
