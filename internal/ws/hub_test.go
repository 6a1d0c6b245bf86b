package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"task_manager/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(id string, buf int) *Client {
	return &Client{ID: id, send: make(chan []byte, buf), done: make(chan struct{})}
}

func TestHub_PublishDeliversToRegisteredClients(t *testing.T) {
	hub := NewHub()
	a := testClient("a", 1)
	b := testClient("b", 1)
	hub.Register(a)
	hub.Register(b)

	hub.Publish(domain.TaskEvent{Type: domain.TaskEventCreated, Task: &domain.Task{ID: 1, Name: "A"}})

	for _, c := range []*Client{a, b} {
		var evt domain.TaskEvent
		require.NoError(t, json.Unmarshal(<-c.send, &evt))
		assert.Equal(t, domain.TaskEventCreated, evt.Type)
		assert.Equal(t, int64(1), evt.Task.ID)
	}
}

func TestHub_DropsSlowClients(t *testing.T) {
	hub := NewHub()
	slow := testClient("slow", 0)
	hub.Register(slow)

	hub.Publish(domain.TaskEvent{Type: domain.TaskEventDeleted, Task: &domain.Task{ID: 2}})

	assert.Equal(t, 0, hub.ClientCount())
	select {
	case <-slow.done:
	default:
		t.Fatal("slow client was not stopped")
	}
}

func TestClient_EnqueueAfterStop(t *testing.T) {
	hub := NewHub()
	c := testClient("late", 0)
	hub.Register(c)
	hub.Unregister(c)

	// a pong reply racing with the drop must neither panic nor block
	assert.NotPanics(t, func() { c.enqueue(Envelope{Type: MsgPong}) })
	hub.Publish(domain.TaskEvent{Type: domain.TaskEventCreated, Task: &domain.Task{ID: 3}})
}

func TestHub_UnregisterTwice(t *testing.T) {
	hub := NewHub()
	c := testClient("c", 1)
	hub.Register(c)

	hub.Unregister(c)
	assert.NotPanics(t, func() { hub.Unregister(c) })
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHandleWS_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	defer hub.Close()

	r := gin.New()
	r.GET("/ws", HandleWS(hub, []string{"http://localhost:5173"}))
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	t.Run("Should reject a foreign origin", func(t *testing.T) {
		hdr := http.Header{"Origin": []string{"http://evil.example"}}
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, hdr)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Should stream published events", func(t *testing.T) {
		hdr := http.Header{"Origin": []string{"http://localhost:5173"}}
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, hdr)
		require.NoError(t, err)
		defer conn.Close()

		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var ready Envelope
		require.NoError(t, conn.ReadJSON(&ready))
		assert.Equal(t, MsgReady, ready.Type)

		require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
		hub.Publish(domain.TaskEvent{Type: domain.TaskEventUpdated, Task: &domain.Task{ID: 5, Name: "x"}})

		var evt domain.TaskEvent
		require.NoError(t, conn.ReadJSON(&evt))
		assert.Equal(t, domain.TaskEventUpdated, evt.Type)
		assert.Equal(t, "x", evt.Task.Name)

		require.NoError(t, conn.WriteJSON(Envelope{Type: MsgPing}))
		var pong Envelope
		require.NoError(t, conn.ReadJSON(&pong))
		assert.Equal(t, MsgPong, pong.Type)
	})
}
