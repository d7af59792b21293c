package ws

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fcastro-dev/taskroom/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, groupID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount(groupID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("group %s never reached %d subscribers", groupID, want)
}

func TestHub_JoinAndReceive(t *testing.T) {
	hub := NewHub(testLogger())
	conn := dialHub(t, hub)

	join := Envelope{Event: "joinGroup", Data: map[string]string{"groupId": "g-1"}}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("write join: %v", err)
	}
	waitForSubscribers(t, hub, "g-1", 1)

	hub.Publish("g-1", EventTaskAdded, map[string]string{"id": "t-1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Envelope
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Event != EventTaskAdded {
		t.Fatalf("unexpected event: %q", got.Event)
	}
	data, ok := got.Data.(map[string]any)
	if !ok || data["id"] != "t-1" {
		t.Fatalf("unexpected payload: %+v", got.Data)
	}
}

func TestHub_PublishSkipsOtherRooms(t *testing.T) {
	hub := NewHub(testLogger())
	conn := dialHub(t, hub)

	if err := conn.WriteJSON(Envelope{Event: "joinGroup", Data: map[string]string{"groupId": "g-1"}}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	waitForSubscribers(t, hub, "g-1", 1)

	hub.Publish("g-2", EventTaskUpdated, map[string]string{"id": "t-1"})
	hub.Publish("g-1", EventTaskDeleted, map[string]string{"taskId": "t-2"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Envelope
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	// The g-2 event must not arrive; the first frame is the g-1 delete.
	if got.Event != EventTaskDeleted {
		t.Fatalf("unexpected event: %q", got.Event)
	}
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := NewHub(testLogger())
	conn := dialHub(t, hub)

	if err := conn.WriteJSON(Envelope{Event: "joinGroup", Data: map[string]string{"groupId": "g-1"}}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	waitForSubscribers(t, hub, "g-1", 1)

	if err := conn.WriteJSON(Envelope{Event: "leaveGroup", Data: map[string]string{"groupId": "g-1"}}); err != nil {
		t.Fatalf("write leave: %v", err)
	}
	waitForSubscribers(t, hub, "g-1", 0)

	hub.Publish("g-1", EventTaskAdded, map[string]string{"id": "t-1"})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var got Envelope
	if err := conn.ReadJSON(&got); err == nil {
		t.Fatalf("expected no delivery after leave, got %+v", got)
	}
}

func TestHub_DisconnectRemovesClient(t *testing.T) {
	hub := NewHub(testLogger())
	conn := dialHub(t, hub)

	if err := conn.WriteJSON(Envelope{Event: "joinGroup", Data: map[string]string{"groupId": "g-1"}}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	waitForSubscribers(t, hub, "g-1", 1)

	conn.Close()
	waitForSubscribers(t, hub, "g-1", 0)
}
