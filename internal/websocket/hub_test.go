package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"waterlog/internal/middleware"
	"waterlog/internal/models"
)

func TestRouteEventReachesConnectedClient(t *testing.T) {
	const secret = "ws-secret"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	server := httptest.NewServer(HandleWebSocket(hub, secret))
	defer server.Close()

	token, err := middleware.IssueToken(secret, &models.User{ID: 3, Username: "sup", Role: models.RoleSupervisor}, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.GetClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.GetClientCount())
	}

	hub.PublishRouteEvent(models.RouteEvent{Type: "route_checked_out", RouteID: 101, Status: models.StatusInProgress})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var event models.RouteEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Type != "route_checked_out" || event.RouteID != 101 {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestHandleWebSocketRejectsBadToken(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(HandleWebSocket(hub, "secret"))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %v", resp)
	}
}

func TestNilHubPublishIsNoop(t *testing.T) {
	var hub *Hub
	hub.PublishRouteEvent(models.RouteEvent{Type: "route_checked_in"})
}
