package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcastsTokens(t *testing.T) {
	hub := NewHub()
	srv := New(Config{Hub: hub})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The upgrade handshake returns before the hub registers the client.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with the hub")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Emit("gesture/five")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Token     string `json:"token"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if msg.Token != "gesture/five" {
		t.Errorf("token = %q, want gesture/five", msg.Token)
	}
	if msg.Timestamp == 0 {
		t.Error("timestamp missing")
	}
}

func TestHubEmitWithoutClients(t *testing.T) {
	// Emitting into an empty hub must be a safe no-op.
	NewHub().Emit("swipe")
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub()
	srv := New(Config{Hub: hub})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never unregistered after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
