package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Clients() = %d, want %d", hub.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	waitClients(t, hub, 2)

	ev := NewEvent(EventToken, "session-1")
	ev.Token = "ABC123"
	ev.Row = 1
	hub.Publish(ev)

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var got Event
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if got.ID != ev.ID || got.Type != EventToken || got.Token != "ABC123" || got.Session != "session-1" {
			t.Errorf("received %+v, want %+v", got, ev)
		}
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitClients(t, hub, 1)

	conn.Close()
	waitClients(t, hub, 0)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < eventQueueSize+50; i++ {
			hub.Publish(NewEvent(EventToken, ""))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with no consumer")
	}
}

func TestHub_Close(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitClients(t, hub, 1)

	hub.Close()
	hub.Close()
	hub.Publish(NewEvent(EventSaved, ""))

	if hub.Clients() != 0 {
		t.Errorf("Clients() after Close = %d, want 0", hub.Clients())
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("client should be disconnected after Close")
	}
}

func TestWatch(t *testing.T) {
	hub, url := startHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Event, 4)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Watch(ctx, url, func(ev Event) { got <- ev })
	}()
	waitClients(t, hub, 1)

	ev := NewEvent(EventNamed, "s")
	ev.Token, ev.Name = "ABC123", "Widget"
	hub.Publish(ev)

	select {
	case e := <-got:
		if e.Type != EventNamed || e.Name != "Widget" {
			t.Errorf("Watch delivered %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not deliver the event")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Watch() after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_DialFailure(t *testing.T) {
	err := Watch(context.Background(), "ws://127.0.0.1:1/ws", func(Event) {})
	if err == nil {
		t.Error("Watch() should fail when nothing listens")
	}
}

func TestServer_StartAndHealth(t *testing.T) {
	srv := NewServer(Config{Addr: "127.0.0.1:0"})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer srv.Shutdown(context.Background())

	if !strings.HasPrefix(srv.URL(), "ws://127.0.0.1:") || !strings.HasSuffix(srv.URL(), "/ws") {
		t.Errorf("URL() = %q", srv.URL())
	}

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(EventConnected, "s1")
	b := NewEvent(EventConnected, "s1")

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("event IDs should be unique and non-empty: %q %q", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	Discard.Publish(a)
}
