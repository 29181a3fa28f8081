package stream

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func allow(c *fiber.Ctx) error { return c.Next() }

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil, nil), allow)

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/session-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Fatalf("expected 426 for non-websocket request, got %d", resp.StatusCode)
	}
}

func TestStreamHandlersGuardRejects(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil, nil), func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	})

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/session-1", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
	}
}

func serve(t *testing.T, hub *Hub) string {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), hub, allow)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "ws://" + ln.Addr().String()
}

func TestStreamHandlersWebsocketReplayAndBroadcast(t *testing.T) {
	hub := NewHub(nil, nil)
	base := serve(t, hub)

	hub.Broadcast("session-1", []byte(`{"op":"map.create"}`))

	conn, _, err := websocket.DefaultDialer.Dial(base+"/stream/ws/session-1", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != `{"op":"map.create"}` {
		t.Fatalf("expected replayed history, got %s", msg)
	}

	hub.Broadcast("session-1", []byte("hello"))
	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != "hello" {
		t.Fatalf("unexpected message %s", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("client")); err != nil {
		t.Fatalf("write error: %v", err)
	}
}

func TestStreamHandlersClientDisconnect(t *testing.T) {
	hub := NewHub(nil, nil)
	base := serve(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/stream/ws/session-2", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	waitClients(t, hub, "session-2", 1)

	conn.Close()
	waitClients(t, hub, "session-2", 0)
	hub.Broadcast("session-2", []byte("bye"))
}

func waitClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.clients[sessionID])
		hub.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients for %s", want, sessionID)
}
