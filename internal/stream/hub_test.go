package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("session-1")
	defer hub.Unregister(client)

	payload := []byte("hello")
	hub.Broadcast("session-1", payload)

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubReplaysHistory(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Broadcast("session-1", []byte("first"))
	hub.Broadcast("session-1", []byte("second"))
	hub.Broadcast("session-other", []byte("other"))

	client := hub.Register("session-1")
	defer hub.Unregister(client)

	for _, want := range []string{"first", "second"} {
		select {
		case msg := <-client.Send:
			if string(msg) != want {
				t.Fatalf("want %s got %s", want, msg)
			}
		default:
			t.Fatalf("expected %s in history", want)
		}
	}
	select {
	case msg := <-client.Send:
		t.Fatalf("unexpected extra message %s", msg)
	default:
	}

	hub.Forget("session-1")
	late := hub.Register("session-1")
	defer hub.Unregister(late)
	if len(late.Send) != 0 {
		t.Fatalf("expected empty history after forget")
	}
}

func TestHubHistoryBounded(t *testing.T) {
	hub := NewHub(nil, nil)
	for i := 0; i < maxHistory+10; i++ {
		hub.Broadcast("s", []byte("x"))
	}
	hub.mu.RLock()
	n := len(hub.history["s"])
	hub.mu.RUnlock()
	if n != maxHistory {
		t.Fatalf("expected bounded history, got %d", n)
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch != "mapty:abc:commands" {
		t.Fatalf("unexpected channel %s", ch)
	}
	if sessionIDFromChannel(ch) != "abc" {
		t.Fatalf("unexpected session id")
	}
	if sessionIDFromChannel("bad") != "" {
		t.Fatalf("expected empty session id")
	}
	if sessionIDFromChannel("other:abc:commands") != "" {
		t.Fatalf("expected empty session id for foreign prefix")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("session-2")
	hub.Unregister(client)
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestSessionPublisher(t *testing.T) {
	hub := NewHub(nil, nil)
	client := hub.Register("session-3")
	defer hub.Unregister(client)

	hub.Session("session-3").Publish([]byte("cmd"))
	if msg := <-client.Send; string(msg) != "cmd" {
		t.Fatalf("unexpected message %s", msg)
	}
}

func TestHubRedisAcrossInstances(t *testing.T) {
	s := miniredis.RunT(t)
	rdbA := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdbA.Close()
	rdbB := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdbB.Close()

	hubA := NewHub(rdbA, nil)
	defer hubA.Close()
	hubB := NewHub(rdbB, nil)
	defer hubB.Close()

	local := hubA.Register("session-redis")
	defer hubA.Unregister(local)
	remote := hubB.Register("session-redis")
	defer hubB.Unregister(remote)

	time.Sleep(20 * time.Millisecond)
	hubA.Broadcast("session-redis", []byte(`{"op":"ping"}`))

	for name, c := range map[string]*Client{"local": local, "remote": remote} {
		select {
		case msg := <-c.Send:
			if string(msg) != `{"op":"ping"}` {
				t.Fatalf("%s: unexpected message %s", name, msg)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("%s: timeout waiting for broadcast", name)
		}
	}

	select {
	case msg := <-local.Send:
		t.Fatalf("own redis echo must be skipped, got %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRedisIgnoresForeignPayload(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client, nil)
	defer hub.Close()
	ws := hub.Register("session-raw")
	defer hub.Unregister(ws)

	time.Sleep(20 * time.Millisecond)
	if err := client.Publish(context.Background(), redisChannel("session-raw"), "not-json").Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	select {
	case msg := <-ws.Send:
		t.Fatalf("unexpected message %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	hub := NewHub(client, nil)
	server.Close()
	defer hub.Close()

	clientNode := hub.Register("session-bad")
	defer hub.Unregister(clientNode)

	hub.Broadcast("session-bad", []byte("ping"))
	if msg := <-clientNode.Send; string(msg) != "ping" {
		t.Fatalf("local delivery must survive redis errors")
	}
}

func TestHubActivity(t *testing.T) {
	hub := NewHub(nil, nil)
	if clients, seen := hub.Activity("session-1"); clients != 0 || !seen.IsZero() {
		t.Fatalf("expected no activity for unknown session")
	}

	client := hub.Register("session-1")
	if clients, seen := hub.Activity("session-1"); clients != 1 || seen.IsZero() {
		t.Fatalf("expected one client, got %d", clients)
	}

	hub.Unregister(client)
	clients, left := hub.Activity("session-1")
	if clients != 0 || left.IsZero() {
		t.Fatalf("expected disconnect to be recorded")
	}
}

func TestHubForgetIdle(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Broadcast("idle", []byte("a"))
	hub.Broadcast("kept", []byte("b"))
	hub.Broadcast("watched", []byte("c"))
	watcher := hub.Register("watched")
	defer hub.Unregister(watcher)

	if forgotten := hub.ForgetIdle(time.Now().Add(-time.Minute), nil); len(forgotten) != 0 {
		t.Fatalf("expected recent histories kept, got %v", forgotten)
	}

	forgotten := hub.ForgetIdle(time.Now().Add(time.Minute), func(id string) bool { return id == "kept" })
	if len(forgotten) != 1 || forgotten[0] != "idle" {
		t.Fatalf("expected only the idle history dropped, got %v", forgotten)
	}

	for _, id := range []string{"kept", "watched"} {
		client := hub.Register(id)
		n := len(client.Send)
		hub.Unregister(client)
		if n != 1 {
			t.Fatalf("expected %s history kept, got %d", id, n)
		}
	}

	client := hub.Register("idle")
	defer hub.Unregister(client)
	if len(client.Send) != 0 {
		t.Fatalf("expected idle history forgotten")
	}
}
