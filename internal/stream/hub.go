package stream

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sendBuffer = 64
	// maxHistory bounds the per-session replay log handed to late subscribers.
	maxHistory = 1024
)

// Hub fans session commands out to websocket clients. Every command is kept in
// a per-session history so a browser that connects after the map was created
// still receives the full picture. With Redis configured, commands also reach
// clients held by other instances.
type Hub struct {
	redis   *redis.Client
	logger  *zap.Logger
	origin  string
	clients map[string]map[*Client]struct{}
	history map[string][][]byte
	seen    map[string]time.Time
	now     func() time.Time
	mu      sync.RWMutex
	cancel  context.CancelFunc
	done    chan struct{}
}

type Client struct {
	SessionID string
	Send      chan []byte
}

type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

func NewHub(redisClient *redis.Client, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		redis:   redisClient,
		logger:  logger.Named("stream"),
		origin:  uuid.NewString(),
		clients: map[string]map[*Client]struct{}{},
		history: map[string][][]byte{},
		seen:    map[string]time.Time{},
		now:     time.Now,
	}

	if redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		h.done = make(chan struct{})
		ready := make(chan struct{})
		go h.subscribeRedis(ctx, ready)
		<-ready
	}
	return h
}

// Register attaches a client and queues the session's history on it.
func (h *Hub) Register(sessionID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	past := h.history[sessionID]
	client := &Client{
		SessionID: sessionID,
		Send:      make(chan []byte, len(past)+sendBuffer),
	}
	for _, msg := range past {
		client.Send <- msg
	}

	if h.clients[sessionID] == nil {
		h.clients[sessionID] = map[*Client]struct{}{}
	}
	h.clients[sessionID][client] = struct{}{}
	h.seen[sessionID] = h.now()
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionClients, ok := h.clients[client.SessionID]; ok {
		if _, registered := sessionClients[client]; !registered {
			return
		}
		delete(sessionClients, client)
		if len(sessionClients) == 0 {
			delete(h.clients, client.SessionID)
		}
		h.seen[client.SessionID] = h.now()
		close(client.Send)
	}
}

// Broadcast delivers payload to local clients and, when configured, to Redis.
func (h *Hub) Broadcast(sessionID string, payload []byte) {
	h.deliver(sessionID, payload)

	if h.redis != nil {
		msg, _ := json.Marshal(envelope{Origin: h.origin, Payload: payload})
		err := h.redis.Publish(context.Background(), redisChannel(sessionID), msg).Err()
		if err != nil {
			h.logger.Warn("redis publish failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
}

// Forget drops the replay history of a finished session.
func (h *Hub) Forget(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.history, sessionID)
	delete(h.seen, sessionID)
}

// Activity reports how many local clients follow a session and when the
// session last saw a command, a connect or a disconnect.
func (h *Hub) Activity(sessionID string) (clients int, lastSeen time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID]), h.seen[sessionID]
}

// ForgetIdle drops the history of every session without local clients that
// has been quiet since before cutoff, unless keep claims it. Histories of
// sessions owned by other instances only ever leave this way.
func (h *Hub) ForgetIdle(cutoff time.Time, keep func(sessionID string) bool) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var forgotten []string
	for sessionID := range h.history {
		if len(h.clients[sessionID]) > 0 || !h.seen[sessionID].Before(cutoff) {
			continue
		}
		if keep != nil && keep(sessionID) {
			continue
		}
		delete(h.history, sessionID)
		delete(h.seen, sessionID)
		forgotten = append(forgotten, sessionID)
	}
	return forgotten
}

// Session returns a publisher bound to one session.
func (h *Hub) Session(sessionID string) *SessionPublisher {
	return &SessionPublisher{hub: h, sessionID: sessionID}
}

// Close stops the Redis subscription.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}
}

func (h *Hub) deliver(sessionID string, payload []byte) {
	h.mu.Lock()
	past := append(h.history[sessionID], payload)
	if len(past) > maxHistory {
		past = past[len(past)-maxHistory:]
	}
	h.history[sessionID] = past
	h.seen[sessionID] = h.now()

	clients := make([]*Client, 0, len(h.clients[sessionID]))
	for client := range h.clients[sessionID] {
		clients = append(clients, client)
	}

	for _, client := range clients {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("dropping command for slow client", zap.String("session_id", sessionID))
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribeRedis(ctx context.Context, ready chan<- struct{}) {
	defer close(h.done)

	pubsub := h.redis.PSubscribe(ctx, redisChannel("*"))
	defer pubsub.Close()
	ch := pubsub.Channel()
	close(ready)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("bad redis payload", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if env.Origin == h.origin {
				continue
			}
			if sessionID := sessionIDFromChannel(msg.Channel); sessionID != "" {
				h.deliver(sessionID, []byte(env.Payload))
			}
		}
	}
}

func redisChannel(sessionID string) string {
	return "mapty:" + sessionID + ":commands"
}

func sessionIDFromChannel(ch string) string {
	// mapty:{session}:commands
	const prefix = "mapty:"
	const suffix = ":commands"
	if len(ch) <= len(prefix)+len(suffix) || !strings.HasPrefix(ch, prefix) || !strings.HasSuffix(ch, suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}

type SessionPublisher struct {
	hub       *Hub
	sessionID string
}

func (p *SessionPublisher) Publish(payload []byte) {
	p.hub.Broadcast(p.sessionID, payload)
}
