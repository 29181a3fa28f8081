package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"backend-mapty/internal/app"
	"backend-mapty/internal/auth"
	"backend-mapty/internal/mapview"
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/stream"
	"backend-mapty/internal/workout"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

type Options struct {
	ZoomLevel       int
	TileURL         string
	TileAttribution string
	// IdleTimeout is how long a session without stream clients or requests
	// survives before it is evicted.
	IdleTimeout time.Duration
}

// Session is one browser page session and the controller that serves it.
type Session struct {
	ID         string
	Controller *app.Controller
	maps       *capturingProvider

	expiresAt  time.Time
	lastActive time.Time
}

// Map returns the rendered map, or false while geolocation has not produced one.
func (s *Session) Map() (*mapview.RemoteMap, bool) {
	m := s.maps.current()
	return m, m != nil
}

type Service struct {
	hub    *stream.Hub
	repo   workout.Repository
	issuer *auth.Issuer
	opts   Options
	logger *zap.Logger
	newID  func() string
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(hub *stream.Hub, repo workout.Repository, issuer *auth.Issuer, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if repo == nil {
		repo = workout.NewMemoryRepository()
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	return &Service{
		hub:      hub,
		repo:     repo,
		issuer:   issuer,
		opts:     opts,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// Open starts a session from the browser's position result. With a resume
// token the earlier session id is reused and its stored workouts come back.
// A failed position lookup still opens the session; the map just stays
// unloaded and the alert goes out on the stream.
func (s *Service) Open(ctx context.Context, req OpenRequest) (Opened, error) {
	id := s.newID()
	if req.ResumeToken != "" {
		resumed, err := s.issuer.Verify(req.ResumeToken)
		if err != nil {
			return Opened{}, err
		}
		id = resumed
		s.hub.Forget(id)
	}

	pub := s.hub.Session(id)
	maps := &capturingProvider{remote: mapview.NewRemote(pub, s.logger)}
	ctrl := app.New(app.Deps{
		SessionID:       id,
		Geolocator:      geolocator(req),
		Maps:            maps,
		UI:              &streamUI{pub: pub, logger: s.logger},
		Repository:      s.repo,
		Logger:          s.logger,
		ZoomLevel:       s.opts.ZoomLevel,
		TileURL:         s.opts.TileURL,
		TileAttribution: s.opts.TileAttribution,
	})

	if err := ctrl.Start(ctx); err != nil && !errors.Is(err, app.ErrGeolocation) {
		return Opened{}, fmt.Errorf("start session %s: %w", id, err)
	}

	token, err := s.issuer.Sign(id)
	if err != nil {
		return Opened{}, fmt.Errorf("sign session token: %w", err)
	}

	now := s.now()
	s.mu.Lock()
	s.sessions[id] = &Session{
		ID:         id,
		Controller: ctrl,
		maps:       maps,
		expiresAt:  now.Add(s.issuer.TTL()),
		lastActive: now,
	}
	s.mu.Unlock()

	s.logger.Info("session opened",
		zap.String("session_id", id),
		zap.Bool("resumed", req.ResumeToken != ""),
		zap.Bool("map_loaded", ctrl.MapLoaded()))
	return Opened{SessionID: id, Token: token, MapLoaded: ctrl.MapLoaded()}, nil
}

// Get returns a live session and marks it active.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastActive = s.now()
	return sess, nil
}

// Click reports a map click from the browser.
func (s *Service) Click(id string, at geo.LatLng) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	m, ok := sess.Map()
	if !ok {
		return app.ErrMapNotLoaded
	}
	m.Dispatch(mapview.ClickEvent{LatLng: at})
	return nil
}

// Close ends a session. Stored workouts stay in the repository for a later resume.
func (s *Service) Close(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.hub.Forget(id)
	s.logger.Info("session closed", zap.String("session_id", id))
	return nil
}

type sessionState struct {
	sess       *Session
	expiresAt  time.Time
	lastActive time.Time
}

// Sweep evicts sessions whose token has expired and sessions that have had
// neither a stream client nor a request for the idle timeout. Stream histories
// left behind by sessions of other instances are dropped on the same timeout.
func (s *Service) Sweep(now time.Time) []string {
	s.mu.RLock()
	states := make([]sessionState, 0, len(s.sessions))
	for _, sess := range s.sessions {
		states = append(states, sessionState{sess: sess, expiresAt: sess.expiresAt, lastActive: sess.lastActive})
	}
	s.mu.RUnlock()

	var evicted []string
	for _, st := range states {
		expired := !now.Before(st.expiresAt)
		clients, seen := s.hub.Activity(st.sess.ID)
		last := st.lastActive
		if seen.After(last) {
			last = seen
		}
		idle := clients == 0 && now.Sub(last) >= s.opts.IdleTimeout
		if !expired && !idle {
			continue
		}
		if s.evict(st.sess) {
			evicted = append(evicted, st.sess.ID)
			s.logger.Info("session evicted",
				zap.String("session_id", st.sess.ID),
				zap.Bool("expired", expired))
		}
	}

	s.mu.RLock()
	live := make(map[string]struct{}, len(s.sessions))
	for id := range s.sessions {
		live[id] = struct{}{}
	}
	s.mu.RUnlock()

	orphans := s.hub.ForgetIdle(now.Add(-s.opts.IdleTimeout), func(id string) bool {
		_, ok := live[id]
		return ok
	})
	if len(orphans) > 0 {
		s.logger.Debug("dropped idle stream histories", zap.Int("count", len(orphans)))
	}
	return evicted
}

// evict removes sess unless a resume has replaced it in the meantime.
func (s *Service) evict(sess *Session) bool {
	s.mu.Lock()
	current, ok := s.sessions[sess.ID]
	if !ok || current != sess {
		s.mu.Unlock()
		return false
	}
	delete(s.sessions, sess.ID)
	s.mu.Unlock()

	s.hub.Forget(sess.ID)
	return true
}

// Run sweeps on every tick until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}

// Len reports how many sessions are live.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func geolocator(req OpenRequest) app.Geolocator {
	if req.Position != nil {
		return app.FixedPosition(req.Position.LatLng())
	}
	return app.PositionUnavailable{Reason: req.Error}
}

// capturingProvider keeps hold of the map it renders so browser clicks can be
// dispatched to it.
type capturingProvider struct {
	remote *mapview.Remote

	mu sync.Mutex
	m  *mapview.RemoteMap
}

func (p *capturingProvider) NewMap(center geo.LatLng, zoom int) mapview.Map {
	m := p.remote.NewMap(center, zoom)
	if rm, ok := m.(*mapview.RemoteMap); ok {
		p.mu.Lock()
		p.m = rm
		p.mu.Unlock()
	}
	return m
}

func (p *capturingProvider) current() *mapview.RemoteMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m
}
