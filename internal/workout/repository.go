package workout

import (
	"context"
	"sync"
)

// Repository mirrors a session's workouts so a reopened session can restore
// them. Lists come back in creation order.
type Repository interface {
	Save(ctx context.Context, w *Workout) error
	List(ctx context.Context, sessionID string) ([]*Workout, error)
	RecordClick(ctx context.Context, sessionID, id string) error
}

type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]Workout
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: map[string][]Workout{}}
}

func (r *MemoryRepository) Save(_ context.Context, w *Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[w.SessionID] = append(r.sessions[w.SessionID], *w.Clone())
	return nil
}

func (r *MemoryRepository) List(_ context.Context, sessionID string) ([]*Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.sessions[sessionID]
	out := make([]*Workout, 0, len(stored))
	for i := range stored {
		out = append(out, stored[i].Clone())
	}
	return out, nil
}

func (r *MemoryRepository) RecordClick(_ context.Context, sessionID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.sessions[sessionID]
	for i := range stored {
		if stored[i].ID == id {
			stored[i].Clicks++
			return nil
		}
	}
	return nil
}
