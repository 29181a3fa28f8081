package db

import (
	"context"
	"fmt"
	"time"

	"backend-mapty/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	newPoolFn  = pgxpool.New
	pingPoolFn = func(ctx context.Context, pool *pgxpool.Pool) error { return pool.Ping(ctx) }
)

// ConnectPostgres opens and pings a pool. It returns (nil, nil) when no URL is
// configured so callers can fall back to the in-memory repository.
func ConnectPostgres(cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.PostgresURL == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := newPoolFn(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pingPoolFn(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS workouts (
	session_id       TEXT NOT NULL,
	id               TEXT NOT NULL,
	kind             TEXT NOT NULL,
	recorded_at      TIMESTAMPTZ NOT NULL,
	lat              DOUBLE PRECISION NOT NULL,
	lng              DOUBLE PRECISION NOT NULL,
	distance_km      DOUBLE PRECISION NOT NULL,
	duration_min     DOUBLE PRECISION NOT NULL,
	cadence_spm      DOUBLE PRECISION,
	pace_min_km      DOUBLE PRECISION,
	elevation_gain_m DOUBLE PRECISION,
	speed_kmh        DOUBLE PRECISION,
	description      TEXT NOT NULL,
	clicks           INTEGER NOT NULL DEFAULT 0,
	seq              BIGSERIAL,
	PRIMARY KEY (session_id, id)
)`

// EnsureSchema creates the workouts table when it is missing.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create workouts table: %w", err)
	}
	return nil
}
