package workout

import (
	"context"
	"fmt"

	"backend-mapty/internal/db"
)

type PostgresRepository struct {
	db db.Querier
}

func NewPostgresRepository(q db.Querier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

func (r *PostgresRepository) Save(ctx context.Context, w *Workout) error {
	var cadence, pace, elevation, speed *float64
	if w.Running != nil {
		cadence, pace = &w.Running.Cadence, &w.Running.Pace
	}
	if w.Cycling != nil {
		elevation, speed = &w.Cycling.ElevationGain, &w.Cycling.Speed
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO workouts (session_id, id, kind, recorded_at, lat, lng, distance_km, duration_min,
		                      cadence_spm, pace_min_km, elevation_gain_m, speed_kmh, description, clicks)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, w.SessionID, w.ID, string(w.Kind), w.Date, w.Coords.Lat, w.Coords.Lng, w.Distance, w.Duration,
		cadence, pace, elevation, speed, w.Description, w.Clicks)
	if err != nil {
		return fmt.Errorf("insert workout %s: %w", w.ID, err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, sessionID string) ([]*Workout, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, kind, recorded_at, lat, lng, distance_km, duration_min,
		       COALESCE(cadence_spm,0), COALESCE(pace_min_km,0), COALESCE(elevation_gain_m,0), COALESCE(speed_kmh,0),
		       description, clicks
		FROM workouts WHERE session_id=$1
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []*Workout
	for rows.Next() {
		var (
			w                               Workout
			kind                            string
			cadence, pace, elevation, speed float64
		)
		if err := rows.Scan(&w.ID, &w.SessionID, &kind, &w.Date, &w.Coords.Lat, &w.Coords.Lng,
			&w.Distance, &w.Duration, &cadence, &pace, &elevation, &speed, &w.Description, &w.Clicks); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		w.Kind = Kind(kind)
		switch w.Kind {
		case KindRunning:
			w.Running = &RunningDetails{Cadence: cadence, Pace: pace}
		case KindCycling:
			w.Cycling = &CyclingDetails{ElevationGain: elevation, Speed: speed}
		default:
			return nil, fmt.Errorf("workout %s: unknown kind %q", w.ID, kind)
		}
		workouts = append(workouts, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}
	return workouts, nil
}

func (r *PostgresRepository) RecordClick(ctx context.Context, sessionID, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE workouts SET clicks = clicks + 1
		WHERE session_id=$1 AND id=$2
	`, sessionID, id)
	if err != nil {
		return fmt.Errorf("record click on %s: %w", id, err)
	}
	return nil
}
