package workout

import (
	"time"

	"backend-mapty/internal/shared/geo"
)

type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

func (k Kind) Valid() bool {
	return k == KindRunning || k == KindCycling
}

// Workout is one recorded activity. Exactly one of Running and Cycling is set,
// matching Kind.
type Workout struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id,omitempty"`
	Kind        Kind            `json:"type"`
	Date        time.Time       `json:"date"`
	Coords      geo.LatLng      `json:"coords"`
	Distance    float64         `json:"distance"`
	Duration    float64         `json:"duration"`
	Description string          `json:"description"`
	Clicks      int             `json:"clicks"`
	Running     *RunningDetails `json:"running,omitempty"`
	Cycling     *CyclingDetails `json:"cycling,omitempty"`
}

type RunningDetails struct {
	Cadence float64 `json:"cadence"`
	Pace    float64 `json:"pace"`
}

type CyclingDetails struct {
	ElevationGain float64 `json:"elevation_gain"`
	Speed         float64 `json:"speed"`
}
