package workout

import (
	"fmt"
	"strconv"
	"time"

	"backend-mapty/internal/shared/geo"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var months = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

const idDigits = 10

// NewRunning builds a running workout. Inputs are trusted; the caller has
// already checked that distance, duration and cadence are positive.
func NewRunning(now time.Time, coords geo.LatLng, distance, duration, cadence float64) *Workout {
	w := newWorkout(now, KindRunning, coords, distance, duration)
	w.Running = &RunningDetails{
		Cadence: cadence,
		Pace:    CalcPace(duration, distance),
	}
	return w
}

// NewCycling builds a cycling workout. elevationGain may be negative.
func NewCycling(now time.Time, coords geo.LatLng, distance, duration, elevationGain float64) *Workout {
	w := newWorkout(now, KindCycling, coords, distance, duration)
	w.Cycling = &CyclingDetails{
		ElevationGain: elevationGain,
		Speed:         CalcSpeed(distance, duration),
	}
	return w
}

func newWorkout(now time.Time, kind Kind, coords geo.LatLng, distance, duration float64) *Workout {
	return &Workout{
		ID:          NewID(now),
		Kind:        kind,
		Date:        now,
		Coords:      coords,
		Distance:    distance,
		Duration:    duration,
		Description: Describe(kind, now),
	}
}

// CalcPace returns minutes per km.
func CalcPace(duration, distance float64) float64 {
	return duration / distance
}

// CalcSpeed returns km/h for a duration in minutes.
func CalcSpeed(distance, duration float64) float64 {
	return distance / (duration / 60)
}

// NewID keeps the last ten digits of the millisecond timestamp. Two workouts
// created in the same millisecond share an id.
func NewID(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > idDigits {
		ms = ms[len(ms)-idDigits:]
	}
	return ms
}

// Describe renders "Running on January 15" from the local month and day of date.
func Describe(kind Kind, date time.Time) string {
	title := cases.Title(language.English).String(string(kind))
	return fmt.Sprintf("%s on %s %d", title, months[date.Month()-1], date.Day())
}

func (w *Workout) Click() {
	w.Clicks++
}

func (w *Workout) Emoji() string {
	if w.Kind == KindRunning {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// Pace is zero for cycling workouts.
func (w *Workout) Pace() float64 {
	if w.Running == nil {
		return 0
	}
	return w.Running.Pace
}

// Speed is zero for running workouts.
func (w *Workout) Speed() float64 {
	if w.Cycling == nil {
		return 0
	}
	return w.Cycling.Speed
}

// Clone returns a deep copy, so callers never share the variant details.
func (w *Workout) Clone() *Workout {
	c := *w
	if w.Running != nil {
		running := *w.Running
		c.Running = &running
	}
	if w.Cycling != nil {
		cycling := *w.Cycling
		c.Cycling = &cycling
	}
	return &c
}
