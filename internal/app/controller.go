package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"backend-mapty/internal/mapview"
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	AlertPosition     = "Could not get user's position! 🚫"
	AlertInvalidInput = "Inputs have to be positive numbers!"
)

var (
	ErrGeolocation  = errors.New("geolocation failed")
	ErrInvalidInput = errors.New("invalid workout input")
	ErrFormHidden   = errors.New("workout form is not open")
	ErrMapNotLoaded = errors.New("map is not loaded")
)

type Deps struct {
	SessionID       string
	Geolocator      Geolocator
	Maps            mapview.Provider
	UI              UI
	Repository      workout.Repository
	Clock           func() time.Time
	Logger          *zap.Logger
	ZoomLevel       int
	TileURL         string
	TileAttribution string
}

// Controller runs one page session: it acquires the position, renders the map,
// walks the workout form between hidden and visible, and keeps the session's
// workouts in creation order. Every operation runs under one lock, so
// operations never interleave.
type Controller struct {
	mu sync.Mutex

	sessionID       string
	geolocator      Geolocator
	maps            mapview.Provider
	ui              UI
	repo            workout.Repository
	now             func() time.Time
	logger          *zap.Logger
	zoom            int
	tileURL         string
	tileAttribution string

	m         mapview.Map
	lastClick *mapview.ClickEvent
	form      form
	workouts  []*workout.Workout
}

func New(deps Deps) *Controller {
	c := &Controller{
		sessionID:       deps.SessionID,
		geolocator:      deps.Geolocator,
		maps:            deps.Maps,
		ui:              deps.UI,
		repo:            deps.Repository,
		now:             deps.Clock,
		logger:          deps.Logger,
		zoom:            deps.ZoomLevel,
		tileURL:         deps.TileURL,
		tileAttribution: deps.TileAttribution,
		form:            form{state: FormHidden, values: FormInput{Type: string(workout.KindRunning)}},
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.Named("app").With(zap.String("session_id", c.sessionID))
	if c.repo == nil {
		c.repo = workout.NewMemoryRepository()
	}
	return c
}

// Start restores stored workouts into the list, then asks for the position
// once. A failed lookup alerts the user and leaves the map unrendered for the
// rest of the session.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.restore(ctx); err != nil {
		c.logger.Warn("restoring workouts failed", zap.Error(err))
	}

	pos, err := c.geolocator.CurrentPosition(ctx)
	if err != nil {
		c.logger.Info("position unavailable", zap.Error(err))
		c.ui.Alert(AlertPosition)
		return fmt.Errorf("%w: %w", ErrGeolocation, err)
	}

	c.loadMap(pos)
	return nil
}

func (c *Controller) restore(ctx context.Context) error {
	stored, err := c.repo.List(ctx, c.sessionID)
	if err != nil {
		return err
	}
	for _, w := range stored {
		c.workouts = append(c.workouts, w)
		c.renderWorkout(w)
	}
	return nil
}

func (c *Controller) loadMap(pos geo.LatLng) {
	c.m = c.maps.NewMap(pos, c.zoom)
	c.m.AddTileLayer(c.tileURL, c.tileAttribution)
	c.m.OnClick(c.showForm)

	for _, w := range c.workouts {
		c.renderWorkoutMarker(w)
	}
	c.logger.Debug("map loaded", zap.Float64("lat", pos.Lat), zap.Float64("lng", pos.Lng))
}

// showForm keeps only the latest click; the next submit pins the workout there.
func (c *Controller) showForm(ev mapview.ClickEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastClick = &ev
	c.form.show()
	c.ui.ShowForm()
	c.ui.FocusDistance()
}

func (c *Controller) ToggleElevationField() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.elevationVisible = !c.form.elevationVisible
	c.ui.ToggleElevationField()
}

func (c *Controller) CancelForm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hideForm()
}

// NewWorkout validates the submitted fields and records a workout at the last
// clicked position. Invalid input alerts the user and leaves the form open
// with its values.
func (c *Controller) NewWorkout(ctx context.Context, in FormInput) (*workout.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.form.state != FormVisible || c.lastClick == nil {
		return nil, ErrFormHidden
	}
	c.form.values = in

	distance := toNumber(in.Distance)
	duration := toNumber(in.Duration)
	coords := c.lastClick.LatLng

	var w *workout.Workout
	switch workout.Kind(in.Type) {
	case workout.KindRunning:
		cadence := toNumber(in.Cadence)
		if !allFinite(distance, duration, cadence) || !allPositive(distance, duration, cadence) {
			return nil, c.rejectInput(in)
		}
		w = workout.NewRunning(c.now(), coords, distance, duration, cadence)
	case workout.KindCycling:
		elevation := toNumber(in.Elevation)
		if !allFinite(distance, duration, elevation) || !allPositive(distance, duration) {
			return nil, c.rejectInput(in)
		}
		w = workout.NewCycling(c.now(), coords, distance, duration, elevation)
	default:
		return nil, c.rejectInput(in)
	}
	w.SessionID = c.sessionID

	c.workouts = append(c.workouts, w)
	if err := c.repo.Save(ctx, w); err != nil {
		c.logger.Error("persisting workout failed", zap.String("workout_id", w.ID), zap.Error(err))
	}

	c.renderWorkoutMarker(w)
	c.renderWorkout(w)
	c.hideForm()

	c.logger.Info("workout recorded",
		zap.String("workout_id", w.ID),
		zap.String("type", string(w.Kind)),
		zap.Float64("distance_km", w.Distance),
		zap.Float64("duration_min", w.Duration))
	return w.Clone(), nil
}

func (c *Controller) rejectInput(in FormInput) error {
	c.ui.Alert(AlertInvalidInput)
	c.logger.Debug("rejected workout input", zap.String("type", in.Type))
	return fmt.Errorf("%w: %s", ErrInvalidInput, AlertInvalidInput)
}

func (c *Controller) hideForm() {
	c.form.hide()
	c.ui.HideForm()
}

func (c *Controller) renderWorkoutMarker(w *workout.Workout) {
	if c.m == nil {
		return
	}
	c.m.AddMarker(w.Coords).
		BindPopup(PopupOptions(w)).
		SetPopupContent(PopupContent(w)).
		OpenPopup()
}

func (c *Controller) renderWorkout(w *workout.Workout) {
	html, err := RenderListEntry(w)
	if err != nil {
		c.logger.Error("rendering workout failed", zap.String("workout_id", w.ID), zap.Error(err))
		return
	}
	c.ui.InsertWorkout(html)
}

// MoveToPopup pans to the workout with the given id and counts the click.
// Unknown or empty ids are ignored.
func (c *Controller) MoveToPopup(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		return false
	}
	w, ok := lo.Find(c.workouts, func(w *workout.Workout) bool { return w.ID == id })
	if !ok {
		return false
	}

	if c.m != nil {
		c.m.SetView(w.Coords, c.zoom, mapview.ViewOptions{
			Animate: true,
			Pan:     mapview.PanOptions{Duration: 1},
		})
	}
	w.Click()
	if err := c.repo.RecordClick(ctx, c.sessionID, w.ID); err != nil {
		c.logger.Warn("persisting click failed", zap.String("workout_id", w.ID), zap.Error(err))
	}
	return true
}

// Workouts returns copies in creation order.
func (c *Controller) Workouts() []*workout.Workout {
	c.mu.Lock()
	defer c.mu.Unlock()

	return lo.Map(c.workouts, func(w *workout.Workout, _ int) *workout.Workout { return w.Clone() })
}

func (c *Controller) Form() FormView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.view()
}

func (c *Controller) MapLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m != nil
}

func (c *Controller) SessionID() string {
	return c.sessionID
}
