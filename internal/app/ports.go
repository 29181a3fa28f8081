package app

import (
	"context"
	"errors"

	"backend-mapty/internal/shared/geo"
)

var ErrPositionUnavailable = errors.New("position unavailable")

// Geolocator performs one position request. There is no retry and no
// cancellation beyond what ctx offers.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (geo.LatLng, error)
}

type GeolocatorFunc func(ctx context.Context) (geo.LatLng, error)

func (f GeolocatorFunc) CurrentPosition(ctx context.Context) (geo.LatLng, error) {
	return f(ctx)
}

// FixedPosition answers with a position the browser already resolved.
type FixedPosition geo.LatLng

func (p FixedPosition) CurrentPosition(context.Context) (geo.LatLng, error) {
	return geo.LatLng(p), nil
}

// PositionUnavailable reports a denied or missing geolocation API.
type PositionUnavailable struct {
	Reason string
}

func (p PositionUnavailable) CurrentPosition(context.Context) (geo.LatLng, error) {
	if p.Reason == "" {
		return geo.LatLng{}, ErrPositionUnavailable
	}
	return geo.LatLng{}, errors.Join(ErrPositionUnavailable, errors.New(p.Reason))
}

// UI is the page surface the controller drives: the workout form, the list
// of rendered workouts and blocking alerts.
type UI interface {
	ShowForm()
	FocusDistance()
	HideForm()
	ToggleElevationField()
	InsertWorkout(html string)
	Alert(message string)
}
