package session

import "backend-mapty/internal/shared/geo"

// Coordinates is the browser's GeolocationCoordinates, trimmed to what the map needs.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) LatLng() geo.LatLng {
	return geo.LatLng{Lat: c.Latitude, Lng: c.Longitude}
}

// OpenRequest carries the outcome of the browser's single position request:
// either Position or Error is set.
type OpenRequest struct {
	Position    *Coordinates `json:"position"`
	Error       string       `json:"error"`
	ResumeToken string       `json:"resume_token"`
}

type Opened struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	MapLoaded bool   `json:"map_loaded"`
}

type SelectResult struct {
	Found bool `json:"found"`
}
