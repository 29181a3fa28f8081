package geo

import (
	"errors"
	"fmt"
	"math"
)

var ErrOutOfRange = errors.New("coordinates out of range")

// LatLng is a WGS84 coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Pair returns the coordinates in Leaflet's [lat, lng] order.
func (p LatLng) Pair() [2]float64 {
	return [2]float64{p.Lat, p.Lng}
}

func (p LatLng) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) ||
		p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: %v,%v", ErrOutOfRange, p.Lat, p.Lng)
	}
	return nil
}
