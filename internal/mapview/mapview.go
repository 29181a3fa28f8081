// Package mapview is the map-rendering port used by the workout controller.
// It mirrors the small slice of Leaflet the app needs: a map view with a tile
// layer and click events, markers with popups, and animated panning.
package mapview

import "backend-mapty/internal/shared/geo"

type Provider interface {
	NewMap(center geo.LatLng, zoom int) Map
}

type Map interface {
	AddTileLayer(urlTemplate, attribution string)
	OnClick(fn func(ClickEvent))
	AddMarker(at geo.LatLng) Marker
	SetView(center geo.LatLng, zoom int, opts ViewOptions)
}

// Marker calls chain the way Leaflet's do.
type Marker interface {
	BindPopup(opts PopupOptions) Marker
	SetPopupContent(content string) Marker
	OpenPopup() Marker
}

type ClickEvent struct {
	LatLng geo.LatLng `json:"latlng"`
}

type PopupOptions struct {
	MaxWidth     int    `json:"maxWidth"`
	MinWidth     int    `json:"minWidth"`
	AutoClose    bool   `json:"autoClose"`
	CloseOnClick bool   `json:"closeOnClick"`
	ClassName    string `json:"className"`
}

type PanOptions struct {
	Duration float64 `json:"duration"`
}

type ViewOptions struct {
	Animate bool       `json:"animate"`
	Pan     PanOptions `json:"pan"`
}
