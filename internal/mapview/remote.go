package mapview

import (
	"encoding/json"
	"strconv"
	"sync"

	"backend-mapty/internal/shared/geo"

	"go.uber.org/zap"
)

// Command ops understood by the browser client.
const (
	OpMapCreate    = "map.create"
	OpMapTiles     = "map.tiles"
	OpMapView      = "map.view"
	OpMarkerAdd    = "marker.add"
	OpPopupBind    = "marker.popup.bind"
	OpPopupContent = "marker.popup.content"
	OpPopupOpen    = "marker.popup.open"
)

type Command struct {
	Op          string        `json:"op"`
	MapID       string        `json:"map_id,omitempty"`
	MarkerID    string        `json:"marker_id,omitempty"`
	Center      *[2]float64   `json:"center,omitempty"`
	Zoom        int           `json:"zoom,omitempty"`
	URL         string        `json:"url,omitempty"`
	Attribution string        `json:"attribution,omitempty"`
	Content     string        `json:"content,omitempty"`
	Popup       *PopupOptions `json:"popup,omitempty"`
	View        *ViewOptions  `json:"view,omitempty"`
}

// Publisher delivers encoded commands to whoever renders the session's map.
type Publisher interface {
	Publish(payload []byte)
}

// Remote renders maps in a browser by publishing one command per Leaflet call.
type Remote struct {
	pub    Publisher
	logger *zap.Logger
}

func NewRemote(pub Publisher, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{pub: pub, logger: logger.Named("mapview")}
}

func (r *Remote) NewMap(center geo.LatLng, zoom int) Map {
	m := &RemoteMap{pub: r.pub, logger: r.logger, id: "map"}
	m.send(Command{Op: OpMapCreate, Center: pair(center), Zoom: zoom})
	return m
}

type RemoteMap struct {
	pub     Publisher
	logger  *zap.Logger
	id      string
	mu      sync.Mutex
	clicks  []func(ClickEvent)
	markers int
}

func (m *RemoteMap) AddTileLayer(urlTemplate, attribution string) {
	m.send(Command{Op: OpMapTiles, URL: urlTemplate, Attribution: attribution})
}

func (m *RemoteMap) OnClick(fn func(ClickEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, fn)
}

// Dispatch hands a click reported by the browser to every registered listener.
func (m *RemoteMap) Dispatch(ev ClickEvent) {
	m.mu.Lock()
	listeners := append([]func(ClickEvent){}, m.clicks...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

func (m *RemoteMap) AddMarker(at geo.LatLng) Marker {
	m.mu.Lock()
	m.markers++
	id := "marker-" + strconv.Itoa(m.markers)
	m.mu.Unlock()

	m.send(Command{Op: OpMarkerAdd, MarkerID: id, Center: pair(at)})
	return &remoteMarker{m: m, id: id}
}

func (m *RemoteMap) SetView(center geo.LatLng, zoom int, opts ViewOptions) {
	m.send(Command{Op: OpMapView, Center: pair(center), Zoom: zoom, View: &opts})
}

func (m *RemoteMap) send(cmd Command) {
	cmd.MapID = m.id
	payload, err := json.Marshal(cmd)
	if err != nil {
		m.logger.Error("encoding map command failed",
			zap.String("op", cmd.Op),
			zap.String("marker_id", cmd.MarkerID),
			zap.Error(err))
		return
	}
	m.pub.Publish(payload)
}

type remoteMarker struct {
	m  *RemoteMap
	id string
}

func (mk *remoteMarker) BindPopup(opts PopupOptions) Marker {
	mk.m.send(Command{Op: OpPopupBind, MarkerID: mk.id, Popup: &opts})
	return mk
}

func (mk *remoteMarker) SetPopupContent(content string) Marker {
	mk.m.send(Command{Op: OpPopupContent, MarkerID: mk.id, Content: content})
	return mk
}

func (mk *remoteMarker) OpenPopup() Marker {
	mk.m.send(Command{Op: OpPopupOpen, MarkerID: mk.id})
	return mk
}

func pair(p geo.LatLng) *[2]float64 {
	v := p.Pair()
	return &v
}
