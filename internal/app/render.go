package app

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"backend-mapty/internal/mapview"
	"backend-mapty/internal/workout"

	"github.com/shopspring/decimal"
)

var popupOptions = mapview.PopupOptions{
	MaxWidth:     250,
	MinWidth:     100,
	AutoClose:    false,
	CloseOnClick: false,
}

var listEntry = template.Must(template.New("workout").Funcs(template.FuncMap{
	"num":   formatNumber,
	"fixed": formatFixed,
}).Parse(`<li class="workout workout--{{.Kind}}" data-id="{{.ID}}">
  <h2 class="workout__title">{{.Description}}</h2>
  <div class="workout__details">
    <span class="workout__icon">{{.Emoji}}</span>
    <span class="workout__value">{{num .Distance}}</span>
    <span class="workout__unit">km</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">⏱</span>
    <span class="workout__value">{{num .Duration}}</span>
    <span class="workout__unit">min</span>
  </div>
{{- with .Running}}
  <div class="workout__details">
    <span class="workout__icon">⚡️</span>
    <span class="workout__value">{{fixed .Pace}}</span>
    <span class="workout__unit">min/km</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">🦶🏼</span>
    <span class="workout__value">{{num .Cadence}}</span>
    <span class="workout__unit">spm</span>
  </div>
{{- end}}
{{- with .Cycling}}
  <div class="workout__details">
    <span class="workout__icon">⚡️</span>
    <span class="workout__value">{{fixed .Speed}}</span>
    <span class="workout__unit">km/h</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">🖼️</span>
    <span class="workout__value">{{num .ElevationGain}}</span>
    <span class="workout__unit">m</span>
  </div>
{{- end}}
</li>`))

// RenderListEntry renders the list item shown for one workout.
func RenderListEntry(w *workout.Workout) (string, error) {
	var buf bytes.Buffer
	if err := listEntry.Execute(&buf, w); err != nil {
		return "", fmt.Errorf("render workout %s: %w", w.ID, err)
	}
	return buf.String(), nil
}

func PopupContent(w *workout.Workout) string {
	return w.Emoji() + " " + w.Description
}

func PopupOptions(w *workout.Workout) mapview.PopupOptions {
	opts := popupOptions
	opts.ClassName = string(w.Kind) + "-popup"
	return opts
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFixed rounds the exact binary value, so 2.9/2 (1.4499...) gives "1.4".
func formatFixed(v float64) string {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 30, 64))
	if err != nil {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return d.StringFixed(1)
}
