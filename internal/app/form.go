package app

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type FormState string

const (
	FormHidden  FormState = "hidden"
	FormVisible FormState = "visible"
)

// FormInput carries the raw field values exactly as typed.
type FormInput struct {
	Type      string `json:"type" form:"type"`
	Distance  string `json:"distance" form:"distance"`
	Duration  string `json:"duration" form:"duration"`
	Cadence   string `json:"cadence" form:"cadence"`
	Elevation string `json:"elevation" form:"elevation"`
}

type FormView struct {
	State            FormState `json:"state"`
	Values           FormInput `json:"values"`
	ElevationVisible bool      `json:"elevation_visible"`
}

type form struct {
	state            FormState
	values           FormInput
	elevationVisible bool
}

func (f *form) show() {
	f.state = FormVisible
}

// hide clears every field; the selected type and visible row stay as they are.
func (f *form) hide() {
	f.state = FormHidden
	f.values = FormInput{Type: f.values.Type}
}

func (f *form) view() FormView {
	return FormView{State: f.state, Values: f.values, ElevationVisible: f.elevationVisible}
}

// toNumber converts a field the way a browser's unary plus does: blank is 0,
// anything unparsable is NaN.
func toNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func allFinite(values ...float64) bool {
	return lo.EveryBy(values, func(v float64) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	})
}

func allPositive(values ...float64) bool {
	return lo.EveryBy(values, func(v float64) bool { return v > 0 })
}
