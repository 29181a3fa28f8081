package session

import (
	"encoding/json"

	"backend-mapty/internal/mapview"

	"go.uber.org/zap"
)

// Page command ops, published on the same stream as the map commands.
const (
	OpFormShow   = "form.show"
	OpFormFocus  = "form.focus"
	OpFormHide   = "form.hide"
	OpFormToggle = "form.toggle"
	OpListInsert = "list.insert"
	OpAlert      = "alert"
)

type uiCommand struct {
	Op      string `json:"op"`
	HTML    string `json:"html,omitempty"`
	Message string `json:"message,omitempty"`
}

// streamUI drives the page's form, workout list and alerts through the
// session stream.
type streamUI struct {
	pub    mapview.Publisher
	logger *zap.Logger
}

func (u *streamUI) ShowForm()             { u.send(uiCommand{Op: OpFormShow}) }
func (u *streamUI) FocusDistance()        { u.send(uiCommand{Op: OpFormFocus}) }
func (u *streamUI) HideForm()             { u.send(uiCommand{Op: OpFormHide}) }
func (u *streamUI) ToggleElevationField() { u.send(uiCommand{Op: OpFormToggle}) }

// InsertWorkout places the entry right after the form, so the newest is on top.
func (u *streamUI) InsertWorkout(html string) {
	u.send(uiCommand{Op: OpListInsert, HTML: html})
}

func (u *streamUI) Alert(message string) {
	u.send(uiCommand{Op: OpAlert, Message: message})
}

func (u *streamUI) send(cmd uiCommand) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		u.logger.Error("encoding page command failed", zap.String("op", cmd.Op), zap.Error(err))
		return
	}
	u.pub.Publish(payload)
}
