package scene_views

import (
	"html/template"
	"strconv"

	"navigation/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Element ids updated by StatusView.
const (
	StatusStateId     = "status-state"
	StatusTargetId    = "status-target"
	StatusPositionId  = "status-position"
	StatusWaypointsId = "status-waypoints"
)

// StatusView shows the steering state as text.
type StatusView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatusView(
	done <-chan struct{},
	frames <-chan SceneFrame,
) (sv *StatusView) {
	sv = &StatusView{id: "statusview"}
	sv.updates = channerics.Convert(done, frames, sv.onUpdate)
	return
}

func (sv *StatusView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func (sv *StatusView) onUpdate(frame SceneFrame) []fastview.EleUpdate {
	text := func(id, value string) fastview.EleUpdate {
		return fastview.EleUpdate{
			EleId: id,
			Ops:   []fastview.Op{{Key: "textContent", Value: value}},
		}
	}
	return []fastview.EleUpdate{
		text(StatusStateId, frame.State),
		text(StatusTargetId, strconv.Itoa(frame.TargetIndex)),
		text(StatusPositionId, frame.Position),
		text(StatusWaypointsId, strconv.Itoa(frame.Waypoints)),
	}
}

func (sv *StatusView) Parse(
	t *template.Template,
) (name string, err error) {
	name = sv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + sv.id + `" style="padding:20px; font-family:monospace;">
			<div>state: <span id="` + StatusStateId + `">{{ .Frame.State }}</span></div>
			<div>target: <span id="` + StatusTargetId + `">{{ .Frame.TargetIndex }}</span></div>
			<div>position: <span id="` + StatusPositionId + `">{{ .Frame.Position }}</span></div>
			<div>waypoints left: <span id="` + StatusWaypointsId + `">{{ .Frame.Waypoints }}</span></div>
		</div>
		{{ end }}`)
	return
}
