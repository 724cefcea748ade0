package scene_views

import (
	"fmt"
	"html/template"

	"navigation/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Element ids updated by SceneView.
const (
	RemainingPathId = "remaining-path"
	AgentId         = "agent"
	AgentFacingId   = "agent-facing"
)

// SceneView draws the grid, the planned path, and the agent with its remaining path as svg.
type SceneView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewSceneView(
	done <-chan struct{},
	frames <-chan SceneFrame,
) (sv *SceneView) {
	// Hyphens would interfere with html/template's `template` directive.
	sv = &SceneView{id: "sceneview"}
	sv.updates = channerics.Convert(done, frames, sv.onUpdate)
	return
}

func (sv *SceneView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

// Returns the set of view updates needed for the view to reflect the passed frame.
func (sv *SceneView) onUpdate(frame SceneFrame) []fastview.EleUpdate {
	return []fastview.EleUpdate{
		{
			EleId: RemainingPathId,
			Ops: []fastview.Op{
				{Key: "points", Value: frame.Remaining},
			},
		},
		{
			EleId: AgentId,
			Ops: []fastview.Op{
				{Key: "cx", Value: fmt.Sprintf("%.1f", frame.AgentX)},
				{Key: "cy", Value: fmt.Sprintf("%.1f", frame.AgentY)},
			},
		},
		{
			EleId: AgentFacingId,
			Ops: []fastview.Op{
				{Key: "x1", Value: fmt.Sprintf("%.1f", frame.AgentX)},
				{Key: "y1", Value: fmt.Sprintf("%.1f", frame.AgentY)},
				{Key: "x2", Value: fmt.Sprintf("%.1f", frame.FacingX)},
				{Key: "y2", Value: fmt.Sprintf("%.1f", frame.FacingY)},
			},
		},
	}
}

// Parse defines the scene svg template, which expects a Page.
func (sv *SceneView) Parse(
	t *template.Template,
) (name string, err error) {
	name = sv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div style="padding:20px;">
			<svg id="` + sv.id + `" xmlns='http://www.w3.org/2000/svg'
				width="{{ add .Scene.Width 1 }}px"
				height="{{ add .Scene.Height 1 }}px"
				style="shape-rendering: crispEdges;">
				{{ $cell_px := ` + fmt.Sprintf("%d", CellPx) + ` }}
				{{ $half_px := div $cell_px 2 }}
				{{ range $cell := .Scene.Cells }}
				<g>
					<rect x="{{ $cell.X }}" y="{{ $cell.Y }}"
						width="{{ $cell_px }}" height="{{ $cell_px }}"
						fill="{{ $cell.Fill }}" stroke="white" stroke-width="1"/>
					{{ if $cell.Label }}
					<text x="{{ add $cell.X $half_px }}" y="{{ add $cell.Y $half_px }}"
						dominant-baseline="central" text-anchor="middle"
						>{{ $cell.Label }}</text>
					{{ end }}
				</g>
				{{ end }}
				<polyline points="{{ .Scene.Planned }}"
					fill="none" stroke="lightsteelblue" stroke-width="2" stroke-dasharray="4"/>
				<polyline id="` + RemainingPathId + `" points="{{ .Frame.Remaining }}"
					fill="none" stroke="steelblue" stroke-width="3"/>
				<circle id="` + AgentId + `" cx="{{ .Frame.AgentX }}" cy="{{ .Frame.AgentY }}"
					r="{{ div $cell_px 3 }}" fill="crimson"/>
				<line id="` + AgentFacingId + `"
					x1="{{ .Frame.AgentX }}" y1="{{ .Frame.AgentY }}"
					x2="{{ .Frame.FacingX }}" y2="{{ .Frame.FacingY }}"
					stroke="black" stroke-width="2"/>
			</svg>
		</div>
		{{ end }}`)
	return
}
