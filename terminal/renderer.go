// Package terminal draws the grid and the agent's progress along its path on a tcell screen.
package terminal

import (
	"context"
	"errors"
	"fmt"

	"navigation/grid_world"
	"navigation/navigator"
	"navigation/projection"

	"github.com/gdamore/tcell/v2"
)

// ErrQuit is returned by Run when the user ends the session.
var ErrQuit = errors.New("terminal: quit")

// Each cell is drawn two columns wide so the grid keeps roughly square proportions.
const cellWidth = 2

var (
	blockedStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	markerStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	pathStyle    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	agentStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	textStyle    = tcell.StyleDefault
)

// canvas is the part of tcell.Screen the renderer draws with.
type canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// Renderer owns a tcell screen and redraws it for every frame it receives.
type Renderer struct {
	screen tcell.Screen
	grid   *grid_world.Grid
	layout projection.Layout
}

// NewRenderer initializes the terminal screen. Close must be called to restore the terminal.
func NewRenderer(grid *grid_world.Grid, layout projection.Layout) (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	if err = screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	return &Renderer{
		screen: screen,
		grid:   grid,
		layout: layout,
	}, nil
}

// Close restores the terminal.
func (renderer *Renderer) Close() {
	renderer.screen.Fini()
}

// Run draws each frame until ctx is done, frames closes, or the user presses Esc, q or Ctrl-C,
// in which case ErrQuit is returned.
func (renderer *Renderer) Run(ctx context.Context, frames <-chan navigator.Frame) error {
	defer renderer.Close()

	quit := make(chan struct{})
	go func() {
		for {
			ev := renderer.screen.PollEvent()
			// nil once the screen is finalized
			if ev == nil {
				return
			}
			if isQuit(ev) {
				close(quit)
				return
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				renderer.screen.Sync()
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return ErrQuit
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			renderer.screen.Clear()
			draw(renderer.screen, renderer.grid, renderer.layout, frame)
			renderer.screen.Show()
		}
	}
}

func isQuit(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	return key.Key() == tcell.KeyEscape ||
		key.Key() == tcell.KeyCtrlC ||
		(key.Key() == tcell.KeyRune && key.Rune() == 'q')
}

// draw renders the grid, then the remaining path over it, then the agent, then a status line
// below the grid.
func draw(
	c canvas,
	grid *grid_world.Grid,
	layout projection.Layout,
	frame navigator.Frame,
) {
	grid.Visit(func(cell grid_world.Cell, kind grid_world.CellKind) {
		switch kind {
		case grid_world.Blocked:
			setCell(c, cell, '█', blockedStyle)
		case grid_world.Start:
			setCell(c, cell, 'S', markerStyle)
		case grid_world.Goal:
			setCell(c, cell, 'G', markerStyle)
		}
	})

	for _, point := range frame.Remaining {
		if cell := layout.ToCell(point); grid.InBounds(cell) {
			setCell(c, cell, '•', pathStyle)
		}
	}

	if frame.State != navigator.Idle {
		if cell := layout.ToCell(frame.Position); grid.InBounds(cell) {
			setCell(c, cell, '@', agentStyle)
		}
	}

	status := fmt.Sprintf("%s  target %d  pos (%.2f, %.2f)  [q] quit",
		frame.State, frame.TargetIndex, frame.Position.X, frame.Position.Z)
	drawText(c, 0, grid.Rows()+1, status)
}

func setCell(c canvas, cell grid_world.Cell, r rune, style tcell.Style) {
	c.SetContent(cell.Col*cellWidth, cell.Row, r, nil, style)
}

func drawText(c canvas, x, y int, text string) {
	for _, r := range text {
		c.SetContent(x, y, r, nil, textStyle)
		x++
	}
}
