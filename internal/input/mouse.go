package input

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/schollz/beatcrop/internal/drag"
	"github.com/schollz/beatcrop/internal/views"
)

// HandleMouse maps left-button press, motion and release onto the drag
// controller. A press away from every handle seeks the playhead.
func (e *Editor) HandleMouse(msg tea.MouseMsg) tea.Cmd {
	e.shift = msg.Shift
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if !e.dragging() {
				e.Model.ZoomWaveformView(true)
			}
		case tea.MouseButtonWheelDown:
			if !e.dragging() {
				e.Model.ZoomWaveformView(false)
			}
		case tea.MouseButtonLeft:
			e.press(msg)
		}

	case tea.MouseActionMotion:
		if !e.capture.held {
			return nil
		}
		e.drag.Move(float64(msg.X), e.Precise())

	case tea.MouseActionRelease:
		e.drag.End()
	}
	return nil
}

// onWaveform reports whether row y is one of the waveform rows below the
// header line.
func (e *Editor) onWaveform(y int) bool {
	return y >= 1 && y <= views.WaveformHeight(e.Model)
}

func (e *Editor) press(msg tea.MouseMsg) {
	m := e.Model
	if !e.onWaveform(msg.Y) {
		return
	}
	pps := m.PixelsPerSecond()
	if pps == 0 {
		return
	}
	if _, active := e.drag.Active(); active {
		return
	}

	t := m.ColumnToTime(msg.X)
	handles := drag.Handles(m.Mode(), m.CropRange(), m.ContextLength())
	if edge, ok := drag.HitTest(handles, t, HitColumns/pps); ok {
		if err := e.drag.Begin(edge, float64(msg.X)); err != nil {
			log.Printf("drag %s: %v", edge, err)
			m.Status = err.Error()
		}
		return
	}

	pos, err := e.Transport.ClickPlayhead(t)
	if err != nil {
		log.Printf("seek: %v", err)
	}
	m.Playhead = pos
	m.Focus, m.HasFocus = pos, true
}
