package input

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
)

// HandleKey handles key presses for the editor.
func (e *Editor) HandleKey(msg tea.KeyMsg) tea.Cmd {
	m := e.Model
	if e.bpm.Focused() {
		switch msg.String() {
		case "enter":
			e.commitBPM()
			return nil
		case "esc":
			e.bpm.Blur()
			e.bpm.SetValue("")
			return nil
		}
		var cmd tea.Cmd
		e.bpm, cmd = e.bpm.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit

	case "esc":
		e.drag.Cancel()

	case "p":
		e.modifier.Toggle()

	case "s":
		m.Beats.SetSnapEnabled(!m.Beats.SnapEnabled())
		if m.Beats.SnapEnabled() {
			m.Status = "snap to beat on"
		} else {
			m.Status = "snap to beat off"
		}

	case "m":
		mode := m.CycleMode()
		m.Status = "mode " + mode.String()

	case "b":
		e.bpm.SetValue("")
		return e.bpm.Focus()

	case "d":
		return e.DetectCmd()

	case "r":
		m.Beats.Reset()
		m.Status = "beat grid cleared"

	case "l":
		loop, err := e.Transport.LoopCrop(m.CropRange())
		if err != nil {
			m.Status = "loop failed: " + err.Error()
			return nil
		}
		m.Status = "looping " + loop.String()

	case " ":
		playing, err := e.Transport.TogglePlaying()
		if err != nil {
			log.Printf("toggle playback: %v", err)
		}
		m.Playing = playing
		if playing {
			return tick()
		}

	case "left", "right", "shift+left", "shift+right", "up", "down":
		if e.dragging() {
			return nil
		}
		e.moveView(msg.String())
	}
	return nil
}

// moveView jogs or zooms the waveform for an arrow key.
func (e *Editor) moveView(key string) {
	m := e.Model
	switch key {
	case "left":
		m.JogWaveformView(-1, false)
	case "right":
		m.JogWaveformView(1, false)
	case "shift+left":
		m.JogWaveformView(-1, true)
	case "shift+right":
		m.JogWaveformView(1, true)
	case "up":
		m.ZoomWaveformView(true)
	case "down":
		m.ZoomWaveformView(false)
	}
}

// commitBPM applies the typed tempo, if the field is open.
func (e *Editor) commitBPM() {
	if !e.bpm.Focused() {
		return
	}
	e.bpmBuf.Buffer = e.bpm.Value()
	e.bpm.Blur()
	e.bpm.SetValue("")
	if !e.bpmBuf.Commit(e.Model) {
		e.Model.Status = "invalid bpm"
	}
}
