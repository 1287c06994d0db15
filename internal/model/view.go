package model

import "math"

// PixelsPerSecond is the horizontal scale of the waveform in terminal
// columns. It is zero when nothing is visible.
func (m *Model) PixelsPerSecond() float64 {
	span := m.WaveformEnd - m.WaveformStart
	if m.TermWidth <= 0 || !(span > 0) {
		return 0
	}
	return float64(m.TermWidth) / span
}

// ColumnToTime maps a terminal column to seconds in the source.
func (m *Model) ColumnToTime(x int) float64 {
	pps := m.PixelsPerSecond()
	if pps == 0 {
		return m.WaveformStart
	}
	return m.WaveformStart + float64(x)/pps
}

// TimeToColumn maps seconds to the nearest terminal column. The result may
// fall outside the screen.
func (m *Model) TimeToColumn(t float64) int {
	pps := m.PixelsPerSecond()
	if pps == 0 {
		return 0
	}
	return int(math.Round((t - m.WaveformStart) * pps))
}

// Relayout records a new terminal size and scrolls so the committed crop
// start stays visible.
func (m *Model) Relayout(width, height int) {
	m.TermWidth = width
	m.TermHeight = height
	if m.crop.Start < m.WaveformStart || m.crop.Start > m.WaveformEnd {
		span := m.WaveformEnd - m.WaveformStart
		m.WaveformStart = m.crop.Start
		m.WaveformEnd = m.crop.Start + span
		m.clampView(span)
	}
}

// JogWaveformView moves the view left or right
func (m *Model) JogWaveformView(direction float64, fast bool) {
	duration := m.WaveformEnd - m.WaveformStart
	stepPercent := 0.005
	if fast {
		stepPercent = 0.05
	}
	step := duration * stepPercent * direction

	m.WaveformStart += step
	m.WaveformEnd += step
	m.clampView(duration)
}

// ZoomWaveformView zooms in or out (zoomIn = true for zoom in, false for zoom out)
func (m *Model) ZoomWaveformView(zoomIn bool) {
	duration := m.WaveformEnd - m.WaveformStart
	center := (m.WaveformStart + m.WaveformEnd) / 2.0

	// Drift 30% toward the focus on each step.
	if m.HasFocus {
		center += (m.Focus - center) * 0.3
	}

	var newDuration float64
	if zoomIn {
		newDuration = duration * 0.8
	} else {
		newDuration = duration * 1.25
	}
	if newDuration > m.WaveformDuration {
		newDuration = m.WaveformDuration
	}

	m.WaveformStart = center - newDuration/2.0
	m.WaveformEnd = center + newDuration/2.0
	m.clampView(newDuration)
}

func (m *Model) clampView(span float64) {
	if m.WaveformStart < 0 {
		m.WaveformStart = 0
		m.WaveformEnd = span
	}
	if m.WaveformEnd > m.WaveformDuration {
		m.WaveformEnd = m.WaveformDuration
		m.WaveformStart = m.WaveformEnd - span
		if m.WaveformStart < 0 {
			m.WaveformStart = 0
		}
	}
}
