// Package views renders the crop editor: the waveform with beat markers,
// crop and context overlays, a time ruler and the status lines.
package views

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"

	"github.com/schollz/beatcrop/internal/drag"
	"github.com/schollz/beatcrop/internal/model"
	"github.com/schollz/beatcrop/internal/types"
)

// State is the transient UI state rendered alongside the model.
type State struct {
	// Preview geometry of an active drag; the committed values are drawn
	// when Dragging is false.
	Dragging      bool
	ActiveEdge    types.Edge
	PreviewCrop   types.CropRange
	PreviewCtx    float64
	Precise       bool
	BPMEditing    bool
	BPMField      string
	WaveformLocal string // local file used for waveform columns
}

type column struct {
	inCrop    bool
	inContext bool
	shade     float64
	beat      bool
	downbeat  bool
	handle    bool
	active    bool
	playhead  bool
}

type Editor struct {
	Profile termenv.Profile
	Palette Palette
	cache   columnCache
}

func NewEditor() *Editor {
	return &Editor{Profile: termenv.ColorProfile(), Palette: DefaultPalette()}
}

// Geometry returns the crop and context length to draw.
func (st State) Geometry(m *model.Model) (types.CropRange, float64) {
	if st.Dragging {
		return st.PreviewCrop, st.PreviewCtx
	}
	return m.CropRange(), m.ContextLength()
}

// WaveformHeight is the number of rows the waveform gets for the current
// terminal height.
func WaveformHeight(m *model.Model) int {
	h := m.TermHeight - 7
	if h < 4 {
		h = 4
	}
	return h
}

func (e *Editor) Render(m *model.Model, st State) string {
	styles := getCommonStyles()
	var content strings.Builder

	content.WriteString(renderHeader(m, st, styles))
	content.WriteString("\n")

	width := m.TermWidth
	if width < 1 {
		width = 1
	}
	height := WaveformHeight(m)

	sample, ok := m.LoadedSample()
	if !ok {
		content.WriteString(styles.Label.Render("No audio loaded"))
		content.WriteString("\n")
		return content.String()
	}

	var data []int16
	if st.WaveformLocal != "" && m.WaveformEnd > m.WaveformStart {
		var err error
		data, err = e.cache.columns(st.WaveformLocal, m.WaveformStart, m.WaveformEnd, width)
		if err != nil {
			content.WriteString(styles.Label.Render(fmt.Sprintf("Error rendering waveform: %v", err)))
			content.WriteString("\n")
		}
	}

	crop, ctx := st.Geometry(m)
	cols := overlay(m, crop, ctx, st, width)
	content.WriteString(e.renderWave(rasterize(data, width, height), cols, width, height))
	content.WriteString(timestampRuler(width, m.WaveformStart, m.WaveformEnd))

	lo, hi := types.ContextWindow(m.Mode(), crop, ctx)
	info := fmt.Sprintf("Crop %s (%.3fs) | Context %.3fs [%.3f, %.3f] | Duration %.2fs | Playhead %.3f",
		crop, crop.Length(), ctx, lo, hi, sample.Duration, m.Playhead)
	content.WriteString(styles.Label.Render(info))
	content.WriteString("\n")

	if st.BPMEditing {
		content.WriteString(styles.Selected.Render("BPM") + " " + st.BPMField)
	} else {
		content.WriteString(styles.Label.Render(helpText))
	}
	content.WriteString("\n")
	if m.Status != "" {
		content.WriteString(styles.Status.Render(m.Status))
	}
	content.WriteString("\n")
	return content.String()
}

const helpText = "drag handles | click seek | shift/p precision | s snap | m mode | b bpm | d detect | l loop | space play | ←→ jog | ↑↓ zoom | q quit"

func renderHeader(m *model.Model, st State, styles *ViewStyles) string {
	snap := m.Beats.Snapshot()
	name := "(none)"
	if m.Path != "" {
		name = filepath.Base(m.Path)
	}
	parts := []string{
		styles.Title.Render("beatcrop"),
		styles.Normal.Render(name),
		styles.Label.Render("mode:") + " " + styles.Normal.Render(m.Mode().String()),
		styles.Label.Render("bpm:") + " " + styles.Normal.Render(fmt.Sprintf("%.2f (%d beats)", snap.Grid.AverageBPM, len(snap.Grid.BeatTimestamps))),
	}
	if snap.SnapToBeat {
		parts = append(parts, styles.Status.Render("snap"))
	} else {
		parts = append(parts, styles.Label.Render("free"))
	}
	if st.Precise {
		parts = append(parts, styles.Selected.Render("precise"))
	}
	if m.Playing {
		parts = append(parts, styles.Status.Render("▶"))
	}
	return strings.Join(parts, "  ")
}

// overlay classifies every waveform column by what lies under it.
func overlay(m *model.Model, crop types.CropRange, ctx float64, st State, width int) []column {
	cols := make([]column, width)
	pps := m.PixelsPerSecond()
	if pps == 0 {
		return cols
	}
	lo, hi := types.ContextWindow(m.Mode(), crop, ctx)
	for x := range cols {
		t0 := m.ColumnToTime(x)
		t1 := t0 + 1/pps
		mid := (t0 + t1) / 2
		cols[x].inCrop = mid >= crop.Start && mid < crop.End
		if mid >= lo && mid < hi {
			cols[x].inContext = true
			cols[x].shade = contextProximity(m.Mode(), crop, lo, hi, mid)
		}
	}

	for i, b := range m.Beats.Snapshot().Grid.BeatTimestamps {
		x := m.TimeToColumn(b)
		if x < 0 || x >= width {
			continue
		}
		cols[x].beat = true
		if i%4 == 0 {
			cols[x].downbeat = true
		}
	}

	for _, h := range drag.Handles(m.Mode(), crop, ctx) {
		x := m.TimeToColumn(h.Time)
		if x == width && h.Edge == types.EdgeCropEnd {
			x = width - 1
		}
		if x < 0 || x >= width {
			continue
		}
		cols[x].handle = true
		if st.Dragging && h.Edge == st.ActiveEdge {
			cols[x].active = true
		}
	}

	if x := m.TimeToColumn(m.Playhead); x >= 0 && x < width {
		cols[x].playhead = true
	}
	return cols
}

// contextProximity is 1 next to the crop and falls to 0 at the far edge of
// the context window.
func contextProximity(mode types.Mode, crop types.CropRange, lo, hi, t float64) float64 {
	switch mode {
	case types.ModePrecede:
		if hi <= crop.Start {
			return 1
		}
		return 1 - (t-crop.Start)/(hi-crop.Start)
	case types.ModeContinuation:
		if crop.End <= lo {
			return 1
		}
		return (t - lo) / (crop.End - lo)
	default:
		if t < crop.Start && crop.Start > lo {
			return (t - lo) / (crop.Start - lo)
		}
		if t >= crop.End && hi > crop.End {
			return 1 - (t-crop.End)/(hi-crop.End)
		}
		return 1
	}
}

func (e *Editor) renderWave(grid [][]bool, cols []column, width, height int) string {
	var sb strings.Builder
	p := e.Palette
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ch := glyphAt(grid, x, y, height)
			c := cols[x]

			bg := ""
			if c.inContext {
				bg = p.contextShade(c.shade)
			}
			fg := p.Wave
			if c.inCrop {
				fg = p.Crop
			}

			switch {
			case c.playhead:
				ch, fg = "│", p.Playhead
			case c.active:
				ch, fg = "┃", p.ActiveHandle
			case c.handle:
				ch, fg = "┃", p.Handle
			case c.beat && ch == " ":
				ch = "┆"
				fg = p.Beat
				if c.downbeat {
					fg = p.Downbeat
				}
			}
			sb.WriteString(paint(e.Profile, ch, fg, bg))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
