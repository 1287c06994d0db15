// Package input maps terminal key and mouse events onto editor operations.
package input

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/schollz/beatcrop/internal/beatstate"
	"github.com/schollz/beatcrop/internal/drag"
	"github.com/schollz/beatcrop/internal/getbpm"
	"github.com/schollz/beatcrop/internal/model"
	"github.com/schollz/beatcrop/internal/playback"
	"github.com/schollz/beatcrop/internal/types"
	"github.com/schollz/beatcrop/internal/views"
)

// HitColumns is how close, in columns, a press must land to grab a handle.
const HitColumns = 1.0

// DetectMsg carries the result of a background detection run.
type DetectMsg struct {
	Token beatstate.Token
	Grid  types.BeatGrid
	Err   error
}

// TickMsg advances the local playhead while playing.
type TickMsg time.Time

// PlayheadMsg is a playhead position reported by the audio engine.
type PlayheadMsg struct {
	Time float64
}

// capture tracks whether the pointer belongs to a drag, so stray motion
// events outside a session are ignored.
type capture struct {
	held bool
}

func (c *capture) Capture() { c.held = true }
func (c *capture) Release() { c.held = false }

type Editor struct {
	Model     *model.Model
	Transport *playback.Transport
	Fetcher   beatstate.Fetcher
	// Source is the path handed to the fetcher; it may differ from the
	// local file shown in the waveform.
	Source        string
	WaveformLocal string
	FetchTimeout  time.Duration

	drag     *drag.Controller
	modifier drag.Modifier
	capture  capture
	bpm      textinput.Model
	bpmBuf   model.BPMInput
	shift    bool
}

func NewEditor(m *model.Model, transport *playback.Transport, fetcher beatstate.Fetcher) (*Editor, error) {
	e := &Editor{
		Model:        m,
		Transport:    transport,
		Fetcher:      fetcher,
		Source:       m.Path,
		FetchTimeout: 30 * time.Second,
	}
	c, err := drag.New(drag.Config{
		Orchestrator:    m,
		Timeline:        m,
		Snapper:         m.Beats,
		PixelsPerSecond: m.PixelsPerSecond,
		Capture:         &e.capture,
		OnCommit: func(crop types.CropRange, ctx float64) {
			m.Status = fmt.Sprintf("crop %s, context %.3fs", crop, ctx)
			m.Relayout(m.TermWidth, m.TermHeight)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("new editor: %w", err)
	}
	e.drag = c

	ti := textinput.New()
	ti.Placeholder = "bpm"
	ti.CharLimit = 8
	ti.Width = 10
	ti.Prompt = "> "
	e.bpm = ti
	return e, nil
}

// Precise reports whether pointer moves use the precision factor.
func (e *Editor) Precise() bool {
	return e.shift || e.modifier.Held()
}

// State returns what the view needs beyond the model.
func (e *Editor) State() views.State {
	st := views.State{
		Precise:       e.Precise(),
		BPMEditing:    e.bpm.Focused(),
		BPMField:      e.bpm.View(),
		WaveformLocal: e.WaveformLocal,
	}
	if crop, ctx, ok := e.drag.Preview(); ok {
		edge, _ := e.drag.Active()
		st.Dragging = true
		st.ActiveEdge = edge
		st.PreviewCrop = crop
		st.PreviewCtx = ctx
	}
	return st
}

// DetectCmd starts a detection run. Only the newest run's result is applied.
func (e *Editor) DetectCmd() tea.Cmd {
	if e.Fetcher == nil || e.Source == "" {
		return nil
	}
	tok := e.Model.Beats.BeginDetection()
	fetcher, path, timeout := e.Fetcher, e.Source, e.FetchTimeout
	e.Model.Status = "detecting beats..."
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		buf, err := fetcher.Fetch(ctx, path)
		if err != nil {
			return DetectMsg{Token: tok, Err: err}
		}
		return DetectMsg{Token: tok, Grid: getbpm.DetectBeatGrid(buf)}
	}
}

func (e *Editor) applyDetection(msg DetectMsg) {
	if msg.Err != nil {
		log.Printf("beat detection for %s skipped: %v", e.Source, msg.Err)
		e.Model.Status = "detection failed: " + msg.Err.Error()
		return
	}
	if e.Model.Beats.ApplyDetection(msg.Token, msg.Grid) {
		e.Model.Status = fmt.Sprintf("detected %.2f bpm, %d beats", msg.Grid.AverageBPM, len(msg.Grid.BeatTimestamps))
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update routes a message to its handler.
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.Model.Relayout(msg.Width, msg.Height)
	case tea.KeyMsg:
		return e.HandleKey(msg)
	case tea.MouseMsg:
		return e.HandleMouse(msg)
	case tea.FocusMsg:
		e.resetModifiers()
	case tea.BlurMsg:
		e.resetModifiers()
		e.commitBPM()
	case DetectMsg:
		e.applyDetection(msg)
	case PlayheadMsg:
		e.Transport.Report(msg.Time)
		e.Model.Playhead = msg.Time
	case TickMsg:
		if e.Transport.Clock == nil || !e.Transport.Clock.Playing() {
			return nil
		}
		e.Model.Playhead = e.Transport.Clock.Position(time.Time(msg))
		return tick()
	}
	return nil
}

// dragging reports whether a drag session is in progress. The view span is
// frozen while it is.
func (e *Editor) dragging() bool {
	_, ok := e.drag.Active()
	return ok
}

// resetModifiers drops held modifiers; a key released while the window was
// unfocused never reports its release.
func (e *Editor) resetModifiers() {
	e.modifier.Reset()
	e.shift = false
}
