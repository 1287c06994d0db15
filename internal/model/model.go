// Package model holds the editor state: the loaded sample, the committed
// crop range and context window, and the visible waveform span.
package model

import (
	"log"
	"math"

	"github.com/schollz/beatcrop/internal/beatstate"
	"github.com/schollz/beatcrop/internal/drag"
	"github.com/schollz/beatcrop/internal/types"
)

const DefaultContextLength = 4.0

// minUsableSpan keeps room between the trims for the shortest context window.
const minUsableSpan = drag.MinContextLength

type Model struct {
	Path  string
	Beats *beatstate.State

	sample        types.LoadedSample
	loaded        bool
	crop          types.CropRange
	contextLength float64
	mode          types.Mode

	// Visible span of the waveform, in seconds.
	WaveformStart    float64
	WaveformEnd      float64
	WaveformDuration float64

	// Focus pulls zooming toward a time of interest when HasFocus is set.
	Focus    float64
	HasFocus bool

	TermWidth  int
	TermHeight int

	Playhead float64
	Playing  bool
	Status   string
}

func NewModel(beats *beatstate.State) *Model {
	if beats == nil {
		beats = beatstate.New()
	}
	return &Model{
		Beats:         beats,
		contextLength: DefaultContextLength,
		mode:          types.ModePrecede,
		TermWidth:     80,
		TermHeight:    24,
	}
}

// Load replaces the current sample. The crop covers the whole usable range
// and the view shows the entire file.
func (m *Model) Load(path string, sample types.LoadedSample) {
	m.Path = path
	m.sample = sample
	m.loaded = sample.Duration > 0
	lo, hi := m.Bounds()
	m.crop = types.CropRange{Start: lo, End: hi}
	m.WaveformStart = 0
	m.WaveformEnd = sample.Duration
	m.WaveformDuration = sample.Duration
	m.HasFocus = false
	m.clampContext()
	log.Printf("loaded %s: duration=%.3f crop=%s context=%.3f", path, sample.Duration, m.crop, m.contextLength)
}

func (m *Model) LoadedSample() (types.LoadedSample, bool) {
	return m.sample, m.loaded
}

// Bounds returns the usable span after trims.
func (m *Model) Bounds() (float64, float64) {
	lo := math.Max(0, m.sample.StartTrim)
	hi := m.sample.StopTrim
	if !(hi > lo) || hi > m.sample.Duration {
		hi = m.sample.Duration
	}
	return lo, hi
}

func (m *Model) CropRange() types.CropRange {
	return m.crop
}

func (m *Model) SetCropRange(r types.CropRange) {
	m.crop = r
}

func (m *Model) ContextLength() float64 {
	return m.contextLength
}

func (m *Model) SetContextLength(v float64) {
	m.contextLength = v
}

func (m *Model) Mode() types.Mode {
	return m.mode
}

// SetMode switches the context mode, pulls the crop back far enough for a
// minimal window and re-clamps the context length to the audio available.
func (m *Model) SetMode(mode types.Mode) {
	if !mode.Valid() {
		return
	}
	m.mode = mode
	if m.loaded {
		m.fitCrop()
	}
}

func (m *Model) CycleMode() types.Mode {
	m.SetMode(m.mode.Next())
	return m.mode
}

// ContextWindow returns the absolute bounds of the committed context window.
func (m *Model) ContextWindow() (float64, float64) {
	return types.ContextWindow(m.mode, m.crop, m.contextLength)
}

func (m *Model) clampContext() {
	if !m.loaded {
		return
	}
	lo, hi := m.Bounds()
	limit := math.Inf(1)
	switch m.mode {
	case types.ModePrecede:
		limit = hi - m.crop.Start
	case types.ModeContinuation:
		limit = m.crop.End - lo
	}
	if m.contextLength > limit {
		m.contextLength = limit
	}
	if m.contextLength < drag.MinContextLength {
		m.contextLength = drag.MinContextLength
	}
}

func (m *Model) TrimStart() float64 {
	return m.sample.StartTrim
}

func (m *Model) TrimEnd() float64 {
	_, hi := m.Bounds()
	return hi
}

// SetTrimStart moves the earliest usable time and pulls the crop inside the
// new bounds.
func (m *Model) SetTrimStart(v float64) {
	_, hi := m.Bounds()
	m.sample.StartTrim = math.Max(0, math.Min(v, hi-minUsableSpan))
	m.fitCrop()
}

// SetTrimEnd moves the latest usable time and pulls the crop inside the new
// bounds.
func (m *Model) SetTrimEnd(v float64) {
	lo, _ := m.Bounds()
	m.sample.StopTrim = math.Min(m.sample.Duration, math.Max(v, lo+minUsableSpan))
	m.fitCrop()
}

// fitCrop pulls the crop inside the usable bounds. In precede mode the start
// stays a full minimal window before hi, in continuation mode the end stays
// one after lo.
func (m *Model) fitCrop() {
	lo, hi := m.Bounds()
	startMax := hi - drag.MinCropLength
	endMin := lo
	switch m.mode {
	case types.ModePrecede:
		startMax = hi - drag.MinContextLength
	case types.ModeContinuation:
		endMin = lo + drag.MinContextLength
	}
	m.crop.Start = math.Max(lo, math.Min(m.crop.Start, startMax))
	m.crop.End = math.Min(hi, math.Max(m.crop.End, math.Max(m.crop.Start+drag.MinCropLength, endMin)))
	m.clampContext()
}
