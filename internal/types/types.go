package types

import "fmt"

// DefaultBPM is the tempo reported when no grid has been detected or set.
const DefaultBPM = 120.0

// Peak is a single amplitude peak found by onset detection.
type Peak struct {
	Time   float64 // seconds
	Energy float64 // amplitude at the peak
}

// BeatGrid is an ascending, deduplicated set of beat timestamps plus the
// tempo they were derived from. Treat it as immutable once produced.
type BeatGrid struct {
	BeatTimestamps []float64 `json:"beatTimestamps"`
	AverageBPM     float64   `json:"averageBpm"`
}

// DefaultBeatGrid returns the grid used before any detection or manual set.
func DefaultBeatGrid() BeatGrid {
	return BeatGrid{BeatTimestamps: []float64{}, AverageBPM: DefaultBPM}
}

// Clone returns a copy that shares no memory with g.
func (g BeatGrid) Clone() BeatGrid {
	ts := make([]float64, len(g.BeatTimestamps))
	copy(ts, g.BeatTimestamps)
	return BeatGrid{BeatTimestamps: ts, AverageBPM: g.AverageBPM}
}

// Empty reports whether the grid has no beats, which means snapping is
// unavailable.
func (g BeatGrid) Empty() bool {
	return len(g.BeatTimestamps) == 0
}

// DecodedAudioBuffer is a decoded, normalized audio signal.
type DecodedAudioBuffer struct {
	Channels   [][]float64 // per-channel samples in [-1, 1]
	SampleRate int
	Duration   float64 // seconds
}

// Mono returns the samples used for onset detection (the first channel).
func (b *DecodedAudioBuffer) Mono() []float64 {
	if b == nil || len(b.Channels) == 0 {
		return nil
	}
	return b.Channels[0]
}

// LoadedSample describes the sample currently loaded on the timeline.
type LoadedSample struct {
	Duration  float64
	StartTrim float64
	StopTrim  float64
}

// CropRange is a [Start, End] window of the untrimmed source, in seconds.
type CropRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r CropRange) Length() float64 {
	return r.End - r.Start
}

func (r CropRange) Valid() bool {
	return r.Start < r.End
}

func (r CropRange) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", r.Start, r.End)
}

// Mode selects how the context window attaches to the crop range.
type Mode int

const (
	ModePrecede Mode = iota
	ModeContinuation
	ModeInpaint
)

func (m Mode) String() string {
	switch m {
	case ModePrecede:
		return "precede"
	case ModeContinuation:
		return "continuation"
	case ModeInpaint:
		return "inpaint"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= ModePrecede && m <= ModeInpaint
}

// Next cycles precede -> continuation -> inpaint -> precede.
func (m Mode) Next() Mode {
	return (m + 1) % 3
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "precede":
		return ModePrecede, nil
	case "continuation":
		return ModeContinuation, nil
	case "inpaint":
		return ModeInpaint, nil
	}
	return ModePrecede, fmt.Errorf("unknown mode %q (want precede, continuation or inpaint)", s)
}

// ContextWindow returns the absolute bounds of the context window that the
// given crop range and context length describe in mode m.
func ContextWindow(m Mode, crop CropRange, contextLength float64) (float64, float64) {
	switch m {
	case ModeContinuation:
		return crop.End - contextLength, crop.End
	case ModeInpaint:
		return crop.Start - contextLength, crop.End + contextLength
	default:
		return crop.Start, crop.Start + contextLength
	}
}

// Edge identifies a draggable handle.
type Edge int

const (
	EdgeCropStart Edge = iota
	EdgeCropEnd
	// EdgeContext is the context-window boundary not shared with the crop range.
	EdgeContext
)

func (e Edge) String() string {
	switch e {
	case EdgeCropStart:
		return "crop-start"
	case EdgeCropEnd:
		return "crop-end"
	case EdgeContext:
		return "context"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}
