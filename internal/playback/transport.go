package playback

import (
	"log"
	"time"

	"github.com/schollz/beatcrop/internal/types"
)

// Snapper maps a time to the beat grid, or returns it unchanged.
type Snapper interface {
	Snap(v float64) float64
}

// Transport routes playhead and loop edits through the beat grid before
// they reach the engine.
type Transport struct {
	Engine  Engine
	Snapper Snapper
	Clock   *Clock
	Now     func() time.Time
}

func (tr *Transport) now() time.Time {
	if tr.Now != nil {
		return tr.Now()
	}
	return time.Now()
}

func (tr *Transport) snap(v float64) float64 {
	if tr.Snapper == nil {
		return v
	}
	return tr.Snapper.Snap(v)
}

// ClickPlayhead seeks to t, snapped to the nearest beat when snapping is on.
// It returns the position actually sent.
func (tr *Transport) ClickPlayhead(t float64) (float64, error) {
	pos := tr.snap(t)
	if pos < 0 {
		pos = 0
	}
	if tr.Clock != nil {
		tr.Clock.Seek(pos, tr.now())
	}
	if tr.Engine == nil {
		return pos, nil
	}
	return pos, tr.Engine.SetPlayheadPositionInSeconds(pos)
}

// LoopCrop sets the engine loop to crop with both bounds snapped. When
// snapping would collapse the range the raw bounds are used.
func (tr *Transport) LoopCrop(crop types.CropRange) (types.CropRange, error) {
	loop := types.CropRange{Start: tr.snap(crop.Start), End: tr.snap(crop.End)}
	if !loop.Valid() {
		log.Printf("snapped loop %s collapsed, using %s", loop, crop)
		loop = crop
	}
	if tr.Clock != nil {
		tr.Clock.SetLoop(loop, tr.now())
	}
	if tr.Engine == nil {
		return loop, nil
	}
	return loop, tr.Engine.SetLoopBounds(loop.Start, loop.End)
}

// TogglePlaying flips the play state and reports the new one.
func (tr *Transport) TogglePlaying() (bool, error) {
	playing := true
	if tr.Clock != nil {
		playing = !tr.Clock.Playing()
		if playing {
			tr.Clock.Start(tr.now())
		} else {
			tr.Clock.Stop(tr.now())
		}
	}
	if tr.Engine == nil {
		return playing, nil
	}
	return playing, tr.Engine.SetPlaying(playing)
}

// Report applies an engine-reported playhead position.
func (tr *Transport) Report(t float64) {
	if tr.Clock != nil {
		tr.Clock.Seek(t, tr.now())
	}
}
