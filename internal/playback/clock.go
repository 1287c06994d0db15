package playback

import (
	"math"
	"time"

	"github.com/schollz/beatcrop/internal/types"
)

// Clock estimates the playhead from the last known position. Position is
// computed from an absolute start time so repeated ticks never drift.
type Clock struct {
	playing bool
	origin  float64 // seconds at start
	start   time.Time
	loop    types.CropRange
}

func (c *Clock) Playing() bool {
	return c.playing
}

// Start begins advancing from the current position.
func (c *Clock) Start(now time.Time) {
	if c.playing {
		return
	}
	c.playing = true
	c.start = now
}

// Stop freezes the playhead at its position at now.
func (c *Clock) Stop(now time.Time) {
	if !c.playing {
		return
	}
	c.origin = c.Position(now)
	c.playing = false
}

// Seek moves the playhead to t without changing the play state.
func (c *Clock) Seek(t float64, now time.Time) {
	c.origin = t
	c.start = now
}

// SetLoop wraps the playhead inside r. An invalid range clears the loop.
func (c *Clock) SetLoop(r types.CropRange, now time.Time) {
	c.origin = c.Position(now)
	c.start = now
	if r.Valid() {
		c.loop = r
	} else {
		c.loop = types.CropRange{}
	}
}

func (c *Clock) Loop() (types.CropRange, bool) {
	return c.loop, c.loop.Valid()
}

func (c *Clock) Position(now time.Time) float64 {
	pos := c.origin
	if c.playing {
		pos += now.Sub(c.start).Seconds()
	}
	if c.loop.Valid() && pos >= c.loop.End {
		pos = c.loop.Start + math.Mod(pos-c.loop.Start, c.loop.Length())
	}
	return pos
}
