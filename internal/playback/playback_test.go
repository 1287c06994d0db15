package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/schollz/beatcrop/internal/beatstate"
	"github.com/schollz/beatcrop/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	seeks   []float64
	loops   []types.CropRange
	playing []bool
	err     error
}

func (e *fakeEngine) SetPlayheadPositionInSeconds(t float64) error {
	e.seeks = append(e.seeks, t)
	return e.err
}

func (e *fakeEngine) SetLoopBounds(start, end float64) error {
	e.loops = append(e.loops, types.CropRange{Start: start, End: end})
	return e.err
}

func (e *fakeEngine) SetPlaying(playing bool) error {
	e.playing = append(e.playing, playing)
	return e.err
}

func newTransport(t *testing.T) (*Transport, *fakeEngine, *beatstate.State, *time.Time) {
	t.Helper()
	now := time.Unix(1000, 0)
	beats := beatstate.New()
	beats.SetManualBPM(120, 8) // beats every 0.5s
	eng := &fakeEngine{}
	tr := &Transport{
		Engine:  eng,
		Snapper: beats,
		Clock:   &Clock{},
		Now:     func() time.Time { return now },
	}
	return tr, eng, beats, &now
}

func TestClickPlayhead(t *testing.T) {
	t.Run("snaps to nearest beat", func(t *testing.T) {
		tr, eng, _, now := newTransport(t)
		pos, err := tr.ClickPlayhead(1.7)
		require.NoError(t, err)
		assert.Equal(t, 1.5, pos)
		assert.Equal(t, []float64{1.5}, eng.seeks)
		assert.Equal(t, 1.5, tr.Clock.Position(*now))
	})

	t.Run("raw time when snapping is off", func(t *testing.T) {
		tr, eng, beats, _ := newTransport(t)
		beats.SetSnapEnabled(false)
		pos, err := tr.ClickPlayhead(1.7)
		require.NoError(t, err)
		assert.Equal(t, 1.7, pos)
		assert.Equal(t, []float64{1.7}, eng.seeks)
	})

	t.Run("engine error surfaces", func(t *testing.T) {
		tr, eng, _, _ := newTransport(t)
		eng.err = errors.New("offline")
		_, err := tr.ClickPlayhead(1)
		assert.Error(t, err)
	})
}

func TestLoopCrop(t *testing.T) {
	t.Run("snaps both bounds", func(t *testing.T) {
		tr, eng, _, _ := newTransport(t)
		loop, err := tr.LoopCrop(types.CropRange{Start: 0.9, End: 3.2})
		require.NoError(t, err)
		assert.Equal(t, types.CropRange{Start: 1.0, End: 3.0}, loop)
		assert.Equal(t, []types.CropRange{loop}, eng.loops)
	})

	t.Run("falls back when snapping collapses", func(t *testing.T) {
		tr, eng, _, _ := newTransport(t)
		crop := types.CropRange{Start: 1.05, End: 1.2}
		loop, err := tr.LoopCrop(crop)
		require.NoError(t, err)
		assert.Equal(t, crop, loop)
		assert.Equal(t, []types.CropRange{crop}, eng.loops)
	})
}

func TestTogglePlaying(t *testing.T) {
	tr, eng, _, now := newTransport(t)
	playing, err := tr.TogglePlaying()
	require.NoError(t, err)
	assert.True(t, playing)

	*now = now.Add(2 * time.Second)
	assert.InDelta(t, 2.0, tr.Clock.Position(*now), 1e-9)

	playing, err = tr.TogglePlaying()
	require.NoError(t, err)
	assert.False(t, playing)
	assert.Equal(t, []bool{true, false}, eng.playing)

	*now = now.Add(5 * time.Second)
	assert.InDelta(t, 2.0, tr.Clock.Position(*now), 1e-9)
}

func TestClockLoopNoDrift(t *testing.T) {
	start := time.Unix(0, 0)
	c := &Clock{}
	c.SetLoop(types.CropRange{Start: 1, End: 3}, start)
	c.Seek(1, start)
	c.Start(start)

	// Absolute scheduling: many small ticks give the same answer as one big one.
	now := start
	for i := 0; i < 1000; i++ {
		now = now.Add(7 * time.Millisecond)
		_ = c.Position(now)
	}
	assert.InDelta(t, 1+7.0-2*3, c.Position(now), 1e-9) // 1 + (7 mod 2)

	for _, dt := range []time.Duration{0, 500 * time.Millisecond, 1999 * time.Millisecond, 2 * time.Second, 13 * time.Second} {
		pos := c.Position(start.Add(dt))
		assert.GreaterOrEqual(t, pos, 1.0)
		assert.Less(t, pos, 3.0)
	}
}

func TestReport(t *testing.T) {
	tr, _, _, now := newTransport(t)
	tr.Report(4.25)
	assert.Equal(t, 4.25, tr.Clock.Position(*now))
}

func TestParsePlayhead(t *testing.T) {
	msg := osc.NewMessage("/playhead")
	msg.Append(float32(2.5))
	v, ok := ParsePlayhead(msg)
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = ParsePlayhead(osc.NewMessage("/playhead"))
	assert.False(t, ok)

	bad := osc.NewMessage("/playhead")
	bad.Append("later")
	_, ok = ParsePlayhead(bad)
	assert.False(t, ok)
}
