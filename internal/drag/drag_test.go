package drag

import (
	"math"
	"math/rand"
	"testing"

	"github.com/schollz/beatcrop/internal/beatstate"
	"github.com/schollz/beatcrop/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	crop    types.CropRange
	context float64
	mode    types.Mode
	sets    int
}

func (f *fakeStore) CropRange() types.CropRange { return f.crop }
func (f *fakeStore) SetCropRange(r types.CropRange) { f.crop = r; f.sets++ }
func (f *fakeStore) ContextLength() float64 { return f.context }
func (f *fakeStore) SetContextLength(v float64) { f.context = v; f.sets++ }
func (f *fakeStore) Mode() types.Mode { return f.mode }

type fakeTimeline struct {
	sample types.LoadedSample
	loaded bool
}

func (f *fakeTimeline) LoadedSample() (types.LoadedSample, bool) { return f.sample, f.loaded }

type fakeCapture struct{ captured, released int }

func (f *fakeCapture) Capture() { f.captured++ }
func (f *fakeCapture) Release() { f.released++ }

type identity struct{}

func (identity) Snap(v float64) float64 { return v }

type fixture struct {
	store    *fakeStore
	timeline *fakeTimeline
	capture  *fakeCapture
	pps      float64
	commits  int
	ctrl     *Controller
}

func newFixture(t *testing.T, mode types.Mode, snapper Snapper) *fixture {
	t.Helper()
	f := &fixture{
		store: &fakeStore{crop: types.CropRange{Start: 4, End: 10}, context: 3, mode: mode},
		timeline: &fakeTimeline{
			sample: types.LoadedSample{Duration: 20, StartTrim: 0, StopTrim: 20},
			loaded: true,
		},
		capture: &fakeCapture{},
		pps:     10,
	}
	ctrl, err := New(Config{
		Orchestrator:    f.store,
		Timeline:        f.timeline,
		Snapper:         snapper,
		PixelsPerSecond: func() float64 { return f.pps },
		Capture:         f.capture,
		OnCommit:        func(types.CropRange, float64) { f.commits++ },
	})
	require.NoError(t, err)
	f.ctrl = ctrl
	return f
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingDependency)

	_, err = New(Config{Orchestrator: &fakeStore{}, Timeline: &fakeTimeline{}, Snapper: identity{}})
	assert.ErrorIs(t, err, ErrMissingDependency)
	assert.Contains(t, err.Error(), "pixels-per-second")
}

func TestBeginMisuse(t *testing.T) {
	t.Run("no sample loaded", func(t *testing.T) {
		f := newFixture(t, types.ModePrecede, identity{})
		f.timeline.loaded = false
		assert.ErrorIs(t, f.ctrl.Begin(types.EdgeCropStart, 0), ErrNoSample)
		_, active := f.ctrl.Active()
		assert.False(t, active)
	})

	t.Run("unknown mode", func(t *testing.T) {
		f := newFixture(t, types.Mode(9), identity{})
		assert.ErrorIs(t, f.ctrl.Begin(types.EdgeCropStart, 0), ErrUnknownMode)
	})

	t.Run("inpaint has no context handle", func(t *testing.T) {
		f := newFixture(t, types.ModeInpaint, identity{})
		assert.ErrorIs(t, f.ctrl.Begin(types.EdgeContext, 0), ErrNoContextHandle)
		assert.Equal(t, 0, f.capture.captured)
	})

	t.Run("unknown edge", func(t *testing.T) {
		f := newFixture(t, types.ModePrecede, identity{})
		assert.ErrorIs(t, f.ctrl.Begin(types.Edge(7), 0), ErrUnknownEdge)
	})
}

func TestPrecedeCropStartPinsRightEdge(t *testing.T) {
	f := newFixture(t, types.ModePrecede, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeCropStart, 100))
	assert.Equal(t, 1, f.capture.captured)

	f.ctrl.Move(80, false) // -2s
	crop, ctx, ok := f.ctrl.Preview()
	require.True(t, ok)
	assert.InDelta(t, 2.0, crop.Start, 1e-9)
	assert.InDelta(t, 10.0, crop.End, 1e-9)
	assert.InDelta(t, 5.0, ctx, 1e-9)

	// The store is untouched until pointer-up.
	assert.Equal(t, 0, f.store.sets)

	f.ctrl.Move(200, false) // +10s, limited by the one second context minimum
	crop, ctx, _ = f.ctrl.Preview()
	assert.InDelta(t, 6.0, crop.Start, 1e-9)
	assert.InDelta(t, 1.0, ctx, 1e-9)

	f.ctrl.Move(90, false) // -1s
	require.True(t, f.ctrl.End())
	assert.InDelta(t, 3.0, f.store.crop.Start, 1e-9)
	assert.InDelta(t, 4.0, f.store.context, 1e-9)
	assert.InDelta(t, 7.0, f.store.crop.Start+f.store.context, 1e-9)
	assert.Equal(t, 1, f.commits)
	assert.Equal(t, 1, f.capture.released)

	_, active := f.ctrl.Active()
	assert.False(t, active)
}

func TestPrecedeContextHandlePinsLeftEdge(t *testing.T) {
	f := newFixture(t, types.ModePrecede, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeContext, 50))

	f.ctrl.Move(70, false) // +2s
	crop, ctx, _ := f.ctrl.Preview()
	assert.Equal(t, types.CropRange{Start: 4, End: 10}, crop)
	assert.InDelta(t, 5.0, ctx, 1e-9)

	f.ctrl.Move(1000, false) // past the end of the sample
	_, ctx, _ = f.ctrl.Preview()
	assert.InDelta(t, 16.0, ctx, 1e-9)

	f.ctrl.Move(-1000, false)
	_, ctx, _ = f.ctrl.Preview()
	assert.InDelta(t, 1.0, ctx, 1e-9)
}

func TestPrecedeCropEndLeavesContext(t *testing.T) {
	f := newFixture(t, types.ModePrecede, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeCropEnd, 0))
	f.ctrl.Move(25, false)
	crop, ctx, _ := f.ctrl.Preview()
	assert.InDelta(t, 12.5, crop.End, 1e-9)
	assert.Equal(t, 3.0, ctx)

	f.ctrl.Move(-1000, false)
	crop, _, _ = f.ctrl.Preview()
	assert.Less(t, crop.Start, crop.End)
}

func TestContinuationCropEndPinsLeftEdge(t *testing.T) {
	f := newFixture(t, types.ModeContinuation, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeCropEnd, 0))

	f.ctrl.Move(20, false) // +2s
	crop, ctx, _ := f.ctrl.Preview()
	assert.InDelta(t, 12.0, crop.End, 1e-9)
	assert.InDelta(t, 5.0, ctx, 1e-9)
	assert.InDelta(t, 7.0, crop.End-ctx, 1e-9)

	f.ctrl.Move(-25, false) // -2.5s would leave less than one second of context
	crop, ctx, _ = f.ctrl.Preview()
	assert.InDelta(t, 8.0, crop.End, 1e-9)
	assert.InDelta(t, 1.0, ctx, 1e-9)

	f.ctrl.End()
	assert.InDelta(t, 7.0, f.store.crop.End-f.store.context, 1e-9)
}

func TestContinuationContextHandlePinsRightEdge(t *testing.T) {
	f := newFixture(t, types.ModeContinuation, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeContext, 0))

	f.ctrl.Move(-30, false) // left edge 7 -> 4
	crop, ctx, _ := f.ctrl.Preview()
	assert.Equal(t, 10.0, crop.End)
	assert.InDelta(t, 6.0, ctx, 1e-9)

	f.ctrl.Move(-1000, false) // clamped to the start of the sample
	_, ctx, _ = f.ctrl.Preview()
	assert.InDelta(t, 10.0, ctx, 1e-9)

	f.ctrl.Move(1000, false)
	_, ctx, _ = f.ctrl.Preview()
	assert.InDelta(t, 1.0, ctx, 1e-9)
}

func TestInpaintMovesCropEdgesOnly(t *testing.T) {
	f := newFixture(t, types.ModeInpaint, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeCropStart, 0))
	f.ctrl.Move(15, false)
	f.ctrl.End()
	assert.InDelta(t, 5.5, f.store.crop.Start, 1e-9)
	assert.Equal(t, 10.0, f.store.crop.End)
	assert.Equal(t, 3.0, f.store.context)
}

func TestTrimBoundsClampEdges(t *testing.T) {
	f := newFixture(t, types.ModeContinuation, identity{})
	f.timeline.sample = types.LoadedSample{Duration: 20, StartTrim: 2, StopTrim: 11}

	require.NoError(t, f.ctrl.Begin(types.EdgeCropStart, 0))
	f.ctrl.Move(-1000, false)
	f.ctrl.End()
	assert.Equal(t, 2.0, f.store.crop.Start)

	require.NoError(t, f.ctrl.Begin(types.EdgeCropEnd, 0))
	f.ctrl.Move(1000, false)
	f.ctrl.End()
	assert.Equal(t, 11.0, f.store.crop.End)
}

func TestSnappingToGrid(t *testing.T) {
	state := beatstate.New()
	state.SetManualBPM(120, 20)

	f := newFixture(t, types.ModePrecede, state)
	require.NoError(t, f.ctrl.Begin(types.EdgeCropStart, 0))
	f.ctrl.Move(-18, false) // raw 2.2 -> 2.0
	crop, ctx, _ := f.ctrl.Preview()
	assert.Equal(t, 2.0, crop.Start)
	assert.InDelta(t, 5.0, ctx, 1e-9)

	state.SetSnapEnabled(false)
	f.ctrl.Move(-18, false)
	crop, _, _ = f.ctrl.Preview()
	assert.InDelta(t, 2.2, crop.Start, 1e-9)
}

func TestPrecisionModifier(t *testing.T) {
	f := newFixture(t, types.ModeInpaint, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeCropStart, 100))

	f.ctrl.Move(120, true) // 2s of travel scaled to 0.3s
	crop, _, _ := f.ctrl.Preview()
	assert.InDelta(t, 4.3, crop.Start, 1e-9)

	// Releasing the modifier does not jump the edge.
	f.ctrl.Move(120, false)
	crop, _, _ = f.ctrl.Preview()
	assert.InDelta(t, 4.3, crop.Start, 1e-9)

	f.ctrl.Move(130, false)
	crop, _, _ = f.ctrl.Preview()
	assert.InDelta(t, 5.3, crop.Start, 1e-9)

	f.ctrl.Move(140, true)
	crop, _, _ = f.ctrl.Preview()
	assert.InDelta(t, 5.45, crop.Start, 1e-9)
}

func TestScaleChangeMidDrag(t *testing.T) {
	f := newFixture(t, types.ModeInpaint, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeCropEnd, 100))

	f.ctrl.Move(120, false)
	crop, _, _ := f.ctrl.Preview()
	assert.InDelta(t, 12.0, crop.End, 1e-9)

	// Zooming in doubles the scale; the edge stays where it was.
	f.pps = 20
	f.ctrl.Move(120, false)
	crop, _, _ = f.ctrl.Preview()
	assert.InDelta(t, 12.0, crop.End, 1e-9)

	f.ctrl.Move(140, false)
	crop, _, _ = f.ctrl.Preview()
	assert.InDelta(t, 13.0, crop.End, 1e-9)

	f.pps = 5
	f.ctrl.Move(145, false)
	crop, _, _ = f.ctrl.Preview()
	assert.InDelta(t, 14.0, crop.End, 1e-9)
}

func TestMoveGuards(t *testing.T) {
	t.Run("non-positive pixels per second", func(t *testing.T) {
		f := newFixture(t, types.ModePrecede, identity{})
		require.NoError(t, f.ctrl.Begin(types.EdgeCropStart, 0))
		for _, pps := range []float64{0, -3, math.NaN()} {
			f.pps = pps
			f.ctrl.Move(500, false)
			crop, ctx, _ := f.ctrl.Preview()
			assert.Equal(t, types.CropRange{Start: 4, End: 10}, crop)
			assert.Equal(t, 3.0, ctx)
		}
	})

	t.Run("move without session", func(t *testing.T) {
		f := newFixture(t, types.ModePrecede, identity{})
		f.ctrl.Move(500, false)
		_, _, ok := f.ctrl.Preview()
		assert.False(t, ok)
	})

	t.Run("pointer-up without session", func(t *testing.T) {
		f := newFixture(t, types.ModePrecede, identity{})
		assert.False(t, f.ctrl.End())
		assert.Equal(t, 0, f.store.sets)
		assert.Equal(t, 0, f.commits)
		assert.Equal(t, 0, f.capture.released)
	})
}

func TestSecondPointerDownIsIgnored(t *testing.T) {
	f := newFixture(t, types.ModePrecede, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeCropStart, 0))
	require.NoError(t, f.ctrl.Begin(types.EdgeCropEnd, 50))

	edge, active := f.ctrl.Active()
	assert.True(t, active)
	assert.Equal(t, types.EdgeCropStart, edge)
	assert.Equal(t, 1, f.capture.captured)

	f.ctrl.Move(-10, false)
	f.ctrl.End()
	assert.InDelta(t, 3.0, f.store.crop.Start, 1e-9)
	assert.Equal(t, 10.0, f.store.crop.End)
}

func TestCancelDiscardsSession(t *testing.T) {
	f := newFixture(t, types.ModePrecede, identity{})
	require.NoError(t, f.ctrl.Begin(types.EdgeCropStart, 0))
	f.ctrl.Move(-20, false)
	f.ctrl.Cancel()

	assert.Equal(t, types.CropRange{Start: 4, End: 10}, f.store.crop)
	assert.Equal(t, 3.0, f.store.context)
	assert.Equal(t, 0, f.commits)
	assert.Equal(t, 1, f.capture.released)
	assert.False(t, f.ctrl.End())
}

func TestPinnedEdgeHoldsAcrossSessions(t *testing.T) {
	state := beatstate.New()
	state.SetManualBPM(97, 20)

	f := newFixture(t, types.ModePrecede, state)
	f.timeline.sample = types.LoadedSample{Duration: 20, StartTrim: 1.5, StopTrim: 18}
	trim := f.timeline.sample.StartTrim
	pinned := f.store.crop.Start + f.store.context - trim

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 40; i++ {
		require.NoError(t, f.ctrl.Begin(types.EdgeCropStart, 0))
		x := 0.0
		for j := 0; j < 5; j++ {
			x += rng.Float64()*80 - 40
			f.ctrl.Move(x, rng.Intn(2) == 0)
		}
		f.ctrl.End()

		assert.InDelta(t, pinned, f.store.crop.Start+f.store.context-trim, 1e-9)
		assert.GreaterOrEqual(t, f.store.context, MinContextLength)
		assert.Less(t, f.store.crop.Start, f.store.crop.End)
	}
}

func TestContextNeverBelowMinimum(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, mode := range []types.Mode{types.ModePrecede, types.ModeContinuation, types.ModeInpaint} {
		f := newFixture(t, mode, identity{})
		edges := []types.Edge{types.EdgeCropStart, types.EdgeCropEnd, types.EdgeContext}
		for i := 0; i < 60; i++ {
			edge := edges[rng.Intn(len(edges))]
			if err := f.ctrl.Begin(edge, 0); err != nil {
				require.ErrorIs(t, err, ErrNoContextHandle)
				continue
			}
			f.ctrl.Move(rng.Float64()*400-200, false)
			f.ctrl.End()
			assert.GreaterOrEqual(t, f.store.context, MinContextLength, "mode=%s edge=%s", mode, edge)
			assert.Less(t, f.store.crop.Start, f.store.crop.End, "mode=%s edge=%s", mode, edge)
		}
	}
}

func TestHandles(t *testing.T) {
	crop := types.CropRange{Start: 4, End: 10}

	precede := Handles(types.ModePrecede, crop, 3)
	require.Len(t, precede, 3)
	assert.Equal(t, Handle{Edge: types.EdgeContext, Time: 7}, precede[2])

	continuation := Handles(types.ModeContinuation, crop, 3)
	assert.Equal(t, Handle{Edge: types.EdgeContext, Time: 7}, continuation[2])

	assert.Len(t, Handles(types.ModeInpaint, crop, 3), 2)

	edge, ok := HitTest(precede, 4.05, 0.1)
	assert.True(t, ok)
	assert.Equal(t, types.EdgeCropStart, edge)

	_, ok = HitTest(precede, 5.5, 0.1)
	assert.False(t, ok)

	overlapping := Handles(types.ModePrecede, types.CropRange{Start: 4, End: 5}, 1)
	edge, ok = HitTest(overlapping, 5, 0.1)
	assert.True(t, ok)
	assert.Equal(t, types.EdgeContext, edge)
}

func TestModifier(t *testing.T) {
	var m Modifier
	assert.False(t, m.Held())

	m.Toggle()
	assert.True(t, m.Held())
	m.Reset()
	assert.False(t, m.Held())

	m.Toggle()
	m.Toggle()
	assert.False(t, m.Held())
}
