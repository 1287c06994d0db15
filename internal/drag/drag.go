// Package drag implements the edge-drag state machine that resizes the crop
// range and its context window from pointer movement.
//
// A session begins on pointer-down over a handle, follows pointer moves, and
// commits on pointer-up. While a session is active, the context-window edge
// that is not being dragged keeps its absolute position.
package drag

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/schollz/beatcrop/internal/types"
)

const (
	// NormalFactor scales pointer displacement without the precision modifier.
	NormalFactor = 1.0
	// PrecisionFactor scales pointer displacement while the modifier is held.
	PrecisionFactor = 0.15
	// MinContextLength is the shortest context window, in seconds.
	MinContextLength = 1.0
	// MinCropLength keeps crop start strictly before crop end.
	MinCropLength = 0.01
)

var (
	ErrMissingDependency = errors.New("drag: missing dependency")
	ErrNoSample          = errors.New("drag: no sample loaded")
	ErrUnknownMode       = errors.New("drag: unknown mode")
	ErrNoContextHandle   = errors.New("drag: mode has no context handle")
	ErrUnknownEdge       = errors.New("drag: unknown edge")
)

// Orchestrator owns the crop range, context length and mode.
type Orchestrator interface {
	CropRange() types.CropRange
	SetCropRange(types.CropRange)
	ContextLength() float64
	SetContextLength(float64)
	Mode() types.Mode
}

// Timeline reports the loaded sample. ok is false when nothing is loaded.
type Timeline interface {
	LoadedSample() (sample types.LoadedSample, ok bool)
}

// Snapper maps a time onto the beat grid.
type Snapper interface {
	Snap(float64) float64
}

// PointerCapture grants exclusive pointer delivery for the session.
type PointerCapture interface {
	Capture()
	Release()
}

// Config wires a Controller to its collaborators.
type Config struct {
	Orchestrator    Orchestrator
	Timeline        Timeline
	Snapper         Snapper
	PixelsPerSecond func() float64

	// Optional.
	Capture  PointerCapture
	OnCommit func(crop types.CropRange, contextLength float64)
}

type session struct {
	edge           types.Edge
	startPointerX  float64
	initialCrop    types.CropRange
	initialContext float64
	initialMode    types.Mode
	lo, hi         float64 // usable audio bounds

	// pinned is the context-window edge held fixed, when the edge has one.
	pinned float64

	anchorTime float64
	anchorX    float64
	factor     float64
	pps        float64
	lastX      float64
	lastRaw    float64

	crop    types.CropRange
	context float64
}

// Controller is the drag state machine. It is not safe for concurrent use;
// drive it from the event loop.
type Controller struct {
	cfg Config
	s   *session
}

func New(cfg Config) (*Controller, error) {
	switch {
	case cfg.Orchestrator == nil:
		return nil, fmt.Errorf("%w: orchestrator", ErrMissingDependency)
	case cfg.Timeline == nil:
		return nil, fmt.Errorf("%w: timeline", ErrMissingDependency)
	case cfg.Snapper == nil:
		return nil, fmt.Errorf("%w: snapper", ErrMissingDependency)
	case cfg.PixelsPerSecond == nil:
		return nil, fmt.Errorf("%w: pixels-per-second", ErrMissingDependency)
	}
	return &Controller{cfg: cfg}, nil
}

// Active returns the edge being dragged, if any.
func (c *Controller) Active() (types.Edge, bool) {
	if c.s == nil {
		return 0, false
	}
	return c.s.edge, true
}

// Begin starts a session on edge at pointerX. A call made while a session is
// already active is ignored.
func (c *Controller) Begin(edge types.Edge, pointerX float64) error {
	if c.s != nil {
		log.Printf("drag: ignoring %s pointer-down, %s drag in progress", edge, c.s.edge)
		return nil
	}

	sample, ok := c.cfg.Timeline.LoadedSample()
	if !ok || !(sample.Duration > 0) {
		return ErrNoSample
	}
	mode := c.cfg.Orchestrator.Mode()
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}

	crop := c.cfg.Orchestrator.CropRange()
	ctx := c.cfg.Orchestrator.ContextLength()
	lo, hi := usableBounds(sample)

	s := &session{
		edge:           edge,
		startPointerX:  pointerX,
		initialCrop:    crop,
		initialContext: ctx,
		initialMode:    mode,
		lo:             lo,
		hi:             hi,
		factor:         NormalFactor,
		crop:           crop,
		context:        ctx,
	}

	switch edge {
	case types.EdgeCropStart:
		s.anchorTime = crop.Start
		s.pinned = crop.Start + ctx
	case types.EdgeCropEnd:
		s.anchorTime = crop.End
		s.pinned = crop.End - ctx
	case types.EdgeContext:
		switch mode {
		case types.ModePrecede:
			s.anchorTime = crop.Start + ctx
			s.pinned = crop.Start
		case types.ModeContinuation:
			s.anchorTime = crop.End - ctx
			s.pinned = crop.End
		default:
			return fmt.Errorf("%w: %s", ErrNoContextHandle, mode)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownEdge, int(edge))
	}

	s.anchorX = pointerX
	s.lastX = pointerX
	s.lastRaw = s.anchorTime
	c.s = s

	if c.cfg.Capture != nil {
		c.cfg.Capture.Capture()
	}
	log.Printf("drag: begin %s in %s mode at x=%.1f crop=%s context=%.3f", edge, mode, pointerX, crop, ctx)
	return nil
}

// Move updates the session from the pointer position. precise selects the
// reduced PrecisionFactor. Without a session, or with a non-positive scale,
// Move does nothing.
func (c *Controller) Move(pointerX float64, precise bool) {
	s := c.s
	if s == nil {
		return
	}
	pps := c.cfg.PixelsPerSecond()
	if !(pps > 0) || math.IsInf(pps, 0) {
		return
	}

	factor := NormalFactor
	if precise {
		factor = PrecisionFactor
	}
	if factor != s.factor || pps != s.pps {
		// Re-base so a precision toggle or a zoom mid-gesture does not jump
		// the edge.
		s.anchorTime = s.lastRaw
		s.anchorX = s.lastX
		s.factor = factor
		s.pps = pps
	}

	raw := s.anchorTime + (pointerX-s.anchorX)/pps*factor
	s.lastX = pointerX
	s.lastRaw = raw

	s.apply(c.cfg.Snapper.Snap(raw))
}

// Preview returns the uncommitted geometry of the active session.
func (c *Controller) Preview() (types.CropRange, float64, bool) {
	if c.s == nil {
		return types.CropRange{}, 0, false
	}
	return c.s.crop, c.s.context, true
}

// End commits the session to the orchestrator and returns to idle. It
// reports whether there was a session to commit.
func (c *Controller) End() bool {
	s := c.s
	if s == nil {
		return false
	}
	c.s = nil

	c.cfg.Orchestrator.SetCropRange(s.crop)
	c.cfg.Orchestrator.SetContextLength(s.context)
	if c.cfg.OnCommit != nil {
		c.cfg.OnCommit(s.crop, s.context)
	}
	if c.cfg.Capture != nil {
		c.cfg.Capture.Release()
	}
	log.Printf("drag: commit %s crop=%s context=%.3f", s.edge, s.crop, s.context)
	return true
}

// Cancel drops the session without committing.
func (c *Controller) Cancel() {
	if c.s == nil {
		return
	}
	log.Printf("drag: cancel %s", c.s.edge)
	c.s = nil
	if c.cfg.Capture != nil {
		c.cfg.Capture.Release()
	}
}

func usableBounds(sample types.LoadedSample) (float64, float64) {
	lo := math.Max(0, sample.StartTrim)
	hi := sample.StopTrim
	if !(hi > lo) || hi > sample.Duration {
		hi = sample.Duration
	}
	return lo, hi
}
