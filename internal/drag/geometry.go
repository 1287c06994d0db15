package drag

import (
	"math"

	"github.com/schollz/beatcrop/internal/types"
)

// apply moves the dragged edge to v and recomputes the paired quantity.
// Bounds are applied after snapping so the pinned edge never moves.
func (s *session) apply(v float64) {
	c0 := s.initialCrop
	crop := c0
	ctx := s.initialContext

	switch s.initialMode {
	case types.ModePrecede:
		switch s.edge {
		case types.EdgeCropStart:
			// The window's right edge is pinned.
			crop.Start = clamp(v, s.lo, math.Min(c0.End-MinCropLength, s.pinned-MinContextLength))
			ctx = s.pinned - crop.Start
		case types.EdgeContext:
			ctx = clamp(v, c0.Start+MinContextLength, s.hi) - s.pinned
		case types.EdgeCropEnd:
			crop.End = clamp(v, c0.Start+MinCropLength, s.hi)
		}

	case types.ModeContinuation:
		switch s.edge {
		case types.EdgeCropEnd:
			// The window's left edge is pinned.
			crop.End = clamp(v, math.Max(c0.Start+MinCropLength, s.pinned+MinContextLength), s.hi)
			ctx = crop.End - s.pinned
		case types.EdgeContext:
			ctx = s.pinned - clamp(v, s.lo, c0.End-MinContextLength)
		case types.EdgeCropStart:
			crop.Start = clamp(v, s.lo, c0.End-MinCropLength)
		}

	case types.ModeInpaint:
		switch s.edge {
		case types.EdgeCropStart:
			crop.Start = clamp(v, s.lo, c0.End-MinCropLength)
		case types.EdgeCropEnd:
			crop.End = clamp(v, c0.Start+MinCropLength, s.hi)
		}
	}

	if crop.End <= crop.Start {
		crop.End = crop.Start + MinCropLength
	}
	if ctx < MinContextLength {
		ctx = MinContextLength
	}
	s.crop = crop
	s.context = ctx
}

// clamp bounds v to [lo, hi]; lo wins when the bounds cross.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
