package drag

import "github.com/schollz/beatcrop/internal/types"

// Handle is a draggable edge and its position in source seconds.
type Handle struct {
	Edge types.Edge
	Time float64
}

// Handles lists the handles mode exposes for crop and contextLength.
// Inpaint has no context handle.
func Handles(mode types.Mode, crop types.CropRange, contextLength float64) []Handle {
	handles := []Handle{
		{Edge: types.EdgeCropStart, Time: crop.Start},
		{Edge: types.EdgeCropEnd, Time: crop.End},
	}
	switch mode {
	case types.ModePrecede:
		handles = append(handles, Handle{Edge: types.EdgeContext, Time: crop.Start + contextLength})
	case types.ModeContinuation:
		handles = append(handles, Handle{Edge: types.EdgeContext, Time: crop.End - contextLength})
	}
	return handles
}

// HitTest returns the handle nearest to t within tolerance seconds. When two
// handles are equally near, the context handle wins so it stays reachable
// while it overlaps a crop edge.
func HitTest(handles []Handle, t, tolerance float64) (types.Edge, bool) {
	best := -1
	bestDist := 0.0
	for i, h := range handles {
		d := h.Time - t
		if d < 0 {
			d = -d
		}
		if d > tolerance {
			continue
		}
		if best < 0 || d < bestDist || (d == bestDist && h.Edge == types.EdgeContext) {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return 0, false
	}
	return handles[best].Edge, true
}
