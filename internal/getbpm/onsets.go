// Package getbpm turns decoded audio into beat grids: peak picking, median
// tempo estimation with octave correction, and the detected and rigid grid
// builders.
package getbpm

import (
	"github.com/schollz/beatcrop/internal/types"
)

// Options tune the onset detector.
type Options struct {
	// Threshold is the amplitude a sample must exceed to count as a peak.
	Threshold float64
	// MinSpacing is the debounce between accepted peaks, in seconds.
	MinSpacing float64
}

// DefaultOptions returns the detector settings used by DetectBeatGrid.
func DefaultOptions() Options {
	return Options{
		Threshold:  0.3,
		MinSpacing: 0.05,
	}
}

// DetectPeaks returns the local amplitude peaks of samples in time order.
func DetectPeaks(samples []float64, sampleRate int, opts Options) []types.Peak {
	peaks := []types.Peak{}
	if sampleRate <= 0 || len(samples) < 3 {
		return peaks
	}

	sr := float64(sampleRate)
	lastTime := -1.0
	for i := 1; i < len(samples)-1; i++ {
		v := samples[i]
		if v <= opts.Threshold || v <= samples[i-1] || v <= samples[i+1] {
			continue
		}
		t := float64(i) / sr
		if lastTime >= 0 && t-lastTime < opts.MinSpacing {
			continue
		}
		peaks = append(peaks, types.Peak{Time: t, Energy: v})
		lastTime = t
	}
	return peaks
}
