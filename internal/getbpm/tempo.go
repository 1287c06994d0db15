package getbpm

import (
	"errors"
	"math"
	"sort"

	"github.com/schollz/beatcrop/internal/types"
)

const (
	// MinPeaks is the fewest peaks a tempo estimate is attempted on.
	MinPeaks = 10
	// MinBPM and MaxBPM bound the octave-corrected tempo to [MinBPM, MaxBPM).
	MinBPM = 70.0
	MaxBPM = 180.0
)

// ErrInsufficientSignal is returned when too few peaks were detected.
var ErrInsufficientSignal = errors.New("getbpm: insufficient peaks for tempo estimation")

// EstimateTempo derives the octave-corrected BPM from the lower median of
// the inter-peak intervals.
func EstimateTempo(peaks []types.Peak) (float64, error) {
	if len(peaks) < MinPeaks {
		return 0, ErrInsufficientSignal
	}

	intervals := make([]float64, 0, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		intervals = append(intervals, peaks[i].Time-peaks[i-1].Time)
	}
	sort.Float64s(intervals)

	median := intervals[(len(intervals)-1)/2]
	if median <= 0 {
		return 0, ErrInsufficientSignal
	}
	return CorrectOctave(60.0 / median), nil
}

// CorrectOctave doubles or halves bpm until it lands in [MinBPM, MaxBPM).
// Non-positive and non-finite input yields types.DefaultBPM.
func CorrectOctave(bpm float64) float64 {
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return types.DefaultBPM
	}
	for bpm < MinBPM {
		bpm *= 2
	}
	for bpm >= MaxBPM {
		bpm /= 2
	}
	return bpm
}
