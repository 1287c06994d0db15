package getbpm

import (
	"log"
	"math"
	"sort"

	"github.com/schollz/beatcrop/internal/types"
)

// jitterTolerance is the fraction of a beat interval a peak must clear past
// the previous grid beat to be accepted.
const jitterTolerance = 0.6

// BuildDetectedGrid filters peaks against the beat interval implied by bpm.
func BuildDetectedGrid(peaks []types.Peak, bpm float64) types.BeatGrid {
	if len(peaks) == 0 || !(bpm > 0) || math.IsInf(bpm, 0) {
		return types.DefaultBeatGrid()
	}

	minGap := jitterTolerance * 60.0 / bpm
	beats := []float64{peaks[0].Time}
	last := peaks[0].Time
	for _, p := range peaks[1:] {
		if p.Time-last > minGap {
			beats = append(beats, p.Time)
			last = p.Time
		}
	}

	return types.BeatGrid{
		BeatTimestamps: normalizeTimestamps(beats),
		AverageBPM:     math.Round(bpm*100) / 100,
	}
}

// BuildRigidGrid lays an arithmetic beat grid from 0 up to (not including)
// duration. Degenerate input yields an empty grid at the default tempo.
func BuildRigidGrid(bpm, duration float64) types.BeatGrid {
	if !(bpm > 0) || !(duration > 0) || math.IsInf(bpm, 0) || math.IsInf(duration, 0) {
		return types.DefaultBeatGrid()
	}

	beats := []float64{}
	for k := 0; ; k++ {
		t := float64(k) * 60 / bpm
		if t >= duration {
			break
		}
		beats = append(beats, t)
	}
	return types.BeatGrid{BeatTimestamps: beats, AverageBPM: bpm}
}

// DetectBeatGrid runs peak picking, tempo estimation and the detected grid
// builder over buf. Too little signal degrades to the default grid.
func DetectBeatGrid(buf *types.DecodedAudioBuffer) types.BeatGrid {
	if buf == nil {
		return types.DefaultBeatGrid()
	}
	peaks := DetectPeaks(buf.Mono(), buf.SampleRate, DefaultOptions())
	bpm, err := EstimateTempo(peaks)
	if err != nil {
		log.Printf("beat detection: %v (%d peaks), using default grid", err, len(peaks))
		return types.DefaultBeatGrid()
	}
	grid := BuildDetectedGrid(peaks, bpm)
	log.Printf("beat detection: %d peaks, %.2f bpm, %d beats", len(peaks), grid.AverageBPM, len(grid.BeatTimestamps))
	return grid
}

// normalizeTimestamps rounds to 4 decimals, sorts and drops duplicates.
func normalizeTimestamps(ts []float64) []float64 {
	out := make([]float64, 0, len(ts))
	for _, t := range ts {
		out = append(out, math.Round(t*1e4)/1e4)
	}
	sort.Float64s(out)

	uniq := out[:0]
	for i, t := range out {
		if i > 0 && t == uniq[len(uniq)-1] {
			continue
		}
		uniq = append(uniq, t)
	}
	return uniq
}
