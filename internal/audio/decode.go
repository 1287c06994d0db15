// Package audio decodes audio files into normalized sample buffers.
package audio

import (
	"errors"
	"math"

	"github.com/schollz/audiomorph"
	"github.com/schollz/beatcrop/internal/types"
)

var ErrNoAudio = errors.New("no audio data")

// DecodeFile reads an entire WAV, AIFF, MP3, OGG or FLAC file and returns its
// samples per channel, scaled to [-1, 1].
func DecodeFile(path string) (*types.DecodedAudioBuffer, error) {
	a, err := audiomorph.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	if a.NumChannels <= 0 || a.SampleRate <= 0 || len(a.Data) == 0 {
		return nil, ErrNoAudio
	}
	return fromAudio(a), nil
}

func fromAudio(a *audiomorph.Audio) *types.DecodedAudioBuffer {
	scale := 1.0
	if a.BitDepth > 1 {
		scale = math.Pow(2, float64(a.BitDepth-1))
	}

	frames := len(a.Data[0])
	out := &types.DecodedAudioBuffer{
		Channels:   make([][]float64, len(a.Data)),
		SampleRate: a.SampleRate,
		Duration:   float64(frames) / float64(a.SampleRate),
	}
	for ch, samples := range a.Data {
		out.Channels[ch] = make([]float64, frames)
		for i := 0; i < frames && i < len(samples); i++ {
			out.Channels[ch][i] = float64(samples[i]) / scale
		}
	}
	return out
}
