package getbpm

import (
	"fmt"

	"github.com/schollz/audiomorph"
)

// Length reports the duration in seconds, sample rate and channel count of an
// audio file. Any format audiomorph decodes is accepted.
func Length(path string) (float64, int, int, error) {
	a, err := audiomorph.DecodeFile(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if a.NumChannels <= 0 || a.SampleRate <= 0 {
		return 0, 0, 0, fmt.Errorf("unsupported audio format in %s", path)
	}
	return a.Duration, a.SampleRate, a.NumChannels, nil
}
