package model

import (
	"log"
	"math"
	"strconv"
	"strings"
)

// BPMInput buffers a manually typed tempo until it is committed.
type BPMInput struct {
	Buffer string
}

// Commit parses the buffer and, when it holds a positive tempo, rebuilds the
// beat grid rigidly across the loaded sample. Anything else is ignored.
func (b *BPMInput) Commit(m *Model) bool {
	text := strings.TrimSpace(b.Buffer)
	b.Buffer = ""
	if text == "" {
		return false
	}
	bpm, err := strconv.ParseFloat(text, 64)
	if err != nil || !(bpm > 0) || math.IsInf(bpm, 0) {
		log.Printf("ignoring BPM entry %q", text)
		return false
	}
	m.Beats.SetManualBPM(bpm, m.sample.Duration)
	m.Status = "BPM set to " + strconv.FormatFloat(bpm, 'f', -1, 64)
	return true
}
