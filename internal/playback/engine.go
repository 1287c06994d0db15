// Package playback drives the external audio engine over OSC and keeps a
// local estimate of the playhead between engine reports.
package playback

import (
	"fmt"
	"log"

	"github.com/hypebeast/go-osc/osc"
)

// Engine is the audio engine the editor controls.
type Engine interface {
	SetPlayheadPositionInSeconds(t float64) error
	SetLoopBounds(start, end float64) error
	SetPlaying(playing bool) error
}

// OSCEngine sends transport commands to an OSC audio server.
type OSCEngine struct {
	client *osc.Client
}

func NewOSCEngine(host string, port int) *OSCEngine {
	return &OSCEngine{client: osc.NewClient(host, port)}
}

func (e *OSCEngine) SetPlayheadPositionInSeconds(t float64) error {
	msg := osc.NewMessage("/playhead")
	msg.Append(float32(t))
	return e.send(msg)
}

func (e *OSCEngine) SetLoopBounds(start, end float64) error {
	msg := osc.NewMessage("/loop")
	msg.Append(float32(start))
	msg.Append(float32(end))
	return e.send(msg)
}

func (e *OSCEngine) SetPlaying(playing bool) error {
	msg := osc.NewMessage("/transport")
	if playing {
		msg.Append(int32(1))
	} else {
		msg.Append(int32(0))
	}
	return e.send(msg)
}

func (e *OSCEngine) send(msg *osc.Message) error {
	if err := e.client.Send(msg); err != nil {
		log.Printf("Error sending OSC %s: %v", msg.Address, err)
		return fmt.Errorf("send %s: %w", msg.Address, err)
	}
	return nil
}

// ParsePlayhead extracts the position in seconds from a /playhead report.
func ParsePlayhead(msg *osc.Message) (float64, bool) {
	if msg == nil || len(msg.Arguments) == 0 {
		return 0, false
	}
	switch v := msg.Arguments[0].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	}
	return 0, false
}
