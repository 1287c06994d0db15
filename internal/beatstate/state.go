// Package beatstate holds the current beat grid and snapping flag behind a
// single-writer store that notifies subscribers after every write.
package beatstate

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/schollz/beatcrop/internal/getbpm"
	"github.com/schollz/beatcrop/internal/types"
)

// Snapshot is a consistent, caller-owned view of the store.
type Snapshot struct {
	Grid       types.BeatGrid
	SnapToBeat bool
	Generation uint64
}

// Token identifies a detection run. Only the run holding the latest token
// may write its result.
type Token uint64

// Fetcher delivers a decoded buffer for a track path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*types.DecodedAudioBuffer, error)
}

// State is the beat grid store.
type State struct {
	mu         sync.RWMutex
	grid       types.BeatGrid
	snapToBeat bool
	generation uint64

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// New returns a store at 120 BPM with an empty grid and snapping enabled.
func New() *State {
	return &State{
		grid:       types.DefaultBeatGrid(),
		snapToBeat: true,
		subs:       make(map[int]func(Snapshot)),
	}
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Grid:       s.grid.Clone(),
		SnapToBeat: s.snapToBeat,
		Generation: s.generation,
	}
}

// Grid returns a copy of the current grid.
func (s *State) Grid() types.BeatGrid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Clone()
}

func (s *State) SnapEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapToBeat
}

// Replace overwrites the grid wholesale and invalidates in-flight detections.
func (s *State) Replace(grid types.BeatGrid) {
	s.mu.Lock()
	s.grid = grid.Clone()
	s.generation++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// SetManualBPM replaces the grid with a rigid grid of bpm over duration.
// Invalid parameters produce an empty grid, which disables snapping.
func (s *State) SetManualBPM(bpm, duration float64) {
	grid := getbpm.BuildRigidGrid(bpm, duration)
	log.Printf("manual bpm %.2f over %.2fs: %d beats", bpm, duration, len(grid.BeatTimestamps))
	s.Replace(grid)
}

func (s *State) SetSnapEnabled(enabled bool) {
	s.mu.Lock()
	if s.snapToBeat == enabled {
		s.mu.Unlock()
		return
	}
	s.snapToBeat = enabled
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Reset restores the default grid, keeping the snapping flag.
func (s *State) Reset() {
	s.Replace(types.DefaultBeatGrid())
}

// Snap returns the grid timestamp nearest to v, or v itself when snapping is
// disabled or the grid is empty. Equidistant candidates resolve to the
// earlier beat.
func (s *State) Snap(v float64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.snapToBeat || len(s.grid.BeatTimestamps) == 0 {
		return v
	}
	return nearest(s.grid.BeatTimestamps, v)
}

func nearest(beats []float64, v float64) float64 {
	// beats is ascending, so the nearest is at the insertion point or just
	// before it.
	i := sort.SearchFloat64s(beats, v)
	if i == 0 {
		return beats[0]
	}
	if i == len(beats) {
		return beats[len(beats)-1]
	}
	before, after := beats[i-1], beats[i]
	if after-v < v-before {
		return after
	}
	return before
}

// Subscribe registers fn to receive a snapshot after every write. The
// returned function removes the subscription.
func (s *State) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *State) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
