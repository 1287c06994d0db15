package beatstate

import (
	"context"
	"log"

	"github.com/schollz/beatcrop/internal/getbpm"
	"github.com/schollz/beatcrop/internal/types"
)

// BeginDetection starts a detection run and returns its token. Starting a
// run supersedes every earlier one.
func (s *State) BeginDetection() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return Token(s.generation)
}

// ApplyDetection writes grid if tok still belongs to the latest run and
// reports whether it did.
func (s *State) ApplyDetection(tok Token, grid types.BeatGrid) bool {
	s.mu.Lock()
	if uint64(tok) != s.generation {
		s.mu.Unlock()
		log.Printf("dropping stale beat detection result (run %d, current %d)", tok, s.generation)
		return false
	}
	s.grid = grid.Clone()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// Detect fetches path, detects its beat grid and applies it. Fetch or decode
// failures are logged and leave the store unchanged.
func (s *State) Detect(ctx context.Context, fetcher Fetcher, path string) (types.BeatGrid, bool) {
	tok := s.BeginDetection()
	buf, err := fetcher.Fetch(ctx, path)
	if err != nil {
		log.Printf("beat detection for %s skipped: %v", path, err)
		return types.BeatGrid{}, false
	}
	grid := getbpm.DetectBeatGrid(buf)
	return grid, s.ApplyDetection(tok, grid)
}
