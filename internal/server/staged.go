package server

import (
	"sync"

	"github.com/yarhs-io/yarhs/internal/config"
)

// StagedEndpoint is the single mutable cell holding a listener's pending
// desired address, guarded by its own mutex (spec.md §5: "a single mutable
// cell guarded by its own mutex, read by accept loop on reload, written by
// Discovery API"). The accept loop owns the transition from staged to live.
type StagedEndpoint struct {
	mu  sync.Mutex
	set bool
	ep  config.Endpoint
}

// Set stages ep as the next desired endpoint.
func (s *StagedEndpoint) Set(ep config.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ep = ep
	s.set = true
}

// TakeIfSet clears and returns the staged endpoint if one is pending.
func (s *StagedEndpoint) TakeIfSet() (config.Endpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return config.Endpoint{}, false
	}
	s.set = false
	return s.ep, true
}

// Clear discards any pending staged endpoint without returning it, used on
// the non-force bind failure path (spec.md §4.6: "the staged endpoint is
// cleared").
func (s *StagedEndpoint) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = false
}
