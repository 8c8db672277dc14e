/*
	state.go: The own-ship GnssStatus singleton (spec §3), guarded by its own
	mutex. Only the NMEA parser in this package writes it; the FLARM
	generator only reads it.
*/

package gnss

import (
	"sync"

	"github.com/biturbo/flightbox-transform/internal/registry"
)

// State owns the GnssStatus singleton and its mutex.
type State struct {
	mu     sync.Mutex
	status registry.GnssStatus
}

// NewState creates an empty own-ship GNSS state; every field starts absent.
func NewState() *State {
	return &State{}
}

// Snapshot returns a copy of the current GnssStatus under lock.
func (s *State) Snapshot() registry.GnssStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// update applies fn to the status under lock. Unexported: only this
// package's parser mutates GnssStatus, per spec §3 ownership rules.
func (s *State) update(fn func(*registry.GnssStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
}
