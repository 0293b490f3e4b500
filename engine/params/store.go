package params

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store holds the current Params. Input callbacks write it while the frame loop reads snapshots.
type Store struct {
	mu     *sync.RWMutex
	params Params
}

// NewStore creates a Store holding p.
//
// Parameters:
//   - p: the initial parameters
//
// Returns:
//   - *Store: the new store
func NewStore(p Params) *Store {
	return &Store{mu: &sync.RWMutex{}, params: p}
}

// Snapshot returns a copy of the current parameters.
func (s *Store) Snapshot() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Set replaces the parameters if p is valid.
//
// Parameters:
//   - p: the new parameters
//
// Returns:
//   - error: the validation error; the store is unchanged in that case
func (s *Store) Set(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
	return nil
}

// Update applies fn to a copy of the parameters and stores the result if it is valid.
//
// Parameters:
//   - fn: the mutation
//
// Returns:
//   - error: the validation error; the store is unchanged in that case
func (s *Store) Update(fn func(*Params)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.params
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	s.params = next
	return nil
}

// AdjustAnimateSpeed adds delta to the animation speed, never going below zero.
func (s *Store) AdjustAnimateSpeed(delta float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.AnimateSpeed = max(0, s.params.AnimateSpeed+delta)
	log.WithField("animateSpeed", s.params.AnimateSpeed).Info("animation speed changed")
}
