// Package session owns the active round of one player and bridges raw
// keystrokes to the pure game engine.
package session

import (
	"sync"
	"time"

	"github.com/robalobadob/riddler/internal/game"
	"github.com/robalobadob/riddler/internal/riddles"
)

// Picker supplies riddles for new rounds. *riddles.Bank implements it.
type Picker interface {
	PickRandom() riddles.Entry
}

// Session holds exactly one round at a time. Keystrokes are applied one
// at a time in the order Submit is called.
type Session struct {
	id     string
	picker Picker
	now    func() time.Time

	mu         sync.Mutex
	round      game.Round
	lastActive time.Time
}

// New creates a session and starts its first round.
func New(id string, picker Picker) (*Session, error) {
	s := &Session{id: id, picker: picker, now: time.Now}
	if _, err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Round returns a snapshot of the current round.
func (s *Session) Round() game.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// Submit applies one keystroke and returns the resulting round.
func (s *Session) Submit(key string) (game.Round, game.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, res := game.Guess(s.round, key)
	s.round = next
	s.lastActive = s.now()
	return next, res
}

// Reset discards the current round and starts a new one from a fresh pick.
// On error the previous round is kept.
func (s *Session) Reset() (game.Round, error) {
	r, err := game.Start(s.picker.PickRandom())
	if err != nil {
		return game.Round{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = r
	s.lastActive = s.now()
	return r, nil
}

// LastActive returns the time of the last keystroke or reset.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
