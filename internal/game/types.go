// internal/game/types.go
//
// Core type definitions for the guess engine.
// Defines:
//   - Status: round state (in progress / won / lost).
//   - Kind and Result: what a single keystroke did to a round.
//   - Round: the state of one round, from riddle selection to outcome.

package game

import "fmt"

// Status is the state of a round. The zero value is InProgress.
type Status int

const (
	InProgress Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status as "in_progress", "won" or "lost".
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case InProgress, Won, Lost:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("game: unknown status %d", int(s))
}

// Kind classifies the effect of one keystroke.
type Kind int

const (
	// Ignored: the key is not a single letter A–Z.
	Ignored Kind = iota
	// Closed: the round is already won or lost.
	Closed
	// Repeat: the letter was guessed before.
	Repeat
	// Hit: the letter occurs in the answer.
	Hit
	// Miss: the letter does not occur in the answer.
	Miss
)

func (k Kind) String() string {
	switch k {
	case Ignored:
		return "ignored"
	case Closed:
		return "closed"
	case Repeat:
		return "repeat"
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Changed reports whether a keystroke of this kind changed the round.
func (k Kind) Changed() bool { return k == Hit || k == Miss }

// Result describes a keystroke applied by Guess.
type Result struct {
	Kind      Kind
	Letter    byte  // normalized letter; 0 when Kind is Ignored
	Positions []int // answer positions revealed by this keystroke (Hit only)
}

// Round is the state of a single round. It is a value: Guess never
// modifies its argument, so a Round handed to a renderer stays stable.
type Round struct {
	prompt     string
	answer     string // uppercase A–Z
	revealed   []bool // parallel to answer
	hidden     int    // positions still false in revealed
	correct    [26]bool
	wrong      [26]bool
	wrongOrder []byte
	remaining  int
	status     Status
}
