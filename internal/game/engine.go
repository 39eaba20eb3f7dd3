// internal/game/engine.go
//
// Guess engine for a single riddle round.
// Responsibilities:
//   - Start a round from a riddle entry (all letters hidden, 8 wrong guesses allowed).
//   - Normalize raw keystrokes to a single uppercase letter or reject them.
//   - Apply a letter: reveal every occurrence, or spend one wrong guess.
//   - Track state transitions: in_progress → won/lost, exactly once.
//
// Notes:
//   - Guess is a pure function of (Round, key); invalid, repeated and
//     late keystrokes are no-ops, never errors.
//   - A win is checked before a loss.

package game

import (
	"errors"
	"strings"

	"github.com/robalobadob/riddler/internal/riddles"
)

const (
	// MaxWrongGuesses is the wrong-guess budget of a new round.
	MaxWrongGuesses = 8
	// Placeholder stands in for hidden letters in Revealed.
	Placeholder = '_'
)

// ErrInvalidAnswer is returned by Start for an empty or non-letter answer.
var ErrInvalidAnswer = errors.New("game: answer must be letters A-Z")

// Start begins a round for entry. The answer is uppercased.
func Start(entry riddles.Entry) (Round, error) {
	if !riddles.IsLetters(entry.Answer) {
		return Round{}, ErrInvalidAnswer
	}
	answer := strings.ToUpper(entry.Answer)
	return Round{
		prompt:    entry.Prompt,
		answer:    answer,
		revealed:  make([]bool, len(answer)),
		hidden:    len(answer),
		remaining: MaxWrongGuesses,
		status:    InProgress,
	}, nil
}

// NormalizeKey uppercases raw and accepts it only if it is a single letter A–Z.
func NormalizeKey(raw string) (byte, bool) {
	k := strings.ToUpper(raw)
	if len(k) != 1 || k[0] < 'A' || k[0] > 'Z' {
		return 0, false
	}
	return k[0], true
}

// Guess applies one keystroke to r and returns the next round and what happened.
// r itself is left untouched.
func Guess(r Round, rawKey string) (Round, Result) {
	letter, ok := NormalizeKey(rawKey)
	if !ok {
		return r, Result{Kind: Ignored}
	}
	if r.status != InProgress {
		return r, Result{Kind: Closed, Letter: letter}
	}
	i := letter - 'A'
	if r.correct[i] || r.wrong[i] {
		return r, Result{Kind: Repeat, Letter: letter}
	}

	next := r.clone()
	res := Result{Letter: letter}
	for p := 0; p < len(next.answer); p++ {
		if next.answer[p] == letter {
			next.revealed[p] = true
			next.hidden--
			res.Positions = append(res.Positions, p)
		}
	}
	if len(res.Positions) > 0 {
		res.Kind = Hit
		next.correct[i] = true
	} else {
		res.Kind = Miss
		next.wrong[i] = true
		next.wrongOrder = append(next.wrongOrder, letter)
		next.remaining--
	}

	switch {
	case next.hidden == 0:
		next.status = Won
	case next.remaining <= 0:
		next.remaining = 0
		next.status = Lost
	}
	return next, res
}

// clone copies r so that the copy shares no slices with r.
func (r Round) clone() Round {
	c := r
	c.revealed = append([]bool(nil), r.revealed...)
	c.wrongOrder = append([]byte(nil), r.wrongOrder...)
	return c
}

// Prompt returns the riddle text.
func (r Round) Prompt() string { return r.prompt }

// Answer returns the uppercase answer.
func (r Round) Answer() string { return r.answer }

// Status returns the round state.
func (r Round) Status() Status { return r.status }

// Finished reports whether the round is won or lost.
func (r Round) Finished() bool { return r.status != InProgress }

// Remaining returns how many wrong guesses are still allowed.
func (r Round) Remaining() int { return r.remaining }

// Revealed renders the answer with Placeholder for hidden letters, e.g. "P_NN_".
func (r Round) Revealed() string {
	var b strings.Builder
	b.Grow(len(r.answer))
	for p := 0; p < len(r.answer); p++ {
		if r.revealed[p] {
			b.WriteByte(r.answer[p])
		} else {
			b.WriteByte(Placeholder)
		}
	}
	return b.String()
}

// Mask returns a copy of the revealed mask, one entry per answer letter.
func (r Round) Mask() []bool {
	return append([]bool(nil), r.revealed...)
}

// WrongLetters returns the wrong guesses in the order they were made.
func (r Round) WrongLetters() []string {
	out := make([]string, len(r.wrongOrder))
	for i, c := range r.wrongOrder {
		out[i] = string(c)
	}
	return out
}

// CorrectLetters returns the correctly guessed letters in alphabetical order.
func (r Round) CorrectLetters() []string {
	var out []string
	for i, ok := range r.correct {
		if ok {
			out = append(out, string(rune('A'+i)))
		}
	}
	return out
}
