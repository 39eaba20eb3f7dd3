// internal/riddles/bank.go
//
// The Riddle Bank: a fixed collection of (prompt, answer) pairs.
//
// Responsibilities:
//   - Validate the collection once, at construction (fail fast on bad data).
//   - Pick an entry uniformly at random; every pick is independent.
//   - Report simple statistics (size, duplicate pairs) for diagnostics.
//
// Constraints:
//   • The collection is never empty once New succeeds.
//   • Answers are letters A–Z only (case-insensitive).
//   • The bank is read-only after construction.

package riddles

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrEmptyBank is returned by New for a collection with no entries.
	ErrEmptyBank = errors.New("riddles: bank is empty")
	// ErrInvalidEntry is returned by New when an entry has no prompt or a non-letter answer.
	ErrInvalidEntry = errors.New("riddles: invalid entry")
)

// Entry is one riddle. Answer case is not significant.
type Entry struct {
	Prompt string `yaml:"riddle" json:"prompt"`
	Answer string `yaml:"answer" json:"answer"`
}

// Bank holds a validated, immutable list of entries.
type Bank struct {
	entries []Entry
	intn    func(n int) int
}

// Option customises a Bank.
type Option func(*Bank)

// WithIntn replaces the random source used by PickRandom.
// intn must return a value in [0, n).
func WithIntn(intn func(n int) int) Option {
	return func(b *Bank) { b.intn = intn }
}

// New validates entries and builds a Bank from a copy of them.
func New(entries []Entry, opts ...Option) (*Bank, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyBank
	}
	for i, e := range entries {
		if err := Validate(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	b := &Bank{
		entries: append([]Entry(nil), entries...),
		intn:    cryptoIntn,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Validate checks a single entry: non-empty prompt, non-empty A–Z answer.
func Validate(e Entry) error {
	if strings.TrimSpace(e.Prompt) == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidEntry)
	}
	if !IsLetters(e.Answer) {
		return fmt.Errorf("%w: answer %q must be letters A-Z", ErrInvalidEntry, e.Answer)
	}
	return nil
}

// IsLetters reports whether s is non-empty and only ASCII letters.
func IsLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// PickRandom returns one entry chosen uniformly at random.
func (b *Bank) PickRandom() Entry {
	return b.entries[b.intn(len(b.entries))]
}

// Len returns the number of entries, duplicates included.
func (b *Bank) Len() int { return len(b.entries) }

// Entries returns a copy of all entries in their original order.
func (b *Bank) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Stats summarises the bank for diagnostics.
type Stats struct {
	Entries    int `json:"entries"`
	Unique     int `json:"unique"`
	Duplicates int `json:"duplicates"`
}

// Stats counts entries and repeated (prompt, answer) pairs. Answers compare case-insensitively.
func (b *Bank) Stats() Stats {
	seen := make(map[Entry]struct{}, len(b.entries))
	for _, e := range b.entries {
		seen[Entry{Prompt: e.Prompt, Answer: strings.ToUpper(e.Answer)}] = struct{}{}
	}
	return Stats{
		Entries:    len(b.entries),
		Unique:     len(seen),
		Duplicates: len(b.entries) - len(seen),
	}
}

// cryptoIntn draws from crypto/rand, falling back to 0 if the reader fails.
func cryptoIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
