package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/riddler/internal/game"
	"github.com/robalobadob/riddler/internal/riddles"
)

// queue hands out entries in order, repeating the last one.
type queue struct{ entries []riddles.Entry }

func (q *queue) PickRandom() riddles.Entry {
	e := q.entries[0]
	if len(q.entries) > 1 {
		q.entries = q.entries[1:]
	}
	return e
}

func TestSubmitAndReset(t *testing.T) {
	q := &queue{entries: []riddles.Entry{
		{Prompt: "head and tail", Answer: "Penny"},
		{Prompt: "wetter as it dries", Answer: "Towel"},
	}}
	s, err := New("abc", q)
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ID())
	assert.Equal(t, "PENNY", s.Round().Answer())

	r, res := s.Submit("n")
	assert.Equal(t, game.Hit, res.Kind)
	assert.Equal(t, "__NN_", r.Revealed())
	assert.Equal(t, r, s.Round())

	r, res = s.Submit("5")
	assert.Equal(t, game.Ignored, res.Kind)
	assert.Equal(t, "__NN_", r.Revealed())

	r, err = s.Reset()
	require.NoError(t, err)
	assert.Equal(t, "TOWEL", r.Answer())
	assert.Equal(t, "_____", s.Round().Revealed())
	assert.Equal(t, game.MaxWrongGuesses, s.Round().Remaining())
}

func TestNewFailsOnBadEntry(t *testing.T) {
	_, err := New("x", &queue{entries: []riddles.Entry{{Prompt: "p", Answer: "two words"}}})
	assert.ErrorIs(t, err, game.ErrInvalidAnswer)
}

func TestLastActive(t *testing.T) {
	s, err := New("x", &queue{entries: []riddles.Entry{{Prompt: "p", Answer: "Egg"}}})
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return at }
	s.Submit("E")
	assert.Equal(t, at, s.LastActive())
}

func TestConcurrentSubmitsAreSerialised(t *testing.T) {
	s, err := New("x", &queue{entries: []riddles.Entry{{Prompt: "p", Answer: "Egg"}}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, k := range "ABCDFHIJKLMNOPQRSTUVWXYZ" {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			s.Submit(k)
		}(string(k))
	}
	wg.Wait()

	r := s.Round()
	assert.Equal(t, game.Lost, r.Status())
	assert.Equal(t, 0, r.Remaining())
	assert.Len(t, r.WrongLetters(), game.MaxWrongGuesses)
}
