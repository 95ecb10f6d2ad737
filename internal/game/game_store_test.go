package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStore(t *testing.T) {
	s := NewGameStore()
	g := setupTestGame(t, "Alice", "Bob")
	s.AddGame(g)
	assert.Equal(t, 1, s.Len())

	got, ok := s.GetGame(g.ID)
	require.True(t, ok)
	assert.Same(t, g, got)

	err := s.WithGame(uuid.New(), func(*UnoGame) error { return nil })
	assert.ErrorIs(t, err, ErrGameNotFound)

	s.DeleteGame(g.ID)
	_, ok = s.GetGame(g.ID)
	assert.False(t, ok)
}

// TestGameStoreSerializesAccess drives one game from many goroutines; every draw must be
// applied exactly once.
func TestGameStoreSerializesAccess(t *testing.T) {
	s := NewGameStore()
	g := setupTestGame(t, "Alice", "Bob")
	s.AddGame(g)
	deckBefore := len(g.Deck)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithGame(g.ID, func(g *UnoGame) error {
				_, err := g.DrawCard()
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, g.Deck, deckBefore-workers)
	requireConserved(t, g)
}
