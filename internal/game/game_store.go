package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// storedGame pairs a game with the lock that serializes every operation on it.
type storedGame struct {
	mu   sync.Mutex
	game *UnoGame
}

// GameStore keeps in-progress games by ID and serializes access to each one.
type GameStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*storedGame
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID]*storedGame),
	}
}

func (s *GameStore) AddGame(game *UnoGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = &storedGame{game: game}
}

// GetGame returns the game without taking its lock. Callers that mutate it should use WithGame.
func (s *GameStore) GetGame(id uuid.UUID) (*UnoGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg, exists := s.games[id]
	if !exists {
		return nil, false
	}
	return sg.game, true
}

func (s *GameStore) DeleteGame(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

func (s *GameStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// WithGame runs fn while holding the game's lock, so concurrent callers see each operation
// run to completion. The store lock is released before fn runs.
func (s *GameStore) WithGame(id uuid.UUID, fn func(g *UnoGame) error) error {
	s.mu.Lock()
	sg, exists := s.games[id]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()
	return fn(sg.game)
}
