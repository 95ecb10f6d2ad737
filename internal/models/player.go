package models

import "github.com/google/uuid"

type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Hand []*Card   `json:"hand"`
}

// NewPlayer creates a player with an empty hand.
func NewPlayer(name string) *Player {
	id, _ := uuid.NewRandom()
	return &Player{ID: id, Name: name, Hand: []*Card{}}
}
