// internal/game/deck.go
package game

import (
	"math/rand"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 108

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// BuildDeck enumerates a standard 108-card deck in a fixed order: for each color one 0 and
// two each of 1-9, Skip, Reverse and DrawTwo, followed by four Wild and four WildDrawFour.
func BuildDeck() []*models.Card {
	deck := make([]*models.Card, 0, DeckSize)
	for _, color := range models.Colors {
		deck = append(deck, models.NewCard(color, models.Zero))
		for _, value := range models.Numbers[1:] {
			deck = append(deck, models.NewCard(color, value), models.NewCard(color, value))
		}
		for _, value := range []models.Value{models.Skip, models.Reverse, models.DrawTwo} {
			deck = append(deck, models.NewCard(color, value), models.NewCard(color, value))
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, models.NewCard(models.Wild, models.WildCard))
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, models.NewCard(models.Wild, models.WildDrawFour))
	}
	return deck
}

// WithSeed shuffles with a math/rand source seeded by seed, giving reproducible deals.
func WithSeed(seed int64) Option {
	return WithShuffler(rand.New(rand.NewSource(seed)))
}

func newTimeSeededShuffler() Shuffler {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// shuffleDeck shuffles the deck in place.
func shuffleDeck(s Shuffler, deck []*models.Card) {
	s.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// popTop removes and returns the top (last) card, or nil when the deck is empty.
// Assumes the caller has already checked for emptiness where that is an error.
func (g *UnoGame) popTop() *models.Card {
	if len(g.Deck) == 0 {
		return nil
	}
	idx := len(g.Deck) - 1
	card := g.Deck[idx]
	g.Deck = g.Deck[:idx]
	return card
}
