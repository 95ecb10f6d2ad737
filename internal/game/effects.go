// internal/game/effects.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
)

// penaltyFor returns how many cards the next player must draw when value is played.
func penaltyFor(value models.Value) int {
	switch value {
	case models.DrawTwo:
		return 2
	case models.WildDrawFour:
		return 4
	}
	return 0
}

// resolveEffect applies the effect of a card that has just been discarded by the current
// player. It runs before the regular one-seat advance done by Play, so Skip contributes only
// its extra seat and Reverse only flips the direction.
// Assumes the card is already on the discard pile.
func (g *UnoGame) resolveEffect(card *models.Card) (string, error) {
	switch card.Value {
	case models.DrawTwo, models.WildDrawFour:
		n := penaltyFor(card.Value)
		victim := g.Players[g.seatAfter(g.CurrentPlayerIndex, 1)]
		if err := g.forceDraw(victim, n); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s draws %d cards.", victim.Name, n), nil

	case models.Reverse:
		// Flipping the direction keeps the current player current; the regular advance then
		// picks the neighbour on the other side. With 2 players that is the same opponent.
		g.Direction = -g.Direction
		return "Play direction reversed.", nil

	case models.Skip:
		skipped := g.Players[g.seatAfter(g.CurrentPlayerIndex, 1)]
		g.CurrentPlayerIndex = g.seatAfter(g.CurrentPlayerIndex, 1)
		return fmt.Sprintf("%s is skipped.", skipped.Name), nil
	}
	return "", nil
}

// forceDraw moves n cards from the deck into p's hand one at a time.
func (g *UnoGame) forceDraw(p *models.Player, n int) error {
	for i := 0; i < n; i++ {
		card := g.popTop()
		if card == nil {
			return fmt.Errorf("%w: %s still owed %d cards", ErrDeckExhausted, p.Name, n-i)
		}
		p.Hand = append(p.Hand, card)
	}
	g.log.WithField("player", p.Name).Debugf("Forced draw of %d cards.", n)
	return nil
}
