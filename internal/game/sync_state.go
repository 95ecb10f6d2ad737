// internal/game/sync_state.go
package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// PlayerSummary is the public view of one seat: everything except the cards themselves.
type PlayerSummary struct {
	Name          string `json:"name"`
	HandSize      int    `json:"hand_size"`
	IsCurrentTurn bool   `json:"is_current_turn"`
}

// PlayerInfo is a snapshot of the game from the perspective of one player. Only that
// player's own hand is revealed.
type PlayerInfo struct {
	GameID        uuid.UUID       `json:"game_id"`
	Name          string          `json:"name"`
	IsCurrentTurn bool            `json:"is_current_turn"`
	Hand          []models.Card   `json:"hand"`
	ActiveCard    *models.Card    `json:"active_card,omitempty"`
	DeckSize      int             `json:"deck_size"`
	DiscardSize   int             `json:"discard_size"`
	Direction     string          `json:"direction"`
	Players       []PlayerSummary `json:"players"`
	GameOver      bool            `json:"game_over"`
	Winner        string          `json:"winner,omitempty"`
}

// CurrentPlayerInfo returns the snapshot for the player whose turn it is.
func (g *UnoGame) CurrentPlayerInfo() PlayerInfo {
	return g.snapshotFor(g.CurrentPlayerIndex)
}

// Snapshot returns the view of the named player.
func (g *UnoGame) Snapshot(name string) (PlayerInfo, error) {
	for i, p := range g.Players {
		if p.Name == name {
			return g.snapshotFor(i), nil
		}
	}
	return PlayerInfo{}, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
}

func (g *UnoGame) snapshotFor(seat int) PlayerInfo {
	p := g.Players[seat]
	info := PlayerInfo{
		GameID:        g.ID,
		Name:          p.Name,
		IsCurrentTurn: seat == g.CurrentPlayerIndex,
		Hand:          make([]models.Card, 0, len(p.Hand)),
		DeckSize:      len(g.Deck),
		DiscardSize:   len(g.DiscardPile),
		Direction:     "clockwise",
		GameOver:      g.GameOver,
	}
	if g.Direction < 0 {
		info.Direction = "counterclockwise"
	}
	for _, c := range p.Hand {
		info.Hand = append(info.Hand, *c)
	}
	if top := g.ActiveCard(); top != nil {
		cp := *top
		info.ActiveCard = &cp
	}
	for i, pl := range g.Players {
		info.Players = append(info.Players, PlayerSummary{
			Name:          pl.Name,
			HandSize:      len(pl.Hand),
			IsCurrentTurn: i == g.CurrentPlayerIndex,
		})
	}
	info.Winner, _ = g.CheckWinner()
	return info
}

func (info PlayerInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Player: %s\n", info.Name)
	if info.ActiveCard != nil {
		fmt.Fprintf(&sb, "Active card: %s\n", info.ActiveCard)
	}
	cards := make([]string, 0, len(info.Hand))
	for i := range info.Hand {
		cards = append(cards, info.Hand[i].String())
	}
	fmt.Fprintf(&sb, "Hand (%d): %s\n", len(info.Hand), strings.Join(cards, ", "))
	fmt.Fprintf(&sb, "Deck: %d cards, direction: %s\n", info.DeckSize, info.Direction)
	for _, p := range info.Players {
		marker := " "
		if p.IsCurrentTurn {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %s: %d cards\n", marker, p.Name, p.HandSize)
	}
	if info.Winner != "" {
		fmt.Fprintf(&sb, "Winner: %s\n", info.Winner)
	}
	return sb.String()
}
