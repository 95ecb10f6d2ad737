package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators shared by every game tool handler.
type Deps struct {
	Store           *game.GameStore
	Logger          *logrus.Logger
	OnAction        func(models.ActionRecord) // optional action log
	DefaultHandSize int
}

// CardView is the wire shape of a card.
type CardView struct {
	ID    string `json:"id" jsonschema:"card identifier"`
	Color string `json:"color" jsonschema:"Red, Green, Blue, Yellow, or Wild for an unplayed wild card"`
	Value string `json:"value" jsonschema:"0-9, Skip, Reverse, DrawTwo, Wild or WildDrawFour"`
	Label string `json:"label" jsonschema:"human readable card name"`
}

// SeatView is the public view of one player.
type SeatView struct {
	Name          string `json:"name"`
	HandSize      int    `json:"hand_size"`
	IsCurrentTurn bool   `json:"is_current_turn"`
}

// StateView is the game as seen by one player.
type StateView struct {
	GameID     string     `json:"game_id"`
	Player     string     `json:"player" jsonschema:"player this view belongs to"`
	Hand       []CardView `json:"hand"`
	ActiveCard *CardView  `json:"active_card,omitempty"`
	DeckSize   int        `json:"deck_size"`
	Direction  string     `json:"direction"`
	Players    []SeatView `json:"players"`
	GameOver   bool       `json:"game_over"`
	Winner     string     `json:"winner,omitempty"`
	Summary    string     `json:"summary" jsonschema:"plain text rendering of the state"`
}

// NewGameInput represents the MCP tool input for starting a game.
type NewGameInput struct {
	Players  []string `json:"players" jsonschema:"player names in seating order, at least 2"`
	HandSize int      `json:"hand_size,omitempty" jsonschema:"cards dealt to each player (default 7)"`
	Seed     *int64   `json:"seed,omitempty" jsonschema:"optional shuffle seed for a reproducible deal; omit for a random deal"`
}

// NewGameResult represents the MCP tool output for starting a game.
type NewGameResult struct {
	GameID  string    `json:"game_id"`
	Message string    `json:"message"`
	State   StateView `json:"state"`
}

// GameRefInput identifies a game.
type GameRefInput struct {
	GameID string `json:"game_id" jsonschema:"game identifier returned by new_game"`
}

// StateInput represents the MCP tool input for reading the game state.
type StateInput struct {
	GameID string `json:"game_id" jsonschema:"game identifier returned by new_game"`
	Player string `json:"player,omitempty" jsonschema:"player to view the game as (default: current player)"`
}

// PlayCardInput represents the MCP tool input for playing a card.
type PlayCardInput struct {
	GameID      string `json:"game_id" jsonschema:"game identifier returned by new_game"`
	CardID      string `json:"card_id,omitempty" jsonschema:"optional exact card identifier from the hand"`
	Color       string `json:"color,omitempty" jsonschema:"card color; omit for wild cards"`
	Value       string `json:"value,omitempty" jsonschema:"card value, e.g. 5, Skip, Reverse, DrawTwo, Wild, WildDrawFour"`
	ChosenColor string `json:"chosen_color,omitempty" jsonschema:"color to assign when playing a wild card"`
}

// MoveResult represents the MCP tool output of a play or pass.
type MoveResult struct {
	Message string    `json:"message"`
	Winner  string    `json:"winner,omitempty"`
	State   StateView `json:"state"`
}

// DrawCardResult represents the MCP tool output of a draw.
type DrawCardResult struct {
	Card    CardView  `json:"card"`
	Message string    `json:"message"`
	State   StateView `json:"state"`
}

// WinnerResult represents the MCP tool output of a winner check.
type WinnerResult struct {
	HasWinner bool   `json:"has_winner"`
	Winner    string `json:"winner,omitempty"`
	Message   string `json:"message"`
}

func NewGameTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "new_game",
		Description: "Start a new Uno game: seat the players, shuffle and deal",
	}
}

func GetStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_state",
		Description: "Show the current player's hand, the active card and every player's card count",
	}
}

func PlayCardTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "play_card",
		Description: "Play a card from the current player's hand; wild cards need chosen_color",
	}
}

func DrawCardTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "draw_card",
		Description: "Draw the top card of the deck into the current player's hand without ending the turn",
	}
}

func PassTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "pass_turn",
		Description: "End the current player's turn after drawing",
	}
}

func CheckWinnerTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "check_winner",
		Description: "Report the winner, if any player has emptied their hand",
	}
}

// NewGameHandler creates, deals and stores a new game.
func NewGameHandler(deps Deps) mcp.ToolHandlerFor[NewGameInput, NewGameResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input NewGameInput) (*mcp.CallToolResult, NewGameResult, error) {
		rules := game.DefaultHouseRules()
		if deps.DefaultHandSize > 0 {
			rules.HandSize = deps.DefaultHandSize
		}
		if input.HandSize != 0 {
			rules.HandSize = input.HandSize
		}
		opts := []game.Option{game.WithHouseRules(rules), game.WithLogger(deps.Logger)}
		if input.Seed != nil {
			opts = append(opts, game.WithSeed(*input.Seed))
		}

		g, err := game.NewUnoGame(input.Players, opts...)
		if err != nil {
			return nil, NewGameResult{}, err
		}
		g.OnAction = deps.OnAction
		if err := g.Deal(0); err != nil {
			return nil, NewGameResult{}, err
		}
		deps.Store.AddGame(g)

		return nil, NewGameResult{
			GameID:  g.ID.String(),
			Message: fmt.Sprintf("Dealt %d cards each. The active card is %s. It is %s's turn.", rules.HandSize, g.ActiveCard(), g.CurrentPlayer().Name),
			State:   stateView(g.CurrentPlayerInfo()),
		}, nil
	}
}

// GetStateHandler returns the state as seen by the requested or current player.
func GetStateHandler(deps Deps) mcp.ToolHandlerFor[StateInput, StateView] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input StateInput) (*mcp.CallToolResult, StateView, error) {
		var view StateView
		err := withGame(deps, input.GameID, func(g *game.UnoGame) error {
			info := g.CurrentPlayerInfo()
			if input.Player != "" {
				var err error
				if info, err = g.Snapshot(input.Player); err != nil {
					return err
				}
			}
			view = stateView(info)
			return nil
		})
		return nil, view, err
	}
}

// PlayCardHandler plays a card for the current player.
func PlayCardHandler(deps Deps) mcp.ToolHandlerFor[PlayCardInput, MoveResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PlayCardInput) (*mcp.CallToolResult, MoveResult, error) {
		card, chosen, err := parsePlay(input)
		if err != nil {
			return nil, MoveResult{}, err
		}
		var result MoveResult
		err = withGame(deps, input.GameID, func(g *game.UnoGame) error {
			msg, err := g.Play(card, chosen)
			if err != nil {
				return err
			}
			result.Message = msg
			result.Winner, _ = g.CheckWinner()
			result.State = stateView(g.CurrentPlayerInfo())
			return nil
		})
		return nil, result, err
	}
}

// DrawCardHandler draws one card for the current player.
func DrawCardHandler(deps Deps) mcp.ToolHandlerFor[GameRefInput, DrawCardResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input GameRefInput) (*mcp.CallToolResult, DrawCardResult, error) {
		var result DrawCardResult
		err := withGame(deps, input.GameID, func(g *game.UnoGame) error {
			card, err := g.DrawCard()
			if err != nil {
				return err
			}
			result.Card = cardView(*card)
			result.Message = fmt.Sprintf("%s drew %s.", g.CurrentPlayer().Name, card)
			result.State = stateView(g.CurrentPlayerInfo())
			return nil
		})
		return nil, result, err
	}
}

// PassTurnHandler ends the current player's turn.
func PassTurnHandler(deps Deps) mcp.ToolHandlerFor[GameRefInput, MoveResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input GameRefInput) (*mcp.CallToolResult, MoveResult, error) {
		var result MoveResult
		err := withGame(deps, input.GameID, func(g *game.UnoGame) error {
			msg, err := g.Pass()
			if err != nil {
				return err
			}
			result.Message = msg
			result.State = stateView(g.CurrentPlayerInfo())
			return nil
		})
		return nil, result, err
	}
}

// CheckWinnerHandler reports the winner of a game.
func CheckWinnerHandler(deps Deps) mcp.ToolHandlerFor[GameRefInput, WinnerResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input GameRefInput) (*mcp.CallToolResult, WinnerResult, error) {
		var result WinnerResult
		err := withGame(deps, input.GameID, func(g *game.UnoGame) error {
			result.Winner, result.HasWinner = g.CheckWinner()
			if result.HasWinner {
				result.Message = fmt.Sprintf("%s has won the game!", result.Winner)
			} else {
				result.Message = "The game is ongoing."
			}
			return nil
		})
		return nil, result, err
	}
}

func withGame(deps Deps, rawID string, fn func(g *game.UnoGame) error) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid game_id %q: %w", rawID, err)
	}
	return deps.Store.WithGame(id, fn)
}

func parsePlay(input PlayCardInput) (models.Card, models.Color, error) {
	var card models.Card
	var chosen models.Color
	if input.CardID != "" {
		id, err := uuid.Parse(input.CardID)
		if err != nil {
			return card, chosen, fmt.Errorf("invalid card_id %q: %w", input.CardID, err)
		}
		card.ID = id
	} else {
		value, err := models.ParseValue(input.Value)
		if err != nil {
			return card, chosen, err
		}
		card.Value = value
		card.Wild = value.IsWild()
		card.Color = models.Wild
		if !card.Wild {
			if card.Color, err = models.ParseColor(input.Color); err != nil {
				return card, chosen, err
			}
		}
	}
	if input.ChosenColor != "" {
		var err error
		if chosen, err = models.ParseColor(input.ChosenColor); err != nil {
			return card, chosen, fmt.Errorf("%w: %v", game.ErrInvalidColorChoice, err)
		}
	}
	return card, chosen, nil
}

func cardView(c models.Card) CardView {
	return CardView{
		ID:    c.ID.String(),
		Color: string(c.Color),
		Value: string(c.Value),
		Label: c.String(),
	}
}

func stateView(info game.PlayerInfo) StateView {
	view := StateView{
		GameID:    info.GameID.String(),
		Player:    info.Name,
		Hand:      make([]CardView, 0, len(info.Hand)),
		Players:   make([]SeatView, 0, len(info.Players)),
		DeckSize:  info.DeckSize,
		Direction: info.Direction,
		GameOver:  info.GameOver,
		Winner:    info.Winner,
		Summary:   info.String(),
	}
	for _, c := range info.Hand {
		view.Hand = append(view.Hand, cardView(c))
	}
	if info.ActiveCard != nil {
		active := cardView(*info.ActiveCard)
		view.ActiveCard = &active
	}
	for _, p := range info.Players {
		view.Players = append(view.Players, SeatView{Name: p.Name, HandSize: p.HandSize, IsCurrentTurn: p.IsCurrentTurn})
	}
	return view
}
