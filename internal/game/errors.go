package game

import "errors"

// Engine errors. All of them are recoverable by the caller; none leaves the game in a
// partially mutated state. Wrapped errors carry the offending cards or players, so callers
// should compare with errors.Is.
var (
	ErrCardNotInHand           = errors.New("card not in hand")
	ErrIllegalPlay             = errors.New("illegal play")
	ErrMissingColorChoice      = errors.New("a color must be chosen for a wild card")
	ErrInvalidColorChoice      = errors.New("chosen color must be Red, Green, Blue or Yellow")
	ErrDeckExhausted           = errors.New("deck exhausted")
	ErrInsufficientDeckForDeal = errors.New("not enough cards in deck to deal")
	ErrNotEnoughPlayers        = errors.New("at least 2 players are required")
	ErrInvalidPlayerName       = errors.New("player name must not be empty")
	ErrInvalidHandSize         = errors.New("hand size must be at least 1")
	ErrAlreadyDealt            = errors.New("cards have already been dealt")
	ErrNotDealt                = errors.New("cards have not been dealt yet")
	ErrGameOver                = errors.New("game is over")
	ErrMustDrawBeforePass      = errors.New("must draw a card before passing")
	ErrPlayerNotFound          = errors.New("player not found")
	ErrUnknownAction           = errors.New("unknown action")
	ErrGameNotFound            = errors.New("game not found")
)
