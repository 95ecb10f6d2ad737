// internal/game/game.go
package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// Action types emitted through OnAction and accepted by HandleAction.
const (
	ActionDeal = "action_deal"
	ActionPlay = "action_play"
	ActionDraw = "action_draw"
	ActionPass = "action_pass"

	// ActionEndGame follows the winning play.
	ActionEndGame = "action_end_game"
)

// UnoGame holds the entire state for a single game instance in memory.
//
// UnoGame performs no locking. Exactly one caller may drive an instance at a time; callers
// that share a game across goroutines must serialize access, e.g. through GameStore.WithGame.
type UnoGame struct {
	ID         uuid.UUID
	HouseRules HouseRules

	Players     []*models.Player // seating order, never reordered
	Deck        []*models.Card   // top of the deck is the last element
	DiscardPile []*models.Card   // active card is the last element

	// Turn logic
	CurrentPlayerIndex int
	Direction          int // +1 in seating order, -1 after an odd number of Reverses
	TurnID             int // increments each turn

	Dealt    bool
	GameOver bool

	// OnAction is invoked synchronously after every successful deal, play, draw and pass.
	// If nil, nothing is recorded.
	OnAction func(rec models.ActionRecord)

	drewThisTurn bool
	actionIndex  int
	shuffler     Shuffler
	log          *logrus.Entry
}

// Option configures an UnoGame at construction.
type Option func(*UnoGame)

// WithShuffler replaces the time-seeded shuffler, e.g. with a seeded *rand.Rand.
func WithShuffler(s Shuffler) Option {
	return func(g *UnoGame) {
		if s != nil {
			g.shuffler = s
		}
	}
}

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(logger *logrus.Logger) Option {
	return func(g *UnoGame) {
		if logger != nil {
			g.log = logger.WithField("game_id", g.ID)
		}
	}
}

// WithHouseRules overrides the default house rules.
func WithHouseRules(rules HouseRules) Option {
	return func(g *UnoGame) {
		g.HouseRules = rules
	}
}

// NewUnoGame seats the named players and builds a full, unshuffled deck.
func NewUnoGame(names []string, opts ...Option) (*UnoGame, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughPlayers, len(names))
	}
	players := make([]*models.Player, 0, len(names))
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: seat %d", ErrInvalidPlayerName, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q is seated twice", ErrInvalidPlayerName, name)
		}
		seen[name] = true
		players = append(players, models.NewPlayer(name))
	}

	id, _ := uuid.NewRandom()
	g := &UnoGame{
		ID:          id,
		HouseRules:  DefaultHouseRules(),
		Players:     players,
		Deck:        BuildDeck(),
		DiscardPile: []*models.Card{},
		Direction:   1,
		shuffler:    newTimeSeededShuffler(),
		log:         logrus.StandardLogger().WithField("game_id", id),
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.HouseRules.Validate(); err != nil {
		return nil, err
	}
	g.log.Debugf("Created game with %d players and %d cards.", len(g.Players), len(g.Deck))
	return g, nil
}

// Deal shuffles the deck, gives each player handSize cards in seating order and turns one
// card over to start the discard pile. A handSize of 0 uses the house-rule hand size.
func (g *UnoGame) Deal(handSize int) error {
	if g.Dealt {
		return ErrAlreadyDealt
	}
	if handSize == 0 {
		handSize = g.HouseRules.HandSize
	}
	if handSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidHandSize, handSize)
	}
	// players*handSize+1 <= deck, rearranged so a huge handSize cannot overflow
	if handSize > (len(g.Deck)-1)/len(g.Players) {
		return fmt.Errorf("%w: %d players x %d cards + 1, deck has %d",
			ErrInsufficientDeckForDeal, len(g.Players), handSize, len(g.Deck))
	}

	shuffleDeck(g.shuffler, g.Deck)

	for _, p := range g.Players {
		p.Hand = make([]*models.Card, 0, handSize)
		for i := 0; i < handSize; i++ {
			p.Hand = append(p.Hand, g.popTop())
		}
	}
	g.DiscardPile = append(g.DiscardPile, g.drawStartingCard())
	g.Dealt = true
	g.TurnID = 1

	g.log.WithFields(logrus.Fields{
		"hand_size": handSize,
		"deck_size": len(g.Deck),
		"active":    g.ActiveCard().String(),
	}).Info("Dealt cards")
	g.logAction(uuid.Nil, ActionDeal, map[string]interface{}{
		"handSize": handSize,
		"active":   g.ActiveCard().String(),
	})
	return nil
}

// drawStartingCard takes the top card for the discard pile. Wild cards are buried at the
// bottom of the deck so that the first active card has a concrete color; if only wild cards
// remain, the top one is used as is.
func (g *UnoGame) drawStartingCard() *models.Card {
	for tries := len(g.Deck); tries > 0; tries-- {
		top := g.Deck[len(g.Deck)-1]
		if !top.Wild {
			break
		}
		g.Deck = append([]*models.Card{top}, g.Deck[:len(g.Deck)-1]...)
		g.log.Debugf("Buried wild starting card %s.", top)
	}
	return g.popTop()
}

// ActiveCard returns the top of the discard pile, or nil before the deal.
func (g *UnoGame) ActiveCard() *models.Card {
	if len(g.DiscardPile) == 0 {
		return nil
	}
	return g.DiscardPile[len(g.DiscardPile)-1]
}

// CurrentPlayer returns the player whose turn it is.
func (g *UnoGame) CurrentPlayer() *models.Player {
	return g.Players[g.CurrentPlayerIndex]
}

// Play validates and executes the current player's play of card. Cards are located by ID
// when card.ID is set, otherwise by face. chosenColor is required for wild cards and ignored
// for all others. On any error the game state is unchanged.
func (g *UnoGame) Play(card models.Card, chosenColor models.Color) (string, error) {
	if err := g.checkInProgress(); err != nil {
		return "", err
	}
	player := g.CurrentPlayer()

	idx := findInHand(player, card)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s does not hold %s", ErrCardNotInHand, player.Name, describeCard(card))
	}
	held := player.Hand[idx]

	active := g.ActiveCard()
	if !canPlayOn(held, active) {
		return "", fmt.Errorf("%w: %s cannot be played on %s", ErrIllegalPlay, held, active)
	}

	if held.Wild {
		if chosenColor == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingColorChoice, held)
		}
		if !chosenColor.IsConcrete() {
			return "", fmt.Errorf("%w: got %q", ErrInvalidColorChoice, chosenColor)
		}
	}

	if n := penaltyFor(held.Value); n > len(g.Deck) {
		return "", fmt.Errorf("%w: %s needs %d cards, deck has %d", ErrDeckExhausted, held, n, len(g.Deck))
	}

	// All validation passed; mutate from here on.
	if held.Wild {
		held.Color = chosenColor
	}
	player.Hand = append(player.Hand[:idx], player.Hand[idx+1:]...)
	g.DiscardPile = append(g.DiscardPile, held)

	var msg strings.Builder
	fmt.Fprintf(&msg, "%s played %s.", player.Name, held)

	effect, err := g.resolveEffect(held)
	if err != nil {
		// penalty cards were counted above
		return "", err
	}
	if effect != "" {
		msg.WriteString(" ")
		msg.WriteString(effect)
	}
	g.advanceTurn(1)

	if len(player.Hand) == 0 {
		g.GameOver = true
		fmt.Fprintf(&msg, " %s has no cards left and wins the game!", player.Name)
	} else {
		fmt.Fprintf(&msg, " It is now %s's turn.", g.CurrentPlayer().Name)
	}

	g.log.WithFields(logrus.Fields{
		"player": player.Name,
		"card":   held.String(),
		"next":   g.CurrentPlayer().Name,
	}).Debug("Card played")
	g.logAction(player.ID, ActionPlay, map[string]interface{}{
		"cardId": held.ID,
		"color":  string(held.Color),
		"value":  string(held.Value),
	})
	if g.GameOver {
		g.logAction(player.ID, ActionEndGame, map[string]interface{}{"winner": player.Name})
	}
	return msg.String(), nil
}

// DrawCard moves the top card of the deck into the current player's hand. Drawing does not
// end the turn.
func (g *UnoGame) DrawCard() (*models.Card, error) {
	if err := g.checkInProgress(); err != nil {
		return nil, err
	}
	player := g.CurrentPlayer()
	if len(g.Deck) == 0 {
		return nil, fmt.Errorf("%w: %s cannot draw", ErrDeckExhausted, player.Name)
	}
	card := g.popTop()
	player.Hand = append(player.Hand, card)
	g.drewThisTurn = true

	g.log.WithFields(logrus.Fields{"player": player.Name, "deck_size": len(g.Deck)}).Debug("Card drawn")
	g.logAction(player.ID, ActionDraw, map[string]interface{}{"cardId": card.ID, "newSize": len(g.Deck)})
	return card, nil
}

// Pass ends the current player's turn without playing. The player must have drawn at least
// one card during this turn.
func (g *UnoGame) Pass() (string, error) {
	if err := g.checkInProgress(); err != nil {
		return "", err
	}
	player := g.CurrentPlayer()
	if !g.drewThisTurn {
		return "", fmt.Errorf("%w: %s", ErrMustDrawBeforePass, player.Name)
	}
	g.advanceTurn(1)
	g.logAction(player.ID, ActionPass, nil)
	return fmt.Sprintf("%s passed. It is now %s's turn.", player.Name, g.CurrentPlayer().Name), nil
}

// CheckWinner returns the first player in seating order whose hand is empty.
func (g *UnoGame) CheckWinner() (string, bool) {
	if !g.Dealt {
		return "", false
	}
	for _, p := range g.Players {
		if len(p.Hand) == 0 {
			return p.Name, true
		}
	}
	return "", false
}

// HandleAction routes a driver action to the matching engine operation. Play actions carry
// "color", "value" and optionally "chosen_color" or "id" in their payload.
func (g *UnoGame) HandleAction(action models.GameAction) (string, error) {
	switch action.ActionType {
	case ActionPlay:
		card, err := cardFromPayload(action.Payload)
		if err != nil {
			return "", err
		}
		var chosen models.Color
		if s, _ := action.Payload["chosen_color"].(string); s != "" {
			if chosen, err = models.ParseColor(s); err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidColorChoice, err)
			}
		}
		return g.Play(card, chosen)
	case ActionDraw:
		card, err := g.DrawCard()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s drew %s.", g.CurrentPlayer().Name, card), nil
	case ActionPass:
		return g.Pass()
	case ActionDeal:
		size := 0
		if n, ok := action.Payload["hand_size"].(float64); ok {
			size = int(n)
		} else if n, ok := action.Payload["hand_size"].(int); ok {
			size = n
		}
		if err := g.Deal(size); err != nil {
			return "", err
		}
		return fmt.Sprintf("Dealt cards. The active card is %s. It is %s's turn.", g.ActiveCard(), g.CurrentPlayer().Name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, action.ActionType)
}

func (g *UnoGame) checkInProgress() error {
	if !g.Dealt {
		return ErrNotDealt
	}
	if g.GameOver {
		return ErrGameOver
	}
	return nil
}

// advanceTurn moves the cursor steps seats in the current direction and starts a new turn.
func (g *UnoGame) advanceTurn(steps int) {
	g.CurrentPlayerIndex = g.seatAfter(g.CurrentPlayerIndex, steps)
	g.TurnID++
	g.drewThisTurn = false
}

// seatAfter returns the index steps seats away from idx in the current direction.
func (g *UnoGame) seatAfter(idx, steps int) int {
	n := len(g.Players)
	return ((idx+g.Direction*steps)%n + n) % n
}

// logAction emits an action record through OnAction.
func (g *UnoGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++ // Increment action index for ordering
	if g.OnAction == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	g.OnAction(models.ActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	})
}

// canPlayOn reports whether card may be played on active: matching color, matching value,
// or a wild card.
func canPlayOn(card, active *models.Card) bool {
	if card.Wild {
		return true
	}
	return card.Color == active.Color || card.Value == active.Value
}

// findInHand returns the index of card in the player's hand, or -1.
func findInHand(p *models.Player, card models.Card) int {
	for i, c := range p.Hand {
		if card.ID != uuid.Nil {
			if c.ID == card.ID {
				return i
			}
			continue
		}
		if c.Matches(card) {
			return i
		}
	}
	return -1
}

func describeCard(card models.Card) string {
	if card.Value.IsWild() || card.Color == "" {
		card.Color = models.Wild
	}
	return card.String()
}

func cardFromPayload(payload map[string]interface{}) (models.Card, error) {
	var card models.Card
	if s, _ := payload["id"].(string); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return card, fmt.Errorf("%w: invalid card id %q", ErrCardNotInHand, s)
		}
		card.ID = id
	}
	valueStr, _ := payload["value"].(string)
	if card.ID == uuid.Nil || valueStr != "" {
		value, err := models.ParseValue(valueStr)
		if err != nil {
			return card, fmt.Errorf("%w: %v", ErrCardNotInHand, err)
		}
		card.Value = value
		card.Wild = value.IsWild()
	}
	if card.Wild {
		card.Color = models.Wild
	} else if colorStr, _ := payload["color"].(string); colorStr != "" {
		color, err := models.ParseColor(colorStr)
		if err != nil {
			return card, fmt.Errorf("%w: %v", ErrCardNotInHand, err)
		}
		card.Color = color
	}
	return card, nil
}
