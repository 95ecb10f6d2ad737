// internal/models/card.go
package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Color is the color category or assigned color of a card.
type Color string

const (
	Red    Color = "Red"
	Green  Color = "Green"
	Blue   Color = "Blue"
	Yellow Color = "Yellow"
	Wild   Color = "Wild"
)

// Colors lists the four concrete colors in deck-building order.
var Colors = []Color{Red, Green, Blue, Yellow}

// IsConcrete reports whether c is one of the four playable colors.
func (c Color) IsConcrete() bool {
	switch c {
	case Red, Green, Blue, Yellow:
		return true
	}
	return false
}

// ParseColor converts a case-insensitive color name into a Color.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	case "yellow", "y":
		return Yellow, nil
	case "wild", "black":
		return Wild, nil
	}
	return "", fmt.Errorf("unknown color %q", s)
}

// Value is the face value of a card.
type Value string

const (
	Zero         Value = "0"
	One          Value = "1"
	Two          Value = "2"
	Three        Value = "3"
	Four         Value = "4"
	Five         Value = "5"
	Six          Value = "6"
	Seven        Value = "7"
	Eight        Value = "8"
	Nine         Value = "9"
	Skip         Value = "Skip"
	Reverse      Value = "Reverse"
	DrawTwo      Value = "DrawTwo"
	WildCard     Value = "Wild"
	WildDrawFour Value = "WildDrawFour"
)

// Numbers lists the numeric values 0..9.
var Numbers = []Value{Zero, One, Two, Three, Four, Five, Six, Seven, Eight, Nine}

// IsWild reports whether the value is Wild or WildDrawFour.
func (v Value) IsWild() bool {
	return v == WildCard || v == WildDrawFour
}

// IsAction reports whether the value alters turn order or forces draws.
func (v Value) IsAction() bool {
	switch v {
	case Skip, Reverse, DrawTwo, WildDrawFour:
		return true
	}
	return false
}

// ParseValue converts a case-insensitive value name (or a common alias) into a Value.
func ParseValue(s string) (Value, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	for _, n := range Numbers {
		if key == string(n) {
			return n, nil
		}
	}
	switch key {
	case "skip":
		return Skip, nil
	case "reverse", "rev":
		return Reverse, nil
	case "drawtwo", "draw2", "+2":
		return DrawTwo, nil
	case "wild":
		return WildCard, nil
	case "wilddrawfour", "wilddraw4", "wild4", "+4":
		return WildDrawFour, nil
	}
	return "", fmt.Errorf("unknown card value %q", s)
}

// Card is a single card instance. Wild records whether the card was built as a wild card,
// independently of the color it is later assigned when played.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Color Color     `json:"color"`
	Value Value     `json:"value"`
	Wild  bool      `json:"wild"`
}

// NewCard builds a card with a fresh ID. Wild values always start with color Wild.
func NewCard(color Color, value Value) *Card {
	cid, _ := uuid.NewRandom()
	c := &Card{ID: cid, Color: color, Value: value, Wild: value.IsWild()}
	if c.Wild {
		c.Color = Wild
	}
	return c
}

// Matches reports whether c has the same face as other. A wild card matches by value alone
// so that callers can refer to an unplayed wild without knowing its eventual color.
func (c *Card) Matches(other Card) bool {
	if c.Wild && other.Value.IsWild() {
		return c.Value == other.Value
	}
	return c.Color == other.Color && c.Value == other.Value
}

func (c *Card) String() string {
	name := string(c.Value)
	switch c.Value {
	case DrawTwo:
		name = "Draw Two"
	case WildDrawFour:
		name = "Wild Draw Four"
	}
	if c.Color == Wild {
		return name
	}
	return fmt.Sprintf("%s %s", c.Color, name)
}
