// internal/game/rules.go
package game

import "fmt"

// DefaultHandSize is the number of cards dealt to each player unless overridden.
const DefaultHandSize = 7

// HouseRules defines optional game rules that can modify standard play.
type HouseRules struct {
	HandSize int `json:"handSize"` // cards dealt to each player; default is 7
}

// DefaultHouseRules returns the standard rule set.
func DefaultHouseRules() HouseRules {
	return HouseRules{HandSize: DefaultHandSize}
}

// Validate checks that every rule holds a usable value.
func (rules HouseRules) Validate() error {
	if rules.HandSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidHandSize, rules.HandSize)
	}
	return nil
}
