package card

import "fmt"

// Position represents the field position a card can be allocated to.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionAttacker   Position = "ATT"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionAttacker:   {},
}

// Card is a collectible player card that can be allocated into lineups.
type Card struct {
	ID       string
	Name     string
	ClubID   string
	Position Position
}

func (c Card) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("card id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("card name is required")
	}
	if c.ClubID == "" {
		return fmt.Errorf("card club id is required")
	}
	if _, ok := AllPositions[c.Position]; !ok {
		return fmt.Errorf("invalid card position: %s", c.Position)
	}

	return nil
}
