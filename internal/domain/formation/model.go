package formation

import (
	"fmt"

	"github.com/bescout/fantasy-events/internal/domain/card"
)

// Slot is one position in a formation, addressed by a stable key.
type Slot struct {
	Key      string
	Position card.Position
}

// Formation is a fixed six-slot arrangement lineups must fill completely.
type Formation struct {
	Key   string
	Name  string
	Slots []Slot
}

const (
	KeyBalanced    = "1-2-2-1"
	KeyDefensive   = "1-3-1-1"
	KeyOffensive   = "1-1-3-1"
	KeyTwinStriker = "1-2-1-2"
)

var presets = map[string]Formation{
	KeyBalanced: {
		Key:  KeyBalanced,
		Name: "Balanced",
		Slots: []Slot{
			{Key: "gk", Position: card.PositionGoalkeeper},
			{Key: "def1", Position: card.PositionDefender},
			{Key: "def2", Position: card.PositionDefender},
			{Key: "mid1", Position: card.PositionMidfielder},
			{Key: "mid2", Position: card.PositionMidfielder},
			{Key: "att", Position: card.PositionAttacker},
		},
	},
	KeyDefensive: {
		Key:  KeyDefensive,
		Name: "Defensive",
		Slots: []Slot{
			{Key: "gk", Position: card.PositionGoalkeeper},
			{Key: "def1", Position: card.PositionDefender},
			{Key: "def2", Position: card.PositionDefender},
			{Key: "def3", Position: card.PositionDefender},
			{Key: "mid1", Position: card.PositionMidfielder},
			{Key: "att", Position: card.PositionAttacker},
		},
	},
	KeyOffensive: {
		Key:  KeyOffensive,
		Name: "Offensive",
		Slots: []Slot{
			{Key: "gk", Position: card.PositionGoalkeeper},
			{Key: "def1", Position: card.PositionDefender},
			{Key: "mid1", Position: card.PositionMidfielder},
			{Key: "mid2", Position: card.PositionMidfielder},
			{Key: "mid3", Position: card.PositionMidfielder},
			{Key: "att", Position: card.PositionAttacker},
		},
	},
	KeyTwinStriker: {
		Key:  KeyTwinStriker,
		Name: "Twin Striker",
		Slots: []Slot{
			{Key: "gk", Position: card.PositionGoalkeeper},
			{Key: "def1", Position: card.PositionDefender},
			{Key: "def2", Position: card.PositionDefender},
			{Key: "mid1", Position: card.PositionMidfielder},
			{Key: "att1", Position: card.PositionAttacker},
			{Key: "att2", Position: card.PositionAttacker},
		},
	},
}

// ByKey returns the preset formation for a key.
func ByKey(key string) (Formation, bool) {
	f, ok := presets[key]
	return f, ok
}

func Keys() []string {
	return []string{KeyBalanced, KeyDefensive, KeyOffensive, KeyTwinStriker}
}

func (f Formation) SlotByKey(key string) (Slot, bool) {
	for _, slot := range f.Slots {
		if slot.Key == key {
			return slot, true
		}
	}
	return Slot{}, false
}

func (f Formation) Validate() error {
	if f.Key == "" {
		return fmt.Errorf("formation key is required")
	}
	if len(f.Slots) == 0 {
		return fmt.Errorf("formation has no slots")
	}

	seen := make(map[string]struct{}, len(f.Slots))
	for _, slot := range f.Slots {
		if slot.Key == "" {
			return fmt.Errorf("formation slot key is required")
		}
		if _, dup := seen[slot.Key]; dup {
			return fmt.Errorf("duplicate formation slot key: %s", slot.Key)
		}
		seen[slot.Key] = struct{}{}
		if _, ok := card.AllPositions[slot.Position]; !ok {
			return fmt.Errorf("invalid formation slot position: %s", slot.Position)
		}
	}

	return nil
}
