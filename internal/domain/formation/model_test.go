package formation

import (
	"testing"

	"github.com/bescout/fantasy-events/internal/domain/card"
)

func TestPresetsAreValidSixSlotFormations(t *testing.T) {
	for _, key := range Keys() {
		form, ok := ByKey(key)
		if !ok {
			t.Fatalf("preset %s missing", key)
		}
		if err := form.Validate(); err != nil {
			t.Fatalf("preset %s invalid: %v", key, err)
		}
		if len(form.Slots) != 6 {
			t.Fatalf("preset %s has %d slots", key, len(form.Slots))
		}

		goalkeepers := 0
		for _, slot := range form.Slots {
			if slot.Position == card.PositionGoalkeeper {
				goalkeepers++
			}
		}
		if goalkeepers != 1 {
			t.Fatalf("preset %s has %d goalkeepers", key, goalkeepers)
		}
	}
}

func TestByKeyUnknown(t *testing.T) {
	if _, ok := ByKey("4-4-2"); ok {
		t.Fatal("unknown key resolved")
	}
}

func TestSlotByKey(t *testing.T) {
	form, _ := ByKey(KeyTwinStriker)

	slot, ok := form.SlotByKey("att2")
	if !ok {
		t.Fatal("att2 missing from twin striker")
	}
	if slot.Position != card.PositionAttacker {
		t.Fatalf("att2 has position %s", slot.Position)
	}

	if _, ok := form.SlotByKey("def3"); ok {
		t.Fatal("twin striker should not have def3")
	}
}

func TestFormationValidate(t *testing.T) {
	bad := Formation{
		Key: "dup",
		Slots: []Slot{
			{Key: "gk", Position: card.PositionGoalkeeper},
			{Key: "gk", Position: card.PositionGoalkeeper},
		},
	}
	if err := bad.Validate(); err == nil {
		t.Fatal("duplicate slot keys accepted")
	}

	badPos := Formation{
		Key:   "pos",
		Slots: []Slot{{Key: "gk", Position: "LIBERO"}},
	}
	if err := badPos.Validate(); err == nil {
		t.Fatal("invalid position accepted")
	}

	empty := Formation{Key: "empty"}
	if err := empty.Validate(); err == nil {
		t.Fatal("empty formation accepted")
	}
}
