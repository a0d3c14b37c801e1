package layout

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/planwright/blockplan/pkg/errors"
	"github.com/planwright/blockplan/pkg/rules"
)

func testRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	reg, err := rules.NewRegistry(
		&rules.RoomTypeRule{Type: "treatmentRoom", Category: rules.CategoryClinical},
		&rules.RoomTypeRule{Type: "sterilization", Category: rules.CategoryClinical},
		&rules.RoomTypeRule{Type: "reception", Category: rules.CategoryPublic},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestExpand(t *testing.T) {
	reg := testRegistry(t)
	inv := Inventory{"treatmentRoom": 2, "sterilization": 1, "reception": 0}

	instances, err := Expand(reg, inv, quietLogger())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	wantIDs := []string{"sterilization__0", "treatmentRoom__0", "treatmentRoom__1"}
	if len(instances) != len(wantIDs) {
		t.Fatalf("got %d instances, want %d", len(instances), len(wantIDs))
	}
	for i, want := range wantIDs {
		if instances[i].ID() != want {
			t.Errorf("instance[%d] = %q, want %q", i, instances[i].ID(), want)
		}
	}

	byType := ByType(instances)
	if len(byType["treatmentRoom"]) != 2 {
		t.Errorf("treatmentRoom instances = %d, want 2", len(byType["treatmentRoom"]))
	}
	if len(byType["reception"]) != 0 {
		t.Errorf("reception should have no instances")
	}
}

func TestExpandErrors(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name string
		inv  Inventory
	}{
		{"empty", Inventory{}},
		{"unknown type", Inventory{"ghostRoom": 1}},
		{"negative count", Inventory{"treatmentRoom": -1}},
		{"all zero", Inventory{"treatmentRoom": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(reg, tt.inv, quietLogger())
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.GetCode(err) != errors.ErrCodeConfigInventory {
				t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeConfigInventory)
			}
		})
	}
}

func TestInventoryTreatmentRooms(t *testing.T) {
	inv := Inventory{"treatmentRoom": 6, "sterilization": 1}
	if got := inv.TreatmentRooms(); got != 6 {
		t.Errorf("TreatmentRooms = %d, want 6", got)
	}
	if got := inv.Total(); got != 7 {
		t.Errorf("Total = %d, want 7", got)
	}
}
