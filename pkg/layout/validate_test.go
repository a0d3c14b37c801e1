package layout

import (
	"strings"
	"testing"

	"github.com/planwright/blockplan/pkg/rules"
)

func validateRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	reg, err := rules.NewRegistry(
		&rules.RoomTypeRule{
			Type:     "clinicalCorridor",
			Category: rules.CategoryClinical,
		},
		&rules.RoomTypeRule{
			Type:     "treatmentRoom",
			Category: rules.CategoryClinical,
			Size: rules.SizeRule{
				Min: &rules.Dims{Width: 97, Length: 126},
				Max: &rules.Dims{Width: 108, Length: 132},
			},
			Adjacency: rules.AdjacencyRules{
				Direct: []rules.Rule{
					{Kind: rules.KindAdjacent, Target: "clinicalCorridor", Hard: true},
				},
			},
		},
		&rules.RoomTypeRule{
			Type:     "patientLounge",
			Category: rules.CategoryPublic,
			Adjacency: rules.AdjacencyRules{
				Separation: []rules.Rule{
					{Kind: rules.KindSeparate, Target: "treatmentRoom", Hard: true},
				},
			},
		},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestValidateCleanLayout(t *testing.T) {
	reg := validateRegistry(t)
	sol := &Solution{
		Status:      StatusOptimal,
		FloorWidth:  1200,
		FloorHeight: 800,
		Rooms: []PlacedRoom{
			{
				ID: "treatmentRoom__0", Type: "treatmentRoom",
				Rect:  Rect{X: 0, Y: 0, Width: 100, Height: 130},
				Doors: []Door{{X: 100, Y: 60, Slot: 0}},
			},
			{
				ID: "clinicalCorridor__0", Type: "clinicalCorridor",
				Rect: Rect{X: 100, Y: 0, Width: 60, Height: 400},
			},
			{
				ID: "patientLounge__0", Type: "patientLounge",
				Rect: Rect{X: 400, Y: 500, Width: 150, Height: 150},
			},
		},
	}

	if got := Validate(sol, reg, CheckOptions{}); len(got) != 0 {
		t.Errorf("clean layout reported violations: %v", got)
	}
}

func TestValidateViolations(t *testing.T) {
	reg := validateRegistry(t)

	tests := []struct {
		name     string
		sol      *Solution
		property string
	}{
		{
			name: "out of bounds",
			sol: &Solution{
				FloorWidth: 200, FloorHeight: 200,
				Rooms: []PlacedRoom{
					{ID: "clinicalCorridor__0", Type: "clinicalCorridor", Rect: Rect{X: 150, Y: 0, Width: 100, Height: 100}},
				},
			},
			property: "bounds",
		},
		{
			name: "overlapping rooms",
			sol: &Solution{
				FloorWidth: 1000, FloorHeight: 1000,
				Rooms: []PlacedRoom{
					{ID: "clinicalCorridor__0", Type: "clinicalCorridor", Rect: Rect{X: 0, Y: 0, Width: 100, Height: 100}},
					{ID: "clinicalCorridor__1", Type: "clinicalCorridor", Rect: Rect{X: 50, Y: 50, Width: 100, Height: 100}},
				},
			},
			property: "overlap",
		},
		{
			name: "too small",
			sol: &Solution{
				FloorWidth: 1000, FloorHeight: 1000,
				Rooms: []PlacedRoom{
					{ID: "treatmentRoom__0", Type: "treatmentRoom", Rect: Rect{X: 0, Y: 0, Width: 50, Height: 50}},
					{ID: "clinicalCorridor__0", Type: "clinicalCorridor", Rect: Rect{X: 50, Y: 0, Width: 60, Height: 400}},
				},
			},
			property: "size_min",
		},
		{
			name: "adjacency broken",
			sol: &Solution{
				FloorWidth: 1000, FloorHeight: 1000,
				Rooms: []PlacedRoom{
					{ID: "treatmentRoom__0", Type: "treatmentRoom", Rect: Rect{X: 0, Y: 0, Width: 100, Height: 130}},
					{ID: "clinicalCorridor__0", Type: "clinicalCorridor", Rect: Rect{X: 500, Y: 0, Width: 60, Height: 400}},
				},
			},
			property: "adjacency",
		},
		{
			name: "separation broken",
			sol: &Solution{
				FloorWidth: 1000, FloorHeight: 1000,
				Rooms: []PlacedRoom{
					{ID: "treatmentRoom__0", Type: "treatmentRoom", Rect: Rect{X: 0, Y: 0, Width: 100, Height: 130}},
					{ID: "clinicalCorridor__0", Type: "clinicalCorridor", Rect: Rect{X: 100, Y: 0, Width: 60, Height: 400}},
					{ID: "patientLounge__0", Type: "patientLounge", Rect: Rect{X: 200, Y: 0, Width: 150, Height: 150}},
				},
			},
			property: "separation",
		},
		{
			name: "door off perimeter",
			sol: &Solution{
				FloorWidth: 1000, FloorHeight: 1000,
				Rooms: []PlacedRoom{
					{
						ID: "clinicalCorridor__0", Type: "clinicalCorridor",
						Rect:  Rect{X: 0, Y: 0, Width: 60, Height: 400},
						Doors: []Door{{X: 30, Y: 200, Slot: 0}},
					},
				},
			},
			property: "door_perimeter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.sol, reg, CheckOptions{})
			if len(got) == 0 {
				t.Fatal("expected violations, got none")
			}
			found := false
			for _, v := range got {
				if v.Property == tt.property {
					found = true
				}
			}
			if !found {
				var props []string
				for _, v := range got {
					props = append(props, v.String())
				}
				t.Errorf("no %q violation in: %s", tt.property, strings.Join(props, "; "))
			}
		})
	}
}

func TestValidateAdjacencyBindsEveryTargetInstance(t *testing.T) {
	reg := validateRegistry(t)
	// Touching one corridor is not enough: the hard rule must hold against
	// both corridor instances.
	sol := &Solution{
		FloorWidth: 4000, FloorHeight: 1000,
		Rooms: []PlacedRoom{
			{ID: "treatmentRoom__0", Type: "treatmentRoom", Rect: Rect{X: 0, Y: 0, Width: 100, Height: 130}},
			{ID: "clinicalCorridor__0", Type: "clinicalCorridor", Rect: Rect{X: 100, Y: 0, Width: 60, Height: 400}},
			{ID: "clinicalCorridor__1", Type: "clinicalCorridor", Rect: Rect{X: 2900, Y: 0, Width: 60, Height: 400}},
		},
	}

	var adjacency []Violation
	for _, v := range Validate(sol, reg, CheckOptions{}) {
		if v.Property == "adjacency" {
			adjacency = append(adjacency, v)
		}
	}
	if len(adjacency) != 1 {
		t.Fatalf("want one adjacency violation, got %v", adjacency)
	}
	if !strings.Contains(adjacency[0].Message, "clinicalCorridor__1") {
		t.Errorf("violation %q should name the untouched corridor", adjacency[0].Message)
	}
}

func TestValidateAdjacencyVacuousWithoutTargets(t *testing.T) {
	reg := validateRegistry(t)
	// No corridor placed at all: the direct-adjacency rule holds vacuously.
	sol := &Solution{
		FloorWidth: 1000, FloorHeight: 1000,
		Rooms: []PlacedRoom{
			{ID: "treatmentRoom__0", Type: "treatmentRoom", Rect: Rect{X: 0, Y: 0, Width: 100, Height: 130}},
		},
	}
	for _, v := range Validate(sol, reg, CheckOptions{}) {
		if v.Property == "adjacency" {
			t.Errorf("unexpected adjacency violation: %s", v)
		}
	}
}
