package solver

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/planwright/blockplan/pkg/errors"
	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/rules"
)

func testParams(w, h int) Params {
	return Params{
		FloorWidth:  w,
		FloorHeight: h,
		TimeLimit:   20 * time.Second,
		Logger:      log.New(io.Discard),
	}
}

func mustRegistry(t *testing.T, records ...*rules.RoomTypeRule) *rules.Registry {
	t.Helper()
	reg, err := rules.NewRegistry(records...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestSolveSingleRoomWithinBounds(t *testing.T) {
	reg := mustRegistry(t, &rules.RoomTypeRule{
		Type: "lab",
		Size: rules.SizeRule{Min: &rules.Dims{Width: 96, Length: 72}},
	})

	res, err := Solve(context.Background(), reg, layout.Inventory{"lab": 1}, testParams(200, 150))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Status != layout.StatusOptimal {
		t.Fatalf("status = %q, want optimal", res.Status)
	}

	room, ok := res.Solution.Room("lab__0")
	if !ok {
		t.Fatal("lab__0 missing from solution")
	}
	if room.Width < 96 || room.Height < 72 {
		t.Errorf("room is %dx%d, want at least 96x72", room.Width, room.Height)
	}
	if !room.ContainedIn(200, 150) {
		t.Errorf("room %+v exceeds the 200x150 plate", room.Rect)
	}
	// The footprint tie-break should pull the room to its minimum size.
	if room.Width != 96 || room.Height != 72 {
		t.Errorf("room is %dx%d, want exactly 96x72", room.Width, room.Height)
	}
}

func TestSolveDirectAdjacency(t *testing.T) {
	reg := mustRegistry(t,
		&rules.RoomTypeRule{
			Type: "lab",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 96, Length: 72}},
		},
		&rules.RoomTypeRule{
			Type: "sterilization",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 110, Length: 152}},
			Adjacency: rules.AdjacencyRules{
				Direct: []rules.Rule{{Kind: rules.KindAdjacent, Target: "lab", Hard: true}},
			},
		},
	)

	res, err := Solve(context.Background(), reg,
		layout.Inventory{"lab": 1, "sterilization": 1}, testParams(600, 400))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Solution == nil {
		t.Fatalf("status = %q, want a solution", res.Status)
	}

	lab, _ := res.Solution.Room("lab__0")
	ster, _ := res.Solution.Room("sterilization__0")
	if gap := lab.Rect.Gap(ster.Rect); gap != 0 {
		t.Errorf("gap = %d, want 0", gap)
	}
	if wall := lab.Rect.SharedWall(ster.Rect); wall < DefaultMinSharedWall {
		t.Errorf("shared wall = %d, want at least %d", wall, DefaultMinSharedWall)
	}
}

func TestSolveDirectAdjacencyBindsEveryInstance(t *testing.T) {
	reg := mustRegistry(t,
		&rules.RoomTypeRule{
			Type: "lab",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 96, Length: 72}},
			Adjacency: rules.AdjacencyRules{
				Direct: []rules.Rule{{Kind: rules.KindAdjacent, Target: "sterilization", Hard: true}},
			},
		},
		&rules.RoomTypeRule{
			Type: "sterilization",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 110, Length: 152}},
		},
	)

	res, err := Solve(context.Background(), reg,
		layout.Inventory{"lab": 1, "sterilization": 2}, testParams(600, 400))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Solution == nil {
		t.Fatalf("status = %q, want a solution", res.Status)
	}

	// The hard rule must pin the lab against both sterilization rooms.
	lab, _ := res.Solution.Room("lab__0")
	for _, id := range []string{"sterilization__0", "sterilization__1"} {
		ster, ok := res.Solution.Room(id)
		if !ok {
			t.Fatalf("%s missing from solution", id)
		}
		if gap := lab.Rect.Gap(ster.Rect); gap != 0 {
			t.Errorf("gap to %s = %d, want 0", id, gap)
		}
		if wall := lab.Rect.SharedWall(ster.Rect); wall < DefaultMinSharedWall {
			t.Errorf("shared wall with %s = %d, want at least %d", id, wall, DefaultMinSharedWall)
		}
	}
}

func TestSolveSeparation(t *testing.T) {
	sep := 24
	reg := mustRegistry(t,
		&rules.RoomTypeRule{
			Type: "patientRestroom",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 99, Length: 93}},
			Adjacency: rules.AdjacencyRules{
				Separation: []rules.Rule{
					{Kind: rules.KindSeparate, Target: "doctorOffice", MinDistance: &sep, Hard: true},
				},
			},
		},
		&rules.RoomTypeRule{
			Type: "doctorOffice",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 96, Length: 96}},
		},
	)

	res, err := Solve(context.Background(), reg,
		layout.Inventory{"patientRestroom": 1, "doctorOffice": 1}, testParams(600, 400))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	restroom, _ := res.Solution.Room("patientRestroom__0")
	office, _ := res.Solution.Room("doctorOffice__0")
	if gap := restroom.Rect.Gap(office.Rect); gap < sep {
		t.Errorf("gap = %d, want at least %d", gap, sep)
	}
}

func TestSolveEntryFromConnectsDoor(t *testing.T) {
	reg := mustRegistry(t,
		&rules.RoomTypeRule{
			Type: "clinicalCorridor",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 60, Length: 300}},
		},
		&rules.RoomTypeRule{
			Type:       "treatmentRoom",
			Size:       rules.SizeRule{Min: &rules.Dims{Width: 97, Length: 126}},
			EntryTiers: []rules.EntryTier{{MinEntries: 1}},
			EntryRules: []rules.Rule{
				{Kind: rules.KindEntryFrom, Target: "clinicalCorridor", Hard: true},
			},
		},
	)

	res, err := Solve(context.Background(), reg,
		layout.Inventory{"clinicalCorridor": 1, "treatmentRoom": 1}, testParams(800, 600))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	room, _ := res.Solution.Room("treatmentRoom__0")
	corridor, _ := res.Solution.Room("clinicalCorridor__0")
	if len(room.Doors) == 0 {
		t.Fatal("treatment room has no active door")
	}

	var connected *layout.Door
	for i := range room.Doors {
		if room.Doors[i].ConnectsTo == "clinicalCorridor__0" {
			connected = &room.Doors[i]
		}
	}
	if connected == nil {
		t.Fatalf("no door connects to the corridor: %+v", room.Doors)
	}
	if !room.OnPerimeter(connected.X, connected.Y) {
		t.Errorf("door (%d,%d) is off the room perimeter", connected.X, connected.Y)
	}
	if !corridor.OnPerimeter(connected.X, connected.Y) {
		t.Errorf("door (%d,%d) is off the corridor perimeter", connected.X, connected.Y)
	}
}

func TestSolveZeroCountIsVacuous(t *testing.T) {
	reg := mustRegistry(t,
		&rules.RoomTypeRule{
			Type: "lab",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 96, Length: 72}},
			Adjacency: rules.AdjacencyRules{
				Direct: []rules.Rule{{Kind: rules.KindAdjacent, Target: "sterilization", Hard: true}},
			},
		},
		&rules.RoomTypeRule{Type: "sterilization"},
	)

	res, err := Solve(context.Background(), reg,
		layout.Inventory{"lab": 1, "sterilization": 0}, testParams(300, 300))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Status != layout.StatusOptimal {
		t.Errorf("status = %q, want optimal", res.Status)
	}
	if len(res.Solution.Rooms) != 1 {
		t.Errorf("rooms = %d, want 1", len(res.Solution.Rooms))
	}
}

func TestSolveConflictingRulesInfeasible(t *testing.T) {
	wantGap := 50
	reg := mustRegistry(t,
		&rules.RoomTypeRule{
			Type: "roomA",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 96, Length: 96}},
			Adjacency: rules.AdjacencyRules{
				Direct: []rules.Rule{{Kind: rules.KindAdjacent, Target: "roomB", Hard: true}},
				Separation: []rules.Rule{
					{Kind: rules.KindSeparate, Target: "roomB", MinDistance: &wantGap, Hard: true},
				},
			},
		},
		&rules.RoomTypeRule{
			Type: "roomB",
			Size: rules.SizeRule{Min: &rules.Dims{Width: 96, Length: 96}},
		},
	)

	res, err := Solve(context.Background(), reg,
		layout.Inventory{"roomA": 1, "roomB": 1}, testParams(600, 600))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Status != layout.StatusInfeasible {
		t.Fatalf("status = %q, want infeasible", res.Status)
	}
	if res.Solution != nil {
		t.Error("infeasible result should carry no solution")
	}
	if len(res.Conflicts) == 0 {
		t.Error("expected the adjacency/separation conflict to be reported")
	}
}

func TestSolveMinSizeExceedsPlate(t *testing.T) {
	reg := mustRegistry(t, &rules.RoomTypeRule{
		Type: "lab",
		Size: rules.SizeRule{Min: &rules.Dims{Width: 300, Length: 300}},
	})

	_, err := Solve(context.Background(), reg, layout.Inventory{"lab": 1}, testParams(200, 150))
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if errors.GetCode(err) != errors.ErrCodeConfigBounds {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeConfigBounds)
	}
}

func TestSolveInvertedSizeBounds(t *testing.T) {
	reg := mustRegistry(t, &rules.RoomTypeRule{
		Type: "lab",
		Size: rules.SizeRule{
			Min: &rules.Dims{Width: 120, Length: 120},
			Max: &rules.Dims{Width: 96, Length: 96},
		},
	})

	_, err := Solve(context.Background(), reg, layout.Inventory{"lab": 1}, testParams(600, 400))
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if errors.GetCode(err) != errors.ErrCodeConfigBounds {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeConfigBounds)
	}
}

func TestSolveValidatesAgainstRegistry(t *testing.T) {
	reg := rules.Dental()
	inv := layout.Inventory{
		"clinicalCorridor": 1,
		"treatmentRoom":    4,
		"sterilization":    1,
		"reception":        1,
		"patientLounge":    1,
	}

	res, err := Solve(context.Background(), reg, inv, testParams(2400, 1800))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Solution == nil {
		t.Fatalf("status = %q, want a solution", res.Status)
	}
	if violations := layout.Validate(res.Solution, reg, layout.CheckOptions{}); len(violations) != 0 {
		t.Errorf("solved layout fails re-check: %v", violations)
	}
}
