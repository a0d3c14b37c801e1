package solver

import (
	"testing"

	"github.com/planwright/blockplan/pkg/rules"
)

func TestFindConflicts(t *testing.T) {
	gap := 50
	reg := mustRegistry(t,
		&rules.RoomTypeRule{
			Type: "roomA",
			Adjacency: rules.AdjacencyRules{
				Direct: []rules.Rule{{Kind: rules.KindAdjacent, Target: "roomB", Hard: true}},
			},
		},
		&rules.RoomTypeRule{
			Type: "roomB",
			Adjacency: rules.AdjacencyRules{
				Separation: []rules.Rule{
					{Kind: rules.KindSeparate, Target: "roomA", MinDistance: &gap, Hard: true},
				},
			},
		},
		&rules.RoomTypeRule{Type: "roomC"},
	)
	present := map[rules.RoomType]bool{"roomA": true, "roomB": true, "roomC": true}

	conflicts := findConflicts(reg, present, DefaultSeparation)
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1: %v", len(conflicts), conflicts)
	}
	c := conflicts[0]
	if c.A != "roomA" || c.B != "roomB" || c.MinGap != 50 {
		t.Errorf("conflict = %+v", c)
	}
}

func TestFindConflictsIgnoresAbsentTypes(t *testing.T) {
	gap := 50
	reg := mustRegistry(t,
		&rules.RoomTypeRule{
			Type: "roomA",
			Adjacency: rules.AdjacencyRules{
				Direct: []rules.Rule{{Kind: rules.KindAdjacent, Target: "roomB", Hard: true}},
				Separation: []rules.Rule{
					{Kind: rules.KindSeparate, Target: "roomB", MinDistance: &gap, Hard: true},
				},
			},
		},
		&rules.RoomTypeRule{Type: "roomB"},
	)

	// roomB has no instances, so the pair cannot actually conflict.
	conflicts := findConflicts(reg, map[rules.RoomType]bool{"roomA": true}, DefaultSeparation)
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %v, want none", conflicts)
	}
}

func TestFindConflictsSoftRulesDoNotConflict(t *testing.T) {
	gap := 50
	reg := mustRegistry(t,
		&rules.RoomTypeRule{
			Type: "roomA",
			Adjacency: rules.AdjacencyRules{
				Direct: []rules.Rule{{Kind: rules.KindAdjacent, Target: "roomB", Weight: 1}},
				Separation: []rules.Rule{
					{Kind: rules.KindSeparate, Target: "roomB", MinDistance: &gap, Hard: true},
				},
			},
		},
		&rules.RoomTypeRule{Type: "roomB"},
	)
	present := map[rules.RoomType]bool{"roomA": true, "roomB": true}

	if conflicts := findConflicts(reg, present, DefaultSeparation); len(conflicts) != 0 {
		t.Errorf("soft adjacency should not conflict: %v", conflicts)
	}
}

func TestDentalRulesetHasNoStaticConflicts(t *testing.T) {
	reg := rules.Dental()
	present := make(map[rules.RoomType]bool)
	for _, typ := range reg.Types() {
		present[typ] = true
	}
	if conflicts := findConflicts(reg, present, DefaultSeparation); len(conflicts) != 0 {
		t.Errorf("built-in ruleset conflicts with itself: %v", conflicts)
	}
}
