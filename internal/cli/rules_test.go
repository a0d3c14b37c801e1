package cli

import (
	"testing"

	"github.com/planwright/blockplan/pkg/rules"
)

func intp(v int) *int { return &v }

func TestFormatDims(t *testing.T) {
	if got := formatDims(rules.Dims{Width: 96, Length: 72}, true); got != `96"x72"` {
		t.Errorf("formatDims = %q", got)
	}
	if got := formatDims(rules.Dims{}, false); got != "—" {
		t.Errorf("formatDims unresolved = %q", got)
	}
}

func TestFormatEntries(t *testing.T) {
	tests := []struct {
		name  string
		tiers []rules.EntryTier
		want  string
	}{
		{"none", nil, "—"},
		{"exact", []rules.EntryTier{{MinEntries: 2, MaxEntries: intp(2)}}, "2"},
		{"range", []rules.EntryTier{{MinEntries: 1, MaxEntries: intp(3)}}, "1-3"},
		{"open", []rules.EntryTier{{MinEntries: 2}}, "2+"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatEntries(tt.tiers, 6); got != tt.want {
				t.Errorf("formatEntries = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuleCountCoversAllFamilies(t *testing.T) {
	rec := &rules.RoomTypeRule{
		Type:       "x",
		EntryRules: []rules.Rule{{Kind: rules.KindEntryFrom, Target: "x"}},
		Adjacency: rules.AdjacencyRules{
			Direct:     []rules.Rule{{Kind: rules.KindAdjacent, Target: "x"}},
			Separation: []rules.Rule{{Kind: rules.KindSeparate, Target: "x"}},
		},
		Visibility: []rules.Rule{{Kind: rules.KindAvoidVisibility, Target: "x"}},
		CenterBias: &rules.CenterBias{Weight: 1},
	}
	if got := ruleCount(rec); got != 5 {
		t.Errorf("ruleCount = %d, want 5", got)
	}
}

func TestLoadRegistryDefault(t *testing.T) {
	reg, err := loadRegistry("")
	if err != nil {
		t.Fatalf("loadRegistry: %v", err)
	}
	if reg.Len() == 0 {
		t.Error("default registry should not be empty")
	}
}
