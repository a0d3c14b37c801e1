package pipeline

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/planwright/blockplan/pkg/cache"
	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/rules"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// smallOptions returns options for a fast two-room solve against the
// embedded ruleset.
func smallOptions() Options {
	return Options{
		Inventory: map[rules.RoomType]int{
			"clinicalCorridor": 1,
			"lab":              1,
		},
		FloorWidth:  800,
		FloorHeight: 600,
		TimeLimit:   20 * time.Second,
		Formats:     []string{FormatJSON, FormatDOT},
		Logger:      quietLogger(),
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{
		Inventory:   map[rules.RoomType]int{"treatmentRoom": 4},
		FloorWidth:  1200,
		FloorHeight: 900,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.TimeLimit != DefaultTimeLimit {
		t.Errorf("TimeLimit = %v, want %v", opts.TimeLimit, DefaultTimeLimit)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", opts.Seed, DefaultSeed)
	}
	if opts.TreatmentRooms != 4 {
		t.Errorf("TreatmentRooms = %d, want 4 (derived from inventory)", opts.TreatmentRooms)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing plate", Options{Inventory: map[rules.RoomType]int{"lab": 1}}},
		{"missing inventory", Options{FloorWidth: 800, FloorHeight: 600}},
		{"bad format", Options{
			Inventory:   map[rules.RoomType]int{"lab": 1},
			FloorWidth:  800,
			FloorHeight: 600,
			Formats:     []string{"png"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadRulesSources(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	reg, source, err := r.LoadRules(ctx, Options{})
	if err != nil {
		t.Fatalf("LoadRules (default): %v", err)
	}
	if source != "embedded:dental" {
		t.Errorf("source = %q, want embedded:dental", source)
	}
	if reg.Len() == 0 {
		t.Error("embedded ruleset should not be empty")
	}

	inline := `
[rooms.lab]
category = "clinical"

[rooms.lab.size]
[rooms.lab.size.min]
width_inches = 96
length_inches = 72
`
	reg, source, err = r.LoadRules(ctx, Options{RulesTOML: inline})
	if err != nil {
		t.Fatalf("LoadRules (inline): %v", err)
	}
	if source != "inline" {
		t.Errorf("source = %q, want inline", source)
	}
	if reg.Len() != 1 {
		t.Errorf("inline registry Len = %d, want 1", reg.Len())
	}

	if _, _, err := r.LoadRules(ctx, Options{RulesPath: "does/not/exist.toml"}); err == nil {
		t.Error("LoadRules with missing file should fail")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	defer r.Close()

	result, err := r.Execute(context.Background(), smallOptions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Solution == nil {
		t.Fatalf("Execute status = %s, want a solution", result.Status)
	}
	if result.Stats.RoomCount != 2 {
		t.Errorf("RoomCount = %d, want 2", result.Stats.RoomCount)
	}
	if result.InputHash == "" {
		t.Error("InputHash should be set")
	}
	if len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("json artifact should be present")
	}
	if len(result.Artifacts[FormatDOT]) == 0 {
		t.Error("dot artifact should be present")
	}
}

func TestExecuteUsesSolveCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, quietLogger())
	defer r.Close()

	opts := smallOptions()
	opts.Formats = []string{FormatJSON}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.SolveHit {
		t.Error("first run should not hit the solve cache")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.SolveHit {
		t.Error("second run should hit the solve cache")
	}
	if !second.CacheInfo.ExportHit {
		t.Error("second run should hit the artifact cache")
	}
	if second.Solution == nil || len(second.Solution.Rooms) != len(first.Solution.Rooms) {
		t.Error("cached solution should match the solved one")
	}

	// Refresh bypasses the cache.
	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.SolveHit {
		t.Error("refresh run should not hit the solve cache")
	}
}

func TestInputHashIsStable(t *testing.T) {
	reg := rules.Dental()
	inv := map[rules.RoomType]int{"treatmentRoom": 4, "lab": 1}

	h1 := inputHash(reg, inv)
	h2 := inputHash(reg, inv)
	if h1 == "" || h1 != h2 {
		t.Errorf("inputHash not stable: %q vs %q", h1, h2)
	}

	other := inputHash(reg, map[rules.RoomType]int{"treatmentRoom": 5, "lab": 1})
	if other == h1 {
		t.Error("different inventories should hash differently")
	}
}

func TestExport(t *testing.T) {
	sol := &layout.Solution{
		Status:      layout.StatusOptimal,
		FloorWidth:  400,
		FloorHeight: 300,
		Rooms: []layout.PlacedRoom{
			{ID: "lab__0", Type: "lab", Rect: layout.Rect{X: 0, Y: 0, Width: 96, Height: 72}},
		},
	}

	artifacts, err := Export(rules.Dental(), sol, []string{FormatJSON, FormatDOT})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(artifacts[FormatJSON]) == 0 {
		t.Error("json artifact empty")
	}
	if len(artifacts[FormatDOT]) == 0 {
		t.Error("dot artifact empty")
	}

	if _, err := Export(rules.Dental(), sol, []string{"png"}); err == nil {
		t.Error("Export with unknown format should fail")
	}
}
