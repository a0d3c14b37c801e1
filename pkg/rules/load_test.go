package rules

import (
	"path/filepath"
	"os"
	"testing"

	"github.com/planwright/blockplan/pkg/errors"
)

const sampleRuleset = `
[rooms.lab]
category = "clinical"

[rooms.lab.size]
min = { width = 96, length = 72 }

[[rooms.lab.adjacency.preferred]]
kind = "near_space"
target = "sterilization"
weight = 2.0

[rooms.sterilization]
category = "clinical"

[[rooms.sterilization.size.models]]
label = "compact"
treatment_rooms_min = 5
treatment_rooms_max = 8
width_inches = 110
length_inches = 152

[[rooms.sterilization.entry_rules]]
kind = "entry_from"
target = "lab"
hard = true
`

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(sampleRuleset))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}

	lab, ok := reg.Lookup("lab")
	if !ok {
		t.Fatal("lab missing")
	}
	if lab.Category != CategoryClinical {
		t.Errorf("lab category = %q", lab.Category)
	}
	if lab.Size.Min == nil || lab.Size.Min.Width != 96 {
		t.Errorf("lab min size = %+v", lab.Size.Min)
	}
	if len(lab.Adjacency.Preferred) != 1 || lab.Adjacency.Preferred[0].Kind != KindNearSpace {
		t.Errorf("lab preferred adjacency = %+v", lab.Adjacency.Preferred)
	}

	ster, _ := reg.Lookup("sterilization")
	if len(ster.Size.Models) != 1 || ster.Size.Models[0].Label != "compact" {
		t.Errorf("sterilization models = %+v", ster.Size.Models)
	}
	if len(ster.EntryRules) != 1 || !ster.EntryRules[0].Hard {
		t.Errorf("sterilization entry rules = %+v", ster.EntryRules)
	}
}

func TestParseRejectsBadKind(t *testing.T) {
	bad := `
[rooms.lab]
category = "clinical"

[[rooms.lab.entry_rules]]
kind = "fly_through"
target = "lab"
`
	_, err := Parse([]byte(bad))
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidRule {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidRule)
	}
}

func TestParseRejectsEmptyRuleset(t *testing.T) {
	if _, err := Parse([]byte("")); err == nil {
		t.Fatal("expected error for empty ruleset")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	if err := os.WriteFile(path, []byte(sampleRuleset), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
}
