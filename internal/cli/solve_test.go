package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/planwright/blockplan/pkg/rules"
)

func TestBuildOptionsFromFlags(t *testing.T) {
	c := testCLI()
	opts := solveOpts{
		rooms:  []string{"treatmentRoom=4", "clinicalCorridor=1"},
		width:  1200,
		height: 900,
	}
	cmd := &cobra.Command{}

	pipeOpts, err := c.buildOptions(cmd, &opts, nil)
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if pipeOpts.FloorWidth != 1200 || pipeOpts.FloorHeight != 900 {
		t.Errorf("plate = %dx%d, want 1200x900", pipeOpts.FloorWidth, pipeOpts.FloorHeight)
	}
	if pipeOpts.Inventory[rules.RoomType("treatmentRoom")] != 4 {
		t.Errorf("treatmentRoom = %d, want 4", pipeOpts.Inventory["treatmentRoom"])
	}
	if len(pipeOpts.Formats) != 1 || pipeOpts.Formats[0] != "json" {
		t.Errorf("Formats = %v, want [json]", pipeOpts.Formats)
	}
}

func TestBuildOptionsFromProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clinic.toml")
	content := `
floor_width_inches = 1800
floor_height_inches = 1200

[inventory]
treatmentRoom = 6
clinicalCorridor = 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write project: %v", err)
	}

	c := testCLI()
	opts := solveOpts{}
	pipeOpts, err := c.buildOptions(&cobra.Command{}, &opts, []string{path})
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if pipeOpts.FloorWidth != 1800 || pipeOpts.FloorHeight != 1200 {
		t.Errorf("plate = %dx%d, want 1800x1200", pipeOpts.FloorWidth, pipeOpts.FloorHeight)
	}
	if pipeOpts.Inventory[rules.RoomType("clinicalCorridor")] != 1 {
		t.Errorf("clinicalCorridor = %d, want 1", pipeOpts.Inventory["clinicalCorridor"])
	}
}

func TestBuildOptionsFlagsOverrideProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clinic.toml")
	content := `
floor_width_inches = 1800
floor_height_inches = 1200

[inventory]
treatmentRoom = 6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write project: %v", err)
	}

	c := testCLI()
	opts := solveOpts{
		rooms: []string{"lab=2"},
		width: 900,
	}
	pipeOpts, err := c.buildOptions(&cobra.Command{}, &opts, []string{path})
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if pipeOpts.FloorWidth != 900 {
		t.Errorf("FloorWidth = %d, flag should win over project", pipeOpts.FloorWidth)
	}
	if pipeOpts.FloorHeight != 1200 {
		t.Errorf("FloorHeight = %d, project should fill the gap", pipeOpts.FloorHeight)
	}
	if len(pipeOpts.Inventory) != 1 || pipeOpts.Inventory[rules.RoomType("lab")] != 2 {
		t.Errorf("Inventory = %v, --room flags should replace the project inventory", pipeOpts.Inventory)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "layout")

	paths, err := writeArtifacts(map[string][]byte{
		"json": []byte(`{}`),
		"dot":  []byte("graph g {}\n"),
	}, prefix)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 entries", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("artifact %s not written: %v", p, err)
		}
	}
	// json sorts before dot in the fixed format order
	if filepath.Ext(paths[0]) != ".json" {
		t.Errorf("paths[0] = %s, want the json artifact first", paths[0])
	}
}
