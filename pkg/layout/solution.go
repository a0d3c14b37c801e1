package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/planwright/blockplan/pkg/rules"
)

// Status classifies the outcome of a solve.
type Status string

// Solve outcomes. Infeasible is a first-class result, not an error: the
// inputs were well-formed but no layout satisfies every hard rule.
const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
)

// Door is one active door slot on a placed room's perimeter.
type Door struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Slot int    `json:"slot"`
	// ConnectsTo is the instance id of the room this door opens into,
	// empty when the door is not bound to a specific neighbor.
	ConnectsTo string `json:"connects_to,omitempty"`
}

// PlacedRoom is one room instance with its solved geometry.
type PlacedRoom struct {
	ID    string         `json:"id"`
	Type  rules.RoomType `json:"type"`
	Index int            `json:"index"`
	Rect
	Doors []Door `json:"doors,omitempty"`
}

// Solution is a complete solved layout, the artifact handed to downstream
// renderers.
type Solution struct {
	Status      Status        `json:"status"`
	FloorWidth  int           `json:"floor_width"`
	FloorHeight int           `json:"floor_height"`
	Rooms       []PlacedRoom  `json:"rooms"`
	Objective   int64         `json:"objective"`
	Penalty     int64         `json:"penalty"`
	WallTime    time.Duration `json:"wall_time_ns"`
}

// Room returns the placed room with the given instance id.
func (s *Solution) Room(id string) (PlacedRoom, bool) {
	for _, r := range s.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return PlacedRoom{}, false
}

// RoomsOfType returns all placed rooms of a type, in instance order.
func (s *Solution) RoomsOfType(t rules.RoomType) []PlacedRoom {
	var out []PlacedRoom
	for _, r := range s.Rooms {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// MarshalSolution converts a solution to indented JSON bytes.
func MarshalSolution(s *Solution) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSolution(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSolution writes a solution as JSON to an io.Writer.
func WriteSolution(s *Solution, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteSolutionFile writes a solution to a JSON file.
// The file is created with 0644 permissions.
func WriteSolutionFile(s *Solution, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSolution(s, f)
}

// ReadSolution decodes a JSON solution from an io.Reader.
func ReadSolution(r io.Reader) (*Solution, error) {
	var s Solution
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &s, nil
}

// ReadSolutionFile reads a JSON file and returns the decoded solution.
func ReadSolutionFile(path string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSolution(f)
}
