package layout

import (
	"fmt"

	"github.com/planwright/blockplan/pkg/rules"
)

// CheckOptions tunes the solution re-check thresholds. Zero values fall back
// to the standard defaults used by the solver.
type CheckOptions struct {
	// MinSharedWall is the minimum shared boundary length, in inches, for a
	// pair to count as directly adjacent.
	MinSharedWall int
	// DefaultSeparation is the minimum gap, in inches, enforced by
	// separation rules that name no distance.
	DefaultSeparation int
	// TreatmentRooms is the tier parameter; derived from the solution's
	// rooms when zero.
	TreatmentRooms int
}

// Standard thresholds, matching the solver defaults.
const (
	DefaultMinSharedWall    = 24
	DefaultSeparationInches = 180
)

func (o *CheckOptions) setDefaults(sol *Solution) {
	if o.MinSharedWall == 0 {
		o.MinSharedWall = DefaultMinSharedWall
	}
	if o.DefaultSeparation == 0 {
		o.DefaultSeparation = DefaultSeparationInches
	}
	if o.TreatmentRooms == 0 {
		o.TreatmentRooms = len(sol.RoomsOfType(TreatmentRoomType))
	}
}

// Violation is one failed property of a solved layout.
type Violation struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Property, v.Message)
}

// Validate re-checks a solved layout against the registry with plain
// geometry, independent of the solver: rooms in bounds, no interior
// overlaps, sizes within resolved bounds, hard adjacency and separation
// rules honored, doors on their room's perimeter. Returns nil when the
// layout passes.
func Validate(sol *Solution, reg *rules.Registry, opts CheckOptions) []Violation {
	opts.setDefaults(sol)

	var out []Violation
	report := func(property, format string, args ...any) {
		out = append(out, Violation{Property: property, Message: fmt.Sprintf(format, args...)})
	}

	for _, room := range sol.Rooms {
		if !room.ContainedIn(sol.FloorWidth, sol.FloorHeight) {
			report("bounds", "%s at (%d,%d) %dx%d exceeds %dx%d plate",
				room.ID, room.X, room.Y, room.Width, room.Height, sol.FloorWidth, sol.FloorHeight)
		}
		for _, d := range room.Doors {
			if !room.OnPerimeter(d.X, d.Y) {
				report("door_perimeter", "%s door %d at (%d,%d) is off the room boundary", room.ID, d.Slot, d.X, d.Y)
			}
		}
	}

	for i := 0; i < len(sol.Rooms); i++ {
		for j := i + 1; j < len(sol.Rooms); j++ {
			a, b := sol.Rooms[i], sol.Rooms[j]
			if a.Rect.Overlaps(b.Rect) {
				report("overlap", "%s and %s overlap", a.ID, b.ID)
			}
		}
	}

	for _, room := range sol.Rooms {
		rec, ok := reg.Lookup(room.Type)
		if !ok {
			report("unknown_type", "%s has type %q not in the ruleset", room.ID, room.Type)
			continue
		}
		checkSize(report, room, rec, opts.TreatmentRooms)
		checkAdjacency(report, sol, reg, room, rec, opts)
	}

	return out
}

func checkSize(report func(string, string, ...any), room PlacedRoom, rec *rules.RoomTypeRule, treatmentRooms int) {
	if min, ok := rec.Size.ResolveMin(treatmentRooms); ok {
		lo, hi := orient(min.Width, min.Length)
		roomLo, roomHi := orient(room.Width, room.Height)
		if roomLo < lo || roomHi < hi {
			report("size_min", "%s is %dx%d, minimum is %dx%d", room.ID, room.Width, room.Height, min.Width, min.Length)
		}
	}
	if max, ok := rec.Size.ResolveMax(treatmentRooms); ok {
		lo, hi := orient(max.Width, max.Length)
		roomLo, roomHi := orient(room.Width, room.Height)
		if roomLo > lo || roomHi > hi {
			report("size_max", "%s is %dx%d, maximum is %dx%d", room.ID, room.Width, room.Height, max.Width, max.Length)
		}
	}
}

// orient sorts a dimension pair so comparisons are rotation-agnostic.
func orient(a, b int) (lo, hi int) {
	if a > b {
		return b, a
	}
	return a, b
}

func checkAdjacency(report func(string, string, ...any), sol *Solution, reg *rules.Registry, room PlacedRoom, rec *rules.RoomTypeRule, opts CheckOptions) {
	for _, rule := range rec.Adjacency.Direct {
		if !rule.Hard {
			continue
		}
		targets := targetRooms(sol, reg, rule)
		if len(targets) == 0 {
			continue // vacuous: no instances of the target were requested
		}
		// Required touching binds every target instance.
		for _, t := range targets {
			if t.ID == room.ID {
				continue
			}
			if room.Rect.Gap(t.Rect) != 0 || room.Rect.SharedWall(t.Rect) < opts.MinSharedWall {
				report("adjacency", "%s is not adjacent to %s", room.ID, t.ID)
			}
		}
	}

	for _, rule := range rec.Adjacency.Separation {
		if !rule.Hard {
			continue
		}
		minGap := opts.DefaultSeparation
		if rule.MinDistance != nil {
			minGap = *rule.MinDistance
		}
		for _, t := range targetRooms(sol, reg, rule) {
			if t.ID == room.ID {
				continue
			}
			if gap := room.Rect.Gap(t.Rect); gap < minGap {
				report("separation", "%s is %d in from %s, minimum is %d", room.ID, gap, t.ID, minGap)
			}
		}
	}
}

func targetRooms(sol *Solution, reg *rules.Registry, rule rules.Rule) []PlacedRoom {
	var out []PlacedRoom
	for _, t := range reg.ExpandTarget(rule) {
		out = append(out, sol.RoomsOfType(t)...)
	}
	return out
}
