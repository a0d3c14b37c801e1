// Package solver compiles a rule registry and room inventory into a single
// CP-SAT model and solves it once, producing a layout.Solution.
//
// All geometry is integer inches. Hard rules become model constraints; soft
// rules become weighted penalty terms collected into one minimized objective,
// with a down-weighted total-footprint tie-break so equal-penalty layouts
// prefer compactness. Infeasibility and time-limit exhaustion are typed
// results, never partial geometry.
package solver

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/planwright/blockplan/pkg/errors"
)

// Default solve thresholds, in inches unless noted.
const (
	// DefaultDoorSlots is the fixed number of door slots allocated per room
	// instance; unused slots stay inactive.
	DefaultDoorSlots = 4
	// DefaultMinSharedWall is the minimum shared boundary length for a pair
	// to count as directly adjacent.
	DefaultMinSharedWall = 24
	// DefaultSeparation is the gap enforced by separation rules that name
	// no distance.
	DefaultSeparation = 180
	// DefaultHiddenGap is the visibility proxy: rooms that should be hidden
	// from a target want at least this gap.
	DefaultHiddenGap = 180
	// DefaultVisibleDistance is the visibility proxy: rooms that should be
	// visible from a target want at most this gap.
	DefaultVisibleDistance = 120
	// DefaultTimeLimit bounds the solve wall clock.
	DefaultTimeLimit = time.Minute
)

// Params configures a solve. The zero value is not usable; call
// ValidateAndSetDefaults (Solve does) to fill in defaults.
type Params struct {
	// FloorWidth and FloorHeight are the plate extents in inches. Required.
	FloorWidth  int `json:"floor_width"`
	FloorHeight int `json:"floor_height"`

	// TreatmentRooms is the tier parameter for dimension models and entry
	// tiers. Derived from the inventory when zero.
	TreatmentRooms int `json:"treatment_rooms,omitempty"`

	DoorSlots         int `json:"door_slots,omitempty"`
	MinSharedWall     int `json:"min_shared_wall,omitempty"`
	DefaultSeparation int `json:"default_separation,omitempty"`
	HiddenGap         int `json:"hidden_gap,omitempty"`
	VisibleDistance   int `json:"visible_distance,omitempty"`

	// TimeLimit bounds the solve wall clock. A solve that finds a feasible
	// layout before the limit but cannot prove optimality returns it tagged
	// StatusFeasible.
	TimeLimit time.Duration `json:"time_limit,omitempty"`

	// Seed fixes the solver's random seed. Together with single-worker
	// search this makes results reproducible.
	Seed int64 `json:"seed,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks required fields and fills in zero-valued
// optional ones. Returns a CONFIG_* error for an unusable plate.
func (p *Params) ValidateAndSetDefaults() error {
	if p.FloorWidth <= 0 || p.FloorHeight <= 0 {
		return errors.New(errors.ErrCodeConfigBounds, "floor plate %dx%d is not positive", p.FloorWidth, p.FloorHeight)
	}
	if p.DoorSlots <= 0 {
		p.DoorSlots = DefaultDoorSlots
	}
	if p.MinSharedWall <= 0 {
		p.MinSharedWall = DefaultMinSharedWall
	}
	if p.DefaultSeparation <= 0 {
		p.DefaultSeparation = DefaultSeparation
	}
	if p.HiddenGap <= 0 {
		p.HiddenGap = DefaultHiddenGap
	}
	if p.VisibleDistance <= 0 {
		p.VisibleDistance = DefaultVisibleDistance
	}
	if p.TimeLimit <= 0 {
		p.TimeLimit = DefaultTimeLimit
	}
	if p.Logger == nil {
		p.Logger = log.Default()
	}
	return nil
}

// horizon is the largest possible Manhattan gap on the plate, used as the
// upper bound for gap variables.
func (p *Params) horizon() int64 {
	return int64(p.FloorWidth + p.FloorHeight)
}
