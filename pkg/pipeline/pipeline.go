// Package pipeline provides the core solve pipeline for Blockplan.
//
// This package implements the complete rules → solve → export flow that can
// be used by CLI and API components. By centralizing this logic, we ensure
// consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Rules: load and validate the room-type ruleset (file, inline TOML, or
//     the embedded dental default)
//  2. Solve: expand the inventory and solve the placement model
//  3. Export: derive artifacts from the solution (JSON, connectivity DOT/SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Inventory:   map[rules.RoomType]int{"treatmentRoom": 6, "clinicalCorridor": 1},
//	    FloorWidth:  1800,
//	    FloorHeight: 1200,
//	    Formats:     []string{"json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data := result.Artifacts["json"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/planwright/blockplan/pkg/cache"
	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/rules"
	"github.com/planwright/blockplan/pkg/solver"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTimeLimit bounds a pipeline solve. This is intentionally tighter
	// than solver.DefaultTimeLimit (1m) to provide better UX for CLI users.
	// API users can override this by setting TimeLimit explicitly.
	DefaultTimeLimit = 30 * time.Second

	// DefaultSeed is the default solver seed for reproducibility.
	DefaultSeed = int64(42)
)

// Format constants for export formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported export formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the solve pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Ruleset options. RulesTOML takes precedence over RulesPath; when both
	// are empty the embedded dental ruleset is used.
	RulesPath string `json:"rules_path,omitempty"`
	RulesTOML string `json:"rules_toml,omitempty"`

	// Solve options
	Inventory       map[rules.RoomType]int `json:"inventory"`
	FloorWidth      int                    `json:"floor_width"`
	FloorHeight     int                    `json:"floor_height"`
	TreatmentRooms  int                    `json:"treatment_rooms,omitempty"`
	DoorSlots       int                    `json:"door_slots,omitempty"`
	MinSharedWall   int                    `json:"min_shared_wall,omitempty"`
	Separation      int                    `json:"separation,omitempty"`
	HiddenGap       int                    `json:"hidden_gap,omitempty"`
	VisibleDistance int                    `json:"visible_distance,omitempty"`
	TimeLimit       time.Duration          `json:"time_limit,omitempty"`
	Seed            int64                  `json:"seed,omitempty"`
	Refresh         bool                   `json:"refresh,omitempty"`

	// Export options
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Registry is the loaded rule registry.
	Registry *rules.Registry

	// InputHash is the content hash of the solve inputs (ruleset + inventory).
	InputHash string

	// Status reports how the solve ended.
	Status layout.Status

	// Solution is the solved layout, nil when Status is infeasible.
	Solution *layout.Solution

	// Conflicts lists statically conflicting hard rules when infeasible.
	Conflicts []solver.Conflict

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RoomTypes  int
	RoomCount  int
	RulesTime  time.Duration
	SolveTime  time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolveHit  bool // Whether the solution came from cache
	ExportHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that an export format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all export formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSolve(); err != nil {
		return err
	}
	o.SetExportDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForSolve checks required fields for solving.
func (o *Options) ValidateForSolve() error {
	if o.FloorWidth <= 0 || o.FloorHeight <= 0 {
		return fmt.Errorf("floor_width and floor_height are required")
	}
	if len(o.Inventory) == 0 {
		return fmt.Errorf("inventory is required")
	}

	// Solve defaults
	if o.TimeLimit == 0 {
		o.TimeLimit = DefaultTimeLimit
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.TreatmentRooms == 0 {
		o.TreatmentRooms = layout.Inventory(o.Inventory).TreatmentRooms()
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetExportDefaults sets default values for artifact export.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SolverParams returns the solver parameters for these options.
func (o *Options) SolverParams() solver.Params {
	return solver.Params{
		FloorWidth:        o.FloorWidth,
		FloorHeight:       o.FloorHeight,
		TreatmentRooms:    o.TreatmentRooms,
		DoorSlots:         o.DoorSlots,
		MinSharedWall:     o.MinSharedWall,
		DefaultSeparation: o.Separation,
		HiddenGap:         o.HiddenGap,
		VisibleDistance:   o.VisibleDistance,
		TimeLimit:         o.TimeLimit,
		Seed:              o.Seed,
		Logger:            o.Logger,
	}
}

// SolveKeyOpts returns cache key options for the solve stage.
func (o *Options) SolveKeyOpts() cache.SolveKeyOpts {
	return cache.SolveKeyOpts{
		FloorWidth:      o.FloorWidth,
		FloorHeight:     o.FloorHeight,
		TreatmentRooms:  o.TreatmentRooms,
		DoorSlots:       o.DoorSlots,
		MinSharedWall:   o.MinSharedWall,
		Separation:      o.Separation,
		HiddenGap:       o.HiddenGap,
		VisibleDistance: o.VisibleDistance,
		Seed:            o.Seed,
	}
}
