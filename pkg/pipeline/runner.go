package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/planwright/blockplan/pkg/cache"
	"github.com/planwright/blockplan/pkg/connectivity"
	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/observability"
	"github.com/planwright/blockplan/pkg/rules"
	"github.com/planwright/blockplan/pkg/solver"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete rules → solve → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Rules
	rulesStart := time.Now()
	reg, source, err := r.LoadRules(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	result.Registry = reg
	result.Stats.RulesTime = time.Since(rulesStart)
	result.Stats.RoomTypes = reg.Len()
	result.InputHash = inputHash(reg, opts.Inventory)

	r.Logger.Info("loaded ruleset",
		"source", source,
		"room_types", reg.Len(),
		"duration", result.Stats.RulesTime)

	// Stage 2: Solve
	solveStart := time.Now()
	res, solveHit, err := r.SolveWithCacheInfo(ctx, reg, opts)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Status = res.Status
	result.Solution = res.Solution
	result.Conflicts = res.Conflicts
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SolveHit = solveHit
	if res.Solution != nil {
		result.Stats.RoomCount = len(res.Solution.Rooms)
	}

	r.Logger.Info("solved layout",
		"status", res.Status,
		"rooms", result.Stats.RoomCount,
		"duration", result.Stats.SolveTime)

	if res.Solution == nil {
		// Infeasible: nothing to export.
		return result, nil
	}

	// Stage 3: Export
	exportStart := time.Now()
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, reg, res.Solution, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// LoadRules loads the rule registry named by the options: inline TOML first,
// then a ruleset file, then the embedded dental default. The returned string
// names the source for logs.
func (r *Runner) LoadRules(ctx context.Context, opts Options) (*rules.Registry, string, error) {
	var (
		reg    *rules.Registry
		source string
		err    error
	)
	switch {
	case opts.RulesTOML != "":
		source = "inline"
		reg, err = rules.Parse([]byte(opts.RulesTOML))
	case opts.RulesPath != "":
		source = opts.RulesPath
		reg, err = rules.Load(opts.RulesPath)
	default:
		source = "embedded:dental"
		reg = rules.Dental()
	}
	if err != nil {
		return nil, source, err
	}
	observability.Solve().OnRulesLoaded(ctx, source, reg.Len())
	return reg, source, nil
}

// SolveWithCacheInfo solves the layout with caching and returns cache hit info.
// Infeasible results are not cached.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, reg *rules.Registry, opts Options) (*solver.Result, bool, error) {
	if err := opts.ValidateForSolve(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	inv := layout.Inventory(opts.Inventory)
	cacheKey := r.Keyer.SolveKey(inputHash(reg, opts.Inventory), opts.SolveKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			sol, err := layout.ReadSolution(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "solve")
				return &solver.Result{Status: sol.Status, Solution: sol, WallTime: sol.WallTime}, true, nil
			}
			// If deserialization fails, fall through to re-solve
		}
		observability.Cache().OnCacheMiss(ctx, "solve")
	}

	// Solve
	observability.Solve().OnSolveStart(ctx, inv.Total())
	start := time.Now()
	res, err := solver.Solve(ctx, reg, inv, opts.SolverParams())
	observability.Solve().OnSolveComplete(ctx, statusLabel(res), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if res.Solution != nil {
		if data, err := layout.MarshalSolution(res.Solution); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLSolve)
			observability.Cache().OnCacheSet(ctx, "solve", len(data))
		}
	}

	return res, false, nil // Cache miss
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, reg *rules.Registry, opts Options) (*solver.Result, error) {
	res, _, err := r.SolveWithCacheInfo(ctx, reg, opts)
	return res, err
}

// ExportWithCacheInfo derives artifacts from a solution with caching and
// returns cache hit info.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, reg *rules.Registry, sol *layout.Solution, opts Options) (map[string][]byte, bool, error) {
	opts.SetExportDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from solution data
	solData, err := layout.MarshalSolution(sol)
	if err != nil {
		return nil, false, fmt.Errorf("serialize solution for cache key: %w", err)
	}
	solutionHash := cache.Hash(solData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(solutionHash, format)
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}

	// Export all formats
	rendered, err := Export(reg, sol, opts.Formats)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(solutionHash, format)
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Export derives the requested artifact formats from a solution.
func Export(reg *rules.Registry, sol *layout.Solution, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	var dot string
	for _, format := range formats {
		switch format {
		case FormatJSON:
			data, err := layout.MarshalSolution(sol)
			if err != nil {
				return nil, fmt.Errorf("marshal solution: %w", err)
			}
			artifacts[format] = data
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = connectivity.ToDOT(connectivity.Build(sol, reg))
			}
			if format == FormatDOT {
				artifacts[format] = []byte(dot)
				continue
			}
			svg, err := connectivity.RenderSVG(dot)
			if err != nil {
				return nil, fmt.Errorf("render connectivity svg: %w", err)
			}
			artifacts[format] = svg
		default:
			return nil, ValidateFormat(format)
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// inputHash fingerprints the solve inputs: the full rule records in type
// order plus the inventory. Plate and thresholds are keyed separately via
// cache.SolveKeyOpts.
func inputHash(reg *rules.Registry, inv map[rules.RoomType]int) string {
	type input struct {
		Rules     []*rules.RoomTypeRule  `json:"rules"`
		Inventory map[rules.RoomType]int `json:"inventory"`
	}
	in := input{Inventory: inv}
	for _, t := range reg.Types() {
		rec, _ := reg.Lookup(t)
		in.Rules = append(in.Rules, rec)
	}
	data, err := json.Marshal(in)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func statusLabel(res *solver.Result) string {
	if res == nil {
		return "error"
	}
	return string(res.Status)
}
