package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/pipeline"
	"github.com/planwright/blockplan/pkg/rules"
)

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	rooms       []string // repeated type=count specs
	width       int      // floor plate width in inches
	height      int      // floor plate height in inches
	rulesPath   string   // ruleset file (empty = embedded dental)
	treatment   int      // treatment-room tier override
	timeLimit   time.Duration
	seed        int64
	formats     string // comma-separated export formats
	output      string // output path prefix
	refresh     bool
	interactive bool // pick the inventory in a terminal form
	check       bool // re-validate the solution after solving
	cache       cacheFlags
}

// project is the TOML file format accepted as a positional argument, bundling
// a plate, an inventory, and optionally a ruleset path.
type project struct {
	FloorWidth  int            `toml:"floor_width_inches"`
	FloorHeight int            `toml:"floor_height_inches"`
	Rules       string         `toml:"rules,omitempty"`
	Inventory   map[string]int `toml:"inventory"`
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	opts := solveOpts{timeLimit: pipeline.DefaultTimeLimit, output: "layout"}

	cmd := &cobra.Command{
		Use:   "solve [project.toml]",
		Short: "Solve a room layout from an inventory and floor plate",
		Long: `Solve a room layout: place every room of the inventory on the floor plate
so that all hard placement rules hold, minimizing the weighted soft-rule
penalty.

The inventory comes from --room flags, a project TOML file, or an
interactive form (--interactive).

Examples:
  blockplan solve --room treatmentRoom=6 --room clinicalCorridor=1 --width 1800 --height 1200
  blockplan solve clinic.toml --formats json,svg
  blockplan solve --interactive --width 1800 --height 1200`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd, &opts, args)
		},
	}

	cmd.Flags().StringArrayVar(&opts.rooms, "room", nil, "room count as type=count (repeatable)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "floor plate width in inches")
	cmd.Flags().IntVar(&opts.height, "height", 0, "floor plate height in inches")
	cmd.Flags().StringVar(&opts.rulesPath, "rules", "", "ruleset TOML file (default: embedded dental ruleset)")
	cmd.Flags().IntVar(&opts.treatment, "treatment-rooms", 0, "treatment-room tier override (default: derived from inventory)")
	cmd.Flags().DurationVar(&opts.timeLimit, "time-limit", opts.timeLimit, "solver time limit")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "solver random seed (default: fixed for reproducibility)")
	cmd.Flags().StringVar(&opts.formats, "formats", "", "export formats: json,dot,svg (default: json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output path prefix")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the solve cache")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the inventory interactively")
	cmd.Flags().BoolVar(&opts.check, "check", false, "re-validate the solved layout against the ruleset")
	opts.cache.register(cmd)

	return cmd
}

func (c *CLI) runSolve(cmd *cobra.Command, opts *solveOpts, args []string) error {
	pipeOpts, err := c.buildOptions(cmd, opts, args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cmd, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Solving %d rooms...", totalRooms(pipeOpts.Inventory)))
	spin.Start()

	result, err := runner.Execute(cmd.Context(), *pipeOpts)
	if err != nil {
		spin.StopWithError("Solve failed")
		return err
	}

	if result.Solution == nil {
		spin.StopWithError("Layout is infeasible")
		for _, conflict := range result.Conflicts {
			printDetail("%s", conflict.String())
		}
		if len(result.Conflicts) == 0 {
			printDetail("No static rule conflict found; the plate may be too small for the inventory.")
		}
		return fmt.Errorf("no feasible layout")
	}
	spin.StopWithSuccess(fmt.Sprintf("Placed %d rooms (%s)", len(result.Solution.Rooms), result.Stats.SolveTime.Round(time.Millisecond)))
	printSolveStats(result)
	if result.Status == layout.StatusFeasible {
		printWarning("Time limit reached before optimality; layout is feasible but may not be minimal")
	}

	if opts.check {
		if err := checkSolution(result); err != nil {
			return err
		}
	}

	paths, err := writeArtifacts(result.Artifacts, opts.output)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	if len(result.Artifacts[pipeline.FormatJSON]) > 0 {
		printNextStep("Inspect the connectivity graph", fmt.Sprintf("blockplan graph %s.json", opts.output))
	}
	return nil
}

// buildOptions assembles pipeline options from flags, an optional project
// file, and the interactive form.
func (c *CLI) buildOptions(cmd *cobra.Command, opts *solveOpts, args []string) (*pipeline.Options, error) {
	pipeOpts := &pipeline.Options{
		RulesPath:      opts.rulesPath,
		FloorWidth:     opts.width,
		FloorHeight:    opts.height,
		TreatmentRooms: opts.treatment,
		TimeLimit:      opts.timeLimit,
		Seed:           opts.seed,
		Refresh:        opts.refresh,
		Formats:        parseFormats(opts.formats),
		Logger:         c.Logger,
	}

	if len(args) == 1 {
		var proj project
		if _, err := toml.DecodeFile(args[0], &proj); err != nil {
			return nil, fmt.Errorf("read project file: %w", err)
		}
		if pipeOpts.FloorWidth == 0 {
			pipeOpts.FloorWidth = proj.FloorWidth
		}
		if pipeOpts.FloorHeight == 0 {
			pipeOpts.FloorHeight = proj.FloorHeight
		}
		if pipeOpts.RulesPath == "" && proj.Rules != "" {
			// Ruleset paths are relative to the project file.
			pipeOpts.RulesPath = filepath.Join(filepath.Dir(args[0]), proj.Rules)
		}
		pipeOpts.Inventory = make(map[rules.RoomType]int, len(proj.Inventory))
		for name, count := range proj.Inventory {
			pipeOpts.Inventory[rules.RoomType(name)] = count
		}
	}

	if len(opts.rooms) > 0 {
		inv, err := parseInventory(opts.rooms)
		if err != nil {
			return nil, err
		}
		pipeOpts.Inventory = inv
	}

	if opts.interactive {
		runner := pipeline.NewRunner(nil, nil, c.Logger)
		reg, _, err := runner.LoadRules(cmd.Context(), *pipeOpts)
		if err != nil {
			return nil, err
		}
		inv, err := pickInventory(reg, pipeOpts.Inventory)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, fmt.Errorf("inventory selection aborted")
		}
		pipeOpts.Inventory = inv
	}

	return pipeOpts, nil
}

// checkSolution re-validates the solved layout against the ruleset,
// independent of the solver.
func checkSolution(result *pipeline.Result) error {
	violations := layout.Validate(result.Solution, result.Registry, layout.CheckOptions{})
	if len(violations) == 0 {
		printSuccess("Layout passes all checks")
		return nil
	}
	printError("Layout fails %d checks", len(violations))
	for _, v := range violations {
		printDetail("%s: %s", v.Property, v.Message)
	}
	return fmt.Errorf("solution failed validation")
}

// writeArtifacts writes each artifact to <prefix>.<format> and returns the
// written paths in format order.
func writeArtifacts(artifacts map[string][]byte, prefix string) ([]string, error) {
	var paths []string
	for _, format := range []string{pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatSVG} {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := prefix + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// printSolveStats prints a one-line summary of the solve.
func printSolveStats(result *pipeline.Result) {
	penalty := int64(0)
	if result.Solution != nil {
		penalty = result.Solution.Penalty
	}
	printStats(len(result.Solution.Rooms), penalty, string(result.Status), result.CacheInfo.SolveHit)
}

func totalRooms(inv map[rules.RoomType]int) int {
	return layout.Inventory(inv).Total()
}
