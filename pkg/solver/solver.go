package solver

import (
	"context"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"

	"github.com/planwright/blockplan/pkg/errors"
	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/rules"
)

// Result is the outcome of one solve. Infeasibility is carried here as a
// status, not an error: the caller receives (Result, nil) with Status
// infeasible and, when derivable, the conflicting rule pairs.
type Result struct {
	Status    layout.Status
	Solution  *layout.Solution // nil when Status is infeasible
	Conflicts []Conflict       // static hard-rule conflicts, set when infeasible
	WallTime  time.Duration
}

// Solve builds one CP-SAT model from the registry and inventory, solves it
// once within the configured time limit, and extracts the layout.
//
// Errors are reserved for malformed inputs (CONFIG_* codes) and for solver
// or time-limit failures that produced no layout at all (TIMEOUT, INTERNAL).
// The search is deterministic: fixed seed, single worker.
func Solve(ctx context.Context, reg *rules.Registry, inv layout.Inventory, params Params) (*Result, error) {
	if err := params.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if params.TreatmentRooms == 0 {
		params.TreatmentRooms = inv.TreatmentRooms()
	}

	instances, err := layout.Expand(reg, inv, params.Logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "solve canceled before model build")
	}

	b := newBuilder(reg, params)
	if err := b.allocate(instances); err != nil {
		return nil, err
	}
	b.compile()
	b.assembleObjective()

	m, err := b.model.Model()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "instantiate model")
	}
	params.Logger.Debug("model built",
		"rooms", len(b.rooms),
		"penalty_terms", len(b.penalties),
		"treatment_rooms", params.TreatmentRooms)

	limit := params.TimeLimit
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < limit {
			limit = remaining
		}
	}
	if limit <= 0 {
		return nil, errors.New(errors.ErrCodeTimeout, "no time remaining before solve")
	}

	satParams := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(limit.Seconds()),
		RandomSeed:       proto.Int32(int32(params.Seed)),
		NumWorkers:       proto.Int32(1),
	}
	start := time.Now()
	response, err := cpmodel.SolveCpModelWithParameters(m, satParams)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "solve model")
	}
	elapsed := time.Since(start)

	result := &Result{WallTime: elapsed}
	switch response.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL:
		result.Status = layout.StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		result.Status = layout.StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		result.Status = layout.StatusInfeasible
		present := make(map[rules.RoomType]bool)
		for _, inst := range instances {
			present[inst.Type] = true
		}
		result.Conflicts = findConflicts(reg, present, params.DefaultSeparation)
		params.Logger.Warn("no layout satisfies the hard rules",
			"conflicts", len(result.Conflicts), "wall_time", elapsed.Round(time.Millisecond))
		return result, nil
	case cmpb.CpSolverStatus_MODEL_INVALID:
		return nil, errors.New(errors.ErrCodeInternal, "solver rejected the model as invalid")
	default:
		// UNKNOWN: the limit elapsed before any feasible layout was found.
		return nil, errors.New(errors.ErrCodeTimeout, "time limit %s elapsed without a feasible layout", limit)
	}

	result.Solution = b.extract(response, result.Status, elapsed)
	params.Logger.Info("layout solved",
		"status", result.Status,
		"rooms", len(result.Solution.Rooms),
		"penalty", result.Solution.Penalty,
		"wall_time", elapsed.Round(time.Millisecond))
	return result, nil
}

// extract reads the solved variable values into an immutable Solution.
func (b *builder) extract(response *cmpb.CpSolverResponse, status layout.Status, elapsed time.Duration) *layout.Solution {
	sol := &layout.Solution{
		Status:      status,
		FloorWidth:  b.params.FloorWidth,
		FloorHeight: b.params.FloorHeight,
		Objective:   int64(response.GetObjectiveValue()),
		WallTime:    elapsed,
	}

	for _, rv := range b.rooms {
		room := layout.PlacedRoom{
			ID:    rv.id(),
			Type:  rv.inst.Type,
			Index: rv.inst.Index,
			Rect: layout.Rect{
				X:      int(cpmodel.SolutionIntegerValue(response, rv.x)),
				Y:      int(cpmodel.SolutionIntegerValue(response, rv.y)),
				Width:  int(cpmodel.SolutionIntegerValue(response, rv.w)),
				Height: int(cpmodel.SolutionIntegerValue(response, rv.h)),
			},
		}
		for s, d := range rv.doors {
			if !cpmodel.SolutionBooleanValue(response, d.active) {
				continue
			}
			room.Doors = append(room.Doors, layout.Door{
				X:          int(cpmodel.SolutionIntegerValue(response, d.x)),
				Y:          int(cpmodel.SolutionIntegerValue(response, d.y)),
				Slot:       s,
				ConnectsTo: b.connectedTarget(response, rv, s),
			})
		}
		sol.Rooms = append(sol.Rooms, room)
	}

	var penalty int64
	for _, t := range b.penalties {
		if v := cpmodel.SolutionIntegerValue(response, t.v); v > 0 {
			penalty += int64(t.weight * float64(v))
			b.logger.Debug("soft rule violated", "rule", t.name, "amount", v)
		}
	}
	sol.Penalty = penalty
	return sol
}

// connectedTarget returns the instance id a door slot opens into, if its
// connection literal was set.
func (b *builder) connectedTarget(response *cmpb.CpSolverResponse, rv *roomVars, slot int) string {
	for _, c := range b.conns[rv.id()] {
		if c.slot == slot && cpmodel.SolutionBooleanValue(response, c.b) {
			return c.target
		}
	}
	return ""
}
