// Package pkg provides the core libraries for Blockplan floor-plan solving.
//
// # Overview
//
// Blockplan turns a declarative ruleset (per-room-type sizing, entry,
// adjacency, separation, and visibility rules) plus a room inventory into a
// concrete non-overlapping arrangement of rectangular rooms and doors on a
// bounded floor plate. The pkg directory is organized by pipeline stage:
//
//  1. [rules] - Ruleset model, TOML loading, and the embedded dental ruleset
//  2. [layout] - Solution types (rooms, doors, placements) and validation
//  3. [solver] - CP-SAT constraint compilation and solving
//  4. [connectivity] - Door-connectivity graphs and Graphviz rendering
//  5. [pipeline] - Orchestration (rules → solve → export) with caching
//
// # Architecture
//
// The typical data flow through Blockplan:
//
//	Ruleset TOML + Inventory
//	         ↓
//	    [rules] package (parse + validate registry)
//	         ↓
//	    [solver] package (compile constraints, run CP-SAT)
//	         ↓
//	    [layout] package (solution model + validation)
//	         ↓
//	    JSON/DOT/SVG output
//
// # Quick Start
//
// Solve a layout and render its connectivity graph:
//
//	import (
//	    "context"
//	    "github.com/planwright/blockplan/pkg/connectivity"
//	    "github.com/planwright/blockplan/pkg/layout"
//	    "github.com/planwright/blockplan/pkg/rules"
//	    "github.com/planwright/blockplan/pkg/solver"
//	)
//
//	// 1. Build the room set from the embedded dental ruleset
//	reg := rules.Dental()
//	inv := layout.Inventory{"treatmentRoom": 6, "clinicalCorridor": 1}
//
//	// 2. Solve
//	res, _ := solver.Solve(context.Background(), reg, inv, solver.Params{
//	    FloorWidth:  1800,
//	    FloorHeight: 1200,
//	})
//
//	// 3. Render the door graph
//	g := connectivity.Build(res.Solution, reg)
//	dot := connectivity.ToDOT(g)
//
// # Main Packages
//
// ## Domain
//
// [rules] - The ruleset model: room types, categories, tiered sizing models,
// entry tiers, adjacency and visibility rules. Loads rulesets from TOML and
// ships the embedded dental-practice ruleset.
//
// [layout] - Solution types shared by the solver and every consumer: room
// placements, door placements, inventories, and an independent geometric
// validator that re-checks a solution against its registry.
//
// [solver] - Compiles a registry and inventory into a CP-SAT model (interval
// non-overlap, door slots, shared-wall minimums, separation and visibility
// constraints, soft penalties) and solves it with a fixed seed. Infeasible
// models report per-rule conflicts.
//
// [connectivity] - Derives the room-to-room door graph from a solution and
// renders it as Graphviz DOT or SVG.
//
// ## Infrastructure
//
// [pipeline] - Complete solve pipeline (rules → solve → export) used by the
// CLI and the HTTP API. Ensures consistent behavior across entry points and
// handles solution and artifact caching.
//
// [cache] - Cache backends behind one interface: file-based for the CLI,
// Redis and MongoDB for server deployments, null for tests. Content-hash
// keying with per-kind TTLs.
//
// [errors] - Coded errors shared across packages, mapped to exit codes and
// HTTP statuses at the edges.
//
// [observability] - Process-global solve and cache hooks for metrics
// integration, no-op by default.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/solver/...     # Specific package
//
// [rules]: https://pkg.go.dev/github.com/planwright/blockplan/pkg/rules
// [layout]: https://pkg.go.dev/github.com/planwright/blockplan/pkg/layout
// [solver]: https://pkg.go.dev/github.com/planwright/blockplan/pkg/solver
// [connectivity]: https://pkg.go.dev/github.com/planwright/blockplan/pkg/connectivity
// [pipeline]: https://pkg.go.dev/github.com/planwright/blockplan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/planwright/blockplan/pkg/cache
// [errors]: https://pkg.go.dev/github.com/planwright/blockplan/pkg/errors
// [observability]: https://pkg.go.dev/github.com/planwright/blockplan/pkg/observability
package pkg
