package solver

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// pairKey identifies an unordered instance pair.
type pairKey struct {
	a, b string
}

func keyFor(a, b *roomVars) pairKey {
	if a.id() < b.id() {
		return pairKey{a.id(), b.id()}
	}
	return pairKey{b.id(), a.id()}
}

// gapVars is the distance encoding for one rectangle pair: the Manhattan gap
// plus the interval overlaps along each axis (used for shared-wall checks).
// Built once per pair and cached; every rule kind reuses the same encoding.
type gapVars struct {
	total    cpmodel.IntVar
	overlapX cpmodel.IntVar
	overlapY cpmodel.IntVar
}

// gap returns the cached distance encoding for a pair, building it on first
// use. The four gap components are positive parts of the axis differences:
// each is max(0, diff), so the total is 0 exactly when the rectangles touch
// or overlap and the true Manhattan gap otherwise.
func (b *builder) gap(a, c *roomVars) gapVars {
	key := keyFor(a, c)
	if g, ok := b.gaps[key]; ok {
		return g
	}
	m := b.model
	h := b.params.horizon()

	gapRight := b.posPart(cpmodel.NewLinearExpr().Add(c.x).AddTerm(a.x, -1).AddTerm(a.w, -1), h)
	gapLeft := b.posPart(cpmodel.NewLinearExpr().Add(a.x).AddTerm(c.x, -1).AddTerm(c.w, -1), h)
	gapAbove := b.posPart(cpmodel.NewLinearExpr().Add(c.y).AddTerm(a.y, -1).AddTerm(a.h, -1), h)
	gapBelow := b.posPart(cpmodel.NewLinearExpr().Add(a.y).AddTerm(c.y, -1).AddTerm(c.h, -1), h)

	total := m.NewIntVar(0, h)
	m.AddEquality(cpmodel.NewLinearExpr().Add(gapRight).Add(gapLeft).Add(gapAbove).Add(gapBelow), total)

	g := gapVars{
		total:    total,
		overlapX: b.intervalOverlap(a.x, a.w, c.x, c.w, int64(b.params.FloorWidth)),
		overlapY: b.intervalOverlap(a.y, a.h, c.y, c.h, int64(b.params.FloorHeight)),
	}
	b.gaps[key] = g
	return g
}

// posPart returns a variable equal to max(0, expr).
func (b *builder) posPart(expr *cpmodel.LinearExpr, bound int64) cpmodel.IntVar {
	v := b.model.NewIntVar(0, bound)
	b.model.AddMaxEquality(v, expr, cpmodel.NewConstant(0))
	return v
}

// intervalOverlap returns a variable equal to the (possibly negative)
// interval overlap min(a+aw, c+cw) − max(a, c) along one axis. Positive
// values are shared span; negative values are the gap on that axis.
func (b *builder) intervalOverlap(a, aw, c, cw cpmodel.IntVar, bound int64) cpmodel.IntVar {
	m := b.model
	lo := m.NewIntVar(0, bound)
	m.AddMaxEquality(lo, a, c)
	hi := m.NewIntVar(0, 2*bound)
	m.AddMinEquality(hi, cpmodel.NewLinearExpr().Add(a).Add(aw), cpmodel.NewLinearExpr().Add(c).Add(cw))
	ov := m.NewIntVar(-bound, bound)
	m.AddEquality(cpmodel.NewLinearExpr().Add(hi).AddTerm(lo, -1), ov)
	return ov
}

// minGap returns a variable equal to the smallest Manhattan gap from rv to
// any of the targets. Callers guarantee targets is non-empty.
func (b *builder) minGap(rv *roomVars, targets []*roomVars) cpmodel.IntVar {
	if len(targets) == 1 {
		return b.gap(rv, targets[0]).total
	}
	args := make([]cpmodel.LinearArgument, len(targets))
	for i, t := range targets {
		args[i] = b.gap(rv, t).total
	}
	v := b.model.NewIntVar(0, b.params.horizon())
	b.model.AddMinEquality(v, args...)
	return v
}
