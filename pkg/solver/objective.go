package solver

import (
	"math"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// PenaltyScale separates penalty weights from the footprint tie-break: every
// soft-rule coefficient is at least PenaltyScale while the tie-break runs at
// coefficient 1, so compactness can never outbid a rule violation.
const PenaltyScale = 1000

// penaltyTerm is one soft-rule slack: a non-negative violation measure and
// its rule weight, collected centrally so the objective composition stays
// uniform and auditable.
type penaltyTerm struct {
	name   string
	weight float64
	v      cpmodel.LinearArgument
}

// penalize records a soft-rule violation measure. A zero weight defaults to
// 1 so a configured soft rule always carries some cost.
func (b *builder) penalize(name string, weight float64, v cpmodel.LinearArgument) {
	if weight == 0 {
		weight = 1
	}
	b.penalties = append(b.penalties, penaltyTerm{name: name, weight: weight, v: v})
}

// coefficient converts a rule weight to its integer objective coefficient.
func (t penaltyTerm) coefficient() int64 {
	c := int64(math.Round(t.weight * PenaltyScale))
	if c < 1 {
		c = 1
	}
	return c
}

// assembleObjective minimizes Σ weight·PenaltyScale·penalty plus the
// total-footprint tie-break Σ(w+h) at coefficient 1.
func (b *builder) assembleObjective() {
	obj := cpmodel.NewLinearExpr()
	for _, t := range b.penalties {
		obj.AddTerm(t.v, t.coefficient())
	}
	for _, rv := range b.rooms {
		obj.Add(rv.w).Add(rv.h)
	}
	b.model.Minimize(obj)
}
