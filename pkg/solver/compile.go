package solver

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/rules"
)

// corridorType anchors the prefer-near-center reference when a corridor is
// part of the inventory.
const corridorType rules.RoomType = "clinicalCorridor"

// compile dispatches every rule of every instance into constraints and
// penalty terms. Rules whose parameters cannot be resolved, or whose targets
// have no instances, are skipped with a log entry, never an error.
func (b *builder) compile() {
	for _, rv := range b.rooms {
		b.compileEntryCount(rv)
		for _, rule := range rv.rec.EntryRules {
			b.compileEntryRule(rv, rule)
		}
		b.compileAdjacency(rv)
		for _, rule := range rv.rec.Visibility {
			b.compileVisibility(rv, rule)
		}
		for _, rule := range rv.rec.Clearances.Ideal {
			b.compileDistanceRule(rv, rule, "clearance")
		}
		if cb := rv.rec.CenterBias; cb != nil {
			b.compileNearCenter(rv, cb.Weight)
		}
	}
}

// compileEntryCount bounds the number of active door slots by the entry tier
// selected for the treatment-room count.
func (b *builder) compileEntryCount(rv *roomVars) {
	tiers := rv.rec.EntryTiers
	if len(tiers) == 0 {
		return
	}
	tier, ok := rules.ResolveEntryTier(tiers, b.params.TreatmentRooms)
	if !ok {
		b.logger.Debug("no entry tier applies, skipping entry-count bounds",
			"room", rv.id(), "treatment_rooms", b.params.TreatmentRooms)
		return
	}

	sum := cpmodel.NewLinearExpr()
	for _, d := range rv.doors {
		sum.Add(d.active)
	}
	minEntries := min(tier.MinEntries, len(rv.doors))
	if minEntries < tier.MinEntries {
		b.logger.Warn("entry tier wants more doors than slots, clamping",
			"room", rv.id(), "want", tier.MinEntries, "slots", len(rv.doors))
	}
	b.model.AddGreaterOrEqual(sum, cpmodel.NewConstant(int64(minEntries)))
	if tier.MaxEntries != nil {
		b.model.AddLessOrEqual(sum, cpmodel.NewConstant(int64(*tier.MaxEntries)))
	}
}

func (b *builder) compileEntryRule(rv *roomVars, rule rules.Rule) {
	targets := b.targets(rv, b.reg.ExpandTarget(rule))
	if len(targets) == 0 {
		b.logger.Debug("entry rule target has no instances, holds vacuously",
			"room", rv.id(), "kind", rule.Kind)
		return
	}

	switch rule.Kind {
	case rules.KindEntryFrom:
		var lits []cpmodel.BoolVar
		for s := range rv.doors {
			for _, t := range targets {
				lits = append(lits, b.connVar(rv, s, t))
			}
		}
		if rule.Hard {
			b.model.AddBoolOr(lits...)
			return
		}
		miss := b.model.NewBoolVar()
		b.model.AddBoolOr(append(lits, miss)...)
		b.penalize(fmt.Sprintf("%s entry_from %s", rv.id(), describe(rule)), rule.Weight, miss)

	case rules.KindEntryNotFrom:
		for s := range rv.doors {
			for _, t := range targets {
				b.forbidConnection(rv, s, t, rule)
			}
		}

	case rules.KindEntryWithinDistance:
		if rule.MaxDistance == nil {
			b.logger.Debug("entry_within_distance has no distance, skipping", "room", rv.id())
			return
		}
		mg := b.minGap(rv, targets)
		limit := int64(*rule.MaxDistance)
		if rule.Hard {
			b.model.AddLessOrEqual(mg, cpmodel.NewConstant(limit))
			return
		}
		excess := b.posPart(cpmodel.NewConstant(-limit).Add(mg), b.params.horizon())
		b.penalize(fmt.Sprintf("%s entry_within_distance %s", rv.id(), describe(rule)), rule.Weight, excess)

	default:
		b.logger.Warn("rule kind not valid as an entry rule, skipping", "room", rv.id(), "kind", rule.Kind)
	}
}

// connVar returns the boolean meaning "door slot s of rv opens into t",
// creating its wall-pairing encoding on first use. A true connection
// requires the slot active and the door point on a genuinely shared wall
// segment: the two walls coincide and the door's perpendicular coordinate
// lies in both rectangles' spans.
func (b *builder) connVar(rv *roomVars, s int, t *roomVars) cpmodel.BoolVar {
	for _, c := range b.conns[rv.id()] {
		if c.slot == s && c.target == t.id() {
			return c.b
		}
	}

	m := b.model
	d := rv.doors[s]
	conn := m.NewBoolVar()
	m.AddImplication(conn, d.active)

	viaLeft := m.NewBoolVar()   // rv's left wall against t's right wall
	viaRight := m.NewBoolVar()  // rv's right wall against t's left wall
	viaBottom := m.NewBoolVar() // rv's bottom wall against t's top wall
	viaTop := m.NewBoolVar()    // rv's top wall against t's bottom wall
	m.AddEquality(cpmodel.NewLinearExpr().Add(viaLeft).Add(viaRight).Add(viaBottom).Add(viaTop), conn)

	m.AddImplication(viaLeft, d.left)
	m.AddEquality(d.x, t.right()).OnlyEnforceIf(viaLeft)
	m.AddImplication(viaRight, d.right)
	m.AddEquality(d.x, t.x).OnlyEnforceIf(viaRight)
	for _, via := range []cpmodel.BoolVar{viaLeft, viaRight} {
		m.AddGreaterOrEqual(d.y, t.y).OnlyEnforceIf(via)
		m.AddLessOrEqual(d.y, t.top()).OnlyEnforceIf(via)
	}

	m.AddImplication(viaBottom, d.bottom)
	m.AddEquality(d.y, t.top()).OnlyEnforceIf(viaBottom)
	m.AddImplication(viaTop, d.top)
	m.AddEquality(d.y, t.y).OnlyEnforceIf(viaTop)
	for _, via := range []cpmodel.BoolVar{viaBottom, viaTop} {
		m.AddGreaterOrEqual(d.x, t.x).OnlyEnforceIf(via)
		m.AddLessOrEqual(d.x, t.right()).OnlyEnforceIf(via)
	}

	b.conns[rv.id()] = append(b.conns[rv.id()], connRef{slot: s, target: t.id(), b: conn})
	return conn
}

// forbidConnection keeps an active door slot of rv strictly outside t's
// rectangle, so no door of rv can open into t. Soft rules penalize the
// violation instead of forbidding it.
func (b *builder) forbidConnection(rv *roomVars, s int, t *roomVars, rule rules.Rule) {
	m := b.model
	d := rv.doors[s]

	outLeft := m.NewBoolVar()
	outRight := m.NewBoolVar()
	outBelow := m.NewBoolVar()
	outAbove := m.NewBoolVar()
	m.AddLessThan(d.x, t.x).OnlyEnforceIf(outLeft)
	m.AddGreaterThan(d.x, t.right()).OnlyEnforceIf(outRight)
	m.AddLessThan(d.y, t.y).OnlyEnforceIf(outBelow)
	m.AddGreaterThan(d.y, t.top()).OnlyEnforceIf(outAbove)

	lits := []cpmodel.BoolVar{outLeft, outRight, outBelow, outAbove, d.active.Not()}
	if rule.Hard {
		m.AddBoolOr(lits...)
		return
	}
	viol := m.NewBoolVar()
	m.AddBoolOr(append(lits, viol)...)
	b.penalize(fmt.Sprintf("%s entry_not_from %s slot %d", rv.id(), t.id(), s), rule.Weight, viol)
}

// compileAdjacency handles the three adjacency partitions: required
// touching, preferred proximity, and required separation.
func (b *builder) compileAdjacency(rv *roomVars) {
	for _, rule := range rv.rec.Adjacency.Direct {
		targets := b.targets(rv, b.reg.ExpandTarget(rule))
		if len(targets) == 0 {
			b.logger.Debug("direct adjacency target has no instances, holds vacuously",
				"room", rv.id(), "target", describe(rule))
			continue
		}
		// Required touching binds every target instance, not just the
		// nearest one.
		for _, t := range targets {
			adj := b.adjacentVar(rv, t)
			if rule.Hard {
				b.model.AddBoolAnd(adj)
				continue
			}
			miss := b.model.NewBoolVar()
			b.model.AddBoolOr(adj, miss)
			b.penalize(fmt.Sprintf("%s adjacent %s", rv.id(), t.id()), rule.Weight, miss)
		}
	}

	for _, rule := range rv.rec.Adjacency.Preferred {
		switch rule.Kind {
		case rules.KindAdjacent:
			targets := b.targets(rv, b.reg.ExpandTarget(rule))
			if len(targets) == 0 {
				continue
			}
			// Preferred touching: any residual gap to the nearest target
			// is penalized, a shared wall is not required.
			mg := b.minGap(rv, targets)
			b.penalize(fmt.Sprintf("%s near %s", rv.id(), describe(rule)), rule.Weight, mg)
		default:
			b.compileDistanceRule(rv, rule, "preferred")
		}
	}

	for _, rule := range rv.rec.Adjacency.Separation {
		targets := b.targets(rv, b.reg.ExpandTarget(rule))
		if len(targets) == 0 {
			continue
		}
		minGap := b.params.DefaultSeparation
		if rule.MinDistance != nil {
			minGap = *rule.MinDistance
		}
		for _, t := range targets {
			g := b.gap(rv, t)
			if rule.Hard {
				b.model.AddGreaterOrEqual(g.total, cpmodel.NewConstant(int64(minGap)))
				continue
			}
			short := b.posPart(cpmodel.NewConstant(int64(minGap)).AddTerm(g.total, -1), int64(minGap))
			b.penalize(fmt.Sprintf("%s separate %s", rv.id(), t.id()), rule.Weight, short)
		}
	}
}

// adjacentVar returns a boolean that, when true, forces rv and t to touch
// with a shared wall segment of at least the minimum length: zero Manhattan
// gap plus sufficient interval overlap on one axis. With interiors disjoint,
// a positive overlap on one axis and zero gap pins the pair wall-to-wall on
// the other.
func (b *builder) adjacentVar(rv, t *roomVars) cpmodel.BoolVar {
	m := b.model
	g := b.gap(rv, t)
	adj := m.NewBoolVar()
	m.AddEquality(g.total, cpmodel.NewConstant(0)).OnlyEnforceIf(adj)

	minWall := cpmodel.NewConstant(int64(b.params.MinSharedWall))
	wallX := m.NewBoolVar()
	wallY := m.NewBoolVar()
	m.AddGreaterOrEqual(g.overlapX, minWall).OnlyEnforceIf(wallX)
	m.AddGreaterOrEqual(g.overlapY, minWall).OnlyEnforceIf(wallY)
	m.AddBoolOr(wallX, wallY).OnlyEnforceIf(adj)
	return adj
}

// compileVisibility applies the distance-proxy visibility semantics: hidden
// rooms want at least the hidden gap from every target instance, visible
// rooms want at most the visible distance to the nearest one.
func (b *builder) compileVisibility(rv *roomVars, rule rules.Rule) {
	targets := b.targets(rv, b.reg.ExpandTarget(rule))
	if len(targets) == 0 {
		b.logger.Debug("visibility target has no instances, holds vacuously",
			"room", rv.id(), "kind", rule.Kind)
		return
	}

	switch rule.Kind {
	case rules.KindAvoidVisibility:
		want := int64(b.params.HiddenGap)
		for _, t := range targets {
			g := b.gap(rv, t)
			if rule.Hard {
				b.model.AddGreaterOrEqual(g.total, cpmodel.NewConstant(want))
				continue
			}
			short := b.posPart(cpmodel.NewConstant(want).AddTerm(g.total, -1), want)
			b.penalize(fmt.Sprintf("%s hidden_from %s", rv.id(), t.id()), rule.Weight, short)
		}

	case rules.KindRequireVisibility:
		limit := int64(b.params.VisibleDistance)
		mg := b.minGap(rv, targets)
		if rule.Hard {
			b.model.AddLessOrEqual(mg, cpmodel.NewConstant(limit))
			return
		}
		excess := b.posPart(cpmodel.NewConstant(-limit).Add(mg), b.params.horizon())
		b.penalize(fmt.Sprintf("%s visible_from %s", rv.id(), describe(rule)), rule.Weight, excess)

	default:
		b.logger.Warn("rule kind not valid as a visibility rule, skipping", "room", rv.id(), "kind", rule.Kind)
	}
}

// compileDistanceRule handles the plain distance kinds (near_space,
// not_within_distance, prefer_near_center) wherever they appear.
func (b *builder) compileDistanceRule(rv *roomVars, rule rules.Rule, family string) {
	if rule.Kind == rules.KindPreferNearCenter {
		w := rule.Weight
		if w == 0 {
			w = 1
		}
		b.compileNearCenter(rv, w)
		return
	}

	targets := b.targets(rv, b.reg.ExpandTarget(rule))
	if len(targets) == 0 {
		return
	}

	switch rule.Kind {
	case rules.KindNearSpace:
		limit := int64(0)
		if rule.MaxDistance != nil {
			limit = int64(*rule.MaxDistance)
		}
		mg := b.minGap(rv, targets)
		if rule.Hard {
			b.model.AddLessOrEqual(mg, cpmodel.NewConstant(limit))
			return
		}
		excess := b.posPart(cpmodel.NewConstant(-limit).Add(mg), b.params.horizon())
		b.penalize(fmt.Sprintf("%s near_space %s", rv.id(), describe(rule)), rule.Weight, excess)

	case rules.KindNotWithinDistance:
		if rule.MinDistance == nil {
			b.logger.Debug("not_within_distance has no distance, skipping", "room", rv.id())
			return
		}
		want := int64(*rule.MinDistance)
		for _, t := range targets {
			g := b.gap(rv, t)
			if rule.Hard {
				b.model.AddGreaterOrEqual(g.total, cpmodel.NewConstant(want))
				continue
			}
			short := b.posPart(cpmodel.NewConstant(want).AddTerm(g.total, -1), want)
			b.penalize(fmt.Sprintf("%s not_within %s of %s", rv.id(), family, t.id()), rule.Weight, short)
		}

	default:
		b.logger.Warn("rule kind not valid as a distance rule, skipping", "room", rv.id(), "kind", rule.Kind)
	}
}

// compileNearCenter penalizes the doubled-coordinate Manhattan distance from
// rv's center to the clinical reference center: the first corridor instance
// when one exists, else the averaged treatment-room center, else skipped.
func (b *builder) compileNearCenter(rv *roomVars, weight float64) {
	if corridors := b.byType[corridorType]; len(corridors) > 0 && corridors[0] != rv {
		ref := corridors[0]
		b.penalizeCenterDistance(rv, 1, []*roomVars{ref}, weight, "corridor_center")
		return
	}
	var treatment []*roomVars
	for _, t := range b.byType[layout.TreatmentRoomType] {
		if t != rv {
			treatment = append(treatment, t)
		}
	}
	if len(treatment) == 0 {
		b.logger.Debug("no reference center available, skipping center bias", "room", rv.id())
		return
	}
	b.penalizeCenterDistance(rv, len(treatment), treatment, weight, "treatment_center")
}

// penalizeCenterDistance adds |n·c(rv) − Σ c(ref)| per axis in doubled
// coordinates, weighted down by n so averaging needs no division.
func (b *builder) penalizeCenterDistance(rv *roomVars, n int, refs []*roomVars, weight float64, label string) {
	bound := int64(n) * 2 * b.params.horizon()

	for axis, name := range []string{"x", "y"} {
		pos := cpmodel.NewLinearExpr()
		neg := cpmodel.NewLinearExpr()
		addCenter := func(r *roomVars, coef int64) {
			if axis == 0 {
				pos.AddTerm(r.x, 2*coef).AddTerm(r.w, coef)
				neg.AddTerm(r.x, -2*coef).AddTerm(r.w, -coef)
			} else {
				pos.AddTerm(r.y, 2*coef).AddTerm(r.h, coef)
				neg.AddTerm(r.y, -2*coef).AddTerm(r.h, -coef)
			}
		}
		addCenter(rv, int64(n))
		for _, ref := range refs {
			addCenter(ref, -1)
		}

		dist := b.model.NewIntVar(0, bound)
		b.model.AddMaxEquality(dist, pos, neg)
		// Doubled coordinates and the n-scaling both inflate the raw value.
		b.penalize(fmt.Sprintf("%s near %s (%s)", rv.id(), label, name), weight/float64(2*n), dist)
	}
}

func describe(rule rules.Rule) string {
	if rule.Target != "" {
		return string(rule.Target)
	}
	return string(rule.Group)
}
