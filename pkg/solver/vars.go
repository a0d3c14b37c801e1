package solver

import (
	"github.com/charmbracelet/log"
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/planwright/blockplan/pkg/errors"
	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/rules"
)

// doorVars is one door slot: a point plus an active flag. Side selectors pin
// the point to exactly one wall of the owning rectangle while the slot is
// active; an inactive slot has no selected side and its point floats.
type doorVars struct {
	x, y   cpmodel.IntVar
	active cpmodel.BoolVar

	left, right, bottom, top cpmodel.BoolVar
}

// connRef records a candidate door connection: slot may open into the room
// with the given instance id when b is true.
type connRef struct {
	slot   int
	target string
	b      cpmodel.BoolVar
}

// roomVars is the variable block for one room instance.
type roomVars struct {
	inst layout.RoomInstance
	rec  *rules.RoomTypeRule

	x, y, w, h cpmodel.IntVar
	doors      []doorVars
}

func (rv *roomVars) id() string { return rv.inst.ID() }

// right is x+w as a linear expression.
func (rv *roomVars) right() *cpmodel.LinearExpr {
	return cpmodel.NewLinearExpr().Add(rv.x).Add(rv.w)
}

// top is y+h as a linear expression.
func (rv *roomVars) top() *cpmodel.LinearExpr {
	return cpmodel.NewLinearExpr().Add(rv.y).Add(rv.h)
}

// centerDoubled is (2x+w, 2y+h), the doubled center.
func (rv *roomVars) centerDoubled() (cx, cy *cpmodel.LinearExpr) {
	return cpmodel.NewLinearExpr().AddTerm(rv.x, 2).Add(rv.w),
		cpmodel.NewLinearExpr().AddTerm(rv.y, 2).Add(rv.h)
}

// builder accumulates the CP-SAT model for one solve.
type builder struct {
	model  *cpmodel.Builder
	params Params
	reg    *rules.Registry
	logger *log.Logger

	rooms  []*roomVars
	byType map[rules.RoomType][]*roomVars

	// conns maps an instance id to its candidate door connections, used
	// both by entry-rule compilation and by solution extraction.
	conns map[string][]connRef

	gaps      map[pairKey]gapVars
	penalties []penaltyTerm
}

func newBuilder(reg *rules.Registry, params Params) *builder {
	return &builder{
		model:  cpmodel.NewCpModelBuilder(),
		params: params,
		reg:    reg,
		logger: params.Logger,
		byType: make(map[rules.RoomType][]*roomVars),
		conns:  make(map[string][]connRef),
		gaps:   make(map[pairKey]gapVars),
	}
}

// allocate creates the rectangle and door variables for every instance.
// Resolved minimum sizes that cannot fit the plate are configuration errors.
func (b *builder) allocate(instances []layout.RoomInstance) error {
	for _, inst := range instances {
		rec, ok := b.reg.Lookup(inst.Type)
		if !ok {
			return errors.New(errors.ErrCodeConfigInventory, "no rule record for room type %q", inst.Type)
		}
		rv, err := b.allocateRoom(inst, rec)
		if err != nil {
			return err
		}
		b.rooms = append(b.rooms, rv)
		b.byType[inst.Type] = append(b.byType[inst.Type], rv)
	}
	b.addNonOverlap()
	return nil
}

func (b *builder) allocateRoom(inst layout.RoomInstance, rec *rules.RoomTypeRule) (*roomVars, error) {
	plateW, plateH := b.params.FloorWidth, b.params.FloorHeight

	wMin, hMin, wMax, hMax := b.extentBounds(rec)
	if wMin > plateW || hMin > plateH {
		return nil, errors.New(errors.ErrCodeConfigBounds,
			"%s minimum size %dx%d exceeds %dx%d plate", inst.ID(), wMin, hMin, plateW, plateH)
	}
	wMax = min(wMax, plateW)
	hMax = min(hMax, plateH)
	if wMin > wMax || hMin > hMax {
		return nil, errors.New(errors.ErrCodeConfigBounds,
			"%s size bounds inverted: minimum %dx%d exceeds maximum %dx%d", inst.ID(), wMin, hMin, wMax, hMax)
	}

	rv := &roomVars{
		inst: inst,
		rec:  rec,
		x:    b.model.NewIntVar(0, int64(plateW)),
		y:    b.model.NewIntVar(0, int64(plateH)),
		w:    b.model.NewIntVar(int64(wMin), int64(wMax)),
		h:    b.model.NewIntVar(int64(hMin), int64(hMax)),
	}
	b.model.AddLessOrEqual(rv.right(), cpmodel.NewConstant(int64(plateW)))
	b.model.AddLessOrEqual(rv.top(), cpmodel.NewConstant(int64(plateH)))

	for s := 0; s < b.params.DoorSlots; s++ {
		rv.doors = append(rv.doors, b.allocateDoor(rv))
	}
	return rv, nil
}

// extentBounds maps the record's (width, length) bounds onto the plate's
// (x, y) axes, applying the orientation rule when present. Unresolved bounds
// are skipped with a log note.
func (b *builder) extentBounds(rec *rules.RoomTypeRule) (wMin, hMin, wMax, hMax int) {
	wMin, hMin = 1, 1
	wMax, hMax = b.params.FloorWidth, b.params.FloorHeight

	minD, okMin := rec.Size.ResolveMin(b.params.TreatmentRooms)
	maxD, okMax := rec.Size.ResolveMax(b.params.TreatmentRooms)
	if !okMin && !okMax {
		b.logger.Debug("size unresolved, skipping dimension bounds", "type", rec.Type)
		return
	}

	swap := b.lengthAlongX(rec.Orientation)
	if okMin {
		wMin, hMin = orientDims(minD, swap)
	}
	if okMax {
		wMax, hMax = orientDims(maxD, swap)
	}
	return
}

// lengthAlongX reports whether the room's length axis runs along the plate's
// x axis. Without an orientation rule, length runs along y.
func (b *builder) lengthAlongX(o *rules.Orientation) bool {
	if o == nil {
		return false
	}
	plateLongX := b.params.FloorWidth >= b.params.FloorHeight
	ref := o.Reference
	if ref == "" {
		ref = rules.EdgeLong
	}
	refAlongX := (ref == rules.EdgeLong) == plateLongX
	if o.Relation == rules.RelationParallel {
		return refAlongX
	}
	return !refAlongX
}

func orientDims(d rules.Dims, lengthAlongX bool) (w, h int) {
	if lengthAlongX {
		return d.Length, d.Width
	}
	return d.Width, d.Length
}

// allocateDoor creates one door slot. Side selectors sum to the active flag,
// so an active door picks exactly one wall and an inactive one picks none.
// Each selector pins the door point onto that wall: the parallel coordinate
// equals the wall position, the perpendicular one stays within the wall's
// span (inset by the ADA clearance margin when the room requires it).
func (b *builder) allocateDoor(rv *roomVars) doorVars {
	m := b.model
	d := doorVars{
		x:      m.NewIntVar(0, int64(b.params.FloorWidth)),
		y:      m.NewIntVar(0, int64(b.params.FloorHeight)),
		active: m.NewBoolVar(),
		left:   m.NewBoolVar(),
		right:  m.NewBoolVar(),
		bottom: m.NewBoolVar(),
		top:    m.NewBoolVar(),
	}

	sides := cpmodel.NewLinearExpr().Add(d.left).Add(d.right).Add(d.bottom).Add(d.top)
	m.AddEquality(sides, d.active)

	margin := int64(0)
	if ada := rv.rec.Clearances.ADA; ada != nil {
		margin = int64((ada.MinClearWidth + 1) / 2)
	}

	// Vertical walls: x pinned, y within [y+margin, y+h-margin].
	m.AddEquality(d.x, rv.x).OnlyEnforceIf(d.left)
	m.AddEquality(d.x, rv.right()).OnlyEnforceIf(d.right)
	for _, side := range []cpmodel.BoolVar{d.left, d.right} {
		m.AddGreaterOrEqual(d.y, cpmodel.NewConstant(margin).Add(rv.y)).OnlyEnforceIf(side)
		m.AddLessOrEqual(d.y, cpmodel.NewConstant(-margin).Add(rv.y).Add(rv.h)).OnlyEnforceIf(side)
	}

	// Horizontal walls: y pinned, x within [x+margin, x+w-margin].
	m.AddEquality(d.y, rv.y).OnlyEnforceIf(d.bottom)
	m.AddEquality(d.y, rv.top()).OnlyEnforceIf(d.top)
	for _, side := range []cpmodel.BoolVar{d.bottom, d.top} {
		m.AddGreaterOrEqual(d.x, cpmodel.NewConstant(margin).Add(rv.x)).OnlyEnforceIf(side)
		m.AddLessOrEqual(d.x, cpmodel.NewConstant(-margin).Add(rv.x).Add(rv.w)).OnlyEnforceIf(side)
	}

	return d
}

// addNonOverlap posts the pairwise disjunctive non-overlap: for every pair,
// one of the four relative placements holds.
func (b *builder) addNonOverlap() {
	m := b.model
	for i := 0; i < len(b.rooms); i++ {
		for j := i + 1; j < len(b.rooms); j++ {
			a, c := b.rooms[i], b.rooms[j]
			leftOf := m.NewBoolVar()
			rightOf := m.NewBoolVar()
			below := m.NewBoolVar()
			above := m.NewBoolVar()
			m.AddLessOrEqual(a.right(), c.x).OnlyEnforceIf(leftOf)
			m.AddLessOrEqual(c.right(), a.x).OnlyEnforceIf(rightOf)
			m.AddLessOrEqual(a.top(), c.y).OnlyEnforceIf(below)
			m.AddLessOrEqual(c.top(), a.y).OnlyEnforceIf(above)
			m.AddBoolOr(leftOf, rightOf, below, above)
		}
	}
}

// targets returns the variable blocks for all instances of the given types,
// excluding the instance itself.
func (b *builder) targets(self *roomVars, types []rules.RoomType) []*roomVars {
	var out []*roomVars
	for _, t := range types {
		for _, rv := range b.byType[t] {
			if rv != self {
				out = append(out, rv)
			}
		}
	}
	return out
}
