// Package rules defines the per-room-type rule records consumed by the
// layout solver.
//
// A ruleset maps room types (e.g. "sterilization", "clinicalCorridor") to
// immutable rule records covering dimensions, orientation, entries,
// clearances, adjacency, and visibility. Rule kinds form a closed set that
// is validated exhaustively when a [Registry] is built, so unknown kinds
// are rejected at load time rather than at solve time.
//
// Rules frequently carry unresolved values (a missing dimension tier, an
// unspecified distance). These are modeled as absent optional fields, and
// every consumer applies a uniform skip-and-log policy: a rule with no
// resolvable parameters is treated as absent, never as a failure.
//
// Rulesets are loaded from TOML files (see [Load]) or constructed in code
// (see [Dental] for the built-in dental-clinic ruleset).
package rules

import (
	"fmt"
	"sort"

	"github.com/planwright/blockplan/pkg/errors"
)

// RoomType identifies a room type in a ruleset (e.g. "sterilization").
type RoomType string

// Category groups room types for rules that target a whole zone.
type Category string

// Room categories.
const (
	CategoryClinical Category = "clinical"
	CategoryPublic   Category = "public"
	CategoryPrivate  Category = "private"
)

// RuleKind tags a relational rule. The set is closed: NewRegistry rejects
// rulesets containing any other value.
type RuleKind string

// Rule kinds understood by the constraint compiler.
const (
	KindEntryFrom           RuleKind = "entry_from"
	KindEntryNotFrom        RuleKind = "entry_not_from"
	KindEntryWithinDistance RuleKind = "entry_within_distance"
	KindNearSpace           RuleKind = "near_space"
	KindNotWithinDistance   RuleKind = "not_within_distance"
	KindAdjacent            RuleKind = "adjacent"
	KindSeparate            RuleKind = "separate"
	KindAvoidVisibility     RuleKind = "avoid_visibility_from"
	KindRequireVisibility   RuleKind = "require_visibility_from"
	KindPreferNearCenter    RuleKind = "prefer_near_center"
)

// validKinds is the exhaustive dispatch set. Anything else is rejected when
// the registry is built.
var validKinds = map[RuleKind]bool{
	KindEntryFrom:           true,
	KindEntryNotFrom:        true,
	KindEntryWithinDistance: true,
	KindNearSpace:           true,
	KindNotWithinDistance:   true,
	KindAdjacent:            true,
	KindSeparate:            true,
	KindAvoidVisibility:     true,
	KindRequireVisibility:   true,
	KindPreferNearCenter:    true,
}

// Rule is a single relational rule against a target room type or category.
// Distance fields are in inches and absent when the source leaves them
// unspecified. Hard rules must hold in every accepted layout; soft rules
// contribute a weighted penalty to the objective.
type Rule struct {
	Kind        RuleKind `toml:"kind" json:"kind"`
	Target      RoomType `toml:"target,omitempty" json:"target,omitempty"`
	Group       Category `toml:"group,omitempty" json:"group,omitempty"`
	MaxDistance *int     `toml:"max_distance_inches,omitempty" json:"max_distance_inches,omitempty"`
	MinDistance *int     `toml:"min_distance_inches,omitempty" json:"min_distance_inches,omitempty"`
	Hard        bool     `toml:"hard" json:"hard"`
	Weight      float64  `toml:"weight,omitempty" json:"weight,omitempty"`
}

// HasTarget reports whether the rule names a target type or group at all.
func (r Rule) HasTarget() bool {
	return r.Target != "" || r.Group != ""
}

// Dims is a (width, length) pair in inches.
type Dims struct {
	Width  int `toml:"width" json:"width"`
	Length int `toml:"length" json:"length"`
}

// DimensionModel is one sizing tier, optionally scoped to a range of total
// treatment-room counts (the tiering parameter used throughout the dental
// ruleset).
type DimensionModel struct {
	Label             string `toml:"label,omitempty" json:"label,omitempty"`
	TreatmentRoomsMin *int   `toml:"treatment_rooms_min,omitempty" json:"treatment_rooms_min,omitempty"`
	TreatmentRoomsMax *int   `toml:"treatment_rooms_max,omitempty" json:"treatment_rooms_max,omitempty"`
	Width             *int   `toml:"width_inches,omitempty" json:"width_inches,omitempty"`
	Length            *int   `toml:"length_inches,omitempty" json:"length_inches,omitempty"`
}

// matches reports whether the model applies at the given treatment-room
// count. A model with no tier bounds is generic and returns (false, true).
func (m DimensionModel) matches(treatmentRooms int) (tiered, ok bool) {
	if m.TreatmentRoomsMin == nil && m.TreatmentRoomsMax == nil {
		return false, true
	}
	if m.TreatmentRoomsMin != nil && treatmentRooms < *m.TreatmentRoomsMin {
		return true, false
	}
	if m.TreatmentRoomsMax != nil && treatmentRooms > *m.TreatmentRoomsMax {
		return true, false
	}
	return true, true
}

// SizeRule carries the dimension bounds for a room type. Either the explicit
// Ideal/Min/Max bounds, a list of tiered dimension models, or nothing at all
// (an unresolved size, skipped with a log entry by the compiler).
type SizeRule struct {
	Ideal  *Dims            `toml:"ideal,omitempty" json:"ideal,omitempty"`
	Min    *Dims            `toml:"min,omitempty" json:"min,omitempty"`
	Max    *Dims            `toml:"max,omitempty" json:"max,omitempty"`
	Models []DimensionModel `toml:"models,omitempty" json:"models,omitempty"`
}

// ResolveMin returns the minimum (width, length) to enforce at the given
// treatment-room count. Selection policy: an explicit minimum wins; else the
// smallest of the tier-matched dimension models (falling back to generic
// models, then to all models); else nothing resolvable.
func (s SizeRule) ResolveMin(treatmentRooms int) (Dims, bool) {
	if s.Min != nil {
		return *s.Min, true
	}
	return s.resolveModels(treatmentRooms, false)
}

// ResolveMax returns the maximum (width, length) to enforce, if any. An
// explicit maximum wins; else the largest of the candidate dimension models.
func (s SizeRule) ResolveMax(treatmentRooms int) (Dims, bool) {
	if s.Max != nil {
		return *s.Max, true
	}
	return s.resolveModels(treatmentRooms, true)
}

func (s SizeRule) resolveModels(treatmentRooms int, largest bool) (Dims, bool) {
	var matched, generic []DimensionModel
	for _, m := range s.Models {
		if m.Width == nil && m.Length == nil {
			continue
		}
		tiered, ok := m.matches(treatmentRooms)
		switch {
		case !tiered:
			generic = append(generic, m)
		case ok:
			matched = append(matched, m)
		}
	}
	candidates := matched
	if len(candidates) == 0 {
		candidates = generic
	}
	if len(candidates) == 0 {
		for _, m := range s.Models {
			if m.Width != nil || m.Length != nil {
				candidates = append(candidates, m)
			}
		}
	}
	if len(candidates) == 0 {
		return Dims{}, false
	}

	var d Dims
	var haveW, haveL bool
	for _, m := range candidates {
		if m.Width != nil {
			if !haveW || pick(largest, *m.Width, d.Width) {
				d.Width = *m.Width
			}
			haveW = true
		}
		if m.Length != nil {
			if !haveL || pick(largest, *m.Length, d.Length) {
				d.Length = *m.Length
			}
			haveL = true
		}
	}
	if !haveW && !haveL {
		return Dims{}, false
	}
	return d, true
}

func pick(largest bool, candidate, current int) bool {
	if largest {
		return candidate > current
	}
	return candidate < current
}

// Edge names a reference edge of the floor plate for orientation rules.
type Edge string

// Reference edges.
const (
	EdgeLong  Edge = "long"
	EdgeShort Edge = "short"
)

// Orientation constrains a room's long axis relative to a reference edge,
// as parallel or perpendicular. It is implemented as a fixed ordering of
// width vs height, never as a free angle.
type Orientation struct {
	Relation  string `toml:"relation" json:"relation"` // "parallel" or "perpendicular"
	Reference Edge   `toml:"reference,omitempty" json:"reference,omitempty"`
}

// Orientation relations.
const (
	RelationParallel      = "parallel"
	RelationPerpendicular = "perpendicular"
)

// EntryTier bounds the number of active entries for a room, optionally
// scoped to a treatment-room-count range. MaxEntries nil means unbounded
// above the minimum.
type EntryTier struct {
	TreatmentRoomsMin *int `toml:"treatment_rooms_min,omitempty" json:"treatment_rooms_min,omitempty"`
	TreatmentRoomsMax *int `toml:"treatment_rooms_max,omitempty" json:"treatment_rooms_max,omitempty"`
	MinEntries        int  `toml:"min_entries" json:"min_entries"`
	MaxEntries        *int `toml:"max_entries,omitempty" json:"max_entries,omitempty"`
}

// ResolveEntryTier picks the entry-count tier for the given treatment-room
// count. Constant (untiered) tiers always apply; tiered entries only when
// the count falls in range. Returns false when no tier applies.
func ResolveEntryTier(tiers []EntryTier, treatmentRooms int) (EntryTier, bool) {
	var generic *EntryTier
	for i, t := range tiers {
		if t.TreatmentRoomsMin == nil && t.TreatmentRoomsMax == nil {
			if generic == nil {
				generic = &tiers[i]
			}
			continue
		}
		if t.TreatmentRoomsMin != nil && treatmentRooms < *t.TreatmentRoomsMin {
			continue
		}
		if t.TreatmentRoomsMax != nil && treatmentRooms > *t.TreatmentRoomsMax {
			continue
		}
		return t, true
	}
	if generic != nil {
		return *generic, true
	}
	return EntryTier{}, false
}

// ADAClearance carries accessibility requirements for a room's entries.
type ADAClearance struct {
	MinClearWidth   int `toml:"min_clear_width_inches" json:"min_clear_width_inches"`
	RequiredEntries int `toml:"required_entries,omitempty" json:"required_entries,omitempty"`
}

// Clearances groups the hard ADA requirement with soft ideal-clearance rules
// (typically not_within_distance preferences).
type Clearances struct {
	ADA   *ADAClearance `toml:"ada,omitempty" json:"ada,omitempty"`
	Ideal []Rule        `toml:"ideal,omitempty" json:"ideal,omitempty"`
}

// AdjacencyRules partitions a room's adjacency rules into required touching,
// preferred proximity, and required separation.
type AdjacencyRules struct {
	Direct     []Rule `toml:"direct,omitempty" json:"direct,omitempty"`
	Preferred  []Rule `toml:"preferred,omitempty" json:"preferred,omitempty"`
	Separation []Rule `toml:"separation,omitempty" json:"separation,omitempty"`
}

// CenterBias is a soft preference for placing the room near the clinical
// center (the corridor center, or the averaged treatment-room center).
type CenterBias struct {
	Weight float64 `toml:"weight" json:"weight"`
}

// RoomTypeRule is the complete rule record for one room type. Immutable once
// the registry is built.
type RoomTypeRule struct {
	Type        RoomType       `toml:"-" json:"type"`
	Category    Category       `toml:"category,omitempty" json:"category,omitempty"`
	Description string         `toml:"description,omitempty" json:"description,omitempty"`
	Size        SizeRule       `toml:"size,omitempty" json:"size,omitempty"`
	Orientation *Orientation   `toml:"orientation,omitempty" json:"orientation,omitempty"`
	EntryTiers  []EntryTier    `toml:"entry_tiers,omitempty" json:"entry_tiers,omitempty"`
	EntryRules  []Rule         `toml:"entry_rules,omitempty" json:"entry_rules,omitempty"`
	Adjacency   AdjacencyRules `toml:"adjacency,omitempty" json:"adjacency,omitempty"`
	Visibility  []Rule         `toml:"visibility,omitempty" json:"visibility,omitempty"`
	Clearances  Clearances     `toml:"clearances,omitempty" json:"clearances,omitempty"`
	CenterBias  *CenterBias    `toml:"center_bias,omitempty" json:"center_bias,omitempty"`

	// Scalability carries free-form scaling notes from the design team.
	// Metadata only, never constraint-encoded.
	Scalability string `toml:"scalability,omitempty" json:"scalability,omitempty"`
}

// allRules returns every relational rule on the record, for validation.
func (r *RoomTypeRule) allRules() []Rule {
	var out []Rule
	out = append(out, r.EntryRules...)
	out = append(out, r.Adjacency.Direct...)
	out = append(out, r.Adjacency.Preferred...)
	out = append(out, r.Adjacency.Separation...)
	out = append(out, r.Visibility...)
	out = append(out, r.Clearances.Ideal...)
	return out
}

// Registry is the immutable, validated collection of room-type rules. It is
// passed explicitly to every component; there is no global lookup.
type Registry struct {
	byType map[RoomType]*RoomTypeRule
	order  []RoomType
}

// NewRegistry builds a registry from rule records, validating every rule
// kind against the compiler's dispatch set and every target against the
// known room types. Validation failures are INVALID_RULE errors.
func NewRegistry(records ...*RoomTypeRule) (*Registry, error) {
	reg := &Registry{byType: make(map[RoomType]*RoomTypeRule, len(records))}
	for _, rec := range records {
		if rec.Type == "" {
			return nil, errors.New(errors.ErrCodeInvalidRoomType, "rule record with empty room type")
		}
		if _, dup := reg.byType[rec.Type]; dup {
			return nil, errors.New(errors.ErrCodeInvalidRoomType, "duplicate room type %q", rec.Type)
		}
		reg.byType[rec.Type] = rec
		reg.order = append(reg.order, rec.Type)
	}
	sort.Slice(reg.order, func(i, j int) bool { return reg.order[i] < reg.order[j] })

	for _, rec := range records {
		if err := reg.validateRecord(rec); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (reg *Registry) validateRecord(rec *RoomTypeRule) error {
	switch rec.Category {
	case "", CategoryClinical, CategoryPublic, CategoryPrivate:
	default:
		return errors.New(errors.ErrCodeInvalidRoomType, "%s: unknown category %q", rec.Type, rec.Category)
	}
	if o := rec.Orientation; o != nil {
		if o.Relation != RelationParallel && o.Relation != RelationPerpendicular {
			return errors.New(errors.ErrCodeInvalidRule, "%s: unknown orientation relation %q", rec.Type, o.Relation)
		}
		if o.Reference != "" && o.Reference != EdgeLong && o.Reference != EdgeShort {
			return errors.New(errors.ErrCodeInvalidRule, "%s: unknown orientation reference %q", rec.Type, o.Reference)
		}
	}
	for _, rule := range rec.allRules() {
		if !validKinds[rule.Kind] {
			return errors.New(errors.ErrCodeInvalidRule, "%s: unknown rule kind %q", rec.Type, rule.Kind)
		}
		if rule.Kind != KindPreferNearCenter && !rule.HasTarget() {
			return errors.New(errors.ErrCodeInvalidRule, "%s: %s rule has no target", rec.Type, rule.Kind)
		}
		if rule.Target != "" {
			if _, ok := reg.byType[rule.Target]; !ok {
				return errors.New(errors.ErrCodeInvalidRule, "%s: %s rule targets unknown room type %q", rec.Type, rule.Kind, rule.Target)
			}
		}
		if rule.Group != "" {
			switch rule.Group {
			case CategoryClinical, CategoryPublic, CategoryPrivate:
			default:
				return errors.New(errors.ErrCodeInvalidRule, "%s: %s rule targets unknown group %q", rec.Type, rule.Kind, rule.Group)
			}
		}
	}
	return nil
}

// Lookup returns the rule record for a room type.
func (reg *Registry) Lookup(t RoomType) (*RoomTypeRule, bool) {
	rec, ok := reg.byType[t]
	return rec, ok
}

// Types returns all room types in deterministic (sorted) order.
func (reg *Registry) Types() []RoomType {
	out := make([]RoomType, len(reg.order))
	copy(out, reg.order)
	return out
}

// InCategory returns the room types belonging to a category, sorted.
func (reg *Registry) InCategory(c Category) []RoomType {
	var out []RoomType
	for _, t := range reg.order {
		if reg.byType[t].Category == c {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of room types in the registry.
func (reg *Registry) Len() int { return len(reg.order) }

// ExpandTarget resolves a rule's target to concrete room types: a direct
// target yields itself, a group target yields all types in that category.
func (reg *Registry) ExpandTarget(rule Rule) []RoomType {
	if rule.Target != "" {
		if _, ok := reg.byType[rule.Target]; ok {
			return []RoomType{rule.Target}
		}
		return nil
	}
	if rule.Group != "" {
		return reg.InCategory(rule.Group)
	}
	return nil
}

// String implements fmt.Stringer for log output.
func (reg *Registry) String() string {
	return fmt.Sprintf("rules.Registry(%d types)", len(reg.order))
}
