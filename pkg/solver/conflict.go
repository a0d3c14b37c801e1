package solver

import (
	"fmt"
	"sort"

	"github.com/planwright/blockplan/pkg/rules"
)

// Conflict is a statically detectable contradiction between hard rules on a
// type pair: one rule demands touching, another demands distance. Reported
// alongside an infeasible result to point at the likely cause.
type Conflict struct {
	A, B   rules.RoomType
	Touch  string // the rule family requiring gap 0
	Keep   string // the rule family requiring a positive gap
	MinGap int
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s/%s: %s requires touching but %s requires a gap of at least %d",
		c.A, c.B, c.Touch, c.Keep, c.MinGap)
}

// findConflicts scans the registry for unordered type pairs where a hard
// direct-adjacency rule collides with a hard separation or minimum-distance
// rule between the same types. Only pairs with instances on both sides are
// reported.
func findConflicts(reg *rules.Registry, present map[rules.RoomType]bool, defaultSeparation int) []Conflict {
	type pair struct{ a, b rules.RoomType }
	touch := make(map[pair]bool)
	keep := make(map[pair]struct {
		family string
		minGap int
	})

	norm := func(a, b rules.RoomType) pair {
		if a > b {
			a, b = b, a
		}
		return pair{a, b}
	}

	for _, typ := range reg.Types() {
		rec, _ := reg.Lookup(typ)
		for _, rule := range rec.Adjacency.Direct {
			if !rule.Hard {
				continue
			}
			for _, t := range reg.ExpandTarget(rule) {
				touch[norm(typ, t)] = true
			}
		}
		record := func(rule rules.Rule, family string, minGap int) {
			if !rule.Hard || minGap <= 0 {
				return
			}
			for _, t := range reg.ExpandTarget(rule) {
				p := norm(typ, t)
				if prev, ok := keep[p]; !ok || minGap > prev.minGap {
					keep[p] = struct {
						family string
						minGap int
					}{family, minGap}
				}
			}
		}
		for _, rule := range rec.Adjacency.Separation {
			minGap := defaultSeparation
			if rule.MinDistance != nil {
				minGap = *rule.MinDistance
			}
			record(rule, "separation", minGap)
		}
		for _, rule := range rec.Clearances.Ideal {
			if rule.Kind == rules.KindNotWithinDistance && rule.MinDistance != nil {
				record(rule, "not_within_distance", *rule.MinDistance)
			}
		}
	}

	var out []Conflict
	for p, k := range keep {
		if !touch[p] {
			continue
		}
		if !present[p.a] || !present[p.b] {
			continue
		}
		out = append(out, Conflict{A: p.a, B: p.b, Touch: "direct adjacency", Keep: k.family, MinGap: k.minGap})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
