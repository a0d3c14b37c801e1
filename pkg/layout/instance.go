// Package layout defines the room-instance model and solved-layout artifacts.
//
// An [Inventory] maps room types to requested counts. [Expand] turns it into
// an ordered set of [RoomInstance] values, one per requested room, each with a
// stable id of the form "type__index". The solver places instances on the
// floor plate and emits a [Solution], which this package can serialize to JSON
// and re-check against the rule registry (see [Validate]).
package layout

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/planwright/blockplan/pkg/errors"
	"github.com/planwright/blockplan/pkg/rules"
)

// TreatmentRoomType is the room type whose instance count drives tier
// selection in dimension models and entry tiers.
const TreatmentRoomType rules.RoomType = "treatmentRoom"

// Inventory maps room types to requested instance counts.
type Inventory map[rules.RoomType]int

// TreatmentRooms returns the requested treatment-room count, the contextual
// parameter for tiered rules.
func (inv Inventory) TreatmentRooms() int {
	return inv[TreatmentRoomType]
}

// Total returns the total number of requested instances.
func (inv Inventory) Total() int {
	n := 0
	for _, c := range inv {
		if c > 0 {
			n += c
		}
	}
	return n
}

// RoomInstance is one concrete room to place: a room type plus a zero-based
// index among all requested instances of that type.
type RoomInstance struct {
	Type  rules.RoomType
	Index int
}

// ID returns the stable instance id, "type__index".
func (ri RoomInstance) ID() string {
	return fmt.Sprintf("%s__%d", ri.Type, ri.Index)
}

// Expand materializes the inventory against the registry. Instances are
// ordered by room type (sorted), then index, so downstream variable creation
// is deterministic. Types with zero count are skipped with a log note: rules
// elsewhere that reference them hold vacuously. Unknown types and negative
// counts are configuration errors.
func Expand(reg *rules.Registry, inv Inventory, logger *log.Logger) ([]RoomInstance, error) {
	if logger == nil {
		logger = log.Default()
	}
	if len(inv) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInventory, "empty inventory")
	}

	types := make([]rules.RoomType, 0, len(inv))
	for t := range inv {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var out []RoomInstance
	for _, t := range types {
		count := inv[t]
		if _, ok := reg.Lookup(t); !ok {
			return nil, errors.New(errors.ErrCodeConfigInventory, "inventory names unknown room type %q", t)
		}
		if count < 0 {
			return nil, errors.New(errors.ErrCodeConfigInventory, "negative count %d for room type %q", count, t)
		}
		if count == 0 {
			logger.Debug("room type requested with zero count, rules referencing it hold vacuously", "type", t)
			continue
		}
		for i := 0; i < count; i++ {
			out = append(out, RoomInstance{Type: t, Index: i})
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInventory, "inventory requests no rooms")
	}
	return out, nil
}

// ByType indexes instances by room type, preserving instance order.
func ByType(instances []RoomInstance) map[rules.RoomType][]RoomInstance {
	idx := make(map[rules.RoomType][]RoomInstance)
	for _, ri := range instances {
		idx[ri.Type] = append(idx[ri.Type], ri)
	}
	return idx
}
