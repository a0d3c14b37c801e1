package rules

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/planwright/blockplan/pkg/errors"
)

// rulesetFile is the on-disk TOML shape of a ruleset. Room types are the
// keys of the rooms table.
type rulesetFile struct {
	Rooms map[string]*RoomTypeRule `toml:"rooms"`
}

// Load reads a ruleset TOML file and builds a validated registry.
//
// File shape:
//
//	[rooms.sterilization]
//	category = "clinical"
//
//	[[rooms.sterilization.size.models]]
//	label = "compact"
//	treatment_rooms_min = 5
//	treatment_rooms_max = 8
//	width_inches = 110
//	length_inches = 152
//
//	[[rooms.sterilization.entry_rules]]
//	kind = "entry_from"
//	target = "clinicalCorridor"
//	hard = true
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "ruleset %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "read ruleset %s", path)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "ruleset %s", path)
	}
	return reg, nil
}

// Parse builds a validated registry from ruleset TOML data.
func Parse(data []byte) (*Registry, error) {
	var file rulesetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode ruleset")
	}
	if len(file.Rooms) == 0 {
		return nil, errors.New(errors.ErrCodeConfig, "ruleset defines no room types")
	}

	records := make([]*RoomTypeRule, 0, len(file.Rooms))
	for name, rec := range file.Rooms {
		rec.Type = RoomType(name)
		records = append(records, rec)
	}
	return NewRegistry(records...)
}
