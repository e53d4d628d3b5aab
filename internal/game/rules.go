package game

import "fmt"

// Level is the (range, lives) pair a difficulty maps to.
type Level struct {
	RangeMax int `json:"rangeMax" yaml:"range_max"`
	Lives    int `json:"lives" yaml:"lives"`
}

// Rules maps every difficulty to its level. An engine runs on exactly one table.
type Rules map[Difficulty]Level

// ClassicRules is the canonical table.
var ClassicRules = Rules{
	Easy:   {RangeMax: 50, Lives: 10},
	Medium: {RangeMax: 100, Lives: 8},
	Hard:   {RangeMax: 200, Lives: 6},
}

// HardcoreRules keeps the ranges but hands out fewer lives.
var HardcoreRules = Rules{
	Easy:   {RangeMax: 50, Lives: 7},
	Medium: {RangeMax: 100, Lives: 5},
	Hard:   {RangeMax: 200, Lives: 3},
}

// RulesByName resolves a preset name from config.
func RulesByName(name string) (Rules, error) {
	switch name {
	case "", "classic":
		return ClassicRules, nil
	case "hardcore":
		return HardcoreRules, nil
	}
	return nil, fmt.Errorf("unknown rules preset %q", name)
}

// Level looks up the level for d.
func (r Rules) Level(d Difficulty) (Level, error) {
	lvl, ok := r[d]
	if !ok {
		return Level{}, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, d)
	}
	return lvl, nil
}

// Validate checks that every difficulty is present with sane numbers.
func (r Rules) Validate() error {
	for _, d := range Difficulties {
		lvl, ok := r[d]
		if !ok {
			return fmt.Errorf("rules: missing %s", d)
		}
		if lvl.RangeMax < 1 || lvl.Lives < 1 {
			return fmt.Errorf("rules: %s needs positive range and lives, got %+v", d, lvl)
		}
	}
	return nil
}
