package algorithm

import (
	"math"
	"sort"
)

// Growth scales a base stat value to a level. Results are floored to whole
// stat points.
type Growth func(base float64, stat string, level int, params Params) int64

// Info describes one algorithm for the self-describing catalog.
type Info struct {
	Description string            `json:"description"`
	Params      map[string]string `json:"params"`
}

type growthEntry struct {
	fn       Growth
	info     Info
	validate func(Params) error
}

var growthRegistry = map[string]growthEntry{
	"flat": {
		fn: func(base float64, _ string, _ int, _ Params) int64 {
			return int64(math.Floor(base))
		},
		info: Info{
			Description: "No growth: the base value at every level.",
			Params:      map[string]string{},
		},
	},
	"linear": {
		fn: func(base float64, stat string, level int, params Params) int64 {
			m := params.float("perLevelMultiplier", 0)
			add := params.statMap("additivePerLevel")[stat]
			steps := float64(level - 1)
			return int64(math.Floor(base*(1+m*steps) + add*steps))
		},
		info: Info{
			Description: "Multiplicative per-level growth with an optional flat per-level addition.",
			Params: map[string]string{
				"perLevelMultiplier": "Fraction of the base added per level above 1 (default 0).",
				"additivePerLevel":   "Optional stat-name to number map added once per level above 1.",
			},
		},
	},
	"exponential": {
		fn: func(base float64, _ string, level int, params Params) int64 {
			exp := params.float("exponent", 1)
			return int64(math.Floor(base * math.Pow(exp, float64(level-1))))
		},
		info: Info{
			Description: "Base multiplied by exponent^(level-1).",
			Params: map[string]string{
				"exponent": "Growth factor per level, must be >= 1.",
			},
		},
		validate: func(params Params) error {
			exp, err := params.requireFloat("exponent")
			if err != nil {
				return err
			}
			if exp < 1 {
				return errExponentBelowOne
			}
			return nil
		},
	},
}

// GrowthFor resolves a growth algorithm by id.
func GrowthFor(id string) (Growth, bool) {
	e, ok := growthRegistry[id]
	if !ok {
		return nil, false
	}
	return e.fn, true
}

// ValidateGrowth checks that id is known and its params satisfy the
// algorithm's contract.
func ValidateGrowth(id string, params Params) error {
	e, ok := growthRegistry[id]
	if !ok {
		return unknownAlgorithmError("growth", id, KnownGrowth())
	}
	if e.validate != nil {
		if err := e.validate(params); err != nil {
			return err
		}
	}
	return nil
}

// KnownGrowth lists accepted growth algorithm ids, sorted.
func KnownGrowth() []string {
	ids := make([]string, 0, len(growthRegistry))
	for id := range growthRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
