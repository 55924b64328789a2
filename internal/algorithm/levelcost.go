package algorithm

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Cost maps scope-qualified resource ids ("player.gold", "character.soul")
// to amounts.
type Cost map[string]int64

// LevelCost returns the price of reaching level from level-1. Level 1 and
// below is always free.
type LevelCost func(level int, params Params) Cost

// Scopes accepted in cost resource ids.
const (
	ScopePlayer    = "player"
	ScopeCharacter = "character"
)

var errExponentBelowOne = errors.New("parameter \"exponent\" must be >= 1")

type levelCostEntry struct {
	fn       LevelCost
	info     Info
	validate func(Params) error
}

var levelCostRegistry = map[string]levelCostEntry{
	"flat": {
		fn: func(_ int, _ Params) Cost { return Cost{} },
		info: Info{
			Description: "Leveling is free at every level.",
			Params:      map[string]string{},
		},
	},
	"free": {
		fn: func(_ int, _ Params) Cost { return Cost{} },
		info: Info{
			Description: "Alias of flat: leveling is free.",
			Params:      map[string]string{},
		},
	},
	"linear_cost": {
		fn: func(level int, params Params) Cost {
			if level <= 1 {
				return Cost{}
			}
			resource := NormalizeResourceID(params.str("resourceId"))
			base := params.float("base", 0)
			perLevel := params.float("perLevel", 0)
			amount := int64(math.Floor(base + perLevel*float64(level-2)))
			return Cost{resource: amount}
		},
		info: Info{
			Description: "Single resource, growing linearly with the target level.",
			Params: map[string]string{
				"resourceId": "Resource key, optionally scope-dotted (player.gold); bare keys are player scope.",
				"base":       "Cost of reaching level 2.",
				"perLevel":   "Added per target level above 2.",
			},
		},
		validate: func(params Params) error {
			if _, err := params.requireString("resourceId"); err != nil {
				return err
			}
			if _, err := params.requireFloat("base"); err != nil {
				return err
			}
			return nil
		},
	},
	"mixed_linear_cost": {
		fn: func(level int, params Params) Cost {
			if level <= 1 {
				return Cost{}
			}
			out := Cost{}
			for _, entry := range params.list("costs") {
				p := Params(entry)
				scope := p.str("scope")
				if scope == "" {
					scope = ScopePlayer
				}
				key := scope + "." + p.str("resourceId")
				amount := int64(math.Floor(p.float("base", 0) + p.float("perLevel", 0)*float64(level-2)))
				out[key] += amount
			}
			return out
		},
		info: Info{
			Description: "Several linearly growing costs, each with its own scope and resource.",
			Params: map[string]string{
				"costs": "List of {scope, resourceId, base, perLevel}; scope is player or character.",
			},
		},
		validate: func(params Params) error {
			costs := params.list("costs")
			if len(costs) == 0 {
				return errors.New("parameter \"costs\" must be a non-empty list")
			}
			for i, entry := range costs {
				p := Params(entry)
				if _, err := p.requireString("resourceId"); err != nil {
					return fmt.Errorf("costs[%d]: %w", i, err)
				}
				if scope := p.str("scope"); scope != "" && scope != ScopePlayer && scope != ScopeCharacter {
					return fmt.Errorf("costs[%d]: unknown scope %q", i, scope)
				}
			}
			return nil
		},
	},
}

// NormalizeResourceID prefixes bare resource keys with the player scope.
// Already-dotted ids pass through untouched.
func NormalizeResourceID(id string) string {
	if strings.Contains(id, ".") {
		return id
	}
	return ScopePlayer + "." + id
}

// SplitResourceID separates a scope-qualified id into scope and wallet key.
// Bare ids resolve to player scope.
func SplitResourceID(id string) (scope, key string) {
	scope, key, ok := strings.Cut(id, ".")
	if !ok {
		return ScopePlayer, id
	}
	return scope, key
}

// LevelCostFor resolves a level-cost algorithm by id.
func LevelCostFor(id string) (LevelCost, bool) {
	e, ok := levelCostRegistry[id]
	if !ok {
		return nil, false
	}
	return e.fn, true
}

// ValidateLevelCost checks that id is known and its params satisfy the
// algorithm's contract.
func ValidateLevelCost(id string, params Params) error {
	e, ok := levelCostRegistry[id]
	if !ok {
		return unknownAlgorithmError("level cost", id, KnownLevelCost())
	}
	if e.validate != nil {
		if err := e.validate(params); err != nil {
			return err
		}
	}
	return nil
}

// KnownLevelCost lists accepted level-cost algorithm ids, sorted.
func KnownLevelCost() []string {
	ids := make([]string, 0, len(levelCostRegistry))
	for id := range levelCostRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalCost sums the per-target-level costs for every level in (from, to],
// key-wise.
func TotalCost(fn LevelCost, from, to int, params Params) Cost {
	total := Cost{}
	for level := from + 1; level <= to; level++ {
		for key, amount := range fn(level, params) {
			total[key] += amount
		}
	}
	return total
}

func unknownAlgorithmError(family, id string, accepted []string) error {
	return fmt.Errorf("unknown %s algorithm %q (accepted: %s)", family, id, strings.Join(accepted, ", "))
}
