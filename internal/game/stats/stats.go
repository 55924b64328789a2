// Package stats computes final character stats from class base values,
// level growth, equipped gear, set bonuses and clamps.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/dmarve/statekeeper/internal/algorithm"
	"github.com/dmarve/statekeeper/internal/gamedata"
	"github.com/dmarve/statekeeper/internal/model"
)

// Sheet is the computed-stats projection returned by the read view.
type Sheet struct {
	CharacterID string           `json:"characterId"`
	ClassID     string           `json:"classId"`
	Level       int              `json:"level"`
	FinalStats  map[string]int64 `json:"finalStats"`
}

// Compute builds the stat sheet for a character. Orphaned references never
// fail the read: a missing class contributes zero base stats and a missing
// gear def contributes nothing.
func Compute(cfg *gamedata.GameConfig, player *model.Player, char *model.Character) (Sheet, error) {
	growth, ok := algorithm.GrowthFor(cfg.Algorithms.Growth.AlgorithmID)
	if !ok {
		return Sheet{}, fmt.Errorf("unknown growth algorithm %q", cfg.Algorithms.Growth.AlgorithmID)
	}
	growthParams := cfg.Algorithms.Growth.Params

	var classBase map[string]float64
	if class, ok := cfg.Classes[char.ClassID]; ok {
		classBase = class.BaseStats
	}

	acc := make(map[string]int64, len(cfg.Stats))
	for _, stat := range cfg.Stats {
		acc[stat] = growth(classBase[stat], stat, char.Level, growthParams)
	}

	// Each gear contributes once even when its pattern spans several slots.
	for _, gearID := range equippedOnce(char) {
		gear, ok := player.Gear[gearID]
		if !ok {
			continue
		}
		def, ok := cfg.GearDefs[gear.GearDefID]
		if !ok {
			continue
		}
		for _, stat := range cfg.Stats {
			base, ok := def.BaseStats[stat]
			if !ok {
				continue
			}
			acc[stat] += growth(base, stat, gear.Level, growthParams)
		}
	}

	applySetBonuses(cfg, player, char, acc)

	for stat, clamp := range cfg.StatClamps {
		v := acc[stat]
		if clamp.Min != nil {
			if lo := int64(math.Ceil(*clamp.Min)); v < lo {
				v = lo
			}
		}
		if clamp.Max != nil {
			if hi := int64(math.Floor(*clamp.Max)); v > hi {
				v = hi
			}
		}
		acc[stat] = v
	}

	return Sheet{
		CharacterID: char.ID,
		ClassID:     char.ClassID,
		Level:       char.Level,
		FinalStats:  acc,
	}, nil
}

func applySetBonuses(cfg *gamedata.GameConfig, player *model.Player, char *model.Character, acc map[string]int64) {
	pieces := make(map[string]int)
	for _, gearID := range equippedOnce(char) {
		gear, ok := player.Gear[gearID]
		if !ok {
			continue
		}
		def, ok := cfg.GearDefs[gear.GearDefID]
		if !ok || def.SetID == "" {
			continue
		}
		pieces[def.SetID] += def.PieceCount()
	}

	for setID, active := range pieces {
		set, ok := cfg.Sets[setID]
		if !ok {
			continue
		}
		for _, bonus := range set.Bonuses {
			if bonus.Pieces > active {
				continue
			}
			for stat, amount := range bonus.BonusStats {
				if _, ok := acc[stat]; !ok {
					continue
				}
				acc[stat] += int64(math.Floor(amount))
			}
		}
	}
}

// equippedOnce returns the distinct gear ids in the equipped map, in stable
// order.
func equippedOnce(char *model.Character) []string {
	seen := make(map[string]bool, len(char.Equipped))
	var ids []string
	for _, gearID := range char.Equipped {
		if seen[gearID] {
			continue
		}
		seen[gearID] = true
		ids = append(ids, gearID)
	}
	sort.Strings(ids)
	return ids
}
