package gamedata

import (
	"fmt"

	"github.com/dmarve/statekeeper/internal/algorithm"
)

// Validate checks reference closure inside the config: every stat, slot, set
// and algorithm mentioned anywhere must be defined in the same config. The
// returned error names the offending identifier; algorithm errors also list
// the accepted ids.
func Validate(cfg *GameConfig) error {
	if cfg.ConfigID == "" {
		return fmt.Errorf("invalid config: missing configId")
	}
	if cfg.MaxLevel < 1 {
		return fmt.Errorf("invalid config %q: maxLevel must be >= 1, got %d", cfg.ConfigID, cfg.MaxLevel)
	}

	for classID, class := range cfg.Classes {
		for stat := range class.BaseStats {
			if !cfg.HasStat(stat) {
				return fmt.Errorf("invalid config %q: class %q references unknown stat %q", cfg.ConfigID, classID, stat)
			}
		}
	}

	for defID, def := range cfg.GearDefs {
		for stat := range def.BaseStats {
			if !cfg.HasStat(stat) {
				return fmt.Errorf("invalid config %q: gearDef %q references unknown stat %q", cfg.ConfigID, defID, stat)
			}
		}
		for _, pattern := range def.EquipPatterns {
			for _, slot := range pattern {
				if !cfg.HasSlot(slot) {
					return fmt.Errorf("invalid config %q: gearDef %q references unknown slot %q", cfg.ConfigID, defID, slot)
				}
			}
		}
		if def.SetID != "" {
			if _, ok := cfg.Sets[def.SetID]; !ok {
				return fmt.Errorf("invalid config %q: gearDef %q references unknown set %q", cfg.ConfigID, defID, def.SetID)
			}
		}
	}

	for setID, set := range cfg.Sets {
		for _, bonus := range set.Bonuses {
			for stat := range bonus.BonusStats {
				if !cfg.HasStat(stat) {
					return fmt.Errorf("invalid config %q: set %q references unknown stat %q", cfg.ConfigID, setID, stat)
				}
			}
		}
	}

	for stat := range cfg.StatClamps {
		if !cfg.HasStat(stat) {
			return fmt.Errorf("invalid config %q: statClamps references unknown stat %q", cfg.ConfigID, stat)
		}
	}

	if err := algorithm.ValidateGrowth(cfg.Algorithms.Growth.AlgorithmID, cfg.Algorithms.Growth.Params); err != nil {
		return fmt.Errorf("invalid config %q: growth: %w", cfg.ConfigID, err)
	}
	if err := algorithm.ValidateLevelCost(cfg.Algorithms.LevelCostCharacter.AlgorithmID, cfg.Algorithms.LevelCostCharacter.Params); err != nil {
		return fmt.Errorf("invalid config %q: levelCostCharacter: %w", cfg.ConfigID, err)
	}
	if err := algorithm.ValidateLevelCost(cfg.Algorithms.LevelCostGear.AlgorithmID, cfg.Algorithms.LevelCostGear.Params); err != nil {
		return fmt.Errorf("invalid config %q: levelCostGear: %w", cfg.ConfigID, err)
	}

	return nil
}
