package gamedata

import (
	"github.com/dmarve/statekeeper/internal/algorithm"
)

// GameConfig describes one game ruleset: stats, equipment slots, classes,
// gear definitions, sets, leveling algorithms and clamps. It is immutable
// for the lifetime of a running process; replacing it requires a restart.
type GameConfig struct {
	ConfigID   string               `yaml:"configId" json:"configId"`
	MaxLevel   int                  `yaml:"maxLevel" json:"maxLevel"`
	Stats      []string             `yaml:"stats" json:"stats"`
	Slots      []string             `yaml:"slots" json:"slots"`
	Classes    map[string]ClassDef  `yaml:"classes" json:"classes"`
	GearDefs   map[string]GearDef   `yaml:"gearDefs" json:"gearDefs"`
	Sets       map[string]SetDef    `yaml:"sets" json:"sets"`
	Algorithms Algorithms           `yaml:"algorithms" json:"algorithms"`
	StatClamps map[string]StatClamp `yaml:"statClamps" json:"statClamps,omitempty"`
}

// ClassDef holds the level-1 base stats of a character class.
type ClassDef struct {
	BaseStats map[string]float64 `yaml:"baseStats" json:"baseStats"`
}

// GearDef is the immutable definition behind gear instances.
type GearDef struct {
	BaseStats     map[string]float64 `yaml:"baseStats" json:"baseStats"`
	EquipPatterns [][]string         `yaml:"equipPatterns" json:"equipPatterns"`
	SetID         string             `yaml:"setId" json:"setId,omitempty"`
	SetPieceCount int                `yaml:"setPieceCount" json:"setPieceCount,omitempty"`
	Restrictions  *Restrictions      `yaml:"restrictions" json:"restrictions,omitempty"`
}

// Restrictions gate who may equip a gear def. Absent fields impose no check.
type Restrictions struct {
	AllowedClasses         []string `yaml:"allowedClasses" json:"allowedClasses,omitempty"`
	BlockedClasses         []string `yaml:"blockedClasses" json:"blockedClasses,omitempty"`
	RequiredCharacterLevel int      `yaml:"requiredCharacterLevel" json:"requiredCharacterLevel,omitempty"`
	MaxLevelDelta          *int     `yaml:"maxLevelDelta" json:"maxLevelDelta,omitempty"`
}

// SetDef holds the tiered bonuses of a gear set.
type SetDef struct {
	Bonuses []SetBonus `yaml:"bonuses" json:"bonuses"`
}

// SetBonus applies once when at least Pieces set pieces are equipped.
type SetBonus struct {
	Pieces     int                `yaml:"pieces" json:"pieces"`
	BonusStats map[string]float64 `yaml:"bonusStats" json:"bonusStats"`
}

// Algorithms selects the growth and level-cost algorithms for the ruleset.
type Algorithms struct {
	Growth             AlgorithmRef `yaml:"growth" json:"growth"`
	LevelCostCharacter AlgorithmRef `yaml:"levelCostCharacter" json:"levelCostCharacter"`
	LevelCostGear      AlgorithmRef `yaml:"levelCostGear" json:"levelCostGear"`
}

// AlgorithmRef names a registry algorithm and carries its parameters.
type AlgorithmRef struct {
	AlgorithmID string           `yaml:"algorithmId" json:"algorithmId"`
	Params      algorithm.Params `yaml:"params" json:"params,omitempty"`
}

// StatClamp bounds a computed stat. A missing bound is unbounded on that
// side.
type StatClamp struct {
	Min *float64 `yaml:"min" json:"min,omitempty"`
	Max *float64 `yaml:"max" json:"max,omitempty"`
}

// HasStat reports whether the stat list contains name.
func (c *GameConfig) HasStat(name string) bool {
	for _, s := range c.Stats {
		if s == name {
			return true
		}
	}
	return false
}

// HasSlot reports whether the slot list contains id.
func (c *GameConfig) HasSlot(id string) bool {
	for _, s := range c.Slots {
		if s == id {
			return true
		}
	}
	return false
}

// PieceCount returns the set-piece weight of a gear def (default 1).
func (d GearDef) PieceCount() int {
	if d.SetPieceCount > 0 {
		return d.SetPieceCount
	}
	return 1
}
