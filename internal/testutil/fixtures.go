// Package testutil provides shared fixtures: a reference game config and
// pre-wired states used across unit tests.
package testutil

import (
	"github.com/dmarve/statekeeper/internal/algorithm"
	"github.com/dmarve/statekeeper/internal/gamedata"
	"github.com/dmarve/statekeeper/internal/model"
)

// Standard fixture identifiers.
const (
	AdminKey = "admin-secret"
	ActorKey = "actor-key-1"
	ActorID  = "actor_1"
	PlayerID = "player_1"
	CharID   = "char_1"
)

// Config returns the reference ruleset: warrior with linear growth, a
// one-slot sword, a two-slot greatsword and a four-piece war set.
func Config() *gamedata.GameConfig {
	return &gamedata.GameConfig{
		ConfigID: "test_v1",
		MaxLevel: 10,
		Stats:    []string{"strength", "hp"},
		Slots:    []string{"right_hand", "left_hand", "head", "chest", "legs", "feet"},
		Classes: map[string]gamedata.ClassDef{
			"warrior": {BaseStats: map[string]float64{"strength": 5, "hp": 20}},
			"mage":    {BaseStats: map[string]float64{"strength": 1, "hp": 12}},
		},
		GearDefs: map[string]gamedata.GearDef{
			"sword_basic": {
				BaseStats:     map[string]float64{"strength": 3},
				EquipPatterns: [][]string{{"right_hand"}},
			},
			"greatsword": {
				BaseStats:     map[string]float64{"strength": 7},
				EquipPatterns: [][]string{{"right_hand", "left_hand"}},
			},
			"war_helm": {
				BaseStats:     map[string]float64{"hp": 2},
				EquipPatterns: [][]string{{"head"}},
				SetID:         "set_of_war",
			},
			"war_plate": {
				BaseStats:     map[string]float64{"hp": 4},
				EquipPatterns: [][]string{{"chest"}},
				SetID:         "set_of_war",
			},
			"war_greaves": {
				BaseStats:     map[string]float64{"hp": 3},
				EquipPatterns: [][]string{{"legs"}},
				SetID:         "set_of_war",
			},
			"war_boots": {
				BaseStats:     map[string]float64{"hp": 1},
				EquipPatterns: [][]string{{"feet"}},
				SetID:         "set_of_war",
			},
			"warrior_blade": {
				BaseStats:     map[string]float64{"strength": 4},
				EquipPatterns: [][]string{{"right_hand"}},
				Restrictions: &gamedata.Restrictions{
					AllowedClasses: []string{"warrior"},
				},
			},
		},
		Sets: map[string]gamedata.SetDef{
			"set_of_war": {
				Bonuses: []gamedata.SetBonus{
					{Pieces: 2, BonusStats: map[string]float64{"strength": 2}},
					{Pieces: 4, BonusStats: map[string]float64{"hp": 10}},
				},
			},
		},
		Algorithms: gamedata.Algorithms{
			Growth: gamedata.AlgorithmRef{
				AlgorithmID: "linear",
				Params: algorithm.Params{
					"perLevelMultiplier": 0.1,
					"additivePerLevel":   map[string]any{"hp": 1},
				},
			},
			LevelCostCharacter: gamedata.AlgorithmRef{AlgorithmID: "flat"},
			LevelCostGear:      gamedata.AlgorithmRef{AlgorithmID: "flat"},
		},
	}
}

// ConfigWithCosts returns the reference ruleset with paid leveling:
// characters pay player gold, gear pays player gold plus character souls.
func ConfigWithCosts() *gamedata.GameConfig {
	cfg := Config()
	cfg.ConfigID = "test_costs_v1"
	cfg.Algorithms.LevelCostCharacter = gamedata.AlgorithmRef{
		AlgorithmID: "linear_cost",
		Params: algorithm.Params{
			"resourceId": "gold",
			"base":       10.0,
			"perLevel":   5.0,
		},
	}
	cfg.Algorithms.LevelCostGear = gamedata.AlgorithmRef{
		AlgorithmID: "mixed_linear_cost",
		Params: algorithm.Params{
			"costs": []any{
				map[string]any{"scope": "player", "resourceId": "gold", "base": 4.0, "perLevel": 2.0},
				map[string]any{"scope": "character", "resourceId": "souls", "base": 1.0, "perLevel": 1.0},
			},
		},
	}
	return cfg
}

// State returns an instance with one actor owning one player that has a
// level-1 warrior.
func State(cfg *gamedata.GameConfig) *model.GameState {
	st := model.NewGameState("instance_001", cfg.ConfigID, 0)
	st.Actors[ActorID] = &model.Actor{
		ID:        ActorID,
		APIKey:    ActorKey,
		PlayerIDs: []string{PlayerID},
	}
	player := model.NewPlayer(PlayerID)
	player.Characters[CharID] = model.NewCharacter(CharID, "warrior")
	st.Players[PlayerID] = player
	return st
}
