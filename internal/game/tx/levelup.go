package tx

import (
	"fmt"
	"sort"

	"github.com/dmarve/statekeeper/internal/algorithm"
	"github.com/dmarve/statekeeper/internal/gamedata"
	"github.com/dmarve/statekeeper/internal/model"
)

func (p *Processor) levelUpCharacter(st *model.GameState, req *Request) *rejection {
	player, rej := p.player(st, req.PlayerID)
	if rej != nil {
		return rej
	}
	char, ok := player.Characters[req.CharacterID]
	if !ok {
		return reject(CodeCharacterNotFound, fmt.Sprintf("character %q not found", req.CharacterID))
	}

	target := char.Level + req.levelDelta()
	if target > p.cfg.MaxLevel {
		return reject(CodeMaxLevelReached, fmt.Sprintf("level %d exceeds maxLevel %d", target, p.cfg.MaxLevel))
	}

	ref := p.cfg.Algorithms.LevelCostCharacter
	playerCost, charCost, rej := p.computeCost(ref, char.Level, target)
	if rej != nil {
		return rej
	}
	if rej := checkWallet(player.Resources, playerCost, algorithm.ScopePlayer); rej != nil {
		return rej
	}
	if rej := checkWallet(char.Resources, charCost, algorithm.ScopeCharacter); rej != nil {
		return rej
	}

	// Atomic commit: both wallets were verified above.
	deduct(player.Resources, playerCost)
	deduct(char.Resources, charCost)
	char.Level = target
	st.Bump()
	return nil
}

func (p *Processor) levelUpGear(st *model.GameState, req *Request) *rejection {
	player, rej := p.player(st, req.PlayerID)
	if rej != nil {
		return rej
	}
	gear, ok := player.Gear[req.GearID]
	if !ok {
		return reject(CodeGearNotFound, fmt.Sprintf("gear %q not found", req.GearID))
	}

	target := gear.Level + req.levelDelta()
	if target > p.cfg.MaxLevel {
		return reject(CodeMaxLevelReached, fmt.Sprintf("level %d exceeds maxLevel %d", target, p.cfg.MaxLevel))
	}

	ref := p.cfg.Algorithms.LevelCostGear
	playerCost, charCost, rej := p.computeCost(ref, gear.Level, target)
	if rej != nil {
		return rej
	}

	// Character-scoped gear costs draw from the equipping character; while
	// the gear is unequipped there is no wallet to pay from.
	var char *model.Character
	if len(charCost) > 0 {
		char, ok = player.Characters[gear.EquippedBy]
		if gear.EquippedBy == "" || !ok {
			return reject(CodeInsufficientResources, "character-scoped cost on unequipped gear")
		}
	}

	if rej := checkWallet(player.Resources, playerCost, algorithm.ScopePlayer); rej != nil {
		return rej
	}
	if char != nil {
		if rej := checkWallet(char.Resources, charCost, algorithm.ScopeCharacter); rej != nil {
			return rej
		}
	}

	deduct(player.Resources, playerCost)
	if char != nil {
		deduct(char.Resources, charCost)
	}
	gear.Level = target
	st.Bump()
	return nil
}

// computeCost totals the level-cost over (from, target] and partitions it by
// scope into player and character wallet slices.
func (p *Processor) computeCost(ref gamedata.AlgorithmRef, from, target int) (playerCost, charCost map[string]int64, rej *rejection) {
	fn, ok := algorithm.LevelCostFor(ref.AlgorithmID)
	if !ok {
		// Config validation already guarantees the id; still reject cleanly.
		return nil, nil, reject(CodeInvalidConfigReference, fmt.Sprintf("unknown level cost algorithm %q", ref.AlgorithmID))
	}
	total := algorithm.TotalCost(fn, from, target, ref.Params)

	playerCost = make(map[string]int64)
	charCost = make(map[string]int64)
	for id, amount := range total {
		scope, key := algorithm.SplitResourceID(id)
		switch scope {
		case algorithm.ScopeCharacter:
			charCost[key] += amount
		case algorithm.ScopePlayer:
			playerCost[key] += amount
		default:
			// Unknown scopes stay whole keys in the player wallet, matching
			// the legacy unprefixed behavior.
			playerCost[id] += amount
		}
	}
	return playerCost, charCost, nil
}

func checkWallet(wallet, cost map[string]int64, scope string) *rejection {
	keys := make([]string, 0, len(cost))
	for key := range cost {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if wallet[key] < cost[key] {
			return reject(CodeInsufficientResources,
				fmt.Sprintf("%s.%s: need %d, have %d", scope, key, cost[key], wallet[key]))
		}
	}
	return nil
}

func deduct(wallet, cost map[string]int64) {
	for key, amount := range cost {
		wallet[key] -= amount
	}
}
