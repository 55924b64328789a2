// Package migrate reconciles a restored GameState against the active game
// config. It is a pure function over a deep copy so it can be tested in
// isolation and a failure cannot corrupt the decoded snapshot.
package migrate

import (
	"fmt"
	"sort"

	"github.com/dmarve/statekeeper/internal/gamedata"
	"github.com/dmarve/statekeeper/internal/model"
)

// Warning codes emitted by the migrator.
const (
	WarnSlotRemoved          = "SLOT_REMOVED"
	WarnGearDefOrphaned      = "GEARDEF_ORPHANED"
	WarnEquipPatternMismatch = "EQUIPPATTERN_MISMATCH"
	WarnClassOrphaned        = "CLASS_ORPHANED"
	WarnEquipLinkBroken      = "EQUIP_LINK_BROKEN"
)

// Warning records one reconciliation action.
type Warning struct {
	Code        string `json:"code"`
	PlayerID    string `json:"playerId,omitempty"`
	CharacterID string `json:"characterId,omitempty"`
	GearID      string `json:"gearId,omitempty"`
	Slot        string `json:"slot,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// Report summarizes a migration run for one instance.
type Report struct {
	InstanceID string    `json:"gameInstanceId"`
	Warnings   []Warning `json:"warnings"`
}

// Run migrates a deep copy of state to cfg and returns it with the report.
// Characters and gear are never deleted; only broken references are cleared.
// The state version bumps by one iff any warning fired, so clients observe
// the migration.
func Run(state *model.GameState, cfg *gamedata.GameConfig) (*model.GameState, Report) {
	st := state.Clone()
	report := Report{InstanceID: st.InstanceID}

	st.ConfigID = cfg.ConfigID
	normalizeLegacy(st)

	for _, playerID := range sortedKeys(st.Players) {
		player := st.Players[playerID]
		removeUnknownSlots(cfg, player, &report)
		orphanUnknownGearDefs(cfg, player, &report)
		unequipMismatchedPatterns(cfg, player, &report)
		warnOrphanedClasses(cfg, player, &report)
		repairEquipLinks(player, &report)
	}

	if len(report.Warnings) > 0 {
		st.Bump()
	}
	return st, report
}

// normalizeLegacy fills fields absent from old snapshot generations with
// empty defaults.
func normalizeLegacy(st *model.GameState) {
	if st.Actors == nil {
		st.Actors = make(map[string]*model.Actor)
	}
	if st.Players == nil {
		st.Players = make(map[string]*model.Player)
	}
	if st.TxCache == nil {
		st.TxCache = model.NewTxCache(0)
	}
	for _, player := range st.Players {
		if player.Characters == nil {
			player.Characters = make(map[string]*model.Character)
		}
		if player.Gear == nil {
			player.Gear = make(map[string]*model.Gear)
		}
		if player.Resources == nil {
			player.Resources = make(map[string]int64)
		}
		for _, char := range player.Characters {
			if char.Equipped == nil {
				char.Equipped = make(map[string]string)
			}
			if char.Resources == nil {
				char.Resources = make(map[string]int64)
			}
		}
	}
}

func removeUnknownSlots(cfg *gamedata.GameConfig, player *model.Player, report *Report) {
	for _, charID := range sortedKeys(player.Characters) {
		char := player.Characters[charID]
		for _, slot := range sortedKeys(char.Equipped) {
			if cfg.HasSlot(slot) {
				continue
			}
			delete(char.Equipped, slot)
			report.Warnings = append(report.Warnings, Warning{
				Code:        WarnSlotRemoved,
				PlayerID:    player.ID,
				CharacterID: charID,
				Slot:        slot,
				Detail:      fmt.Sprintf("slot %q is not in the active config", slot),
			})
		}
	}
}

func orphanUnknownGearDefs(cfg *gamedata.GameConfig, player *model.Player, report *Report) {
	for _, gearID := range sortedKeys(player.Gear) {
		gear := player.Gear[gearID]
		if _, ok := cfg.GearDefs[gear.GearDefID]; ok {
			continue
		}
		if gear.EquippedBy != "" {
			if char, ok := player.Characters[gear.EquippedBy]; ok {
				for _, slot := range char.SlotsHolding(gearID) {
					delete(char.Equipped, slot)
				}
			}
			gear.EquippedBy = ""
		}
		report.Warnings = append(report.Warnings, Warning{
			Code:     WarnGearDefOrphaned,
			PlayerID: player.ID,
			GearID:   gearID,
			Detail:   fmt.Sprintf("gearDef %q is not in the active config", gear.GearDefID),
		})
	}
}

// unequipMismatchedPatterns unequips gear whose occupied slots no longer
// match any equip pattern. The comparison is order-insensitive: a snapshot
// map has no slot order to preserve.
func unequipMismatchedPatterns(cfg *gamedata.GameConfig, player *model.Player, report *Report) {
	for _, charID := range sortedKeys(player.Characters) {
		char := player.Characters[charID]
		for _, gearID := range distinctGear(char) {
			gear, ok := player.Gear[gearID]
			if !ok {
				continue // handled by repairEquipLinks
			}
			def, ok := cfg.GearDefs[gear.GearDefID]
			if !ok {
				continue
			}
			occupied := char.SlotsHolding(gearID)
			if matchesAnyPattern(occupied, def.EquipPatterns) {
				continue
			}
			for _, slot := range occupied {
				delete(char.Equipped, slot)
			}
			gear.EquippedBy = ""
			report.Warnings = append(report.Warnings, Warning{
				Code:        WarnEquipPatternMismatch,
				PlayerID:    player.ID,
				CharacterID: charID,
				GearID:      gearID,
				Detail:      fmt.Sprintf("occupied slots %v match no equip pattern of %q", occupied, gear.GearDefID),
			})
		}
	}
}

func warnOrphanedClasses(cfg *gamedata.GameConfig, player *model.Player, report *Report) {
	for _, charID := range sortedKeys(player.Characters) {
		char := player.Characters[charID]
		if _, ok := cfg.Classes[char.ClassID]; ok {
			continue
		}
		report.Warnings = append(report.Warnings, Warning{
			Code:        WarnClassOrphaned,
			PlayerID:    player.ID,
			CharacterID: charID,
			Detail:      fmt.Sprintf("class %q is not in the active config", char.ClassID),
		})
	}
}

// repairEquipLinks restores the bidirectional equip invariant in both
// directions: slots pointing at missing or disagreeing gear are cleared, and
// gear claiming a character that does not point back is unequipped.
func repairEquipLinks(player *model.Player, report *Report) {
	for _, charID := range sortedKeys(player.Characters) {
		char := player.Characters[charID]
		for _, slot := range sortedKeys(char.Equipped) {
			gearID := char.Equipped[slot]
			gear, ok := player.Gear[gearID]
			if ok && gear.EquippedBy == charID {
				continue
			}
			delete(char.Equipped, slot)
			report.Warnings = append(report.Warnings, Warning{
				Code:        WarnEquipLinkBroken,
				PlayerID:    player.ID,
				CharacterID: charID,
				GearID:      gearID,
				Slot:        slot,
				Detail:      "slot references gear that does not point back",
			})
		}
	}
	for _, gearID := range sortedKeys(player.Gear) {
		gear := player.Gear[gearID]
		if gear.EquippedBy == "" {
			continue
		}
		char, ok := player.Characters[gear.EquippedBy]
		if ok && len(char.SlotsHolding(gearID)) > 0 {
			continue
		}
		report.Warnings = append(report.Warnings, Warning{
			Code:     WarnEquipLinkBroken,
			PlayerID: player.ID,
			GearID:   gearID,
			Detail:   fmt.Sprintf("gear claims character %q which does not reference it", gear.EquippedBy),
		})
		gear.EquippedBy = ""
	}
}

// matchesAnyPattern compares the occupied slot multiset against each
// pattern, ignoring order.
func matchesAnyPattern(occupied []string, patterns [][]string) bool {
	a := append([]string(nil), occupied...)
	sort.Strings(a)
	for _, pattern := range patterns {
		if len(pattern) != len(a) {
			continue
		}
		b := append([]string(nil), pattern...)
		sort.Strings(b)
		equal := true
		for i := range a {
			if a[i] != b[i] {
				equal = false
				break
			}
		}
		if equal {
			return true
		}
	}
	return false
}

func distinctGear(char *model.Character) []string {
	seen := make(map[string]bool)
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

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
