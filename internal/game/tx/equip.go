package tx

import (
	"fmt"
	"slices"

	"github.com/dmarve/statekeeper/internal/model"
)

// equipGear runs the fixed ten-step equip sequence. Every step is a total
// rejection with its own code; no state changes before the commit.
func (p *Processor) equipGear(st *model.GameState, req *Request) *rejection {
	player, rej := p.player(st, req.PlayerID)
	if rej != nil {
		return rej
	}

	// 1-2: both endpoints must exist.
	char, ok := player.Characters[req.CharacterID]
	if !ok {
		return reject(CodeCharacterNotFound, fmt.Sprintf("character %q not found", req.CharacterID))
	}
	gear, ok := player.Gear[req.GearID]
	if !ok {
		return reject(CodeGearNotFound, fmt.Sprintf("gear %q not found", req.GearID))
	}

	// 3: a piece is equipped to at most one character at a time.
	if gear.EquippedBy != "" {
		return reject(CodeGearAlreadyEquipped, fmt.Sprintf("gear %q is equipped by %q", gear.ID, gear.EquippedBy))
	}

	// 4: orphaned defs cannot be equipped.
	def, ok := p.cfg.GearDefs[gear.GearDefID]
	if !ok {
		return reject(CodeInvalidConfigReference, fmt.Sprintf("gearDef %q is not in the active config", gear.GearDefID))
	}

	// 5: restrictions. An orphaned class still fails allowedClasses.
	if r := def.Restrictions; r != nil {
		if len(r.AllowedClasses) > 0 && !slices.Contains(r.AllowedClasses, char.ClassID) {
			return reject(CodeRestrictionFailed, fmt.Sprintf("class %q is not allowed to equip %q", char.ClassID, gear.GearDefID))
		}
		if slices.Contains(r.BlockedClasses, char.ClassID) {
			return reject(CodeRestrictionFailed, fmt.Sprintf("class %q is blocked from equipping %q", char.ClassID, gear.GearDefID))
		}
		if char.Level < r.RequiredCharacterLevel {
			return reject(CodeRestrictionFailed, fmt.Sprintf("requires character level %d", r.RequiredCharacterLevel))
		}
		if r.MaxLevelDelta != nil && gear.Level > char.Level+*r.MaxLevelDelta {
			return reject(CodeRestrictionFailed, fmt.Sprintf("gear level %d exceeds character level %d by more than %d", gear.Level, char.Level, *r.MaxLevelDelta))
		}
	}

	// 6: pattern resolution. Without an explicit pattern the def must have
	// exactly one.
	pattern := req.SlotPattern
	if len(pattern) == 0 {
		if len(def.EquipPatterns) != 1 {
			return reject(CodeSlotIncompatible, fmt.Sprintf("gearDef %q needs an explicit slotPattern", gear.GearDefID))
		}
		pattern = def.EquipPatterns[0]
	}

	// 7: every slot must exist in the active config.
	for _, slot := range pattern {
		if !p.cfg.HasSlot(slot) {
			return reject(CodeInvalidSlot, fmt.Sprintf("slot %q is not in the active config", slot))
		}
	}

	// 8: the pattern must match a def pattern element-wise, order included.
	matched := false
	for _, candidate := range def.EquipPatterns {
		if slices.Equal(candidate, pattern) {
			matched = true
			break
		}
	}
	if !matched {
		return reject(CodeSlotIncompatible, fmt.Sprintf("pattern %v matches no equip pattern of %q", pattern, gear.GearDefID))
	}

	// 9: conflicts. Strict mode rejects; swap mode vacates the whole pattern
	// of every displaced piece, not only the conflicting slots.
	if !req.Swap {
		for _, slot := range pattern {
			if occupant, ok := char.Equipped[slot]; ok {
				return reject(CodeSlotOccupied, fmt.Sprintf("slot %q is occupied by gear %q", slot, occupant))
			}
		}
	} else {
		displaced := make(map[string]bool)
		for _, slot := range pattern {
			if occupant, ok := char.Equipped[slot]; ok {
				displaced[occupant] = true
			}
		}
		for occupant := range displaced {
			for _, slot := range char.SlotsHolding(occupant) {
				delete(char.Equipped, slot)
			}
			if g, ok := player.Gear[occupant]; ok {
				g.EquippedBy = ""
			}
		}
	}

	// 10: commit.
	for _, slot := range pattern {
		char.Equipped[slot] = gear.ID
	}
	gear.EquippedBy = char.ID
	st.Bump()
	return nil
}

func (p *Processor) unequipGear(st *model.GameState, req *Request) *rejection {
	player, rej := p.player(st, req.PlayerID)
	if rej != nil {
		return rej
	}
	gear, ok := player.Gear[req.GearID]
	if !ok {
		return reject(CodeGearNotFound, fmt.Sprintf("gear %q not found", req.GearID))
	}
	if gear.EquippedBy == "" {
		return reject(CodeGearNotEquipped, fmt.Sprintf("gear %q is not equipped", gear.ID))
	}
	if req.CharacterID != "" && req.CharacterID != gear.EquippedBy {
		return reject(CodeCharacterMismatch, fmt.Sprintf("gear %q is equipped by %q, not %q", gear.ID, gear.EquippedBy, req.CharacterID))
	}

	if char, ok := player.Characters[gear.EquippedBy]; ok {
		for _, slot := range char.SlotsHolding(gear.ID) {
			delete(char.Equipped, slot)
		}
	}
	gear.EquippedBy = ""
	st.Bump()
	return nil
}
