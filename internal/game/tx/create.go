package tx

import (
	"fmt"

	"github.com/dmarve/statekeeper/internal/model"
)

func (p *Processor) createPlayerFor(st *model.GameState, actor *model.Actor, req *Request) *rejection {
	if _, ok := st.Players[req.PlayerID]; ok {
		return reject(CodeAlreadyExists, fmt.Sprintf("player %q already exists", req.PlayerID))
	}
	st.Players[req.PlayerID] = model.NewPlayer(req.PlayerID)
	actor.PlayerIDs = append(actor.PlayerIDs, req.PlayerID)
	st.Bump()
	return nil
}

func (p *Processor) createCharacter(st *model.GameState, req *Request) *rejection {
	player, rej := p.player(st, req.PlayerID)
	if rej != nil {
		return rej
	}
	if _, ok := p.cfg.Classes[req.ClassID]; !ok {
		return reject(CodeInvalidConfigReference, fmt.Sprintf("class %q is not in the active config", req.ClassID))
	}
	if _, ok := player.Characters[req.CharacterID]; ok {
		return reject(CodeAlreadyExists, fmt.Sprintf("character %q already exists", req.CharacterID))
	}
	player.Characters[req.CharacterID] = model.NewCharacter(req.CharacterID, req.ClassID)
	st.Bump()
	return nil
}

func (p *Processor) createGear(st *model.GameState, req *Request) *rejection {
	player, rej := p.player(st, req.PlayerID)
	if rej != nil {
		return rej
	}
	if _, ok := p.cfg.GearDefs[req.GearDefID]; !ok {
		return reject(CodeInvalidConfigReference, fmt.Sprintf("gearDef %q is not in the active config", req.GearDefID))
	}
	if _, ok := player.Gear[req.GearID]; ok {
		return reject(CodeAlreadyExists, fmt.Sprintf("gear %q already exists", req.GearID))
	}
	player.Gear[req.GearID] = model.NewGear(req.GearID, req.GearDefID)
	st.Bump()
	return nil
}
