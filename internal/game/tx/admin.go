package tx

import (
	"fmt"

	"github.com/dmarve/statekeeper/internal/model"
)

func (p *Processor) createActor(st *model.GameState, req *Request) *rejection {
	if _, ok := st.Actors[req.ActorID]; ok {
		return reject(CodeAlreadyExists, fmt.Sprintf("actor %q already exists", req.ActorID))
	}
	if st.ActorByKey(req.APIKey) != nil {
		return reject(CodeDuplicateAPIKey, "apiKey is already held by another actor")
	}
	st.Actors[req.ActorID] = &model.Actor{
		ID:        req.ActorID,
		APIKey:    req.APIKey,
		PlayerIDs: []string{},
	}
	st.Bump()
	return nil
}

// grantResources merges a signed delta into the player wallet. Negative
// amounts drain; balances clamp at zero.
func (p *Processor) grantResources(st *model.GameState, req *Request) *rejection {
	player, rej := p.player(st, req.PlayerID)
	if rej != nil {
		return rej
	}
	model.MergeResources(player.Resources, req.Resources)
	st.Bump()
	return nil
}

func (p *Processor) grantCharacterResources(st *model.GameState, req *Request) *rejection {
	player, rej := p.player(st, req.PlayerID)
	if rej != nil {
		return rej
	}
	char, ok := player.Characters[req.CharacterID]
	if !ok {
		return reject(CodeCharacterNotFound, fmt.Sprintf("character %q not found", req.CharacterID))
	}
	model.MergeResources(char.Resources, req.Resources)
	st.Bump()
	return nil
}
