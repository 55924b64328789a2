// Package tx implements the transaction processor: authorization, per-type
// validation, atomic mutation and response caching for one GameState.
//
// The caller (the world registry) serializes calls per instance; nothing in
// this package blocks or performs I/O.
package tx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmarve/statekeeper/internal/gamedata"
	"github.com/dmarve/statekeeper/internal/model"
)

// Processor dispatches transactions against game states. It is stateless
// apart from the immutable config and admin key, so one processor serves
// every instance.
type Processor struct {
	cfg      *gamedata.GameConfig
	adminKey string
}

// New returns a processor bound to the active config. An empty adminKey
// disables all admin operations.
func New(cfg *gamedata.GameConfig, adminKey string) *Processor {
	return &Processor{cfg: cfg, adminKey: adminKey}
}

type handler func(p *Processor, st *model.GameState, req *Request) *rejection

// handlers maps each transaction type to its variant logic. Admin types are
// authorized separately in Process.
var handlers = map[string]handler{
	TypeCreateActor:             (*Processor).createActor,
	TypeGrantResources:          (*Processor).grantResources,
	TypeGrantCharacterResources: (*Processor).grantCharacterResources,
	TypeCreateCharacter:         (*Processor).createCharacter,
	TypeCreateGear:              (*Processor).createGear,
	TypeLevelUpCharacter:        (*Processor).levelUpCharacter,
	TypeLevelUpGear:             (*Processor).levelUpGear,
	TypeEquipGear:               (*Processor).equipGear,
	TypeUnequipGear:             (*Processor).unequipGear,
}

func isAdminType(txType string) bool {
	switch txType {
	case TypeCreateActor, TypeGrantResources, TypeGrantCharacterResources:
		return true
	}
	return false
}

// Process runs one transaction against st. Every produced response is
// recorded in the idempotency cache under its txId except replays; the
// instance-not-found 404 never reaches this method (there is no state to
// cache it in).
func (p *Processor) Process(st *model.GameState, token string, raw []byte) Result {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		// txId is unknown for an unparseable body, so nothing to cache.
		return ErrorResult(http.StatusBadRequest, CodeInvalidRequest, "malformed transaction body")
	}

	if req.GameInstanceID != st.InstanceID {
		return p.record(st, req.TxID, ErrorResult(http.StatusBadRequest, CodeInstanceMismatch,
			fmt.Sprintf("body targets instance %q", req.GameInstanceID)))
	}

	if cached, ok := st.TxCache.Lookup(req.TxID); ok {
		return Result{StatusCode: cached.StatusCode, Body: cached.Body, Replay: true}
	}

	return p.record(st, req.TxID, p.dispatch(st, token, &req))
}

func (p *Processor) dispatch(st *model.GameState, token string, req *Request) Result {
	if isAdminType(req.Type) {
		if p.adminKey == "" || token != p.adminKey {
			return ErrorResult(http.StatusUnauthorized, CodeUnauthorized, "admin operations require the admin api key")
		}
		rej := handlers[req.Type](p, st, req)
		return envelopeResult(req.TxID, st.StateVersion, rej)
	}

	actor := st.ActorByKey(token)
	if actor == nil {
		return ErrorResult(http.StatusUnauthorized, CodeUnauthorized, "unknown api key")
	}

	// CreatePlayer only requires authentication; the new player is linked to
	// the calling actor.
	if req.Type == TypeCreatePlayer {
		rej := p.createPlayerFor(st, actor, req)
		return envelopeResult(req.TxID, st.StateVersion, rej)
	}

	h, ok := handlers[req.Type]
	if !ok {
		return envelopeResult(req.TxID, st.StateVersion,
			reject(CodeUnsupportedTxType, fmt.Sprintf("unsupported transaction type %q", req.Type)))
	}

	if !actor.OwnsPlayer(req.PlayerID) {
		return envelopeResult(req.TxID, st.StateVersion,
			reject(CodeOwnershipViolation, fmt.Sprintf("actor %q does not own player %q", actor.ID, req.PlayerID)))
	}

	rej := h(p, st, req)
	return envelopeResult(req.TxID, st.StateVersion, rej)
}

func (p *Processor) record(st *model.GameState, txID string, res Result) Result {
	st.TxCache.Record(txID, res.StatusCode, res.Body)
	return res
}

func (p *Processor) player(st *model.GameState, playerID string) (*model.Player, *rejection) {
	player, ok := st.Players[playerID]
	if !ok {
		return nil, reject(CodePlayerNotFound, fmt.Sprintf("player %q not found", playerID))
	}
	return player, nil
}
