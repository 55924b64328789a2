package model

// DefaultInstanceID is created empty on startup when no snapshot exists.
const DefaultInstanceID = "instance_001"

// GameState is the authoritative record for one isolated game instance.
// All mutation goes through the transaction processor; the world registry
// serializes access per instance.
type GameState struct {
	InstanceID   string             `json:"gameInstanceId"`
	ConfigID     string             `json:"configId"`
	StateVersion uint64             `json:"stateVersion"`
	Actors       map[string]*Actor  `json:"actors"`
	Players      map[string]*Player `json:"players"`
	TxCache      *TxCache           `json:"txIdCache"`
}

// Actor is a credential holder. The apiKey is opaque to the engine: it is
// compared for equality and never parsed or hashed here.
type Actor struct {
	ID        string   `json:"actorId"`
	APIKey    string   `json:"apiKey"`
	PlayerIDs []string `json:"playerIds"`
}

// Player owns characters, gear and a resource wallet. A player belongs to
// exactly one actor (actor.PlayerIDs is the reverse pointer).
type Player struct {
	ID         string                `json:"playerId"`
	Characters map[string]*Character `json:"characters"`
	Gear       map[string]*Gear      `json:"gear"`
	Resources  map[string]int64      `json:"resources"`
}

// Character is a leveled entity with a class, equipped slots and its own
// wallet. Equipped maps slot id to the gear id occupying it; a multi-slot
// gear appears under every slot of its pattern.
type Character struct {
	ID        string            `json:"characterId"`
	ClassID   string            `json:"classId"`
	Level     int               `json:"level"`
	Equipped  map[string]string `json:"equipped"`
	Resources map[string]int64  `json:"resources"`
}

// Gear is a leveled inventory item. EquippedBy is empty while the gear sits
// in the inventory.
type Gear struct {
	ID         string `json:"gearId"`
	GearDefID  string `json:"gearDefId"`
	Level      int    `json:"level"`
	EquippedBy string `json:"equippedBy"`
}

// NewGameState returns an empty instance at version 0.
func NewGameState(instanceID, configID string, cacheLimit int) *GameState {
	return &GameState{
		InstanceID: instanceID,
		ConfigID:   configID,
		Actors:     make(map[string]*Actor),
		Players:    make(map[string]*Player),
		TxCache:    NewTxCache(cacheLimit),
	}
}

// NewPlayer returns an empty player.
func NewPlayer(id string) *Player {
	return &Player{
		ID:         id,
		Characters: make(map[string]*Character),
		Gear:       make(map[string]*Gear),
		Resources:  make(map[string]int64),
	}
}

// NewCharacter returns a level-1 character with nothing equipped.
func NewCharacter(id, classID string) *Character {
	return &Character{
		ID:        id,
		ClassID:   classID,
		Level:     1,
		Equipped:  make(map[string]string),
		Resources: make(map[string]int64),
	}
}

// NewGear returns a level-1 unequipped gear instance.
func NewGear(id, gearDefID string) *Gear {
	return &Gear{ID: id, GearDefID: gearDefID, Level: 1}
}

// Bump increments the state version. Called exactly once per accepted
// mutating transaction and once per migration that emitted warnings.
func (s *GameState) Bump() {
	s.StateVersion++
}

// ActorByKey walks the actor table and returns the actor holding the given
// apiKey, or nil. Keys are unique within an instance.
func (s *GameState) ActorByKey(apiKey string) *Actor {
	if apiKey == "" {
		return nil
	}
	for _, a := range s.Actors {
		if a.APIKey == apiKey {
			return a
		}
	}
	return nil
}

// OwnsPlayer reports whether the actor's owned list contains playerID.
func (a *Actor) OwnsPlayer(playerID string) bool {
	for _, id := range a.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// FindCharacter locates a character by id across all players.
func (s *GameState) FindCharacter(characterID string) (*Player, *Character) {
	for _, p := range s.Players {
		if c, ok := p.Characters[characterID]; ok {
			return p, c
		}
	}
	return nil, nil
}

// SlotsHolding returns the slots on c currently mapped to gearID.
func (c *Character) SlotsHolding(gearID string) []string {
	var slots []string
	for slot, gid := range c.Equipped {
		if gid == gearID {
			slots = append(slots, slot)
		}
	}
	return slots
}

// MergeResources applies a signed delta to a wallet key-wise. Wallets never
// go negative: a drain below zero clamps the balance at zero.
func MergeResources(wallet map[string]int64, delta map[string]int64) {
	for key, amount := range delta {
		next := wallet[key] + amount
		if next < 0 {
			next = 0
		}
		wallet[key] = next
	}
}

// Clone returns a deep copy of the state. The migrator mutates the copy so
// a failed migration cannot corrupt the decoded snapshot.
func (s *GameState) Clone() *GameState {
	out := &GameState{
		InstanceID:   s.InstanceID,
		ConfigID:     s.ConfigID,
		StateVersion: s.StateVersion,
		Actors:       make(map[string]*Actor, len(s.Actors)),
		Players:      make(map[string]*Player, len(s.Players)),
		TxCache:      s.TxCache.Clone(),
	}
	for id, a := range s.Actors {
		out.Actors[id] = &Actor{
			ID:        a.ID,
			APIKey:    a.APIKey,
			PlayerIDs: append([]string(nil), a.PlayerIDs...),
		}
	}
	for id, p := range s.Players {
		out.Players[id] = p.Clone()
	}
	return out
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	out := &Player{
		ID:         p.ID,
		Characters: make(map[string]*Character, len(p.Characters)),
		Gear:       make(map[string]*Gear, len(p.Gear)),
		Resources:  cloneWallet(p.Resources),
	}
	for id, c := range p.Characters {
		cc := &Character{
			ID:        c.ID,
			ClassID:   c.ClassID,
			Level:     c.Level,
			Equipped:  make(map[string]string, len(c.Equipped)),
			Resources: cloneWallet(c.Resources),
		}
		for slot, gid := range c.Equipped {
			cc.Equipped[slot] = gid
		}
		out.Characters[id] = cc
	}
	for id, g := range p.Gear {
		gg := *g
		out.Gear[id] = &gg
	}
	return out
}

func cloneWallet(w map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
