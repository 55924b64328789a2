package tx

// Transaction type identifiers.
const (
	TypeCreateActor             = "CreateActor"
	TypeGrantResources          = "GrantResources"
	TypeGrantCharacterResources = "GrantCharacterResources"
	TypeCreatePlayer            = "CreatePlayer"
	TypeCreateCharacter         = "CreateCharacter"
	TypeCreateGear              = "CreateGear"
	TypeLevelUpCharacter        = "LevelUpCharacter"
	TypeLevelUpGear             = "LevelUpGear"
	TypeEquipGear               = "EquipGear"
	TypeUnequipGear             = "UnequipGear"
)

// Request is the common transaction envelope plus the union of all
// type-specific fields. Which fields a handler reads is decided by Type;
// handlers for each variant live beside their validation in this package.
type Request struct {
	TxID           string `json:"txId"`
	Type           string `json:"type"`
	GameInstanceID string `json:"gameInstanceId"`

	ActorID string `json:"actorId,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`

	PlayerID    string `json:"playerId,omitempty"`
	CharacterID string `json:"characterId,omitempty"`
	ClassID     string `json:"classId,omitempty"`
	GearID      string `json:"gearId,omitempty"`
	GearDefID   string `json:"gearDefId,omitempty"`

	Levels    *int             `json:"levels,omitempty"`
	Resources map[string]int64 `json:"resources,omitempty"`

	SlotPattern []string `json:"slotPattern,omitempty"`
	Swap        bool     `json:"swap,omitempty"`
}

// levelDelta returns the requested number of levels, defaulting to one.
// Non-positive values behave as one so the level bounds invariant cannot be
// violated.
func (r *Request) levelDelta() int {
	if r.Levels == nil || *r.Levels <= 0 {
		return 1
	}
	return *r.Levels
}
