package tx

// Error codes, stable across versions. Transport-level codes travel in
// non-200 bodies; domain codes travel in 200 envelopes with accepted=false.
const (
	CodeInstanceNotFound = "INSTANCE_NOT_FOUND"
	CodeInstanceMismatch = "INSTANCE_MISMATCH"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeConfigNotFound   = "CONFIG_NOT_FOUND"
	CodeInvalidRequest   = "INVALID_REQUEST"

	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeDuplicateAPIKey        = "DUPLICATE_API_KEY"
	CodePlayerNotFound         = "PLAYER_NOT_FOUND"
	CodeCharacterNotFound      = "CHARACTER_NOT_FOUND"
	CodeGearNotFound           = "GEAR_NOT_FOUND"
	CodeGearAlreadyEquipped    = "GEAR_ALREADY_EQUIPPED"
	CodeGearNotEquipped        = "GEAR_NOT_EQUIPPED"
	CodeCharacterMismatch      = "CHARACTER_MISMATCH"
	CodeOwnershipViolation     = "OWNERSHIP_VIOLATION"
	CodeInvalidConfigReference = "INVALID_CONFIG_REFERENCE"
	CodeInvalidSlot            = "INVALID_SLOT"
	CodeSlotIncompatible       = "SLOT_INCOMPATIBLE"
	CodeSlotOccupied           = "SLOT_OCCUPIED"
	CodeRestrictionFailed      = "RESTRICTION_FAILED"
	CodeMaxLevelReached        = "MAX_LEVEL_REACHED"
	CodeInsufficientResources  = "INSUFFICIENT_RESOURCES"
	CodeUnsupportedTxType      = "UNSUPPORTED_TX_TYPE"
)

// rejection is a domain precondition failure. State is untouched when a
// handler returns one.
type rejection struct {
	code string
	msg  string
}

func reject(code, msg string) *rejection {
	return &rejection{code: code, msg: msg}
}
