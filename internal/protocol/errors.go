package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrInternal        = "E_INTERNAL"

	// Authorization.
	ErrNotAuthorized = "E_NOT_AUTHORIZED"
	ErrZeroPrincipal = "E_ZERO_PRINCIPAL"

	// Player registry.
	ErrAlreadyRegistered = "E_ALREADY_REGISTERED"
	ErrNotRegistered     = "E_NOT_REGISTERED"
	ErrMaxProperties     = "E_MAX_PROPERTIES"
	ErrCooldownActive    = "E_COOLDOWN_ACTIVE"
	ErrLockActive        = "E_LOCK_ACTIVE"

	// Token ledger.
	ErrInsufficientBalance = "E_INSUFFICIENT_BALANCE"

	// Property registry.
	ErrUnknownProperty    = "E_UNKNOWN_PROPERTY"
	ErrNotOwner           = "E_NOT_OWNER"
	ErrNotOwnerOrApproved = "E_NOT_OWNER_OR_APPROVED"

	// Trade offers.
	ErrSelfTrade      = "E_SELF_TRADE"
	ErrStaleOffer     = "E_STALE_OFFER"
	ErrOfferNotActive = "E_OFFER_NOT_ACTIVE"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:     {},
	ErrBadRequest:          {},
	ErrInternal:            {},
	ErrNotAuthorized:       {},
	ErrZeroPrincipal:       {},
	ErrAlreadyRegistered:   {},
	ErrNotRegistered:       {},
	ErrMaxProperties:       {},
	ErrCooldownActive:      {},
	ErrLockActive:          {},
	ErrInsufficientBalance: {},
	ErrUnknownProperty:     {},
	ErrNotOwner:            {},
	ErrNotOwnerOrApproved:  {},
	ErrSelfTrade:           {},
	ErrStaleOffer:          {},
	ErrOfferNotActive:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
