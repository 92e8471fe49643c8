package protocol

// Operation names carried in ACT messages. Mutations first, then reads.
const (
	OpRegister       = "REGISTER"
	OpBuyProperty    = "BUY_PROPERTY"
	OpMintProperty   = "MINT_PROPERTY"
	OpApprove        = "APPROVE"
	OpTransferTokens = "TRANSFER_TOKENS"
	OpBurnTokens     = "BURN_TOKENS"
	OpCreateOffer    = "CREATE_OFFER"
	OpAcceptOffer    = "ACCEPT_OFFER"
	OpCancelOffer    = "CANCEL_OFFER"

	OpGetPlayer      = "GET_PLAYER"
	OpGetProperty    = "GET_PROPERTY"
	OpListProperties = "LIST_PROPERTIES"
	OpListOffers     = "LIST_OFFERS"
)

// HELLO (client -> server). The principal is assumed already authenticated
// by the edge that terminates the connection; the core treats it as opaque.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Principal       string `json:"principal"`
	ClientName      string `json:"client_name,omitempty"`
	SinceCursor     uint64 `json:"since_cursor,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Principal       string     `json:"principal"`
	GameParams      GameParams `json:"game_params"`
	EventCursor     uint64     `json:"event_cursor"`
}

type GameParams struct {
	CooldownSeconds int    `json:"cooldown_seconds"`
	LockSeconds     int    `json:"lock_seconds"`
	MaxProperties   int    `json:"max_properties"`
	InitialBalance  int64  `json:"initial_balance"`
	BankPrincipal   string `json:"bank_principal"`
}

// ACT (client -> server): one operation per message. Fields beyond Op are
// read per operation; unused ones are ignored.
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	Op              string `json:"op"`

	To         string `json:"to,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	PropertyID uint64 `json:"property_id,omitempty"`
	Price      int64  `json:"price,omitempty"`
	OfferID    uint64 `json:"offer_id,omitempty"`

	// MINT_PROPERTY only.
	Name        string `json:"name,omitempty"`
	Category    string `json:"category,omitempty"`
	Value       int64  `json:"value,omitempty"`
	Rent        int64  `json:"rent,omitempty"`
	MetadataRef string `json:"metadata_ref,omitempty"`

	// GET_PLAYER only (defaults to the caller).
	Principal string `json:"principal,omitempty"`
}

// RESULT (server -> client): outcome of one ACT.
type ResultMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ReqID           string      `json:"req_id"`
	Ok              bool        `json:"ok"`
	Code            string      `json:"code,omitempty"`
	Message         string      `json:"message,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// EVENT (server -> client): pushed for every committed domain mutation.
type EventMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Cursor          uint64 `json:"cursor"`
	Event           Event  `json:"event"`
}

type Event map[string]interface{}

// EVENT_BATCH_REQ (client -> server)
type EventBatchReqMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	SinceCursor     uint64 `json:"since_cursor"`
	Limit           int    `json:"limit"`
}

type EventBatchItem struct {
	Cursor uint64 `json:"cursor"`
	Event  Event  `json:"event"`
}

// EVENT_BATCH (server -> client)
type EventBatchMsg struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	ReqID           string           `json:"req_id"`
	Events          []EventBatchItem `json:"events"`
	NextCursor      uint64           `json:"next_cursor"`
}
