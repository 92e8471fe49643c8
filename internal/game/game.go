// Package game composes the token ledger, property registry, player registry
// and trade book into the externally visible game operations. Every operation
// runs under one mutex: the whole economy is a single shared mutable domain
// and compound operations must never interleave (transfer-then-transfer,
// mint-then-record). Each operation validates fully before mutating anything,
// so a rejection never leaves partial state behind.
package game

import (
	"io"
	"log"
	"sync"
	"time"

	"landlords.game/internal/game/deeds"
	"landlords.game/internal/game/ledger"
	"landlords.game/internal/game/model"
	"landlords.game/internal/game/players"
	"landlords.game/internal/game/trades"
	"landlords.game/internal/protocol"
)

// Orchestrator is the principal under which the game itself performs
// privileged ledger and registry mutations on behalf of players.
const Orchestrator model.Principal = "GAME"

// Store receives committed rows after each successful mutation. It is a
// write-through secondary copy of the in-memory state; a store error is
// logged and does not fail the operation.
type Store interface {
	SaveAccount(p model.Principal, balance int64, registered bool) error
	SavePlayer(p model.Principal, pl model.Player) error
	SaveProperty(p model.Property) error
	SaveOffer(o model.Offer) error
}

type Config struct {
	Bank            model.Principal
	InitialBalance  int64
	CooldownSeconds int64
	LockSeconds     int64
	MaxProperties   int

	// Clock supplies the current unix time; defaults to time.Now.
	Clock func() int64
	// Store may be nil (volatile game).
	Store Store
	// Sink receives every committed event after it is assigned a cursor.
	Sink   func(cursor uint64, ev protocol.Event)
	Logger *log.Logger
}

type Game struct {
	mu sync.Mutex

	cfg     Config
	ledger  *ledger.Ledger
	deeds   *deeds.Registry
	players *players.Registry
	trades  *trades.Book

	events []protocol.Event // cursor n is events[n-1]

	// staged collects subsystem events during one operation; they are
	// flushed to the log on commit and dropped on rejection.
	staged []protocol.Event
}

func New(cfg Config) *Game {
	if cfg.Clock == nil {
		cfg.Clock = func() int64 { return time.Now().Unix() }
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	g := &Game{cfg: cfg}
	g.ledger = ledger.New(cfg.Bank, cfg.InitialBalance, g.stage)
	g.deeds = deeds.New(cfg.Bank, g.stage)
	g.players = players.New(players.Limits{
		CooldownSeconds: cfg.CooldownSeconds,
		LockSeconds:     cfg.LockSeconds,
		MaxProperties:   cfg.MaxProperties,
	})
	g.trades = trades.New()

	// The game designates itself as the single orchestrator; the ledger
	// keeps enforcing the check so any other trusted caller stays safe.
	if err := g.ledger.SetOrchestrator(cfg.Bank, Orchestrator); err != nil {
		cfg.Logger.Printf("set orchestrator: %v", err)
	}
	g.staged = nil // boot wiring is not part of the event stream
	return g
}

func (g *Game) stage(ev protocol.Event) { g.staged = append(g.staged, ev) }

// commit timestamps and publishes all staged events plus the given
// top-level event, in order.
func (g *Game) commit(now int64, ev protocol.Event) {
	for _, e := range g.staged {
		g.publish(now, e)
	}
	g.staged = nil
	if ev != nil {
		g.publish(now, ev)
	}
}

func (g *Game) rollbackStaged() { g.staged = nil }

func (g *Game) publish(now int64, ev protocol.Event) {
	ev["t"] = now
	g.events = append(g.events, ev)
	cursor := uint64(len(g.events))
	if g.cfg.Sink != nil {
		g.cfg.Sink(cursor, ev)
	}
}

func (g *Game) persistAccount(p model.Principal) {
	if g.cfg.Store == nil {
		return
	}
	if err := g.cfg.Store.SaveAccount(p, g.ledger.BalanceOf(p), g.ledger.IsRegistered(p)); err != nil {
		g.cfg.Logger.Printf("store: save account %s: %v", p, err)
	}
}

func (g *Game) persistPlayer(p model.Principal) {
	if g.cfg.Store == nil {
		return
	}
	if pl, ok := g.players.Get(p); ok {
		if err := g.cfg.Store.SavePlayer(p, pl); err != nil {
			g.cfg.Logger.Printf("store: save player %s: %v", p, err)
		}
	}
}

func (g *Game) persistProperty(id uint64) {
	if g.cfg.Store == nil {
		return
	}
	p, err := g.deeds.Get(id)
	if err != nil {
		return
	}
	if err := g.cfg.Store.SaveProperty(p); err != nil {
		g.cfg.Logger.Printf("store: save property %d: %v", id, err)
	}
}

func (g *Game) persistOffer(o model.Offer) {
	if g.cfg.Store == nil {
		return
	}
	if err := g.cfg.Store.SaveOffer(o); err != nil {
		g.cfg.Logger.Printf("store: save offer %d: %v", o.ID, err)
	}
}

// RegisterPlayer registers the caller and grants the initial balance.
func (g *Game) RegisterPlayer(caller model.Principal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()

	if err := g.players.Register(caller); err != nil {
		g.rollbackStaged()
		return err
	}
	if err := g.ledger.RegisterPlayer(Orchestrator, caller); err != nil {
		// Register above cannot have mutated if the ledger already knew
		// the player; keep the registries in agreement regardless.
		g.rollbackStaged()
		return err
	}
	g.commit(now, nil)
	g.persistAccount(caller)
	g.persistPlayer(caller)
	return nil
}

// MintProperty creates a new deed. Bank authority only. A property minted to
// the bank is immediately approved for the orchestrator so it can be sold.
func (g *Game) MintProperty(caller, to model.Principal, name string, cat model.Category, value, rent int64, metadataRef string) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()

	id, err := g.deeds.Mint(caller, to, name, cat, value, rent, metadataRef)
	if err != nil {
		g.rollbackStaged()
		return 0, err
	}
	if to == g.cfg.Bank {
		if err := g.deeds.Approve(g.cfg.Bank, Orchestrator, id); err != nil {
			g.cfg.Logger.Printf("approve freshly minted property %d: %v", id, err)
		}
	}
	g.commit(now, nil)
	g.persistProperty(id)
	return id, nil
}

// ApproveOrchestrator grants the game transfer rights over one property the
// caller owns. Required before the property can be placed in a trade offer.
func (g *Game) ApproveOrchestrator(caller model.Principal, propertyID uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()

	if err := g.deeds.Approve(caller, Orchestrator, propertyID); err != nil {
		g.rollbackStaged()
		return err
	}
	g.commit(now, nil)
	g.persistProperty(propertyID)
	return nil
}

// TransferTokens moves currency from the caller to another principal.
func (g *Game) TransferTokens(caller, to model.Principal, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()

	if err := g.ledger.Transfer(caller, caller, to, amount); err != nil {
		g.rollbackStaged()
		return err
	}
	g.commit(now, nil)
	g.persistAccount(caller)
	g.persistAccount(to)
	return nil
}

// BurnTokens destroys currency from the caller's own balance.
func (g *Game) BurnTokens(caller model.Principal, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()

	if err := g.ledger.Burn(caller, amount); err != nil {
		g.rollbackStaged()
		return err
	}
	g.commit(now, nil)
	g.persistAccount(caller)
	return nil
}

// BuyPropertyFromBank sells a bank-owned property to the caller for price.
// Applies the cooldown and the per-player property limit.
func (g *Game) BuyPropertyFromBank(caller model.Principal, propertyID uint64, price int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()

	if !g.players.IsRegistered(caller) {
		return model.Rejectf(protocol.ErrNotRegistered, "player %s not registered", caller)
	}
	if rem := g.players.CooldownRemaining(caller, now); rem > 0 {
		return model.Rejectf(protocol.ErrCooldownActive, "cooldown active for %ds", rem)
	}
	if g.players.PropertyCount(caller) >= g.cfg.MaxProperties {
		return model.Rejectf(protocol.ErrMaxProperties, "player %s already holds %d properties", caller, g.cfg.MaxProperties)
	}
	if price < 0 {
		return model.Rejectf(protocol.ErrBadRequest, "negative price")
	}
	if g.ledger.BalanceOf(caller) < price {
		return model.Rejectf(protocol.ErrInsufficientBalance, "price %d exceeds balance %d", price, g.ledger.BalanceOf(caller))
	}
	owner, err := g.deeds.OwnerOf(propertyID)
	if err != nil {
		return err
	}
	if owner != g.cfg.Bank {
		return model.Rejectf(protocol.ErrNotOwner, "property %d is not for sale by the bank", propertyID)
	}
	if approved, _ := g.deeds.ApprovedFor(propertyID); approved != Orchestrator {
		return model.Rejectf(protocol.ErrNotOwnerOrApproved, "property %d not released for sale", propertyID)
	}

	// All checks passed; none of the following can fail.
	if err := g.ledger.Transfer(Orchestrator, caller, g.cfg.Bank, price); err != nil {
		g.rollbackStaged()
		return err
	}
	if err := g.deeds.TransferFrom(Orchestrator, g.cfg.Bank, caller, propertyID); err != nil {
		g.rollbackStaged()
		return err
	}
	if err := g.players.RecordPurchase(caller, now); err != nil {
		g.rollbackStaged()
		return err
	}
	g.commit(now, protocol.Event{
		"type":        "PROPERTY_BOUGHT",
		"property_id": propertyID,
		"buyer":       string(caller),
		"price":       price,
	})
	g.persistAccount(caller)
	g.persistAccount(g.cfg.Bank)
	g.persistPlayer(caller)
	g.persistProperty(propertyID)
	return nil
}

// CreateTradeOffer opens an offer of one owned property to another player.
// Offer creation is exempt from the purchase cooldown but gated by the
// post-purchase lock, and requires the orchestrator to hold the transfer
// approval so the later accept cannot strand the offer.
func (g *Game) CreateTradeOffer(caller, to model.Principal, propertyID uint64, price int64) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()

	if !g.players.IsRegistered(caller) {
		return 0, model.Rejectf(protocol.ErrNotRegistered, "player %s not registered", caller)
	}
	if !g.players.IsRegistered(to) {
		return 0, model.Rejectf(protocol.ErrNotRegistered, "recipient %s not registered", to)
	}
	if rem := g.players.LockRemaining(caller, now); rem > 0 {
		return 0, model.Rejectf(protocol.ErrLockActive, "lock active for %ds", rem)
	}
	owner, err := g.deeds.OwnerOf(propertyID)
	if err != nil {
		return 0, err
	}
	if owner != caller {
		return 0, model.Rejectf(protocol.ErrNotOwner, "property %d not owned by %s", propertyID, caller)
	}
	if approved, _ := g.deeds.ApprovedFor(propertyID); approved != Orchestrator {
		return 0, model.Rejectf(protocol.ErrNotOwnerOrApproved, "approve the game for property %d before offering it", propertyID)
	}

	id, err := g.trades.Create(caller, to, propertyID, price, now)
	if err != nil {
		return 0, err
	}
	g.commit(now, protocol.Event{
		"type":        "TRADE_OFFER_CREATED",
		"offer_id":    id,
		"from":        string(caller),
		"to":          string(to),
		"property_id": propertyID,
		"price":       price,
	})
	if o, e := g.trades.GetActive(id); e == nil {
		g.persistOffer(o)
	}
	return id, nil
}

// AcceptTradeOffer executes the atomic pair: property from->to, price to->from.
// Ownership is re-validated at execution time; an offer whose property has
// moved since creation is rejected as stale and stays untouched.
func (g *Game) AcceptTradeOffer(caller model.Principal, offerID uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()

	o, err := g.trades.GetActive(offerID)
	if err != nil {
		return err
	}
	if caller != o.To {
		return model.Rejectf(protocol.ErrNotAuthorized, "offer %d is not addressed to %s", offerID, caller)
	}
	owner, err := g.deeds.OwnerOf(o.PropertyID)
	if err != nil {
		return err
	}
	if owner != o.From {
		return model.Rejectf(protocol.ErrStaleOffer, "property %d no longer owned by %s", o.PropertyID, o.From)
	}
	if rem := g.players.LockRemaining(o.From, now); rem > 0 {
		return model.Rejectf(protocol.ErrLockActive, "creator lock active for %ds", rem)
	}
	if approved, _ := g.deeds.ApprovedFor(o.PropertyID); approved != Orchestrator {
		return model.Rejectf(protocol.ErrNotOwnerOrApproved, "property %d approval was revoked", o.PropertyID)
	}
	if g.ledger.BalanceOf(caller) < o.Price {
		return model.Rejectf(protocol.ErrInsufficientBalance, "price %d exceeds balance %d", o.Price, g.ledger.BalanceOf(caller))
	}
	if g.players.PropertyCount(caller) >= g.cfg.MaxProperties {
		return model.Rejectf(protocol.ErrMaxProperties, "player %s already holds %d properties", caller, g.cfg.MaxProperties)
	}

	// All checks passed; none of the following can fail.
	if err := g.deeds.TransferFrom(Orchestrator, o.From, caller, o.PropertyID); err != nil {
		g.rollbackStaged()
		return err
	}
	if err := g.ledger.Transfer(Orchestrator, caller, o.From, o.Price); err != nil {
		g.rollbackStaged()
		return err
	}
	if err := g.trades.MarkAccepted(offerID, caller); err != nil {
		g.rollbackStaged()
		return err
	}
	g.players.RecordPropertyLeave(o.From)
	if err := g.players.RecordPropertyGain(caller); err != nil {
		g.rollbackStaged()
		return err
	}
	g.commit(now, protocol.Event{
		"type":        "TRADE_OFFER_ACCEPTED",
		"offer_id":    offerID,
		"from":        string(o.From),
		"to":          string(caller),
		"property_id": o.PropertyID,
		"price":       o.Price,
	})
	o.Active = false
	g.persistOffer(o)
	g.persistAccount(caller)
	g.persistAccount(o.From)
	g.persistPlayer(caller)
	g.persistPlayer(o.From)
	g.persistProperty(o.PropertyID)
	return nil
}

// CancelTradeOffer retires an active offer. Creator only; no asset movement.
func (g *Game) CancelTradeOffer(caller model.Principal, offerID uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()

	o, err := g.trades.GetActive(offerID)
	if err != nil {
		return err
	}
	if err := g.trades.MarkCancelled(offerID, caller); err != nil {
		return err
	}
	g.commit(now, protocol.Event{
		"type":        "TRADE_OFFER_CANCELLED",
		"offer_id":    offerID,
		"from":        string(o.From),
		"property_id": o.PropertyID,
	})
	o.Active = false
	g.persistOffer(o)
	return nil
}
