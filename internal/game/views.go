package game

import (
	"landlords.game/internal/game/model"
	"landlords.game/internal/protocol"
)

// PlayerView is the read-model row for one principal.
type PlayerView struct {
	Principal         model.Principal `json:"principal"`
	Registered        bool            `json:"registered"`
	Balance           int64           `json:"balance"`
	PropertyCount     int             `json:"property_count"`
	CooldownRemaining int64           `json:"cooldown_remaining"`
	LockRemaining     int64           `json:"lock_remaining"`
}

func (g *Game) Player(p model.Principal) PlayerView {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.cfg.Clock()
	return PlayerView{
		Principal:         p,
		Registered:        g.players.IsRegistered(p),
		Balance:           g.ledger.BalanceOf(p),
		PropertyCount:     g.players.PropertyCount(p),
		CooldownRemaining: g.players.CooldownRemaining(p, now),
		LockRemaining:     g.players.LockRemaining(p, now),
	}
}

func (g *Game) BalanceOf(p model.Principal) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ledger.BalanceOf(p)
}

func (g *Game) Supply() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ledger.Supply()
}

func (g *Game) IsRegistered(p model.Principal) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players.IsRegistered(p)
}

func (g *Game) PropertyCount(p model.Principal) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players.PropertyCount(p)
}

func (g *Game) CooldownRemaining(p model.Principal) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players.CooldownRemaining(p, g.cfg.Clock())
}

func (g *Game) LockRemaining(p model.Principal) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players.LockRemaining(p, g.cfg.Clock())
}

func (g *Game) Property(id uint64) (model.Property, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deeds.Get(id)
}

func (g *Game) OwnerOf(id uint64) (model.Principal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deeds.OwnerOf(id)
}

func (g *Game) Properties() []model.Property {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deeds.List()
}

func (g *Game) Offers() []model.Offer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.trades.List()
}

// Bank reports the bank authority principal.
func (g *Game) Bank() model.Principal { return g.cfg.Bank }

// Params reports the wire-level game parameters.
func (g *Game) Params() protocol.GameParams {
	return protocol.GameParams{
		CooldownSeconds: int(g.cfg.CooldownSeconds),
		LockSeconds:     int(g.cfg.LockSeconds),
		MaxProperties:   g.cfg.MaxProperties,
		InitialBalance:  g.cfg.InitialBalance,
		BankPrincipal:   string(g.cfg.Bank),
	}
}

// EventCursor reports the cursor of the newest committed event.
func (g *Game) EventCursor() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return uint64(len(g.events))
}

// EventsSince returns up to limit events with cursors strictly greater than
// since, plus the cursor to resume from.
func (g *Game) EventsSince(since uint64, limit int) ([]protocol.EventBatchItem, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	total := uint64(len(g.events))
	if since >= total {
		return nil, total
	}
	end := since + uint64(limit)
	if end > total {
		end = total
	}
	out := make([]protocol.EventBatchItem, 0, end-since)
	for c := since + 1; c <= end; c++ {
		out = append(out, protocol.EventBatchItem{Cursor: c, Event: g.events[c-1]})
	}
	return out, end
}
