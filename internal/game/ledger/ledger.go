// Package ledger is the fungible balance store for the in-game currency.
// Amounts are int64 in the smallest currency unit. Authorization is
// two-tier: the bank owner, or the single designated orchestrator.
package ledger

import (
	"landlords.game/internal/game/model"
	"landlords.game/internal/protocol"
)

type Ledger struct {
	owner        model.Principal
	orchestrator model.Principal
	grant        int64

	balances   map[model.Principal]int64
	registered map[model.Principal]bool
	supply     int64

	emit func(protocol.Event)
}

// New creates an empty ledger owned by owner. grant is the fixed amount
// minted to a player on registration. emit may be nil.
func New(owner model.Principal, grant int64, emit func(protocol.Event)) *Ledger {
	if emit == nil {
		emit = func(protocol.Event) {}
	}
	return &Ledger{
		owner:      owner,
		grant:      grant,
		balances:   make(map[model.Principal]int64),
		registered: make(map[model.Principal]bool),
		emit:       emit,
	}
}

func (l *Ledger) privileged(caller model.Principal) bool {
	return caller == l.owner || (l.orchestrator != model.Zero && caller == l.orchestrator)
}

// SetOrchestrator designates the single privileged mutator. Owner-only.
func (l *Ledger) SetOrchestrator(caller, p model.Principal) error {
	if caller != l.owner {
		return model.Rejectf(protocol.ErrNotAuthorized, "only the owner may set the orchestrator")
	}
	if p == model.Zero {
		return model.Rejectf(protocol.ErrZeroPrincipal, "orchestrator cannot be the zero principal")
	}
	prev := l.orchestrator
	l.orchestrator = p
	l.emit(protocol.Event{"type": "ORCHESTRATOR_UPDATED", "prev": string(prev), "next": string(p)})
	return nil
}

func (l *Ledger) Orchestrator() model.Principal { return l.orchestrator }

// Mint increases to's balance and the total supply. Owner or orchestrator only.
func (l *Ledger) Mint(caller, to model.Principal, amount int64) error {
	if !l.privileged(caller) {
		return model.Rejectf(protocol.ErrNotAuthorized, "mint requires owner or orchestrator")
	}
	if to == model.Zero {
		return model.Rejectf(protocol.ErrZeroPrincipal, "cannot mint to the zero principal")
	}
	if amount < 0 {
		return model.Rejectf(protocol.ErrBadRequest, "negative mint amount")
	}
	l.balances[to] += amount
	l.supply += amount
	l.emit(protocol.Event{"type": "TOKENS_MINTED", "to": string(to), "amount": amount})
	return nil
}

// Burn destroys amount from the caller's own balance.
func (l *Ledger) Burn(caller model.Principal, amount int64) error {
	if amount < 0 {
		return model.Rejectf(protocol.ErrBadRequest, "negative burn amount")
	}
	if l.balances[caller] < amount {
		return model.Rejectf(protocol.ErrInsufficientBalance, "burn %d exceeds balance %d", amount, l.balances[caller])
	}
	l.balances[caller] -= amount
	l.supply -= amount
	l.emit(protocol.Event{"type": "TOKENS_BURNED", "from": string(caller), "amount": amount})
	return nil
}

// Transfer moves amount from from to to. The caller must be from itself or
// a privileged principal acting on its behalf.
func (l *Ledger) Transfer(caller, from, to model.Principal, amount int64) error {
	if caller != from && !l.privileged(caller) {
		return model.Rejectf(protocol.ErrNotAuthorized, "transfer on behalf of another requires owner or orchestrator")
	}
	if to == model.Zero {
		return model.Rejectf(protocol.ErrZeroPrincipal, "cannot transfer to the zero principal")
	}
	if amount < 0 {
		return model.Rejectf(protocol.ErrBadRequest, "negative transfer amount")
	}
	if l.balances[from] < amount {
		return model.Rejectf(protocol.ErrInsufficientBalance, "transfer %d exceeds balance %d", amount, l.balances[from])
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	l.emit(protocol.Event{"type": "TOKENS_TRANSFERRED", "from": string(from), "to": string(to), "amount": amount})
	return nil
}

// RegisterPlayer marks p registered and mints the initial grant.
// Owner or orchestrator only.
func (l *Ledger) RegisterPlayer(caller, p model.Principal) error {
	if !l.privileged(caller) {
		return model.Rejectf(protocol.ErrNotAuthorized, "registration requires owner or orchestrator")
	}
	if p == model.Zero {
		return model.Rejectf(protocol.ErrZeroPrincipal, "cannot register the zero principal")
	}
	if l.registered[p] {
		return model.Rejectf(protocol.ErrAlreadyRegistered, "player %s already registered", p)
	}
	l.registered[p] = true
	l.balances[p] += l.grant
	l.supply += l.grant
	l.emit(protocol.Event{"type": "PLAYER_REGISTERED", "player": string(p), "amount": l.grant})
	return nil
}

func (l *Ledger) BalanceOf(p model.Principal) int64 { return l.balances[p] }

func (l *Ledger) IsRegistered(p model.Principal) bool { return l.registered[p] }

// Supply is total minted minus total burned.
func (l *Ledger) Supply() int64 { return l.supply }

// RestoreEntry reinstates one persisted balance row at boot. No events.
func (l *Ledger) RestoreEntry(p model.Principal, balance int64, registered bool) {
	l.balances[p] = balance
	if registered {
		l.registered[p] = true
	}
	l.supply += balance
}

// RestoreOrchestrator reinstates the persisted orchestrator at boot.
func (l *Ledger) RestoreOrchestrator(p model.Principal) { l.orchestrator = p }
