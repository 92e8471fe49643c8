// Package players tracks per-principal registration, property counts and
// the two anti-abuse timers. Cooldown throttles consecutive bank purchases;
// lock keeps a just-acquired property out of trade. Both are derived from
// stored timestamps and the caller-supplied current time, never stored as
// booleans.
package players

import (
	"landlords.game/internal/game/model"
	"landlords.game/internal/protocol"
)

type Limits struct {
	CooldownSeconds int64
	LockSeconds     int64
	MaxProperties   int
}

type Registry struct {
	limits Limits
	byID   map[model.Principal]*model.Player
}

func New(limits Limits) *Registry {
	return &Registry{
		limits: limits,
		byID:   make(map[model.Principal]*model.Player),
	}
}

func (r *Registry) Limits() Limits { return r.limits }

// Register marks p registered. Registration is set once, never unset.
func (r *Registry) Register(p model.Principal) error {
	if p == model.Zero {
		return model.Rejectf(protocol.ErrZeroPrincipal, "cannot register the zero principal")
	}
	if pl := r.byID[p]; pl != nil && pl.Registered {
		return model.Rejectf(protocol.ErrAlreadyRegistered, "player %s already registered", p)
	}
	r.byID[p] = &model.Player{Registered: true}
	return nil
}

func (r *Registry) IsRegistered(p model.Principal) bool {
	pl := r.byID[p]
	return pl != nil && pl.Registered
}

// RecordPurchase stamps the timers and increments the property count.
// Fails before mutating when the count is already at the limit.
func (r *Registry) RecordPurchase(p model.Principal, now int64) error {
	pl := r.byID[p]
	if pl == nil || !pl.Registered {
		return model.Rejectf(protocol.ErrNotRegistered, "player %s not registered", p)
	}
	if pl.PropertyCount >= r.limits.MaxProperties {
		return model.Rejectf(protocol.ErrMaxProperties, "player %s already holds %d properties", p, pl.PropertyCount)
	}
	pl.LastActionAt = now
	pl.LockedUntil = now + r.limits.LockSeconds
	pl.PropertyCount++
	return nil
}

// RecordPropertyGain increments the count without touching the timers
// (property received in a trade).
func (r *Registry) RecordPropertyGain(p model.Principal) error {
	pl := r.byID[p]
	if pl == nil || !pl.Registered {
		return model.Rejectf(protocol.ErrNotRegistered, "player %s not registered", p)
	}
	if pl.PropertyCount >= r.limits.MaxProperties {
		return model.Rejectf(protocol.ErrMaxProperties, "player %s already holds %d properties", p, pl.PropertyCount)
	}
	pl.PropertyCount++
	return nil
}

// RecordPropertyLeave decrements the count (property traded away).
func (r *Registry) RecordPropertyLeave(p model.Principal) {
	pl := r.byID[p]
	if pl == nil || pl.PropertyCount == 0 {
		return
	}
	pl.PropertyCount--
}

func (r *Registry) PropertyCount(p model.Principal) int {
	pl := r.byID[p]
	if pl == nil {
		return 0
	}
	return pl.PropertyCount
}

// CooldownRemaining reports seconds until the next bank purchase is allowed.
func (r *Registry) CooldownRemaining(p model.Principal, now int64) int64 {
	pl := r.byID[p]
	if pl == nil || pl.LastActionAt == 0 {
		return 0
	}
	rem := pl.LastActionAt + r.limits.CooldownSeconds - now
	if rem < 0 {
		return 0
	}
	return rem
}

// LockRemaining reports seconds until owned properties may be offered.
func (r *Registry) LockRemaining(p model.Principal, now int64) int64 {
	pl := r.byID[p]
	if pl == nil {
		return 0
	}
	rem := pl.LockedUntil - now
	if rem < 0 {
		return 0
	}
	return rem
}

// Get returns a copy of the player record and whether it exists.
func (r *Registry) Get(p model.Principal) (model.Player, bool) {
	pl := r.byID[p]
	if pl == nil {
		return model.Player{}, false
	}
	return *pl, true
}

// Restore reinstates one persisted player row at boot.
func (r *Registry) Restore(p model.Principal, pl model.Player) {
	cp := pl
	r.byID[p] = &cp
}
