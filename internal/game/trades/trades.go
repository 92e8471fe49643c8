// Package trades keeps the book of peer-to-peer trade offers. An offer moves
// Created -> Accepted or Created -> Cancelled; both ends are terminal and an
// id is never reused or reactivated. Asset movement is composed by the
// orchestrator, not here.
package trades

import (
	"sort"

	"landlords.game/internal/game/model"
	"landlords.game/internal/protocol"
)

type Book struct {
	nextID uint64
	byID   map[uint64]*model.Offer
}

func New() *Book {
	return &Book{byID: make(map[uint64]*model.Offer)}
}

// Create stores a new active offer and returns its id. Ids start at 0 and
// increase monotonically.
func (b *Book) Create(from, to model.Principal, propertyID uint64, price int64, now int64) (uint64, error) {
	if from == to {
		return 0, model.Rejectf(protocol.ErrSelfTrade, "offer from %s to itself", from)
	}
	if to == model.Zero {
		return 0, model.Rejectf(protocol.ErrZeroPrincipal, "offer to the zero principal")
	}
	if price < 0 {
		return 0, model.Rejectf(protocol.ErrBadRequest, "negative offer price")
	}
	id := b.nextID
	b.nextID++
	b.byID[id] = &model.Offer{
		ID:         id,
		From:       from,
		To:         to,
		PropertyID: propertyID,
		Price:      price,
		Active:     true,
		CreatedAt:  now,
	}
	return id, nil
}

// GetActive returns a copy of the offer if it exists and is still active.
// A missing id behaves exactly like an inactive offer.
func (b *Book) GetActive(id uint64) (model.Offer, error) {
	o, ok := b.byID[id]
	if !ok || !o.Active {
		return model.Offer{}, model.Rejectf(protocol.ErrOfferNotActive, "offer %d not active", id)
	}
	return *o, nil
}

// MarkAccepted retires the offer as accepted. Only the recipient may accept.
func (b *Book) MarkAccepted(id uint64, caller model.Principal) error {
	o, ok := b.byID[id]
	if !ok || !o.Active {
		return model.Rejectf(protocol.ErrOfferNotActive, "offer %d not active", id)
	}
	if caller != o.To {
		return model.Rejectf(protocol.ErrNotAuthorized, "offer %d is not addressed to %s", id, caller)
	}
	o.Active = false
	return nil
}

// MarkCancelled retires the offer as cancelled. Only the creator may cancel.
func (b *Book) MarkCancelled(id uint64, caller model.Principal) error {
	o, ok := b.byID[id]
	if !ok || !o.Active {
		return model.Rejectf(protocol.ErrOfferNotActive, "offer %d not active", id)
	}
	if caller != o.From {
		return model.Rejectf(protocol.ErrNotAuthorized, "offer %d was not created by %s", id, caller)
	}
	o.Active = false
	return nil
}

// List returns copies of all offers ordered by id, newest last.
func (b *Book) List() []model.Offer {
	out := make([]model.Offer, 0, len(b.byID))
	for _, o := range b.byID {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NextID reports the id the next offer will use.
func (b *Book) NextID() uint64 { return b.nextID }

// Restore reinstates one persisted offer row at boot.
func (b *Book) Restore(o model.Offer) {
	cp := o
	b.byID[o.ID] = &cp
	if o.ID >= b.nextID {
		b.nextID = o.ID + 1
	}
}
