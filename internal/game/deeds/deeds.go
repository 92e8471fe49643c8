// Package deeds is the non-fungible property registry. One record per
// property id, each with exactly one owner and a single-use approval slot.
package deeds

import (
	"sort"

	"landlords.game/internal/game/model"
	"landlords.game/internal/protocol"
)

type Registry struct {
	owner  model.Principal
	nextID uint64
	byID   map[uint64]*model.Property

	emit func(protocol.Event)
}

// New creates an empty registry. owner is the bank authority allowed to
// mint. emit may be nil.
func New(owner model.Principal, emit func(protocol.Event)) *Registry {
	if emit == nil {
		emit = func(protocol.Event) {}
	}
	return &Registry{
		owner: owner,
		byID:  make(map[uint64]*model.Property),
		emit:  emit,
	}
}

// Mint creates the next property, owned by to. Bank authority only.
func (r *Registry) Mint(caller, to model.Principal, name string, cat model.Category, value, rent int64, metadataRef string) (uint64, error) {
	if caller != r.owner {
		return 0, model.Rejectf(protocol.ErrNotOwner, "mint requires the bank authority")
	}
	if to == model.Zero {
		return 0, model.Rejectf(protocol.ErrZeroPrincipal, "cannot mint to the zero principal")
	}
	id := r.nextID
	r.nextID++
	r.byID[id] = &model.Property{
		ID:          id,
		Name:        name,
		Category:    cat,
		Value:       value,
		Rent:        rent,
		MetadataRef: metadataRef,
		Owner:       to,
	}
	r.emit(protocol.Event{"type": "PROPERTY_MINTED", "property_id": id, "owner": string(to), "name": name, "category": cat.String()})
	return id, nil
}

// Approve sets the single approval slot for id, overwriting any prior
// approval. Only the current owner may call.
func (r *Registry) Approve(caller, spender model.Principal, id uint64) error {
	p, ok := r.byID[id]
	if !ok {
		return model.Rejectf(protocol.ErrUnknownProperty, "property %d not minted", id)
	}
	if caller != p.Owner {
		return model.Rejectf(protocol.ErrNotOwner, "approve requires the property owner")
	}
	p.Approved = spender
	r.emit(protocol.Event{"type": "PROPERTY_APPROVED", "property_id": id, "spender": string(spender)})
	return nil
}

// TransferFrom moves ownership of id from from to to. The caller must be
// from itself or the approved spender; the approval is consumed.
func (r *Registry) TransferFrom(caller, from, to model.Principal, id uint64) error {
	p, ok := r.byID[id]
	if !ok {
		return model.Rejectf(protocol.ErrUnknownProperty, "property %d not minted", id)
	}
	if p.Owner != from {
		return model.Rejectf(protocol.ErrNotOwnerOrApproved, "property %d not owned by %s", id, from)
	}
	if caller != from && (p.Approved == model.Zero || caller != p.Approved) {
		return model.Rejectf(protocol.ErrNotOwnerOrApproved, "caller %s neither owner nor approved for property %d", caller, id)
	}
	if to == model.Zero {
		return model.Rejectf(protocol.ErrZeroPrincipal, "cannot transfer to the zero principal")
	}
	p.Owner = to
	p.Approved = model.Zero
	r.emit(protocol.Event{"type": "PROPERTY_TRANSFERRED", "property_id": id, "from": string(from), "to": string(to)})
	return nil
}

// OwnerOf is a pure lookup.
func (r *Registry) OwnerOf(id uint64) (model.Principal, error) {
	p, ok := r.byID[id]
	if !ok {
		return model.Zero, model.Rejectf(protocol.ErrUnknownProperty, "property %d not minted", id)
	}
	return p.Owner, nil
}

// ApprovedFor reports the current approval slot for id.
func (r *Registry) ApprovedFor(id uint64) (model.Principal, error) {
	p, ok := r.byID[id]
	if !ok {
		return model.Zero, model.Rejectf(protocol.ErrUnknownProperty, "property %d not minted", id)
	}
	return p.Approved, nil
}

// Get returns a copy of the property record.
func (r *Registry) Get(id uint64) (model.Property, error) {
	p, ok := r.byID[id]
	if !ok {
		return model.Property{}, model.Rejectf(protocol.ErrUnknownProperty, "property %d not minted", id)
	}
	return *p, nil
}

// List returns copies of all properties ordered by id.
func (r *Registry) List() []model.Property {
	out := make([]model.Property, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count reports how many properties have been minted.
func (r *Registry) Count() int { return len(r.byID) }

// NextID reports the id the next mint will use.
func (r *Registry) NextID() uint64 { return r.nextID }

// Restore reinstates one persisted property row at boot. No events.
func (r *Registry) Restore(p model.Property) {
	cp := p
	r.byID[p.ID] = &cp
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
}
