package ws

import (
	"landlords.game/internal/game/model"
	"landlords.game/internal/protocol"
)

// Wire views. The internal model types never cross the socket directly.

type propertyView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Value       int64  `json:"value"`
	Rent        int64  `json:"rent"`
	MetadataRef string `json:"metadata_ref"`
	Owner       string `json:"owner"`
	Approved    string `json:"approved,omitempty"`
}

type offerView struct {
	ID         uint64 `json:"id"`
	From       string `json:"from"`
	To         string `json:"to"`
	PropertyID uint64 `json:"property_id"`
	Price      int64  `json:"price"`
	Active     bool   `json:"active"`
	CreatedAt  int64  `json:"created_at"`
}

func viewProperty(p model.Property) propertyView {
	return propertyView{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category.String(),
		Value:       p.Value,
		Rent:        p.Rent,
		MetadataRef: p.MetadataRef,
		Owner:       string(p.Owner),
		Approved:    string(p.Approved),
	}
}

func viewOffer(o model.Offer) offerView {
	return offerView{
		ID:         o.ID,
		From:       string(o.From),
		To:         string(o.To),
		PropertyID: o.PropertyID,
		Price:      o.Price,
		Active:     o.Active,
		CreatedAt:  o.CreatedAt,
	}
}

func resultOK(reqID string, data any) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		ReqID:           reqID,
		Ok:              true,
		Data:            data,
	}
}

func resultErr(reqID, code, message string) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		ReqID:           reqID,
		Code:            code,
		Message:         message,
	}
}

func resultFrom(reqID string, err error, data any) protocol.ResultMsg {
	if err == nil {
		return resultOK(reqID, data)
	}
	if r, ok := err.(*model.Reject); ok {
		return resultErr(reqID, r.Code, r.Message)
	}
	return resultErr(reqID, protocol.ErrInternal, err.Error())
}

func (s *Server) dispatch(caller model.Principal, act protocol.ActMsg) protocol.ResultMsg {
	switch act.Op {
	case protocol.OpRegister:
		err := s.game.RegisterPlayer(caller)
		return resultFrom(act.ReqID, err, s.game.Player(caller))

	case protocol.OpBuyProperty:
		err := s.game.BuyPropertyFromBank(caller, act.PropertyID, act.Price)
		return resultFrom(act.ReqID, err, s.game.Player(caller))

	case protocol.OpMintProperty:
		cat, ok := model.ParseCategory(act.Category)
		if !ok {
			return resultErr(act.ReqID, protocol.ErrBadRequest, "unknown category "+act.Category)
		}
		to := model.Principal(act.To)
		if to == model.Zero {
			to = s.game.Bank()
		}
		id, err := s.game.MintProperty(caller, to, act.Name, cat, act.Value, act.Rent, act.MetadataRef)
		return resultFrom(act.ReqID, err, map[string]uint64{"property_id": id})

	case protocol.OpApprove:
		err := s.game.ApproveOrchestrator(caller, act.PropertyID)
		return resultFrom(act.ReqID, err, nil)

	case protocol.OpTransferTokens:
		err := s.game.TransferTokens(caller, model.Principal(act.To), act.Amount)
		return resultFrom(act.ReqID, err, nil)

	case protocol.OpBurnTokens:
		err := s.game.BurnTokens(caller, act.Amount)
		return resultFrom(act.ReqID, err, nil)

	case protocol.OpCreateOffer:
		id, err := s.game.CreateTradeOffer(caller, model.Principal(act.To), act.PropertyID, act.Price)
		return resultFrom(act.ReqID, err, map[string]uint64{"offer_id": id})

	case protocol.OpAcceptOffer:
		err := s.game.AcceptTradeOffer(caller, act.OfferID)
		return resultFrom(act.ReqID, err, nil)

	case protocol.OpCancelOffer:
		err := s.game.CancelTradeOffer(caller, act.OfferID)
		return resultFrom(act.ReqID, err, nil)

	case protocol.OpGetPlayer:
		p := caller
		if act.Principal != "" {
			p = model.Principal(act.Principal)
		}
		return resultOK(act.ReqID, s.game.Player(p))

	case protocol.OpGetProperty:
		prop, err := s.game.Property(act.PropertyID)
		if err != nil {
			return resultFrom(act.ReqID, err, nil)
		}
		return resultOK(act.ReqID, viewProperty(prop))

	case protocol.OpListProperties:
		props := s.game.Properties()
		out := make([]propertyView, 0, len(props))
		for _, p := range props {
			out = append(out, viewProperty(p))
		}
		return resultOK(act.ReqID, out)

	case protocol.OpListOffers:
		offers := s.game.Offers()
		out := make([]offerView, 0, len(offers))
		for _, o := range offers {
			out = append(out, viewOffer(o))
		}
		return resultOK(act.ReqID, out)

	default:
		return resultErr(act.ReqID, protocol.ErrProtoBadRequest, "unknown op "+act.Op)
	}
}
