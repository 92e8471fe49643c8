package store

import (
	"path/filepath"
	"testing"

	"landlords.game/internal/game/model"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRoundtrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveAccount("alice", 1440, true); err != nil {
		t.Fatalf("save account: %v", err)
	}
	if err := s.SaveAccount("BANK", 60, false); err != nil {
		t.Fatalf("save account: %v", err)
	}
	if err := s.SavePlayer("alice", model.Player{Registered: true, PropertyCount: 1, LastActionAt: 100, LockedUntil: 700}); err != nil {
		t.Fatalf("save player: %v", err)
	}
	if err := s.SaveProperty(model.Property{
		ID: 0, Name: "Boulevard de Belleville", Category: model.StreetBrown,
		Value: 60, Rent: 2, MetadataRef: "ipfs://x", Owner: "alice",
	}); err != nil {
		t.Fatalf("save property: %v", err)
	}
	if err := s.SaveOffer(model.Offer{ID: 0, From: "alice", To: "bob", PropertyID: 0, Price: 100, Active: true, CreatedAt: 700}); err != nil {
		t.Fatalf("save offer: %v", err)
	}

	st, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, ok := st.Accounts["alice"]
	if !ok || a.Balance != 1440 || !a.Registered {
		t.Fatalf("account row: %+v", a)
	}
	if b := st.Accounts["BANK"]; b.Balance != 60 || b.Registered {
		t.Fatalf("bank row: %+v", b)
	}
	pl, ok := st.Players["alice"]
	if !ok || pl.PropertyCount != 1 || pl.LastActionAt != 100 || pl.LockedUntil != 700 {
		t.Fatalf("player row: %+v", pl)
	}
	if len(st.Properties) != 1 {
		t.Fatalf("expected 1 property, got %d", len(st.Properties))
	}
	p := st.Properties[0]
	if p.Owner != "alice" || p.Category != model.StreetBrown || p.Value != 60 || p.Approved != model.Zero {
		t.Fatalf("property row: %+v", p)
	}
	if len(st.Offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(st.Offers))
	}
	o := st.Offers[0]
	if o.From != "alice" || o.To != "bob" || o.Price != 100 || !o.Active {
		t.Fatalf("offer row: %+v", o)
	}
}

func TestUpsertOverwrites(t *testing.T) {
	s := openTestStore(t)

	prop := model.Property{ID: 3, Name: "Gare du Nord", Category: model.Station, Value: 200, Rent: 25, MetadataRef: "ipfs://x", Owner: "BANK", Approved: "GAME"}
	if err := s.SaveProperty(prop); err != nil {
		t.Fatalf("save: %v", err)
	}
	prop.Owner = "alice"
	prop.Approved = model.Zero
	if err := s.SaveProperty(prop); err != nil {
		t.Fatalf("resave: %v", err)
	}

	if err := s.SaveOffer(model.Offer{ID: 1, From: "alice", To: "bob", PropertyID: 3, Price: 250, Active: true, CreatedAt: 10}); err != nil {
		t.Fatalf("save offer: %v", err)
	}
	if err := s.SaveOffer(model.Offer{ID: 1, From: "alice", To: "bob", PropertyID: 3, Price: 250, Active: false, CreatedAt: 10}); err != nil {
		t.Fatalf("resave offer: %v", err)
	}

	st, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(st.Properties) != 1 || st.Properties[0].Owner != "alice" || st.Properties[0].Approved != model.Zero {
		t.Fatalf("property not overwritten: %+v", st.Properties)
	}
	if len(st.Offers) != 1 || st.Offers[0].Active {
		t.Fatalf("offer not overwritten: %+v", st.Offers)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "nested", "deep", "game.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.Close()
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
