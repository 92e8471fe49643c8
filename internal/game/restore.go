package game

import "landlords.game/internal/game/model"

// RestoredState is the full persisted image loaded from the store at boot.
type RestoredState struct {
	Accounts   map[model.Principal]AccountRow
	Players    map[model.Principal]model.Player
	Properties []model.Property
	Offers     []model.Offer
}

type AccountRow struct {
	Balance    int64
	Registered bool
}

// Restore reinstates a persisted image. Must run before the game serves
// requests; emits no events.
func (g *Game) Restore(st RestoredState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for p, a := range st.Accounts {
		g.ledger.RestoreEntry(p, a.Balance, a.Registered)
	}
	for p, pl := range st.Players {
		g.players.Restore(p, pl)
	}
	for _, pr := range st.Properties {
		g.deeds.Restore(pr)
	}
	for _, o := range st.Offers {
		g.trades.Restore(o)
	}
	g.staged = nil
}
