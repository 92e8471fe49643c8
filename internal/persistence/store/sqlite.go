// Package store persists the game state to sqlite so balances, deeds,
// timers and offers survive a restart. The in-memory game stays the system
// of record; rows here are written through after each committed operation
// and read back once at boot.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"landlords.game/internal/game"
	"landlords.game/internal/game/model"
)

type SQLite struct {
	db *sql.DB
}

func Open(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL keeps the write-through path cheap; NORMAL is enough durability
	// for a copy the memory image is authoritative over.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			principal  TEXT PRIMARY KEY,
			balance    INTEGER NOT NULL,
			registered INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			principal      TEXT PRIMARY KEY,
			registered     INTEGER NOT NULL,
			property_count INTEGER NOT NULL,
			last_action_at INTEGER NOT NULL,
			locked_until   INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS properties (
			id           INTEGER PRIMARY KEY,
			name         TEXT NOT NULL,
			category     INTEGER NOT NULL,
			value        INTEGER NOT NULL,
			rent         INTEGER NOT NULL,
			metadata_ref TEXT NOT NULL,
			owner        TEXT NOT NULL,
			approved     TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS offers (
			id          INTEGER PRIMARY KEY,
			from_p      TEXT NOT NULL,
			to_p        TEXT NOT NULL,
			property_id INTEGER NOT NULL,
			price       INTEGER NOT NULL,
			active      INTEGER NOT NULL,
			created_at  INTEGER NOT NULL
		);`,
	}
	for _, s := range schema {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) SaveAccount(p model.Principal, balance int64, registered bool) error {
	_, err := s.db.Exec(`INSERT INTO accounts(principal, balance, registered) VALUES(?,?,?)
		ON CONFLICT(principal) DO UPDATE SET balance=excluded.balance, registered=excluded.registered`,
		string(p), balance, boolInt(registered))
	return err
}

func (s *SQLite) SavePlayer(p model.Principal, pl model.Player) error {
	_, err := s.db.Exec(`INSERT INTO players(principal, registered, property_count, last_action_at, locked_until) VALUES(?,?,?,?,?)
		ON CONFLICT(principal) DO UPDATE SET registered=excluded.registered, property_count=excluded.property_count,
			last_action_at=excluded.last_action_at, locked_until=excluded.locked_until`,
		string(p), boolInt(pl.Registered), pl.PropertyCount, pl.LastActionAt, pl.LockedUntil)
	return err
}

func (s *SQLite) SaveProperty(p model.Property) error {
	_, err := s.db.Exec(`INSERT INTO properties(id, name, category, value, rent, metadata_ref, owner, approved) VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET owner=excluded.owner, approved=excluded.approved`,
		p.ID, p.Name, int(p.Category), p.Value, p.Rent, p.MetadataRef, string(p.Owner), string(p.Approved))
	return err
}

func (s *SQLite) SaveOffer(o model.Offer) error {
	_, err := s.db.Exec(`INSERT INTO offers(id, from_p, to_p, property_id, price, active, created_at) VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET active=excluded.active`,
		o.ID, string(o.From), string(o.To), o.PropertyID, o.Price, boolInt(o.Active), o.CreatedAt)
	return err
}

// LoadAll reads the persisted image back. Next-id counters are implied by
// the highest stored ids; rows are never deleted and ids never reused.
func (s *SQLite) LoadAll() (game.RestoredState, error) {
	st := game.RestoredState{
		Accounts: make(map[model.Principal]game.AccountRow),
		Players:  make(map[model.Principal]model.Player),
	}

	rows, err := s.db.Query(`SELECT principal, balance, registered FROM accounts`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var p string
		var a game.AccountRow
		var reg int
		if err := rows.Scan(&p, &a.Balance, &reg); err != nil {
			rows.Close()
			return st, err
		}
		a.Registered = reg != 0
		st.Accounts[model.Principal(p)] = a
	}
	if err := closeRows(rows); err != nil {
		return st, err
	}

	rows, err = s.db.Query(`SELECT principal, registered, property_count, last_action_at, locked_until FROM players`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var p string
		var pl model.Player
		var reg int
		if err := rows.Scan(&p, &reg, &pl.PropertyCount, &pl.LastActionAt, &pl.LockedUntil); err != nil {
			rows.Close()
			return st, err
		}
		pl.Registered = reg != 0
		st.Players[model.Principal(p)] = pl
	}
	if err := closeRows(rows); err != nil {
		return st, err
	}

	rows, err = s.db.Query(`SELECT id, name, category, value, rent, metadata_ref, owner, approved FROM properties ORDER BY id`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var p model.Property
		var cat int
		var owner, approved string
		if err := rows.Scan(&p.ID, &p.Name, &cat, &p.Value, &p.Rent, &p.MetadataRef, &owner, &approved); err != nil {
			rows.Close()
			return st, err
		}
		p.Category = model.Category(cat)
		p.Owner = model.Principal(owner)
		p.Approved = model.Principal(approved)
		st.Properties = append(st.Properties, p)
	}
	if err := closeRows(rows); err != nil {
		return st, err
	}

	rows, err = s.db.Query(`SELECT id, from_p, to_p, property_id, price, active, created_at FROM offers ORDER BY id`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var o model.Offer
		var from, to string
		var active int
		if err := rows.Scan(&o.ID, &from, &to, &o.PropertyID, &o.Price, &active, &o.CreatedAt); err != nil {
			rows.Close()
			return st, err
		}
		o.From = model.Principal(from)
		o.To = model.Principal(to)
		o.Active = active != 0
		st.Offers = append(st.Offers, o)
	}
	if err := closeRows(rows); err != nil {
		return st, err
	}
	return st, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
