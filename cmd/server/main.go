package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"landlords.game/internal/catalogs"
	"landlords.game/internal/game"
	"landlords.game/internal/game/model"
	persistlog "landlords.game/internal/persistence/log"
	"landlords.game/internal/persistence/store"
	"landlords.game/internal/protocol"
	"landlords.game/internal/transport/ws"
	"landlords.game/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite store (volatile game)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	_ = os.MkdirAll(*dataDir, 0o755)

	var db *store.SQLite
	if !*disableDB {
		db, err = store.Open(filepath.Join(*dataDir, "game.db"))
		if err != nil {
			logger.Fatalf("open store: %v", err)
		}
		defer db.Close()
	}

	eventLog := persistlog.NewEventLogger(*dataDir)
	defer eventLog.Close()

	var wsServer *ws.Server
	sink := func(cursor uint64, ev protocol.Event) {
		if err := eventLog.WriteEvent(persistlog.EventEntry{Cursor: cursor, Event: ev}); err != nil {
			logger.Printf("event log: %v", err)
		}
		if wsServer != nil {
			wsServer.Broadcast(cursor, ev)
		}
	}

	cfg := game.Config{
		Bank:            model.Principal(tune.BankPrincipal),
		InitialBalance:  tune.InitialBalance,
		CooldownSeconds: tune.CooldownSeconds,
		LockSeconds:     tune.LockSeconds,
		MaxProperties:   tune.MaxProperties,
		Sink:            sink,
		Logger:          logger,
	}
	if db != nil {
		cfg.Store = db
	}
	g := game.New(cfg)

	if db != nil {
		st, err := db.LoadAll()
		if err != nil {
			logger.Fatalf("load store: %v", err)
		}
		g.Restore(st)
		logger.Printf("restored %d accounts, %d players, %d properties, %d offers",
			len(st.Accounts), len(st.Players), len(st.Properties), len(st.Offers))
	}

	if len(g.Properties()) == 0 {
		if n, err := seedBoard(g, filepath.Join(*configDir, "properties.yaml")); err != nil {
			logger.Printf("seed board: %v", err)
		} else if n > 0 {
			logger.Printf("seeded %d board properties to the bank", n)
		}
	}

	wsServer = ws.NewServer(g, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Printf("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

// seedBoard mints the catalog to the bank on a fresh store (nothing minted
// yet). Returns how many properties were minted.
func seedBoard(g *game.Game, path string) (int, error) {
	cat, err := catalogs.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, e := range cat.Properties {
		c, err := e.CategoryOf()
		if err != nil {
			return n, err
		}
		if _, err := g.MintProperty(g.Bank(), g.Bank(), e.Name, c, e.Value, e.Rent, e.MetadataRef); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
