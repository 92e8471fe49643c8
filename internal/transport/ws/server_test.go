package ws

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"landlords.game/internal/game"
	"landlords.game/internal/game/model"
	"landlords.game/internal/protocol"
)

type testEnv struct {
	game *game.Game
	srv  *Server
	ts   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{}
	env.game = game.New(game.Config{
		Bank:            "BANK",
		InitialBalance:  1500,
		CooldownSeconds: 300,
		LockSeconds:     600,
		MaxProperties:   4,
		Clock:           func() int64 { return 1000 },
		Sink: func(cursor uint64, ev protocol.Event) {
			if env.srv != nil {
				env.srv.Broadcast(cursor, ev)
			}
		},
	})
	env.srv = NewServer(env.game, log.New(io.Discard, "", 0))
	env.ts = httptest.NewServer(env.srv.Handler())
	t.Cleanup(env.ts.Close)
	return env
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (e *testEnv) connect(t *testing.T, principal string) (*websocket.Conn, protocol.WelcomeMsg) {
	t.Helper()
	conn := e.dial(t)
	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		Principal:       principal,
		ClientName:      "test",
	})
	var welcome protocol.WelcomeMsg
	readTyped(t, conn, protocol.TypeWelcome, &welcome)
	return conn, welcome
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readTyped reads until a message of the wanted type arrives, skipping
// interleaved EVENT pushes.
func readTyped(t *testing.T, conn *websocket.Conn, wantType string, v any) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type == wantType {
			if err := json.Unmarshal(msg, v); err != nil {
				t.Fatalf("unmarshal %s: %v", wantType, err)
			}
			return
		}
		if base.Type != protocol.TypeEvent {
			t.Fatalf("expected %s, got %s", wantType, base.Type)
		}
	}
}

func act(t *testing.T, conn *websocket.Conn, a protocol.ActMsg) protocol.ResultMsg {
	t.Helper()
	a.Type = protocol.TypeAct
	a.ProtocolVersion = protocol.Version
	sendJSON(t, conn, a)
	var res protocol.ResultMsg
	readTyped(t, conn, protocol.TypeResult, &res)
	return res
}

func TestHandshakeReportsParams(t *testing.T) {
	env := newTestEnv(t)
	_, welcome := env.connect(t, "alice")
	if welcome.Principal != "alice" {
		t.Fatalf("welcome principal: %q", welcome.Principal)
	}
	p := welcome.GameParams
	if p.InitialBalance != 1500 || p.CooldownSeconds != 300 || p.LockSeconds != 600 || p.MaxProperties != 4 || p.BankPrincipal != "BANK" {
		t.Fatalf("game params: %+v", p)
	}
}

func TestHandshakeRejectsMissingPrincipal(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
	})
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection closed")
	}
}

func TestHandshakeRejectsActFirst(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	sendJSON(t, conn, protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		ReqID:           "R1",
		Op:              protocol.OpRegister,
	})
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection closed")
	}
}

func TestRegisterAndBuyOverWire(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.game.MintProperty(env.game.Bank(), env.game.Bank(), "Avenue Mozart", model.StreetOrange, 180, 14, "ipfs://x")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	conn, _ := env.connect(t, "alice")

	res := act(t, conn, protocol.ActMsg{ReqID: "R1", Op: protocol.OpRegister})
	if !res.Ok {
		t.Fatalf("register failed: %+v", res)
	}

	res = act(t, conn, protocol.ActMsg{ReqID: "R2", Op: protocol.OpBuyProperty, PropertyID: id, Price: 180})
	if !res.Ok {
		t.Fatalf("buy failed: %+v", res)
	}

	res = act(t, conn, protocol.ActMsg{ReqID: "R3", Op: protocol.OpGetPlayer})
	if !res.Ok {
		t.Fatalf("get player failed: %+v", res)
	}
	data, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("player data: %T", res.Data)
	}
	if data["balance"].(float64) != 1320 || data["property_count"].(float64) != 1 {
		t.Fatalf("player view: %+v", data)
	}

	res = act(t, conn, protocol.ActMsg{ReqID: "R4", Op: protocol.OpListProperties})
	if !res.Ok {
		t.Fatalf("list failed: %+v", res)
	}
	props, ok := res.Data.([]any)
	if !ok || len(props) != 1 {
		t.Fatalf("property list: %+v", res.Data)
	}
	if owner := props[0].(map[string]any)["owner"]; owner != "alice" {
		t.Fatalf("owner: %v", owner)
	}
}

func TestRejectionCodeOnWire(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.connect(t, "alice")

	res := act(t, conn, protocol.ActMsg{ReqID: "R1", Op: protocol.OpBuyProperty, PropertyID: 0, Price: 60})
	if res.Ok || res.Code != protocol.ErrNotRegistered {
		t.Fatalf("expected %s, got %+v", protocol.ErrNotRegistered, res)
	}

	res = act(t, conn, protocol.ActMsg{ReqID: "R2", Op: "STEAL_PROPERTY"})
	if res.Ok || res.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("expected %s, got %+v", protocol.ErrProtoBadRequest, res)
	}
}

func TestActBadVersionRejected(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.connect(t, "alice")
	sendJSON(t, conn, protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: "0.9",
		ReqID:           "R1",
		Op:              protocol.OpRegister,
	})
	var res protocol.ResultMsg
	readTyped(t, conn, protocol.TypeResult, &res)
	if res.Ok || res.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("expected %s, got %+v", protocol.ErrProtoBadRequest, res)
	}
}

func TestEventPushAndBatchResync(t *testing.T) {
	env := newTestEnv(t)
	conn, welcome := env.connect(t, "alice")
	if welcome.EventCursor != 0 {
		t.Fatalf("fresh game cursor: %d", welcome.EventCursor)
	}

	// Committed events are pushed to the session before the RESULT arrives.
	sendJSON(t, conn, protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		ReqID:           "R1",
		Op:              protocol.OpRegister,
	})
	var ev protocol.EventMsg
	readTyped(t, conn, protocol.TypeEvent, &ev)
	if ev.Cursor != 1 {
		t.Fatalf("first pushed cursor: %d", ev.Cursor)
	}
	var res protocol.ResultMsg
	readTyped(t, conn, protocol.TypeResult, &res)
	if !res.Ok {
		t.Fatalf("register failed: %+v", res)
	}

	// A late joiner resyncs the same stream from cursor 0.
	conn2, welcome2 := env.connect(t, "bob")
	if welcome2.EventCursor == 0 {
		t.Fatalf("expected non-zero cursor after register")
	}
	sendJSON(t, conn2, protocol.EventBatchReqMsg{
		Type:            protocol.TypeEventBatchReq,
		ProtocolVersion: protocol.Version,
		ReqID:           "B1",
		SinceCursor:     0,
		Limit:           100,
	})
	var batch protocol.EventBatchMsg
	readTyped(t, conn2, protocol.TypeEventBatch, &batch)
	if batch.NextCursor != welcome2.EventCursor {
		t.Fatalf("next cursor %d, welcome cursor %d", batch.NextCursor, welcome2.EventCursor)
	}
	if len(batch.Events) != int(batch.NextCursor) {
		t.Fatalf("expected %d events, got %d", batch.NextCursor, len(batch.Events))
	}
	if batch.Events[0].Cursor != 1 {
		t.Fatalf("batch starts at cursor %d", batch.Events[0].Cursor)
	}
	var kinds []string
	for _, it := range batch.Events {
		kinds = append(kinds, it.Event["type"].(string))
	}
	found := false
	for _, k := range kinds {
		if k == "PLAYER_REGISTERED" {
			found = true
		}
	}
	if !found {
		t.Fatalf("PLAYER_REGISTERED missing from batch: %v", kinds)
	}
}
