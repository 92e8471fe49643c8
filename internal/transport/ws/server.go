// Package ws terminates websocket sessions: one HELLO/WELCOME handshake,
// then ACT request/RESULT response pairs plus pushed EVENT messages. The
// principal presented in HELLO is trusted; authenticating it is the edge's
// job, not the core's.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"landlords.game/internal/game"
	"landlords.game/internal/game/model"
	"landlords.game/internal/protocol"
)

type Server struct {
	game *game.Game
	log  *log.Logger

	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewServer(g *game.Game, logger *log.Logger) *Server {
	return &Server{
		game: g,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		subs: make(map[chan []byte]struct{}),
	}
}

// Broadcast pushes one committed event to every connected session. Wire it
// as the game's event sink.
func (s *Server) Broadcast(cursor uint64, ev protocol.Event) {
	b, err := json.Marshal(protocol.EventMsg{
		Type:            protocol.TypeEvent,
		ProtocolVersion: protocol.Version,
		Cursor:          cursor,
		Event:           ev,
	})
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- b:
		default:
			// Slow consumer: it can re-sync with EVENT_BATCH_REQ.
		}
	}
}

func (s *Server) subscribe(ch chan []byte) {
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		principal, out := s.handshake(conn)
		if principal == model.Zero {
			return
		}
		s.subscribe(out)
		defer s.unsubscribe(out)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeAct:
				var act protocol.ActMsg
				if err := json.Unmarshal(msg, &act); err != nil {
					continue
				}
				if act.ProtocolVersion != protocol.Version {
					s.send(out, resultErr(act.ReqID, protocol.ErrProtoBadRequest, "bad protocol_version"))
					continue
				}
				s.send(out, s.dispatch(principal, act))
			case protocol.TypeEventBatchReq:
				var req protocol.EventBatchReqMsg
				if err := json.Unmarshal(msg, &req); err != nil {
					continue
				}
				events, next := s.game.EventsSince(req.SinceCursor, req.Limit)
				s.send(out, protocol.EventBatchMsg{
					Type:            protocol.TypeEventBatch,
					ProtocolVersion: protocol.Version,
					ReqID:           req.ReqID,
					Events:          events,
					NextCursor:      next,
				})
			}
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (model.Principal, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return model.Zero, nil
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return model.Zero, nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return model.Zero, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return model.Zero, nil
	}
	principal := model.Principal(strings.TrimSpace(hello.Principal))
	if principal == model.Zero {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "missing principal"), time.Now().Add(time.Second))
		return model.Zero, nil
	}

	out := make(chan []byte, 64)
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		Principal:       string(principal),
		GameParams:      s.game.Params(),
		EventCursor:     s.game.EventCursor(),
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return model.Zero, nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return model.Zero, nil
	}
	return principal, out
}

func (s *Server) send(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("ws: marshal response: %v", err)
		return
	}
	select {
	case out <- b:
	default:
		s.log.Printf("ws: dropping response on full queue")
	}
}
