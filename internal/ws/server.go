package ws

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hassan-khan07/Chat-App/internal/presence"
)

// TokenVerifier checks a handshake token and returns the user id it belongs
// to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Server accepts websocket connections, wires them into the hub and the
// presence registry, and triggers an online-set announcement on every connect
// and disconnect.
type Server struct {
	hub      *Hub
	registry *presence.Registry
	verifier TokenVerifier
	announce func()
	log      *zap.SugaredLogger
	rps      int
}

func NewServer(hub *Hub, registry *presence.Registry, verifier TokenVerifier, announce func(), log *zap.SugaredLogger, rps int) *Server {
	if rps <= 0 {
		rps = 20
	}
	if announce == nil {
		announce = func() {}
	}
	return &Server{hub: hub, registry: registry, verifier: verifier, announce: announce, log: log, rps: rps}
}

// Handle is the gofiber websocket connection handler. The handshake carries
// the user id and an access token as query parameters; the token subject must
// match the claimed id.
func (s *Server) Handle() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		userID := conn.Query("userId")
		token := conn.Query("token")
		if userID == "" || token == "" {
			_ = conn.Close()
			return
		}
		uid, err := s.verifier.Verify(token)
		if err != nil || uid != userID {
			s.log.Warnw("ws handshake rejected", "userId", userID)
			_ = conn.Close()
			return
		}

		connID := uuid.NewString()
		client := NewClient(conn, connID, userID, s.hub, s.rps)

		s.hub.Add(connID, client)
		s.registry.Register(userID, connID)
		s.announce()
		s.log.Infow("user connected", "userId", userID, "connId", connID)

		go client.WritePump()
		client.ReadPump(func() {
			s.hub.Remove(connID)
			s.registry.Unregister(userID, connID)
			s.announce()
			s.log.Infow("user disconnected", "userId", userID, "connId", connID)
		})
	}
}
