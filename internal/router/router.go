// Package router decides which live connections receive a freshly persisted
// message and performs the push. Pushes are best-effort: durability never
// depends on live delivery.
package router

import (
	"go.uber.org/zap"

	"github.com/hassan-khan07/Chat-App/internal/models"
	"github.com/hassan-khan07/Chat-App/internal/presence"
	"github.com/hassan-khan07/Chat-App/internal/ws"
)

type Router struct {
	registry *presence.Registry
	hub      *ws.Hub
	log      *zap.SugaredLogger
}

func New(registry *presence.Registry, hub *ws.Hub, log *zap.SugaredLogger) *Router {
	return &Router{registry: registry, hub: hub, log: log}
}

// DeliverDirect pushes the persisted message to the receiver's connection if
// they are online. The sender gets their copy from the synchronous create
// response, never from a push.
func (r *Router) DeliverDirect(msg *models.DirectMessage) {
	connID, ok := r.registry.Lookup(msg.ReceiverID)
	if !ok {
		r.log.Debugw("receiver offline, no push", "receiverId", msg.ReceiverID, "messageId", msg.ID)
		return
	}
	r.hub.SendTo(connID, ws.NewEnvelope(ws.EventNewMessage, msg))
}

// DeliverGroup pushes the persisted message to every connection currently in
// the group's room.
func (r *Router) DeliverGroup(msg *models.GroupMessage) {
	r.hub.BroadcastRoom(msg.GroupID, ws.NewEnvelope(ws.EventNewGroupMessage, msg))
}

// AnnouncePresence broadcasts the current online user set to every live
// connection. Runs on every connect and disconnect.
func (r *Router) AnnouncePresence() {
	r.hub.BroadcastAll(ws.NewEnvelope(ws.EventOnlineUsers, r.registry.Online()))
}
