package ws

import "encoding/json"

// Event types on the wire. Server-sent events carry the payload; joinGroup
// and leaveGroup are client-sent and carry only the group id.
const (
	EventOnlineUsers     = "getOnlineUsers"
	EventJoinGroup       = "joinGroup"
	EventLeaveGroup      = "leaveGroup"
	EventNewMessage      = "newMessage"
	EventNewGroupMessage = "newGroupMessage"
)

// Envelope is the standard wire format for ws messages.
type Envelope struct {
	Type    string          `json:"type"`
	GroupID string          `json:"group_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload into an envelope of the given type. Marshal
// failures yield an envelope with an empty payload; the types sent here are
// all plain data structs.
func NewEnvelope(eventType string, payload any) Envelope {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{Type: eventType}
	}
	return Envelope{Type: eventType, Payload: b}
}
