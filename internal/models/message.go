package models

import "time"

// DirectMessage is immutable once created. At least one of Text or Images is
// always present; Images holds uploaded attachment URLs in submission order.
type DirectMessage struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	SenderID   string    `bson:"sender_id" json:"sender_id"`
	ReceiverID string    `bson:"receiver_id" json:"receiver_id"`
	Text       string    `bson:"text,omitempty" json:"text,omitempty"`
	Images     []string  `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

type GroupMessage struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	GroupID   string    `bson:"group_id" json:"group_id"`
	SenderID  string    `bson:"sender_id" json:"sender_id"`
	Text      string    `bson:"text,omitempty" json:"text,omitempty"`
	Images    []string  `bson:"images" json:"images"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
