package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/models"
)

type DirectMessageRepository interface {
	Insert(ctx context.Context, m *models.DirectMessage) (*models.DirectMessage, error)
	// History returns every message exchanged between the two users, oldest
	// first.
	History(ctx context.Context, userA, userB string) ([]*models.DirectMessage, error)
}

type GroupMessageRepository interface {
	Insert(ctx context.Context, m *models.GroupMessage) (*models.GroupMessage, error)
	// History returns a page of group messages in chronological order. Pages
	// count from 1 and are sliced newest-first before the reversal.
	History(ctx context.Context, groupID string, page, limit int64) ([]*models.GroupMessage, error)
}

type mongoDirectMessageRepo struct {
	col *mongo.Collection
}

func NewDirectMessageRepository(db *mongo.Database) DirectMessageRepository {
	return &mongoDirectMessageRepo{col: db.Collection(directMessagesCollection)}
}

type directMessageDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	SenderID   string             `bson:"sender_id"`
	ReceiverID string             `bson:"receiver_id"`
	Text       string             `bson:"text,omitempty"`
	Images     []string           `bson:"images,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d *directMessageDoc) toModel() *models.DirectMessage {
	return &models.DirectMessage{
		ID:         d.ID.Hex(),
		SenderID:   d.SenderID,
		ReceiverID: d.ReceiverID,
		Text:       d.Text,
		Images:     d.Images,
		CreatedAt:  d.CreatedAt,
	}
}

func (r *mongoDirectMessageRepo) Insert(ctx context.Context, m *models.DirectMessage) (*models.DirectMessage, error) {
	m.CreatedAt = time.Now().UTC()
	doc := &directMessageDoc{
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		Images:     m.Images,
		CreatedAt:  m.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, apperr.Internal("failed to save message", err)
	}
	m.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return m, nil
}

func (r *mongoDirectMessageRepo) History(ctx context.Context, userA, userB string) ([]*models.DirectMessage, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userA, "receiver_id": userB},
		bson.M{"sender_id": userB, "receiver_id": userA},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Internal("failed to fetch messages", err)
	}
	defer cur.Close(ctx)

	var out []*models.DirectMessage
	for cur.Next(ctx) {
		var doc directMessageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, apperr.Internal("failed to decode message", err)
		}
		out = append(out, doc.toModel())
	}
	return out, nil
}

type mongoGroupMessageRepo struct {
	col *mongo.Collection
}

func NewGroupMessageRepository(db *mongo.Database) GroupMessageRepository {
	return &mongoGroupMessageRepo{col: db.Collection(groupMessagesCollection)}
}

type groupMessageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	GroupID   string             `bson:"group_id"`
	SenderID  string             `bson:"sender_id"`
	Text      string             `bson:"text,omitempty"`
	Images    []string           `bson:"images"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *groupMessageDoc) toModel() *models.GroupMessage {
	return &models.GroupMessage{
		ID:        d.ID.Hex(),
		GroupID:   d.GroupID,
		SenderID:  d.SenderID,
		Text:      d.Text,
		Images:    d.Images,
		CreatedAt: d.CreatedAt,
	}
}

func (r *mongoGroupMessageRepo) Insert(ctx context.Context, m *models.GroupMessage) (*models.GroupMessage, error) {
	m.CreatedAt = time.Now().UTC()
	if m.Images == nil {
		m.Images = []string{}
	}
	doc := &groupMessageDoc{
		GroupID:   m.GroupID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Images:    m.Images,
		CreatedAt: m.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, apperr.Internal("failed to save group message", err)
	}
	m.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return m, nil
}

func (r *mongoGroupMessageRepo) History(ctx context.Context, groupID string, page, limit int64) ([]*models.GroupMessage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, apperr.Internal("failed to fetch group messages", err)
	}
	defer cur.Close(ctx)

	var out []*models.GroupMessage
	for cur.Next(ctx) {
		var doc groupMessageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, apperr.Internal("failed to decode group message", err)
		}
		out = append(out, doc.toModel())
	}
	// newest-first query, chronological response
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
