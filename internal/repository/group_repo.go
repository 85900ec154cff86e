package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/models"
)

type GroupRepository interface {
	Insert(ctx context.Context, g *models.Group) (*models.Group, error)
	FindByID(ctx context.Context, id string) (*models.Group, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Group, error)
	// Update persists every mutable field of the group in a single write.
	Update(ctx context.Context, g *models.Group) error
	Delete(ctx context.Context, id string) error
}

type mongoGroupRepo struct {
	col *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) GroupRepository {
	return &mongoGroupRepo{col: db.Collection(groupsCollection)}
}

type groupDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Name         string               `bson:"name"`
	Description  string               `bson:"description,omitempty"`
	CreatedBy    string               `bson:"created_by"`
	Members      []models.GroupMember `bson:"members"`
	GroupImage   *models.Image        `bson:"group_image,omitempty"`
	TotalMembers int                  `bson:"total_members"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

func (d *groupDoc) toModel() *models.Group {
	return &models.Group{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Description:  d.Description,
		CreatedBy:    d.CreatedBy,
		Members:      d.Members,
		GroupImage:   d.GroupImage,
		TotalMembers: d.TotalMembers,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *mongoGroupRepo) Insert(ctx context.Context, g *models.Group) (*models.Group, error) {
	now := time.Now().UTC()
	doc := &groupDoc{
		Name:         g.Name,
		Description:  g.Description,
		CreatedBy:    g.CreatedBy,
		Members:      g.Members,
		GroupImage:   g.GroupImage,
		TotalMembers: g.TotalMembers,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, apperr.Internal("failed to create group", err)
	}
	g.ID = res.InsertedID.(primitive.ObjectID).Hex()
	g.CreatedAt = now
	g.UpdatedAt = now
	return g, nil
}

func (r *mongoGroupRepo) FindByID(ctx context.Context, id string) (*models.Group, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("group id is not valid")
	}
	var doc groupDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, apperr.Internal("failed to fetch group", err)
	}
	return doc.toModel(), nil
}

func (r *mongoGroupRepo) ListForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	cur, err := r.col.Find(ctx, bson.M{"members.user_id": userID})
	if err != nil {
		return nil, apperr.Internal("failed to list groups", err)
	}
	defer cur.Close(ctx)

	var out []*models.Group
	for cur.Next(ctx) {
		var doc groupDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, apperr.Internal("failed to decode group", err)
		}
		out = append(out, doc.toModel())
	}
	return out, nil
}

func (r *mongoGroupRepo) Update(ctx context.Context, g *models.Group) error {
	oid, err := primitive.ObjectIDFromHex(g.ID)
	if err != nil {
		return apperr.Validation("group id is not valid")
	}
	g.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":          g.Name,
		"description":   g.Description,
		"members":       g.Members,
		"group_image":   g.GroupImage,
		"total_members": g.TotalMembers,
		"updated_at":    g.UpdatedAt,
	}})
	if err != nil {
		return apperr.Internal("failed to update group", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("group not found")
	}
	return nil
}

func (r *mongoGroupRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("group id is not valid")
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperr.Internal("failed to delete group", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("group not found")
	}
	return nil
}
