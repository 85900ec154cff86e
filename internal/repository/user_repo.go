package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/models"
)

type UserRepository interface {
	Insert(ctx context.Context, u *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListOthers(ctx context.Context, excludeID string) ([]*models.User, error)
	UpdateAvatar(ctx context.Context, id string, avatar *models.Image) error
	SetRefreshToken(ctx context.Context, id, token string) error
}

type mongoUserRepo struct {
	col *mongo.Collection
}

// NewUserRepository wires the users collection. The unique email index backs
// the duplicate-key branch in Insert; the pre-check in the service layer is
// only there for a friendlier error.
func NewUserRepository(db *mongo.Database) UserRepository {
	col := db.Collection(usersCollection)
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	return &mongoUserRepo{col: col}
}

// userDoc mirrors models.User with an ObjectID primary key.
type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FullName     string             `bson:"full_name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Avatar       *models.Image      `bson:"avatar,omitempty"`
	RefreshToken string             `bson:"refresh_token,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *userDoc) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		FullName:     d.FullName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Avatar:       d.Avatar,
		RefreshToken: d.RefreshToken,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *mongoUserRepo) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	doc := &userDoc{
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Avatar:       u.Avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Validation("user with this email already exists")
		}
		return nil, apperr.Internal("failed to create user", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID).Hex()
	u.CreatedAt = now
	u.UpdatedAt = now
	return u, nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("user id is not valid")
	}
	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to fetch user", err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to fetch user", err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepo) ListOthers(ctx context.Context, excludeID string) ([]*models.User, error) {
	filter := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	defer cur.Close(ctx)

	var out []*models.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, apperr.Internal("failed to decode user", err)
		}
		out = append(out, doc.toModel())
	}
	return out, nil
}

func (r *mongoUserRepo) UpdateAvatar(ctx context.Context, id string, avatar *models.Image) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("user id is not valid")
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"avatar":     avatar,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return apperr.Internal("failed to update avatar", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *mongoUserRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("user id is not valid")
	}
	update := bson.M{"$set": bson.M{"refresh_token": token, "updated_at": time.Now().UTC()}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refresh_token": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		}
	}
	if _, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return apperr.Internal("failed to store refresh token", err)
	}
	return nil
}
