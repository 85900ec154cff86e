package models

import "time"

// Image is a stable reference to an uploaded object: the storage key used to
// delete it later plus the public URL served to clients.
type Image struct {
	StorageID string `bson:"storage_id" json:"storage_id"`
	URL       string `bson:"url" json:"url"`
}

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	FullName     string    `bson:"full_name" json:"full_name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Avatar       *Image    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	RefreshToken string    `bson:"refresh_token,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
