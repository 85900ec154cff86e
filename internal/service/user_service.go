package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/auth"
	"github.com/hassan-khan07/Chat-App/internal/models"
	"github.com/hassan-khan07/Chat-App/internal/repository"
	"github.com/hassan-khan07/Chat-App/internal/storage"
)

// UserService handles signup, credential login, token rotation and profile
// updates.
type UserService struct {
	users  repository.UserRepository
	store  storage.ObjectStore
	jwt    *auth.JWTManager
	tokens auth.TokenStore
	log    *zap.SugaredLogger
}

func NewUserService(users repository.UserRepository, store storage.ObjectStore, jwt *auth.JWTManager, tokens auth.TokenStore, log *zap.SugaredLogger) *UserService {
	return &UserService{users: users, store: store, jwt: jwt, tokens: tokens, log: log}
}

// Signup registers a new user. Email must be unique; the avatar is optional.
func (s *UserService) Signup(ctx context.Context, fullName, email, password string, avatar *FileUpload) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" || password == "" {
		return nil, apperr.Validation("full name, email and password are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Validation("user with this email already exists")
	} else if !errors.Is(err, apperr.NotFound("")) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	var avatarImage *models.Image
	if avatar != nil {
		img, uerr := s.store.Upload(ctx, "avatars", avatar.Filename, avatar.ContentType, avatar.Data)
		if uerr != nil {
			return nil, apperr.Storage("avatar upload failed", uerr)
		}
		avatarImage = img
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Avatar:       avatarImage,
	}
	return s.users.Insert(ctx, user)
}

// Login checks credentials and issues a fresh token pair. The refresh token
// is recorded in the allow-list and on the user record.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, apperr.Validation("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.NotFound("")) {
			return nil, nil, apperr.NotFound("user does not exist")
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, apperr.Auth("invalid user credentials")
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the token pair if the presented refresh token is the one
// currently on record.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperr.Auth("refresh token is required")
	}
	userID, err := s.jwt.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	stored, err := s.tokens.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored != refreshToken {
		return nil, apperr.Auth("refresh token has been superseded")
	}
	return s.issueTokens(ctx, userID)
}

// Logout revokes the user's refresh token.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.users.SetRefreshToken(ctx, userID, ""); err != nil {
		s.log.Warnw("failed to clear refresh token on user record", "userId", userID, "error", err)
	}
	return nil
}

// UpdateAvatar uploads the new avatar and releases the previous object
// best-effort.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, avatar FileUpload) (*models.User, error) {
	if len(avatar.Data) == 0 {
		return nil, apperr.Validation("avatar file is missing")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	img, err := s.store.Upload(ctx, "avatars", avatar.Filename, avatar.ContentType, avatar.Data)
	if err != nil {
		return nil, apperr.Storage("avatar upload failed", err)
	}
	if err := s.users.UpdateAvatar(ctx, userID, img); err != nil {
		return nil, err
	}

	if user.Avatar != nil && user.Avatar.StorageID != "" {
		if derr := s.store.Delete(ctx, user.Avatar.StorageID); derr != nil {
			s.log.Warnw("failed to release old avatar", "storageId", user.Avatar.StorageID, "error", derr)
		}
	}
	user.Avatar = img
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ListOthers returns every user except the caller, for the sidebar.
func (s *UserService) ListOthers(ctx context.Context, userID string) ([]*models.User, error) {
	return s.users.ListOthers(ctx, userID)
}

func (s *UserService) issueTokens(ctx context.Context, userID string) (*auth.TokenPair, error) {
	pair, err := s.jwt.GeneratePair(userID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, userID, pair.RefreshToken, s.jwt.RefreshTTL()); err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, userID, pair.RefreshToken); err != nil {
		s.log.Warnw("failed to persist refresh token on user record", "userId", userID, "error", err)
	}
	return pair, nil
}
