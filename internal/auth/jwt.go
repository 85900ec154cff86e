package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
)

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 access/refresh token pairs.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// RefreshTTL reports how long refresh tokens stay valid; the allow-list uses
// it as the entry TTL.
func (m *JWTManager) RefreshTTL() time.Duration { return m.refreshTTL }

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (m *JWTManager) GeneratePair(userID string) (*TokenPair, error) {
	access, err := m.sign(userID, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *JWTManager) sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", apperr.Internal("failed to sign token", err)
	}
	return signed, nil
}

// Verify parses the token and returns the user id it was issued for.
func (m *JWTManager) Verify(tokenString string) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Auth("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.Auth("invalid or expired token")
	}
	if claims.UserID == "" {
		return "", apperr.Auth("token has no user identity")
	}
	return claims.UserID, nil
}
