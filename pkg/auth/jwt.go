// Package auth issues and validates the JWTs hosts authenticate with on
// the HTTP control surface. Participants never hold a JWT; they carry an
// opaque session token minted at join time.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/config"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the access-token claims for a host.
type Claims struct {
	HostID uuid.UUID `json:"host_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims are the refresh-token claims; no email, refresh tokens
// only prove identity.
type RefreshClaims struct {
	HostID uuid.UUID `json:"host_id"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates host tokens with separate access and
// refresh secrets.
type JWTManager struct {
	config config.JWTConfig
}

// NewJWTManager creates a JWTManager from the loaded JWT config.
func NewJWTManager(config config.JWTConfig) *JWTManager {
	return &JWTManager{config: config}
}

func (m *JWTManager) registered(hostID uuid.UUID, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    m.config.Issuer,
		Subject:   hostID.String(),
	}
}

// GenerateToken issues an access token for a host.
func (m *JWTManager) GenerateToken(hostID uuid.UUID, email string) (string, error) {
	claims := Claims{
		HostID:           hostID,
		Email:            email,
		RegisteredClaims: m.registered(hostID, m.config.ExpirationTime),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.config.Secret))
}

// GenerateRefreshToken issues a refresh token for a host.
func (m *JWTManager) GenerateRefreshToken(hostID uuid.UUID) (string, error) {
	claims := RefreshClaims{
		HostID:           hostID,
		RegisteredClaims: m.registered(hostID, m.config.RefreshExpTime),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.config.RefreshSecret))
}

func parseWith(tokenString string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// ValidateToken checks an access token and returns its claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	var claims Claims
	if err := parseWith(tokenString, &claims, m.config.Secret); err != nil {
		return nil, err
	}
	return &claims, nil
}

// ValidateRefreshToken checks a refresh token and returns its claims.
func (m *JWTManager) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := parseWith(tokenString, &claims, m.config.RefreshSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}
