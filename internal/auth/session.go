package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session errors.
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenRevoked = errors.New("session token revoked")
)

// Claims is the payload of a session token. Subject carries the open id.
type Claims struct {
	jwt.RegisteredClaims
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	LoginMethod string `json:"login_method,omitempty"`
}

// Identity is what the identity provider vouched for at login.
type Identity struct {
	OpenID      string
	Name        string
	Email       string
	LoginMethod string
}

// RevocationStore remembers logged-out token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Sessions issues and validates HS256 session tokens.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewSessions creates a session manager. revoked may be nil to disable logout tracking.
func NewSessions(secret string, ttl time.Duration, revoked RevocationStore) (*Sessions, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, revoked: revoked, now: time.Now}, nil
}

// Issue signs a session token for id.
func (s *Sessions) Issue(id Identity) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.OpenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
		Name:        id.Name,
		Email:       id.Email,
		LoginMethod: id.LoginMethod,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, claims, nil
}

// Validate parses a token and checks signature, expiry and revocation.
func (s *Sessions) Validate(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke invalidates the token described by claims until it expires.
func (s *Sessions) Revoke(ctx context.Context, claims *Claims) error {
	if s.revoked == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
