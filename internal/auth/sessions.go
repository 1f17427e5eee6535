package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound indicates the session ID is unknown or revoked.
var ErrSessionNotFound = errors.New("session not found")

const (
	sessionKeyPrefix  = "session:"
	userSessionPrefix = "user_sessions:"
)

// SessionStore tracks live sessions in Redis so logout and suspension revoke
// tokens before their expiry.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore constructs a Redis-backed session store.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

// TTL returns the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create registers a new session for the user and returns its ID.
func (s *SessionStore) Create(ctx context.Context, userID uint) (string, error) {
	sessionID := uuid.NewString()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+sessionID, strconv.FormatUint(uint64(userID), 10), s.ttl)
	pipe.SAdd(ctx, userSessionPrefix+strconv.FormatUint(uint64(userID), 10), sessionID)
	pipe.Expire(ctx, userSessionPrefix+strconv.FormatUint(uint64(userID), 10), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sessionID, nil
}

// Validate returns the user ID bound to a live session.
func (s *SessionStore) Validate(ctx context.Context, sessionID string) (uint, error) {
	value, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}

	return uint(userID), nil
}

// Revoke removes a single session.
func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	userValue, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+sessionID)
	pipe.SRem(ctx, userSessionPrefix+userValue, sessionID)
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeAll drops every live session for the user. Called when an admin
// suspends an account.
func (s *SessionStore) RevokeAll(ctx context.Context, userID uint) error {
	setKey := userSessionPrefix + strconv.FormatUint(uint64(userID), 10)

	sessionIDs, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, sessionID := range sessionIDs {
		pipe.Del(ctx, sessionKeyPrefix+sessionID)
	}
	pipe.Del(ctx, setKey)
	_, err = pipe.Exec(ctx)
	return err
}

// TokenClaims are the JWT claims carried by a session token.
type TokenClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SignToken wraps the session in a signed JWT delivered as the session cookie.
func SignToken(secret string, userID uint, sessionID string, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the token signature and returns the embedded claims.
func ParseToken(secret, tokenString string) (TokenClaims, error) {
	var claims TokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return TokenClaims{}, fmt.Errorf("invalid session token")
	}

	return claims, nil
}

// UserID parses the numeric subject claim.
func (c TokenClaims) UserID() (uint, error) {
	parsed, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject: %w", err)
	}
	return uint(parsed), nil
}
