package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"poe-item-bank/internal/cache"
	"poe-item-bank/internal/logger"
	"poe-item-bank/internal/model"
)

const (
	// SessionTokenPrefix marks all admin session tokens.
	SessionTokenPrefix = "pib_"

	// sessionKeyPrefix namespaces session keys in the cache.
	sessionKeyPrefix = "itembank:session:"

	// DefaultSessionTTL is used when no TTL is configured.
	DefaultSessionTTL = 12 * time.Hour
)

// SessionError is a sentinel error type for session failures.
type SessionError string

func (e SessionError) Error() string { return string(e) }

const (
	// ErrInvalidCredentials indicates a failed allowlist check.
	ErrInvalidCredentials SessionError = "incorrect username or password"

	// ErrInvalidSession indicates a missing, malformed or expired token.
	ErrInvalidSession SessionError = "invalid or expired session"
)

// SessionService gates mutating operations behind an admin login. The
// credential set is a small fixed allowlist compared by exact string match;
// session state lives in the cache under a random token.
type SessionService struct {
	cache  cache.Cache
	admins map[string]string
	ttl    time.Duration
}

// NewSessionService creates a session service over the given cache.
func NewSessionService(c cache.Cache, admins map[string]string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{cache: c, admins: admins, ttl: ttl}
}

// Login checks the credentials against the allowlist and, on success, issues
// a session token. Failures carry no detail about which field was wrong and
// are not throttled.
func (s *SessionService) Login(ctx context.Context, username, password string) (string, *model.Session, error) {
	expected, ok := s.admins[username]
	if !ok || expected != password {
		logger.Warn().Str("username", username).Msg("admin login failed")
		return "", nil, ErrInvalidCredentials
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	token := SessionTokenPrefix + hex.EncodeToString(tokenBytes)

	session := &model.Session{
		Username:  username,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	data, err := json.Marshal(session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize session: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+token, data, s.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	logger.Info().Str("username", username).Time("expires", session.ExpiresAt).
		Msg("admin session opened")
	return token, session, nil
}

// Validate resolves a token to its session, rejecting unknown or expired
// tokens.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.Session, error) {
	if len(token) <= len(SessionTokenPrefix) || token[:len(SessionTokenPrefix)] != SessionTokenPrefix {
		return nil, ErrInvalidSession
	}

	data, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if err == cache.ErrCacheMiss {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.cache.Delete(ctx, sessionKeyPrefix+token)
		return nil, ErrInvalidSession
	}
	return &session, nil
}

// Logout removes the session behind the token. Logging out an already-dead
// token is not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+token)
}
