// Package session holds the identity of the signed-in user. A single Session
// is created at startup, loaded from the key-value store and shared by the
// API client (as the bearer token source) and the services.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	KeyToken  = "token"
	KeyUserID = "userId"
	KeyName   = "name"
)

// KV is the subset of the guest key-value store the session persists to.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Info is a snapshot of the session fields.
type Info struct {
	Token  string
	UserID string
	Name   string
}

type Session struct {
	kv  KV
	now func() time.Time

	mu       sync.RWMutex
	info     Info
	handlers []func(Info)
}

func New(kv KV) *Session {
	return &Session{kv: kv, now: time.Now}
}

// Load reads the persisted fields. Missing keys leave the session empty.
func (s *Session) Load(ctx context.Context) error {
	var info Info
	for key, dst := range map[string]*string{KeyToken: &info.Token, KeyUserID: &info.UserID, KeyName: &info.Name} {
		v, err := s.kv.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("load session %s: %w", key, err)
		}
		*dst = string(v)
	}

	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
	return nil
}

// Info returns the current fields.
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Token implements the bearer token source of the API client.
func (s *Session) Token() string {
	return s.Info().Token
}

// IsLoggedIn reports whether a token is present and not expired.
func (s *Session) IsLoggedIn() bool {
	token := s.Token()
	return token != "" && !s.expired(token)
}

// Expired reports whether the stored token carries an exp claim in the past.
// Tokens that are not JWTs, or have no exp, never expire client-side; the
// server stays the authority.
func (s *Session) Expired() bool {
	token := s.Token()
	return token != "" && s.expired(token)
}

func (s *Session) expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

// Set persists new credentials and notifies subscribers.
func (s *Session) Set(ctx context.Context, info Info) error {
	var errs []error
	for key, v := range map[string]string{KeyToken: info.Token, KeyUserID: info.UserID, KeyName: info.Name} {
		if err := s.kv.Set(ctx, key, []byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("save session %s: %w", key, err))
		}
	}

	s.update(info)
	return errors.Join(errs...)
}

// Clear removes the persisted credentials and notifies subscribers.
func (s *Session) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyToken, KeyUserID, KeyName} {
		if err := s.kv.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("clear session %s: %w", key, err))
		}
	}

	s.update(Info{})
	return errors.Join(errs...)
}

// OnChange registers fn to be called after every Set or Clear.
func (s *Session) OnChange(fn func(Info)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, fn)
}

func (s *Session) update(info Info) {
	s.mu.Lock()
	s.info = info
	handlers := append([]func(Info){}, s.handlers...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(info)
	}
}
