// Package auth provides the bearer tokens attached to panel requests.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
)

// Static errors for err113 compliance.
var ErrNoToken = errors.New("no API key available")

// Key kinds, derived from the key prefix.
const (
	KindApplication = "application"
	KindClient      = "client"
)

// TokenManager supplies the bearer token of each request.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
}

// Token is a panel API key. Keys do not expire; they are revoked.
type Token struct {
	AccessToken string
}

// Valid reports whether the token can be sent.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != ""
}

// KeyKind returns KindApplication, KindClient or "" from the key prefix.
func (t *Token) KeyKind() string {
	if t == nil {
		return ""
	}

	switch {
	case strings.HasPrefix(t.AccessToken, constants.ApplicationKeyPrefix):
		return KindApplication
	case strings.HasPrefix(t.AccessToken, constants.ClientKeyPrefix):
		return KindClient
	default:
		return ""
	}
}

// TokenStore holds one token and is safe for concurrent use.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the stored token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

// StaticTokenManager serves a fixed panel API key.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager creates a manager for key. A "Bearer " prefix is
// stripped; the transport adds it back.
func NewStaticTokenManager(key string) *StaticTokenManager {
	manager := &StaticTokenManager{store: NewTokenStore()}
	manager.SetToken(key)

	return manager
}

// GetToken returns the key.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if !token.Valid() {
		return "", ErrNoToken
	}

	return token.AccessToken, nil
}

// SetToken replaces the key. A blank key clears it.
func (m *StaticTokenManager) SetToken(token string) {
	token = ptero.StripBearer(token)
	if token == "" {
		m.store.Clear()

		return
	}

	m.store.Set(&Token{AccessToken: token})
}

// Token returns the stored token, or nil.
func (m *StaticTokenManager) Token() *Token {
	return m.store.Get()
}
