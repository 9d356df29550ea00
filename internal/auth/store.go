// Package auth owns the process-wide credential pair.
//
// The store is a single mutable cell: created on login, replaced atomically
// on refresh, destroyed on logout. The refresh transport is its only writer
// besides the login/logout actions.
package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aidar/taskboard-client/internal/domain"
)

// Store holds the current access/refresh token pair behind a RWMutex.
type Store struct {
	mu       sync.RWMutex
	pair     domain.TokenPair
	hasPair  bool
	onLogout []func()
}

// NewStore creates an empty credential store.
func NewStore() *Store {
	return &Store{}
}

// Pair returns the current token pair and whether one is installed.
func (s *Store) Pair() (domain.TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, s.hasPair
}

// AccessToken returns the current access token, if any.
func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasPair || s.pair.AccessToken == "" {
		return "", false
	}
	return s.pair.AccessToken, true
}

// Set installs a token pair, e.g. after login.
func (s *Store) Set(pair domain.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.hasPair = true
}

// Replace atomically swaps the stored pair for a new one. The old pair is
// cleared and the new one installed under a single lock acquisition, so no
// concurrent reader can observe a half-updated pair.
func (s *Store) Replace(pair domain.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = domain.TokenPair{}
	s.hasPair = false
	s.pair = pair
	s.hasPair = true
}

// Clear drops the stored pair without notifying logout subscribers.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = domain.TokenPair{}
	s.hasPair = false
}

// OnLogout registers a callback invoked on forced logout.
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// ForceLogout clears the stored pair and notifies all subscribers.
// This is the terminal failure path of the refresh state machine.
func (s *Store) ForceLogout() {
	s.mu.Lock()
	s.pair = domain.TokenPair{}
	s.hasPair = false
	subscribers := make([]func(), len(s.onLogout))
	copy(subscribers, s.onLogout)
	s.mu.Unlock()

	// Callbacks run outside the lock: a subscriber may read the store.
	for _, fn := range subscribers {
		fn()
	}
}

// AccessTokenExpired reports whether the stored access token has expired
// (or will within leeway). The token is introspected without signature
// verification: the client does not hold the signing key, it only needs
// the exp claim. Tokens without exp are treated as non-expiring.
func (s *Store) AccessTokenExpired(leeway time.Duration) bool {
	token, ok := s.AccessToken()
	if !ok {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// Opaque tokens cannot be introspected; let the backend decide.
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().Add(leeway).After(exp.Time)
}
