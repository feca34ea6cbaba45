// Package session holds the authenticated user state for one client instance.
// It is an explicit object handed to the services rather than process-global
// state, so tests can run several sessions side by side.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session carries the identity established by a successful login.
// Invariant: a token is present if and only if the user ID is positive.
type Session struct {
	mu       sync.Mutex
	userID   int
	username string
	email    string
	token    string
}

// New returns a logged-out session.
func New() *Session {
	return &Session{userID: -1}
}

// Begin installs the identity from a successful login or registration.
func (s *Session) Begin(userID int, username, email, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.username = username
	s.email = email
	s.token = token
}

// Clear logs the session out synchronously.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = -1
	s.username = ""
	s.email = ""
	s.token = ""
}

// IsLoggedIn reports whether a user is authenticated. No remote call is made.
func (s *Session) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID > 0 && s.token != ""
}

// Token implements remote.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// UserID returns the authenticated user's ID, or -1.
func (s *Session) UserID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Username returns the authenticated user's name, or "".
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Email returns the authenticated user's email, or "".
func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// ExpiresAt reads the expiry claim out of the bearer token without verifying
// the signature; the client never holds the signing secret. The second return
// is false when there is no token or it carries no parseable expiry.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
