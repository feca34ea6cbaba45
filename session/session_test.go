package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestLoginGate(t *testing.T) {
	s := New()
	if s.IsLoggedIn() {
		t.Fatal("fresh session reports logged in")
	}
	if s.UserID() != -1 {
		t.Fatalf("fresh session user ID %d", s.UserID())
	}

	s.Begin(7, "alice", "alice@example.com", "tok")
	if !s.IsLoggedIn() {
		t.Fatal("session with user and token reports logged out")
	}
	if s.Token() != "tok" || s.Username() != "alice" || s.Email() != "alice@example.com" {
		t.Fatalf("identity fields lost: %q %q %q", s.Token(), s.Username(), s.Email())
	}

	s.Clear()
	if s.IsLoggedIn() || s.Token() != "" || s.UserID() != -1 {
		t.Fatal("Clear left identity state behind")
	}
}

func TestGateRequiresBothUserAndToken(t *testing.T) {
	s := New()
	s.Begin(0, "ghost", "", "tok")
	if s.IsLoggedIn() {
		t.Fatal("non-positive user ID passed the gate")
	}

	s.Begin(7, "alice", "", "")
	if s.IsLoggedIn() {
		t.Fatal("empty token passed the gate")
	}
}

func TestExpiresAt(t *testing.T) {
	s := New()
	if _, ok := s.ExpiresAt(); ok {
		t.Fatal("logged-out session reported an expiry")
	}

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	s.Begin(1, "alice", "", signed)
	got, ok := s.ExpiresAt()
	if !ok {
		t.Fatal("expiry not parsed")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry %v, want %v", got, exp)
	}

	s.Begin(1, "alice", "", "not-a-jwt")
	if _, ok := s.ExpiresAt(); ok {
		t.Fatal("garbage token reported an expiry")
	}
}
