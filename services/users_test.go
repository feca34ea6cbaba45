package services

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"dimfdesk/mockapi"
	"dimfdesk/remote"
	"dimfdesk/session"
)

func newAuthEnv(t *testing.T, opts mockapi.Options) (*Users, *session.Session, *mockapi.Store) {
	t.Helper()
	store := mockapi.NewStore()
	if _, ok := store.AddUser("alice", "alice@example.com", "s3cret"); !ok {
		t.Fatal("seeding user failed")
	}
	srv := httptest.NewServer(mockapi.NewRouter(store, opts))
	t.Cleanup(srv.Close)

	sess := session.New()
	api := remote.NewClient(srv.URL+"/api", time.Second, 5*time.Second, sess, nil)
	return NewUsers(api, immediate{}, sess), sess, store
}

func awaitAuth(t *testing.T, ch <-chan AuthOutcome) AuthOutcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(5 * time.Second):
		t.Fatal("auth outcome never delivered")
		return AuthOutcome{}
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	users, sess, _ := newAuthEnv(t, mockapi.Options{})

	ch := make(chan AuthOutcome, 1)
	users.Login(context.Background(), "alice", "s3cret", func(out AuthOutcome) { ch <- out })

	out := awaitAuth(t, ch)
	if !out.Success || out.Message != "Login successful" {
		t.Fatalf("outcome %+v", out)
	}
	if out.User.Username != "alice" || out.User.UserID <= 0 {
		t.Fatalf("user %+v", out.User)
	}
	if !sess.IsLoggedIn() || !users.IsLoggedIn() {
		t.Fatal("session not established after successful login")
	}
	if _, ok := sess.ExpiresAt(); !ok {
		t.Fatal("issued token carries no expiry")
	}
}

func TestFailedLoginLeavesSessionUntouched(t *testing.T) {
	users, sess, _ := newAuthEnv(t, mockapi.Options{})

	ch := make(chan AuthOutcome, 1)
	users.Login(context.Background(), "alice", "wrong", func(out AuthOutcome) { ch <- out })

	out := awaitAuth(t, ch)
	if out.Success {
		t.Fatal("wrong password accepted")
	}
	if out.Message != "Invalid credentials" {
		t.Fatalf("message %q, want the server's detail text", out.Message)
	}
	if sess.IsLoggedIn() || sess.Token() != "" {
		t.Fatal("failed login mutated the session")
	}
}

func TestRegisterLogsStraightIn(t *testing.T) {
	users, sess, _ := newAuthEnv(t, mockapi.Options{})

	ch := make(chan AuthOutcome, 1)
	users.Register(context.Background(), "bob", "bob@example.com", "hunter2", func(out AuthOutcome) { ch <- out })

	out := awaitAuth(t, ch)
	if !out.Success {
		t.Fatalf("outcome %+v", out)
	}
	if !sess.IsLoggedIn() {
		t.Fatal("registration response carried a token but no session was established")
	}
	if sess.Username() != "bob" {
		t.Fatalf("session user %q", sess.Username())
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users, sess, _ := newAuthEnv(t, mockapi.Options{})

	ch := make(chan AuthOutcome, 1)
	users.Register(context.Background(), "alice", "other@example.com", "pw", func(out AuthOutcome) { ch <- out })

	out := awaitAuth(t, ch)
	if out.Success {
		t.Fatal("duplicate username accepted")
	}
	if out.Message != "User with this username already exists" {
		t.Fatalf("message %q", out.Message)
	}
	if sess.IsLoggedIn() {
		t.Fatal("failed registration mutated the session")
	}
}

func TestLogoutIsSynchronous(t *testing.T) {
	users, sess, _ := newAuthEnv(t, mockapi.Options{})
	sess.Begin(1, "alice", "alice@example.com", "tok")

	users.Logout()
	if users.IsLoggedIn() {
		t.Fatal("still logged in after Logout returned")
	}
}
