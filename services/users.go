// Package services exposes the client's remote operations: one type per
// backend entity, each performing its HTTP round trips off the interactive
// goroutine and delivering results back on it through the dispatcher.
package services

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"dimfdesk/models"
	"dimfdesk/remote"
	"dimfdesk/session"
	"dimfdesk/utils"
)

// AuthOutcome is the result of a login or registration attempt.
type AuthOutcome struct {
	Success bool
	Message string
	User    models.User
}

// Users handles authentication and the session gate.
type Users struct {
	api  *remote.Client
	ui   remote.Dispatcher
	sess *session.Session
	log  *zap.SugaredLogger
}

// NewUsers builds the auth service around an explicit session object.
func NewUsers(api *remote.Client, ui remote.Dispatcher, sess *session.Session) *Users {
	return &Users{api: api, ui: ui, sess: sess, log: utils.S()}
}

// Login authenticates and, on success, populates the session. A failed
// attempt leaves the session untouched.
func (u *Users) Login(ctx context.Context, username, password string, done func(AuthOutcome)) {
	remote.Call(u.ui, func() (AuthOutcome, error) {
		var resp models.AuthResponse
		err := u.api.Do(ctx, http.MethodPost, "/auth/login/", models.LoginRequest{Username: username, Password: password}, &resp)
		if err != nil {
			u.log.Infow("login failed", "username", username, "err", err)
			return AuthOutcome{Message: err.Error()}, nil
		}
		u.sess.Begin(resp.User.UserID, resp.User.Username, resp.User.Email, resp.Token)
		u.log.Infow("login succeeded", "user_id", resp.User.UserID, "username", resp.User.Username)
		return AuthOutcome{Success: true, Message: "Login successful", User: resp.User}, nil
	}, func(out AuthOutcome, _ error) {
		done(out)
	})
}

// Register creates an account. When the server echoes a token the session is
// populated immediately, saving the user a second login.
func (u *Users) Register(ctx context.Context, username, email, password string, done func(AuthOutcome)) {
	remote.Call(u.ui, func() (AuthOutcome, error) {
		var resp models.AuthResponse
		err := u.api.Do(ctx, http.MethodPost, "/auth/register", models.RegisterRequest{Username: username, Email: email, Password: password}, &resp)
		if err != nil {
			u.log.Infow("registration failed", "username", username, "err", err)
			return AuthOutcome{Message: err.Error()}, nil
		}
		if resp.Token != "" && resp.User.UserID > 0 {
			u.sess.Begin(resp.User.UserID, resp.User.Username, resp.User.Email, resp.Token)
		}
		return AuthOutcome{Success: true, Message: "Registration successful", User: resp.User}, nil
	}, func(out AuthOutcome, _ error) {
		done(out)
	})
}

// Logout tears the session down synchronously; no remote call is involved.
func (u *Users) Logout() {
	u.sess.Clear()
}

// IsLoggedIn queries the gate without any remote call.
func (u *Users) IsLoggedIn() bool {
	return u.sess.IsLoggedIn()
}
