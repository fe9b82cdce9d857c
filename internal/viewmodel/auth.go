package viewmodel

import (
	"context"
	"errors"
	"strings"
	"sync"

	"finman/internal/core"
	"finman/internal/gateway"
)

// ErrMissingInput marks a submit that never reached the backend.
var ErrMissingInput = errors.New("missing or invalid input")

// AuthAPI is the account surface of the backend.
type AuthAPI interface {
	Register(ctx context.Context, req gateway.RegisterRequest) error
	Login(ctx context.Context, username, password string) (string, error)
	CurrentUser(ctx context.Context) (core.User, error)
}

// SessionControl is the slice of the session store the auth screens use.
type SessionControl interface {
	SetCredential(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	IsAuthenticated() bool
}

// Auth drives the sign-in and sign-up screens and holds the profile of
// the signed-in account for the header.
type Auth struct {
	mu      sync.Mutex
	api     AuthAPI
	session SessionControl
	user    core.User
	hasUser bool
	errMsg  string
}

func NewAuth(api AuthAPI, session SessionControl) *Auth {
	return &Auth{api: api, session: session}
}

// SignIn exchanges credentials for a token, persists it, and only then
// treats the session as live. The profile fetch afterwards is best
// effort; the header falls back to the typed username.
func (a *Auth) SignIn(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		a.setError("Please enter your username and password.")
		return ErrMissingInput
	}

	token, err := a.api.Login(ctx, username, password)
	if err != nil {
		a.setError(gateway.UserMessage(err))
		return err
	}
	if err := a.session.SetCredential(ctx, token); err != nil {
		a.setError("Could not store your session. Please try again.")
		return err
	}

	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		user = core.User{Username: username}
	}

	a.mu.Lock()
	a.user = user
	a.hasUser = true
	a.errMsg = ""
	a.mu.Unlock()
	return nil
}

// SignUp registers a new account. The password policy is enforced here
// too, not just in the rendered checklist.
func (a *Auth) SignUp(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		a.setError("Please fill in all fields.")
		return ErrMissingInput
	}
	if policy := core.CheckPassword(password); !policy.Valid() {
		a.setError(policy.Message())
		return ErrMissingInput
	}

	req := gateway.RegisterRequest{Username: username, Email: email, Password: password}
	if err := a.api.Register(ctx, req); err != nil {
		a.setError(gateway.UserMessage(err))
		return err
	}
	a.setError("")
	return nil
}

// SignOut clears the session after the user confirmed the dialog.
func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.user = core.User{}
	a.hasUser = false
	a.errMsg = ""
	a.mu.Unlock()
	return a.session.Clear(ctx)
}

// RefreshProfile fetches the account behind a restored session, for the
// header after the startup probe succeeded.
func (a *Auth) RefreshProfile(ctx context.Context) error {
	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.user = user
	a.hasUser = true
	a.mu.Unlock()
	return nil
}

func (a *Auth) Profile() (core.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user, a.hasUser
}

func (a *Auth) ErrorMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

func (a *Auth) setError(msg string) {
	a.mu.Lock()
	a.errMsg = msg
	a.mu.Unlock()
}
