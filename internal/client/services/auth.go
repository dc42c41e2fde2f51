package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/storykeeper/internal/client/events"
	"github.com/dmitrijs2005/storykeeper/internal/client/session"
)

const minPasswordLength = 8

// AuthResult is the tagged outcome of register and login.
type AuthResult struct {
	Error   bool
	Message string
}

// AuthService defines authentication operations for the UI.
//
// Contract:
//   - Register: validate input, then create the account remotely.
//   - Login: validate input, authenticate and persist the session.
//   - Logout: drop the session locally.
//   - IsLoggedIn: a token is present and not expired.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) AuthResult
	Login(ctx context.Context, email, password string) AuthResult
	Logout(ctx context.Context) error
	IsLoggedIn() bool
	Whoami() session.Info
}

type authService struct {
	deps Deps
}

func NewAuthService(deps Deps) AuthService {
	return &authService{deps: deps.withDefaults()}
}

func (a *authService) Register(ctx context.Context, name, email, password string) AuthResult {
	name, email, password = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(password)

	if name == "" || email == "" || password == "" {
		return AuthResult{Error: true, Message: "Name, email, and password are required"}
	}
	if len(password) < minPasswordLength {
		return AuthResult{Error: true, Message: "Password must be at least 8 characters long"}
	}

	res, err := a.deps.Client.Register(ctx, name, email, password)
	if err != nil {
		a.deps.Logger.Error(ctx, "registration network error", "error", err)
		return AuthResult{Error: true, Message: "Network error: " + err.Error()}
	}
	if res.Error {
		a.deps.Logger.Warn(ctx, "registration failed", "message", res.Message)
	} else {
		a.deps.Logger.Info(ctx, "registration successful", "email", email)
	}
	return AuthResult{Error: res.Error, Message: res.Message}
}

func (a *authService) Login(ctx context.Context, email, password string) AuthResult {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)

	if email == "" || password == "" {
		return AuthResult{Error: true, Message: "Email and password are required"}
	}

	res, err := a.deps.Client.Login(ctx, email, password)
	if err != nil {
		a.deps.Logger.Error(ctx, "login network error", "error", err)
		return AuthResult{Error: true, Message: "Network error: " + err.Error()}
	}
	if res.Error || res.LoginResult == nil {
		a.deps.Logger.Warn(ctx, "login failed", "message", res.Message)
		return AuthResult{Error: true, Message: res.Message}
	}

	lr := res.LoginResult
	if err := a.deps.Session.Set(ctx, session.Info{Token: lr.Token, UserID: lr.UserID, Name: lr.Name}); err != nil {
		// The in-memory session is set; only persistence across restarts is lost.
		a.deps.Logger.Warn(ctx, "session not persisted", "error", err)
	}

	a.deps.Logger.Info(ctx, "login successful", "name", lr.Name)
	a.deps.Events.LoginSucceeded.Emit(events.LoginSucceeded{UserID: lr.UserID, Name: lr.Name})
	return AuthResult{Error: false, Message: res.Message}
}

func (a *authService) Logout(ctx context.Context) error {
	return a.deps.Session.Clear(ctx)
}

func (a *authService) IsLoggedIn() bool {
	return a.deps.Session.IsLoggedIn()
}

func (a *authService) Whoami() session.Info {
	return a.deps.Session.Info()
}
