// Package services orchestrates domain operations: load the account
// from the store, apply the rule, persist the full record, then notify.
// Domain failures abort before the store is touched, so a failed
// operation never leaves partial state behind.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"celengan/internal/core"
	"celengan/internal/session"
	"celengan/internal/storage"
)

// AccountService handles registration, login and session resolution.
type AccountService struct {
	store    storage.AccountStore
	sessions *session.Manager
}

func NewAccountService(store storage.AccountStore, sessions *session.Manager) *AccountService {
	return &AccountService{store: store, sessions: sessions}
}

// Register validates and creates a new account. Checks run in a fixed
// order and the first violation wins: username format, duplicate,
// password length, password match.
func (s *AccountService) Register(ctx context.Context, username, password, confirm string) (*core.Account, error) {
	if err := core.ValidateUsername(username); err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check duplicate username: %w", err)
	}
	if exists {
		return nil, &core.ConflictError{Resource: "account", Name: username}
	}

	if err := core.ValidatePassword(password); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, &core.ValidationError{Field: "confirm", Reason: "passwords do not match"}
	}

	account := core.NewAccount(username, password, time.Now())
	if err := s.store.Put(ctx, account); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}

	slog.InfoContext(ctx, "Account registered", "username", account.Key())
	return account, nil
}

// Login checks credentials case-insensitively on the username and with
// an exact password match, then issues a session token.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, *core.Account, error) {
	account, err := s.store.Get(ctx, username)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return "", nil, core.ErrBadCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("load account: %w", err)
	}
	if account.Password != password {
		return "", nil, core.ErrBadCredentials
	}

	token, err := s.sessions.Create(account.Key())
	if err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	slog.InfoContext(ctx, "Login", "username", account.Key())
	return token, account, nil
}

// Logout drops the session. Unknown tokens are ignored, matching the
// idempotent nature of the action.
func (s *AccountService) Logout(ctx context.Context, token string) {
	s.sessions.Destroy(token)
	slog.DebugContext(ctx, "Logout")
}

// Authenticate resolves a session token to its account.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*core.Account, error) {
	username, ok := s.sessions.Lookup(token)
	if !ok {
		return nil, &core.AuthError{Reason: "not logged in"}
	}
	account, err := s.store.Get(ctx, username)
	if errors.Is(err, storage.ErrAccountNotFound) {
		// Session outlived the record; treat as logged out.
		s.sessions.Destroy(token)
		return nil, &core.AuthError{Reason: "not logged in"}
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}
