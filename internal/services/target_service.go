package services

import (
	"context"
	"fmt"
	"log/slog"

	"celengan/internal/core"
	"celengan/internal/storage"
)

// TargetService manages the lifecycle of savings targets.
type TargetService struct {
	store storage.AccountStore
}

func NewTargetService(store storage.AccountStore) *TargetService {
	return &TargetService{store: store}
}

// Create adds a new target to the account and persists it.
func (s *TargetService) Create(ctx context.Context, account *core.Account, name string, goal int64) (*core.Target, error) {
	target, err := account.AddTarget(name, goal)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, account); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}

	slog.InfoContext(ctx, "Target created",
		"username", account.Key(),
		"target", target.Name,
		"goal", target.Goal)
	return target, nil
}

// Delete removes a target and its history. The confirmation dialog is
// the client's job; this call is the confirmed action.
func (s *TargetService) Delete(ctx context.Context, account *core.Account, name string) error {
	if err := account.RemoveTarget(name); err != nil {
		return err
	}
	if err := s.store.Put(ctx, account); err != nil {
		return fmt.Errorf("persist account: %w", err)
	}

	slog.InfoContext(ctx, "Target deleted",
		"username", account.Key(),
		"target", name)
	return nil
}

// ListSelectable returns the names of targets still accepting deposits.
func (s *TargetService) ListSelectable(_ context.Context, account *core.Account) []string {
	return account.SelectableTargets()
}
