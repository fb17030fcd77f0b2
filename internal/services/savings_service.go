package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"celengan/internal/amqp"
	"celengan/internal/core"
	"celengan/internal/storage"
)

const (
	SourceMain   = "main"
	SourceTarget = "target"
)

// TransactionPublisher is the outbound event port. The AMQP client
// implements it; tests use a recorder.
type TransactionPublisher interface {
	PublishTransaction(ctx context.Context, event *amqp.TransactionEvent) error
}

// SavingsService applies save/spend rules to an account and persists
// the result. Events are published best-effort after the persist, the
// way the store is the source of truth and the bus is a convenience.
type SavingsService struct {
	store  storage.AccountStore
	events TransactionPublisher
	now    func() time.Time
}

func NewSavingsService(store storage.AccountStore, events TransactionPublisher) *SavingsService {
	return &SavingsService{
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// SaveToMain deposits into the main balance.
func (s *SavingsService) SaveToMain(ctx context.Context, account *core.Account, amount int64, note string) (core.Transaction, error) {
	tx, err := account.SaveToMain(amount, note, s.now())
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Put(ctx, account); err != nil {
		return core.Transaction{}, fmt.Errorf("persist account: %w", err)
	}
	s.publish(ctx, account, SourceMain, "", tx)
	return tx, nil
}

// SaveToTarget deposits into a named target. The bool reports whether
// this deposit completed the target.
func (s *SavingsService) SaveToTarget(ctx context.Context, account *core.Account, targetName string, amount int64, note string) (core.Transaction, bool, error) {
	if targetName == "" {
		return core.Transaction{}, false, core.ErrTargetRequired
	}
	target, ok := account.Target(targetName)
	if !ok {
		return core.Transaction{}, false, core.ErrTargetNotFound
	}

	tx, completed, err := target.Save(amount, note, s.now())
	if err != nil {
		return core.Transaction{}, false, err
	}
	if err := s.store.Put(ctx, account); err != nil {
		return core.Transaction{}, false, fmt.Errorf("persist account: %w", err)
	}

	if completed {
		slog.InfoContext(ctx, "Target completed",
			"username", account.Key(),
			"target", target.Name,
			"goal", target.Goal)
	}
	s.publish(ctx, account, SourceTarget, target.Name, tx)
	return tx, completed, nil
}

// SpendFromMain withdraws from the main balance, clamping to zero on
// overspend.
func (s *SavingsService) SpendFromMain(ctx context.Context, account *core.Account, amount int64, note string) (core.Transaction, error) {
	tx, err := account.SpendFromMain(amount, note, s.now())
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Put(ctx, account); err != nil {
		return core.Transaction{}, fmt.Errorf("persist account: %w", err)
	}
	s.publish(ctx, account, SourceMain, "", tx)
	return tx, nil
}

// PlanTargetWithdrawal reports the amount a withdrawal would take right
// now, without committing anything. The caller shows it to the user
// for confirmation.
func (s *SavingsService) PlanTargetWithdrawal(ctx context.Context, account *core.Account, targetName string) (int64, error) {
	if targetName == "" {
		return 0, core.ErrTargetRequired
	}
	target, ok := account.Target(targetName)
	if !ok {
		return 0, core.ErrTargetNotFound
	}
	return target.PlanWithdrawal(s.now())
}

// WithdrawFromTarget commits a confirmed withdrawal: exactly 30% of the
// current balance (floored), then starts the cooldown.
func (s *SavingsService) WithdrawFromTarget(ctx context.Context, account *core.Account, targetName, note string) (core.Transaction, error) {
	if targetName == "" {
		return core.Transaction{}, core.ErrTargetRequired
	}
	target, ok := account.Target(targetName)
	if !ok {
		return core.Transaction{}, core.ErrTargetNotFound
	}

	tx, err := target.Withdraw(note, s.now())
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Put(ctx, account); err != nil {
		return core.Transaction{}, fmt.Errorf("persist account: %w", err)
	}
	s.publish(ctx, account, SourceTarget, target.Name, tx)
	return tx, nil
}

// publish sends the event after a successful persist. Failures are
// logged, never surfaced: the record is already safe in the store.
func (s *SavingsService) publish(ctx context.Context, account *core.Account, source, target string, tx core.Transaction) {
	if s.events == nil {
		return
	}
	event := amqp.NewTransactionEvent(account.Key(), source, target, tx)
	if err := s.events.PublishTransaction(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"error", err,
			"username", account.Key(),
			"source", source,
			"kind", tx.Kind)
	}
}
