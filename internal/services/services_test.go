package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"celengan/internal/amqp"
	"celengan/internal/core"
	"celengan/internal/session"
	"celengan/internal/storage"
)

type eventRecorder struct {
	events []*amqp.TransactionEvent
	fail   bool
}

func (r *eventRecorder) PublishTransaction(_ context.Context, event *amqp.TransactionEvent) error {
	if r.fail {
		return errors.New("broker down")
	}
	r.events = append(r.events, event)
	return nil
}

func newFixture(t *testing.T) (*storage.MemoryStore, *session.Manager, *AccountService) {
	t.Helper()
	store := storage.NewMemoryStore()
	sessions := session.NewManager(time.Hour)
	t.Cleanup(sessions.Stop)
	return store, sessions, NewAccountService(store, sessions)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	_, _, accounts := newFixture(t)

	created, err := accounts.Register(ctx, "Budi Santoso", "secret1", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.MainBalance != 0 || len(created.Targets) != 0 || len(created.Log) != 0 {
		t.Fatalf("new account not empty: %+v", created)
	}

	token, account, err := accounts.Login(ctx, "budi santoso", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("no session token issued")
	}
	if account.Username != "Budi Santoso" {
		t.Fatalf("display casing lost: %q", account.Username)
	}

	got, err := accounts.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.Key() != "budi santoso" {
		t.Fatalf("session bound to %q", got.Key())
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	ctx := context.Background()
	_, _, accounts := newFixture(t)

	// Username format is checked before anything else.
	_, err := accounts.Register(ctx, "x", "short", "different")
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Field != "username" {
		t.Fatalf("expected username validation first, got %v", err)
	}

	if _, err := accounts.Register(ctx, "budi", "secret1", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Duplicate beats the bad password for an existing name.
	_, err = accounts.Register(ctx, "BUDI", "x", "y")
	var cerr *core.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError for case-variant duplicate, got %v", err)
	}

	// Password length before mismatch.
	_, err = accounts.Register(ctx, "siti", "five5", "other")
	if !errors.As(err, &verr) || verr.Field != "password" {
		t.Fatalf("expected password validation, got %v", err)
	}
	_, err = accounts.Register(ctx, "siti", "secret1", "secret2")
	if !errors.As(err, &verr) || verr.Field != "confirm" {
		t.Fatalf("expected confirm mismatch, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	_, _, accounts := newFixture(t)
	if _, err := accounts.Register(ctx, "budi", "secret1", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	var aerr *core.AuthError
	if _, _, err := accounts.Login(ctx, "budi", "wrong"); !errors.As(err, &aerr) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, _, err := accounts.Login(ctx, "ghost", "secret1"); !errors.As(err, &aerr) {
		t.Fatalf("unknown user: got %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ctx := context.Background()
	_, _, accounts := newFixture(t)
	if _, err := accounts.Register(ctx, "budi", "secret1", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := accounts.Login(ctx, "budi", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	accounts.Logout(ctx, token)
	if _, err := accounts.Authenticate(ctx, token); err == nil {
		t.Fatalf("expected auth failure after logout")
	}
}

func TestSaveSpendPersistAndPublish(t *testing.T) {
	ctx := context.Background()
	store, _, accounts := newFixture(t)
	recorder := &eventRecorder{}
	savings := NewSavingsService(store, recorder)

	account, err := accounts.Register(ctx, "budi", "secret1", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := savings.SaveToMain(ctx, account, 1000, "gaji"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := savings.SpendFromMain(ctx, account, 400, ""); err != nil {
		t.Fatalf("spend: %v", err)
	}

	// Every mutation is persisted whole.
	stored, err := store.Get(ctx, "budi")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.MainBalance != 600 || len(stored.Log) != 2 {
		t.Fatalf("stored balance=%d log=%d", stored.MainBalance, len(stored.Log))
	}

	if len(recorder.events) != 2 {
		t.Fatalf("published %d events, want 2", len(recorder.events))
	}
	if recorder.events[0].Source != SourceMain || recorder.events[0].Kind != core.TxSave {
		t.Fatalf("first event = %+v", recorder.events[0])
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	store, _, accounts := newFixture(t)
	savings := NewSavingsService(store, &eventRecorder{fail: true})

	account, err := accounts.Register(ctx, "budi", "secret1", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := savings.SaveToMain(ctx, account, 1000, ""); err != nil {
		t.Fatalf("save should survive a broker failure: %v", err)
	}
	stored, err := store.Get(ctx, "budi")
	if err != nil || stored.MainBalance != 1000 {
		t.Fatalf("persist lost: %v balance=%d", err, stored.MainBalance)
	}
}

func TestSaveToTargetFlow(t *testing.T) {
	ctx := context.Background()
	store, _, accounts := newFixture(t)
	savings := NewSavingsService(store, nil)
	targets := NewTargetService(store)

	account, err := accounts.Register(ctx, "budi", "secret1", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := savings.SaveToTarget(ctx, account, "", 100, ""); !errors.Is(err, core.ErrTargetRequired) {
		t.Fatalf("missing selection: got %v", err)
	}
	if _, _, err := savings.SaveToTarget(ctx, account, "Laptop", 100, ""); !errors.Is(err, core.ErrTargetNotFound) {
		t.Fatalf("unknown target: got %v", err)
	}

	if _, err := targets.Create(ctx, account, "Laptop", 1_000_000); err != nil {
		t.Fatalf("create target: %v", err)
	}

	_, completed, err := savings.SaveToTarget(ctx, account, "laptop", 1_200_000, "")
	if err != nil {
		t.Fatalf("save to target: %v", err)
	}
	if !completed {
		t.Fatalf("expected completion")
	}

	stored, err := store.Get(ctx, "budi")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	tgt, ok := stored.Target("Laptop")
	if !ok || tgt.Balance != 1_000_000 || !tgt.Completed() {
		t.Fatalf("stored target wrong: %+v", tgt)
	}

	// Completed targets reject further saves and stay out of the
	// selectable list.
	if _, _, err := savings.SaveToTarget(ctx, stored, "Laptop", 1, ""); !errors.Is(err, core.ErrTargetCompleted) {
		t.Fatalf("expected ErrTargetCompleted, got %v", err)
	}
	if names := targets.ListSelectable(ctx, stored); len(names) != 0 {
		t.Fatalf("selectable = %v", names)
	}
}

func TestWithdrawalPlanAndCommit(t *testing.T) {
	ctx := context.Background()
	store, _, accounts := newFixture(t)
	savings := NewSavingsService(store, nil)
	targets := NewTargetService(store)

	account, err := accounts.Register(ctx, "budi", "secret1", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := targets.Create(ctx, account, "Motor", 10_000_000); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := savings.SaveToTarget(ctx, account, "Motor", 1_000_000, ""); err != nil {
		t.Fatalf("save: %v", err)
	}

	planned, err := savings.PlanTargetWithdrawal(ctx, account, "Motor")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if planned != 300_000 {
		t.Fatalf("planned = %d", planned)
	}

	tx, err := savings.WithdrawFromTarget(ctx, account, "Motor", "darurat")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if tx.Amount != 300_000 {
		t.Fatalf("withdrawn = %d", tx.Amount)
	}

	// The second attempt hits the cooldown with the full year left.
	_, err = savings.PlanTargetWithdrawal(ctx, account, "Motor")
	var derr *core.DomainError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if derr.RemainingDays != core.WithdrawCooldownDays {
		t.Fatalf("remaining days = %d", derr.RemainingDays)
	}
}

func TestDeleteTarget(t *testing.T) {
	ctx := context.Background()
	store, _, accounts := newFixture(t)
	targets := NewTargetService(store)

	account, err := accounts.Register(ctx, "budi", "secret1", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := targets.Create(ctx, account, "Laptop", 1000); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := targets.Delete(ctx, account, "laptop"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	stored, err := store.Get(ctx, "budi")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Targets) != 0 {
		t.Fatalf("target survived delete")
	}
}
