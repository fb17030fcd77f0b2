package core

import (
	"sort"
	"strings"
	"time"
)

const (
	// WithdrawCooldownDays is the minimum interval between two
	// withdrawals from the same target.
	WithdrawCooldownDays = 365

	// Withdrawal takes floor(balance * 3/10); the user never picks
	// an amount.
	withdrawCapNum = 3
	withdrawCapDen = 10
)

// SaveToMain deposits into the main balance and appends to the account
// log. The returned transaction is the appended entry.
func (a *Account) SaveToMain(amount int64, note string, now time.Time) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, &ValidationError{Field: "amount", Reason: "must be greater than 0"}
	}
	tx := Transaction{At: now, Kind: TxSave, Amount: amount, Note: NormalizeNote(note)}
	a.MainBalance += amount
	a.Log = append(a.Log, tx)
	return tx, nil
}

// SpendFromMain withdraws from the main balance. Spending more than the
// balance clamps it to zero rather than failing; the logged amount is
// the requested one.
func (a *Account) SpendFromMain(amount int64, note string, now time.Time) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, &ValidationError{Field: "amount", Reason: "must be greater than 0"}
	}
	if amount > a.MainBalance {
		a.MainBalance = 0
	} else {
		a.MainBalance -= amount
	}
	tx := Transaction{At: now, Kind: TxSpend, Amount: amount, Note: NormalizeNote(note)}
	a.Log = append(a.Log, tx)
	return tx, nil
}

// AddTarget creates a new active target. Names collide
// case-insensitively within the account.
func (a *Account) AddTarget(name string, goal int64) (*Target, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if goal <= 0 {
		return nil, &ValidationError{Field: "goal", Reason: "must be greater than 0"}
	}
	key := strings.ToLower(name)
	if _, exists := a.Targets[key]; exists {
		return nil, &ConflictError{Resource: "target", Name: name}
	}
	t := &Target{
		Name:   name,
		Goal:   goal,
		Status: TargetActive,
		Log:    []Transaction{},
	}
	if a.Targets == nil {
		a.Targets = make(map[string]*Target)
	}
	a.Targets[key] = t
	return t, nil
}

// RemoveTarget deletes a target and its history. There is no soft
// delete; completed targets can be removed too.
func (a *Account) RemoveTarget(name string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return ErrTargetRequired
	}
	if _, exists := a.Targets[key]; !exists {
		return ErrTargetNotFound
	}
	delete(a.Targets, key)
	return nil
}

// SelectableTargets lists display names of targets still accepting
// deposits, sorted for stable output.
func (a *Account) SelectableTargets() []string {
	names := make([]string, 0, len(a.Targets))
	for _, t := range a.Targets {
		if !t.Completed() {
			names = append(names, t.Name)
		}
	}
	sortStrings(names)
	return names
}

// TargetNames lists all target display names, sorted.
func (a *Account) TargetNames() []string {
	names := make([]string, 0, len(a.Targets))
	for _, t := range a.Targets {
		names = append(names, t.Name)
	}
	sortStrings(names)
	return names
}

// Save deposits into the target. The transaction always carries the
// requested amount; crossing the goal clamps only the balance, so the
// surplus shows up in the log and analytics but not in the balance.
// Completion is terminal and further saves are rejected. The second
// return reports whether this save completed the target.
func (t *Target) Save(amount int64, note string, now time.Time) (Transaction, bool, error) {
	if amount <= 0 {
		return Transaction{}, false, &ValidationError{Field: "amount", Reason: "must be greater than 0"}
	}
	if t.Completed() {
		return Transaction{}, false, ErrTargetCompleted
	}

	tx := Transaction{At: now, Kind: TxSave, Amount: amount, Note: NormalizeNote(note)}
	t.Log = append(t.Log, tx)

	completed := false
	if t.Balance += amount; t.Balance >= t.Goal {
		t.Balance = t.Goal
		t.Status = TargetCompleted
		completed = true
	}
	return tx, completed, nil
}

// WithdrawCap returns floor(balance * 30%).
func (t *Target) WithdrawCap() int64 {
	return t.Balance * withdrawCapNum / withdrawCapDen
}

// PlanWithdrawal checks whether a withdrawal is allowed right now and
// returns the exact amount it would take, without mutating anything.
// The caller is expected to get user confirmation before committing.
func (t *Target) PlanWithdrawal(now time.Time) (int64, error) {
	if t.LastWithdrawAt != nil {
		elapsed := int(now.Sub(*t.LastWithdrawAt).Hours() / 24)
		if elapsed < WithdrawCooldownDays {
			return 0, NewCooldownError(WithdrawCooldownDays - elapsed)
		}
	}
	if t.Balance <= 0 {
		return 0, ErrTargetEmpty
	}
	amount := t.WithdrawCap()
	if amount <= 0 {
		return 0, ErrWithdrawTooSmall
	}
	return amount, nil
}

// Withdraw commits a planned withdrawal. It re-runs the plan checks
// against current state, takes the capped amount, stamps the cooldown
// and logs a spend with the capped amount (never a requested one).
func (t *Target) Withdraw(note string, now time.Time) (Transaction, error) {
	amount, err := t.PlanWithdrawal(now)
	if err != nil {
		return Transaction{}, err
	}
	t.Balance -= amount
	at := now
	t.LastWithdrawAt = &at
	tx := Transaction{At: now, Kind: TxSpend, Amount: amount, Note: NormalizeNote(note)}
	t.Log = append(t.Log, tx)
	return tx, nil
}

func sortStrings(s []string) {
	sort.Slice(s, func(i, j int) bool {
		return strings.ToLower(s[i]) < strings.ToLower(s[j])
	})
}
