package core

import (
	"regexp"
	"strings"
	"time"
)

const (
	TxSave  TxKind = "save"
	TxSpend TxKind = "spend"

	TargetActive    TargetStatus = "active"
	TargetCompleted TargetStatus = "completed"

	// DefaultNote is stored when a transaction carries no note.
	DefaultNote = "-"

	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 6
	MaxNoteLen     = 120
)

type (
	TxKind       string
	TargetStatus string

	// Transaction is a single save or spend entry in an account or
	// target log.
	Transaction struct {
		At     time.Time `json:"at"`
		Kind   TxKind    `json:"kind"`
		Amount int64     `json:"amount"`
		Note   string    `json:"note"`
	}

	// Target is a named savings goal with its own balance and log.
	// Name keeps the casing the user typed; map keys are lowercase.
	Target struct {
		Name           string        `json:"name"`
		Goal           int64         `json:"goal"`
		Balance        int64         `json:"balance"`
		Status         TargetStatus  `json:"status"`
		Log            []Transaction `json:"log"`
		LastWithdrawAt *time.Time    `json:"last_withdraw_at,omitempty"`
	}

	// Account is the full per-user record the store persists after
	// every mutation.
	Account struct {
		Username    string             `json:"username"`
		Password    string             `json:"password"`
		MainBalance int64              `json:"main_balance"`
		Targets     map[string]*Target `json:"targets"`
		Log         []Transaction      `json:"log"`
		CreatedAt   time.Time          `json:"created_at"`
	}
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)

// NormalizeUsername lowercases a username for use as a store key.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks length and charset. Display casing is kept
// elsewhere; only the key is normalized.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return &ValidationError{Field: "username", Reason: "must be 3-32 characters"}
	}
	if !usernamePattern.MatchString(username) {
		return &ValidationError{Field: "username", Reason: "only letters, digits, space, _ or - allowed"}
	}
	return nil
}

// ValidatePassword checks the minimum length rule.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	return nil
}

// NewAccount creates an empty account. The username must already be
// validated; casing is kept for display.
func NewAccount(username, password string, now time.Time) *Account {
	return &Account{
		Username:  username,
		Password:  password,
		Targets:   make(map[string]*Target),
		Log:       []Transaction{},
		CreatedAt: now,
	}
}

// Key returns the lowercase store key for this account.
func (a *Account) Key() string {
	return NormalizeUsername(a.Username)
}

// Target looks up a target by name, case-insensitively.
func (a *Account) Target(name string) (*Target, bool) {
	t, ok := a.Targets[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// NormalizeNote trims a note and substitutes the default marker when
// empty. Notes longer than MaxNoteLen are truncated.
func NormalizeNote(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return DefaultNote
	}
	if len(note) > MaxNoteLen {
		note = note[:MaxNoteLen]
	}
	return note
}

// Completed reports whether the target has reached its goal.
func (t *Target) Completed() bool {
	return t.Status == TargetCompleted
}

// Progress returns the saved percentage toward the goal, capped at 100.
func (t *Target) Progress() int {
	if t.Goal <= 0 {
		return 0
	}
	pct := int(t.Balance * 100 / t.Goal)
	if pct > 100 {
		pct = 100
	}
	return pct
}
