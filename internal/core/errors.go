// Package core defines the account domain: entities, transaction rules
// and analytics. It has no I/O; persistence and transport live in the
// outer layers.
//
// Errors here form the taxonomy the HTTP layer translates to status
// codes: validation, conflict, auth and domain (business-rule) errors.
// Every failure leaves the account unmodified.
package core

import "fmt"

// ValidationError reports malformed input: username or password rules,
// non-positive amounts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports a case-insensitive duplicate username or
// target name.
type ConflictError struct {
	Resource string // "account" or "target"
	Name     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Name)
}

// AuthError reports bad credentials or a missing session.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// DomainError reports a business-rule violation: completed target,
// active cooldown, empty target balance, missing target selection.
// RemainingDays is set only for the withdrawal cooldown case.
type DomainError struct {
	Reason        string
	RemainingDays int
}

func (e *DomainError) Error() string {
	return e.Reason
}

var (
	// ErrTargetRequired is returned when a target operation has no
	// target selected.
	ErrTargetRequired = &DomainError{Reason: "no target selected"}

	// ErrTargetCompleted rejects saves into a completed target.
	ErrTargetCompleted = &DomainError{Reason: "target already completed"}

	// ErrTargetNotFound is returned for an unknown target name.
	ErrTargetNotFound = &DomainError{Reason: "target not found"}

	// ErrTargetEmpty rejects withdrawal from a target with no balance.
	ErrTargetEmpty = &DomainError{Reason: "target balance is empty"}

	// ErrWithdrawTooSmall rejects withdrawal when 30% of the balance
	// floors to zero.
	ErrWithdrawTooSmall = &DomainError{Reason: "balance too small for a 30% withdrawal"}

	// ErrBadCredentials is returned on login with an unknown username
	// or a password mismatch.
	ErrBadCredentials = &AuthError{Reason: "wrong username or password"}
)

// NewCooldownError builds the withdrawal-cooldown violation with the
// days left until the next withdrawal is allowed.
func NewCooldownError(remainingDays int) *DomainError {
	return &DomainError{
		Reason:        fmt.Sprintf("withdrawal cooldown active, try again in %d days", remainingDays),
		RemainingDays: remainingDays,
	}
}
