// Package storage implements the account store: a durable mapping of
// lowercase username to the full account record. Every domain mutation
// is followed by a whole-record Put, so no partial state ever survives
// a single operation.
package storage

import (
	"context"
	"errors"

	"celengan/internal/core"
)

// ErrAccountNotFound is returned by Get for an unknown username. It is
// an infrastructure-level sentinel; the services translate it into the
// domain taxonomy where needed.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore is the persistence gateway port. Usernames are
// normalized to lowercase by the implementations.
type AccountStore interface {
	// Get returns the account for the username, or ErrAccountNotFound.
	Get(ctx context.Context, username string) (*core.Account, error)

	// Put upserts the full account record under its lowercase key.
	Put(ctx context.Context, account *core.Account) error

	// Exists reports whether a case-insensitive duplicate is present.
	Exists(ctx context.Context, username string) (bool, error)

	Close() error
}
