// Package ledger defines the outbound port for the transaction export:
// an append-only record of every save, spend and withdrawal, kept
// outside the primary store for reporting.
package ledger

import (
	"context"
	"time"
)

// Entry is one exported transaction row.
type Entry struct {
	Username string
	Source   string
	Target   string
	Kind     string
	Amount   int64
	Note     string
	At       time.Time
}

// Writer appends entries to the ledger and returns an opaque row
// reference for tracing.
type Writer interface {
	Append(ctx context.Context, e Entry) (rowRef string, err error)
}
