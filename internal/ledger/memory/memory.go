// Package memory is the ledger writer used in development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"celengan/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	entries []ledger.Entry
}

func New() *Store {
	return &Store{}
}

var _ ledger.Writer = (*Store)(nil)

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e ledger.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", len(s.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (s *Store) Entries() []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
