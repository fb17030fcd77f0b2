package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"celengan/internal/core"
)

// MemoryStore keeps account records in memory. It is the default
// backend and the one the service tests run against. Records are
// stored as JSON copies so callers never share pointers with the
// store, mirroring how the durable backends behave.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, username string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.accounts[core.NormalizeUsername(username)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	var account core.Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("decode account record: %w", err)
	}
	return &account, nil
}

func (s *MemoryStore) Put(_ context.Context, account *core.Account) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("encode account record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.Key()] = raw
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[core.NormalizeUsername(username)]
	return ok, nil
}

func (s *MemoryStore) Close() error { return nil }
