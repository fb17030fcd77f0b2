// Package session holds the ephemeral login state: opaque token to
// lowercase username, with a TTL. It replaces a browser session store,
// so nothing here survives a restart.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const DefaultTTL = 12 * time.Hour

type entry struct {
	username  string
	expiresAt time.Time
}

// Manager is a mutexed in-memory token store with periodic cleanup of
// expired entries.
type Manager struct {
	mu           sync.Mutex
	sessions     map[string]entry
	ttl          time.Duration
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		sessions:    make(map[string]entry),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}
	go m.startCleanup()
	return m
}

// Create issues a new token bound to the normalized username.
func (m *Manager) Create(username string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = entry{
		username:  username,
		expiresAt: time.Now().Add(m.ttl),
	}
	return token, nil
}

// Lookup resolves a token to its username. Expired tokens are removed
// on access.
func (m *Manager) Lookup(token string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[token]
	if !ok {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		delete(m.sessions, token)
		return "", false
	}
	return e.username, true
}

// Destroy removes a token. Destroying an unknown token is a no-op.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func (m *Manager) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for token, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, token)
		}
	}
}

// Stop shuts down the cleanup goroutine.
func (m *Manager) Stop() {
	m.shutdownOnce.Do(func() {
		close(m.stopCleanup)
	})
}
