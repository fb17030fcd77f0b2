package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"celengan/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists account records as JSON rows keyed by the
// lowercase username.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, username string) (*core.Account, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM accounts WHERE username = ?`,
		core.NormalizeUsername(username),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}

	var account core.Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("decode account record: %w", err)
	}
	return &account, nil
}

func (s *SQLiteStore) Put(ctx context.Context, account *core.Account) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("encode account record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (username, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		account.Key(), raw, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	slog.DebugContext(ctx, "Account persisted",
		"username", account.Key(),
		"targets", len(account.Targets),
		"log_entries", len(account.Log))
	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE username = ?`,
		core.NormalizeUsername(username),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query account: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
