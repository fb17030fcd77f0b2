package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"celengan/internal/core"

	_ "github.com/lib/pq"
)

// PostgresStore is the Postgres variant of the account store for
// deployments that already run a database server. Same contract as
// the sqlite store: one JSON record per account.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS accounts (
		username   TEXT PRIMARY KEY,
		record     JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create accounts table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, username string) (*core.Account, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM accounts WHERE username = $1`,
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

func (s *PostgresStore) Put(ctx context.Context, account *core.Account) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("encode account record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (username, record, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO UPDATE SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`,
		account.Key(), raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE username = $1`,
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

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
